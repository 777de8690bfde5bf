package snapshot

import "time"

// Location is the checkout location of one repository in a blueprint.
type Location struct {
	Revision *string `json:"DVTSourceControlLocationRevisionKey,omitempty"`
	Branch   *string `json:"DVTSourceControlBranchIdentifierKey,omitempty"`
}

// RemoteRepository describes a repository named by a blueprint.
type RemoteRepository struct {
	Identifier string  `json:"DVTSourceControlWorkspaceBlueprintRemoteRepositoryIdentifierKey"`
	URL        *string `json:"DVTSourceControlWorkspaceBlueprintRemoteRepositoryURLKey,omitempty"`
	System     *string `json:"DVTSourceControlWorkspaceBlueprintRemoteRepositorySystemKey,omitempty"`
}

// RevisionBlueprint is a source control blueprint: the repositories a bot
// builds from and, per repository identifier, the location to check out.
type RevisionBlueprint struct {
	Identifier          *string             `json:"DVTSourceControlWorkspaceBlueprintIdentifierKey,omitempty"`
	Name                *string             `json:"DVTSourceControlWorkspaceBlueprintNameKey,omitempty"`
	PrimaryRepositoryID *string             `json:"DVTSourceControlWorkspaceBlueprintPrimaryRemoteRepositoryKey,omitempty"`
	Locations           map[string]Location `json:"DVTSourceControlWorkspaceBlueprintLocationsKey,omitempty"`
	RemoteRepositories  []RemoteRepository  `json:"DVTSourceControlWorkspaceBlueprintRemoteRepositoriesKey,omitempty"`
	WorkingCopyPaths    map[string]string   `json:"DVTSourceControlWorkspaceBlueprintWorkingCopyPathsKey,omitempty"`
}

// Contributor is the author of a commit.
type Contributor struct {
	Name        *string  `json:"XCSContributorName,omitempty"`
	DisplayName *string  `json:"XCSContributorDisplayName,omitempty"`
	Emails      []string `json:"XCSContributorEmails,omitempty"`
}

// CommitChange is one file touched by a commit.
type CommitChange struct {
	FilePath string `json:"filePath"`
	Status   *int   `json:"status,omitempty"`
}

// Commit is one commit in an integration's commit listing.
type Commit struct {
	Hash         string         `json:"XCSCommitHash"`
	Message      *string        `json:"XCSCommitMessage,omitempty"`
	Timestamp    *time.Time     `json:"XCSCommitTimestampDate,omitempty"`
	IsMerge      *bool          `json:"XCSCommitIsMerge,omitempty"`
	RepositoryID *string        `json:"XCSBlueprintRepositoryID,omitempty"`
	Contributor  *Contributor   `json:"XCSCommitContributor,omitempty"`
	Changes      []CommitChange `json:"XCSCommitCommitChangeFilePaths,omitempty"`
}

// IntegrationCommits is one record of the integration commits endpoint:
// commits grouped by repository identifier.
type IntegrationCommits struct {
	ID            string              `json:"_id"`
	IntegrationID string              `json:"integration"`
	BotID         *string             `json:"botID,omitempty"`
	EndedTime     *time.Time          `json:"endedTimeDate,omitempty"`
	Commits       map[string][]Commit `json:"commits"`
}
