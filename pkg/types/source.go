package types

import "time"

// Repository is a source control repository, keyed by the blueprint
// repository identifier. It owns the commits seen in it.
type Repository struct {
	Meta

	URL             string `json:"url,omitempty"`
	System          string `json:"system,omitempty"`
	Branch          string `json:"branch,omitempty"`
	WorkingCopyPath string `json:"working_copy_path,omitempty"`
}

func (*Repository) Kind() Kind { return KindRepository }

// Commit is keyed by its content hash: two commits with the same hash are
// the same entity.
type Commit struct {
	Meta

	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty"`
	IsMerge   bool      `json:"is_merge"`
}

func (*Commit) Kind() Kind { return KindCommit }

// Hash returns the commit's content hash.
func (c *Commit) Hash() string { return c.Key }

// Contributor is the author of a commit.
type Contributor struct {
	Meta

	Name        string   `json:"name,omitempty"`
	DisplayName string   `json:"display_name,omitempty"`
	Emails      []string `json:"emails,omitempty"`
}

func (*Contributor) Kind() Kind { return KindContributor }

// CommitChange is one file touched by a commit.
type CommitChange struct {
	Meta

	Ordinal  int    `json:"ordinal"`
	FilePath string `json:"file_path"`
	Status   int    `json:"status"`
}

func (*CommitChange) Kind() Kind { return KindCommitChange }

// RevisionBlueprint joins one Commit to one Integration. It is owned by the
// integration and links to the commit; at most one exists per pair.
type RevisionBlueprint struct {
	Meta
}

func (*RevisionBlueprint) Kind() Kind { return KindRevisionBlueprint }
