package snapshot

import "github.com/mesh-intelligence/botsync/pkg/types"

// Issue is one error, warning, analyzer warning or test failure.
type Issue struct {
	ID               string  `json:"_id"`
	Rev              *string `json:"_rev,omitempty"`
	Message          *string `json:"message,omitempty"`
	Type             *string `json:"type,omitempty"`
	IssueType        *string `json:"issueType,omitempty"`
	Target           *string `json:"target,omitempty"`
	DocumentFilePath *string `json:"documentFilePath,omitempty"`
	LineNumber       *int    `json:"lineNumber,omitempty"`
	Age              *int    `json:"age,omitempty"`
	Status           *int    `json:"status,omitempty"`
	FixItType        *int    `json:"fixItType,omitempty"`
}

// IssueGroup partitions one issue category by resolution state.
type IssueGroup struct {
	Fresh      []Issue `json:"freshIssues,omitempty"`
	Unresolved []Issue `json:"unresolvedIssues,omitempty"`
	Resolved   []Issue `json:"resolvedIssues,omitempty"`
}

// IssueSet is the response of the integration issues endpoint.
type IssueSet struct {
	BuildServiceErrors   []Issue     `json:"buildServiceErrors,omitempty"`
	BuildServiceWarnings []Issue     `json:"buildServiceWarnings,omitempty"`
	Errors               *IssueGroup `json:"errors,omitempty"`
	Warnings             *IssueGroup `json:"warnings,omitempty"`
	TestFailures         *IssueGroup `json:"testFailures,omitempty"`
	AnalyzerWarnings     *IssueGroup `json:"analyzerWarnings,omitempty"`
}

// Buckets maps every bucket the record carries to its issues. Buckets the
// record does not carry are absent from the map; a present bucket may be
// empty. Each bucket is read from its own wire field.
func (s *IssueSet) Buckets() map[types.Bucket][]Issue {
	out := map[types.Bucket][]Issue{}
	put := func(b types.Bucket, issues []Issue) {
		if issues != nil {
			out[b] = issues
		}
	}
	put(types.BucketBuildServiceErrors, s.BuildServiceErrors)
	put(types.BucketBuildServiceWarnings, s.BuildServiceWarnings)
	if g := s.Errors; g != nil {
		put(types.BucketFreshErrors, g.Fresh)
		put(types.BucketUnresolvedErrors, g.Unresolved)
		put(types.BucketResolvedErrors, g.Resolved)
	}
	if g := s.Warnings; g != nil {
		put(types.BucketFreshWarnings, g.Fresh)
		put(types.BucketUnresolvedWarnings, g.Unresolved)
		put(types.BucketResolvedWarnings, g.Resolved)
	}
	if g := s.TestFailures; g != nil {
		put(types.BucketFreshTestFailures, g.Fresh)
		put(types.BucketUnresolvedTestFailures, g.Unresolved)
		put(types.BucketResolvedTestFailures, g.Resolved)
	}
	if g := s.AnalyzerWarnings; g != nil {
		put(types.BucketFreshAnalyzerWarnings, g.Fresh)
		put(types.BucketUnresolvedAnalyzerWarning, g.Unresolved)
		put(types.BucketResolvedAnalyzerWarnings, g.Resolved)
	}
	return out
}
