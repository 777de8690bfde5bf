package types

// Bucket names the relationship an Issue belongs to within its IssueBundle.
// Every bucket is independent: an issue belongs to exactly one.
type Bucket string

// Issue buckets.
const (
	BucketBuildServiceErrors        Bucket = "build_service_errors"
	BucketBuildServiceWarnings      Bucket = "build_service_warnings"
	BucketFreshErrors               Bucket = "fresh_errors"
	BucketFreshWarnings             Bucket = "fresh_warnings"
	BucketFreshTestFailures         Bucket = "fresh_test_failures"
	BucketFreshAnalyzerWarnings     Bucket = "fresh_analyzer_warnings"
	BucketUnresolvedErrors          Bucket = "unresolved_errors"
	BucketUnresolvedWarnings        Bucket = "unresolved_warnings"
	BucketUnresolvedTestFailures    Bucket = "unresolved_test_failures"
	BucketUnresolvedAnalyzerWarning Bucket = "unresolved_analyzer_warnings"
	BucketResolvedErrors            Bucket = "resolved_errors"
	BucketResolvedWarnings          Bucket = "resolved_warnings"
	BucketResolvedTestFailures      Bucket = "resolved_test_failures"
	BucketResolvedAnalyzerWarnings  Bucket = "resolved_analyzer_warnings"
)

// Buckets returns every issue bucket.
func Buckets() []Bucket {
	return []Bucket{
		BucketBuildServiceErrors,
		BucketBuildServiceWarnings,
		BucketFreshErrors,
		BucketFreshWarnings,
		BucketFreshTestFailures,
		BucketFreshAnalyzerWarnings,
		BucketUnresolvedErrors,
		BucketUnresolvedWarnings,
		BucketUnresolvedTestFailures,
		BucketUnresolvedAnalyzerWarning,
		BucketResolvedErrors,
		BucketResolvedWarnings,
		BucketResolvedTestFailures,
		BucketResolvedAnalyzerWarnings,
	}
}

// IssueBundle groups the issues reported for an integration.
type IssueBundle struct {
	Meta
}

func (*IssueBundle) Kind() Kind { return KindIssueBundle }

// Issue is one error, warning, analyzer warning or test failure.
type Issue struct {
	Meta

	Bucket           Bucket `json:"bucket"`
	Ordinal          int    `json:"ordinal"`
	IssueID          string `json:"issue_id,omitempty"`
	Rev              string `json:"rev,omitempty"`
	Message          string `json:"message,omitempty"`
	Type             string `json:"type,omitempty"`
	IssueType        string `json:"issue_type,omitempty"`
	Target           string `json:"target,omitempty"`
	DocumentFilePath string `json:"document_file_path,omitempty"`
	LineNumber       int    `json:"line_number"`
	Age              int    `json:"age"`
	Status           int    `json:"status"`
	FixItType        int    `json:"fix_it_type"`
}

func (*Issue) Kind() Kind { return KindIssue }
