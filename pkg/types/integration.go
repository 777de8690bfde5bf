package types

import "time"

// Integration steps reported by the server.
const (
	StepPending   = "pending"
	StepPreparing = "preparing"
	StepBuilding  = "building"
	StepTesting   = "testing"
	StepArchiving = "archiving"
	StepUploading = "uploading"
	StepCompleted = "completed"
)

// Integration results reported by the server.
const (
	ResultUnknown             = "unknown"
	ResultSucceeded           = "succeeded"
	ResultBuildErrors         = "build-errors"
	ResultTestFailures        = "test-failures"
	ResultWarnings            = "warnings"
	ResultAnalyzerWarnings    = "analyzer-warnings"
	ResultBuildFailed         = "build-failed"
	ResultCheckoutError       = "checkout-error"
	ResultInternalError       = "internal-error"
	ResultInternalCheckoutErr = "internal-checkout-error"
	ResultInternalBuildError  = "internal-build-error"
	ResultInternalProcessErr  = "internal-processing-error"
	ResultCanceled            = "canceled"
	ResultTriggerError        = "trigger-error"
)

// RevisionLocation is the revision an integration built for one repository.
type RevisionLocation struct {
	Revision string `json:"revision,omitempty"`
	Branch   string `json:"branch,omitempty"`
}

// Integration is one build run of a bot.
type Integration struct {
	Meta

	Rev           string                      `json:"rev,omitempty"`
	Number        int                         `json:"number"`
	CurrentStep   string                      `json:"current_step,omitempty"`
	Result        string                      `json:"result,omitempty"`
	ShouldClean   bool                        `json:"should_clean"`
	QueuedDate    time.Time                   `json:"queued_date,omitempty"`
	StartedTime   time.Time                   `json:"started_time,omitempty"`
	EndedTime     time.Time                   `json:"ended_time,omitempty"`
	Duration      float64                     `json:"duration"`
	SuccessStreak int                         `json:"success_streak"`
	Revisions     map[string]RevisionLocation `json:"revisions,omitempty"`

	// Local bookkeeping; no snapshot carries these.
	HasRetrievedAssets  bool      `json:"has_retrieved_assets"`
	HasRetrievedCommits bool      `json:"has_retrieved_commits"`
	HasRetrievedIssues  bool      `json:"has_retrieved_issues"`
	LastSyncedAt        time.Time `json:"last_synced_at,omitempty"`
}

func (*Integration) Kind() Kind { return KindIntegration }

// Completed reports whether the server has finished the integration.
func (i *Integration) Completed() bool {
	return i.CurrentStep == StepCompleted
}

// BuildResultSummary holds the issue counts of an integration.
type BuildResultSummary struct {
	Meta

	ErrorCount                  int `json:"error_count"`
	ErrorChange                 int `json:"error_change"`
	WarningCount                int `json:"warning_count"`
	WarningChange               int `json:"warning_change"`
	AnalyzerWarningCount        int `json:"analyzer_warning_count"`
	AnalyzerWarningChange       int `json:"analyzer_warning_change"`
	TestsCount                  int `json:"tests_count"`
	TestsChange                 int `json:"tests_change"`
	TestFailureCount            int `json:"test_failure_count"`
	TestFailureChange           int `json:"test_failure_change"`
	ImprovedPerfTestCount       int `json:"improved_perf_test_count"`
	RegressedPerfTestCount      int `json:"regressed_perf_test_count"`
	CodeCoveragePercentage      int `json:"code_coverage_percentage"`
	CodeCoveragePercentageDelta int `json:"code_coverage_percentage_delta"`
}

func (*BuildResultSummary) Kind() Kind { return KindBuildResultSummary }

// Asset roles within an AssetBundle.
const (
	AssetBuildServiceLog  = "build_service_log"
	AssetSourceControlLog = "source_control_log"
	AssetXcodebuildLog    = "xcodebuild_log"
	AssetXcodebuildOutput = "xcodebuild_output"
	AssetArchive          = "archive"
	AssetProduct          = "product"
	AssetTrigger          = "trigger"
)

// AssetBundle groups the files an integration produced.
type AssetBundle struct {
	Meta
}

func (*AssetBundle) Kind() Kind { return KindAssetBundle }

// Asset is one file produced by an integration.
type Asset struct {
	Meta

	Ordinal              int    `json:"ordinal"`
	Role                 string `json:"role"`
	FileName             string `json:"file_name,omitempty"`
	RelativePath         string `json:"relative_path,omitempty"`
	Size                 int64  `json:"size"`
	AllowAnonymousAccess bool   `json:"allow_anonymous_access"`
}

func (*Asset) Kind() Kind { return KindAsset }
