package snapshot

import "time"

// BuildResultSummary holds the issue counts of an integration.
type BuildResultSummary struct {
	ErrorCount                  *int `json:"errorCount,omitempty"`
	ErrorChange                 *int `json:"errorChange,omitempty"`
	WarningCount                *int `json:"warningCount,omitempty"`
	WarningChange               *int `json:"warningChange,omitempty"`
	AnalyzerWarningCount        *int `json:"analyzerWarningCount,omitempty"`
	AnalyzerWarningChange       *int `json:"analyzerWarningChange,omitempty"`
	TestsCount                  *int `json:"testsCount,omitempty"`
	TestsChange                 *int `json:"testsChange,omitempty"`
	TestFailureCount            *int `json:"testFailureCount,omitempty"`
	TestFailureChange           *int `json:"testFailureChange,omitempty"`
	ImprovedPerfTestCount       *int `json:"improvedPerfTestCount,omitempty"`
	RegressedPerfTestCount      *int `json:"regressedPerfTestCount,omitempty"`
	CodeCoveragePercentage      *int `json:"codeCoveragePercentage,omitempty"`
	CodeCoveragePercentageDelta *int `json:"codeCoveragePercentageDelta,omitempty"`
}

// Asset is one file produced by an integration.
type Asset struct {
	FileName             *string `json:"fileName,omitempty"`
	RelativePath         *string `json:"relativePath,omitempty"`
	Size                 *int64  `json:"size,omitempty"`
	AllowAnonymousAccess *bool   `json:"allowAnonymousAccess,omitempty"`
}

// Assets lists the files an integration produced. The record fully
// describes the asset set: assets it does not name no longer exist.
type Assets struct {
	BuildServiceLog  *Asset  `json:"buildServiceLog,omitempty"`
	SourceControlLog *Asset  `json:"sourceControlLog,omitempty"`
	XcodebuildLog    *Asset  `json:"xcodebuildLog,omitempty"`
	XcodebuildOutput *Asset  `json:"xcodebuildOutput,omitempty"`
	Archive          *Asset  `json:"archive,omitempty"`
	Product          *Asset  `json:"product,omitempty"`
	TriggerAssets    []Asset `json:"triggerAssets,omitempty"`
}

// Integration is one build run of a bot.
type Integration struct {
	ID                 string              `json:"_id"`
	Rev                *string             `json:"_rev,omitempty"`
	BotID              *string             `json:"bot_id,omitempty"`
	Number             *int                `json:"number,omitempty"`
	CurrentStep        *string             `json:"currentStep,omitempty"`
	Result             *string             `json:"result,omitempty"`
	ShouldClean        *bool               `json:"shouldClean,omitempty"`
	QueuedDate         *time.Time          `json:"queuedDate,omitempty"`
	StartedTime        *time.Time          `json:"startedTime,omitempty"`
	EndedTime          *time.Time          `json:"endedTime,omitempty"`
	Duration           *float64            `json:"duration,omitempty"`
	SuccessStreak      *int                `json:"success_streak,omitempty"`
	BuildResultSummary *BuildResultSummary `json:"buildResultSummary,omitempty"`
	Assets             *Assets             `json:"assets,omitempty"`
	TestedDevices      []Device            `json:"testedDevices,omitempty"`
	RevisionBlueprint  *RevisionBlueprint  `json:"revisionBlueprint,omitempty"`
}
