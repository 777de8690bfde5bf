package snapshot

import "time"

// Bot is one bot as reported by the bots endpoints.
type Bot struct {
	ID                 string         `json:"_id"`
	Rev                *string        `json:"_rev,omitempty"`
	Name               *string        `json:"name,omitempty"`
	TinyID             *string        `json:"tinyID,omitempty"`
	Type               *int           `json:"type,omitempty"`
	IntegrationCounter *int           `json:"integration_counter,omitempty"`
	RequiresUpgrade    *bool          `json:"requiresUpgrade,omitempty"`
	Configuration      *Configuration `json:"configuration,omitempty"`

	// Integrations is filled when the caller fetched the bot's integrations
	// alongside the bot. Nil means they were not fetched.
	Integrations []Integration `json:"integrations,omitempty"`
	Stats        *Stats        `json:"stats,omitempty"`
}

// Breakdown is a numeric series summary in bot statistics.
type Breakdown struct {
	Count  float64 `json:"count"`
	Sum    float64 `json:"sum"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Avg    float64 `json:"avg"`
	StdDev float64 `json:"stdDev"`
}

// IntegrationRef points at an integration from bot statistics.
type IntegrationRef struct {
	IntegrationID string     `json:"integrationID"`
	EndedTime     *time.Time `json:"endedTime,omitempty"`
	Count         *int       `json:"successStreak,omitempty"`
}

// Stats is the response of the bot statistics endpoint.
type Stats struct {
	NumberOfIntegrations           *int            `json:"numberOfIntegrations,omitempty"`
	NumberOfCommits                *int            `json:"numberOfCommits,omitempty"`
	NumberOfSuccessfulIntegrations *int            `json:"numberOfSuccessfulIntegrations,omitempty"`
	TestAdditionRate               *int            `json:"testAdditionRate,omitempty"`
	CodeCoveragePercentageDelta    *int            `json:"codeCoveragePercentageDelta,omitempty"`
	SinceDate                      *time.Time      `json:"sinceDate,omitempty"`
	AverageIntegrationTime         *Breakdown      `json:"averageIntegrationTime,omitempty"`
	Errors                         *Breakdown      `json:"errors,omitempty"`
	Warnings                       *Breakdown      `json:"warnings,omitempty"`
	AnalysisWarnings               *Breakdown      `json:"analysisWarnings,omitempty"`
	TestFailures                   *Breakdown      `json:"testFailures,omitempty"`
	Tests                          *Breakdown      `json:"tests,omitempty"`
	RegressedPerfTests             *Breakdown      `json:"regressedPerfTests,omitempty"`
	ImprovedPerfTests              *Breakdown      `json:"improvedPerfTests,omitempty"`
	LastCleanIntegration           *IntegrationRef `json:"lastCleanIntegration,omitempty"`
	BestSuccessStreak              *IntegrationRef `json:"bestSuccessStreak,omitempty"`
}
