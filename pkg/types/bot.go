package types

import "time"

// Bot is a build definition on a server. Owns one Configuration, one Stats
// and its Integrations.
type Bot struct {
	Meta

	Name               string `json:"name"`
	Rev                string `json:"rev,omitempty"`
	TinyID             string `json:"tiny_id,omitempty"`
	Type               int    `json:"type"`
	IntegrationCounter int    `json:"integration_counter"`
	RequiresUpgrade    bool   `json:"requires_upgrade"`

	LastSyncedAt time.Time `json:"last_synced_at,omitempty"`
}

func (*Bot) Kind() Kind { return KindBot }

// Breakdown summarizes a numeric series reported by bot statistics.
type Breakdown struct {
	Count  float64 `json:"count"`
	Sum    float64 `json:"sum"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Avg    float64 `json:"avg"`
	StdDev float64 `json:"std_dev"`
}

// Stats holds the aggregate statistics of a bot.
type Stats struct {
	Meta

	NumberOfIntegrations           int       `json:"number_of_integrations"`
	NumberOfCommits                int       `json:"number_of_commits"`
	NumberOfSuccessfulIntegrations int       `json:"number_of_successful_integrations"`
	TestAdditionRate               int       `json:"test_addition_rate"`
	CodeCoveragePercentageDelta    int       `json:"code_coverage_percentage_delta"`
	SinceDate                      time.Time `json:"since_date,omitempty"`

	AverageIntegrationTime Breakdown `json:"average_integration_time"`
	Errors                 Breakdown `json:"errors"`
	Warnings               Breakdown `json:"warnings"`
	AnalysisWarnings       Breakdown `json:"analysis_warnings"`
	TestFailures           Breakdown `json:"test_failures"`
	Tests                  Breakdown `json:"tests"`
	RegressedPerfTests     Breakdown `json:"regressed_perf_tests"`
	ImprovedPerfTests      Breakdown `json:"improved_perf_tests"`

	LastCleanIntegrationID    string    `json:"last_clean_integration_id,omitempty"`
	LastCleanIntegrationEnded time.Time `json:"last_clean_integration_ended,omitempty"`
	BestSuccessStreakID       string    `json:"best_success_streak_id,omitempty"`
	BestSuccessStreakCount    int       `json:"best_success_streak_count"`
}

func (*Stats) Kind() Kind { return KindStats }
