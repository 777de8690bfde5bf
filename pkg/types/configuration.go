package types

// Configuration is the build configuration of a bot. It references (does
// not own) the repositories it builds from.
type Configuration struct {
	Meta

	SchemeName                  string            `json:"scheme_name"`
	BuiltFromClean              int               `json:"built_from_clean"`
	PerformsAnalyzeAction       bool              `json:"performs_analyze_action"`
	PerformsTestAction          bool              `json:"performs_test_action"`
	PerformsArchiveAction       bool              `json:"performs_archive_action"`
	PerformsUpgradeIntegration  bool              `json:"performs_upgrade_integration"`
	ExportsProductFromArchive   bool              `json:"exports_product_from_archive"`
	DisableAppThinning          bool              `json:"disable_app_thinning"`
	UseParallelDeviceTesting    bool              `json:"use_parallel_device_testing"`
	CodeCoveragePreference      int               `json:"code_coverage_preference"`
	TestingDestinationType      int               `json:"testing_destination_type"`
	ScheduleType                int               `json:"schedule_type"`
	PeriodicScheduleInterval    int               `json:"periodic_schedule_interval"`
	WeeklyScheduleDay           int               `json:"weekly_schedule_day"`
	HourOfIntegration           int               `json:"hour_of_integration"`
	MinutesAfterHourToIntegrate int               `json:"minutes_after_hour_to_integrate"`
	AdditionalBuildArguments    []string          `json:"additional_build_arguments,omitempty"`
	BuildEnvironmentVariables   map[string]string `json:"build_environment_variables,omitempty"`

	BlueprintName       string `json:"blueprint_name,omitempty"`
	BlueprintIdentifier string `json:"blueprint_identifier,omitempty"`
	PrimaryRepositoryID string `json:"primary_repository_id,omitempty"`
}

func (*Configuration) Kind() Kind { return KindConfiguration }

// TriggerConditions gates when a trigger fires.
type TriggerConditions struct {
	Status              int  `json:"status"`
	OnAllIssuesResolved bool `json:"on_all_issues_resolved"`
	OnWarnings          bool `json:"on_warnings"`
	OnBuildErrors       bool `json:"on_build_errors"`
	OnAnalyzerWarnings  bool `json:"on_analyzer_warnings"`
	OnFailingTests      bool `json:"on_failing_tests"`
	OnSuccess           bool `json:"on_success"`
}

// Trigger is a script or email action run before or after an integration.
// Triggers carry no stable remote identifier.
type Trigger struct {
	Meta

	Ordinal    int               `json:"ordinal"`
	Name       string            `json:"name"`
	Type       int               `json:"type"`
	Phase      int               `json:"phase"`
	ScriptBody string            `json:"script_body,omitempty"`
	Conditions TriggerConditions `json:"conditions"`
}

func (*Trigger) Kind() Kind { return KindTrigger }

// EmailConfiguration is the notification setup of an email trigger.
type EmailConfiguration struct {
	Meta

	AdditionalRecipients    []string `json:"additional_recipients,omitempty"`
	AllowedDomainNames      []string `json:"allowed_domain_names,omitempty"`
	EmailCommitters         bool     `json:"email_committers"`
	IncludeCommitMessages   bool     `json:"include_commit_messages"`
	IncludeIssueDetails     bool     `json:"include_issue_details"`
	IncludeBotConfiguration bool     `json:"include_bot_configuration"`
	IncludeLogs             bool     `json:"include_logs"`
	FromAddress             string   `json:"from_address,omitempty"`
	ReplyToAddress          string   `json:"reply_to_address,omitempty"`
	Type                    int      `json:"type"`
	Hour                    int      `json:"hour"`
	Minutes                 int      `json:"minutes"`
	WeeklyScheduleDay       int      `json:"weekly_schedule_day"`
}

func (*EmailConfiguration) Kind() Kind { return KindEmailConfiguration }

// DeviceSpecification selects the devices a configuration tests on. The
// selected devices are targets links; the selection rules are Filters.
type DeviceSpecification struct {
	Meta
}

func (*DeviceSpecification) Kind() Kind { return KindDeviceSpecification }

// Platform identifies an SDK platform.
type Platform struct {
	DisplayName         string `json:"display_name,omitempty"`
	Identifier          string `json:"identifier,omitempty"`
	Version             string `json:"version,omitempty"`
	BuildNumber         string `json:"build_number,omitempty"`
	SimulatorIdentifier string `json:"simulator_identifier,omitempty"`
}

// Filter is one device selection rule.
type Filter struct {
	Meta

	Ordinal          int      `json:"ordinal"`
	FilterType       int      `json:"filter_type"`
	ArchitectureType int      `json:"architecture_type"`
	Platform         Platform `json:"platform"`
}

func (*Filter) Kind() Kind { return KindFilter }
