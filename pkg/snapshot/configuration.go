package snapshot

// Configuration is a bot's build configuration.
type Configuration struct {
	SchemeName                  *string              `json:"schemeName,omitempty"`
	BuiltFromClean              *int                 `json:"builtFromClean,omitempty"`
	PerformsAnalyzeAction       *bool                `json:"performsAnalyzeAction,omitempty"`
	PerformsTestAction          *bool                `json:"performsTestAction,omitempty"`
	PerformsArchiveAction       *bool                `json:"performsArchiveAction,omitempty"`
	PerformsUpgradeIntegration  *bool                `json:"performsUpgradeIntegration,omitempty"`
	ExportsProductFromArchive   *bool                `json:"exportsProductFromArchive,omitempty"`
	DisableAppThinning          *bool                `json:"disableAppThinning,omitempty"`
	UseParallelDeviceTesting    *bool                `json:"useParallelDeviceTesting,omitempty"`
	CodeCoveragePreference      *int                 `json:"codeCoveragePreference,omitempty"`
	TestingDestinationType      *int                 `json:"testingDestinationType,omitempty"`
	ScheduleType                *int                 `json:"scheduleType,omitempty"`
	PeriodicScheduleInterval    *int                 `json:"periodicScheduleInterval,omitempty"`
	WeeklyScheduleDay           *int                 `json:"weeklyScheduleDay,omitempty"`
	HourOfIntegration           *int                 `json:"hourOfIntegration,omitempty"`
	MinutesAfterHourToIntegrate *int                 `json:"minutesAfterHourToIntegrate,omitempty"`
	AdditionalBuildArguments    []string             `json:"additionalBuildArguments,omitempty"`
	BuildEnvironmentVariables   map[string]string    `json:"buildEnvironmentVariables,omitempty"`
	Triggers                    []Trigger            `json:"triggers,omitempty"`
	DeviceSpecification         *DeviceSpecification `json:"deviceSpecification,omitempty"`
	SourceControlBlueprint      *RevisionBlueprint   `json:"sourceControlBlueprint,omitempty"`
}

// TriggerConditions gates when a trigger fires.
type TriggerConditions struct {
	Status              *int  `json:"status,omitempty"`
	OnAllIssuesResolved *bool `json:"onAllIssuesResolved,omitempty"`
	OnWarnings          *bool `json:"onWarnings,omitempty"`
	OnBuildErrors       *bool `json:"onBuildErrors,omitempty"`
	OnAnalyzerWarnings  *bool `json:"onAnalyzerWarnings,omitempty"`
	OnFailingTests      *bool `json:"onFailingTests,omitempty"`
	OnSuccess           *bool `json:"onSuccess,omitempty"`
}

// EmailConfiguration is the notification setup of an email trigger.
type EmailConfiguration struct {
	AdditionalRecipients    []string `json:"additionalRecipients,omitempty"`
	AllowedDomainNames      []string `json:"allowedDomainNames,omitempty"`
	EmailCommitters         *bool    `json:"emailCommitters,omitempty"`
	IncludeCommitMessages   *bool    `json:"includeCommitMessages,omitempty"`
	IncludeIssueDetails     *bool    `json:"includeIssueDetails,omitempty"`
	IncludeBotConfiguration *bool    `json:"includeBotConfiguration,omitempty"`
	IncludeLogs             *bool    `json:"includeLogs,omitempty"`
	FromAddress             *string  `json:"fromAddress,omitempty"`
	ReplyToAddress          *string  `json:"replyToAddress,omitempty"`
	Type                    *int     `json:"type,omitempty"`
	Hour                    *int     `json:"hour,omitempty"`
	Minutes                 *int     `json:"minutes,omitempty"`
	WeeklyScheduleDay       *int     `json:"weeklyScheduleDay,omitempty"`
}

// Trigger is a script or email action.
type Trigger struct {
	Name               *string             `json:"name,omitempty"`
	Type               *int                `json:"type,omitempty"`
	Phase              *int                `json:"phase,omitempty"`
	ScriptBody         *string             `json:"scriptBody,omitempty"`
	Conditions         *TriggerConditions  `json:"conditions,omitempty"`
	EmailConfiguration *EmailConfiguration `json:"emailConfiguration,omitempty"`
}

// DeviceSpecification selects the devices a configuration tests on.
type DeviceSpecification struct {
	Filters           []Filter `json:"filters,omitempty"`
	DeviceIdentifiers []string `json:"deviceIdentifiers,omitempty"`
}

// Platform identifies an SDK platform.
type Platform struct {
	DisplayName         *string `json:"displayName,omitempty"`
	Identifier          *string `json:"identifier,omitempty"`
	Version             *string `json:"version,omitempty"`
	BuildNumber         *string `json:"buildNumber,omitempty"`
	SimulatorIdentifier *string `json:"simulatorIdentifier,omitempty"`
}

// Filter is one device selection rule.
type Filter struct {
	FilterType       *int      `json:"filterType,omitempty"`
	ArchitectureType *int      `json:"architectureType,omitempty"`
	Platform         *Platform `json:"platform,omitempty"`
}
