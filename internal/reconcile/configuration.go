package reconcile

import (
	"github.com/mesh-intelligence/botsync/pkg/snapshot"
	"github.com/mesh-intelligence/botsync/pkg/types"
)

func (r *Reconciler) configuration(bot *types.Bot, snap *snapshot.Configuration) {
	e, err := r.singleton(bot, types.KindConfiguration)
	if err != nil {
		r.skip(types.KindConfiguration, bot.Key, err)
		return
	}
	cfg := e.(*types.Configuration)

	set(&cfg.SchemeName, snap.SchemeName)
	set(&cfg.BuiltFromClean, snap.BuiltFromClean)
	set(&cfg.PerformsAnalyzeAction, snap.PerformsAnalyzeAction)
	set(&cfg.PerformsTestAction, snap.PerformsTestAction)
	set(&cfg.PerformsArchiveAction, snap.PerformsArchiveAction)
	set(&cfg.PerformsUpgradeIntegration, snap.PerformsUpgradeIntegration)
	set(&cfg.ExportsProductFromArchive, snap.ExportsProductFromArchive)
	set(&cfg.DisableAppThinning, snap.DisableAppThinning)
	set(&cfg.UseParallelDeviceTesting, snap.UseParallelDeviceTesting)
	set(&cfg.CodeCoveragePreference, snap.CodeCoveragePreference)
	set(&cfg.TestingDestinationType, snap.TestingDestinationType)
	set(&cfg.ScheduleType, snap.ScheduleType)
	set(&cfg.PeriodicScheduleInterval, snap.PeriodicScheduleInterval)
	set(&cfg.WeeklyScheduleDay, snap.WeeklyScheduleDay)
	set(&cfg.HourOfIntegration, snap.HourOfIntegration)
	set(&cfg.MinutesAfterHourToIntegrate, snap.MinutesAfterHourToIntegrate)
	setSlice(&cfg.AdditionalBuildArguments, snap.AdditionalBuildArguments)
	if snap.BuildEnvironmentVariables != nil {
		env := make(map[string]string, len(snap.BuildEnvironmentVariables))
		for k, v := range snap.BuildEnvironmentVariables {
			env[k] = v
		}
		cfg.BuildEnvironmentVariables = env
	}

	if snap.Triggers != nil {
		r.triggers(cfg, snap.Triggers)
	}
	if snap.DeviceSpecification != nil {
		r.deviceSpecification(cfg, snap.DeviceSpecification)
	}
	if bp := snap.SourceControlBlueprint; bp != nil {
		set(&cfg.BlueprintName, bp.Name)
		set(&cfg.BlueprintIdentifier, bp.Identifier)
		set(&cfg.PrimaryRepositoryID, bp.PrimaryRepositoryID)
		if bp.RemoteRepositories != nil {
			var ids []string
			for _, repo := range r.blueprintRepositories(bp) {
				ids = append(ids, repo.LocalID)
			}
			r.syncLinks(types.LinkBuildsFrom, cfg, ids)
		}
	}
}

// triggers replaces every trigger of cfg with the snapshot's. Triggers have
// no stable identifier.
func (r *Reconciler) triggers(cfg *types.Configuration, snaps []snapshot.Trigger) {
	r.clear(cfg, types.KindTrigger)
	for i, snap := range snaps {
		e, err := r.store.Create(types.KindTrigger, "", cfg.LocalID)
		if err != nil {
			r.skip(types.KindTrigger, "", err)
			continue
		}
		t := e.(*types.Trigger)
		t.Ordinal = i
		set(&t.Name, snap.Name)
		set(&t.Type, snap.Type)
		set(&t.Phase, snap.Phase)
		set(&t.ScriptBody, snap.ScriptBody)
		if c := snap.Conditions; c != nil {
			set(&t.Conditions.Status, c.Status)
			set(&t.Conditions.OnAllIssuesResolved, c.OnAllIssuesResolved)
			set(&t.Conditions.OnWarnings, c.OnWarnings)
			set(&t.Conditions.OnBuildErrors, c.OnBuildErrors)
			set(&t.Conditions.OnAnalyzerWarnings, c.OnAnalyzerWarnings)
			set(&t.Conditions.OnFailingTests, c.OnFailingTests)
			set(&t.Conditions.OnSuccess, c.OnSuccess)
		}
		if snap.EmailConfiguration != nil {
			r.emailConfiguration(t, snap.EmailConfiguration)
		}
	}
}

func (r *Reconciler) emailConfiguration(t *types.Trigger, snap *snapshot.EmailConfiguration) {
	e, err := r.singleton(t, types.KindEmailConfiguration)
	if err != nil {
		r.skip(types.KindEmailConfiguration, "", err)
		return
	}
	ec := e.(*types.EmailConfiguration)
	setSlice(&ec.AdditionalRecipients, snap.AdditionalRecipients)
	setSlice(&ec.AllowedDomainNames, snap.AllowedDomainNames)
	set(&ec.EmailCommitters, snap.EmailCommitters)
	set(&ec.IncludeCommitMessages, snap.IncludeCommitMessages)
	set(&ec.IncludeIssueDetails, snap.IncludeIssueDetails)
	set(&ec.IncludeBotConfiguration, snap.IncludeBotConfiguration)
	set(&ec.IncludeLogs, snap.IncludeLogs)
	set(&ec.FromAddress, snap.FromAddress)
	set(&ec.ReplyToAddress, snap.ReplyToAddress)
	set(&ec.Type, snap.Type)
	set(&ec.Hour, snap.Hour)
	set(&ec.Minutes, snap.Minutes)
	set(&ec.WeeklyScheduleDay, snap.WeeklyScheduleDay)
}

func (r *Reconciler) deviceSpecification(cfg *types.Configuration, snap *snapshot.DeviceSpecification) {
	e, err := r.singleton(cfg, types.KindDeviceSpecification)
	if err != nil {
		r.skip(types.KindDeviceSpecification, "", err)
		return
	}
	spec := e.(*types.DeviceSpecification)

	if snap.Filters != nil {
		r.clear(spec, types.KindFilter)
		for i, fs := range snap.Filters {
			fe, err := r.store.Create(types.KindFilter, "", spec.LocalID)
			if err != nil {
				r.skip(types.KindFilter, "", err)
				continue
			}
			f := fe.(*types.Filter)
			f.Ordinal = i
			set(&f.FilterType, fs.FilterType)
			set(&f.ArchitectureType, fs.ArchitectureType)
			if p := fs.Platform; p != nil {
				set(&f.Platform.DisplayName, p.DisplayName)
				set(&f.Platform.Identifier, p.Identifier)
				set(&f.Platform.Version, p.Version)
				set(&f.Platform.BuildNumber, p.BuildNumber)
				set(&f.Platform.SimulatorIdentifier, p.SimulatorIdentifier)
			}
		}
	}

	if snap.DeviceIdentifiers != nil {
		var ids []string
		for _, key := range snap.DeviceIdentifiers {
			if d := r.deviceRef(key); d != nil {
				ids = append(ids, d.LocalID)
			}
		}
		r.syncLinks(types.LinkTargets, spec, ids)
	}
}
