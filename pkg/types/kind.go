package types

// Kind names an entity kind. Kinds double as the value of the kind column
// in the persistent store.
type Kind string

// Entity kinds.
const (
	KindServer              Kind = "server"
	KindBot                 Kind = "bot"
	KindStats               Kind = "stats"
	KindConfiguration       Kind = "configuration"
	KindTrigger             Kind = "trigger"
	KindEmailConfiguration  Kind = "email_configuration"
	KindDeviceSpecification Kind = "device_specification"
	KindFilter              Kind = "filter"
	KindDevice              Kind = "device"
	KindRepository          Kind = "repository"
	KindCommit              Kind = "commit"
	KindContributor         Kind = "contributor"
	KindCommitChange        Kind = "commit_change"
	KindRevisionBlueprint   Kind = "revision_blueprint"
	KindIntegration         Kind = "integration"
	KindBuildResultSummary  Kind = "build_result_summary"
	KindAssetBundle         Kind = "asset_bundle"
	KindAsset               Kind = "asset"
	KindIssueBundle         Kind = "issue_bundle"
	KindIssue               Kind = "issue"
)

// kindInfo describes the structural role of a kind.
type kindInfo struct {
	keyed bool // matched against snapshots by remote identifier or hash
	owner Kind // owning kind; empty for roots and free-standing entities
}

var kindTable = map[Kind]kindInfo{
	KindServer:              {keyed: true},
	KindBot:                 {keyed: true, owner: KindServer},
	KindStats:               {owner: KindBot},
	KindConfiguration:       {owner: KindBot},
	KindTrigger:             {owner: KindConfiguration},
	KindEmailConfiguration:  {owner: KindTrigger},
	KindDeviceSpecification: {owner: KindConfiguration},
	KindFilter:              {owner: KindDeviceSpecification},
	KindDevice:              {keyed: true},
	KindRepository:          {keyed: true},
	KindCommit:              {keyed: true, owner: KindRepository},
	KindContributor:         {owner: KindCommit},
	KindCommitChange:        {owner: KindCommit},
	KindRevisionBlueprint:   {owner: KindIntegration},
	KindIntegration:         {keyed: true, owner: KindBot},
	KindBuildResultSummary:  {owner: KindIntegration},
	KindAssetBundle:         {owner: KindIntegration},
	KindAsset:               {owner: KindAssetBundle},
	KindIssueBundle:         {owner: KindIntegration},
	KindIssue:               {owner: KindIssueBundle},
}

// Valid reports whether k is a known entity kind.
func (k Kind) Valid() bool {
	_, ok := kindTable[k]
	return ok
}

// Keyed reports whether entities of this kind carry a remote identifier
// (or content hash) that is unique within the kind.
func (k Kind) Keyed() bool {
	return kindTable[k].keyed
}

// Owner returns the kind that owns entities of this kind, or "" if the kind
// is a root or free-standing.
func (k Kind) Owner() Kind {
	return kindTable[k].owner
}

// Kinds returns every known kind in dependency order: owners before the
// kinds they own.
func Kinds() []Kind {
	return []Kind{
		KindServer,
		KindDevice,
		KindRepository,
		KindBot,
		KindStats,
		KindConfiguration,
		KindTrigger,
		KindEmailConfiguration,
		KindDeviceSpecification,
		KindFilter,
		KindCommit,
		KindContributor,
		KindCommitChange,
		KindIntegration,
		KindBuildResultSummary,
		KindAssetBundle,
		KindAsset,
		KindIssueBundle,
		KindIssue,
		KindRevisionBlueprint,
	}
}
