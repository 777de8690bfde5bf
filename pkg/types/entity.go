package types

import "time"

// Meta carries the structural identity every entity shares. It is not part
// of the serialized entity body; the store keeps it in dedicated columns.
type Meta struct {
	LocalID   string    `json:"-"` // store-assigned, stable for the entity's lifetime
	Key       string    `json:"-"` // remote identifier, content hash, or FQDN; empty for unkeyed kinds
	OwnerID   string    `json:"-"` // local ID of the owning entity; empty for roots
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// Base returns the entity's structural metadata.
func (m *Meta) Base() *Meta { return m }

// Entity is a persistent node in the local graph.
type Entity interface {
	Kind() Kind
	Base() *Meta
}

var constructors = map[Kind]func() Entity{
	KindServer:              func() Entity { return &Server{} },
	KindBot:                 func() Entity { return &Bot{} },
	KindStats:               func() Entity { return &Stats{} },
	KindConfiguration:       func() Entity { return &Configuration{} },
	KindTrigger:             func() Entity { return &Trigger{} },
	KindEmailConfiguration:  func() Entity { return &EmailConfiguration{} },
	KindDeviceSpecification: func() Entity { return &DeviceSpecification{} },
	KindFilter:              func() Entity { return &Filter{} },
	KindDevice:              func() Entity { return &Device{} },
	KindRepository:          func() Entity { return &Repository{} },
	KindCommit:              func() Entity { return &Commit{} },
	KindContributor:         func() Entity { return &Contributor{} },
	KindCommitChange:        func() Entity { return &CommitChange{} },
	KindRevisionBlueprint:   func() Entity { return &RevisionBlueprint{} },
	KindIntegration:         func() Entity { return &Integration{} },
	KindBuildResultSummary:  func() Entity { return &BuildResultSummary{} },
	KindAssetBundle:         func() Entity { return &AssetBundle{} },
	KindAsset:               func() Entity { return &Asset{} },
	KindIssueBundle:         func() Entity { return &IssueBundle{} },
	KindIssue:               func() Entity { return &Issue{} },
}

// New returns a zero-valued entity of the given kind.
// Returns ErrUnknownKind if the kind is not recognized.
func New(kind Kind) (Entity, error) {
	ctor, ok := constructors[kind]
	if !ok {
		return nil, ErrUnknownKind
	}
	return ctor(), nil
}
