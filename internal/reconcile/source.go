package reconcile

import (
	"errors"
	"fmt"
	"sort"

	"github.com/mesh-intelligence/botsync/pkg/snapshot"
	"github.com/mesh-intelligence/botsync/pkg/types"
)

var errNoRevision = errors.New("blueprint location has no revision")

// revisionBlueprint walks a blueprint's location map: for every repository
// identifier it resolves the repository, then the commit the location
// names, then the one RevisionBlueprint joining that commit to in.
func (r *Reconciler) revisionBlueprint(in *types.Integration, bp *snapshot.RevisionBlueprint) {
	r.blueprintRepositories(bp)
	if bp.Locations == nil {
		return
	}

	revisions := make(map[string]types.RevisionLocation, len(bp.Locations))
	for _, repoID := range sortedKeys(bp.Locations) {
		loc := bp.Locations[repoID]
		var rl types.RevisionLocation
		set(&rl.Revision, loc.Revision)
		set(&rl.Branch, loc.Branch)
		revisions[repoID] = rl

		repo := r.repository(repoID, bp)
		if repo == nil {
			continue
		}
		if rl.Revision == "" {
			r.skip(types.KindCommit, repoID, errNoRevision)
			continue
		}
		c := r.commitRef(repo, rl.Revision)
		if c == nil {
			continue
		}
		r.ensureRevisionBlueprint(in, c)
	}
	in.Revisions = revisions
}

// blueprintRepositories resolves every repository a blueprint names.
func (r *Reconciler) blueprintRepositories(bp *snapshot.RevisionBlueprint) []*types.Repository {
	var out []*types.Repository
	for _, rr := range bp.RemoteRepositories {
		if repo := r.repository(rr.Identifier, bp); repo != nil {
			out = append(out, repo)
		}
	}
	return out
}

// repository upserts a repository and copies what bp says about it.
func (r *Reconciler) repository(key string, bp *snapshot.RevisionBlueprint) *types.Repository {
	if key == "" {
		r.skip(types.KindRepository, "", errMissingKey)
		return nil
	}
	e, err := r.upsert(types.KindRepository, key, nil)
	if err != nil {
		r.skip(types.KindRepository, key, err)
		return nil
	}
	repo := e.(*types.Repository)
	if bp == nil {
		return repo
	}
	for _, rr := range bp.RemoteRepositories {
		if rr.Identifier == key {
			set(&repo.URL, rr.URL)
			set(&repo.System, rr.System)
		}
	}
	if loc, ok := bp.Locations[key]; ok {
		set(&repo.Branch, loc.Branch)
	}
	if path, ok := bp.WorkingCopyPaths[key]; ok {
		repo.WorkingCopyPath = path
	}
	return repo
}

// commitRef resolves a commit by hash, creating it under repo when it has
// not been seen. A hash already stored under another repository is the
// same commit and is returned as is.
func (r *Reconciler) commitRef(repo *types.Repository, hash string) *types.Commit {
	if e := r.store.Find(types.KindCommit, hash); e != nil {
		return e.(*types.Commit)
	}
	e, err := r.store.Create(types.KindCommit, hash, repo.LocalID)
	if err != nil {
		r.skip(types.KindCommit, hash, err)
		return nil
	}
	return e.(*types.Commit)
}

// ensureRevisionBlueprint creates the RevisionBlueprint joining c to in
// unless one exists. A second attempt for the same pair is a no-op.
func (r *Reconciler) ensureRevisionBlueprint(in *types.Integration, c *types.Commit) {
	for _, id := range r.store.LinkedFrom(types.LinkRevisionOf, c.LocalID) {
		if e := r.store.Get(id); e != nil && e.Base().OwnerID == in.LocalID {
			return
		}
	}
	e, err := r.store.Create(types.KindRevisionBlueprint, "", in.LocalID)
	if err != nil {
		r.skip(types.KindRevisionBlueprint, c.Key, err)
		return
	}
	if err := r.store.Link(types.LinkRevisionOf, e.Base().LocalID, c.LocalID); err != nil {
		r.store.Delete(e)
		r.skip(types.KindRevisionBlueprint, c.Key, err)
	}
}

// Commits reconciles the commit listing of an integration. Each record
// groups commits by repository identifier. Every listed commit is upserted
// and joined to in. Blueprints of in whose commit is neither listed nor
// named by the integration's own revisions are deleted, and so are commits
// that this leaves without any blueprint.
func (r *Reconciler) Commits(in *types.Integration, records []snapshot.IntegrationCommits) {
	if in == nil || !r.live(in) {
		r.missingContext(types.KindCommit, "", "integration not in store")
		return
	}
	if records == nil {
		return
	}

	keep := make(map[string]bool)
	for _, loc := range in.Revisions {
		if loc.Revision != "" {
			keep[loc.Revision] = true
		}
	}
	for _, rec := range records {
		if rec.IntegrationID != "" && rec.IntegrationID != in.Key {
			r.skip(types.KindCommit, rec.ID, fmt.Errorf("record belongs to integration %q: %w", rec.IntegrationID, types.ErrInvalidOwner))
			continue
		}
		for _, repoID := range sortedKeys(rec.Commits) {
			repo := r.repository(repoID, nil)
			if repo == nil {
				continue
			}
			for i := range rec.Commits[repoID] {
				if c := r.commit(repo, &rec.Commits[repoID][i]); c != nil {
					keep[c.Key] = true
					r.ensureRevisionBlueprint(in, c)
				}
			}
		}
	}

	for _, bp := range r.store.Children(in.LocalID, types.KindRevisionBlueprint) {
		for _, cid := range r.store.Linked(types.LinkRevisionOf, bp.Base().LocalID) {
			c := r.store.Get(cid)
			if c == nil || keep[c.Base().Key] {
				continue
			}
			r.store.Delete(bp)
			if len(r.store.LinkedFrom(types.LinkRevisionOf, cid)) == 0 {
				r.store.Delete(c)
			}
		}
	}
}

// commit upserts one commit with its contributor and changes. A commit
// that names a repository other than the one it is listed under is
// skipped.
func (r *Reconciler) commit(repo *types.Repository, snap *snapshot.Commit) *types.Commit {
	if snap.Hash == "" {
		r.skip(types.KindCommit, "", errMissingKey)
		return nil
	}
	if id := snap.RepositoryID; id != nil && *id != "" && *id != repo.Key {
		r.skip(types.KindCommit, snap.Hash, fmt.Errorf("commit names repository %q, listed under %q: %w", *id, repo.Key, types.ErrInvalidOwner))
		return nil
	}
	c := r.commitRef(repo, snap.Hash)
	if c == nil {
		return nil
	}
	set(&c.Message, snap.Message)
	setTime(&c.Timestamp, snap.Timestamp)
	set(&c.IsMerge, snap.IsMerge)

	if cs := snap.Contributor; cs != nil {
		e, err := r.singleton(c, types.KindContributor)
		if err != nil {
			r.skip(types.KindContributor, c.Key, err)
		} else {
			who := e.(*types.Contributor)
			set(&who.Name, cs.Name)
			set(&who.DisplayName, cs.DisplayName)
			setSlice(&who.Emails, cs.Emails)
		}
	}

	if snap.Changes != nil {
		r.clear(c, types.KindCommitChange)
		for i, ch := range snap.Changes {
			e, err := r.store.Create(types.KindCommitChange, "", c.LocalID)
			if err != nil {
				r.skip(types.KindCommitChange, c.Key, err)
				continue
			}
			change := e.(*types.CommitChange)
			change.Ordinal = i
			change.FilePath = ch.FilePath
			set(&change.Status, ch.Status)
		}
	}
	return c
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
