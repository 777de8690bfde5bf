package reconcile

import (
	"github.com/mesh-intelligence/botsync/pkg/snapshot"
	"github.com/mesh-intelligence/botsync/pkg/types"
)

// Issues reconciles the issue listing of an integration. Each bucket the
// listing carries replaces that bucket's issues; buckets it omits keep
// theirs.
func (r *Reconciler) Issues(in *types.Integration, issues *snapshot.IssueSet) {
	if in == nil || !r.live(in) {
		r.missingContext(types.KindIssue, "", "integration not in store")
		return
	}
	if issues == nil {
		return
	}
	e, err := r.singleton(in, types.KindIssueBundle)
	if err != nil {
		r.skip(types.KindIssueBundle, in.Key, err)
		return
	}
	bundle := e.(*types.IssueBundle)

	buckets := issues.Buckets()
	for _, b := range types.Buckets() {
		list, ok := buckets[b]
		if !ok {
			continue
		}
		r.replaceBucket(bundle, b, list)
	}
}

func (r *Reconciler) replaceBucket(bundle *types.IssueBundle, b types.Bucket, snaps []snapshot.Issue) {
	for _, e := range r.store.Children(bundle.LocalID, types.KindIssue) {
		if e.(*types.Issue).Bucket == b {
			r.store.Delete(e)
		}
	}
	for i, snap := range snaps {
		e, err := r.store.Create(types.KindIssue, "", bundle.LocalID)
		if err != nil {
			r.skip(types.KindIssue, snap.ID, err)
			continue
		}
		is := e.(*types.Issue)
		is.Bucket = b
		is.Ordinal = i
		is.IssueID = snap.ID
		set(&is.Rev, snap.Rev)
		set(&is.Message, snap.Message)
		set(&is.Type, snap.Type)
		set(&is.IssueType, snap.IssueType)
		set(&is.Target, snap.Target)
		set(&is.DocumentFilePath, snap.DocumentFilePath)
		set(&is.LineNumber, snap.LineNumber)
		set(&is.Age, snap.Age)
		set(&is.Status, snap.Status)
		set(&is.FixItType, snap.FixItType)
	}
}
