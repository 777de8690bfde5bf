package reconcile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mesh-intelligence/botsync/internal/graph"
	"github.com/mesh-intelligence/botsync/pkg/types"
)

// Report summarizes what one reconciliation pass changed. Updated counts
// are not tracked; the store detects scalar updates when it saves.
type Report struct {
	Created      map[types.Kind]int
	Deleted      map[types.Kind]int
	LinksAdded   int
	LinksRemoved int
	Anomalies    []Anomaly
}

// Summarize builds a report from a graph change set and the anomalies of
// the pass that produced it.
func Summarize(c graph.Changes, anomalies []Anomaly) Report {
	rep := Report{
		Created:      make(map[types.Kind]int),
		Deleted:      make(map[types.Kind]int),
		LinksAdded:   len(c.AddedLinks),
		LinksRemoved: len(c.RemovedLinks),
		Anomalies:    anomalies,
	}
	for _, e := range c.Created {
		rep.Created[e.Kind()]++
	}
	for _, e := range c.Deleted {
		rep.Deleted[e.Kind()]++
	}
	return rep
}

// Empty reports whether the pass changed nothing structurally.
func (r Report) Empty() bool {
	return len(r.Created) == 0 && len(r.Deleted) == 0 && r.LinksAdded == 0 && r.LinksRemoved == 0
}

// String renders the report on one line, kinds in name order.
func (r Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "created %s; deleted %s; links +%d -%d",
		countList(r.Created), countList(r.Deleted), r.LinksAdded, r.LinksRemoved)
	if n := len(r.Anomalies); n > 0 {
		fmt.Fprintf(&b, "; %d skipped", n)
	}
	return b.String()
}

func countList(m map[types.Kind]int) string {
	if len(m) == 0 {
		return "none"
	}
	kinds := make([]string, 0, len(m))
	for k := range m {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	parts := make([]string, len(kinds))
	for i, k := range kinds {
		parts[i] = fmt.Sprintf("%s=%d", k, m[types.Kind(k)])
	}
	return strings.Join(parts, " ")
}
