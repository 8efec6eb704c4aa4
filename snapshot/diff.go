package snapshot

import (
	"cmp"
	"slices"

	"github.com/hupe1980/memdebug"
	"github.com/hupe1980/memdebug/report"
)

// Delta is the change of one call site between two snapshots.
type Delta struct {
	Site        memdebug.CallSite `json:"site"`
	BeforeCount int               `json:"before_count"`
	AfterCount  int               `json:"after_count"`
	BeforeBytes int               `json:"before_bytes"`
	AfterBytes  int               `json:"after_bytes"`
}

// Count returns the change in live allocations.
func (d Delta) Count() int { return d.AfterCount - d.BeforeCount }

// Bytes returns the change in live bytes.
func (d Delta) Bytes() int { return d.AfterBytes - d.BeforeBytes }

// Diff compares two snapshots per call site. Sites without change are
// omitted. The result is ordered by byte growth, largest first.
func Diff(before, after *Snapshot) []Delta {
	bySite := make(map[memdebug.CallSite]*Delta)
	get := func(site memdebug.CallSite) *Delta {
		d, ok := bySite[site]
		if !ok {
			d = &Delta{Site: site}
			bySite[site] = d
		}
		return d
	}

	for _, g := range groups(before) {
		d := get(g.Site)
		d.BeforeCount, d.BeforeBytes = g.Count, g.Bytes
	}
	for _, g := range groups(after) {
		d := get(g.Site)
		d.AfterCount, d.AfterBytes = g.Count, g.Bytes
	}

	out := make([]Delta, 0, len(bySite))
	for _, d := range bySite {
		if d.Count() != 0 || d.Bytes() != 0 {
			out = append(out, *d)
		}
	}
	slices.SortFunc(out, func(a, b Delta) int {
		return cmp.Or(
			cmp.Compare(b.Bytes(), a.Bytes()),
			cmp.Compare(b.Count(), a.Count()),
			cmp.Compare(a.Site.File, b.Site.File),
			cmp.Compare(a.Site.Line, b.Site.Line),
			cmp.Compare(a.Site.Function, b.Site.Function),
		)
	})
	return out
}

func groups(s *Snapshot) []report.Group {
	recs := s.Records()
	report.Sort(recs)
	return report.Groups(recs)
}
