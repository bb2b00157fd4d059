package resolver

import (
	"github.com/gowarcraft/casc/archiveindex"
)

// location pairs a resolved index entry with the CKey whose candidate EKey
// it was found under, so results can be reported back keyed by CKey even
// though the index only knows EKeys.
type location struct {
	cKey  [16]byte
	entry archiveindex.Entry
}

// archiveGroup is one archive's worth of locations to slice out of a single
// fetched blob.
type archiveGroup struct {
	archiveHash [16]byte
	locations   []location
}

// groupByArchive buckets locations by their archive hash in a single pass.
func groupByArchive(locs []location) []archiveGroup {
	groups := make(map[[16]byte]*archiveGroup, len(locs)/4+1)
	order := make([][16]byte, 0, len(locs)/4+1)
	for _, l := range locs {
		g, ok := groups[l.entry.ArchiveHash]
		if !ok {
			g = &archiveGroup{archiveHash: l.entry.ArchiveHash}
			groups[l.entry.ArchiveHash] = g
			order = append(order, l.entry.ArchiveHash)
		}
		g.locations = append(g.locations, l)
	}

	out := make([]archiveGroup, 0, len(order))
	for _, k := range order {
		out = append(out, *groups[k])
	}
	return out
}
