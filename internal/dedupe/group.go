// Package dedupe groups fingerprinted files and prunes the duplicates.
package dedupe

// Group is the set of paths sharing one fingerprint. Paths keep their
// discovery order; Paths[0] is the member a prune keeps.
type Group struct {
	Fingerprint string
	Paths       []string
}

// Index accumulates (fingerprint, path) pairs. It preserves the order
// paths were added within each fingerprint and the order fingerprints were
// first seen, so repeated runs over the same input produce the same
// groups.
type Index struct {
	order []string
	byFP  map[string][]string
}

// NewIndex returns an empty Index.
func NewIndex() *Index {
	return &Index{byFP: make(map[string][]string)}
}

// Add records that path has the given fingerprint.
func (ix *Index) Add(fingerprint, path string) {
	if _, ok := ix.byFP[fingerprint]; !ok {
		ix.order = append(ix.order, fingerprint)
	}
	ix.byFP[fingerprint] = append(ix.byFP[fingerprint], path)
}

// Len returns the number of distinct fingerprints recorded.
func (ix *Index) Len() int { return len(ix.byFP) }

// Groups returns the duplicate groups: fingerprints shared by at least two
// paths, in first-seen order.
func (ix *Index) Groups() []Group {
	var groups []Group
	for _, fp := range ix.order {
		paths := ix.byFP[fp]
		if len(paths) < 2 {
			continue
		}
		groups = append(groups, Group{Fingerprint: fp, Paths: paths})
	}
	return groups
}
