package resolver

// versionQueue walks a package's candidate values from most- to
// least-preferred: version indices newest first, with ABSENT (when still in
// the domain) either ahead of them or after them, as newVersionQueue
// decides. It is the unit of value-selection the solver advances on
// backtrack.
//
// Grounded directly on the teacher's version_queue.go, which walks a
// package's candidate versions in preference order and advances past a
// candidate once it's been tried and rejected.
type versionQueue struct {
	pkgName string
	prefs   []int // candidate values in preference order; versions highest (newest) first
	pos     int   // index into prefs of the current candidate, or len(prefs) if exhausted
}

// newVersionQueue builds a queue over the version indices (and, if present,
// ABSENT) still present in dom.
//
// Required (top-level) variables never carry ABSENT in their domain, so
// preferAbsentFirst is irrelevant for them; they are always offered
// newest-to-oldest, which is the first level of the branch-and-bound
// objective. Induced variables offer ABSENT first when preferAbsentFirst is
// set — "fewest induced packages" is the search's second-level preference —
// falling back to newest-to-oldest only once absence has been tried and
// found wanting.
func newVersionQueue(pkgName string, dom bitDomain, nVersions int, preferAbsentFirst bool) *versionQueue {
	q := &versionQueue{pkgName: pkgName}
	if preferAbsentFirst && dom.Has(absent) {
		q.prefs = append(q.prefs, absent)
	}
	for i := nVersions - 1; i >= 0; i-- {
		if dom.Has(i) {
			q.prefs = append(q.prefs, i)
		}
	}
	if !preferAbsentFirst && dom.Has(absent) {
		q.prefs = append(q.prefs, absent)
	}
	return q
}

// current returns the candidate the queue is presently offering, and
// whether one remains.
func (q *versionQueue) current() (int, bool) {
	if q.pos >= len(q.prefs) {
		return 0, false
	}
	return q.prefs[q.pos], true
}

// advance moves past the current candidate to the next-most-preferred one.
func (q *versionQueue) advance() {
	q.pos++
}
