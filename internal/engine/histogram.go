package engine

// Histogram is the per-week bucketed count estimator used to approximate
// rank for users outside the top-K. Each counted user occupies exactly one
// bucket; the counts sum to the number of distinct users who finalized at
// least one day in the week.
type Histogram struct {
	// Edges is a copy of the configured bucket lower-edges, strictly
	// increasing. A user's bucket is the highest edge <= their points.
	Edges  []int64
	Counts []int64
}

func NewHistogram(edges []int64) *Histogram {
	h := &Histogram{
		Edges:  make([]int64, len(edges)),
		Counts: make([]int64, len(edges)),
	}
	copy(h.Edges, edges)
	return h
}

// BucketFor returns the last index i with Edges[i] <= points, or 0 if none.
func (h *Histogram) BucketFor(points int64) int {
	idx := 0
	for i, e := range h.Edges {
		if e <= points {
			idx = i
		}
	}
	return idx
}

// Move reseats a user at the bucket for points. When hasOld is true the
// previous bucket is decremented first, so the user is counted exactly once.
// Returns the new bucket index.
func (h *Histogram) Move(oldIdx int, hasOld bool, points int64) int {
	if hasOld && oldIdx >= 0 && oldIdx < len(h.Counts) && h.Counts[oldIdx] > 0 {
		h.Counts[oldIdx]--
	}
	idx := h.BucketFor(points)
	h.Counts[idx]++
	return idx
}

// Total is the number of counted users.
func (h *Histogram) Total() int64 {
	var total int64
	for _, c := range h.Counts {
		total += c
	}
	return total
}

// PercentileBps returns floor(10000 * usersInStrictlyLowerBuckets / total)
// for a user sitting in bucket, or 0 when nothing is counted yet.
func (h *Histogram) PercentileBps(bucket int) int64 {
	total := h.Total()
	if total == 0 {
		return 0
	}
	var below int64
	for i := 0; i < bucket && i < len(h.Counts); i++ {
		below += h.Counts[i]
	}
	return below * 10_000 / total
}
