package chunk

// Queue is a bounded BFS work queue over script URLs, owned by the
// per-target orchestrator and drained before extraction begins
// (spec.md §9, "Chunk discovery as a work queue").
type Queue struct {
	maxDepth int
	items    []Item
}

// Item is one pending chunk URL discovered at a given depth and referrer.
type Item struct {
	URL         string
	ReferrerURL string
	Depth       int
}

// NewQueue returns a Queue bounded to maxDepth hops from the initial
// (depth-0) captures.
func NewQueue(maxDepth int) *Queue {
	return &Queue{maxDepth: maxDepth}
}

// Push enqueues discovered URLs at depth+1, dropping any that would
// exceed maxDepth (spec.md P6: chunk-discovery depth ≤ 3).
func (q *Queue) Push(referrerURL string, depth int, urls []string) {
	if depth+1 > q.maxDepth {
		return
	}
	for _, u := range urls {
		q.items = append(q.items, Item{URL: u, ReferrerURL: referrerURL, Depth: depth + 1})
	}
}

// Pop removes and returns the next item, FIFO, and whether one was
// available.
func (q *Queue) Pop() (Item, bool) {
	if len(q.items) == 0 {
		return Item{}, false
	}
	item := q.items[0]
	q.items = q.items[1:]
	return item, true
}

// Len reports the number of items still pending.
func (q *Queue) Len() int { return len(q.items) }
