package jobs

import (
	"sync"
	"time"
)

const repliedTTL = 24 * time.Hour

// repliedCache tracks comment ids the engine already answered, so overlapping
// watermark windows don't trigger duplicate replies. It is process-local and
// best-effort: running more than one instance against the same accounts can
// still double-reply.
type repliedCache struct {
	mu      sync.Mutex
	entries map[string]time.Time
}

func newRepliedCache() *repliedCache {
	return &repliedCache{entries: make(map[string]time.Time)}
}

func (c *repliedCache) hasReplied(commentID string, now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	repliedAt, ok := c.entries[commentID]
	if !ok {
		return false
	}
	if now.Sub(repliedAt) >= repliedTTL {
		delete(c.entries, commentID)
		return false
	}
	return true
}

func (c *repliedCache) markReplied(commentID string, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[commentID] = now
}
