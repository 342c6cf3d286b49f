package viewer

import (
	"sync"
	"time"
)

// Ledger tracks recently applied globalPurchaseIds so a cart command that
// reaches the viewer twice is applied once. Entries expire after the TTL;
// pruning happens on every incoming message, so the ledger stays small.
type Ledger struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]time.Time
}

func NewLedger(ttl time.Duration) *Ledger {
	return &Ledger{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]time.Time),
	}
}

// Seen records the id and reports whether it was already present and
// unexpired. The first caller for a given id gets false.
func (l *Ledger) Seen(id string) bool {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	insertedAt, ok := l.entries[id]
	if ok && now.Sub(insertedAt) < l.ttl {
		return true
	}

	l.entries[id] = now
	return false
}

// Prune drops expired entries and returns how many were removed.
func (l *Ledger) Prune() int {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for id, insertedAt := range l.entries {
		if now.Sub(insertedAt) >= l.ttl {
			delete(l.entries, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of live entries.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
