package images

import (
	"context"

	"autoblogger/internal/ports"
)

// DefaultLedgerCap bounds the used-image history installation-wide.
const DefaultLedgerCap = 200

// Ledger is the process-wide bounded set of image source URLs already
// sideloaded. Membership is best-effort string equality, used only to bias
// search results away from repeats; callers tolerate occasional duplicates.
//
// The ledger is read, appended and persisted without a lock. Overlapping
// scans could race on it, but the trigger model runs at most one scan at a
// time, so this stays a documented limitation rather than a mutex.
type Ledger struct {
	cap   int
	urls  []string
	seen  map[string]struct{}
	store ports.LedgerStore
}

// NewLedger builds a ledger with the given capacity; zero or negative means
// DefaultLedgerCap. The store is optional.
func NewLedger(capacity int, store ports.LedgerStore) *Ledger {
	if capacity <= 0 {
		capacity = DefaultLedgerCap
	}
	return &Ledger{
		cap:   capacity,
		seen:  map[string]struct{}{},
		store: store,
	}
}

// Load restores persisted history. Call once at startup.
func (l *Ledger) Load(ctx context.Context) error {
	if l.store == nil {
		return nil
	}
	urls, err := l.store.LoadUsedImages(ctx)
	if err != nil {
		return err
	}
	l.urls = l.urls[:0]
	l.seen = map[string]struct{}{}
	for _, u := range urls {
		l.append(u)
	}
	return nil
}

// Mark records a URL as used, evicting the oldest entry past capacity, and
// best-effort persists the new snapshot.
func (l *Ledger) Mark(ctx context.Context, url string) {
	if url == "" {
		return
	}
	l.append(url)
	if l.store != nil {
		_ = l.store.SaveUsedImages(ctx, l.Snapshot())
	}
}

// Contains reports whether the URL is in the recent-use window.
func (l *Ledger) Contains(url string) bool {
	_, ok := l.seen[url]
	return ok
}

// Len returns the current history size.
func (l *Ledger) Len() int {
	return len(l.urls)
}

// Snapshot copies the history, oldest first.
func (l *Ledger) Snapshot() []string {
	return append([]string(nil), l.urls...)
}

func (l *Ledger) append(url string) {
	if _, ok := l.seen[url]; ok {
		return
	}
	l.urls = append(l.urls, url)
	l.seen[url] = struct{}{}
	if len(l.urls) > l.cap {
		delete(l.seen, l.urls[0])
		l.urls = l.urls[1:]
	}
}
