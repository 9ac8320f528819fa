// Package contacts maintains the participant-id → display-name directory.
// It is read by the router and written by the new-friend handler, so access
// is synchronized.
package contacts

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"wxbot/internal/domain"
)

// Unknown is returned for ids the directory has never seen.
const Unknown = "unknown"

type Directory struct {
	mu     sync.RWMutex
	names  map[string]string
	store  *Store // optional snapshot cache
	logger *slog.Logger
}

func NewDirectory(store *Store, logger *slog.Logger) *Directory {
	return &Directory{
		names:  make(map[string]string),
		store:  store,
		logger: logger,
	}
}

// Bootstrap loads the full contact list from the gateway. Startup aborts if
// this fails; there is no lazy fallback.
func (d *Directory) Bootstrap(ctx context.Context, gw domain.Gateway) error {
	contacts, err := gw.QueryContacts(ctx)
	if err != nil {
		return fmt.Errorf("bootstrap contacts: %w", err)
	}

	d.mu.Lock()
	for _, c := range contacts {
		d.names[c.ID] = c.Name
	}
	total := len(d.names)
	d.mu.Unlock()

	d.logger.Info("contact directory bootstrapped", "contacts", total)

	if d.store != nil {
		if err := d.store.Snapshot(ctx, contacts); err != nil {
			// The cache is best-effort; the in-memory directory is authoritative.
			d.logger.Warn("contact snapshot failed", "err", err)
		}
	}
	return nil
}

// Name returns the display name for id, or Unknown.
func (d *Directory) Name(id string) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if name, ok := d.names[id]; ok {
		return name
	}
	return Unknown
}

// Upsert inserts or overwrites one entry. Idempotent; entries are never
// deleted.
func (d *Directory) Upsert(id, name string) {
	d.mu.Lock()
	d.names[id] = name
	d.mu.Unlock()

	if d.store != nil {
		if err := d.store.Upsert(context.Background(), domain.Contact{ID: id, Name: name}); err != nil {
			d.logger.Warn("contact cache upsert failed", "id", id, "err", err)
		}
	}
}

// Len returns the number of known contacts.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.names)
}
