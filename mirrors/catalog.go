// Copyright (c) 2019-2021 The mirrorselect authors
// Licensed under the MIT license

package mirrors

import (
	"sync"

	"github.com/op/go-logging"
	"github.com/pkg/errors"
)

var (
	log = logging.MustGetLogger("main")

	// ErrInvalidRecord is returned when a refresh batch contains
	// a malformed mirror record. The whole batch is rejected.
	ErrInvalidRecord = errors.New("invalid mirror record")
)

// Catalog holds the current set of known mirrors. Readers get an
// immutable snapshot while the ingestion job replaces the whole set
// on each refresh cycle.
type Catalog struct {
	mutex    sync.RWMutex
	snapshot Mirrors
}

// NewCatalog returns an empty catalog
func NewCatalog() *Catalog {
	return &Catalog{}
}

// Refresh validates the given records and atomically replaces the
// active snapshot with them. On error the previous snapshot remains
// active, a refresh is never partially applied.
func (c *Catalog) Refresh(records Mirrors) error {
	seen := make(map[string]struct{}, len(records))
	snapshot := make(Mirrors, len(records))
	for i, m := range records {
		if m.Name == "" {
			return errors.Wrapf(ErrInvalidRecord, "record %d has no hostname", i)
		}
		if _, dup := seen[m.Name]; dup {
			return errors.Wrapf(ErrInvalidRecord, "duplicate hostname %s", m.Name)
		}
		seen[m.Name] = struct{}{}
		if !m.HasAddress() {
			return errors.Wrapf(ErrInvalidRecord, "mirror %s has no address", m.Name)
		}
		if m.CountryCode == "" {
			return errors.Wrapf(ErrInvalidRecord, "mirror %s has no country code", m.Name)
		}
		m.Prepare()
		snapshot[i] = m
	}

	c.mutex.Lock()
	c.snapshot = snapshot
	c.mutex.Unlock()

	log.Debug("Mirror catalog refreshed, %d mirrors", len(snapshot))
	return nil
}

// Snapshot returns the currently active set of mirrors. The returned
// slice is shared between readers and must not be modified.
func (c *Catalog) Snapshot() Mirrors {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.snapshot
}

// Size returns the number of mirrors in the active snapshot
func (c *Catalog) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.snapshot)
}
