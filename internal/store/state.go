package store

import (
	"context"       // Context for queries
	"encoding/json" // Document encoding
	"errors"        // Error inspection
	"fmt"           // Error wrapping
	"time"          // Update timestamps

	"restaurant_system/internal/apperr" // Error kinds
	"restaurant_system/internal/domain" // State document

	"github.com/sirupsen/logrus" // Logging
	"gorm.io/gorm"               // GORM ORM library
	"gorm.io/gorm/clause"        // Row locking and upserts
)

// AnyVersion disables the version check of Mutate
const AnyVersion int64 = -1

// Snapshot is the state document together with its write version
type Snapshot struct {
	State     domain.AppState `json:"state"`     // Normalized document
	Version   int64           `json:"version"`   // Starts at 1, bumped on every write
	UpdatedAt time.Time       `json:"updatedAt"` // Time of the last write
}

// Mutator edits the current document in place. Returning false skips the write.
type Mutator func(current *domain.AppState) (bool, error)

// StateStore is the get/replace contract of the singleton state document.
// Callers depend on this interface so the single-row layout can be swapped.
type StateStore interface {
	Get(ctx context.Context) (*Snapshot, error)
	Replace(ctx context.Context, candidate domain.AppState) (*Snapshot, error)
	Mutate(ctx context.Context, expectVersion int64, fn Mutator) (*Snapshot, error)
}

// GormStateStore keeps the document as JSON in a single row
type GormStateStore struct {
	db  *gorm.DB         // Database handle
	now func() time.Time // Clock for UpdatedAt
}

// NewGormStateStore creates a state store on db
func NewGormStateStore(db *gorm.DB) *GormStateStore {
	return &GormStateStore{db: db, now: time.Now}
}

// Get returns the stored document, seeding defaults when the row is missing or unreadable
func (s *GormStateStore) Get(ctx context.Context) (*Snapshot, error) {
	var snap *Snapshot
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		snap, err = s.load(tx, false)
		return err
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// Replace normalizes candidate and stores it as the whole document. Last writer wins.
func (s *GormStateStore) Replace(ctx context.Context, candidate domain.AppState) (*Snapshot, error) {
	return s.Mutate(ctx, AnyVersion, func(current *domain.AppState) (bool, error) {
		*current = candidate
		return true, nil
	})
}

// Mutate runs a read-modify-replace cycle in one transaction.
// With expectVersion other than AnyVersion the write fails with Conflict when the stored version differs.
func (s *GormStateStore) Mutate(ctx context.Context, expectVersion int64, fn Mutator) (*Snapshot, error) {
	var snap *Snapshot
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.load(tx, true)
		if err != nil {
			return err
		}
		if expectVersion != AnyVersion && current.Version != expectVersion {
			return apperr.Conflict(fmt.Sprintf("State has changed (version %d, expected %d). Reload and try again.", current.Version, expectVersion))
		}
		next := current.State
		changed, err := fn(&next)
		if err != nil {
			return err
		}
		if !changed {
			snap = current // Nothing to write
			return nil
		}
		snap, err = s.save(tx, next.Normalized(), current.Version+1)
		return err
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// load reads the row, creating or repairing it with defaults as needed
func (s *GormStateStore) load(tx *gorm.DB, forUpdate bool) (*Snapshot, error) {
	q := tx
	if forUpdate && tx.Dialector.Name() != "sqlite" { // sqlite serializes writers on its own
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var rec domain.StateRecord
	err := q.First(&rec, domain.StateRecordID).Error // Singleton row
	if errors.Is(err, gorm.ErrRecordNotFound) {
		logrus.Info("State document missing, seeding defaults")
		return s.save(tx, domain.DefaultState(), 1)
	}
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	state, err := domain.ParseState([]byte(rec.Data))
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"version": rec.Version,
			"error":   err.Error(),
		}).Warn("Stored state is corrupt, reseeding defaults")
		return s.save(tx, domain.DefaultState(), rec.Version+1)
	}
	return &Snapshot{State: state.Normalized(), Version: rec.Version, UpdatedAt: rec.UpdatedAt}, nil
}

func (s *GormStateStore) save(tx *gorm.DB, state domain.AppState, version int64) (*Snapshot, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	rec := domain.StateRecord{
		ID:        domain.StateRecordID,
		Data:      string(data),
		Version:   version,
		UpdatedAt: s.now().UTC(),
	}
	err = tx.Clauses(clause.OnConflict{ // Insert or overwrite the singleton
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "version", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return nil, fmt.Errorf("save state: %w", err)
	}
	return &Snapshot{State: state, Version: version, UpdatedAt: rec.UpdatedAt}, nil
}
