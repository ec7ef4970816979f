/*
store.go - Persistence interface for recorded shifts

PURPOSE:
  Defines the seam between the engine and whatever keeps raw attendance
  around between requests. The engine itself never touches a store; the
  API and CLI load records, run the pure pipeline, and show the result.

REPLACE, DON'T PATCH:
  A stored shift is the raw tuple as captured (or as last corrected).
  Evaluations and totals are never stored: every read recomputes them.
  A manual correction replaces the stored tuple for that date and the
  next report reruns the whole pipeline.

ONE SHIFT PER DATE:
  Put() keys shifts by (entity, date). Storing a second shift for the same
  date replaces the first. The aggregator enforces the same uniqueness for
  ad-hoc batches that never pass through a store.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite
  - generic/store/memory.go: In-memory for testing

SEE ALSO:
  - overtime/engine.go: The pipeline that consumes loaded shifts
*/
package generic

import "context"

// StoredShift is a raw attendance tuple persisted for an entity.
type StoredShift struct {
	EntityID EntityID
	Date     TimePoint
	Start    string
	End      string
	Break    string
	Net      string
	Source   string // "ocr", "manual", "correction", ...
}

// ShiftStore persists raw shifts keyed by entity and date.
type ShiftStore interface {
	// Put inserts or replaces the shift for (EntityID, Date).
	Put(ctx context.Context, s StoredShift) error

	// Get returns the shift for one date, or ErrNotFound.
	Get(ctx context.Context, entityID EntityID, date TimePoint) (StoredShift, error)

	// Range returns shifts in [from, to], ordered by date.
	Range(ctx context.Context, entityID EntityID, from, to TimePoint) ([]StoredShift, error)

	// Delete removes the shift for one date. Returns ErrNotFound if absent.
	Delete(ctx context.Context, entityID EntityID, date TimePoint) error
}
