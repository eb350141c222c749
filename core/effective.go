/*
effective.go - Effective-dating helper for owner-scoped records

PURPOSE:

	Several employee sub-records (addresses, IBANs, emails, phone numbers)
	follow the same pattern: each belongs to an owner, carries an optional
	validity window, and at most ONE record per owner may be the principal
	active one at a time. This file implements that pattern once, generically,
	instead of repeating it per entity.

KEY CONCEPTS:

	Dated[T]:
	  Wraps a payload with (OwnerID, ValidFrom, ValidTo?, Principal, Active).
	  ValidTo == nil means open-ended ("current").

	Principal uniqueness:
	  On insert or update of a record with Principal && Active, any OTHER
	  principal+active record for the same owner is a conflict. The incoming
	  record is REJECTED - the old principal is never auto-demoted. Callers
	  must demote explicitly before promoting a new one.

	Validity windows:
	  Advisory only. Overlapping windows for the same owner are permitted;
	  ValidOn answers point-in-time membership.

CONCURRENCY:

	This check is advisory at the application layer. The storage layer
	re-verifies it with a conditional unique index, which is the
	authoritative guard against racing principal-flag writes.

SEE ALSO:
  - hr/employee.go: The concrete effective-dated entities
  - store/sqlite/sqlite.go: The conditional unique indexes
*/
package core

import "time"

// =============================================================================
// DATED RECORD - Generic effective-dated wrapper
// =============================================================================

// Dated wraps a payload with ownership, validity window and principal flags.
type Dated[T any] struct {
	ID        string
	OwnerID   string
	ValidFrom time.Time
	ValidTo   *time.Time // nil = open-ended
	Principal bool
	Active    bool
	Payload   T
}

// ValidOn reports whether the record's validity window contains date.
// An open-ended record (ValidTo == nil) contains every date from ValidFrom on.
func (d Dated[T]) ValidOn(date time.Time) bool {
	if date.Before(d.ValidFrom) {
		return false
	}
	if d.ValidTo != nil && date.After(*d.ValidTo) {
		return false
	}
	return true
}

// IsPrincipal reports whether the record is the principal active one.
func (d Dated[T]) IsPrincipal() bool { return d.Principal && d.Active }

// =============================================================================
// PRINCIPAL UNIQUENESS CHECK
// =============================================================================

// CheckPrincipal validates candidate against the owner's existing records.
// It fails with a UniquenessError when candidate is principal+active and a
// DIFFERENT record for the same owner already is. The entity name is used
// in the error so callers surface which kind of record conflicted.
func CheckPrincipal[T any](entity string, existing []Dated[T], candidate Dated[T]) error {
	if !candidate.IsPrincipal() {
		return nil
	}
	for _, rec := range existing {
		if rec.ID == candidate.ID || rec.OwnerID != candidate.OwnerID {
			continue
		}
		if rec.IsPrincipal() {
			return &UniquenessError{
				Entity: entity,
				Key:    "owner " + candidate.OwnerID + " already has a principal active record",
			}
		}
	}
	return nil
}

// CurrentPrincipal returns the principal active record for the owner, or nil.
func CurrentPrincipal[T any](records []Dated[T], ownerID string) *Dated[T] {
	for i := range records {
		if records[i].OwnerID == ownerID && records[i].IsPrincipal() {
			return &records[i]
		}
	}
	return nil
}

// ValidAt filters records to those whose window contains date.
func ValidAt[T any](records []Dated[T], date time.Time) []Dated[T] {
	var out []Dated[T]
	for _, rec := range records {
		if rec.ValidOn(date) {
			out = append(out, rec)
		}
	}
	return out
}
