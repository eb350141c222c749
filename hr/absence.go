/*
absence.go - Absence catalog, absence records and overtime

PURPOSE:

	AbsenceType is the catalog (vacation, sick leave, ...) with per-type
	flags: whether manager approval is required and whether an external
	national code (e.g. a sickness certificate id) must accompany records.
	Absence is a single calendar day, either full-day or a partial interval.
	Overtime is a plain timestamp interval.

DELETION POLICY:

	An AbsenceType is never deleted while absences reference it - delete is
	blocked, not cascaded. The storage layer encodes this as RESTRICT.

SEE ALSO:
  - hours.go: Turns these records into decimal hours
*/
package hr

import (
	"strings"
	"time"

	"github.com/warp/workforce/core"
)

// =============================================================================
// ABSENCE TYPE - Catalog entry
// =============================================================================

// AbsenceType is a catalog entry describing one kind of absence.
type AbsenceType struct {
	ID                   string
	Name                 string // unique
	RequiresApproval     bool
	RequiresNationalCode bool
	Code                 string // short absence code, e.g. "A", "MAL"
}

func (t *AbsenceType) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return core.Invalid("name", "required")
	}
	if t.Code == "" || len(t.Code) > 5 {
		return core.Invalid("code", "must be 1-5 characters")
	}
	return nil
}

// =============================================================================
// ABSENCE - One calendar day, full or partial
// =============================================================================

// Absence records one day of absence under a contract.
// Full-day absences derive their hours from the contracted schedule;
// partial absences carry explicit start/end timestamps.
type Absence struct {
	ID           string
	ContractID   string
	TypeID       string
	Date         time.Time
	FullDay      bool
	Start        *time.Time // set only for partial absences
	End          *time.Time
	NationalCode string // external code, required by some types
	SubmittedBy  string // account id of the submitting user
	Approved     bool
	ApprovedBy   string // account id, set on approval
}

// Validate checks the record against its catalog type.
func (a *Absence) Validate(typ *AbsenceType) error {
	if a.Date.IsZero() {
		return core.Invalid("date", "required")
	}
	if !a.FullDay {
		if a.Start == nil || a.End == nil {
			return core.Invalid("start", "partial absences need start and end")
		}
		if !a.End.After(*a.Start) {
			return core.Invalid("end", "must be after start")
		}
	}
	if typ != nil && typ.RequiresNationalCode && strings.TrimSpace(a.NationalCode) == "" {
		return core.Invalid("national_code", "required for absence type "+typ.Name)
	}
	return nil
}

// Weekday is the ISO weekday (1=Monday .. 7=Sunday) of the absence date,
// or zero when no date is set.
func (a *Absence) Weekday() int {
	if a.Date.IsZero() {
		return 0
	}
	return core.ISOWeekday(a.Date)
}

// =============================================================================
// OVERTIME
// =============================================================================

// Overtime records extra hours worked under a contract.
type Overtime struct {
	ID          string
	ContractID  string
	Start       time.Time
	End         time.Time
	RequestedBy string // account id of the requesting user
}

func (o *Overtime) Validate() error {
	if o.Start.IsZero() || o.End.IsZero() {
		return core.Invalid("start", "start and end are required")
	}
	if !o.End.After(o.Start) {
		return core.Invalid("end", "must be after start")
	}
	return nil
}
