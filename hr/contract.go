/*
contract.go - Employment contracts and collective agreements

PURPOSE:

	A Contract governs an employee's schedule and hours over a date range.
	It owns the weekly schedule entries, absences, overtime records and
	payslip documents (all cascade on contract delete).

CONTRACT KINDS:

	permanent, fixed_term, substitution: weekly hours required (1-40)
	occasional, freelance:               weekly hours not applicable

SEE ALSO:
  - schedule.go: Per-weekday contracted hours
  - absence.go: Absence and overtime records
*/
package hr

import (
	"strings"
	"time"

	"github.com/warp/workforce/core"
)

// =============================================================================
// CONTRACT KIND - Enum with display labels
// =============================================================================

type ContractKind string

const (
	ContractPermanent    ContractKind = "permanent"
	ContractFixedTerm    ContractKind = "fixed_term"
	ContractSubstitution ContractKind = "substitution"
	ContractOccasional   ContractKind = "occasional"
	ContractFreelance    ContractKind = "freelance"
)

var contractKindLabels = map[ContractKind]string{
	ContractPermanent:    "Permanent",
	ContractFixedTerm:    "Fixed-term",
	ContractSubstitution: "Substitution",
	ContractOccasional:   "Occasional",
	ContractFreelance:    "Freelance",
}

// Label returns the display label for the contract kind.
func (k ContractKind) Label() string {
	if l, ok := contractKindLabels[k]; ok {
		return l
	}
	return "Unknown"
}

func (k ContractKind) Valid() bool { _, ok := contractKindLabels[k]; return ok }

// HoursExempt reports whether the kind carries no nominal weekly hours.
func (k ContractKind) HoursExempt() bool {
	return k == ContractOccasional || k == ContractFreelance
}

// =============================================================================
// COLLECTIVE AGREEMENT
// =============================================================================

// CollectiveAgreement is a national labor agreement a contract can reference.
type CollectiveAgreement struct {
	ID             string
	Name           string // unique
	AnnualPayments int    // monthly salary installments per year, typically 13
}

func (a *CollectiveAgreement) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return core.Invalid("name", "required")
	}
	if a.AnnualPayments < 12 || a.AnnualPayments > 16 {
		return core.Invalid("annual_payments", "must be between 12 and 16")
	}
	return nil
}

// =============================================================================
// CONTRACT
// =============================================================================

// Contract is an employment agreement for one employee over a date range.
type Contract struct {
	ID          string
	EmployeeID  string
	Kind        ContractKind
	WeeklyHours *int // nil for occasional/freelance
	Start       time.Time
	End         *time.Time // nil = open-ended
	Notes       string
	AgreementID *string // optional collective-agreement reference
}

// Validate checks the kind, the weekly-hours rule and the date range.
func (c *Contract) Validate() error {
	if !c.Kind.Valid() {
		return core.Invalid("kind", "unknown contract kind")
	}
	if c.Start.IsZero() {
		return core.Invalid("start", "required")
	}
	if c.End != nil && c.End.Before(c.Start) {
		return core.Invalid("end", "must not precede start")
	}
	if c.Kind.HoursExempt() {
		if c.WeeklyHours != nil {
			return core.Invalid("weekly_hours", "not applicable to "+string(c.Kind)+" contracts")
		}
		return nil
	}
	if c.WeeklyHours == nil {
		return core.Invalid("weekly_hours", "required for "+string(c.Kind)+" contracts")
	}
	if *c.WeeklyHours < 1 || *c.WeeklyHours > 40 {
		return core.Invalid("weekly_hours", "must be between 1 and 40")
	}
	return nil
}

// ActiveOn reports whether the contract's date range contains date.
func (c *Contract) ActiveOn(date time.Time) bool {
	if date.Before(c.Start) {
		return false
	}
	return c.End == nil || !date.After(*c.End)
}
