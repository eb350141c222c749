/*
Package hr implements the HR records domain model.

PURPOSE:

	Employee master data, contract terms, weekly schedules, absence and
	overtime records, and the payslip document registry. The computed parts
	live here too: per-day contracted hours from time-banded schedules
	(schedule.go) and worked/absence hour totals (hours.go).

KEY CONCEPTS IN THIS FILE (employee.go):
  - Employee: identity record, unique fiscal code, optional account link
  - Effective-dated children: Address, IBAN, Email, Phone - all built on
    core.Dated so the principal-uniqueness and validity-window rules are
    shared, not repeated

DELETION POLICY:

	Deleting an Employee cascades to contracts and all effective-dated
	sub-records. The storage layer encodes this per relationship; see
	store/sqlite.

SEE ALSO:
  - contract.go: Contract and collective agreement records
  - core/effective.go: The effective-dating helper
*/
package hr

import (
	"regexp"
	"strings"
	"time"

	"github.com/warp/workforce/core"
)

// =============================================================================
// EMPLOYEE - Master data record
// =============================================================================

// Fiscal codes are only shape-checked; no external registry is consulted.
var fiscalCodeRe = regexp.MustCompile(`^[A-Z]{6}[0-9]{2}[A-Z][0-9]{2}[A-Z][0-9]{3}[A-Z]$`)

// Employee is the master data record for one person on payroll.
type Employee struct {
	ID         string
	FirstName  string
	LastName   string
	FiscalCode string // unique
	BirthDate  time.Time
	BirthPlace string
	Notes      string
	AccountID  *string // optional link to a login account
}

// Validate checks the identity fields.
func (e *Employee) Validate() error {
	if strings.TrimSpace(e.FirstName) == "" {
		return core.Invalid("first_name", "required")
	}
	if strings.TrimSpace(e.LastName) == "" {
		return core.Invalid("last_name", "required")
	}
	if !fiscalCodeRe.MatchString(e.FiscalCode) {
		return core.Invalid("fiscal_code", "malformed fiscal code")
	}
	if e.BirthDate.IsZero() {
		return core.Invalid("birth_date", "required")
	}
	return nil
}

// FullName is the display name, surname last.
func (e *Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

// =============================================================================
// EFFECTIVE-DATED CHILDREN
// =============================================================================

// AddressKind distinguishes legal residence from domicile.
type AddressKind string

const (
	AddressResidence AddressKind = "residence"
	AddressDomicile  AddressKind = "domicile"
)

var addressKindLabels = map[AddressKind]string{
	AddressResidence: "Residence",
	AddressDomicile:  "Domicile",
}

// Label returns the display label for the address kind.
func (k AddressKind) Label() string {
	if l, ok := addressKindLabels[k]; ok {
		return l
	}
	return "Unknown"
}

func (k AddressKind) Valid() bool { _, ok := addressKindLabels[k]; return ok }

// Address is the payload of an effective-dated employee address.
type Address struct {
	Kind       AddressKind
	Country    string
	Region     string
	Province   string
	City       string
	PostalCode string
	Street     string
	Number     string
}

func (a Address) Validate() error {
	if !a.Kind.Valid() {
		return core.Invalid("kind", "must be residence or domicile")
	}
	if strings.TrimSpace(a.City) == "" {
		return core.Invalid("city", "required")
	}
	if strings.TrimSpace(a.Street) == "" {
		return core.Invalid("street", "required")
	}
	return nil
}

// IBAN is the payload of an effective-dated bank account record.
type IBAN struct {
	IBAN string
}

func (i IBAN) Validate() error {
	if len(strings.TrimSpace(i.IBAN)) < 15 {
		return core.Invalid("iban", "too short")
	}
	return nil
}

// Email is the payload of an employee email record.
type Email struct {
	Email string
}

func (e Email) Validate() error {
	if !strings.Contains(e.Email, "@") {
		return core.Invalid("email", "malformed address")
	}
	return nil
}

// Phone is the payload of an employee mobile number record.
type Phone struct {
	Number string
}

func (p Phone) Validate() error {
	if strings.TrimSpace(p.Number) == "" {
		return core.Invalid("number", "required")
	}
	return nil
}

// Concrete effective-dated record types. Email and Phone carry the
// principal+active uniqueness rule; Address and IBAN use the validity
// window only.
type (
	EmployeeAddress = core.Dated[Address]
	EmployeeIBAN    = core.Dated[IBAN]
	EmployeeEmail   = core.Dated[Email]
	EmployeePhone   = core.Dated[Phone]
)
