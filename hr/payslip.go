/*
payslip.go - Payslip document registry

PURPOSE:

	Tracks payment documents issued under a contract, one per
	(contract, year, month, kind). The file itself lives in an opaque
	blob store; this record only keeps the handle.
*/
package hr

import (
	"context"
	"strings"
	"time"

	"github.com/warp/workforce/core"
)

// =============================================================================
// PAYSLIP KIND - Enum with display labels
// =============================================================================

type PayslipKind string

const (
	PayslipRegular          PayslipKind = "payslip"
	PayslipThirteenth       PayslipKind = "thirteenth"
	PayslipFourteenth       PayslipKind = "fourteenth"
	PayslipSeverance        PayslipKind = "severance"
	PayslipSeveranceAdvance PayslipKind = "severance_advance"
	PayslipInvoice          PayslipKind = "invoice"
	PayslipOther            PayslipKind = "other"
)

var payslipKindLabels = map[PayslipKind]string{
	PayslipRegular:          "Payslip",
	PayslipThirteenth:       "Thirteenth salary",
	PayslipFourteenth:       "Fourteenth salary",
	PayslipSeverance:        "Severance",
	PayslipSeveranceAdvance: "Severance advance",
	PayslipInvoice:          "Invoice",
	PayslipOther:            "Other",
}

// Label returns the display label for the document kind.
func (k PayslipKind) Label() string {
	if l, ok := payslipKindLabels[k]; ok {
		return l
	}
	return "Unknown"
}

func (k PayslipKind) Valid() bool { _, ok := payslipKindLabels[k]; return ok }

// =============================================================================
// PAYSLIP RECORD
// =============================================================================

// Payslip registers one payment document under a contract.
// UploadedAt is set by the storage layer at creation.
type Payslip struct {
	ID         string
	ContractID string
	Year       int
	Month      int // 1-12
	Name       string
	Kind       PayslipKind
	FilePath   string // opaque blob-store handle
	UploadedAt time.Time
}

func (p *Payslip) Validate() error {
	if p.Year < 1900 || p.Year > 2200 {
		return core.Invalid("year", "out of range")
	}
	if p.Month < 1 || p.Month > 12 {
		return core.Invalid("month", "must be between 1 and 12")
	}
	if strings.TrimSpace(p.Name) == "" {
		return core.Invalid("name", "required")
	}
	if !p.Kind.Valid() {
		return core.Invalid("kind", "unknown document kind")
	}
	return nil
}

// =============================================================================
// BLOB STORE - Opaque document storage boundary
// =============================================================================

// BlobStore persists document bytes and returns an opaque handle.
// The registry never interprets the handle beyond storing it.
type BlobStore interface {
	Store(ctx context.Context, data []byte, suggestedPath string) (string, error)
}
