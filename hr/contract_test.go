package hr_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/workforce/core"
	"github.com/warp/workforce/hr"
)

func intPtr(n int) *int { return &n }

func validContract() hr.Contract {
	return hr.Contract{
		ID:          "ct-1",
		EmployeeID:  "emp-1",
		Kind:        hr.ContractPermanent,
		WeeklyHours: intPtr(40),
		Start:       time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestContract_Validate_WeeklyHoursRule(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*hr.Contract)
		wantErr string // offending field, empty = valid
	}{
		{"permanent with hours", func(c *hr.Contract) {}, ""},
		{"permanent without hours", func(c *hr.Contract) { c.WeeklyHours = nil }, "weekly_hours"},
		{"hours above 40", func(c *hr.Contract) { c.WeeklyHours = intPtr(41) }, "weekly_hours"},
		{"hours below 1", func(c *hr.Contract) { c.WeeklyHours = intPtr(0) }, "weekly_hours"},
		{"freelance without hours", func(c *hr.Contract) { c.Kind = hr.ContractFreelance; c.WeeklyHours = nil }, ""},
		{"occasional without hours", func(c *hr.Contract) { c.Kind = hr.ContractOccasional; c.WeeklyHours = nil }, ""},
		{"freelance with hours", func(c *hr.Contract) { c.Kind = hr.ContractFreelance }, "weekly_hours"},
		{"unknown kind", func(c *hr.Contract) { c.Kind = "gig" }, "kind"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validContract()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, core.ErrValidation)
			var verr *core.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantErr, verr.Field)
		})
	}
}

func TestContract_Validate_DateRange(t *testing.T) {
	c := validContract()
	before := c.Start.AddDate(0, -1, 0)
	c.End = &before

	err := c.Validate()
	require.ErrorIs(t, err, core.ErrValidation)
}

func TestContract_ActiveOn(t *testing.T) {
	c := validContract()
	end := time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC)
	c.End = &end

	assert.False(t, c.ActiveOn(time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC)))
	assert.True(t, c.ActiveOn(c.Start))
	assert.True(t, c.ActiveOn(end))
	assert.False(t, c.ActiveOn(end.AddDate(0, 0, 1)))

	c.End = nil // open-ended
	assert.True(t, c.ActiveOn(time.Date(2030, time.June, 1, 0, 0, 0, 0, time.UTC)))
}

func TestContractKind_Label(t *testing.T) {
	assert.Equal(t, "Permanent", hr.ContractPermanent.Label())
	assert.Equal(t, "Fixed-term", hr.ContractFixedTerm.Label())
	assert.Equal(t, "Unknown", hr.ContractKind("gig").Label())
}

func TestEmployee_Validate_FiscalCode(t *testing.T) {
	e := hr.Employee{
		FirstName:  "Maria",
		LastName:   "Rossi",
		FiscalCode: "RSSMRA85M01H501Z",
		BirthDate:  time.Date(1985, time.August, 1, 0, 0, 0, 0, time.UTC),
		BirthPlace: "Roma",
	}
	require.NoError(t, e.Validate())

	e.FiscalCode = "not-a-code"
	err := e.Validate()
	require.ErrorIs(t, err, core.ErrValidation)
	var verr *core.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "fiscal_code", verr.Field)
}

func TestAbsence_Validate_NationalCodeRequirement(t *testing.T) {
	sick := &hr.AbsenceType{ID: "at-1", Name: "Sick leave", RequiresApproval: false, RequiresNationalCode: true, Code: "MAL"}

	a := hr.Absence{ContractID: "ct-1", TypeID: "at-1", Date: monday2025, FullDay: true}
	err := a.Validate(sick)
	require.ErrorIs(t, err, core.ErrValidation)

	a.NationalCode = "PUK123456"
	assert.NoError(t, a.Validate(sick))
}

func TestPayslip_Validate(t *testing.T) {
	p := hr.Payslip{ContractID: "ct-1", Year: 2025, Month: 6, Name: "June payslip", Kind: hr.PayslipRegular}
	require.NoError(t, p.Validate())

	p.Month = 13
	assert.ErrorIs(t, p.Validate(), core.ErrValidation)

	p.Month = 6
	p.Kind = "receipt"
	assert.ErrorIs(t, p.Validate(), core.ErrValidation)
}
