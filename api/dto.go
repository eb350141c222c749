/*
dto.go - Request and response payloads

Dates travel as YYYY-MM-DD strings, timestamps as RFC3339. Computed
hour totals are serialized as decimal strings so clients never see
binary floating point artifacts.
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/workforce/accounts"
	"github.com/warp/workforce/core"
	"github.com/warp/workforce/hr"
)

const dateLayout = "2006-01-02"

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func parseDateField(s, field string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, core.Invalid(field, "expected YYYY-MM-DD")
	}
	return t, nil
}

func parseOptionalDate(s *string, field string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := parseDateField(*s, field)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseOptionalTimestamp(s *string, field string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return nil, core.Invalid(field, "expected RFC3339 timestamp")
	}
	return &t, nil
}

func formatDate(t time.Time) string { return t.Format(dateLayout) }

func formatOptionalDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatDate(*t)
	return &s
}

func formatOptionalTimestamp(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

// =============================================================================
// EMPLOYEES
// =============================================================================

type EmployeeDTO struct {
	ID         string  `json:"id"`
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	FiscalCode string  `json:"fiscal_code"`
	BirthDate  string  `json:"birth_date"`
	BirthPlace string  `json:"birth_place"`
	Notes      string  `json:"notes,omitempty"`
	AccountID  *string `json:"account_id,omitempty"`
}

type EmployeeRequest struct {
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	FiscalCode string  `json:"fiscal_code"`
	BirthDate  string  `json:"birth_date"`
	BirthPlace string  `json:"birth_place"`
	Notes      string  `json:"notes"`
	AccountID  *string `json:"account_id"`
}

func toEmployeeDTO(e *hr.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:         e.ID,
		FirstName:  e.FirstName,
		LastName:   e.LastName,
		FiscalCode: e.FiscalCode,
		BirthDate:  formatDate(e.BirthDate),
		BirthPlace: e.BirthPlace,
		Notes:      e.Notes,
		AccountID:  e.AccountID,
	}
}

// =============================================================================
// EFFECTIVE-DATED CONTACT RECORDS
// =============================================================================

// datedFields is the common slice of every effective-dated record DTO.
type datedFields struct {
	ID        string  `json:"id"`
	ValidFrom string  `json:"valid_from"`
	ValidTo   *string `json:"valid_to,omitempty"`
	Principal bool    `json:"principal"`
	Active    bool    `json:"active"`
}

type datedRequest struct {
	ValidFrom string  `json:"valid_from"`
	ValidTo   *string `json:"valid_to"`
	Principal bool    `json:"principal"`
	Active    bool    `json:"active"`
}

func (r datedRequest) window() (time.Time, *time.Time, error) {
	from, err := parseDateField(r.ValidFrom, "valid_from")
	if err != nil {
		return time.Time{}, nil, err
	}
	to, err := parseOptionalDate(r.ValidTo, "valid_to")
	if err != nil {
		return time.Time{}, nil, err
	}
	return from, to, nil
}

func toDatedFields[T any](rec core.Dated[T]) datedFields {
	return datedFields{
		ID:        rec.ID,
		ValidFrom: formatDate(rec.ValidFrom),
		ValidTo:   formatOptionalDate(rec.ValidTo),
		Principal: rec.Principal,
		Active:    rec.Active,
	}
}

type AddressDTO struct {
	datedFields
	Kind       string `json:"kind"`
	Country    string `json:"country"`
	Region     string `json:"region"`
	Province   string `json:"province"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Street     string `json:"street"`
	Number     string `json:"number"`
}

type AddressRequest struct {
	datedRequest
	Kind       string `json:"kind"`
	Country    string `json:"country"`
	Region     string `json:"region"`
	Province   string `json:"province"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Street     string `json:"street"`
	Number     string `json:"number"`
}

func toAddressDTO(rec hr.EmployeeAddress) AddressDTO {
	return AddressDTO{
		datedFields: toDatedFields(rec),
		Kind:        string(rec.Payload.Kind),
		Country:     rec.Payload.Country,
		Region:      rec.Payload.Region,
		Province:    rec.Payload.Province,
		City:        rec.Payload.City,
		PostalCode:  rec.Payload.PostalCode,
		Street:      rec.Payload.Street,
		Number:      rec.Payload.Number,
	}
}

type IBANDTO struct {
	datedFields
	IBAN string `json:"iban"`
}

type IBANRequest struct {
	datedRequest
	IBAN string `json:"iban"`
}

type EmailDTO struct {
	datedFields
	Email string `json:"email"`
}

type EmailRequest struct {
	datedRequest
	Email string `json:"email"`
}

type PhoneDTO struct {
	datedFields
	Number string `json:"number"`
}

type PhoneRequest struct {
	datedRequest
	Number string `json:"number"`
}

// =============================================================================
// AGREEMENTS AND CONTRACTS
// =============================================================================

type AgreementDTO struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	AnnualPayments int    `json:"annual_payments"`
}

type AgreementRequest struct {
	Name           string `json:"name"`
	AnnualPayments int    `json:"annual_payments"`
}

type ContractDTO struct {
	ID          string  `json:"id"`
	EmployeeID  string  `json:"employee_id"`
	Kind        string  `json:"kind"`
	KindLabel   string  `json:"kind_label"`
	WeeklyHours *int    `json:"weekly_hours,omitempty"`
	Start       string  `json:"start"`
	End         *string `json:"end,omitempty"`
	Notes       string  `json:"notes,omitempty"`
	AgreementID *string `json:"agreement_id,omitempty"`
}

type ContractRequest struct {
	Kind        string  `json:"kind"`
	WeeklyHours *int    `json:"weekly_hours"`
	Start       string  `json:"start"`
	End         *string `json:"end"`
	Notes       string  `json:"notes"`
	AgreementID *string `json:"agreement_id"`
}

func toContractDTO(c *hr.Contract) ContractDTO {
	return ContractDTO{
		ID:          c.ID,
		EmployeeID:  c.EmployeeID,
		Kind:        string(c.Kind),
		KindLabel:   c.Kind.Label(),
		WeeklyHours: c.WeeklyHours,
		Start:       formatDate(c.Start),
		End:         formatOptionalDate(c.End),
		Notes:       c.Notes,
		AgreementID: c.AgreementID,
	}
}

// =============================================================================
// SCHEDULES
// =============================================================================

type BandDTO struct {
	Start *string `json:"start"`
	End   *string `json:"end"`
}

type ScheduleEntryDTO struct {
	ID         string    `json:"id"`
	ContractID string    `json:"contract_id"`
	Weekday    int       `json:"weekday"`
	Bands      []BandDTO `json:"bands"`
	DayHours   string    `json:"day_hours"`
}

type ScheduleEntryRequest struct {
	Weekday int       `json:"weekday"`
	Bands   []BandDTO `json:"bands"`
}

func toScheduleEntryDTO(e *hr.ScheduleEntry) ScheduleEntryDTO {
	bands := make([]BandDTO, hr.BandsPerDay)
	for i, b := range e.Bands {
		bands[i] = BandDTO{Start: formatTimeOfDay(b.Start), End: formatTimeOfDay(b.End)}
	}
	return ScheduleEntryDTO{
		ID:         e.ID,
		ContractID: e.ContractID,
		Weekday:    e.Weekday,
		Bands:      bands,
		DayHours:   e.DayHours().String(),
	}
}

func formatTimeOfDay(t *core.TimeOfDay) *string {
	if t == nil {
		return nil
	}
	s := t.String()
	return &s
}

func parseBands(in []BandDTO) ([hr.BandsPerDay]hr.Band, error) {
	var bands [hr.BandsPerDay]hr.Band
	if len(in) > hr.BandsPerDay {
		return bands, core.Invalid("bands", "at most three bands per day")
	}
	for i, b := range in {
		start, err := parseBandEndpoint(b.Start)
		if err != nil {
			return bands, err
		}
		end, err := parseBandEndpoint(b.End)
		if err != nil {
			return bands, err
		}
		bands[i] = hr.Band{Start: start, End: end}
	}
	return bands, nil
}

func parseBandEndpoint(s *string) (*core.TimeOfDay, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := core.ParseTimeOfDay(*s)
	if err != nil {
		return nil, err
	}
	return t.Ptr(), nil
}

// =============================================================================
// ABSENCES AND OVERTIME
// =============================================================================

type AbsenceTypeDTO struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	RequiresApproval     bool   `json:"requires_approval"`
	RequiresNationalCode bool   `json:"requires_national_code"`
	Code                 string `json:"code"`
}

type AbsenceTypeRequest struct {
	Name                 string `json:"name"`
	RequiresApproval     bool   `json:"requires_approval"`
	RequiresNationalCode bool   `json:"requires_national_code"`
	Code                 string `json:"code"`
}

func toAbsenceTypeDTO(t *hr.AbsenceType) AbsenceTypeDTO {
	return AbsenceTypeDTO{
		ID:                   t.ID,
		Name:                 t.Name,
		RequiresApproval:     t.RequiresApproval,
		RequiresNationalCode: t.RequiresNationalCode,
		Code:                 t.Code,
	}
}

type AbsenceDTO struct {
	ID           string  `json:"id"`
	ContractID   string  `json:"contract_id"`
	TypeID       string  `json:"type_id"`
	Date         string  `json:"date"`
	FullDay      bool    `json:"full_day"`
	Start        *string `json:"start,omitempty"`
	End          *string `json:"end,omitempty"`
	NationalCode string  `json:"national_code,omitempty"`
	SubmittedBy  string  `json:"submitted_by,omitempty"`
	Approved     bool    `json:"approved"`
	ApprovedBy   string  `json:"approved_by,omitempty"`
	Hours        string  `json:"hours"`
}

type AbsenceRequest struct {
	TypeID       string  `json:"type_id"`
	Date         string  `json:"date"`
	FullDay      bool    `json:"full_day"`
	Start        *string `json:"start"`
	End          *string `json:"end"`
	NationalCode string  `json:"national_code"`
}

func toAbsenceDTO(a *hr.Absence, hours decimal.Decimal) AbsenceDTO {
	return AbsenceDTO{
		ID:           a.ID,
		ContractID:   a.ContractID,
		TypeID:       a.TypeID,
		Date:         formatDate(a.Date),
		FullDay:      a.FullDay,
		Start:        formatOptionalTimestamp(a.Start),
		End:          formatOptionalTimestamp(a.End),
		NationalCode: a.NationalCode,
		SubmittedBy:  a.SubmittedBy,
		Approved:     a.Approved,
		ApprovedBy:   a.ApprovedBy,
		Hours:        hours.String(),
	}
}

func toOvertimeDTO(o *hr.Overtime, hours decimal.Decimal) OvertimeDTO {
	return OvertimeDTO{
		ID:          o.ID,
		ContractID:  o.ContractID,
		Start:       o.Start.UTC().Format(time.RFC3339),
		End:         o.End.UTC().Format(time.RFC3339),
		RequestedBy: o.RequestedBy,
		Hours:       hours.String(),
	}
}

type OvertimeDTO struct {
	ID          string `json:"id"`
	ContractID  string `json:"contract_id"`
	Start       string `json:"start"`
	End         string `json:"end"`
	RequestedBy string `json:"requested_by,omitempty"`
	Hours       string `json:"hours"`
}

type OvertimeRequest struct {
	Start       string `json:"start"`
	End         string `json:"end"`
	RequestedBy string `json:"requested_by"`
}

// =============================================================================
// PAYSLIPS
// =============================================================================

type PayslipDTO struct {
	ID         string `json:"id"`
	ContractID string `json:"contract_id"`
	Year       int    `json:"year"`
	Month      int    `json:"month"`
	Name       string `json:"name"`
	Kind       string `json:"kind"`
	KindLabel  string `json:"kind_label"`
	FilePath   string `json:"file_path"`
	UploadedAt string `json:"uploaded_at"`
}

func toPayslipDTO(p *hr.Payslip) PayslipDTO {
	return PayslipDTO{
		ID:         p.ID,
		ContractID: p.ContractID,
		Year:       p.Year,
		Month:      p.Month,
		Name:       p.Name,
		Kind:       string(p.Kind),
		KindLabel:  p.Kind.Label(),
		FilePath:   p.FilePath,
		UploadedAt: p.UploadedAt.UTC().Format(time.RFC3339),
	}
}

// =============================================================================
// HOURS SUMMARY
// =============================================================================

type HoursSummaryDTO struct {
	ContractID      string `json:"contract_id"`
	From            string `json:"from"`
	To              string `json:"to"`
	ContractedHours string `json:"contracted_hours"`
	AbsenceHours    string `json:"absence_hours"`
	OvertimeHours   string `json:"overtime_hours"`
}

// =============================================================================
// ACCOUNTS
// =============================================================================

type AccountDTO struct {
	ID         string  `json:"id"`
	Username   string  `json:"username"`
	Email      string  `json:"email"`
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	Active     bool    `json:"active"`
	Staff      bool    `json:"staff"`
	Superuser  bool    `json:"superuser"`
	DateJoined string  `json:"date_joined"`
	LastLogin  *string `json:"last_login,omitempty"`
}

func toAccountDTO(a *accounts.Account) AccountDTO {
	return AccountDTO{
		ID:         a.ID,
		Username:   a.Username,
		Email:      a.Email,
		FirstName:  a.FirstName,
		LastName:   a.LastName,
		Active:     a.Active,
		Staff:      a.Staff,
		Superuser:  a.Superuser,
		DateJoined: a.DateJoined.UTC().Format(time.RFC3339),
		LastLogin:  formatOptionalTimestamp(a.LastLogin),
	}
}

type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Confirm   string `json:"confirm"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type SetPasswordRequest struct {
	Password string `json:"password"`
	Confirm  string `json:"confirm"`
}

type ProfilePatchRequest struct {
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}
