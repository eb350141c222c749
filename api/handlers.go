/*
handlers.go - HTTP handlers for the HR records API

PURPOSE:

	Exposes employee master data, contracts, weekly schedules, absences,
	overtime and payslips over REST. Handlers parse and validate input,
	delegate to the domain packages, and map the error taxonomy onto
	HTTP statuses.

ENDPOINTS:

	Employees:
	  GET    /api/employees                     List employees
	  POST   /api/employees                     Create employee
	  GET    /api/employees/{id}                Get employee
	  PUT    /api/employees/{id}                Update employee
	  DELETE /api/employees/{id}                Delete employee (cascades)
	  GET/POST /api/employees/{id}/addresses    Effective-dated addresses
	  GET/POST /api/employees/{id}/ibans        Effective-dated IBANs
	  GET/POST /api/employees/{id}/emails       Effective-dated emails
	  GET/POST /api/employees/{id}/phones       Effective-dated phones
	  GET/POST /api/employees/{id}/contracts    Contracts

	Contracts:
	  GET/PUT/DELETE /api/contracts/{id}
	  GET/POST /api/contracts/{id}/schedule     Weekly schedule entries
	  GET/POST /api/contracts/{id}/absences     Absences (?from=&to=)
	  GET/POST /api/contracts/{id}/overtime     Overtime records
	  GET/POST /api/contracts/{id}/payslips     Payslip registry (upload)
	  GET      /api/contracts/{id}/hours        Absence/overtime totals

	Catalogs:
	  GET/POST /api/agreements, /api/absence-types (+ item routes)

	Absences:
	  POST /api/absences/{id}/approve           Staff approval

ERROR HANDLING:

	Domain errors map onto status codes:
	- NotFound    -> 404
	- Forbidden   -> 403
	- Validation  -> 400
	- Uniqueness  -> 409
	- Constraint  -> 409
	Everything else is a 500 with the detail logged, not leaked.

SEE ALSO:
  - users.go: Account and authentication endpoints
  - dto.go: Request/response payloads
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/warp/workforce/accounts"
	"github.com/warp/workforce/core"
	"github.com/warp/workforce/hr"
	"github.com/warp/workforce/store/sqlite"
)

// maxUploadBytes caps payslip uploads at 10 MiB.
const maxUploadBytes = 10 << 20

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    *sqlite.Store
	Accounts *accounts.AdminService
	Blobs    hr.BlobStore
	Hours    *hr.HoursCalculator
	Tokens   *TokenIssuer
	Log      zerolog.Logger
}

// NewHandler wires the handler; the hours calculator reads schedules
// straight from the store.
func NewHandler(store *sqlite.Store, accountSvc *accounts.AdminService, blobs hr.BlobStore, tokens *TokenIssuer, log zerolog.Logger) *Handler {
	return &Handler{
		Store:    store,
		Accounts: accountSvc,
		Blobs:    blobs,
		Hours:    hr.NewHoursCalculator(store),
		Tokens:   tokens,
		Log:      log,
	}
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps the error taxonomy onto HTTP statuses. Internal
// errors are logged with detail but answered opaquely.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case core.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Not found", nil)
	case errors.Is(err, core.ErrForbidden):
		writeError(w, http.StatusForbidden, "Forbidden", err)
	case errors.Is(err, core.ErrValidation):
		writeError(w, http.StatusBadRequest, "Validation failed", err)
	case errors.Is(err, core.ErrUniqueness):
		writeError(w, http.StatusConflict, "Duplicate record", err)
	case errors.Is(err, core.ErrConstraint):
		writeError(w, http.StatusConflict, "Operation violates a constraint", err)
	default:
		h.Log.Error().Err(err).Msg("internal error")
		writeError(w, http.StatusInternalServerError, "Internal error", nil)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	return true
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	dtos := make([]EmployeeDTO, 0, len(employees))
	for i := range employees {
		dtos = append(dtos, toEmployeeDTO(&employees[i]))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req EmployeeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	emp, err := employeeFromRequest(uuid.NewString(), req)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp))
}

func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	emp, err := h.Store.FindEmployee(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(emp))
}

func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.Store.FindEmployee(r.Context(), id); err != nil {
		h.writeDomainError(w, err)
		return
	}
	var req EmployeeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	emp, err := employeeFromRequest(id, req)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(emp))
}

func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteEmployee(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func employeeFromRequest(id string, req EmployeeRequest) (*hr.Employee, error) {
	birth, err := parseDateField(req.BirthDate, "birth_date")
	if err != nil {
		return nil, err
	}
	emp := &hr.Employee{
		ID:         id,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		FiscalCode: req.FiscalCode,
		BirthDate:  birth,
		BirthPlace: req.BirthPlace,
		Notes:      req.Notes,
		AccountID:  req.AccountID,
	}
	if err := emp.Validate(); err != nil {
		return nil, err
	}
	return emp, nil
}

// requireEmployee resolves the {id} route param to an existing employee
// so nested routes 404 on unknown owners instead of writing orphans.
func (h *Handler) requireEmployee(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if _, err := h.Store.FindEmployee(r.Context(), id); err != nil {
		h.writeDomainError(w, err)
		return "", false
	}
	return id, true
}

func (h *Handler) requireContract(w http.ResponseWriter, r *http.Request) (*hr.Contract, bool) {
	ct, err := h.Store.FindContract(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err)
		return nil, false
	}
	return ct, true
}

// =============================================================================
// EFFECTIVE-DATED CONTACT RECORDS
// =============================================================================

func (h *Handler) ListAddresses(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := h.requireEmployee(w, r)
	if !ok {
		return
	}
	recs, err := h.Store.ListAddresses(r.Context(), employeeID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	dtos := make([]AddressDTO, 0, len(recs))
	for _, rec := range recs {
		dtos = append(dtos, toAddressDTO(rec))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateAddress(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := h.requireEmployee(w, r)
	if !ok {
		return
	}
	var req AddressRequest
	if !decodeBody(w, r, &req) {
		return
	}
	from, to, err := req.window()
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	rec := hr.EmployeeAddress{
		ID: uuid.NewString(), OwnerID: employeeID,
		ValidFrom: from, ValidTo: to,
		Principal: req.Principal, Active: req.Active,
		Payload: hr.Address{
			Kind:       hr.AddressKind(req.Kind),
			Country:    req.Country,
			Region:     req.Region,
			Province:   req.Province,
			City:       req.City,
			PostalCode: req.PostalCode,
			Street:     req.Street,
			Number:     req.Number,
		},
	}
	if err := rec.Payload.Validate(); err != nil {
		h.writeDomainError(w, err)
		return
	}
	if err := h.Store.SaveAddress(r.Context(), &rec); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAddressDTO(rec))
}

func (h *Handler) DeleteAddress(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteAddress(r.Context(), chi.URLParam(r, "recordID")); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListIBANs(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := h.requireEmployee(w, r)
	if !ok {
		return
	}
	recs, err := h.Store.ListIBANs(r.Context(), employeeID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	dtos := make([]IBANDTO, 0, len(recs))
	for _, rec := range recs {
		dtos = append(dtos, IBANDTO{datedFields: toDatedFields(rec), IBAN: rec.Payload.IBAN})
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateIBAN(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := h.requireEmployee(w, r)
	if !ok {
		return
	}
	var req IBANRequest
	if !decodeBody(w, r, &req) {
		return
	}
	from, to, err := req.window()
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	rec := hr.EmployeeIBAN{
		ID: uuid.NewString(), OwnerID: employeeID,
		ValidFrom: from, ValidTo: to,
		Principal: req.Principal, Active: req.Active,
		Payload: hr.IBAN{IBAN: req.IBAN},
	}
	if err := rec.Payload.Validate(); err != nil {
		h.writeDomainError(w, err)
		return
	}
	if err := h.Store.SaveIBAN(r.Context(), &rec); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, IBANDTO{datedFields: toDatedFields(rec), IBAN: rec.Payload.IBAN})
}

func (h *Handler) DeleteIBAN(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteIBAN(r.Context(), chi.URLParam(r, "recordID")); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListEmails(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := h.requireEmployee(w, r)
	if !ok {
		return
	}
	recs, err := h.Store.ListEmails(r.Context(), employeeID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	dtos := make([]EmailDTO, 0, len(recs))
	for _, rec := range recs {
		dtos = append(dtos, EmailDTO{datedFields: toDatedFields(rec), Email: rec.Payload.Email})
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateEmail(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := h.requireEmployee(w, r)
	if !ok {
		return
	}
	var req EmailRequest
	if !decodeBody(w, r, &req) {
		return
	}
	from, to, err := req.window()
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	rec := hr.EmployeeEmail{
		ID: uuid.NewString(), OwnerID: employeeID,
		ValidFrom: from, ValidTo: to,
		Principal: req.Principal, Active: req.Active,
		Payload: hr.Email{Email: req.Email},
	}
	if err := rec.Payload.Validate(); err != nil {
		h.writeDomainError(w, err)
		return
	}
	if err := h.Store.SaveEmail(r.Context(), &rec); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, EmailDTO{datedFields: toDatedFields(rec), Email: rec.Payload.Email})
}

func (h *Handler) DeleteEmail(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteEmail(r.Context(), chi.URLParam(r, "recordID")); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListPhones(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := h.requireEmployee(w, r)
	if !ok {
		return
	}
	recs, err := h.Store.ListPhones(r.Context(), employeeID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	dtos := make([]PhoneDTO, 0, len(recs))
	for _, rec := range recs {
		dtos = append(dtos, PhoneDTO{datedFields: toDatedFields(rec), Number: rec.Payload.Number})
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreatePhone(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := h.requireEmployee(w, r)
	if !ok {
		return
	}
	var req PhoneRequest
	if !decodeBody(w, r, &req) {
		return
	}
	from, to, err := req.window()
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	rec := hr.EmployeePhone{
		ID: uuid.NewString(), OwnerID: employeeID,
		ValidFrom: from, ValidTo: to,
		Principal: req.Principal, Active: req.Active,
		Payload: hr.Phone{Number: req.Number},
	}
	if err := rec.Payload.Validate(); err != nil {
		h.writeDomainError(w, err)
		return
	}
	if err := h.Store.SavePhone(r.Context(), &rec); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, PhoneDTO{datedFields: toDatedFields(rec), Number: rec.Payload.Number})
}

func (h *Handler) DeletePhone(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeletePhone(r.Context(), chi.URLParam(r, "recordID")); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// COLLECTIVE AGREEMENTS
// =============================================================================

func (h *Handler) ListAgreements(w http.ResponseWriter, r *http.Request) {
	ags, err := h.Store.ListAgreements(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	dtos := make([]AgreementDTO, 0, len(ags))
	for _, a := range ags {
		dtos = append(dtos, AgreementDTO{ID: a.ID, Name: a.Name, AnnualPayments: a.AnnualPayments})
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateAgreement(w http.ResponseWriter, r *http.Request) {
	h.saveAgreement(w, r, uuid.NewString(), http.StatusCreated)
}

func (h *Handler) UpdateAgreement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.Store.FindAgreement(r.Context(), id); err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.saveAgreement(w, r, id, http.StatusOK)
}

func (h *Handler) saveAgreement(w http.ResponseWriter, r *http.Request, id string, status int) {
	var req AgreementRequest
	if !decodeBody(w, r, &req) {
		return
	}
	a := &hr.CollectiveAgreement{ID: id, Name: req.Name, AnnualPayments: req.AnnualPayments}
	if err := a.Validate(); err != nil {
		h.writeDomainError(w, err)
		return
	}
	if err := h.Store.SaveAgreement(r.Context(), a); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, status, AgreementDTO{ID: a.ID, Name: a.Name, AnnualPayments: a.AnnualPayments})
}

func (h *Handler) GetAgreement(w http.ResponseWriter, r *http.Request) {
	a, err := h.Store.FindAgreement(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AgreementDTO{ID: a.ID, Name: a.Name, AnnualPayments: a.AnnualPayments})
}

func (h *Handler) DeleteAgreement(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteAgreement(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// CONTRACTS
// =============================================================================

func (h *Handler) ListContracts(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := h.requireEmployee(w, r)
	if !ok {
		return
	}
	contracts, err := h.Store.ListContracts(r.Context(), employeeID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	dtos := make([]ContractDTO, 0, len(contracts))
	for i := range contracts {
		dtos = append(dtos, toContractDTO(&contracts[i]))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateContract(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := h.requireEmployee(w, r)
	if !ok {
		return
	}
	ct, err := h.contractFromRequest(w, r, uuid.NewString(), employeeID)
	if err != nil {
		return
	}
	if err := h.Store.SaveContract(r.Context(), ct); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toContractDTO(ct))
}

func (h *Handler) GetContract(w http.ResponseWriter, r *http.Request) {
	ct, ok := h.requireContract(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toContractDTO(ct))
}

func (h *Handler) UpdateContract(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.requireContract(w, r)
	if !ok {
		return
	}
	ct, err := h.contractFromRequest(w, r, existing.ID, existing.EmployeeID)
	if err != nil {
		return
	}
	if err := h.Store.SaveContract(r.Context(), ct); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toContractDTO(ct))
}

func (h *Handler) DeleteContract(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteContract(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// contractFromRequest decodes, parses and validates a contract body.
// Errors are already written to the response when non-nil.
func (h *Handler) contractFromRequest(w http.ResponseWriter, r *http.Request, id, employeeID string) (*hr.Contract, error) {
	var req ContractRequest
	if !decodeBody(w, r, &req) {
		return nil, errors.New("bad body")
	}
	start, err := parseDateField(req.Start, "start")
	if err != nil {
		h.writeDomainError(w, err)
		return nil, err
	}
	end, err := parseOptionalDate(req.End, "end")
	if err != nil {
		h.writeDomainError(w, err)
		return nil, err
	}
	ct := &hr.Contract{
		ID:          id,
		EmployeeID:  employeeID,
		Kind:        hr.ContractKind(req.Kind),
		WeeklyHours: req.WeeklyHours,
		Start:       start,
		End:         end,
		Notes:       req.Notes,
		AgreementID: req.AgreementID,
	}
	if err := ct.Validate(); err != nil {
		h.writeDomainError(w, err)
		return nil, err
	}
	return ct, nil
}

// =============================================================================
// WEEKLY SCHEDULES
// =============================================================================

func (h *Handler) ListSchedule(w http.ResponseWriter, r *http.Request) {
	ct, ok := h.requireContract(w, r)
	if !ok {
		return
	}
	entries, err := h.Store.ListScheduleEntries(r.Context(), ct.ID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	dtos := make([]ScheduleEntryDTO, 0, len(entries))
	for i := range entries {
		dtos = append(dtos, toScheduleEntryDTO(&entries[i]))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// UpsertScheduleEntry creates or replaces the schedule for one weekday.
// A weekday already covered by a different entry is a conflict.
func (h *Handler) UpsertScheduleEntry(w http.ResponseWriter, r *http.Request) {
	ct, ok := h.requireContract(w, r)
	if !ok {
		return
	}
	var req ScheduleEntryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	bands, err := parseBands(req.Bands)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	entry := &hr.ScheduleEntry{
		ID:         uuid.NewString(),
		ContractID: ct.ID,
		Weekday:    req.Weekday,
		Bands:      bands,
	}
	// Same weekday keeps its identity so this acts as a replace.
	status := http.StatusCreated
	if existing, err := h.Store.ScheduleEntry(r.Context(), ct.ID, req.Weekday); err == nil {
		entry.ID = existing.ID
		status = http.StatusOK
	}
	if err := entry.Validate(); err != nil {
		h.writeDomainError(w, err)
		return
	}
	if err := h.Store.SaveScheduleEntry(r.Context(), entry); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, status, toScheduleEntryDTO(entry))
}

func (h *Handler) DeleteScheduleEntry(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteScheduleEntry(r.Context(), chi.URLParam(r, "entryID")); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// ABSENCES
// =============================================================================

func (h *Handler) ListAbsences(w http.ResponseWriter, r *http.Request) {
	ct, ok := h.requireContract(w, r)
	if !ok {
		return
	}
	from, to, err := rangeFromQuery(r)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	absences, err := h.Store.ListAbsences(r.Context(), ct.ID, from, to)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	dtos := make([]AbsenceDTO, 0, len(absences))
	for i := range absences {
		a := &absences[i]
		dtos = append(dtos, toAbsenceDTO(a, h.Hours.AbsenceHours(r.Context(), a)))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateAbsence(w http.ResponseWriter, r *http.Request) {
	ct, ok := h.requireContract(w, r)
	if !ok {
		return
	}
	var req AbsenceRequest
	if !decodeBody(w, r, &req) {
		return
	}
	typ, err := h.Store.FindAbsenceType(r.Context(), req.TypeID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	date, err := parseDateField(req.Date, "date")
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	start, err := parseOptionalTimestamp(req.Start, "start")
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	end, err := parseOptionalTimestamp(req.End, "end")
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	a := &hr.Absence{
		ID:           uuid.NewString(),
		ContractID:   ct.ID,
		TypeID:       typ.ID,
		Date:         date,
		FullDay:      req.FullDay,
		Start:        start,
		End:          end,
		NationalCode: req.NationalCode,
		SubmittedBy:  principalFrom(r.Context()).ID,
		Approved:     !typ.RequiresApproval,
	}
	if err := a.Validate(typ); err != nil {
		h.writeDomainError(w, err)
		return
	}
	if err := h.Store.SaveAbsence(r.Context(), a); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAbsenceDTO(a, h.Hours.AbsenceHours(r.Context(), a)))
}

func (h *Handler) GetAbsence(w http.ResponseWriter, r *http.Request) {
	a, err := h.Store.FindAbsence(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAbsenceDTO(a, h.Hours.AbsenceHours(r.Context(), a)))
}

func (h *Handler) DeleteAbsence(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteAbsence(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ApproveAbsence marks an absence approved by the acting staff member.
func (h *Handler) ApproveAbsence(w http.ResponseWriter, r *http.Request) {
	a, err := h.Store.FindAbsence(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	a.Approved = true
	a.ApprovedBy = principalFrom(r.Context()).ID
	if err := h.Store.SaveAbsence(r.Context(), a); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAbsenceDTO(a, h.Hours.AbsenceHours(r.Context(), a)))
}

// =============================================================================
// OVERTIME
// =============================================================================

func (h *Handler) ListOvertime(w http.ResponseWriter, r *http.Request) {
	ct, ok := h.requireContract(w, r)
	if !ok {
		return
	}
	records, err := h.Store.ListOvertime(r.Context(), ct.ID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	dtos := make([]OvertimeDTO, 0, len(records))
	for i := range records {
		dtos = append(dtos, toOvertimeDTO(&records[i], h.Hours.OvertimeHours(&records[i])))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateOvertime(w http.ResponseWriter, r *http.Request) {
	ct, ok := h.requireContract(w, r)
	if !ok {
		return
	}
	var req OvertimeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	start, err := time.Parse(time.RFC3339, req.Start)
	if err != nil {
		h.writeDomainError(w, core.Invalid("start", "expected RFC3339 timestamp"))
		return
	}
	end, err := time.Parse(time.RFC3339, req.End)
	if err != nil {
		h.writeDomainError(w, core.Invalid("end", "expected RFC3339 timestamp"))
		return
	}
	o := &hr.Overtime{
		ID:          uuid.NewString(),
		ContractID:  ct.ID,
		Start:       start,
		End:         end,
		RequestedBy: req.RequestedBy,
	}
	if err := o.Validate(); err != nil {
		h.writeDomainError(w, err)
		return
	}
	if err := h.Store.SaveOvertime(r.Context(), o); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOvertimeDTO(o, h.Hours.OvertimeHours(o)))
}

func (h *Handler) DeleteOvertime(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteOvertime(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// HOURS SUMMARY
// =============================================================================

// GetHoursSummary totals contracted, absence and overtime hours for a
// contract in a date range. The contracted total needs both bounds;
// without them it stays zero.
func (h *Handler) GetHoursSummary(w http.ResponseWriter, r *http.Request) {
	ct, ok := h.requireContract(w, r)
	if !ok {
		return
	}
	from, to, err := rangeFromQuery(r)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	contracted, err := h.contractedHours(r.Context(), ct.ID, from, to)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	absences, err := h.Store.ListAbsences(r.Context(), ct.ID, from, to)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	absenceTotal := decimal.Zero
	for i := range absences {
		absenceTotal = absenceTotal.Add(h.Hours.AbsenceHours(r.Context(), &absences[i]))
	}

	overtime, err := h.Store.ListOvertime(r.Context(), ct.ID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	overtimeTotal := decimal.Zero
	for i := range overtime {
		if inRange(overtime[i].Start, from, to) {
			overtimeTotal = overtimeTotal.Add(h.Hours.OvertimeHours(&overtime[i]))
		}
	}

	writeJSON(w, http.StatusOK, HoursSummaryDTO{
		ContractID:      ct.ID,
		From:            formatRangeBound(from),
		To:              formatRangeBound(to),
		ContractedHours: contracted.String(),
		AbsenceHours:    absenceTotal.String(),
		OvertimeHours:   overtimeTotal.String(),
	})
}

// contractedHours sums the weekly schedule over every day in [from, to].
// Days with no schedule entry count zero.
func (h *Handler) contractedHours(ctx context.Context, contractID string, from, to time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	if from.IsZero() || to.IsZero() || to.Before(from) {
		return total, nil
	}
	if to.Sub(from) > 366*24*time.Hour {
		return total, core.Invalid("to", "range too large, one year maximum")
	}

	entries, err := h.Store.ListScheduleEntries(ctx, contractID)
	if err != nil {
		return total, err
	}
	byWeekday := make(map[int]decimal.Decimal, len(entries))
	for i := range entries {
		byWeekday[entries[i].Weekday] = entries[i].DayHours()
	}
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if hours, ok := byWeekday[core.ISOWeekday(d)]; ok {
			total = total.Add(hours)
		}
	}
	return total, nil
}

func rangeFromQuery(r *http.Request) (from, to time.Time, err error) {
	if s := r.URL.Query().Get("from"); s != "" {
		if from, err = parseDateField(s, "from"); err != nil {
			return
		}
	}
	if s := r.URL.Query().Get("to"); s != "" {
		if to, err = parseDateField(s, "to"); err != nil {
			return
		}
	}
	return
}

// inRange checks a timestamp against date bounds, the upper bound being
// inclusive of the whole day.
func inRange(t time.Time, from, to time.Time) bool {
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() && !t.Before(to.AddDate(0, 0, 1)) {
		return false
	}
	return true
}

func formatRangeBound(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return formatDate(t)
}

// =============================================================================
// ABSENCE TYPES
// =============================================================================

func (h *Handler) ListAbsenceTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.Store.ListAbsenceTypes(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	dtos := make([]AbsenceTypeDTO, 0, len(types))
	for i := range types {
		dtos = append(dtos, toAbsenceTypeDTO(&types[i]))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateAbsenceType(w http.ResponseWriter, r *http.Request) {
	h.saveAbsenceType(w, r, uuid.NewString(), http.StatusCreated)
}

func (h *Handler) UpdateAbsenceType(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.Store.FindAbsenceType(r.Context(), id); err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.saveAbsenceType(w, r, id, http.StatusOK)
}

func (h *Handler) saveAbsenceType(w http.ResponseWriter, r *http.Request, id string, status int) {
	var req AbsenceTypeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	typ := &hr.AbsenceType{
		ID:                   id,
		Name:                 req.Name,
		RequiresApproval:     req.RequiresApproval,
		RequiresNationalCode: req.RequiresNationalCode,
		Code:                 req.Code,
	}
	if err := typ.Validate(); err != nil {
		h.writeDomainError(w, err)
		return
	}
	if err := h.Store.SaveAbsenceType(r.Context(), typ); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, status, toAbsenceTypeDTO(typ))
}

func (h *Handler) GetAbsenceType(w http.ResponseWriter, r *http.Request) {
	typ, err := h.Store.FindAbsenceType(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAbsenceTypeDTO(typ))
}

func (h *Handler) DeleteAbsenceType(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteAbsenceType(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// PAYSLIPS
// =============================================================================

func (h *Handler) ListPayslips(w http.ResponseWriter, r *http.Request) {
	ct, ok := h.requireContract(w, r)
	if !ok {
		return
	}
	payslips, err := h.Store.ListPayslips(r.Context(), ct.ID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	dtos := make([]PayslipDTO, 0, len(payslips))
	for i := range payslips {
		dtos = append(dtos, toPayslipDTO(&payslips[i]))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// UploadPayslip accepts a multipart form with year, month, kind, name
// and a file part. The file lands in the blob store first; the registry
// row only exists if the upload succeeded.
func (h *Handler) UploadPayslip(w http.ResponseWriter, r *http.Request) {
	ct, ok := h.requireContract(w, r)
	if !ok {
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form", err)
		return
	}

	year, err := strconv.Atoi(r.FormValue("year"))
	if err != nil {
		h.writeDomainError(w, core.Invalid("year", "expected a number"))
		return
	}
	month, err := strconv.Atoi(r.FormValue("month"))
	if err != nil {
		h.writeDomainError(w, core.Invalid("month", "expected a number"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeDomainError(w, core.Invalid("file", "missing file part"))
		return
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read upload", err)
		return
	}

	p := &hr.Payslip{
		ID:         uuid.NewString(),
		ContractID: ct.ID,
		Year:       year,
		Month:      month,
		Name:       r.FormValue("name"),
		Kind:       hr.PayslipKind(r.FormValue("kind")),
		UploadedAt: time.Now().UTC(),
	}
	if p.Name == "" {
		p.Name = header.Filename
	}
	if err := p.Validate(); err != nil {
		h.writeDomainError(w, err)
		return
	}

	suggested := fmt.Sprintf("payslips/%s/%d-%02d-%s%s",
		ct.ID, year, month, p.Kind, filepath.Ext(header.Filename))
	path, err := h.Blobs.Store(r.Context(), data, suggested)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	p.FilePath = path

	if err := h.Store.SavePayslip(r.Context(), p); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPayslipDTO(p))
}

func (h *Handler) DeletePayslip(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeletePayslip(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
