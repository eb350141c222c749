/*
api_test.go - End-to-end API tests

Runs the real router against an in-memory database and a temp-dir blob
store. Tokens are real signed JWTs so the middleware path is exercised
too.
*/
package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/warp/workforce/accounts"
	"github.com/warp/workforce/api"
	"github.com/warp/workforce/store/blob"
	"github.com/warp/workforce/store/sqlite"
)

// =============================================================================
// TEST HARNESS
// =============================================================================

type testServer struct {
	*httptest.Server
	store  *sqlite.Store
	tokens *api.TokenIssuer
	hasher accounts.Hasher
	logs   *bytes.Buffer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	blobs, err := blob.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	logs := &bytes.Buffer{}
	log := zerolog.New(logs)

	hasher := accounts.BcryptHasher{Cost: bcrypt.MinCost}
	svc := accounts.NewAdminService(store, hasher, log)
	tokens := api.NewTokenIssuer("test-secret", time.Hour)
	h := api.NewHandler(store, svc, blobs, tokens, log)

	ts := httptest.NewServer(api.NewRouter(h, []string{"*"}))
	t.Cleanup(ts.Close)
	return &testServer{Server: ts, store: store, tokens: tokens, hasher: hasher, logs: logs}
}

// seedAccount writes an account directly and returns a token for it.
func (s *testServer) seedAccount(t *testing.T, username string, staff, superuser bool) (accounts.Account, string) {
	t.Helper()
	hash, err := s.hasher.Hash("s3cret")
	require.NoError(t, err)
	a := accounts.Account{
		ID:           "acc-" + username,
		Username:     username,
		PasswordHash: hash,
		Active:       true,
		Staff:        staff,
		Superuser:    superuser,
		DateJoined:   time.Now().UTC(),
	}
	require.NoError(t, s.store.SaveAccount(context.Background(), &a))
	token, err := s.tokens.Issue(&a)
	require.NoError(t, err)
	return a, token
}

// do sends a JSON request and decodes the response body into out when
// out is non-nil.
func (s *testServer) do(t *testing.T, method, path, token string, body, out any) int {
	t.Helper()

	var buf io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, s.URL+path, buf)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

// =============================================================================
// AUTHENTICATION
// =============================================================================

func TestBearerToken_ResolvesPrincipal(t *testing.T) {
	// GIVEN a token minted with the shared secret
	s := newTestServer(t)
	_, token := s.seedAccount(t, "admin", true, true)

	// WHEN calling /users/me with it
	var me map[string]any
	status := s.do(t, http.MethodGet, "/api/users/me", token, nil, &me)

	// THEN the principal resolves to the account
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "admin", me["username"])
}

func TestBearerToken_RejectsForgedToken(t *testing.T) {
	// GIVEN a token signed with a different secret
	s := newTestServer(t)
	a, _ := s.seedAccount(t, "admin", true, true)
	forged, err := api.NewTokenIssuer("other-secret", time.Hour).Issue(&a)
	require.NoError(t, err)

	// WHEN presenting it
	status := s.do(t, http.MethodGet, "/api/users/me", forged, nil, nil)

	// THEN the middleware refuses it
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestDeactivatedAccount_LosesAccessImmediately(t *testing.T) {
	// GIVEN a staff account holding a live token
	s := newTestServer(t)
	a, token := s.seedAccount(t, "admin", true, true)
	status := s.do(t, http.MethodGet, "/api/employees", token, nil, nil)
	require.Equal(t, http.StatusOK, status)

	// WHEN the account is deactivated mid-session
	a.Active = false
	require.NoError(t, s.store.SaveAccount(context.Background(), &a))

	// THEN the unexpired token stops working on the next request
	status = s.do(t, http.MethodGet, "/api/employees", token, nil, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestDeletedAccount_TokenRejected(t *testing.T) {
	// GIVEN a token for an account that no longer exists
	s := newTestServer(t)
	a, token := s.seedAccount(t, "ghost", true, false)
	require.NoError(t, s.store.DeleteAccount(context.Background(), a.ID))

	// WHEN presenting the token
	status := s.do(t, http.MethodGet, "/api/users/me", token, nil, nil)

	// THEN it no longer authenticates
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestRequestLog_RecordsMethodPathStatus(t *testing.T) {
	// GIVEN a running server
	s := newTestServer(t)
	_, token := s.seedAccount(t, "admin", true, true)

	// WHEN a request is handled
	status := s.do(t, http.MethodGet, "/api/users/me", token, nil, nil)
	require.Equal(t, http.StatusOK, status)

	// THEN one structured line records the request
	logged := s.logs.String()
	assert.Contains(t, logged, `"method":"GET"`)
	assert.Contains(t, logged, `"path":"/api/users/me"`)
	assert.Contains(t, logged, `"status":200`)
	assert.Contains(t, logged, `"duration"`)
}

func TestHRRoutes_RequireStaff(t *testing.T) {
	// GIVEN an ordinary (non-staff) account
	s := newTestServer(t)
	_, token := s.seedAccount(t, "worker", false, false)

	// WHEN hitting HR data anonymously and as non-staff
	anon := s.do(t, http.MethodGet, "/api/employees", "", nil, nil)
	nonStaff := s.do(t, http.MethodGet, "/api/employees", token, nil, nil)

	// THEN the router rejects both, with different statuses
	assert.Equal(t, http.StatusUnauthorized, anon)
	assert.Equal(t, http.StatusForbidden, nonStaff)
}

// =============================================================================
// EMPLOYEES AND CONTRACTS
// =============================================================================

func employeeBody(fiscalCode string) map[string]any {
	return map[string]any{
		"first_name":  "Mario",
		"last_name":   "Rossi",
		"fiscal_code": fiscalCode,
		"birth_date":  "1985-08-01",
		"birth_place": "Roma",
	}
}

func TestEmployeeCRUD(t *testing.T) {
	s := newTestServer(t)
	_, token := s.seedAccount(t, "admin", true, true)

	// WHEN creating an employee
	var created map[string]any
	status := s.do(t, http.MethodPost, "/api/employees", token, employeeBody("RSSMRA85M01H501Z"), &created)
	require.Equal(t, http.StatusCreated, status)
	id := created["id"].(string)

	// THEN it can be fetched, updated, and deleted
	var got map[string]any
	status = s.do(t, http.MethodGet, "/api/employees/"+id, token, nil, &got)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "RSSMRA85M01H501Z", got["fiscal_code"])

	body := employeeBody("RSSMRA85M01H501Z")
	body["notes"] = "transferred from Milano office"
	status = s.do(t, http.MethodPut, "/api/employees/"+id, token, body, &got)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "transferred from Milano office", got["notes"])

	status = s.do(t, http.MethodDelete, "/api/employees/"+id, token, nil, nil)
	require.Equal(t, http.StatusNoContent, status)
	status = s.do(t, http.MethodGet, "/api/employees/"+id, token, nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCreateEmployee_BadFiscalCode(t *testing.T) {
	s := newTestServer(t)
	_, token := s.seedAccount(t, "admin", true, true)

	status := s.do(t, http.MethodPost, "/api/employees", token, employeeBody("not-a-code"), nil)

	assert.Equal(t, http.StatusBadRequest, status)
}

// createContract seeds an employee plus a 38h permanent contract and
// returns the contract id.
func createContract(t *testing.T, s *testServer, token string) string {
	t.Helper()

	var emp map[string]any
	status := s.do(t, http.MethodPost, "/api/employees", token, employeeBody("RSSMRA85M01H501Z"), &emp)
	require.Equal(t, http.StatusCreated, status)

	var ct map[string]any
	status = s.do(t, http.MethodPost, "/api/employees/"+emp["id"].(string)+"/contracts", token, map[string]any{
		"kind": "permanent", "weekly_hours": 38, "start": "2024-01-01",
	}, &ct)
	require.Equal(t, http.StatusCreated, status)
	return ct["id"].(string)
}

func TestContract_FreelanceWithHoursRejected(t *testing.T) {
	s := newTestServer(t)
	_, token := s.seedAccount(t, "admin", true, true)

	var emp map[string]any
	status := s.do(t, http.MethodPost, "/api/employees", token, employeeBody("RSSMRA85M01H501Z"), &emp)
	require.Equal(t, http.StatusCreated, status)

	// WHEN an hours-exempt kind carries weekly hours
	status = s.do(t, http.MethodPost, "/api/employees/"+emp["id"].(string)+"/contracts", token, map[string]any{
		"kind": "freelance", "weekly_hours": 20, "start": "2024-01-01",
	}, nil)

	// THEN validation rejects it
	assert.Equal(t, http.StatusBadRequest, status)
}

// =============================================================================
// SCHEDULES, ABSENCES AND THE HOURS SUMMARY
// =============================================================================

func TestAbsenceHours_EndToEnd(t *testing.T) {
	// GIVEN a contract with an 8h Monday and an absence type
	s := newTestServer(t)
	_, token := s.seedAccount(t, "admin", true, true)
	contractID := createContract(t, s, token)

	var entry map[string]any
	status := s.do(t, http.MethodPost, "/api/contracts/"+contractID+"/schedule", token, map[string]any{
		"weekday": 1,
		"bands": []map[string]any{
			{"start": "09:00", "end": "13:00"},
			{"start": "14:00", "end": "18:00"},
		},
	}, &entry)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "8", entry["day_hours"])

	var typ map[string]any
	status = s.do(t, http.MethodPost, "/api/absence-types", token, map[string]any{
		"name": "Holiday", "code": "FE", "requires_approval": false,
	}, &typ)
	require.Equal(t, http.StatusCreated, status)

	// WHEN recording a full-day absence on a Monday and a partial one
	var fullDay map[string]any
	status = s.do(t, http.MethodPost, "/api/contracts/"+contractID+"/absences", token, map[string]any{
		"type_id": typ["id"], "date": "2025-06-02", "full_day": true,
	}, &fullDay)
	require.Equal(t, http.StatusCreated, status)

	var partial map[string]any
	status = s.do(t, http.MethodPost, "/api/contracts/"+contractID+"/absences", token, map[string]any{
		"type_id": typ["id"], "date": "2025-06-03", "full_day": false,
		"start": "2025-06-03T10:00:00Z", "end": "2025-06-03T12:30:00Z",
	}, &partial)
	require.Equal(t, http.StatusCreated, status)

	// THEN the hours follow the schedule and the interval respectively
	assert.Equal(t, "8", fullDay["hours"])
	assert.Equal(t, "2.5", partial["hours"])

	// AND the summary adds them up
	var summary map[string]any
	status = s.do(t, http.MethodGet,
		"/api/contracts/"+contractID+"/hours?from=2025-06-01&to=2025-06-30", token, nil, &summary)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "10.5", summary["absence_hours"])
	// Five Mondays at 8h fall inside June 2025
	assert.Equal(t, "40", summary["contracted_hours"])
}

func TestScheduleUpsert_CreatesThenReplaces(t *testing.T) {
	// GIVEN a contract with no Tuesday schedule yet
	s := newTestServer(t)
	_, token := s.seedAccount(t, "admin", true, true)
	contractID := createContract(t, s, token)

	body := map[string]any{
		"weekday": 2,
		"bands":   []map[string]any{{"start": "09:00", "end": "17:00"}},
	}

	// WHEN posting the weekday for the first and then a second time
	var first, second map[string]any
	created := s.do(t, http.MethodPost, "/api/contracts/"+contractID+"/schedule", token, body, &first)

	body["bands"] = []map[string]any{{"start": "09:00", "end": "13:00"}}
	replaced := s.do(t, http.MethodPost, "/api/contracts/"+contractID+"/schedule", token, body, &second)

	// THEN the first creates and the second replaces in place
	assert.Equal(t, http.StatusCreated, created)
	assert.Equal(t, http.StatusOK, replaced)
	assert.Equal(t, first["id"], second["id"])
	assert.Equal(t, "4", second["day_hours"])

	var list []map[string]any
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/contracts/"+contractID+"/schedule", token, nil, &list))
	assert.Len(t, list, 1)
}

func TestAbsence_ApprovalFlow(t *testing.T) {
	// GIVEN a type that requires approval
	s := newTestServer(t)
	admin, token := s.seedAccount(t, "admin", true, true)
	contractID := createContract(t, s, token)

	var typ map[string]any
	status := s.do(t, http.MethodPost, "/api/absence-types", token, map[string]any{
		"name": "Sick leave", "code": "MA", "requires_approval": true,
	}, &typ)
	require.Equal(t, http.StatusCreated, status)

	// WHEN submitting and then approving an absence
	var created map[string]any
	status = s.do(t, http.MethodPost, "/api/contracts/"+contractID+"/absences", token, map[string]any{
		"type_id": typ["id"], "date": "2025-06-02", "full_day": true,
	}, &created)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, false, created["approved"])

	var approved map[string]any
	status = s.do(t, http.MethodPost, "/api/absences/"+created["id"].(string)+"/approve", token, nil, &approved)
	require.Equal(t, http.StatusOK, status)

	// THEN the approver is recorded
	assert.Equal(t, true, approved["approved"])
	assert.Equal(t, admin.ID, approved["approved_by"])
}

func TestOvertime_Lifecycle(t *testing.T) {
	s := newTestServer(t)
	_, token := s.seedAccount(t, "admin", true, true)
	contractID := createContract(t, s, token)

	// WHEN recording 2h15m of overtime
	var ot map[string]any
	status := s.do(t, http.MethodPost, "/api/contracts/"+contractID+"/overtime", token, map[string]any{
		"start": "2025-06-02T18:00:00Z", "end": "2025-06-02T20:15:00Z",
	}, &ot)
	require.Equal(t, http.StatusCreated, status)

	// THEN the computed hours ride along
	assert.Equal(t, "2.25", ot["hours"])

	// AND a reversed interval is rejected
	status = s.do(t, http.MethodPost, "/api/contracts/"+contractID+"/overtime", token, map[string]any{
		"start": "2025-06-02T20:00:00Z", "end": "2025-06-02T18:00:00Z",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

// =============================================================================
// PAYSLIP UPLOAD
// =============================================================================

func uploadPayslip(t *testing.T, s *testServer, token, contractID string, year, month int, kind string) int {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("year", fmt.Sprint(year)))
	require.NoError(t, mw.WriteField("month", fmt.Sprint(month)))
	require.NoError(t, mw.WriteField("kind", kind))
	part, err := mw.CreateFormFile("file", "payslip.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 test"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, s.URL+"/api/contracts/"+contractID+"/payslips", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	return resp.StatusCode
}

func TestPayslipUpload_DuplicatePeriodConflicts(t *testing.T) {
	// GIVEN a payslip uploaded for July 2025
	s := newTestServer(t)
	_, token := s.seedAccount(t, "admin", true, true)
	contractID := createContract(t, s, token)

	require.Equal(t, http.StatusCreated, uploadPayslip(t, s, token, contractID, 2025, 7, "payslip"))

	// WHEN uploading the same period and kind again
	status := uploadPayslip(t, s, token, contractID, 2025, 7, "payslip")

	// THEN the registry refuses the duplicate
	assert.Equal(t, http.StatusConflict, status)

	// AND a different kind for the period is accepted
	assert.Equal(t, http.StatusCreated, uploadPayslip(t, s, token, contractID, 2025, 7, "fourteenth"))

	var list []map[string]any
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/contracts/"+contractID+"/payslips", token, nil, &list))
	assert.Len(t, list, 2)
}

// =============================================================================
// ACCOUNT ADMINISTRATION OVER HTTP
// =============================================================================

func TestAccountAdmin_RulesOverHTTP(t *testing.T) {
	s := newTestServer(t)
	root, rootToken := s.seedAccount(t, "root", true, true)
	worker, workerToken := s.seedAccount(t, "worker", false, false)

	// Superuser cannot touch their own flag
	status := s.do(t, http.MethodPost, "/api/users/"+root.ID+"/deactivate", rootToken, nil, nil)
	assert.Equal(t, http.StatusForbidden, status)

	// Non-superuser cannot activate anyone
	status = s.do(t, http.MethodPost, "/api/users/"+worker.ID+"/activate", workerToken, nil, nil)
	assert.Equal(t, http.StatusForbidden, status)

	// Password mismatch is a validation failure
	status = s.do(t, http.MethodPost, "/api/users/"+worker.ID+"/set-password", rootToken,
		map[string]string{"password": "new", "confirm": "different"}, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	// A user may change their own password
	status = s.do(t, http.MethodPost, "/api/users/"+worker.ID+"/set-password", workerToken,
		map[string]string{"password": "brand-new", "confirm": "brand-new"}, nil)
	assert.Equal(t, http.StatusOK, status)

	// Superuser accounts can never be deleted over the API
	status = s.do(t, http.MethodDelete, "/api/users/"+root.ID, rootToken, nil, nil)
	assert.Equal(t, http.StatusForbidden, status)

	// Superuser can deactivate someone else, and their token with them
	status = s.do(t, http.MethodPost, "/api/users/"+worker.ID+"/deactivate", rootToken, nil, nil)
	assert.Equal(t, http.StatusOK, status)
	status = s.do(t, http.MethodGet, "/api/users/me", workerToken, nil, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestRegister_PublicAndOrdinary(t *testing.T) {
	s := newTestServer(t)

	// WHEN registering without any token
	var created map[string]any
	status := s.do(t, http.MethodPost, "/api/users/register", "", map[string]string{
		"username": "newbie", "password": "pw12345", "confirm": "pw12345",
		"email": "newbie@example.com",
	}, &created)

	// THEN an ordinary active account exists, with no elevated flags
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, true, created["active"])
	assert.Equal(t, false, created["staff"])
	assert.Equal(t, false, created["superuser"])

	// AND mismatched confirmation is rejected
	status = s.do(t, http.MethodPost, "/api/users/register", "", map[string]string{
		"username": "other", "password": "pw12345", "confirm": "nope",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}
