package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icaruswings/Budgeto/api"
	"github.com/icaruswings/Budgeto/store/memory"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newTestServer(t *testing.T) (*httptest.Server, *memory.Memory) {
	t.Helper()
	st := memory.New()
	h := api.NewHandler(st, zerolog.Nop(), time.UTC)
	h.Now = func() time.Time { return time.Date(2024, time.April, 10, 9, 0, 0, 0, time.UTC) }

	srv := httptest.NewServer(api.NewRouter(h, []string{"*"}))
	t.Cleanup(srv.Close)
	return srv, st
}

func doJSON(t *testing.T, method, url string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func putSettings(t *testing.T, srv *httptest.Server, userID string, req api.UpdatePaySettingsRequest) api.PaySettingsDTO {
	t.Helper()
	resp := doJSON(t, http.MethodPut, srv.URL+"/api/users/"+userID+"/settings", req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decode[api.PaySettingsDTO](t, resp)
}

func fullSettings() api.UpdatePaySettingsRequest {
	return api.UpdatePaySettingsRequest{
		Email:               "user@example.com",
		ActualPayAmount:     "5000",
		ActualPayFrequency:  "monthly",
		ActualPayDayOfMonth: 15,
		DesiredPayFrequency: "fortnightly",
		DesiredPayDayOfWeek: "thursday",
	}
}

// =============================================================================
// SETTINGS
// =============================================================================

func TestSettings_UpsertDerivesDesiredAmount(t *testing.T) {
	srv, _ := newTestServer(t)

	dto := putSettings(t, srv, "user-1", fullSettings())

	assert.Equal(t, "user-1", dto.UserID)
	require.NotNil(t, dto.DesiredPayAmount)
	assert.Equal(t, "2307.69", *dto.DesiredPayAmount)
	require.NotNil(t, dto.DesiredPayDayOfWeek)
	assert.Equal(t, "thursday", *dto.DesiredPayDayOfWeek)
}

func TestSettings_IncompleteShowsNulls(t *testing.T) {
	srv, _ := newTestServer(t)

	dto := putSettings(t, srv, "user-1", api.UpdatePaySettingsRequest{
		ActualPayAmount:    "5000",
		ActualPayFrequency: "monthly",
	})

	assert.Nil(t, dto.DesiredPayAmount, "no desired cycle, no derived amount")
	assert.Nil(t, dto.DesiredPayDayOfWeek)
}

func TestSettings_Validation(t *testing.T) {
	srv, _ := newTestServer(t)

	cases := []api.UpdatePaySettingsRequest{
		{ActualPayAmount: "abc"},
		{ActualPayAmount: "5000", ActualPayFrequency: "quarterly"},
		{ActualPayAmount: "5000", ActualPayFrequency: "monthly", ActualPayDayOfMonth: 40},
		{ActualPayAmount: "5000", ActualPayFrequency: "monthly", DesiredPayFrequency: "monthly"},
		{ActualPayAmount: "5000", ActualPayFrequency: "monthly", DesiredPayDayOfWeek: "someday"},
		{ActualPayAmount: "5000", ActualPayFrequency: "monthly", NextActualPayday: "15/04/2024"},
	}
	for _, c := range cases {
		resp := doJSON(t, http.MethodPut, srv.URL+"/api/users/user-1/settings", c)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		resp.Body.Close()
	}
}

func TestSettings_GetMissing(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/api/users/nobody/settings")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// =============================================================================
// BILLS
// =============================================================================

func TestBills_CreateListUpdateDelete(t *testing.T) {
	srv, _ := newTestServer(t)

	created := decode[api.BillDTO](t, doJSON(t, http.MethodPost, srv.URL+"/api/users/user-1/bills", api.CreateBillRequest{
		Name: "rent", Amount: "1500", Frequency: "monthly", DueDayOfMonth: 1,
	}))
	assert.NotEmpty(t, created.ID)
	assert.True(t, created.Active, "active defaults to true")
	assert.NotEmpty(t, created.CreatedAt)

	bills := decode[[]api.BillDTO](t, doJSON(t, http.MethodGet, srv.URL+"/api/users/user-1/bills", nil))
	require.Len(t, bills, 1)

	inactive := false
	updated := decode[api.BillDTO](t, doJSON(t, http.MethodPut, srv.URL+"/api/users/user-1/bills/"+created.ID, api.UpdateBillRequest{
		Name: "rent", Amount: "1600", Frequency: "monthly", DueDayOfMonth: 1, Active: &inactive,
	}))
	assert.Equal(t, "1600", updated.Amount)
	assert.False(t, updated.Active)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt, "anchor survives updates")

	resp := doJSON(t, http.MethodDelete, srv.URL+"/api/users/user-1/bills/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp, err := http.Get(srv.URL + "/api/users/user-1/bills/" + created.ID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestBills_CreateAnchoredBill(t *testing.T) {
	// Weekly/fortnightly bills carry no due date in the request; the server
	// anchors their recurrence to the creation day.
	srv, _ := newTestServer(t)

	weekly := decode[api.BillDTO](t, doJSON(t, http.MethodPost, srv.URL+"/api/users/user-1/bills", api.CreateBillRequest{
		Name: "groceries", Amount: "150", Frequency: "weekly",
	}))
	assert.NotEmpty(t, weekly.ID)
	assert.Equal(t, "2024-04-10", weekly.CreatedAt, "anchor is the creation day")

	fortnightly := decode[api.BillDTO](t, doJSON(t, http.MethodPost, srv.URL+"/api/users/user-1/bills", api.CreateBillRequest{
		Name: "internet", Amount: "250", Frequency: "fortnightly",
	}))
	assert.Equal(t, "2024-04-10", fortnightly.CreatedAt)

	// Edits never move the anchor.
	updated := decode[api.BillDTO](t, doJSON(t, http.MethodPut, srv.URL+"/api/users/user-1/bills/"+weekly.ID, api.UpdateBillRequest{
		Name: "groceries", Amount: "175", Frequency: "weekly",
	}))
	assert.Equal(t, "175", updated.Amount)
	assert.Equal(t, weekly.CreatedAt, updated.CreatedAt)
}

func TestBills_Validation(t *testing.T) {
	srv, _ := newTestServer(t)

	cases := []api.CreateBillRequest{
		{Amount: "10", Frequency: "monthly", DueDayOfMonth: 1},                    // no name
		{Name: "x", Amount: "0", Frequency: "monthly", DueDayOfMonth: 1},          // non-positive
		{Name: "x", Amount: "ten", Frequency: "monthly", DueDayOfMonth: 1},        // non-numeric
		{Name: "x", Amount: "10", Frequency: "quarterly"},                         // bad frequency
		{Name: "x", Amount: "10", Frequency: "monthly", DueDayOfMonth: 32},        // bad day
		{Name: "x", Amount: "10", Frequency: "one_off"},                           // one-off without due date
		{Name: "x", Amount: "10", Frequency: "one_off", DueDate: "25-04-2024"},    // bad date format
	}
	for i, c := range cases {
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/users/user-1/bills", c)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "case %d", i)
		resp.Body.Close()
	}
}

// =============================================================================
// SCHEDULE
// =============================================================================

func TestSchedule_EndToEnd(t *testing.T) {
	srv, _ := newTestServer(t)
	putSettings(t, srv, "user-1", fullSettings())

	for _, b := range []api.CreateBillRequest{
		{Name: "rent", Amount: "1500", Frequency: "monthly", DueDayOfMonth: 1},
		{Name: "power", Amount: "300", Frequency: "monthly", DueDayOfMonth: 20},
		{Name: "rego", Amount: "80", Frequency: "one_off", DueDate: "2024-04-25"},
		{Name: "groceries", Amount: "150", Frequency: "weekly"},
	} {
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/users/user-1/bills", b)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	sched := decode[api.ScheduleResponse](t, doJSON(t, http.MethodGet,
		srv.URL+"/api/users/user-1/schedule?periods=3&today=2024-04-10", nil))

	require.Len(t, sched.Schedule, 3)
	assert.Empty(t, sched.Reason)
	assert.Equal(t, "2024-04-10", sched.Today)

	// Payday derived from day 15 -> Mon 2024-04-15; first Thursday on or
	// after is 2024-04-18.
	assert.Equal(t, "2024-04-18", sched.Schedule[0].AllowanceDate)
	assert.Equal(t, "2307.69", sched.Schedule[0].AllowanceAmount)

	// Period [Apr 18, May 2]: power 300 + rego 80 + rent (May 1) 1500 +
	// groceries anchored 2024-04-10 (Apr 24 and May 1) 300.
	assert.Equal(t, "2180.00", sched.Schedule[0].BillsDue)
	assert.Equal(t, "127.69", sched.Schedule[0].Leftover)

	prev := sched.Schedule[0].AllowanceDate
	for _, item := range sched.Schedule[1:] {
		assert.Greater(t, item.AllowanceDate, prev, "dates strictly increasing")
		prev = item.AllowanceDate
	}
}

func TestSchedule_IncompleteSettingsIsAPromptNotAnError(t *testing.T) {
	srv, _ := newTestServer(t)

	// No settings at all.
	sched := decode[api.ScheduleResponse](t, doJSON(t, http.MethodGet,
		srv.URL+"/api/users/user-1/schedule", nil))
	assert.Empty(t, sched.Schedule)
	assert.NotEmpty(t, sched.Reason)

	// Settings without a desired cycle.
	putSettings(t, srv, "user-1", api.UpdatePaySettingsRequest{
		ActualPayAmount: "5000", ActualPayFrequency: "monthly", ActualPayDayOfMonth: 15,
	})
	sched = decode[api.ScheduleResponse](t, doJSON(t, http.MethodGet,
		srv.URL+"/api/users/user-1/schedule", nil))
	assert.Empty(t, sched.Schedule)
	assert.NotEmpty(t, sched.Reason)
}

func TestSchedule_BadQueryParams(t *testing.T) {
	srv, _ := newTestServer(t)
	putSettings(t, srv, "user-1", fullSettings())

	for _, q := range []string{"periods=0", "periods=9999", "periods=abc", "today=15-04-2024"} {
		resp, err := http.Get(srv.URL + "/api/users/user-1/schedule?" + q)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, q)
		resp.Body.Close()
	}
}

// =============================================================================
// PAYDAY
// =============================================================================

func TestPayday(t *testing.T) {
	srv, _ := newTestServer(t)
	putSettings(t, srv, "user-1", fullSettings())

	payday := decode[api.PaydayResponse](t, doJSON(t, http.MethodGet,
		srv.URL+"/api/users/user-1/payday", nil))

	require.NotNil(t, payday.NextActualPayday)
	assert.Equal(t, "2024-04-15", *payday.NextActualPayday)
	require.NotNil(t, payday.NextPreferredPayday)
	assert.Equal(t, "2024-04-18", *payday.NextPreferredPayday)
	require.NotNil(t, payday.DesiredPayAmount)
	assert.Equal(t, "2307.69", *payday.DesiredPayAmount)
}

func TestPayday_Unconfigured(t *testing.T) {
	srv, _ := newTestServer(t)

	payday := decode[api.PaydayResponse](t, doJSON(t, http.MethodGet,
		srv.URL+"/api/users/nobody/payday", nil))
	assert.Nil(t, payday.NextActualPayday)
	assert.Nil(t, payday.NextPreferredPayday)
	assert.Nil(t, payday.DesiredPayAmount)
}
