package intake

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/revops/intake-service/internal/attachment"
	"github.com/revops/intake-service/internal/intake/mocks"
	"github.com/revops/intake-service/internal/intake/model"
	"github.com/revops/intake-service/internal/system/middleware"
	"github.com/revops/intake-service/internal/tracker"
)

const testOrigin = "https://intake.example.com"

func newTestRouter(t *testing.T) (*gin.Engine, *mocks.MockTicketForwarder, afero.Fs) {
	t.Helper()
	return newTestRouterWithLimit(t, 1<<20)
}

func newTestRouterWithLimit(t *testing.T, maxUploadBytes int64) (*gin.Engine, *mocks.MockTicketForwarder, afero.Fs) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger, _ := test.NewNullLogger()

	fs := afero.NewMemMapFs()
	store, err := NewCSVStore(fs, "intake.csv")
	require.NoError(t, err)
	forwarder := &mocks.MockTicketForwarder{}
	sink := attachment.NewSinkFs(afero.NewBasePathFs(fs, "/attachments"))

	router := gin.New()
	router.Use(middleware.CORSMiddleware(middleware.CORSOptions{
		AllowedOrigin:  testOrigin,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))
	router.Use(middleware.CorrelationIDMiddleware())
	Initialize(router, store, forwarder, sink, logger, maxUploadBytes)
	return router, forwarder, fs
}

func formValues() url.Values {
	return url.Values{
		"request_title":           {"Automate revenue recognition"},
		"requestor_name":          {"Dana"},
		"requestor_team":          {"RevOps"},
		"problem_statement":       {"Manual journal entries"},
		"expected_outcome":        {"Automated schedules"},
		"revenue_impact":          {"High"},
		"audit_risk":              {"Medium"},
		"complexity":              {"Medium"},
		"cross_functional_effort": {"Low"},
		"timeline_pressure":       {"High"},
		"systems_touched":         {"NetSuite", "Salesforce"},
		"tags":                    {"close"},
	}
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func postForm(router *gin.Engine, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return serve(router, req)
}

func skipTickets(forwarder *mocks.MockTicketForwarder) {
	forwarder.On("CreateTicket", mock.Anything, mock.Anything).Return(tracker.Result{Outcome: tracker.OutcomeSkipped})
}

func TestHandler_SubmitURLEncoded(t *testing.T) {
	router, forwarder, _ := newTestRouter(t)
	skipTickets(forwarder)

	w := postForm(router, formValues())

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Request submitted. Priority score: 2.6 • Marked as QUICK WIN", w.Body.String())
	assert.Equal(t, testOrigin, w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(router, httptest.NewRequest(http.MethodGet, "/api/intake/1", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var rec model.IntakeRequest
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	assert.Equal(t, "NetSuite;Salesforce", rec.SystemsTouched)
	assert.Equal(t, 2.6, rec.PriorityScore)
	assert.True(t, rec.IsQuickWin)
}

func TestHandler_SubmitMissingField(t *testing.T) {
	router, forwarder, _ := newTestRouter(t)
	values := formValues()
	values.Del("requestor_team")

	w := postForm(router, values)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing requestor_team", w.Body.String())
	forwarder.AssertNotCalled(t, "CreateTicket", mock.Anything, mock.Anything)
}

func TestHandler_SubmitMultipartWithAttachment(t *testing.T) {
	router, forwarder, fs := newTestRouter(t)
	forwarder.On("CreateTicket", mock.Anything, mock.Anything).Return(tracker.Result{Outcome: tracker.OutcomeCreated, Key: "REV-7"})
	forwarder.On("AttachFile", mock.Anything, "REV-7", "1_notes.txt", mock.Anything).Return(nil)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, vals := range formValues() {
		for _, v := range vals {
			require.NoError(t, writer.WriteField(key, v))
		}
	}
	part, err := writer.CreateFormFile("attachments", "notes.txt")
	require.NoError(t, err)
	_, _ = part.Write([]byte("context"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/submit", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := serve(router, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Request submitted. Priority score: 2.6 • Marked as QUICK WIN • 1 attachment(s) • Jira Task: REV-7", w.Body.String())
	stored, err := afero.ReadFile(fs, "/attachments/1_notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "context", string(stored))
	forwarder.AssertExpectations(t)
}

func TestHandler_SubmitBodyOverLimit(t *testing.T) {
	router, forwarder, fs := newTestRouterWithLimit(t, 1024)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, vals := range formValues() {
		for _, v := range vals {
			require.NoError(t, writer.WriteField(key, v))
		}
	}
	part, err := writer.CreateFormFile("attachments", "big.bin")
	require.NoError(t, err)
	_, _ = part.Write(bytes.Repeat([]byte("x"), 4096))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/submit", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := serve(router, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "Request body exceeds 1024 bytes", w.Body.String())
	forwarder.AssertNotCalled(t, "CreateTicket", mock.Anything, mock.Anything)
	exists, err := afero.Exists(fs, "/attachments/1_big.bin")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestHandler_SubmitRateLimited(t *testing.T) {
	router, forwarder, _ := newTestRouter(t)
	forwarder.On("CreateTicket", mock.Anything, mock.Anything).Return(tracker.Result{Outcome: tracker.OutcomeRateLimited})

	w := postForm(router, formValues())

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "Request 1 was saved")

	w = serve(router, httptest.NewRequest(http.MethodGet, "/api/intake", nil))
	var records []model.IntakeRequest
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
	assert.Len(t, records, 1)
}

func TestHandler_ListWithFilters(t *testing.T) {
	router, forwarder, _ := newTestRouter(t)
	skipTickets(forwarder)
	postForm(router, formValues())
	other := formValues()
	other.Set("request_title", "Sales comp model")
	other.Set("requestor_team", "Sales Ops")
	postForm(router, other)

	w := serve(router, httptest.NewRequest(http.MethodGet, "/api/intake?team=Sales+Ops", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var records []model.IntakeRequest
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "Sales comp model", records[0].RequestTitle)

	w = serve(router, httptest.NewRequest(http.MethodGet, "/api/intake?search=REVENUE", nil))
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "Automate revenue recognition", records[0].RequestTitle)

	w = serve(router, httptest.NewRequest(http.MethodGet, "/api/intake?status=Blocked", nil))
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestHandler_GetMissing(t *testing.T) {
	router, _, _ := newTestRouter(t)

	w := serve(router, httptest.NewRequest(http.MethodGet, "/api/intake/99", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"resource_not_found","error_description":"Not found"}`, w.Body.String())
}

func TestHandler_UpdateStatus(t *testing.T) {
	router, forwarder, _ := newTestRouter(t)
	skipTickets(forwarder)
	postForm(router, formValues())

	put := func(id, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPut, "/api/intake/"+id, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		return serve(router, req)
	}

	w := put("1", `{"status":"Finished"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid status")

	w = put("1", `{"status":"In Progress"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	w = put("1", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = put("42", `{"status":"Complete"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_DeleteIsIdempotent(t *testing.T) {
	router, forwarder, _ := newTestRouter(t)
	skipTickets(forwarder)
	postForm(router, formValues())

	for i := 0; i < 2; i++ {
		w := serve(router, httptest.NewRequest(http.MethodDelete, "/api/intake/1", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":true}`, w.Body.String())
	}

	w := serve(router, httptest.NewRequest(http.MethodGet, "/api/intake/1", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_Export(t *testing.T) {
	router, forwarder, _ := newTestRouter(t)
	skipTickets(forwarder)

	w := serve(router, httptest.NewRequest(http.MethodGet, "/api/export", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	postForm(router, formValues())

	w = serve(router, httptest.NewRequest(http.MethodGet, "/api/export", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="requests.csv"`, w.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "id,request_title,"))

	w = serve(router, httptest.NewRequest(http.MethodGet, "/api/export?format=xlsx", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="requests.xlsx"`, w.Header().Get("Content-Disposition"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))
}

func TestHandler_Backlog(t *testing.T) {
	router, forwarder, _ := newTestRouter(t)
	skipTickets(forwarder)
	postForm(router, formValues())

	w := serve(router, httptest.NewRequest(http.MethodGet, "/api/backlog", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var backlog model.Backlog
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &backlog))
	require.Len(t, backlog.Projects, 1)
	assert.Equal(t, "RevOps", backlog.Projects[0].Source)
	assert.Equal(t, "High", backlog.Projects[0].RevenueFlowImpacted)
}

func TestHandler_PreflightAndHealth(t *testing.T) {
	router, _, _ := newTestRouter(t)

	w := serve(router, httptest.NewRequest(http.MethodOptions, "/submit", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, testOrigin, w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(router, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
}
