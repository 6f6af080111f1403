package tracker

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revops/intake-service/internal/system/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *test.Hook) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger, hook := test.NewNullLogger()
	cfg := &config.TrackerConfig{
		BaseURL:      server.URL + "/",
		AccountEmail: "ops@example.com",
		APIToken:     "secret",
		ProjectKey:   "REV",
		Timeout:      2 * time.Second,
	}
	return NewClient(cfg, logger), hook
}

func sampleIssue() Issue {
	return Issue{
		Title:            "Automate rev rec",
		RequestorName:    "Dana",
		RequestorTeam:    "RevOps",
		ProblemStatement: "Manual journal entries",
		ExpectedOutcome:  "Automated entries",
		SystemsTouched:   "NetSuite;Salesforce",
		PriorityScore:    2.6,
	}
}

func TestCreateTicket_Created(t *testing.T) {
	var got createIssueRequest
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rest/api/3/issue", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "ops@example.com", user)
		assert.Equal(t, "secret", pass)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"10001","key":"REV-12"}`))
	})

	result := client.CreateTicket(context.Background(), sampleIssue())

	assert.Equal(t, Result{Outcome: OutcomeCreated, Key: "REV-12"}, result)
	assert.True(t, result.Created())
	assert.Equal(t, "REV", got.Fields.Project.Key)
	assert.Equal(t, "Automate rev rec", got.Fields.Summary)
	assert.Equal(t, "Task", got.Fields.IssueType.Name)
	assert.Contains(t, got.Fields.Description, "*Requestor:* Dana (RevOps)")
	assert.Contains(t, got.Fields.Description, "*Priority Score:* 2.6")
}

func TestCreateTicket_RateLimited(t *testing.T) {
	client, hook := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	result := client.CreateTicket(context.Background(), sampleIssue())

	assert.Equal(t, OutcomeRateLimited, result.Outcome)
	assert.False(t, result.Created())
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestCreateTicket_ServerErrorIsFailed(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	})

	result := client.CreateTicket(context.Background(), sampleIssue())

	assert.Equal(t, Result{Outcome: OutcomeFailed}, result)
}

func TestCreateTicket_MissingKeyIsFailed(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	assert.Equal(t, OutcomeFailed, client.CreateTicket(context.Background(), sampleIssue()).Outcome)
}

func TestCreateTicket_TimeoutIsFailed(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})
	client.httpClient.Timeout = 20 * time.Millisecond

	assert.Equal(t, OutcomeFailed, client.CreateTicket(context.Background(), sampleIssue()).Outcome)
}

func TestCreateTicket_SkippedWhenNotConfigured(t *testing.T) {
	calls := 0
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) { calls++ })
	client.config.ProjectKey = ""

	result := client.CreateTicket(context.Background(), sampleIssue())

	assert.Equal(t, OutcomeSkipped, result.Outcome)
	assert.Zero(t, calls)
}

func TestCreateTicket_DefaultSummary(t *testing.T) {
	var got createIssueRequest
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"key":"REV-1"}`))
	})

	issue := sampleIssue()
	issue.Title = ""
	client.CreateTicket(context.Background(), issue)

	assert.Equal(t, "Revenue Request", got.Fields.Summary)
}

func TestAttachFile(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/api/3/issue/REV-12/attachments", r.URL.Path)
		assert.Equal(t, "no-check", r.Header.Get("X-Atlassian-Token"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		body, _ := io.ReadAll(file)
		assert.Equal(t, "7_notes.txt", header.Filename)
		assert.Equal(t, "hello", string(body))
		w.WriteHeader(http.StatusOK)
	})

	err := client.AttachFile(context.Background(), "REV-12", "7_notes.txt", strings.NewReader("hello"))
	assert.NoError(t, err)
}

func TestAttachFile_ErrorStatus(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	err := client.AttachFile(context.Background(), "REV-12", "a.txt", strings.NewReader("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestDescribe_EmptySectionsAreDashes(t *testing.T) {
	got := Describe(Issue{RequestorName: "Dana", RequestorTeam: "IT", PriorityScore: 3})

	assert.Equal(t, strings.Join([]string{
		"*Requestor:* Dana (IT)",
		"",
		"*Problem Statement*",
		"-",
		"",
		"*Expected Outcome*",
		"-",
		"",
		"*Systems Touched*",
		"-",
		"",
		"*Tags*",
		"-",
		"",
		"*Priority Score:* 3",
	}, "\n"), got)
}
