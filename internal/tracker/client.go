// Package tracker forwards intake requests to a Jira Cloud project as tasks.
package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/revops/intake-service/internal/scoring"
	"github.com/revops/intake-service/internal/system/config"
	"github.com/revops/intake-service/internal/system/constants"
)

// Outcome describes what happened to a ticket creation attempt.
type Outcome string

const (
	OutcomeCreated     Outcome = "created"
	OutcomeSkipped     Outcome = "skipped"
	OutcomeFailed      Outcome = "failed"
	OutcomeRateLimited Outcome = "rate_limited"
)

const defaultSummary = "Revenue Request"

// Result is the outcome of CreateTicket. Key is set only when Outcome is OutcomeCreated.
type Result struct {
	Outcome Outcome
	Key     string
}

// Created reports whether a ticket now exists.
func (r Result) Created() bool {
	return r.Outcome == OutcomeCreated && r.Key != ""
}

// Issue carries the request fields mirrored into the ticket.
type Issue struct {
	Title            string
	RequestorName    string
	RequestorTeam    string
	ProblemStatement string
	ExpectedOutcome  string
	SystemsTouched   string
	Tags             string
	PriorityScore    float64
}

type issueFields struct {
	Project     projectRef `json:"project"`
	Summary     string     `json:"summary"`
	Description string     `json:"description"`
	IssueType   issueType  `json:"issuetype"`
}

type projectRef struct {
	Key string `json:"key"`
}

type issueType struct {
	Name string `json:"name"`
}

type createIssueRequest struct {
	Fields issueFields `json:"fields"`
}

type createIssueResponse struct {
	ID  string `json:"id"`
	Key string `json:"key"`
}

// Client talks to the Jira Cloud REST v3 API.
type Client struct {
	httpClient *http.Client
	config     *config.TrackerConfig
	logger     *logrus.Logger
}

// NewClient creates a tracker client. Requests are attempted once within the configured timeout.
func NewClient(cfg *config.TrackerConfig, logger *logrus.Logger) *Client {
	timeout := constants.DefaultTrackerTimeout
	if cfg.Timeout > 0 {
		timeout = cfg.Timeout
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		config: cfg,
		logger: logger,
	}
}

// Configured reports whether ticket creation will be attempted.
func (c *Client) Configured() bool {
	return c.config.IsConfigured()
}

// CreateTicket opens a task for the issue. Transport and HTTP failures are
// reported through the Result, never as a returned error.
func (c *Client) CreateTicket(ctx context.Context, issue Issue) Result {
	if !c.Configured() {
		c.logger.Debug("Issue tracker not configured, skipping ticket creation")
		return Result{Outcome: OutcomeSkipped}
	}

	summary := issue.Title
	if summary == "" {
		summary = defaultSummary
	}
	issueTypeName := c.config.IssueType
	if issueTypeName == "" {
		issueTypeName = "Task"
	}

	payload := createIssueRequest{Fields: issueFields{
		Project:     projectRef{Key: c.config.ProjectKey},
		Summary:     summary,
		Description: Describe(issue),
		IssueType:   issueType{Name: issueTypeName},
	}}

	body, err := json.Marshal(payload)
	if err != nil {
		c.logger.WithError(err).Error("Failed to marshal issue payload")
		return Result{Outcome: OutcomeFailed}
	}

	endpoint := c.baseURL() + "/rest/api/3/issue"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		c.logger.WithError(err).Error("Failed to create issue request")
		return Result{Outcome: OutcomeFailed}
	}
	req.Header.Set("Content-Type", constants.ContentTypeJSON)
	req.Header.Set("Accept", constants.ContentTypeJSON)
	req.SetBasicAuth(c.config.AccountEmail, c.config.APIToken)

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(startTime)
	if err != nil {
		c.logger.WithError(err).WithField("duration", duration).Error("Issue tracker call failed")
		return Result{Outcome: OutcomeFailed}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.WithError(err).Error("Failed to read issue tracker response")
		return Result{Outcome: OutcomeFailed}
	}

	c.logger.WithFields(logrus.Fields{
		"statusCode": resp.StatusCode,
		"duration":   duration,
	}).Debug("Issue tracker response received")

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		c.logger.Warn("Issue tracker rate limit hit for issue creation")
		return Result{Outcome: OutcomeRateLimited}
	case resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated:
		c.logger.WithFields(logrus.Fields{
			"statusCode": resp.StatusCode,
			"response":   string(respBody),
		}).Error("Issue tracker returned non-success status")
		return Result{Outcome: OutcomeFailed}
	}

	var created createIssueResponse
	if err := json.Unmarshal(respBody, &created); err != nil || created.Key == "" {
		c.logger.WithField("response", string(respBody)).Error("Issue tracker response carried no issue key")
		return Result{Outcome: OutcomeFailed}
	}

	return Result{Outcome: OutcomeCreated, Key: created.Key}
}

// AttachFile uploads content as an attachment of the ticket identified by key.
func (c *Client) AttachFile(ctx context.Context, key, filename string, content io.Reader) error {
	if !c.Configured() {
		return fmt.Errorf("issue tracker not configured")
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return fmt.Errorf("failed to copy attachment: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close multipart writer: %w", err)
	}

	endpoint := fmt.Sprintf("%s/rest/api/3/issue/%s/attachments", c.baseURL(), url.PathEscape(key))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", constants.ContentTypeJSON)
	req.Header.Set("X-Atlassian-Token", "no-check")
	req.SetBasicAuth(c.config.AccountEmail, c.config.APIToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("attachment upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		text, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("attachment upload returned status %d: %s", resp.StatusCode, string(text))
	}
	return nil
}

func (c *Client) baseURL() string {
	return strings.TrimRight(c.config.BaseURL, "/")
}

// Describe renders the ticket description. Empty sections are shown as "-".
func Describe(issue Issue) string {
	lines := []string{
		fmt.Sprintf("*Requestor:* %s (%s)", issue.RequestorName, issue.RequestorTeam),
		"",
		"*Problem Statement*",
		orDash(issue.ProblemStatement),
		"",
		"*Expected Outcome*",
		orDash(issue.ExpectedOutcome),
		"",
		"*Systems Touched*",
		orDash(issue.SystemsTouched),
		"",
		"*Tags*",
		orDash(issue.Tags),
		"",
		"*Priority Score:* " + scoring.Format(issue.PriorityScore),
	}
	return strings.Join(lines, "\n")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
