package model

import (
	"io"
	"strings"
)

// SubmitForm is the typed intake form. Repeated keys populate the slice fields.
type SubmitForm struct {
	RequestTitle           string   `form:"request_title" validate:"required,max=255"`
	RequestorName          string   `form:"requestor_name" validate:"required"`
	RequestorTeam          string   `form:"requestor_team" validate:"required"`
	ProblemStatement       string   `form:"problem_statement" validate:"required"`
	ExpectedOutcome        string   `form:"expected_outcome" validate:"required"`
	RevenueImpact          string   `form:"revenue_impact"`
	AuditRisk              string   `form:"audit_risk"`
	CustomerImpact         string   `form:"customer_impact"`
	SystemsTouched         []string `form:"systems_touched"`
	DataObjects            string   `form:"data_objects"`
	RequiredChanges        string   `form:"required_changes"`
	Complexity             string   `form:"complexity"`
	CrossFunctionalEffort  string   `form:"cross_functional_effort"`
	TimelinePressure       string   `form:"timeline_pressure"`
	ControlImpact          string   `form:"control_impact"`
	DownstreamDependencies string   `form:"downstream_dependencies"`
	Tags                   []string `form:"tags"`
}

// Normalize trims every value and drops blank entries from the repeated fields.
func (f *SubmitForm) Normalize() {
	for _, p := range []*string{
		&f.RequestTitle, &f.RequestorName, &f.RequestorTeam, &f.ProblemStatement,
		&f.ExpectedOutcome, &f.RevenueImpact, &f.AuditRisk, &f.CustomerImpact,
		&f.DataObjects, &f.RequiredChanges, &f.Complexity, &f.CrossFunctionalEffort,
		&f.TimelinePressure, &f.ControlImpact, &f.DownstreamDependencies,
	} {
		*p = strings.TrimSpace(*p)
	}
	f.SystemsTouched = compact(f.SystemsTouched)
	f.Tags = compact(f.Tags)
}

func compact(values []string) []string {
	out := values[:0]
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Attachment is an uploaded file accompanying a submission.
type Attachment struct {
	Filename    string
	ContentType string
	Open        func() (io.ReadCloser, error)
}

// SubmitResult summarizes an accepted submission.
type SubmitResult struct {
	ID               string  `json:"id"`
	PriorityScore    float64 `json:"priority_score"`
	QuickWin         bool    `json:"is_quick_win"`
	AttachmentsCount int     `json:"attachments_count"`
	TicketKey        string  `json:"jira_key,omitempty"`
	Message          string  `json:"message"`
}
