package model

import (
	"strconv"
	"time"

	"github.com/revops/intake-service/internal/scoring"
)

// Request statuses. Any status may follow any other.
const (
	StatusNew        = "New"
	StatusInProgress = "In Progress"
	StatusComplete   = "Complete"
	StatusBlocked    = "Blocked"
	StatusCancelled  = "Cancelled"
)

// Statuses lists the accepted status values in display order.
var Statuses = []string{StatusNew, StatusInProgress, StatusComplete, StatusBlocked, StatusCancelled}

// Teams lists the requestor teams offered by the intake form.
var Teams = []string{"RevOps", "Accounting", "Sales Ops", "IT", "FP&A", "Other"}

// IsValidStatus reports whether status is one of Statuses.
func IsValidStatus(status string) bool {
	for _, s := range Statuses {
		if s == status {
			return true
		}
	}
	return false
}

// ListDelimiter joins multi-valued form fields into a single column.
const ListDelimiter = ";"

// TimeLayout is the timestamp format used for exports and the CSV store.
const TimeLayout = time.RFC3339

// Columns is the table definition order of an intake request.
var Columns = []string{
	"id",
	"request_title",
	"requestor_name",
	"requestor_team",
	"problem_statement",
	"expected_outcome",
	"revenue_impact",
	"audit_risk",
	"customer_impact",
	"systems_touched",
	"data_objects",
	"required_changes",
	"complexity",
	"cross_functional_effort",
	"timeline_pressure",
	"control_impact",
	"downstream_dependencies",
	"tags",
	"priority_score",
	"is_quick_win",
	"status",
	"created_at",
	"updated_at",
	"jira_key",
}

// IntakeRequest is a single submitted revenue operations request.
type IntakeRequest struct {
	ID                     string     `db:"id" json:"id"`
	RequestTitle           string     `db:"request_title" json:"request_title"`
	RequestorName          string     `db:"requestor_name" json:"requestor_name"`
	RequestorTeam          string     `db:"requestor_team" json:"requestor_team"`
	ProblemStatement       string     `db:"problem_statement" json:"problem_statement"`
	ExpectedOutcome        string     `db:"expected_outcome" json:"expected_outcome"`
	RevenueImpact          string     `db:"revenue_impact" json:"revenue_impact"`
	AuditRisk              string     `db:"audit_risk" json:"audit_risk"`
	CustomerImpact         string     `db:"customer_impact" json:"customer_impact"`
	SystemsTouched         string     `db:"systems_touched" json:"systems_touched"`
	DataObjects            string     `db:"data_objects" json:"data_objects"`
	RequiredChanges        string     `db:"required_changes" json:"required_changes"`
	Complexity             string     `db:"complexity" json:"complexity"`
	CrossFunctionalEffort  string     `db:"cross_functional_effort" json:"cross_functional_effort"`
	TimelinePressure       string     `db:"timeline_pressure" json:"timeline_pressure"`
	ControlImpact          string     `db:"control_impact" json:"control_impact"`
	DownstreamDependencies string     `db:"downstream_dependencies" json:"downstream_dependencies"`
	Tags                   string     `db:"tags" json:"tags"`
	PriorityScore          float64    `db:"priority_score" json:"priority_score"`
	IsQuickWin             bool       `db:"is_quick_win" json:"is_quick_win"`
	Status                 string     `db:"status" json:"status"`
	CreatedAt              time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt              *time.Time `db:"updated_at" json:"updated_at"`
	JiraKey                *string    `db:"jira_key" json:"jira_key"`
}

// ScoringInputs returns the five categorical fields that drive the priority score.
func (r *IntakeRequest) ScoringInputs() scoring.Inputs {
	return scoring.Inputs{
		RevenueImpact:         r.RevenueImpact,
		AuditRisk:             r.AuditRisk,
		Complexity:            r.Complexity,
		CrossFunctionalEffort: r.CrossFunctionalEffort,
		TimelinePressure:      r.TimelinePressure,
	}
}

// Values renders the record as strings in Columns order. Absent values are empty.
func (r *IntakeRequest) Values() []string {
	updatedAt := ""
	if r.UpdatedAt != nil {
		updatedAt = r.UpdatedAt.UTC().Format(TimeLayout)
	}
	jiraKey := ""
	if r.JiraKey != nil {
		jiraKey = *r.JiraKey
	}
	createdAt := ""
	if !r.CreatedAt.IsZero() {
		createdAt = r.CreatedAt.UTC().Format(TimeLayout)
	}

	return []string{
		r.ID,
		r.RequestTitle,
		r.RequestorName,
		r.RequestorTeam,
		r.ProblemStatement,
		r.ExpectedOutcome,
		r.RevenueImpact,
		r.AuditRisk,
		r.CustomerImpact,
		r.SystemsTouched,
		r.DataObjects,
		r.RequiredChanges,
		r.Complexity,
		r.CrossFunctionalEffort,
		r.TimelinePressure,
		r.ControlImpact,
		r.DownstreamDependencies,
		r.Tags,
		scoring.Format(r.PriorityScore),
		strconv.FormatBool(r.IsQuickWin),
		r.Status,
		createdAt,
		updatedAt,
		jiraKey,
	}
}

// ListFilter narrows a list call. Empty fields do not filter.
type ListFilter struct {
	Team   string `form:"team"`
	Status string `form:"status"`
	Search string `form:"search"`
}

// StatusUpdateRequest is the body of a status change.
type StatusUpdateRequest struct {
	Status string `json:"status"`
}
