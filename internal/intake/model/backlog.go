package model

import "strings"

// BacklogProject is the dashboard view of an intake request.
type BacklogProject struct {
	ID                  string  `json:"id"`
	Name                string  `json:"name"`
	Source              string  `json:"source"`
	Type                string  `json:"type"`
	Status              string  `json:"status"`
	PainPoints          string  `json:"pain_points"`
	SystemsTouched      string  `json:"systems_touched"`
	RevenueFlowImpacted string  `json:"revenue_flow_impacted"`
	AuditCritical       string  `json:"audit_critical"`
	PriorityScore       float64 `json:"priority_score"`
}

// Backlog wraps the dashboard projection.
type Backlog struct {
	Projects []BacklogProject `json:"projects"`
}

// ToBacklogProject projects a request onto the dashboard shape.
func (r *IntakeRequest) ToBacklogProject() BacklogProject {
	painPoints := strings.Join([]string{
		"Problem: " + r.ProblemStatement,
		"Expected Outcome: " + r.ExpectedOutcome,
		"Revenue Impact: " + r.RevenueImpact,
		"Customer Impact: " + r.CustomerImpact,
		"Required Changes: " + r.RequiredChanges,
		"Timeline Pressure: " + r.TimelinePressure,
		"Downstream Dependencies: " + r.DownstreamDependencies,
	}, "\n\n")

	auditCritical := "No"
	if strings.Contains(strings.ToLower(r.AuditRisk), "high") {
		auditCritical = "Yes"
	}

	return BacklogProject{
		ID:                  r.ID,
		Name:                r.RequestTitle,
		Source:              r.RequestorTeam,
		Type:                r.Tags,
		Status:              r.Status,
		PainPoints:          painPoints,
		SystemsTouched:      r.SystemsTouched,
		RevenueFlowImpacted: r.RevenueImpact,
		AuditCritical:       auditCritical,
		PriorityScore:       r.PriorityScore,
	}
}
