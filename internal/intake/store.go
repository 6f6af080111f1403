package intake

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/revops/intake-service/internal/intake/model"
	"github.com/revops/intake-service/internal/system/constants"
	dbmodel "github.com/revops/intake-service/internal/system/database/model"
	"github.com/revops/intake-service/internal/system/database/provider"
	"github.com/revops/intake-service/internal/system/utils"
)

const selectColumns = "SELECT id, request_title, requestor_name, requestor_team, problem_statement, expected_outcome, " +
	"revenue_impact, audit_risk, customer_impact, systems_touched, data_objects, required_changes, complexity, " +
	"cross_functional_effort, timeline_pressure, control_impact, downstream_dependencies, tags, priority_score, " +
	"is_quick_win, status, created_at, updated_at, jira_key FROM intake_requests"

const listOrder = " ORDER BY priority_score DESC, created_at DESC"

// DBQuery objects for all intake request operations
var (
	QueryInsertRequest = dbmodel.DBQuery{
		ID: "INSERT_INTAKE_REQUEST",
		Query: "INSERT INTO intake_requests (id, request_title, requestor_name, requestor_team, problem_statement, " +
			"expected_outcome, revenue_impact, audit_risk, customer_impact, systems_touched, data_objects, " +
			"required_changes, complexity, cross_functional_effort, timeline_pressure, control_impact, " +
			"downstream_dependencies, tags, priority_score, is_quick_win, status, created_at, updated_at, jira_key) " +
			"VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
	}

	QueryGetRequestByID = dbmodel.DBQuery{
		ID:    "GET_INTAKE_REQUEST_BY_ID",
		Query: selectColumns + " WHERE id = ?",
	}

	QueryUpdateStatus = dbmodel.DBQuery{
		ID:    "UPDATE_INTAKE_REQUEST_STATUS",
		Query: "UPDATE intake_requests SET status = ?, updated_at = ? WHERE id = ?",
	}

	QuerySetJiraKey = dbmodel.DBQuery{
		ID:    "SET_INTAKE_REQUEST_JIRA_KEY",
		Query: "UPDATE intake_requests SET jira_key = ? WHERE id = ?",
	}

	QueryDeleteRequest = dbmodel.DBQuery{
		ID:    "DELETE_INTAKE_REQUEST",
		Query: "DELETE FROM intake_requests WHERE id = ?",
	}

	QueryExportRequests = dbmodel.DBQuery{
		ID:    "EXPORT_INTAKE_REQUESTS",
		Query: selectColumns + " ORDER BY created_at DESC",
	}
)

// IntakeStore is the record store behind the intake service.
type IntakeStore interface {
	// Insert assigns rec.ID and persists the record.
	Insert(ctx context.Context, rec *model.IntakeRequest) (string, error)
	List(ctx context.Context, filter model.ListFilter) ([]model.IntakeRequest, error)
	// GetByID returns nil, nil when no record has the id.
	GetByID(ctx context.Context, id string) (*model.IntakeRequest, error)
	// UpdateStatus returns false when no record has the id.
	UpdateStatus(ctx context.Context, id, status string, updatedAt time.Time) (bool, error)
	SetJiraKey(ctx context.Context, id, key string) error
	// Delete succeeds whether or not the id exists.
	Delete(ctx context.Context, id string) error
	ExportAll(ctx context.Context) ([]model.IntakeRequest, error)
	HealthCheck(ctx context.Context) error
}

// sqlStore implements IntakeStore over the hosted intake_requests table.
type sqlStore struct {
	dbClient provider.DBClientInterface
}

// NewSQLStore creates a store backed by the hosted table.
func NewSQLStore(dbClient provider.DBClientInterface) IntakeStore {
	return &sqlStore{dbClient: dbClient}
}

func (s *sqlStore) Insert(ctx context.Context, rec *model.IntakeRequest) (string, error) {
	if rec.ID == "" {
		rec.ID = utils.GenerateUUID()
	}
	_, err := s.dbClient.Execute(ctx, QueryInsertRequest,
		rec.ID, rec.RequestTitle, rec.RequestorName, rec.RequestorTeam, rec.ProblemStatement,
		rec.ExpectedOutcome, rec.RevenueImpact, rec.AuditRisk, rec.CustomerImpact, rec.SystemsTouched,
		rec.DataObjects, rec.RequiredChanges, rec.Complexity, rec.CrossFunctionalEffort, rec.TimelinePressure,
		rec.ControlImpact, rec.DownstreamDependencies, rec.Tags, rec.PriorityScore, rec.IsQuickWin,
		rec.Status, rec.CreatedAt, rec.UpdatedAt, rec.JiraKey)
	if err != nil {
		return "", fmt.Errorf("failed to insert intake request: %w", err)
	}
	return rec.ID, nil
}

func (s *sqlStore) List(ctx context.Context, filter model.ListFilter) ([]model.IntakeRequest, error) {
	query, args := buildListQuery(filter)
	records := []model.IntakeRequest{}
	if err := s.dbClient.Select(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list intake requests: %w", err)
	}
	return records, nil
}

// buildListQuery applies the optional filters. Search is case-insensitive
// over the title and requestor name.
func buildListQuery(filter model.ListFilter) (dbmodel.DBQuery, []interface{}) {
	var conditions []string
	var args []interface{}

	if filter.Team != "" {
		conditions = append(conditions, "requestor_team = ?")
		args = append(args, filter.Team)
	}
	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(filter.Search)) + "%"
		conditions = append(conditions, "(LOWER(request_title) LIKE ? OR LOWER(requestor_name) LIKE ?)")
		args = append(args, pattern, pattern)
	}

	query := selectColumns
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += listOrder + fmt.Sprintf(" LIMIT %d", constants.MaxListSize)

	return dbmodel.DBQuery{ID: "LIST_INTAKE_REQUESTS", Query: query}, args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (s *sqlStore) GetByID(ctx context.Context, id string) (*model.IntakeRequest, error) {
	var rec model.IntakeRequest
	found, err := s.dbClient.Get(ctx, &rec, QueryGetRequestByID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get intake request: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &rec, nil
}

func (s *sqlStore) UpdateStatus(ctx context.Context, id, status string, updatedAt time.Time) (bool, error) {
	rows, err := s.dbClient.Execute(ctx, QueryUpdateStatus, status, updatedAt, id)
	if err != nil {
		return false, fmt.Errorf("failed to update intake request status: %w", err)
	}
	return rows > 0, nil
}

func (s *sqlStore) SetJiraKey(ctx context.Context, id, key string) error {
	if _, err := s.dbClient.Execute(ctx, QuerySetJiraKey, key, id); err != nil {
		return fmt.Errorf("failed to set jira key: %w", err)
	}
	return nil
}

func (s *sqlStore) Delete(ctx context.Context, id string) error {
	if _, err := s.dbClient.Execute(ctx, QueryDeleteRequest, id); err != nil {
		return fmt.Errorf("failed to delete intake request: %w", err)
	}
	return nil
}

func (s *sqlStore) ExportAll(ctx context.Context) ([]model.IntakeRequest, error) {
	records := []model.IntakeRequest{}
	if err := s.dbClient.Select(ctx, &records, QueryExportRequests); err != nil {
		return nil, fmt.Errorf("failed to export intake requests: %w", err)
	}
	return records, nil
}

func (s *sqlStore) HealthCheck(ctx context.Context) error {
	return s.dbClient.HealthCheck(ctx)
}
