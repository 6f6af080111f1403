package intake

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/revops/intake-service/internal/intake/model"
	"github.com/revops/intake-service/internal/scoring"
	"github.com/revops/intake-service/internal/system/error/serviceerror"
	"github.com/revops/intake-service/internal/system/utils"
	"github.com/revops/intake-service/internal/tracker"
)

// TicketForwarder mirrors accepted requests into the external issue tracker.
type TicketForwarder interface {
	CreateTicket(ctx context.Context, issue tracker.Issue) tracker.Result
	AttachFile(ctx context.Context, key, filename string, content io.Reader) error
}

// AttachmentSink stores uploaded files under keys namespaced by record id.
type AttachmentSink interface {
	Put(recordID, filename string, content io.Reader) (string, error)
	Open(key string) (io.ReadCloser, error)
}

// IntakeService defines the exported service interface
type IntakeService interface {
	Submit(ctx context.Context, form model.SubmitForm, attachments []model.Attachment) (*model.SubmitResult, *serviceerror.ServiceError)
	ListRequests(ctx context.Context, filter model.ListFilter) ([]model.IntakeRequest, *serviceerror.ServiceError)
	GetRequest(ctx context.Context, id string) (*model.IntakeRequest, *serviceerror.ServiceError)
	SetStatus(ctx context.Context, id, status string) *serviceerror.ServiceError
	DeleteRequest(ctx context.Context, id string) *serviceerror.ServiceError
	ExportCSV(ctx context.Context) ([]byte, *serviceerror.ServiceError)
	ExportXLSX(ctx context.Context) ([]byte, *serviceerror.ServiceError)
	Backlog(ctx context.Context) (*model.Backlog, *serviceerror.ServiceError)
	HealthCheck(ctx context.Context) *serviceerror.ServiceError
}

// intakeService implements the IntakeService interface
type intakeService struct {
	store     IntakeStore
	forwarder TicketForwarder
	sink      AttachmentSink
	validate  *validator.Validate
	logger    *logrus.Logger
	now       func() time.Time
}

// NewIntakeService creates the intake service. sink may be nil when attachments are disabled.
func NewIntakeService(store IntakeStore, forwarder TicketForwarder, sink AttachmentSink, logger *logrus.Logger) IntakeService {
	return &intakeService{
		store:     store,
		forwarder: forwarder,
		sink:      sink,
		validate:  newFormValidator(),
		logger:    logger,
		now:       utils.NowUTC,
	}
}

func newFormValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Submit validates, scores and stores a request, then forwards it to the issue
// tracker. Once stored the request is never rolled back: tracker and attachment
// failures are logged, and a rate-limited tracker is reported alongside the
// stored result.
func (s *intakeService) Submit(ctx context.Context, form model.SubmitForm, attachments []model.Attachment) (*model.SubmitResult, *serviceerror.ServiceError) {
	form.Normalize()
	if err := s.validateForm(&form); err != nil {
		return nil, err
	}

	rec := newRecord(form, s.now())
	id, err := s.store.Insert(ctx, rec)
	if err != nil {
		s.logger.WithError(err).Error("Failed to store intake request")
		return nil, serviceerror.CustomServiceError(serviceerror.DatabaseError, "failed to save request")
	}
	logger := s.logger.WithField("id", id)

	result := &model.SubmitResult{
		ID:            id,
		PriorityScore: rec.PriorityScore,
		QuickWin:      rec.IsQuickWin,
	}

	// The stored request is forwarded even if the caller goes away; only the
	// tracker client's own timeout bounds the attempt.
	forwardCtx := context.WithoutCancel(ctx)
	ticket := s.forwarder.CreateTicket(forwardCtx, toIssue(rec))
	switch ticket.Outcome {
	case tracker.OutcomeCreated:
		result.TicketKey = ticket.Key
		if err := s.store.SetJiraKey(forwardCtx, id, ticket.Key); err != nil {
			logger.WithError(err).WithField("jira_key", ticket.Key).Error("Failed to record ticket key")
		}
	case tracker.OutcomeFailed:
		logger.Warn("Ticket was not created for intake request")
	case tracker.OutcomeRateLimited:
		logger.Warn("Issue tracker rate limited ticket creation")
	}

	result.AttachmentsCount = s.storeAttachments(forwardCtx, logger, id, ticket, attachments)
	result.Message = submitMessage(result)

	if ticket.Outcome == tracker.OutcomeRateLimited {
		return result, serviceerror.CustomServiceError(serviceerror.RateLimitedError,
			fmt.Sprintf("Request %s was saved, but the issue tracker is rate limiting requests and no ticket was created", id))
	}
	return result, nil
}

// validateForm reports missing required fields before length violations.
func (s *intakeService) validateForm(form *model.SubmitForm) *serviceerror.ServiceError {
	err := s.validate.Struct(form)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return serviceerror.CustomServiceError(serviceerror.ValidationError, err.Error())
	}
	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			return serviceerror.CustomServiceError(serviceerror.MissingFieldError, "Missing "+fe.Field())
		}
	}
	for _, fe := range fieldErrs {
		if fe.Tag() == "max" {
			return serviceerror.CustomServiceError(serviceerror.FieldTooLongError,
				fmt.Sprintf("Field %s exceeds %s characters", fe.Field(), fe.Param()))
		}
	}
	return serviceerror.CustomServiceError(serviceerror.ValidationError, fieldErrs[0].Error())
}

func (s *intakeService) storeAttachments(ctx context.Context, logger *logrus.Entry, id string,
	ticket tracker.Result, attachments []model.Attachment) int {
	if s.sink == nil {
		return 0
	}

	stored := 0
	for _, att := range attachments {
		if att.Filename == "" || att.Open == nil {
			continue
		}
		attLogger := logger.WithField("filename", att.Filename)

		key, err := s.putAttachment(id, att)
		if err != nil {
			attLogger.WithError(err).Error("Failed to store attachment")
			continue
		}
		stored++

		if !ticket.Created() {
			continue
		}
		if err := s.attachToTicket(ctx, ticket.Key, key); err != nil {
			attLogger.WithError(err).WithField("jira_key", ticket.Key).Warn("Failed to attach file to ticket")
		}
	}
	return stored
}

func (s *intakeService) putAttachment(id string, att model.Attachment) (string, error) {
	content, err := att.Open()
	if err != nil {
		return "", err
	}
	defer content.Close()
	return s.sink.Put(id, att.Filename, content)
}

func (s *intakeService) attachToTicket(ctx context.Context, ticketKey, key string) error {
	content, err := s.sink.Open(key)
	if err != nil {
		return err
	}
	defer content.Close()
	return s.forwarder.AttachFile(ctx, ticketKey, key, content)
}

func (s *intakeService) ListRequests(ctx context.Context, filter model.ListFilter) ([]model.IntakeRequest, *serviceerror.ServiceError) {
	records, err := s.store.List(ctx, filter)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list intake requests")
		return nil, serviceerror.CustomServiceError(serviceerror.DatabaseError, "failed to list requests")
	}
	return records, nil
}

func (s *intakeService) GetRequest(ctx context.Context, id string) (*model.IntakeRequest, *serviceerror.ServiceError) {
	rec, err := s.store.GetByID(ctx, id)
	if err != nil {
		s.logger.WithError(err).WithField("id", id).Error("Failed to load intake request")
		return nil, serviceerror.CustomServiceError(serviceerror.DatabaseError, "failed to load request")
	}
	if rec == nil {
		return nil, serviceerror.CustomServiceError(serviceerror.ResourceNotFoundError, "Not found")
	}
	return rec, nil
}

func (s *intakeService) SetStatus(ctx context.Context, id, status string) *serviceerror.ServiceError {
	if !model.IsValidStatus(status) {
		return serviceerror.CustomServiceError(serviceerror.InvalidStatusError, "Invalid status")
	}

	found, err := s.store.UpdateStatus(ctx, id, status, s.now())
	if err != nil {
		s.logger.WithError(err).WithField("id", id).Error("Failed to update intake request status")
		return serviceerror.CustomServiceError(serviceerror.DatabaseError, "failed to update status")
	}
	if !found {
		return serviceerror.CustomServiceError(serviceerror.ResourceNotFoundError, "Not found")
	}
	return nil
}

func (s *intakeService) DeleteRequest(ctx context.Context, id string) *serviceerror.ServiceError {
	if err := s.store.Delete(ctx, id); err != nil {
		s.logger.WithError(err).WithField("id", id).Error("Failed to delete intake request")
		return serviceerror.CustomServiceError(serviceerror.DatabaseError, "failed to delete request")
	}
	return nil
}

func (s *intakeService) Backlog(ctx context.Context) (*model.Backlog, *serviceerror.ServiceError) {
	records, err := s.store.ExportAll(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load backlog")
		return nil, serviceerror.CustomServiceError(serviceerror.DatabaseError, "failed to load backlog")
	}

	sortByPriority(records)
	backlog := &model.Backlog{Projects: make([]model.BacklogProject, 0, len(records))}
	for i := range records {
		backlog.Projects = append(backlog.Projects, records[i].ToBacklogProject())
	}
	return backlog, nil
}

func (s *intakeService) HealthCheck(ctx context.Context) *serviceerror.ServiceError {
	if err := s.store.HealthCheck(ctx); err != nil {
		s.logger.WithError(err).Error("Record store health check failed")
		return serviceerror.CustomServiceError(serviceerror.DatabaseError, "record store unavailable")
	}
	return nil
}

func newRecord(form model.SubmitForm, now time.Time) *model.IntakeRequest {
	rec := &model.IntakeRequest{
		RequestTitle:           form.RequestTitle,
		RequestorName:          form.RequestorName,
		RequestorTeam:          form.RequestorTeam,
		ProblemStatement:       form.ProblemStatement,
		ExpectedOutcome:        form.ExpectedOutcome,
		RevenueImpact:          form.RevenueImpact,
		AuditRisk:              form.AuditRisk,
		CustomerImpact:         form.CustomerImpact,
		SystemsTouched:         strings.Join(form.SystemsTouched, model.ListDelimiter),
		DataObjects:            form.DataObjects,
		RequiredChanges:        form.RequiredChanges,
		Complexity:             form.Complexity,
		CrossFunctionalEffort:  form.CrossFunctionalEffort,
		TimelinePressure:       form.TimelinePressure,
		ControlImpact:          form.ControlImpact,
		DownstreamDependencies: form.DownstreamDependencies,
		Tags:                   strings.Join(form.Tags, model.ListDelimiter),
		Status:                 model.StatusNew,
		CreatedAt:              now,
	}
	scored := scoring.Evaluate(rec.ScoringInputs())
	rec.PriorityScore = scored.PriorityScore
	rec.IsQuickWin = scored.QuickWin
	return rec
}

func toIssue(rec *model.IntakeRequest) tracker.Issue {
	return tracker.Issue{
		Title:            rec.RequestTitle,
		RequestorName:    rec.RequestorName,
		RequestorTeam:    rec.RequestorTeam,
		ProblemStatement: rec.ProblemStatement,
		ExpectedOutcome:  rec.ExpectedOutcome,
		SystemsTouched:   rec.SystemsTouched,
		Tags:             rec.Tags,
		PriorityScore:    rec.PriorityScore,
	}
}

func submitMessage(result *model.SubmitResult) string {
	msg := "Request submitted. Priority score: " + scoring.Format(result.PriorityScore)
	if result.QuickWin {
		msg += " • Marked as QUICK WIN"
	}
	if result.AttachmentsCount > 0 {
		msg += fmt.Sprintf(" • %d attachment(s)", result.AttachmentsCount)
	}
	if result.TicketKey != "" {
		msg += " • Jira Task: " + result.TicketKey
	}
	return msg
}
