package intake

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/form"
	"github.com/sirupsen/logrus"

	"github.com/revops/intake-service/internal/intake/model"
	"github.com/revops/intake-service/internal/system/constants"
	"github.com/revops/intake-service/internal/system/error/serviceerror"
	"github.com/revops/intake-service/internal/system/middleware"
	"github.com/revops/intake-service/internal/system/utils"
)

type intakeHandler struct {
	service        IntakeService
	decoder        *form.Decoder
	logger         *logrus.Logger
	maxUploadBytes int64
}

func newIntakeHandler(service IntakeService, logger *logrus.Logger, maxUploadBytes int64) *intakeHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = constants.DefaultMaxUploadBytes
	}
	return &intakeHandler{
		service:        service,
		decoder:        form.NewDecoder(),
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
	}
}

// submit handles POST /submit. Bodies may be url-encoded or multipart; the
// response is plain text in every case. The whole body is capped at
// maxUploadBytes.
func (h *intakeHandler) submit(c *gin.Context) {
	if c.Request.ContentLength > h.maxUploadBytes {
		utils.SendTextError(c, serviceerror.CustomServiceError(serviceerror.PayloadTooLargeError,
			fmt.Sprintf("Request body exceeds %d bytes", h.maxUploadBytes)))
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	attachments, err := h.parseSubmitBody(c.Request)
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		utils.SendTextError(c, serviceerror.CustomServiceError(serviceerror.PayloadTooLargeError,
			fmt.Sprintf("Request body exceeds %d bytes", h.maxUploadBytes)))
		return
	}
	if err != nil {
		middleware.RequestLogger(c, h.logger).WithError(err).Warn("Failed to parse submission body")
		utils.SendTextError(c, serviceerror.CustomServiceError(serviceerror.InvalidRequestError, "Invalid form data"))
		return
	}

	var submitForm model.SubmitForm
	if err := h.decoder.Decode(&submitForm, c.Request.PostForm); err != nil {
		utils.SendTextError(c, serviceerror.CustomServiceError(serviceerror.InvalidRequestError, "Invalid form data"))
		return
	}

	result, svcErr := h.service.Submit(c.Request.Context(), submitForm, attachments)
	if svcErr != nil {
		utils.SendTextError(c, svcErr)
		return
	}

	middleware.RequestLogger(c, h.logger).WithFields(logrus.Fields{
		"id":             result.ID,
		"priority_score": result.PriorityScore,
	}).Info("Intake request submitted")
	c.String(http.StatusOK, result.Message)
}

func (h *intakeHandler) parseSubmitBody(r *http.Request) ([]model.Attachment, error) {
	err := r.ParseMultipartForm(h.maxUploadBytes)
	if errors.Is(err, http.ErrNotMultipart) {
		return nil, r.ParseForm()
	}
	if err != nil {
		return nil, err
	}

	fields := make([]string, 0, len(r.MultipartForm.File))
	for field := range r.MultipartForm.File {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var attachments []model.Attachment
	for _, field := range fields {
		for _, fh := range r.MultipartForm.File[field] {
			attachments = append(attachments, model.Attachment{
				Filename:    fh.Filename,
				ContentType: fh.Header.Get(constants.ContentTypeHeaderName),
				Open: func() (io.ReadCloser, error) {
					return fh.Open()
				},
			})
		}
	}
	return attachments, nil
}

// listRequests handles GET /api/intake
func (h *intakeHandler) listRequests(c *gin.Context) {
	var filter model.ListFilter
	if err := h.decoder.Decode(&filter, c.Request.URL.Query()); err != nil {
		utils.SendError(c, serviceerror.CustomServiceError(serviceerror.InvalidRequestError, "Invalid query parameters"))
		return
	}

	records, svcErr := h.service.ListRequests(c.Request.Context(), filter)
	if svcErr != nil {
		utils.SendError(c, svcErr)
		return
	}
	utils.JSONResponse(c, http.StatusOK, records)
}

// getRequest handles GET /api/intake/:id
func (h *intakeHandler) getRequest(c *gin.Context) {
	rec, svcErr := h.service.GetRequest(c.Request.Context(), c.Param("id"))
	if svcErr != nil {
		utils.SendError(c, svcErr)
		return
	}
	utils.JSONResponse(c, http.StatusOK, rec)
}

// updateStatus handles PUT /api/intake/:id
func (h *intakeHandler) updateStatus(c *gin.Context) {
	var req model.StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendError(c, serviceerror.CustomServiceError(serviceerror.InvalidRequestError, "Invalid request body"))
		return
	}

	if svcErr := h.service.SetStatus(c.Request.Context(), c.Param("id"), req.Status); svcErr != nil {
		utils.SendError(c, svcErr)
		return
	}
	utils.JSONResponse(c, http.StatusOK, gin.H{"success": true})
}

// deleteRequest handles DELETE /api/intake/:id
func (h *intakeHandler) deleteRequest(c *gin.Context) {
	if svcErr := h.service.DeleteRequest(c.Request.Context(), c.Param("id")); svcErr != nil {
		utils.SendError(c, svcErr)
		return
	}
	utils.JSONResponse(c, http.StatusOK, gin.H{"success": true})
}

// export handles GET /api/export; ?format=xlsx selects the spreadsheet.
func (h *intakeHandler) export(c *gin.Context) {
	if c.Query("format") == "xlsx" {
		data, svcErr := h.service.ExportXLSX(c.Request.Context())
		if svcErr != nil {
			utils.SendError(c, svcErr)
			return
		}
		c.Header(constants.ContentDispositionHeaderName, `attachment; filename="requests.xlsx"`)
		c.Data(http.StatusOK, constants.ContentTypeXLSX, data)
		return
	}

	data, svcErr := h.service.ExportCSV(c.Request.Context())
	if svcErr != nil {
		utils.SendError(c, svcErr)
		return
	}
	c.Header(constants.ContentDispositionHeaderName, `attachment; filename="requests.csv"`)
	c.Data(http.StatusOK, constants.ContentTypeCSV, data)
}

// backlog handles GET /api/backlog
func (h *intakeHandler) backlog(c *gin.Context) {
	backlog, svcErr := h.service.Backlog(c.Request.Context())
	if svcErr != nil {
		utils.SendError(c, svcErr)
		return
	}
	utils.JSONResponse(c, http.StatusOK, backlog)
}

// health handles GET /health
func (h *intakeHandler) health(c *gin.Context) {
	if svcErr := h.service.HealthCheck(c.Request.Context()); svcErr != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
