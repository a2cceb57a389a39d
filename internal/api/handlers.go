// internal/api/handlers.go
package api

import (
	"encoding/base64"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Corphon/MagicStudio/internal/auth"
	apperrors "github.com/Corphon/MagicStudio/internal/errors"
	"github.com/Corphon/MagicStudio/internal/models"
	"github.com/Corphon/MagicStudio/internal/services"
	"github.com/Corphon/MagicStudio/internal/utils"
)

// Handler serves both views and their JSON counterparts
type Handler struct {
	Creation *services.CreationService
	History  *services.HistoryService
	Tokens   *auth.TokenConfig
	Hub      *AttemptHub
	Response *ResponseHelper
	logger   *utils.Logger
}

func NewHandler(creation *services.CreationService, history *services.HistoryService, tokens *auth.TokenConfig, hub *AttemptHub) *Handler {
	return &Handler{
		Creation: creation,
		History:  history,
		Tokens:   tokens,
		Hub:      hub,
		Response: NewResponseHelper(),
		logger:   utils.GetLogger(),
	}
}

// pageData is handed to the HTML templates
type pageData struct {
	View   models.View
	Nav    []models.NavItem
	Idea   string
	Notice string
	Result *models.AttemptResult
	Image  template.URL
	Panel  models.ParentalPanel
}

func newPage(view models.View) pageData {
	return pageData{View: view, Nav: view.Navigation()}
}

// CreationPage renders the empty creation view
func (h *Handler) CreationPage(c *gin.Context) {
	c.HTML(http.StatusOK, "create.html", newPage(models.CreationView))
}

// CreateSubmit runs one attempt from the creation form
func (h *Handler) CreateSubmit(c *gin.Context) {
	var req models.CreationRequest
	_ = c.ShouldBind(&req)

	page := newPage(models.CreationView)
	page.Idea = req.Idea

	result, err := h.Creation.Create(c.Request.Context(), req.Idea)
	switch {
	case apperrors.IsValidationError(err):
		page.Notice = services.MsgEmptyIdea
	case err != nil && result == nil:
		h.logger.Error("creation attempt failed", map[string]interface{}{"error": err.Error()})
		page.Result = &models.AttemptResult{
			State:       models.StateGenerationFailed,
			UserMessage: services.MsgGenerationFailed,
			Detail:      err.Error(),
		}
	default:
		// a result with an error means the audit write failed; the child still sees the outcome
		page.Result = result
		page.Image = dataURI(result.Illustration)
	}

	c.HTML(http.StatusOK, "create.html", page)
}

// createResponse is the JSON form of an attempt result
type createResponse struct {
	AttemptID string              `json:"attempt_id"`
	State     models.AttemptState `json:"state"`
	Approved  bool                `json:"approved"`
	Message   string              `json:"message"`
	Detail    string              `json:"detail,omitempty"`
	Image     string              `json:"image,omitempty"`
	MIMEType  string              `json:"mime_type,omitempty"`
	Prompt    string              `json:"prompt,omitempty"`
	Record    *models.AuditRecord `json:"record,omitempty"`
	Warning   string              `json:"warning,omitempty"`
}

// CreateAPI runs one attempt from a JSON body {"idea": "..."}
func (h *Handler) CreateAPI(c *gin.Context) {
	var req models.CreationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "Invalid request body", err.Error())
		return
	}

	result, err := h.Creation.Create(c.Request.Context(), req.Idea)
	if result == nil {
		h.Response.FromError(c, err)
		return
	}

	resp := createResponse{
		AttemptID: result.AttemptID,
		State:     result.State,
		Approved:  result.Verdict.Approved,
		Message:   result.UserMessage,
		Detail:    result.Detail,
		Record:    result.Record,
	}
	if ill := result.Illustration; ill != nil {
		resp.Image = base64.StdEncoding.EncodeToString(ill.Data)
		resp.MIMEType = ill.MIMEType
		resp.Prompt = ill.Prompt
	}

	if err != nil {
		h.logger.Error("attempt not recorded", map[string]interface{}{
			"attempt_id": result.AttemptID,
			"error":      err.Error(),
		})
		resp.Warning = ErrorAttemptNotLogged
		h.Response.Success(c, resp, "The drawing is ready but could not be added to the history")
		return
	}
	h.Response.Success(c, resp)
}

// ParentsPage renders the locked parental view
func (h *Handler) ParentsPage(c *gin.Context) {
	c.HTML(http.StatusOK, "parents.html", newPage(models.ParentalView))
}

// ParentsSubmit checks the password form and shows the history when it matches
func (h *Handler) ParentsSubmit(c *gin.Context) {
	page := newPage(models.ParentalView)
	page.Panel = h.History.Unlock(c.Request.Context(), c.PostForm("password"))
	c.HTML(http.StatusOK, "parents.html", page)
}

type sessionRequest struct {
	Password string `json:"password"`
}

type sessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ParentSession exchanges the shared secret for a session token
func (h *Handler) ParentSession(c *gin.Context) {
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "Invalid request body", err.Error())
		return
	}

	if err := h.History.Authorize(req.Password); err != nil {
		switch {
		case apperrors.IsValidationError(err):
			h.Response.Error(c, http.StatusBadRequest, ErrorPasswordRequired, "Password is required")
		default:
			h.Response.Error(c, http.StatusUnauthorized, ErrorWrongPassword, services.MsgWrongPassword)
		}
		return
	}

	token, err := auth.GenerateToken(h.Tokens)
	if err != nil {
		h.Response.FromError(c, err)
		return
	}
	h.Response.Success(c, sessionResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(h.Tokens.Expiration),
	})
}

// ParentHistory returns the history newest first; requires a session
func (h *Handler) ParentHistory(c *gin.Context) {
	records, err := h.History.Recent(c.Request.Context())
	if err != nil {
		if apperrors.IsLogStoreCorrupt(err) {
			h.Response.Error(c, http.StatusInternalServerError, ErrorHistoryUnreadable, "The creation history could not be read", err.Error())
			return
		}
		h.Response.FromError(c, err)
		return
	}
	h.Response.Success(c, gin.H{"records": records, "total": len(records)})
}

// Health reports liveness
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":            "ok",
		"attempt_listeners": h.Hub.ClientCount(),
		"timestamp":         time.Now().Format(time.RFC3339),
	})
}

func dataURI(ill *models.Illustration) template.URL {
	if ill == nil || len(ill.Data) == 0 {
		return ""
	}
	mimeType := ill.MIMEType
	if mimeType == "" {
		mimeType = http.DetectContentType(ill.Data)
	}
	return template.URL("data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(ill.Data))
}
