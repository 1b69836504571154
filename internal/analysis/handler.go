package analysis

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"tokencount-backend/internal/shared/apperrors"
	"tokencount-backend/internal/shared/server/middleware"
	"tokencount-backend/internal/shared/server/respond"
	"tokencount-backend/internal/shared/util"
)

const (
	analyzedMessage = "Document analyzed successfully"
	healthMessage   = "Token Count Service is running"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
	// MediaTypes, when set, lists the registered media types in the health payload.
	MediaTypes func() []string
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, mediaTypes func() []string) *Handler {
	return &Handler{Svc: svc, MediaTypes: mediaTypes}
}

// RegisterRoutes attaches analysis routes to the router.
func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/", h.health)
	r.GET("/health", h.health)
	r.POST("/api/documents/analyze", h.analyze)
	r.GET("/api/documents/status", h.status)
}

func (h *Handler) health(c *gin.Context) {
	if err := h.Svc.TestConnection(c.Request.Context()); err != nil {
		respond.FromError(c, err)
		return
	}
	resp := HealthResponse{Message: healthMessage}
	if h.MediaTypes != nil {
		resp.SupportedMediaTypes = h.MediaTypes()
	}
	respond.OK(c, resp)
}

func (h *Handler) analyze(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.FromError(c, apperrors.Validation("file exceeds maximum upload size"))
			return
		}
		respond.FromError(c, apperrors.Validation(`"file" is required`))
		return
	}

	if name, err := util.SanitizeFileName(fileHeader.Filename); err == nil {
		c.Set("fileName", name)
	}

	mediaType := fileHeader.Header.Get("Content-Type")
	if mediaType == "" {
		respond.FromError(c, apperrors.Validation("file content type is required"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.FromError(c, apperrors.Validation("unable to read file"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respond.FromError(c, apperrors.Validation("unable to read file"))
		return
	}
	if data == nil {
		data = []byte{}
	}

	doc, err := h.Svc.Analyze(c.Request.Context(), data, mediaType, userID)
	if err != nil {
		respond.FromError(c, err)
		return
	}
	c.Set("documentId", doc.ID)

	respond.OK(c, AnalyzeResponse{
		Success:  true,
		Message:  analyzedMessage,
		Analysis: toDocumentResponse(doc),
	})
}

func (h *Handler) status(c *gin.Context) {
	rawID := strings.TrimSpace(c.Query("documentId"))
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		userID = strings.TrimSpace(c.Query("userId"))
	}
	if rawID == "" || userID == "" {
		respond.FromError(c, apperrors.Validation(`"documentId" and "userId" query parameters are required`))
		return
	}
	documentID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || documentID <= 0 {
		respond.FromError(c, apperrors.Validation(`"documentId" must be a positive integer`))
		return
	}
	c.Set("documentId", documentID)

	view, err := h.Svc.GetDocumentStatus(c.Request.Context(), documentID, userID)
	if err != nil {
		respond.FromError(c, err)
		return
	}

	respond.OK(c, StatusEnvelope{
		Success: true,
		Status:  toStatusResponse(view),
	})
}
