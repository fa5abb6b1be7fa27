package documents

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"jobportal-backend/internal/shared/server/middleware"
	"jobportal-backend/internal/shared/server/respond"
)

const maxUploadSize = 10 << 20 // 10MB

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches upload and document routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/uploads", h.upload)
	rg.POST("/uploads/complete", h.register)
	rg.GET("/documents", h.list)
	rg.GET("/documents/:id/text", h.text)
}

type uploadResponse struct {
	Message  string   `json:"message"`
	FilePath string   `json:"filePath"`
	Document Document `json:"document"`
}

func (h *Handler) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	doc, err := h.Svc.Upload(c.Request.Context(), middleware.ActorFromContext(c), fileHeader.Filename, file)
	if err != nil {
		respond.Err(c, err)
		return
	}
	respond.JSON(c, http.StatusCreated, uploadResponse{
		Message:  "File uploaded successfully",
		FilePath: doc.StorageKey,
		Document: doc,
	})
}

func (h *Handler) register(c *gin.Context) {
	var in RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	doc, err := h.Svc.Register(c.Request.Context(), middleware.ActorFromContext(c), in)
	if err != nil {
		respond.Err(c, err)
		return
	}
	respond.JSON(c, http.StatusCreated, uploadResponse{
		Message:  "File uploaded successfully",
		FilePath: doc.StorageKey,
		Document: doc,
	})
}

func (h *Handler) list(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	docs, err := h.Svc.List(c.Request.Context(), middleware.ActorFromContext(c), limit, offset)
	if err != nil {
		respond.Err(c, err)
		return
	}
	respond.OK(c, docs)
}

func (h *Handler) text(c *gin.Context) {
	text, err := h.Svc.Text(c.Request.Context(), middleware.ActorFromContext(c), c.Param("id"))
	if err != nil {
		respond.Err(c, err)
		return
	}
	respond.OK(c, gin.H{"documentId": c.Param("id"), "text": text})
}
