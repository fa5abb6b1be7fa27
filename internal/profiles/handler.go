package profiles

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobportal-backend/internal/shared/server/middleware"
	"jobportal-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/profile", h.get)
	rg.PUT("/profile", h.put)
}

func (h *Handler) get(c *gin.Context) {
	p, err := h.Svc.Get(c.Request.Context(), middleware.ActorFromContext(c))
	if err != nil {
		respond.Err(c, err)
		return
	}
	respond.OK(c, p)
}

func (h *Handler) put(c *gin.Context) {
	var in SaveInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	p, err := h.Svc.Save(c.Request.Context(), middleware.ActorFromContext(c), in)
	if err != nil {
		respond.Err(c, err)
		return
	}
	respond.Message(c, http.StatusOK, "Profile saved successfully", "profile", p)
}
