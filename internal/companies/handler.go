package companies

import (
	"fmt"
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
	rg.POST("/companies", h.create)
	rg.GET("/companies", h.list)
	rg.GET("/companies/:id", h.get)
	rg.PATCH("/companies/:id", h.patch)
}

func (h *Handler) create(c *gin.Context) {
	var in CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	company, err := h.Svc.Create(c.Request.Context(), middleware.ActorFromContext(c), in)
	if err != nil {
		respond.Err(c, err)
		return
	}
	c.Set(middleware.CompanyIDKey, company.ID)
	respond.Message(c, http.StatusCreated, "Company profile submitted for review", "company", company)
}

func (h *Handler) list(c *gin.Context) {
	companies, err := h.Svc.List(c.Request.Context(), middleware.ActorFromContext(c), c.Query("status"))
	if err != nil {
		respond.Err(c, err)
		return
	}
	respond.OK(c, companies)
}

func (h *Handler) get(c *gin.Context) {
	c.Set(middleware.CompanyIDKey, c.Param("id"))
	company, err := h.Svc.Get(c.Request.Context(), middleware.ActorFromContext(c), c.Param("id"))
	if err != nil {
		respond.Err(c, err)
		return
	}
	respond.OK(c, company)
}

// patchBody carries either a review decision (status) or profile edits.
type patchBody struct {
	Status          *string `json:"status"`
	RejectionReason string  `json:"rejectionReason"`
	UpdateInput
}

func (h *Handler) patch(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.CompanyIDKey, id)

	var body patchBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	actor := middleware.ActorFromContext(c)

	if body.Status != nil {
		company, err := h.Svc.UpdateStatus(c.Request.Context(), actor, id, StatusInput{
			Status:          *body.Status,
			RejectionReason: body.RejectionReason,
		})
		if err != nil {
			respond.Err(c, err)
			return
		}
		c.Set(middleware.StatusTransitionKey, string(company.Status))
		respond.Message(c, http.StatusOK, fmt.Sprintf("Company status updated to %s", company.Status), "company", company)
		return
	}

	company, err := h.Svc.Update(c.Request.Context(), actor, id, body.UpdateInput)
	if err != nil {
		respond.Err(c, err)
		return
	}
	respond.Message(c, http.StatusOK, "Company profile updated", "company", company)
}
