package jobs

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"jobportal-backend/internal/shared/server/middleware"
	"jobportal-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterPublicRoutes attaches routes that work without a signed-in actor.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/jobs", h.list)
	rg.GET("/jobs/:id", h.get)
}

// RegisterRoutes attaches routes that require an actor.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/jobs", h.create)
	rg.PATCH("/jobs/:id", h.update)
}

func (h *Handler) list(c *gin.Context) {
	f := Filter{CompanyID: c.Query("companyId")}
	if raw := c.Query("status"); raw != "" {
		status, err := ParseStatus(raw)
		if err != nil {
			respond.Err(c, err)
			return
		}
		f.Status = status
	}
	f.Limit, _ = strconv.Atoi(c.Query("limit"))
	f.Offset, _ = strconv.Atoi(c.Query("offset"))

	jobs, err := h.Svc.List(c.Request.Context(), middleware.ActorFromContext(c), f)
	if err != nil {
		respond.Err(c, err)
		return
	}
	respond.OK(c, jobs)
}

func (h *Handler) get(c *gin.Context) {
	c.Set(middleware.JobIDKey, c.Param("id"))
	job, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respond.Err(c, err)
		return
	}
	respond.OK(c, job)
}

func (h *Handler) create(c *gin.Context) {
	var in CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	job, err := h.Svc.Create(c.Request.Context(), middleware.ActorFromContext(c), in)
	if err != nil {
		respond.Err(c, err)
		return
	}
	c.Set(middleware.JobIDKey, job.ID)
	respond.Message(c, http.StatusCreated, "Job created successfully", "job", job)
}

func (h *Handler) update(c *gin.Context) {
	c.Set(middleware.JobIDKey, c.Param("id"))
	var in UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	job, err := h.Svc.Update(c.Request.Context(), middleware.ActorFromContext(c), c.Param("id"), in)
	if err != nil {
		respond.Err(c, err)
		return
	}
	respond.Message(c, http.StatusOK, "Job updated successfully", "job", job)
}
