package applications

import (
	"net/http"
	"strconv"

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
	rg.POST("/applications", h.submit)
	rg.GET("/applications", h.list)
	rg.GET("/applications/:id", h.get)
	rg.PATCH("/applications/:id", h.update)
}

func (h *Handler) submit(c *gin.Context) {
	var in SubmitInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	c.Set(middleware.JobIDKey, in.JobID)

	app, err := h.Svc.Submit(c.Request.Context(), middleware.ActorFromContext(c), in)
	if err != nil {
		respond.Err(c, err)
		return
	}
	c.Set(middleware.ApplicationIDKey, app.ID)
	respond.Message(c, http.StatusCreated, "Application submitted successfully", "application", app)
}

func (h *Handler) list(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	apps, err := h.Svc.List(c.Request.Context(), middleware.ActorFromContext(c), ListInput{
		Status: c.Query("status"),
		JobID:  c.Query("jobId"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		respond.Err(c, err)
		return
	}
	respond.OK(c, apps)
}

func (h *Handler) get(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.ApplicationIDKey, id)

	app, err := h.Svc.Get(c.Request.Context(), middleware.ActorFromContext(c), id)
	if err != nil {
		respond.Err(c, err)
		return
	}
	c.Set(middleware.JobIDKey, app.JobID)
	respond.OK(c, app)
}

func (h *Handler) update(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.ApplicationIDKey, id)

	var patch Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	app, err := h.Svc.Update(c.Request.Context(), middleware.ActorFromContext(c), id, patch)
	if err != nil {
		respond.Err(c, err)
		return
	}
	c.Set(middleware.JobIDKey, app.JobID)
	if patch.Status != nil {
		c.Set(middleware.StatusTransitionKey, string(app.Status))
	}
	respond.Message(c, http.StatusOK, "Application updated successfully", "application", app)
}
