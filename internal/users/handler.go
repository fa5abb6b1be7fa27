package users

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

// RegisterPublicRoutes attaches the credential endpoints.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/register", h.register)
	rg.POST("/auth/login", h.login)
}

// RegisterRoutes attaches endpoints that require an actor.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/auth/me", h.me)
}

type sessionResponse struct {
	Token string     `json:"token"`
	User  meResponse `json:"user"`
}

type meResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Role        string  `json:"role"`
	CompanyName *string `json:"companyName"`
}

func toMe(user User) meResponse {
	resp := meResponse{ID: user.ID, Name: user.Name, Email: user.Email, Role: string(user.Role)}
	if user.CompanyName != "" {
		name := user.CompanyName
		resp.CompanyName = &name
	}
	return resp
}

func (h *Handler) register(c *gin.Context) {
	var in RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	user, err := h.Svc.Register(c.Request.Context(), in)
	if err != nil {
		respond.Err(c, err)
		return
	}
	h.session(c, http.StatusCreated, user)
}

func (h *Handler) login(c *gin.Context) {
	var in LoginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	user, err := h.Svc.Login(c.Request.Context(), in)
	if err != nil {
		respond.Err(c, err)
		return
	}
	h.session(c, http.StatusOK, user)
}

func (h *Handler) session(c *gin.Context, status int, user User) {
	token, err := h.Svc.IssueToken(user)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to issue token", nil)
		return
	}
	respond.JSON(c, status, sessionResponse{Token: token, User: toMe(user)})
}

func (h *Handler) me(c *gin.Context) {
	user, err := h.Svc.GetByID(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		respond.Err(c, err)
		return
	}
	respond.OK(c, toMe(user))
}
