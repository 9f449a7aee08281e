package web

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/JoelJacobStephen/litxplore"
	"github.com/JoelJacobStephen/litxplore/errors"
	"github.com/JoelJacobStephen/litxplore/review"
)

type TaskHandler struct {
	Reviews       *review.Service
	Authenticator *Authenticator
}

func (h *TaskHandler) RegisterRoutes(router *gin.Engine) {
	auth := h.Authenticator.Authenticate
	router.POST("/api/v1/review/generate", JSONFormatter(auth(h.Generate)))
	router.GET("/api/v1/tasks", JSONFormatter(auth(h.List)))
	router.GET("/api/v1/tasks/:id", JSONFormatter(auth(h.Get)))
	router.POST("/api/v1/tasks/:id/cancel", JSONFormatter(auth(h.Cancel)))
}

type generateRequest struct {
	PaperIDs []string `json:"paper_ids"`
	Topic    string   `json:"topic"`
}

func (h *TaskHandler) Generate(c *gin.Context) (interface{}, error) {
	user, err := currentUser(c)
	if err != nil {
		return nil, err
	}

	var req generateRequest
	if err := c.BindJSON(&req); err != nil {
		return nil, errors.New("invalid request body", errors.BadRequest(), errors.WithCause(err))
	}

	task, err := h.Reviews.Generate(c.Request.Context(), user.ID, req.PaperIDs, req.Topic)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{"data": task}, nil
}

func (h *TaskHandler) Get(c *gin.Context) (interface{}, error) {
	user, err := currentUser(c)
	if err != nil {
		return nil, err
	}

	task, err := h.Reviews.Get(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{"data": task}, nil
}

func (h *TaskHandler) List(c *gin.Context) (interface{}, error) {
	user, err := currentUser(c)
	if err != nil {
		return nil, err
	}

	var status *litxplore.TaskStatus
	if raw := c.Query("status"); raw != "" {
		s := litxplore.TaskStatus(raw)
		status = &s
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return nil, errors.New("limit must be a non-negative integer", errors.BadRequest())
		}
		limit = parsed
	}

	tasks, err := h.Reviews.List(c.Request.Context(), user.ID, status, limit)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{"data": tasks}, nil
}

func (h *TaskHandler) Cancel(c *gin.Context) (interface{}, error) {
	user, err := currentUser(c)
	if err != nil {
		return nil, err
	}

	if err := h.Reviews.Cancel(c.Request.Context(), c.Param("id"), user.ID); err != nil {
		return nil, err
	}

	return map[string]interface{}{"data": "cancelled"}, nil
}
