package web

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/JoelJacobStephen/litxplore"
	"github.com/JoelJacobStephen/litxplore/errors"
	"github.com/JoelJacobStephen/litxplore/log"
)

type ReviewHandler struct {
	Store         litxplore.ReviewStore
	Index         litxplore.ReviewIndex
	Authenticator *Authenticator
	Logger        log.Logger
}

func (h *ReviewHandler) RegisterRoutes(router *gin.Engine) {
	auth := h.Authenticator.Authenticate
	router.POST("/api/v1/reviews", JSONFormatter(auth(h.Save)))
	router.POST("/api/v1/reviews/clear", JSONFormatter(auth(h.Clear)))
	router.GET("/api/v1/reviews", JSONFormatter(auth(h.History)))
	router.GET("/api/v1/reviews/:id", JSONFormatter(auth(h.Get)))
	router.DELETE("/api/v1/reviews/:id", JSONFormatter(auth(h.Delete)))
}

type saveReviewRequest struct {
	ID        int               `json:"id"`
	Title     string            `json:"title"`
	Topic     string            `json:"topic"`
	Content   string            `json:"content"`
	Citations []litxplore.Paper `json:"citations"`
}

func (h *ReviewHandler) Save(c *gin.Context) (interface{}, error) {
	user, err := currentUser(c)
	if err != nil {
		return nil, err
	}

	var req saveReviewRequest
	if err := c.BindJSON(&req); err != nil {
		return nil, errors.New("invalid request body", errors.BadRequest(), errors.WithCause(err))
	}
	if req.Title == "" {
		return nil, errors.New("title is required", errors.BadRequest())
	}

	if req.ID != 0 {
		// Updating requires the review to exist and belong to the user.
		if _, err := h.Store.Get(c.Request.Context(), req.ID, user.ID); err != nil {
			return nil, err
		}
	}

	review := litxplore.Review{
		ID:        req.ID,
		UserID:    user.ID,
		Title:     req.Title,
		Topic:     req.Topic,
		Content:   req.Content,
		Citations: req.Citations,
	}
	if err := h.Store.Save(c.Request.Context(), &review); err != nil {
		return nil, err
	}

	if err := h.Index.Index(&review); err != nil {
		h.Logger.Errorf("could not index review %d: %v", review.ID, err)
	}

	return map[string]interface{}{"data": review}, nil
}

func (h *ReviewHandler) Get(c *gin.Context) (interface{}, error) {
	user, err := currentUser(c)
	if err != nil {
		return nil, err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return nil, errors.New("invalid review id", errors.BadRequest())
	}

	review, err := h.Store.Get(c.Request.Context(), id, user.ID)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{"data": review}, nil
}

func (h *ReviewHandler) History(c *gin.Context) (interface{}, error) {
	user, err := currentUser(c)
	if err != nil {
		return nil, err
	}

	reviews, err := h.Store.History(c.Request.Context(), user.ID)
	if err != nil {
		return nil, err
	}

	if q := c.Query("q"); q != "" {
		ids, err := h.Index.Search(user.ID, q)
		if err != nil {
			return nil, errors.New("review search failed", errors.WithCause(err))
		}

		matching := make(map[int]bool, len(ids))
		for _, id := range ids {
			matching[id] = true
		}

		filtered := reviews[:0]
		for _, review := range reviews {
			if matching[review.ID] {
				filtered = append(filtered, review)
			}
		}
		reviews = filtered
	}

	return map[string]interface{}{"data": reviews}, nil
}

func (h *ReviewHandler) Delete(c *gin.Context) (interface{}, error) {
	user, err := currentUser(c)
	if err != nil {
		return nil, err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return nil, errors.New("invalid review id", errors.BadRequest())
	}

	if err := h.Store.Delete(c.Request.Context(), id, user.ID); err != nil {
		return nil, err
	}

	if err := h.Index.Delete(id); err != nil {
		h.Logger.Errorf("could not deindex review %d: %v", id, err)
	}

	return map[string]interface{}{"data": "deleted"}, nil
}

// Clear wipes the user's whole review history in one call.
func (h *ReviewHandler) Clear(c *gin.Context) (interface{}, error) {
	user, err := currentUser(c)
	if err != nil {
		return nil, err
	}

	ids, err := h.Store.Clear(c.Request.Context(), user.ID)
	if err != nil {
		return nil, err
	}

	for _, id := range ids {
		if err := h.Index.Delete(id); err != nil {
			h.Logger.Errorf("could not deindex review %d: %v", id, err)
		}
	}

	return map[string]interface{}{"data": map[string]int{"cleared": len(ids)}}, nil
}
