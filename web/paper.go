package web

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/JoelJacobStephen/litxplore"
	"github.com/JoelJacobStephen/litxplore/chat"
	"github.com/JoelJacobStephen/litxplore/errors"
	"github.com/JoelJacobStephen/litxplore/review"
)

const maxUploadMemory = 16 << 20

type PaperHandler struct {
	Arxiv  *litxplore.ArxivClient
	Source *review.Source
	Chat   *chat.Service
}

func (h *PaperHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/api/v1/papers/search", JSONFormatter(h.Search))
	router.GET("/api/v1/papers/:id", JSONFormatter(h.Get))
	router.POST("/api/v1/papers/upload", JSONFormatter(h.Upload))
	router.POST("/api/v1/papers/:id/chat", h.ChatStream)
}

func (h *PaperHandler) Search(c *gin.Context) (interface{}, error) {
	query := c.Query("query")
	ids := c.QueryArray("ids")
	if query == "" && len(ids) == 0 {
		return nil, errors.New("query or ids is required", errors.BadRequest())
	}

	maxResults := 10
	if raw := c.Query("max_results"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return nil, errors.New("max_results must be a positive integer", errors.BadRequest())
		}
		maxResults = parsed
	}

	search := litxplore.ArxivSearch{Q: query, MaxResults: maxResults}
	for _, id := range ids {
		search.IDs = append(search.IDs, litxplore.ParsePaperID(id).Value)
	}

	papers, err := h.Arxiv.Search(c.Request.Context(), search)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{"data": papers}, nil
}

func (h *PaperHandler) Get(c *gin.Context) (interface{}, error) {
	id := litxplore.ParsePaperID(c.Param("id"))

	paper, err := h.Source.Lookup(c.Request.Context(), id)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{"data": paper}, nil
}

func (h *PaperHandler) Upload(c *gin.Context) (interface{}, error) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		return nil, errors.New("a file field is required", errors.BadRequest(), errors.WithCause(err))
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadMemory))
	if err != nil {
		return nil, errors.New("could not read upload", errors.WithCause(err))
	}

	paper, err := h.Source.Ingest(c.Request.Context(), header.Filename, data)
	if err != nil {
		return nil, err
	}

	hash := litxplore.ParsePaperID(paper.ID).Value
	paper.URL = fmt.Sprintf("/uploads/%s.pdf", hash)

	return map[string]interface{}{"data": paper}, nil
}

type chatRequest struct {
	Question string `json:"question"`
}

type chatSource struct {
	Page int `json:"page"`
}

type chatFragment struct {
	Content string       `json:"content,omitempty"`
	Sources []chatSource `json:"sources,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// ChatStream answers a question about a paper as a server-sent event
// stream. It bypasses the JSON formatter since fragments are written as
// they are produced.
func (h *PaperHandler) ChatStream(c *gin.Context) {
	var req chatRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": map[string]interface{}{
				"code":    http.StatusBadRequest,
				"message": "invalid request body",
			},
		})
		return
	}

	id := litxplore.ParsePaperID(c.Param("id"))

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	stream := h.Chat.Stream(c.Request.Context(), id, req.Question)
	for fragment := range stream {
		out := chatFragment{Content: fragment.Content, Error: fragment.Error}
		for _, page := range fragment.Sources {
			out.Sources = append(out.Sources, chatSource{Page: page})
		}

		data, err := json.Marshal(out)
		if err != nil {
			continue
		}

		fmt.Fprintf(c.Writer, "data: %s\n\n", data)
		c.Writer.Flush()
	}
}
