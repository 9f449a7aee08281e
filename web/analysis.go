package web

import (
	"github.com/gin-gonic/gin"

	"github.com/JoelJacobStephen/litxplore"
	"github.com/JoelJacobStephen/litxplore/analysis"
)

type AnalysisHandler struct {
	Analysis *analysis.Service
}

func (h *AnalysisHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/api/v1/papers/:id/analysis", JSONFormatter(h.Analyze))
	router.GET("/api/v1/papers/:id/analysis/key-insights", JSONFormatter(h.KeyInsights))
	router.GET("/api/v1/papers/:id/analysis/in-depth", JSONFormatter(h.InDepth))
}

func (h *AnalysisHandler) Analyze(c *gin.Context) (interface{}, error) {
	id := litxplore.ParsePaperID(c.Param("id"))
	refresh := c.Query("refresh") == "true"

	record, err := h.Analysis.Analyze(c.Request.Context(), id, refresh)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"data": record}, nil
}

func (h *AnalysisHandler) KeyInsights(c *gin.Context) (interface{}, error) {
	id := litxplore.ParsePaperID(c.Param("id"))

	record, err := h.Analysis.KeyInsights(c.Request.Context(), id)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"data": record}, nil
}

func (h *AnalysisHandler) InDepth(c *gin.Context) (interface{}, error) {
	id := litxplore.ParsePaperID(c.Param("id"))

	record, err := h.Analysis.InDepth(c.Request.Context(), id)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"data": record}, nil
}
