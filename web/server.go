package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JoelJacobStephen/litxplore"
	"github.com/JoelJacobStephen/litxplore/analysis"
	"github.com/JoelJacobStephen/litxplore/chat"
	"github.com/JoelJacobStephen/litxplore/jwt"
	"github.com/JoelJacobStephen/litxplore/log"
	"github.com/JoelJacobStephen/litxplore/review"
)

type Config struct {
	Arxiv    *litxplore.ArxivClient
	Source   *review.Source
	Chat     *chat.Service
	Analysis *analysis.Service
	Reviews  *review.Service

	ReviewStore litxplore.ReviewStore
	ReviewIndex litxplore.ReviewIndex
	Users       litxplore.UserStore
	Verifier    jwt.Verifier

	// UploadDir, when set, is served under /uploads.
	UploadDir string

	Logger log.Logger
}

func New(cfg Config) (http.Handler, error) {
	router := gin.Default()

	router.Use(CORS())

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Page not found"})
	})

	router.GET("/litxplore/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, map[string]string{"data": "ok"})
	})

	if cfg.UploadDir != "" {
		router.Static("/uploads", cfg.UploadDir)
	}

	authenticator := &Authenticator{Verifier: cfg.Verifier, Users: cfg.Users}

	paperHandler := PaperHandler{Arxiv: cfg.Arxiv, Source: cfg.Source, Chat: cfg.Chat}
	paperHandler.RegisterRoutes(router)

	analysisHandler := AnalysisHandler{Analysis: cfg.Analysis}
	analysisHandler.RegisterRoutes(router)

	taskHandler := TaskHandler{Reviews: cfg.Reviews, Authenticator: authenticator}
	taskHandler.RegisterRoutes(router)

	reviewHandler := ReviewHandler{
		Store:         cfg.ReviewStore,
		Index:         cfg.ReviewIndex,
		Authenticator: authenticator,
		Logger:        cfg.Logger,
	}
	reviewHandler.RegisterRoutes(router)

	return router, nil
}
