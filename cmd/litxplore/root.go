package main

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JoelJacobStephen/litxplore"
	"github.com/JoelJacobStephen/litxplore/analysis"
	"github.com/JoelJacobStephen/litxplore/bleve"
	"github.com/JoelJacobStephen/litxplore/bolt"
	"github.com/JoelJacobStephen/litxplore/chat"
	"github.com/JoelJacobStephen/litxplore/jwt"
	"github.com/JoelJacobStephen/litxplore/log"
	"github.com/JoelJacobStephen/litxplore/openai"
	"github.com/JoelJacobStephen/litxplore/postgres"
	"github.com/JoelJacobStephen/litxplore/redis"
	"github.com/JoelJacobStephen/litxplore/review"
	"github.com/JoelJacobStephen/litxplore/uploads"
)

var (
	// flags
	env string

	// logger
	logger log.Logger

	// auth
	verifier jwt.Verifier

	// drivers
	boltDriver  *bolt.Driver
	cache       *redis.Cache
	reviewIndex *bleve.ReviewIndex

	// stores
	userStore   litxplore.UserStore
	taskStore   litxplore.TaskStore
	reviewStore litxplore.ReviewStore

	// services
	arxivClient     *litxplore.ArxivClient
	paperSource     *review.Source
	chatService     *chat.Service
	analysisService *analysis.Service
	reviewService   *review.Service

	cfg Configuration
)

type Configuration struct {
	Web struct {
		Addr      string `toml:"addr"`
		UploadDir string `toml:"upload_dir"`
	} `toml:"web"`
	Auth struct {
		// Strategy is hs256 or rs256, there is no fallback between them.
		Strategy string `toml:"strategy"`
		Issuer   string `toml:"issuer"`
		JWKSURL  string `toml:"jwks_url"`
	} `toml:"auth"`
	Bolt struct {
		Store string `toml:"store"`
	} `toml:"bolt"`
	Bleve struct {
		Store string `toml:"store"`
	} `toml:"bleve"`
	Postgres struct {
		DSN string `toml:"dsn"`
	} `toml:"postgres"`
	Redis struct {
		Addr string `toml:"addr"`
		DB   int    `toml:"db"`
	} `toml:"redis"`
	OpenAI struct {
		BaseURL        string `toml:"base_url"`
		ChatModel      string `toml:"chat_model"`
		EmbeddingModel string `toml:"embedding_model"`
	} `toml:"openai"`
	Review struct {
		MaxPapers int `toml:"max_papers"`
	} `toml:"review"`
}

func init() {
	RootCmd.PersistentFlags().StringVar(&env, "env", "dev", "")
}

var RootCmd = cobra.Command{
	Use:   "litxplore",
	Short: "",
	Long:  "",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Secrets come from the environment, .env is optional.
		godotenv.Load()

		cfgData, err := os.ReadFile(fmt.Sprintf("configuration/config.%s.toml", env))
		if err != nil {
			fmt.Println("error reading configuration:", err)
			os.Exit(1)
		}

		if err := toml.Unmarshal(cfgData, &cfg); err != nil {
			fmt.Println("error unmarshalling configuration:", err)
			os.Exit(1)
		}

		logger = log.New(env)

		// Create verifier
		switch cfg.Auth.Strategy {
		case "rs256":
			verifier = jwt.NewJWKSVerifier(cfg.Auth.JWKSURL, cfg.Auth.Issuer, jwt.NewJWKSCache(time.Hour))
		case "hs256":
			key := os.Getenv("JWT_SIGNING_KEY")
			if key == "" {
				logger.Fatal("JWT_SIGNING_KEY is not set")
			}
			verifier = jwt.NewEncodeDecoder([]byte(key), cfg.Auth.Issuer)
		default:
			logger.Fatalf("unknown auth strategy %q", cfg.Auth.Strategy)
		}

		// Create drivers
		boltDriver = &bolt.Driver{}
		if err := boltDriver.Open(cfg.Bolt.Store); err != nil {
			logger.Fatal("could not open bolt store:", err)
		}

		cache = redis.NewCache(cfg.Redis.Addr, os.Getenv("REDIS_PASSWORD"), cfg.Redis.DB, logger)

		reviewIndex = &bleve.ReviewIndex{}
		if err := reviewIndex.Open(cfg.Bleve.Store); err != nil {
			logger.Fatal("could not open review index:", err)
		}

		// Create stores
		db, err := postgres.Open(cfg.Postgres.DSN)
		if err != nil {
			logger.Fatal("could not connect to postgres:", err)
		}
		userStore = postgres.NewUserStore(db)
		taskStore = postgres.NewTaskStore(db)
		reviewStore = postgres.NewReviewStore(db)

		uploadStore, err := uploads.NewStore(cfg.Web.UploadDir)
		if err != nil {
			logger.Fatal("could not create upload dir:", err)
		}

		// Create services
		llm := openai.NewClient(
			cfg.OpenAI.BaseURL,
			os.Getenv("OPENAI_API_KEY"),
			cfg.OpenAI.ChatModel,
			cfg.OpenAI.EmbeddingModel,
		)

		arxivClient = litxplore.NewArxivClient()
		metadataStore := &bolt.MetadataStore{Driver: boltDriver}
		paperSource = review.NewSource(arxivClient, uploadStore, metadataStore, llm, logger)

		chatService = chat.NewService(paperSource, llm, llm, logger)

		cacheTTL := time.Hour
		if env == "prod" {
			cacheTTL = 24 * time.Hour
		}
		analysisService = analysis.NewService(paperSource, llm, cache, cfg.OpenAI.ChatModel, cacheTTL, logger)

		cleaner := review.NewCleaner(uploadStore, logger)
		reviewService = review.NewService(taskStore, paperSource, llm, cleaner, logger)
		if cfg.Review.MaxPapers > 0 {
			reviewService.MaxPapers = cfg.Review.MaxPapers
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		boltDriver.Close()
		cache.Close()
		reviewIndex.Close()
	},
}
