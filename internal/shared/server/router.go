package server

import (
	"context"
	"database/sql"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"radar-backend/internal/actionitems"
	"radar-backend/internal/analyses"
	"radar-backend/internal/analyze"
	"radar-backend/internal/llm"
	"radar-backend/internal/llm/openai"
	"radar-backend/internal/radar"
	"radar-backend/internal/shared/config"
	"radar-backend/internal/shared/server/middleware"
	"radar-backend/internal/shared/server/respond"
	"radar-backend/internal/shared/storage/db"
	"radar-backend/internal/submissions"
	"radar-backend/internal/usage"
	"radar-backend/internal/users"
)

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(cfg config.Config) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.HandleMethodNotAllowed = true

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
	)

	// Dependencies
	var sqlDB *sql.DB
	if cfg.DatabaseURL != "" {
		opts := db.OptionsFromEnv(db.DefaultServerOptions())
		dbConn, err := db.Connect(context.Background(), cfg.DatabaseURL, opts)
		if err != nil {
			log.Printf("failed to connect database, falling back to memory: %v", err)
		} else {
			if err := db.RunMigrations(context.Background(), dbConn); err != nil {
				log.Printf("failed to run migrations, falling back to memory: %v", err)
				dbConn = nil
			}
		}
		sqlDB = dbConn
	}

	var subsRepo submissions.Repo
	var analysisRepo analyses.Repo
	var itemsRepo actionitems.Repo
	var userRepo users.Repo
	var usageSvc *usage.Service
	if sqlDB != nil {
		subsRepo = &submissions.PGRepo{DB: sqlDB}
		analysisRepo = &analyses.PGRepo{DB: sqlDB}
		itemsRepo = &actionitems.PGRepo{DB: sqlDB}
		userRepo = &users.PGRepo{DB: sqlDB}
		usageSvc = usage.NewPostgresService(usage.NewPGStore(sqlDB))
	} else {
		subsRepo = submissions.NewMemoryRepo()
		analysisRepo = analyses.NewMemoryRepo()
		itemsRepo = actionitems.NewMemoryRepo()
		userRepo = users.NewMemoryRepo()
		usageSvc = usage.NewService()
	}

	provider, err := openai.NewClient(openai.Config{
		APIKey:       cfg.OpenAIAPIKey,
		OrgID:        cfg.OpenAIOrgID,
		AssistantID:  cfg.OpenAIAssistantID,
		Model:        cfg.LLMModel,
		PollInterval: cfg.RunPollInterval,
		RunTimeout:   cfg.RunTimeout,
	})
	if err != nil {
		log.Printf("openai client unavailable: %v", err)
	}

	caps := buildRegistry(provider)

	analyzeSvc := &analyze.Service{
		Subs:                   subsRepo,
		Analyses:               analysisRepo,
		Items:                  itemsRepo,
		Users:                  userRepo,
		Usage:                  usageSvc,
		Caps:                   caps,
		PermanentVectorStoreID: cfg.OpenAIVectorStore,
	}
	if provider != nil {
		analyzeSvc.Provider = provider
	}
	analyzeHandler := analyze.NewHandler(analyzeSvc)
	analysisHandler := analyses.NewHandler(analysisRepo)
	itemsHandler := actionitems.NewHandler(itemsRepo)

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimit(middleware.RateLimitConfig{
		Rules: map[string]middleware.RateLimitRule{
			"ANALYZE": {Rate: 0.2, Burst: 3},
			"DEFAULT": {Rate: 5, Burst: 20},
		},
		GroupFor: func(c *gin.Context) string {
			if c.Request.Method == http.MethodPost && c.FullPath() == "/api/v1/analyze" {
				return "ANALYZE"
			}
			return "DEFAULT"
		},
	}))
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	analyzeHandler.RegisterRoutes(api)
	analysisHandler.RegisterRoutes(api)
	itemsHandler.RegisterRoutes(api)

	return r
}

// buildRegistry resolves the capability set once at startup. The
// analyzer slot is left unbound so invocation always goes through the
// built-in provider strategies; the uploader binds when credentials
// exist.
func buildRegistry(provider *openai.Client) *llm.Registry {
	var uploaders []llm.UploaderCandidate
	if provider != nil {
		uploaders = append(uploaders, llm.UploaderCandidate{
			Name: "openai.files",
			Provide: func() llm.Uploader {
				return openai.NewFileUploader(provider)
			},
		})
	}
	parsers := []llm.ParserCandidate{
		{
			Name: "radar.json",
			Provide: func() llm.Parser {
				return radar.JSONParser{}
			},
		},
	}
	return llm.NewRegistry(uploaders, nil, parsers)
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
