package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/peopleops/docflow/handlers"
	"github.com/peopleops/docflow/internal/authz"
	"github.com/peopleops/docflow/internal/config"
	"github.com/peopleops/docflow/internal/database"
	"github.com/peopleops/docflow/internal/employees"
	"github.com/peopleops/docflow/internal/oidc"
	"github.com/peopleops/docflow/internal/storage"
	"github.com/peopleops/docflow/internal/template"
	wfhandler "github.com/peopleops/docflow/internal/workflow/handler"
	"github.com/peopleops/docflow/internal/workflow/repository"
	"github.com/peopleops/docflow/internal/workflow/service"
	"github.com/peopleops/docflow/pkg/logger"
	"github.com/peopleops/docflow/pkg/metrics"
	"github.com/peopleops/docflow/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// LOG_LEVEL env: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: keycloak=%v mongo=%v redis=%v", cfg.Keycloak.URL != "", cfg.MongoDB.URI != "", cfg.Redis.Host != "")

	r := gin.New()

	// Lightweight CORS middleware for dev/test: set common headers and respond to OPTIONS.
	// (Keep this intentionally simple — production should use a stricter policy.)
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	})
	r.Use(gin.Logger(), gin.Recovery())

	// Connect to Redis early so the rate limiter and stats cache can use it
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr(), Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s): %v", cfg.Redis.Addr(), err)
			redisClient = nil
		} else {
			logger.Infof("connected to Redis at %s", cfg.Redis.Addr())
		}
	}

	// Global rate limiter (per-user when authenticated, otherwise per-IP)
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && redisClient != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(redisClient, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	// Token verifier: OIDC against the company IdP when configured, HMAC on a
	// shared secret otherwise. The insecure verifier needs an explicit opt-in.
	ctx := context.Background()
	var verifier middleware.Verifier
	if cfg.Keycloak.URL != "" && cfg.Keycloak.ClientID != "" && cfg.Keycloak.Realm != "" {
		ver, err := oidc.NewVerifier(ctx, cfg.Keycloak.Issuer(), cfg.Keycloak.ClientID)
		if err != nil {
			logger.Warnf("failed to initialize OIDC verifier: %v", err)
		} else {
			verifier = ver
		}
	}
	if verifier == nil && cfg.JWT.Secret != "" {
		ver, err := oidc.NewHMACVerifier(cfg.JWT.Secret)
		if err != nil {
			logger.Warnf("failed to initialize HMAC verifier: %v", err)
		} else {
			verifier = ver
			logger.Infof("using HMAC token verifier")
		}
	}
	if verifier == nil && strings.EqualFold(strings.TrimSpace(os.Getenv("ALLOW_INSECURE_TOKEN")), "true") {
		logger.Warn("enabling insecure token verifier (integration mode)")
		verifier = oidc.NewInsecureVerifier()
	}
	if verifier == nil {
		logger.Fatalf("no token verifier available: configure KEYCLOAK_* or JWT_SECRET")
	}

	// Persistence: Mongo-backed repositories, with in-memory fallbacks so the
	// service still comes up for local development without a database.
	var (
		recordRepo repository.RecordRepository = repository.NewMemoryRecordRepo()
		trailRepo  repository.TrailRepository  = repository.NewMemoryTrailRepo()
		tplRepo    template.Repository         = template.NewMemoryRepo()
		empRepo    employees.Repository        = employees.NewMemoryRepository()
		usingMongo bool
	)
	if cfg.MongoDB.URI != "" {
		// Retry/backoff when connecting to MongoDB to tolerate startup races
		const maxAttempts = 5
		backoff := time.Second
		var client *mongo.Client
		var errConn error
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			client, errConn = database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
			if errConn == nil {
				break
			}
			logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, maxAttempts, errConn)
			if attempt < maxAttempts {
				time.Sleep(backoff)
				backoff *= 2
			}
		}
		if errConn != nil {
			logger.Warnf("could not connect to MongoDB after %d attempts, using in-memory stores: %v", maxAttempts, errConn)
		} else {
			defer func() { _ = client.Disconnect(ctx) }()
			db := client.Database(cfg.MongoDB.Database)
			recordRepo = repository.NewMongoRecordRepo(db.Collection("document_records"))
			trailRepo = repository.NewMongoTrailRepo(db.Collection("document_trail"))
			tplRepo = template.NewMongoRepo(db.Collection("document_templates"))
			empRepo = employees.NewMongoRepository(db.Collection("employees"))
			usingMongo = true
		}
	}

	templateSvc := template.NewService(tplRepo)
	employeeSvc := employees.NewService(empRepo)

	var statsCache *service.StatsCache
	if redisClient != nil {
		statsCache = service.NewStatsCache(redisClient, "docflow:stats", cfg.Stats.CacheTTL)
	}

	engine := service.New(recordRepo, trailRepo, authz.NewRolePolicy(),
		service.WithTemplates(templateSvc),
		service.WithDirectory(employeeSvc),
		service.WithStatsCache(statsCache),
	)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness: 200 only when configured dependencies are reachable
	r.GET("/ready", func(c *gin.Context) {
		ready := true
		deps := map[string]bool{"verifier": true}
		if cfg.MongoDB.URI != "" {
			deps["mongodb"] = usingMongo
			ready = ready && usingMongo
		}
		if cfg.Redis.Host != "" {
			deps["redis"] = redisClient != nil
			ready = ready && redisClient != nil
		}
		status := http.StatusOK
		label := "ready"
		if !ready {
			status = http.StatusServiceUnavailable
			label = "not_ready"
		}
		c.JSON(status, gin.H{"status": label, "deps": deps, "uptime": time.Since(startTime).String()})
	})

	handlers.RegisterSwagger(r)
	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Authenticated API surface
	api := r.Group("/", middleware.AuthMiddleware(verifier), employees.SyncMiddleware(employeeSvc))
	wf := wfhandler.New(engine)
	wf.Register(api)
	wf.RegisterTemplateAssign(api)
	template.NewHandler(templateSvc).Register(api)

	api.GET("/me", func(c *gin.Context) {
		raw, _ := c.Get("claims")
		cm, _ := raw.(map[string]interface{})
		actor := authz.FromClaims(cm)
		if e, err := employeeSvc.GetBySub(c.Request.Context(), actor.ID); err == nil && e != nil {
			c.JSON(http.StatusOK, gin.H{"employee": e, "roles": actor.Roles})
			return
		}
		c.JSON(http.StatusOK, gin.H{"claims": cm})
	})

	// File storage is optional: without MinIO the upload routes are absent and
	// records carry external reference URLs only.
	if mcfg := storage.LoadMinIOConfig(); mcfg.Endpoint != "" {
		store, err := storage.NewMinIOStorage(mcfg)
		if err != nil {
			logger.Warnf("file storage unavailable: %v", err)
		} else {
			storage.NewHandler(store).Register(api)
		}
	}

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("starting docflow service on %s (mongo=%v redis=%v)", addr, usingMongo, redisClient != nil)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}
