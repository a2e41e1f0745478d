package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/adboardhq/adboard/internal/ads"
	"github.com/adboardhq/adboard/internal/auth"
	"github.com/adboardhq/adboard/internal/config"
	"github.com/adboardhq/adboard/internal/database"
	"github.com/adboardhq/adboard/internal/metrics"
	"github.com/adboardhq/adboard/internal/middleware"
	"github.com/adboardhq/adboard/internal/storage"
)

// Dependencies holds all external dependencies for the server.
type Dependencies struct {
	DB         *database.PostgresDB
	Redis      *database.RedisDB
	ClickHouse *database.ClickHouseDB
	Config     *config.Config
	Logger     *zap.Logger
	Metrics    *metrics.Metrics
}

// Server wraps HTTP handlers and the dashboard services.
type Server struct {
	userService     *ads.UserService
	accountService  *ads.AccountService
	planService     *ads.PlanService
	creativeService *ads.CreativeService
	statsService    *ads.StatsService
	uploadService   *ads.UploadService
	logger          *zap.Logger
	config          *config.Config
	metrics         *metrics.Metrics
}

// NewServer constructs an http.Handler with all routes registered.
func NewServer(deps *Dependencies) http.Handler {
	// Initialize repositories
	var (
		userRepo     storage.UserRepo
		accountRepo  storage.AccountRepo
		planRepo     storage.PlanRepo
		creativeRepo storage.CreativeRepo
		statsRepo    storage.StatsRepo
	)

	if deps.DB != nil {
		userRepo = storage.NewPostgresUserRepo(deps.DB.Pool)
		accountRepo = storage.NewPostgresAccountRepo(deps.DB.Pool)
		planRepo = storage.NewPostgresPlanRepo(deps.DB.Pool)
		creativeRepo = storage.NewPostgresCreativeRepo(deps.DB.Pool)
		statsRepo = storage.NewPostgresStatsRepo(deps.DB.Pool)
	} else {
		userRepo = storage.NewInMemoryUserRepo()
		accountRepo = storage.NewInMemoryAccountRepo()
		planRepo = storage.NewInMemoryPlanRepo()
		creativeRepo = storage.NewInMemoryCreativeRepo()
		statsRepo = storage.NewInMemoryStatsRepo()
	}

	if deps.Config.Stats.Backend == "clickhouse" && deps.ClickHouse != nil {
		statsRepo = storage.NewClickHouseStatsRepo(deps.ClickHouse.Conn)
	}

	hasher := auth.NewHasher(deps.Config.Auth.BcryptCost)
	tokens := auth.NewTokenProvider(deps.Config.Auth.Secret, deps.Config.Auth.TokenTTL)
	platformClient := ads.NewStubPlatformClient(deps.Config.OAuth)

	s := &Server{
		userService:     ads.NewUserService(userRepo, hasher, tokens, deps.Logger),
		accountService:  ads.NewAccountService(accountRepo, platformClient, deps.Logger),
		planService:     ads.NewPlanService(planRepo, accountRepo, deps.Logger),
		creativeService: ads.NewCreativeService(creativeRepo, planRepo, deps.Logger),
		uploadService:   ads.NewUploadService(deps.Config.Upload, deps.Metrics, deps.Logger),
		logger:          deps.Logger,
		config:          deps.Config,
		metrics:         deps.Metrics,
	}
	if deps.Redis != nil {
		s.statsService = ads.NewStatsService(statsRepo, deps.Redis.Client, deps.Config.Stats.CacheTTL, deps.Metrics, deps.Logger)
	} else {
		s.statsService = ads.NewStatsService(statsRepo, nil, 0, deps.Metrics, deps.Logger)
	}

	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", s.handleHealth)

	// Prometheus metrics
	if deps.Config.Metrics.Enabled {
		mux.Handle(deps.Config.Metrics.Path, promhttp.Handler())
	}

	// Users
	mux.HandleFunc("/api/user/register", s.handleRegister)
	mux.HandleFunc("/api/user/login", s.handleLogin)
	mux.HandleFunc("/api/user/check-email", s.handleCheckEmail)
	mux.HandleFunc("/api/user/info", s.handleUserInfo)
	mux.HandleFunc("/api/user/password", s.handleChangePassword)

	// Ad accounts
	mux.HandleFunc("/api/ad-account", s.handleAccounts)
	mux.HandleFunc("/api/ad-account/", s.handleAccountByID)

	// Ad plans
	mux.HandleFunc("/api/ad-plan", s.handlePlans)
	mux.HandleFunc("/api/ad-plan/", s.handlePlanByID)

	// Ad creatives
	mux.HandleFunc("/api/ad-creative", s.handleCreatives)
	mux.HandleFunc("/api/ad-creative/", s.handleCreativeByID)
	mux.HandleFunc("/api/ad-creative/upload", s.handleUpload)

	// Statistics
	mux.HandleFunc("/api/statistics", s.handleStatistics)

	// Uploaded creative assets
	mux.Handle("/uploads/", http.StripPrefix("/uploads/",
		http.FileServer(http.Dir(deps.Config.Upload.Dir))))

	return mux
}

// identity returns the authenticated caller or writes a 401.
func (s *Server) identity(w http.ResponseWriter, r *http.Request) (middleware.Identity, bool) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		s.respond(w, http.StatusUnauthorized, "missing token", nil)
		return middleware.Identity{}, false
	}
	return id, true
}

// decodeJSON parses the request body into dst, reporting a 400 on
// malformed input.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.badRequest(w, "invalid json")
		return false
	}
	return true
}

// parsePage reads 1-based pagination from the query string.
func parsePage(r *http.Request) storage.Page {
	page := storage.Page{Number: 1, Size: 10}
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page.Number = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("pageSize")); err == nil && v > 0 {
		page.Size = v
	}
	if page.Size > 100 {
		page.Size = 100
	}
	return page
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
