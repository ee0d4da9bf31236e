package api

import (
	"database/sql"
	stdhttp "net/http"
	"time"

	"catalogapi/internal/auth"
	"catalogapi/internal/config"
	"catalogapi/internal/db"
	h "catalogapi/internal/http/handlers"
	"catalogapi/internal/http/middleware"
	"catalogapi/internal/repositories"
	"catalogapi/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Deps is everything the router wires together. Registry defaults to a fresh
// prometheus registry and Clock to time.Now.
type Deps struct {
	Env      config.Env
	DB       *sql.DB
	Tokens   *auth.Tokens
	Log      *zap.Logger
	Registry *prometheus.Registry
	Clock    func() time.Time
}

func NewRouter(d Deps) (*gin.Engine, error) {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	reg := d.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	metrics, err := middleware.NewMetrics(reg)
	if err != nil {
		return nil, err
	}
	if d.DB != nil {
		if err := reg.Register(collectors.NewDBStatsCollector(d.DB, d.Env.DBDriver)); err != nil {
			return nil, err
		}
	}

	conn := repositories.NewConn(d.DB, db.Dialect(d.Env.DBDriver))
	conn.Clock = d.Clock
	userRepo := repositories.UserRepository{Conn: conn}
	categoryRepo := repositories.CategoryRepository{Conn: conn}
	productRepo := repositories.ProductRepository{Conn: conn}

	authH := h.AuthHandler{Auth: services.AuthService{Users: userRepo, Tokens: d.Tokens, Log: log}}
	userH := h.UserHandler{Users: services.UserService{Users: userRepo, Log: log}}
	categoryH := h.CategoryHandler{Categories: services.CategoryService{Categories: categoryRepo, Products: productRepo, Log: log}}
	productH := h.ProductHandler{
		Products: services.ProductService{Products: productRepo, Categories: categoryRepo, Log: log},
		Export:   services.ExportService{Products: productRepo, MaxRows: d.Env.ExportMaxRows, Clock: d.Clock, Log: log},
	}
	systemH := h.SystemHandler{DB: d.DB}

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(log), metrics.Handler(), middleware.Recovery(log), middleware.CORS(d.Env.CORSAllowedOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Warn("failed to set trusted proxies", zap.Error(err))
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"success": false,
			"message": "Route not found",
			"data":    nil,
		})
	})

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", systemH.DBCheck)

		// Auth
		authG := api.Group("/auth")
		authG.POST("/register", authH.Register)
		authG.POST("/login", authH.Login)

		protected := api.Group("")
		protected.Use(middleware.Authenticate(d.Tokens, userRepo, log))

		protected.GET("/profile/me", h.Profile)

		// Users
		users := protected.Group("/users")
		users.GET("", userH.List)
		users.GET("/:id", userH.Get)
		users.PUT("/:id", userH.Update)
		users.DELETE("/:id", userH.Delete)

		// Categories
		categories := protected.Group("/categories")
		categories.GET("", categoryH.List)
		categories.POST("", categoryH.Create)
		categories.GET("/:id", categoryH.Get)
		categories.PUT("/:id", categoryH.Update)
		categories.DELETE("/:id", categoryH.Delete)

		// Products
		products := protected.Group("/products")
		products.GET("", productH.List)
		products.POST("", productH.Create)
		products.GET("/export", productH.ExportPDF)
		products.GET("/:id", productH.Get)
		products.PUT("/:id", productH.Update)
		products.DELETE("/:id", productH.Delete)
	}

	return r, nil
}
