package http

import (
	"log/slog"

	"github.com/geocoder89/subscriberhub/internal/http/handlers"
	"github.com/geocoder89/subscriberhub/internal/http/middlewares"
	"github.com/geocoder89/subscriberhub/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type RouterDeps struct {
	Env         string
	Log         *slog.Logger
	Subscribers handlers.SubscriberService

	// Ready lists what /readyz pings, by name.
	Ready map[string]handlers.Pinger

	// ShuttingDown flips /readyz to 503 once the server starts draining.
	ShuttingDown func() bool

	// Prom and Gatherer enable /metrics and request metrics when both are set.
	Prom     *observability.Prom
	Gatherer prometheus.Gatherer

	// ServiceName turns on otelgin spans when non-empty.
	ServiceName string

	// QuietRequests drops the per-request log line (test environment).
	QuietRequests bool

	CORSAllowedOrigins []string
	MaxBodyBytes       int64
}

func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	if deps.Env == "test" {
		gin.SetMode(gin.TestMode)
	}

	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())

	if deps.ServiceName != "" {
		r.Use(otelgin.Middleware(deps.ServiceName))
	}

	if !deps.QuietRequests {
		r.Use(middlewares.RequestLogger(deps.Log))
	}

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(deps.CORSAllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(deps.MaxBodyBytes))

	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}

	r.Use(middlewares.ErrorHandler(deps.Log))

	// ops
	h := handlers.NewHealthHandler(deps.Ready, deps.ShuttingDown)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if deps.Prom != nil && deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	// Routes
	var opts []handlers.HandlerOption
	if deps.Prom != nil {
		opts = append(opts, handlers.OnCreated(deps.Prom.SubscribersCreated.Inc))
	}
	subscribersHandler := handlers.NewSubscribersHandler(deps.Subscribers, opts...)

	r.GET("/", handlers.Root)
	r.GET("/subscribers", subscribersHandler.ListSubscribers)
	r.POST("/subscribers", subscribersHandler.CreateSubscriber)
	r.GET("/subscribers/:id", subscribersHandler.GetSubscriberByID)

	return r
}
