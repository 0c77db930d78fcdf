package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/JaligamRishitha/renewmart-sub003/internal/api/handlers"
	"github.com/JaligamRishitha/renewmart-sub003/internal/api/middleware"
	"github.com/JaligamRishitha/renewmart-sub003/internal/services"
	"github.com/JaligamRishitha/renewmart-sub003/pkg/metrics"
)

type Router struct {
	engine            *gin.Engine
	logger            *zap.Logger
	metrics           *metrics.MetricsCollector
	docHandler        *handlers.DocumentHandler
	assignmentHandler *handlers.AssignmentHandler
	auditHandler      *handlers.AuditHandler
	actorMiddleware   *middleware.ActorMiddleware
	reqMiddleware     *middleware.RequestMiddleware
}

func NewRouter(
	logger *zap.Logger,
	collector *metrics.MetricsCollector,
	versionService *services.VersionService,
	reviewService *services.ReviewService,
	assignmentService *services.AssignmentService,
	auditService *services.AuditService,
	corsOrigins []string,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	reqMiddleware := middleware.NewRequestMiddleware(logger)
	actorMiddleware := middleware.NewActorMiddleware()

	engine.Use(reqMiddleware.ProcessRequest())
	engine.Use(reqMiddleware.RecoverPanic())
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept-Encoding", "Authorization", "X-Actor-Id", "X-Actor-Role"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	return &Router{
		engine:            engine,
		logger:            logger,
		metrics:           collector,
		docHandler:        handlers.NewDocumentHandler(versionService, reviewService, logger),
		assignmentHandler: handlers.NewAssignmentHandler(assignmentService, logger),
		auditHandler:      handlers.NewAuditHandler(auditService, logger),
		actorMiddleware:   actorMiddleware,
		reqMiddleware:     reqMiddleware,
	}
}

func (r *Router) SetupRoutes() {
	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "up", "name": "renewmart-doc-engine"})
	})

	r.engine.GET("/metrics", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"counters":  r.metrics.GetCounters(),
			"latencies": r.metrics.GetLatencies(),
			"sizes":     r.metrics.GetSizes(),
		})
	})

	v1 := r.engine.Group("/api/v1")
	v1.Use(r.actorMiddleware.RequireActor())
	{
		lands := v1.Group("/lands/:landId")
		{
			lands.POST("/documents", r.docHandler.AppendVersion)
			lands.GET("/documents", r.docHandler.ListDocuments)
			lands.GET("/documents/summary", r.docHandler.StatusSummary)
			lands.GET("/assignments", r.assignmentHandler.ListForLand)
			lands.GET("/audit", r.auditHandler.LandHistory)
		}

		documents := v1.Group("/documents/:id")
		{
			documents.GET("", r.docHandler.GetDocument)
			documents.POST("/lock", r.docHandler.LockDocument)
			documents.POST("/unlock", r.docHandler.UnlockDocument)
			documents.POST("/archive", r.docHandler.ArchiveDocument)
			documents.DELETE("", r.docHandler.PurgeDocument)
			documents.GET("/audit", r.auditHandler.DocumentHistory)
			documents.POST("/assignments", r.assignmentHandler.Create)
		}

		v1.POST("/assignments/:id/transition", r.assignmentHandler.Transition)
		v1.GET("/reviewers/:reviewerId/assignments", r.assignmentHandler.ListForReviewer)
	}
}

func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}

func (r *Router) Run(addr string) error {
	r.logger.Info("Starting HTTP server", zap.String("address", addr))
	return r.engine.Run(addr)
}
