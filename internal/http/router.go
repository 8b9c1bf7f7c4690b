package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies, improving testability
// and reducing parameter count.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(SecurityHeadersMiddleware())

	if cfg.TracingServiceName != "" {
		router.Use(otelgin.Middleware(cfg.TracingServiceName))
	}

	if len(cfg.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins: cfg.CORSOrigins,
			AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders: []string{"Content-Type", "X-Requested-With"},
			MaxAge:       12 * time.Hour,
		}))
	}

	health := NewHealthController(cfg.Store, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	user := router.Group("/api/users/:userId")

	booksController := NewBooksController(cfg.Books, cfg.Logger)
	user.GET("/books", booksController.ListBooks)
	user.POST("/books", booksController.CreateBook)
	user.GET("/books/:bookId", booksController.GetBook)
	user.PUT("/books/:bookId", booksController.UpdateBook)
	user.DELETE("/books/:bookId", booksController.DeleteBook)
	user.GET("/books/:bookId/pgn", booksController.ExportPGN)
	user.POST("/books/:bookId/lines", booksController.AddLine)

	if cfg.Importer != nil {
		importController := NewImportController(cfg.Importer, cfg.Logger)
		user.POST("/import/pgn", importController.ImportPGN)
	}

	trainingsController := NewTrainingsController(cfg.Trainings, cfg.Logger)
	user.GET("/trainings", trainingsController.ListTrainings)
	user.POST("/trainings", trainingsController.CreateTraining)
	user.GET("/trainings/:trainingId", trainingsController.GetTraining)
	user.PUT("/trainings/:trainingId", trainingsController.UpdateTraining)
	user.DELETE("/trainings/:trainingId", trainingsController.DeleteTraining)

	activityController := NewActivityController(cfg.Activity, cfg.Logger)
	user.GET("/activity", activityController.ListActivity)
	user.POST("/activity", activityController.RecordActivity)

	// Audit routes (only if an audit reader is configured)
	if cfg.Audit != nil {
		auditController := NewAuditController(cfg.Audit, cfg.Logger)
		user.GET("/audit", auditController.GetAuditEvents)
	}

	return router
}
