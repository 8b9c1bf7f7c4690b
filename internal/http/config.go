package http

import (
	"github.com/mrlokans/linebook/internal/logger"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Books     BookService
	Trainings TrainingService
	Activity  ActivityService

	// PGN import (optional)
	Importer PGNImporter

	// Audit listing (optional)
	Audit AuditReader

	// Health checks
	Store Pinger

	// Browser origins allowed to call the API; empty disables CORS
	CORSOrigins []string

	// Request tracing; empty disables the otel middleware
	TracingServiceName string

	// Application info
	Version string

	Logger *logger.Logger
}
