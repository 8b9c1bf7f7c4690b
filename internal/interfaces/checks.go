package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/linebook/internal/audit"
	"github.com/mrlokans/linebook/internal/database/activity"
	"github.com/mrlokans/linebook/internal/database/books"
	"github.com/mrlokans/linebook/internal/database/training"
	"github.com/mrlokans/linebook/internal/exporters"
	"github.com/mrlokans/linebook/internal/http"
	"github.com/mrlokans/linebook/internal/importers"
	"github.com/mrlokans/linebook/internal/kvstore"
	"github.com/mrlokans/linebook/internal/kvstore/redisstore"
	"github.com/mrlokans/linebook/internal/kvstore/sqlstore"
	"github.com/mrlokans/linebook/internal/services"
)

// =============================================================================
// Key-Value Backends
// =============================================================================

var _ kvstore.Client = (*sqlstore.Store)(nil)
var _ kvstore.Client = (*redisstore.Store)(nil)

// =============================================================================
// Repositories
// =============================================================================

var _ services.BookStore = (*books.Repository)(nil)
var _ services.TrainingStore = (*training.Repository)(nil)
var _ services.ActivityStore = (*activity.Repository)(nil)

// BookReader implementations
var _ exporters.BookReader = (*books.Repository)(nil)
var _ exporters.BookReader = (*services.BookService)(nil)

// =============================================================================
// Services
// =============================================================================

var _ services.Auditor = (*audit.Service)(nil)
var _ services.Auditor = services.NopAuditor{}

var _ http.BookService = (*services.BookService)(nil)
var _ http.TrainingService = (*services.TrainingService)(nil)
var _ http.ActivityService = (*services.ActivityService)(nil)
var _ http.AuditReader = (*audit.Service)(nil)
var _ http.Pinger = (kvstore.Client)(nil)
var _ http.PGNImporter = (*importers.Pipeline)(nil)

// BookCreator implementations
var _ importers.BookCreator = (*services.BookService)(nil)

// BookExporter implementations
var _ exporters.BookExporter = (*exporters.PGNFileExporter)(nil)
