package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/linebook/internal/entities"
	"github.com/mrlokans/linebook/internal/logger"
)

type AuditController struct {
	auditService AuditReader
	log          *logger.Logger
}

func NewAuditController(auditService AuditReader, log *logger.Logger) *AuditController {
	return &AuditController{
		auditService: auditService,
		log:          logger.OrNop(log),
	}
}

// GetAuditEvents returns paginated audit events as JSON
// GET /api/users/:userId/audit?page=N&limit=N&type=T
func (ac *AuditController) GetAuditEvents(c *gin.Context) {
	userID, ok := requireParam(c, "userId")
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "25"))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 25
	}

	eventType := c.Query("type")
	offset := (page - 1) * limit

	var events []entities.AuditEvent
	var total int64
	var err error

	if eventType != "" {
		events, total, err = ac.auditService.GetEventsByType(c.Request.Context(), entities.AuditEventType(eventType), userID, limit, offset)
	} else {
		events, total, err = ac.auditService.GetEvents(c.Request.Context(), userID, limit, offset)
	}

	if err != nil {
		respondInternalError(c, ac.log, err, "load audit events")
		return
	}

	totalPages := (int(total) + limit - 1) / limit
	if totalPages < 1 {
		totalPages = 1
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		Data:       events,
		Total:      total,
		Limit:      limit,
		Offset:     offset,
		HasMore:    int64(offset+len(events)) < total,
		TotalPages: totalPages,
	})
}
