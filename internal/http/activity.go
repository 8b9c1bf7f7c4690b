package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/linebook/internal/entities"
	"github.com/mrlokans/linebook/internal/logger"
)

type ActivityController struct {
	activity ActivityService
	now      func() time.Time
	log      *logger.Logger
}

func NewActivityController(activity ActivityService, log *logger.Logger) *ActivityController {
	return &ActivityController{
		activity: activity,
		now:      time.Now,
		log:      logger.OrNop(log),
	}
}

// ListActivity returns the most recent sessions, newest first. A limit of
// zero or none selects the configured default.
// GET /api/users/:userId/activity?limit=N
func (ac *ActivityController) ListActivity(c *gin.Context) {
	userID, ok := requireParam(c, "userId")
	if !ok {
		return
	}
	limit, ok := parseQueryInt(c, "limit", 0)
	if !ok {
		return
	}

	recent, err := ac.activity.Recent(c.Request.Context(), userID, limit, ac.now())
	if err != nil {
		respondInternalError(c, ac.log, err, "list activity")
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"activity": recent, "count": len(recent)})
}

// RecordActivity stores one finished session. A missing timestamp is set
// to the current time.
// POST /api/users/:userId/activity
func (ac *ActivityController) RecordActivity(c *gin.Context) {
	userID, ok := requireParam(c, "userId")
	if !ok {
		return
	}

	var activity entities.TrainingActivity
	if err := c.ShouldBindJSON(&activity); err != nil {
		respondBadRequest(c, "invalid activity payload: "+err.Error())
		return
	}
	if activity.Timestamp < 0 {
		respondBadRequest(c, "timestamp must not be negative")
		return
	}

	if err := ac.activity.Record(c.Request.Context(), userID, &activity, ac.now()); err != nil {
		respondInternalError(c, ac.log, err, "record activity")
		return
	}
	respondCreated(c, activity)
}
