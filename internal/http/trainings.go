package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/linebook/internal/entities"
	"github.com/mrlokans/linebook/internal/logger"
	"github.com/mrlokans/linebook/internal/services"
)

type TrainingsController struct {
	trainings TrainingService
	log       *logger.Logger
}

func NewTrainingsController(trainings TrainingService, log *logger.Logger) *TrainingsController {
	return &TrainingsController{
		trainings: trainings,
		log:       logger.OrNop(log),
	}
}

// ListTrainings returns the summaries of a user's trainings.
// GET /api/users/:userId/trainings
func (tc *TrainingsController) ListTrainings(c *gin.Context) {
	userID, ok := requireParam(c, "userId")
	if !ok {
		return
	}

	list, err := tc.trainings.ListTraining(c.Request.Context(), userID)
	if err != nil {
		respondInternalError(c, tc.log, err, "list trainings")
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"trainings": list, "count": len(list)})
}

// CreateTraining creates a training over the books its selection matches.
// POST /api/users/:userId/trainings
func (tc *TrainingsController) CreateTraining(c *gin.Context) {
	userID, ok := requireParam(c, "userId")
	if !ok {
		return
	}

	var in services.NewTrainingInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadRequest(c, "invalid training payload: "+err.Error())
		return
	}

	training, err := tc.trainings.NewTraining(c.Request.Context(), userID, in)
	if err != nil {
		if errors.Is(err, services.ErrInvalidSelection) || errors.Is(err, services.ErrNameRequired) {
			respondBadRequest(c, err.Error())
			return
		}
		respondInternalError(c, tc.log, err, "create training")
		return
	}
	respondCreated(c, training)
}

// GetTraining returns one training.
// GET /api/users/:userId/trainings/:trainingId
func (tc *TrainingsController) GetTraining(c *gin.Context) {
	userID, ok := requireParam(c, "userId")
	if !ok {
		return
	}
	trainingID, ok := requireParam(c, "trainingId")
	if !ok {
		return
	}

	training, err := tc.trainings.GetTraining(c.Request.Context(), userID, trainingID)
	if err != nil {
		respondInternalError(c, tc.log, err, "get training")
		return
	}
	if training == nil {
		respondNotFound(c, "training")
		return
	}
	c.IndentedJSON(http.StatusOK, training)
}

// UpdateTraining stores the full training record as submitted.
// PUT /api/users/:userId/trainings/:trainingId
func (tc *TrainingsController) UpdateTraining(c *gin.Context) {
	userID, ok := requireParam(c, "userId")
	if !ok {
		return
	}
	trainingID, ok := requireParam(c, "trainingId")
	if !ok {
		return
	}

	var training entities.Training
	if err := c.ShouldBindJSON(&training); err != nil {
		respondBadRequest(c, "invalid training payload: "+err.Error())
		return
	}
	training.ID = trainingID

	if err := tc.trainings.PutTraining(c.Request.Context(), userID, &training); err != nil {
		respondInternalError(c, tc.log, err, "update training")
		return
	}
	c.JSON(http.StatusOK, training)
}

// DeleteTraining removes a training.
// DELETE /api/users/:userId/trainings/:trainingId
func (tc *TrainingsController) DeleteTraining(c *gin.Context) {
	userID, ok := requireParam(c, "userId")
	if !ok {
		return
	}
	trainingID, ok := requireParam(c, "trainingId")
	if !ok {
		return
	}

	if err := tc.trainings.DeleteTraining(c.Request.Context(), userID, trainingID); err != nil {
		respondInternalError(c, tc.log, err, "delete training")
		return
	}
	respondSuccess(c, "training deleted")
}
