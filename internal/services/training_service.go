package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mrlokans/linebook/internal/entities"
	"github.com/mrlokans/linebook/internal/logger"
	"github.com/mrlokans/linebook/internal/selection"
)

var (
	// ErrInvalidSelection is returned for a selection that names no known type.
	ErrInvalidSelection = errors.New("invalid training selection")
	ErrNameRequired     = errors.New("training name is required")
)

// NewTrainingInput describes a training to create.
type NewTrainingInput struct {
	Name      string                     `json:"name"`
	Selection entities.TrainingSelection `json:"selection"`
	Shuffle   bool                       `json:"shuffle"`
}

// TrainingService creates and maintains trainings.
type TrainingService struct {
	books     BookStore
	trainings TrainingStore
	auditor   Auditor
	log       *logger.Logger
}

func NewTrainingService(books BookStore, trainings TrainingStore, auditor Auditor, log *logger.Logger) *TrainingService {
	if auditor == nil {
		auditor = NopAuditor{}
	}
	return &TrainingService{
		books:     books,
		trainings: trainings,
		auditor:   auditor,
		log:       logger.OrNop(log),
	}
}

// NewTraining creates a training whose total line count is the sum over the
// books its selection currently matches.
func (s *TrainingService) NewTraining(ctx context.Context, userID string, in NewTrainingInput) (*entities.Training, error) {
	if !selection.Valid(in.Selection) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSelection, in.Selection.Type)
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	allBooks, err := s.books.ListBooks(ctx, userID)
	if err != nil {
		return nil, err
	}

	t := &entities.Training{
		ID:           uuid.NewString(),
		UserID:       userID,
		Name:         name,
		Selection:    in.Selection,
		TotalLines:   selection.TotalLines(allBooks, in.Selection),
		StartedBooks: []string{},
		Shuffle:      in.Shuffle,
	}

	err = s.trainings.PutTraining(ctx, userID, t)
	s.auditor.LogTraining(userID, t.ID, "create", err)
	if err != nil {
		return nil, err
	}
	s.log.Debug("training created", "user_id", userID, "training_id", t.ID, "total_lines", t.TotalLines)
	return t, nil
}

func (s *TrainingService) ListTraining(ctx context.Context, userID string) ([]entities.TrainingSummary, error) {
	return s.trainings.ListTraining(ctx, userID)
}

func (s *TrainingService) GetTraining(ctx context.Context, userID, trainingID string) (*entities.Training, error) {
	return s.trainings.GetTraining(ctx, userID, trainingID)
}

// PutTraining stores the full training record as given.
func (s *TrainingService) PutTraining(ctx context.Context, userID string, t *entities.Training) error {
	err := s.trainings.PutTraining(ctx, userID, t)
	s.auditor.LogTraining(userID, t.ID, "update", err)
	return err
}

func (s *TrainingService) DeleteTraining(ctx context.Context, userID, trainingID string) error {
	err := s.trainings.DeleteTraining(ctx, userID, trainingID)
	s.auditor.LogTraining(userID, trainingID, "delete", err)
	return err
}
