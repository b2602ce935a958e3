package routines

import (
	"context"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/liftlog/internal/schedule"
	"github.com/2beens/liftlog/internal/telemetry/metrics"
	"github.com/2beens/liftlog/internal/telemetry/tracing"
	"github.com/2beens/liftlog/internal/workout"
)

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=routines_test

type routinesRepo interface {
	List(ctx context.Context, userID int) ([]workout.Routine, error)
	Get(ctx context.Context, userID, id int) (*workout.Routine, error)
	Save(ctx context.Context, routine workout.Routine) (*workout.Routine, error)
	SetActive(ctx context.Context, userID, id int) error
	Delete(ctx context.Context, userID, id int) error
	ExerciseNames(ctx context.Context, userID int) ([]string, error)
}

type Service struct {
	repo           routinesRepo
	suggestions    *Suggestions
	metricsManager *metrics.Manager
	// injectable clock, for tests
	Now func() time.Time
}

func NewService(repo routinesRepo, suggestionsCacheSizeMB int, metricsManager *metrics.Manager) *Service {
	return &Service{
		repo:           repo,
		suggestions:    NewSuggestions(repo, suggestionsCacheSizeMB),
		metricsManager: metricsManager,
		Now:            time.Now,
	}
}

// List returns the user's routines in creation order.
func (s *Service) List(ctx context.Context, userID int) (_ []workout.Routine, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.routines.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	routines, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list routines: %w", err)
	}
	return routines, nil
}

func (s *Service) Get(ctx context.Context, userID, id int) (_ *workout.Routine, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.routines.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	routine, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("get routine %d: %w", id, err)
	}
	return routine, nil
}

// Save creates (routine.ID == 0) or updates a routine with its whole exercise set.
// Counters are derived from the exercises, whatever the client sent. A new routine
// becomes the active one; an updated routine keeps its stored active status, which
// the repo reads inside the save transaction.
func (s *Service) Save(ctx context.Context, userID int, routine workout.Routine) (_ *workout.Routine, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.routines.save")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID), attribute.Int("id", routine.ID))

	routine.UserID = userID
	routine.Name = strings.TrimSpace(routine.Name)
	for i := range routine.Exercises {
		routine.Exercises[i].Name = strings.TrimSpace(routine.Exercises[i].Name)
		if routine.Exercises[i].Type == "" {
			routine.Exercises[i].Type = workout.Strength
		}
	}
	if err := routine.Validate(); err != nil {
		return nil, err
	}

	counts := schedule.CountsFor(routine.Exercises)
	routine.TrainingDays = counts.TrainingDays
	routine.RestDays = counts.RestDays

	// the client's flag is never trusted
	routine.IsActive = routine.ID == 0

	saved, err := s.repo.Save(ctx, routine)
	if err != nil {
		return nil, fmt.Errorf("save routine: %w", err)
	}

	s.suggestions.Invalidate(userID)
	s.metricsManager.CounterRoutinesSaved.Inc()
	s.metricsManager.CounterExercisesSaved.Add(float64(len(saved.Exercises)))
	log.Debugf("routine %d [%s] saved for user %d: %d exercises, %d training days",
		saved.ID, saved.Name, userID, len(saved.Exercises), saved.TrainingDays)

	return saved, nil
}

func (s *Service) SetActive(ctx context.Context, userID, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.routines.setactive")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := s.repo.SetActive(ctx, userID, id); err != nil {
		return fmt.Errorf("activate routine %d: %w", id, err)
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, userID, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.routines.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("delete routine %d: %w", id, err)
	}

	s.suggestions.Invalidate(userID)
	s.metricsManager.CounterRoutinesDeleted.Inc()
	return nil
}

// Export returns the backup document of all user's routines and its suggested file name.
func (s *Service) Export(ctx context.Context, userID int) (_ []byte, filename string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.routines.export")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	routines, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, "", fmt.Errorf("list routines: %w", err)
	}

	now := s.Now()
	data, err := MarshalExport(routines, now)
	if err != nil {
		return nil, "", err
	}
	return data, ExportFilename(now), nil
}

func (s *Service) Suggest(ctx context.Context, userID int, query string, limit int) ([]string, error) {
	return s.suggestions.Suggest(ctx, userID, query, limit)
}

// Forget drops any cached state of the user, e.g. after the account is deleted.
func (s *Service) Forget(userID int) {
	s.suggestions.Invalidate(userID)
}
