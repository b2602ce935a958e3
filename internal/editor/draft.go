package editor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/2beens/liftlog/internal/schedule"
	"github.com/2beens/liftlog/internal/workout"
)

const DefaultRoutineName = "New Routine"

// defaults for exercise fields left empty in the editor
const (
	DefaultSets     = 3
	DefaultReps     = 10
	DefaultDuration = 30 // minutes
	DefaultDistance = 5
)

// Resolution is the user's answer to "training days without exercises" on save.
type Resolution int

const (
	// ResolveNone means no answer yet, the save is blocked.
	ResolveNone Resolution = iota
	// ResolveAddExercise means the user goes to add an exercise to the first empty day.
	ResolveAddExercise
	// ResolveMarkRest turns all empty training days into rest days and saves.
	ResolveMarkRest
)

// NeedsExerciseError tells the caller to open the add exercise flow for Day.
type NeedsExerciseError struct {
	Day workout.Day
}

func (e *NeedsExerciseError) Error() string {
	return fmt.Sprintf("add an exercise to %s before saving", e.Day)
}

//go:generate mockgen -source=$GOFILE -destination=draft_mocks_test.go -package=editor_test

type RoutineSaver interface {
	SaveRoutine(ctx context.Context, routine workout.Routine) (*workout.Routine, error)
}

// Draft is a routine being edited on the device.
type Draft struct {
	RoutineID int               `json:"routineId,omitempty"`
	Name      string            `json:"name"`
	IsActive  bool              `json:"isActive"`
	Plan      *schedule.Planner `json:"plan"`
	Dirty     bool              `json:"dirty"`
}

func NewDraft(name string) *Draft {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultRoutineName
	}
	return &Draft{
		Name: name,
		Plan: schedule.NewPlanner(),
	}
}

func DraftFromRoutine(r workout.Routine) (*Draft, error) {
	plan, err := schedule.FromExercises(r.Exercises)
	if err != nil {
		return nil, fmt.Errorf("routine [%d] exercises: %w", r.ID, err)
	}
	return &Draft{
		RoutineID: r.ID,
		Name:      r.Name,
		IsActive:  r.IsActive,
		Plan:      plan,
	}, nil
}

func (d *Draft) IsNew() bool {
	return d.RoutineID == 0
}

func (d *Draft) Rename(name string) {
	if d.Name == name {
		return
	}
	d.Name = name
	d.Dirty = true
}

func (d *Draft) ToggleRest(day workout.Day) (bool, error) {
	isRest, err := d.Plan.ToggleRest(day)
	if err != nil {
		return false, err
	}
	d.Dirty = true
	return isRest, nil
}

func (d *Draft) AddExercise(day workout.Day, ex workout.Exercise) (workout.Exercise, error) {
	if err := checkExerciseName(ex); err != nil {
		return workout.Exercise{}, err
	}
	added, err := d.Plan.Add(day, ex)
	if err != nil {
		return workout.Exercise{}, err
	}
	d.Dirty = true
	return added, nil
}

// EditExercise replaces an exercise. The draft only becomes dirty on a real content change.
func (d *Draft) EditExercise(id string, ex workout.Exercise) (bool, error) {
	if err := checkExerciseName(ex); err != nil {
		return false, err
	}
	changed, err := d.Plan.Replace(id, ex)
	if err != nil {
		return false, err
	}
	if changed {
		d.Dirty = true
	}
	return changed, nil
}

func (d *Draft) RemoveExercise(day workout.Day, id string) error {
	if err := d.Plan.Remove(day, id); err != nil {
		return err
	}
	d.Dirty = true
	return nil
}

// SetCompleted and SetPR only touch device-side state, they do not make the draft dirty.
func (d *Draft) SetCompleted(id string, completed bool) error {
	return d.Plan.Update(id, func(ex *workout.Exercise) {
		ex.IsCompleted = completed
	})
}

func (d *Draft) SetPR(id string, isPR bool) error {
	return d.Plan.Update(id, func(ex *workout.Exercise) {
		ex.IsPR = isPR
	})
}

// Save validates the draft and hands the reconciled routine to saver.
// Training days without exercises block the save until res says how to resolve them;
// nothing reaches the saver while they are unresolved. The draft is only changed
// by a successful save.
func (d *Draft) Save(ctx context.Context, saver RoutineSaver, res Resolution) (*workout.Routine, error) {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return nil, &workout.ValidationError{Field: "name", Message: "please enter a routine name"}
	}
	for _, ex := range d.Plan.All() {
		if err := checkExerciseName(ex); err != nil {
			return nil, fmt.Errorf("exercise [%s] on %s: %w", ex.ID, ex.Day, err)
		}
	}

	plan := d.Plan.Clone()
	if err := plan.Validate(); err != nil {
		var emptyErr *schedule.EmptyTrainingDaysError
		if !errors.As(err, &emptyErr) {
			return nil, err
		}

		switch res {
		case ResolveAddExercise:
			return nil, &NeedsExerciseError{Day: emptyErr.Days[0]}
		case ResolveMarkRest:
			converted := plan.MarkEmptyAsRest()
			log.Debugf("marked %d empty training days as rest", len(converted))
		default:
			return nil, err
		}
	}

	exercises := prepareExercises(plan.All())
	counts := plan.Reconcile()

	routine := workout.Routine{
		ID:           d.RoutineID,
		Name:         name,
		IsActive:     d.IsActive,
		TrainingDays: counts.TrainingDays,
		RestDays:     counts.RestDays,
		Exercises:    exercises,
	}

	saved, err := saver.SaveRoutine(ctx, routine)
	if err != nil {
		return nil, fmt.Errorf("save routine [%s]: %w", name, err)
	}

	if err := d.adopt(*saved, exercises); err != nil {
		return nil, err
	}
	return saved, nil
}

// prepareExercises fills in defaults for fields left empty.
func prepareExercises(exercises []workout.Exercise) []workout.Exercise {
	prepared := make([]workout.Exercise, 0, len(exercises))
	for _, ex := range exercises {
		ex.Name = strings.TrimSpace(ex.Name)
		if ex.Type == "" {
			ex.Type = workout.Strength
		}
		switch ex.Type {
		case workout.Strength:
			if ex.Sets <= 0 {
				ex.Sets = DefaultSets
			}
			if ex.Reps.IsZero() {
				ex.Reps = workout.SingleReps(DefaultReps)
			}
		case workout.Cardio:
			if ex.Duration == 0 {
				ex.Duration = DefaultDuration
			}
			if ex.Distance == 0 {
				ex.Distance = DefaultDistance
			}
		}
		prepared = append(prepared, ex)
	}
	return prepared
}

func checkExerciseName(ex workout.Exercise) error {
	if strings.TrimSpace(ex.Name) == "" {
		return &workout.ValidationError{Field: "name", Message: "please enter an exercise name"}
	}
	return nil
}

// adopt takes over the backend ids after a successful save, keeping the device-only flags.
func (d *Draft) adopt(saved workout.Routine, sent []workout.Exercise) error {
	exercises := saved.Exercises
	if len(exercises) == len(sent) {
		exercises = make([]workout.Exercise, len(saved.Exercises))
		copy(exercises, saved.Exercises)
		for i := range exercises {
			exercises[i].IsCompleted = sent[i].IsCompleted
			exercises[i].IsPR = sent[i].IsPR
		}
	}

	plan, err := schedule.FromExercises(exercises)
	if err != nil {
		return fmt.Errorf("saved routine exercises: %w", err)
	}

	d.RoutineID = saved.ID
	d.Name = saved.Name
	d.IsActive = saved.IsActive
	d.Plan = plan
	d.Dirty = false
	return nil
}
