package schedule

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/2beens/liftlog/internal/workout"
)

var ErrExerciseNotFound = errors.New("exercise not found")

type DayState int

const (
	Rest DayState = iota
	// TrainingEmpty is a training day without exercises yet. It is never a valid state to save.
	TrainingEmpty
	TrainingPopulated
)

func (s DayState) String() string {
	switch s {
	case Rest:
		return "rest"
	case TrainingEmpty:
		return "training (no exercises)"
	case TrainingPopulated:
		return "training"
	default:
		return fmt.Sprintf("DayState(%d)", int(s))
	}
}

type Counts struct {
	TrainingDays int `json:"trainingDays"`
	RestDays     int `json:"restDays"`
}

// EmptyTrainingDaysError blocks a save until the user either adds exercises
// to the listed days or turns them into rest days.
type EmptyTrainingDaysError struct {
	Days []workout.Day
}

func (e *EmptyTrainingDaysError) Error() string {
	names := make([]string, 0, len(e.Days))
	for _, d := range e.Days {
		names = append(names, string(d))
	}
	return fmt.Sprintf("training days without exercises: %s", strings.Join(names, ", "))
}

// Planner keeps the weekly rest/training flags, the exercises per day
// and the training/rest counters consistent with each other.
// The zero value is not usable, create one with NewPlanner or FromExercises.
type Planner struct {
	rest      [workout.DaysInWeek]bool
	exercises [workout.DaysInWeek][]workout.Exercise
	counts    Counts
}

// NewPlanner returns a week of rest days.
func NewPlanner() *Planner {
	p := &Planner{}
	for i := range p.rest {
		p.rest[i] = true
	}
	p.recount()
	return p
}

// FromExercises builds a planner from stored exercises. A day is training iff it has exercises.
func FromExercises(exercises []workout.Exercise) (*Planner, error) {
	p := NewPlanner()
	for _, ex := range exercises {
		i, err := dayIndex(ex.Day)
		if err != nil {
			return nil, err
		}
		if ex.ID == "" {
			ex.ID = workout.NewLocalID()
		}
		p.exercises[i] = append(p.exercises[i], ex)
		p.rest[i] = false
	}
	p.recount()
	return p, nil
}

// ToggleRest flips the day between rest and training and returns whether it is a rest day now.
// A day turning into a rest day loses its exercises.
func (p *Planner) ToggleRest(day workout.Day) (bool, error) {
	i, err := dayIndex(day)
	if err != nil {
		return false, err
	}

	p.rest[i] = !p.rest[i]
	if p.rest[i] {
		p.exercises[i] = nil
	}
	p.recount()
	return p.rest[i], nil
}

// Add appends the exercise to day and makes it a training day.
// The exercise gets a local id if it has none.
func (p *Planner) Add(day workout.Day, ex workout.Exercise) (workout.Exercise, error) {
	i, err := dayIndex(day)
	if err != nil {
		return workout.Exercise{}, err
	}

	ex.Day = day
	if ex.ID == "" {
		ex.ID = workout.NewLocalID()
	}
	p.exercises[i] = append(p.exercises[i], ex)
	p.rest[i] = false
	p.recount()
	return ex, nil
}

// Replace swaps the exercise with the given id for ex, keeping its id and device-only flags.
// An empty ex.Day keeps the current day, a different one moves the exercise.
// It reports whether any user-visible content changed; unchanged edits leave the plan untouched.
func (p *Planner) Replace(id string, ex workout.Exercise) (bool, error) {
	fromIdx, pos, ok := p.find(id)
	if !ok {
		return false, fmt.Errorf("replace [%s]: %w", id, ErrExerciseNotFound)
	}

	current := p.exercises[fromIdx][pos]
	if ex.Day == "" {
		ex.Day = current.Day
	}
	toIdx, err := dayIndex(ex.Day)
	if err != nil {
		return false, err
	}

	ex.ID = current.ID
	ex.RoutineID = current.RoutineID
	ex.IsCompleted = current.IsCompleted
	ex.IsPR = current.IsPR
	if current.SameContent(ex) {
		return false, nil
	}

	if toIdx == fromIdx {
		p.exercises[fromIdx][pos] = ex
		return true, nil
	}

	p.removeAt(fromIdx, pos)
	p.exercises[toIdx] = append(p.exercises[toIdx], ex)
	p.rest[toIdx] = false
	p.recount()
	return true, nil
}

// Update applies fn to the exercise with the given id. Meant for device-only flags,
// fn must not change the exercise day or id.
func (p *Planner) Update(id string, fn func(ex *workout.Exercise)) error {
	dayIdx, pos, ok := p.find(id)
	if !ok {
		return fmt.Errorf("update [%s]: %w", id, ErrExerciseNotFound)
	}

	ex := p.exercises[dayIdx][pos]
	fn(&ex)
	ex.ID = id
	ex.Day = workout.Week[dayIdx]
	p.exercises[dayIdx][pos] = ex
	return nil
}

// Remove deletes the exercise from day. Removing the last exercise makes it a rest day.
func (p *Planner) Remove(day workout.Day, id string) error {
	i, err := dayIndex(day)
	if err != nil {
		return err
	}

	pos := slices.IndexFunc(p.exercises[i], func(ex workout.Exercise) bool {
		return ex.ID == id
	})
	if pos < 0 {
		return fmt.Errorf("remove [%s] from %s: %w", id, day, ErrExerciseNotFound)
	}

	p.removeAt(i, pos)
	p.recount()
	return nil
}

// Find returns the exercise with the given id from any day.
func (p *Planner) Find(id string) (workout.Exercise, bool) {
	dayIdx, pos, ok := p.find(id)
	if !ok {
		return workout.Exercise{}, false
	}
	return p.exercises[dayIdx][pos], true
}

// Clone returns an independent copy of the plan.
func (p *Planner) Clone() *Planner {
	c := *p
	for i := range c.exercises {
		c.exercises[i] = slices.Clone(p.exercises[i])
	}
	return &c
}

func (p *Planner) Counts() Counts {
	return p.counts
}

func (p *Planner) IsRest(day workout.Day) bool {
	i, err := dayIndex(day)
	if err != nil {
		return false
	}
	return p.rest[i]
}

func (p *Planner) State(day workout.Day) DayState {
	i, err := dayIndex(day)
	if err != nil || p.rest[i] {
		return Rest
	}
	if len(p.exercises[i]) == 0 {
		return TrainingEmpty
	}
	return TrainingPopulated
}

// Exercises returns a copy of the exercises assigned to day.
func (p *Planner) Exercises(day workout.Day) []workout.Exercise {
	i, err := dayIndex(day)
	if err != nil {
		return nil
	}
	return slices.Clone(p.exercises[i])
}

// All returns all exercises, Monday first, each day in insertion order.
func (p *Planner) All() []workout.Exercise {
	var all []workout.Exercise
	for i := range workout.Week {
		all = append(all, p.exercises[i]...)
	}
	return all
}

// EmptyTrainingDays lists the days flagged as training that have no exercises, in week order.
func (p *Planner) EmptyTrainingDays() []workout.Day {
	var days []workout.Day
	for i, d := range workout.Week {
		if !p.rest[i] && len(p.exercises[i]) == 0 {
			days = append(days, d)
		}
	}
	return days
}

// Validate returns an *EmptyTrainingDaysError if any training day has no exercises.
func (p *Planner) Validate() error {
	if days := p.EmptyTrainingDays(); len(days) > 0 {
		return &EmptyTrainingDaysError{Days: days}
	}
	return nil
}

// MarkEmptyAsRest turns every empty training day into a rest day.
func (p *Planner) MarkEmptyAsRest() []workout.Day {
	days := p.EmptyTrainingDays()
	for _, d := range days {
		p.rest[d.Index()] = true
	}
	p.recount()
	return days
}

// Reconcile recomputes the rest flags from the exercises (rest iff empty), overriding
// any stale flag, then the counters. It must run right before a plan is persisted.
func (p *Planner) Reconcile() Counts {
	for i := range p.rest {
		p.rest[i] = len(p.exercises[i]) == 0
	}
	p.recount()
	return p.counts
}

// CountsFor derives the counters from a flat exercise list.
// Exercises with unknown days are ignored.
func CountsFor(exercises []workout.Exercise) Counts {
	var training [workout.DaysInWeek]bool
	for _, ex := range exercises {
		if i := ex.Day.Index(); i >= 0 {
			training[i] = true
		}
	}

	var c Counts
	for _, t := range training {
		if t {
			c.TrainingDays++
		} else {
			c.RestDays++
		}
	}
	return c
}

func (p *Planner) recount() {
	p.counts = Counts{}
	for _, isRest := range p.rest {
		if isRest {
			p.counts.RestDays++
		} else {
			p.counts.TrainingDays++
		}
	}
}

func (p *Planner) removeAt(dayIdx, pos int) {
	p.exercises[dayIdx] = slices.Delete(p.exercises[dayIdx], pos, pos+1)
	if len(p.exercises[dayIdx]) == 0 {
		p.exercises[dayIdx] = nil
		p.rest[dayIdx] = true
	}
}

func (p *Planner) find(id string) (int, int, bool) {
	for i := range p.exercises {
		for pos, ex := range p.exercises[i] {
			if ex.ID == id {
				return i, pos, true
			}
		}
	}
	return 0, 0, false
}

func dayIndex(day workout.Day) (int, error) {
	i := day.Index()
	if i < 0 {
		return 0, &workout.ValidationError{Field: "day", Message: fmt.Sprintf("unknown day [%s]", day)}
	}
	return i, nil
}

type plannerJSON struct {
	Rest      map[workout.Day]bool `json:"rest"`
	Exercises []workout.Exercise   `json:"exercises"`
}

func (p *Planner) MarshalJSON() ([]byte, error) {
	pj := plannerJSON{
		Rest:      make(map[workout.Day]bool, workout.DaysInWeek),
		Exercises: p.All(),
	}
	for i, d := range workout.Week {
		pj.Rest[d] = p.rest[i]
	}
	return json.Marshal(pj)
}

// UnmarshalJSON restores a planner, including training days that are still empty.
func (p *Planner) UnmarshalJSON(data []byte) error {
	var pj plannerJSON
	if err := json.Unmarshal(data, &pj); err != nil {
		return err
	}

	restored, err := FromExercises(pj.Exercises)
	if err != nil {
		return err
	}
	for day, isRest := range pj.Rest {
		i, err := dayIndex(day)
		if err != nil {
			return err
		}
		if !isRest {
			restored.rest[i] = false
		}
	}
	restored.recount()

	*p = *restored
	return nil
}
