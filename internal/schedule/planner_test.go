package schedule

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2beens/liftlog/internal/workout"
)

func squat() workout.Exercise {
	return workout.Exercise{Name: "Squat", Type: workout.Strength, Sets: 5, Reps: workout.SingleReps(5), Weight: 100}
}

func bench() workout.Exercise {
	return workout.Exercise{Name: "Bench Press", Type: workout.Strength, Sets: 3, Reps: workout.Reps{Min: 8, Max: 12}, Weight: 60}
}

func assertConsistent(t *testing.T, p *Planner) {
	t.Helper()
	c := p.Counts()
	assert.Equal(t, workout.DaysInWeek, c.TrainingDays+c.RestDays)

	rest := 0
	for _, d := range workout.Week {
		if p.IsRest(d) {
			rest++
			assert.Empty(t, p.Exercises(d), "rest day %s holds exercises", d)
		}
	}
	assert.Equal(t, rest, c.RestDays)
}

func TestNewPlanner(t *testing.T) {
	p := NewPlanner()
	assert.Equal(t, Counts{TrainingDays: 0, RestDays: 7}, p.Counts())
	for _, d := range workout.Week {
		assert.Equal(t, Rest, p.State(d))
	}
	assert.NoError(t, p.Validate())
	assert.Empty(t, p.All())
}

func TestPlanner_ToggleRest(t *testing.T) {
	p := NewPlanner()

	isRest, err := p.ToggleRest(workout.Monday)
	require.NoError(t, err)
	assert.False(t, isRest)
	assert.Equal(t, TrainingEmpty, p.State(workout.Monday))
	assert.Equal(t, Counts{TrainingDays: 1, RestDays: 6}, p.Counts())

	_, err = p.Add(workout.Monday, squat())
	require.NoError(t, err)
	_, err = p.Add(workout.Monday, bench())
	require.NoError(t, err)
	assert.Equal(t, TrainingPopulated, p.State(workout.Monday))

	// back to rest drops the exercises right away
	isRest, err = p.ToggleRest(workout.Monday)
	require.NoError(t, err)
	assert.True(t, isRest)
	assert.Empty(t, p.Exercises(workout.Monday))
	assert.Equal(t, Counts{TrainingDays: 0, RestDays: 7}, p.Counts())
	assertConsistent(t, p)

	_, err = p.ToggleRest("Caturday")
	assert.Error(t, err)
}

func TestPlanner_Add(t *testing.T) {
	p := NewPlanner()

	added, err := p.Add(workout.Wednesday, squat())
	require.NoError(t, err)
	assert.NotEmpty(t, added.ID)
	assert.Equal(t, workout.Wednesday, added.Day)
	assert.False(t, p.IsRest(workout.Wednesday))
	assert.Equal(t, Counts{TrainingDays: 1, RestDays: 6}, p.Counts())

	withID := bench()
	withID.ID = "keep-me"
	withID.Day = workout.Sunday // overridden by the target day
	added, err = p.Add(workout.Wednesday, withID)
	require.NoError(t, err)
	assert.Equal(t, "keep-me", added.ID)
	assert.Equal(t, workout.Wednesday, added.Day)

	exercises := p.Exercises(workout.Wednesday)
	require.Len(t, exercises, 2)
	assert.Equal(t, "Squat", exercises[0].Name)
	assert.Equal(t, "Bench Press", exercises[1].Name)

	// returned slice is a copy
	exercises[0].Name = "changed"
	assert.Equal(t, "Squat", p.Exercises(workout.Wednesday)[0].Name)

	_, err = p.Add("", squat())
	var vErr *workout.ValidationError
	assert.True(t, errors.As(err, &vErr))
	assertConsistent(t, p)
}

func TestPlanner_Remove(t *testing.T) {
	p := NewPlanner()
	first, err := p.Add(workout.Monday, squat())
	require.NoError(t, err)
	second, err := p.Add(workout.Monday, bench())
	require.NoError(t, err)
	assert.Equal(t, Counts{TrainingDays: 1, RestDays: 6}, p.Counts())

	require.NoError(t, p.Remove(workout.Monday, first.ID))
	assert.Equal(t, TrainingPopulated, p.State(workout.Monday))
	assert.Equal(t, Counts{TrainingDays: 1, RestDays: 6}, p.Counts())

	// last one flips the day to rest
	require.NoError(t, p.Remove(workout.Monday, second.ID))
	assert.Equal(t, Rest, p.State(workout.Monday))
	assert.Equal(t, Counts{TrainingDays: 0, RestDays: 7}, p.Counts())
	assertConsistent(t, p)

	err = p.Remove(workout.Monday, second.ID)
	assert.ErrorIs(t, err, ErrExerciseNotFound)
	err = p.Remove(workout.Tuesday, "nope")
	assert.ErrorIs(t, err, ErrExerciseNotFound)
}

func TestPlanner_RemoveOnlyExercise_CountsMoveByOne(t *testing.T) {
	p := NewPlanner()
	_, err := p.Add(workout.Monday, squat())
	require.NoError(t, err)
	onlyFriday, err := p.Add(workout.Friday, bench())
	require.NoError(t, err)
	before := p.Counts()

	require.NoError(t, p.Remove(workout.Friday, onlyFriday.ID))
	after := p.Counts()
	assert.Equal(t, before.TrainingDays-1, after.TrainingDays)
	assert.Equal(t, before.RestDays+1, after.RestDays)
	assert.True(t, p.IsRest(workout.Friday))
}

func TestPlanner_Replace(t *testing.T) {
	p := NewPlanner()
	added, err := p.Add(workout.Monday, squat())
	require.NoError(t, err)
	require.NoError(t, p.Update(added.ID, func(ex *workout.Exercise) { ex.IsPR = true }))

	// same content, nothing changes
	same := squat()
	changed, err := p.Replace(added.ID, same)
	require.NoError(t, err)
	assert.False(t, changed)

	heavier := squat()
	heavier.Weight = 110
	changed, err = p.Replace(added.ID, heavier)
	require.NoError(t, err)
	assert.True(t, changed)

	got, ok := p.Find(added.ID)
	require.True(t, ok)
	assert.Equal(t, 110.0, got.Weight)
	assert.Equal(t, workout.Monday, got.Day)
	assert.True(t, got.IsPR)

	// moving the only exercise makes the old day a rest day
	moved := heavier
	moved.Day = workout.Thursday
	changed, err = p.Replace(added.ID, moved)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, p.IsRest(workout.Monday))
	assert.Equal(t, TrainingPopulated, p.State(workout.Thursday))
	assert.Equal(t, Counts{TrainingDays: 1, RestDays: 6}, p.Counts())
	got, ok = p.Find(added.ID)
	require.True(t, ok)
	assert.Equal(t, workout.Thursday, got.Day)
	assertConsistent(t, p)

	_, err = p.Replace("missing", squat())
	assert.ErrorIs(t, err, ErrExerciseNotFound)

	bad := squat()
	bad.Day = "Caturday"
	_, err = p.Replace(added.ID, bad)
	assert.Error(t, err)
}

func TestPlanner_Update(t *testing.T) {
	p := NewPlanner()
	added, err := p.Add(workout.Tuesday, bench())
	require.NoError(t, err)

	require.NoError(t, p.Update(added.ID, func(ex *workout.Exercise) {
		ex.IsCompleted = true
		ex.Day = workout.Sunday
		ex.ID = "hijack"
	}))
	got, ok := p.Find(added.ID)
	require.True(t, ok)
	assert.True(t, got.IsCompleted)
	assert.Equal(t, workout.Tuesday, got.Day)

	assert.ErrorIs(t, p.Update("missing", func(*workout.Exercise) {}), ErrExerciseNotFound)
}

func TestPlanner_ValidateAndMarkEmptyAsRest(t *testing.T) {
	p := NewPlanner()
	_, err := p.Add(workout.Monday, squat())
	require.NoError(t, err)
	_, err = p.ToggleRest(workout.Wednesday)
	require.NoError(t, err)
	_, err = p.ToggleRest(workout.Saturday)
	require.NoError(t, err)

	assert.Equal(t, []workout.Day{workout.Wednesday, workout.Saturday}, p.EmptyTrainingDays())

	err = p.Validate()
	var emptyErr *EmptyTrainingDaysError
	require.True(t, errors.As(err, &emptyErr))
	assert.Equal(t, []workout.Day{workout.Wednesday, workout.Saturday}, emptyErr.Days)
	assert.Equal(t, "training days without exercises: Wednesday, Saturday", err.Error())
	assert.Equal(t, Counts{TrainingDays: 3, RestDays: 4}, p.Counts())

	converted := p.MarkEmptyAsRest()
	assert.Equal(t, []workout.Day{workout.Wednesday, workout.Saturday}, converted)
	assert.NoError(t, p.Validate())
	assert.Equal(t, Counts{TrainingDays: 1, RestDays: 6}, p.Counts())
	assertConsistent(t, p)
}

func TestPlanner_Reconcile(t *testing.T) {
	p := NewPlanner()
	_, err := p.Add(workout.Monday, squat())
	require.NoError(t, err)
	_, err = p.Add(workout.Monday, bench())
	require.NoError(t, err)
	// stale training flag without exercises
	_, err = p.ToggleRest(workout.Friday)
	require.NoError(t, err)

	counts := p.Reconcile()
	assert.Equal(t, Counts{TrainingDays: 1, RestDays: 6}, counts)
	for _, d := range workout.Week {
		assert.Equal(t, len(p.Exercises(d)) == 0, p.IsRest(d), d)
	}
}

func TestFromExercises(t *testing.T) {
	mon := squat()
	mon.ID = "1"
	mon.Day = workout.Monday
	mon2 := bench()
	mon2.ID = "2"
	mon2.Day = workout.Monday
	thu := bench()
	thu.Day = workout.Thursday

	p, err := FromExercises([]workout.Exercise{mon, thu, mon2})
	require.NoError(t, err)
	assert.Equal(t, Counts{TrainingDays: 2, RestDays: 5}, p.Counts())
	assert.Equal(t, TrainingPopulated, p.State(workout.Monday))
	assert.Equal(t, Rest, p.State(workout.Tuesday))

	mondays := p.Exercises(workout.Monday)
	require.Len(t, mondays, 2)
	assert.Equal(t, "1", mondays[0].ID)
	assert.Equal(t, "2", mondays[1].ID)
	assert.NotEmpty(t, p.Exercises(workout.Thursday)[0].ID)

	all := p.All()
	require.Len(t, all, 3)
	assert.Equal(t, workout.Thursday, all[2].Day)

	bad := squat()
	bad.Day = "Someday"
	_, err = FromExercises([]workout.Exercise{bad})
	assert.Error(t, err)
}

func TestCountsFor(t *testing.T) {
	assert.Equal(t, Counts{TrainingDays: 0, RestDays: 7}, CountsFor(nil))

	exercises := []workout.Exercise{
		{Day: workout.Monday},
		{Day: workout.Monday},
		{Day: workout.Sunday},
		{Day: "Nope"},
	}
	assert.Equal(t, Counts{TrainingDays: 2, RestDays: 5}, CountsFor(exercises))
}

func TestPlanner_Clone(t *testing.T) {
	p := NewPlanner()
	added, err := p.Add(workout.Monday, squat())
	require.NoError(t, err)
	_, err = p.ToggleRest(workout.Friday)
	require.NoError(t, err)

	c := p.Clone()
	c.MarkEmptyAsRest()
	require.NoError(t, c.Update(added.ID, func(ex *workout.Exercise) { ex.IsPR = true }))
	_, err = c.Add(workout.Monday, bench())
	require.NoError(t, err)

	assert.Equal(t, TrainingEmpty, p.State(workout.Friday))
	assert.Equal(t, Counts{TrainingDays: 2, RestDays: 5}, p.Counts())
	require.Len(t, p.Exercises(workout.Monday), 1)
	assert.False(t, p.Exercises(workout.Monday)[0].IsPR)
	assertConsistent(t, c)
}

func TestPlanner_JSON(t *testing.T) {
	p := NewPlanner()
	_, err := p.Add(workout.Monday, squat())
	require.NoError(t, err)
	_, err = p.ToggleRest(workout.Tuesday)
	require.NoError(t, err)

	data, err := json.Marshal(p)
	require.NoError(t, err)

	restored := &Planner{}
	require.NoError(t, json.Unmarshal(data, restored))
	assert.Equal(t, p.Counts(), restored.Counts())
	assert.Equal(t, TrainingEmpty, restored.State(workout.Tuesday))
	assert.Equal(t, p.All(), restored.All())

	assert.Error(t, json.Unmarshal([]byte(`{"rest": {"Funday": false}}`), restored))
	assert.Error(t, json.Unmarshal([]byte(`[]`), restored))
}

func TestDayState_String(t *testing.T) {
	assert.Equal(t, "rest", Rest.String())
	assert.Equal(t, "training (no exercises)", TrainingEmpty.String())
	assert.Equal(t, "training", TrainingPopulated.String())
	assert.Equal(t, "DayState(9)", DayState(9).String())
}
