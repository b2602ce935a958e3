//go:build integration_test

package test

import (
	"context"
	"net/http"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/2beens/liftlog/internal/auth"
	"github.com/2beens/liftlog/internal/client"
	"github.com/2beens/liftlog/internal/editor"
	"github.com/2beens/liftlog/internal/workout"
)

func (s *IntegrationTestSuite) newLoggedInClient(ctx context.Context) (*client.Client, *auth.User) {
	c := client.New(serverEndpoint, s.httpClient)

	password := gofakeit.Password(true, true, true, false, false, 12)
	user, err := c.Signup(ctx, auth.SignupRequest{
		Email:    gofakeit.Email(),
		Username: gofakeit.Username() + "x",
		Password: password,
	})
	s.Require().NoError(err)
	s.Require().NotZero(user.ID)

	resp, err := c.Login(ctx, user.Email, password)
	s.Require().NoError(err)
	s.Require().Equal(user.ID, resp.UserID)
	s.Require().NotEmpty(c.Token())
	return c, user
}

func (s *IntegrationTestSuite) TestAuthFlow() {
	ctx := context.Background()
	c := client.New(serverEndpoint, s.httpClient)

	_, err := c.ListRoutines(ctx)
	s.ErrorIs(err, client.ErrUnauthorized)

	req := auth.SignupRequest{
		Email:    gofakeit.Email(),
		Username: "lifter",
		Password: "secret-pass",
	}
	_, err = c.Signup(ctx, req)
	s.Require().NoError(err)

	_, err = c.Signup(ctx, req)
	var apiErr *client.APIError
	s.Require().ErrorAs(err, &apiErr)
	s.Equal(http.StatusConflict, apiErr.StatusCode)

	_, err = c.Login(ctx, req.Email, "wrong-pass")
	s.ErrorIs(err, client.ErrUnauthorized)

	resp, err := c.Login(ctx, req.Email, req.Password)
	s.Require().NoError(err)
	s.Equal("lifter", resp.Username)

	routines, err := c.ListRoutines(ctx)
	s.Require().NoError(err)
	s.Empty(routines)

	s.Require().NoError(c.Logout(ctx))
	_, err = c.ListRoutines(ctx)
	s.ErrorIs(err, client.ErrUnauthorized)
}

func (s *IntegrationTestSuite) TestRoutinesFlow() {
	ctx := context.Background()
	c, _ := s.newLoggedInClient(ctx)

	draft := editor.NewDraft("Upper Lower")
	_, err := draft.AddExercise(workout.Monday, workout.Exercise{Name: "Bench Press", Weight: 80, Reps: workout.Reps{Min: 8, Max: 12}})
	s.Require().NoError(err)
	_, err = draft.AddExercise(workout.Thursday, workout.Exercise{Name: "Squat", Sets: 5, Reps: workout.SingleReps(5), Weight: 100})
	s.Require().NoError(err)
	_, err = draft.AddExercise(workout.Saturday, workout.Exercise{Name: "Running", Type: workout.Cardio, Duration: 45})
	s.Require().NoError(err)
	_, err = draft.ToggleRest(workout.Sunday)
	s.Require().NoError(err)

	_, err = draft.Save(ctx, c, editor.ResolveNone)
	s.Require().Error(err)

	first, err := draft.Save(ctx, c, editor.ResolveMarkRest)
	s.Require().NoError(err)
	s.True(first.IsActive)
	s.Equal(3, first.TrainingDays)
	s.Equal(4, first.RestDays)
	s.Require().Len(first.Exercises, 3)
	s.Equal(editor.DefaultSets, first.Exercises[0].Sets)
	s.Equal(float64(editor.DefaultDistance), first.Exercises[2].Distance)

	second, err := c.SaveRoutine(ctx, workout.Routine{
		Name:         "Rest Week",
		TrainingDays: 0,
		RestDays:     workout.DaysInWeek,
	})
	s.Require().NoError(err)
	s.True(second.IsActive)

	routines, err := c.ListRoutines(ctx)
	s.Require().NoError(err)
	s.Require().Len(routines, 2)
	s.Equal(first.ID, routines[0].ID)
	s.False(routines[0].IsActive)
	s.True(routines[1].IsActive)

	s.Require().NoError(c.ActivateRoutine(ctx, first.ID))
	s.Equal(1, s.countRows(`SELECT count(*) FROM routines WHERE user_id = (SELECT user_id FROM routines WHERE id = $1) AND is_active`, first.ID))

	// replacing the exercise set of an active routine keeps it active
	err = draft.RemoveExercise(workout.Saturday, draft.Plan.Exercises(workout.Saturday)[0].ID)
	s.Require().NoError(err)
	updated, err := draft.Save(ctx, c, editor.ResolveNone)
	s.Require().NoError(err)
	s.True(updated.IsActive)
	s.Equal(2, updated.TrainingDays)
	s.Equal(2, s.countRows(`SELECT count(*) FROM exercises WHERE routine_id = $1`, first.ID))

	names, err := c.SuggestExercises(ctx, "SQ", 5)
	s.Require().NoError(err)
	s.Equal([]string{"Squat"}, names)

	data, filename, err := c.ExportRoutines(ctx)
	s.Require().NoError(err)
	s.Contains(filename, "workout_backup_")
	s.Contains(string(data), "Bench Press")

	s.Require().NoError(c.DeleteRoutine(ctx, second.ID))
	s.ErrorIs(c.DeleteRoutine(ctx, second.ID), client.ErrNotFound)
	s.Equal(0, s.countRows(`SELECT count(*) FROM exercises WHERE routine_id = $1`, second.ID))
}

func (s *IntegrationTestSuite) TestRoutinesAreIsolatedPerUser() {
	ctx := context.Background()
	owner, _ := s.newLoggedInClient(ctx)
	other, _ := s.newLoggedInClient(ctx)

	routine, err := owner.SaveRoutine(ctx, workout.Routine{Name: "Mine", RestDays: workout.DaysInWeek})
	s.Require().NoError(err)

	routines, err := other.ListRoutines(ctx)
	s.Require().NoError(err)
	s.Empty(routines)

	s.ErrorIs(other.DeleteRoutine(ctx, routine.ID), client.ErrNotFound)
	s.ErrorIs(other.ActivateRoutine(ctx, routine.ID), client.ErrNotFound)
}

func (s *IntegrationTestSuite) TestUpdateKeepsStoredActiveFlag() {
	ctx := context.Background()
	c, _ := s.newLoggedInClient(ctx)

	legs, err := c.SaveRoutine(ctx, workout.Routine{Name: "Legs"})
	s.Require().NoError(err)
	push, err := c.SaveRoutine(ctx, workout.Routine{Name: "Push"})
	s.Require().NoError(err)
	s.Require().True(push.IsActive)

	// a stale client still thinks legs is the active routine
	legs.Name = "Legs v2"
	updated, err := c.SaveRoutine(ctx, *legs)
	s.Require().NoError(err)
	s.False(updated.IsActive)

	got, err := c.GetRoutine(ctx, push.ID)
	s.Require().NoError(err)
	s.True(got.IsActive)
	got, err = c.GetRoutine(ctx, legs.ID)
	s.Require().NoError(err)
	s.Equal("Legs v2", got.Name)
	s.False(got.IsActive)

	_, err = c.GetRoutine(ctx, 999999)
	s.ErrorIs(err, client.ErrNotFound)
}

func (s *IntegrationTestSuite) TestOneActiveRoutineConstraint() {
	ctx := context.Background()
	c, user := s.newLoggedInClient(ctx)

	_, err := c.SaveRoutine(ctx, workout.Routine{Name: "A", RestDays: workout.DaysInWeek})
	s.Require().NoError(err)

	_, err = s.DB.Exec(`INSERT INTO routines (user_id, name, is_active) VALUES ($1, 'B', true)`, user.ID)
	s.Error(err)
}

func (s *IntegrationTestSuite) TestDeleteAccount() {
	ctx := context.Background()
	c, user := s.newLoggedInClient(ctx)

	_, err := c.SaveRoutine(ctx, workout.Routine{
		Name:         "Doomed",
		TrainingDays: 1,
		RestDays:     6,
		Exercises: []workout.Exercise{
			{Name: "Deadlift", Type: workout.Strength, Sets: 3, Reps: workout.SingleReps(5), Weight: 140, Day: workout.Friday},
		},
	})
	s.Require().NoError(err)

	s.Require().NoError(c.DeleteAccount(ctx))

	s.Equal(0, s.countRows(`SELECT count(*) FROM users WHERE id = $1`, user.ID))
	s.Equal(0, s.countRows(`SELECT count(*) FROM routines WHERE user_id = $1`, user.ID))
	s.Equal(0, s.countRows(`SELECT count(*) FROM exercises WHERE user_id = $1`, user.ID))

	_, err = c.ListRoutines(ctx)
	s.ErrorIs(err, client.ErrUnauthorized)
}

func (s *IntegrationTestSuite) countRows(query string, args ...any) int {
	var count int
	s.Require().NoError(s.DB.QueryRow(query, args...).Scan(&count))
	return count
}
