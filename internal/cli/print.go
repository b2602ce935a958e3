package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/2beens/liftlog/internal/editor"
	"github.com/2beens/liftlog/internal/schedule"
	"github.com/2beens/liftlog/internal/weight"
	"github.com/2beens/liftlog/internal/workout"
)

func formatExercise(ex workout.Exercise, unit weight.Unit) string {
	var sb strings.Builder
	sb.WriteString(ex.Name)

	switch ex.Type {
	case workout.Cardio:
		fmt.Fprintf(&sb, "  %d min", ex.Duration)
		if ex.Distance > 0 {
			fmt.Fprintf(&sb, ", %s km", strconv.FormatFloat(ex.Distance, 'f', -1, 64))
		}
	default:
		fmt.Fprintf(&sb, "  %d x %s", ex.Sets, ex.Reps)
		if w := weight.FormatStored(ex.Weight, unit); w != "" {
			sb.WriteString(" @ " + w)
		}
	}

	if ex.IsCompleted {
		sb.WriteString("  [done]")
	}
	if ex.IsPR {
		sb.WriteString("  [PR]")
	}
	return sb.String()
}

func routineSummary(r workout.Routine) string {
	active := ""
	if r.IsActive {
		active = "  (active)"
	}
	return fmt.Sprintf("[%d] %s%s  %d training / %d rest days, %d exercises",
		r.ID, r.Name, active, r.TrainingDays, r.RestDays, len(r.Exercises))
}

func (a *App) printRoutine(r workout.Routine) {
	unit := a.units.Unit()
	a.printf("%s\n", routineSummary(r))
	for _, day := range workout.Week {
		exercises := r.ExercisesOn(day)
		if len(exercises) == 0 {
			a.printf("  %-10s rest\n", day)
			continue
		}
		a.printf("  %s\n", day)
		for _, ex := range exercises {
			a.printf("    %s\n", formatExercise(ex, unit))
		}
	}
}

func (a *App) printDraft(d *editor.Draft) {
	unit := a.units.Unit()

	title := d.Name
	if d.IsNew() {
		title += "  (new)"
	} else {
		title += fmt.Sprintf("  (routine %d)", d.RoutineID)
	}
	if d.Dirty {
		title += "  *unsaved changes*"
	}
	a.printf("%s\n", title)

	counts := d.Plan.Counts()
	a.printf("  %d training / %d rest days\n", counts.TrainingDays, counts.RestDays)

	for _, day := range workout.Week {
		state := d.Plan.State(day)
		if state != schedule.TrainingPopulated {
			a.printf("  %-10s %s\n", day, state)
			continue
		}
		a.printf("  %s\n", day)
		for _, ex := range d.Plan.Exercises(day) {
			a.printf("    %-16s %s\n", ex.ID, formatExercise(ex, unit))
		}
	}
}
