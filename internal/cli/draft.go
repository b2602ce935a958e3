package cli

import (
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/2beens/liftlog/internal/editor"
	"github.com/2beens/liftlog/internal/localstore"
	"github.com/2beens/liftlog/internal/schedule"
	"github.com/2beens/liftlog/internal/weight"
	"github.com/2beens/liftlog/internal/workout"
)

var ErrNoDraft = errors.New("no draft, start one with: liftlog draft new <name> or liftlog draft edit <routine-id>")

func (a *App) draftCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "draft",
		Aliases: []string{"d"},
		Short:   "Edit a routine on this device before saving it",
	}

	cmd.AddCommand(
		a.draftNewCmd(),
		a.draftEditCmd(),
		&cobra.Command{
			Use:   "show",
			Short: "Show the draft day by day",
			Args:  cobra.NoArgs,
			RunE: a.withDraft(func(cmd *cobra.Command, args []string, d *editor.Draft) error {
				a.printDraft(d)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "rename <name>",
			Short: "Rename the routine",
			Args:  cobra.ExactArgs(1),
			RunE: a.withDraft(func(cmd *cobra.Command, args []string, d *editor.Draft) error {
				d.Rename(strings.TrimSpace(args[0]))
				a.printf("renamed to %s\n", d.Name)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "toggle <day>",
			Short: "Switch a day between rest and training, a new rest day loses its exercises",
			Args:  cobra.ExactArgs(1),
			RunE: a.withDraft(func(cmd *cobra.Command, args []string, d *editor.Draft) error {
				day, err := workout.ParseDay(args[0])
				if err != nil {
					return err
				}
				isRest, err := d.ToggleRest(day)
				if err != nil {
					return err
				}
				a.printf("%s is now %s\n", day, d.Plan.State(day))
				if !isRest {
					a.printf("add exercises with: liftlog draft add %s --name <name>\n", strings.ToLower(string(day)))
				}
				return nil
			}),
		},
		a.draftAddCmd(),
		a.draftEditExerciseCmd(),
		&cobra.Command{
			Use:   "remove <exercise-id>",
			Short: "Remove an exercise",
			Args:  cobra.ExactArgs(1),
			RunE: a.withDraft(func(cmd *cobra.Command, args []string, d *editor.Draft) error {
				ex, found := d.Plan.Find(args[0])
				if !found {
					return fmt.Errorf("exercise [%s]: %w", args[0], schedule.ErrExerciseNotFound)
				}
				if err := d.RemoveExercise(ex.Day, ex.ID); err != nil {
					return err
				}
				a.printf("removed %s from %s\n", ex.Name, ex.Day)
				if d.Plan.IsRest(ex.Day) {
					a.printf("%s is now a rest day\n", ex.Day)
				}
				return nil
			}),
		},
		a.draftFlagCmd("complete", "Mark an exercise as done", "done", (*editor.Draft).SetCompleted),
		a.draftFlagCmd("pr", "Mark an exercise as a personal record", "a PR", (*editor.Draft).SetPR),
		a.draftSaveCmd(),
		&cobra.Command{
			Use:   "discard",
			Short: "Throw the draft away",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.store.DiscardDraft(); err != nil {
					return fmt.Errorf("discard draft: %w", err)
				}
				a.printf("draft discarded\n")
				return nil
			},
		},
	)
	return cmd
}

func (a *App) draftNewCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "new [name]",
		Short: "Start a new routine",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.checkUnsavedDraft(force); err != nil {
				return err
			}
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			d := editor.NewDraft(name)
			if err := a.store.SaveDraft(d); err != nil {
				return fmt.Errorf("save draft: %w", err)
			}
			a.printf("new routine %s, every day is a rest day until you toggle it or add exercises\n", d.Name)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "replace a draft with unsaved changes")
	return cmd
}

func (a *App) draftEditCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "edit <routine-id>",
		Short: "Start editing a saved routine",
		Args:  cobra.ExactArgs(1),
		RunE: a.withLogin(func(cmd *cobra.Command, args []string) error {
			if err := a.checkUnsavedDraft(force); err != nil {
				return err
			}
			routine, err := a.findRoutine(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			d, err := editor.DraftFromRoutine(*routine)
			if err != nil {
				return err
			}
			if err := a.store.SaveDraft(d); err != nil {
				return fmt.Errorf("save draft: %w", err)
			}
			a.printDraft(d)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&force, "force", false, "replace a draft with unsaved changes")
	return cmd
}

func (a *App) draftAddCmd() *cobra.Command {
	var flags exerciseFlags
	cmd := &cobra.Command{
		Use:   "add <day>",
		Short: "Add an exercise to a day, making it a training day",
		Args:  cobra.ExactArgs(1),
		RunE: a.withDraft(func(cmd *cobra.Command, args []string, d *editor.Draft) error {
			day, err := workout.ParseDay(args[0])
			if err != nil {
				return err
			}
			var ex workout.Exercise
			if err := flags.apply(cmd, &ex, a.units.Unit(), false); err != nil {
				return err
			}
			added, err := d.AddExercise(day, ex)
			if err != nil {
				return err
			}
			a.printf("added %s to %s as %s\n", added.Name, day, added.ID)
			return nil
		}),
	}
	flags.register(cmd, false)
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func (a *App) draftEditExerciseCmd() *cobra.Command {
	var flags exerciseFlags
	cmd := &cobra.Command{
		Use:   "edit-exercise <exercise-id>",
		Short: "Change an exercise, only the given flags are updated",
		Args:  cobra.ExactArgs(1),
		RunE: a.withDraft(func(cmd *cobra.Command, args []string, d *editor.Draft) error {
			ex, found := d.Plan.Find(args[0])
			if !found {
				return fmt.Errorf("exercise [%s]: %w", args[0], schedule.ErrExerciseNotFound)
			}
			if err := flags.apply(cmd, &ex, a.units.Unit(), true); err != nil {
				return err
			}
			changed, err := d.EditExercise(ex.ID, ex)
			if err != nil {
				return err
			}
			if !changed {
				a.printf("no changes\n")
				return nil
			}
			a.printf("updated %s\n", ex.Name)
			return nil
		}),
	}
	flags.register(cmd, true)
	return cmd
}

func (a *App) draftFlagCmd(use, short, label string, set func(*editor.Draft, string, bool) error) *cobra.Command {
	var undo bool
	cmd := &cobra.Command{
		Use:   use + " <exercise-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: a.withDraft(func(cmd *cobra.Command, args []string, d *editor.Draft) error {
			if err := set(d, args[0], !undo); err != nil {
				return fmt.Errorf("exercise [%s]: %w", args[0], err)
			}
			if undo {
				a.printf("%s is no longer %s\n", args[0], label)
			} else {
				a.printf("%s is %s\n", args[0], label)
			}
			return nil
		}),
	}
	cmd.Flags().BoolVar(&undo, "undo", false, "clear the mark")
	return cmd
}

func (a *App) draftSaveCmd() *cobra.Command {
	var emptyDays string
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save the draft as a routine",
		Args:  cobra.NoArgs,
		RunE: a.withLogin(a.withDraft(func(cmd *cobra.Command, args []string, d *editor.Draft) error {
			res, err := parseResolution(emptyDays)
			if err != nil {
				return err
			}

			saved, err := d.Save(cmd.Context(), a.api, res)
			var emptyErr *schedule.EmptyTrainingDaysError
			var needsErr *editor.NeedsExerciseError
			switch {
			case errors.As(err, &emptyErr):
				return fmt.Errorf("%w\nadd exercises with: liftlog draft add <day> --name <name>\nor save with --empty-days=rest to make them rest days", err)
			case errors.As(err, &needsErr):
				return fmt.Errorf("%w: liftlog draft add %s --name <name>", err, strings.ToLower(string(needsErr.Day)))
			case err != nil:
				return a.backendErr(err)
			}

			a.printf("saved %s\n", routineSummary(*saved))
			return nil
		})),
	}
	cmd.Flags().StringVar(&emptyDays, "empty-days", "ask", "training days without exercises: ask, add (point to the first one) or rest (turn them into rest days)")
	return cmd
}

// withDraft loads the draft for run and stores it back when run succeeds.
func (a *App) withDraft(run func(cmd *cobra.Command, args []string, d *editor.Draft) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		d, err := a.store.GetDraft()
		if errors.Is(err, localstore.ErrNotFound) {
			return ErrNoDraft
		}
		if err != nil {
			return fmt.Errorf("load draft: %w", err)
		}

		runErr := run(cmd, args, d)
		if err := a.store.SaveDraft(d); err != nil {
			return errors.Join(runErr, fmt.Errorf("save draft: %w", err))
		}
		return runErr
	}
}

func (a *App) checkUnsavedDraft(force bool) error {
	if force {
		return nil
	}
	d, err := a.store.GetDraft()
	if err != nil || !d.Dirty {
		return nil
	}
	return fmt.Errorf("draft %s has unsaved changes, save or discard it first, or repeat with --force", d.Name)
}

func parseResolution(raw string) (editor.Resolution, error) {
	switch strings.ToLower(raw) {
	case "ask", "":
		return editor.ResolveNone, nil
	case "add":
		return editor.ResolveAddExercise, nil
	case "rest":
		return editor.ResolveMarkRest, nil
	default:
		return editor.ResolveNone, fmt.Errorf("unknown --empty-days [%s], use ask, add or rest", raw)
	}
}

type exerciseFlags struct {
	name     string
	kind     string
	cardio   bool
	sets     int
	reps     string
	weight   string
	duration int
	distance float64
	day      string
}

func (f *exerciseFlags) register(cmd *cobra.Command, withDay bool) {
	fl := cmd.Flags()
	fl.StringVar(&f.name, "name", "", "exercise name")
	fl.StringVar(&f.kind, "type", string(workout.Strength), "exercise type: strength or cardio")
	fl.BoolVar(&f.cardio, "cardio", false, "shorthand for --type cardio, tracked by duration and distance")
	fl.IntVar(&f.sets, "sets", 0, fmt.Sprintf("sets, %d when empty", editor.DefaultSets))
	fl.StringVar(&f.reps, "reps", "", fmt.Sprintf(`reps per set, "10" or a range like "8-12", %d when empty`, editor.DefaultReps))
	fl.StringVar(&f.weight, "weight", "", "weight in the chosen unit, see: liftlog unit")
	fl.IntVar(&f.duration, "duration", 0, fmt.Sprintf("cardio minutes, %d when empty", editor.DefaultDuration))
	fl.Float64Var(&f.distance, "distance", 0, fmt.Sprintf("cardio distance, %d when empty", editor.DefaultDistance))
	if withDay {
		fl.StringVar(&f.day, "day", "", "move the exercise to another day")
	}
}

// apply copies the flags onto ex, converting the weight to kg.
// With onlyChanged, fields whose flag was not given keep their value.
func (f *exerciseFlags) apply(cmd *cobra.Command, ex *workout.Exercise, unit weight.Unit, onlyChanged bool) error {
	given := func(flag string) bool {
		return !onlyChanged || cmd.Flags().Changed(flag)
	}

	if given("name") {
		name := strings.TrimSpace(f.name)
		if name == "" {
			return &workout.ValidationError{Field: "name", Message: "please enter an exercise name"}
		}
		ex.Name = name
	}
	if given("type") || given("cardio") {
		kind, err := workout.ParseKind(f.kind)
		if err != nil {
			return err
		}
		if f.cardio {
			kind = workout.Cardio
		}
		ex.Type = kind
	}
	if given("sets") {
		if f.sets < 0 {
			return &workout.ValidationError{Field: "sets", Message: "sets cannot be negative"}
		}
		ex.Sets = f.sets
	}
	if given("reps") {
		ex.Reps = workout.Reps{}
		if strings.TrimSpace(f.reps) != "" {
			reps, err := workout.ParseReps(f.reps)
			if err != nil {
				return err
			}
			if !reps.Valid() {
				return &workout.ValidationError{Field: "reps", Message: fmt.Sprintf("invalid reps [%s]", f.reps)}
			}
			ex.Reps = reps
		}
	}
	if given("weight") {
		data := weight.ParseData(f.weight, unit)
		if data.Kg < 0 {
			return &workout.ValidationError{Field: "weight", Message: "weight cannot be negative"}
		}
		log.Debugf("weight %g %s stored as %g kg", data.Value, data.Unit, data.Kg)
		ex.Weight = data.Kg
	}
	if given("duration") {
		ex.Duration = f.duration
	}
	if given("distance") {
		ex.Distance = f.distance
	}
	if onlyChanged && cmd.Flags().Changed("day") {
		day, err := workout.ParseDay(f.day)
		if err != nil {
			return err
		}
		ex.Day = day
	}
	return nil
}
