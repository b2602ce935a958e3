package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/2beens/liftlog/internal/client"
	"github.com/2beens/liftlog/internal/workout"
)

const defaultExportFilename = "workout_backup.json"

func (a *App) routinesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "routines",
		Aliases: []string{"r"},
		Short:   "List and manage saved routines",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List routines, the active one first",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				routines, err := a.listRoutines(cmd.Context())
				if err != nil {
					return err
				}
				if len(routines) == 0 {
					a.printf("no routines yet, start one with: liftlog draft new <name>\n")
					return nil
				}
				for _, r := range routines {
					a.printf("%s\n", routineSummary(r))
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "show <id>",
			Short: "Show a routine day by day",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				routine, err := a.findRoutine(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				a.printRoutine(*routine)
				return nil
			},
		},
		&cobra.Command{
			Use:   "activate <id>",
			Short: "Make a routine the active one",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseRoutineID(args[0])
				if err != nil {
					return err
				}
				if err := a.api.ActivateRoutine(cmd.Context(), id); err != nil {
					return fmt.Errorf("activate routine %d: %w", id, a.backendErr(err))
				}
				a.printf("routine %d is active\n", id)
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete a routine with its exercises",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseRoutineID(args[0])
				if err != nil {
					return err
				}
				if err := a.api.DeleteRoutine(cmd.Context(), id); err != nil {
					return fmt.Errorf("delete routine %d: %w", id, a.backendErr(err))
				}
				a.forgetDraftOf(id)
				a.printf("routine %d deleted\n", id)
				return nil
			},
		},
		a.exportCmd(),
	)
	for _, sub := range cmd.Commands() {
		sub.RunE = a.withLogin(sub.RunE)
	}
	return cmd
}

func (a *App) exportCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all routines to a JSON backup file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, filename, err := a.api.ExportRoutines(cmd.Context())
			if err != nil {
				return fmt.Errorf("export routines: %w", a.backendErr(err))
			}

			if output == "" {
				output = filename
			}
			if output == "" {
				output = defaultExportFilename
			}
			if err := os.WriteFile(output, data, 0644); err != nil {
				return fmt.Errorf("write backup: %w", err)
			}
			a.printf("routines exported to %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "backup file, defaults to the name suggested by the backend")
	return cmd
}

// listRoutines fetches the routines sorted for display and refreshes the exercise name cache.
func (a *App) listRoutines(ctx context.Context) ([]workout.Routine, error) {
	routines, err := a.api.ListRoutines(ctx)
	if err != nil {
		return nil, fmt.Errorf("list routines: %w", a.backendErr(err))
	}
	workout.SortActiveFirst(routines)

	if err := a.store.RememberExerciseNames(routines); err != nil {
		log.Errorf("cache exercise names: %s", err)
	}
	return routines, nil
}

func (a *App) findRoutine(ctx context.Context, rawID string) (*workout.Routine, error) {
	id, err := parseRoutineID(rawID)
	if err != nil {
		return nil, err
	}
	routine, err := a.api.GetRoutine(ctx, id)
	if errors.Is(err, client.ErrNotFound) {
		return nil, fmt.Errorf("routine %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get routine %d: %w", id, a.backendErr(err))
	}
	return routine, nil
}

// forgetDraftOf drops the local draft when it edits the deleted routine.
func (a *App) forgetDraftOf(routineID int) {
	draft, err := a.store.GetDraft()
	if err != nil || draft.RoutineID != routineID {
		return
	}
	if err := a.store.DiscardDraft(); err != nil {
		log.Errorf("discard draft of deleted routine %d: %s", routineID, err)
	}
}

func parseRoutineID(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid routine id [%s]", raw)
	}
	return id, nil
}
