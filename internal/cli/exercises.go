package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/2beens/liftlog/internal/workout"
)

const defaultSuggestions = 10

func (a *App) exercisesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exercises",
		Short: "Exercise helpers",
	}

	var limit int
	var remote bool
	suggestCmd := &cobra.Command{
		Use:   "suggest <text>",
		Short: "Suggest previously used exercise names",
		Long: "Suggest exercise names containing the text, case-insensitive. Names come from the routines " +
			"seen by the last 'liftlog routines list', or from the backend with --remote.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return &workout.ValidationError{Field: "limit", Message: fmt.Sprintf("limit must be positive, got %d", limit)}
			}
			query := strings.Join(args, " ")

			var names []string
			if remote {
				if err := a.requireLogin(); err != nil {
					return err
				}
				var err error
				if names, err = a.api.SuggestExercises(cmd.Context(), query, limit); err != nil {
					return fmt.Errorf("suggest exercises: %w", a.backendErr(err))
				}
			} else {
				cached, err := a.store.ExerciseNames()
				if err != nil {
					return fmt.Errorf("read cached exercise names: %w", err)
				}
				names = workout.MatchNames(cached, query, limit)
			}

			if len(names) == 0 {
				a.printf("no matches\n")
				return nil
			}
			for _, name := range names {
				a.printf("%s\n", name)
			}
			return nil
		},
	}
	suggestCmd.Flags().IntVarP(&limit, "limit", "n", defaultSuggestions, "max suggestions")
	suggestCmd.Flags().BoolVar(&remote, "remote", false, "ask the backend instead of the local cache")

	cmd.AddCommand(suggestCmd)
	return cmd
}
