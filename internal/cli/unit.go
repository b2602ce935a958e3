package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/2beens/liftlog/internal/weight"
)

func (a *App) unitCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "unit [kg|lbs]",
		Short:     "Show or change the weight unit",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(weight.KG), string(weight.LBS)},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				a.printf("%s\n", a.units.Unit())
				return nil
			}

			unit, err := weight.ParseUnit(args[0])
			if err != nil {
				return err
			}
			if !a.units.Set(cmd.Context(), unit) {
				return errors.New("could not save the weight unit")
			}
			a.printf("weights are shown in %s\n", unit)
			return nil
		},
	}
}
