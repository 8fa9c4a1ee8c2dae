package main

import (
	"bgeval/internal/api"
	"bgeval/internal/gnubg"
	"bgeval/internal/openapi"
	"fmt"

	"github.com/spf13/cobra"
)

func Race() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "race",
		Short: "Estimate a race by one-sided rollouts",
		Example: `  bgeval race --x 1:2,3:4,6:3 --o 2:5,5:2
  bgeval race --x bar:1,2:2 --o 1:1 --player o --trials 1296 --output yaml`,
		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			var raceArgs openapi.RaceArgs

			for _, side := range []struct {
				flag   string
				layout *openapi.CheckerLayout
			}{
				{"x", &raceArgs.Board.X},
				{"o", &raceArgs.Board.O},
			} {
				s, _ := cmd.Flags().GetString(side.flag)
				an, err := parseLayout(s)
				if err != nil {
					return fmt.Errorf("--%v: %w", side.flag, err)
				}
				*side.layout = api.LayoutFromGNU(an)
			}

			p, _ := cmd.Flags().GetString("player")
			switch player := openapi.Player(p); player {
			case openapi.PlayerX, openapi.PlayerO:
				raceArgs.Player = &player
			default:
				return fmt.Errorf("--player must be x or o, got %q", p)
			}

			trials, _ := cmd.Flags().GetInt("trials")
			raceArgs.Trials = &trials

			if err := initEngine(cmd); err != nil {
				return err
			}
			defer gnubg.Destroy()

			res, err := api.RaceProbs(raceArgs, gnubg.DefaultTrials)
			if err != nil {
				return err
			}

			return render(cmd, res)
		},
	}

	cmd.Flags().String("x", "", "chequers of x as point:count pairs")
	cmd.Flags().String("o", "", "chequers of o as point:count pairs")
	cmd.Flags().String("player", "x", "player on roll, x or o")
	cmd.Flags().Int("trials", gnubg.DefaultTrials, "one-sided rollouts per side")

	return cmd
}
