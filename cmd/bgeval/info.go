package main

import (
	"bgeval/internal/api"
	"bgeval/internal/gnubg"

	"github.com/spf13/cobra"
)

func Info() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the loaded nets and bearoff database",
		Args:  cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			if err := initEngine(cmd); err != nil {
				return err
			}
			defer gnubg.Destroy()

			return render(cmd, api.GetInfo())
		},
	}
}
