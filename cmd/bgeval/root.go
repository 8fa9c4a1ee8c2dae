package main

import (
	"bgeval/internal/gnubg"
	"encoding/json"
	"fmt"
	"os"

	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func Root() *cobra.Command {
	root := &cobra.Command{
		Use:   "bgeval",
		Short: "Backgammon neural net evaluation and race estimates",
		Args:  cobra.NoArgs,

		SilenceErrors: true,
		SilenceUsage:  true,

		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// keep stdout for results
			gnubg.Logger().SetOutput(cmd.ErrOrStderr())
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				gnubg.Logger().SetLevel(log.DEBUG)
			}
		},
	}

	root.PersistentFlags().String("data", "./data", "data directory with weights and bearoff database")
	root.PersistentFlags().String("output", "json", "output format, json or yaml")
	root.PersistentFlags().Bool("debug", false, "show debug information")

	root.AddCommand(Race())
	root.AddCommand(Eval())
	root.AddCommand(Info())
	root.AddCommand(Convert())

	return root
}

// initEngine loads the data directory named by --data. Callers must call
// gnubg.Destroy when done.
func initEngine(cmd *cobra.Command) error {
	dataDir, _ := cmd.Flags().GetString("data")
	if err := gnubg.Init(os.DirFS(dataDir)); err != nil {
		return fmt.Errorf("loading %v: %w", dataDir, err)
	}
	return nil
}

func render(cmd *cobra.Command, v interface{}) error {
	format, _ := cmd.Flags().GetString("output")

	switch format {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown output format %q", format)
}
