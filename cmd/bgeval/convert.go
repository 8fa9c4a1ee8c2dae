package main

import (
	"bgeval/internal/gnubg"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func Convert() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert in-file out-file",
		Short: "Convert a weights file between text and binary form",
		Example: `  bgeval convert gnubg.weights gnubg.wd
  bgeval convert --text gnubg.wd gnubg.weights`,
		Args: cobra.ExactArgs(2),

		RunE: func(cmd *cobra.Command, args []string) error {
			toText, _ := cmd.Flags().GetBool("text")

			in, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer in.Close()

			out, err := os.Create(args[1])
			if err != nil {
				return err
			}

			if err := gnubg.ConvertWeights(in, out, !toText); err != nil {
				out.Close()
				os.Remove(args[1])
				return fmt.Errorf("converting %v: %w", args[0], err)
			}

			return out.Close()
		},
	}

	cmd.Flags().Bool("text", false, "write text weights instead of binary")

	return cmd
}
