package main

import (
	"bgeval/internal/api"
	"bgeval/internal/gnubg"
	"bgeval/internal/openapi"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func Eval() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval inputs-file",
		Short: "Evaluate an encoded position with one of the neural nets",
		Long: `Evaluate an encoded position with one of the neural nets.

The inputs file holds the net inputs as whitespace separated numbers. With
--base the base vector is evaluated first and the inputs are evaluated
incrementally from it.`,
		Args: cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			net, _ := cmd.Flags().GetString("net")
			evalArgs := openapi.EvalArgs{Net: openapi.NetName(net)}

			inputs, err := readVector(args[0])
			if err != nil {
				return err
			}
			evalArgs.Inputs = inputs

			if base, _ := cmd.Flags().GetString("base"); base != "" {
				ar, err := readVector(base)
				if err != nil {
					return err
				}
				evalArgs.Base = &ar
			}

			if err := initEngine(cmd); err != nil {
				return err
			}
			defer gnubg.Destroy()

			res, err := api.Evaluate(evalArgs)
			if err != nil {
				return err
			}

			return render(cmd, res)
		},
	}

	cmd.Flags().String("net", "contact", "net class: contact, race, crashed, pruning-contact, pruning-crashed or pruning-race")
	cmd.Flags().String("base", "", "file with the base inputs for incremental evaluation")

	return cmd
}

func readVector(filename string) ([]float32, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	ar, err := parseVector(string(b))
	if err != nil {
		return nil, fmt.Errorf("%v: %w", filename, err)
	}
	return ar, nil
}
