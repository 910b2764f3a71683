package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hugrlab/jeffc/pkg/pipeline"
)

// newCheckCmd creates the check command. It runs the pipeline's front
// half only (decode, build, validate) and reports every finding.
//
// Exit codes:
//   - 0: the container is a well-formed program
//   - 1: the container built but failed validation
//   - 2: the container could not be decoded or built
func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file.jeff>",
		Short: "Validate a program container without converting it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), args[0])
		},
	}
}

func runCheck(ctx context.Context, input string) error {
	runner, err := newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	data, err := os.ReadFile(input)
	if err != nil {
		return err
	}

	result, err := runner.Convert(ctx, data, pipeline.Options{Mode: pipeline.ModeCheck})
	if err != nil {
		var vf *pipeline.ValidationFailed
		if errors.As(err, &vf) {
			printValidationReport(input, vf.Errors)
			return &exitError{code: 1, msg: fmt.Sprintf("%s is not a valid program", input)}
		}
		if errors.Is(err, context.Canceled) {
			return err
		}
		printError("%s cannot be read as a program", input)
		printDetail("%v", err)
		return &exitError{code: 2, msg: fmt.Sprintf("%s: %v", input, err)}
	}

	printSuccess("%s is a valid program", input)
	printStats(result.Stats.Nodes, result.Stats.Edges, result.Stats.Regions, false)
	return nil
}
