package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hugrlab/jeffc/pkg/pipeline"
)

// convertOpts holds the command-line flags for the convert command.
type convertOpts struct {
	output     string // output file path, single input only
	dir        string // output directory for multiple inputs
	format     string // output format; only "hugr" exists today
	compress   bool   // zstd-compress the envelope payload
	refresh    bool   // bypass the result cache
	parallel   int    // worker bound for batch conversion
	noProgress bool   // disable the live progress display
}

// newConvertCmd creates the convert command. Multiple inputs convert in
// parallel with a live progress display on terminals; on pipes and with
// --no-progress the command falls back to plain log output.
func newConvertCmd() *cobra.Command {
	var opts convertOpts

	cmd := &cobra.Command{
		Use:   "convert <file.jeff>...",
		Short: "Convert program containers into Hugr envelopes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.format != "hugr" {
				return fmt.Errorf("invalid format: %s (only 'hugr' is supported)", opts.format)
			}
			if opts.output != "" && opts.dir != "" {
				return errors.New("--output and --dir are mutually exclusive")
			}
			if opts.output != "" && len(args) > 1 {
				return fmt.Errorf("--output takes a single input; use --dir for %d files", len(args))
			}
			return runConvert(cmd.Context(), args, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single input only)")
	cmd.Flags().StringVarP(&opts.dir, "dir", "d", "", "output directory for converted envelopes")
	cmd.Flags().StringVar(&opts.format, "format", "hugr", "output format")
	cmd.Flags().BoolVar(&opts.compress, "compress", false, "zstd-compress the envelope payload")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-convert even when a cached result exists")
	cmd.Flags().IntVarP(&opts.parallel, "parallel", "p", 0, "max concurrent conversions (default GOMAXPROCS)")
	cmd.Flags().BoolVar(&opts.noProgress, "no-progress", false, "disable the progress display")

	return cmd
}

// runConvert reads every input, then converts them through the shared
// runner so repeated inputs hit the result cache.
func runConvert(ctx context.Context, inputs []string, opts *convertOpts) error {
	cfg := configFromContext(ctx)

	runner, err := newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts := pipeline.Options{
		Mode:     pipeline.ModeHugr,
		Compress: opts.compress || cfg.Convert.Compress,
		Gates:    cfg.Gates,
		Refresh:  opts.refresh,
	}

	datas := make([][]byte, len(inputs))
	for i, input := range inputs {
		data, err := os.ReadFile(input)
		if err != nil {
			return err
		}
		datas[i] = data
	}
	if opts.dir != "" {
		if err := os.MkdirAll(opts.dir, 0o755); err != nil {
			return err
		}
	}

	if len(inputs) == 1 {
		return convertOne(ctx, runner, inputs[0], datas[0], popts, opts)
	}
	if opts.noProgress || !isTerminal(os.Stderr) {
		return convertBatchPlain(ctx, runner, inputs, datas, popts, opts)
	}
	return convertBatchLive(ctx, runner, inputs, datas, popts, opts)
}

// convertOne converts a single input and reports the result inline.
func convertOne(ctx context.Context, runner *pipeline.Runner, input string, data []byte, popts pipeline.Options, opts *convertOpts) error {
	result, err := runner.Convert(ctx, data, popts)
	if err != nil {
		return reportConvertError(input, err)
	}

	out := outputPath(input, opts)
	if err := os.WriteFile(out, result.Output, 0o644); err != nil {
		return err
	}

	printSuccess("Converted %s", input)
	printStats(result.Stats.Nodes, result.Stats.Edges, result.Stats.Regions, result.CacheHit)
	printFile(out)
	printNextStep("Render a diagram", "jeffc render "+input)
	return nil
}

// convertBatchPlain converts every input through ConvertAll and prints
// one result block per file. Used on pipes and with --no-progress.
func convertBatchPlain(ctx context.Context, runner *pipeline.Runner, inputs []string, datas [][]byte, popts pipeline.Options, opts *convertOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	results, err := runner.ConvertAll(ctx, datas, popts, opts.parallel)
	if err != nil {
		return err
	}

	for i, result := range results {
		out := outputPath(inputs[i], opts)
		if err := os.WriteFile(out, result.Output, 0o644); err != nil {
			return err
		}
		printSuccess("Converted %s", inputs[i])
		printFile(out)
	}
	prog.done(fmt.Sprintf("Converted %d files", len(inputs)))
	return nil
}

// convertBatchLive converts every input with a live per-file progress
// display. Workers push their state into the bubbletea model; a failed
// file does not stop its siblings.
func convertBatchLive(ctx context.Context, runner *pipeline.Runner, inputs []string, datas [][]byte, popts pipeline.Options, opts *convertOpts) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newBatchModel(inputs), tea.WithContext(ctx), tea.WithOutput(os.Stderr))

	limit := opts.parallel
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	var eg errgroup.Group
	eg.SetLimit(limit)

	go func() {
		for i := range inputs {
			eg.Go(func() error {
				p.Send(fileStartMsg{index: i})
				result, err := runner.Convert(ctx, datas[i], popts)
				if err != nil {
					p.Send(fileDoneMsg{index: i, err: err})
					return nil
				}
				out := outputPath(inputs[i], opts)
				if err := os.WriteFile(out, result.Output, 0o644); err != nil {
					p.Send(fileDoneMsg{index: i, err: err})
					return nil
				}
				p.Send(fileDoneMsg{index: i, output: out, cached: result.CacheHit})
				return nil
			})
		}
		_ = eg.Wait()
		p.Send(batchDoneMsg{})
	}()

	final, err := p.Run()
	if err != nil {
		cancel()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	m := final.(batchModel)
	if m.cancelled {
		cancel()
		return context.Canceled
	}
	if failures := m.failures(); len(failures) > 0 {
		for _, f := range failures {
			var vf *pipeline.ValidationFailed
			if errors.As(f.err, &vf) {
				printValidationReport(inputs[f.index], vf.Errors)
			}
		}
		return fmt.Errorf("%d of %d conversions failed", len(failures), len(inputs))
	}
	return nil
}

// reportConvertError renders a conversion failure for one input.
// Validation failures list every finding; everything else passes
// through with the input name attached.
func reportConvertError(input string, err error) error {
	var vf *pipeline.ValidationFailed
	if errors.As(err, &vf) {
		printValidationReport(input, vf.Errors)
		return fmt.Errorf("%s failed validation", input)
	}
	return fmt.Errorf("%s: %w", input, err)
}

// outputPath derives the envelope path for one input: --output wins,
// then --dir with the input's base name, then alongside the input.
func outputPath(input string, opts *convertOpts) string {
	if opts.output != "" {
		return opts.output
	}
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input)) + ".hugr"
	if opts.dir != "" {
		return filepath.Join(opts.dir, base)
	}
	return filepath.Join(filepath.Dir(input), base)
}
