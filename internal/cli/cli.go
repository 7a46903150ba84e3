// Package cli implements the sentiscope command line client. Commands run the
// analyzers in-process by default or call a server when --url is set.
package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/okian/sentiscope/internal/adapters/extract"
	"github.com/okian/sentiscope/internal/domain/model"
	"github.com/okian/sentiscope/pkg/logger"
)

// Default flag values.
const (
	defaultTimeout  = 30 * time.Second
	defaultLogLevel = "warn"
	stdinName       = "-"
)

// ErrPartialFailure is returned when some of several inputs fail.
var ErrPartialFailure = errors.New("some inputs failed")

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	cfg := &Config{}

	root := &cobra.Command{
		Use:   "sentiscope",
		Short: "Document and token level sentiment analysis",
		Long: `sentiscope scores the polarity and subjectivity of a text, labels it
positive, negative or neutral against a threshold range, and sorts its tokens
into sentiment buckets.

Text comes from --text, from files (.txt, .md, .docx) or from stdin.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cfg.Output != OutputJSON && cfg.Output != OutputText {
				return fmt.Errorf("unknown output format %q", cfg.Output)
			}
			if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithWriter(cmd.ErrOrStderr())); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return logger.SetLevelString(cfg.LogLevel)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfg.BaseURL, "url", "", "base URL of a sentiscope server (default: analyze in-process)")
	pf.DurationVar(&cfg.Timeout, "timeout", defaultTimeout, "request or analysis timeout")
	pf.StringVarP(&cfg.Output, "output", "o", OutputText, "output format: text or json")
	pf.IntVar(&cfg.Workers, "workers", runtime.NumCPU(), "files analyzed in parallel")
	pf.StringVar(&cfg.LogLevel, "log-level", defaultLogLevel, "log level: debug, info, warn, error")
	pf.StringVar(&cfg.LogFormat, "log-format", logger.FormatText, "log format: text, json or tint")

	root.AddCommand(newAnalyzeCommand(cfg), newScoreCommand(cfg), newTokensCommand(cfg))
	return root
}

func newAnalyzeCommand(cfg *Config) *cobra.Command {
	var (
		text      string
		low, high float64
	)
	cmd := &cobra.Command{
		Use:   "analyze [file...]",
		Short: "Score, label and bucket a text or documents",
		Example: `  sentiscope analyze --text "I love this"
  sentiscope analyze --low -0.2 --high 0.2 review.docx notes.md
  cat review.txt | sentiscope analyze -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := collectInputs(cmd, text, args)
			if err != nil {
				return err
			}
			thresholds := thresholdFlags(cmd, low, high)

			b, err := openBackend(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer b.Close()

			reports, failed := analyzeAll(cmd.Context(), b, cfg.Workers, inputs, thresholds)
			if len(inputs) == 1 && failed == 1 {
				return reports[0].err
			}
			if err := renderReports(cmd.OutOrStdout(), cfg.Output, reports); err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%w: %d of %d", ErrPartialFailure, failed, len(inputs))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&text, "text", "t", "", "text to analyze instead of files")
	cmd.Flags().Float64Var(&low, "low", model.DefaultThresholdLow, "lower bound of the neutral band (with --url, unset keeps the server default)")
	cmd.Flags().Float64Var(&high, "high", model.DefaultThresholdHigh, "upper bound of the neutral band (with --url, unset keeps the server default)")
	return cmd
}

func newScoreCommand(cfg *Config) *cobra.Command {
	var text string
	cmd := &cobra.Command{
		Use:   "score [file]",
		Short: "Score polarity and subjectivity only",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := singleText(cmd, text, args)
			if err != nil {
				return err
			}
			b, err := openBackend(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer b.Close()

			res, err := b.Score(cmd.Context(), in)
			if err != nil {
				return err
			}
			return renderScore(cmd.OutOrStdout(), cfg.Output, res)
		},
	}
	cmd.Flags().StringVarP(&text, "text", "t", "", "text to score instead of a file")
	return cmd
}

func newTokensCommand(cfg *Config) *cobra.Command {
	var text string
	cmd := &cobra.Command{
		Use:   "tokens [file]",
		Short: "Sort tokens into positive, negative and neutral buckets",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := singleText(cmd, text, args)
			if err != nil {
				return err
			}
			b, err := openBackend(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer b.Close()

			buckets, err := b.ClassifyTokens(cmd.Context(), in)
			if err != nil {
				return err
			}
			return renderTokens(cmd.OutOrStdout(), cfg.Output, buckets)
		},
	}
	cmd.Flags().StringVarP(&text, "text", "t", "", "text to classify instead of a file")
	return cmd
}

func openBackend(ctx context.Context, cfg *Config) (Backend, error) {
	if cfg.BaseURL != "" {
		return NewHTTPClient(cfg.BaseURL, cfg.Timeout), nil
	}
	return NewLocalBackend(ctx, cfg, logger.Named("cli"))
}

// thresholdFlags returns the bounds given with --low and --high. A bound that
// was not given stays nil and keeps the backend default.
func thresholdFlags(cmd *cobra.Command, low, high float64) *model.ThresholdOverride {
	var o model.ThresholdOverride
	if cmd.Flags().Changed("low") {
		o.Low = &low
	}
	if cmd.Flags().Changed("high") {
		o.High = &high
	}
	if o.Low == nil && o.High == nil {
		return nil
	}
	return &o
}

// collectInputs resolves --text, file arguments and stdin, in that order.
func collectInputs(cmd *cobra.Command, text string, args []string) ([]Input, error) {
	if cmd.Flags().Changed("text") {
		if len(args) > 0 {
			return nil, errors.New("--text and file arguments are mutually exclusive")
		}
		return []Input{{Text: text}}, nil
	}
	if len(args) == 0 {
		args = []string{stdinName}
	}

	inputs := make([]Input, 0, len(args))
	for _, name := range args {
		if name == stdinName {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return nil, fmt.Errorf("read stdin: %w", err)
			}
			inputs = append(inputs, Input{Name: stdinName, Text: string(data)})
			continue
		}
		data, err := os.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		inputs = append(inputs, Input{Name: name, Data: data})
	}
	return inputs, nil
}

// singleText returns the text of one input, extracting documents locally.
func singleText(cmd *cobra.Command, text string, args []string) (string, error) {
	inputs, err := collectInputs(cmd, text, args)
	if err != nil {
		return "", err
	}
	in := inputs[0]
	if in.Data == nil {
		return in.Text, nil
	}
	ex := extract.New(extract.WithLogger(logger.Named("extract")))
	return ex.Extract(cmd.Context(), in.Name, "", bytes.NewReader(in.Data))
}

// analyzeAll runs inputs through b with at most workers in flight. Results keep
// input order; failures are reported per input.
func analyzeAll(ctx context.Context, b Backend, workers int, inputs []Input, o *model.ThresholdOverride) ([]FileReport, int) {
	if workers <= 0 {
		workers = 1
	}
	out := make([]FileReport, len(inputs))
	var failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, in := range inputs {
		g.Go(func() error {
			var (
				report model.Report
				err    error
			)
			if in.Data != nil {
				report, err = b.AnalyzeFile(gctx, in.Name, in.Data, o)
			} else {
				report, err = b.Analyze(gctx, in.Text, o)
			}

			out[i].Name = in.Name
			if err != nil {
				failed.Add(1)
				out[i].Error = err.Error()
				out[i].err = err
				logger.Get().Debug(gctx, "analysis failed", logger.String("input", in.Name), logger.Error(err))
				return nil
			}
			out[i].Report = &report
			return nil
		})
	}
	_ = g.Wait()

	return out, int(failed.Load())
}
