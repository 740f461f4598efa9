package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/evalgate/evalgate/internal/batch"
	"github.com/evalgate/evalgate/internal/config"
	"github.com/evalgate/evalgate/internal/pipeline"
	"github.com/evalgate/evalgate/internal/render"
	"github.com/evalgate/evalgate/internal/schema"
	"github.com/evalgate/evalgate/internal/verdict"
)

// Exit codes. The router between the extractor and human review keys off
// these, so they are contract, not convention.
const (
	exitCodeOK       = 0
	exitCodeBadInput = 1
	exitCodeFailOn   = 2
)

// exitError carries a process exit code through cobra's error path.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }

func main() {
	root := &cobra.Command{
		Use:           "evalgate",
		Short:         "Quality gate for LLM-extracted regulatory requirements",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newEvaluateCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if ee, ok := err.(*exitError); ok {
			os.Exit(ee.code)
		}
		os.Exit(exitCodeBadInput)
	}
}

// evaluateFlags holds every flag of the evaluate command so the run
// function can be exercised directly in tests.
type evaluateFlags struct {
	chunksFile     string
	candidatesFile string
	configFile     string
	preset         string
	format         string
	out            string
	failOn         string
	logLevel       string
}

func newEvaluateCmd() *cobra.Command {
	var f evaluateFlags

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate a batch of extracted requirement candidates",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvaluate(cmd.Context(), f)
		},
	}

	cmd.Flags().StringVar(&f.chunksFile, "chunks", "", "JSON file with the source chunk set (required)")
	cmd.Flags().StringVar(&f.candidatesFile, "candidates", "", "JSON file with the candidate list (required)")
	cmd.Flags().StringVar(&f.configFile, "config", "", "YAML file overriding the default thresholds")
	cmd.Flags().StringVar(&f.preset, "preset", "", "named threshold preset (default, strict, lenient)")
	cmd.Flags().StringVar(&f.format, "format", "json", "output format: json or markdown")
	cmd.Flags().StringVar(&f.out, "output", "", "write the report here instead of stdout")
	cmd.Flags().StringVar(&f.failOn, "fail-on", "", "exit 2 when failure severity is at or above this level (low, medium, high, critical)")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "info", "log level: debug, info, warn, error")

	return cmd
}

func runEvaluate(ctx context.Context, f evaluateFlags) error {
	logger, err := newLogger(f.logLevel)
	if err != nil {
		return &exitError{code: exitCodeBadInput, msg: err.Error()}
	}
	logger = logger.With("run_id", uuid.NewString())

	if f.chunksFile == "" || f.candidatesFile == "" {
		return &exitError{code: exitCodeBadInput, msg: "evalgate: --chunks and --candidates are required"}
	}
	if f.configFile != "" && f.preset != "" {
		return &exitError{code: exitCodeBadInput, msg: "evalgate: --config and --preset are mutually exclusive"}
	}
	if f.format != "json" && f.format != "markdown" {
		return &exitError{code: exitCodeBadInput, msg: fmt.Sprintf("evalgate: unknown format %q", f.format)}
	}
	if f.failOn != "" && verdict.SeverityOrdinal(schema.Severity(f.failOn)) < 0 {
		return &exitError{code: exitCodeBadInput, msg: fmt.Sprintf("evalgate: unknown fail-on severity %q", f.failOn)}
	}

	cfg, err := loadConfig(f)
	if err != nil {
		return &exitError{code: exitCodeBadInput, msg: err.Error()}
	}

	chunks, err := batch.LoadChunks(f.chunksFile)
	if err != nil {
		return &exitError{code: exitCodeBadInput, msg: err.Error()}
	}
	if errs := batch.ValidateChunks(chunks); len(errs) > 0 {
		for _, e := range errs {
			logger.Error("eval.bad_chunk", "problem", e)
		}
		return &exitError{code: exitCodeBadInput, msg: fmt.Sprintf("evalgate: %d chunk contract violations", len(errs))}
	}

	candidates, err := batch.LoadCandidates(f.candidatesFile)
	if err != nil {
		return &exitError{code: exitCodeBadInput, msg: err.Error()}
	}
	if errs := batch.ValidateCandidates(candidates); len(errs) > 0 {
		for _, e := range errs {
			logger.Error("eval.bad_candidate", "problem", e)
		}
		return &exitError{code: exitCodeBadInput, msg: fmt.Sprintf("evalgate: %d candidate contract violations", len(errs))}
	}

	p := pipeline.New(cfg, pipeline.WithLogger(logger))
	report, err := p.Evaluate(ctx, &batch.Batch{Chunks: chunks, Candidates: candidates})
	if err != nil {
		return &exitError{code: exitCodeBadInput, msg: err.Error()}
	}

	var out []byte
	switch f.format {
	case "markdown":
		out = []byte(render.RenderMarkdown(report))
	default:
		out, err = render.RenderJSON(report)
		if err != nil {
			return &exitError{code: exitCodeBadInput, msg: err.Error()}
		}
	}

	if f.out != "" {
		if err := os.WriteFile(f.out, append(out, '\n'), 0o644); err != nil {
			return &exitError{code: exitCodeBadInput, msg: fmt.Sprintf("evalgate: write output: %v", err)}
		}
	} else {
		fmt.Println(string(out))
	}

	if f.failOn != "" &&
		verdict.SeverityOrdinal(report.FailureSeverity) >= verdict.SeverityOrdinal(schema.Severity(f.failOn)) {
		return &exitError{
			code: exitCodeFailOn,
			msg: fmt.Sprintf("evalgate: failure severity %s is at or above %s (%s)",
				report.FailureSeverity, f.failOn, report.FailureType),
		}
	}
	return nil
}

func loadConfig(f evaluateFlags) (*config.Config, error) {
	switch {
	case f.configFile != "":
		return config.LoadFile(f.configFile)
	case f.preset != "":
		return config.Preset(f.preset)
	default:
		return config.Default(), nil
	}
}

func newLogger(level string) (*slog.Logger, error) {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "info":
		l = slog.LevelInfo
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		return nil, fmt.Errorf("evalgate: unknown log level %q", level)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})), nil
}
