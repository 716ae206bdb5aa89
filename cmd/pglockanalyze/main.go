package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/isabella232/pglockanalyze/internal/advice"
	"github.com/isabella232/pglockanalyze/internal/dump"
	"github.com/isabella232/pglockanalyze/internal/emit"
	"github.com/isabella232/pglockanalyze/internal/graph"
	"github.com/isabella232/pglockanalyze/internal/report"
)

// CLI configuration
var (
	version = "0.1.0"

	// Flags
	fileFlag       string
	outputFormat   string
	wantedOnlyFlag bool
	noColorFlag    bool
	verboseFlag    bool
)

// runMode selects what happens to each decoded record, fixed for the whole
// run before processing begins.
type runMode int

const (
	modeSummarize runMode = iota // accumulate the graph, report at the end
	modeStructured               // re-emit every record, no analysis
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cmd := buildCommand()
	cmd.SetArgs(args)

	var exitCode int
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		err := runAnalysis(cmd, args)
		if err != nil {
			exitCode = determineExitCode(err)
		}
		return err
	}

	if err := cmd.Execute(); err != nil {
		if exitCode == 0 {
			return 1 // Default error code for flag parsing errors
		}
		return exitCode
	}

	return 0
}

func buildCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "pglockanalyze [mode]",
		Short:        "PostgreSQL lock contention analyzer for pg_locks dumps",
		Version:      version,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		Long: `pglockanalyze reads the psql output of a lock-inspection query and either
re-emits every row as a structured record (mode "json") or prints a report of
which pids are blocked on locks held or wanted by other pids (the default).`,
	}

	// Add flags
	cmd.Flags().StringVarP(&fileFlag, "file", "f", "", "read dump from file instead of stdin")
	cmd.Flags().StringVarP(&outputFormat, "output", "o", "json", "structured mode encoding: json, yaml")
	cmd.Flags().BoolVar(&wantedOnlyFlag, "wanted-only", false, "skip rows where the blocking side does not hold its lock")
	cmd.Flags().BoolVar(&noColorFlag, "no-color", false, "disable colored output")
	cmd.Flags().BoolVar(&verboseFlag, "verbose", false, "debug logging to stderr")

	return cmd
}

func runAnalysis(cmd *cobra.Command, args []string) error {
	log := zap.NewNop()
	if verboseFlag {
		dev, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("setting up logging: %w", err)
		}
		log = dev
		defer func() { _ = log.Sync() }()
	}

	in, err := openInput(cmd)
	if err != nil {
		return err
	}
	defer in.Close()

	switch selectMode(args) {
	case modeStructured:
		return runStructured(in, log)
	default:
		return runSummarize(in, log)
	}
}

// selectMode maps the optional positional argument to a run mode. "json"
// selects structured re-emission; anything else, or no argument, selects the
// summarize report.
func selectMode(args []string) runMode {
	if len(args) > 0 && args[0] == "json" {
		return modeStructured
	}
	return modeSummarize
}

// runStructured re-emits every decoded record in arrival order.
func runStructured(in io.Reader, log *zap.Logger) error {
	var handler dump.Handler
	switch outputFormat {
	case "yaml":
		y := emit.NewYAML(os.Stdout)
		defer y.Close()
		handler = y
	default:
		handler = emit.NewJSON(os.Stdout)
	}

	return dump.NewSession(handler, log).Run(in)
}

// runSummarize accumulates the blocking graph and reports once the stream is
// exhausted.
func runSummarize(in io.Reader, log *zap.Logger) error {
	builder := graph.NewBuilder(wantedOnlyFlag)
	if err := dump.NewSession(builder, log).Run(in); err != nil {
		return err
	}

	hints, err := advice.Load()
	if err != nil {
		return err
	}

	return report.New(os.Stdout, !noColorFlag, hints).Write(builder)
}

// openInput retrieves the dump from the file flag or stdin.
func openInput(cmd *cobra.Command) (io.ReadCloser, error) {
	if fileFlag != "" {
		f, err := os.Open(fileFlag)
		if err != nil {
			return nil, fmt.Errorf("opening dump: %w", err)
		}
		return f, nil
	}

	stat, _ := os.Stdin.Stat()
	if (stat.Mode() & os.ModeCharDevice) == 0 {
		// Data is being piped
		return io.NopCloser(os.Stdin), nil
	}

	// No input provided
	_ = cmd.Usage()
	return nil, fmt.Errorf("no dump provided")
}

// determineExitCode maps malformed-dump aborts to a distinct exit code so
// scripts can tell them from I/O failures.
func determineExitCode(err error) int {
	var stateErr *dump.StateError
	if errors.As(err, &stateErr) {
		return 2
	}
	return 1
}
