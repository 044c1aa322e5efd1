package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	compiler "sixtyfps-go/packages/compiler/src"
	"sixtyfps-go/packages/compiler/src/config"
	"sixtyfps-go/packages/compiler/src/passes"
	"sixtyfps-go/packages/compiler/src/telemetry"
)

var version = "dev"

type compileFlags struct {
	configPath string
	outDir     string
	verify     bool
	logLevel   string
	trace      bool
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "sixtyfps-compiler",
		Short:         "Lower UI object trees through the compiler passes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newCompileCommand(), newVersionCommand())
	return root
}

func newCompileCommand() *cobra.Command {
	flags := &compileFlags{}
	cmd := &cobra.Command{
		Use:   "compile [files...]",
		Short: "Run the passes over tree documents and print the lowered trees",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(cmd, args, flags)
		},
	}
	bindCompileFlags(cmd, flags)
	return cmd
}

func bindCompileFlags(cmd *cobra.Command, flags *compileFlags) {
	cmd.Flags().StringVarP(&flags.configPath, "config", "c", "", "project file ("+config.ProjectFileName+")")
	cmd.Flags().StringVarP(&flags.outDir, "out", "o", "", "output directory (default: stdout)")
	cmd.Flags().BoolVar(&flags.verify, "verify", true, "check pass invariants after lowering")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", "", "debug, info, warn or error")
	cmd.Flags().BoolVar(&flags.trace, "trace", false, "export pass spans to stderr")
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the compiler version and its passes",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "sixtyfps-compiler %s\npasses: %v\n", version, passes.Phases())
		},
	}
}

// buildConfig merges the project file and the command line; flags win.
func buildConfig(cmd *cobra.Command, args []string, flags *compileFlags) (*config.CompilerConfig, error) {
	var opts []config.CompilerConfigOption
	if flags.configPath != "" {
		project, err := config.ParseProjectConfig(flags.configPath)
		if err != nil {
			return nil, err
		}
		opts = append(opts, project.Options()...)
	}
	if len(args) > 0 {
		opts = append(opts, func(c *config.CompilerConfig) { c.Inputs = nil }, config.WithInputs(args...))
	}
	if cmd.Flags().Changed("out") {
		opts = append(opts, config.WithOutputDir(flags.outDir))
	}
	if cmd.Flags().Changed("verify") {
		opts = append(opts, config.WithVerifyPasses(flags.verify))
	}
	if flags.logLevel != "" {
		level, err := config.ParseLogLevel(flags.logLevel)
		if err != nil {
			return nil, err
		}
		opts = append(opts, config.WithLogLevel(level))
	}
	if flags.trace {
		opts = append(opts, config.WithTrace(true))
	}
	opts = append(opts, config.WithStdout(cmd.OutOrStdout()))
	return config.NewCompilerConfig(opts...), nil
}

func runCompile(cmd *cobra.Command, args []string, flags *compileFlags) error {
	cfg, err := buildConfig(cmd, args, flags)
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	if cfg.Trace {
		shutdown, err := telemetry.Setup(os.Stderr)
		if err != nil {
			return err
		}
		defer func() {
			if err := shutdown(cmd.Context()); err != nil {
				slog.Warn("failed to flush traces", slog.String("error", err.Error()))
			}
		}()
	}

	return compiler.NewCompiler(cfg).Compile(cmd.Context(), cfg.Inputs)
}
