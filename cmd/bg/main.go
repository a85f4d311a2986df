package main

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kbukum/bg/bootstrap"
)

// exitInterrupted is the shell convention for death by SIGINT.
const exitInterrupted = 130

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// cli carries the state shared by every bg subcommand.
type cli struct {
	stdout io.Writer
	stderr io.Writer
	// argv is the full invocation, argv[0] included, for error anchoring.
	argv []string

	configPath string
	output     string
}

// run executes one bg invocation and returns the process exit status. A
// signal during a launch abandons the wait, leaving the child running.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	c := &cli{
		stdout: stdout,
		stderr: stderr,
		argv:   append([]string{serviceName}, args...),
		output: outputText,
	}

	root := c.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		c.renderError(err)
		if errors.Is(err, bootstrap.ErrInterrupted) {
			return exitInterrupted
		}
		return 1
	}
	return 0
}

func (c *cli) rootCmd() *cobra.Command {
	var lf launchFlags
	cmd := &cobra.Command{
		Use:   "bg [flags] <command> [args...]",
		Short: "Launch a program as a detached background process",
		Long: `bg starts <command> in its own process group and returns at once.

With --pid it prints the child's pid. With --wait it waits for the child,
prints its stdout and fails when it exits unsuccessfully. Flags after
<command> belong to the child.`,
		Args:              cobra.ArbitraryArgs,
		SilenceErrors:     true,
		SilenceUsage:      true,
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return validateOutput(c.output)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.launch(cmd.Context(), args, lf)
		},
	}
	cmd.Flags().SetInterspersed(false)
	lf.register(cmd)

	cmd.PersistentFlags().StringVar(&c.configPath, "config", "", "Path to config.yml")
	cmd.PersistentFlags().StringVarP(&c.output, "output", "o", outputText, "Output format: text or json")

	cmd.AddCommand(c.runCmd())
	cmd.AddCommand(c.serveCmd())
	cmd.AddCommand(c.tokenCmd())
	cmd.AddCommand(c.hashKeyCmd())
	cmd.AddCommand(c.versionCmd())
	return cmd
}

// runCmd is the explicit form of the root command, for programs whose
// name collides with a bg subcommand.
func (c *cli) runCmd() *cobra.Command {
	var lf launchFlags
	cmd := &cobra.Command{
		Use:   "run [flags] <command> [args...]",
		Short: "Launch <command>; same as bg without a subcommand",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.launch(cmd.Context(), args, lf)
		},
	}
	cmd.Flags().SetInterspersed(false)
	lf.register(cmd)
	return cmd
}
