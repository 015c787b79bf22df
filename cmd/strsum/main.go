// Command strsum sums delimited strings of integers from the command line.
//
//	strsum "1,2,3"
//	strsum --escapes '//[*][%]\n1*2%3'
//	printf '1\n2,3' | strsum
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/example/sumapi/pkg/strcalc"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type options struct {
	ceiling int
	escapes bool
	verbose bool
}

var errInvalidInput = errors.New("one or more inputs were rejected")

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "strsum [input...]",
		Short: "Sum the integers in delimited strings",
		Long: `Sums each argument with the string calculator rules: "," and newline
separate numbers, a "//X\n" or "//[X][Y]\n" header declares custom delimiters,
numbers above the ceiling are ignored and negative numbers are rejected.

With no arguments the whole of standard input is read as a single input.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args)
		},
	}
	cmd.Flags().IntVar(&opts.ceiling, "ceiling", strcalc.DefaultCeiling, "largest number that still counts")
	cmd.Flags().BoolVarP(&opts.escapes, "escapes", "e", false, `interpret \n and \\ in arguments`)
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "log parsing details to stderr")
	return cmd
}

var unescaper = strings.NewReplacer(`\\`, `\`, `\n`, "\n")

func run(cmd *cobra.Command, opts *options, args []string) error {
	logger := zap.NewNop()
	if opts.verbose {
		enc := zap.NewDevelopmentEncoderConfig()
		logger = zap.New(zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(cmd.ErrOrStderr()), zapcore.DebugLevel))
	}
	defer func() { _ = logger.Sync() }()

	inputs := args
	if len(inputs) == 0 {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		inputs = []string{strings.TrimSuffix(string(b), "\n")}
	}

	calc := strcalc.Calculator{Ceiling: opts.ceiling}
	failed := false
	for _, in := range inputs {
		if opts.escapes {
			in = unescaper.Replace(in)
		}
		res, err := calc.Evaluate(in)
		if err != nil {
			failed = true
			fmt.Fprintf(cmd.ErrOrStderr(), "%q: %v\n", in, err)
			continue
		}
		logger.Debug("evaluated", zap.String("input", in), zap.Strings("delimiters", res.Delimiters), zap.Strings("ignored", res.Ignored))
		fmt.Fprintln(cmd.OutOrStdout(), res.Sum)
	}
	if failed {
		return errInvalidInput
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errInvalidInput) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
