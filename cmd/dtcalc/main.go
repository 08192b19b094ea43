package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/jrs65/dtcalc"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		given    []string
		bindings string
		echo     bool
		prec     uint
	)
	cmd := &cobra.Command{
		Use:   "dtcalc [expression...]",
		Short: "Evaluate date and time arithmetic expressions",
		Long: `Evaluate expressions mixing ISO 8601 timestamps, durations (4d, 1.5h, ...),
and numbers, e.g. "2019-04-05T07:00:00Z + 4d" or "now + 2w".

Each argument is one expression. With no arguments, expressions are read
from standard input: interactively when stdin is a terminal, otherwise one
expression per line.`,
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := dtcalc.NewContext(dtcalc.Prec(prec))
			if bindings != "" {
				if err := loadBindings(ctx, bindings); err != nil {
					return err
				}
			}
			for _, g := range given {
				name, val, ok := strings.Cut(g, "=")
				if !ok {
					return fmt.Errorf(`variable definitions must be "name=value", not %q`, g)
				}
				t, err := instantArg(strings.TrimSpace(val))
				if err != nil {
					return fmt.Errorf("setting %s: %w", strings.TrimSpace(name), err)
				}
				ctx.Set(strings.TrimSpace(name), t)
			}
			if len(args) > 0 {
				for _, arg := range args {
					if err := evalOne(ctx, arg, echo, os.Stdout); err != nil {
						return err
					}
				}
				return nil
			}
			if term.IsTerminal(int(os.Stdin.Fd())) {
				repl(ctx, echo)
				return nil
			}
			return evalStream(ctx, os.Stdin, echo, os.Stdout)
		},
	}
	cmd.Flags().StringArrayVar(&given, "given", nil, "name=value instant binding (any number of times)")
	cmd.Flags().StringVar(&bindings, "bindings", "", "YAML file of name: timestamp bindings")
	cmd.Flags().BoolVar(&echo, "echo", false, "print parse trees")
	cmd.Flags().UintVar(&prec, "prec", 64, "precision of calculations in bits")
	return cmd
}

// instantArg evaluates a flag or bindings-file value, which may be any
// expression as long as it comes out an instant.
func instantArg(s string) (time.Time, error) {
	v, err := dtcalc.EvalString(s)
	if err != nil {
		return time.Time{}, err
	}
	if v.Dim() != dtcalc.Instant {
		return time.Time{}, fmt.Errorf("%q is a %s, not an instant", s, v.Dim())
	}
	return v.Instant(), nil
}

// loadBindings reads a YAML mapping of identifier names to timestamps and
// sets each binding in ctx.
func loadBindings(ctx *dtcalc.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var m map[string]string
	if err := yaml.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	for name, val := range m {
		t, err := instantArg(val)
		if err != nil {
			return fmt.Errorf("binding %s: %w", name, err)
		}
		ctx.Set(name, t)
	}
	return nil
}

func evalOne(ctx *dtcalc.Context, src string, echo bool, out io.Writer) error {
	a, err := dtcalc.Parse(strings.NewReader(src))
	if err != nil {
		return err
	}
	if echo {
		fmt.Fprintf(out, "%v : ", a)
	}
	r := ctx.Eval(a)
	if r == nil {
		return ctx.Err()
	}
	fmt.Fprintln(out, r)
	return nil
}

// evalStream evaluates one expression per line of in. Each line parses
// independently, so a failed line is reported and the rest of the stream
// still evaluates.
func evalStream(ctx *dtcalc.Context, in io.Reader, echo bool, out io.Writer) error {
	var failed bool
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if err := evalOne(ctx, line, echo, out); err != nil {
			fmt.Fprintln(os.Stderr, err)
			failed = true
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	if failed {
		return fmt.Errorf("some expressions failed")
	}
	return nil
}

func repl(ctx *dtcalc.Context, echo bool) {
	rl, err := readline.New("> ")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	defer rl.Close()
	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if err := evalOne(ctx, line, echo, os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
	fmt.Println()
}
