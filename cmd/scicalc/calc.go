package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/njchilds90/scicalc"
	"github.com/njchilds90/scicalc/symbolic"
)

func newTrigCmd(a *app) *cobra.Command {
	var shift bool
	cmd := &cobra.Command{
		Use:   "trig ANGLE",
		Short: "Trigonometric table for an angle in degrees",
		Long: `Prints sin, cos, tan, csc, sec and cot of ANGLE (degrees). With --shift
prints arcsin, arccos and arctan of sin, cos and tan of ANGLE instead.
Use "--" before a negative angle: scicalc trig -- -30`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.print(cmd, a.calculator().Trig(args[0], shift))
		},
	}
	cmd.Flags().BoolVarP(&shift, "shift", "s", false, "Inverse functions")
	return cmd
}

func newMatrixCmd(a *app) *cobra.Command {
	var ma, mb string
	cmd := &cobra.Command{
		Use:       "matrix OP",
		Short:     "Matrix operation on A and B",
		Long:      "OP is one of " + strings.Join(scicalc.MatrixOps, ", ") + `. Matrices are typed as "1 2; 3 4".`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: scicalc.MatrixOps,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("a") {
				ma = a.cfg.Defaults.MatrixA
			}
			if !cmd.Flags().Changed("b") {
				mb = a.cfg.Defaults.MatrixB
			}
			return a.print(cmd, a.calculator().Matrix(args[0], ma, mb))
		},
	}
	cmd.Flags().StringVar(&ma, "a", scicalc.SampleMatrixA, "Matrix A")
	cmd.Flags().StringVar(&mb, "b", scicalc.SampleMatrixB, "Matrix B")
	return cmd
}

type calculusFlags struct {
	vars, v string
}

func (f *calculusFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.vars, "vars", "", "Variables, comma separated (default: the symbols of EXPR)")
	cmd.Flags().StringVar(&f.v, "var", "", "Variable to differentiate or integrate by (default: the first variable)")
}

// input fills Vars from the expression when --vars is not given, leaving parse
// errors for the calculus section to report.
func (f *calculusFlags) input(expr, op string) scicalc.CalculusInput {
	vars := f.vars
	if vars == "" {
		if e, err := symbolic.Parse(expr); err == nil {
			vars = strings.Join(symbolic.SortedSymbols(e), ",")
		}
		if vars == "" {
			vars = "x"
		}
	}
	return scicalc.CalculusInput{Expr: expr, Vars: vars, Op: op, Var: f.v}
}

func newDiffCmd(a *app) *cobra.Command {
	var f calculusFlags
	cmd := &cobra.Command{
		Use:   "diff EXPR",
		Short: "Derivative of EXPR",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.print(cmd, a.calculator().Calculus(f.input(args[0], scicalc.OpDerivative)))
		},
	}
	f.register(cmd)
	return cmd
}

func newIntegrateCmd(a *app) *cobra.Command {
	var f calculusFlags
	var from, to string
	cmd := &cobra.Command{
		Use:   "integrate EXPR",
		Short: "Indefinite integral of EXPR, or definite with --from and --to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lo, hi := cmd.Flags().Changed("from"), cmd.Flags().Changed("to")
			if lo != hi {
				return fmt.Errorf("--from and --to go together")
			}
			in := f.input(args[0], scicalc.OpIndefiniteIntegral)
			if lo {
				in.Op = scicalc.OpDefiniteIntegral
				in.Lower, in.Upper = from, to
			}
			return a.print(cmd, a.calculator().Calculus(in))
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&from, "from", "", "Lower limit")
	cmd.Flags().StringVar(&to, "to", "", "Upper limit")
	return cmd
}

func newToolCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tool [REQUEST]",
		Short: "Execute one JSON tool call (from the argument or stdin)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []byte
			if len(args) == 1 {
				data = []byte(args[0])
			} else {
				var err error
				if data, err = io.ReadAll(cmd.InOrStdin()); err != nil {
					return err
				}
			}
			var req scicalc.ToolRequest
			if err := json.Unmarshal(data, &req); err != nil {
				return fmt.Errorf("invalid tool request: %w", err)
			}
			resp := a.calculator().HandleToolCall(req)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(resp); err != nil {
				return err
			}
			if resp.Error != "" {
				return errReported
			}
			return nil
		},
	}
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON tool schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), scicalc.ToolSpec())
			return err
		},
	}
}
