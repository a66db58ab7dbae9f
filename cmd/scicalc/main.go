// Command scicalc is the scientific calculator: a web page, a terminal UI and
// one-shot commands over the same render pass.
//
// Usage:
//
//	scicalc serve [--addr :8080]
//	scicalc tui
//	scicalc trig 30 [--shift]
//	scicalc matrix Multiply --a "1 2; 3 4" --b "5 6; 7 8"
//	scicalc diff "x^2 + y^2" --var x
//	scicalc integrate "x^2" --from 0 --to 1
//	scicalc tool '{"tool":"derivative","params":{"expr":"sin(x)"}}'
//	scicalc schema
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/njchilds90/scicalc"
	"github.com/njchilds90/scicalc/internal/config"
	"github.com/njchilds90/scicalc/internal/logging"
)

// errReported means the command already printed its failure.
var errReported = errors.New("reported")

type app struct {
	cfgPath string
	verbose bool
	plain   bool

	cfg    *config.Config
	logger *zap.Logger
	level  zap.AtomicLevel
}

func (a *app) calculator() *scicalc.Calculator { return scicalc.New(a.cfg.CalculatorOptions()) }

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "scicalc",
		Short: "Scientific calculator: trigonometry, 2x2 matrices, derivatives and integrals",
		Long: `scicalc evaluates trigonometric tables (with a shift mode for the inverse
functions), matrix operations, and symbolic derivatives and integrals.

Run "scicalc serve" for the web page or "scicalc tui" for the terminal form.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.cfgPath)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			a.cfg = cfg

			a.logger, a.level, err = logging.New(cfg.Logging, a.verbose)
			if err != nil {
				return err
			}
			a.logger.Debug("config loaded", zap.String("path", a.cfgPath), zap.Int("precision", cfg.Precision))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&a.cfgPath, "config", "c", config.DefaultPath, "Config file (YAML)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().BoolVar(&a.plain, "plain", false, "Print plain text instead of rendered Markdown")

	root.AddCommand(
		newServeCmd(a),
		newTUICmd(a),
		newTrigCmd(a),
		newMatrixCmd(a),
		newDiffCmd(a),
		newIntegrateCmd(a),
		newToolCmd(a),
		newSchemaCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
