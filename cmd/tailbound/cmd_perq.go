package main

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"tailbound"
)

var perqFlags struct {
	n        string
	k        float64
	sFloor   float64
	wSup     float64
	cw       float64
	rExp     float64
	qCap     int
	csvPath  string
	fallback string
}

var perqCmd = &cobra.Command{
	Use:   "perq",
	Short: "Evaluate the tail margin with per-q envelope overrides",
	Long: `Sums E(q)/(q·φ(q)) for q up to Qcap, taking E(q) from a CSV table of
per-q constants (columns q, form, c1, c2) and falling back to a closed-form
envelope for every q the table misses. Misses are counted and reported.`,
	Args: cobra.NoArgs,
	RunE: runPerq,
}

func init() {
	f := perqCmd.Flags()
	f.StringVar(&perqFlags.n, "N", "4e18", "scale, integer string or float literal")
	f.Float64Var(&perqFlags.k, "K", 10.0, "guard-space divisor")
	f.Float64Var(&perqFlags.sFloor, "S", 1.2, "allowed density floor")
	f.Float64Var(&perqFlags.wSup, "Wsup", 1.0, "supremum weight; C_W defaults to 2×Wsup")
	f.Float64Var(&perqFlags.cw, "CW", 0, "weight constant, overrides 2×Wsup when set")
	f.Float64Var(&perqFlags.rExp, "Rexp", 0.6, "exponent of the R normalization")
	f.IntVar(&perqFlags.qCap, "Qcap", 1000, "inclusive per-q summation cap")
	f.StringVar(&perqFlags.csvPath, "csv", "per_q_constants.csv", "per-q constants table")
	f.StringVar(&perqFlags.fallback, "fallback", "uniform", "envelope for missing rows: trivial or uniform")
	rootCmd.AddCommand(perqCmd)
}

func runPerq(cmd *cobra.Command, args []string) error {
	n, err := tailbound.ParseN(perqFlags.n)
	if err != nil {
		return err
	}
	fallback, err := tailbound.ParseEnvelopeModel(perqFlags.fallback)
	if err != nil {
		return err
	}

	c := tailbound.Constants{
		K:      perqFlags.k,
		SFloor: perqFlags.sFloor,
		CW:     2.0 * perqFlags.wSup,
	}
	if cmd.Flags().Changed("CW") {
		c.CW = perqFlags.cw
	}

	// An absent table is not an error: the whole run degrades to the
	// fallback envelope with every q counted as missing.
	var table *tailbound.PerQTable
	table, err = tailbound.LoadPerQTable(perqFlags.csvPath, slog.Default())
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		slog.Warn("per-q table absent, using fallback envelope throughout", "path", perqFlags.csvPath)
		table = nil
	}

	opts := tailbound.PerQOptions{
		QCap:     perqFlags.qCap,
		RExp:     perqFlags.rExp,
		Fallback: fallback,
	}
	margins, err := tailbound.ComputePerQMargins(n, c, table, opts)
	if err != nil {
		return err
	}
	if err := printRecord(margins); err != nil {
		return err
	}

	if margins.Ratio >= 1 {
		os.Exit(exitRejected)
	}
	return nil
}
