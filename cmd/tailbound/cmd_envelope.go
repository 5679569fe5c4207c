package main

import (
	"os"

	"github.com/spf13/cobra"

	"tailbound"
)

var envelopeFlags struct {
	n      string
	k      float64
	sFloor float64
	wSup   float64
	cw     float64
	rExp   float64
	qCap   int
	model  string
}

var envelopeCmd = &cobra.Command{
	Use:   "envelope",
	Short: "Compare one major-arc envelope against the allowed share",
	Long: `Sums 1/(q·φ(q)) up to Qcap (default floor(N^(1/5))), applies a single
closed-form envelope (trivial or uniform) and reports EMA, Share and their
ratio. The coarse single-model variant of the replication.`,
	Args: cobra.NoArgs,
	RunE: runEnvelope,
}

func init() {
	f := envelopeCmd.Flags()
	f.StringVar(&envelopeFlags.n, "N", "4e18", "scale, integer string or float literal")
	f.Float64Var(&envelopeFlags.k, "K", 10.0, "guard-space divisor")
	f.Float64Var(&envelopeFlags.sFloor, "S", 1.2, "allowed density floor")
	f.Float64Var(&envelopeFlags.wSup, "Wsup", 1.0, "supremum weight; C_W defaults to 2×Wsup")
	f.Float64Var(&envelopeFlags.cw, "CW", 0, "weight constant, overrides 2×Wsup when set")
	f.Float64Var(&envelopeFlags.rExp, "Rexp", 0.6, "exponent of the R normalization")
	f.IntVar(&envelopeFlags.qCap, "Qcap", 0, "summation cap; 0 means floor(N^(1/5))")
	f.StringVar(&envelopeFlags.model, "model", "uniform", "envelope model: trivial or uniform")
	rootCmd.AddCommand(envelopeCmd)
}

func runEnvelope(cmd *cobra.Command, args []string) error {
	n, err := tailbound.ParseN(envelopeFlags.n)
	if err != nil {
		return err
	}
	model, err := tailbound.ParseEnvelopeModel(envelopeFlags.model)
	if err != nil {
		return err
	}

	c := tailbound.Constants{
		K:      envelopeFlags.k,
		SFloor: envelopeFlags.sFloor,
		CW:     2.0 * envelopeFlags.wSup,
	}
	if cmd.Flags().Changed("CW") {
		c.CW = envelopeFlags.cw
	}

	margin, err := tailbound.ComputeEnvelopeMargin(n, c, model, envelopeFlags.qCap, envelopeFlags.rExp)
	if err != nil {
		return err
	}
	if err := printRecord(margin); err != nil {
		return err
	}

	if margin.Ratio >= 1 {
		os.Exit(exitRejected)
	}
	return nil
}
