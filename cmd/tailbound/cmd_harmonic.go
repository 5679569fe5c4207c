package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"tailbound"
)

var harmonicFlags struct {
	method string
	prec   int32
}

var harmonicCmd = &cobra.Command{
	Use:   "harmonic [Q]",
	Short: "Evaluate S(Q) = Σ 1/(q·φ(q)) at a chosen cutoff",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHarmonic,
}

func init() {
	f := harmonicCmd.Flags()
	f.StringVar(&harmonicFlags.method, "method", "float",
		"representation: float, decimal or fraction")
	f.Int32Var(&harmonicFlags.prec, "prec", 50,
		"decimal precision when method=decimal")
	rootCmd.AddCommand(harmonicCmd)
}

func runHarmonic(cmd *cobra.Command, args []string) error {
	Q := 5300
	if len(args) == 1 {
		var err error
		Q, err = strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("Q must be an integer: %w", err)
		}
		if Q < 0 {
			return fmt.Errorf("Q must be ≥ 0, got %d", Q)
		}
	}

	method, err := tailbound.ParseSumMethod(harmonicFlags.method)
	if err != nil {
		return err
	}

	phi, err := tailbound.SievePhi(Q)
	if err != nil {
		return err
	}

	strat := tailbound.SumStrategy{Method: method, Prec: harmonicFlags.prec}
	s, err := strat.Sum(phi, Q)
	if err != nil {
		return err
	}

	fmt.Printf("S(%d) = %s\n", Q, s)
	return nil
}
