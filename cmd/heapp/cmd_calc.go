package main

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mdlhea/heapp/internal/composition"
	"github.com/mdlhea/heapp/internal/descriptor"
	"github.com/mdlhea/heapp/internal/reporting"
)

type calcOptions struct {
	mode     string
	restrict string
	jsonOut  bool
}

func newCalcCommand(a *app) *cobra.Command {
	opts := &calcOptions{}
	cmd := &cobra.Command{
		Use:   "calc <formula | Symbol=value ...>",
		Short: "Calculate descriptors and phase predictions for one alloy",
		Long: `Calculate the descriptors and phase predictions for a single composition.

The composition is either a chemical formula (renormalized to 100 at.%) or a
list of Symbol=value pairs interpreted according to --mode:

  at     atomic percent, must sum to 100
  ratio  atomic ratio, any positive values
  wt     weight percent, must sum to 100
  mass   mass in any unit, any positive values`,
		Example: `  heapp calc FeNiCoCrMn
  heapp calc Al0.5CoCrFeNi
  heapp calc Fe=20 Ni=20 Co=20 Cr=20 Mn=20
  heapp calc --mode wt Al=10,Ni=90`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCalc(cmd, a, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.mode, "mode", "", "Input mode for Symbol=value pairs: at, ratio, wt, mass (default from config, else at)")
	cmd.Flags().StringVar(&opts.restrict, "restrict", "", "Restriction file to check the result against")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Print the result as JSON")

	return cmd
}

func runCalc(cmd *cobra.Command, a *app, opts *calcOptions, args []string) error {
	mode := composition.Mode(opts.mode)
	if mode == "" {
		mode = composition.Mode(a.cfg.Batch.InputMode)
	}
	if !slices.Contains(composition.Modes, mode) {
		return fmt.Errorf("unknown input mode %q (supported: at, ratio, wt, mass)", mode)
	}

	ref, err := a.reference()
	if err != nil {
		return err
	}
	spec, err := a.restriction(opts.restrict)
	if err != nil {
		return err
	}

	comp, err := parseComposition(args, mode, ref)
	if err != nil {
		return err
	}

	ds, err := descriptor.NewEngine(ref).Calculate(comp.Fractions())
	if err != nil {
		return fmt.Errorf("%s: %w", comp.Name(), err)
	}
	result := descriptor.NewAlloyResult(comp, ds)

	out := cmd.OutOrStdout()
	if opts.jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(result)
	}

	wt, err := composition.ToWeightPercent(comp, ref)
	if err != nil {
		wt = nil
	}
	fmt.Fprintf(out, "Composition:\n%s\n", formatComposition(comp, wt))
	fmt.Fprint(out, reporting.FormatDescriptorReport(result))

	if len(spec) > 0 {
		verdict := "not met"
		if spec.Evaluate(ds) {
			verdict = "met"
		}
		fmt.Fprintf(out, "Restrictions %s: %s\n", verdict, spec.String()) //nolint:errcheck
	}
	return nil
}

// parseComposition reads a single formula argument or Symbol=value pairs and
// returns atomic percent.
func parseComposition(args []string, mode composition.Mode, weights composition.AtomicWeights) (composition.Composition, error) {
	if len(args) == 1 && !strings.Contains(args[0], "=") {
		comp, err := composition.ParseFormula(args[0])
		if err != nil {
			return nil, err
		}
		// Formula numbers are amounts; only weight-based modes need converting.
		if mode == composition.ModeWeightPercent || mode == composition.ModeMass {
			return composition.Convert(mode, comp, weights)
		}
		return comp, nil
	}
	values, err := composition.ParsePairs(args)
	if err != nil {
		return nil, err
	}
	return composition.Convert(mode, values, weights)
}
