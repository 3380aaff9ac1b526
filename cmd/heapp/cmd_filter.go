package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mdlhea/heapp/internal/restriction"
	"github.com/mdlhea/heapp/internal/validation"
	"github.com/mdlhea/heapp/internal/wizard"
)

type filterOptions struct {
	output string
	check  string
}

func newFilterCommand(a *app) *cobra.Command {
	opts := &filterOptions{}
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Create or check a restriction file",
		Long: `Build a restriction file interactively: give min:max bounds for numeric
descriptors and pick the accepted crystal structure and phase labels.
Leave a field empty to leave that descriptor unrestricted.

With --check, validate an existing restriction file and print it instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if opts.check != "" {
				return checkRestriction(out, opts.check)
			}

			spec, err := wizard.RunRestrictionWizard(cmd.InOrStdin(), out)
			if err != nil {
				return err
			}
			if err := restriction.Save(opts.output, spec); err != nil {
				return err
			}
			fmt.Fprintf(out, "Restriction saved to %s: %s\n", opts.output, spec.String()) //nolint:errcheck
			if a.cfg.Restriction == "" {
				fmt.Fprintf(out, "Use it with: heapp batch --restrict %s ...\n", opts.output) //nolint:errcheck
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "restriction.yaml", "YAML file to write the restriction to")
	cmd.Flags().StringVar(&opts.check, "check", "", "Validate this restriction file instead of creating one")

	return cmd
}

// checkRestriction lists every schema violation in path, then applies the
// descriptor checks that need the whole document.
func checkRestriction(out io.Writer, path string) error {
	errs, err := validation.ValidateRestrictionsFile(path)
	if err != nil {
		return err
	}
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(out, "  %s\n", e) //nolint:errcheck
		}
		return fmt.Errorf("%s: %d schema errors", path, len(errs))
	}
	spec, err := restriction.Load(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s is valid: %s\n", path, spec.String()) //nolint:errcheck
	return nil
}
