// Command taxctl computes tax from the command line without a server.
//
//	taxctl calculate person.json --regime NEW
//	taxctl compare person.json --table regimes.yaml
//	taxctl regimes > regimes.yaml
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/warp/tax-engine/factory"
	"github.com/warp/tax-engine/logging"
	"github.com/warp/tax-engine/tax"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "taxctl",
		Short:        "Income tax calculator",
		Long:         "Computes income tax under the OLD and NEW regimes for salaried, contract, professional and business taxpayers",
		SilenceUsage: true,
	}
	root.PersistentFlags().String("table", "", "regime table YAML (defaults to the built-in tables)")
	root.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(calculateCmd(), compareCmd(), regimesCmd())
	return root
}

func calculateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calculate [person-file]",
		Short: "Calculate tax for one person under one regime",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			calc, err := calculatorFromFlags(cmd)
			if err != nil {
				return err
			}
			person, err := readPerson(args[0])
			if err != nil {
				return err
			}
			regimeFlag, _ := cmd.Flags().GetString("regime")
			regime, err := tax.ParseRegime(regimeFlag)
			if err != nil {
				return err
			}

			result, err := calc.Compute(context.Background(), person, regime)
			if err != nil {
				return err
			}

			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return writeJSON(cmd.OutOrStdout(), resultFields(result))
			}
			printResult(cmd.OutOrStdout(), regime, result)
			return nil
		},
	}
	cmd.Flags().String("regime", string(tax.RegimeNew), "tax regime (OLD or NEW)")
	cmd.Flags().Bool("json", false, "print the result as JSON")
	return cmd
}

func compareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare [person-file]",
		Short: "Compare every regime and recommend the cheapest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			calc, err := calculatorFromFlags(cmd)
			if err != nil {
				return err
			}
			person, err := readPerson(args[0])
			if err != nil {
				return err
			}

			cmp, err := calc.Compare(context.Background(), person)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, rr := range cmp.Results {
				printResult(out, rr.Regime, rr.Result)
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "Recommended: %s (saves %s)\n", cmp.Recommended, tax.FormatMoney(cmp.Savings))
			return nil
		},
	}
}

func regimesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "regimes",
		Short: "Print the active regime tables as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			calc, err := calculatorFromFlags(cmd)
			if err != nil {
				return err
			}
			data, err := factory.MarshalRegimeTable(factory.RegimeTableFromRegistry(calc.Registry()))
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func calculatorFromFlags(cmd *cobra.Command) (*tax.Calculator, error) {
	tablePath, _ := cmd.Flags().GetString("table")
	levelStr, _ := cmd.Flags().GetString("log-level")
	level, _ := logging.ParseLevel(levelStr)

	var (
		registry *tax.Registry
		err      error
	)
	if tablePath == "" {
		registry, err = tax.NewRegistry(tax.DefaultStrategies()...)
	} else {
		registry, err = factory.LoadRegimeTable(tablePath)
	}
	if err != nil {
		return nil, err
	}
	return tax.NewCalculator(registry, logging.New(cmd.ErrOrStderr(), level))
}

func readPerson(path string) (tax.Person, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read person file: %w", err)
	}
	return factory.ParsePerson(data)
}

func resultFields(r tax.Result) map[string]json.Number {
	n := func(s string) json.Number { return json.Number(s) }
	return map[string]json.Number{
		"grossIncome":       n(tax.FormatMoney(r.GrossIncome)),
		"deductions":        n(tax.FormatMoney(r.Deductions)),
		"taxableIncome":     n(tax.FormatMoney(r.TaxableIncome)),
		"baseTax":           n(tax.FormatMoney(r.BaseTax)),
		"surcharge":         n(tax.FormatMoney(r.Surcharge)),
		"cess":              n(tax.FormatMoney(r.Cess)),
		"totalTaxLiability": n(tax.FormatMoney(r.TotalTaxLiability)),
		"netTakeHome":       n(tax.FormatMoney(r.NetTakeHome)),
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printResult(w io.Writer, regime tax.RegimeID, r tax.Result) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "Regime\t%s\t\n", regime)
	fmt.Fprintf(tw, "Gross income\t%s\t\n", tax.FormatMoney(r.GrossIncome))
	fmt.Fprintf(tw, "Deductions\t%s\t\n", tax.FormatMoney(r.Deductions))
	fmt.Fprintf(tw, "Taxable income\t%s\t\n", tax.FormatMoney(r.TaxableIncome))
	fmt.Fprintf(tw, "Base tax\t%s\t\n", tax.FormatMoney(r.BaseTax))
	fmt.Fprintf(tw, "Surcharge\t%s\t\n", tax.FormatMoney(r.Surcharge))
	fmt.Fprintf(tw, "Cess\t%s\t\n", tax.FormatMoney(r.Cess))
	fmt.Fprintf(tw, "Total tax\t%s\t\n", tax.FormatMoney(r.TotalTaxLiability))
	fmt.Fprintf(tw, "Net take-home\t%s\t\n", tax.FormatMoney(r.NetTakeHome))
	tw.Flush()
}
