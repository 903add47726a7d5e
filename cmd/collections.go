package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var collectionsCmd = &cobra.Command{
	Use:   "collections",
	Short: "List the launchpad collections",
	RunE:  runCollections,
}

func runCollections(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	list, err := a.directory.List(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("%s Launchpad collections\n\n", logo)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSYMBOL\tPRICE (ETH)\tGAS (ETH)\tSUPPLY\tCONTRACT")
	for _, c := range list {
		price := fmt.Sprintf("%g", c.PriceETH)
		if c.IsFreeMint {
			price = "free"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%g\t%s\t%s\n", c.Name, c.Symbol, price, c.GasEstimateETH, c.Supply, c.ContractAddress)
	}
	return w.Flush()
}
