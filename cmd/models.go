package cmd

import (
	"context"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aspro45/OpenGradient-AI-NFT-Launchpad/internal/adapter/llm"
	"github.com/aspro45/OpenGradient-AI-NFT-Launchpad/internal/config"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the models the configured LLM endpoint serves",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		return listModels(ctx, cfg, llm.NewLLMClient(cfg), cmd.OutOrStdout())
	},
}

// listModels prints the endpoint's models and fails when the configured
// LLM_MODEL is not among them.
func listModels(ctx context.Context, c *config.Config, client llm.LLMClient, out io.Writer) error {
	models, err := client.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	sort.Slice(models, func(i, j int) bool { return models[i].ID < models[j].ID })

	fmt.Fprintf(out, "%s Models at %s\n\n", logo, c.LLMBaseURL)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\tID\tOWNED BY")
	found := c.MockLLM()
	for _, m := range models {
		mark := ""
		if m.ID == c.LLMModel {
			mark = "*"
			found = true
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", mark, m.ID, m.OwnedBy)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("configured model %q is not served by %s", c.LLMModel, c.LLMBaseURL)
	}
	return nil
}
