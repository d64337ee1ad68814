package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	appcfg "github.com/ca-srg/cyberrag/internal/config"
	"github.com/ca-srg/cyberrag/internal/router"
)

var regionsRoute string

var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "List the source catalogue, or show how a query is routed",
	Long: `
Examples:
  cyberrag regions
  cyberrag regions --route "What is NICT in Japan?"
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := appcfg.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		src, err := appcfg.LoadSources(cfg.SourcesFile)
		if err != nil {
			return fmt.Errorf("failed to load sources: %w", err)
		}
		if cmd.Flags().Changed("route") {
			return printRoute(cmd.OutOrStdout(), src, regionsRoute)
		}
		return printRegions(cmd.OutOrStdout(), src)
	},
}

func init() {
	regionsCmd.Flags().StringVar(&regionsRoute, "route", "", "Show the regions and URLs this query would fetch")
}

func printRegions(w io.Writer, src *appcfg.Sources) error {
	fmt.Fprintf(w, "top_k=%d min_sentence_length=%d\n", src.TopK, src.MinSentenceLength)
	for _, r := range src.Regions {
		fmt.Fprintf(w, "\n%s\n  hints: %s\n", r.Name, strings.Join(r.Hints, ", "))
		for _, u := range r.URLs {
			fmt.Fprintf(w, "  - %s\n", u)
		}
	}
	return nil
}

func printRoute(w io.Writer, src *appcfg.Sources, query string) error {
	rt := router.New(src.Regions)
	names := rt.Route(query)
	fmt.Fprintf(w, "regions: %s\n", strings.Join(names, ", "))
	for _, u := range rt.URLs(names) {
		fmt.Fprintf(w, "  - %s\n", u)
	}
	return nil
}
