package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	appcfg "github.com/ca-srg/cyberrag/internal/config"
	"github.com/ca-srg/cyberrag/internal/metrics"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show how many questions each channel has answered",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := appcfg.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := metrics.Init(cfg.StatsDBPath); err != nil {
			return fmt.Errorf("failed to open stats: %w", err)
		}
		defer func() { _ = metrics.Close() }()

		return printStats(cmd.OutOrStdout(), metrics.Stats())
	},
}

func printStats(w io.Writer, totals map[metrics.Channel]int64) error {
	var sum int64
	for _, ch := range metrics.Channels {
		fmt.Fprintf(w, "%-8s %d\n", ch, totals[ch])
		sum += totals[ch]
	}
	_, err := fmt.Fprintf(w, "%-8s %d\n", "total", sum)
	return err
}
