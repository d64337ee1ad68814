package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ca-srg/cyberrag/internal/answer"
	"github.com/ca-srg/cyberrag/internal/metrics"
)

var (
	askJSON    bool
	askVerbose bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer one question from the terminal",
	Long: `
Fetch the routed official sources now and answer a single question.

Examples:
  cyberrag ask "What does NICT publish about ransomware in Japan?"
  cyberrag ask --verbose "phishing advice for NYC"
  cyberrag ask --json "Hong Kong CSIP"
`,
	Args: cobra.ArbitraryArgs,
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVarP(&askJSON, "json", "j", false, "Print the answer, regions and evidence as JSON")
	askCmd.Flags().BoolVarP(&askVerbose, "verbose", "v", false, "Print routed regions and ranked evidence")
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	a, err := newApp(ctx, "ask")
	if err != nil {
		return err
	}
	defer a.Close()

	metrics.RecordInvocation(metrics.ChannelCLI)
	res := a.service.AnswerDetailed(ctx, strings.Join(args, " "))
	return printResult(cmd.OutOrStdout(), res, askJSON, askVerbose)
}

func printResult(w io.Writer, res answer.Result, asJSON, verbose bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	if verbose && res.Query != "" {
		fmt.Fprintf(w, "Regions: %s\n", strings.Join(res.Regions, ", "))
		if len(res.Evidence) == 0 {
			fmt.Fprintln(w, "Evidence: none")
		} else {
			fmt.Fprintln(w, "Evidence:")
			for i, item := range res.Evidence {
				fmt.Fprintf(w, "  %d. [%d] %s\n     %s\n", i+1, item.Score, item.Sentence.Text, item.Sentence.SourceURL)
			}
		}
		fmt.Fprintf(w, "Elapsed: %s\n\n", res.Elapsed.Round(time.Millisecond))
	}
	_, err := fmt.Fprintln(w, res.Answer)
	return err
}
