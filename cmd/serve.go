package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ca-srg/cyberrag/internal/webhook"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Dialogflow webhook and HTTP answer API",
	Long: `
Start an HTTP server exposing:
  POST /webhook     Dialogflow fulfillment ({"queryResult":{"queryText":...}} -> {"fulfillmentText":...})
  POST /v1/answer   plain API ({"query_text":...} -> {"answer_text":...})
  GET  /health      liveness

Examples:
  cyberrag serve
  cyberrag serve --port 9000
`,
	RunE: runServe,
}

func init() {
	addListenFlags(serveCmd.Flags(), &serveHost, &servePort, "SERVER")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	a, err := newApp(ctx, "serve")
	if err != nil {
		return err
	}
	defer a.Close()

	applyListenFlags(&a.cfg.ServerHost, &a.cfg.ServerPort, serveHost, servePort)

	srv := webhook.NewServer(a.service, a.cfg)
	a.logger.Printf("event=serve addr=%s", srv.Addr())
	return srv.Run(ctx)
}

// addListenFlags registers --host and --port overriding the <prefix>_HOST and <prefix>_PORT settings.
func addListenFlags(fs *pflag.FlagSet, host *string, port *int, prefix string) {
	fs.StringVar(host, "host", "", "Listen host (overrides "+prefix+"_HOST)")
	fs.IntVar(port, "port", 0, "Listen port (overrides "+prefix+"_PORT)")
}

func applyListenFlags(cfgHost *string, cfgPort *int, host string, port int) {
	if host != "" {
		*cfgHost = host
	}
	if port > 0 {
		*cfgPort = port
	}
}
