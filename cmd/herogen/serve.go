package cmd

import (
	"fmt"

	"github.com/kerbaras/herogen/pkg/live"
	"github.com/kerbaras/herogen/pkg/logging"
	"github.com/kerbaras/herogen/pkg/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the comic generator over HTTP",
	Long:  "Expose comic generation, the library and EPUB export as a JSON API, plus a websocket bridge to the live director",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signalContext()
		defer stop()

		rt, err := bootstrap(ctx, bootOptions{console: true, gemini: true})
		cobra.CheckErr(err)
		defer rt.Close()

		addr := rt.cfg.Server.Addr
		if flag, _ := cmd.Flags().GetString("addr"); flag != "" {
			addr = flag
		}

		srv := server.New(rt.generator, rt.repo,
			server.WithLogger(logging.Component(rt.log, "server")),
			server.WithExporter(rt.exporter),
			server.WithReferencePreparer(rt.processor),
			server.WithDirector(func(sink live.Sink) *live.Director {
				return rt.director(sink)
			}),
		)
		defer srv.Close()

		fmt.Printf("Listening on %s\n", addr)
		if err := srv.ListenAndServe(ctx, addr); err != nil {
			cobra.CheckErr(err)
		}
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from config)")
}
