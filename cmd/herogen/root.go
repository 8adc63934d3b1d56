package cmd

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/kerbaras/herogen/pkg/app"
	"github.com/kerbaras/herogen/pkg/app/screens"
	"github.com/kerbaras/herogen/pkg/live"
	"github.com/kerbaras/herogen/pkg/services"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "herogen",
	Short: "Turn a selfie into your own superhero comic",
	Long:  "Upload a selfie, pick a villain and let Gemini write and draw a comic starring you, with a live voice director on the side",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signalContext()
		defer stop()

		rt, err := bootstrap(ctx, bootOptions{gemini: true})
		cobra.CheckErr(err)
		defer rt.Close()

		deps := screens.Deps{
			Controller: services.NewComicController(rt.generator),
			Generator:  rt.generator,
			Library:    rt.repo,
			Exporter:   rt.exporter,
			Preparer:   rt.processor,
		}

		speaker, err := live.OpenSpeaker()
		if err != nil {
			rt.log.Warn().Err(err).Msg("live director disabled")
		} else {
			director := rt.director(speaker)
			defer director.Close()
			deps.Director = director
			deps.OpenMic = func() (io.ReadCloser, error) {
				mic, err := live.OpenMic()
				if err != nil {
					return nil, err
				}
				return mic, nil
			}
		}

		a := app.NewApp(deps)
		if err := a.Run(ctx); err != nil {
			cobra.CheckErr(err)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./herogen.yaml or ~/.herogen/herogen.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(directorCmd)
	rootCmd.AddCommand(serveCmd)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
