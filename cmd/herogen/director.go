package cmd

import (
	"fmt"

	"github.com/kerbaras/herogen/pkg/app/styles"
	"github.com/kerbaras/herogen/pkg/data"
	"github.com/kerbaras/herogen/pkg/live"
	"github.com/spf13/cobra"
)

var directorCmd = &cobra.Command{
	Use:   "director",
	Short: "Talk to the live comic director",
	Long:  "Stream your microphone to the live director and hear it narrate through your speakers. Needs ffmpeg and ffplay. Ctrl+C to stop.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signalContext()
		defer stop()

		rt, err := bootstrap(ctx, bootOptions{console: true, gemini: true})
		cobra.CheckErr(err)
		defer rt.Close()

		speaker, err := live.OpenSpeaker()
		cobra.CheckErr(err)

		director := rt.director(speaker)
		defer director.Close()

		director.OnStatus(func(status data.AudioStatus) {
			fmt.Println(styles.AudioStyle(status).Render("Director: " + string(status)))
		})

		if err := director.Connect(ctx); err != nil {
			cobra.CheckErr(fmt.Errorf("could not reach the director: %w", err))
		}

		mic, err := live.OpenMic()
		cobra.CheckErr(err)
		defer mic.Close()

		fmt.Println("Listening. Press Ctrl+C to stop.")
		if err := director.StreamFrom(ctx, mic); err != nil && ctx.Err() == nil {
			rt.log.Error().Err(err).Msg("microphone stream stopped")
		}
	},
}
