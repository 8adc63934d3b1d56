package cmd

import (
	"fmt"

	"github.com/kerbaras/herogen/pkg/app/screens"
	"github.com/kerbaras/herogen/pkg/data"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate [selfie]",
	Short: "Generate a comic from a selfie",
	Long:  "Write a script starring the person in the photo and draw every page, one panel at a time",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signalContext()
		defer stop()

		rt, err := bootstrap(ctx, bootOptions{console: true, gemini: true})
		cobra.CheckErr(err)
		defer rt.Close()

		settings := data.DefaultSettings()
		flags := cmd.Flags()
		for flag, field := range map[string]*string{
			"hero":       &settings.HeroName,
			"superpower": &settings.Superpower,
			"villain":    &settings.Villain,
			"setting":    &settings.Setting,
			"style":      &settings.ArtStyle,
		} {
			if flags.Changed(flag) {
				*field, _ = flags.GetString(flag)
			}
		}
		export, _ := flags.GetBool("epub")

		selfie, err := screens.LoadSelfie(args[0], rt.processor)
		cobra.CheckErr(err)

		go func() {
			for progress := range rt.generator.GetProgressChannel() {
				switch progress.Status {
				case "scripting":
					fmt.Println("Writing the script...")
				case "scripted":
					fmt.Printf("Script ready: %d pages\n", progress.TotalPages)
				case "drawn":
					fmt.Printf("  Page %d/%d drawn\n", progress.CurrentPage, progress.TotalPages)
				case "placeholder":
					fmt.Printf("  Page %d/%d failed, using placeholder\n", progress.CurrentPage, progress.TotalPages)
				}
			}
		}()

		story, err := rt.generator.Generate(ctx, selfie, settings)
		if err != nil {
			cobra.CheckErr(fmt.Errorf("generation failed: %w", err))
		}

		fmt.Printf("\n%s (%d/%d pages drawn)\nID: %s\n", story.Title, story.Rendered(), len(story.Pages), story.ID)

		if !export {
			return
		}
		path, err := rt.exporter.CreateEPub(ctx, story)
		if err != nil {
			cobra.CheckErr(fmt.Errorf("EPUB export failed: %w", err))
		}
		fmt.Printf("EPUB created: %s\n", path)
	},
}

func init() {
	defaults := data.DefaultSettings()
	generateCmd.Flags().String("hero", defaults.HeroName, "hero name")
	generateCmd.Flags().String("superpower", defaults.Superpower, "the hero's superpower")
	generateCmd.Flags().String("villain", defaults.Villain, "the villain")
	generateCmd.Flags().String("setting", defaults.Setting, "where the story takes place")
	generateCmd.Flags().String("style", defaults.ArtStyle, "art style for the panels")
	generateCmd.Flags().Bool("epub", false, "export the finished comic as EPUB")
}
