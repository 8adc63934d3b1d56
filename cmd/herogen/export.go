package cmd

import (
	"fmt"

	"github.com/kerbaras/herogen/pkg/integrations"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export [story-id or title]",
	Short: "Export a comic as EPUB",
	Long:  "Compile the drawn pages of a comic into an EPUB file, one page per section with its dialogue",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		rt, err := bootstrap(cmd.Context(), bootOptions{console: true})
		cobra.CheckErr(err)
		defer rt.Close()

		story, err := rt.findStory(args[0])
		cobra.CheckErr(err)

		exporter := rt.exporter
		if output, _ := cmd.Flags().GetString("output"); output != "" {
			exporter = integrations.NewEPubBuilder(output, nil).WithLogger(rt.log)
		}

		path, err := exporter.CreateEPub(cmd.Context(), story)
		if err != nil {
			cobra.CheckErr(fmt.Errorf("EPUB export failed: %w", err))
		}
		fmt.Printf("EPUB created: %s\n", path)
	},
}

func init() {
	exportCmd.Flags().StringP("output", "o", "", "output directory (default from config)")
}
