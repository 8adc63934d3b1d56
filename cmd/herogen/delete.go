package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete [story-id or title]",
	Short: "Remove a comic from your library",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		rt, err := bootstrap(cmd.Context(), bootOptions{console: true})
		cobra.CheckErr(err)
		defer rt.Close()

		story, err := rt.findStory(args[0])
		cobra.CheckErr(err)

		cobra.CheckErr(rt.repo.DeleteStory(story.ID))
		fmt.Printf("Deleted '%s' (%s)\n", story.Title, story.ID)
	},
}
