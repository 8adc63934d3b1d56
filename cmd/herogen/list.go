package cmd

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the comics in your library",
	Long:  "Display every generated comic in a formatted table",
	Run: func(cmd *cobra.Command, args []string) {
		rt, err := bootstrap(cmd.Context(), bootOptions{console: true})
		cobra.CheckErr(err)
		defer rt.Close()

		stories, err := rt.repo.ListStories()
		cobra.CheckErr(err)

		if len(stories) == 0 {
			fmt.Println("No comics yet. Use 'herogen generate <selfie>' to make one.")
			return
		}

		columns := []table.Column{
			{Title: "ID", Width: 36},
			{Title: "Title", Width: 30},
			{Title: "Hero", Width: 20},
			{Title: "Pages", Width: 8},
			{Title: "Created", Width: 16},
		}

		rows := []table.Row{}
		for _, story := range stories {
			_, total, rendered, _ := rt.repo.GetStoryWithPageCount(story.ID)
			hero := story.Settings.HeroName
			if hero == "" {
				hero = story.HeroName
			}

			rows = append(rows, table.Row{
				story.ID,
				truncateString(story.Title, 28),
				truncateString(hero, 18),
				fmt.Sprintf("%d/%d", rendered, total),
				story.CreatedAt.Local().Format("2006-01-02 15:04"),
			})
		}

		t := table.New(
			table.WithColumns(columns),
			table.WithRows(rows),
			table.WithFocused(false),
			table.WithHeight(len(rows)),
		)

		s := table.DefaultStyles()
		s.Header = s.Header.
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			BorderBottom(true).
			Bold(true)
		s.Selected = s.Selected.
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			Bold(false)
		t.SetStyles(s)

		fmt.Printf("\nLibrary (%d comics)\n\n", len(stories))
		fmt.Println(t.View())
	},
}

func truncateString(s string, n int) string {
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-3]) + "..."
}
