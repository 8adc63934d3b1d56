package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/kerbaras/herogen/pkg/app/styles"
	"github.com/kerbaras/herogen/pkg/data"
)

type StoryListItem struct {
	Story    *data.Story
	Total    int
	Rendered int
}

type StoryList struct {
	Items         []StoryListItem
	SelectedIndex int
	Width         int
	Height        int
}

func NewStoryList() *StoryList {
	return &StoryList{
		Items:         []StoryListItem{},
		SelectedIndex: 0,
		Width:         80,
		Height:        20,
	}
}

func (l *StoryList) SetItems(items []StoryListItem) {
	l.Items = items
	if l.SelectedIndex >= len(items) && len(items) > 0 {
		l.SelectedIndex = len(items) - 1
	}
	if len(items) == 0 {
		l.SelectedIndex = 0
	}
}

func (l *StoryList) Next() {
	if len(l.Items) == 0 {
		return
	}
	l.SelectedIndex++
	if l.SelectedIndex >= len(l.Items) {
		l.SelectedIndex = 0
	}
}

func (l *StoryList) Prev() {
	if len(l.Items) == 0 {
		return
	}
	l.SelectedIndex--
	if l.SelectedIndex < 0 {
		l.SelectedIndex = len(l.Items) - 1
	}
}

func (l *StoryList) Selected() *StoryListItem {
	if len(l.Items) == 0 || l.SelectedIndex >= len(l.Items) {
		return nil
	}
	return &l.Items[l.SelectedIndex]
}

func (l *StoryList) View() string {
	if len(l.Items) == 0 {
		emptyMsg := styles.MutedStyle.Render("No comics yet. Press tab to create one.")
		return lipgloss.Place(l.Width, l.Height, lipgloss.Center, lipgloss.Center, emptyMsg)
	}

	var b strings.Builder
	for i, item := range l.Items {
		cardStyle := styles.CardStyle
		if i == l.SelectedIndex {
			cardStyle = styles.ActiveCardStyle
		}

		title := styles.TitleStyle.Render(item.Story.Title)

		hero := item.Story.Settings.HeroName
		if hero == "" {
			hero = item.Story.HeroName
		}
		cast := styles.TextStyle.Render(truncate(fmt.Sprintf("%s vs. %s", hero, item.Story.Settings.Villain), 80))

		statusText, status := "Complete", "complete"
		if item.Rendered < item.Total {
			statusText, status = "Incomplete", "placeholder"
		}
		pages := styles.MutedStyle.Render(fmt.Sprintf("Pages: %d / %d drawn", item.Rendered, item.Total))
		created := styles.MutedStyle.Render("Created: " + item.Story.CreatedAt.Local().Format("2006-01-02 15:04"))

		cardContent := lipgloss.JoinVertical(
			lipgloss.Left,
			title,
			cast,
			"",
			pages,
			styles.StatusStyle(status).Render(statusText),
			created,
		)

		b.WriteString(cardStyle.Width(l.Width - 4).Render(cardContent))
		b.WriteString("\n")
	}

	return b.String()
}

func truncate(s string, n int) string {
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-3]) + "..."
}
