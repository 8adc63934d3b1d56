package components

import (
	"fmt"
	"strings"

	"github.com/kerbaras/herogen/pkg/app/styles"
	"github.com/kerbaras/herogen/pkg/services"
)

// ProgressTracker shows the latest generation progress for each story.
type ProgressTracker struct {
	stories map[string]*services.GenerationProgress
	width   int
}

func NewProgressTracker(width int) *ProgressTracker {
	return &ProgressTracker{
		stories: make(map[string]*services.GenerationProgress),
		width:   width,
	}
}

func (p *ProgressTracker) Update(progress services.GenerationProgress) {
	// Script progress arrives before the story has an ID.
	key := progress.StoryID
	if progress.Status == "complete" {
		delete(p.stories, key)
		return
	}
	if progress.Status == "scripted" {
		delete(p.stories, "")
	}
	prog := progress
	p.stories[key] = &prog
}

func (p *ProgressTracker) Clear() {
	p.stories = make(map[string]*services.GenerationProgress)
}

func (p *ProgressTracker) HasActive() bool {
	return len(p.stories) > 0
}

func (p *ProgressTracker) Get(storyID string) (services.GenerationProgress, bool) {
	prog, ok := p.stories[storyID]
	if !ok {
		return services.GenerationProgress{}, false
	}
	return *prog, true
}

func (p *ProgressTracker) View() string {
	if len(p.stories) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Generating"))
	b.WriteString("\n\n")

	for _, progress := range p.stories {
		label := "Writing script"
		if progress.PageNumber > 0 {
			label = fmt.Sprintf("Page %d", progress.PageNumber)
		}
		b.WriteString(styles.TextStyle.Render(label))
		b.WriteString("\n")

		statusText := progress.Status
		if progress.TotalPages > 0 {
			percentage := float64(progress.CurrentPage) / float64(progress.TotalPages) * 100
			statusText = fmt.Sprintf("%s (%d/%d pages - %.0f%%)",
				progress.Status, progress.CurrentPage, progress.TotalPages, percentage)

			b.WriteString(renderProgressBar(progress.CurrentPage, progress.TotalPages, p.width-4))
			b.WriteString("\n")
		}

		b.WriteString(styles.StatusStyle(progress.Status).Render(statusText))
		b.WriteString("\n")

		if progress.Error != nil {
			b.WriteString(styles.StatusError.Render(fmt.Sprintf("Error: %s", progress.Error)))
			b.WriteString("\n")
		}

		b.WriteString("\n")
	}

	return b.String()
}

func renderProgressBar(current, total, width int) string {
	if total == 0 || width <= 0 {
		return ""
	}

	filled := int(float64(current) / float64(total) * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	return styles.ProgressBarStyle.Render(strings.Repeat("█", filled)) +
		styles.ProgressEmptyStyle.Render(strings.Repeat("░", width-filled))
}

// SimpleProgress renders a simple progress bar
func SimpleProgress(current, total, width int) string {
	return renderProgressBar(current, total, width)
}
