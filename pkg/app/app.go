package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kerbaras/herogen/pkg/app/screens"
)

type App struct {
	deps screens.Deps
}

func NewApp(deps screens.Deps) *App {
	return &App{deps: deps}
}

func (a *App) Run(ctx context.Context) error {
	root := screens.NewRootScreen(ctx, a.deps)
	defer root.Close()

	p := tea.NewProgram(root, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
