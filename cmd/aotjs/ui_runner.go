package main

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/redchew/aotjs/internal/demo"
	"github.com/redchew/aotjs/internal/engine"
	"github.com/redchew/aotjs/internal/ui"
)

// runScenariosWithUI drives demo.Run in a goroutine, feeding its events
// into a Bubble Tea progress view on the main goroutine.
func runScenariosWithUI(scenarios []demo.Scenario, opts engine.Options) error {
	events := make(chan demo.Event, 256)
	errCh := make(chan error, 1)

	go func() {
		errCh <- demo.Run(scenarios, opts, demo.ChannelSink{Ch: events})
		close(events)
	}()

	model := ui.NewProgressModel("aotjs scenarios", scenarios, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	if _, err := program.Run(); err != nil {
		<-errCh
		return err
	}
	return <-errCh
}
