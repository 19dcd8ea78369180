package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/redchew/aotjs/internal/demo"
	"github.com/redchew/aotjs/internal/engine"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the built-in engine scenarios and report on each one",
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := readUIMode(cmd.Flag("ui").Value.String())
		if err != nil {
			return err
		}
		configPath, _ := cmd.Flags().GetString("config")
		opts, err := loadEngineOptions(configPath)
		if err != nil {
			return err
		}

		scenarios := demo.Scenarios()
		if shouldUseTUI(mode) {
			return runScenariosWithUI(scenarios, opts)
		}
		return runScenariosPlain(scenarios, opts)
	},
}

// plainSink prints one colorized line per scenario as it completes,
// for non-interactive terminals and piped output.
type plainSink struct{}

func (plainSink) OnEvent(ev demo.Event) {
	switch ev.Status {
	case demo.StatusDone:
		fmt.Printf("%s %s (%s, %s)\n", color.GreenString("ok"), ev.Scenario, ev.Stage, ev.Elapsed)
	case demo.StatusError:
		fmt.Printf("%s %s (%s): %v\n", color.RedString("fail"), ev.Scenario, ev.Stage, ev.Err)
	}
}

func runScenariosPlain(scenarios []demo.Scenario, opts engine.Options) error {
	err := demo.Run(scenarios, opts, plainSink{})
	if err != nil {
		return err
	}
	fmt.Println(color.CyanString("all scenarios passed"))
	return nil
}
