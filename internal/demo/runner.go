package demo

import (
	"time"

	"github.com/redchew/aotjs/internal/engine"
)

// Run executes every Scenario in order against its own freshly
// constructed Engine(opts), reporting Queued/Working/Done or Error on
// sink as it goes. It returns the first error encountered but keeps
// running the remaining scenarios so a `run` invocation always reports
// on all of them.
func Run(scenarios []Scenario, opts engine.Options, sink ProgressSink) error {
	if sink != nil {
		for _, s := range scenarios {
			sink.OnEvent(Event{Scenario: s.Name, Stage: s.Stage, Status: StatusQueued})
		}
	}

	var firstErr error
	for _, s := range scenarios {
		if sink != nil {
			sink.OnEvent(Event{Scenario: s.Name, Stage: s.Stage, Status: StatusWorking})
		}
		start := time.Now()
		err := s.Run(opts)
		elapsed := time.Since(start)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			if sink != nil {
				sink.OnEvent(Event{Scenario: s.Name, Stage: s.Stage, Status: StatusError, Err: err, Elapsed: elapsed})
			}
			continue
		}
		if sink != nil {
			sink.OnEvent(Event{Scenario: s.Name, Stage: s.Stage, Status: StatusDone, Elapsed: elapsed})
		}
	}
	return firstErr
}
