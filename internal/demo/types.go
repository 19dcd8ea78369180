// Package demo drives a fixed set of engine.Engine scenarios end to end
// and reports their progress to a ProgressSink, one event per stage
// transition, so a CLI can render it live or just log it.
package demo

import "time"

// Stage names the part of the engine a scenario primarily exercises.
type Stage string

const (
	StageAlloc   Stage = "alloc"
	StageMutate  Stage = "mutate"
	StageClosure Stage = "closure"
	StageGC      Stage = "gc"
	StageCall    Stage = "call"
)

// Status captures progress state for one scenario.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// Event reports progress for a single named scenario.
type Event struct {
	Scenario string
	Stage    Stage
	Status   Status
	Err      error
	Elapsed  time.Duration
}

// ProgressSink consumes progress events as a scenario run proceeds.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel, for a Bubble Tea model to
// read from on the other end.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}
