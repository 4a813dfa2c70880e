// Package mock provides a scriptable live adapter for testing the relay and
// orchestration logic without a model connection.
package mock

import (
	"context"
	"sync"

	"ai-interview-service/internal/agent"
)

// Adapter implements agent.LiveAdapter with test-controlled events.
type Adapter struct {
	mu        sync.Mutex
	params    agent.LiveParams
	tools     agent.Tools
	events    chan agent.Event
	sentAudio [][]byte
	sentTexts []string
	started   bool
	closed    bool
}

// New creates a mock adapter with a buffered event channel.
func New() *Adapter {
	return &Adapter{
		events: make(chan agent.Event, 128),
	}
}

// Start records the session parameters and tool surface.
func (a *Adapter) Start(_ context.Context, params agent.LiveParams, tools agent.Tools) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.params = params
	a.tools = tools
	a.started = true
	return nil
}

// SendAudio records the forwarded audio frame.
func (a *Adapter) SendAudio(data []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	a.sentAudio = append(a.sentAudio, buf)
	return nil
}

// SendText records the forwarded text turn.
func (a *Adapter) SendText(text string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sentTexts = append(a.sentTexts, text)
	return nil
}

// Events returns the scripted event stream.
func (a *Adapter) Events() <-chan agent.Event {
	return a.events
}

// Close marks the adapter closed. The event channel is closed by Finish or
// Fail; Close alone mirrors an upstream-driven teardown.
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.closed {
		a.closed = true
		close(a.events)
	}
	return nil
}

// Emit pushes one event into the stream.
func (a *Adapter) Emit(ev agent.Event) {
	a.events <- ev
}

// Finish ends the stream as a normal model-side close.
func (a *Adapter) Finish() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.closed {
		a.closed = true
		close(a.events)
	}
}

// Fail ends the stream abnormally: a terminal error event, then close.
func (a *Adapter) Fail(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.closed {
		a.closed = true
		a.events <- agent.ErrorEvent{Err: err}
		close(a.events)
	}
}

// CallTool invokes the registered tool surface the way the model would.
func (a *Adapter) CallTool(name string, args map[string]any) any {
	a.mu.Lock()
	tools := a.tools
	a.mu.Unlock()
	if tools == nil {
		return nil
	}
	switch name {
	case agent.ToolNextQuestion:
		return tools.NextQuestion()
	case agent.ToolSignalPhaseChange:
		phase, _ := args["phase"].(string)
		return tools.SignalPhaseChange(phase)
	default:
		return nil
	}
}

// Started reports whether Start was called.
func (a *Adapter) Started() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.started
}

// Closed reports whether the adapter was torn down.
func (a *Adapter) Closed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.closed
}

// SentAudio returns the audio frames forwarded so far.
func (a *Adapter) SentAudio() [][]byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([][]byte, len(a.sentAudio))
	copy(out, a.sentAudio)
	return out
}

// SentTexts returns the text turns forwarded so far.
func (a *Adapter) SentTexts() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.sentTexts))
	copy(out, a.sentTexts)
	return out
}
