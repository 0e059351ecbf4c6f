// Package console provides an Observer implementation that renders
// composition events as colored terminal lines, mirroring the display colors
// assigned by fleets to their participants.
package console

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/hupe1980/agentfleet/core"
)

// ANSI color slots for the palette names used by fleets.
var colorCodes = map[string]lipgloss.Color{
	"red":     lipgloss.Color("1"),
	"green":   lipgloss.Color("2"),
	"yellow":  lipgloss.Color("3"),
	"blue":    lipgloss.Color("4"),
	"magenta": lipgloss.Color("5"),
	"cyan":    lipgloss.Color("6"),
	"white":   lipgloss.Color("7"),
}

// Options configures the console observer.
type Options struct {
	Output io.Writer
}

// Observer writes one colored line per composition event. It is safe for
// concurrent use; concurrent composition delivers events from multiple
// goroutines.
type Observer struct {
	mu  sync.Mutex
	out io.Writer
}

// New creates a console observer writing to stdout by default.
func New(optFns ...func(o *Options)) *Observer {
	opts := Options{Output: os.Stdout}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Observer{out: opts.Output}
}

// OnEvent implements core.Observer.
func (o *Observer) OnEvent(ev core.Event) {
	line := format(ev)
	if line == "" {
		return
	}

	style := lipgloss.NewStyle()
	if c, ok := colorCodes[ev.Color]; ok {
		style = style.Foreground(c)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	fmt.Fprintln(o.out, style.Render(line))
}

func format(ev core.Event) string {
	label := ev.Participant
	if ev.Fleet != "" {
		label = fmt.Sprintf("[%s] %s", ev.Fleet, ev.Participant)
	}

	switch ev.Type {
	case core.EventComposeStart:
		return fmt.Sprintf("[%s] Starting composition in %s mode", ev.Fleet, ev.Mode)
	case core.EventTurnStart:
		return fmt.Sprintf("%s - Processing: %s", label, ev.Content)
	case core.EventTurnComplete:
		if ev.Err != nil {
			return fmt.Sprintf("%s - Failed: %v", label, ev.Err)
		}
		return fmt.Sprintf("%s - Responded: %s", label, ev.Content)
	case core.EventToolInvoked:
		return fmt.Sprintf("%s - Tool: %s", label, ev.Tool)
	case core.EventSynthesisComplete:
		return fmt.Sprintf("%s - Synthesized: %s", label, ev.Content)
	default:
		return ""
	}
}
