package fleet

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/agentfleet/core"
	"github.com/hupe1980/agentfleet/provider"
)

// ComposeSequential runs the pipeline protocol: participants execute in
// declaration order, and after each contribution the running message grows by
// a labeled excerpt ("\n\n{name}: {content}"). Every stage therefore sees the
// full running narrative plus every prior participant's labeled contribution,
// not just the immediate predecessor's output, so downstream participants can
// reference any earlier contributor by name.
//
// The last participant's response is returned. The pipeline aborts on the
// first participant failure; there is no partial pipeline output.
func (f *Fleet) ComposeSequential(
	ctx context.Context,
	model string,
	msg core.Message,
	params provider.GenerationParams,
) (*core.Response, error) {
	current := msg
	var final *core.Response

	for i, p := range f.participants {
		f.observer.OnEvent(core.Event{
			Type:        core.EventTurnStart,
			Fleet:       f.name,
			Participant: p.Name(),
			Model:       model,
			Color:       f.Color(i),
			Content:     core.Excerpt(current.Text()),
			Time:        time.Now(),
		})

		resp, err := p.Contribute(ctx, model, current, params)
		if err != nil {
			return nil, fmt.Errorf("sequential composition failed at participant %s: %w", p.Name(), err)
		}

		current = core.NewUserMessage(fmt.Sprintf("%s\n\n%s: %s", current.Text(), p.Name(), resp.Text()))
		final = resp

		f.observer.OnEvent(core.Event{
			Type:        core.EventTurnComplete,
			Fleet:       f.name,
			Participant: p.Name(),
			Model:       model,
			Color:       f.Color(i),
			Content:     core.Excerpt(resp.Text()),
			Time:        time.Now(),
		})
	}

	return final, nil
}
