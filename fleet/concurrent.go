package fleet

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/agentfleet/core"
	"github.com/hupe1980/agentfleet/provider"
)

// ComposeConcurrent runs the fan-out protocol: every participant receives the
// same initial message and all contributions run concurrently. Nested fleets
// contribute via their own sequential composition, so only the top-level
// fan-out is parallel. Results are collected index-aligned with the declared
// participant order, regardless of completion order.
//
// Error handling is fail-fast: any single participant failure fails the
// whole fan-out and no partial results are returned. Launched contributions
// run to completion either way; each participant owns a disjoint transcript,
// so sibling side effects are safe under arbitrary interleaving.
//
// With synthesis enabled the ordered results are merged into a single
// response; otherwise the ordered results are returned unchanged.
func (f *Fleet) ComposeConcurrent(
	ctx context.Context,
	model string,
	msg core.Message,
	params provider.GenerationParams,
) (*Outcome, error) {
	responses := make([]*core.Response, len(f.participants))

	var wg sync.WaitGroup
	errCh := make(chan error, len(f.participants))

	for i, p := range f.participants {
		wg.Add(1)
		go func(i int, p Participant) {
			defer wg.Done()

			f.observer.OnEvent(core.Event{
				Type:        core.EventTurnStart,
				Fleet:       f.name,
				Participant: p.Name(),
				Model:       model,
				Color:       f.Color(i),
				Content:     core.Excerpt(msg.Text()),
				Time:        time.Now(),
			})

			resp, err := p.Contribute(ctx, model, msg, params)
			if err != nil {
				errCh <- fmt.Errorf("concurrent composition failed for participant %s: %w", p.Name(), err)
				return
			}
			responses[i] = resp

			f.observer.OnEvent(core.Event{
				Type:        core.EventTurnComplete,
				Fleet:       f.name,
				Participant: p.Name(),
				Model:       model,
				Color:       f.Color(i),
				Content:     core.Excerpt(resp.Text()),
				Time:        time.Now(),
			})
		}(i, p)
	}

	wg.Wait()
	close(errCh)

	if len(errCh) > 0 {
		return nil, <-errCh
	}

	if f.synthesize {
		resp, err := f.Synthesize(ctx, model, responses, params)
		if err != nil {
			return nil, err
		}
		return &Outcome{Response: resp}, nil
	}

	return &Outcome{Responses: responses}, nil
}
