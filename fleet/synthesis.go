package fleet

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/agentfleet/agent"
	"github.com/hupe1980/agentfleet/core"
	"github.com/hupe1980/agentfleet/provider"
)

// Synthesize merges the ordered participant responses into a single coherent
// response. It builds a synthesis prompt embedding the fleet's description as
// the stated objective plus every participant's name, description and
// response content, then issues one turn through a transient agent bound to
// the first adapter found in the participant tree.
func (f *Fleet) Synthesize(
	ctx context.Context,
	model string,
	responses []*core.Response,
	params provider.GenerationParams,
) (*core.Response, error) {
	adapter := f.FirstAdapter()
	if adapter == nil {
		return nil, &core.NoAdapterAvailableError{Fleet: f.name}
	}

	prompt := f.synthesisPrompt(responses)

	synthesizer := agent.New("Synthesis Agent", adapter, func(o *agent.Options) {
		o.Description = "Synthesizes multiple participant responses"
		o.SystemPrompt = prompt
		o.Logger = f.logger
	})

	resp, err := synthesizer.CompleteTurn(ctx, model, core.NewUserMessage(prompt), params)
	if err != nil {
		return nil, fmt.Errorf("synthesis failed for fleet %s: %w", f.name, err)
	}

	f.observer.OnEvent(core.Event{
		Type:        core.EventSynthesisComplete,
		Fleet:       f.name,
		Participant: synthesizer.Name(),
		Model:       model,
		Color:       "white",
		Content:     core.Excerpt(resp.Text()),
		Time:        time.Now(),
	})

	return resp, nil
}

// synthesisPrompt renders the synthesis objective and the formatted
// enumeration of participant contributions.
func (f *Fleet) synthesisPrompt(responses []*core.Response) string {
	var sb strings.Builder

	sb.WriteString("As an expert synthesizer, your task is to combine the outputs of multiple agents into a single, coherent response.\n")
	fmt.Fprintf(&sb, "The team's overall goal is: %s\n\n", f.description)
	sb.WriteString("Here are the individual agent responses:\n\n")

	for i, resp := range responses {
		if i >= len(f.participants) {
			break
		}
		p := f.participants[i]
		fmt.Fprintf(&sb, "Name: %s\n", p.Name())
		fmt.Fprintf(&sb, "Description: %s\n", p.Description())
		fmt.Fprintf(&sb, "Response: %s\n\n", resp.Text())
	}

	sb.WriteString("Please synthesize these responses into a single, cohesive output that aligns with the team's goal. ")
	sb.WriteString("Ensure that you address all key points raised by the individual agents while avoiding redundancy. ")
	sb.WriteString("The final output should be well-structured and provide clear, actionable insights or recommendations.")

	return sb.String()
}
