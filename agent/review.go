package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/agentfleet/core"
	"github.com/hupe1980/agentfleet/provider"
)

// ReviewAgent cross-examines the latest outputs of a set of peer agents,
// asking the model to surface overlaps and contradictions between what each
// peer has written. It is useful after a composition run to sanity-check the
// combined narrative.
type ReviewAgent struct {
	*Agent
	peers []*Agent
}

// NewReviewAgent creates a review agent over the given peers.
func NewReviewAgent(name string, adapter provider.Adapter, peers []*Agent, optFns ...func(o *Options)) *ReviewAgent {
	return &ReviewAgent{
		Agent: New(name, adapter, optFns...),
		peers: peers,
	}
}

// Analyse runs one review turn per peer that has produced content, comparing
// it against the other peers' latest responses. Results are ordered like the
// peer list; peers without a completed turn are skipped.
func (r *ReviewAgent) Analyse(
	ctx context.Context,
	model string,
	params provider.GenerationParams,
) ([]*core.Response, error) {
	var out []*core.Response

	for i, peer := range r.peers {
		last := peer.LastResponse()
		if last == nil {
			continue
		}

		prompt := r.analysisPrompt(i, peer, last)
		resp, err := r.CompleteTurn(ctx, model, core.NewUserMessage(prompt), params)
		if err != nil {
			return nil, fmt.Errorf("review of %s failed: %w", peer.Name(), err)
		}
		out = append(out, resp)
	}

	return out, nil
}

func (r *ReviewAgent) analysisPrompt(idx int, peer *Agent, last *core.Response) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Analyse %s which has written the following content: %s. ", peer.Name(), last.Text())
	sb.WriteString("Are there any overlaps between this content and the other agents? ")
	sb.WriteString("Are there any contradictions? Judge purely by the content they have written.\n\n")
	sb.WriteString("The other agents are:\n\n")

	for j, other := range r.peers {
		if j == idx {
			continue
		}
		fmt.Fprintf(&sb, "Name: %s\n", other.Name())
		fmt.Fprintf(&sb, "Content: %s\n\n", other.LastResponse().Text())
	}

	return strings.TrimSpace(sb.String())
}
