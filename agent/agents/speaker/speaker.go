// Package speaker wraps a chat model as the NL generation capability used
// for ask-goal, ask-missing, and tool-result narration.
package speaker

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/tanpawarit/Partwise-Appliance-Support-Dialogue/agent/contract"
)

type Speaker struct {
	runner compose.Runnable[map[string]any, *schema.Message]
}

func New(ctx context.Context, chatModel einomodel.BaseChatModel) (*Speaker, error) {
	runner, err := compileSpeakerGraph(ctx, chatModel)
	if err != nil {
		return nil, fmt.Errorf("%w: compile speaker graph: %v", contractx.ErrModelInvoke, err)
	}
	return &Speaker{runner: runner}, nil
}

func (s *Speaker) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("%w: speaker prompt is empty", contractx.ErrValidation)
	}

	msg, err := s.runner.Invoke(ctx, map[string]any{
		"input": prompt,
	})
	if err != nil {
		return "", fmt.Errorf("%w: speaker invoke: %v", contractx.ErrModelInvoke, err)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return "", fmt.Errorf("%w: speaker returned empty content", contractx.ErrSchemaViolation)
	}
	return strings.TrimSpace(msg.Content), nil
}

func compileSpeakerGraph(
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
) (compose.Runnable[map[string]any, *schema.Message], error) {
	template := einoprompt.FromMessages(
		schema.FString,
		schema.UserMessage("{input}"),
	)

	graph := compose.NewGraph[map[string]any, *schema.Message]()
	if err := graph.AddChatTemplateNode("prompt", template); err != nil {
		return nil, fmt.Errorf("add speaker prompt node: %w", err)
	}
	if err := graph.AddChatModelNode("model", chatModel); err != nil {
		return nil, fmt.Errorf("add speaker model node: %w", err)
	}
	if err := graph.AddEdge(compose.START, "prompt"); err != nil {
		return nil, fmt.Errorf("add speaker edge start->prompt: %w", err)
	}
	if err := graph.AddEdge("prompt", "model"); err != nil {
		return nil, fmt.Errorf("add speaker edge prompt->model: %w", err)
	}
	if err := graph.AddEdge("model", compose.END); err != nil {
		return nil, fmt.Errorf("add speaker edge model->end: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("speaker.generate_graph"))
	if err != nil {
		return nil, fmt.Errorf("compile speaker graph: %w", err)
	}
	return runner, nil
}
