package controller

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	nodex "github.com/tanpawarit/Partwise-Appliance-Support-Dialogue/agent/nodes"
	statex "github.com/tanpawarit/Partwise-Appliance-Support-Dialogue/agent/state"
)

// The turn graph runs one request/response cycle:
//
//	validate -> load facts -> extract+merge
//	  -> ask_goal                          (no goal yet)
//	  -> check_requirements -> ask_missing (fields unmet)
//	                        -> execute_tool (all requirements met)
//	                        -> report_failure (contract violation)
//	-> save facts -> finalize
//
// Every terminal action ends the turn; there is no re-entry within a turn
// and at most one tool runs.
func (c *Controller) compileTurnGraph(ctx context.Context) (compose.Runnable[nodex.GraphInput, nodex.GraphOutput], error) {
	graph := compose.NewGraph[nodex.GraphInput, nodex.GraphOutput]()

	if err := graph.AddLambdaNode("validate_request",
		compose.InvokableLambda(func(ctx context.Context, in nodex.GraphInput) (*nodex.GraphState, error) {
			return nodex.ValidateRequest(in, c.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_request: %w", err)
	}

	if err := graph.AddLambdaNode("load_or_create_facts",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.LoadOrCreateFacts(ctx, in, c.store)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node load_or_create_facts: %w", err)
	}

	if err := graph.AddLambdaNode("extract_facts",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.ExtractFacts(ctx, in, c.extractor)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node extract_facts: %w", err)
	}

	if err := graph.AddLambdaNode("ask_goal",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.AskGoal(ctx, in, c.speaker, c.prompts.AskGoal)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node ask_goal: %w", err)
	}

	if err := graph.AddLambdaNode("check_requirements",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.CheckRequirements(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node check_requirements: %w", err)
	}

	if err := graph.AddLambdaNode("ask_missing",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.AskMissing(ctx, in, c.speaker, c.prompts.AskMissing)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node ask_missing: %w", err)
	}

	if err := graph.AddLambdaNode("execute_tool",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.ExecuteTool(ctx, in, c.dispatcher)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node execute_tool: %w", err)
	}

	if err := graph.AddLambdaNode("report_failure",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.ReportFailure(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node report_failure: %w", err)
	}

	if err := graph.AddLambdaNode("save_facts",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.SaveFacts(ctx, in, c.store)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node save_facts: %w", err)
	}

	if err := graph.AddLambdaNode("finalize_reply",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (nodex.GraphOutput, error) {
			return nodex.FinalizeReply(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize_reply: %w", err)
	}

	goalBranch := compose.NewGraphBranch(
		func(ctx context.Context, in *nodex.GraphState) (string, error) {
			if in == nil || in.Facts == nil {
				return "", fmt.Errorf("goal branch: graph facts are nil")
			}
			if in.Facts.GoalType == statex.GoalNone {
				return "ask_goal", nil
			}
			return "check_requirements", nil
		},
		map[string]bool{
			"ask_goal":           true,
			"check_requirements": true,
		},
	)

	requirementBranch := compose.NewGraphBranch(
		func(ctx context.Context, in *nodex.GraphState) (string, error) {
			if in == nil {
				return "", fmt.Errorf("requirement branch: graph state is nil")
			}
			if in.Violation != nil {
				return "report_failure", nil
			}
			if len(in.Missing) > 0 {
				return "ask_missing", nil
			}
			return "execute_tool", nil
		},
		map[string]bool{
			"ask_missing":    true,
			"execute_tool":   true,
			"report_failure": true,
		},
	)

	edges := [][2]string{
		{compose.START, "validate_request"},
		{"validate_request", "load_or_create_facts"},
		{"load_or_create_facts", "extract_facts"},
		{"ask_goal", "save_facts"},
		{"ask_missing", "save_facts"},
		{"execute_tool", "save_facts"},
		{"report_failure", "save_facts"},
		{"save_facts", "finalize_reply"},
		{"finalize_reply", compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	if err := graph.AddBranch("extract_facts", goalBranch); err != nil {
		return nil, fmt.Errorf("add goal branch: %w", err)
	}
	if err := graph.AddBranch("check_requirements", requirementBranch); err != nil {
		return nil, fmt.Errorf("add requirement branch: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("controller.handle_turn"))
	if err != nil {
		return nil, fmt.Errorf("compile turn graph: %w", err)
	}
	return runner, nil
}
