package orchestrator

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
	nodex "github.com/tanpawarit/vapi-caller/agent/nodes/orchestrator"
)

func (o *Orchestrator) compileCallGraph(
	ctx context.Context,
) (compose.Runnable[nodex.GraphInput, nodex.GraphOutput], error) {
	graph := compose.NewGraph[nodex.GraphInput, nodex.GraphOutput]()

	if err := graph.AddLambdaNode("validate_request",
		compose.InvokableLambda(func(ctx context.Context, in nodex.GraphInput) (*nodex.GraphState, error) {
			return nodex.ValidateRequest(in, o.initOpts, o.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_request: %w", err)
	}

	if err := graph.AddLambdaNode("initiate_call",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.InitiateCall(ctx, in, o.transport)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node initiate_call: %w", err)
	}

	if err := graph.AddLambdaNode("await_completion",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.AwaitCompletion(ctx, in, o.transport, o.poll)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node await_completion: %w", err)
	}

	if err := graph.AddLambdaNode("extract_order",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.ExtractOrder(ctx, in, o.extractor)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node extract_order: %w", err)
	}

	if err := graph.AddLambdaNode("persist_record",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.PersistRecord(ctx, in, o.store)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node persist_record: %w", err)
	}

	if err := graph.AddLambdaNode("notify",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.NotifyCompletion(ctx, in, o.notifier)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node notify: %w", err)
	}

	if err := graph.AddLambdaNode("finalize",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (nodex.GraphOutput, error) {
			return nodex.Finalize(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize: %w", err)
	}

	edges := [][2]string{
		{compose.START, "validate_request"},
		{"validate_request", "initiate_call"},
		{"initiate_call", "await_completion"},
		{"await_completion", "extract_order"},
		{"extract_order", "persist_record"},
		{"persist_record", "notify"},
		{"notify", "finalize"},
		{"finalize", compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("orchestrator.call_lifecycle"))
	if err != nil {
		return nil, fmt.Errorf("compile orchestrator graph: %w", err)
	}
	return runner, nil
}
