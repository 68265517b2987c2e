package tools

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"pantrypilot/pantry"
)

// Registry maps tool names to implementations
type Registry map[string]Tool

// NewRegistry wires the pantry and pagination tools.
func NewRegistry(store pantry.Store, p Paginator, defaultBatch int) *Registry {
	tools := map[string]Tool{}
	for _, t := range []Tool{
		NewPantryGet(store),
		NewRecipeMatch(p, store, defaultBatch),
		NewRecipeNext(p, defaultBatch),
		NewRecipeEnd(p),
	} {
		tools[t.Name()] = t
	}

	registry := Registry(tools)
	return &registry
}

// GetTools returns all tools sorted by name
func (r *Registry) GetTools() []Tool {
	tools := make([]Tool, 0, len(*r))
	for _, tool := range *r {
		tools = append(tools, tool)
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name() < tools[j].Name() })
	return tools
}

// GetTool retrieves a tool by name from the registry
func (r Registry) GetTool(name string) (Tool, error) {
	tool, exists := r[name]
	if !exists {
		return nil, fmt.Errorf("tool %q not found in registry", name)
	}
	return tool, nil
}

// Invoke runs one call against the registry.
func (r Registry) Invoke(ctx context.Context, call Call) (map[string]any, error) {
	tool, err := r.GetTool(call.Name)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	out, err := tool.Run(ctx, call.Input)
	slog.Info("TOOLS: Executed",
		"tool", call.Name,
		"tool_use_id", call.ToolUseID,
		"duration", time.Since(start),
		"success", err == nil)
	if err != nil {
		return nil, fmt.Errorf("tool %s: %w", call.Name, err)
	}
	return out, nil
}
