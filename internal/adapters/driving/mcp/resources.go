package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/him6ul/AIAssistant/internal/adapters/driving/view"
)

const (
	uriScheme = "hub://"

	historyLimit = 20
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "status",
		Name:        "status",
		Description: "Registered sources and their connection state",
		MIMEType:    "application/json",
	}, s.handleStatusResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "connectors",
		Name:        "connectors",
		Description: "Built-in connector types and their configuration keys",
		MIMEType:    "application/json",
	}, s.handleConnectorsResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "refresh/history",
		Name:        "refresh-history",
		Description: "Recent background refresh runs, newest first",
		MIMEType:    "application/json",
	}, s.handleHistoryResource)
}

func (s *Server) handleStatusResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	return jsonResource(req.Params.URI, view.Statuses(s.ports.Orchestrator.Status()))
}

// handleConnectorsResource returns the catalogue, or an empty list when
// no catalogue is wired.
func (s *Server) handleConnectorsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Catalogue == nil {
		return jsonResource(req.Params.URI, []view.Connector{})
	}
	return jsonResource(req.Params.URI, view.Connectors(s.ports.Catalogue.List()))
}

func (s *Server) handleHistoryResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.History == nil {
		return jsonResource(req.Params.URI, []view.TaskRun{})
	}
	runs, err := s.ports.History.History(ctx, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("loading refresh history: %w", err)
	}
	return jsonResource(req.Params.URI, view.TaskRuns(runs))
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
