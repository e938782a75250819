// ABOUTME: MCP resource implementations for the health journal.
// ABOUTME: Provides pulse://summary and pulse://appointments resources.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/harperreed/pulse/internal/export"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	summaryURI      = "pulse://summary"
	appointmentsURI = "pulse://appointments"
)

func (s *Server) registerResources() {
	// pulse://summary - every record in the session plus the next-period prediction
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         summaryURI,
		Name:        "Health Journal Summary",
		Description: "All BMI, period and appointment entries with the next predicted period",
		MIMEType:    "application/json",
	}, s.handleSummaryResource)

	// pulse://appointments - upcoming appointments in date order
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         appointmentsURI,
		Name:        "Appointments",
		Description: "Scheduled appointments, earliest first",
		MIMEType:    "application/json",
	}, s.handleAppointmentsResource)
}

// Resource handlers

func (s *Server) handleSummaryResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	data, err := export.JSON(export.Snapshot(s.tracker.Store()))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal summary: %w", err)
	}

	return jsonResource(summaryURI, data), nil
}

func (s *Server) handleAppointmentsResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	snapshot := export.Snapshot(s.tracker.Store())
	result := map[string]any{
		"appointments": snapshot.Appointments,
		"count":        len(snapshot.Appointments),
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal appointments: %w", err)
	}

	return jsonResource(appointmentsURI, data), nil
}

func jsonResource(uri string, data []byte) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}
}
