// ABOUTME: MCP tool implementations for the health journal.
// ABOUTME: Adds, deletes, lists and predicts through the shared tracker.
package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/harperreed/pulse/internal/export"
	"github.com/harperreed/pulse/internal/health"
	"github.com/harperreed/pulse/internal/validation"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools() {
	// add_bmi
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_bmi",
		Description: "Record a BMI entry from height (m), weight (kg) and date",
	}, s.handleAddBmi)

	// add_period
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_period",
		Description: "Record a menstrual period by start and end date",
	}, s.handleAddPeriod)

	// add_appointment
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_appointment",
		Description: "Schedule a medical appointment",
	}, s.handleAddAppointment)

	// delete_record
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_record",
		Description: "Delete a bmi, period or appointment entry by its position in the history",
	}, s.handleDeleteRecord)

	// list_records
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_records",
		Description: "List recorded entries, optionally filtered to bmi, period or appointment",
	}, s.handleListRecords)

	// get_latest
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_latest",
		Description: "Get the most recent bmi or period, or the next appointment",
	}, s.handleGetLatest)

	// predict_period
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "predict_period",
		Description: "Predict the start date of the next period",
	}, s.handlePredictPeriod)
}

// Tool input/output types

type addBmiInput struct {
	Height string `json:"height" jsonschema:"Height in metres with at most two decimals, e.g. 1.70"`
	Weight string `json:"weight" jsonschema:"Weight in kilograms with at most two decimals, e.g. 70.50"`
	Date   string `json:"date" jsonschema:"Date of the measurement as DD-MM-YYYY, not in the future"`
}

type bmiOutput struct {
	ID       string  `json:"id"`
	Bmi      float64 `json:"bmi"`
	Category string  `json:"category"`
	Message  string  `json:"message"`
}

type addPeriodInput struct {
	Start string `json:"start" jsonschema:"First day of the period as DD-MM-YYYY"`
	End   string `json:"end" jsonschema:"Last day of the period as DD-MM-YYYY"`
}

type periodOutput struct {
	ID      string `json:"id"`
	Length  int    `json:"length"`
	Message string `json:"message"`
}

type addAppointmentInput struct {
	Date        string `json:"date" jsonschema:"Appointment date as DD-MM-YYYY"`
	Time        string `json:"time" jsonschema:"Appointment time as HH:MM (24 hour)"`
	Description string `json:"description" jsonschema:"What the appointment is for, up to 100 characters"`
}

type appointmentOutput struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

type deleteRecordInput struct {
	Item  string `json:"item" jsonschema:"Kind of entry: bmi, period or appointment"`
	Index int    `json:"index" jsonschema:"One-based position in the history listing"`
}

type listRecordsInput struct {
	Item string `json:"item,omitempty" jsonschema:"Filter: bmi, period, appointment or all (default all)"`
}

type getLatestInput struct {
	Item string `json:"item" jsonschema:"Kind of entry: bmi, period or appointment"`
}

type predictPeriodInput struct{}

type predictionOutput struct {
	Date        string `json:"date"`
	CycleLength int    `json:"cycle_length"`
	FromDefault bool   `json:"from_default"`
	DaysUntil   int    `json:"days_until"`
	Message     string `json:"message"`
}

type simpleOutput struct {
	Message string `json:"message"`
}

// Tool handlers

func (s *Server) handleAddBmi(ctx context.Context, req *mcp.CallToolRequest, input addBmiInput) (*mcp.CallToolResult, bmiOutput, error) {
	b, err := s.tracker.AddBmi(validation.BmiInput{
		Height: input.Height,
		Weight: input.Weight,
		Date:   input.Date,
	})
	if err != nil {
		return nil, bmiOutput{}, fmt.Errorf("failed to add bmi: %w", err)
	}

	return nil, bmiOutput{
		ID:       b.ID.String()[:8],
		Bmi:      export.Round2(b.Value),
		Category: b.Category(),
		Message:  fmt.Sprintf("Added BMI %s (ID: %s)", b, b.ID.String()[:8]),
	}, nil
}

func (s *Server) handleAddPeriod(ctx context.Context, req *mcp.CallToolRequest, input addPeriodInput) (*mcp.CallToolResult, periodOutput, error) {
	p, err := s.tracker.AddPeriod(validation.PeriodInput{
		Start: input.Start,
		End:   input.End,
	})
	if err != nil {
		return nil, periodOutput{}, fmt.Errorf("failed to add period: %w", err)
	}

	return nil, periodOutput{
		ID:      p.ID.String()[:8],
		Length:  p.Length(),
		Message: fmt.Sprintf("Added period %s (ID: %s)", p, p.ID.String()[:8]),
	}, nil
}

func (s *Server) handleAddAppointment(ctx context.Context, req *mcp.CallToolRequest, input addAppointmentInput) (*mcp.CallToolResult, appointmentOutput, error) {
	a, err := s.tracker.AddAppointment(validation.AppointmentInput{
		Date:        input.Date,
		Time:        input.Time,
		Description: input.Description,
	})
	if err != nil {
		return nil, appointmentOutput{}, fmt.Errorf("failed to add appointment: %w", err)
	}

	return nil, appointmentOutput{
		ID:      a.ID.String()[:8],
		Message: fmt.Sprintf("Added appointment %s (ID: %s)", a, a.ID.String()[:8]),
	}, nil
}

func (s *Server) handleDeleteRecord(ctx context.Context, req *mcp.CallToolRequest, input deleteRecordInput) (*mcp.CallToolResult, simpleOutput, error) {
	deleted, err := s.tracker.Delete(validation.DeleteInput{
		Item:  input.Item,
		Index: fmt.Sprint(input.Index),
	})
	if err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to delete %s: %w", input.Item, err)
	}

	return nil, simpleOutput{
		Message: fmt.Sprintf("Deleted %s: %s", strings.ToLower(input.Item), deleted),
	}, nil
}

func (s *Server) handleListRecords(ctx context.Context, req *mcp.CallToolRequest, input listRecordsInput) (*mcp.CallToolResult, any, error) {
	item := strings.ToLower(input.Item)
	if item == "" {
		item = validation.FilterAll
	}
	if err := validation.ValidateFilter(item); err != nil {
		return nil, nil, err
	}

	data := export.Snapshot(s.tracker.Store())
	switch item {
	case validation.FilterBmi:
		return nil, map[string]any{"bmis": data.Bmis}, nil
	case validation.FilterPeriod:
		return nil, map[string]any{"periods": data.Periods}, nil
	case validation.FilterAppointment:
		return nil, map[string]any{"appointments": data.Appointments}, nil
	case validation.FilterAll:
		return nil, map[string]any{
			"bmis":         data.Bmis,
			"periods":      data.Periods,
			"appointments": data.Appointments,
		}, nil
	default:
		return nil, nil, health.Invalidf("%s entries are not tracked by pulse", item)
	}
}

func (s *Server) handleGetLatest(ctx context.Context, req *mcp.CallToolRequest, input getLatestInput) (*mcp.CallToolResult, simpleOutput, error) {
	latest, err := s.tracker.Latest(input.Item)
	if err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to get latest %s: %w", input.Item, err)
	}

	return nil, simpleOutput{Message: latest.String()}, nil
}

func (s *Server) handlePredictPeriod(ctx context.Context, req *mcp.CallToolRequest, input predictPeriodInput) (*mcp.CallToolResult, predictionOutput, error) {
	p, err := s.tracker.Predict()
	if err != nil {
		return nil, predictionOutput{}, fmt.Errorf("failed to predict period: %w", err)
	}

	return nil, predictionOutput{
		Date:        health.FormatDate(p.Date),
		CycleLength: p.CycleLength,
		FromDefault: p.FromDefault,
		DaysUntil:   p.DaysUntil,
		Message:     p.String(),
	}, nil
}
