// ABOUTME: Snapshot export of a session's health records.
// ABOUTME: Supports JSON, YAML, and Markdown renderings of the store.
package export

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/harperreed/pulse/internal/health"
	"gopkg.in/yaml.v3"
)

// Supported formats.
const (
	FormatJSON     = "json"
	FormatYAML     = "yaml"
	FormatMarkdown = "markdown"
)

// Data is the full export format for a session.
type Data struct {
	Version      string        `json:"version" yaml:"version"`
	ExportedAt   time.Time     `json:"exported_at" yaml:"exported_at"`
	Tool         string        `json:"tool" yaml:"tool"`
	Bmis         []Bmi         `json:"bmis" yaml:"bmis"`
	Periods      []Period      `json:"periods" yaml:"periods"`
	Appointments []Appointment `json:"appointments" yaml:"appointments"`
	NextPeriod   string        `json:"next_period,omitempty" yaml:"next_period,omitempty"`
}

// Bmi is the exported form of a BMI entry.
type Bmi struct {
	ID       string  `json:"id" yaml:"id"`
	Date     string  `json:"date" yaml:"date"`
	Height   float64 `json:"height" yaml:"height"`
	Weight   float64 `json:"weight" yaml:"weight"`
	Value    float64 `json:"bmi" yaml:"bmi"`
	Category string  `json:"category" yaml:"category"`
}

// Period is the exported form of a period entry.
type Period struct {
	ID          string `json:"id" yaml:"id"`
	Start       string `json:"start" yaml:"start"`
	End         string `json:"end" yaml:"end"`
	Length      int    `json:"length" yaml:"length"`
	CycleLength *int   `json:"cycle_length,omitempty" yaml:"cycle_length,omitempty"`
}

// Appointment is the exported form of an appointment.
type Appointment struct {
	ID          string `json:"id" yaml:"id"`
	Date        string `json:"date" yaml:"date"`
	Time        string `json:"time" yaml:"time"`
	Description string `json:"description" yaml:"description"`
}

// Snapshot collects everything currently in the store.
func Snapshot(s *health.Store) *Data {
	data := &Data{
		Version:      "1.0",
		ExportedAt:   time.Now(),
		Tool:         "pulse",
		Bmis:         make([]Bmi, 0, s.BmisSize()),
		Periods:      make([]Period, 0, s.PeriodsSize()),
		Appointments: make([]Appointment, 0, s.AppointmentsSize()),
	}

	for _, b := range s.BmiHistory() {
		data.Bmis = append(data.Bmis, Bmi{
			ID:       b.ID.String()[:8],
			Date:     health.FormatDate(b.Date),
			Height:   b.Height,
			Weight:   b.Weight,
			Value:    Round2(b.Value),
			Category: b.Category(),
		})
	}

	for _, p := range s.PeriodHistory() {
		ep := Period{
			ID:     p.ID.String()[:8],
			Start:  health.FormatDate(p.StartDate()),
			End:    health.FormatDate(p.EndDate()),
			Length: p.Length(),
		}
		if days, ok := p.CycleLength(); ok {
			ep.CycleLength = &days
		}
		data.Periods = append(data.Periods, ep)
	}

	for _, a := range s.Appointments() {
		data.Appointments = append(data.Appointments, Appointment{
			ID:          a.ID.String()[:8],
			Date:        health.FormatDate(a.Date),
			Time:        a.Time.String(),
			Description: a.Description,
		})
	}

	if next, ok := s.PredictNextPeriodStartDate(); ok {
		data.NextPeriod = health.FormatDate(next)
	}
	return data
}

// Render renders data in the named format.
func Render(data *Data, format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		return JSON(data)
	case FormatYAML:
		return YAML(data)
	case FormatMarkdown:
		return []byte(Markdown(data)), nil
	default:
		return nil, fmt.Errorf("unknown export format: %q", format)
	}
}

// JSON renders data as indented JSON.
func JSON(data *Data) ([]byte, error) {
	return json.MarshalIndent(data, "", "  ")
}

// YAML renders data as YAML.
func YAML(data *Data) ([]byte, error) {
	return yaml.Marshal(data)
}

// Markdown renders data as Markdown tables, one section per record kind.
func Markdown(data *Data) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Pulse Export - %s\n\n", data.ExportedAt.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", data.ExportedAt.Format(time.RFC3339)))

	if len(data.Bmis) > 0 {
		sb.WriteString("## BMI\n\n")
		sb.WriteString("| Date | Height | Weight | BMI | Category |\n")
		sb.WriteString("|------|--------|--------|-----|----------|\n")
		for _, b := range data.Bmis {
			sb.WriteString(fmt.Sprintf("| %s | %.2f m | %.2f kg | %.2f | %s |\n",
				b.Date, b.Height, b.Weight, b.Value, b.Category))
		}
		sb.WriteString("\n")
	}

	if len(data.Periods) > 0 {
		sb.WriteString("## Periods\n\n")
		sb.WriteString("| Start | End | Length | Cycle |\n")
		sb.WriteString("|-------|-----|--------|-------|\n")
		for _, p := range data.Periods {
			cycle := "NA"
			if p.CycleLength != nil {
				cycle = fmt.Sprintf("%d days", *p.CycleLength)
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %d days | %s |\n", p.Start, p.End, p.Length, cycle))
		}
		sb.WriteString("\n")
		if data.NextPeriod != "" {
			sb.WriteString(fmt.Sprintf("Next period expected: %s\n\n", data.NextPeriod))
		}
	}

	if len(data.Appointments) > 0 {
		sb.WriteString("## Appointments\n\n")
		sb.WriteString("| # | Date | Time | Description |\n")
		sb.WriteString("|---|------|------|-------------|\n")
		for i, a := range data.Appointments {
			sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s |\n", i+1, a.Date, a.Time, a.Description))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// Round2 rounds v to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
