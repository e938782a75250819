// ABOUTME: Interactive shell reading /key:value commands line by line.
// ABOUTME: Dispatches each command to the session tracker and prints the result.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/pulse/internal/export"
	"github.com/harperreed/pulse/internal/health"
	"github.com/harperreed/pulse/internal/tracker"
	"github.com/harperreed/pulse/internal/validation"
)

const prompt = "> "

// argRe matches the start of a "/key:" argument.
var argRe = regexp.MustCompile(`(?:^|\s)/([a-z]+):`)

// command is one parsed shell line.
type command struct {
	name string
	args map[string]string
}

func (c *command) arg(key string) string {
	return c.args[key]
}

// parseCommand splits a line into a command word and its /key:value
// arguments. Values run until the next argument and may contain spaces.
func parseCommand(line string) (*command, error) {
	name, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	cmd := &command{name: strings.ToLower(name), args: make(map[string]string)}

	rest = strings.TrimSpace(rest)
	locs := argRe.FindAllStringSubmatchIndex(rest, -1)
	if len(locs) == 0 {
		if rest != "" {
			return nil, health.Invalidf("unexpected text %q, arguments look like /key:value", rest)
		}
		return cmd, nil
	}
	if lead := strings.TrimSpace(rest[:locs[0][0]]); lead != "" {
		return nil, health.Invalidf("unexpected text %q before first argument", lead)
	}

	for i, loc := range locs {
		key := rest[loc[2]:loc[3]]
		end := len(rest)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		if _, dup := cmd.args[key]; dup {
			return nil, health.Invalidf("argument /%s: given more than once", key)
		}
		cmd.args[key] = strings.TrimSpace(rest[loc[1]:end])
	}
	return cmd, nil
}

type shell struct {
	tracker *tracker.Tracker
	in      io.Reader
	out     io.Writer
}

func newShell(t *tracker.Tracker, in io.Reader, out io.Writer) *shell {
	return &shell{tracker: t, in: in, out: out}
}

// Run reads commands until exit or end of input.
func (s *shell) Run() error {
	fmt.Fprintln(s.out, "Welcome to pulse. Type help for a list of commands.")

	scanner := bufio.NewScanner(s.in)
	for {
		fmt.Fprint(s.out, prompt)
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if s.execute(line) {
			return nil
		}
	}
	return scanner.Err()
}

// execute runs one line and reports whether the shell should stop.
func (s *shell) execute(line string) bool {
	cmd, err := parseCommand(line)
	if err != nil {
		s.fail(err)
		return false
	}

	switch cmd.name {
	case "exit", "bye":
		fmt.Fprintln(s.out, "Goodbye!")
		return true
	case "help":
		s.help()
	case "health":
		err = s.health(cmd)
	case "appointment":
		err = s.addAppointment(cmd)
	case "history":
		err = s.history(cmd)
	case "latest":
		err = s.latest(cmd)
	case "delete":
		err = s.delete(cmd)
	case "export":
		err = s.export(cmd)
	default:
		err = health.Invalidf("unknown command %q, type help for a list", cmd.name)
	}

	if err != nil {
		s.fail(err)
	}
	return false
}

func (s *shell) health(cmd *command) error {
	switch kind := strings.ToLower(cmd.arg("h")); kind {
	case "bmi":
		b, err := s.tracker.AddBmi(validation.BmiInput{
			Height: cmd.arg("height"),
			Weight: cmd.arg("weight"),
			Date:   cmd.arg("date"),
		})
		if err != nil {
			return err
		}
		s.added("BMI", b.ID.String(), b.String())
	case "period":
		p, err := s.tracker.AddPeriod(validation.PeriodInput{
			Start: cmd.arg("start"),
			End:   cmd.arg("end"),
		})
		if err != nil {
			return err
		}
		s.added("period", p.ID.String(), p.String())
	case "prediction":
		p, err := s.tracker.Predict()
		if err != nil {
			return err
		}
		fmt.Fprintln(s.out, p.LatestPeriod)
		fmt.Fprintln(s.out, p)
		if p.FromDefault {
			color.New(color.Faint).Fprintf(s.out, "  based on the default %d day cycle\n", health.DefaultCycleLength)
		}
	case "":
		return health.Insufficientf("missing /h: for health, use bmi, period or prediction")
	default:
		return health.Invalidf("unknown health entry %q, use bmi, period or prediction", kind)
	}
	return nil
}

func (s *shell) addAppointment(cmd *command) error {
	a, err := s.tracker.AddAppointment(validation.AppointmentInput{
		Date:        cmd.arg("date"),
		Time:        cmd.arg("time"),
		Description: cmd.arg("description"),
	})
	if err != nil {
		return err
	}
	s.added("appointment", a.ID.String(), a.String())
	return nil
}

func (s *shell) history(cmd *command) error {
	item := cmd.arg("item")
	if item == "" {
		return health.Insufficientf("missing /item: for history")
	}
	out, err := s.tracker.History(item)
	if err != nil {
		return err
	}
	if out == "" {
		fmt.Fprintf(s.out, "No %s entries yet.\n", strings.ToLower(item))
		return nil
	}
	fmt.Fprint(s.out, out)
	return nil
}

func (s *shell) latest(cmd *command) error {
	item := cmd.arg("item")
	if item == "" {
		return health.Insufficientf("missing /item: for latest")
	}
	entry, err := s.tracker.Latest(item)
	if errors.Is(err, tracker.ErrEmpty) {
		fmt.Fprintf(s.out, "No %s entries yet.\n", strings.ToLower(item))
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, entry)
	return nil
}

func (s *shell) delete(cmd *command) error {
	in := validation.DeleteInput{Item: cmd.arg("item"), Index: cmd.arg("index")}
	deleted, err := s.tracker.Delete(in)
	if err != nil {
		return err
	}

	item := strings.ToLower(in.Item)
	color.New(color.FgYellow).Fprintf(s.out, "✗ Deleted %s\n", item)
	fmt.Fprintf(s.out, "  %s\n", deleted)

	if item == validation.FilterAppointment {
		if list := s.tracker.Store().ShowAppointmentList(); list != "" {
			fmt.Fprintln(s.out, "Remaining appointments:")
			fmt.Fprint(s.out, list)
		}
	}
	return nil
}

func (s *shell) export(cmd *command) error {
	format := strings.ToLower(cmd.arg("format"))
	if format == "" {
		return health.Insufficientf("missing /format: for export, use json, yaml or markdown")
	}

	data, err := export.Render(export.Snapshot(s.tracker.Store()), format)
	if err != nil {
		return health.Invalidf("%v", err)
	}

	output := cmd.arg("output")
	if output == "" {
		fmt.Fprintln(s.out, string(data))
		return nil
	}
	if err := os.WriteFile(output, data, 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	color.New(color.FgGreen).Fprintf(s.out, "✓ Exported to %s\n", output)
	return nil
}

func (s *shell) added(kind, id, line string) {
	color.New(color.FgGreen).Fprintf(s.out, "✓ Added %s\n", kind)
	fmt.Fprintf(s.out, "  %s %s\n", color.New(color.Faint).Sprint(id[:8]), line)
}

func (s *shell) fail(err error) {
	color.New(color.FgRed).Fprintf(s.out, "Error: %v\n", err)
}

func (s *shell) help() {
	fmt.Fprint(s.out, `Commands:
  health /h:bmi /height:METRES /weight:KG /date:DD-MM-YYYY
  health /h:period /start:DD-MM-YYYY /end:DD-MM-YYYY
  health /h:prediction
  appointment /date:DD-MM-YYYY /time:HH:MM /description:TEXT
  history /item:bmi|period|appointment|all
  latest /item:bmi|period|appointment
  delete /item:bmi|period|appointment /index:N
  export /format:json|yaml|markdown [/output:FILE]
  help
  exit
`)
}
