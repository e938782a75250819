// ABOUTME: Tests for the tracking store.
// ABOUTME: Covers cycle back-fill, prediction, ordering, bounds and logging.
package health

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

type recordedLine struct {
	action  string
	keyvals []any
}

type fakeSink struct {
	mu    sync.Mutex
	lines []recordedLine
}

func (f *fakeSink) Record(action string, keyvals ...any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lines = append(f.lines, recordedLine{action: action, keyvals: keyvals})
}

func (f *fakeSink) actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, l := range f.lines {
		out = append(out, l.action)
	}
	return out
}

func mustBmi(t *testing.T, height, weight, date string) *Bmi {
	t.Helper()
	b, err := NewBmi(height, weight, date)
	if err != nil {
		t.Fatalf("NewBmi: %v", err)
	}
	return b
}

func mustPeriod(t *testing.T, start, end string) *Period {
	t.Helper()
	p, err := NewPeriod(start, end)
	if err != nil {
		t.Fatalf("NewPeriod: %v", err)
	}
	return p
}

func mustAppointment(t *testing.T, date, clock, desc string) *Appointment {
	t.Helper()
	a, err := NewAppointment(date, clock, desc)
	if err != nil {
		t.Fatalf("NewAppointment: %v", err)
	}
	return a
}

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	return d
}

func expectPrecondition(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrPrecondition) {
			t.Errorf("expected ErrPrecondition panic, got %v", r)
		}
	}()
	fn()
}

func TestAddBmiThenCurrent(t *testing.T) {
	s := NewStore(nil)
	first := mustBmi(t, "1.70", "70.00", "01-04-2024")
	second := mustBmi(t, "1.70", "72.50", "08-04-2024")

	s.AddBmi(first)
	if s.CurrentBmi() != first {
		t.Error("expected CurrentBmi to return the first entry")
	}
	s.AddBmi(second)
	if s.CurrentBmi() != second {
		t.Error("expected CurrentBmi to return the latest entry")
	}
	if s.BmisSize() != 2 {
		t.Errorf("BmisSize = %d, want 2", s.BmisSize())
	}
}

func TestEmptyAccessorsPanic(t *testing.T) {
	s := NewStore(nil)
	expectPrecondition(t, func() { s.CurrentBmi() })
	expectPrecondition(t, func() { s.LatestPeriod() })
	expectPrecondition(t, func() { s.AddBmi(nil) })
	expectPrecondition(t, func() { s.AddPeriod(nil) })
	expectPrecondition(t, func() { s.AddAppointment(nil) })
}

func TestAddPeriodBackfillsCycleLength(t *testing.T) {
	s := NewStore(nil)
	p1 := mustPeriod(t, "01-01-2024", "05-01-2024")
	p2 := mustPeriod(t, "29-01-2024", "02-02-2024")

	s.AddPeriod(p1)
	if _, ok := s.Period(0).CycleLength(); ok {
		t.Error("single period must not have a cycle length")
	}

	s.AddPeriod(p2)
	days, ok := s.Period(0).CycleLength()
	if !ok || days != 28 {
		t.Errorf("p1 cycle = (%d, %v), want (28, true)", days, ok)
	}
	if _, ok := s.LatestPeriod().CycleLength(); ok {
		t.Error("latest period must not have a cycle length")
	}
	if s.LatestPeriod().ID != p2.ID {
		t.Error("LatestPeriod should be p2")
	}
	if _, ok := p1.CycleLength(); ok {
		t.Error("the caller's period must not be modified by the store")
	}
}

func TestPeriodReadsAreSnapshots(t *testing.T) {
	s := NewStore(nil)
	s.AddPeriod(mustPeriod(t, "01-01-2024", "05-01-2024"))

	before := s.PeriodHistory()[0]
	s.AddPeriod(mustPeriod(t, "29-01-2024", "02-02-2024"))

	if _, ok := before.CycleLength(); ok {
		t.Error("a snapshot taken before the next add must keep its unset cycle")
	}
	if days, ok := s.PeriodHistory()[0].CycleLength(); !ok || days != 28 {
		t.Errorf("fresh snapshot cycle = (%d, %v), want (28, true)", days, ok)
	}
}

func TestAddPeriodOverwritesPreviousCycle(t *testing.T) {
	s := NewStore(nil)
	p1 := mustPeriod(t, "01-01-2024", "05-01-2024")
	p2 := mustPeriod(t, "29-01-2024", "02-02-2024")
	p3 := mustPeriod(t, "01-03-2024", "04-03-2024")

	s.AddPeriod(p1)
	s.AddPeriod(p2)
	// Removing p2 leaves p1 last again; the next add recomputes p1.
	if _, err := s.DeletePeriod(1); err != nil {
		t.Fatalf("DeletePeriod: %v", err)
	}
	s.AddPeriod(p3)

	days, _ := s.Period(0).CycleLength()
	if days != 60 {
		t.Errorf("p1 cycle = %d, want 60", days)
	}
}

func TestPredictNextPeriodStartDate(t *testing.T) {
	t.Run("no periods", func(t *testing.T) {
		s := NewStore(nil)
		if _, ok := s.PredictNextPeriodStartDate(); ok {
			t.Error("expected no prediction")
		}
		if s.LatestCycle() != nil {
			t.Error("expected nil LatestCycle")
		}
	})

	t.Run("one period uses default", func(t *testing.T) {
		s := NewStore(nil)
		s.AddPeriod(mustPeriod(t, "01-01-2024", "05-01-2024"))
		got, ok := s.PredictNextPeriodStartDate()
		if !ok || !got.Equal(date(t, "29-01-2024")) {
			t.Errorf("prediction = %s, want 29-01-2024", FormatDate(got))
		}
	})

	t.Run("two periods averages one cycle", func(t *testing.T) {
		s := NewStore(nil)
		s.AddPeriod(mustPeriod(t, "01-01-2024", "05-01-2024"))
		s.AddPeriod(mustPeriod(t, "29-01-2024", "02-02-2024"))
		got, _ := s.PredictNextPeriodStartDate()
		if !got.Equal(date(t, "26-02-2024")) {
			t.Errorf("prediction = %s, want 26-02-2024", FormatDate(got))
		}
	})

	t.Run("uses last three cycles rounded down", func(t *testing.T) {
		s := NewStore(nil)
		// cycles: 40, 30, 28, 29
		for _, start := range []string{"01-01-2024", "10-02-2024", "11-03-2024", "08-04-2024", "07-05-2024"} {
			s.AddPeriod(mustPeriod(t, start, start))
		}
		avg, ok := s.AverageCycleLength()
		if !ok || avg != 29 {
			t.Errorf("average = (%d, %v), want (29, true)", avg, ok)
		}
		got, _ := s.PredictNextPeriodStartDate()
		if !got.Equal(date(t, "05-06-2024")) {
			t.Errorf("prediction = %s, want 05-06-2024", FormatDate(got))
		}
	})
}

func TestAppointmentsStaySorted(t *testing.T) {
	s := NewStore(nil)
	inputs := []struct{ date, clock string }{
		{"10-05-2024", "09:00"},
		{"01-05-2024", "15:00"},
		{"10-05-2024", "08:30"},
		{"01-05-2024", "07:45"},
		{"20-04-2024", "23:59"},
		{"10-05-2024", "08:30"},
	}
	for i, in := range inputs {
		s.AddAppointment(mustAppointment(t, in.date, in.clock, fmt.Sprintf("appt %d", i)))
	}

	got := s.Appointments()
	if len(got) != len(inputs) {
		t.Fatalf("len = %d, want %d", len(got), len(inputs))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Before(got[i-1]) {
			t.Errorf("appointment %d (%s) sorts before %d (%s)", i, got[i], i-1, got[i-1])
		}
	}
	if got[0].Description != "appt 4" {
		t.Errorf("first appointment = %s, want appt 4", got[0].Description)
	}
}

func TestDeleteBmiAndPeriodBounds(t *testing.T) {
	for n := 0; n <= 3; n++ {
		s := NewStore(nil)
		for i := 0; i < n; i++ {
			s.AddBmi(mustBmi(t, "1.80", "80.00", "01-01-2024"))
			s.AddPeriod(mustPeriod(t, "01-01-2024", "03-01-2024"))
		}
		for _, idx := range []int{-1, n, n + 1} {
			if _, err := s.DeleteBmi(idx); !errors.Is(err, ErrOutOfBounds) {
				t.Errorf("n=%d DeleteBmi(%d) error = %v, want ErrOutOfBounds", n, idx, err)
			}
			if _, err := s.DeletePeriod(idx); !errors.Is(err, ErrOutOfBounds) {
				t.Errorf("n=%d DeletePeriod(%d) error = %v, want ErrOutOfBounds", n, idx, err)
			}
		}
		if s.BmisSize() != n || s.PeriodsSize() != n {
			t.Errorf("n=%d failed deletes changed sizes", n)
		}
	}
}

func TestDeleteBmiZeroBased(t *testing.T) {
	sink := &fakeSink{}
	s := NewStore(sink)
	first := mustBmi(t, "1.80", "80.00", "01-01-2024")
	second := mustBmi(t, "1.80", "82.00", "02-01-2024")
	s.AddBmi(first)
	s.AddBmi(second)

	got, err := s.DeleteBmi(0)
	if err != nil {
		t.Fatalf("DeleteBmi: %v", err)
	}
	if got != first {
		t.Error("DeleteBmi(0) should remove the first entry")
	}
	if s.CurrentBmi() != second || s.BmisSize() != 1 {
		t.Error("unexpected remaining history")
	}

	actions := sink.actions()
	if len(actions) != 3 || actions[2] != "bmi removed" {
		t.Errorf("actions = %v", actions)
	}
}

func TestDeleteAppointmentOneBased(t *testing.T) {
	s := NewStore(nil)
	if _, err := s.DeleteAppointment(1); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("empty list: error = %v, want ErrOutOfBounds", err)
	}

	late := mustAppointment(t, "02-05-2024", "10:00", "late")
	early := mustAppointment(t, "01-05-2024", "10:00", "early")
	s.AddAppointment(late)
	s.AddAppointment(early)

	for _, idx := range []int{0, -1, 3} {
		if _, err := s.DeleteAppointment(idx); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("DeleteAppointment(%d) error = %v, want ErrOutOfBounds", idx, err)
		}
	}

	got, err := s.DeleteAppointment(1)
	if err != nil {
		t.Fatalf("DeleteAppointment: %v", err)
	}
	if got != early {
		t.Error("index 1 should remove the earliest appointment")
	}
	if s.AppointmentsSize() != 1 {
		t.Errorf("AppointmentsSize = %d, want 1", s.AppointmentsSize())
	}
}

func TestPeriodGetterReturnsNil(t *testing.T) {
	s := NewStore(nil)
	p := mustPeriod(t, "01-01-2024", "03-01-2024")
	s.AddPeriod(p)

	if got := s.Period(0); got == nil || got.ID != p.ID {
		t.Error("Period(0) should return the period")
	}
	for _, idx := range []int{-1, 1, 5} {
		if s.Period(idx) != nil {
			t.Errorf("Period(%d) should be nil", idx)
		}
	}
}

func TestRoundTripRestoresStore(t *testing.T) {
	s := NewStore(nil)
	s.AddBmi(mustBmi(t, "1.60", "55.00", "01-01-2024"))
	before := s.ShowBmiHistory()

	s.AddBmi(mustBmi(t, "1.60", "56.00", "02-01-2024"))
	if _, err := s.DeleteBmi(1); err != nil {
		t.Fatalf("DeleteBmi: %v", err)
	}
	if s.BmisSize() != 1 || s.ShowBmiHistory() != before {
		t.Error("add then delete should restore the history")
	}

	s.AddAppointment(mustAppointment(t, "01-05-2024", "10:00", "x"))
	if _, err := s.DeleteAppointment(1); err != nil {
		t.Fatalf("DeleteAppointment: %v", err)
	}
	if s.AppointmentsSize() != 0 {
		t.Error("appointment list should be empty again")
	}
}

func TestShowAppointmentListNumbering(t *testing.T) {
	s := NewStore(nil)
	s.AddAppointment(mustAppointment(t, "02-05-2024", "10:00", "second"))
	s.AddAppointment(mustAppointment(t, "01-05-2024", "10:00", "first"))

	want := "1. 01-05-2024 10:00: first\n2. 02-05-2024 10:00: second\n"
	if got := s.ShowAppointmentList(); got != want {
		t.Errorf("ShowAppointmentList = %q, want %q", got, want)
	}
	if strings.HasPrefix(s.ShowBmiHistory(), "1.") {
		t.Error("BMI history must not be numbered")
	}
}

func TestClear(t *testing.T) {
	s := NewStore(nil)
	s.AddBmi(mustBmi(t, "1.60", "55.00", "01-01-2024"))
	s.AddPeriod(mustPeriod(t, "01-01-2024", "03-01-2024"))
	s.AddAppointment(mustAppointment(t, "01-05-2024", "10:00", "x"))

	s.ClearBmisAndPeriods()
	if s.BmisSize() != 0 || s.PeriodsSize() != 0 {
		t.Error("expected BMI and period histories to be empty")
	}
	if s.AppointmentsSize() != 1 {
		t.Error("ClearBmisAndPeriods must not touch appointments")
	}
	s.ClearAppointments()
	if s.AppointmentsSize() != 0 {
		t.Error("expected appointment list to be empty")
	}
}

func TestSinkReceivesMutations(t *testing.T) {
	sink := &fakeSink{}
	s := NewStore(sink)
	s.AddBmi(mustBmi(t, "1.60", "55.00", "01-01-2024"))
	s.AddPeriod(mustPeriod(t, "01-01-2024", "03-01-2024"))
	s.AddAppointment(mustAppointment(t, "01-05-2024", "10:00", "x"))
	_, _ = s.DeletePeriod(0)
	_, _ = s.DeleteAppointment(1)
	_, _ = s.DeleteBmi(7) // fails, not logged

	want := []string{"bmi added", "period added", "appointment added", "period removed", "appointment removed"}
	got := sink.actions()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("actions = %v, want %v", got, want)
	}

	last := sink.lines[len(sink.lines)-1]
	if len(last.keyvals) != 8 || last.keyvals[7] != "x" {
		t.Errorf("appointment removal keyvals = %v", last.keyvals)
	}
}

func TestConcurrentAppends(t *testing.T) {
	s := NewStore(nil)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			s.AddBmi(&Bmi{Value: 20})
		}()
		go func() {
			defer wg.Done()
			s.AddAppointment(&Appointment{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)})
		}()
		go func() {
			defer wg.Done()
			_ = s.BmiHistory()
		}()
	}
	wg.Wait()
	if s.BmisSize() != 20 || s.AppointmentsSize() != 20 {
		t.Errorf("sizes = %d/%d, want 20/20", s.BmisSize(), s.AppointmentsSize())
	}
}

func TestConcurrentPeriodAddsAndReads(t *testing.T) {
	s := NewStore(nil)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			d := FormatDate(start.AddDate(0, 0, 28*i))
			p, err := NewPeriod(d, d)
			if err != nil {
				t.Error(err)
				return
			}
			s.AddPeriod(p)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			for _, p := range s.PeriodHistory() {
				p.CycleLength()
			}
			if p := s.LatestCycle(); p != nil {
				_ = p.String()
			}
			_ = s.ShowPeriodHistory()
		}
	}()
	wg.Wait()

	if s.PeriodsSize() != 200 {
		t.Errorf("PeriodsSize = %d, want 200", s.PeriodsSize())
	}
	if days, ok := s.Period(0).CycleLength(); !ok || days != 28 {
		t.Errorf("first cycle = (%d, %v), want (28, true)", days, ok)
	}
}

func TestCycleLengthAcrossCenturies(t *testing.T) {
	s := NewStore(nil)
	s.AddPeriod(mustPeriod(t, "01-01-1500", "05-01-1500"))
	s.AddPeriod(mustPeriod(t, "01-01-2024", "05-01-2024"))

	want := DaysBetween(date(t, "01-01-1500"), date(t, "01-01-2024"))
	if want != 191387 {
		t.Fatalf("DaysBetween = %d, want 191387", want)
	}
	if days, _ := s.Period(0).CycleLength(); days != want {
		t.Errorf("cycle = %d, want %d", days, want)
	}
}

// panicSink fails on the first matching action, leaving the mutation unfinished.
type panicSink struct {
	action string
}

func (p *panicSink) Record(action string, keyvals ...any) {
	if action == p.action {
		panic("sink failed")
	}
}

func TestDeleteLogsBeforeRemoving(t *testing.T) {
	tests := []struct {
		action string
		setup  func(t *testing.T, s *Store)
		remove func(s *Store)
		size   func(s *Store) int
	}{
		{
			action: "bmi removed",
			setup:  func(t *testing.T, s *Store) { s.AddBmi(mustBmi(t, "1.70", "70", "01-01-2024")) },
			remove: func(s *Store) { _, _ = s.DeleteBmi(0) },
			size:   (*Store).BmisSize,
		},
		{
			action: "period removed",
			setup:  func(t *testing.T, s *Store) { s.AddPeriod(mustPeriod(t, "01-01-2024", "05-01-2024")) },
			remove: func(s *Store) { _, _ = s.DeletePeriod(0) },
			size:   (*Store).PeriodsSize,
		},
		{
			action: "appointment removed",
			setup:  func(t *testing.T, s *Store) { s.AddAppointment(mustAppointment(t, "01-05-2024", "10:00", "x")) },
			remove: func(s *Store) { _, _ = s.DeleteAppointment(1) },
			size:   (*Store).AppointmentsSize,
		},
	}

	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			s := NewStore(&panicSink{action: tt.action})
			tt.setup(t, s)

			func() {
				defer func() { _ = recover() }()
				tt.remove(s)
			}()

			if got := tt.size(s); got != 1 {
				t.Errorf("size after failed log = %d, want 1", got)
			}
		})
	}
}
