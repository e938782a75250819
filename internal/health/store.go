// ABOUTME: Tracking store owning the BMI, period and appointment histories.
// ABOUTME: Index-checked add/delete/query with per-collection locking.
package health

import (
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

// predictionWindow is how many recent cycles feed the next-period average.
const predictionWindow = 3

// Sink receives one line per successful mutation. Deletes are recorded
// while the collection lock is held, so a Sink must not call back into
// the Store.
type Sink interface {
	Record(action string, keyvals ...any)
}

// Store holds one session's records. Each collection has its own lock;
// the three never interact.
type Store struct {
	sink Sink

	bmiMu sync.RWMutex
	bmis  []*Bmi

	periodMu sync.RWMutex
	periods  []*Period

	apptMu       sync.RWMutex
	appointments []*Appointment
}

// NewStore creates an empty store. A nil sink disables logging.
func NewStore(sink Sink) *Store {
	return &Store{sink: sink}
}

func (s *Store) record(action string, keyvals ...any) {
	if s.sink != nil {
		s.sink.Record(action, keyvals...)
	}
}

// --- BMI ---

// AddBmi appends b to the BMI history.
func (s *Store) AddBmi(b *Bmi) {
	precondition(b != nil, "bmi cannot be nil")

	s.bmiMu.Lock()
	s.bmis = append(s.bmis, b)
	s.bmiMu.Unlock()

	s.record("bmi added", "bmi", formatBmiValue(b.Value), "date", FormatDate(b.Date))
}

// CurrentBmi returns the most recently added BMI. The history must not be empty.
func (s *Store) CurrentBmi() *Bmi {
	s.bmiMu.RLock()
	defer s.bmiMu.RUnlock()

	precondition(len(s.bmis) > 0, "bmi history is empty")
	return s.bmis[len(s.bmis)-1]
}

// BmiHistory returns the BMI entries in insertion order.
func (s *Store) BmiHistory() []*Bmi {
	s.bmiMu.RLock()
	defer s.bmiMu.RUnlock()
	return slices.Clone(s.bmis)
}

// ShowBmiHistory renders the BMI history, one entry per line.
func (s *Store) ShowBmiHistory() string {
	return joinLines(s.BmiHistory(), false)
}

// BmisSize returns the number of BMI entries.
func (s *Store) BmisSize() int {
	s.bmiMu.RLock()
	defer s.bmiMu.RUnlock()
	return len(s.bmis)
}

// DeleteBmi logs and then removes the entry at the zero-based index and
// returns it.
func (s *Store) DeleteBmi(index int) (*Bmi, error) {
	s.bmiMu.Lock()
	defer s.bmiMu.Unlock()

	if index < 0 || index >= len(s.bmis) {
		return nil, outOfBounds(index, len(s.bmis))
	}
	b := s.bmis[index]
	s.record("bmi removed", "index", index, "bmi", formatBmiValue(b.Value), "date", FormatDate(b.Date))
	s.bmis = slices.Delete(s.bmis, index, index+1)
	return b, nil
}

// --- Periods ---

// AddPeriod appends a copy of p. When a period already exists, the previous
// latest period's cycle length becomes the days between its start and p's
// start, overwriting any earlier value. p itself is never modified.
func (s *Store) AddPeriod(p *Period) {
	precondition(p != nil, "period cannot be nil")

	s.periodMu.Lock()
	if n := len(s.periods); n > 0 {
		s.periods[n-1].setCycleLength(p.StartDate())
	}
	s.periods = append(s.periods, p.clone())
	s.periodMu.Unlock()

	s.record("period added", "start", FormatDate(p.StartDate()), "end", FormatDate(p.EndDate()))
}

// LatestPeriod returns the most recently added period. The history must
// not be empty.
func (s *Store) LatestPeriod() *Period {
	s.periodMu.RLock()
	defer s.periodMu.RUnlock()

	precondition(len(s.periods) > 0, "period history is empty")
	return s.periods[len(s.periods)-1].clone()
}

// LatestCycle returns the most recently added period, or nil.
func (s *Store) LatestCycle() *Period {
	s.periodMu.RLock()
	defer s.periodMu.RUnlock()

	if len(s.periods) == 0 {
		return nil
	}
	return s.periods[len(s.periods)-1].clone()
}

// Period returns the period at the zero-based index, or nil when the
// index is out of range.
func (s *Store) Period(index int) *Period {
	s.periodMu.RLock()
	defer s.periodMu.RUnlock()

	if index < 0 || index >= len(s.periods) {
		return nil
	}
	return s.periods[index].clone()
}

// PeriodHistory returns snapshots of the periods in insertion order.
func (s *Store) PeriodHistory() []*Period {
	s.periodMu.RLock()
	defer s.periodMu.RUnlock()

	out := make([]*Period, len(s.periods))
	for i, p := range s.periods {
		out[i] = p.clone()
	}
	return out
}

// ShowPeriodHistory renders the period history, one entry per line.
func (s *Store) ShowPeriodHistory() string {
	return joinLines(s.PeriodHistory(), false)
}

// PeriodsSize returns the number of recorded periods.
func (s *Store) PeriodsSize() int {
	s.periodMu.RLock()
	defer s.periodMu.RUnlock()
	return len(s.periods)
}

// DeletePeriod logs and then removes the period at the zero-based index and
// returns it. Cycle lengths of the remaining periods are left as they were.
func (s *Store) DeletePeriod(index int) (*Period, error) {
	s.periodMu.Lock()
	defer s.periodMu.Unlock()

	if index < 0 || index >= len(s.periods) {
		return nil, outOfBounds(index, len(s.periods))
	}
	p := s.periods[index]
	s.record("period removed", "index", index,
		"start", FormatDate(p.StartDate()), "end", FormatDate(p.EndDate()))
	s.periods = slices.Delete(s.periods, index, index+1)
	return p, nil
}

// AverageCycleLength averages, rounding down, the cycle lengths of up to
// the last three completed cycles. ok is false when no cycle is complete.
func (s *Store) AverageCycleLength() (days int, ok bool) {
	s.periodMu.RLock()
	defer s.periodMu.RUnlock()
	return averageCycle(s.periods)
}

func averageCycle(periods []*Period) (int, bool) {
	var sum, count int
	for i := len(periods) - 1; i >= 0 && count < predictionWindow; i-- {
		if days, ok := periods[i].CycleLength(); ok {
			sum += days
			count++
		}
	}
	if count == 0 {
		return 0, false
	}
	return sum / count, true
}

// PredictNextPeriodStartDate projects the next period's start from the
// latest period. ok is false when no period has been recorded.
func (s *Store) PredictNextPeriodStartDate() (date time.Time, ok bool) {
	s.periodMu.RLock()
	defer s.periodMu.RUnlock()

	if len(s.periods) == 0 {
		return time.Time{}, false
	}
	avg, ok := averageCycle(s.periods)
	if !ok {
		avg = DefaultCycleLength
	}
	return s.periods[len(s.periods)-1].NextCyclePrediction(avg), true
}

// ClearBmisAndPeriods empties both the BMI and the period histories.
func (s *Store) ClearBmisAndPeriods() {
	s.bmiMu.Lock()
	s.bmis = nil
	precondition(len(s.bmis) == 0, "bmi history was not cleared")
	s.bmiMu.Unlock()

	s.periodMu.Lock()
	s.periods = nil
	precondition(len(s.periods) == 0, "period history was not cleared")
	s.periodMu.Unlock()
}

// --- Appointments ---

// AddAppointment appends a and re-sorts the list by (date, time).
func (s *Store) AddAppointment(a *Appointment) {
	precondition(a != nil, "appointment cannot be nil")

	s.apptMu.Lock()
	s.appointments = append(s.appointments, a)
	slices.SortStableFunc(s.appointments, compareAppointments)
	s.apptMu.Unlock()

	s.record("appointment added",
		"date", FormatDate(a.Date), "time", a.Time.String(), "description", a.Description)
}

func compareAppointments(a, b *Appointment) int {
	switch {
	case a.Before(b):
		return -1
	case b.Before(a):
		return 1
	default:
		return 0
	}
}

// Appointments returns the appointments sorted by (date, time).
func (s *Store) Appointments() []*Appointment {
	s.apptMu.RLock()
	defer s.apptMu.RUnlock()
	return slices.Clone(s.appointments)
}

// AppointmentsSize returns the number of appointments.
func (s *Store) AppointmentsSize() int {
	s.apptMu.RLock()
	defer s.apptMu.RUnlock()
	return len(s.appointments)
}

// ShowAppointmentList renders the appointments numbered from 1.
func (s *Store) ShowAppointmentList() string {
	return joinLines(s.Appointments(), true)
}

// DeleteAppointment logs and then removes the appointment at the one-based
// index and returns it. Unlike DeleteBmi and DeletePeriod, numbering starts at 1 to
// match ShowAppointmentList.
func (s *Store) DeleteAppointment(index int) (*Appointment, error) {
	s.apptMu.Lock()
	defer s.apptMu.Unlock()

	if index < 1 || index > len(s.appointments) {
		return nil, outOfBounds(index, len(s.appointments))
	}
	a := s.appointments[index-1]
	s.record("appointment removed", "index", index,
		"date", FormatDate(a.Date), "time", a.Time.String(), "description", a.Description)
	s.appointments = slices.Delete(s.appointments, index-1, index)
	return a, nil
}

// ClearAppointments empties the appointment list.
func (s *Store) ClearAppointments() {
	s.apptMu.Lock()
	defer s.apptMu.Unlock()

	s.appointments = nil
	precondition(len(s.appointments) == 0, "appointment list was not cleared")
}

func formatBmiValue(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func joinLines[T interface{ String() string }](items []T, numbered bool) string {
	var sb strings.Builder
	for i, item := range items {
		if numbered {
			sb.WriteString(strconv.Itoa(i + 1))
			sb.WriteString(". ")
		}
		sb.WriteString(item.String())
		sb.WriteString("\n")
	}
	return sb.String()
}
