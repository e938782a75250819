// ABOUTME: Tracker runs the validate, construct, store sequence for front-ends.
// ABOUTME: Shared by the interactive shell and the MCP server.
package tracker

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/harperreed/pulse/internal/health"
	"github.com/harperreed/pulse/internal/validation"
)

// ErrEmpty is returned when a "latest" query hits an empty history.
var ErrEmpty = errors.New("nothing recorded yet")

// Tracker wraps a session store with input validation.
type Tracker struct {
	store     *health.Store
	validator *validation.Validator
}

// New creates a Tracker over store using the wall clock.
func New(store *health.Store) *Tracker {
	return &Tracker{store: store, validator: validation.New()}
}

// WithClock makes future-date checks compare against now.
func (t *Tracker) WithClock(now func() time.Time) *Tracker {
	t.validator = &validation.Validator{Now: now}
	return t
}

// Store returns the underlying store.
func (t *Tracker) Store() *health.Store {
	return t.store
}

// AddBmi validates and records a BMI entry.
func (t *Tracker) AddBmi(in validation.BmiInput) (*health.Bmi, error) {
	if err := t.validator.ValidateBmi(in); err != nil {
		return nil, err
	}
	b, err := health.NewBmi(in.Height, in.Weight, in.Date)
	if err != nil {
		return nil, err
	}
	t.store.AddBmi(b)
	return b, nil
}

// AddPeriod validates and records a period.
func (t *Tracker) AddPeriod(in validation.PeriodInput) (*health.Period, error) {
	if err := t.validator.ValidatePeriod(in); err != nil {
		return nil, err
	}
	p, err := health.NewPeriod(in.Start, in.End)
	if err != nil {
		return nil, err
	}
	t.store.AddPeriod(p)
	return p, nil
}

// AddAppointment validates and records an appointment.
func (t *Tracker) AddAppointment(in validation.AppointmentInput) (*health.Appointment, error) {
	if err := validation.ValidateAppointment(in); err != nil {
		return nil, err
	}
	a, err := health.NewAppointment(in.Date, in.Time, in.Description)
	if err != nil {
		return nil, err
	}
	t.store.AddAppointment(a)
	return a, nil
}

// Delete removes the entry at a one-based index for item. BMI and period
// indexes are shifted to the store's zero-based numbering; appointments
// are passed through as the store numbers them from 1.
func (t *Tracker) Delete(in validation.DeleteInput) (fmt.Stringer, error) {
	if err := validation.ValidateDelete(in); err != nil {
		return nil, err
	}
	index, err := strconv.Atoi(in.Index)
	if errors.Is(err, strconv.ErrRange) {
		return nil, fmt.Errorf("%w: index %s", health.ErrOutOfBounds, in.Index)
	}
	if err != nil {
		return nil, health.Invalidf("index %q must be a positive integer", in.Index)
	}

	var deleted fmt.Stringer
	switch item := strings.ToLower(in.Item); item {
	case validation.FilterBmi:
		b, err := t.store.DeleteBmi(index - 1)
		if err != nil {
			return nil, err
		}
		deleted = b
	case validation.FilterPeriod:
		p, err := t.store.DeletePeriod(index - 1)
		if err != nil {
			return nil, err
		}
		deleted = p
	case validation.FilterAppointment:
		a, err := t.store.DeleteAppointment(index)
		if err != nil {
			return nil, err
		}
		deleted = a
	default:
		return nil, notTracked(item)
	}
	return deleted, nil
}

// History renders the full history for item. "all" joins every kind.
func (t *Tracker) History(item string) (string, error) {
	if err := validation.ValidateFilter(item); err != nil {
		return "", err
	}

	switch item = strings.ToLower(item); item {
	case validation.FilterBmi:
		return t.store.ShowBmiHistory(), nil
	case validation.FilterPeriod:
		return t.store.ShowPeriodHistory(), nil
	case validation.FilterAppointment:
		return t.store.ShowAppointmentList(), nil
	case validation.FilterAll:
		var sb strings.Builder
		sb.WriteString("BMI:\n")
		sb.WriteString(t.store.ShowBmiHistory())
		sb.WriteString("Periods:\n")
		sb.WriteString(t.store.ShowPeriodHistory())
		sb.WriteString("Appointments:\n")
		sb.WriteString(t.store.ShowAppointmentList())
		return sb.String(), nil
	default:
		return "", notTracked(item)
	}
}

// Latest returns the most recent entry for item. Appointments report the
// earliest upcoming entry, which is the head of the sorted list.
func (t *Tracker) Latest(item string) (fmt.Stringer, error) {
	if err := validation.ValidateFilter(item); err != nil {
		return nil, err
	}

	switch item = strings.ToLower(item); item {
	case validation.FilterBmi:
		if t.store.BmisSize() == 0 {
			return nil, fmt.Errorf("bmi: %w", ErrEmpty)
		}
		return t.store.CurrentBmi(), nil
	case validation.FilterPeriod:
		if t.store.PeriodsSize() == 0 {
			return nil, fmt.Errorf("period: %w", ErrEmpty)
		}
		return t.store.LatestPeriod(), nil
	case validation.FilterAppointment:
		appts := t.store.Appointments()
		if len(appts) == 0 {
			return nil, fmt.Errorf("appointment: %w", ErrEmpty)
		}
		return appts[0], nil
	default:
		return nil, notTracked(item)
	}
}

// Prediction is a next-period forecast.
type Prediction struct {
	Date         time.Time
	CycleLength  int
	FromDefault  bool
	DaysUntil    int
	LatestPeriod *health.Period
}

// Predict forecasts the next period relative to today.
func (t *Tracker) Predict() (*Prediction, error) {
	latest := t.store.LatestCycle()
	if latest == nil {
		return nil, fmt.Errorf("period: %w", ErrEmpty)
	}
	next, _ := t.store.PredictNextPeriodStartDate()
	avg, ok := t.store.AverageCycleLength()
	if !ok {
		avg = health.DefaultCycleLength
	}

	now := time.Now
	if t.validator.Now != nil {
		now = t.validator.Now
	}
	return &Prediction{
		Date:         next,
		CycleLength:  avg,
		FromDefault:  !ok,
		DaysUntil:    health.DaysBetween(health.Today(now()), next),
		LatestPeriod: latest,
	}, nil
}

func (p *Prediction) String() string {
	date := health.FormatDate(p.Date)
	switch {
	case p.DaysUntil > 0:
		return fmt.Sprintf("Your next cycle's predicted start date is %s, in %d days.", date, p.DaysUntil)
	case p.DaysUntil == 0:
		return fmt.Sprintf("Your next cycle is predicted to start today, %s.", date)
	default:
		return fmt.Sprintf("Your next cycle's predicted start date was %s, %d days ago.", date, -p.DaysUntil)
	}
}

func notTracked(item string) error {
	return health.Invalidf("%s entries are not tracked by pulse", item)
}
