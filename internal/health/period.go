// ABOUTME: Period record with start/end dates and a store-owned cycle length.
// ABOUTME: Cycle length is set once, when the following period is added.
package health

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DefaultCycleLength is used for predictions when no cycle has completed.
const DefaultCycleLength = 28

// Period is one menstrual period.
//
// The cycle length is derived state owned by Store: it stays unset until
// the next period is added, at which point Store.AddPeriod fills it in on
// its own copy. Periods read back from a Store are snapshots.
type Period struct {
	ID    uuid.UUID
	start time.Time
	end   time.Time

	cycleLength int
	hasCycle    bool
}

// NewPeriod builds a Period from validated DD-MM-YYYY start and end dates.
func NewPeriod(start, end string) (*Period, error) {
	s, err := ParseDate(start)
	if err != nil {
		return nil, fmt.Errorf("start date: %w", err)
	}
	e, err := ParseDate(end)
	if err != nil {
		return nil, fmt.Errorf("end date: %w", err)
	}
	precondition(!s.After(e), "period start is after its end")
	return &Period{ID: uuid.New(), start: s, end: e}, nil
}

// StartDate returns the first day of the period.
func (p *Period) StartDate() time.Time { return p.start }

// EndDate returns the last day of the period.
func (p *Period) EndDate() time.Time { return p.end }

// Length is the number of days in the period, counting both ends.
func (p *Period) Length() int {
	return DaysBetween(p.start, p.end) + 1
}

// CycleLength reports the days from this period's start to the next
// period's start. ok is false until a later period has been added.
func (p *Period) CycleLength() (days int, ok bool) {
	return p.cycleLength, p.hasCycle
}

// NextCyclePrediction projects the next start date from this period's
// start using the given average cycle length.
func (p *Period) NextCyclePrediction(averageCycle int) time.Time {
	return p.start.AddDate(0, 0, averageCycle)
}

// clone returns a copy of p. Callers must hold the store's period lock.
func (p *Period) clone() *Period {
	c := *p
	return &c
}

func (p *Period) setCycleLength(nextStart time.Time) {
	p.cycleLength = DaysBetween(p.start, nextStart)
	p.hasCycle = true
}

func (p *Period) String() string {
	cycle := "NA"
	if days, ok := p.CycleLength(); ok {
		cycle = fmt.Sprintf("%d days", days)
	}
	return fmt.Sprintf("%s - %s, period length %d days, cycle length %s",
		FormatDate(p.start), FormatDate(p.end), p.Length(), cycle)
}
