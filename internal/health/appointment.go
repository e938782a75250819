// ABOUTME: Appointment record: date, time of day and a short description.
// ABOUTME: Appointments order by (date, time); duplicates are allowed.
package health

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MaxDescriptionLength caps an appointment description, in characters.
const MaxDescriptionLength = 100

// Appointment is a scheduled medical appointment.
type Appointment struct {
	ID          uuid.UUID
	Date        time.Time
	Time        TimeOfDay
	Description string
}

// NewAppointment builds an Appointment from validated date, HH:MM time
// and description strings.
func NewAppointment(date, clock, description string) (*Appointment, error) {
	d, err := ParseDate(date)
	if err != nil {
		return nil, err
	}
	t, err := ParseTimeOfDay(clock)
	if err != nil {
		return nil, err
	}
	return &Appointment{
		ID:          uuid.New(),
		Date:        d,
		Time:        t,
		Description: description,
	}, nil
}

// Before reports whether a sorts ahead of other.
func (a *Appointment) Before(other *Appointment) bool {
	if !a.Date.Equal(other.Date) {
		return a.Date.Before(other.Date)
	}
	return a.Time < other.Time
}

func (a *Appointment) String() string {
	return fmt.Sprintf("%s %s: %s", FormatDate(a.Date), a.Time, a.Description)
}
