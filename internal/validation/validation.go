// ABOUTME: Stateless input validation for dates, times, records and filters.
// ABOUTME: Each check fails fast with a health.ErrInsufficientInput or ErrInvalidInput.
package validation

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/harperreed/pulse/internal/health"
)

const (
	minDay, maxDay         = 1, 31
	minMonth, maxMonth     = 1, 12
	minHours, maxHours     = 0, 23
	minMinutes, maxMinutes = 0, 59

	// Run times accept 1..60 for both minutes and seconds.
	minRunUnit, maxRunUnit = 1, 60
)

// Filter tokens accepted by ValidateFilter.
const (
	FilterRun         = "run"
	FilterGym         = "gym"
	FilterBmi         = "bmi"
	FilterPeriod      = "period"
	FilterAppointment = "appointment"
	FilterAll         = "all"
)

var filters = []string{FilterRun, FilterGym, FilterBmi, FilterPeriod, FilterAppointment, FilterAll}

var (
	dateRe        = regexp.MustCompile(`^\d{2}-\d{2}-\d{4}$`)
	timeRe        = regexp.MustCompile(`^\d{2}:\d{2}$`)
	runTimeRe     = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}$`)
	twoDecimalRe  = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)
	positiveIntRe = regexp.MustCompile(`^[1-9]\d*$`)
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// BmiInput holds the raw fields of a BMI entry.
type BmiInput struct {
	Height string `validate:"required"`
	Weight string `validate:"required"`
	Date   string `validate:"required"`
}

// PeriodInput holds the raw fields of a period entry.
type PeriodInput struct {
	Start string `validate:"required"`
	End   string `validate:"required"`
}

// AppointmentInput holds the raw fields of an appointment.
type AppointmentInput struct {
	Date        string `validate:"required"`
	Time        string `validate:"required"`
	Description string `validate:"required"`
}

// DeleteInput holds the raw fields of a delete request.
type DeleteInput struct {
	Item  string `validate:"required"`
	Index string `validate:"required"`
}

// Validator runs the record-level checks against a clock.
type Validator struct {
	// Now returns the current time; future-date rules compare against it.
	Now func() time.Time
}

// New returns a Validator using the wall clock.
func New() *Validator {
	return &Validator{Now: time.Now}
}

var defaultValidator = New()

func (v *Validator) today() time.Time {
	now := time.Now
	if v.Now != nil {
		now = v.Now
	}
	return health.Today(now())
}

// ValidateDate checks a DD-MM-YYYY string. Days are only checked against
// 1..31, so "31-02-2024" passes.
func ValidateDate(date string) error {
	if !dateRe.MatchString(date) {
		return health.Invalidf("invalid date %q, use DD-MM-YYYY", date)
	}
	parts := strings.Split(date, "-")
	day, _ := strconv.Atoi(parts[0])
	month, _ := strconv.Atoi(parts[1])

	if day < minDay || day > maxDay {
		return health.Invalidf("day must be between %02d and %02d", minDay, maxDay)
	}
	if month < minMonth || month > maxMonth {
		return health.Invalidf("month must be between %02d and %02d", minMonth, maxMonth)
	}
	return nil
}

// ValidateTime checks an HH:MM time of day.
func ValidateTime(clock string) error {
	if !timeRe.MatchString(clock) {
		return health.Invalidf("invalid time %q, use HH:MM", clock)
	}
	hh, mm, _ := strings.Cut(clock, ":")
	hours, _ := strconv.Atoi(hh)
	minutes, _ := strconv.Atoi(mm)

	if hours < minHours || hours > maxHours {
		return health.Invalidf("hours must be between %02d and %02d", minHours, maxHours)
	}
	if minutes < minMinutes || minutes > maxMinutes {
		return health.Invalidf("minutes must be between %02d and %02d", minMinutes, maxMinutes)
	}
	return nil
}

// ValidateRunTime checks an MM:SS or HH:MM:SS run duration. Minutes and
// seconds must lie in 1..60, and an explicit zero hours field is rejected.
func ValidateRunTime(duration string) error {
	if !timeRe.MatchString(duration) && !runTimeRe.MatchString(duration) {
		return health.Invalidf("invalid run time %q, use HH:MM:SS or MM:SS", duration)
	}
	parts := strings.Split(duration, ":")
	hours := -1
	if len(parts) == 3 {
		hours, _ = strconv.Atoi(parts[0])
		parts = parts[1:]
	}
	minutes, _ := strconv.Atoi(parts[0])
	seconds, _ := strconv.Atoi(parts[1])

	if minutes < minRunUnit || minutes > maxRunUnit {
		return health.Invalidf("minutes must be between %02d and %02d", minRunUnit, maxRunUnit)
	}
	if seconds < minRunUnit || seconds > maxRunUnit {
		return health.Invalidf("seconds must be between %02d and %02d", minRunUnit, maxRunUnit)
	}
	if hours == 0 {
		return health.Invalidf("hours cannot be 0, use MM:SS instead")
	}
	return nil
}

// ValidateBmi checks a BMI entry against the wall clock.
func ValidateBmi(in BmiInput) error {
	return defaultValidator.ValidateBmi(in)
}

// ValidateBmi checks a BMI entry: all fields present, height and weight
// positive with at most two decimals, and a date no later than today.
func (v *Validator) ValidateBmi(in BmiInput) error {
	if err := requireFields(in, "bmi"); err != nil {
		return err
	}
	if !isPositiveTwoDecimal(in.Height) || !isPositiveTwoDecimal(in.Weight) {
		return health.Invalidf("height and weight must be positive numbers with at most two decimal places")
	}
	if err := ValidateDate(in.Date); err != nil {
		return err
	}
	d, err := health.ParseDate(in.Date)
	if err != nil {
		return err
	}
	if d.After(v.today()) {
		return health.Invalidf("date %s is in the future", in.Date)
	}
	return nil
}

// ValidatePeriod checks a period entry against the wall clock.
func ValidatePeriod(in PeriodInput) error {
	return defaultValidator.ValidatePeriod(in)
}

// ValidatePeriod checks a period entry: both dates present and well
// formed, start not in the future, start not after end.
func (v *Validator) ValidatePeriod(in PeriodInput) error {
	if err := requireFields(in, "period"); err != nil {
		return err
	}
	if err := ValidateDate(in.Start); err != nil {
		return health.Invalidf("invalid start date: %s", reason(err))
	}
	if err := ValidateDate(in.End); err != nil {
		return health.Invalidf("invalid end date: %s", reason(err))
	}

	start, err := health.ParseDate(in.Start)
	if err != nil {
		return err
	}
	end, err := health.ParseDate(in.End)
	if err != nil {
		return err
	}
	if start.After(v.today()) {
		return health.Invalidf("start date %s is in the future", in.Start)
	}
	if start.After(end) {
		return health.Invalidf("end date %s is before start date %s", in.End, in.Start)
	}
	return nil
}

// ValidateAppointment checks an appointment: all fields present, date and
// time well formed, description within health.MaxDescriptionLength.
func ValidateAppointment(in AppointmentInput) error {
	if err := requireFields(in, "appointment"); err != nil {
		return err
	}
	if err := ValidateDate(in.Date); err != nil {
		return err
	}
	if err := ValidateTime(in.Time); err != nil {
		return err
	}
	if err := validate.Var(in.Description, "max="+strconv.Itoa(health.MaxDescriptionLength)); err != nil {
		return health.Invalidf("description must be at most %d characters", health.MaxDescriptionLength)
	}
	return nil
}

// ValidateFilter checks that token names a tracked category.
func ValidateFilter(token string) error {
	token = strings.ToLower(token)
	for _, f := range filters {
		if token == f {
			return nil
		}
	}
	return health.Invalidf("unknown item %q, use one of: %s", token, strings.Join(filters, ", "))
}

// ValidateDelete checks a delete request: item and index present, item a
// known category, index a positive integer.
func ValidateDelete(in DeleteInput) error {
	if err := requireFields(in, "delete"); err != nil {
		return err
	}
	if err := ValidateFilter(in.Item); err != nil {
		return err
	}
	if !positiveIntRe.MatchString(in.Index) {
		return health.Invalidf("index %q must be a positive integer", in.Index)
	}
	return nil
}

func isPositiveTwoDecimal(s string) bool {
	if !twoDecimalRe.MatchString(s) {
		return false
	}
	f, err := strconv.ParseFloat(s, 64)
	return err == nil && f > 0
}

// requireFields reports the first empty required field of in.
func requireFields(in any, kind string) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return health.Insufficientf("missing %s for %s", strings.ToLower(verrs[0].Field()), kind)
	}
	return health.Insufficientf("missing parameters for %s", kind)
}

// reason strips the error kind prefix so nested messages read cleanly.
func reason(err error) string {
	return strings.TrimPrefix(err.Error(), health.ErrInvalidInput.Error()+": ")
}
