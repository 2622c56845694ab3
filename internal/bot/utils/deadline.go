package utils

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/robalyx/overseer/internal/bot/constants"
	"github.com/robalyx/overseer/internal/database/service"
)

var (
	ErrInvalidDateFormat = errors.New("date must use the DD.MM.YYYY format")
	ErrInvalidDate       = errors.New("date does not exist")
)

var datePattern = regexp.MustCompile(`^\d{2}\.\d{2}\.\d{4}$`)

// ParseDeadline parses a DD.MM.YYYY date into 23:59:59 UTC of that day.
// The date must fall after the UTC date of now.
func ParseDeadline(input string, now time.Time) (time.Time, error) {
	input = strings.TrimSpace(input)
	if !datePattern.MatchString(input) {
		return time.Time{}, ErrInvalidDateFormat
	}

	date, err := time.ParseInLocation(constants.DateLayout, input, time.UTC)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}

	if !service.IsFutureDate(date, now) {
		return time.Time{}, service.ErrDeadlineNotFuture
	}

	return service.EndOfDay(date), nil
}

// FormatDate renders a deadline's calendar date. Deadlines are stored in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format(constants.DateLayout)
}

// DaysSince returns how many whole days passed between t and now.
func DaysSince(t, now time.Time) int {
	if now.Before(t) {
		return 0
	}
	return int(now.Sub(t) / (24 * time.Hour))
}
