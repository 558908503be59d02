package server

import (
	"strconv"
	"strings"
	"time"
)

func parseOptionalInt(value string) (*int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := strconv.Atoi(trimmed)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// periodFromQuery reads year and month, each defaulting to the UTC month of now.
func periodFromQuery(rawYear, rawMonth string, now time.Time) (int, int, error) {
	now = now.UTC()
	year, month := now.Year(), int(now.Month())

	parsedYear, err := parseOptionalInt(rawYear)
	if err != nil {
		return 0, 0, newValidationError("year", "invalid_year", "year must be a number")
	}
	if parsedYear != nil {
		year = *parsedYear
	}

	parsedMonth, err := parseOptionalInt(rawMonth)
	if err != nil {
		return 0, 0, newValidationError("month", "invalid_month", "month must be a number")
	}
	if parsedMonth != nil {
		month = *parsedMonth
	}
	return year, month, nil
}
