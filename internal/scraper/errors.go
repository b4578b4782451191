package scraper

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports that the requested race block is not on the page
	ErrNotFound = errors.New("race block not found")
	// ErrMalformedPage reports a race block without the expected tables
	ErrMalformedPage = errors.New("malformed page")
	// ErrMalformedRow reports a result row without the expected cells
	ErrMalformedRow = errors.New("malformed row")
	// ErrNoSchedule reports a year whose index page lists no race days
	ErrNoSchedule = errors.New("no schedule available for this year")
)

// NotFoundError carries the region and race number that were looked up
type NotFoundError struct {
	Region     string
	RaceNumber string
}

func (e *NotFoundError) Error() string {
	if e.RaceNumber == "" {
		return fmt.Sprintf("%v: region %q", ErrNotFound, e.Region)
	}
	return fmt.Sprintf("%v: region %q race %s", ErrNotFound, e.Region, e.RaceNumber)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

var (
	// ErrRiderCount reports a race whose merged entry count is not race.RidersPerRace
	ErrRiderCount = errors.New("unexpected rider count")
	// ErrNoResultTable reports a result page without a result table body
	ErrNoResultTable = errors.New("no result table")
)

// unwrapJoined splits an errors.Join result into its parts
func unwrapJoined(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}
