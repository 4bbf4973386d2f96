package crew

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidScheduleConfiguration is matched by InvalidScheduleConfigurationError.
	ErrInvalidScheduleConfiguration = errors.New("invalid schedule configuration")
	// ErrQuantificationOverflow is matched by QuantificationOverflowError.
	ErrQuantificationOverflow = errors.New("quantification overflow")
)

// InvalidScheduleConfigurationError reports a work duration outside (0,24) hours.
type InvalidScheduleConfigurationError struct {
	CrewID    string
	Method    string
	WorkHours float64
}

func (e *InvalidScheduleConfigurationError) Error() string {
	return fmt.Sprintf("crew %s (%s): %v: %.2f work hours", e.CrewID, e.Method, ErrInvalidScheduleConfiguration, e.WorkHours)
}

func (e *InvalidScheduleConfigurationError) Unwrap() error { return ErrInvalidScheduleConfiguration }

// QuantificationOverflowError reports a measured rate that cannot be computed.
type QuantificationOverflowError struct {
	Rate       float64
	QuantError float64
}

func (e *QuantificationOverflowError) Error() string {
	return fmt.Sprintf("%v: rate %g with quantification error %g", ErrQuantificationOverflow, e.Rate, e.QuantError)
}

func (e *QuantificationOverflowError) Unwrap() error { return ErrQuantificationOverflow }
