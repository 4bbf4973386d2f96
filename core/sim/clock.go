package sim

import "time"

// Clock is the simulation calendar. One timestep is one day.
type Clock struct {
	start     time.Time
	current   time.Time
	timestep  int
	timesteps int
}

// NewClock starts at midnight UTC of start and runs for timesteps days.
func NewClock(start time.Time, timesteps int) *Clock {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	return &Clock{start: s, current: s, timesteps: timesteps}
}

// Current returns the date of the current timestep.
func (c *Clock) Current() time.Time { return c.current }

// Timestep returns the index of the current day.
func (c *Clock) Timestep() int { return c.timestep }

// Timesteps returns the length of the simulation.
func (c *Clock) Timesteps() int { return c.timesteps }

// Done reports whether every timestep has been simulated.
func (c *Clock) Done() bool { return c.timestep >= c.timesteps }

// YearStart reports whether the current day is January 1st.
func (c *Clock) YearStart() bool { return c.current.YearDay() == 1 }

// NextDay advances the calendar by one day.
func (c *Clock) NextDay() {
	c.timestep++
	c.current = c.start.AddDate(0, 0, c.timestep)
}
