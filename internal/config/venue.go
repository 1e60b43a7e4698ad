package config

import (
	"fmt"
	"time"
	_ "time/tzdata"

	"lanebook/internal/availability"
)

// Venue describes the single bowling center served by this instance.
type Venue struct {
	Name                  string `yaml:"name"`
	Timezone              string `yaml:"timezone" validate:"required"`
	Lanes                 int    `yaml:"lanes" validate:"gte=1,lte=64"`
	SlotMinutes           int    `yaml:"slot_minutes" validate:"gte=5,lte=240"`
	WeekStart             string `yaml:"week_start" validate:"omitempty,oneof=monday sunday Monday Sunday"`
	StatsExcludeCancelled bool   `yaml:"stats_exclude_cancelled"`
}

func (v *Venue) applyDefaults() {
	if v.Timezone == "" {
		v.Timezone = "Local"
	}
	if v.Lanes == 0 {
		v.Lanes = 3
	}
	if v.SlotMinutes == 0 {
		v.SlotMinutes = 60
	}
	if v.WeekStart == "" {
		v.WeekStart = "monday"
	}
}

// Validate checks settings beyond struct tags.
func (v *Venue) Validate() error {
	if _, err := time.LoadLocation(v.Timezone); err != nil {
		return fmt.Errorf("venue.timezone: unknown zone %q", v.Timezone)
	}
	if _, ok := availability.ParseWeekStart(v.WeekStart); !ok {
		return fmt.Errorf("venue.week_start: must be monday or sunday, got %q", v.WeekStart)
	}
	if (24*60)%v.SlotMinutes != 0 {
		return fmt.Errorf("venue.slot_minutes: %d does not divide a day evenly", v.SlotMinutes)
	}
	return nil
}

// Location returns the venue time zone. Validate has already proven it loads.
func (v *Venue) Location() *time.Location {
	loc, err := time.LoadLocation(v.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// FirstWeekday returns the configured first day of the week.
func (v *Venue) FirstWeekday() time.Weekday {
	d, _ := availability.ParseWeekStart(v.WeekStart)
	return d
}

// LaneNumbers returns 1..Lanes.
func (v *Venue) LaneNumbers() []int {
	lanes := make([]int, v.Lanes)
	for i := range lanes {
		lanes[i] = i + 1
	}
	return lanes
}

func (v *Venue) String() string {
	return fmt.Sprintf("Venue %q: %d lanes, %d-minute slots, week starts %s, tz %s",
		v.Name, v.Lanes, v.SlotMinutes, v.WeekStart, v.Timezone)
}
