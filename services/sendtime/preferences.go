package sendtime

import (
	"strings"
	"time"
)

type hourRange struct {
	from int // inclusive
	to   int // exclusive
}

func (r hourRange) contains(hour int) bool {
	return hour >= r.from && hour < r.to
}

type slotPreference struct {
	hours    []hourRange
	weekdays []time.Weekday
}

func (p slotPreference) matchesHour(hour int) bool {
	for _, r := range p.hours {
		if r.contains(hour) {
			return true
		}
	}
	return false
}

func (p slotPreference) matchesDay(day time.Weekday) bool {
	if len(p.weekdays) == 0 {
		return day >= time.Monday && day <= time.Friday
	}
	for _, preferred := range p.weekdays {
		if preferred == day {
			return true
		}
	}
	return false
}

// personaPreferences capture when each buyer persona tends to engage.
var personaPreferences = map[string]slotPreference{
	"executive": {hours: []hourRange{{7, 9}, {17, 19}}},
	"manager":   {hours: []hourRange{{8, 10}, {16, 18}}},
	"technical": {hours: []hourRange{{10, 12}, {14, 16}}},
	"sales":     {hours: []hourRange{{8, 10}, {13, 15}}},
}

var defaultPreference = slotPreference{hours: []hourRange{{9, 11}, {14, 16}}}

// industryPreferences are coarser: typical working rhythm per industry.
var industryPreferences = map[string]slotPreference{
	"technology": {hours: []hourRange{{10, 12}}, weekdays: []time.Weekday{time.Tuesday, time.Wednesday, time.Thursday}},
	"finance":    {hours: []hourRange{{7, 9}}},
	"healthcare": {hours: []hourRange{{13, 15}}},
	"retail":     {hours: []hourRange{{11, 13}}},
	"education":  {hours: []hourRange{{9, 11}}},
}

func personaPreference(persona string) slotPreference {
	if pref, ok := personaPreferences[strings.ToLower(persona)]; ok {
		return pref
	}
	return defaultPreference
}

func industryPreference(industry string) slotPreference {
	if pref, ok := industryPreferences[strings.ToLower(industry)]; ok {
		return pref
	}
	return defaultPreference
}

func preferenceScore(pref slotPreference, slot time.Time) float64 {
	if !pref.matchesDay(slot.Weekday()) {
		return 0
	}
	if pref.matchesHour(slot.Hour()) {
		return 1
	}
	if slot.Hour() >= 8 && slot.Hour() < 18 {
		return 0.5
	}
	return 0
}

// inAvoidWindow lists the known-bad slots: weekends, very early or
// late hours, Monday morning and Friday afternoon.
func inAvoidWindow(slot time.Time) bool {
	day := slot.Weekday()
	hour := slot.Hour()

	switch {
	case day == time.Saturday || day == time.Sunday:
		return true
	case hour < 7 || hour >= 20:
		return true
	case day == time.Monday && hour < 10:
		return true
	case day == time.Friday && hour >= 15:
		return true
	}
	return false
}
