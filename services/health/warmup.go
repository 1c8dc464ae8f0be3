package health

import (
	"github.com/customeros/outreachstack/internal/enum"
)

const warmupReferenceVolume = 1000

// warmupSchedule maps the elapsed warmup day (1-based) to the target
// daily volume, ramping 10 to 1000 across thirty days. Days beyond the
// table use the configured maximum.
var warmupSchedule = []int{
	10, 15, 20, 30, 40, 50, 60, // days 1-7
	80, 100, 120, 150, 180, 220, 260, // days 8-14
	300, 350, 400, 450, 500, 550, 600, // days 15-21
	650, 700, 750, 800, 850, 900, 950, 975, 1000, // days 22-30
}

// scheduleForDay is a pure lookup. A non-positive day maps to day one.
// Volumes scale proportionally when the configured ceiling differs from
// the reference 1000.
func scheduleForDay(day, maxDailyVolume int) int {
	if maxDailyVolume <= 0 {
		maxDailyVolume = warmupReferenceVolume
	}
	if day < 1 {
		day = 1
	}
	if day > len(warmupSchedule) {
		return maxDailyVolume
	}

	volume := warmupSchedule[day-1]
	if maxDailyVolume != warmupReferenceVolume {
		volume = volume * maxDailyVolume / warmupReferenceVolume
		if volume < 1 {
			volume = 1
		}
	}
	return volume
}

func stageForDay(day int) enum.WarmupStage {
	switch {
	case day <= 7:
		return enum.WarmupStageNew
	case day <= 14:
		return enum.WarmupStageWarming
	case day <= 21:
		return enum.WarmupStageWarm
	default:
		return enum.WarmupStageEstablished
	}
}
