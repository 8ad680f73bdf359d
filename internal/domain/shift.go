package domain

import (
	"math"
	"time"
)

type ShiftStatus string

const (
	ShiftActive    ShiftStatus = "active"
	ShiftCompleted ShiftStatus = "completed"
	ShiftOvertime  ShiftStatus = "overtime"
)

const DateKeyLayout = "2006-01-02"

func DateKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DateKeyLayout)
}

// ClosingStatus is the status of a shift clocked out after durationMin
// minutes against a limit.
func ClosingStatus(durationMin int64, limit time.Duration) ShiftStatus {
	if durationMin > int64(limit/time.Minute) {
		return ShiftOvertime
	}
	return ShiftCompleted
}

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func HoursFromMinutes(min int64) float64 {
	return Round2(float64(min) / 60)
}

func Hours(d time.Duration) float64 {
	return Round2(d.Hours())
}
