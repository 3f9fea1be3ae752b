package dashboard

import (
	"fmt"

	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/core/school"
)

// DayNames are the weekday names indexed by dayOfWeek, Monday being 1.
var DayNames = [...]string{"", "Понедельник", "Вторник", "Среда", "Четверг", "Пятница", "Суббота", "Воскресенье"}

// DaySchedule is the lessons of one weekday.
type DaySchedule struct {
	Day   int
	Name  string
	Items []school.ScheduleItem
}

// GroupByDay partitions items by weekday, Monday first. Days without lessons are skipped,
// items keep their order within a day and items outside 1..7 are dropped.
func GroupByDay(items []school.ScheduleItem) []DaySchedule {
	var byDay [8][]school.ScheduleItem
	for _, it := range items {
		if it.DayOfWeek < 1 || it.DayOfWeek > 7 {
			continue
		}
		byDay[it.DayOfWeek] = append(byDay[it.DayOfWeek], it)
	}

	days := make([]DaySchedule, 0)
	for day := 1; day <= 7; day++ {
		if len(byDay[day]) == 0 {
			continue
		}
		days = append(days, DaySchedule{Day: day, Name: DayNames[day], Items: byDay[day]})
	}
	return days
}

func FormatAverage(avg float64) string {
	return fmt.Sprintf("%.2f", avg)
}

// Tier is the colour band of a grade.
type Tier string

const (
	TierGood     Tier = "good"
	TierMiddling Tier = "middling"
	TierPoor     Tier = "poor"
)

func GradeTier(grade int) Tier {
	switch {
	case grade >= 4:
		return TierGood
	case grade == 3:
		return TierMiddling
	default:
		return TierPoor
	}
}

// RecentGrades returns the first n grades in load order.
func RecentGrades(grades []school.Grade, n int) []school.Grade {
	if n < 0 {
		n = 0
	}
	if len(grades) > n {
		return grades[:n]
	}
	return grades
}

// ClockHM trims the seconds off a "HH:MM:SS" time.
func ClockHM(t string) string {
	if len(t) == len("15:04:05") {
		return t[:5]
	}
	return t
}
