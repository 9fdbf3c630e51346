// Package calendar lays appointments out on a month grid.
package calendar

import (
	"sort"
	"time"

	"estate-booking/internal/models"
)

type Cell struct {
	Date         string               `json:"date"`
	InMonth      bool                 `json:"inMonth"`
	Appointments []models.Appointment `json:"appointments"`
}

type Week [7]Cell

// Month returns the weeks covering year/month. Every week starts on
// weekStart; leading and trailing days of the neighbouring months are
// included with InMonth unset. Each cell lists its appointments by start time.
func Month(year int, month time.Month, appointments []models.Appointment, weekStart time.Weekday) []Week {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	offset := (int(first.Weekday()) - int(weekStart) + 7) % 7
	start := first.AddDate(0, 0, -offset)

	byDate := make(map[string][]models.Appointment)
	for _, a := range appointments {
		byDate[a.Date] = append(byDate[a.Date], a)
	}
	for _, list := range byDate {
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].BookedTime.From < list[j].BookedTime.From
		})
	}

	var weeks []Week
	for day := start; !day.After(last); {
		var w Week
		for i := range w {
			date := day.Format(models.DateLayout)
			list := byDate[date]
			if list == nil {
				list = []models.Appointment{}
			}
			w[i] = Cell{
				Date:         date,
				InMonth:      day.Month() == month,
				Appointments: list,
			}
			day = day.AddDate(0, 0, 1)
		}
		weeks = append(weeks, w)
	}

	return weeks
}
