// Package carousel is the date/slot picker over an availability window. It
// only tracks indexes; pixel positions belong to the presentation layer.
package carousel

import (
	"math"
	"time"

	"estate-booking/internal/models"
	"estate-booking/internal/slots"
)

type Carousel struct {
	dates    []models.DateSlots
	current  int
	selected int
	slot     string
}

// New builds a carousel over dates. Slot lists are normalised because the
// server's ordering is not relied upon.
func New(dates []models.DateSlots) *Carousel {
	own := make([]models.DateSlots, len(dates))
	for i, d := range dates {
		own[i] = models.DateSlots{Date: d.Date, Slots: slots.Normalize(d.Slots)}
	}

	return &Carousel{dates: own, selected: -1}
}

func (c *Carousel) Len() int {
	return len(c.dates)
}

func (c *Carousel) Dates() []models.DateSlots {
	return c.dates
}

func (c *Carousel) ScrollLeft() {
	c.current = max(0, c.current-1)
}

func (c *Carousel) ScrollRight() {
	c.current = min(max(len(c.dates)-1, 0), c.current+1)
}

// SyncScroll maps a manual scroll offset to the nearest date index.
func (c *Carousel) SyncScroll(offset, scrollWidth float64) {
	n := len(c.dates)
	if n == 0 || scrollWidth <= 0 {
		return
	}

	idx := int(math.Round(offset / (scrollWidth / float64(n))))
	c.current = min(max(idx, 0), n-1)
}

func (c *Carousel) CurrentIndex() int {
	return c.current
}

// CurrentMonth labels the date under the current index, e.g. "January 2025".
func (c *Carousel) CurrentMonth() string {
	if len(c.dates) == 0 {
		return ""
	}

	d, err := time.Parse(models.DateLayout, c.dates[c.current].Date)
	if err != nil {
		return ""
	}
	return d.Format("January 2006")
}

// SelectDate selects date i. Dates without slots cannot be selected.
func (c *Carousel) SelectDate(i int) bool {
	if i < 0 || i >= len(c.dates) || len(c.dates[i].Slots) == 0 {
		return false
	}

	if i != c.selected {
		c.slot = ""
	}
	c.selected = i
	return true
}

// SelectSlot selects a start time of the selected date.
func (c *Carousel) SelectSlot(start string) bool {
	if c.selected < 0 || !slots.Contains(c.dates[c.selected].Slots, start) {
		return false
	}

	c.slot = start
	return true
}

// Selection returns the chosen date and slot. Either may be empty.
func (c *Carousel) Selection() (date, slot string) {
	if c.selected < 0 {
		return "", ""
	}
	return c.dates[c.selected].Date, c.slot
}
