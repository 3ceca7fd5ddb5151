package collector

import (
	"fmt"

	"github.com/afroash/roomsim/internal/models"
)

// Collector is a listener that keeps every event it is notified with, in
// arrival order. It is not safe for concurrent use.
type Collector struct {
	events      []models.Event
	totalPushed int64
}

// New creates an empty collector
func New() *Collector {
	return &Collector{}
}

// Notify implements notify.Listener
func (c *Collector) Notify(event models.Event) {
	c.events = append(c.events, event)
	c.totalPushed++
}

// Events returns a copy of every stored event in arrival order
func (c *Collector) Events() []models.Event {
	result := make([]models.Event, len(c.events))
	copy(result, c.events)
	return result
}

// Size returns the number of stored events
func (c *Collector) Size() int {
	return len(c.events)
}

// IsEmpty reports whether no events are stored
func (c *Collector) IsEmpty() bool {
	return len(c.events) == 0
}

// Clear removes all stored events. The lifetime count is kept.
func (c *Collector) Clear() {
	c.events = nil
}

// TotalPushed returns the number of events received since creation
func (c *Collector) TotalPushed() int64 {
	return c.totalPushed
}

// String returns something like "Collector[3456 events, 6912 total]"
func (c *Collector) String() string {
	return fmt.Sprintf("Collector[%d events, %d total]", len(c.events), c.totalPushed)
}
