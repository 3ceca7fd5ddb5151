package models

import (
	"fmt"
	"math"
)

// Kind identifies which sensor produced an event
type Kind string

const (
	KindTemperature Kind = "temperature"
	KindOccupancy   Kind = "occupancy"
	KindLight       Kind = "light"
)

// Kinds lists every sensor kind in room read order
var Kinds = []Kind{KindTemperature, KindOccupancy, KindLight}

// Units and value domains per kind
const (
	UnitCelsius = "°C"
	UnitLight   = "0-1023"

	MinTemperature = 15.0
	MaxTemperature = 45.0
	MinLight       = 0
	MaxLight       = 1023
)

// IsValid reports whether k is one of the known sensor kinds
func (k Kind) IsValid() bool {
	switch k {
	case KindTemperature, KindOccupancy, KindLight:
		return true
	}
	return false
}

// Event is the notification a sensor broadcasts every time it is read.
// Value is always a float64; occupancy and light values are integral.
type Event struct {
	Kind     Kind    `json:"sensor_type"`
	Room     string  `json:"room"`
	Value    float64 `json:"value"`
	Unit     string  `json:"unit,omitempty"`
	Occupied *bool   `json:"occupied,omitempty"`
	Hour     float64 `json:"hour"`
}

// NewTemperatureEvent creates a temperature event
func NewTemperatureEvent(room string, value, hour float64) Event {
	return Event{
		Kind:  KindTemperature,
		Room:  room,
		Value: value,
		Unit:  UnitCelsius,
		Hour:  hour,
	}
}

// NewOccupancyEvent creates an occupancy event with value 1 when occupied
func NewOccupancyEvent(room string, occupied bool, hour float64) Event {
	value := 0.0
	if occupied {
		value = 1
	}
	return Event{
		Kind:     KindOccupancy,
		Room:     room,
		Value:    value,
		Occupied: &occupied,
		Hour:     hour,
	}
}

// NewLightEvent creates a light level event
func NewLightEvent(room string, value int, hour float64) Event {
	return Event{
		Kind:  KindLight,
		Room:  room,
		Value: float64(value),
		Unit:  UnitLight,
		Hour:  hour,
	}
}

// IsOccupied returns the occupied flag, falling back to the value when the
// flag is missing (e.g. an event reloaded from a trimmed export)
func (e Event) IsOccupied() bool {
	if e.Occupied != nil {
		return *e.Occupied
	}
	return e.Value == 1
}

// Validate checks that the event carries a value inside its kind's domain
func (e Event) Validate() error {
	if e.Room == "" {
		return fmt.Errorf("event has no room")
	}
	if math.IsNaN(e.Hour) || e.Hour < 0 || e.Hour >= 24 {
		return fmt.Errorf("hour %v outside [0, 24)", e.Hour)
	}

	if math.IsNaN(e.Value) {
		return fmt.Errorf("%s value is NaN", e.Kind)
	}

	switch e.Kind {
	case KindTemperature:
		if e.Value < MinTemperature || e.Value > MaxTemperature {
			return fmt.Errorf("temperature %.2f%s outside [%.0f, %.0f]", e.Value, UnitCelsius, MinTemperature, MaxTemperature)
		}
	case KindOccupancy:
		if e.Value != 0 && e.Value != 1 {
			return fmt.Errorf("occupancy %v is not 0 or 1", e.Value)
		}
		if e.Occupied != nil && *e.Occupied != (e.Value == 1) {
			return fmt.Errorf("occupied flag %v disagrees with value %v", *e.Occupied, e.Value)
		}
	case KindLight:
		if e.Value < MinLight || e.Value > MaxLight {
			return fmt.Errorf("light level %v outside [%d, %d]", e.Value, MinLight, MaxLight)
		}
		if e.Value != math.Trunc(e.Value) {
			return fmt.Errorf("light level %v is not an integer", e.Value)
		}
	default:
		return fmt.Errorf("unknown sensor kind %q", e.Kind)
	}
	return nil
}

// String returns the event as a single log-friendly line
func (e Event) String() string {
	switch e.Kind {
	case KindOccupancy:
		return fmt.Sprintf("%s %s: %d (occupied=%t) at hour %.3f", e.Room, e.Kind, int(e.Value), e.IsOccupied(), e.Hour)
	case KindLight:
		return fmt.Sprintf("%s %s: %d %s at hour %.3f", e.Room, e.Kind, int(e.Value), e.Unit, e.Hour)
	default:
		return fmt.Sprintf("%s %s: %.2f%s at hour %.3f", e.Room, e.Kind, e.Value, e.Unit, e.Hour)
	}
}
