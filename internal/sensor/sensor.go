package sensor

import (
	"errors"
	"fmt"
	"math"

	"github.com/afroash/roomsim/internal/models"
	"github.com/afroash/roomsim/internal/notify"
)

var (
	// ErrHourOutOfRange is returned when a read is requested outside [0, 24)
	ErrHourOutOfRange = errors.New("simulated hour out of range")
	// ErrInvariant is returned when a sensor produces a value outside its domain
	ErrInvariant = errors.New("sensor invariant violated")
)

// occupancyState is the PIR hold-counter. Only the occupancy sensor's Read
// touches it.
type occupancyState struct {
	occupied                bool
	readingsUntilReevaluate int
}

// Sensor is one simulated sensor in a room. The kind is fixed at construction
// and selects the signal model used by Read.
type Sensor struct {
	kind            models.Kind
	room            string
	baseTemperature float64
	rng             Rand
	bus             notify.Bus
	state           occupancyState
}

// NewTemperature creates a temperature sensor for a room
func NewTemperature(room string, baseTemperature float64, rng Rand) *Sensor {
	return newSensor(models.KindTemperature, room, baseTemperature, rng)
}

// NewOccupancy creates a PIR motion sensor for a room
func NewOccupancy(room string, rng Rand) *Sensor {
	return newSensor(models.KindOccupancy, room, 0, rng)
}

// NewLight creates an ambient light sensor for a room
func NewLight(room string, rng Rand) *Sensor {
	return newSensor(models.KindLight, room, 0, rng)
}

func newSensor(kind models.Kind, room string, baseTemperature float64, rng Rand) *Sensor {
	if rng == nil {
		rng = NewRandomRand()
	}
	return &Sensor{
		kind:            kind,
		room:            room,
		baseTemperature: baseTemperature,
		rng:             rng,
	}
}

// Kind returns the sensor kind
func (s *Sensor) Kind() models.Kind { return s.kind }

// Room returns the room the sensor belongs to
func (s *Sensor) Room() string { return s.room }

// Register adds a listener for this sensor's events
func (s *Sensor) Register(l notify.Listener) bool { return s.bus.Register(l) }

// Unregister removes a listener
func (s *Sensor) Unregister(l notify.Listener) bool { return s.bus.Unregister(l) }

// Listeners returns the number of registered listeners
func (s *Sensor) Listeners() int { return s.bus.Len() }

// Read produces one reading for the simulated hour, notifies every listener
// with the resulting event and returns the value.
func (s *Sensor) Read(hour float64) (float64, error) {
	if math.IsNaN(hour) || hour < 0 || hour >= 24 {
		return 0, fmt.Errorf("%s sensor in %s: %w: %v", s.kind, s.room, ErrHourOutOfRange, hour)
	}

	var event models.Event
	switch s.kind {
	case models.KindTemperature:
		noise := uniform(s.rng, -temperatureNoise, temperatureNoise)
		event = models.NewTemperatureEvent(s.room, TemperatureAt(hour, s.baseTemperature, noise), hour)
	case models.KindOccupancy:
		occupied, err := s.readOccupancy(hour)
		if err != nil {
			return 0, err
		}
		event = models.NewOccupancyEvent(s.room, occupied, hour)
	case models.KindLight:
		half := lightNoise(hour)
		event = models.NewLightEvent(s.room, LightAt(hour, uniform(s.rng, -half, half)), hour)
	default:
		return 0, fmt.Errorf("%w: unknown sensor kind %q", ErrInvariant, s.kind)
	}

	if err := event.Validate(); err != nil {
		return 0, fmt.Errorf("%s sensor in %s: %w: %v", s.kind, s.room, ErrInvariant, err)
	}

	s.bus.Notify(event)
	return event.Value, nil
}

// readOccupancy advances the hold-counter and returns the occupancy state.
// When the counter has run out the state is re-rolled; an occupied roll holds
// for a random 2-8 further reads, an empty roll for one.
func (s *Sensor) readOccupancy(hour float64) (bool, error) {
	if s.state.readingsUntilReevaluate > 0 {
		s.state.readingsUntilReevaluate--
		return s.state.occupied, nil
	}

	s.state.occupied = s.rng.Float64() < OccupancyProbability(hour)
	if !s.state.occupied {
		s.state.readingsUntilReevaluate = 1
		return false, nil
	}

	hold := minHoldReadings + s.rng.IntN(maxHoldReadings-minHoldReadings+1)
	if hold < minHoldReadings || hold > maxHoldReadings {
		return false, fmt.Errorf("%w: hold of %d readings outside [%d, %d]", ErrInvariant, hold, minHoldReadings, maxHoldReadings)
	}
	s.state.readingsUntilReevaluate = hold
	return true, nil
}
