package room

import (
	"fmt"

	"github.com/afroash/roomsim/internal/models"
	"github.com/afroash/roomsim/internal/notify"
	"github.com/afroash/roomsim/internal/sensor"
)

// Bundle groups one sensor of each kind for a single room
type Bundle struct {
	config      models.RoomConfig
	temperature *sensor.Sensor
	occupancy   *sensor.Sensor
	light       *sensor.Sensor
}

// NewBundle creates the temperature, occupancy and light sensors for a room.
// All three draw from rng.
func NewBundle(config models.RoomConfig, rng sensor.Rand) *Bundle {
	if rng == nil {
		rng = sensor.NewRandomRand()
	}
	return &Bundle{
		config:      config,
		temperature: sensor.NewTemperature(config.ID, config.BaseTemperature, rng),
		occupancy:   sensor.NewOccupancy(config.ID, rng),
		light:       sensor.NewLight(config.ID, rng),
	}
}

// Config returns the room configuration
func (b *Bundle) Config() models.RoomConfig {
	return b.config
}

// Sensors returns the room's sensors in read order
func (b *Bundle) Sensors() []*sensor.Sensor {
	return []*sensor.Sensor{b.temperature, b.occupancy, b.light}
}

// RegisterListener registers l with every sensor in the room. Returns false,
// registering nothing, if l is nil or not comparable.
func (b *Bundle) RegisterListener(l notify.Listener) bool {
	if !notify.Comparable(l) {
		return false
	}
	for _, s := range b.Sensors() {
		s.Register(l)
	}
	return true
}

// UnregisterListener removes l from every sensor in the room
func (b *Bundle) UnregisterListener(l notify.Listener) {
	for _, s := range b.Sensors() {
		s.Unregister(l)
	}
}

// ReadAll reads temperature, occupancy and light, in that order, producing
// three notifications
func (b *Bundle) ReadAll(hour float64) (models.Snapshot, error) {
	temperature, err := b.temperature.Read(hour)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("read room %s: %w", b.config.ID, err)
	}
	occupancy, err := b.occupancy.Read(hour)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("read room %s: %w", b.config.ID, err)
	}
	light, err := b.light.Read(hour)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("read room %s: %w", b.config.ID, err)
	}

	return models.Snapshot{
		Room:        b.config.ID,
		Hour:        hour,
		Temperature: temperature,
		Occupancy:   int(occupancy),
		LightLevel:  int(light),
	}, nil
}
