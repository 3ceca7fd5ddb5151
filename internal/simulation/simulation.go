package simulation

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/afroash/roomsim/internal/collector"
	"github.com/afroash/roomsim/internal/models"
	"github.com/afroash/roomsim/internal/notify"
	"github.com/afroash/roomsim/internal/room"
	"github.com/afroash/roomsim/internal/sensor"
	"github.com/afroash/roomsim/internal/stats"
)

// Schedule of one simulated day: 288 steps of 5 minutes
const (
	TotalSteps          = 288
	StepDurationMinutes = 5
	TotalHours          = 24

	// progress is logged every progressEvery steps (2 simulated hours)
	progressEvery = 24
)

// ErrEventCount is returned when a run collects a different number of events
// than steps × rooms × sensors
var ErrEventCount = errors.New("unexpected number of collected events")

// DefaultRooms is the fixed room roster
var DefaultRooms = []models.RoomConfig{
	{ID: "Living Room", BaseTemperature: 22.0},
	{ID: "Bedroom", BaseTemperature: 18.0},
	{ID: "Kitchen", BaseTemperature: 21.0},
	{ID: "Study", BaseTemperature: 20.0},
}

// Result is the outcome of one run
type Result struct {
	Metadata   models.Metadata        `json:"simulation_metadata"`
	Events     []models.Event         `json:"-"`
	Statistics []stats.RoomStatistics `json:"room_statistics"`
}

// Simulation drives every room through one simulated day
type Simulation struct {
	rooms     []models.RoomConfig
	bundles   []*room.Bundle
	collector *collector.Collector
	logger    zerolog.Logger
}

// New creates the room bundles for DefaultRooms and attaches a shared
// collector to all of them. Every sensor draws from rng; a nil rng uses a
// randomly seeded source.
func New(rng sensor.Rand, logger zerolog.Logger) *Simulation {
	if rng == nil {
		rng = sensor.NewRandomRand()
	}

	s := &Simulation{
		rooms:     DefaultRooms,
		collector: collector.New(),
		logger:    logger,
	}
	for _, cfg := range s.rooms {
		b := room.NewBundle(cfg, rng)
		b.RegisterListener(s.collector)
		s.bundles = append(s.bundles, b)
	}
	return s
}

// HourAt maps a step index to the simulated hour of day
func HourAt(step int) float64 {
	minutes := float64(step * StepDurationMinutes)
	return math.Mod(minutes/60, TotalHours)
}

// Rooms returns the room roster
func (s *Simulation) Rooms() []models.RoomConfig {
	return s.rooms
}

// Collector returns the collector shared by all rooms
func (s *Simulation) Collector() *collector.Collector {
	return s.collector
}

// RegisterListener attaches an extra listener to every room.
// Listeners registered after the collector see each event after it.
// Returns false if l is nil or not comparable.
func (s *Simulation) RegisterListener(l notify.Listener) bool {
	if !notify.Comparable(l) {
		return false
	}
	for _, b := range s.bundles {
		b.RegisterListener(l)
	}
	return true
}

// UnregisterListener detaches a listener from every room
func (s *Simulation) UnregisterListener(l notify.Listener) {
	for _, b := range s.bundles {
		b.UnregisterListener(l)
	}
}

// Metadata describes the run so far
func (s *Simulation) Metadata() models.Metadata {
	return models.Metadata{
		TotalSteps:          TotalSteps,
		StepDurationMinutes: StepDurationMinutes,
		TotalDurationHours:  TotalHours,
		Rooms:               models.RoomIDs(s.rooms),
		TotalReadings:       s.collector.Size(),
	}
}

// Run steps through the whole day, reading every room at every step, and
// aggregates the collected events. The collector is cleared first so the
// result covers exactly one day; sensor state carries over between runs.
func (s *Simulation) Run() (*Result, error) {
	s.collector.Clear()

	s.logger.Info().
		Int("total_steps", TotalSteps).
		Int("step_minutes", StepDurationMinutes).
		Int("rooms", len(s.rooms)).
		Msg("Starting simulation")

	for step := 0; step < TotalSteps; step++ {
		hour := HourAt(step)
		for _, b := range s.bundles {
			if _, err := b.ReadAll(hour); err != nil {
				return nil, fmt.Errorf("step %d: %w", step, err)
			}
		}

		if step%progressEvery == 0 {
			s.logger.Debug().
				Int("step", step).
				Float64("hour", hour).
				Int("readings", s.collector.Size()).
				Msg("Simulation progress")
		}
	}

	want := TotalSteps * len(s.rooms) * len(models.Kinds)
	if got := s.collector.Size(); got != want {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrEventCount, got, want)
	}

	events := s.collector.Events()
	result := &Result{
		Metadata:   s.Metadata(),
		Events:     events,
		Statistics: stats.Aggregate(events, models.RoomIDs(s.rooms)),
	}

	s.logger.Info().
		Int("steps", TotalSteps).
		Int("readings", len(events)).
		Stringer("collector", s.collector).
		Msg("Simulation complete")

	return result, nil
}
