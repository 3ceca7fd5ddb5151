package stats

import (
	"math"

	"github.com/afroash/roomsim/internal/models"
)

// TemperatureStats summarises a room's temperature readings
type TemperatureStats struct {
	Count int     `json:"readings"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Avg   float64 `json:"avg"`
	Range float64 `json:"range"`
}

// OccupancyStats summarises a room's occupancy readings
type OccupancyStats struct {
	Count         int     `json:"readings"`
	OccupiedCount int     `json:"occupied_count"`
	EmptyCount    int     `json:"empty_count"`
	Rate          float64 `json:"occupancy_rate"`
}

// LightStats summarises a room's light level readings
type LightStats struct {
	Count int     `json:"readings"`
	Min   int     `json:"min"`
	Max   int     `json:"max"`
	Avg   float64 `json:"avg"`
	Range int     `json:"range"`
}

// RoomStatistics holds the per-kind statistics for one room.
// A nil entry means the room had no readings of that kind.
type RoomStatistics struct {
	Room          string            `json:"room"`
	TotalReadings int               `json:"total_readings"`
	Temperature   *TemperatureStats `json:"temperature,omitempty"`
	Occupancy     *OccupancyStats   `json:"occupancy,omitempty"`
	Light         *LightStats       `json:"light,omitempty"`
}

// Aggregate computes statistics for each room in rooms, in that order.
// If rooms is empty, the rooms are taken from the events in order of first
// appearance.
func Aggregate(events []models.Event, rooms []string) []RoomStatistics {
	byRoom := make(map[string][]models.Event)
	var seen []string
	for _, e := range events {
		if _, ok := byRoom[e.Room]; !ok {
			seen = append(seen, e.Room)
		}
		byRoom[e.Room] = append(byRoom[e.Room], e)
	}
	if len(rooms) == 0 {
		rooms = seen
	}

	result := make([]RoomStatistics, 0, len(rooms))
	for _, room := range rooms {
		result = append(result, ForRoom(room, byRoom[room]))
	}
	return result
}

// ForRoom computes the statistics of one room from its events.
// Events belonging to other rooms are ignored.
func ForRoom(room string, events []models.Event) RoomStatistics {
	var temps, occupancy, light []float64
	total := 0
	for _, e := range events {
		if e.Room != room {
			continue
		}
		total++
		switch e.Kind {
		case models.KindTemperature:
			temps = append(temps, e.Value)
		case models.KindOccupancy:
			occupancy = append(occupancy, e.Value)
		case models.KindLight:
			light = append(light, e.Value)
		}
	}

	return RoomStatistics{
		Room:          room,
		TotalReadings: total,
		Temperature:   Temperature(temps),
		Occupancy:     Occupancy(occupancy),
		Light:         Light(light),
	}
}

// Temperature summarises temperature values. Returns nil for no values.
func Temperature(values []float64) *TemperatureStats {
	if len(values) == 0 {
		return nil
	}
	lo, hi, sum := minMaxSum(values)
	return &TemperatureStats{
		Count: len(values),
		Min:   lo,
		Max:   hi,
		Avg:   Round(sum/float64(len(values)), 2),
		Range: Round(hi-lo, 2),
	}
}

// Occupancy summarises 0/1 occupancy values. Returns nil for no values.
func Occupancy(values []float64) *OccupancyStats {
	if len(values) == 0 {
		return nil
	}
	_, _, sum := minMaxSum(values)
	occupied := int(sum)
	return &OccupancyStats{
		Count:         len(values),
		OccupiedCount: occupied,
		EmptyCount:    len(values) - occupied,
		Rate:          Round(float64(occupied)/float64(len(values)), 3),
	}
}

// Light summarises integral light values. Returns nil for no values.
func Light(values []float64) *LightStats {
	if len(values) == 0 {
		return nil
	}
	lo, hi, sum := minMaxSum(values)
	return &LightStats{
		Count: len(values),
		Min:   int(lo),
		Max:   int(hi),
		Avg:   Round(sum/float64(len(values)), 1),
		Range: int(hi) - int(lo),
	}
}

// LightProfile compares daylight ([6, 18]) and dark light levels
type LightProfile struct {
	DaySamples   int     `json:"day_samples"`
	NightSamples int     `json:"night_samples"`
	DayMean      float64 `json:"day_mean"`
	NightMean    float64 `json:"night_mean"`
}

// DayNightLight averages the light events of a run by time of day.
// Means are 0 when there are no samples on that side.
func DayNightLight(events []models.Event) LightProfile {
	var p LightProfile
	var daySum, nightSum float64
	for _, e := range events {
		if e.Kind != models.KindLight {
			continue
		}
		if e.Hour < 6 || e.Hour > 18 {
			nightSum += e.Value
			p.NightSamples++
		} else {
			daySum += e.Value
			p.DaySamples++
		}
	}
	if p.DaySamples > 0 {
		p.DayMean = Round(daySum/float64(p.DaySamples), 1)
	}
	if p.NightSamples > 0 {
		p.NightMean = Round(nightSum/float64(p.NightSamples), 1)
	}
	return p
}

// Round rounds v to the given number of decimal places, halves away from zero
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func minMaxSum(values []float64) (lo, hi, sum float64) {
	lo, hi = values[0], values[0]
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
		sum += v
	}
	return lo, hi, sum
}
