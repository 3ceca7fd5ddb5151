package sensor

import (
	"math"

	"github.com/afroash/roomsim/internal/models"
)

// Temperature curve: sine shifted by 14h over a 24h period
const (
	temperaturePhaseHour = 14.0
	temperatureNoise     = 0.5
)

// Light curve: cosine peaking at noon, dark outside [dawnHour, duskHour]
const (
	dawnHour      = 6.0
	duskHour      = 18.0
	lightPeakHour = 12.0
	darkNoise     = 10.0
	daylightNoise = 30.0
)

// Occupancy dwell: once occupied, a room stays occupied for this many extra reads
const (
	minHoldReadings = 2
	maxHoldReadings = 8
)

// TemperatureAmplitude is half the span of the temperature domain. It does not
// depend on the room's base temperature.
const TemperatureAmplitude = (models.MaxTemperature - models.MinTemperature) / 2

// TemperatureAt computes a temperature reading for a room with the given base.
// noise is added before clamping. Bases far from 20°C push the unclamped
// curve outside the domain; the clamp absorbs it.
func TemperatureAt(hour, base, noise float64) float64 {
	sine := TemperatureAmplitude * math.Sin((hour-temperaturePhaseHour)*math.Pi/12)
	raw := base + sine + noise
	return roundTo(clamp(raw, models.MinTemperature, models.MaxTemperature), 2)
}

// OccupancyProbability returns the chance that a room is found occupied
// at the given hour. Bands are inclusive-lower, exclusive-upper.
func OccupancyProbability(hour float64) float64 {
	switch {
	case hour >= 22 || hour < 6: // night
		return 0.10
	case hour < 17: // 06:00-17:00, working hours
		return 0.20
	default: // 17:00-22:00, evening
		return 0.80
	}
}

// IsDaylight reports whether the hour falls in [6, 18]. Both ends are daylight.
func IsDaylight(hour float64) bool {
	return hour >= dawnHour && hour <= duskHour
}

// LightAt computes a light level from the hour and a noise term already
// drawn from the right range (see lightNoise).
// The result is clamped to [0, 1023] and truncated.
func LightAt(hour, noise float64) int {
	var raw float64
	if IsDaylight(hour) {
		cosine := math.Cos((hour - lightPeakHour) * math.Pi / 6)
		raw = (cosine+1)/2*models.MaxLight + noise
	} else {
		raw = models.MinLight + noise
	}
	return int(clamp(raw, models.MinLight, models.MaxLight))
}

// lightNoise returns the noise half-width for the hour: sensor floor noise in
// darkness, larger noise in daylight.
func lightNoise(hour float64) float64 {
	if IsDaylight(hour) {
		return daylightNoise
	}
	return darkNoise
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
