// internal/sensor/sensor_test.go
package sensor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afroash/roomsim/internal/models"
)

// fakeRand replays fixed draws in a loop
type fakeRand struct {
	floats []float64
	ints   []int
	fi, ii int
}

func (f *fakeRand) Float64() float64 {
	v := f.floats[f.fi%len(f.floats)]
	f.fi++
	return v
}

func (f *fakeRand) IntN(n int) int {
	v := f.ints[f.ii%len(f.ints)]
	f.ii++
	return v
}

// recorder keeps every event it is notified with
type recorder struct {
	events []models.Event
}

func (r *recorder) Notify(e models.Event) { r.events = append(r.events, e) }

func allHours() []float64 {
	hours := make([]float64, 0, 288)
	for step := 0; step < 288; step++ {
		hours = append(hours, float64(step)*5/60)
	}
	return hours
}

func TestTemperatureSensor_Range(t *testing.T) {
	rng := NewRand(42)
	for _, base := range []float64{0, 18, 20, 22, 60} {
		s := NewTemperature("TestRoom", base, rng)
		rec := &recorder{}
		s.Register(rec)

		for _, hour := range allHours() {
			v, err := s.Read(hour)
			require.NoError(t, err, "Read(%v)", hour)
			assert.GreaterOrEqual(t, v, 15.0, "base %v hour %v", base, hour)
			assert.LessOrEqual(t, v, 45.0, "base %v hour %v", base, hour)
		}
		require.Len(t, rec.events, 288)
		for _, e := range rec.events {
			assert.Equal(t, models.KindTemperature, e.Kind)
			assert.Equal(t, "°C", e.Unit)
			assert.Equal(t, "TestRoom", e.Room)
		}
	}
}

func TestTemperatureSensor_NaNBase(t *testing.T) {
	s := NewTemperature("TestRoom", math.NaN(), NewRand(1))
	rec := &recorder{}
	s.Register(rec)

	_, err := s.Read(12)
	assert.ErrorIs(t, err, ErrInvariant)
	assert.Empty(t, rec.events, "a NaN reading must not reach listeners")
}

func TestTemperatureAt(t *testing.T) {
	tests := []struct {
		name  string
		hour  float64
		base  float64
		noise float64
		want  float64
	}{
		{"phase hour sits on base", 14, 20, 0, 20},
		{"curve maximum", 20, 20, 0, 35},
		{"curve minimum clamps to floor", 8, 20, 0, 15},
		{"half period back sits on base", 2, 20, 0, 20},
		{"hot room clamps to ceiling", 20, 30, 0.5, 45},
		{"rounded to 2dp", 14, 20, 0.123456, 20.12},
		{"negative noise", 14, 20, -0.5, 19.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, TemperatureAt(tt.hour, tt.base, tt.noise), 1e-9)
		})
	}
}

func TestOccupancyProbability(t *testing.T) {
	tests := []struct {
		hour float64
		want float64
	}{
		{0, 0.10},
		{2, 0.10},
		{5.999, 0.10},
		{6, 0.20},
		{12, 0.20},
		{16.999, 0.20},
		{17, 0.80},
		{21.999, 0.80},
		{22, 0.10},
		{23.917, 0.10},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, OccupancyProbability(tt.hour), "hour %v", tt.hour)
	}
}

func TestOccupancyProbability_CoversDay(t *testing.T) {
	for _, hour := range allHours() {
		assert.Contains(t, []float64{0.10, 0.20, 0.80}, OccupancyProbability(hour), "hour %v", hour)
	}
}

func TestOccupancySensor_Values(t *testing.T) {
	s := NewOccupancy("TestRoom", NewRand(7))
	rec := &recorder{}
	s.Register(rec)

	for _, hour := range []float64{2, 6, 12, 18, 22} {
		for i := 0; i < 10; i++ {
			v, err := s.Read(hour)
			require.NoError(t, err)
			assert.Contains(t, []float64{0, 1}, v)
		}
	}

	for _, e := range rec.events {
		require.NotNil(t, e.Occupied, "occupancy event missing occupied flag")
		assert.Equal(t, e.Value == 1, *e.Occupied, "occupied flag disagrees with value %v", e.Value)
		assert.Empty(t, e.Unit, "occupancy event should have no unit")
	}
}

func TestOccupancySensor_HoldCounter(t *testing.T) {
	// 0.05 < 0.10 at night -> occupied; 0.99 -> empty. IntN(7)=0 -> hold of 2.
	rng := &fakeRand{floats: []float64{0.05, 0.99}, ints: []int{0}}
	s := NewOccupancy("TestRoom", rng)

	want := []float64{1, 1, 1, 0, 0, 1}
	wantCounter := []int{2, 1, 0, 1, 0, 2}
	for i := range want {
		v, err := s.Read(3)
		require.NoError(t, err)
		assert.Equal(t, want[i], v, "read %d", i)
		assert.Equal(t, wantCounter[i], s.state.readingsUntilReevaluate, "read %d counter", i)
	}
}

func TestOccupancySensor_Persistence(t *testing.T) {
	s := NewOccupancy("TestRoom", NewRand(99))

	for i := 0; i < 5000; i++ {
		rerolls := s.state.readingsUntilReevaluate <= 0
		v, err := s.Read(19)
		require.NoError(t, err)
		if !rerolls || v != 1 {
			continue
		}

		k := s.state.readingsUntilReevaluate
		require.GreaterOrEqual(t, k, 2)
		require.LessOrEqual(t, k, 8)
		// the next k reads must stay occupied without re-rolling
		for j := 0; j < k; j++ {
			v, err := s.Read(3)
			require.NoError(t, err)
			require.Equal(t, 1.0, v, "read %d of %d in hold", j+1, k)
		}
		assert.Zero(t, s.state.readingsUntilReevaluate, "counter after hold")
	}
}

func TestOccupancySensor_BadHoldDraw(t *testing.T) {
	rng := &fakeRand{floats: []float64{0}, ints: []int{99}}
	s := NewOccupancy("TestRoom", rng)
	rec := &recorder{}
	s.Register(rec)

	_, err := s.Read(19)
	require.ErrorIs(t, err, ErrInvariant)
	assert.Empty(t, rec.events, "no event should be emitted when an invariant fails")
}

func TestLightAt(t *testing.T) {
	tests := []struct {
		name  string
		hour  float64
		noise float64
		want  int
	}{
		{"noon peak", 12, 0, 1023},
		{"noon peak clamps", 12, 30, 1023},
		{"dawn boundary is daylight", 6, 0, 0},
		{"dawn boundary with noise", 6, 25, 25},
		{"dusk boundary is daylight", 18, 29.9, 29},
		{"mid morning truncates", 9, 0.9, 512},
		{"night floor clamps", 3, -10, 0},
		{"night noise truncates", 5.99, 9.9, 9},
		{"just after dusk is dark", 18.01, 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LightAt(tt.hour, tt.noise))
		})
	}
}

func TestIsDaylight(t *testing.T) {
	tests := []struct {
		hour float64
		want bool
	}{
		{5.999, false},
		{6, true},
		{12, true},
		{18, true},
		{18.001, false},
		{0, false},
		{23.9, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsDaylight(tt.hour), "IsDaylight(%v)", tt.hour)

		wantNoise := darkNoise
		if tt.want {
			wantNoise = daylightNoise
		}
		assert.Equal(t, wantNoise, lightNoise(tt.hour), "lightNoise(%v)", tt.hour)
	}
}

func TestLightSensor_RangeAndDayNight(t *testing.T) {
	s := NewLight("TestRoom", NewRand(3))
	rec := &recorder{}
	s.Register(rec)

	for _, hour := range allHours() {
		v, err := s.Read(hour)
		require.NoError(t, err)
		assert.True(t, v >= 0 && v <= 1023 && v == math.Trunc(v), "light %v at hour %v is not an integer in [0, 1023]", v, hour)
	}

	var daySum, nightSum float64
	var dayN, nightN int
	for _, e := range rec.events {
		assert.Equal(t, "0-1023", e.Unit)
		if e.Hour < 6 || e.Hour > 18 {
			nightSum += e.Value
			nightN++
		} else {
			daySum += e.Value
			dayN++
		}
	}
	assert.Greater(t, daySum/float64(dayN), nightSum/float64(nightN), "day average should exceed night average")
}

func TestSensor_HourOutOfRange(t *testing.T) {
	sensors := []*Sensor{
		NewTemperature("TestRoom", 20, NewRand(1)),
		NewOccupancy("TestRoom", NewRand(1)),
		NewLight("TestRoom", NewRand(1)),
	}
	for _, s := range sensors {
		rec := &recorder{}
		s.Register(rec)
		for _, hour := range []float64{-0.5, 24, 30, math.NaN()} {
			_, err := s.Read(hour)
			assert.ErrorIs(t, err, ErrHourOutOfRange, "%s Read(%v)", s.Kind(), hour)
		}
		assert.Empty(t, rec.events, "%s emitted events for rejected reads", s.Kind())
	}
}

func TestSensor_ObserverNotifications(t *testing.T) {
	s := NewTemperature("NotificationTest", 20, NewRand(5))
	o1, o2 := &recorder{}, &recorder{}
	s.Register(o1)
	s.Register(o2)

	for i := 0; i < 3; i++ {
		_, err := s.Read(float64(i))
		require.NoError(t, err)
	}
	require.Len(t, o1.events, 3)
	require.Len(t, o2.events, 3)

	s.Unregister(o1)
	_, err := s.Read(3)
	require.NoError(t, err)

	assert.Len(t, o1.events, 3, "unregistered observer")
	assert.Len(t, o2.events, 4, "remaining observer")
	assert.Equal(t, 1, s.Listeners())
}

func TestSensor_ReturnsNotifiedValue(t *testing.T) {
	s := NewLight("TestRoom", NewRand(11))
	rec := &recorder{}
	s.Register(rec)

	v, err := s.Read(12.5)
	require.NoError(t, err)
	require.Len(t, rec.events, 1)
	assert.Equal(t, v, rec.events[0].Value)
	assert.Equal(t, 12.5, rec.events[0].Hour)
}

func TestNewRand_Deterministic(t *testing.T) {
	a, b := NewRand(123), NewRand(123)
	for i := 0; i < 10; i++ {
		require.Equal(t, a.Float64(), b.Float64(), "same seed should give the same sequence")
	}
}

func TestNewSensor_NilRand(t *testing.T) {
	s := NewLight("TestRoom", nil)
	_, err := s.Read(12)
	assert.NoError(t, err)
}
