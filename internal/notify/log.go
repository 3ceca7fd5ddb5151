package notify

import (
	"github.com/afroash/roomsim/internal/models"
	"github.com/rs/zerolog"
)

// LogListener writes every event it receives to a zerolog logger at debug level
type LogListener struct {
	logger zerolog.Logger
}

// NewLogListener creates a listener that logs events
func NewLogListener(logger zerolog.Logger) *LogListener {
	return &LogListener{logger: logger}
}

// Notify implements Listener
func (l *LogListener) Notify(event models.Event) {
	e := l.logger.Debug().
		Str("sensor_type", string(event.Kind)).
		Str("room", event.Room).
		Float64("value", event.Value).
		Float64("hour", event.Hour)
	if event.Unit != "" {
		e = e.Str("unit", event.Unit)
	}
	if event.Occupied != nil {
		e = e.Bool("occupied", *event.Occupied)
	}
	e.Msg("sensor reading")
}
