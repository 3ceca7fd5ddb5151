package storage

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afroash/roomsim/internal/models"
	"github.com/afroash/roomsim/internal/sensor"
	"github.com/afroash/roomsim/internal/simulation"
	"github.com/afroash/roomsim/internal/stats"
)

func TestVerifyRun_Matches(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()

	events := append(dayEvents("Study"), dayEvents("Bedroom")...)
	require.NoError(t, store.InsertBatch("run-1", events))

	want := stats.Aggregate(events, []string{"Study", "Bedroom"})
	assert.NoError(t, store.VerifyRun("run-1", want))
}

func TestVerifyRun_FullDay(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()

	sim := simulation.New(sensor.NewRand(11), zerolog.Nop())
	writer := NewBatchWriter(store, "run-1", DefaultBatchWriterConfig(), zerolog.Nop())
	require.True(t, sim.RegisterListener(writer))

	result, err := sim.Run()
	require.NoError(t, err)
	require.NoError(t, writer.Flush())

	assert.NoError(t, store.VerifyRun("run-1", result.Statistics))
}

func TestVerifyRun_Mismatch(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(t *testing.T, store *SQLiteStore)
	}{
		{"missing reading", func(t *testing.T, store *SQLiteStore) {
			_, err := store.db.Exec("DELETE FROM readings WHERE id = (SELECT MIN(id) FROM readings WHERE sensor_type = 'light')")
			require.NoError(t, err)
		}},
		{"changed maximum", func(t *testing.T, store *SQLiteStore) {
			_, err := store.db.Exec("UPDATE readings SET value = 31.0 WHERE sensor_type = 'temperature' AND value = 30.5")
			require.NoError(t, err)
		}},
		{"changed minimum", func(t *testing.T, store *SQLiteStore) {
			_, err := store.db.Exec("UPDATE readings SET value = 5 WHERE sensor_type = 'light' AND value = 4")
			require.NoError(t, err)
		}},
		{"flipped occupancy", func(t *testing.T, store *SQLiteStore) {
			_, err := store.db.Exec("UPDATE readings SET value = 0, occupied = 0 WHERE sensor_type = 'occupancy' AND hour = 12")
			require.NoError(t, err)
		}},
		{"extra room", func(t *testing.T, store *SQLiteStore) {
			require.NoError(t, store.InsertBatch("run-1", []models.Event{models.NewLightEvent("Attic", 3, 1)}))
		}},
		{"empty run", func(t *testing.T, store *SQLiteStore) {
			_, err := store.DeleteRun("run-1")
			require.NoError(t, err)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, cleanup := setupTestDB(t)
			defer cleanup()

			events := dayEvents("Study")
			require.NoError(t, store.InsertBatch("run-1", events))
			want := stats.Aggregate(events, []string{"Study"})

			tt.mutate(t, store)
			assert.ErrorIs(t, store.VerifyRun("run-1", want), ErrStatsMismatch)
		})
	}
}

func TestVerifyRoomStats_EmptyRoom(t *testing.T) {
	want := []stats.RoomStatistics{{Room: "Attic"}}
	assert.NoError(t, VerifyRoomStats(nil, want))

	got := []RoomKindStat{{Room: "Attic", Kind: models.KindLight, ReadingCount: 1}}
	assert.ErrorIs(t, VerifyRoomStats(got, want), ErrStatsMismatch)
}

func TestVerifyRoomStats_AllOccupied(t *testing.T) {
	events := []models.Event{
		models.NewOccupancyEvent("Study", true, 0),
		models.NewOccupancyEvent("Study", true, 1),
	}
	want := stats.Aggregate(events, nil)
	got := []RoomKindStat{{Room: "Study", Kind: models.KindOccupancy, MinValue: 1, MaxValue: 1, AvgValue: 1, ReadingCount: 2}}
	assert.NoError(t, VerifyRoomStats(got, want))
}
