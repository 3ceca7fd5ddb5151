package storage

import (
	"errors"
	"fmt"
	"math"

	"github.com/afroash/roomsim/internal/models"
	"github.com/afroash/roomsim/internal/stats"
)

// ErrStatsMismatch is returned when the stored readings of a run do not
// aggregate to the statistics computed in memory
var ErrStatsMismatch = errors.New("stored readings disagree with run statistics")

type roomKind struct {
	room string
	kind models.Kind
}

// VerifyRun recomputes the per-room aggregates of a run in SQL and compares
// them with want
func (s *SQLiteStore) VerifyRun(runID string, want []stats.RoomStatistics) error {
	got, err := s.GetRoomStats(runID)
	if err != nil {
		return err
	}
	if err := VerifyRoomStats(got, want); err != nil {
		return fmt.Errorf("run %s: %w", runID, err)
	}
	return nil
}

// VerifyRoomStats checks count, min and max of every room and kind, and the
// occupied count derived from the occupancy average. Rows present on only one
// side are a mismatch.
func VerifyRoomStats(got []RoomKindStat, want []stats.RoomStatistics) error {
	byKey := make(map[roomKind]RoomKindStat, len(got))
	for _, g := range got {
		byKey[roomKind{g.Room, g.Kind}] = g
	}

	expected := 0
	for _, w := range want {
		if t := w.Temperature; t != nil {
			expected++
			if err := compare(byKey, w.Room, models.KindTemperature, t.Count, t.Min, t.Max); err != nil {
				return err
			}
		}
		if o := w.Occupancy; o != nil {
			expected++
			lo, hi := 0.0, 0.0
			if o.OccupiedCount > 0 {
				hi = 1
			}
			if o.EmptyCount == 0 {
				lo = 1
			}
			if err := compare(byKey, w.Room, models.KindOccupancy, o.Count, lo, hi); err != nil {
				return err
			}
			g := byKey[roomKind{w.Room, models.KindOccupancy}]
			if occupied := int(math.Round(g.AvgValue * float64(g.ReadingCount))); occupied != o.OccupiedCount {
				return fmt.Errorf("%w: %s occupancy: %d occupied readings stored, want %d",
					ErrStatsMismatch, w.Room, occupied, o.OccupiedCount)
			}
		}
		if l := w.Light; l != nil {
			expected++
			if err := compare(byKey, w.Room, models.KindLight, l.Count, float64(l.Min), float64(l.Max)); err != nil {
				return err
			}
		}
	}

	if len(got) != expected {
		return fmt.Errorf("%w: %d room/kind groups stored, want %d", ErrStatsMismatch, len(got), expected)
	}
	return nil
}

func compare(byKey map[roomKind]RoomKindStat, room string, kind models.Kind, count int, lo, hi float64) error {
	g, ok := byKey[roomKind{room, kind}]
	if !ok {
		return fmt.Errorf("%w: no %s readings stored for %s", ErrStatsMismatch, kind, room)
	}
	if g.ReadingCount != count {
		return fmt.Errorf("%w: %s %s: %d readings stored, want %d", ErrStatsMismatch, room, kind, g.ReadingCount, count)
	}
	if g.MinValue != lo || g.MaxValue != hi {
		return fmt.Errorf("%w: %s %s: stored range [%v, %v], want [%v, %v]",
			ErrStatsMismatch, room, kind, g.MinValue, g.MaxValue, lo, hi)
	}
	return nil
}
