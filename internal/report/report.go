package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/afroash/roomsim/internal/models"
	"github.com/afroash/roomsim/internal/stats"
)

const ruleWidth = 80

type printer struct {
	w       io.Writer
	heading func(a ...interface{}) string
	room    func(a ...interface{}) string
	err     error
}

// newPrinter colours headings only when useColor is set and color.NoColor
// allows it (a terminal without NO_COLOR)
func newPrinter(w io.Writer, useColor bool) *printer {
	heading := color.New(color.FgCyan, color.Bold)
	room := color.New(color.FgGreen)
	if !useColor {
		heading.DisableColor()
		room.DisableColor()
	}
	return &printer{
		w:       w,
		heading: heading.SprintFunc(),
		room:    room.SprintFunc(),
	}
}

func (p *printer) printf(format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) banner(title string) {
	rule := strings.Repeat("=", ruleWidth)
	p.printf("%s\n%s\n%s\n", rule, p.heading(title), rule)
}

// Write renders the run summary: metadata, one table row per room and a
// detailed block per room. Rooms without readings of a kind skip that block.
// Headings are coloured only if useColor is set and stdout supports it.
func Write(w io.Writer, meta models.Metadata, rooms []stats.RoomStatistics, useColor bool) error {
	p := newPrinter(w, useColor)

	p.banner("SIMULATION RESULTS SUMMARY")
	p.printf("\nSimulation Metadata:\n")
	p.printf("  Total Steps: %d\n", meta.TotalSteps)
	p.printf("  Step Duration: %d minutes\n", meta.StepDurationMinutes)
	p.printf("  Total Duration: %d hours\n", meta.TotalDurationHours)
	p.printf("  Rooms: %s\n", strings.Join(meta.Rooms, ", "))
	p.printf("  Total Readings: %d\n", meta.TotalReadings)

	p.printf("\n%-20s %-24s %-12s %-20s\n", "Room", "Temp (°C)", "Occupancy", "Light (0-1023)")
	p.printf("%s\n", strings.Repeat("-", ruleWidth))
	for _, s := range rooms {
		p.printf("%-20s %-24s %-12s %-20s\n", s.Room, temperatureCell(s.Temperature), occupancyCell(s.Occupancy), lightCell(s.Light))
	}

	p.printf("\n")
	p.banner("DETAILED ROOM STATISTICS")
	for _, s := range rooms {
		p.printf("\n%s:\n", p.room(s.Room))
		p.printf("  Total Readings: %d\n", s.TotalReadings)

		if t := s.Temperature; t != nil {
			p.printf("  Temperature:\n")
			p.printf("    Min: %v%s\n", t.Min, models.UnitCelsius)
			p.printf("    Max: %v%s\n", t.Max, models.UnitCelsius)
			p.printf("    Avg: %v%s\n", t.Avg, models.UnitCelsius)
			p.printf("    Range: %v%s\n", t.Range, models.UnitCelsius)
		}
		if o := s.Occupancy; o != nil {
			p.printf("  Occupancy:\n")
			p.printf("    Occupied: %d readings (%s)\n", o.OccupiedCount, percent(o.Rate))
			p.printf("    Empty: %d readings (%s)\n", o.EmptyCount, percent(1-o.Rate))
		}
		if l := s.Light; l != nil {
			p.printf("  Light Level:\n")
			p.printf("    Min: %d\n", l.Min)
			p.printf("    Max: %d\n", l.Max)
			p.printf("    Avg: %.0f\n", l.Avg)
			p.printf("    Range: %d\n", l.Range)
		}
	}

	return p.err
}

func temperatureCell(t *stats.TemperatureStats) string {
	if t == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f-%.1f (avg %v)", t.Min, t.Max, t.Avg)
}

func occupancyCell(o *stats.OccupancyStats) string {
	if o == nil {
		return "n/a"
	}
	return percent(o.Rate)
}

func lightCell(l *stats.LightStats) string {
	if l == nil {
		return "n/a"
	}
	return fmt.Sprintf("%d-%d (avg %.0f)", l.Min, l.Max, l.Avg)
}

func percent(rate float64) string {
	return fmt.Sprintf("%.1f%%", rate*100)
}
