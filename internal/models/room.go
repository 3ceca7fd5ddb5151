package models

// RoomConfig is the static configuration of one simulated room
type RoomConfig struct {
	ID              string  `json:"id" yaml:"id"`
	BaseTemperature float64 `json:"base_temperature" yaml:"base_temperature"`
}

// Snapshot is the combined result of reading every sensor in a room once
type Snapshot struct {
	Room        string  `json:"room"`
	Hour        float64 `json:"hour"`
	Temperature float64 `json:"temperature"`
	Occupancy   int     `json:"occupancy"`
	LightLevel  int     `json:"light_level"`
}

// Metadata describes a simulation run
type Metadata struct {
	TotalSteps          int      `json:"total_steps"`
	StepDurationMinutes int      `json:"step_duration_minutes"`
	TotalDurationHours  int      `json:"total_duration_hours"`
	Rooms               []string `json:"rooms"`
	TotalReadings       int      `json:"total_readings"`
}

// RoomIDs returns the IDs of the given rooms, in order
func RoomIDs(rooms []RoomConfig) []string {
	ids := make([]string, len(rooms))
	for i, r := range rooms {
		ids[i] = r.ID
	}
	return ids
}
