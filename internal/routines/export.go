package routines

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/2beens/liftlog/internal/workout"
)

// ExportFilename is the suggested file name for a backup made on day.
func ExportFilename(day time.Time) string {
	return fmt.Sprintf("workout_backup_%s.json", day.UTC().Format(time.DateOnly))
}

// MarshalExport renders the human-shareable backup: three comment lines
// followed by the indented JSON of the routines.
func MarshalExport(routines []workout.Routine, now time.Time) ([]byte, error) {
	if routines == nil {
		routines = []workout.Routine{}
	}

	routinesJson, err := json.MarshalIndent(routines, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal routines: %w", err)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "// Workout Tracker Backup - %s\n", now.UTC().Format(time.DateOnly))
	fmt.Fprintf(&buf, "// Filename: %s\n", ExportFilename(now))
	buf.WriteString("// Save this file with .json extension\n")
	buf.Write(routinesJson)
	return buf.Bytes(), nil
}
