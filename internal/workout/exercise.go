package workout

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

type Kind string

const (
	Strength Kind = "strength"
	Cardio   Kind = "cardio"
)

func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case Strength, "":
		return Strength, nil
	case Cardio:
		return Cardio, nil
	default:
		return "", &ValidationError{Field: "type", Message: fmt.Sprintf("unknown exercise type [%s]", s)}
	}
}

// Reps is either a single rep count (Min == Max) or a "min-max" range.
type Reps struct {
	Min int
	Max int
}

func SingleReps(n int) Reps {
	return Reps{Min: n, Max: n}
}

// ParseReps parses "10" or "8-12".
func ParseReps(s string) (Reps, error) {
	s = strings.TrimSpace(s)
	minPart, maxPart, isRange := strings.Cut(s, "-")

	minReps, err := strconv.Atoi(strings.TrimSpace(minPart))
	if err != nil {
		return Reps{}, &ValidationError{Field: "reps", Message: fmt.Sprintf("invalid reps [%s]", s)}
	}
	if !isRange {
		return SingleReps(minReps), nil
	}

	maxReps, err := strconv.Atoi(strings.TrimSpace(maxPart))
	if err != nil {
		return Reps{}, &ValidationError{Field: "reps", Message: fmt.Sprintf("invalid reps range [%s]", s)}
	}
	return Reps{Min: minReps, Max: maxReps}, nil
}

func (r Reps) IsZero() bool {
	return r.Min == 0 && r.Max == 0
}

func (r Reps) IsRange() bool {
	return r.Min != r.Max
}

func (r Reps) Valid() bool {
	return r.Min > 0 && r.Max >= r.Min
}

func (r Reps) String() string {
	if r.IsRange() {
		return fmt.Sprintf("%d-%d", r.Min, r.Max)
	}
	return strconv.Itoa(r.Min)
}

func (r Reps) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// UnmarshalJSON accepts both a number and a string ("10", "8-12").
func (r *Reps) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*r = SingleReps(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("reps must be a number or a string: %w", err)
	}
	if s == "" {
		*r = Reps{}
		return nil
	}

	parsed, err := ParseReps(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Exercise is a single activity assigned to one weekday of a routine.
// Weight is always in kilograms.
// IsCompleted and IsPR live on the device only and are never persisted by the backend.
type Exercise struct {
	ID        string  `json:"id"`
	RoutineID int     `json:"routineId,omitempty"`
	Name      string  `json:"name"`
	Type      Kind    `json:"type"`
	Sets      int     `json:"sets,omitempty"`
	Reps      Reps    `json:"reps"`
	Weight    float64 `json:"weight"`
	Duration  int     `json:"duration,omitempty"` // minutes
	Distance  float64 `json:"distance,omitempty"`
	Day       Day     `json:"day"`

	IsCompleted bool `json:"isCompleted,omitempty"`
	IsPR        bool `json:"isPR,omitempty"`
}

// NewLocalID generates a device-side id, replaced by the backend id once persisted.
func NewLocalID() string {
	return fmt.Sprintf("%d-%d", time.Now().UnixMilli(), rand.IntN(10000))
}

// SameContent reports whether two exercises carry the same user-entered data.
// Ids and device-only flags are ignored.
func (e Exercise) SameContent(other Exercise) bool {
	return e.Name == other.Name &&
		e.Type == other.Type &&
		e.Sets == other.Sets &&
		e.Reps == other.Reps &&
		e.Weight == other.Weight &&
		e.Duration == other.Duration &&
		e.Distance == other.Distance &&
		e.Day == other.Day
}

func (e Exercise) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return &ValidationError{Field: "name", Message: "exercise name is required"}
	}
	if !e.Day.Valid() {
		return &ValidationError{Field: "day", Message: fmt.Sprintf("exercise [%s] has unknown day [%s]", e.Name, e.Day)}
	}

	switch e.Type {
	case Strength:
		if e.Sets <= 0 {
			return &ValidationError{Field: "sets", Message: fmt.Sprintf("exercise [%s] needs a positive number of sets", e.Name)}
		}
		if !e.Reps.Valid() {
			return &ValidationError{Field: "reps", Message: fmt.Sprintf("exercise [%s] has invalid reps [%s]", e.Name, e.Reps)}
		}
		if e.Weight < 0 {
			return &ValidationError{Field: "weight", Message: fmt.Sprintf("exercise [%s] has negative weight", e.Name)}
		}
	case Cardio:
		if e.Duration < 0 || e.Distance < 0 {
			return &ValidationError{Field: "duration", Message: fmt.Sprintf("exercise [%s] has negative duration or distance", e.Name)}
		}
	default:
		return &ValidationError{Field: "type", Message: fmt.Sprintf("exercise [%s] has unknown type [%s]", e.Name, e.Type)}
	}

	return nil
}
