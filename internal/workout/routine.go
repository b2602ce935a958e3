package workout

import (
	"cmp"
	"slices"
	"strings"
	"time"
)

// Routine is a named weekly plan owned by one user.
// TrainingDays + RestDays is always DaysInWeek.
type Routine struct {
	ID           int        `json:"id"`
	UserID       int        `json:"-"`
	Name         string     `json:"name"`
	IsActive     bool       `json:"isActive"`
	TrainingDays int        `json:"trainingDays"`
	RestDays     int        `json:"restDays"`
	CreatedAt    time.Time  `json:"createdAt"`
	Exercises    []Exercise `json:"exercises"`
}

func (r Routine) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return &ValidationError{Field: "name", Message: "routine name is required"}
	}
	for _, ex := range r.Exercises {
		if err := ex.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ExercisesOn returns the routine exercises assigned to day, in their stored order.
func (r Routine) ExercisesOn(day Day) []Exercise {
	var exercises []Exercise
	for _, ex := range r.Exercises {
		if ex.Day == day {
			exercises = append(exercises, ex)
		}
	}
	return exercises
}

// SortActiveFirst orders routines with the active one first,
// keeping the creation order for the rest.
func SortActiveFirst(routines []Routine) {
	slices.SortStableFunc(routines, func(a, b Routine) int {
		if a.IsActive != b.IsActive {
			if a.IsActive {
				return -1
			}
			return 1
		}
		return cmp.Compare(a.CreatedAt.UnixNano(), b.CreatedAt.UnixNano())
	})
}
