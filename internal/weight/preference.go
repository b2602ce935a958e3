package weight

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=preference_mocks_test.go -package=weight_test

// PreferenceStore persists the unit preference on the device.
type PreferenceStore interface {
	GetWeightUnit(ctx context.Context) (string, error)
	SetWeightUnit(ctx context.Context, unit string) error
}

// Preference is the single process-wide holder of the user's weight unit.
// It is loaded once at startup and passed explicitly to whoever needs the unit.
type Preference struct {
	store PreferenceStore

	mu   sync.RWMutex
	unit Unit
}

func NewPreference(store PreferenceStore) *Preference {
	return &Preference{
		store: store,
		unit:  DefaultUnit,
	}
}

// Load reads the stored unit. Any failure, missing or unknown value falls back to the default unit.
func (p *Preference) Load(ctx context.Context) Unit {
	unit := DefaultUnit

	stored, err := p.store.GetWeightUnit(ctx)
	switch {
	case err != nil:
		log.Errorf("get weight unit preference: %s", err)
	case stored == "":
		log.Tracef("weight unit preference not set, using [%s]", DefaultUnit)
	default:
		parsed, err := ParseUnit(stored)
		if err != nil {
			log.Warnf("stored weight unit preference: %s", err)
		} else {
			unit = parsed
		}
	}

	p.mu.Lock()
	p.unit = unit
	p.mu.Unlock()

	return unit
}

func (p *Preference) Unit() Unit {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.unit
}

// Set persists unit and, on success, makes it the current one.
// Failures are logged and reported as false, the previous unit stays in effect.
func (p *Preference) Set(ctx context.Context, unit Unit) bool {
	if _, err := ParseUnit(string(unit)); err != nil {
		log.Errorf("save weight unit preference: %s", err)
		return false
	}

	if err := p.store.SetWeightUnit(ctx, string(unit)); err != nil {
		log.Errorf("save weight unit preference: %s", err)
		return false
	}

	p.mu.Lock()
	p.unit = unit
	p.mu.Unlock()

	return true
}
