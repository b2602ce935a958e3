package routines

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/liftlog/internal/telemetry/tracing"
	"github.com/2beens/liftlog/internal/workout"
)

const (
	suggestionsCacheExpire = 60 * 60 // seconds
	DefaultSuggestionLimit = 10
)

type namesSource interface {
	ExerciseNames(ctx context.Context, userID int) ([]string, error)
}

// Suggestions serves previously used exercise names for autocomplete.
// Names are cached per user and the cache is dropped whenever the user's routines change.
type Suggestions struct {
	cache  *freecache.Cache
	source namesSource
}

func NewSuggestions(source namesSource, cacheSizeMB int) *Suggestions {
	megabyte := 1024 * 1024
	return &Suggestions{
		cache:  freecache.NewCache(cacheSizeMB * megabyte),
		source: source,
	}
}

func (s *Suggestions) Suggest(ctx context.Context, userID int, query string, limit int) (_ []string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "suggestions.suggest")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	names, err := s.names(ctx, userID)
	if err != nil {
		return nil, err
	}
	return workout.MatchNames(names, query, limit), nil
}

func (s *Suggestions) Invalidate(userID int) {
	s.cache.Del(cacheKey(userID))
}

func (s *Suggestions) names(ctx context.Context, userID int) ([]string, error) {
	key := cacheKey(userID)
	if cached, err := s.cache.Get(key); err == nil {
		var names []string
		if err := json.Unmarshal(cached, &names); err == nil {
			log.Tracef("exercise names of user %d found in cache", userID)
			return names, nil
		} else {
			log.Errorf("unmarshal cached exercise names of user %d: %s", userID, err)
		}
	}

	names, err := s.source.ExerciseNames(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get exercise names: %w", err)
	}
	workout.SortNames(names)

	namesJson, err := json.Marshal(names)
	if err != nil {
		log.Errorf("marshal exercise names of user %d: %s", userID, err)
		return names, nil
	}
	if err := s.cache.Set(key, namesJson, suggestionsCacheExpire); err != nil {
		log.Errorf("cache exercise names of user %d: %s", userID, err)
	}

	return names, nil
}

func cacheKey(userID int) []byte {
	return []byte("names::" + strconv.Itoa(userID))
}
