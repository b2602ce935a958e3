package routines

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/liftlog/internal/middleware"
	"github.com/2beens/liftlog/internal/telemetry/tracing"
	"github.com/2beens/liftlog/internal/workout"
	"github.com/2beens/liftlog/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=routines_test

type routinesService interface {
	List(ctx context.Context, userID int) ([]workout.Routine, error)
	Get(ctx context.Context, userID, id int) (*workout.Routine, error)
	Save(ctx context.Context, userID int, routine workout.Routine) (*workout.Routine, error)
	SetActive(ctx context.Context, userID, id int) error
	Delete(ctx context.Context, userID, id int) error
	Export(ctx context.Context, userID int) ([]byte, string, error)
	Suggest(ctx context.Context, userID int, query string, limit int) ([]string, error)
}

type Handler struct {
	service routinesService
}

func NewHandler(service routinesService) *Handler {
	return &Handler{
		service: service,
	}
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router) {
	routinesRouter := mainRouter.PathPrefix("/routines").Subrouter()
	routinesRouter.HandleFunc("", handler.HandleList).Methods("GET", "OPTIONS").Name("routines-list")
	routinesRouter.HandleFunc("", handler.HandleCreate).Methods("POST", "OPTIONS").Name("routines-create")
	routinesRouter.HandleFunc("/export", handler.HandleExport).Methods("GET", "OPTIONS").Name("routines-export")
	routinesRouter.HandleFunc("/{id:[0-9]+}", handler.HandleGet).Methods("GET", "OPTIONS").Name("routines-get")
	routinesRouter.HandleFunc("/{id:[0-9]+}", handler.HandleUpdate).Methods("PUT", "OPTIONS").Name("routines-update")
	routinesRouter.HandleFunc("/{id:[0-9]+}", handler.HandleDelete).Methods("DELETE", "OPTIONS").Name("routines-delete")
	routinesRouter.HandleFunc("/{id:[0-9]+}/activate", handler.HandleActivate).Methods("POST", "OPTIONS").Name("routines-activate")

	mainRouter.HandleFunc("/exercises/suggestions", handler.HandleSuggestions).Methods("GET", "OPTIONS").Name("exercises-suggestions")
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "routinesHandler.list")
	defer span.End()

	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	routines, err := handler.service.List(ctx, userID)
	if err != nil {
		writeServiceError(w, "list routines", err)
		return
	}
	if routines == nil {
		routines = []workout.Routine{}
	}

	pkg.WriteJSON(w, routines, http.StatusOK)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "routinesHandler.get")
	defer span.End()

	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}
	id, err := routineID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	span.SetAttributes(attribute.Int("id", id))

	routine, err := handler.service.Get(ctx, userID, id)
	if err != nil {
		writeServiceError(w, "get routine", err)
		return
	}

	pkg.WriteJSON(w, routine, http.StatusOK)
}

func (handler *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "routinesHandler.create")
	defer span.End()

	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	var routine workout.Routine
	if err := json.NewDecoder(r.Body).Decode(&routine); err != nil {
		log.Errorf("create routine, unmarshal json: %s", err)
		http.Error(w, "invalid routine", http.StatusBadRequest)
		return
	}
	routine.ID = 0

	saved, err := handler.service.Save(ctx, userID, routine)
	if err != nil {
		writeServiceError(w, "create routine", err)
		return
	}

	span.SetAttributes(attribute.Int("id", saved.ID))
	pkg.WriteJSON(w, saved, http.StatusCreated)
}

func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "routinesHandler.update")
	defer span.End()

	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}
	id, err := routineID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	span.SetAttributes(attribute.Int("id", id))

	var routine workout.Routine
	if err := json.NewDecoder(r.Body).Decode(&routine); err != nil {
		log.Errorf("update routine, unmarshal json: %s", err)
		http.Error(w, "invalid routine", http.StatusBadRequest)
		return
	}
	routine.ID = id

	saved, err := handler.service.Save(ctx, userID, routine)
	if err != nil {
		writeServiceError(w, "update routine", err)
		return
	}

	pkg.WriteJSON(w, saved, http.StatusOK)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "routinesHandler.delete")
	defer span.End()

	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}
	id, err := routineID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	span.SetAttributes(attribute.Int("id", id))

	if err := handler.service.Delete(ctx, userID, id); err != nil {
		writeServiceError(w, "delete routine", err)
		return
	}

	pkg.WriteTextResponseOK(w, "deleted")
}

func (handler *Handler) HandleActivate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "routinesHandler.activate")
	defer span.End()

	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}
	id, err := routineID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	span.SetAttributes(attribute.Int("id", id))

	if err := handler.service.SetActive(ctx, userID, id); err != nil {
		writeServiceError(w, "activate routine", err)
		return
	}

	pkg.WriteTextResponseOK(w, "activated")
}

func (handler *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "routinesHandler.export")
	defer span.End()

	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	data, filename, err := handler.service.Export(ctx, userID)
	if err != nil {
		writeServiceError(w, "export routines", err)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, data)
}

func (handler *Handler) HandleSuggestions(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "routinesHandler.suggestions")
	defer span.End()

	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	limit := DefaultSuggestionLimit
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		parsed, err := strconv.Atoi(limitParam)
		if err != nil || parsed <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	names, err := handler.service.Suggest(ctx, userID, r.URL.Query().Get("q"), limit)
	if err != nil {
		writeServiceError(w, "exercise suggestions", err)
		return
	}
	if names == nil {
		names = []string{}
	}

	pkg.WriteJSON(w, names, http.StatusOK)
}

func routineID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		return 0, errors.New("invalid routine id")
	}
	return id, nil
}

// writeServiceError maps service errors to response codes. Only unexpected ones are logged.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	var validationErr *workout.ValidationError
	switch {
	case errors.As(err, &validationErr):
		http.Error(w, validationErr.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrRoutineNotFound):
		http.Error(w, "routine not found", http.StatusNotFound)
	case errors.Is(err, ErrActivationConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		log.Errorf("%s: %s", op, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
