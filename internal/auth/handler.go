package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/liftlog/internal/middleware"
	"github.com/2beens/liftlog/internal/telemetry/metrics"
	"github.com/2beens/liftlog/internal/telemetry/tracing"
	"github.com/2beens/liftlog/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=auth_test

type usersRepo interface {
	Add(ctx context.Context, user User) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Delete(ctx context.Context, userID int) error
}

type sessionStore interface {
	Login(ctx context.Context, userID int, createdAt time.Time) (string, error)
	Logout(ctx context.Context, token string) (bool, error)
}

type LoginResponse struct {
	Token    string `json:"token"`
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
}

type Handler struct {
	usersRepo      usersRepo
	sessions       sessionStore
	metricsManager *metrics.Manager
	// called after the account and its data are gone, to drop per-user caches
	onAccountDeleted func(userID int)
}

func NewHandler(
	usersRepo usersRepo,
	sessions sessionStore,
	metricsManager *metrics.Manager,
	onAccountDeleted func(userID int),
) *Handler {
	if onAccountDeleted == nil {
		onAccountDeleted = func(int) {}
	}
	return &Handler{
		usersRepo:        usersRepo,
		sessions:         sessions,
		metricsManager:   metricsManager,
		onAccountDeleted: onAccountDeleted,
	}
}

func (handler *Handler) SetupRoutes(
	mainRouter *mux.Router,
	rateLimiter middleware.RequestRateLimiter,
	allowedPerMin int,
) {
	authRouter := mainRouter.PathPrefix("/a").Subrouter()
	authRouter.
		HandleFunc("/signup", handler.HandleSignup).
		Methods("POST", "OPTIONS").Name("signup")
	authRouter.
		HandleFunc("/login", handler.HandleLogin).
		Methods("POST", "OPTIONS").Name("login")
	authRouter.
		HandleFunc("/logout", handler.HandleLogout).
		Methods("GET", "OPTIONS").Name("logout")
	authRouter.
		HandleFunc("/account", handler.HandleDeleteAccount).
		Methods("DELETE", "OPTIONS").Name("account-delete")

	// rate limit the auth endpoints to slow down password guessing
	authRouter.Use(middleware.RateLimit(rateLimiter, "login", allowedPerMin, handler.metricsManager))
}

func (handler *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "authHandler.signup")
	defer span.End()

	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Errorf("signup, unmarshal json params: %s", err)
		http.Error(w, "signup failed", http.StatusBadRequest)
		return
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	passwordHash, err := pkg.HashPassword(req.Password)
	if errors.Is(err, pkg.ErrPasswordTooLong) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		log.Errorf("signup, hash password: %s", err)
		http.Error(w, "signup failed", http.StatusInternalServerError)
		return
	}

	user, err := handler.usersRepo.Add(ctx, User{
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: passwordHash,
	})
	if errors.Is(err, ErrUserExists) {
		http.Error(w, "user with that email already exists", http.StatusConflict)
		return
	}
	if err != nil {
		log.Errorf("signup, add user: %s", err)
		http.Error(w, "signup failed", http.StatusInternalServerError)
		return
	}

	span.SetAttributes(attribute.Int("user.id", user.ID))
	userBytes, err := json.Marshal(user)
	if err != nil {
		log.Errorf("signup, marshal user: %s", err)
		http.Error(w, "signup failed", http.StatusInternalServerError)
		return
	}

	log.Debugf("new user signed up: %d", user.ID)
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, userBytes, http.StatusCreated)
}

func (handler *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "authHandler.login")
	defer span.End()

	var creds Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		log.Errorf("login, unmarshal json params: %s", err)
		http.Error(w, "login failed", http.StatusBadRequest)
		return
	}

	req := SignupRequest{Email: creds.Email}
	req.Normalize()
	if req.Email == "" {
		http.Error(w, "error, email empty", http.StatusBadRequest)
		return
	}
	if creds.Password == "" {
		http.Error(w, "error, password empty", http.StatusBadRequest)
		return
	}

	user, err := handler.usersRepo.GetByEmail(ctx, req.Email)
	if errors.Is(err, ErrUserNotFound) {
		log.Tracef("[email] failed login attempt for: %s", req.Email)
		handler.metricsManager.CounterLoginFailures.Inc()
		http.Error(w, "error, wrong credentials", http.StatusUnauthorized)
		return
	}
	if err != nil {
		log.Errorf("login, get user: %s", err)
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}

	if !pkg.CheckPasswordHash(creds.Password, user.PasswordHash) {
		log.Tracef("[password] failed login attempt for user: %d", user.ID)
		handler.metricsManager.CounterLoginFailures.Inc()
		http.Error(w, "error, wrong credentials", http.StatusUnauthorized)
		return
	}

	token, err := handler.sessions.Login(ctx, user.ID, time.Now())
	if err != nil {
		log.Errorf("login failed, generate token error: %s", err)
		http.Error(w, "generate token error", http.StatusInternalServerError)
		return
	}

	respBytes, err := json.Marshal(LoginResponse{
		Token:    token,
		UserID:   user.ID,
		Username: user.Username,
	})
	if err != nil {
		log.Errorf("login, marshal response: %s", err)
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}

	log.Tracef("new login success for user %d", user.ID)
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, respBytes)
}

func (handler *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "authHandler.logout")
	defer span.End()

	authToken := middleware.AuthToken(r)
	if authToken == "" {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	loggedOut, err := handler.sessions.Logout(ctx, authToken)
	if err != nil {
		log.Errorf("[failed logout] => %s: %s", r.URL.Path, err)
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}
	if !loggedOut {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	pkg.WriteTextResponseOK(w, "logged-out")
}

func (handler *Handler) HandleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "authHandler.deleteAccount")
	defer span.End()

	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}
	span.SetAttributes(attribute.Int("user.id", userID))

	if err := handler.usersRepo.Delete(ctx, userID); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		log.Errorf("delete account %d: %s", userID, err)
		http.Error(w, "delete account failed", http.StatusInternalServerError)
		return
	}

	if _, err := handler.sessions.Logout(ctx, middleware.AuthToken(r)); err != nil {
		log.Errorf("delete account %d, logout: %s", userID, err)
	}
	handler.onAccountDeleted(userID)

	log.Infof("account of user %d deleted", userID)
	pkg.WriteTextResponseOK(w, "account-deleted")
}
