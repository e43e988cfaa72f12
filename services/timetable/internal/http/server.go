package http

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	identityv1 "github.com/Ariuko0507/huwaari/services/identity/identity/v1"
	"github.com/Ariuko0507/huwaari/services/timetable/internal/auth"
	"github.com/Ariuko0507/huwaari/services/timetable/internal/board"
	"github.com/Ariuko0507/huwaari/services/timetable/internal/clients"
	"github.com/Ariuko0507/huwaari/services/timetable/internal/config"
	"github.com/Ariuko0507/huwaari/services/timetable/internal/db"
	"github.com/Ariuko0507/huwaari/services/timetable/internal/operations"
)

const (
	roleAdmin   = "admin"
	roleTeacher = "teacher"
	roleStudent = "student"
)

// Store is the read side the handlers need; writes go through operations.
type Store interface {
	board.Source
	ListTeachers(ctx context.Context) ([]db.Teacher, error)
	ListRooms(ctx context.Context) ([]db.Room, error)
	ListSubjects(ctx context.Context) ([]db.Subject, error)
	Counts(ctx context.Context) (db.Counts, error)
}

type ProfileSource interface {
	GetProfile(ctx context.Context, userID string) (identityv1.Profile, error)
}

// IdentityAPI is the part of the identity HTTP API the portal proxies.
type IdentityAPI interface {
	Login(ctx context.Context, email, password string) (clients.Session, error)
	Logout(ctx context.Context, accessToken string) error
	CreateUser(ctx context.Context, accessToken string, req clients.CreateUserRequest) (string, error)
	ListUsers(ctx context.Context, accessToken string) ([]clients.User, error)
	UpdateRole(ctx context.Context, accessToken, userID, role string) error
}

type Dependencies struct {
	Store      Store
	Operations *operations.Service
	Profiles   ProfileSource
	Identity   IdentityAPI
	Cache      *board.Cache
	Publisher  operations.Publisher
}

type Server struct {
	cfg          config.Config
	store        Store
	ops          *operations.Service
	profiles     ProfileSource
	identity     IdentityAPI
	cache        *board.Cache
	publisher    operations.Publisher
	stats        *statsCache
	pages        *pageSet
	logger       *zap.Logger
	jwtPublicKey *rsa.PublicKey
}

func NewServer(cfg config.Config, deps Dependencies, logger *zap.Logger) (*Server, error) {
	publicKey, err := auth.ParseRSAPublicKey(cfg.JWTPublicKey)
	if err != nil {
		return nil, err
	}
	if deps.Store == nil || deps.Operations == nil || deps.Profiles == nil {
		return nil, errors.New("store, operations and profiles are required")
	}
	pages, err := loadPages()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		cfg:          cfg,
		store:        deps.Store,
		ops:          deps.Operations,
		profiles:     deps.Profiles,
		identity:     deps.Identity,
		cache:        deps.Cache,
		publisher:    deps.Publisher,
		stats:        newStatsCache(deps.Store),
		pages:        pages,
		logger:       logger,
		jwtPublicKey: publicKey,
	}, nil
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/static/*", staticHandler())

	s.apiRoutes(r)
	s.portalRoutes(r)

	return r
}

func (s *Server) apiRoutes(r chi.Router) {
	r.With(s.authMiddleware).Get("/schedule/board", s.handleBoard)

	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware, s.requireAdmin)

		r.Get("/classes", s.handleListClasses)
		r.Post("/classes", s.handleSaveClass)
		r.Patch("/classes/{id}", s.handleSaveClass)
		r.Delete("/classes/{id}", s.handleDelete(s.ops.DeleteClass))

		r.Get("/teachers", s.handleListTeachers)
		r.Post("/teachers", s.handleSaveTeacher)
		r.Patch("/teachers/{id}", s.handleSaveTeacher)
		r.Delete("/teachers/{id}", s.handleDelete(s.ops.DeleteTeacher))

		r.Get("/rooms", s.handleListRooms)
		r.Post("/rooms", s.handleSaveRoom)
		r.Patch("/rooms/{id}", s.handleSaveRoom)
		r.Delete("/rooms/{id}", s.handleDelete(s.ops.DeleteRoom))

		r.Get("/subjects", s.handleListSubjects)
		r.Post("/subjects", s.handleSaveSubject)
		r.Patch("/subjects/{id}", s.handleSaveSubject)
		r.Delete("/subjects/{id}", s.handleDelete(s.ops.DeleteSubject))

		r.Get("/schedules", s.handleListSchedules)
		r.Post("/schedules", s.handleSaveSchedule)
		r.Post("/schedules/check", s.handleCheckSchedule)
		r.Patch("/schedules/{id}", s.handleSaveSchedule)
		r.Delete("/schedules/{id}", s.handleDelete(s.ops.DeleteSchedule))

		r.Get("/stats", s.handleStats)
	})
}

// Auth

type claimsKey struct{}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeErrorMessage(w, http.StatusUnauthorized, "missing_token", "Unauthorized")
			return
		}
		claims, err := auth.ParseToken(s.jwtPublicKey, s.cfg.JWTIssuer, token)
		if err != nil {
			writeErrorMessage(w, http.StatusUnauthorized, "invalid_token", "Unauthorized")
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func claimsFromContext(ctx context.Context) *auth.Claims {
	value := ctx.Value(claimsKey{})
	claims, _ := value.(*auth.Claims)
	return claims
}

// requireAdmin resolves the caller's role through identity; the token claim
// alone is not trusted.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFromContext(r.Context())
		if claims == nil {
			writeErrorMessage(w, http.StatusUnauthorized, "missing_token", "Unauthorized")
			return
		}
		profile, err := s.profiles.GetProfile(r.Context(), claims.UserID)
		if err != nil || profile.Role != roleAdmin {
			writeErrorMessage(w, http.StatusForbidden, "forbidden", "Forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func decodeJSON(r *http.Request, out interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

func writeErrorMessage(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"error": code, "message": message})
}
