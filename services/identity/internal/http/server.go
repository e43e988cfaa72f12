package http

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Ariuko0507/huwaari/services/identity/internal/auth"
	"github.com/Ariuko0507/huwaari/services/identity/internal/config"
	"github.com/Ariuko0507/huwaari/services/identity/internal/model"
)

// Store is the persistence surface the handlers need; *repository.Store implements it.
type Store interface {
	GetAuthUserByEmail(ctx context.Context, email string) (model.AuthUser, error)
	GetAuthUserByID(ctx context.Context, userID string) (model.AuthUser, error)
	CreateAuthUser(ctx context.Context, user model.AuthUser) error
	DeleteAuthUser(ctx context.Context, userID string) error
	GetProfile(ctx context.Context, userID string) (model.Profile, error)
	UpsertProfile(ctx context.Context, profile model.Profile) error
	DeleteProfile(ctx context.Context, userID string) error
	UpsertTeacher(ctx context.Context, teacher model.Teacher) error
	ListUsers(ctx context.Context) ([]model.UserListItem, error)
	UpdateRole(ctx context.Context, userID, role string) error
	CreateRefreshSession(ctx context.Context, session model.RefreshSession) error
	GetRefreshSession(ctx context.Context, tokenHash string) (model.RefreshSession, error)
	RevokeRefreshSession(ctx context.Context, sessionID string, revokedAt time.Time) error
	RevokeRefreshSessionsByUser(ctx context.Context, userID string, revokedAt time.Time) error
}

type Server struct {
	cfg           config.Config
	store         Store
	logger        *zap.Logger
	validate      *validator.Validate
	jwtPrivateKey *rsa.PrivateKey
	jwtPublicKey  *rsa.PublicKey
	jwks          auth.KeySet
}

func NewServer(cfg config.Config, store Store, logger *zap.Logger) (*Server, error) {
	privateKey, err := auth.ParseRSAPrivateKey(cfg.JWTPrivateKey)
	if err != nil {
		return nil, err
	}
	publicKey, err := auth.ParseRSAPublicKey(cfg.JWTPublicKey)
	if err != nil {
		return nil, err
	}
	var retired *rsa.PublicKey
	if cfg.JWTRetiredPublicKey != "" {
		if retired, err = auth.ParseRSAPublicKey(cfg.JWTRetiredPublicKey); err != nil {
			return nil, err
		}
	}
	jwks, err := auth.PublishedKeys(publicKey, retired)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		cfg:           cfg,
		store:         store,
		logger:        logger,
		validate:      validator.New(),
		jwtPrivateKey: privateKey,
		jwtPublicKey:  publicKey,
		jwks:          jwks,
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
	r.Get("/.well-known/jwks.json", s.handleJWKS)

	r.Post("/auth/login", s.handleLogin)
	r.Post("/auth/refresh", s.handleRefresh)
	r.With(s.authMiddleware).Post("/auth/logout", s.handleLogout)
	r.With(s.authMiddleware).Get("/auth/me", s.handleGetMe)

	r.With(s.authMiddleware).Post("/admin/users", s.handleCreateUser)

	r.Route("/users", func(r chi.Router) {
		r.With(s.authMiddleware, s.requireAdmin).Get("/", s.handleListUsers)
		r.With(s.authMiddleware, s.requireAdmin).Patch("/{userID}/role", s.handleUpdateRole)
	})

	return r
}

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

// requireAdmin checks the stored profile role, not the token claim.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.isAdmin(r.Context(), claimsFromContext(r.Context())) {
			writeErrorMessage(w, http.StatusForbidden, "admin_only", "Forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) isAdmin(ctx context.Context, claims *auth.Claims) bool {
	if claims == nil {
		return false
	}
	profile, err := s.store.GetProfile(ctx, claims.UserID)
	if err != nil {
		return false
	}
	return profile.Role == model.RoleAdmin
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

type claimsKey struct{}

func claimsFromContext(ctx context.Context) *auth.Claims {
	value := ctx.Value(claimsKey{})
	claims, _ := value.(*auth.Claims)
	return claims
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

func (s *Server) handleJWKS(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=300")
	writeJSON(w, http.StatusOK, s.jwks)
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return ""
}
