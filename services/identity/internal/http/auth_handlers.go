package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/Ariuko0507/huwaari/services/identity/internal/auth"
	"github.com/Ariuko0507/huwaari/services/identity/internal/crypto"
	"github.com/Ariuko0507/huwaari/services/identity/internal/model"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	User         userSummary `json:"user"`
}

type userSummary struct {
	ID      string  `json:"id"`
	Email   string  `json:"email"`
	Role    string  `json:"role"`
	ClassID *string `json:"classId"`
}

func summaryFromProfile(profile model.Profile) userSummary {
	return userSummary{
		ID:      profile.ID,
		Email:   profile.Email,
		Role:    profile.Role,
		ClassID: profile.ClassID,
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		writeErrorMessage(w, http.StatusBadRequest, "missing_credentials", "Email and password are required")
		return
	}

	user, err := s.store.GetAuthUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			loginTotal.WithLabelValues("invalid_credentials").Inc()
			writeErrorMessage(w, http.StatusUnauthorized, "invalid_credentials", "Invalid login credentials")
			return
		}
		s.logger.Error("login lookup failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	if err := crypto.CheckPassword(user.PasswordHash, req.Password); err != nil {
		loginTotal.WithLabelValues("invalid_credentials").Inc()
		writeErrorMessage(w, http.StatusUnauthorized, "invalid_credentials", "Invalid login credentials")
		return
	}

	profile, err := s.store.GetProfile(r.Context(), user.ID)
	if err != nil {
		loginTotal.WithLabelValues("role_not_found").Inc()
		writeErrorMessage(w, http.StatusUnauthorized, "role_not_found", "No role assigned to this account")
		return
	}

	accessToken, refreshToken, err := s.issueTokens(r.Context(), profile, r.UserAgent(), clientIP(r))
	if err != nil {
		s.logger.Error("token issue failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "token_error")
		return
	}

	loginTotal.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, authResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         summaryFromProfile(profile),
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "missing_refresh_token")
		return
	}
	if !crypto.IsRefreshToken(req.RefreshToken) {
		writeError(w, http.StatusUnauthorized, "invalid_refresh_token")
		return
	}

	session, err := s.store.GetRefreshSession(r.Context(), crypto.HashToken(req.RefreshToken))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusUnauthorized, "invalid_refresh_token")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	if session.RevokedAt != nil || session.ExpiresAt.Before(time.Now().UTC()) {
		writeError(w, http.StatusUnauthorized, "refresh_token_expired")
		return
	}

	profile, err := s.store.GetProfile(r.Context(), session.UserID)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "role_not_found")
		return
	}

	if err := s.store.RevokeRefreshSession(r.Context(), session.ID, time.Now().UTC()); err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	accessToken, refreshToken, err := s.issueTokens(r.Context(), profile, r.UserAgent(), clientIP(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "token_error")
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         summaryFromProfile(profile),
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}

	if err := s.store.RevokeRefreshSessionsByUser(r.Context(), claims.UserID, time.Now().UTC()); err != nil {
		s.logger.Warn("logout revoke failed", zap.String("user_id", claims.UserID), zap.Error(err))
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}

	profile, err := s.store.GetProfile(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "user_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	writeJSON(w, http.StatusOK, summaryFromProfile(profile))
}

func (s *Server) issueTokens(ctx context.Context, profile model.Profile, userAgent, ip string) (string, string, error) {
	accessToken, err := auth.NewAccessToken(s.jwtPrivateKey, s.cfg.JWTIssuer, s.cfg.AccessTokenTTL, auth.Claims{
		UserID: profile.ID,
		Email:  profile.Email,
		Role:   profile.Role,
	})
	if err != nil {
		return "", "", err
	}

	refreshToken, err := crypto.NewRefreshToken()
	if err != nil {
		return "", "", err
	}

	now := time.Now().UTC()
	session := model.RefreshSession{
		ID:        uuid.NewString(),
		UserID:    profile.ID,
		TokenHash: crypto.HashToken(refreshToken),
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.RefreshTokenTTL),
	}
	if userAgent != "" {
		session.UserAgent = &userAgent
	}
	if ip != "" {
		session.IPAddress = &ip
	}

	if err := s.store.CreateRefreshSession(ctx, session); err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}
