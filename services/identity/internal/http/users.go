package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/Ariuko0507/huwaari/services/identity/internal/crypto"
	"github.com/Ariuko0507/huwaari/services/identity/internal/model"
	"github.com/Ariuko0507/huwaari/services/identity/internal/repository"
)

type createUserRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required"`
	Role     string  `json:"role" validate:"oneof=admin teacher student"`
	Name     string  `json:"name"`
	ClassID  *string `json:"classId" validate:"omitempty,uuid"`
}

type createUserResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

// handleCreateUser creates the auth identity, then the profile, then the
// teacher row for teachers. A failed later write removes what was created.
func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeErrorMessage(w, http.StatusUnauthorized, "missing_token", "Unauthorized")
		return
	}

	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if req.Role == "" {
		req.Role = model.RoleStudent
	}
	if req.ClassID != nil && strings.TrimSpace(*req.ClassID) == "" {
		req.ClassID = nil
	}

	if code, message := s.validateCreateUser(req); code != "" {
		writeErrorMessage(w, http.StatusBadRequest, code, message)
		return
	}

	if !s.isAdmin(r.Context(), claims) {
		writeErrorMessage(w, http.StatusForbidden, "admin_only", "Only admin can create users")
		return
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "password_hash_failed")
		return
	}

	now := time.Now().UTC()
	user := model.AuthUser{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateAuthUser(r.Context(), user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			writeErrorMessage(w, http.StatusConflict, "email_taken", "A user with this email address has already been registered")
			return
		}
		s.logger.Error("auth user create failed", zap.Error(err))
		writeErrorMessage(w, http.StatusBadRequest, "user_create_failed", "User create failed")
		return
	}

	profile := model.Profile{ID: user.ID, Email: user.Email, Role: req.Role}
	if req.Role == model.RoleStudent {
		profile.ClassID = req.ClassID
	}
	if err := s.store.UpsertProfile(r.Context(), profile); err != nil {
		s.logger.Error("profile create failed", zap.String("user_id", user.ID), zap.Error(err))
		s.rollbackCreatedUser(r.Context(), user.ID, false)
		writeErrorMessage(w, http.StatusBadRequest, "profile_create_failed", err.Error())
		return
	}

	if req.Role == model.RoleTeacher {
		teacher := model.Teacher{ID: user.ID, Name: teacherName(req.Name, req.Email), Email: req.Email}
		if err := s.store.UpsertTeacher(r.Context(), teacher); err != nil {
			s.logger.Error("teacher create failed", zap.String("user_id", user.ID), zap.Error(err))
			s.rollbackCreatedUser(r.Context(), user.ID, true)
			writeErrorMessage(w, http.StatusBadRequest, "teacher_create_failed", err.Error())
			return
		}
	}

	usersCreatedTotal.WithLabelValues(req.Role).Inc()
	s.logger.Info("user created", zap.String("user_id", user.ID), zap.String("role", req.Role), zap.String("by", claims.UserID))
	writeJSON(w, http.StatusOK, createUserResponse{Message: "User created", UserID: user.ID})
}

func (s *Server) validateCreateUser(req createUserRequest) (string, string) {
	if err := s.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return "invalid_request", err.Error()
		}
		for _, fe := range verrs {
			switch fe.Field() {
			case "Email":
				if fe.Tag() == "required" {
					return "missing_fields", "Email and password are required"
				}
				return "invalid_email", "Invalid email address"
			case "Password":
				return "missing_fields", "Email and password are required"
			case "Role":
				return "invalid_role", "Invalid role"
			case "ClassID":
				return "invalid_class_id", "Invalid class id"
			}
		}
		return "invalid_request", err.Error()
	}
	if len(req.Password) < s.cfg.MinPasswordLength {
		return "password_too_short", fmt.Sprintf("Password must be at least %d characters", s.cfg.MinPasswordLength)
	}
	return "", ""
}

// rollbackCreatedUser ignores cancellation of the request context.
func (s *Server) rollbackCreatedUser(ctx context.Context, userID string, withProfile bool) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if withProfile {
		if err := s.store.DeleteProfile(ctx, userID); err != nil {
			s.logger.Error("rollback profile failed", zap.String("user_id", userID), zap.Error(err))
		}
	}
	if err := s.store.DeleteAuthUser(ctx, userID); err != nil {
		s.logger.Error("rollback auth user failed", zap.String("user_id", userID), zap.Error(err))
	}
}

func teacherName(name, email string) string {
	if name != "" {
		return name
	}
	if local, _, _ := strings.Cut(email, "@"); local != "" {
		return local
	}
	return "Teacher"
}

type userListItem struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	Role      string  `json:"role"`
	ClassID   *string `json:"classId"`
	ClassName *string `json:"className"`
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.store.ListUsers(r.Context())
	if err != nil {
		s.logger.Error("list users failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	items := make([]userListItem, 0, len(users))
	for _, user := range users {
		items = append(items, userListItem{
			ID:        user.ID,
			Email:     user.Email,
			Role:      user.Role,
			ClassID:   user.ClassID,
			ClassName: user.ClassName,
		})
	}
	writeJSON(w, http.StatusOK, items)
}

type updateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin teacher student"`
}

func (s *Server) handleUpdateRole(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if _, err := uuid.Parse(userID); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_user_id")
		return
	}

	var req updateRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	req.Role = strings.TrimSpace(strings.ToLower(req.Role))
	if err := s.validate.Struct(req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid_role", "Invalid role")
		return
	}

	if err := s.store.UpdateRole(r.Context(), userID, req.Role); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "user_not_found")
			return
		}
		writeErrorMessage(w, http.StatusBadRequest, "role_update_failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"id": userID, "role": req.Role})
}
