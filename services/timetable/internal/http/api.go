package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Ariuko0507/huwaari/services/timetable/internal/board"
	"github.com/Ariuko0507/huwaari/services/timetable/internal/clients"
	"github.com/Ariuko0507/huwaari/services/timetable/internal/db"
	"github.com/Ariuko0507/huwaari/services/timetable/internal/operations"
	"github.com/Ariuko0507/huwaari/services/timetable/internal/schedule"
)

// Board

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, proxy-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")

	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeErrorMessage(w, http.StatusUnauthorized, "missing_token", "Unauthorized")
		return
	}
	profile, err := s.profiles.GetProfile(r.Context(), claims.UserID)
	if err != nil {
		if !errors.Is(err, clients.ErrProfileNotFound) {
			s.logger.Warn("profile lookup failed", zap.String("user_id", claims.UserID), zap.Error(err))
		}
		writeErrorMessage(w, http.StatusForbidden, "forbidden", "Forbidden")
		return
	}
	if !knownRole(profile.Role) {
		writeErrorMessage(w, http.StatusForbidden, "forbidden", "Forbidden")
		return
	}

	snap, err := s.cache.Snapshot(r.Context(), s.store)
	if err != nil {
		s.logger.Error("board load failed", zap.Error(err))
		writeErrorMessage(w, http.StatusBadRequest, "board_load_failed", err.Error())
		return
	}

	var myClassID *string
	if profile.ClassID != "" {
		classID := profile.ClassID
		myClassID = &classID
	}
	writeJSON(w, http.StatusOK, board.ForViewer(snap, profile.Role, claims.UserID, myClassID))
}

func knownRole(role string) bool {
	return role == roleAdmin || role == roleTeacher || role == roleStudent
}

// Catalog

type classResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	GradeLevel int32  `json:"grade_level"`
}

type teacherResponse struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Email *string `json:"email"`
}

type roomResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Capacity int32  `json:"capacity"`
}

type subjectResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	TeacherID   *string `json:"teacher_id"`
	TeacherName string  `json:"teacher_name"`
}

func (s *Server) handleListClasses(w http.ResponseWriter, r *http.Request) {
	classes, err := s.store.ListClasses(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	resp := make([]classResponse, 0, len(classes))
	for _, c := range classes {
		resp = append(resp, classResponse{ID: c.ID, Name: c.Name, GradeLevel: c.GradeLevel})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListTeachers(w http.ResponseWriter, r *http.Request) {
	teachers, err := s.store.ListTeachers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	resp := make([]teacherResponse, 0, len(teachers))
	for _, t := range teachers {
		resp = append(resp, teacherResponse{ID: t.ID, Name: t.Name, Email: t.Email})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := s.store.ListRooms(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	resp := make([]roomResponse, 0, len(rooms))
	for _, room := range rooms {
		resp = append(resp, roomResponse{ID: room.ID, Name: room.Name, Capacity: room.Capacity})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := s.store.ListSubjects(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	resp := make([]subjectResponse, 0, len(subjects))
	for _, sub := range subjects {
		resp = append(resp, mapSubject(sub))
	}
	writeJSON(w, http.StatusOK, resp)
}

func mapSubject(sub db.Subject) subjectResponse {
	name := "-"
	if sub.TeacherName != nil && *sub.TeacherName != "" {
		name = *sub.TeacherName
	}
	return subjectResponse{ID: sub.ID, Name: sub.Name, TeacherID: sub.TeacherID, TeacherName: name}
}

func (s *Server) handleListSchedules(w http.ResponseWriter, r *http.Request) {
	snap, err := board.Load(r.Context(), s.store)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, snap.Schedules)
}

func (s *Server) handleSaveClass(w http.ResponseWriter, r *http.Request) {
	var req operations.ClassInput
	if !decodeInput(w, r, &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")
	s.writeSaved(w, r, func(ctx context.Context) (string, error) { return s.ops.SaveClass(ctx, req) })
}

func (s *Server) handleSaveTeacher(w http.ResponseWriter, r *http.Request) {
	var req operations.TeacherInput
	if !decodeInput(w, r, &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")
	s.writeSaved(w, r, func(ctx context.Context) (string, error) { return s.ops.SaveTeacher(ctx, req) })
}

func (s *Server) handleSaveRoom(w http.ResponseWriter, r *http.Request) {
	var req operations.RoomInput
	if !decodeInput(w, r, &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")
	s.writeSaved(w, r, func(ctx context.Context) (string, error) { return s.ops.SaveRoom(ctx, req) })
}

func (s *Server) handleSaveSubject(w http.ResponseWriter, r *http.Request) {
	var req operations.SubjectInput
	if !decodeInput(w, r, &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")
	s.writeSaved(w, r, func(ctx context.Context) (string, error) { return s.ops.SaveSubject(ctx, req) })
}

func (s *Server) handleSaveSchedule(w http.ResponseWriter, r *http.Request) {
	var req operations.ScheduleInput
	if !decodeInput(w, r, &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")
	s.writeSaved(w, r, func(ctx context.Context) (string, error) { return s.ops.SaveSchedule(ctx, req) })
}

type checkResponse struct {
	OK        bool                `json:"ok"`
	Conflicts []schedule.Conflict `json:"conflicts"`
	Messages  []string            `json:"messages"`
}

func (s *Server) handleCheckSchedule(w http.ResponseWriter, r *http.Request) {
	var req operations.ScheduleInput
	if !decodeInput(w, r, &req) {
		return
	}
	err := s.ops.CheckSchedule(r.Context(), req)
	if err == nil {
		writeJSON(w, http.StatusOK, checkResponse{OK: true, Conflicts: []schedule.Conflict{}, Messages: []string{}})
		return
	}
	opErr := operations.AsError(err)
	if opErr.Code != operations.ErrScheduleConflict {
		writeOperationError(w, opErr)
		return
	}
	writeJSON(w, http.StatusOK, checkResponse{
		OK:        false,
		Conflicts: opErr.Conflicts,
		Messages:  schedule.Messages(opErr.Conflicts),
	})
}

func (s *Server) handleDelete(del func(context.Context, string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := del(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeOperationError(w, operations.AsError(err))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) writeSaved(w http.ResponseWriter, r *http.Request, save func(context.Context) (string, error)) {
	id, err := save(r.Context())
	if err != nil {
		writeOperationError(w, operations.AsError(err))
		return
	}
	status := http.StatusCreated
	if r.Method == http.MethodPatch {
		status = http.StatusOK
	}
	writeJSON(w, status, map[string]string{"id": id})
}

func decodeInput(w http.ResponseWriter, r *http.Request, out interface{}) bool {
	if err := decodeJSON(r, out); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return false
	}
	return true
}

type conflictErrorResponse struct {
	Error     string              `json:"error"`
	Message   string              `json:"message"`
	Conflicts []schedule.Conflict `json:"conflicts"`
}

func writeOperationError(w http.ResponseWriter, opErr *operations.Error) {
	status := opErr.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	if opErr.Code == operations.ErrScheduleConflict {
		writeJSON(w, status, conflictErrorResponse{Error: opErr.Code, Message: opErr.Message, Conflicts: opErr.Conflicts})
		return
	}
	writeErrorMessage(w, status, opErr.Code, opErr.Message)
}

// Stats

type statsResponse struct {
	Classes   int64 `json:"classes"`
	Teachers  int64 `json:"teachers"`
	Rooms     int64 `json:"rooms"`
	Subjects  int64 `json:"subjects"`
	Schedules int64 `json:"schedules"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	counts, err := s.stats.Get(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, statsResponse(counts))
}
