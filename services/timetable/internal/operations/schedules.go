package operations

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Ariuko0507/huwaari/services/timetable/internal/db"
	"github.com/Ariuko0507/huwaari/services/timetable/internal/schedule"
)

type ScheduleInput struct {
	ID        string `json:"id"`
	ClassID   string `json:"class_id" validate:"required,uuid"`
	SubjectID string `json:"subject_id" validate:"required,uuid"`
	RoomID    string `json:"room_id" validate:"required,uuid"`
	DayOfWeek int    `json:"day_of_week" validate:"gte=1,lte=5"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
}

// CheckSchedule runs the conflict check without writing. A nil error means
// the slot is free.
func (s *Service) CheckSchedule(ctx context.Context, input ScheduleInput) error {
	slot, opErr := s.scheduleSlot(input)
	if opErr != nil {
		return opErr
	}
	return s.checkConflicts(ctx, s.store, slot)
}

// SaveSchedule validates input, rejects it when it conflicts with another
// lesson and otherwise creates or updates the row. The check and the write
// share a transaction.
func (s *Service) SaveSchedule(ctx context.Context, input ScheduleInput) (string, error) {
	slot, opErr := s.scheduleSlot(input)
	if opErr != nil {
		return "", opErr
	}
	creating := slot.ID == ""
	if creating {
		slot.ID = uuid.NewString()
	}
	row := db.Schedule{
		ID:        slot.ID,
		ClassID:   slot.ClassID,
		SubjectID: slot.SubjectID,
		RoomID:    slot.RoomID,
		DayOfWeek: int16(slot.Day),
		StartTime: slot.Start.String(),
		EndTime:   slot.End.String(),
	}

	err := s.store.InTx(ctx, func(q Querier) error {
		if err := s.checkConflicts(ctx, q, slot); err != nil {
			return err
		}
		if creating {
			return q.CreateSchedule(ctx, row)
		}
		return q.UpdateSchedule(ctx, row)
	})
	if err != nil {
		if opErr, ok := err.(*Error); ok {
			return "", opErr
		}
		return "", s.writeError("schedule", false, err)
	}
	s.changed(ctx, "schedule", row.ID)
	return row.ID, nil
}

func (s *Service) DeleteSchedule(ctx context.Context, id string) error {
	return s.remove(ctx, "schedule", id, s.store.DeleteSchedule)
}

func (s *Service) scheduleSlot(input ScheduleInput) (schedule.Slot, *Error) {
	input.ClassID = strings.TrimSpace(input.ClassID)
	input.SubjectID = strings.TrimSpace(input.SubjectID)
	input.RoomID = strings.TrimSpace(input.RoomID)
	if err := s.check(input); err != nil {
		return schedule.Slot{}, err
	}
	slot := schedule.Slot{
		ClassID:   input.ClassID,
		SubjectID: input.SubjectID,
		RoomID:    input.RoomID,
		Day:       input.DayOfWeek,
	}
	if strings.TrimSpace(input.ID) != "" {
		id, idErr := parseID("schedule", input.ID)
		if idErr != nil {
			return schedule.Slot{}, idErr
		}
		slot.ID = id
	}
	var err error
	if slot.Start, err = schedule.ParseClock(input.StartTime); err != nil {
		return schedule.Slot{}, invalidInput("Start time is invalid")
	}
	if slot.End, err = schedule.ParseClock(input.EndTime); err != nil {
		return schedule.Slot{}, invalidInput("End time is invalid")
	}
	if err := schedule.Validate(slot); err != nil {
		return schedule.Slot{}, invalidInput(capitalize(err.Error()))
	}
	return slot, nil
}

// checkConflicts loads every lesson and subject and compares them with slot.
func (s *Service) checkConflicts(ctx context.Context, q Querier, slot schedule.Slot) error {
	rows, err := q.ListScheduleSlots(ctx)
	if err != nil {
		s.logger.Error("load schedules failed", zap.Error(err))
		return serverError()
	}
	subjects, err := q.ListSubjects(ctx)
	if err != nil {
		s.logger.Error("load subjects failed", zap.Error(err))
		return serverError()
	}

	subjectTeacher := make(map[string]string, len(subjects))
	for _, sub := range subjects {
		if sub.TeacherID != nil {
			subjectTeacher[sub.ID] = *sub.TeacherID
		}
	}

	existing := make([]schedule.Slot, 0, len(rows))
	for _, row := range rows {
		start, err := schedule.ParseClock(row.StartTime)
		if err != nil {
			s.logger.Warn("skipping schedule with unreadable start", zap.String("id", row.ID))
			continue
		}
		end, err := schedule.ParseClock(row.EndTime)
		if err != nil {
			s.logger.Warn("skipping schedule with unreadable end", zap.String("id", row.ID))
			continue
		}
		existing = append(existing, schedule.Slot{
			ID:        row.ID,
			ClassID:   row.ClassID,
			SubjectID: row.SubjectID,
			RoomID:    row.RoomID,
			Day:       int(row.DayOfWeek),
			Start:     start,
			End:       end,
		})
	}
	schedule.ResolveTeachers(existing, subjectTeacher)
	slot.TeacherID = subjectTeacher[slot.SubjectID]

	conflicts := schedule.Check(slot, existing)
	if len(conflicts) == 0 {
		return nil
	}
	for _, c := range conflicts {
		conflictsTotal.WithLabelValues(string(c.Kind)).Inc()
	}
	return &Error{
		Code:      ErrScheduleConflict,
		Message:   conflicts[0].Message,
		Status:    http.StatusConflict,
		Conflicts: conflicts,
	}
}
