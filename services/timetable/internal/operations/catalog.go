package operations

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/Ariuko0507/huwaari/services/timetable/internal/db"
)

type ClassInput struct {
	ID         string `json:"id"`
	Name       string `json:"name" validate:"required,max=100"`
	GradeLevel int    `json:"grade_level" validate:"gte=0,lte=12"`
}

type TeacherInput struct {
	ID    string `json:"id"`
	Name  string `json:"name" validate:"required,max=200"`
	Email string `json:"email" validate:"omitempty,email"`
}

type RoomInput struct {
	ID       string `json:"id"`
	Name     string `json:"name" validate:"required,max=100"`
	Capacity int    `json:"capacity" validate:"gte=0"`
}

type SubjectInput struct {
	ID        string  `json:"id"`
	Name      string  `json:"name" validate:"required,max=200"`
	TeacherID *string `json:"teacher_id" validate:"omitempty,uuid"`
}

// SaveClass creates the class when input.ID is empty and updates it otherwise.
// It returns the id of the saved row.
func (s *Service) SaveClass(ctx context.Context, input ClassInput) (string, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := s.check(input); err != nil {
		return "", err
	}
	row := db.Class{Name: input.Name, GradeLevel: int32(input.GradeLevel)}
	return s.save(ctx, "class", input.ID, &row.ID,
		func() error { return s.store.CreateClass(ctx, row) },
		func() error { return s.store.UpdateClass(ctx, row) },
	)
}

func (s *Service) DeleteClass(ctx context.Context, id string) error {
	return s.remove(ctx, "class", id, s.store.DeleteClass)
}

func (s *Service) SaveTeacher(ctx context.Context, input TeacherInput) (string, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := s.check(input); err != nil {
		return "", err
	}
	row := db.Teacher{Name: input.Name}
	if input.Email != "" {
		row.Email = &input.Email
	}
	return s.save(ctx, "teacher", input.ID, &row.ID,
		func() error { return s.store.CreateTeacher(ctx, row) },
		func() error { return s.store.UpdateTeacher(ctx, row) },
	)
}

func (s *Service) DeleteTeacher(ctx context.Context, id string) error {
	return s.remove(ctx, "teacher", id, s.store.DeleteTeacher)
}

func (s *Service) SaveRoom(ctx context.Context, input RoomInput) (string, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := s.check(input); err != nil {
		return "", err
	}
	row := db.Room{Name: input.Name, Capacity: int32(input.Capacity)}
	return s.save(ctx, "room", input.ID, &row.ID,
		func() error { return s.store.CreateRoom(ctx, row) },
		func() error { return s.store.UpdateRoom(ctx, row) },
	)
}

func (s *Service) DeleteRoom(ctx context.Context, id string) error {
	return s.remove(ctx, "room", id, s.store.DeleteRoom)
}

func (s *Service) SaveSubject(ctx context.Context, input SubjectInput) (string, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.TeacherID = optionalID(input.TeacherID)
	if err := s.check(input); err != nil {
		return "", err
	}
	row := db.Subject{Name: input.Name, TeacherID: input.TeacherID}
	return s.save(ctx, "subject", input.ID, &row.ID,
		func() error { return s.store.CreateSubject(ctx, row) },
		func() error { return s.store.UpdateSubject(ctx, row) },
	)
}

func (s *Service) DeleteSubject(ctx context.Context, id string) error {
	return s.remove(ctx, "subject", id, s.store.DeleteSubject)
}

// save fills *rowID with a new or parsed id before running create or update.
// The closures read the row after the id is set.
func (s *Service) save(ctx context.Context, entity, id string, rowID *string, create, update func() error) (string, error) {
	var err error
	if strings.TrimSpace(id) == "" {
		*rowID = uuid.NewString()
		err = create()
	} else {
		parsed, idErr := parseID(entity, id)
		if idErr != nil {
			return "", idErr
		}
		*rowID = parsed
		err = update()
	}
	if err != nil {
		return "", s.writeError(entity, false, err)
	}
	s.changed(ctx, entity, *rowID)
	return *rowID, nil
}

func (s *Service) remove(ctx context.Context, entity, id string, del func(context.Context, string) error) error {
	parsed, idErr := parseID(entity, id)
	if idErr != nil {
		return idErr
	}
	if err := del(ctx, parsed); err != nil {
		return s.writeError(entity, true, err)
	}
	s.changed(ctx, entity, parsed)
	return nil
}
