package operations

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/Ariuko0507/huwaari/services/timetable/internal/db"
	"github.com/Ariuko0507/huwaari/services/timetable/internal/events"
	"github.com/Ariuko0507/huwaari/services/timetable/internal/schedule"
)

const (
	ErrInvalidID        = "invalid_id"
	ErrInvalidInput     = "invalid_input"
	ErrNotFound         = "not_found"
	ErrInUse            = "in_use"
	ErrAlreadyExists    = "already_exists"
	ErrScheduleConflict = "schedule_conflict"
	ErrServerError      = "server_error"
)

// Error is returned by every operation. Message is safe to show to users.
type Error struct {
	Code      string
	Message   string
	Status    int
	Conflicts []schedule.Conflict
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

func invalidInput(message string) *Error {
	return &Error{Code: ErrInvalidInput, Message: message, Status: http.StatusBadRequest}
}

func invalidID(entity string) *Error {
	return &Error{Code: ErrInvalidID, Message: "Invalid " + entity + " id", Status: http.StatusBadRequest}
}

func notFound(entity string) *Error {
	return &Error{Code: ErrNotFound, Message: capitalize(entity) + " not found", Status: http.StatusNotFound}
}

func serverError() *Error {
	return &Error{Code: ErrServerError, Message: "Something went wrong, please try again", Status: http.StatusInternalServerError}
}

// Querier is the query surface of *db.Queries used by the operations.
type Querier interface {
	ListClasses(ctx context.Context) ([]db.Class, error)
	CreateClass(ctx context.Context, arg db.Class) error
	UpdateClass(ctx context.Context, arg db.Class) error
	DeleteClass(ctx context.Context, id string) error

	ListTeachers(ctx context.Context) ([]db.Teacher, error)
	CreateTeacher(ctx context.Context, arg db.Teacher) error
	UpdateTeacher(ctx context.Context, arg db.Teacher) error
	DeleteTeacher(ctx context.Context, id string) error

	ListRooms(ctx context.Context) ([]db.Room, error)
	CreateRoom(ctx context.Context, arg db.Room) error
	UpdateRoom(ctx context.Context, arg db.Room) error
	DeleteRoom(ctx context.Context, id string) error

	ListSubjects(ctx context.Context) ([]db.Subject, error)
	CreateSubject(ctx context.Context, arg db.Subject) error
	UpdateSubject(ctx context.Context, arg db.Subject) error
	DeleteSubject(ctx context.Context, id string) error

	ListScheduleSlots(ctx context.Context) ([]db.ScheduleSlot, error)
	CreateSchedule(ctx context.Context, arg db.Schedule) error
	UpdateSchedule(ctx context.Context, arg db.Schedule) error
	DeleteSchedule(ctx context.Context, id string) error
}

type Store interface {
	Querier
	InTx(ctx context.Context, fn func(Querier) error) error
}

type Publisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type pgStore struct {
	*db.Queries
	store *db.Store
}

// NewStore adapts a *db.Store to Store.
func NewStore(store *db.Store) Store {
	return pgStore{Queries: store.Queries, store: store}
}

func (s pgStore) InTx(ctx context.Context, fn func(Querier) error) error {
	return s.store.WithTx(ctx, func(q *db.Queries) error {
		return fn(q)
	})
}

type Service struct {
	store     Store
	publisher Publisher
	logger    *zap.Logger
	validate  *validator.Validate
}

func NewService(store Store, publisher Publisher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:     store,
		publisher: publisher,
		logger:    logger,
		validate:  validator.New(),
	}
}

// changed announces a successful write. Publish failures are logged only,
// the write itself already succeeded.
func (s *Service) changed(ctx context.Context, entity, id string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events.DataUpdated(entity, id)); err != nil {
		s.logger.Warn("publish data-updated failed", zap.String("entity", entity), zap.Error(err))
	}
}

func (s *Service) check(input interface{}) *Error {
	err := s.validate.Struct(input)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return invalidInput("Invalid input")
	}
	return invalidInput(validationMessage(verrs[0]))
}

var fieldLabels = map[string]string{
	"ID":         "Id",
	"Name":       "Name",
	"Email":      "Email",
	"GradeLevel": "Grade level",
	"Capacity":   "Capacity",
	"TeacherID":  "Teacher",
	"ClassID":    "Class",
	"SubjectID":  "Subject",
	"RoomID":     "Room",
	"DayOfWeek":  "Day",
	"StartTime":  "Start time",
	"EndTime":    "End time",
}

func validationMessage(fe validator.FieldError) string {
	label, ok := fieldLabels[fe.Field()]
	if !ok {
		label = fe.Field()
	}
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "email":
		return label + " must be a valid email"
	case "uuid":
		return label + " is invalid"
	case "max":
		return label + " must be at most " + fe.Param() + " characters"
	case "gte", "min":
		return label + " must be at least " + fe.Param()
	case "lte":
		return label + " must be at most " + fe.Param()
	default:
		return label + " is invalid"
	}
}

// writeError maps a database failure on entity to an operation error. A
// foreign key violation means a missing reference on save and a dependent
// row on delete.
func (s *Service) writeError(entity string, deleting bool, err error) *Error {
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound(entity)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23503":
			if !deleting {
				return invalidInput("Referenced record does not exist")
			}
			return &Error{
				Code:    ErrInUse,
				Message: capitalize(entity) + " is still used by other records",
				Status:  http.StatusConflict,
			}
		case "23505":
			return &Error{
				Code:    ErrAlreadyExists,
				Message: capitalize(entity) + " already exists",
				Status:  http.StatusConflict,
			}
		}
	}
	s.logger.Error("timetable write failed", zap.String("entity", entity), zap.Error(err))
	return serverError()
}

func parseID(entity, id string) (string, *Error) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return "", invalidID(entity)
	}
	return parsed.String(), nil
}

func optionalID(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func capitalize(value string) string {
	if value == "" {
		return value
	}
	return strings.ToUpper(value[:1]) + value[1:]
}

// AsError returns err as *Error, wrapping unknown errors as server errors.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var opErr *Error
	if errors.As(err, &opErr) {
		return opErr
	}
	return serverError()
}
