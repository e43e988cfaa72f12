package db

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := NewPool(ctx, databaseURL)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	schema, err := os.ReadFile(filepath.Join("..", "..", "..", "..", "migrations", "0001_init.sql"))
	require.NoError(t, err)
	_, err = pool.Exec(ctx, string(schema))
	require.NoError(t, err)
	return NewStore(pool)
}

func TestScheduleQueries(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	q := store.Queries

	class := Class{ID: uuid.NewString(), Name: "it-" + uuid.NewString()[:8], GradeLevel: 9}
	room := Room{ID: uuid.NewString(), Name: "it-room", Capacity: 28}
	teacherEmail := "it@school.edu"
	teacher := Teacher{ID: uuid.NewString(), Name: "it-teacher", Email: &teacherEmail}
	subject := Subject{ID: uuid.NewString(), Name: "it-subject", TeacherID: &teacher.ID}
	lesson := Schedule{
		ID:        uuid.NewString(),
		ClassID:   class.ID,
		SubjectID: subject.ID,
		RoomID:    room.ID,
		DayOfWeek: 3,
		StartTime: "09:25",
		EndTime:   "10:45",
	}
	t.Cleanup(func() {
		_ = q.DeleteSchedule(ctx, lesson.ID)
		_ = q.DeleteSubject(ctx, subject.ID)
		_ = q.DeleteTeacher(ctx, teacher.ID)
		_ = q.DeleteRoom(ctx, room.ID)
		_ = q.DeleteClass(ctx, class.ID)
	})

	require.NoError(t, q.CreateClass(ctx, class))
	require.NoError(t, q.CreateRoom(ctx, room))
	require.NoError(t, q.CreateTeacher(ctx, teacher))
	require.NoError(t, q.CreateSubject(ctx, subject))
	require.NoError(t, store.WithTx(ctx, func(tx *Queries) error {
		return tx.CreateSchedule(ctx, lesson)
	}))

	gotClass, err := q.GetClass(ctx, class.ID)
	require.NoError(t, err)
	assert.Equal(t, class, gotClass)

	gotRoom, err := q.GetRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, room, gotRoom)

	gotTeacher, err := q.GetTeacher(ctx, teacher.ID)
	require.NoError(t, err)
	assert.Equal(t, teacher, gotTeacher)

	gotSubject, err := q.GetSubject(ctx, subject.ID)
	require.NoError(t, err)
	require.NotNil(t, gotSubject.TeacherName)
	assert.Equal(t, "it-teacher", *gotSubject.TeacherName)

	gotLesson, err := q.GetSchedule(ctx, lesson.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(lesson, gotLesson); diff != "" {
		t.Fatalf("schedule mismatch (-want +got):\n%s", diff)
	}

	rows, err := q.ListBoardRows(ctx)
	require.NoError(t, err)
	var found *BoardRow
	for i := range rows {
		if rows[i].ID == lesson.ID {
			found = &rows[i]
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, class.Name, *found.ClassName)
	assert.Equal(t, "it-room", *found.RoomName)
	assert.Equal(t, teacher.ID, *found.TeacherID)

	slots, err := q.ListScheduleSlots(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, slots)

	err = q.DeleteClass(ctx, class.ID)
	var pgErr *pgconn.PgError
	require.True(t, errors.As(err, &pgErr))
	assert.Equal(t, "23503", pgErr.Code)

	err = q.UpdateRoom(ctx, Room{ID: uuid.NewString(), Name: "missing"})
	assert.True(t, errors.Is(err, pgx.ErrNoRows))

	counts, err := q.Counts(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, counts.Schedules, int64(1))
}

func TestWithTxRollsBack(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	class := Class{ID: uuid.NewString(), Name: "rollback", GradeLevel: 1}

	err := store.WithTx(ctx, func(tx *Queries) error {
		if err := tx.CreateClass(ctx, class); err != nil {
			return err
		}
		return errors.New("abort")
	})
	require.Error(t, err)

	_, err = store.Queries.GetClass(ctx, class.ID)
	assert.True(t, errors.Is(err, pgx.ErrNoRows))
}
