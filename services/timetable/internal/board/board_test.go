package board

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Ariuko0507/huwaari/services/timetable/internal/db"
	"github.com/Ariuko0507/huwaari/services/timetable/internal/events"
)

type fakeSource struct {
	classes []db.Class
	rows    []db.BoardRow
	calls   int
	// loading runs while rows are being read.
	loading func()
}

func (f *fakeSource) ListClasses(context.Context) ([]db.Class, error) {
	f.calls++
	return f.classes, nil
}

func (f *fakeSource) ListBoardRows(context.Context) ([]db.BoardRow, error) {
	if f.loading != nil {
		f.loading()
	}
	return f.rows, nil
}

func strPtr(v string) *string { return &v }

func sampleSource() *fakeSource {
	return &fakeSource{
		classes: []db.Class{{ID: "c1", Name: "10A"}, {ID: "c2", Name: "10B"}, {ID: "c3", Name: "11A"}},
		rows: []db.BoardRow{
			{
				Schedule:    db.Schedule{ID: "s1", ClassID: "c1", SubjectID: "math", RoomID: "r1", DayOfWeek: 1, StartTime: "08:00", EndTime: "09:20"},
				ClassName:   strPtr("10A"),
				SubjectName: strPtr("Math"),
				RoomName:    strPtr("101"),
				TeacherID:   strPtr("t1"),
				TeacherName: strPtr("Bold"),
			},
			{
				Schedule:    db.Schedule{ID: "s2", ClassID: "c2", SubjectID: "art", RoomID: "r2", DayOfWeek: 2, StartTime: "09:25", EndTime: "10:45"},
				ClassName:   strPtr("10B"),
				SubjectName: strPtr("Art"),
			},
			{
				Schedule:    db.Schedule{ID: "s3", ClassID: "c3", SubjectID: "math", RoomID: "r1", DayOfWeek: 3, StartTime: "14:00", EndTime: "14:45"},
				ClassName:   strPtr("11A"),
				SubjectName: strPtr("Math"),
				RoomName:    strPtr("101"),
				TeacherID:   strPtr("t1"),
				TeacherName: strPtr("Bold"),
			},
		},
	}
}

func TestLoadFillsMissingRelations(t *testing.T) {
	snap, err := Load(context.Background(), sampleSource())
	require.NoError(t, err)
	require.Len(t, snap.Schedules, 3)

	art := snap.Schedules[1]
	assert.Equal(t, "-", art.RoomName)
	assert.Equal(t, "-", art.TeacherName)
	assert.Nil(t, art.TeacherID)
	assert.Equal(t, "Bold", snap.Schedules[0].TeacherName)
}

func TestFilterTeacherRestrictsClasses(t *testing.T) {
	snap, err := Load(context.Background(), sampleSource())
	require.NoError(t, err)

	mine := FilterTeacher(snap, "t1")
	ids := make([]string, 0, len(mine.Schedules))
	for _, item := range mine.Schedules {
		ids = append(ids, item.ID)
	}
	if diff := cmp.Diff([]string{"s1", "s3"}, ids); diff != "" {
		t.Fatalf("unexpected schedules (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]ClassItem{{ID: "c1", Name: "10A"}, {ID: "c3", Name: "11A"}}, mine.Classes); diff != "" {
		t.Fatalf("unexpected classes (-want +got):\n%s", diff)
	}

	assert.Empty(t, FilterTeacher(snap, "").Schedules)
}

func TestFilterClass(t *testing.T) {
	snap, err := Load(context.Background(), sampleSource())
	require.NoError(t, err)

	own := FilterClass(snap, "c2")
	require.Len(t, own.Schedules, 1)
	assert.Equal(t, []ClassItem{{ID: "c2", Name: "10B"}}, own.Classes)

	none := FilterClass(snap, "")
	assert.Empty(t, none.Schedules)
	assert.Empty(t, none.Classes)
}

func TestFilterClassDerivesClassWhenListEmpty(t *testing.T) {
	snap := Snapshot{Schedules: []Item{{ID: "s1", ClassID: "c9", ClassName: "12C"}}}
	own := FilterClass(snap, "c9")
	assert.Equal(t, []ClassItem{{ID: "c9", Name: "12C"}}, own.Classes)
}

func TestBuildMatrixPlacesCells(t *testing.T) {
	snap, err := Load(context.Background(), sampleSource())
	require.NoError(t, err)

	m := BuildMatrix(snap.Classes, snap.Schedules, nil)
	require.Len(t, m.Days, 5)
	// Four default periods plus the off-grid 14:00 lesson.
	require.Len(t, m.Days[0].Rows, 5)

	monday := m.Days[0]
	assert.Equal(t, "Monday", monday.Name)
	require.NotNil(t, monday.Rows[0].Cells[0])
	assert.Equal(t, "s1", monday.Rows[0].Cells[0].ID)
	assert.Nil(t, monday.Rows[0].Cells[1])

	wednesday := m.Days[2]
	last := wednesday.Rows[len(wednesday.Rows)-1]
	assert.Equal(t, "14:00 - 14:45", last.Period.Label())
	require.NotNil(t, last.Cells[2])
	assert.Equal(t, "s3", last.Cells[2].ID)
}

func TestCacheWithoutRedisLoadsEveryTime(t *testing.T) {
	src := sampleSource()
	cache := NewCache(nil, time.Minute, zap.NewNop())

	_, err := cache.Snapshot(context.Background(), src)
	require.NoError(t, err)
	_, err = cache.Snapshot(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)
	assert.NoError(t, cache.Invalidate(context.Background()))
}

func redisClient(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	return client
}

func TestCacheWithRedis(t *testing.T) {
	client := redisClient(t)
	ctx := context.Background()

	src := sampleSource()
	cache := NewCache(client, time.Minute, zap.NewNop())
	require.NoError(t, cache.Invalidate(ctx))

	first, err := cache.Snapshot(ctx, src)
	require.NoError(t, err)
	second, err := cache.Snapshot(ctx, src)
	require.NoError(t, err)
	assert.Equal(t, 1, src.calls)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("cached snapshot differs (-first +second):\n%s", diff)
	}

	updates := make(chan events.Event, 1)
	watchCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		cache.Watch(watchCtx, updates)
	}()
	updates <- events.DataUpdated("schedules", "s1")
	close(updates)
	<-done
	cancel()

	_, err = cache.Snapshot(ctx, src)
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)
}

func TestCacheDropsSnapshotInvalidatedDuringLoad(t *testing.T) {
	client := redisClient(t)
	ctx := context.Background()
	cache := NewCache(client, time.Minute, zap.NewNop())
	require.NoError(t, cache.Invalidate(ctx))

	src := sampleSource()
	src.loading = func() {
		src.loading = nil
		require.NoError(t, cache.Invalidate(ctx))
	}
	_, err := cache.Snapshot(ctx, src)
	require.NoError(t, err)

	exists, err := client.Exists(ctx, cacheKey).Result()
	require.NoError(t, err)
	assert.Zero(t, exists)

	_, err = cache.Snapshot(ctx, src)
	require.NoError(t, err)
	_, err = cache.Snapshot(ctx, src)
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)
}
