package db

type Class struct {
	ID         string
	Name       string
	GradeLevel int32
}

type Teacher struct {
	ID    string
	Name  string
	Email *string
}

type Room struct {
	ID       string
	Name     string
	Capacity int32
}

type Subject struct {
	ID          string
	Name        string
	TeacherID   *string
	TeacherName *string
}

type Schedule struct {
	ID        string
	ClassID   string
	SubjectID string
	RoomID    string
	DayOfWeek int16
	StartTime string
	EndTime   string
}

// ScheduleSlot is a schedule row with its subject's teacher resolved.
type ScheduleSlot struct {
	Schedule
	TeacherID *string
}

// BoardRow is a schedule row joined with display names. Missing relations
// come back as NULL.
type BoardRow struct {
	Schedule
	ClassName   *string
	SubjectName *string
	RoomName    *string
	TeacherID   *string
	TeacherName *string
}

type Counts struct {
	Classes   int64
	Teachers  int64
	Rooms     int64
	Subjects  int64
	Schedules int64
}
