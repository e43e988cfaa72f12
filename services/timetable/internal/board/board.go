package board

import (
	"context"

	"github.com/Ariuko0507/huwaari/services/timetable/internal/db"
)

const missing = "-"

type ClassItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Item is a schedule row with display names resolved.
type Item struct {
	ID          string  `json:"id"`
	ClassID     string  `json:"class_id"`
	SubjectID   string  `json:"subject_id"`
	RoomID      string  `json:"room_id"`
	DayOfWeek   int     `json:"day_of_week"`
	StartTime   string  `json:"start_time"`
	EndTime     string  `json:"end_time"`
	ClassName   string  `json:"class_name"`
	SubjectName string  `json:"subject_name"`
	RoomName    string  `json:"room_name"`
	TeacherName string  `json:"teacher_name"`
	TeacherID   *string `json:"teacher_id"`
}

// Snapshot is the role-independent part of the board.
type Snapshot struct {
	Classes   []ClassItem `json:"classes"`
	Schedules []Item      `json:"schedules"`
}

// Board is the payload of GET /schedule/board.
type Board struct {
	Classes   []ClassItem `json:"classes"`
	Schedules []Item      `json:"schedules"`
	Role      string      `json:"role"`
	UserID    string      `json:"userId"`
	MyClassID *string     `json:"myClassId"`
}

type Source interface {
	ListClasses(ctx context.Context) ([]db.Class, error)
	ListBoardRows(ctx context.Context) ([]db.BoardRow, error)
}

func Load(ctx context.Context, src Source) (Snapshot, error) {
	classes, err := src.ListClasses(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	rows, err := src.ListBoardRows(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{
		Classes:   make([]ClassItem, 0, len(classes)),
		Schedules: make([]Item, 0, len(rows)),
	}
	for _, c := range classes {
		snap.Classes = append(snap.Classes, ClassItem{ID: c.ID, Name: c.Name})
	}
	for _, row := range rows {
		snap.Schedules = append(snap.Schedules, Item{
			ID:          row.ID,
			ClassID:     row.ClassID,
			SubjectID:   row.SubjectID,
			RoomID:      row.RoomID,
			DayOfWeek:   int(row.DayOfWeek),
			StartTime:   row.StartTime,
			EndTime:     row.EndTime,
			ClassName:   orMissing(row.ClassName),
			SubjectName: orMissing(row.SubjectName),
			RoomName:    orMissing(row.RoomName),
			TeacherName: orMissing(row.TeacherName),
			TeacherID:   row.TeacherID,
		})
	}
	return snap, nil
}

func orMissing(value *string) string {
	if value == nil || *value == "" {
		return missing
	}
	return *value
}

// ForViewer attaches the caller's identity to a snapshot.
func ForViewer(snap Snapshot, role, userID string, myClassID *string) Board {
	return Board{
		Classes:   snap.Classes,
		Schedules: snap.Schedules,
		Role:      role,
		UserID:    userID,
		MyClassID: myClassID,
	}
}

// FilterTeacher keeps the teacher's own lessons and only the classes they teach.
func FilterTeacher(snap Snapshot, teacherID string) Snapshot {
	items := make([]Item, 0)
	for _, item := range snap.Schedules {
		if teacherID != "" && item.TeacherID != nil && *item.TeacherID == teacherID {
			items = append(items, item)
		}
	}
	return Snapshot{Classes: classesFor(snap.Classes, items), Schedules: items}
}

// FilterClass keeps a single class. An empty classID yields an empty board.
func FilterClass(snap Snapshot, classID string) Snapshot {
	out := Snapshot{Classes: []ClassItem{}, Schedules: []Item{}}
	if classID == "" {
		return out
	}
	for _, item := range snap.Schedules {
		if item.ClassID == classID {
			out.Schedules = append(out.Schedules, item)
		}
	}
	for _, c := range snap.Classes {
		if c.ID == classID {
			out.Classes = append(out.Classes, c)
		}
	}
	if len(out.Classes) == 0 {
		out.Classes = classesFor(nil, out.Schedules)
	}
	return out
}

// classesFor returns the classes that appear in items, in the order of
// known. When known is empty, classes are derived from the items.
func classesFor(known []ClassItem, items []Item) []ClassItem {
	present := make(map[string]bool, len(items))
	for _, item := range items {
		present[item.ClassID] = true
	}
	out := make([]ClassItem, 0, len(present))
	if len(known) > 0 {
		for _, c := range known {
			if present[c.ID] {
				out = append(out, c)
			}
		}
		return out
	}
	seen := make(map[string]bool, len(present))
	for _, item := range items {
		if seen[item.ClassID] {
			continue
		}
		seen[item.ClassID] = true
		out = append(out, ClassItem{ID: item.ClassID, Name: item.ClassName})
	}
	return out
}
