package schedule

import (
	"errors"
	"fmt"
)

const (
	FirstDay = 1
	LastDay  = 5
)

type Kind string

const (
	KindClass   Kind = "class"
	KindRoom    Kind = "room"
	KindTeacher Kind = "teacher"
)

const (
	MessageClassConflict   = "This class already has a lesson at the same day and time."
	MessageRoomConflict    = "This room is already booked at the same day and time."
	MessageTeacherConflict = "This teacher already has a lesson at the same day and time."
)

var (
	ErrInvalidDay     = errors.New("day of week must be between 1 and 5")
	ErrInvalidRange   = errors.New("start time must be before end time")
	ErrMissingClass   = errors.New("class is required")
	ErrMissingSubject = errors.New("subject is required")
	ErrMissingRoom    = errors.New("room is required")
)

// Slot is one weekly lesson. TeacherID is derived from the subject and is
// empty when the subject has no teacher.
type Slot struct {
	ID        string
	ClassID   string
	SubjectID string
	RoomID    string
	TeacherID string
	Day       int
	Start     Clock
	End       Clock
}

type Conflict struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	EntryID string `json:"entryId"`
}

func Validate(slot Slot) error {
	switch {
	case slot.ClassID == "":
		return ErrMissingClass
	case slot.SubjectID == "":
		return ErrMissingSubject
	case slot.RoomID == "":
		return ErrMissingRoom
	case slot.Day < FirstDay || slot.Day > LastDay:
		return ErrInvalidDay
	case slot.Start >= slot.End:
		return ErrInvalidRange
	}
	return nil
}

// Overlaps reports whether two slots share a day and their half-open time
// ranges intersect. Slots that only touch at a boundary do not overlap.
func Overlaps(a, b Slot) bool {
	return a.Day == b.Day && a.Start < b.End && a.End > b.Start
}

// Check compares candidate against existing and returns one conflict per
// matching condition, in class, room, teacher order. An existing slot with
// the candidate's ID is the slot being edited and is skipped.
func Check(candidate Slot, existing []Slot) []Conflict {
	var conflicts []Conflict
	for _, other := range existing {
		if candidate.ID != "" && other.ID == candidate.ID {
			continue
		}
		if !Overlaps(candidate, other) {
			continue
		}
		if other.ClassID == candidate.ClassID {
			conflicts = append(conflicts, Conflict{Kind: KindClass, Message: MessageClassConflict, EntryID: other.ID})
		}
		if other.RoomID == candidate.RoomID {
			conflicts = append(conflicts, Conflict{Kind: KindRoom, Message: MessageRoomConflict, EntryID: other.ID})
		}
		if candidate.TeacherID != "" && other.TeacherID != "" && other.TeacherID == candidate.TeacherID {
			conflicts = append(conflicts, Conflict{Kind: KindTeacher, Message: MessageTeacherConflict, EntryID: other.ID})
		}
	}
	return conflicts
}

// Messages returns the distinct conflict messages in first-seen order.
func Messages(conflicts []Conflict) []string {
	seen := make(map[string]struct{}, len(conflicts))
	messages := make([]string, 0, len(conflicts))
	for _, c := range conflicts {
		if _, ok := seen[c.Message]; ok {
			continue
		}
		seen[c.Message] = struct{}{}
		messages = append(messages, c.Message)
	}
	return messages
}

// ResolveTeachers sets TeacherID on every slot from its subject.
func ResolveTeachers(slots []Slot, subjectTeacher map[string]string) {
	for i := range slots {
		slots[i].TeacherID = subjectTeacher[slots[i].SubjectID]
	}
}

// ConflictError carries every conflict found; Error reports the first message.
type ConflictError struct {
	Conflicts []Conflict
}

func (e *ConflictError) Error() string {
	if len(e.Conflicts) == 0 {
		return "schedule conflict"
	}
	return e.Conflicts[0].Message
}

func (e *ConflictError) Messages() []string {
	return Messages(e.Conflicts)
}

func (s Slot) String() string {
	return fmt.Sprintf("day %d %s-%s class=%s room=%s", s.Day, s.Start, s.End, s.ClassID, s.RoomID)
}
