package db

import "context"

const scheduleColumns = `sc.id, sc.class_id, sc.subject_id, sc.room_id, sc.day_of_week,
	to_char(sc.start_time, 'HH24:MI'), to_char(sc.end_time, 'HH24:MI')`

const listScheduleSlots = `
SELECT ` + scheduleColumns + `, sub.teacher_id::text
FROM schedules sc
LEFT JOIN subjects sub ON sub.id = sc.subject_id
ORDER BY sc.day_of_week ASC, sc.start_time ASC`

// ListScheduleSlots loads every schedule row with the subject's teacher for
// conflict checking.
func (q *Queries) ListScheduleSlots(ctx context.Context) ([]ScheduleSlot, error) {
	rows, err := q.db.Query(ctx, listScheduleSlots)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ScheduleSlot{}
	for rows.Next() {
		var i ScheduleSlot
		if err := rows.Scan(&i.ID, &i.ClassID, &i.SubjectID, &i.RoomID, &i.DayOfWeek, &i.StartTime, &i.EndTime, &i.TeacherID); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const listBoardRows = `
SELECT ` + scheduleColumns + `, c.name, sub.name, r.name, sub.teacher_id::text, t.name
FROM schedules sc
LEFT JOIN classes c ON c.id = sc.class_id
LEFT JOIN subjects sub ON sub.id = sc.subject_id
LEFT JOIN teachers t ON t.id = sub.teacher_id
LEFT JOIN rooms r ON r.id = sc.room_id
ORDER BY sc.day_of_week ASC, sc.start_time ASC`

func (q *Queries) ListBoardRows(ctx context.Context) ([]BoardRow, error) {
	rows, err := q.db.Query(ctx, listBoardRows)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []BoardRow{}
	for rows.Next() {
		var i BoardRow
		if err := rows.Scan(
			&i.ID, &i.ClassID, &i.SubjectID, &i.RoomID, &i.DayOfWeek, &i.StartTime, &i.EndTime,
			&i.ClassName, &i.SubjectName, &i.RoomName, &i.TeacherID, &i.TeacherName,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const getSchedule = `SELECT ` + scheduleColumns + ` FROM schedules sc WHERE sc.id = $1`

func (q *Queries) GetSchedule(ctx context.Context, id string) (Schedule, error) {
	var i Schedule
	err := q.db.QueryRow(ctx, getSchedule, id).Scan(&i.ID, &i.ClassID, &i.SubjectID, &i.RoomID, &i.DayOfWeek, &i.StartTime, &i.EndTime)
	return i, err
}

const createSchedule = `
INSERT INTO schedules (id, class_id, subject_id, room_id, day_of_week, start_time, end_time)
VALUES ($1, $2, $3, $4, $5, $6::time, $7::time)`

func (q *Queries) CreateSchedule(ctx context.Context, arg Schedule) error {
	_, err := q.db.Exec(ctx, createSchedule, arg.ID, arg.ClassID, arg.SubjectID, arg.RoomID, arg.DayOfWeek, arg.StartTime, arg.EndTime)
	return err
}

const updateSchedule = `
UPDATE schedules
SET class_id = $2, subject_id = $3, room_id = $4, day_of_week = $5, start_time = $6::time, end_time = $7::time
WHERE id = $1`

func (q *Queries) UpdateSchedule(ctx context.Context, arg Schedule) error {
	return rowsAffected(q.db.Exec(ctx, updateSchedule, arg.ID, arg.ClassID, arg.SubjectID, arg.RoomID, arg.DayOfWeek, arg.StartTime, arg.EndTime))
}

const deleteSchedule = `DELETE FROM schedules WHERE id = $1`

func (q *Queries) DeleteSchedule(ctx context.Context, id string) error {
	return rowsAffected(q.db.Exec(ctx, deleteSchedule, id))
}
