package db

import "context"

const listClasses = `SELECT id, name, grade_level FROM classes ORDER BY name ASC`

func (q *Queries) ListClasses(ctx context.Context) ([]Class, error) {
	rows, err := q.db.Query(ctx, listClasses)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Class{}
	for rows.Next() {
		var i Class
		if err := rows.Scan(&i.ID, &i.Name, &i.GradeLevel); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const getClass = `SELECT id, name, grade_level FROM classes WHERE id = $1`

func (q *Queries) GetClass(ctx context.Context, id string) (Class, error) {
	var i Class
	err := q.db.QueryRow(ctx, getClass, id).Scan(&i.ID, &i.Name, &i.GradeLevel)
	return i, err
}

const createClass = `INSERT INTO classes (id, name, grade_level) VALUES ($1, $2, $3)`

func (q *Queries) CreateClass(ctx context.Context, arg Class) error {
	_, err := q.db.Exec(ctx, createClass, arg.ID, arg.Name, arg.GradeLevel)
	return err
}

const updateClass = `UPDATE classes SET name = $2, grade_level = $3 WHERE id = $1`

func (q *Queries) UpdateClass(ctx context.Context, arg Class) error {
	return rowsAffected(q.db.Exec(ctx, updateClass, arg.ID, arg.Name, arg.GradeLevel))
}

const deleteClass = `DELETE FROM classes WHERE id = $1`

func (q *Queries) DeleteClass(ctx context.Context, id string) error {
	return rowsAffected(q.db.Exec(ctx, deleteClass, id))
}

const listTeachers = `SELECT id, name, email FROM teachers ORDER BY name ASC`

func (q *Queries) ListTeachers(ctx context.Context) ([]Teacher, error) {
	rows, err := q.db.Query(ctx, listTeachers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Teacher{}
	for rows.Next() {
		var i Teacher
		if err := rows.Scan(&i.ID, &i.Name, &i.Email); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const getTeacher = `SELECT id, name, email FROM teachers WHERE id = $1`

func (q *Queries) GetTeacher(ctx context.Context, id string) (Teacher, error) {
	var i Teacher
	err := q.db.QueryRow(ctx, getTeacher, id).Scan(&i.ID, &i.Name, &i.Email)
	return i, err
}

const createTeacher = `INSERT INTO teachers (id, name, email) VALUES ($1, $2, $3)`

func (q *Queries) CreateTeacher(ctx context.Context, arg Teacher) error {
	_, err := q.db.Exec(ctx, createTeacher, arg.ID, arg.Name, arg.Email)
	return err
}

const updateTeacher = `UPDATE teachers SET name = $2, email = $3 WHERE id = $1`

func (q *Queries) UpdateTeacher(ctx context.Context, arg Teacher) error {
	return rowsAffected(q.db.Exec(ctx, updateTeacher, arg.ID, arg.Name, arg.Email))
}

const deleteTeacher = `DELETE FROM teachers WHERE id = $1`

func (q *Queries) DeleteTeacher(ctx context.Context, id string) error {
	return rowsAffected(q.db.Exec(ctx, deleteTeacher, id))
}

const listRooms = `SELECT id, name, capacity FROM rooms ORDER BY name ASC`

func (q *Queries) ListRooms(ctx context.Context) ([]Room, error) {
	rows, err := q.db.Query(ctx, listRooms)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Room{}
	for rows.Next() {
		var i Room
		if err := rows.Scan(&i.ID, &i.Name, &i.Capacity); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const getRoom = `SELECT id, name, capacity FROM rooms WHERE id = $1`

func (q *Queries) GetRoom(ctx context.Context, id string) (Room, error) {
	var i Room
	err := q.db.QueryRow(ctx, getRoom, id).Scan(&i.ID, &i.Name, &i.Capacity)
	return i, err
}

const createRoom = `INSERT INTO rooms (id, name, capacity) VALUES ($1, $2, $3)`

func (q *Queries) CreateRoom(ctx context.Context, arg Room) error {
	_, err := q.db.Exec(ctx, createRoom, arg.ID, arg.Name, arg.Capacity)
	return err
}

const updateRoom = `UPDATE rooms SET name = $2, capacity = $3 WHERE id = $1`

func (q *Queries) UpdateRoom(ctx context.Context, arg Room) error {
	return rowsAffected(q.db.Exec(ctx, updateRoom, arg.ID, arg.Name, arg.Capacity))
}

const deleteRoom = `DELETE FROM rooms WHERE id = $1`

func (q *Queries) DeleteRoom(ctx context.Context, id string) error {
	return rowsAffected(q.db.Exec(ctx, deleteRoom, id))
}

const listSubjects = `
SELECT s.id, s.name, s.teacher_id::text, t.name
FROM subjects s
LEFT JOIN teachers t ON t.id = s.teacher_id
ORDER BY s.name ASC`

func (q *Queries) ListSubjects(ctx context.Context) ([]Subject, error) {
	rows, err := q.db.Query(ctx, listSubjects)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Subject{}
	for rows.Next() {
		var i Subject
		if err := rows.Scan(&i.ID, &i.Name, &i.TeacherID, &i.TeacherName); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const getSubject = `
SELECT s.id, s.name, s.teacher_id::text, t.name
FROM subjects s
LEFT JOIN teachers t ON t.id = s.teacher_id
WHERE s.id = $1`

func (q *Queries) GetSubject(ctx context.Context, id string) (Subject, error) {
	var i Subject
	err := q.db.QueryRow(ctx, getSubject, id).Scan(&i.ID, &i.Name, &i.TeacherID, &i.TeacherName)
	return i, err
}

const createSubject = `INSERT INTO subjects (id, name, teacher_id) VALUES ($1, $2, $3)`

func (q *Queries) CreateSubject(ctx context.Context, arg Subject) error {
	_, err := q.db.Exec(ctx, createSubject, arg.ID, arg.Name, arg.TeacherID)
	return err
}

const updateSubject = `UPDATE subjects SET name = $2, teacher_id = $3 WHERE id = $1`

func (q *Queries) UpdateSubject(ctx context.Context, arg Subject) error {
	return rowsAffected(q.db.Exec(ctx, updateSubject, arg.ID, arg.Name, arg.TeacherID))
}

const deleteSubject = `DELETE FROM subjects WHERE id = $1`

func (q *Queries) DeleteSubject(ctx context.Context, id string) error {
	return rowsAffected(q.db.Exec(ctx, deleteSubject, id))
}

const countAll = `
SELECT
	(SELECT count(*) FROM classes),
	(SELECT count(*) FROM teachers),
	(SELECT count(*) FROM rooms),
	(SELECT count(*) FROM subjects),
	(SELECT count(*) FROM schedules)`

func (q *Queries) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	err := q.db.QueryRow(ctx, countAll).Scan(&c.Classes, &c.Teachers, &c.Rooms, &c.Subjects, &c.Schedules)
	return c, err
}
