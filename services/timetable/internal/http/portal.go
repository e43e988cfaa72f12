package http

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Ariuko0507/huwaari/services/timetable/internal/auth"
	"github.com/Ariuko0507/huwaari/services/timetable/internal/board"
	"github.com/Ariuko0507/huwaari/services/timetable/internal/clients"
	"github.com/Ariuko0507/huwaari/services/timetable/internal/db"
	"github.com/Ariuko0507/huwaari/services/timetable/internal/events"
	"github.com/Ariuko0507/huwaari/services/timetable/internal/operations"
	"github.com/Ariuko0507/huwaari/services/timetable/internal/schedule"
)

// Viewer is the signed-in portal user, resolved once per request.
type Viewer struct {
	UserID  string
	Email   string
	Role    string
	ClassID string
	Token   string
}

type viewerKey struct{}

func viewerFromContext(ctx context.Context) *Viewer {
	viewer, _ := ctx.Value(viewerKey{}).(*Viewer)
	return viewer
}

func (s *Server) portalRoutes(r chi.Router) {
	r.Get("/login", s.pageLogin)
	r.Post("/login", s.submitLogin)
	r.Post("/logout", s.submitLogout)

	r.Group(func(r chi.Router) {
		r.Use(s.sessionGuard)

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, rolePath(viewerFromContext(r.Context()).Role), http.StatusSeeOther)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(requireViewerRole(roleAdmin))
			r.Get("/", s.pageAdmin)
			r.Post("/users", s.submitCreateUser)
			r.Post("/users/{id}/role", s.submitUpdateRole)
			r.Post("/{entity}", s.submitSave)
			r.Post("/{entity}/{id}/delete", s.submitDelete)
		})

		r.With(requireViewerRole(roleTeacher)).Get("/teacher", s.pageTeacher)
		r.With(requireViewerRole(roleStudent)).Get("/student", s.pageStudent)
	})
}

func rolePath(role string) string {
	switch role {
	case roleAdmin:
		return "/admin"
	case roleTeacher:
		return "/teacher"
	case roleStudent:
		return "/student"
	default:
		return "/login"
	}
}

// Session

func (s *Server) setSession(w http.ResponseWriter, token string, expires time.Time) {
	cookie := &http.Cookie{
		Name:     s.cfg.SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
	if !expires.IsZero() {
		cookie.Expires = expires
	}
	http.SetCookie(w, cookie)
}

func (s *Server) clearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) sessionToken(r *http.Request) string {
	cookie, err := r.Cookie(s.cfg.SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// sessionGuard turns the session cookie into a Viewer. The role comes from
// the stored profile.
func (s *Server) sessionGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := s.sessionToken(r)
		if token == "" {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		claims, err := auth.ParseToken(s.jwtPublicKey, s.cfg.JWTIssuer, token)
		if err != nil {
			s.clearSession(w)
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		profile, err := s.profiles.GetProfile(r.Context(), claims.UserID)
		if err != nil {
			if !errors.Is(err, clients.ErrProfileNotFound) {
				s.logger.Warn("profile lookup failed", zap.String("user_id", claims.UserID), zap.Error(err))
			}
			s.clearSession(w)
			setFlash(w, "error", "Could not load your account, please sign in again")
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		if !knownRole(profile.Role) {
			s.clearSession(w)
			setFlash(w, "error", "No role assigned to this account")
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		email := profile.Email
		if email == "" {
			email = claims.Email
		}
		viewer := &Viewer{
			UserID:  claims.UserID,
			Email:   email,
			Role:    profile.Role,
			ClassID: profile.ClassID,
			Token:   token,
		}
		ctx := context.WithValue(r.Context(), viewerKey{}, viewer)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireViewerRole sends viewers of any other role to their own page.
func requireViewerRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			viewer := viewerFromContext(r.Context())
			if viewer == nil {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			if viewer.Role != role {
				http.Redirect(w, r, rolePath(viewer.Role), http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type pageData struct {
	Title  string
	Viewer *Viewer
	Flash  *flash
}

// Login

type loginPage struct {
	pageData
	Email string
}

func (s *Server) pageLogin(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, http.StatusOK, "login", loginPage{
		pageData: pageData{Title: "Sign in", Flash: popFlash(w, r)},
	})
}

func (s *Server) submitLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderLoginError(w, http.StatusBadRequest, "", "Invalid form")
		return
	}
	email := strings.ToLower(strings.TrimSpace(r.PostForm.Get("email")))
	password := r.PostForm.Get("password")
	if email == "" || password == "" {
		s.renderLoginError(w, http.StatusBadRequest, email, "Email and password are required")
		return
	}
	if s.identity == nil {
		s.renderLoginError(w, http.StatusServiceUnavailable, email, "Sign in is unavailable")
		return
	}

	session, err := s.identity.Login(r.Context(), email, password)
	if err != nil {
		status := http.StatusUnauthorized
		var reqErr *clients.RequestError
		if !errors.As(err, &reqErr) {
			s.logger.Warn("identity login failed", zap.Error(err))
			status = http.StatusBadGateway
		}
		s.renderLoginError(w, status, email, userMessage(err))
		return
	}
	if !knownRole(session.User.Role) {
		s.renderLoginError(w, http.StatusForbidden, email, "No role assigned to this account")
		return
	}

	var expires time.Time
	if claims, err := auth.ParseToken(s.jwtPublicKey, s.cfg.JWTIssuer, session.AccessToken); err == nil && claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time
	}
	s.setSession(w, session.AccessToken, expires)
	http.Redirect(w, r, rolePath(session.User.Role), http.StatusSeeOther)
}

func (s *Server) renderLoginError(w http.ResponseWriter, status int, email, message string) {
	s.renderPage(w, status, "login", loginPage{
		pageData: pageData{Title: "Sign in", Flash: &flash{Kind: "error", Message: message}},
		Email:    email,
	})
}

func (s *Server) submitLogout(w http.ResponseWriter, r *http.Request) {
	if token := s.sessionToken(r); token != "" && s.identity != nil {
		if err := s.identity.Logout(r.Context(), token); err != nil {
			s.logger.Debug("identity logout failed", zap.Error(err))
		}
	}
	s.clearSession(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// Teacher and student boards

type boardPage struct {
	pageData
	Mode      string
	Matrix    board.Matrix
	Empty     bool
	ClassName string
	All       board.Matrix
}

func (s *Server) pageTeacher(w http.ResponseWriter, r *http.Request) {
	viewer := viewerFromContext(r.Context())
	snap, err := s.cache.Snapshot(r.Context(), s.store)
	if err != nil {
		s.boardError(w, r, err)
		return
	}
	mode := r.URL.Query().Get("mode")
	if mode != "mine" {
		mode = "all"
	}
	if mode == "mine" {
		snap = board.FilterTeacher(snap, viewer.UserID)
	}
	s.renderPage(w, http.StatusOK, "teacher", boardPage{
		pageData: pageData{Title: "Schedule board", Viewer: viewer, Flash: popFlash(w, r)},
		Mode:     mode,
		Matrix:   board.BuildMatrix(snap.Classes, snap.Schedules, nil),
		Empty:    len(snap.Schedules) == 0 || len(snap.Classes) == 0,
	})
}

func (s *Server) pageStudent(w http.ResponseWriter, r *http.Request) {
	viewer := viewerFromContext(r.Context())
	snap, err := s.cache.Snapshot(r.Context(), s.store)
	if err != nil {
		s.boardError(w, r, err)
		return
	}
	own := board.FilterClass(snap, viewer.ClassID)
	className := ""
	if len(own.Classes) > 0 {
		className = own.Classes[0].Name
	}
	s.renderPage(w, http.StatusOK, "student", boardPage{
		pageData:  pageData{Title: "Schedule board", Viewer: viewer, Flash: popFlash(w, r)},
		Matrix:    board.BuildMatrix(own.Classes, own.Schedules, nil),
		Empty:     len(own.Schedules) == 0,
		ClassName: className,
		All:       board.BuildMatrix(snap.Classes, snap.Schedules, nil),
	})
}

func (s *Server) boardError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("board load failed", zap.Error(err))
	viewer := viewerFromContext(r.Context())
	s.renderPage(w, http.StatusInternalServerError, viewer.Role, boardPage{
		pageData: pageData{
			Title:  "Schedule board",
			Viewer: viewer,
			Flash:  &flash{Kind: "error", Message: "Failed to load the schedule"},
		},
		Mode:  "all",
		Empty: true,
	})
}

// Admin

var adminTabs = []adminTab{
	{Key: "classes", Label: "Classes"},
	{Key: "teachers", Label: "Teachers"},
	{Key: "rooms", Label: "Rooms"},
	{Key: "subjects", Label: "Subjects"},
	{Key: "schedule", Label: "Schedule"},
	{Key: "users", Label: "Users"},
}

type adminTab struct {
	Key   string
	Label string
}

type dayOption struct {
	Value int
	Name  string
}

type adminPage struct {
	pageData
	Tab         string
	Tabs        []adminTab
	Heading     string
	Description string
	Stats       db.Counts

	Classes   []db.Class
	Teachers  []db.Teacher
	Rooms     []db.Room
	Subjects  []subjectResponse
	Schedules []board.Item
	Matrix    board.Matrix
	Users     []clients.User
	Days      []dayOption
	Roles     []string

	EditID       string
	ClassForm    operations.ClassInput
	TeacherForm  operations.TeacherInput
	RoomForm     operations.RoomInput
	SubjectForm  operations.SubjectInput
	ScheduleForm operations.ScheduleInput
}

func (s *Server) pageAdmin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewer := viewerFromContext(ctx)
	tab := r.URL.Query().Get("tab")
	if !validTab(tab) {
		tab = "schedule"
	}

	page := adminPage{
		pageData: pageData{Title: "Admin", Viewer: viewer, Flash: popFlash(w, r)},
		Tab:      tab,
		Tabs:     adminTabs,
		Roles:    []string{roleStudent, roleTeacher, roleAdmin},
		EditID:   r.URL.Query().Get("edit"),
		ScheduleForm: operations.ScheduleInput{
			DayOfWeek: 1,
			StartTime: "08:00",
			EndTime:   "09:00",
		},
	}
	for day := 1; day <= 5; day++ {
		page.Days = append(page.Days, dayOption{Value: day, Name: board.DayNames[day]})
	}
	page.Heading, page.Description = tabHeading(tab)

	var err error
	if page.Stats, err = s.stats.Get(ctx); err != nil {
		s.logger.Warn("stats load failed", zap.Error(err))
	}
	if err := s.loadAdminLists(ctx, &page); err != nil {
		s.logger.Error("admin data load failed", zap.Error(err))
		page.Flash = &flash{Kind: "error", Message: "Failed to load data"}
	}
	if tab == "users" && s.identity != nil {
		users, err := s.identity.ListUsers(ctx, viewer.Token)
		if err != nil {
			page.Flash = &flash{Kind: "error", Message: "Users fetch failed: " + userMessage(err)}
		} else {
			page.Users = users
		}
	}
	fillEditForm(&page)
	if tab == "schedule" {
		prefillSchedule(r.URL.Query(), &page.ScheduleForm)
	}

	s.renderPage(w, http.StatusOK, "admin", page)
}

func validTab(tab string) bool {
	for _, t := range adminTabs {
		if t.Key == tab {
			return true
		}
	}
	return false
}

func tabHeading(tab string) (string, string) {
	for _, t := range adminTabs {
		if t.Key != tab {
			continue
		}
		switch tab {
		case "schedule":
			return t.Label, "Manage weekly schedule and time slots"
		case "users":
			return t.Label, "Create student, teacher, or admin users"
		default:
			return t.Label, "Manage " + strings.ToLower(t.Label) + " records"
		}
	}
	return "", ""
}

func (s *Server) loadAdminLists(ctx context.Context, page *adminPage) error {
	var err error
	if page.Classes, err = s.store.ListClasses(ctx); err != nil {
		return err
	}
	if page.Teachers, err = s.store.ListTeachers(ctx); err != nil {
		return err
	}
	if page.Rooms, err = s.store.ListRooms(ctx); err != nil {
		return err
	}
	subjects, err := s.store.ListSubjects(ctx)
	if err != nil {
		return err
	}
	for _, sub := range subjects {
		page.Subjects = append(page.Subjects, mapSubject(sub))
	}
	snap, err := board.Load(ctx, s.store)
	if err != nil {
		return err
	}
	page.Schedules = snap.Schedules
	page.Matrix = board.BuildMatrix(snap.Classes, snap.Schedules, nil)
	page.Matrix.Editable = true
	return nil
}

func fillEditForm(page *adminPage) {
	if page.EditID == "" {
		return
	}
	switch page.Tab {
	case "classes":
		for _, c := range page.Classes {
			if c.ID == page.EditID {
				page.ClassForm = operations.ClassInput{ID: c.ID, Name: c.Name, GradeLevel: int(c.GradeLevel)}
			}
		}
	case "teachers":
		for _, t := range page.Teachers {
			if t.ID == page.EditID {
				form := operations.TeacherInput{ID: t.ID, Name: t.Name}
				if t.Email != nil {
					form.Email = *t.Email
				}
				page.TeacherForm = form
			}
		}
	case "rooms":
		for _, room := range page.Rooms {
			if room.ID == page.EditID {
				page.RoomForm = operations.RoomInput{ID: room.ID, Name: room.Name, Capacity: int(room.Capacity)}
			}
		}
	case "subjects":
		for _, sub := range page.Subjects {
			if sub.ID == page.EditID {
				page.SubjectForm = operations.SubjectInput{ID: sub.ID, Name: sub.Name, TeacherID: sub.TeacherID}
			}
		}
	case "schedule":
		for _, item := range page.Schedules {
			if item.ID == page.EditID {
				page.ScheduleForm = operations.ScheduleInput{
					ID:        item.ID,
					ClassID:   item.ClassID,
					SubjectID: item.SubjectID,
					RoomID:    item.RoomID,
					DayOfWeek: item.DayOfWeek,
					StartTime: item.StartTime,
					EndTime:   item.EndTime,
				}
			}
		}
	}
}

// slotKeys maps the schedule query keys used by matrix cell links and
// rejected saves to their form fields.
var slotKeys = map[string]string{
	"class":   "class_id",
	"subject": "subject_id",
	"room":    "room_id",
	"day":     "day_of_week",
	"start":   "start_time",
	"end":     "end_time",
}

// prefillSchedule overlays slot values from the query onto the schedule
// form. Malformed values are ignored.
func prefillSchedule(query url.Values, form *operations.ScheduleInput) {
	if v := query.Get("class"); v != "" {
		form.ClassID = v
	}
	if v := query.Get("subject"); v != "" {
		form.SubjectID = v
	}
	if v := query.Get("room"); v != "" {
		form.RoomID = v
	}
	if day, err := strconv.Atoi(query.Get("day")); err == nil && day >= schedule.FirstDay && day <= schedule.LastDay {
		form.DayOfWeek = day
	}
	if clock, err := schedule.ParseClock(query.Get("start")); err == nil {
		form.StartTime = clock.String()
	}
	if clock, err := schedule.ParseClock(query.Get("end")); err == nil {
		form.EndTime = clock.String()
	}
}

// entityTabs maps the form entity in /admin/{entity} to its tab.
var entityTabs = map[string]string{
	"classes":   "classes",
	"teachers":  "teachers",
	"rooms":     "rooms",
	"subjects":  "subjects",
	"schedules": "schedule",
}

var entityLabels = map[string]string{
	"classes":   "Class",
	"teachers":  "Teacher",
	"rooms":     "Room",
	"subjects":  "Subject",
	"schedules": "Schedule",
}

func (s *Server) submitSave(w http.ResponseWriter, r *http.Request) {
	entity := chi.URLParam(r, "entity")
	tab, ok := entityTabs[entity]
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		s.adminRedirect(w, r, tab, "", "error", "Invalid form")
		return
	}
	form := r.PostForm
	id := strings.TrimSpace(form.Get("id"))

	var err error
	switch entity {
	case "classes":
		grade, convErr := formInt(form, "grade_level", "Grade level")
		if convErr != nil {
			err = convErr
			break
		}
		_, err = s.ops.SaveClass(r.Context(), operations.ClassInput{ID: id, Name: form.Get("name"), GradeLevel: grade})
	case "teachers":
		_, err = s.ops.SaveTeacher(r.Context(), operations.TeacherInput{ID: id, Name: form.Get("name"), Email: form.Get("email")})
	case "rooms":
		capacity, convErr := formInt(form, "capacity", "Capacity")
		if convErr != nil {
			err = convErr
			break
		}
		_, err = s.ops.SaveRoom(r.Context(), operations.RoomInput{ID: id, Name: form.Get("name"), Capacity: capacity})
	case "subjects":
		teacherID := form.Get("teacher_id")
		_, err = s.ops.SaveSubject(r.Context(), operations.SubjectInput{ID: id, Name: form.Get("name"), TeacherID: &teacherID})
	case "schedules":
		day, convErr := formInt(form, "day_of_week", "Day")
		if convErr != nil {
			err = convErr
			break
		}
		_, err = s.ops.SaveSchedule(r.Context(), operations.ScheduleInput{
			ID:        id,
			ClassID:   form.Get("class_id"),
			SubjectID: form.Get("subject_id"),
			RoomID:    form.Get("room_id"),
			DayOfWeek: day,
			StartTime: form.Get("start_time"),
			EndTime:   form.Get("end_time"),
		})
	}
	if err != nil {
		query := url.Values{"tab": {tab}}
		if id != "" {
			query.Set("edit", id)
		}
		if entity == "schedules" {
			for key, field := range slotKeys {
				if v := strings.TrimSpace(form.Get(field)); v != "" {
					query.Set(key, v)
				}
			}
		}
		s.redirectAdmin(w, r, query, "error", userMessage(err))
		return
	}

	message := entityLabels[entity] + " added"
	if id != "" {
		message = entityLabels[entity] + " updated"
	}
	s.adminRedirect(w, r, tab, "", "success", message)
}

func (s *Server) submitDelete(w http.ResponseWriter, r *http.Request) {
	entity := chi.URLParam(r, "entity")
	tab, ok := entityTabs[entity]
	if !ok {
		http.NotFound(w, r)
		return
	}
	id := chi.URLParam(r, "id")

	var err error
	switch entity {
	case "classes":
		err = s.ops.DeleteClass(r.Context(), id)
	case "teachers":
		err = s.ops.DeleteTeacher(r.Context(), id)
	case "rooms":
		err = s.ops.DeleteRoom(r.Context(), id)
	case "subjects":
		err = s.ops.DeleteSubject(r.Context(), id)
	case "schedules":
		err = s.ops.DeleteSchedule(r.Context(), id)
	}
	if err != nil {
		s.adminRedirect(w, r, tab, "", "error", userMessage(err))
		return
	}
	s.adminRedirect(w, r, tab, "", "success", entityLabels[entity]+" deleted")
}

func (s *Server) submitCreateUser(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.adminRedirect(w, r, "users", "", "error", "Invalid form")
		return
	}
	viewer := viewerFromContext(r.Context())
	form := r.PostForm
	req := clients.CreateUserRequest{
		Email:    strings.ToLower(strings.TrimSpace(form.Get("email"))),
		Password: form.Get("password"),
		Role:     strings.TrimSpace(form.Get("role")),
	}
	if req.Role == "" {
		req.Role = roleStudent
	}
	if req.Email == "" || req.Password == "" {
		s.adminRedirect(w, r, "users", "", "error", "Email and password are required")
		return
	}
	switch req.Role {
	case roleTeacher:
		req.Name = strings.TrimSpace(form.Get("name"))
	case roleStudent:
		classID := strings.TrimSpace(form.Get("class_id"))
		if classID == "" {
			s.adminRedirect(w, r, "users", "", "error", "Please select a class for the student")
			return
		}
		req.ClassID = &classID
	}
	if s.identity == nil {
		s.adminRedirect(w, r, "users", "", "error", "User management is unavailable")
		return
	}

	userID, err := s.identity.CreateUser(r.Context(), viewer.Token, req)
	if err != nil {
		s.adminRedirect(w, r, "users", "", "error", userMessage(err))
		return
	}
	s.publish(r.Context(), events.DataUpdated("user", userID))
	s.adminRedirect(w, r, "users", "", "success", "User created")
}

func (s *Server) submitUpdateRole(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.adminRedirect(w, r, "users", "", "error", "Invalid form")
		return
	}
	if s.identity == nil {
		s.adminRedirect(w, r, "users", "", "error", "User management is unavailable")
		return
	}
	viewer := viewerFromContext(r.Context())
	userID := chi.URLParam(r, "id")
	role := strings.TrimSpace(r.PostForm.Get("role"))
	if err := s.identity.UpdateRole(r.Context(), viewer.Token, userID, role); err != nil {
		s.adminRedirect(w, r, "users", "", "error", "Role update failed: "+userMessage(err))
		return
	}
	s.publish(r.Context(), events.DataUpdated("user", userID))
	s.adminRedirect(w, r, "users", "", "success", "Role updated: "+role)
}

func (s *Server) publish(ctx context.Context, evt events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("publish data-updated failed", zap.Error(err))
	}
}

func (s *Server) adminRedirect(w http.ResponseWriter, r *http.Request, tab, editID, kind, message string) {
	query := url.Values{"tab": {tab}}
	if editID != "" {
		query.Set("edit", editID)
	}
	s.redirectAdmin(w, r, query, kind, message)
}

func (s *Server) redirectAdmin(w http.ResponseWriter, r *http.Request, query url.Values, kind, message string) {
	setFlash(w, kind, message)
	http.Redirect(w, r, "/admin?"+query.Encode(), http.StatusSeeOther)
}

func formInt(form url.Values, key, label string) (int, error) {
	raw := strings.TrimSpace(form.Get(key))
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &operations.Error{Code: operations.ErrInvalidInput, Message: label + " must be a number", Status: http.StatusBadRequest}
	}
	return value, nil
}

// userMessage is the text shown for err: service messages verbatim, a
// generic line otherwise.
func userMessage(err error) string {
	var opErr *operations.Error
	if errors.As(err, &opErr) {
		return opErr.Error()
	}
	var reqErr *clients.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Error()
	}
	return "Something went wrong, please try again"
}

func (s *Server) renderPage(w http.ResponseWriter, status int, name string, data interface{}) {
	if err := s.pages.render(w, status, name, data); err != nil {
		s.logger.Error("render page failed", zap.String("page", name), zap.Error(err))
	}
}
