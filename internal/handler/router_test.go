package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/wellness-api/internal/events"
	"github.com/noah-isme/wellness-api/internal/kv"
	"github.com/noah-isme/wellness-api/internal/middleware"
	"github.com/noah-isme/wellness-api/internal/models"
	"github.com/noah-isme/wellness-api/internal/repository"
	"github.com/noah-isme/wellness-api/internal/service"
	"github.com/noah-isme/wellness-api/pkg/jobs"
	"github.com/noah-isme/wellness-api/pkg/storage"
)

type responseEnvelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta map[string]interface{} `json:"meta"`
}

type enqueueRecorder struct {
	jobs []jobs.Job
}

func (q *enqueueRecorder) Enqueue(job jobs.Job) error {
	q.jobs = append(q.jobs, job)
	return nil
}

type testApp struct {
	router *gin.Engine
	store  *repository.DataStore
	hub    *events.Hub
	queue  *enqueueRecorder
}

func newTestApp(t *testing.T) testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	backing := kv.NewMemory()
	hub := events.NewHub(nil)
	store := repository.NewDataStore(repository.Deps{KV: backing, Events: hub})

	markers := service.NewMarkerService(backing, "session:", nil)
	auth, err := service.NewAuthService(models.DemoCredentials, markers, nil, nil, service.AuthConfig{
		AccessTokenSecret: "secret",
		BcryptCost:        bcrypt.MinCost,
	})
	require.NoError(t, err)
	navigation, err := service.NewNavigationService()
	require.NoError(t, err)

	files, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	exporter := service.NewExportService(store, files, storage.NewSignedURLSigner("secret", time.Hour), service.ExportConfig{}, nil)
	queue := &enqueueRecorder{}
	reports := service.NewReportService(service.ReportServiceParams{
		Jobs:     store.ReportJobs,
		Students: store,
		Queue:    queue,
		Exporter: exporter,
	})
	metrics := service.NewMetricsService()

	handlers := Handlers{
		Auth:       NewAuthHandler(auth, false),
		Navigation: NewNavigationHandler(navigation, auth),
		Students:   NewStudentHandler(service.NewStudentService(store, nil)),
		Dashboard:  NewDashboardHandler(service.NewDashboardService(service.DashboardServiceParams{Store: store, Users: auth})),
		Moods:      NewMoodHandler(service.NewMoodService(store.MoodEntries, nil, nil)),
		Sessions:   NewSessionHandler(service.NewSessionService(store.Sessions, nil, nil)),
		Tasks:      NewTaskHandler(service.NewTaskService(store.Tasks, nil, nil)),
		Tutoring:   NewTutoringHandler(service.NewTutoringService(store.TutoringSessions, nil, nil)),
		Referrals:  NewReferralHandler(service.NewReferralService(store.Referrals, nil, nil)),
		Psychopedagogy: NewPsychopedagogyHandler(service.NewPsychopedagogyService(
			store.PsychopedagogyReferrals, store.PsychopedagogySessions, store.SupportPlans, nil, nil)),
		Messages: NewMessageHandler(service.NewMessageService(store.Messages, nil, nil)),
		Reports:  NewReportHandler(reports),
		Events:   NewEventsHandler(hub, time.Second, nil),
		Metrics:  NewMetricsHandler(metrics),
	}

	router := gin.New()
	router.Use(middleware.Metrics(metrics))
	Register(router.Group("/api/v1"), handlers, RouterDeps{
		Gate:         middleware.NewGate(auth, markers, nil),
		LoginLimiter: middleware.NewIPRateLimiter(600, 100),
	})
	return testApp{router: router, store: store, hub: hub, queue: queue}
}

func (a testApp) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, responseEnvelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)

	var envelope responseEnvelope
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") != "" {
		_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	}
	return rec, envelope
}

func (a testApp) login(t *testing.T, email, password string) string {
	t.Helper()
	rec, envelope := a.do(t, http.MethodPost, "/api/v1/auth/login", "", models.LoginRequest{Email: email, Password: password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp models.LoginResponse
	require.NoError(t, json.Unmarshal(envelope.Data, &resp))
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	app := newTestApp(t)

	rec, envelope := app.do(t, http.MethodPost, "/api/v1/auth/login", "", models.LoginRequest{Email: "admin@sistema.edu", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	require.NotNil(t, envelope.Error)

	rec, _ = app.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "admin@sistema.edu"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginSetsSessionCookie(t *testing.T) {
	app := newTestApp(t)

	rec, _ := app.do(t, http.MethodPost, "/api/v1/auth/login", "", models.LoginRequest{Email: "tutor@sistema.edu", Password: "tutor123"})
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, middleware.SessionCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
}

func TestRoleGroupsAreGated(t *testing.T) {
	app := newTestApp(t)
	student := app.login(t, "estudiante@sistema.edu", "est123")
	tutor := app.login(t, "tutor@sistema.edu", "tutor123")

	rec, envelope := app.do(t, http.MethodGet, "/api/v1/student/moods", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, middleware.LoginRoute, envelope.Meta["redirect"])

	rec, _ = app.do(t, http.MethodGet, "/api/v1/psychologist/sessions", student, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec, _ = app.do(t, http.MethodGet, "/api/v1/admin/users", tutor, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec, _ = app.do(t, http.MethodGet, "/api/v1/students", student, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec, _ = app.do(t, http.MethodGet, "/api/v1/students/EST-5678", student, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec, _ = app.do(t, http.MethodGet, "/api/v1/students/EST-1234", student, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = app.do(t, http.MethodGet, "/api/v1/students", tutor, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogoutClearsMarkers(t *testing.T) {
	app := newTestApp(t)
	token := app.login(t, "admin@sistema.edu", "admin123")

	rec, _ := app.do(t, http.MethodGet, "/api/v1/navigation", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = app.do(t, http.MethodPost, "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec, _ = app.do(t, http.MethodGet, "/api/v1/navigation", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestStudentMoodFlow(t *testing.T) {
	app := newTestApp(t)
	student := app.login(t, "estudiante@sistema.edu", "est123")
	psychologist := app.login(t, "psicologo@sistema.edu", "psi123")

	rec, _ := app.do(t, http.MethodPost, "/api/v1/student/moods", student, service.RecordMoodRequest{Mood: 9})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	entries, err := app.store.MoodEntries.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, entries)

	rec, _ = app.do(t, http.MethodPost, "/api/v1/student/moods", student, service.RecordMoodRequest{Mood: 4, Comment: "bien"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, envelope := app.do(t, http.MethodGet, "/api/v1/student/moods", student, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var mine []models.MoodEntry
	require.NoError(t, json.Unmarshal(envelope.Data, &mine))
	require.Len(t, mine, 1)
	assert.Equal(t, "EST-1234", mine[0].StudentID)

	rec, envelope = app.do(t, http.MethodGet, "/api/v1/students/EST-1234/moods", psychologist, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var seen []models.MoodEntry
	require.NoError(t, json.Unmarshal(envelope.Data, &seen))
	assert.Len(t, seen, 1)
}

func TestTaskToggleAndFeedback(t *testing.T) {
	app := newTestApp(t)
	student := app.login(t, "estudiante@sistema.edu", "est123")
	psychologist := app.login(t, "psicologo@sistema.edu", "psi123")

	rec, envelope := app.do(t, http.MethodPost, "/api/v1/psychologist/tasks", psychologist, service.AssignTaskRequest{
		StudentID: "EST-1234", Task: "Registro de pensamientos", DueDate: "2030-01-10",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var task models.Task
	require.NoError(t, json.Unmarshal(envelope.Data, &task))

	rec, _ = app.do(t, http.MethodPatch, "/api/v1/student/tasks/"+task.ID, student, map[string]string{"action": "explode"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, envelope = app.do(t, http.MethodPatch, "/api/v1/student/tasks/"+task.ID, student, map[string]string{"action": "toggle"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(envelope.Data, &task))
	assert.Equal(t, models.TaskCompleted, task.Status)
	assert.NotEmpty(t, task.CompletedDate)

	rec, _ = app.do(t, http.MethodPost, "/api/v1/psychologist/tasks/"+task.ID+"/feedback", psychologist, service.TaskFeedbackRequest{Feedback: "Muy bien"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = app.do(t, http.MethodDelete, "/api/v1/psychologist/tasks/"+task.ID, psychologist, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec, _ = app.do(t, http.MethodDelete, "/api/v1/psychologist/tasks/"+task.ID, psychologist, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSessionLifecycleRejectsInvalidTransition(t *testing.T) {
	app := newTestApp(t)
	psychologist := app.login(t, "psicologo@sistema.edu", "psi123")

	rec, envelope := app.do(t, http.MethodPost, "/api/v1/psychologist/sessions", psychologist, service.CreateSessionRequest{
		StudentID: "EST-1234", Type: "individual", Date: "2030-02-01", Time: "10:00", Duration: "50 min",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var session models.Session
	require.NoError(t, json.Unmarshal(envelope.Data, &session))

	rec, _ = app.do(t, http.MethodPost, "/api/v1/psychologist/sessions/"+session.ID+"/cancel", psychologist, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, envelope = app.do(t, http.MethodPost, "/api/v1/psychologist/sessions/"+session.ID+"/complete", psychologist, service.CompleteSessionRequest{SessionNotes: "n/a"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "INVALID_TRANSITION", envelope.Error.Code)
}

func TestMessagesBetweenRoles(t *testing.T) {
	app := newTestApp(t)
	student := app.login(t, "estudiante@sistema.edu", "est123")
	psychologist := app.login(t, "psicologo@sistema.edu", "psi123")

	rec, _ := app.do(t, http.MethodPost, "/api/v1/student/messages", student, service.SendMessageRequest{To: "PSY-001", Content: "Hola"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec, envelope := app.do(t, http.MethodGet, "/api/v1/messages/unread", psychologist, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"unread":1}`, string(envelope.Data))

	rec, envelope = app.do(t, http.MethodPost, "/api/v1/messages/conversations/EST-1234/read", psychologist, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"updated":1}`, string(envelope.Data))

	_, envelope = app.do(t, http.MethodGet, "/api/v1/messages/unread", psychologist, nil)
	assert.JSONEq(t, `{"unread":0}`, string(envelope.Data))
}

func TestAdminQueuesReport(t *testing.T) {
	app := newTestApp(t)
	admin := app.login(t, "admin@sistema.edu", "admin123")

	rec, _ := app.do(t, http.MethodPost, "/api/v1/admin/reports", admin, map[string]string{"type": "grades", "format": "csv"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, envelope := app.do(t, http.MethodPost, "/api/v1/admin/reports", admin, map[string]string{"type": "risk", "format": "csv"})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	require.Len(t, app.queue.jobs, 1)

	var job struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(envelope.Data, &job))
	assert.Equal(t, string(models.ReportStatusQueued), job.Status)

	rec, _ = app.do(t, http.MethodGet, "/api/v1/admin/reports/"+job.ID, admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = app.do(t, http.MethodGet, "/api/v1/reports/download/not-a-token", "", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDashboardPerRole(t *testing.T) {
	app := newTestApp(t)

	for _, cred := range models.DemoCredentials {
		token := app.login(t, cred.Email, cred.Password)
		rec, envelope := app.do(t, http.MethodGet, "/api/v1/dashboard", token, nil)
		require.Equal(t, http.StatusOK, rec.Code, cred.Email)
		assert.Equal(t, string(cred.Role), envelope.Meta["role"])
		assert.Equal(t, "false", rec.Header().Get(middleware.CacheHitHeader))
	}
}

func TestVisibleToHidesOtherStudents(t *testing.T) {
	filter := visibleTo(models.Actor{UserID: "EST-1234", Role: models.RoleStudent})
	assert.True(t, filter(events.Event{Collection: repository.CollectionTasks, StudentID: "EST-1234"}))
	assert.False(t, filter(events.Event{Collection: repository.CollectionTasks, StudentID: "EST-5678"}))
	assert.False(t, filter(events.Event{Collection: repository.CollectionReportJobs}))
	assert.Nil(t, visibleTo(models.Actor{UserID: "PSY-001", Role: models.RolePsychologist}))
}

func TestStudentStreamOnlySeesOwnMessages(t *testing.T) {
	hub := events.NewHub(nil)
	store := repository.NewDataStore(repository.Deps{KV: kv.NewMemory(), Events: hub})
	sub := hub.Subscribe(visibleTo(models.Actor{UserID: "EST-1234", Role: models.RoleStudent}), 8)
	defer sub.Close()
	ctx := context.Background()

	_, err := store.Messages.Add(ctx, models.Message{From: "PSY-001", To: "EST-5678", Content: "privado"})
	require.NoError(t, err)
	mine, err := store.Messages.Add(ctx, models.Message{From: "PSY-001", To: "EST-1234", Content: "hola"})
	require.NoError(t, err)
	_, _, err = store.Messages.MarkRead(ctx, mine.ID)
	require.NoError(t, err)

	for _, op := range []events.Op{events.OpAdd, events.OpUpdate} {
		select {
		case e := <-sub.C():
			assert.Equal(t, mine.ID, e.ID)
			assert.Equal(t, op, e.Op)
		case <-time.After(time.Second):
			t.Fatal("own message event not delivered")
		}
	}
	select {
	case e := <-sub.C():
		t.Fatalf("unexpected event %+v", e)
	default:
	}

	filter := visibleTo(models.Actor{UserID: "EST-1234", Role: models.RoleStudent})
	assert.True(t, filter(events.Event{Collection: repository.CollectionTasks, Op: events.OpReset}))
	assert.False(t, filter(events.Event{Collection: repository.CollectionMessages, Participants: []string{"PSY-001", "EST-5678"}}))
}
