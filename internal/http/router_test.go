package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/onboarding-backend/internal/data/kvstore"
	"github.com/yungbote/onboarding-backend/internal/data/repos"
	"github.com/yungbote/onboarding-backend/internal/data/testutil"
	types "github.com/yungbote/onboarding-backend/internal/domain/onboarding"
	httpH "github.com/yungbote/onboarding-backend/internal/http/handlers"
	httpMW "github.com/yungbote/onboarding-backend/internal/http/middleware"
	"github.com/yungbote/onboarding-backend/internal/modules/onboarding/extract"
	"github.com/yungbote/onboarding-backend/internal/platform/calendar"
	"github.com/yungbote/onboarding-backend/internal/platform/gemini"
	"github.com/yungbote/onboarding-backend/internal/services"
)

const testSecret = "router-test-secret"

type failingCompleter struct{}

func (failingCompleter) Complete(context.Context, string, *gemini.Attachment) (string, error) {
	return "", errors.New("completion endpoint returned 503")
}

type recordingInserter struct {
	events []types.CalendarEvent
}

func (r *recordingInserter) Insert(_ context.Context, _ calendar.Credentials, _ string, ev types.CalendarEvent) (string, error) {
	r.events = append(r.events, ev)
	return fmt.Sprintf("evt-%d", len(r.events)), nil
}

type testEnv struct {
	engine   *gin.Engine
	token    string
	inserter *recordingInserter
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := testutil.Logger(t)
	rs := repos.New(kvstore.NewGormStore(testutil.SQLite(t), log), log)

	verifier, err := services.NewTokenVerifier(log, testSecret, "")
	if err != nil {
		t.Fatalf("NewTokenVerifier: %v", err)
	}
	pipeline := services.NewPipelineService(log, failingCompleter{}, extract.New(nil), nil, nil, nil, rs, services.PipelineConfig{UploadTimeout: time.Second})
	inserter := &recordingInserter{}

	engine := NewRouter(RouterConfig{
		Log:              log,
		AuthMiddleware:   httpMW.NewAuthMiddleware(log, verifier),
		HealthHandler:    httpH.NewHealthHandler(),
		DocumentHandler:  httpH.NewDocumentHandler(log, pipeline, services.NewDocumentService(log, rs.Documents, nil, nil, time.Second), 1<<20),
		QuizHandler:      httpH.NewQuizHandler(log, pipeline, services.NewQuizService(log, rs.Quizzes)),
		StudyPlanHandler: httpH.NewStudyPlanHandler(log, pipeline, services.NewStudyPlanService(log, rs.StudyPlans)),
		GoalHandler:      httpH.NewGoalHandler(log, services.NewGoalService(log, rs.Goals)),
		CalendarHandler:  httpH.NewCalendarHandler(log, services.NewCalendarService(log, inserter, time.Second)),
		PrefsHandler:     httpH.NewPrefsHandler(log, services.NewPrefsService(log, rs.Prefs)),
		DashboardHandler: httpH.NewDashboardHandler(log, services.NewDashboardService(log, rs)),
	})
	tok, err := services.SignToken(testSecret, uuid.NewString(), time.Hour)
	if err != nil {
		t.Fatalf("SignToken: %v", err)
	}
	return &testEnv{engine: engine, token: tok, inserter: inserter}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.token)
	rec := httptest.NewRecorder()
	e.engine.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) upload(t *testing.T, fileName, kind string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := fw.Write(data); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if kind != "" {
		if err := mw.WriteField("kind", kind); err != nil {
			t.Fatalf("WriteField: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+e.token)
	rec := httptest.NewRecorder()
	e.engine.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return out
}

func TestHealthcheckIsPublic(t *testing.T) {
	env := newTestEnv(t)
	rec := httptest.NewRecorder()
	env.engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthcheck: code=%d body=%q", rec.Code, rec.Body.String())
	}
}

func TestAPIRequiresToken(t *testing.T) {
	env := newTestEnv(t)
	rec := httptest.NewRecorder()
	env.engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/goals", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status: want=401 got=%d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "auth_required") {
		t.Fatalf("body: want auth_required code got=%s", rec.Body.String())
	}
}

func TestUploadWithFailedCompletionStillCreatesDocument(t *testing.T) {
	env := newTestEnv(t)
	rec := env.upload(t, "security_policy.pdf", "", []byte("%PDF-1.4\nnot really a pdf\n%%EOF"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload: want=201 got=%d body=%s", rec.Code, rec.Body.String())
	}
	res := decode[services.DocumentResult](t, rec)
	if strings.TrimSpace(res.Document.Summary) == "" {
		t.Fatalf("summary: want non-empty fallback")
	}
	if res.Document.FileKind != types.FileKindPDF {
		t.Fatalf("file kind: want=pdf got=%s", res.Document.FileKind)
	}
	if !res.Document.LocalOnly || !res.Run.Fallback || res.Run.State != services.StateDone {
		t.Fatalf("run: local_only=%v fallback=%v state=%s", res.Document.LocalOnly, res.Run.Fallback, res.Run.State)
	}

	list := env.do(t, http.MethodGet, "/api/documents", nil)
	docs := decode[struct {
		Documents []types.Document `json:"documents"`
	}](t, list)
	if len(docs.Documents) != 1 || docs.Documents[0].ID != res.Document.ID {
		t.Fatalf("list: got=%+v", docs.Documents)
	}

	prefs := decode[struct {
		Prefs map[string]string `json:"prefs"`
	}](t, env.do(t, http.MethodGet, "/api/prefs", nil))
	if prefs.Prefs[repos.PrefSummary] != res.Document.Summary {
		t.Fatalf("summary pref: want=%q got=%q", res.Document.Summary, prefs.Prefs[repos.PrefSummary])
	}

	if rec := env.do(t, http.MethodDelete, "/api/documents/"+res.Document.ID.String(), nil); rec.Code != http.StatusNoContent {
		t.Fatalf("delete: want=204 got=%d", rec.Code)
	}
	if rec := env.do(t, http.MethodDelete, "/api/documents/"+res.Document.ID.String(), nil); rec.Code != http.StatusNotFound {
		t.Fatalf("delete again: want=404 got=%d", rec.Code)
	}
}

func TestUploadRejectsUnknownKind(t *testing.T) {
	env := newTestEnv(t)
	rec := env.upload(t, "notes.txt", "spreadsheet", []byte("hello"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: want=400 got=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestUploadOverBodyLimitIsTooLarge(t *testing.T) {
	env := newTestEnv(t)
	rec := env.upload(t, "scan.pdf", "pdf", bytes.Repeat([]byte("x"), 3<<20))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status: want=413 got=%d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "file_too_large") {
		t.Fatalf("body: want file_too_large code got=%s", rec.Body.String())
	}
}

func TestQuizFlowOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	up := decode[services.DocumentResult](t, env.upload(t, "handbook.png", "image", []byte("\x89PNG\r\n\x1a\n0000")))

	rec := env.do(t, http.MethodPost, "/api/documents/"+up.Document.ID.String()+"/quiz", map[string]int{"question_count": 3})
	if rec.Code != http.StatusCreated {
		t.Fatalf("generate quiz: want=201 got=%d body=%s", rec.Code, rec.Body.String())
	}
	quiz := decode[services.QuizResult](t, rec)
	if len(quiz.Quiz.Questions) == 0 || !quiz.Quiz.Fallback {
		t.Fatalf("quiz: questions=%d fallback=%v", len(quiz.Quiz.Questions), quiz.Quiz.Fallback)
	}

	if rec := env.do(t, http.MethodPost, "/api/quiz/submit", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("submit unanswered: want=400 got=%d", rec.Code)
	}

	answers := make([]int, len(quiz.Quiz.Questions))
	for i, q := range quiz.Quiz.Questions {
		answers[i] = q.CorrectOptionIndex
	}
	if rec := env.do(t, http.MethodPut, "/api/quiz/answers", map[string][]int{"answers": answers}); rec.Code != http.StatusOK {
		t.Fatalf("save answers: want=200 got=%d body=%s", rec.Code, rec.Body.String())
	}
	st := decode[services.QuizState](t, env.do(t, http.MethodPost, "/api/quiz/submit", nil))
	if !st.Submitted || st.Score == nil || st.Score.Percent != 100 {
		t.Fatalf("submit: submitted=%v score=%+v", st.Submitted, st.Score)
	}
}

func TestGoalProgressOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/goals", map[string]any{"title": "Finish security training", "category": "compliance"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: want=201 got=%d body=%s", rec.Code, rec.Body.String())
	}
	goal := decode[types.Goal](t, rec)
	if goal.ProgressPercent != 0 {
		t.Fatalf("initial progress: want=0 got=%d", goal.ProgressPercent)
	}

	rec = env.do(t, http.MethodPut, "/api/goals/"+goal.ID.String()+"/progress", map[string]int{"progress_percent": 75})
	if rec.Code != http.StatusOK {
		t.Fatalf("progress: want=200 got=%d body=%s", rec.Code, rec.Body.String())
	}
	list := decode[struct {
		Goals []types.Goal `json:"goals"`
	}](t, env.do(t, http.MethodGet, "/api/goals", nil))
	if len(list.Goals) != 1 || list.Goals[0].ProgressPercent != 75 {
		t.Fatalf("list: got=%+v", list.Goals)
	}

	if rec := env.do(t, http.MethodPut, "/api/goals/"+goal.ID.String()+"/progress", map[string]any{}); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing progress: want=400 got=%d", rec.Code)
	}
	if rec := env.do(t, http.MethodPost, "/api/goals", map[string]any{"title": "  "}); rec.Code != http.StatusBadRequest {
		t.Fatalf("blank title: want=400 got=%d", rec.Code)
	}
	if rec := env.do(t, http.MethodPatch, "/api/goals/not-a-uuid", map[string]any{}); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id: want=400 got=%d", rec.Code)
	}
}

func TestStudyPlanToggleOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/study-plans", map[string]any{"title": "Week one", "days": 2, "time_available": 60})
	if rec.Code != http.StatusCreated {
		t.Fatalf("generate: want=201 got=%d body=%s", rec.Code, rec.Body.String())
	}
	plan := decode[services.PlanResult](t, rec).Plan
	if len(plan.Days) != 2 || len(plan.Days[0].Sessions) == 0 {
		t.Fatalf("plan days: got=%+v", plan.Days)
	}
	sid := plan.Days[0].Sessions[0].ID
	rec = env.do(t, http.MethodPost, "/api/study-plans/"+plan.ID.String()+"/sessions/"+sid+"/toggle", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle: want=200 got=%d body=%s", rec.Code, rec.Body.String())
	}
	toggled := decode[types.StudyPlan](t, rec)
	if toggled.ProgressPercent == 0 || len(toggled.CompletedSessionIDs) != 1 {
		t.Fatalf("toggle: progress=%d completed=%v", toggled.ProgressPercent, toggled.CompletedSessionIDs)
	}
	if rec := env.do(t, http.MethodPost, "/api/study-plans/"+plan.ID.String()+"/sessions/d9-s9/toggle", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown session: want=400 got=%d", rec.Code)
	}
}

func TestCalendarSessionOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	rec := env.do(t, http.MethodPost, "/api/calendar/sessions", map[string]any{
		"summary":        "Study: security policy",
		"start":          start,
		"end":            start.Add(time.Hour),
		"time_zone":      "UTC",
		"include_breaks": true,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("schedule: want=201 got=%d body=%s", rec.Code, rec.Body.String())
	}
	res := decode[services.ScheduledSession](t, rec)
	if len(res.Breaks) != 1 || len(env.inserter.events) != 2 {
		t.Fatalf("breaks=%d events=%d", len(res.Breaks), len(env.inserter.events))
	}

	rec = env.do(t, http.MethodPost, "/api/calendar/sessions", map[string]any{
		"summary": "backwards",
		"start":   start,
		"end":     start.Add(-time.Hour),
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("end before start: want=400 got=%d", rec.Code)
	}
}

func TestPrefsAndDashboardOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	if rec := env.do(t, http.MethodPut, "/api/prefs", map[string]string{"active-tab": "quiz", "upload-type": "camera"}); rec.Code != http.StatusOK {
		t.Fatalf("set prefs: want=200 got=%d body=%s", rec.Code, rec.Body.String())
	}
	if rec := env.do(t, http.MethodPut, "/api/prefs", map[string]string{"summary": "forged"}); rec.Code != http.StatusBadRequest {
		t.Fatalf("read-only pref: want=400 got=%d", rec.Code)
	}
	prefs := decode[struct {
		Prefs map[string]string `json:"prefs"`
	}](t, env.do(t, http.MethodGet, "/api/prefs", nil))
	if prefs.Prefs["upload-type"] != string(types.FileKindCameraCapture) {
		t.Fatalf("upload-type: want=%s got=%q", types.FileKindCameraCapture, prefs.Prefs["upload-type"])
	}

	rec := env.do(t, http.MethodGet, "/api/dashboard", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard: want=200 got=%d body=%s", rec.Code, rec.Body.String())
	}
}
