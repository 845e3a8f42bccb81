package v1

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/dentkao/dentkao/internal/profile"
	"github.com/dentkao/dentkao/server/auth"
	"github.com/dentkao/dentkao/server/corpus"
	"github.com/dentkao/dentkao/server/progress"
	"github.com/dentkao/dentkao/server/queryengine"
	"github.com/dentkao/dentkao/server/service/study"
	"github.com/dentkao/dentkao/store"
)

// memDriver is an in-memory store.Driver for router tests.
type memDriver struct {
	blobs map[string]*store.StateBlob
}

func newMemDriver() *memDriver {
	return &memDriver{blobs: map[string]*store.StateBlob{}}
}

func (d *memDriver) GetDB() *sql.DB { return nil }
func (d *memDriver) Close() error   { return nil }

func (d *memDriver) IsInitialized(context.Context) (bool, error) { return true, nil }

func (d *memDriver) UpsertStateBlob(_ context.Context, upsert *store.StateBlob) (*store.StateBlob, error) {
	blob := &store.StateBlob{Key: upsert.Key, Value: upsert.Value, UpdatedTs: upsert.UpdatedTs}
	d.blobs[blob.Key] = blob
	return blob, nil
}

func (d *memDriver) GetStateBlob(_ context.Context, find *store.FindStateBlob) (*store.StateBlob, error) {
	if find.Key == nil {
		return nil, nil
	}
	return d.blobs[*find.Key], nil
}

func (d *memDriver) ListStateBlobs(_ context.Context, find *store.FindStateBlob) ([]*store.StateBlob, error) {
	keys := make([]string, 0, len(d.blobs))
	for key := range d.blobs {
		if find.Key != nil && key != *find.Key {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	list := make([]*store.StateBlob, 0, len(keys))
	for _, key := range keys {
		list = append(list, d.blobs[key])
	}
	return list, nil
}

func (d *memDriver) DeleteStateBlob(_ context.Context, del *store.DeleteStateBlob) error {
	delete(d.blobs, del.Key)
	return nil
}

func newTestServer(t *testing.T) (*echo.Echo, *APIV1Service) {
	t.Helper()

	p := &profile.Profile{
		Mode:       "dev",
		Data:       t.TempDir(),
		FiguresDir: t.TempDir(),
		Timezone:   "Asia/Taipei",
	}
	st := store.New(newMemDriver(), p)

	questions := []*corpus.Question{
		{ID: "110A003", Year: 110, Session: "A", Number: 3, QuestionText: "齲蝕致病菌的主要菌種為何?", Choices: map[string]string{"a": "Streptococcus mutans", "b": "Lactobacillus"}, ChoiceCount: 1, Answer: "a"},
		{ID: "112B048", Year: 112, Session: "B", Number: 48, QuestionText: "齲蝕窩洞修形時的固位形設計", Choices: map[string]string{"a": "鳩尾形", "b": "倒凹"}, ChoiceCount: 1, Answer: "b"},
		{ID: "113C012", Year: 113, Session: "C", Number: 12, QuestionText: "根管治療的步驟順序", Choices: map[string]string{"a": "開髓", "b": "清創"}, ChoiceCount: 1, Answer: "a"},
	}
	corp, err := corpus.New(questions, corpus.Metadata{})
	require.NoError(t, err)
	require.NoError(t, corp.ApplySubjects(corpus.DefaultSubjectRules()))

	engine, err := queryengine.NewEngineWithConfig(queryengine.DefaultConfig())
	require.NoError(t, err)

	loc, err := time.LoadLocation("Asia/Taipei")
	require.NoError(t, err)
	clock := &progress.FixedClock{Time: time.Date(2026, 8, 31, 10, 0, 0, 0, loc)}
	tracker := progress.NewTrackerWithClock(nil, loc, clock)

	studyService := study.NewService(context.Background(), st, corp, engine, tracker, study.WithClock(clock))
	authManager := auth.NewManager(st, "test-secret")

	svc := NewAPIV1Service(p, st, studyService, authManager)
	e := echo.New()
	svc.Register(e)
	return e, svc
}

func doJSON(t *testing.T, e *echo.Echo, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// TestSearchCompleteIdentifierPrecedence 測試完整識別碼優先於其餘過濾條件
func TestSearchCompleteIdentifierPrecedence(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doJSON(t, e, http.MethodGet, "/api/v1/search?q=112-B-48&years=110&sessions=A", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp searchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, queryengine.StrategyCompleteIdentifier, resp.Strategy)
	require.Len(t, resp.Questions, 1)
	require.Equal(t, "112B048", resp.Questions[0].ID)
}

// TestSearchKeywordAND 測試多關鍵字 AND 語意與 snippet 回傳
func TestSearchKeywordAND(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doJSON(t, e, http.MethodGet, "/api/v1/search?q="+escape("齲蝕 窩洞"), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp searchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, queryengine.StrategyKeyword, resp.Strategy)
	require.Len(t, resp.Questions, 1)
	require.Equal(t, "112B048", resp.Questions[0].ID)
	require.Len(t, resp.Results, 1)
	require.NotEmpty(t, resp.Results[0].Snippet)
}

// TestListQuestionsCELFilter 測試 CEL filter 參數
func TestListQuestionsCELFilter(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doJSON(t, e, http.MethodGet, "/api/v1/questions?filter="+escape(`year in [112] && session == "B"`), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp listQuestionsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Total)
	require.Equal(t, "112B048", resp.Questions[0].ID)

	rec = doJSON(t, e, http.MethodGet, "/api/v1/questions?filter="+escape(`year > 110`), "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// 結構化條件不經識別碼路由: contains 的引數即使長得像識別碼
	// 也只是關鍵字，year 條件不得被遮蔽。
	rec = doJSON(t, e, http.MethodGet, "/api/v1/questions?filter="+escape(`year in [110] && text.contains("112")`), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 0, resp.Total)
}

// TestRecordAnswerAndProgress 測試作答後進度與連續天數
func TestRecordAnswerAndProgress(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doJSON(t, e, http.MethodPost, "/api/v1/progress/answers", `{"questionId":"112B048","correct":true}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var state progress.State
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	require.Equal(t, 1, state.TodayAnswered)
	require.Equal(t, 1, state.TodayCorrect)
	require.Equal(t, 1, state.CurrentStreak)
	require.Equal(t, 1, state.LongestStreak)

	rec = doJSON(t, e, http.MethodPost, "/api/v1/progress/answers", `{"questionId":"999Z999","correct":true}`, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

// TestSetDailyGoalValidation 測試每日目標驗證
func TestSetDailyGoalValidation(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doJSON(t, e, http.MethodPost, "/api/v1/progress/goal", `{"dailyGoal":0}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, e, http.MethodPost, "/api/v1/progress/goal", `{"dailyGoal":30}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var state progress.State
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	require.Equal(t, 30, state.DailyGoal)
}

// TestAuthFlow 測試設定密碼後的存取控制
func TestAuthFlow(t *testing.T) {
	e, _ := newTestServer(t)

	// Open by default.
	rec := doJSON(t, e, http.MethodGet, "/api/v1/progress", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, e, http.MethodPost, "/api/v1/auth/password", `{"password":"hunter2"}`, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	// Locked without a token.
	rec = doJSON(t, e, http.MethodGet, "/api/v1/progress", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// Wrong password rejected.
	rec = doJSON(t, e, http.MethodPost, "/api/v1/auth/signin", `{"password":"wrong"}`, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, e, http.MethodPost, "/api/v1/auth/signin", `{"password":"hunter2"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var signIn signInResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &signIn))
	require.NotEmpty(t, signIn.AccessToken)

	rec = doJSON(t, e, http.MethodGet, "/api/v1/progress", "", map[string]string{
		"Authorization": "Bearer " + signIn.AccessToken,
	})
	require.Equal(t, http.StatusOK, rec.Code)
}

// TestToggleFavoriteEndpoint 測試收藏切換
func TestToggleFavoriteEndpoint(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doJSON(t, e, http.MethodPost, "/api/v1/favorites/112b048/toggle", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var toggled toggleFavoriteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &toggled))
	require.True(t, toggled.Favorite)

	rec = doJSON(t, e, http.MethodGet, "/api/v1/favorites", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var favorites listQuestionsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &favorites))
	require.Equal(t, 1, favorites.Total)
	require.Equal(t, "112B048", favorites.Questions[0].ID)
}

// TestNoteRendering 測試筆記 markdown 轉 HTML
func TestNoteRendering(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doJSON(t, e, http.MethodPut, "/api/v1/notes/112B048", `{"content":"# 固位形\n重點整理"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var note noteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &note))
	require.Contains(t, note.HTML, "<h1>固位形</h1>")
}

// TestSubjectEndpoints 測試科目列表與科目題目查詢
func TestSubjectEndpoints(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doJSON(t, e, http.MethodGet, "/api/v1/subjects", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var subjects listSubjectsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &subjects))
	require.Len(t, subjects.Subjects, 8)
	counts := map[string]int{}
	for _, s := range subjects.Subjects {
		counts[s.ID] = s.Count
	}
	require.Equal(t, 1, counts["operative"])
	require.Equal(t, 1, counts["prostho"])
	require.Equal(t, 1, counts["oralsurg"])

	rec = doJSON(t, e, http.MethodGet, "/api/v1/subjects/prostho/questions", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var questions listQuestionsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &questions))
	require.Equal(t, 1, questions.Total)
	require.Equal(t, "112B048", questions.Questions[0].ID)

	rec = doJSON(t, e, http.MethodGet, "/api/v1/subjects/astrology/questions", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func escape(s string) string {
	replacer := strings.NewReplacer(
		" ", "%20",
		`"`, "%22",
		"[", "%5B",
		"]", "%5D",
		"=", "%3D",
		">", "%3E",
		"&", "%26",
	)
	return replacer.Replace(s)
}
