package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalambet/talentscout/internal/screening"
	"github.com/kalambet/talentscout/internal/sessions"
	"github.com/kalambet/talentscout/internal/storage"
)

type recordedRequest struct {
	Method string
	Path   string
	Auth   string
}

type testServer struct {
	server   *httptest.Server
	requests []recordedRequest
}

func newTestServer(t *testing.T, responses map[string]string) *testServer {
	t.Helper()
	ts := &testServer{}

	ts.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.requests = append(ts.requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.RequestURI(),
			Auth:   r.Header.Get("Authorization"),
		})

		key := r.Method + " " + r.URL.Path
		if resp, ok := responses[key]; ok {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(resp))
			return
		}

		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"message":"session not found","type":"not_found_error"}}`))
	}))

	t.Cleanup(ts.server.Close)
	return ts
}

func (ts *testServer) client(token string) *apiClient {
	return &apiClient{
		baseURL:    ts.server.URL,
		token:      token,
		httpClient: ts.server.Client(),
	}
}

var ctx = context.Background()

func TestAPIClient_ListSessions(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"GET /v1/sessions": `{"sessions":[{"id":"0b9c3f1e-0000-4000-8000-000000000000","step":"technical_questions","candidate":"Jane Roe","answered_questions":2,"total_questions":5}]}`,
	})

	resp, err := ts.client("test-token").get(ctx, "/v1/sessions?limit=20")
	require.NoError(t, err)

	var result struct {
		Sessions []sessions.Summary `json:"sessions"`
	}
	require.NoError(t, decodeJSON(resp, &result))
	require.Len(t, result.Sessions, 1)
	assert.Equal(t, "Jane Roe", result.Sessions[0].Candidate)
	assert.Equal(t, screening.StepTechnicalQuestions, result.Sessions[0].Step)

	require.Len(t, ts.requests, 1)
	assert.Equal(t, "GET", ts.requests[0].Method)
	assert.Equal(t, "/v1/sessions?limit=20", ts.requests[0].Path)
	assert.Equal(t, "Bearer test-token", ts.requests[0].Auth)
}

func TestAPIClient_NoTokenNoHeader(t *testing.T) {
	ts := newTestServer(t, map[string]string{"DELETE /v1/sessions/abc": `{}`})

	resp, err := ts.client("").delete(ctx, "/v1/sessions/abc")
	require.NoError(t, err)
	require.NoError(t, decodeJSON(resp, nil))
	assert.Empty(t, ts.requests[0].Auth)
}

func TestAPIClient_ErrorEnvelope(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, err := ts.client("").get(ctx, "/v1/sessions/missing")
	require.NoError(t, err)
	err = decodeJSON(resp, &struct{}{})
	require.Error(t, err)
	assert.Equal(t, "server returned 404: session not found", err.Error())
}

func TestAPIClient_ServerNotReachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := &apiClient{baseURL: srv.URL, httpClient: &http.Client{Timeout: time.Second}}
	_, err := c.get(ctx, "/health")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not reachable")
}

func TestCommandArgs(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"sessions", "show"}, "accepts 1 arg(s)"},
		{[]string{"sessions", "export"}, "accepts 1 arg(s)"},
		{[]string{"questions"}, "requires at least 1 arg(s)"},
		{[]string{"config", "set", "log.level"}, "accepts 2 arg(s)"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			defer rootCmd.SetArgs(nil)
			rootCmd.SetArgs(tt.args)
			err := rootCmd.Execute()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestNoColorFlag(t *testing.T) {
	old := noColor
	defer func() { noColor = old }()

	noColor = true
	assert.Equal(t, "test message", colorize(colorGreen, "test message"))

	noColor = false
	assert.Contains(t, colorize(colorGreen, "test message"), "\033[")
}

func TestProgressLine(t *testing.T) {
	tests := []struct {
		name string
		snap screening.Snapshot
		want string
	}{
		{"greeting", screening.Snapshot{Step: screening.StepGreeting}, ""},
		{"collecting", screening.Snapshot{Step: screening.StepCollectingInfo, FieldCursor: 3}, "Details 3 of 7 [###----]"},
		{"questions", screening.Snapshot{Step: screening.StepTechnicalQuestions, QuestionCursor: 1, TotalQuestions: 5}, "Question 2 of 5 [#----]"},
		{"complete", screening.Snapshot{Step: screening.StepComplete, QuestionCursor: 5, TotalQuestions: 5, IsComplete: true}, "Answered 5 of 5 [#####]"},
		{"exited early", screening.Snapshot{Step: screening.StepComplete, IsComplete: true, Exited: true}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, progressLine(tt.snap))
		})
	}
}

func newChatManager(t *testing.T) *sessions.Manager {
	t.Helper()
	store, err := storage.Open()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return sessions.NewManager(store, screening.Deps{}, nil)
}

var candidateDetails = []string{
	"hello",
	"John Doe",
	"john@email.com",
	"+1234567890",
	"5",
	"Software Engineer",
	"Berlin",
	"Go, PostgreSQL, Docker",
}

func TestRunChat_FullScreeningWithExport(t *testing.T) {
	noColor = true
	mgr := newChatManager(t)

	lines := append([]string{}, candidateDetails...)
	for i := 0; i < 5; i++ {
		lines = append(lines, "I would profile first and then fix the hot path")
	}
	lines = append(lines, "this line is never read")

	dir := t.TempDir()
	var out bytes.Buffer
	err := runChat(ctx, mgr, strings.NewReader(strings.Join(lines, "\n")), &out, chatOptions{exportPath: dir + string(os.PathSeparator)})
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "TalentScout:")
	assert.Contains(t, text, "Details 1 of 7")
	assert.Contains(t, text, "Question 1 of 5")
	assert.Contains(t, text, "Answered 5 of 5 [#####]")
	assert.Contains(t, text, "Candidate summary")
	assert.Contains(t, text, "Languages:")
	assert.Contains(t, text, "Databases:")

	matches, err := filepath.Glob(filepath.Join(dir, "screening_John_Doe_*.json"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	var doc screening.Document
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, screening.StatusComplete, doc.Metadata.CompletionStatus)
	assert.Equal(t, 5, doc.Metadata.AnsweredQuestions)
	assert.Len(t, doc.CandidateData.TechnicalAnswers, 5)
}

func TestRunChat_ExitAndReset(t *testing.T) {
	noColor = true
	mgr := newChatManager(t)

	input := strings.Join([]string{"hi", "Jane Roe", "/reset", "hi", "Jane Smith", "", "bye"}, "\n")
	var out bytes.Buffer
	require.NoError(t, runChat(ctx, mgr, strings.NewReader(input), &out, chatOptions{}))

	text := out.String()
	assert.Equal(t, 2, strings.Count(text, "TalentScout: "+screening.NewSession(screening.Deps{}).Greeting()))
	assert.Contains(t, text, "Jane Smith")

	list, err := mgr.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, screening.StepComplete, list[0].Step)
	assert.Equal(t, "Jane Smith", list[0].Candidate)
}

func TestRunChat_InputEndsEarly(t *testing.T) {
	noColor = true
	mgr := newChatManager(t)

	var out bytes.Buffer
	require.NoError(t, runChat(ctx, mgr, strings.NewReader("hello\nJohn Doe\n"), &out, chatOptions{}))
	assert.Contains(t, out.String(), "Details 1 of 7")

	list, err := mgr.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, screening.StepCollectingInfo, list[0].Step)
}

func TestWriteExport_File(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nested", "out.json")
	doc := screening.Document{Metadata: screening.Metadata{CompletionStatus: screening.StatusIncomplete}}

	path, err := writeExport(doc, target, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, target, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"completion_status": "Incomplete"`)
}

func TestWriteExport_ExistingDir(t *testing.T) {
	dir := t.TempDir()
	doc := screening.Document{CandidateData: screening.CandidateData{
		PersonalInfo: map[screening.Field]string{screening.FullName: "Ada Lovelace"},
	}}

	path, err := writeExport(doc, dir, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "screening_Ada_Lovelace_20250314.json"), path)
}
