package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/mikey/inbox-triage/internal/adapters/store"
	"github.com/mikey/inbox-triage/internal/core"
	"github.com/mikey/inbox-triage/internal/feedback"
	"github.com/mikey/inbox-triage/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fixedLLM always returns the same response
type fixedLLM struct {
	response string
}

func (f *fixedLLM) Generate(ctx context.Context, prompt string) (string, error) {
	return f.response, nil
}

func newTestServer(t *testing.T) (*Server, core.FeedbackRepository) {
	t.Helper()

	logger := zap.NewNop()
	repo := feedback.NewStore(store.NewMemoryStore(), logger, 0)
	llm := &fixedLLM{response: `{"category": "Personal", "reasoning": "looks personal"}`}
	engine := core.NewEngine(llm, repo, logger, utils.NewTextProcessor(logger), 5, 0)
	svc := core.NewTriageService(engine, repo, nil, logger)

	return NewServer(svc, logger, "127.0.0.1:0", 20), repo
}

func doRequest(s *Server, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req.Header.Set(userHeader, "u1")

	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(s, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHandleClassify(t *testing.T) {
	s, _ := newTestServer(t)

	body := `{"messages": [{"id": "m1", "sender": "alice@x.com", "subject": "Hi"}]}`
	rec := doRequest(s, http.MethodPost, "/api/v1/classify", body)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp ClassifyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Messages, 1)
	assert.Equal(t, "m1", resp.Messages[0].ID)
	assert.Equal(t, core.CategoryPersonal, resp.Messages[0].Category)
	assert.Equal(t, "looks personal", resp.Messages[0].Reasoning)
}

func TestHandleClassify_BadBody(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(s, http.MethodPost, "/api/v1/classify", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleReclassify(t *testing.T) {
	s, repo := newTestServer(t)

	body := `{"message": {"id": "m1", "sender": "bob@x.com", "subject": "Offer"}, "category": "Personal"}`
	rec := doRequest(s, http.MethodPost, "/api/v1/reclassify", body)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp ReclassifyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, core.CategoryPersonal, resp.Message.Category)
	assert.Equal(t, core.ManualReclassificationReasoning, resp.Message.Reasoning)

	// The correction landed in the caller's feedback log
	log := repo.Load(context.Background(), "u1")
	require.Len(t, log, 1)
	assert.Equal(t, "bob@x.com", log[0].Sender)
}

func TestHandleReclassify_InvalidCategory(t *testing.T) {
	s, _ := newTestServer(t)

	body := `{"message": {"id": "m1", "sender": "bob@x.com"}, "category": "Spam"}`
	rec := doRequest(s, http.MethodPost, "/api/v1/reclassify", body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleFeedbackLifecycle(t *testing.T) {
	s, repo := newTestServer(t)
	ctx := context.Background()

	rec := doRequest(s, http.MethodGet, "/api/v1/feedback", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"entries":[]}`, rec.Body.String())

	entry, err := repo.Save(ctx, &core.Message{Sender: "a@x.com", Subject: "S"}, core.CategoryPersonal, "u1")
	require.NoError(t, err)

	rec = doRequest(s, http.MethodGet, "/api/v1/feedback", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp FeedbackResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Entries, 1)

	rec = doRequest(s, http.MethodDelete, "/api/v1/feedback/"+strconv.FormatInt(entry.Timestamp, 10), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, repo.Load(ctx, "u1"))
}

func TestHandleDeleteFeedback_BadTimestamp(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(s, http.MethodDelete, "/api/v1/feedback/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleTriage_NoMailClient(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(s, http.MethodPost, "/api/v1/triage", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHandleReply_MissingBody(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(s, http.MethodPost, "/api/v1/reply", `{"message": {"id": "m1"}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleArchive_MissingIDs(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(s, http.MethodPost, "/api/v1/archive", `{"ids": []}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
