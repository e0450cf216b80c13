package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yqhp/assistant-engine/internal/capability"
	"yqhp/assistant-engine/internal/engine"
	"yqhp/assistant-engine/internal/session"
	"yqhp/assistant-engine/pkg/types"
)

// stubPlanner returns a fixed plan or error.
type stubPlanner struct {
	plan *types.ExecutionPlan
	err  error
}

func (s *stubPlanner) Plan(context.Context, string) (*types.ExecutionPlan, error) {
	return s.plan, s.err
}

func newTestServer(t *testing.T, planner Planner) *Server {
	t.Helper()
	sessions := session.NewStore(time.Minute, time.Minute)
	t.Cleanup(sessions.Close)

	eng := engine.New(engine.Options{
		Invoker:  capability.NewMemoryInvoker(),
		Sessions: sessions,
	})
	return NewServer(eng, planner, sessions, nil)
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.App().Test(req, -1)
	require.NoError(t, err)

	var out bytes.Buffer
	_, err = out.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, out.Bytes()
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, body := doJSON(t, srv, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "ok")
}

func TestExecuteWithPlanner(t *testing.T) {
	planner := &stubPlanner{plan: &types.ExecutionPlan{
		Pattern:     types.PatternSingle,
		RequestText: "what time is it",
		Tasks:       []types.Task{{Capability: "query_model", Utterance: "what time is it"}},
	}}
	srv := newTestServer(t, planner)

	resp, body := doJSON(t, srv, http.MethodPost, "/api/v1/assistant/execute",
		ExecuteRequest{Text: "what time is it"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var out ExecuteResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.NotEmpty(t, out.SessionID, "a session id is generated when absent")
	assert.Equal(t, types.PatternSingle, out.Pattern)
	require.Len(t, out.Results, 1)
	assert.True(t, out.Results[0].Success)
}

func TestExecuteWithInlinePlan(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, body := doJSON(t, srv, http.MethodPost, "/api/v1/assistant/execute",
		ExecuteRequest{
			SessionID: "s1",
			Plan: &types.ExecutionPlan{
				Pattern:     types.PatternParallel,
				RequestText: "two searches",
				Tasks: []types.Task{
					{Capability: "web_search", Ordinal: 0, Utterance: "trains"},
					{Capability: "web_search", Ordinal: 1, Utterance: "hotels"},
				},
			},
		})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var out ExecuteResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "s1", out.SessionID)
	assert.Len(t, out.Results, 2)
}

func TestExecuteValidation(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, _ := doJSON(t, srv, http.MethodPost, "/api/v1/assistant/execute", ExecuteRequest{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Text without a configured planner.
	resp, _ = doJSON(t, srv, http.MethodPost, "/api/v1/assistant/execute",
		ExecuteRequest{Text: "do something"})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestExecutePlanningFailure(t *testing.T) {
	srv := newTestServer(t, &stubPlanner{err: fmt.Errorf("planner output: no pattern")})

	resp, body := doJSON(t, srv, http.MethodPost, "/api/v1/assistant/execute",
		ExecuteRequest{Text: "gibberish"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, string(body), "planning_failed")
}

func TestConfirmApproveAndDeny(t *testing.T) {
	srv := newTestServer(t, nil)

	payload := &types.ConfirmationPayload{
		Capability: "send_message",
		Arguments:  map[string]any{"recipient": "Alice", "body": "hi"},
	}

	resp, body := doJSON(t, srv, http.MethodPost, "/api/v1/assistant/confirm",
		ConfirmRequest{SessionID: "s1", Approved: true, Confirmation: payload})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var out ConfirmResponse
	require.NoError(t, json.Unmarshal(body, &out))
	require.NotNil(t, out.Result)
	assert.True(t, out.Result.Success)

	resp, body = doJSON(t, srv, http.MethodPost, "/api/v1/assistant/confirm",
		ConfirmRequest{SessionID: "s1", Approved: false, Confirmation: payload})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &out))
	assert.False(t, out.Result.Success)
	require.NotNil(t, out.Result.Error)
	assert.False(t, out.Result.Error.Retryable)
}

func TestConfirmValidation(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, _ := doJSON(t, srv, http.MethodPost, "/api/v1/assistant/confirm",
		ConfirmRequest{Approved: true})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, srv, http.MethodPost, "/api/v1/assistant/confirm",
		ConfirmRequest{SessionID: "s1", Approved: true})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCapabilitiesEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, body := doJSON(t, srv, http.MethodGet, "/api/v1/assistant/capabilities", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Capabilities []CapabilityInfo `json:"capabilities"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	require.NotEmpty(t, out.Capabilities)

	byName := make(map[string]CapabilityInfo)
	for _, c := range out.Capabilities {
		byName[c.Name] = c
	}
	require.Contains(t, byName, "send_message")
	assert.True(t, byName["send_message"].Communication)
	assert.Contains(t, byName["send_message"].Required, "recipient")
}

func TestStatsEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	// Produce some traffic first.
	doJSON(t, srv, http.MethodPost, "/api/v1/assistant/execute", ExecuteRequest{
		SessionID: "s1",
		Plan: &types.ExecutionPlan{
			Pattern:     types.PatternSingle,
			RequestText: "search",
			Tasks:       []types.Task{{Capability: "web_search", Utterance: "search"}},
		},
	})

	resp, body := doJSON(t, srv, http.MethodGet, "/api/v1/assistant/stats", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out StatsResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.GreaterOrEqual(t, out.ActiveSessions, 1)
}
