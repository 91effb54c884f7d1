package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hypolab/app"
	"hypolab/internal/session"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc := app.NewAnalysisService(session.NewStore(), 0.05, nil)
	return NewService(svc, nil)
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var decoded map[string]interface{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func groupedPayload() map[string]interface{} {
	scores := []string{"1.2", "0.8", "1.5", "0.3", "1.1", "7.9", "8.4", "7.2", "8.8", "8.1"}
	groups := []string{"a", "a", "a", "a", "a", "b", "b", "b", "b", "b"}
	return map[string]interface{}{
		"columns": []map[string]interface{}{
			{"name": "score", "type": "quantitative", "values": scores},
			{"name": "group", "type": "qualitative", "values": groups},
		},
	}
}

func TestCatalogEndpoint(t *testing.T) {
	s := newTestService(t)
	rec, body := doJSON(t, s.Router(), http.MethodGet, "/catalog", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0.05, body["alpha"])
	tests, ok := body["tests"].([]interface{})
	require.True(t, ok)
	assert.Len(t, tests, 8)
}

func TestSessionFlowOverHTTP(t *testing.T) {
	s := newTestService(t)
	router := s.Router()

	rec, body := doJSON(t, router, http.MethodPost, "/sessions", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	id, _ := body["session_id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, "idle", body["state"])

	rec, body = doJSON(t, router, http.MethodPost, "/sessions/"+id+"/dataset", groupedPayload())
	require.Equal(t, http.StatusOK, rec.Code, "%v", body)
	assert.Equal(t, "loaded", body["state"])

	rec, body = doJSON(t, router, http.MethodPut, "/sessions/"+id+"/selection", map[string]string{
		"variable": "score",
		"group":    "group",
		"test":     "t_student",
	})
	require.Equal(t, http.StatusOK, rec.Code, "%v", body)

	rec, body = doJSON(t, router, http.MethodPost, "/sessions/"+id+"/run", nil)
	require.Equal(t, http.StatusOK, rec.Code, "%v", body)
	validation := body["validation"].(map[string]interface{})
	assert.Equal(t, true, validation["ok"])
	result := body["result"].(map[string]interface{})
	assert.Less(t, result["p_value"].(float64), 0.01)
	verdict := body["verdict"].(map[string]interface{})
	assert.Equal(t, true, verdict["reject_h0"])

	// Refresh returns the same run without recomputing
	rec, refreshed := doJSON(t, router, http.MethodPost, "/sessions/"+id+"/refresh", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, result["run_id"], refreshed["result"].(map[string]interface{})["run_id"])

	rec, body = doJSON(t, router, http.MethodGet, "/sessions/"+id+"/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "evaluated", body["state"])
}

func TestValidationBlockedRunOverHTTP(t *testing.T) {
	s := newTestService(t)
	router := s.Router()

	_, body := doJSON(t, router, http.MethodPost, "/sessions", nil)
	id := body["session_id"].(string)

	rec, _ := doJSON(t, router, http.MethodPost, "/sessions/"+id+"/dataset", groupedPayload())
	require.Equal(t, http.StatusOK, rec.Code)

	// ANOVA without a group is a valid selection to store but an invalid run
	rec, _ = doJSON(t, router, http.MethodPut, "/sessions/"+id+"/selection", map[string]string{
		"variable": "score",
		"test":     "anova",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body = doJSON(t, router, http.MethodPost, "/sessions/"+id+"/run", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	validation := body["validation"].(map[string]interface{})
	assert.Equal(t, false, validation["ok"])
	assert.Contains(t, validation["reason"], "grouping variable")
	assert.Nil(t, body["result"])

	// Nothing evaluated yet, so refresh conflicts
	rec, _ = doJSON(t, router, http.MethodPost, "/sessions/"+id+"/refresh", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestErrorStatuses(t *testing.T) {
	s := newTestService(t)
	router := s.Router()

	t.Run("unknown session is 404", func(t *testing.T) {
		rec, _ := doJSON(t, router, http.MethodPost, "/sessions/nope/run", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("run before load is 409", func(t *testing.T) {
		_, body := doJSON(t, router, http.MethodPost, "/sessions", nil)
		id := body["session_id"].(string)
		rec, _ := doJSON(t, router, http.MethodPost, "/sessions/"+id+"/run", nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("bad dataset payload is 400", func(t *testing.T) {
		_, body := doJSON(t, router, http.MethodPost, "/sessions", nil)
		id := body["session_id"].(string)
		rec, _ := doJSON(t, router, http.MethodPost, "/sessions/"+id+"/dataset", map[string]interface{}{
			"columns": []map[string]interface{}{
				{"name": "x", "type": "ordinal", "values": []string{"1"}},
			},
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
