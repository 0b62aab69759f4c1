package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackpad/kvstore/internal/events"
	"github.com/stackpad/kvstore/internal/store"
)

type fakeEmitter struct {
	events []events.Event
}

func (f *fakeEmitter) Emit(e events.Event) error {
	f.events = append(f.events, e)
	return nil
}

func newTestMux(t *testing.T) (*http.ServeMux, *fakeEmitter) {
	t.Helper()
	emitter := &fakeEmitter{}
	mux := http.NewServeMux()
	New("test", store.NewMemoryStore(), emitter).Register(mux)
	return mux, emitter
}

func do(t *testing.T, mux *http.ServeMux, method, path, body string) (*httptest.ResponseRecorder, kvResponse) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	var resp kvResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), "body: %s", rec.Body.String())
	return rec, resp
}

func TestCreateAndGet(t *testing.T) {
	mux, emitter := newTestMux(t)

	rec, resp := do(t, mux, http.MethodPost, "/kv/greeting", `{"value": "hello"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, apiStatusOK, resp.Status)
	assert.Equal(t, "/kv/greeting", rec.Header().Get("Location"))

	rec, resp = do(t, mux, http.MethodGet, "/kv/greeting", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, apiStatusOK, resp.Status)
	require.NotNil(t, resp.Value)
	assert.True(t, resp.Value.Equal(store.String("hello")))

	require.Len(t, emitter.events, 1)
	assert.Equal(t, events.OpCreate, emitter.events[0].Op)
	assert.Equal(t, "greeting", emitter.events[0].Key)
	assert.NotEmpty(t, emitter.events[0].TxnID)
}

func TestCreateConflictResponse(t *testing.T) {
	mux, _ := newTestMux(t)

	rec, _ := do(t, mux, http.MethodPost, "/kv/k", `{"value": 1}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, resp := do(t, mux, http.MethodPost, "/kv/k", `{"value": 2}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, apiStatusKeyAlreadyPresent, resp.Status)
	assert.Contains(t, resp.Error, `"k"`)
}

func TestGetMissingKey(t *testing.T) {
	mux, _ := newTestMux(t)

	rec, resp := do(t, mux, http.MethodGet, "/kv/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, apiStatusKeyNotPresent, resp.Status)
}

func TestReplaceStatusCodes(t *testing.T) {
	mux, emitter := newTestMux(t)

	// PUT on an absent key creates it.
	rec, resp := do(t, mux, http.MethodPut, "/kv/k", `{"value": true}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, apiStatusOK, resp.Status)

	// PUT on a present key updates it.
	rec, resp = do(t, mux, http.MethodPut, "/kv/k", `{"value": false}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, apiStatusOK, resp.Status)

	rec, resp = do(t, mux, http.MethodGet, "/kv/k", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, resp.Value)
	assert.True(t, resp.Value.Equal(store.Bool(false)))

	require.Len(t, emitter.events, 2)
	assert.Equal(t, events.OpReplace, emitter.events[0].Op)
	assert.Equal(t, events.OpReplace, emitter.events[1].Op)
}

func TestDeleteThenNotFound(t *testing.T) {
	mux, emitter := newTestMux(t)

	do(t, mux, http.MethodPost, "/kv/k", `{"value": "bye"}`)

	rec, resp := do(t, mux, http.MethodDelete, "/kv/k", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, resp.Value)
	assert.True(t, resp.Value.Equal(store.String("bye")))

	rec, resp = do(t, mux, http.MethodDelete, "/kv/k", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, apiStatusKeyNotPresent, resp.Status)

	assert.Equal(t, events.OpDelete, emitter.events[len(emitter.events)-1].Op)
}

func TestNullValue(t *testing.T) {
	mux, _ := newTestMux(t)

	rec, _ := do(t, mux, http.MethodPost, "/kv/k", `{"value": null}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/kv/k", nil)
	recorder := httptest.NewRecorder()
	mux.ServeHTTP(recorder, req)
	require.Equal(t, http.StatusOK, recorder.Code)

	// The stored null comes back as an explicit null value field.
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &raw))
	assert.Equal(t, "null", string(raw["value"]))
}

func TestMalformedBody(t *testing.T) {
	mux, _ := newTestMux(t)

	rec, resp := do(t, mux, http.MethodPost, "/kv/k", `{"value": `)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apiStatusParseFailure, resp.Status)

	rec, resp = do(t, mux, http.MethodPost, "/kv/k", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apiStatusParseFailure, resp.Status)
}

func TestInvalidBody(t *testing.T) {
	mux, _ := newTestMux(t)

	// Non-scalar values are rejected.
	rec, resp := do(t, mux, http.MethodPost, "/kv/k", `{"value": {"nested": 1}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apiStatusValidationFailure, resp.Status)

	rec, resp = do(t, mux, http.MethodPost, "/kv/k", `{"value": [1, 2]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apiStatusValidationFailure, resp.Status)

	// So are unknown fields.
	rec, resp = do(t, mux, http.MethodPost, "/kv/k", `{"value": 1, "extra": 2}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apiStatusValidationFailure, resp.Status)
}

func TestMethodNotAllowed(t *testing.T) {
	mux, _ := newTestMux(t)

	rec, _ := do(t, mux, http.MethodPatch, "/kv/k", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealth(t *testing.T) {
	mux, _ := newTestMux(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "test", resp.Version)
}

func TestNilEmitter(t *testing.T) {
	mux := http.NewServeMux()
	New("test", store.NewMemoryStore(), nil).Register(mux)

	rec, _ := do(t, mux, http.MethodPost, "/kv/k", `{"value": "x"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
}
