package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/stackpad/kvstore/internal/events"
	"github.com/stackpad/kvstore/internal/store"
)

// API status codes carried in every response body, independent of the HTTP
// status.
const (
	apiStatusOK                = 1000
	apiStatusKeyNotPresent     = 3001
	apiStatusKeyAlreadyPresent = 3003
	apiStatusParseFailure      = 3004
	apiStatusValidationFailure = 3005
	apiStatusInternalFailure   = 3006
)

type kvResponse struct {
	Key    string       `json:"key,omitempty"`
	Value  *store.Value `json:"value,omitempty"`
	Status int          `json:"status"`
	Error  string       `json:"error,omitempty"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

// EventEmitter publishes mutation events. Satisfied by *events.Emitter.
type EventEmitter interface {
	Emit(event events.Event) error
}

// Handler is the HTTP adapter over a storage backend. It owns request
// parsing, schema validation and the error-to-status mapping; all store
// semantics live behind the Backend interface.
type Handler struct {
	version string
	backend store.Backend
	emitter EventEmitter // nil disables event emission
}

func New(version string, backend store.Backend, emitter EventEmitter) *Handler {
	return &Handler{
		version: version,
		backend: backend,
		emitter: emitter,
	}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/kv/{key}", h.handleKV)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Version:   h.version,
	})
}

func (h *Handler) handleKV(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	txnID := uuid.NewString()

	slog.Info("kv request",
		"txn_id", txnID,
		"verb", r.Method,
		"key", key,
		"src", r.RemoteAddr)

	switch r.Method {
	case http.MethodGet:
		h.handleGet(w, key, txnID)
	case http.MethodPost:
		h.handleCreate(w, r, key, txnID)
	case http.MethodPut:
		h.handleReplace(w, r, key, txnID)
	case http.MethodDelete:
		h.handleDelete(w, key, txnID)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, kvResponse{
			Status: apiStatusValidationFailure,
			Error:  "method not allowed",
		})
	}
}

func (h *Handler) handleGet(w http.ResponseWriter, key, txnID string) {
	value, err := h.backend.Get(key, txnID)
	if err != nil {
		writeBackendError(w, key, err)
		return
	}
	writeJSON(w, http.StatusOK, kvResponse{Key: key, Value: &value, Status: apiStatusOK})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request, key, txnID string) {
	value, ok := h.parseValue(w, r)
	if !ok {
		return
	}
	if err := h.backend.Create(key, value, txnID); err != nil {
		writeBackendError(w, key, err)
		return
	}
	h.emit(events.OpCreate, key, txnID)
	w.Header().Set("Location", r.URL.Path)
	writeJSON(w, http.StatusCreated, kvResponse{Key: key, Value: &value, Status: apiStatusOK})
}

func (h *Handler) handleReplace(w http.ResponseWriter, r *http.Request, key, txnID string) {
	value, ok := h.parseValue(w, r)
	if !ok {
		return
	}
	_, replaced, err := h.backend.Replace(key, value, txnID)
	if err != nil {
		writeBackendError(w, key, err)
		return
	}
	h.emit(events.OpReplace, key, txnID)
	// 201 when the replace created the key, 200 when it updated it.
	status := http.StatusCreated
	if replaced {
		status = http.StatusOK
	}
	w.Header().Set("Location", r.URL.Path)
	writeJSON(w, status, kvResponse{Key: key, Value: &value, Status: apiStatusOK})
}

func (h *Handler) handleDelete(w http.ResponseWriter, key, txnID string) {
	deleted, err := h.backend.Delete(key, txnID)
	if err != nil {
		writeBackendError(w, key, err)
		return
	}
	h.emit(events.OpDelete, key, txnID)
	writeJSON(w, http.StatusOK, kvResponse{Key: key, Value: &deleted, Status: apiStatusOK})
}

// parseValue decodes and validates the request body {"value": <scalar>}. A
// missing value field is treated as an explicit null. On failure it writes
// the 400 response itself and returns ok=false.
func (h *Handler) parseValue(w http.ResponseWriter, r *http.Request) (store.Value, bool) {
	var body struct {
		Value *store.Value `json:"value"`
	}

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		status := apiStatusValidationFailure
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			status = apiStatusParseFailure
		}
		writeJSON(w, http.StatusBadRequest, kvResponse{Status: status, Error: err.Error()})
		return store.Value{}, false
	}

	if body.Value == nil {
		return store.Null(), true
	}
	return *body.Value, true
}

func (h *Handler) emit(op, key, txnID string) {
	if h.emitter == nil {
		return
	}
	err := h.emitter.Emit(events.Event{
		Op:        op,
		Key:       key,
		TxnID:     txnID,
		Timestamp: time.Now().Unix(),
	})
	if err != nil {
		slog.Warn("Failed to emit mutation event", "txn_id", txnID, "op", op, "key", key, "err", err)
	}
}

func writeBackendError(w http.ResponseWriter, key string, err error) {
	switch {
	case errors.Is(err, store.ErrKeyConflict):
		writeJSON(w, http.StatusConflict, kvResponse{
			Key:    key,
			Status: apiStatusKeyAlreadyPresent,
			Error:  err.Error(),
		})
	case errors.Is(err, store.ErrKeyNotFound):
		writeJSON(w, http.StatusNotFound, kvResponse{
			Key:    key,
			Status: apiStatusKeyNotPresent,
			Error:  err.Error(),
		})
	default:
		writeJSON(w, http.StatusInternalServerError, kvResponse{
			Key:    key,
			Status: apiStatusInternalFailure,
			Error:  err.Error(),
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "err", err)
	}
}
