package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-kbshell/internal/azurefn"
	"github.com/iyunix/go-kbshell/internal/backend"
	"github.com/iyunix/go-kbshell/internal/domain"
	"github.com/iyunix/go-kbshell/internal/history"
	"github.com/iyunix/go-kbshell/internal/hydration"
	"github.com/iyunix/go-kbshell/internal/layout"
	"github.com/iyunix/go-kbshell/internal/logging"
)

type fakeDocs struct {
	docs    []domain.IngestedDataInfo
	err     error
	deleted []string
}

func (f *fakeDocs) ListIngestedData(context.Context) ([]domain.IngestedDataInfo, error) {
	return f.docs, f.err
}

func (f *fakeDocs) GetDocumentDetails(_ context.Context, id string) (*domain.IngestedDataInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.docs {
		if f.docs[i].ID == id {
			return &f.docs[i], nil
		}
	}
	return nil, &azurefn.RemoteCallError{Function: "GetDocumentDetails/" + id, StatusCode: 404, StatusText: "Not Found"}
}

func (f *fakeDocs) DeleteDocument(_ context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

var nop = &logging.NoOpLogger{}

func emptyHistory(t *testing.T) *history.Store {
	t.Helper()
	mem := history.NewMemoryStorage()
	require.NoError(t, mem.Set(history.StorageKey, []byte(`{"chats":[]}`)))
	return history.NewStore(mem, nop)
}

func formatter(t *testing.T, ready bool) *hydration.DateFormatter {
	t.Helper()
	g := hydration.NewGate()
	if ready {
		g.MarkReady()
	}
	f, err := hydration.NewDateFormatter(g, "en-US", hydration.FormatOptions{})
	require.NoError(t, err)
	return f
}

func historyRouter(h *HistoryHandler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/chats", h.ListChats).Methods("GET")
	r.HandleFunc("/api/chats/{id}", h.GetChat).Methods("GET")
	r.HandleFunc("/api/chats", h.CreateChat).Methods("POST")
	r.HandleFunc("/api/chats", h.ClearHistory).Methods("DELETE")
	r.HandleFunc("/api/chats/{id}", h.DeleteChat).Methods("DELETE")
	r.HandleFunc("/api/chats/{id}/favorite", h.ToggleFavorite).Methods("POST")
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHistoryHandler_Flow(t *testing.T) {
	store := emptyHistory(t)
	r := historyRouter(NewHistoryHandler(store, formatter(t, true)))

	rec := do(t, r, "POST", "/api/chats", `{"title":"  Retention policy  ","isFavorite":false}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		ID          string    `json:"id"`
		Title       string    `json:"title"`
		Date        time.Time `json:"date"`
		DisplayDate string    `json:"displayDate"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Retention policy", created.Title)
	assert.NotEmpty(t, created.ID)
	assert.NotEmpty(t, created.DisplayDate)

	rec = do(t, r, "POST", "/api/chats/"+created.ID+"/favorite", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"isFavorite":true`)

	rec = do(t, r, "GET", "/api/chats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Chats []chatView `json:"chats"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Chats, 1)
	assert.True(t, list.Chats[0].IsFavorite)

	rec = do(t, r, "GET", "/api/chats/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"title":"Retention policy"`)

	rec = do(t, r, "DELETE", "/api/chats/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, r, "DELETE", "/api/chats/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code, "deleting twice is a no-op")
	assert.Empty(t, store.Chats())
}

func TestHistoryHandler_Validation(t *testing.T) {
	r := historyRouter(NewHistoryHandler(emptyHistory(t), formatter(t, true)))

	assert.Equal(t, http.StatusBadRequest, do(t, r, "POST", "/api/chats", `not json`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, r, "POST", "/api/chats", `{"title":"   "}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, r, "POST", "/api/chats", `{"title":"`+strings.Repeat("x", 201)+`"}`).Code)
	assert.Equal(t, http.StatusNotFound, do(t, r, "POST", "/api/chats/missing/favorite", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, r, "GET", "/api/chats/missing", "").Code)
}

func TestHistoryHandler_Clear(t *testing.T) {
	store := history.NewStore(history.NewMemoryStorage(), nop)
	require.NotEmpty(t, store.Chats())

	r := historyRouter(NewHistoryHandler(store, formatter(t, true)))
	assert.Equal(t, http.StatusNoContent, do(t, r, "DELETE", "/api/chats", "").Code)
	assert.Empty(t, store.Chats())
}

func dataRouter(h *DataHandler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/data", h.ListDocuments).Methods("GET")
	r.HandleFunc("/api/data/{id}", h.GetDocument).Methods("GET")
	r.HandleFunc("/api/data/{id}", h.DeleteDocument).Methods("DELETE")
	return r
}

func TestDataHandler(t *testing.T) {
	docs := &fakeDocs{docs: []domain.IngestedDataInfo{
		{ID: "1", FileName: "a.pdf", FileType: "pdf", Size: 10, Status: domain.StatusProcessed},
	}}
	r := dataRouter(NewDataHandler(docs, nop))

	rec := do(t, r, "GET", "/api/data", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"fileName":"a.pdf"`)

	rec = do(t, r, "GET", "/api/data/1", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, r, "GET", "/api/data/abc", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, r, "DELETE", "/api/data/1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"1"}, docs.deleted)
}

func TestDataHandler_EmptyListIsArray(t *testing.T) {
	rec := do(t, dataRouter(NewDataHandler(&fakeDocs{}, nop)), "GET", "/api/data", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestRemoteStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{&azurefn.RemoteCallError{StatusCode: 404, StatusText: "Not Found"}, http.StatusNotFound},
		{&azurefn.RemoteCallError{StatusCode: 500, StatusText: "Internal Server Error"}, http.StatusBadGateway},
		{&azurefn.TransportError{Err: errors.New("connection refused")}, http.StatusBadGateway},
		{&azurefn.TransportError{Err: context.DeadlineExceeded}, http.StatusGatewayTimeout},
		{&azurefn.DecodeError{Err: errors.New("eof")}, http.StatusBadGateway},
		{azurefn.ErrEmptyDocumentID, http.StatusBadRequest},
		{errors.New("other"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		got, _ := remoteStatus(tc.err)
		assert.Equal(t, tc.want, got, tc.err.Error())
	}
}

func newPageHandler(t *testing.T, store *history.Store, docs DocumentService, authenticated bool) *PageHandler {
	t.Helper()
	rd, err := layout.NewRenderer(func(*http.Request) bool { return authenticated }, "en-US", nop)
	require.NoError(t, err)
	h, err := NewPageHandler(rd, store, docs, backend.NewClient("http://127.0.0.1:8000/", time.Second, nop), formatter(t, false), nop)
	require.NoError(t, err)
	return h
}

func TestPageHandler_ChatPageIsPreRendered(t *testing.T) {
	store := emptyHistory(t)
	store.AddChat(domain.ChatInput{Title: "Quarterly numbers"})
	h := newPageHandler(t, store, &fakeDocs{}, true)

	rec := httptest.NewRecorder()
	h.ShowChatPage(rec, httptest.NewRequest("GET", "/chat", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Quarterly numbers")
	assert.Regexp(t, `<time datetime="[0-9T:\-Z]+"></time>`, body)
	assert.Contains(t, body, `id="sidebar"`)
}

func TestPageHandler_LoginHasNoChrome(t *testing.T) {
	h := newPageHandler(t, emptyHistory(t), &fakeDocs{}, true)

	rec := httptest.NewRecorder()
	h.ShowLoginPage(rec, httptest.NewRequest("GET", "/auth/login", nil))

	body := rec.Body.String()
	assert.NotContains(t, body, `id="site-header"`)
	assert.NotContains(t, body, `id="sidebar"`)
	assert.Contains(t, body, `action="http://127.0.0.1:8000/auth/login"`)
}

func TestPageHandler_HomeRendersMarkdown(t *testing.T) {
	h := newPageHandler(t, emptyHistory(t), &fakeDocs{}, false)

	rec := httptest.NewRecorder()
	h.ShowHomePage(rec, httptest.NewRequest("GET", "/", nil))

	body := rec.Body.String()
	assert.Contains(t, body, "<h1>Welcome to your knowledge base</h1>")
	assert.Contains(t, body, `id="site-header"`)
	assert.NotContains(t, body, `id="sidebar"`)
}

func TestPageHandler_DataPage(t *testing.T) {
	docs := &fakeDocs{docs: []domain.IngestedDataInfo{{ID: "7", FileName: "handbook.pdf", Status: domain.StatusFailed}}}
	h := newPageHandler(t, emptyHistory(t), docs, true)

	rec := httptest.NewRecorder()
	h.ShowDataPage(rec, httptest.NewRequest("GET", "/data", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "handbook.pdf")
	assert.Contains(t, rec.Body.String(), "status-failed")

	docs.err = &azurefn.TransportError{Err: errors.New("refused")}
	rec = httptest.NewRecorder()
	h.ShowDataPage(rec, httptest.NewRequest("GET", "/data", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "Ingestion service unreachable")
}

func TestPageHandler_Logout(t *testing.T) {
	h := newPageHandler(t, emptyHistory(t), &fakeDocs{}, true)
	rec := httptest.NewRecorder()
	h.Logout(rec, httptest.NewRequest("GET", "/auth/logout", nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/auth/login", rec.Header().Get("Location"))
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "auth_token=;")
}

func TestBackendHealth(t *testing.T) {
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer up.Close()

	rec := httptest.NewRecorder()
	BackendHealth(backend.NewClient(up.URL, time.Second, nop))(rec, httptest.NewRequest("GET", "/api/backend/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"healthy":true`)
}

func TestLogFrontendEvent(t *testing.T) {
	h := LogFrontendEvent(nop)
	assert.Equal(t, http.StatusNoContent, do(t, h, "POST", "/api/log", `{"level":"error","message":"boom"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, "POST", "/api/log", `{`).Code)
}
