// File: internal/handlers/history_handler.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/iyunix/go-kbshell/internal/domain"
	"github.com/iyunix/go-kbshell/internal/history"
	"github.com/iyunix/go-kbshell/internal/hydration"
)

const maxTitleLength = 200

// chatView is a ChatItem plus its display timestamp. DisplayDate is empty
// when the formatter's gate has not transitioned.
type chatView struct {
	domain.ChatItem
	Display string `json:"displayDate"`
}

func toChatViews(chats []domain.ChatItem, f *hydration.DateFormatter) []chatView {
	out := make([]chatView, len(chats))
	for i, c := range chats {
		out[i] = chatView{ChatItem: c, Display: f.Format(c.Date)}
	}
	return out
}

type HistoryHandler struct {
	store     *history.Store
	formatter *hydration.DateFormatter
}

// NewHistoryHandler serves the live view of the history, so formatter should
// be bound to a ready gate.
func NewHistoryHandler(store *history.Store, formatter *hydration.DateFormatter) *HistoryHandler {
	return &HistoryHandler{store: store, formatter: formatter}
}

// ListChats returns the history in display order.
func (h *HistoryHandler) ListChats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"chats": toChatViews(h.store.Chats(), h.formatter),
	})
}

// GetChat returns one chat by id.
func (h *HistoryHandler) GetChat(w http.ResponseWriter, r *http.Request) {
	item, ok := h.store.Get(mux.Vars(r)["id"])
	if !ok {
		writeError(w, "Chat not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, chatView{ChatItem: item, Display: h.formatter.Format(item.Date)})
}

// CreateChat prepends a new chat.
func (h *HistoryHandler) CreateChat(w http.ResponseWriter, r *http.Request) {
	var in domain.ChatInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 16<<10)).Decode(&in); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		writeError(w, "Title is required", http.StatusBadRequest)
		return
	}
	if len(in.Title) > maxTitleLength {
		writeError(w, "Title is too long", http.StatusBadRequest)
		return
	}

	item := h.store.AddChat(in)
	writeJSON(w, http.StatusCreated, chatView{ChatItem: item, Display: h.formatter.Format(item.Date)})
}

// DeleteChat removes a chat. Deleting an unknown id succeeds.
func (h *HistoryHandler) DeleteChat(w http.ResponseWriter, r *http.Request) {
	h.store.DeleteChat(mux.Vars(r)["id"])
	w.WriteHeader(http.StatusNoContent)
}

// ToggleFavorite flips the favorite flag and returns the updated chat.
func (h *HistoryHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	item, ok := h.store.ToggleFavorite(mux.Vars(r)["id"])
	if !ok {
		writeError(w, "Chat not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, chatView{ChatItem: item, Display: h.formatter.Format(item.Date)})
}

// ClearHistory empties the history.
func (h *HistoryHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	h.store.ClearHistory()
	w.WriteHeader(http.StatusNoContent)
}
