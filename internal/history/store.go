// Package history holds the user's chat history list and persists it through
// a pluggable key-value Storage.
package history

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iyunix/go-kbshell/internal/domain"
	"github.com/iyunix/go-kbshell/internal/logging"
)

// StorageKey is the single entry the whole collection is serialized under.
const StorageKey = "chat-history"

var errMalformedSnapshot = errors.New("malformed chat history snapshot")

// snapshot is the persisted form: {"chats": [...]}.
type snapshot struct {
	Chats []domain.ChatItem `json:"chats"`
}

// Listener receives a copy of the collection after every mutation.
type Listener func(chats []domain.ChatItem)

// Store is the single source of truth for the chat history list. Every
// mutating call is atomic on its own; sequences of calls are not.
type Store struct {
	mu      sync.Mutex
	chats   []domain.ChatItem
	storage Storage
	logger  logging.Logger

	now   func() time.Time
	newID func() string

	listenersMu  sync.RWMutex
	listeners    map[int]Listener
	nextListener int
}

// NewStore loads the persisted snapshot from storage, falling back to the
// seed list when nothing is stored or the stored value cannot be decoded.
func NewStore(storage Storage, logger logging.Logger) *Store {
	if logger == nil {
		logger = &logging.NoOpLogger{}
	}
	s := &Store{
		storage:   storage,
		logger:    logger,
		now:       time.Now,
		newID:     uuid.NewString,
		listeners: make(map[int]Listener),
	}
	s.chats = s.load()
	return s
}

func (s *Store) load() []domain.ChatItem {
	if s.storage == nil {
		return SeedChats(s.now())
	}

	data, ok, err := s.storage.Get(StorageKey)
	if err != nil {
		s.logger.Warn("reading chat history failed, using seed list", "error", err)
		return SeedChats(s.now())
	}
	if !ok {
		s.logger.Debug("no persisted chat history, using seed list")
		return SeedChats(s.now())
	}

	chats, err := decodeSnapshot(data)
	if err != nil {
		s.logger.Warn("persisted chat history is malformed, using seed list", "error", err)
		return SeedChats(s.now())
	}
	s.logger.Info("chat history loaded", "count", len(chats))
	return chats
}

// decodeSnapshot rejects documents without a chats array and records that
// would break id uniqueness.
func decodeSnapshot(data []byte) ([]domain.ChatItem, error) {
	var raw struct {
		Chats *[]domain.ChatItem `json:"chats"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if raw.Chats == nil {
		return nil, errMalformedSnapshot
	}

	seen := make(map[string]struct{}, len(*raw.Chats))
	for _, c := range *raw.Chats {
		if c.ID == "" {
			return nil, errMalformedSnapshot
		}
		if _, dup := seen[c.ID]; dup {
			return nil, errMalformedSnapshot
		}
		seen[c.ID] = struct{}{}
	}
	return *raw.Chats, nil
}

// Chats returns a copy of the collection in display order.
func (s *Store) Chats() []domain.ChatItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneChats(s.chats)
}

// Get looks up a single record.
func (s *Store) Get(id string) (domain.ChatItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.chats[i], true
	}
	return domain.ChatItem{}, false
}

// AddChat prepends a new record with a fresh id and the current time.
func (s *Store) AddChat(in domain.ChatInput) domain.ChatItem {
	s.mu.Lock()
	item := domain.ChatItem{
		ID:         s.newID(),
		Title:      in.Title,
		Date:       s.now().UTC(),
		Thumbnail:  in.Thumbnail,
		IsFavorite: in.IsFavorite,
	}
	chats := make([]domain.ChatItem, 0, len(s.chats)+1)
	chats = append(chats, item)
	s.chats = append(chats, s.chats...)
	out := s.commitLocked()
	s.mu.Unlock()

	s.logger.Debug("chat added", "chat_id", item.ID)
	s.notify(out)
	return item
}

// DeleteChat removes the record with id. Unknown ids are a no-op; the return
// value reports whether anything was removed.
func (s *Store) DeleteChat(id string) bool {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.chats = append(s.chats[:i:i], s.chats[i+1:]...)
	out := s.commitLocked()
	s.mu.Unlock()

	s.logger.Debug("chat deleted", "chat_id", id)
	s.notify(out)
	return true
}

// ToggleFavorite flips the favorite flag of the record with id. Unknown ids
// are a no-op.
func (s *Store) ToggleFavorite(id string) (domain.ChatItem, bool) {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return domain.ChatItem{}, false
	}
	s.chats[i].IsFavorite = !s.chats[i].IsFavorite
	item := s.chats[i]
	out := s.commitLocked()
	s.mu.Unlock()

	s.notify(out)
	return item, true
}

// ClearHistory empties the collection.
func (s *Store) ClearHistory() {
	s.mu.Lock()
	s.chats = []domain.ChatItem{}
	out := s.commitLocked()
	s.mu.Unlock()

	s.logger.Info("chat history cleared")
	s.notify(out)
}

// Subscribe registers fn for change notifications and returns a function
// that removes it.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.listenersMu.Lock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	s.listenersMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.listenersMu.Lock()
			delete(s.listeners, id)
			s.listenersMu.Unlock()
		})
	}
}

func (s *Store) indexOf(id string) int {
	for i := range s.chats {
		if s.chats[i].ID == id {
			return i
		}
	}
	return -1
}

// commitLocked serializes the collection to storage and returns a copy for
// listeners. A failed write is logged; the in-memory state stays authoritative.
func (s *Store) commitLocked() []domain.ChatItem {
	out := cloneChats(s.chats)
	if s.storage == nil {
		return out
	}
	data, err := json.Marshal(snapshot{Chats: out})
	if err != nil {
		s.logger.Error("encoding chat history failed", "error", err)
		return out
	}
	if err := s.storage.Set(StorageKey, data); err != nil {
		s.logger.Error("persisting chat history failed", "error", err, "count", len(out))
	}
	return out
}

// notify runs outside s.mu so listeners may call back into the store.
func (s *Store) notify(chats []domain.ChatItem) {
	s.listenersMu.RLock()
	fns := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.listenersMu.RUnlock()

	for _, fn := range fns {
		fn(cloneChats(chats))
	}
}

func cloneChats(in []domain.ChatItem) []domain.ChatItem {
	out := make([]domain.ChatItem, len(in))
	copy(out, in)
	return out
}
