package chat

import (
	"context"
	"sync"
	"time"

	"github.com/msgtrik/trik/internal/bus"
	"go.uber.org/zap"
)

// Gateway is the remote chat service the store synchronizes against. The
// REST client implements it; tests use an in-memory fake.
type Gateway interface {
	FetchMessages(ctx context.Context, partnerID, page int) (*MessagePage, error)
	SendMessage(ctx context.Context, receiverID int, content string) (*Message, error)
	MarkRead(ctx context.Context, partnerID int) error
	RecentChats(ctx context.Context) ([]ChatUser, error)
}

// Store holds the authoritative client-side view of the active conversation
// and the recent-chats list. All mutation goes through its command methods;
// each command computes its next state under the lock and publishes a change
// event on the bus. Gateway calls happen outside the lock, and every
// completion re-checks that its result still applies before mutating.
type Store struct {
	mu     sync.RWMutex
	gw     Gateway
	bus    *bus.Bus
	logger *zap.Logger

	selected *ChatUser
	messages []Message
	page     int
	hasMore  bool
	recent   []ChatUser
	loading  bool
	errMsg   string
}

// NewStore creates an empty chat store. logger may be nil.
func NewStore(gw Gateway, b *bus.Bus, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		gw:      gw,
		bus:     b,
		logger:  logger,
		page:    1,
		hasMore: true,
	}
}

// SelectPartner sets the active conversation partner. Selecting a different
// partner (or clearing the selection) resets the loaded messages and paging
// state; re-selecting the same partner is a no-op apart from storing the
// possibly fresher user value. The store does not fetch on its own — the
// caller issues the initial FetchMessages.
func (s *Store) SelectPartner(u *ChatUser) {
	s.mu.Lock()
	if u == nil || s.selected == nil || u.ID != s.selected.ID {
		s.messages = nil
		s.page = 1
		s.hasMore = true
	}
	s.selected = u
	s.mu.Unlock()
	s.publish(bus.KindSelectionChanged, u)
}

// FetchMessages loads one page of history for partnerID. polling marks the
// call as a periodic page-1 re-check: those merge by message id and are
// discarded outright when nothing returned is strictly newer than the newest
// loaded message. A non-polling page-1 fetch is the initial load after
// selection and replaces the loaded messages wholesale. Results that arrive
// after the selection moved to another partner are dropped.
func (s *Store) FetchMessages(ctx context.Context, partnerID, page int, polling bool) error {
	s.mu.Lock()
	s.loading = true
	s.errMsg = ""
	s.mu.Unlock()

	pg, err := s.gw.FetchMessages(ctx, partnerID, page)
	if err != nil {
		s.fail("fetch messages", err, !polling)
		return err
	}

	fetched := append([]Message(nil), pg.Messages...)
	sortMessages(fetched)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false

	// Stale-partner guard: the user switched conversations while this
	// request was in flight.
	if s.selected == nil || s.selected.ID != partnerID {
		return nil
	}

	if polling && page == 1 && len(s.messages) > 0 {
		newest := s.messages[len(s.messages)-1].Timestamp
		hasNewer := false
		for i := range fetched {
			if CompareTimestamps(fetched[i].Timestamp, newest) > 0 {
				hasNewer = true
				break
			}
		}
		if !hasNewer {
			// Nothing new: leave state untouched to suppress a
			// redundant redraw.
			return nil
		}
	}

	changed := false
	if page == 1 && !polling {
		s.messages = fetched
		changed = true
	} else {
		existing := make(map[int]struct{}, len(s.messages))
		for i := range s.messages {
			existing[s.messages[i].ID] = struct{}{}
		}
		for i := range fetched {
			if _, dup := existing[fetched[i].ID]; !dup {
				s.messages = append(s.messages, fetched[i])
				changed = true
			}
		}
		if changed {
			sortMessages(s.messages)
		}
	}

	s.hasMore = len(fetched) > 0 && page < pg.Pagination.Pages

	if changed {
		s.publish(bus.KindMessagesChanged, partnerID)
	}
	return nil
}

// SendMessage posts content to receiverID and appends the server-confirmed
// message. The caller guarantees content is non-empty and receiverID matches
// the current selection; the store only re-checks the selection when the
// confirmation arrives.
func (s *Store) SendMessage(ctx context.Context, receiverID int, content string) (*Message, error) {
	s.mu.Lock()
	s.errMsg = ""
	s.mu.Unlock()

	msg, err := s.gw.SendMessage(ctx, receiverID, content)
	if err != nil {
		s.fail("send message", err, false)
		return nil, err
	}

	s.mu.Lock()
	if s.selected != nil && s.selected.ID == msg.ReceiverID {
		s.messages = append(s.messages, *msg)
		sortMessages(s.messages)
		s.publish(bus.KindMessagesChanged, msg.ReceiverID)
	}
	s.mu.Unlock()
	return msg, nil
}

// FetchRecentChats replaces the recent-chats list with the gateway's
// current view, sorted most-recent-first. Independent of the selection.
func (s *Store) FetchRecentChats(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.errMsg = ""
	s.mu.Unlock()

	chats, err := s.gw.RecentChats(ctx)
	if err != nil {
		s.fail("fetch recent chats", err, false)
		return err
	}

	sorted := append([]ChatUser(nil), chats...)
	sortRecentChats(sorted)

	s.mu.Lock()
	s.loading = false
	s.recent = sorted
	s.publish(bus.KindRecentChanged, len(sorted))
	s.mu.Unlock()
	return nil
}

// MarkRead marks the conversation with partnerID as read server-side, then
// flags every loaded message read and zeroes the partner's unread count in
// the recent list. Marking all loaded messages (not just the partner's)
// mirrors the server's blanket behavior.
func (s *Store) MarkRead(ctx context.Context, partnerID int) error {
	if err := s.gw.MarkRead(ctx, partnerID); err != nil {
		s.fail("mark read", err, false)
		return err
	}

	read := true
	s.mu.Lock()
	if s.selected != nil && s.selected.ID == partnerID {
		for i := range s.messages {
			s.messages[i].Read = &read
		}
		s.publish(bus.KindMessagesChanged, partnerID)
	}
	for i := range s.recent {
		if s.recent[i].ID == partnerID {
			s.recent[i].UnreadCount = 0
		}
	}
	s.publish(bus.KindRecentChanged, partnerID)
	s.mu.Unlock()
	return nil
}

// Reset tears the session state down to empty. Used on logout.
func (s *Store) Reset() {
	s.mu.Lock()
	s.selected = nil
	s.messages = nil
	s.page = 1
	s.hasMore = true
	s.recent = nil
	s.loading = false
	s.errMsg = ""
	s.mu.Unlock()
	s.publish(bus.KindSelectionChanged, nil)
}

// Selected returns the active conversation partner, or nil.
func (s *Store) Selected() *ChatUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected == nil {
		return nil
	}
	u := *s.selected
	return &u
}

// Messages returns a snapshot of the loaded messages.
func (s *Store) Messages() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Message(nil), s.messages...)
}

// RecentChats returns a snapshot of the recent-chats list.
func (s *Store) RecentChats() []ChatUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]ChatUser(nil), s.recent...)
}

// Page returns the highest fetched page number for the active conversation.
func (s *Store) Page() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.page
}

// AdvancePage increments the pagination cursor and returns the new page.
func (s *Store) AdvancePage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.page++
	return s.page
}

// HasMore reports whether an older history page remains.
func (s *Store) HasMore() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasMore
}

// IsLoading reports whether a fetch or send is in flight.
func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err returns the failure reason of the last completed operation, or "".
func (s *Store) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errMsg
}

// HasUnreadFrom reports whether any loaded message authored by partnerID is
// unread. Drives the mark-read invocation policy.
func (s *Store) HasUnreadFrom(partnerID int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.messages {
		if s.messages[i].SenderID == partnerID && !s.messages[i].IsRead() {
			return true
		}
	}
	return false
}

// fail records an operation failure. notify controls whether the error is
// published as a user-facing event: only explicit, user-initiated fetches
// notify. Polling failures stay in the log and the transient error field —
// surfacing a notice on every failed tick would spam the UI — and send
// failures are already surfaced at the send call site.
func (s *Store) fail(op string, err error, notify bool) {
	s.logger.Warn(op+" failed", zap.Error(err))
	s.mu.Lock()
	s.loading = false
	s.errMsg = err.Error()
	s.mu.Unlock()
	if notify {
		s.publish(bus.KindStoreError, err.Error())
	}
}

func (s *Store) publish(kind string, payload any) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(bus.Event{Kind: kind, Timestamp: time.Now(), Payload: payload})
}
