package sync

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/msgtrik/trik/internal/chat"
)

// fnGateway dispatches to per-test closures.
type fnGateway struct {
	mu      sync.Mutex
	fetchFn func(partnerID, page int) (*chat.MessagePage, error)
	sendFn  func(receiverID int, content string) (*chat.Message, error)
	pages   []int // page arguments seen by FetchMessages
	sendN   int
}

func (g *fnGateway) FetchMessages(_ context.Context, partnerID, page int) (*chat.MessagePage, error) {
	g.mu.Lock()
	g.pages = append(g.pages, page)
	g.mu.Unlock()
	if g.fetchFn == nil {
		return &chat.MessagePage{Pagination: chat.Pagination{Pages: 1, Page: page}}, nil
	}
	return g.fetchFn(partnerID, page)
}

func (g *fnGateway) SendMessage(_ context.Context, receiverID int, content string) (*chat.Message, error) {
	g.mu.Lock()
	g.sendN++
	g.mu.Unlock()
	if g.sendFn == nil {
		return &chat.Message{ID: 1, SenderID: 1, ReceiverID: receiverID, Content: content, Timestamp: ts(0)}, nil
	}
	return g.sendFn(receiverID, content)
}

func (g *fnGateway) MarkRead(context.Context, int) error { return nil }

func (g *fnGateway) RecentChats(context.Context) ([]chat.ChatUser, error) { return nil, nil }

func (g *fnGateway) seenPages() []int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]int(nil), g.pages...)
}

func (g *fnGateway) sends() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sendN
}

// threePageHistory serves pages 3..1 of a 3-page conversation, newest page
// first the way the server does.
func threePageHistory(partnerID, page int) (*chat.MessagePage, error) {
	read := true
	base := (3 - page) * 2
	msgs := []chat.Message{
		{ID: base + 1, SenderID: partnerID, ReceiverID: 1, Content: "a", Timestamp: ts(base + 1), Read: &read},
		{ID: base + 2, SenderID: 1, ReceiverID: partnerID, Content: "b", Timestamp: ts(base + 2), Read: &read},
	}
	return &chat.MessagePage{Messages: msgs, Pagination: chat.Pagination{Total: 6, Pages: 3, Page: page, Limit: 2}}, nil
}

func TestPagerRequiresSelection(t *testing.T) {
	gw := &fnGateway{}
	store := chat.NewStore(gw, nil, nil)
	p := NewPager(store, nil)

	if p.Trigger(context.Background()) {
		t.Error("Trigger fired with no partner selected")
	}
	if len(gw.seenPages()) != 0 {
		t.Errorf("gateway called %v times with no selection", gw.seenPages())
	}
}

func TestPagerWalksOlderPages(t *testing.T) {
	gw := &fnGateway{fetchFn: threePageHistory}
	store := chat.NewStore(gw, nil, nil)
	store.SelectPartner(&chat.ChatUser{ID: 2})

	if err := store.FetchMessages(context.Background(), 2, 1, false); err != nil {
		t.Fatalf("initial fetch: %v", err)
	}
	if !store.HasMore() {
		t.Fatal("HasMore = false after page 1 of 3")
	}

	p := NewPager(store, nil)
	if !p.Trigger(context.Background()) {
		t.Fatal("Trigger did not fetch page 2")
	}
	if !p.Trigger(context.Background()) {
		t.Fatal("Trigger did not fetch page 3")
	}
	if store.HasMore() {
		t.Error("HasMore = true after final page")
	}
	if p.Trigger(context.Background()) {
		t.Error("Trigger fired past the final page")
	}

	want := []int{1, 2, 3}
	got := gw.seenPages()
	if len(got) != len(want) {
		t.Fatalf("fetched pages %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("fetched pages %v, want %v", got, want)
		}
	}
	if msgs := store.Messages(); len(msgs) != 6 {
		t.Errorf("loaded messages = %d, want 6", len(msgs))
	}
}

func TestPagerRecoversAfterFetchError(t *testing.T) {
	fail := true
	gw := &fnGateway{fetchFn: func(partnerID, page int) (*chat.MessagePage, error) {
		if page > 1 && fail {
			return nil, errors.New("boom")
		}
		return threePageHistory(partnerID, page)
	}}
	store := chat.NewStore(gw, nil, nil)
	store.SelectPartner(&chat.ChatUser{ID: 2})
	if err := store.FetchMessages(context.Background(), 2, 1, false); err != nil {
		t.Fatalf("initial fetch: %v", err)
	}

	p := NewPager(store, nil)
	if p.Trigger(context.Background()) {
		t.Fatal("Trigger reported success on a failed fetch")
	}

	// The guard releases after a failure so scrolling can retry.
	fail = false
	if !p.Trigger(context.Background()) {
		t.Error("Trigger could not fetch again after an error")
	}
}
