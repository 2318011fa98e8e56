package sync

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/msgtrik/trik/internal/chat"
	"go.uber.org/zap"
)

// Poller drives the two periodic refresh loops: a page-1 re-check of the
// active conversation and a refresh of the recent-chats list. The loops are
// independently cancelable; a tick that fires while the previous one is
// still in flight is skipped. Poll failures are logged and swallowed — the
// next tick retries.
type Poller struct {
	store  *chat.Store
	logger *zap.Logger

	msgInterval    time.Duration
	recentInterval time.Duration

	mu           sync.Mutex
	msgCancel    context.CancelFunc
	recentCancel context.CancelFunc

	msgBusy    atomic.Bool
	recentBusy atomic.Bool
}

// NewPoller creates a poller over the store. logger may be nil.
func NewPoller(store *chat.Store, msgInterval, recentInterval time.Duration, logger *zap.Logger) *Poller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{
		store:          store,
		logger:         logger,
		msgInterval:    msgInterval,
		recentInterval: recentInterval,
	}
}

// StartMessages begins polling the conversation with partnerID. Any
// previous message loop is canceled first, so switching partners restarts
// the cadence. The first poll fires immediately.
func (p *Poller) StartMessages(ctx context.Context, partnerID int) {
	p.mu.Lock()
	if p.msgCancel != nil {
		p.msgCancel()
	}
	ctx, p.msgCancel = context.WithCancel(ctx)
	p.mu.Unlock()

	go p.messageLoop(ctx, partnerID)
}

// StopMessages cancels the message loop. Called when no partner is selected.
func (p *Poller) StopMessages() {
	p.mu.Lock()
	if p.msgCancel != nil {
		p.msgCancel()
		p.msgCancel = nil
	}
	p.mu.Unlock()
}

// StartRecent begins the recent-chats refresh loop for the session.
func (p *Poller) StartRecent(ctx context.Context) {
	p.mu.Lock()
	if p.recentCancel != nil {
		p.recentCancel()
	}
	ctx, p.recentCancel = context.WithCancel(ctx)
	p.mu.Unlock()

	go p.recentLoop(ctx)
}

// Stop cancels both loops. Called on logout and shutdown.
func (p *Poller) Stop() {
	p.StopMessages()
	p.mu.Lock()
	if p.recentCancel != nil {
		p.recentCancel()
		p.recentCancel = nil
	}
	p.mu.Unlock()
}

// PollNow runs a single out-of-band message poll for the current selection.
// The send pipeline uses it for the follow-up poll after a confirmed send.
func (p *Poller) PollNow(ctx context.Context) {
	sel := p.store.Selected()
	if sel == nil {
		return
	}
	p.pollMessages(ctx, sel.ID)
}

func (p *Poller) messageLoop(ctx context.Context, partnerID int) {
	// Fire once immediately on selection, then on the interval.
	p.pollMessages(ctx, partnerID)

	ticker := time.NewTicker(p.msgInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.pollMessages(ctx, partnerID)
		case <-ctx.Done():
			return
		}
	}
}

func (p *Poller) recentLoop(ctx context.Context) {
	ticker := time.NewTicker(p.recentInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if !p.recentBusy.CompareAndSwap(false, true) {
				continue
			}
			if err := p.store.FetchRecentChats(ctx); err != nil && ctx.Err() == nil {
				p.logger.Warn("recent-chats poll failed", zap.Error(err))
			}
			p.recentBusy.Store(false)
		case <-ctx.Done():
			return
		}
	}
}

// pollMessages runs one page-1 re-check followed by a recent-chats refresh,
// then applies the mark-read policy. Skipped when a previous poll for the
// conversation is still in flight.
func (p *Poller) pollMessages(ctx context.Context, partnerID int) {
	if !p.msgBusy.CompareAndSwap(false, true) {
		return
	}
	defer p.msgBusy.Store(false)

	if err := p.store.FetchMessages(ctx, partnerID, 1, true); err != nil && ctx.Err() == nil {
		p.logger.Warn("message poll failed", zap.Int("partner", partnerID), zap.Error(err))
	}
	// The recent-chats refresh rides along even when the message fetch
	// failed; the two stay as fresh as the server allows independently.
	if err := p.store.FetchRecentChats(ctx); err != nil && ctx.Err() == nil {
		p.logger.Warn("recent-chats refresh failed", zap.Error(err))
	}

	// Viewing the conversation counts as reading it: clear unread state
	// once per unread transition.
	if p.store.HasUnreadFrom(partnerID) {
		if err := p.store.MarkRead(ctx, partnerID); err != nil && ctx.Err() == nil {
			p.logger.Warn("mark read failed", zap.Int("partner", partnerID), zap.Error(err))
		}
	}
}
