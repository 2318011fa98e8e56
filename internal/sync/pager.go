package sync

import (
	"context"
	"sync/atomic"

	"github.com/msgtrik/trik/internal/chat"
	"go.uber.org/zap"
)

// Pager turns "the history sentinel neared the viewport" signals into
// older-page fetches. It is inert once the store reports no more history,
// and never runs two page fetches at once.
type Pager struct {
	store    *chat.Store
	logger   *zap.Logger
	inFlight atomic.Bool
}

// NewPager creates a pager over the store. logger may be nil.
func NewPager(store *chat.Store, logger *zap.Logger) *Pager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pager{store: store, logger: logger}
}

// Trigger fetches the next older page if one remains, no fetch is in
// flight, and a partner is selected. Reports whether a fetch was issued.
func (p *Pager) Trigger(ctx context.Context) bool {
	sel := p.store.Selected()
	if sel == nil || !p.store.HasMore() || p.store.IsLoading() {
		return false
	}
	if !p.inFlight.CompareAndSwap(false, true) {
		return false
	}
	defer p.inFlight.Store(false)

	page := p.store.AdvancePage()
	if err := p.store.FetchMessages(ctx, sel.ID, page, false); err != nil {
		p.logger.Warn("page fetch failed", zap.Int("partner", sel.ID), zap.Int("page", page), zap.Error(err))
		return false
	}
	return true
}
