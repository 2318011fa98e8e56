package sync

import (
	"context"
	"strings"
	"time"

	"github.com/msgtrik/trik/internal/chat"
	"go.uber.org/zap"
)

// Sender is the send pipeline: a server-confirmed send followed by one
// out-of-band poll shortly after, which picks up any reply the partner sent
// in the same window. The composer clears its input on submit, before
// confirmation; a failed send surfaces a notification but does not restore
// the typed text.
type Sender struct {
	store  *chat.Store
	poller *Poller
	logger *zap.Logger

	// pollDelay is how long after a confirmed send the follow-up poll runs.
	pollDelay time.Duration

	// notify surfaces a user-visible failure notice. May be nil.
	notify func(msg string)
}

// NewSender creates the send pipeline. notify and logger may be nil.
func NewSender(store *chat.Store, poller *Poller, pollDelay time.Duration, notify func(string), logger *zap.Logger) *Sender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sender{
		store:     store,
		poller:    poller,
		logger:    logger,
		pollDelay: pollDelay,
		notify:    notify,
	}
}

// Send posts content to receiverID. Empty (all-whitespace) content is
// dropped without a gateway call.
func (s *Sender) Send(ctx context.Context, receiverID int, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}

	msg, err := s.store.SendMessage(ctx, receiverID, content)
	if err != nil {
		s.logger.Warn("send failed", zap.Int("receiver", receiverID), zap.Error(err))
		if s.notify != nil {
			s.notify("Message not sent: " + err.Error())
		}
		return err
	}

	s.logger.Info("message sent", zap.Int("id", msg.ID), zap.Int("receiver", msg.ReceiverID))
	time.AfterFunc(s.pollDelay, func() {
		s.poller.PollNow(context.Background())
	})
	return nil
}
