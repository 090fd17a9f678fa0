package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/useraccounts/apiserver/types"
)

// Channels carrying user lifecycle events.
const (
	ChannelUserRegistered = "user.registered"
	ChannelUserUpdated    = "user.updated"
)

// Clock returns the current time; injected for testability.
type Clock func() time.Time

func defaultClock() time.Time { return time.Now() }

// EventPublisher sends a payload to a named channel on the broker.
type EventPublisher interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
}

// UserEvent is the payload published after a successful write.
// The password hash is never part of it.
type UserEvent struct {
	UserID     string    `json:"user_id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	OccurredAt time.Time `json:"occurred_at"`
}

// publish is best-effort: the write already committed, so a broker outage
// must not fail the request.
func (s *UserService) publish(ctx context.Context, channel string, user types.User) {
	if s.events == nil {
		return
	}
	event := UserEvent{
		UserID:     user.ID,
		Username:   user.Username,
		Email:      user.Email,
		OccurredAt: s.now().UTC(),
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	_, _ = s.events.Publish(ctx, channel, data, map[string]string{"user_id": user.ID})
}
