package events

import (
	"context"
	waitlist "fleet/internal/domains/waitlist/service"

	"github.com/rs/zerolog/log"
)

type localPublisher struct {
	notifier waitlist.Notifier
}

func NewLocalPublisher(notifier waitlist.Notifier) Publisher {
	return &localPublisher{notifier: notifier}
}

// CarAvailable runs the cascade on a detached goroutine so the caller returns immediately.
func (p *localPublisher) CarAvailable(ctx context.Context, carID string) {
	go func() {
		c := context.WithoutCancel(ctx)

		if _, err := p.notifier.NotifyWaiting(c, carID); err != nil {
			log.Error().Err(err).Str("car_id", carID).Msg("waitlist cascade failed")
		}
	}()
}
