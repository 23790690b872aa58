package notifications

import (
	"context"
	"fmt"

	"github.com/bob-sav/gym-meat-sub000/pkg/mailer"
	"github.com/bob-sav/gym-meat-sub000/pkg/outbox/payloads"
)

// Service turns arrival events into customer mail.
type Service interface {
	SendArrivalEmail(ctx context.Context, payload payloads.OrderArrivedEvent) error
}

type service struct {
	repo   Repository
	sender mailer.Sender
}

// NewService builds the notifications service.
func NewService(repo Repository, sender mailer.Sender) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if sender == nil {
		return nil, fmt.Errorf("mail sender required")
	}
	return &service{repo: repo, sender: sender}, nil
}

func (s *service) SendArrivalEmail(ctx context.Context, payload payloads.OrderArrivedEvent) error {
	user, err := s.repo.FindUser(ctx, payload.CustomerUserID)
	if err != nil {
		return fmt.Errorf("load customer: %w", err)
	}

	location := "your gym"
	if payload.PickupGymID != nil {
		gym, err := s.repo.FindGym(ctx, *payload.PickupGymID)
		if err == nil {
			location = gym.Name
		}
	}

	subject := fmt.Sprintf("Order #%d has arrived", payload.ShortCode)
	plain := fmt.Sprintf(
		"Hi %s,\n\nYour order #%d is waiting for you at %s. Bring your order code to the front desk.\n",
		user.Name, payload.ShortCode, location,
	)
	html := fmt.Sprintf(
		"<p>Hi %s,</p><p>Your order <strong>#%d</strong> is waiting for you at %s. Bring your order code to the front desk.</p>",
		user.Name, payload.ShortCode, location,
	)

	return s.sender.Send(ctx, mailer.Message{
		ToEmail:   user.Email,
		ToName:    user.Name,
		Subject:   subject,
		PlainBody: plain,
		HTMLBody:  html,
	})
}
