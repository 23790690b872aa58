package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/bob-sav/gym-meat-sub000/pkg/config"
	"github.com/bob-sav/gym-meat-sub000/pkg/logger"
)

var (
	errAPIKeyRequired = errors.New("sendgrid api key is required")
	errFromRequired   = errors.New("sendgrid default from address is required")
)

// Message is the provider-independent mail request.
type Message struct {
	ToEmail   string
	ToName    string
	Subject   string
	PlainBody string
	HTMLBody  string
}

// Sender is the surface consumers use to deliver mail.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Client wraps SendGrid with centralized config validation and logging.
type Client struct {
	sg     *sendgrid.Client
	from   *mail.Email
	logger *logger.Logger
}

// NewClient initializes the SendGrid wrapper and validates the credentials.
func NewClient(ctx context.Context, cfg config.SendgridConfig, logg *logger.Logger) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}
	from := strings.TrimSpace(cfg.DefaultFrom)
	if from == "" {
		return nil, errFromRequired
	}

	c := &Client{
		sg:     sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail("", from),
		logger: logg,
	}

	if logg != nil {
		logg.Info(ctx, "sendgrid client initialized")
	}
	return c, nil
}

// Send delivers one message through SendGrid.
func (c *Client) Send(ctx context.Context, msg Message) error {
	if c == nil || c.sg == nil {
		return errors.New("mailer not initialized")
	}
	to := strings.TrimSpace(msg.ToEmail)
	if to == "" {
		return errors.New("recipient email is required")
	}
	if strings.TrimSpace(msg.Subject) == "" {
		return errors.New("subject is required")
	}

	body := msg.PlainBody
	if body == "" {
		body = msg.HTMLBody
	}
	message := mail.NewSingleEmail(c.from, msg.Subject, mail.NewEmail(msg.ToName, to), body, msg.HTMLBody)

	resp, err := c.sg.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid send: status %d: %s", resp.StatusCode, strings.TrimSpace(resp.Body))
	}
	return nil
}
