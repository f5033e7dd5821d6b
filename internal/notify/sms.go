package notify

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// SMSConfig holds the Twilio account and the operator phone.
type SMSConfig struct {
	AccountSID string
	AuthToken  string
	From       string
	To         string
}

// MessageCreator is the part of the Twilio REST API used for texts.
// *twilioapi.ApiService implements it.
type MessageCreator interface {
	CreateMessage(params *twilioapi.CreateMessageParams) (*twilioapi.ApiV2010Message, error)
}

// SMSSender sends text messages to the operator phone.
type SMSSender struct {
	cfg SMSConfig
	api MessageCreator
}

// NewSMSSender creates a sender. A nil api uses the Twilio REST client for
// the configured account.
func NewSMSSender(cfg SMSConfig, api MessageCreator) *SMSSender {
	if api == nil {
		api = twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.AccountSID,
			Password: cfg.AuthToken,
		}).Api
	}
	return &SMSSender{cfg: cfg, api: api}
}

// Send delivers body to the operator phone and returns the message SID.
func (s *SMSSender) Send(ctx context.Context, body string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("send sms: %w", err)
	}
	params := &twilioapi.CreateMessageParams{}
	params.SetTo(E164(s.cfg.To))
	params.SetFrom(s.cfg.From)
	params.SetBody(body)

	msg, err := s.api.CreateMessage(params)
	if err != nil {
		return "", fmt.Errorf("send sms: %w", err)
	}
	if msg == nil || msg.Sid == nil {
		return "", nil
	}
	return *msg.Sid, nil
}

// E164 keeps the digits of a phone number and prefixes "+".
func E164(phone string) string {
	var b strings.Builder
	b.WriteByte('+')
	for _, r := range phone {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
