package mail

import (
	"context"
	"fmt"
	"net/http"

	"petlink/internal/domain/reminders"
	"petlink/internal/platform/httpclient"
)

// RelayPath es el endpoint del relay HTTP que recibe los mails.
const RelayPath = "/v1/messages"

// RelaySender publica el mail en un relay HTTP JSON.
type RelaySender struct {
	client *httpclient.Client
}

func NewRelaySender(client *httpclient.Client) *RelaySender {
	return &RelaySender{client: client}
}

type relayMessage struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
}

func (s *RelaySender) Send(ctx context.Context, msg reminders.Message) error {
	if err := checkHeaders(msg); err != nil {
		return err
	}

	err := s.client.DoJSON(ctx, http.MethodPost, RelayPath, relayMessage{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		Text:    msg.Body,
	}, nil)
	if err != nil {
		return fmt.Errorf("mail: relay send: %w", err)
	}
	return nil
}
