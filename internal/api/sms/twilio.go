package sms

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aussiebroadwan/storefront/pkg/slogx"
	"github.com/twilio/twilio-go"
	twclient "github.com/twilio/twilio-go/client"
	twapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// TwilioSender sends messages through the Twilio Messages API.
type TwilioSender struct {
	From string

	rest *twilio.RestClient
}

// NewTwilioSender builds a sender for the given account. A nil httpClient
// uses one with a 10 second timeout.
func NewTwilioSender(accountSID, authToken, from string, httpClient *http.Client) *TwilioSender {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	c := &twclient.Client{
		Credentials: twclient.NewCredentials(accountSID, authToken),
		HTTPClient:  httpClient,
	}
	c.SetAccountSid(accountSID)

	return &TwilioSender{
		From: from,
		rest: twilio.NewRestClientWithParams(twilio.ClientParams{Client: c}),
	}
}

// Send creates one message. API failures come back wrapping a
// *client.TwilioRestError.
func (s *TwilioSender) Send(ctx context.Context, to, body string) error {
	// CreateMessage takes no context; honour cancellation before the call.
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &twapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.From)
	params.SetBody(body)

	msg, err := s.rest.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("twilio: create message: %w", err)
	}

	if msg.Sid != nil {
		slogx.FromContext(ctx).Debug("sms queued", "sid", *msg.Sid)
	}
	return nil
}
