package sms_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/aussiebroadwan/storefront/internal/api/sms"
	"github.com/stretchr/testify/require"
	twclient "github.com/twilio/twilio-go/client"
)

// twilioServer answers the Messages API from handler. The returned client
// sends every request to it, whatever host the SDK asks for.
func twilioServer(t *testing.T, handler http.HandlerFunc) *http.Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	target, err := url.Parse(srv.URL)
	require.NoError(t, err)
	return &http.Client{Transport: redirectTransport{target: target}}
}

type redirectTransport struct {
	target *url.URL
}

func (rt redirectTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.URL.Scheme = rt.target.Scheme
	r.URL.Host = rt.target.Host
	r.Host = rt.target.Host
	return http.DefaultTransport.RoundTrip(r)
}

func TestTwilioSender(t *testing.T) {
	var gotPath, gotUser, gotPass, gotTo, gotFrom, gotBody string
	hc := twilioServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, gotPass, _ = r.BasicAuth()
		if err := r.ParseForm(); err == nil {
			gotTo, gotFrom, gotBody = r.PostForm.Get("To"), r.PostForm.Get("From"), r.PostForm.Get("Body")
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid":"SM123","status":"queued"}`))
	})

	sender := sms.NewTwilioSender("AC123", "secret", "+15550000000", hc)

	require.NoError(t, sender.Send(context.Background(), "+61400000000", "Your code is 123456"))
	require.Equal(t, "/2010-04-01/Accounts/AC123/Messages.json", gotPath)
	require.Equal(t, "AC123", gotUser)
	require.Equal(t, "secret", gotPass)
	require.Equal(t, "+61400000000", gotTo)
	require.Equal(t, "+15550000000", gotFrom)
	require.Equal(t, "Your code is 123456", gotBody)
}

func TestTwilioSenderError(t *testing.T) {
	hc := twilioServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":21211,"message":"The 'To' number is not a valid phone number.","status":400}`))
	})

	sender := sms.NewTwilioSender("AC123", "secret", "+15550000000", hc)
	err := sender.Send(context.Background(), "nope", "hi")

	var twErr *twclient.TwilioRestError
	require.ErrorAs(t, err, &twErr)
	require.Equal(t, 21211, twErr.Code)
	require.Equal(t, http.StatusBadRequest, twErr.Status)
}

func TestTwilioSenderCancelled(t *testing.T) {
	called := false
	hc := twilioServer(t, func(w http.ResponseWriter, r *http.Request) { called = true })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sender := sms.NewTwilioSender("AC123", "secret", "+15550000000", hc)
	require.ErrorIs(t, sender.Send(ctx, "+61400000000", "hi"), context.Canceled)
	require.False(t, called)
}

func TestLogSender(t *testing.T) {
	sender := &sms.LogSender{}
	_, ok := sender.Last()
	require.False(t, ok)

	require.NoError(t, sender.Send(context.Background(), "+1", "one"))
	require.NoError(t, sender.Send(context.Background(), "+2", "two"))

	last, ok := sender.Last()
	require.True(t, ok)
	require.Equal(t, sms.Message{To: "+2", Body: "two"}, last)
	require.Len(t, sender.Sent(), 2)
}
