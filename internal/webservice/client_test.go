package webservice

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/backchair/storefront/internal/logging"
	"github.com/backchair/storefront/internal/metrics"
)

func TestCallSendsActionAndToken(t *testing.T) {
	var (
		gotBody  map[string]any
		gotToken string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get(accessTokenHeader)
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"serverResponse":{"code":200,"message":"ok"},"result":{"profileDetails":{"userId":42,"email":"a@b.com","accessToken":"tok-2"}}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, logging.Discard(), nil)
	env, err := client.Call(context.Background(), ActionVerifyOTP, map[string]any{"email": "a@b.com", "otp": "1234"}, "tok-1")
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if gotBody["action"] != ActionVerifyOTP || gotBody["otp"] != "1234" {
		t.Fatalf("unexpected request body %v", gotBody)
	}
	if gotToken != "tok-1" {
		t.Fatalf("expected access token header, got %q", gotToken)
	}
	if !env.OK() {
		t.Fatalf("expected ok envelope")
	}
	profile := env.Profile()
	if profile == nil || profile.UserID != "42" || profile.AccessToken != "tok-2" {
		t.Fatalf("unexpected profile %+v", profile)
	}
}

func TestCallOmitsTokenHeaderWhenEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.Header[http.CanonicalHeaderKey(accessTokenHeader)]; ok {
			t.Errorf("token header must not be sent")
		}
		_, _ = w.Write([]byte(`{"serverResponse":{"code":200,"message":""}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, nil, nil)
	if _, err := client.Call(context.Background(), ActionEmailValidation, map[string]any{"email": "a@b.com"}, ""); err != nil {
		t.Fatalf("call: %v", err)
	}
}

func TestCallReturnsRejectedEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"serverResponse":{"code":400,"message":"not found"}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, logging.Discard(), nil)
	env, err := client.Call(context.Background(), ActionEmailValidation, nil, "")
	if err != nil {
		t.Fatalf("rejection must not be a transport error: %v", err)
	}
	if env.OK() {
		t.Fatalf("expected non-ok envelope")
	}
	rej := env.Rejection(ActionEmailValidation)
	if rej.Error() != "not found" || rej.Code != 400 {
		t.Fatalf("unexpected rejection %+v", rej)
	}
}

func TestSignUpOtpRequiredCountsAsOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"serverResponse":{"code":602,"message":"otp sent"}}`))
	}))
	defer srv.Close()

	m := metrics.New()
	client := NewClient(srv.URL, time.Second, logging.Discard(), m)
	env, err := client.Call(context.Background(), ActionSignUp, nil, "")
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if !env.Accepted(ActionSignUp) {
		t.Fatalf("602 must be accepted for signUp")
	}
	if env.Accepted(ActionEmailValidation) {
		t.Fatalf("602 must not be accepted for other actions")
	}
	if got := testutil.ToFloat64(m.RemoteCalls.WithLabelValues(ActionSignUp, metrics.OutcomeOK)); got != 1 {
		t.Fatalf("expected 1 ok signUp call, got %v", got)
	}
	if got := testutil.ToFloat64(m.RemoteCalls.WithLabelValues(ActionSignUp, metrics.OutcomeRejected)); got != 0 {
		t.Fatalf("expected no rejected signUp calls, got %v", got)
	}
}

func TestCallTransportFailures(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"empty body": func(w http.ResponseWriter, _ *http.Request) {},
		"malformed": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`<html>oops</html>`))
		},
		"no envelope": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"hello":"world"}`))
		},
		"timeout": func(w http.ResponseWriter, _ *http.Request) {
			time.Sleep(200 * time.Millisecond)
			_, _ = w.Write([]byte(`{"serverResponse":{"code":200}}`))
		},
	}
	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(handler)
			defer srv.Close()

			client := NewClient(srv.URL, 50*time.Millisecond, logging.Discard(), nil)
			_, err := client.Call(context.Background(), ActionSignUp, nil, "")
			if !IsTransport(err) {
				t.Fatalf("expected transport error, got %v", err)
			}
		})
	}
}

func TestCallUnreachableHost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := NewClient(url, time.Second, logging.Discard(), nil)
	_, err := client.Call(context.Background(), ActionResendOTP, nil, "")
	var te *TransportError
	if !errors.As(err, &te) || te.Action != ActionResendOTP {
		t.Fatalf("expected transport error for %s, got %v", ActionResendOTP, err)
	}
}

func TestRemoteIDAcceptsStringsAndNumbers(t *testing.T) {
	var p struct {
		A RemoteID `json:"a"`
		B RemoteID `json:"b"`
		C RemoteID `json:"c"`
	}
	if err := json.Unmarshal([]byte(`{"a":17,"b":"u-9","c":null}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.A != "17" || p.B != "u-9" || p.C != "" {
		t.Fatalf("unexpected ids %+v", p)
	}
}
