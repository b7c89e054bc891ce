// zhmcclient is a Go client library for the IBM Z Hardware Management
// Console Web Services API.
// Copyright (C) 2025  Matthew Burns
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package zhmc

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	mathrand "math/rand"
	"net"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// VerifyCert models the source's tri-state verify-cert attribute: verify
// against the system trust store (the zero value), skip verification
// entirely, or verify against a specific CA bundle file.
type VerifyCert struct {
	Insecure     bool
	CABundlePath string
}

// VerifyCertDefault verifies against the system trust store.
func VerifyCertDefault() VerifyCert { return VerifyCert{} }

// VerifyCertInsecure disables TLS peer verification. Only ever use this
// against a known-trusted HMC on a private management network.
func VerifyCertInsecure() VerifyCert { return VerifyCert{Insecure: true} }

// VerifyCertBundle verifies against the CA bundle file at path.
func VerifyCertBundle(path string) VerifyCert { return VerifyCert{CABundlePath: path} }

func (v VerifyCert) tlsConfig() (*tls.Config, error) {
	if v.Insecure {
		return &tls.Config{InsecureSkipVerify: true, MinVersion: tls.VersionTLS12}, nil
	}
	if v.CABundlePath == "" {
		return &tls.Config{MinVersion: tls.VersionTLS12}, nil
	}
	pemBytes, err := os.ReadFile(v.CABundlePath)
	if err != nil {
		return nil, fmt.Errorf("reading CA bundle %s: %w", v.CABundlePath, err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pemBytes) {
		return nil, fmt.Errorf("no certificates found in CA bundle %s", v.CABundlePath)
	}
	return &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}

// PasswordRetrieval is invoked synchronously with (host, userid) when no
// static password was configured, letting a host fetch one from a vault at
// logon time.
type PasswordRetrieval func(host, userid string) (string, error)

// SessionConfig configures a new Session. Host, Port, and Userid are
// required; either Password or PasswordRetrieval must be set.
type SessionConfig struct {
	Host              string
	Port              int
	Userid            string
	Password          string
	PasswordRetrieval PasswordRetrieval
	VerifyCert        VerifyCert
	RetryTimeout      RetryTimeoutConfig
}

// Session is an authenticated HTTPS connection to one HMC. Session is safe
// for concurrent use; reads and writes of the session-id and headers happen
// under an internal mutex. Session renewal itself is not serialized: each
// concurrent request that receives HTTP 403/reason 5 logs on again.
type Session struct {
	host   string
	port   int
	userid string

	password          string
	hasPassword       bool
	passwordRetrieval PasswordRetrieval

	verifyCert   VerifyCert
	retryTimeout RetryTimeoutConfig

	mu             sync.Mutex
	sessionID      string
	defaultHeaders map[string]string

	httpClient *http.Client
	timeStats  *TimeStats
}

// NewSession constructs a Session in the logged-off state. No network call
// is made until Logon (or an auto-logon triggered by Get/Post/Delete).
func NewSession(cfg SessionConfig) (*Session, error) {
	if cfg.Host == "" {
		return nil, &ClientAuthError{Message: "host is required"}
	}
	if cfg.Userid == "" {
		return nil, &ClientAuthError{Message: "userid is required"}
	}
	if cfg.Password == "" && cfg.PasswordRetrieval == nil {
		return nil, &ClientAuthError{Message: "either Password or PasswordRetrieval is required"}
	}
	if cfg.Port == 0 {
		cfg.Port = 6794
	}

	tlsCfg, err := cfg.VerifyCert.tlsConfig()
	if err != nil {
		return nil, &SSLError{Message: "building TLS config", Cause: err}
	}

	rt := cfg.RetryTimeout.normalized()

	s := &Session{
		host:              cfg.Host,
		port:              cfg.Port,
		userid:            cfg.Userid,
		password:          cfg.Password,
		hasPassword:       cfg.Password != "",
		passwordRetrieval: cfg.PasswordRetrieval,
		verifyCert:        cfg.VerifyCert,
		retryTimeout:      rt,
		defaultHeaders:    map[string]string{"Content-type": "application/json", "Accept": "*/*"},
		timeStats:         NewTimeStats(),
		httpClient: &http.Client{
			Timeout: rt.ReadTimeout,
			Transport: &http.Transport{
				TLSClientConfig: tlsCfg,
				DialContext: (&net.Dialer{
					Timeout: rt.ConnectTimeout,
				}).DialContext,
			},
		},
	}
	return s, nil
}

// Host returns the configured HMC host.
func (s *Session) Host() string { return s.host }

// TimeStats returns the per-operation instrumentation keeper for this
// Session.
func (s *Session) TimeStats() *TimeStats { return s.timeStats }

// IsLogon reports whether the session currently holds a session-id.
func (s *Session) IsLogon() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID != ""
}

func (s *Session) baseURL() string {
	return fmt.Sprintf("https://%s:%d", s.host, s.port)
}

func (s *Session) resolvePassword() (string, error) {
	if s.hasPassword {
		return s.password, nil
	}
	if s.passwordRetrieval == nil {
		return "", &ClientAuthError{Message: "no password or password-retrieval callback configured"}
	}
	pw, err := s.passwordRetrieval(s.host, s.userid)
	if err != nil {
		return "", &ClientAuthError{Message: "password retrieval callback failed: " + err.Error()}
	}
	return pw, nil
}

// Logon establishes a session-id with the HMC. logon() internally passes
// renewSession=false on the underlying request to avoid infinite recursion
// through session renewal.
func (s *Session) Logon(ctx context.Context) error {
	pw, err := s.resolvePassword()
	if err != nil {
		return err
	}

	slog.Debug("zhmc: logging on", "host", s.host, "userid", s.userid, "password", redactPassword(pw))

	body := map[string]any{"userid": s.userid, "password": pw}
	respBody, _, err := s.rawRequest(ctx, http.MethodPost, "/api/sessions", body, false)
	if err != nil {
		return err
	}

	sessionID, _ := respBody["api-session"].(string)
	if sessionID == "" {
		return &ServerAuthError{Message: "logon response did not contain api-session"}
	}

	s.mu.Lock()
	s.sessionID = sessionID
	s.mu.Unlock()

	slog.Debug("zhmc: logged on", "host", s.host, "userid", s.userid, "session_id", redactSecret(sessionID))
	return nil
}

// Logoff deletes the session-id on the HMC and clears it locally.
func (s *Session) Logoff(ctx context.Context) error {
	if !s.IsLogon() {
		return nil
	}
	err := s.Delete(ctx, "/api/sessions/this-session", true)
	s.mu.Lock()
	s.sessionID = ""
	s.mu.Unlock()
	return err
}

// Get issues a GET and returns the parsed JSON body.
func (s *Session) Get(ctx context.Context, uri string, logonRequired, renewSession bool) (map[string]any, error) {
	body, _, err := s.requestWithRenewal(ctx, http.MethodGet, uri, nil, logonRequired, renewSession)
	return body, err
}

// Delete issues a DELETE.
func (s *Session) Delete(ctx context.Context, uri string, logonRequired bool) error {
	_, _, err := s.requestWithRenewal(ctx, http.MethodDelete, uri, nil, logonRequired, true)
	return err
}

// Post issues a POST. If the HMC responds 202 with a job-uri and
// waitForCompletion is true, Post constructs a Job and blocks on
// Job.WaitForCompletion(operationTimeout), returning the job's result. If
// waitForCompletion is false and the response is an async job descriptor,
// the raw {job-uri, ...} map is returned instead.
func (s *Session) Post(ctx context.Context, uri string, reqBody map[string]any, logonRequired, waitForCompletion bool, operationTimeout *time.Duration, renewSession bool) (map[string]any, error) {
	body, status, err := s.requestWithRenewal(ctx, http.MethodPost, uri, reqBody, logonRequired, renewSession)
	if err != nil {
		return nil, err
	}
	if status == http.StatusAccepted {
		jobURI, _ := body["job-uri"].(string)
		if jobURI != "" {
			if !waitForCompletion {
				return body, nil
			}
			job := NewJob(s, jobURI, http.MethodPost, uri)
			to := operationTimeout
			if to == nil {
				to = s.retryTimeout.OperationTimeout
			}
			return job.WaitForCompletion(ctx, to)
		}
	}
	return body, nil
}

// requestWithRenewal performs one request, transparently renewing the
// session-id exactly once on a 403/reason-5 response, matching the source's
// renew-and-retry-exactly-once semantics.
func (s *Session) requestWithRenewal(ctx context.Context, method, uri string, body map[string]any, logonRequired, renewSession bool) (map[string]any, int, error) {
	if logonRequired && !s.IsLogon() {
		if err := s.Logon(ctx); err != nil {
			return nil, 0, err
		}
	}

	respBody, status, err := s.rawRequest(ctx, method, uri, body, logonRequired)
	if err == nil {
		return respBody, status, nil
	}

	if renewSession && logonRequired && IsSessionExpired(err) {
		s.mu.Lock()
		s.sessionID = ""
		s.mu.Unlock()
		if logonErr := s.Logon(ctx); logonErr != nil {
			return nil, 0, logonErr
		}
		return s.rawRequest(ctx, method, uri, body, logonRequired)
	}

	return nil, status, err
}

// rawRequest performs one request, making up to MaxRetries HTTP round trips
// with backoff on transient transport failures (not on session expiry, which
// requestWithRenewal handles). It returns the parsed JSON body (nil if the
// response had no body), the HTTP status, and an error for any status >= 400
// or transport failure.
func (s *Session) rawRequest(ctx context.Context, method, uri string, reqBody map[string]any, logonRequired bool) (map[string]any, int, error) {
	var lastErr error
	var lastStatus int

	rt := s.retryTimeout
	for attempt := 1; attempt <= rt.MaxRetries; attempt++ {
		start := time.Now()
		respBody, status, err := s.doOnce(ctx, method, uri, reqBody, logonRequired)
		d := time.Since(start)

		key := method + " " + uri
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		s.timeStats.Record(key, d, outcome)

		if err == nil {
			return respBody, status, nil
		}
		lastErr = err
		lastStatus = status

		if !isRetryableErr(err) {
			return nil, status, err
		}
		if attempt == rt.MaxRetries {
			return nil, status, &RetryError{Attempts: attempt, Cause: err}
		}

		sleep := backoffDuration(rt, attempt)
		slog.Debug("zhmc: retrying request", "method", method, "uri", uri, "attempt", attempt, "sleep", sleep, "err", err)
		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, 0, ctx.Err()
		case <-timer.C:
		}
	}
	return nil, lastStatus, lastErr
}

func backoffDuration(rt RetryTimeoutConfig, attempt int) time.Duration {
	exp := attempt - 1
	if exp > 10 {
		exp = 10
	}
	backoff := rt.BackoffBase * (1 << exp)
	if backoff > rt.BackoffCap {
		backoff = rt.BackoffCap
	}
	jitter := time.Duration(randFloat() * rt.JitterFrac * float64(backoff) * 2)
	sleep := backoff - time.Duration(rt.JitterFrac*float64(backoff)) + jitter
	if sleep < 0 {
		sleep = backoff
	}
	return sleep
}

func isRetryableErr(err error) bool {
	var nerr net.Error
	if errors.As(err, &nerr) {
		return nerr.Timeout()
	}
	var connErr *ConnectionError
	if errors.As(err, &connErr) {
		return true
	}
	var readTimeout *ReadTimeout
	if errors.As(err, &readTimeout) {
		return true
	}
	var connectTimeout *ConnectTimeout
	if errors.As(err, &connectTimeout) {
		return true
	}
	return false
}

// isDialError reports whether err originated from the connect phase (TCP/TLS
// handshake) rather than from reading an established connection, so a
// timeout there can be classified as ConnectTimeout instead of ReadTimeout.
func isDialError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Op == "dial"
	}
	return false
}

// doOnce performs the raw HTTP request with no retry logic.
func (s *Session) doOnce(ctx context.Context, method, uri string, reqBody map[string]any, logonRequired bool) (map[string]any, int, error) {
	url := s.baseURL() + uri

	var reader io.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return nil, 0, fmt.Errorf("marshaling request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, 0, &ConnectionError{Message: "building request", Cause: err}
	}

	s.mu.Lock()
	for k, v := range s.defaultHeaders {
		req.Header.Set(k, v)
	}
	if logonRequired && s.sessionID != "" {
		req.Header.Set("X-API-Session", s.sessionID)
	}
	s.mu.Unlock()

	req.Header.Set("X-Request-Id", uuid.NewString())

	if reqBody != nil {
		slog.Debug("zhmc: request", "method", method, "uri", uri, "body", redactBody(reqBody))
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		var nerr net.Error
		if errors.As(err, &nerr) && nerr.Timeout() {
			if isDialError(err) {
				return nil, 0, &ConnectTimeout{Message: fmt.Sprintf("%s %s", method, uri), Cause: err}
			}
			return nil, 0, &ReadTimeout{Message: fmt.Sprintf("%s %s", method, uri), Cause: err}
		}
		return nil, 0, &ConnectionError{Message: fmt.Sprintf("%s %s", method, uri), Cause: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, &ReadTimeout{Message: "reading response body", Cause: err}
	}

	var parsed map[string]any
	if len(data) > 0 {
		ct := resp.Header.Get("Content-Type")
		if isJSONContentType(ct) {
			if jerr := json.Unmarshal(data, &parsed); jerr != nil {
				if resp.StatusCode >= 400 {
					// HTML "Web Services API not enabled" 500 page.
					return nil, resp.StatusCode, CategorizeHTTPError(resp.StatusCode, method, uri, nil)
				}
				return nil, resp.StatusCode, &ParseError{RequestURI: uri, RequestMethod: method, Cause: jerr}
			}
		}
	}

	if resp.StatusCode >= 400 {
		return nil, resp.StatusCode, CategorizeHTTPError(resp.StatusCode, method, uri, parsed)
	}

	if parsed != nil {
		slog.Debug("zhmc: response", "method", method, "uri", uri, "status", resp.StatusCode, "body", redactBody(parsed))
	}

	return parsed, resp.StatusCode, nil
}

// GetText issues a GET against an endpoint that returns a textual (not
// JSON) body, such as a metrics context's data endpoint. Session-id
// renewal is not attempted; callers needing renewal should retry after
// re-logon themselves.
func (s *Session) GetText(ctx context.Context, uri string) (string, error) {
	if !s.IsLogon() {
		if err := s.Logon(ctx); err != nil {
			return "", err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL()+uri, nil)
	if err != nil {
		return "", &ConnectionError{Message: "building request", Cause: err}
	}

	s.mu.Lock()
	for k, v := range s.defaultHeaders {
		req.Header.Set(k, v)
	}
	if s.sessionID != "" {
		req.Header.Set("X-API-Session", s.sessionID)
	}
	s.mu.Unlock()
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := s.httpClient.Do(req)
	if err != nil {
		var nerr net.Error
		if errors.As(err, &nerr) && nerr.Timeout() {
			if isDialError(err) {
				return "", &ConnectTimeout{Message: "GET " + uri, Cause: err}
			}
			return "", &ReadTimeout{Message: "GET " + uri, Cause: err}
		}
		return "", &ConnectionError{Message: "GET " + uri, Cause: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &ReadTimeout{Message: "reading response body", Cause: err}
	}

	if resp.StatusCode >= 400 {
		var parsed map[string]any
		if isJSONContentType(resp.Header.Get("Content-Type")) {
			_ = json.Unmarshal(data, &parsed)
		}
		return "", CategorizeHTTPError(resp.StatusCode, http.MethodGet, uri, parsed)
	}

	return string(data), nil
}

func isJSONContentType(ct string) bool {
	if ct == "" {
		return true
	}
	return strings.Contains(strings.ToLower(ct), "json")
}

// NotificationTopic describes one JMS/STOMP topic the Session may
// subscribe to, as returned by get-notification-topics.
type NotificationTopic struct {
	TopicName string `json:"topic-name"`
	TopicType string `json:"topic-type"`
	ObjectURI string `json:"object-uri,omitempty"`
}

// GetNotificationTopics fetches the set of topics available to this
// session's credentials.
func (s *Session) GetNotificationTopics(ctx context.Context) ([]NotificationTopic, error) {
	body, err := s.Get(ctx, "/api/sessions/operations/get-notification-topics", true, true)
	if err != nil {
		return nil, err
	}
	raw, _ := body["topics"].([]any)
	out := make([]NotificationTopic, 0, len(raw))
	for _, r := range raw {
		m, ok := r.(map[string]any)
		if !ok {
			continue
		}
		t := NotificationTopic{}
		if v, ok := m["topic-name"].(string); ok {
			t.TopicName = v
		}
		if v, ok := m["topic-type"].(string); ok {
			t.TopicType = v
		}
		if v, ok := m["object-uri"].(string); ok {
			t.ObjectURI = v
		}
		out = append(out, t)
	}
	return out, nil
}

// notificationPort returns the JMS broker port. The HMC conventionally
// serves STOMP on 61612; not all deployments expose a discovery operation
// for it, so that fixed port is used rather than a queried one.
func (s *Session) notificationPort() int { return 61612 }

// sessionIDSnapshot returns the current session-id under lock, for
// callers (e.g. NotificationReceiver) that need a point-in-time value to
// authenticate a separate connection.
func (s *Session) sessionIDSnapshot() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

func randFloat() float64 {
	return mathrand.Float64()
}
