package directory

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"unicode/utf8"

	"github.com/cenkalti/backoff/v4"

	"github.com/xmatters/xm-labs-restore-instance-data/internal/capture"
	"github.com/xmatters/xm-labs-restore-instance-data/internal/config"
	"github.com/xmatters/xm-labs-restore-instance-data/internal/errors"
	"github.com/xmatters/xm-labs-restore-instance-data/internal/logger"
)

const apiBase = "/api/xm/1"

// HTTP implements Directory against a live instance with basic auth.
// Transient 502/503/504 responses are retried with exponential backoff; every
// other failure is surfaced to the engine exactly once.
type HTTP struct {
	baseURL    string
	user       string
	password   string
	client     *http.Client
	log        logger.Logger
	maxRetries uint64
}

// NewHTTP creates an HTTP directory client from the run configuration.
func NewHTTP(cfg *config.Config, log logger.Logger) *HTTP {
	transport := &http.Transport{}
	if cfg.Insecure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return &HTTP{
		baseURL:  cfg.XmodURL,
		user:     cfg.User,
		password: cfg.Password,
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.RequestTimeout,
		},
		log:        log,
		maxRetries: 4,
	}
}

// collectionPath returns the API path entities of a kind are created under.
// Shift and timeframe bodies carry their parent id, which the caller pops
// into the URL before posting.
func collectionPath(kind capture.Kind) (string, error) {
	switch kind {
	case capture.KindSite:
		return apiBase + "/sites", nil
	case capture.KindUser:
		return apiBase + "/people", nil
	case capture.KindDevice:
		return apiBase + "/devices", nil
	case capture.KindGroup:
		return apiBase + "/groups", nil
	default:
		return "", fmt.Errorf("kind %s has no collection path", kind)
	}
}

// findPath returns the API path that retrieves one entity by business key.
func findPath(kind capture.Kind, key string) (string, error) {
	switch kind {
	case capture.KindSite, capture.KindUser, capture.KindDevice, capture.KindGroup:
		base, err := collectionPath(kind)
		if err != nil {
			return "", err
		}
		return base + "/" + url.PathEscape(key), nil
	case capture.KindShift:
		groupID, name, err := SplitCompositeKey(key)
		if err != nil {
			return "", err
		}
		return apiBase + "/groups/" + url.PathEscape(groupID) + "/shifts/" + url.PathEscape(name), nil
	default:
		return "", fmt.Errorf("kind %s cannot be looked up by key", kind)
	}
}

// Ping verifies the target is reachable and the credentials are accepted.
func (h *HTTP) Ping(ctx context.Context) error {
	body, status, err := h.do(ctx, http.MethodGet, apiBase+"/people?limit=1", nil)
	if err != nil {
		return err
	}
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return errors.NewAuthError(errors.ErrCodeAuthFailed,
			"target instance rejected the credentials",
			"verify instance address, user, and password")
	case status != http.StatusOK:
		return remoteRejected(status, body)
	}
	return nil
}

// FindByKey retrieves the RemoteId of the entity stored under key.
func (h *HTTP) FindByKey(ctx context.Context, kind capture.Kind, key string) (string, error) {
	if kind == capture.KindTimeframe {
		return h.findTimeframe(ctx, key)
	}

	path, err := findPath(kind, key)
	if err != nil {
		return "", err
	}

	body, status, err := h.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return "", err
	}
	switch {
	case status == http.StatusNotFound:
		return "", ErrNotFound
	case status != http.StatusOK:
		return "", remoteRejected(status, body)
	}

	var entity struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &entity); err != nil || entity.ID == "" {
		return "", errors.NewRemoteError(errors.ErrCodeRemoteRejected,
			fmt.Sprintf("target returned %s without an id", kind), truncate(string(body), 200))
	}
	return entity.ID, nil
}

// findTimeframe scans a device's timeframe list for a matching name; the
// target has no by-name endpoint for timeframes.
func (h *HTTP) findTimeframe(ctx context.Context, key string) (string, error) {
	deviceID, name, err := SplitCompositeKey(key)
	if err != nil {
		return "", err
	}

	path := apiBase + "/devices/" + url.PathEscape(deviceID) + "/timeframes"
	body, status, err := h.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return "", err
	}
	switch {
	case status == http.StatusNotFound:
		return "", ErrNotFound
	case status != http.StatusOK:
		return "", remoteRejected(status, body)
	}

	var list struct {
		Data []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &list); err != nil {
		return "", errors.NewRemoteError(errors.ErrCodeRemoteRejected,
			"unparseable timeframe list response", truncate(string(body), 200))
	}
	for _, tf := range list.Data {
		if tf.Name == name {
			return tf.ID, nil
		}
	}
	return "", ErrNotFound
}

// Upsert posts the body to the kind's collection. The target treats an
// id-bearing body as a replace; Created reflects 201 vs 200.
func (h *HTTP) Upsert(ctx context.Context, kind capture.Kind, body map[string]any) (Result, error) {
	var path string
	switch kind {
	case capture.KindShift:
		groupID, ok := popString(body, "group")
		if !ok {
			return Result{}, fmt.Errorf("shift body is missing its group id")
		}
		path = apiBase + "/groups/" + url.PathEscape(groupID) + "/shifts"
	case capture.KindTimeframe:
		deviceID, ok := popString(body, "device")
		if !ok {
			return Result{}, fmt.Errorf("timeframe body is missing its device id")
		}
		path = apiBase + "/devices/" + url.PathEscape(deviceID) + "/timeframes"
	default:
		var err error
		path, err = collectionPath(kind)
		if err != nil {
			return Result{}, err
		}
	}

	respBody, status, err := h.do(ctx, http.MethodPost, path, body)
	if err != nil {
		return Result{}, err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return Result{}, remoteRejected(status, respBody)
	}

	var entity struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(respBody, &entity); err != nil {
		return Result{}, errors.NewRemoteError(errors.ErrCodeRemoteRejected,
			fmt.Sprintf("unparseable %s upsert response", kind), truncate(string(respBody), 200))
	}
	return Result{ID: entity.ID, Created: status == http.StatusCreated}, nil
}

// Delete removes the entity stored under key. Only shifts are deleted during
// a restore; the target cannot update a shift in place.
func (h *HTTP) Delete(ctx context.Context, kind capture.Kind, key string) error {
	path, err := findPath(kind, key)
	if err != nil {
		return err
	}

	body, status, err := h.do(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	switch {
	case status == http.StatusOK || status == http.StatusNoContent:
		return nil
	case status == http.StatusNotFound:
		return ErrNotFound
	default:
		return remoteRejected(status, body)
	}
}

// AddShiftMember appends one member to a shift's rotation.
func (h *HTTP) AddShiftMember(ctx context.Context, groupID, shiftName string, member map[string]any) (string, error) {
	path := apiBase + "/groups/" + url.PathEscape(groupID) +
		"/shifts/" + url.PathEscape(shiftName) + "/members"

	body, status, err := h.do(ctx, http.MethodPost, path, member)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return "", remoteRejected(status, body)
	}

	var added struct {
		Recipient struct {
			ID string `json:"id"`
		} `json:"recipient"`
	}
	if err := json.Unmarshal(body, &added); err != nil {
		return "", errors.NewRemoteError(errors.ErrCodeRemoteRejected,
			"unparseable shift member response", truncate(string(body), 200))
	}
	return added.Recipient.ID, nil
}

// do performs one authenticated request, retrying 502/503/504 with
// exponential backoff. Network failures become TransportErrors.
func (h *HTTP) do(ctx context.Context, method, path string, payload any) ([]byte, int, error) {
	var reqBody []byte
	if payload != nil {
		var err error
		reqBody, err = json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("marshaling %s %s body: %w", method, path, err)
		}
	}

	type response struct {
		body   []byte
		status int
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), h.maxRetries), ctx)

	attempt := 0
	resp, err := backoff.RetryWithData(func() (response, error) {
		attempt++

		var bodyReader io.Reader
		if reqBody != nil {
			bodyReader = bytes.NewReader(reqBody)
		}
		req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, bodyReader)
		if err != nil {
			return response{}, backoff.Permanent(err)
		}
		req.SetBasicAuth(h.user, h.password)
		req.Header.Set("Content-Type", "application/json")

		httpResp, err := h.client.Do(req)
		if err != nil {
			return response{}, backoff.Permanent(
				errors.NewTransportError(fmt.Sprintf("%s %s", method, path), err))
		}
		defer httpResp.Body.Close()

		body, err := io.ReadAll(httpResp.Body)
		if err != nil {
			return response{}, backoff.Permanent(
				errors.NewTransportError(fmt.Sprintf("reading %s %s response", method, path), err))
		}

		switch httpResp.StatusCode {
		case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			h.log.Warn("Transient error from target, retrying",
				"url", path, "status", httpResp.StatusCode, "attempt", attempt)
			return response{}, fmt.Errorf("%s %s: HTTP %d", method, path, httpResp.StatusCode)
		}
		return response{body: body, status: httpResp.StatusCode}, nil
	}, policy)
	if err != nil {
		var restoreErr *errors.RestoreError
		if stderrors.As(err, &restoreErr) {
			return nil, 0, restoreErr
		}
		return nil, 0, errors.NewTransportError(fmt.Sprintf("%s %s exhausted retries", method, path), err)
	}

	return resp.body, resp.status, nil
}

// remoteRejected converts a non-2xx response into a RestoreError carrying the
// remote's code/reason/message envelope verbatim.
func remoteRejected(status int, body []byte) *errors.RestoreError {
	var envelope struct {
		Code    any    `json:"code"`
		Reason  string `json:"reason"`
		Message string `json:"message"`
	}
	detail := truncate(string(body), 300)
	if err := json.Unmarshal(body, &envelope); err == nil &&
		(envelope.Code != nil || envelope.Reason != "" || envelope.Message != "") {
		detail = fmt.Sprintf("code: %v, reason: %s, message: %s",
			envelope.Code, orNone(envelope.Reason), orNone(envelope.Message))
	}

	code := errors.ErrCodeRemoteRejected
	if status == http.StatusNotImplemented {
		code = errors.ErrCodeNotImplemented
	}
	return errors.NewRemoteError(code, fmt.Sprintf("target rejected request (HTTP %d)", status), detail)
}

func popString(body map[string]any, key string) (string, bool) {
	v, ok := body[key].(string)
	if ok {
		delete(body, key)
	}
	return v, ok && v != ""
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
