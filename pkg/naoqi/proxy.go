package naoqi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// callRequest is the body of POST /proxy/{module}/call.
type callRequest struct {
	Method string `json:"method"`
	Args   []any  `json:"args"`
	Post   bool   `json:"post,omitempty"`
}

// callResponse is the bridge reply. Exactly one of Result/TaskID/Error is
// meaningful depending on the call kind and outcome.
type callResponse struct {
	Result json.RawMessage `json:"result,omitempty"`
	TaskID int64           `json:"task_id,omitempty"`
	Error  *wireError      `json:"error,omitempty"`
}

type wireError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// handshake is the reply of GET /proxy/{module}.
type handshake struct {
	Module  string `json:"module"`
	Version string `json:"version"`
}

// proxy is a connected handle on one remote module.
type proxy struct {
	module      string
	baseURL     string
	http        *http.Client
	callTimeout time.Duration
	postTimeout time.Duration
	logger      *slog.Logger

	// onDrop is invoked when the connection is observed to be gone.
	onDrop func(*proxy)
}

func (p *proxy) endpoint(suffix string) string {
	return p.baseURL + "/proxy/" + url.PathEscape(p.module) + suffix
}

// open performs the module handshake. Any failure is ErrConnection.
func (p *proxy) open(ctx context.Context) (handshake, error) {
	var hs handshake

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint(""), nil)
	if err != nil {
		return hs, fmt.Errorf("%w: %s: %v", ErrConnection, p.module, err)
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return hs, fmt.Errorf("%w: %s: %v", ErrConnection, p.module, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return hs, fmt.Errorf("%w: %s: handshake status %d", ErrConnection, p.module, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&hs); err != nil {
		return hs, fmt.Errorf("%w: %s: bad handshake: %v", ErrConnection, p.module, err)
	}
	return hs, nil
}

// call issues a blocking method call and decodes the result into out
// (which may be nil when the method returns nothing).
func (p *proxy) call(ctx context.Context, method string, out any, args ...any) error {
	resp, err := p.do(ctx, method, false, args)
	if err != nil {
		return err
	}
	if out == nil || len(resp.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Result, out); err != nil {
		return &RemoteError{Module: p.module, Method: method, Code: CodeBadArgs, Message: "undecodable result: " + err.Error()}
	}
	return nil
}

// post issues a fire-and-forget call. It returns once the bridge has
// scheduled the task.
func (p *proxy) post(ctx context.Context, method string, args ...any) error {
	resp, err := p.do(ctx, method, true, args)
	if err != nil {
		return err
	}
	p.logger.Debug("naoqi task scheduled", "module", p.module, "method", method, "task_id", resp.TaskID)
	return nil
}

func (p *proxy) do(ctx context.Context, method string, post bool, args []any) (resp *callResponse, err error) {
	start := time.Now()
	defer func() {
		proxyCalls.WithLabelValues(p.module, method, outcome(err)).Inc()
		proxyCallDuration.WithLabelValues(p.module, method).Observe(time.Since(start).Seconds())
		if errors.Is(err, ErrRemoteUnavailable) && p.onDrop != nil {
			p.onDrop(p)
		}
	}()

	timeout := p.callTimeout
	if post {
		timeout = p.postTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if args == nil {
		args = []any{}
	}
	body, err := json.Marshal(callRequest{Method: method, Args: args, Post: post})
	if err != nil {
		return nil, fmt.Errorf("naoqi [%s.%s]: marshal args: %w", p.module, method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint("/call"), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("naoqi [%s.%s]: %w", p.module, method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := p.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s.%s: %v", ErrRemoteUnavailable, p.module, method, err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s.%s: read body: %v", ErrRemoteUnavailable, p.module, method, err)
	}

	var cr callResponse
	decodeErr := json.Unmarshal(data, &cr)
	if decodeErr == nil && cr.Error != nil {
		return nil, &RemoteError{Module: p.module, Method: method, Code: cr.Error.Code, Message: cr.Error.Message}
	}

	switch {
	case httpResp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: %s.%s: status %d", ErrRemoteUnavailable, p.module, method, httpResp.StatusCode)
	case httpResp.StatusCode != http.StatusOK:
		return nil, &RemoteError{Module: p.module, Method: method, Code: fmt.Sprintf("http_%d", httpResp.StatusCode), Message: string(data)}
	case decodeErr != nil:
		return nil, &RemoteError{Module: p.module, Method: method, Code: CodeBadArgs, Message: "malformed reply: " + decodeErr.Error()}
	}

	return &cr, nil
}
