package capability

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/valyala/fasthttp"
)

const (
	// defaultHTTPTimeout bounds a single bridge invocation.
	defaultHTTPTimeout = 30 * time.Second
)

var (
	// 全局共享的 FastHTTP 客户端，所有会话共享连接池
	globalHTTPClient     *fasthttp.Client
	globalHTTPClientOnce sync.Once
)

// HTTPInvoker calls a remote automation bridge over HTTP: each invocation is
// a POST of {capability, args} to the bridge's invoke endpoint, which answers
// with the normalized result shape.
type HTTPInvoker struct {
	baseURL string
	timeout time.Duration
	client  *fasthttp.Client
}

// NewHTTPInvoker creates an HTTPInvoker for the given bridge base URL.
func NewHTTPInvoker(baseURL string, timeout time.Duration) *HTTPInvoker {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	globalHTTPClientOnce.Do(func() {
		globalHTTPClient = &fasthttp.Client{
			MaxConnsPerHost:     128,
			MaxIdleConnDuration: 90 * time.Second,
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
		}
	})
	return &HTTPInvoker{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		client:  globalHTTPClient,
	}
}

// invokeRequest is the bridge wire format.
type invokeRequest struct {
	Capability string         `json:"capability"`
	Args       map[string]any `json:"args"`
}

// Invoke implements Invoker.
func (h *HTTPInvoker) Invoke(ctx context.Context, capability string, args map[string]any) (*Result, error) {
	body, err := json.Marshal(invokeRequest{Capability: capability, Args: args})
	if err != nil {
		return nil, fmt.Errorf("marshal invoke request: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(h.baseURL + "/api/v1/invoke")
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	timeout := h.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	if err := h.client.DoTimeout(req, resp, timeout); err != nil {
		// Transport failures become capability-level failures so the
		// classifier can map them to the network category.
		return Failure(fmt.Sprintf("network error calling automation bridge: %v", err)), nil
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return Failure(fmt.Sprintf("automation bridge returned status %d: %s",
			resp.StatusCode(), string(resp.Body()))), nil
	}

	var result Result
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return Failure(fmt.Sprintf("invalid response from automation bridge: %v", err)), nil
	}
	return &result, nil
}
