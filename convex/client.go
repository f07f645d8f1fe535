package convex

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	json "github.com/goccy/go-json"
)

// Caller is the transport the generated bindings invoke through. The
// generated Client wraps one and adds the typed surface on top.
type Caller interface {
	Query(ctx context.Context, name string, args map[string]Value) (Value, error)
	Mutation(ctx context.Context, name string, args map[string]Value) (Value, error)
	Action(ctx context.Context, name string, args map[string]Value) (Value, error)
	Subscribe(ctx context.Context, name string, args map[string]Value) (*QuerySubscription, error)
}

// RemoteError is an error reported by the deployment itself, as opposed to
// a transport failure.
type RemoteError struct {
	Path    string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("convexgen: remote %s failed: %s", e.Path, e.Message)
}

// QuerySubscription delivers successive results of a query. Updates are
// emitted only when the result actually changes.
type QuerySubscription struct {
	updates chan Value
	errs    chan error
	cancel  context.CancelFunc
	once    sync.Once
}

// Updates returns the result channel. It is closed when the subscription
// ends.
func (s *QuerySubscription) Updates() <-chan Value { return s.updates }

// Errs returns the error channel. A delivered error ends the subscription.
func (s *QuerySubscription) Errs() <-chan error { return s.errs }

// Close stops the subscription. Safe to call more than once.
func (s *QuerySubscription) Close() {
	s.once.Do(s.cancel)
}

// HTTPClient invokes remote functions over the deployment's HTTP API.
// Subscriptions are emulated by polling the query at a fixed interval; the
// push protocol is out of scope for the generated bindings.
type HTTPClient struct {
	base         string
	httpClient   *http.Client
	pollInterval time.Duration
}

// HTTPOption configures an HTTPClient.
type HTTPOption func(*HTTPClient)

// WithHTTPClient overrides the underlying http.Client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(h *HTTPClient) { h.httpClient = c }
}

// WithPollInterval sets the interval used for emulated subscriptions.
func WithPollInterval(d time.Duration) HTTPOption {
	return func(h *HTTPClient) { h.pollInterval = d }
}

// NewHTTPClient creates a caller for the deployment at the given base URL,
// e.g. "https://happy-animal-123.convex.cloud".
func NewHTTPClient(base string, opts ...HTTPOption) *HTTPClient {
	h := &HTTPClient{
		base:         base,
		httpClient:   http.DefaultClient,
		pollInterval: time.Second,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *HTTPClient) Query(ctx context.Context, name string, args map[string]Value) (Value, error) {
	return h.call(ctx, "/api/query", name, args)
}

func (h *HTTPClient) Mutation(ctx context.Context, name string, args map[string]Value) (Value, error) {
	return h.call(ctx, "/api/mutation", name, args)
}

func (h *HTTPClient) Action(ctx context.Context, name string, args map[string]Value) (Value, error) {
	return h.call(ctx, "/api/action", name, args)
}

func (h *HTTPClient) Subscribe(ctx context.Context, name string, args map[string]Value) (*QuerySubscription, error) {
	ctx, cancel := context.WithCancel(ctx)
	sub := &QuerySubscription{
		updates: make(chan Value, 1),
		errs:    make(chan error, 1),
		cancel:  cancel,
	}
	first, err := h.Query(ctx, name, args)
	if err != nil {
		cancel()
		return nil, err
	}
	sub.updates <- first
	go h.poll(ctx, sub, name, args, first)
	return sub, nil
}

func (h *HTTPClient) poll(ctx context.Context, sub *QuerySubscription, name string, args map[string]Value, last Value) {
	defer close(sub.updates)
	ticker := time.NewTicker(h.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		next, err := h.Query(ctx, name, args)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			select {
			case sub.errs <- err:
			default:
			}
			return
		}
		if next.Equal(last) {
			continue
		}
		last = next
		select {
		case <-ctx.Done():
			return
		case sub.updates <- next:
		}
	}
}

type callRequest struct {
	Path   string           `json:"path"`
	Args   map[string]Value `json:"args"`
	Format string           `json:"format"`
}

type callResponse struct {
	Status       string `json:"status"`
	Value        Value  `json:"value"`
	ErrorMessage string `json:"errorMessage"`
}

func (h *HTTPClient) call(ctx context.Context, route, name string, args map[string]Value) (Value, error) {
	if args == nil {
		args = map[string]Value{}
	}
	body, err := json.Marshal(callRequest{Path: name, Args: args, Format: "json"})
	if err != nil {
		return Value{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.base+route, bytes.NewReader(body))
	if err != nil {
		return Value{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := h.httpClient.Do(req)
	if err != nil {
		return Value{}, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Value{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return Value{}, fmt.Errorf("convexgen: remote %s failed: status %d", name, resp.StatusCode)
	}
	var out callResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return Value{}, err
	}
	if out.Status == "error" {
		return Value{}, &RemoteError{Path: name, Message: out.ErrorMessage}
	}
	return out.Value, nil
}
