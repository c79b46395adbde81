package invoker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samvad-hq/samvad-invoker/internal/domain"
	"github.com/samvad-hq/samvad-invoker/internal/logger"
	"github.com/samvad-hq/samvad-invoker/pkg/httpclient"
	"github.com/samvad-hq/samvad-invoker/pkg/jsonvalue"
)

const (
	HeaderContentType = "Content-Type"
	HeaderAccept      = "Accept"
	HeaderXRequestID  = "X-Request-ID"
	ContentTypeJSON   = "application/json"
)

// Request describes a single outbound call.
type Request struct {
	Method   string
	Endpoint string
	// Payload, when non-nil, is sent as a JSON body.
	Payload map[string]any
	Headers map[string]string
}

// Response is the decoded result of one round trip.
type Response struct {
	RequestID  string
	Method     string
	Endpoint   string
	StatusCode int
	Header     http.Header
	Body       []byte
	Value      jsonvalue.Value
	Elapsed    time.Duration
	ReceivedAt time.Time
}

// Exchange converts the response into the record shared with sinks and the journal.
func (r *Response) Exchange() domain.Exchange {
	return domain.Exchange{
		RequestID:  r.RequestID,
		Method:     r.Method,
		Endpoint:   r.Endpoint,
		StatusCode: r.StatusCode,
		Value:      r.Value,
		ElapsedMs:  r.Elapsed.Milliseconds(),
		ReceivedAt: r.ReceivedAt,
	}
}

// Invoker performs one request per Invoke call. It never retries.
type Invoker struct {
	client httpclient.Client
	log    logger.Logger
	newID  func() string
}

type Option func(*Invoker)

func WithLogger(log logger.Logger) Option {
	return func(i *Invoker) {
		if log != nil {
			i.log = log
		}
	}
}

// WithRequestIDFunc overrides how X-Request-ID values are generated.
func WithRequestIDFunc(fn func() string) Option {
	return func(i *Invoker) {
		if fn != nil {
			i.newID = fn
		}
	}
}

// New builds an Invoker on top of client. A nil client gets a resty client
// with the transport's default timeout.
func New(client httpclient.Client, opts ...Option) *Invoker {
	if client == nil {
		client = httpclient.NewRestyClient(0)
	}
	inv := &Invoker{
		client: client,
		log:    &logger.NopLogger{},
		newID:  func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(inv)
	}
	return inv
}

// Invoke sends req, waits for the full response and decodes its body.
// Transport failures return *NetworkError, undecodable bodies *DecodeError.
// Non-2xx statuses are not errors; the decoded body is returned with its status.
func (i *Invoker) Invoke(ctx context.Context, req Request) (*Response, error) {
	method, endpoint, err := validate(req)
	if err != nil {
		return nil, err
	}

	requestID := i.newID()
	// Keys are canonical so caller overrides replace defaults regardless of case.
	headers := map[string]string{
		http.CanonicalHeaderKey(HeaderAccept):     ContentTypeJSON,
		http.CanonicalHeaderKey(HeaderXRequestID): requestID,
	}

	var body []byte
	if req.Payload != nil {
		body, err = json.Marshal(req.Payload)
		if err != nil {
			return nil, fmt.Errorf("%w: encode payload: %w", ErrInvalidRequest, err)
		}
		headers[http.CanonicalHeaderKey(HeaderContentType)] = ContentTypeJSON
	}
	for k, v := range req.Headers {
		headers[http.CanonicalHeaderKey(k)] = v
	}

	i.log.DebugObj("invoking endpoint", "request_meta", map[string]any{
		"request_id":  requestID,
		"method":      method,
		"endpoint":    endpoint,
		"body_length": len(body),
	})

	start := time.Now()
	resp, err := i.client.Execute(ctx, method, endpoint, headers, body)
	elapsed := time.Since(start)
	if err != nil {
		return nil, &NetworkError{Method: method, Endpoint: endpoint, Err: err}
	}

	contentType := resp.Header().Get(HeaderContentType)
	value, err := jsonvalue.Decode(resp.Body())
	if err != nil {
		return nil, &DecodeError{
			Endpoint:    endpoint,
			StatusCode:  resp.StatusCode(),
			ContentType: contentType,
			Body:        resp.Body(),
			PageTitle:   htmlTitle(contentType, resp.Body()),
			Err:         err,
		}
	}

	i.log.InfoObj("response decoded", "response_meta", map[string]any{
		"request_id":  requestID,
		"status_code": resp.StatusCode(),
		"kind":        value.Kind().String(),
		"elapsed_ms":  elapsed.Milliseconds(),
	})

	return &Response{
		RequestID:  requestID,
		Method:     method,
		Endpoint:   endpoint,
		StatusCode: resp.StatusCode(),
		Header:     resp.Header(),
		Body:       resp.Body(),
		Value:      value,
		Elapsed:    elapsed,
		ReceivedAt: time.Now().UTC(),
	}, nil
}

func validate(req Request) (string, string, error) {
	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		method = http.MethodGet
	}

	endpoint := strings.TrimSpace(req.Endpoint)
	if endpoint == "" {
		return "", "", fmt.Errorf("%w: endpoint is empty", ErrInvalidRequest)
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", "", fmt.Errorf("%w: parse endpoint: %w", ErrInvalidRequest, err)
	}
	if u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", "", fmt.Errorf("%w: endpoint %q must be an absolute http(s) URL", ErrInvalidRequest, endpoint)
	}
	return method, endpoint, nil
}
