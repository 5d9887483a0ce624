package poller

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jpalmerr/weatherpanel/internal/store"
)

// DefaultTimeout bounds a single fetch.
const DefaultTimeout = 3 * time.Second

// ErrStatus is returned when a source answers with a non-200 status.
var ErrStatus = errors.New("unexpected status")

// Source performs one fetch and returns a reading or a failure.
//
// Implementations must bound the fetch (see [DefaultTimeout]) and must not
// retry internally.
type Source interface {
	Name() string
	Fetch(ctx context.Context) (store.Reading, error)
}

// HTTPSource fetches a JSON document over HTTP and decodes it with
// [FieldPaths].
type HTTPSource struct {
	name    string
	url     string
	headers map[string]string
	timeout time.Duration
	paths   FieldPaths
	client  *Client
	now     func() time.Time
}

// NewHTTPSource creates an [HTTPSource].
//
// If timeout is zero, [DefaultTimeout] is used. If client is nil, a new
// [Client] is created.
func NewHTTPSource(name, url string, headers map[string]string, timeout time.Duration, paths FieldPaths, client *Client) *HTTPSource {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if client == nil {
		client = NewClient()
	}
	return &HTTPSource{
		name:    name,
		url:     url,
		headers: headers,
		timeout: timeout,
		paths:   paths,
		client:  client,
		now:     time.Now,
	}
}

// Name returns the source name.
func (s *HTTPSource) Name() string {
	return s.name
}

// URL returns the polled URL.
func (s *HTTPSource) URL() string {
	return s.url
}

// Fetch performs one GET request.
//
// Network errors, timeouts, non-200 statuses and payloads missing any
// configured field are all returned as errors.
func (s *HTTPSource) Fetch(ctx context.Context) (store.Reading, error) {
	resp := s.client.Fetch(ctx, s.url, s.headers, s.timeout)
	if resp.Error != nil {
		return store.Reading{}, resp.Error
	}
	if resp.StatusCode != http.StatusOK {
		return store.Reading{}, fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}

	return s.decode(resp.Body)
}

func (s *HTTPSource) decode(body []byte) (store.Reading, error) {
	doc, err := decodeDocument(body)
	if err != nil {
		return store.Reading{}, err
	}

	var r store.Reading
	if r.Temperature, err = floatAt(doc, s.paths.Temperature); err != nil {
		return store.Reading{}, err
	}
	if r.Humidity, err = floatAt(doc, s.paths.Humidity); err != nil {
		return store.Reading{}, err
	}
	if r.Pressure, err = floatAt(doc, s.paths.Pressure); err != nil {
		return store.Reading{}, err
	}
	if s.paths.Icon != "" {
		if r.Icon, err = stringAt(doc, s.paths.Icon); err != nil {
			return store.Reading{}, err
		}
	}
	r.FetchedAt = s.now()

	return r, nil
}

// Close releases idle connections held by the source's client.
func (s *HTTPSource) Close() {
	s.client.Close()
}
