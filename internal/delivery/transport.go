package delivery

import (
	"errors"
	"net/http"
	"time"
)

const (
	defaultRetryMax = 2
	defaultBackoff  = 200 * time.Millisecond
)

// Transport retries a request on transport errors and 5xx answers. Requests
// with a body are retried only when the body can be replayed (GetBody).
type Transport struct {
	Base http.RoundTripper
	// RetryMax is the number of retries after the first attempt.
	RetryMax int
	Backoff  time.Duration
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	retries := max(t.RetryMax, 0)
	if req.Body != nil && req.Body != http.NoBody && req.GetBody == nil {
		retries = 0
	}

	var (
		resp    *http.Response
		lastErr error
	)
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			if err := t.wait(req, attempt); err != nil {
				return nil, err
			}
		}
		r := req.Clone(req.Context())
		if req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, err
			}
			r.Body = body
		}
		resp, lastErr = base.RoundTrip(r)
		if lastErr == nil && resp.StatusCode < 500 {
			return resp, nil
		}
		if req.Context().Err() != nil {
			break
		}
		if lastErr == nil && attempt < retries {
			resp.Body.Close()
		}
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return resp, nil
}

func (t *Transport) wait(req *http.Request, attempt int) error {
	d := t.Backoff
	if d <= 0 {
		d = defaultBackoff
	}
	timer := time.NewTimer(time.Duration(attempt) * d)
	defer timer.Stop()
	select {
	case <-req.Context().Done():
		return req.Context().Err()
	case <-timer.C:
		return nil
	}
}
