package middleware

import (
	"bytes"
	"net/http"
	"sync"
	"time"

	apperrors "groupstay/pkg/errors"
)

const (
	DefaultIdempotencyHeader = "Idempotency-Key"
	IdempotentReplayHeader   = "Idempotent-Replay"
)

// IdempotencyStore remembers the outcome of write requests by key.
//
// Reserve either returns the stored response for key, or claims key for the
// caller (reserved true). A key that another request holds yields neither.
// The holder must call Release, passing nil when nothing should be stored.
type IdempotencyStore interface {
	Reserve(key string) (cached *CachedResponse, reserved bool)
	Release(key string, response *CachedResponse)
	Stop()
}

type CachedResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

type idempotencyEntry struct {
	response  *CachedResponse
	expiresAt time.Time
}

// InMemoryIdempotencyStore keeps responses for ttl. An in-flight key is an
// entry without a response.
type InMemoryIdempotencyStore struct {
	mu       sync.Mutex
	entries  map[string]*idempotencyEntry
	ttl      time.Duration
	now      func() time.Time
	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewInMemoryIdempotencyStore(ttl time.Duration) *InMemoryIdempotencyStore {
	s := &InMemoryIdempotencyStore{
		entries: make(map[string]*idempotencyEntry),
		ttl:     ttl,
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}
	go s.sweepLoop()
	return s
}

func (s *InMemoryIdempotencyStore) Reserve(key string) (*CachedResponse, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok {
		if e.response == nil {
			return nil, false
		}
		if s.now().Before(e.expiresAt) {
			return e.response, false
		}
	}
	s.entries[key] = &idempotencyEntry{}
	return nil, true
}

func (s *InMemoryIdempotencyStore) Release(key string, response *CachedResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if response == nil {
		delete(s.entries, key)
		return
	}
	s.entries[key] = &idempotencyEntry{response: response, expiresAt: s.now().Add(s.ttl)}
}

func (s *InMemoryIdempotencyStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, e := range s.entries {
		if e.response != nil && !now.Before(e.expiresAt) {
			delete(s.entries, key)
		}
	}
}

func (s *InMemoryIdempotencyStore) sweepLoop() {
	ticker := time.NewTicker(min(s.ttl, time.Hour))
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCh:
			return
		}
	}
}

func (s *InMemoryIdempotencyStore) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

type bodyRecorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (br *bodyRecorder) WriteHeader(status int) {
	br.status = status
	br.ResponseWriter.WriteHeader(status)
}

func (br *bodyRecorder) Write(b []byte) (int, error) {
	br.body.Write(b)
	return br.ResponseWriter.Write(b)
}

// Idempotency replays the stored 2xx response of a write request that reuses
// an idempotency key, and answers 409 while the first request with that key
// is still running. Keys are scoped by method and path.
func Idempotency(store IdempotencyStore, headerName string) func(http.Handler) http.Handler {
	if headerName == "" {
		headerName = DefaultIdempotencyHeader
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := idempotencyKey(r, headerName)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			cached, reserved := store.Reserve(key)
			switch {
			case cached != nil:
				replay(w, cached)
				return
			case !reserved:
				_ = apperrors.WriteError(w, apperrors.Conflict("A request with this idempotency key is already in progress"))
				return
			}

			rec := &bodyRecorder{ResponseWriter: w, status: http.StatusOK}
			finished := false
			defer func() {
				// a panicking handler leaves nothing stored
				if !finished {
					store.Release(key, nil)
				}
			}()
			next.ServeHTTP(rec, r)
			finished = true
			store.Release(key, storable(rec, w.Header()))
		})
	}
}

func idempotencyKey(r *http.Request, headerName string) string {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodDelete:
	default:
		return ""
	}
	key := r.Header.Get(headerName)
	if key == "" {
		return ""
	}
	return r.Method + " " + r.URL.Path + " " + key
}

func replay(w http.ResponseWriter, cached *CachedResponse) {
	for name, values := range cached.Headers {
		for _, v := range values {
			w.Header().Add(name, v)
		}
	}
	w.Header().Set(IdempotentReplayHeader, "true")
	w.WriteHeader(cached.StatusCode)
	_, _ = w.Write(cached.Body)
}

func storable(rec *bodyRecorder, header http.Header) *CachedResponse {
	if rec.status < 200 || rec.status >= 300 {
		return nil
	}
	headers := header.Clone()
	headers.Del(RequestIDHeader)
	return &CachedResponse{
		StatusCode: rec.status,
		Headers:    headers,
		Body:       bytes.Clone(rec.body.Bytes()),
	}
}
