// Package kenkutest provides an in-process fake of the Kenku FM remote API.
package kenkutest

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/urmzd/kenkudeck/pkg/kenku"
)

// Call is one request received by the fake.
type Call struct {
	Method string
	Path   string
	Body   map[string]any
}

// Server emulates the Kenku FM endpoints and records every call. Mutations
// are applied to the served playback so later GETs reflect them.
type Server struct {
	*httptest.Server

	mu         sync.Mutex
	playlist   map[string]any
	soundboard map[string]any
	calls      []Call
	failures   map[string]int
	delay      time.Duration
}

// NewServer starts a fake with a paused playlist at full volume and an
// empty soundboard. It is closed when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		playlist: map[string]any{
			"volume":  1.0,
			"playing": false,
			"repeat":  "off",
			"shuffle": false,
			"muted":   false,
		},
		soundboard: map[string]any{"sounds": []any{}},
		failures:   make(map[string]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// Host returns the listening host.
func (s *Server) Host() string {
	host, _, _ := net.SplitHostPort(s.Listener.Addr().String())
	return host
}

// Port returns the listening port.
func (s *Server) Port() int {
	_, port, _ := net.SplitHostPort(s.Listener.Addr().String())
	n, _ := strconv.Atoi(port)
	return n
}

// NewClient returns a kenku.Client pointed at the fake.
func (s *Server) NewClient(t testing.TB) *kenku.Client {
	t.Helper()
	c, err := kenku.NewClient(s.Host(), s.Port(), 2*time.Second)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	return c
}

// SetPlaylist replaces the served playlist playback fields.
func (s *Server) SetPlaylist(fields map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range fields {
		s.playlist[k] = v
	}
}

// SetPlayingSounds replaces the soundboard's playing sounds.
func (s *Server) SetPlayingSounds(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sounds := make([]any, 0, len(ids))
	for _, id := range ids {
		sounds = append(sounds, map[string]any{"id": id, "title": "sound " + id})
	}
	s.soundboard["sounds"] = sounds
}

// Fail makes path (relative to /v1/) answer with status.
func (s *Server) Fail(path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[path] = status
}

// Delay holds every response for d.
func (s *Server) Delay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

// Calls returns every request received so far.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// Mutations returns the non-GET requests received so far.
func (s *Server) Mutations() []Call {
	var out []Call
	for _, c := range s.Calls() {
		if c.Method != http.MethodGet {
			out = append(out, c)
		}
	}
	return out
}

// Count returns how many requests hit method and path.
func (s *Server) Count(method, path string) int {
	n := 0
	for _, c := range s.Calls() {
		if c.Method == method && c.Path == path {
			n++
		}
	}
	return n
}

// Volumes returns the volumes sent to playlist/playback/volume, in order.
func (s *Server) Volumes() []float64 {
	var out []float64
	for _, c := range s.Calls() {
		if c.Path == "playlist/playback/volume" {
			v, _ := c.Body["volume"].(float64)
			out = append(out, v)
		}
	}
	return out
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/")
	call := Call{Method: r.Method, Path: path}
	if r.Body != nil {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
			call.Body = body
		}
	}

	s.mu.Lock()
	s.calls = append(s.calls, call)
	status, failing := s.failures[path]
	delay := s.delay
	s.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if failing {
		w.WriteHeader(status)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet && path == "playlist/playback":
		_ = json.NewEncoder(w).Encode(s.playlist)
	case r.Method == http.MethodGet && path == "soundboard/playback":
		_ = json.NewEncoder(w).Encode(s.soundboard)
	case r.Method == http.MethodPut:
		s.apply(path, call.Body)
		w.WriteHeader(http.StatusOK)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) apply(path string, body map[string]any) {
	switch path {
	case "playlist/play", "playlist/playback/play":
		s.playlist["playing"] = true
	case "playlist/playback/pause":
		s.playlist["playing"] = false
	case "playlist/playback/volume":
		s.playlist["volume"] = body["volume"]
	case "playlist/playback/mute":
		s.playlist["muted"] = body["mute"]
	case "playlist/playback/shuffle":
		s.playlist["shuffle"] = body["shuffle"]
	case "playlist/playback/repeat":
		s.playlist["repeat"] = body["repeat"]
	case "soundboard/play":
		sounds, _ := s.soundboard["sounds"].([]any)
		s.soundboard["sounds"] = append(sounds, map[string]any{"id": body["id"]})
	case "soundboard/stop":
		sounds, _ := s.soundboard["sounds"].([]any)
		kept := make([]any, 0, len(sounds))
		for _, item := range sounds {
			if sound, ok := item.(map[string]any); ok && sound["id"] == body["id"] {
				continue
			}
			kept = append(kept, item)
		}
		s.soundboard["sounds"] = kept
	}
}
