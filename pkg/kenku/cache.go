package kenku

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultFreshness is how long a fetched view stays usable.
const DefaultFreshness = time.Second

// FetchFunc retrieves a complete view from the remote service.
type FetchFunc func(ctx context.Context) (State, error)

// View is a read-through cache over one remote read endpoint.
//
// The expiry is last refresh + window, except that every optimistic Patch
// pushes it out by one more window without refreshing. A burst of N patches
// therefore defers the next real fetch by N windows.
type View struct {
	name   string
	fetch  FetchFunc
	window time.Duration
	now    func() time.Time

	// mu is held across the fetch so concurrent readers of an expired view
	// wait for a single refresh.
	mu      sync.Mutex
	state   State
	expiry  time.Time
	fetches int
}

// NewView creates an empty view. The first Read always fetches.
func NewView(name string, window time.Duration, fetch FetchFunc) *View {
	return &View{
		name:   name,
		fetch:  fetch,
		window: window,
		now:    time.Now,
	}
}

// Name identifies the view in logs.
func (v *View) Name() string {
	return v.name
}

// Window returns the freshness window.
func (v *View) Window() time.Duration {
	return v.window
}

// Read returns the cached state, refreshing it first when the expiry has
// passed. On fetch failure the previous expiry is kept so the next Read
// retries.
func (v *View) Read(ctx context.Context) (State, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	now := v.now()
	if v.state != nil && !now.After(v.expiry) {
		return v.state.clone(), nil
	}

	state, err := v.fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("refresh %s: %w", v.name, err)
	}
	if state == nil {
		state = State{}
	}

	v.fetches++
	v.state = state
	v.expiry = now.Add(v.window)

	log.Debug().
		Str("view", v.name).
		Time("expiry", v.expiry).
		Msg("Remote state refreshed")

	return v.state.clone(), nil
}

// Patch records a value the caller just wrote to the remote service and
// extends the expiry by one window. It is a no-op returning false while the
// view has never been fetched.
func (v *View) Patch(field string, value any) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state == nil {
		return false
	}
	v.state[field] = value
	v.expiry = v.expiry.Add(v.window)
	return true
}

// Invalidate forces the next Read to fetch.
func (v *View) Invalidate() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.expiry = time.Time{}
}

// Snapshot returns the cached state without fetching. ok is false when the
// view has never been fetched.
func (v *View) Snapshot() (state State, expiry time.Time, ok bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state == nil {
		return nil, time.Time{}, false
	}
	return v.state.clone(), v.expiry, true
}

// Expiry returns the instant after which the next Read refreshes.
func (v *View) Expiry() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.expiry
}

// Fetches counts successful refreshes.
func (v *View) Fetches() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.fetches
}
