package kenku_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/urmzd/kenkudeck/pkg/kenku"
	"github.com/urmzd/kenkudeck/pkg/kenku/kenkutest"
)

func TestNewClient_BuildsBaseURL(t *testing.T) {
	c, err := kenku.NewClient("", kenku.DefaultPort, 0)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if got, want := c.BaseURL(), "http://127.0.0.1:3333/v1/"; got != want {
		t.Fatalf("BaseURL = %q, want %q", got, want)
	}
	if got, want := c.URL("playlist", "playback", "volume"), "http://127.0.0.1:3333/v1/playlist/playback/volume"; got != want {
		t.Fatalf("URL = %q, want %q", got, want)
	}
}

func TestNewClient_RejectsBadPort(t *testing.T) {
	if _, err := kenku.NewClient("localhost", 0, 0); err == nil {
		t.Fatal("expected error for port 0")
	}
	if _, err := kenku.NewClient("localhost", 70000, 0); err == nil {
		t.Fatal("expected error for port 70000")
	}
}

func TestClient_QueryAndMutate(t *testing.T) {
	srv := kenkutest.NewServer(t)
	srv.SetPlaylist(map[string]any{"volume": 0.4, "repeat": "track"})
	c := srv.NewClient(t)
	ctx := context.Background()

	state, err := c.Query(ctx, "playlist", "playback")
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if got, _ := state.Float("volume"); got != 0.4 {
		t.Errorf("volume = %v, want 0.4", got)
	}
	if got := state.String("repeat"); got != "track" {
		t.Errorf("repeat = %q, want track", got)
	}

	if _, err := c.Mutate(ctx, map[string]any{"volume": 0.25}, "playlist", "playback", "volume"); err != nil {
		t.Fatalf("Mutate returned error: %v", err)
	}

	calls := srv.Calls()
	if len(calls) != 2 {
		t.Fatalf("calls = %d, want 2", len(calls))
	}
	last := calls[1]
	if last.Method != http.MethodPut || last.Path != "playlist/playback/volume" {
		t.Fatalf("last call = %s %s, want PUT playlist/playback/volume", last.Method, last.Path)
	}
	if got := last.Body["volume"]; got != 0.25 {
		t.Errorf("body volume = %v, want 0.25", got)
	}
}

func TestClient_RemoteErrorOnNonSuccess(t *testing.T) {
	srv := kenkutest.NewServer(t)
	srv.Fail("playlist/playback/next", http.StatusInternalServerError)
	c := srv.NewClient(t)

	_, err := c.Mutate(context.Background(), nil, "playlist", "playback", "next")
	if !errors.Is(err, kenku.ErrRemote) {
		t.Fatalf("error = %v, want ErrRemote", err)
	}
	var remote *kenku.RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("error %T is not a *RemoteError", err)
	}
	if remote.Status != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", remote.Status)
	}
}

func TestClient_TransportErrorWhenUnreachable(t *testing.T) {
	srv := kenkutest.NewServer(t)
	c := srv.NewClient(t)
	srv.Close()

	_, err := c.Query(context.Background(), "playlist", "playback")
	if !errors.Is(err, kenku.ErrTransport) {
		t.Fatalf("error = %v, want ErrTransport", err)
	}
}

func TestClient_TimeoutIsTransportError(t *testing.T) {
	srv := kenkutest.NewServer(t)
	srv.Delay(200 * time.Millisecond)
	c, err := kenku.NewClient(srv.Host(), srv.Port(), 20*time.Millisecond)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	_, err = c.Query(context.Background(), "soundboard", "playback")
	if !errors.Is(err, kenku.ErrTransport) {
		t.Fatalf("error = %v, want ErrTransport", err)
	}
}
