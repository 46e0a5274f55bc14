package mcp

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/urmzd/kenkudeck/pkg/action"
	"github.com/urmzd/kenkudeck/pkg/api/types"
	"github.com/urmzd/kenkudeck/pkg/dispatch"
	"github.com/urmzd/kenkudeck/pkg/kenku"
	"github.com/urmzd/kenkudeck/pkg/kenku/kenkutest"
)

func newTestServer(t *testing.T) (*Server, *kenkutest.Server) {
	t.Helper()
	remote := kenkutest.NewServer(t)
	reg, err := action.NewRegistry([]action.Binding{
		{Code: '1', Description: "next", Commands: []action.Command{{Name: action.PlaylistNext}}},
		{Code: 'm', Commands: []action.Command{{Name: action.PlaylistMute, Params: action.Params{"mute": true}}}},
	})
	if err != nil {
		t.Fatal(err)
	}
	player := kenku.NewPlayer(remote.NewClient(t), time.Second)
	d := dispatch.New(reg, player, io.Discard)
	d.Start(context.Background())
	t.Cleanup(d.Stop)
	return NewServer(d, reg, player, nil), remote
}

func callTool(name string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content = %T, want text", res.Content[0])
	}
	return text.Text
}

func TestGetHealth(t *testing.T) {
	s, _ := newTestServer(t)

	res, err := s.handleGetHealth(context.Background(), callTool("get_health", nil))
	if err != nil {
		t.Fatal(err)
	}
	var out GetHealthOutput
	if err := json.Unmarshal([]byte(resultText(t, res)), &out); err != nil {
		t.Fatal(err)
	}
	if out.Status != "healthy" || out.Serial != "none" {
		t.Errorf("health = %+v", out)
	}
}

func TestListBindings(t *testing.T) {
	s, _ := newTestServer(t)

	res, err := s.handleListBindings(context.Background(), callTool("list_bindings", nil))
	if err != nil {
		t.Fatal(err)
	}
	var out types.BindingsResponse
	if err := json.Unmarshal([]byte(resultText(t, res)), &out); err != nil {
		t.Fatal(err)
	}
	if out.Count != 2 || out.Bindings[0].Code != "1" || out.Bindings[1].Code != "m" {
		t.Errorf("bindings = %+v", out)
	}
}

func TestListCommands(t *testing.T) {
	s, _ := newTestServer(t)

	res, err := s.handleListCommands(context.Background(), callTool("list_commands", nil))
	if err != nil {
		t.Fatal(err)
	}
	if text := resultText(t, res); !strings.Contains(text, action.PlaylistRepeatRot) {
		t.Errorf("commands listing misses %s", action.PlaylistRepeatRot)
	}
}

func TestPressKey(t *testing.T) {
	s, remote := newTestServer(t)

	res, err := s.handlePressKey(context.Background(), callTool("press_key", map[string]any{"code": "m"}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("press_key failed: %s", resultText(t, res))
	}
	var out PressKeyOutput
	if err := json.Unmarshal([]byte(resultText(t, res)), &out); err != nil {
		t.Fatal(err)
	}
	if !out.Success || out.Outcome.Source != dispatch.SourceVirtual {
		t.Errorf("output = %+v", out)
	}
	if n := remote.Count(http.MethodPut, "playlist/playback/mute"); n != 1 {
		t.Errorf("mute calls = %d, want 1", n)
	}
}

func TestPressKey_Errors(t *testing.T) {
	s, remote := newTestServer(t)
	remote.Fail("playlist/playback/next", http.StatusServiceUnavailable)

	cases := map[string]map[string]any{
		"missing code":   nil,
		"long code":      {"code": "10"},
		"unbound code":   {"code": "x"},
		"remote failure": {"code": "1"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			res, err := s.handlePressKey(context.Background(), callTool("press_key", args))
			if err != nil {
				t.Fatal(err)
			}
			if !res.IsError {
				t.Errorf("expected tool error, got %s", resultText(t, res))
			}
		})
	}
}

func TestGetPlaybackState(t *testing.T) {
	s, remote := newTestServer(t)
	remote.SetPlaylist(map[string]any{"volume": 0.4})

	res, err := s.handleGetPlaybackState(context.Background(), callTool("get_playback_state", nil))
	if err != nil {
		t.Fatal(err)
	}
	var cached types.PlaybackResponse
	if err := json.Unmarshal([]byte(resultText(t, res)), &cached); err != nil {
		t.Fatal(err)
	}
	if cached.Playlist.Cached || len(remote.Calls()) != 0 {
		t.Errorf("snapshot should not fetch: %+v", cached)
	}

	res, err = s.handleGetPlaybackState(context.Background(), callTool("get_playback_state", map[string]any{"refresh": true}))
	if err != nil {
		t.Fatal(err)
	}
	var fresh types.PlaybackResponse
	if err := json.Unmarshal([]byte(resultText(t, res)), &fresh); err != nil {
		t.Fatal(err)
	}
	if !fresh.Playlist.Cached || fresh.Playlist.State["volume"] != 0.4 {
		t.Errorf("playlist = %+v, want fetched volume 0.4", fresh.Playlist)
	}
	if !fresh.Soundboard.Cached {
		t.Error("soundboard should be cached after refresh")
	}
}
