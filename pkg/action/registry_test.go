package action

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/urmzd/kenkudeck/pkg/config"
	"github.com/urmzd/kenkudeck/pkg/kenku"
)

// recorder is a Target that logs each call as "method(args)".
type recorder struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]error
}

func (r *recorder) record(method string, args ...any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	call := method
	if len(args) > 0 {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = fmt.Sprint(a)
		}
		call += "(" + strings.Join(parts, ",") + ")"
	}
	r.calls = append(r.calls, call)
	return r.fail[method]
}

func (r *recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func (r *recorder) SoundboardPlay(_ context.Context, id string) error {
	return r.record("SoundboardPlay", id)
}
func (r *recorder) SoundboardStop(_ context.Context, id string) error {
	return r.record("SoundboardStop", id)
}
func (r *recorder) SoundboardToggle(_ context.Context, id string) error {
	return r.record("SoundboardToggle", id)
}
func (r *recorder) SoundboardStopAll(context.Context) error { return r.record("SoundboardStopAll") }
func (r *recorder) StopAll(context.Context) error           { return r.record("StopAll") }
func (r *recorder) PlaylistPlay(_ context.Context, id string) error {
	return r.record("PlaylistPlay", id)
}
func (r *recorder) PlaylistPause(context.Context) error    { return r.record("PlaylistPause") }
func (r *recorder) PlaylistUnpause(context.Context) error  { return r.record("PlaylistUnpause") }
func (r *recorder) TogglePause(context.Context) error      { return r.record("TogglePause") }
func (r *recorder) PlaylistNext(context.Context) error     { return r.record("PlaylistNext") }
func (r *recorder) PlaylistPrevious(context.Context) error { return r.record("PlaylistPrevious") }
func (r *recorder) PlaylistMute(_ context.Context, mute bool) error {
	return r.record("PlaylistMute", mute)
}
func (r *recorder) PlaylistVolume(_ context.Context, v float64) error {
	return r.record("PlaylistVolume", v)
}
func (r *recorder) VolumeStep(_ context.Context, delta float64) error {
	return r.record("VolumeStep", delta)
}
func (r *recorder) PlaylistShuffle(_ context.Context, shuffle bool) error {
	return r.record("PlaylistShuffle", shuffle)
}
func (r *recorder) PlaylistRepeat(_ context.Context, mode kenku.RepeatMode) error {
	return r.record("PlaylistRepeat", mode)
}
func (r *recorder) RotateRepeat(context.Context) error      { return r.record("RotateRepeat") }
func (r *recorder) RefreshPlaylist(context.Context) error   { return r.record("RefreshPlaylist") }
func (r *recorder) RefreshSoundboard(context.Context) error { return r.record("RefreshSoundboard") }

func TestNewRegistry_Resolve(t *testing.T) {
	reg, err := NewRegistry([]Binding{
		{Code: '1', Commands: []Command{
			{Name: PlaylistPlay, Params: Params{"id": "abc"}},
			{Name: PlaylistRepeat, Params: Params{"repeat": "track"}},
		}},
		{Code: '+', Commands: []Command{{Name: PlaylistVolumeUp}}},
	})
	if err != nil {
		t.Fatalf("NewRegistry returned error: %v", err)
	}

	cmds, err := reg.Resolve('1')
	if err != nil {
		t.Fatal(err)
	}
	if len(cmds) != 2 || cmds[0].Name != PlaylistPlay || cmds[1].Name != PlaylistRepeat {
		t.Errorf("resolved = %v, want [playlist_play playlist_repeat]", cmds)
	}

	cmds, err = reg.Resolve('+')
	if err != nil {
		t.Fatal(err)
	}
	if cmds[0].Params == nil {
		t.Error("params should be an empty map, not nil")
	}
	if reg.Len() != 2 {
		t.Errorf("Len = %d, want 2", reg.Len())
	}
}

func TestResolve_UnknownCode(t *testing.T) {
	reg, err := NewRegistry([]Binding{{Code: '1', Commands: []Command{{Name: PlaylistPause}}}})
	if err != nil {
		t.Fatal(err)
	}
	_, err = reg.Resolve('z')
	if !errors.Is(err, ErrUnknownCode) {
		t.Errorf("expected ErrUnknownCode, got %v", err)
	}
}

func TestNewRegistry_EmptyCommandListIsAllowed(t *testing.T) {
	reg, err := NewRegistry([]Binding{{Code: '0'}})
	if err != nil {
		t.Fatal(err)
	}
	cmds, err := reg.Resolve('0')
	if err != nil || len(cmds) != 0 {
		t.Errorf("resolved = %v, %v; want empty sequence", cmds, err)
	}
}

func TestNewRegistry_ConfigurationErrors(t *testing.T) {
	cases := map[string][]Binding{
		"unknown command": {{Code: '1', Commands: []Command{{Name: "play_louder"}}}},
		"heartbeat code":  {{Code: 'p', Commands: []Command{{Name: PlaylistPause}}}},
		"control char":    {{Code: '\n', Commands: []Command{{Name: PlaylistPause}}}},
		"space":           {{Code: ' ', Commands: []Command{{Name: PlaylistPause}}}},
		"duplicate": {
			{Code: '1', Commands: []Command{{Name: PlaylistPause}}},
			{Code: '1', Commands: []Command{{Name: PlaylistNext}}},
		},
	}
	for name, bindings := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewRegistry(bindings)
			if !errors.Is(err, ErrConfiguration) {
				t.Errorf("expected ErrConfiguration, got %v", err)
			}
		})
	}
}

func TestFromConfig(t *testing.T) {
	reg, err := FromConfig(map[string]config.Key{
		"-": {Description: "quieter", Commands: config.Steps{
			{Name: PlaylistVolumeDown, Params: map[string]any{"decrement": 0.1}},
		}},
		"9": {Commands: config.Steps{{Name: PlaylistNext, Params: map[string]any{}}}},
	})
	if err != nil {
		t.Fatalf("FromConfig returned error: %v", err)
	}

	bindings := reg.Bindings()
	if len(bindings) != 2 || bindings[0].Code != '-' || bindings[1].Code != '9' {
		t.Fatalf("bindings = %+v, want ordered by code", bindings)
	}
	if bindings[0].Description != "quieter" {
		t.Errorf("description = %q", bindings[0].Description)
	}
}

func TestFromConfig_MultiCharacterKey(t *testing.T) {
	_, err := FromConfig(map[string]config.Key{
		"10": {Commands: config.Steps{{Name: PlaylistNext}}},
	})
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
}

func TestExecute_DispatchesParams(t *testing.T) {
	reg, err := NewRegistry(nil)
	if err != nil {
		t.Fatal(err)
	}
	rec := &recorder{}
	ctx := context.Background()

	steps := []Command{
		{Name: SoundboardTogglePlay, Params: Params{"id": "bell"}},
		{Name: PlaylistVolumeUp, Params: Params{}},
		{Name: PlaylistVolumeDown, Params: Params{"decrement": 0.25}},
		{Name: PlaylistRepeat, Params: Params{"repeat": "playlist"}},
		{Name: PlaylistMute, Params: Params{"mute": true}},
		{Name: UpdateSoundboard, Params: Params{}},
	}
	for _, cmd := range steps {
		if err := reg.Execute(ctx, rec, cmd); err != nil {
			t.Fatalf("Execute(%s) returned error: %v", cmd, err)
		}
	}

	want := []string{
		"SoundboardToggle(bell)",
		"VolumeStep(0.05)",
		"VolumeStep(-0.25)",
		"PlaylistRepeat(playlist)",
		"PlaylistMute(true)",
		"RefreshSoundboard",
	}
	got := rec.Calls()
	if len(got) != len(want) {
		t.Fatalf("calls = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestExecute_ParameterViolations(t *testing.T) {
	reg, err := NewRegistry(nil)
	if err != nil {
		t.Fatal(err)
	}
	rec := &recorder{}

	cases := map[string]Command{
		"missing id":       {Name: PlaylistPlay, Params: Params{}},
		"volume too high":  {Name: PlaylistVolume, Params: Params{"volume": 1.5}},
		"bad repeat":       {Name: PlaylistRepeat, Params: Params{"repeat": "forever"}},
		"unexpected param": {Name: PlaylistPause, Params: Params{"now": true}},
		"wrong type":       {Name: PlaylistMute, Params: Params{"mute": "yes"}},
		"unknown command":  {Name: "explode", Params: Params{}},
	}
	for name, cmd := range cases {
		t.Run(name, func(t *testing.T) {
			err := reg.Execute(context.Background(), rec, cmd)
			if !errors.Is(err, ErrConfiguration) {
				t.Errorf("expected ErrConfiguration, got %v", err)
			}
		})
	}
	if calls := rec.Calls(); len(calls) != 0 {
		t.Errorf("no command should reach the target, got %v", calls)
	}
}

func TestExecute_RemoteErrorPassesThrough(t *testing.T) {
	reg, err := NewRegistry(nil)
	if err != nil {
		t.Fatal(err)
	}
	rec := &recorder{fail: map[string]error{"PlaylistNext": kenku.ErrTransport}}

	err = reg.Execute(context.Background(), rec, Command{Name: PlaylistNext, Params: Params{}})
	if !errors.Is(err, kenku.ErrTransport) {
		t.Errorf("expected ErrTransport, got %v", err)
	}
	if errors.Is(err, ErrConfiguration) {
		t.Error("remote failure must not be reported as a configuration error")
	}
}

func TestCommands_Sorted(t *testing.T) {
	cmds := Commands()
	if len(cmds) != len(handlers) {
		t.Fatalf("Commands() = %d entries, want %d", len(cmds), len(handlers))
	}
	for i := 1; i < len(cmds); i++ {
		if cmds[i-1].Name >= cmds[i].Name {
			t.Errorf("commands not sorted at %d: %s >= %s", i, cmds[i-1].Name, cmds[i].Name)
		}
	}
}
