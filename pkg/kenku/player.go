package kenku

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultVolumeStep is the volume change applied by a single knob tick.
const DefaultVolumeStep = 0.05

// Playback fields patched after local mutations
const (
	fieldVolume  = "volume"
	fieldPlaying = "playing"
	fieldRepeat  = "repeat"
	fieldShuffle = "shuffle"
	fieldMuted   = "muted"
)

// Player drives a Kenku FM instance. It owns the request client and the two
// cached views (playlist playback and soundboard playback).
//
// Player methods may be called from several goroutines, but composite
// commands (read, compute, write, patch) are only coherent when issued from
// a single goroutine, which is how the dispatcher uses them.
type Player struct {
	client     *Client
	playlist   *View
	soundboard *View
}

// Option configures a Player.
type Option func(*Player)

// WithClock replaces the time source used by both views.
func WithClock(now func() time.Time) Option {
	return func(p *Player) {
		p.playlist.now = now
		p.soundboard.now = now
	}
}

// NewPlayer wraps client with views that stay fresh for freshness.
func NewPlayer(client *Client, freshness time.Duration, opts ...Option) *Player {
	p := &Player{client: client}
	p.playlist = NewView("playlist", freshness, func(ctx context.Context) (State, error) {
		return client.Query(ctx, "playlist", "playback")
	})
	p.soundboard = NewView("soundboard", freshness, func(ctx context.Context) (State, error) {
		return client.Query(ctx, "soundboard", "playback")
	})
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Client returns the underlying request client.
func (p *Player) Client() *Client {
	return p.client
}

// Playlist returns the playlist playback view.
func (p *Player) Playlist() *View {
	return p.playlist
}

// Soundboard returns the soundboard playback view.
func (p *Player) Soundboard() *View {
	return p.soundboard
}

// PlaylistState reads the playlist playback, fetching it when stale.
func (p *Player) PlaylistState(ctx context.Context) (State, error) {
	return p.playlist.Read(ctx)
}

// SoundboardState reads the soundboard playback, fetching it when stale.
func (p *Player) SoundboardState(ctx context.Context) (State, error) {
	return p.soundboard.Read(ctx)
}

// RefreshPlaylist discards the cached playlist playback and fetches it again.
func (p *Player) RefreshPlaylist(ctx context.Context) error {
	p.playlist.Invalidate()
	_, err := p.playlist.Read(ctx)
	return err
}

// RefreshSoundboard discards the cached soundboard playback and fetches it again.
func (p *Player) RefreshSoundboard(ctx context.Context) error {
	p.soundboard.Invalidate()
	_, err := p.soundboard.Read(ctx)
	return err
}

// --- Soundboard ---

// SoundboardPlay starts the soundboard element id. Sounds end on their own,
// so soundboard calls never patch the cached soundboard playback.
func (p *Player) SoundboardPlay(ctx context.Context, id string) error {
	_, err := p.client.Mutate(ctx, map[string]any{"id": id}, "soundboard", "play")
	return err
}

// SoundboardStop stops the soundboard element id.
func (p *Player) SoundboardStop(ctx context.Context, id string) error {
	_, err := p.client.Mutate(ctx, map[string]any{"id": id}, "soundboard", "stop")
	return err
}

// SoundboardToggle stops id when the soundboard reports it playing and starts it otherwise.
func (p *Player) SoundboardToggle(ctx context.Context, id string) error {
	state, err := p.soundboard.Read(ctx)
	if err != nil {
		return err
	}
	for _, playing := range state.SoundIDs() {
		if playing == id {
			return p.SoundboardStop(ctx, id)
		}
	}
	return p.SoundboardPlay(ctx, id)
}

// SoundboardStopAll stops every sound the soundboard reports as playing.
func (p *Player) SoundboardStopAll(ctx context.Context) error {
	state, err := p.soundboard.Read(ctx)
	if err != nil {
		return err
	}
	for _, id := range state.SoundIDs() {
		if err := p.SoundboardStop(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// StopAll silences the soundboard and pauses the playlist.
func (p *Player) StopAll(ctx context.Context) error {
	if err := p.SoundboardStopAll(ctx); err != nil {
		return err
	}
	return p.PlaylistPause(ctx)
}

// --- Playlist ---

// PlaylistPlay plays the playlist or track id.
//
// Kenku FM stops the music when the id already playing is played again, and
// it cannot be resumed afterwards.
func (p *Player) PlaylistPlay(ctx context.Context, id string) error {
	_, err := p.client.Mutate(ctx, map[string]any{"id": id}, "playlist", "play")
	return err
}

// PlaylistUnpause resumes the current track.
func (p *Player) PlaylistUnpause(ctx context.Context) error {
	if _, err := p.client.Mutate(ctx, nil, "playlist", "playback", "play"); err != nil {
		return err
	}
	p.playlist.Patch(fieldPlaying, true)
	return nil
}

// PlaylistPause pauses the current track.
func (p *Player) PlaylistPause(ctx context.Context) error {
	if _, err := p.client.Mutate(ctx, nil, "playlist", "playback", "pause"); err != nil {
		return err
	}
	p.playlist.Patch(fieldPlaying, false)
	return nil
}

// PlaylistNext advances to the next track.
func (p *Player) PlaylistNext(ctx context.Context) error {
	_, err := p.client.Mutate(ctx, nil, "playlist", "playback", "next")
	return err
}

// PlaylistPrevious returns to the previous track.
func (p *Player) PlaylistPrevious(ctx context.Context) error {
	_, err := p.client.Mutate(ctx, nil, "playlist", "playback", "previous")
	return err
}

// PlaylistMute sets the mute flag.
func (p *Player) PlaylistMute(ctx context.Context, mute bool) error {
	if _, err := p.client.Mutate(ctx, map[string]any{"mute": mute}, "playlist", "playback", "mute"); err != nil {
		return err
	}
	p.playlist.Patch(fieldMuted, mute)
	return nil
}

// PlaylistVolume sets the volume, a value in [0,1].
func (p *Player) PlaylistVolume(ctx context.Context, volume float64) error {
	if volume < 0 || volume > 1 {
		return fmt.Errorf("volume %v out of range [0,1]", volume)
	}
	if _, err := p.client.Mutate(ctx, map[string]any{"volume": volume}, "playlist", "playback", "volume"); err != nil {
		return err
	}
	p.playlist.Patch(fieldVolume, volume)
	return nil
}

// PlaylistShuffle sets the shuffle flag.
func (p *Player) PlaylistShuffle(ctx context.Context, shuffle bool) error {
	if _, err := p.client.Mutate(ctx, map[string]any{"shuffle": shuffle}, "playlist", "playback", "shuffle"); err != nil {
		return err
	}
	p.playlist.Patch(fieldShuffle, shuffle)
	return nil
}

// PlaylistRepeat sets the repeat mode.
func (p *Player) PlaylistRepeat(ctx context.Context, mode RepeatMode) error {
	if !mode.Valid() {
		return fmt.Errorf("invalid repeat mode %q", mode)
	}
	if _, err := p.client.Mutate(ctx, map[string]any{"repeat": string(mode)}, "playlist", "playback", "repeat"); err != nil {
		return err
	}
	p.playlist.Patch(fieldRepeat, string(mode))
	return nil
}

// RotateRepeat advances the repeat mode through off -> playlist -> track.
func (p *Player) RotateRepeat(ctx context.Context) error {
	state, err := p.playlist.Read(ctx)
	if err != nil {
		return err
	}
	next := RepeatMode(state.String(fieldRepeat)).Next()
	log.Debug().Str("from", state.String(fieldRepeat)).Str("to", string(next)).Msg("Rotating repeat mode")
	return p.PlaylistRepeat(ctx, next)
}

// VolumeStep moves the volume by delta, clamped to [0,1]. The current volume
// comes from the cache, so consecutive steps build on each other's result.
func (p *Player) VolumeStep(ctx context.Context, delta float64) error {
	state, err := p.playlist.Read(ctx)
	if err != nil {
		return err
	}
	current, err := state.Float(fieldVolume)
	if err != nil {
		return fmt.Errorf("playlist playback: %w", err)
	}
	return p.PlaylistVolume(ctx, clamp(current+delta))
}

// TogglePause pauses a playing playlist and resumes a paused one.
func (p *Player) TogglePause(ctx context.Context) error {
	state, err := p.playlist.Read(ctx)
	if err != nil {
		return err
	}
	playing, err := state.Bool(fieldPlaying)
	if err != nil {
		return fmt.Errorf("playlist playback: %w", err)
	}
	if playing {
		return p.PlaylistPause(ctx)
	}
	return p.PlaylistUnpause(ctx)
}

func clamp(v float64) float64 {
	return max(0, min(1, v))
}
