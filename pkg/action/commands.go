package action

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/urmzd/kenkudeck/pkg/kenku"
)

// Target is the set of remote operations a binding can invoke.
// *kenku.Player implements it.
type Target interface {
	SoundboardPlay(ctx context.Context, id string) error
	SoundboardStop(ctx context.Context, id string) error
	SoundboardToggle(ctx context.Context, id string) error
	SoundboardStopAll(ctx context.Context) error
	StopAll(ctx context.Context) error

	PlaylistPlay(ctx context.Context, id string) error
	PlaylistPause(ctx context.Context) error
	PlaylistUnpause(ctx context.Context) error
	TogglePause(ctx context.Context) error
	PlaylistNext(ctx context.Context) error
	PlaylistPrevious(ctx context.Context) error
	PlaylistMute(ctx context.Context, mute bool) error
	PlaylistVolume(ctx context.Context, volume float64) error
	VolumeStep(ctx context.Context, delta float64) error
	PlaylistShuffle(ctx context.Context, shuffle bool) error
	PlaylistRepeat(ctx context.Context, mode kenku.RepeatMode) error
	RotateRepeat(ctx context.Context) error

	RefreshPlaylist(ctx context.Context) error
	RefreshSoundboard(ctx context.Context) error
}

var _ Target = (*kenku.Player)(nil)

// Command names accepted in key bindings
const (
	SoundboardPlay       = "soundboard_play"
	SoundboardStop       = "soundboard_stop"
	SoundboardTogglePlay = "soundboard_toggle_play"
	SoundboardStopAll    = "soundboard_stop_all"
	StopAll              = "stop_all"
	PlaylistPlay         = "playlist_play"
	PlaylistPause        = "playlist_pause"
	PlaylistUnpause      = "playlist_unpause"
	PlaylistTogglePause  = "playlist_toggle_pause"
	PlaylistNext         = "playlist_next"
	PlaylistPrev         = "playlist_prev"
	PlaylistMute         = "playlist_mute"
	PlaylistVolume       = "playlist_volume"
	PlaylistVolumeUp     = "playlist_volume_up"
	PlaylistVolumeDown   = "playlist_volume_down"
	PlaylistShuffle      = "playlist_shuffle"
	PlaylistRepeat       = "playlist_repeat"
	PlaylistRepeatRot    = "playlist_repeat_rot"
	UpdatePlaylistState  = "update_playlist_state"
	UpdateSoundboard     = "update_soundboard_state"
)

// Parameter contracts
var (
	noParamsSchema = json.RawMessage(`{
		"type": "object",
		"additionalProperties": false
	}`)
	idSchema = json.RawMessage(`{
		"type": "object",
		"properties": {"id": {"type": "string", "minLength": 1}},
		"required": ["id"],
		"additionalProperties": false
	}`)
	muteSchema = json.RawMessage(`{
		"type": "object",
		"properties": {"mute": {"type": "boolean"}},
		"required": ["mute"],
		"additionalProperties": false
	}`)
	volumeSchema = json.RawMessage(`{
		"type": "object",
		"properties": {"volume": {"type": "number", "minimum": 0, "maximum": 1}},
		"required": ["volume"],
		"additionalProperties": false
	}`)
	incrementSchema = json.RawMessage(`{
		"type": "object",
		"properties": {"increment": {"type": "number", "exclusiveMinimum": 0, "maximum": 1}},
		"additionalProperties": false
	}`)
	decrementSchema = json.RawMessage(`{
		"type": "object",
		"properties": {"decrement": {"type": "number", "exclusiveMinimum": 0, "maximum": 1}},
		"additionalProperties": false
	}`)
	shuffleSchema = json.RawMessage(`{
		"type": "object",
		"properties": {"shuffle": {"type": "boolean"}},
		"required": ["shuffle"],
		"additionalProperties": false
	}`)
	repeatSchema = json.RawMessage(`{
		"type": "object",
		"properties": {"repeat": {"type": "string", "enum": ["off", "playlist", "track"]}},
		"required": ["repeat"],
		"additionalProperties": false
	}`)
)

type handler struct {
	schema      json.RawMessage
	description string
	run         func(ctx context.Context, t Target, p Params) error

	contract *jsonschema.Schema // compiled from schema at init
}

var handlers = map[string]handler{
	SoundboardPlay: {schema: idSchema, description: "Play a soundboard element", run: func(ctx context.Context, t Target, p Params) error {
		return t.SoundboardPlay(ctx, p.String("id"))
	}},
	SoundboardStop: {schema: idSchema, description: "Stop a soundboard element", run: func(ctx context.Context, t Target, p Params) error {
		return t.SoundboardStop(ctx, p.String("id"))
	}},
	SoundboardTogglePlay: {schema: idSchema, description: "Start or stop a soundboard element", run: func(ctx context.Context, t Target, p Params) error {
		return t.SoundboardToggle(ctx, p.String("id"))
	}},
	SoundboardStopAll: {schema: noParamsSchema, description: "Stop every playing soundboard element", run: func(ctx context.Context, t Target, _ Params) error {
		return t.SoundboardStopAll(ctx)
	}},
	StopAll: {schema: noParamsSchema, description: "Stop the soundboard and pause the playlist", run: func(ctx context.Context, t Target, _ Params) error {
		return t.StopAll(ctx)
	}},
	PlaylistPlay: {schema: idSchema, description: "Play a playlist or track", run: func(ctx context.Context, t Target, p Params) error {
		return t.PlaylistPlay(ctx, p.String("id"))
	}},
	PlaylistPause: {schema: noParamsSchema, description: "Pause the playlist", run: func(ctx context.Context, t Target, _ Params) error {
		return t.PlaylistPause(ctx)
	}},
	PlaylistUnpause: {schema: noParamsSchema, description: "Resume the playlist", run: func(ctx context.Context, t Target, _ Params) error {
		return t.PlaylistUnpause(ctx)
	}},
	PlaylistTogglePause: {schema: noParamsSchema, description: "Pause or resume the playlist", run: func(ctx context.Context, t Target, _ Params) error {
		return t.TogglePause(ctx)
	}},
	PlaylistNext: {schema: noParamsSchema, description: "Next track", run: func(ctx context.Context, t Target, _ Params) error {
		return t.PlaylistNext(ctx)
	}},
	PlaylistPrev: {schema: noParamsSchema, description: "Previous track", run: func(ctx context.Context, t Target, _ Params) error {
		return t.PlaylistPrevious(ctx)
	}},
	PlaylistMute: {schema: muteSchema, description: "Set mute", run: func(ctx context.Context, t Target, p Params) error {
		return t.PlaylistMute(ctx, p.Bool("mute"))
	}},
	PlaylistVolume: {schema: volumeSchema, description: "Set the volume (0-1)", run: func(ctx context.Context, t Target, p Params) error {
		return t.PlaylistVolume(ctx, p.Float("volume", 0))
	}},
	PlaylistVolumeUp: {schema: incrementSchema, description: "Raise the volume by increment (default 0.05)", run: func(ctx context.Context, t Target, p Params) error {
		return t.VolumeStep(ctx, p.Float("increment", kenku.DefaultVolumeStep))
	}},
	PlaylistVolumeDown: {schema: decrementSchema, description: "Lower the volume by decrement (default 0.05)", run: func(ctx context.Context, t Target, p Params) error {
		return t.VolumeStep(ctx, -p.Float("decrement", kenku.DefaultVolumeStep))
	}},
	PlaylistShuffle: {schema: shuffleSchema, description: "Set shuffle", run: func(ctx context.Context, t Target, p Params) error {
		return t.PlaylistShuffle(ctx, p.Bool("shuffle"))
	}},
	PlaylistRepeat: {schema: repeatSchema, description: "Set the repeat mode (off, playlist, track)", run: func(ctx context.Context, t Target, p Params) error {
		return t.PlaylistRepeat(ctx, kenku.RepeatMode(p.String("repeat")))
	}},
	PlaylistRepeatRot: {schema: noParamsSchema, description: "Rotate the repeat mode", run: func(ctx context.Context, t Target, _ Params) error {
		return t.RotateRepeat(ctx)
	}},
	UpdatePlaylistState: {schema: noParamsSchema, description: "Refetch the playlist playback", run: func(ctx context.Context, t Target, _ Params) error {
		return t.RefreshPlaylist(ctx)
	}},
	UpdateSoundboard: {schema: noParamsSchema, description: "Refetch the soundboard playback", run: func(ctx context.Context, t Target, _ Params) error {
		return t.RefreshSoundboard(ctx)
	}},
}

// Known reports whether name is a command bindings may use.
func Known(name string) bool {
	_, ok := handlers[name]
	return ok
}

// CommandInfo describes one entry of the command table.
type CommandInfo struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Schema      json.RawMessage `json:"schema"`
}

// Commands lists the command table sorted by name.
func Commands() []CommandInfo {
	out := make([]CommandInfo, 0, len(handlers))
	for name, h := range handlers {
		out = append(out, CommandInfo{Name: name, Description: h.description, Schema: h.schema})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
