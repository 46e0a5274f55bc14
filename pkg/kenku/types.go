package kenku

import (
	"fmt"
	"maps"
)

// State is a remote view as returned by Kenku FM, e.g. the playlist
// playback ({volume, playing, repeat, shuffle, muted, track}) or the
// soundboard playback ({sounds: [...]}).
type State map[string]any

// Float returns the numeric field key.
func (s State) Float(key string) (float64, error) {
	switch v := s[key].(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case nil:
		return 0, fmt.Errorf("field %q missing", key)
	default:
		return 0, fmt.Errorf("field %q is %T, not a number", key, v)
	}
}

// Bool returns the boolean field key.
func (s State) Bool(key string) (bool, error) {
	v, ok := s[key].(bool)
	if !ok {
		return false, fmt.Errorf("field %q is %T, not a boolean", key, s[key])
	}
	return v, nil
}

// String returns the string field key, or "" when absent.
func (s State) String(key string) string {
	v, _ := s[key].(string)
	return v
}

// SoundIDs returns the ids listed under "sounds" in a soundboard state.
func (s State) SoundIDs() []string {
	raw, _ := s["sounds"].([]any)
	ids := make([]string, 0, len(raw))
	for _, item := range raw {
		sound, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if id, ok := sound["id"].(string); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

func (s State) clone() State {
	if s == nil {
		return nil
	}
	return maps.Clone(s)
}

// RepeatMode is the playlist repeat setting.
type RepeatMode string

// Repeat modes, in rotation order
const (
	RepeatOff      RepeatMode = "off"
	RepeatPlaylist RepeatMode = "playlist"
	RepeatTrack    RepeatMode = "track"
)

var repeatCycle = []RepeatMode{RepeatOff, RepeatPlaylist, RepeatTrack}

// Next returns the mode following m in the off -> playlist -> track cycle.
// Unrecognised values are treated as off.
func (m RepeatMode) Next() RepeatMode {
	for i, mode := range repeatCycle {
		if mode == m {
			return repeatCycle[(i+1)%len(repeatCycle)]
		}
	}
	return RepeatPlaylist
}

// Valid reports whether m is one of the modes Kenku FM accepts.
func (m RepeatMode) Valid() bool {
	for _, mode := range repeatCycle {
		if mode == m {
			return true
		}
	}
	return false
}
