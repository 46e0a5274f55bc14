package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const sampleConfig = `
kenku:
  url: 192.168.1.20
  port: 3344
  freshness: 0.5
serial:
  port: /dev/ttyUSB0
  baud: 115200
keys:
  "1":
    description: Tavern theme on repeat
    commands:
      - playlist_play: {id: 4f2a}
      - playlist_repeat: {repeat: track}
  "+":
    commands:
      - playlist_volume_up
  "-":
    commands:
      playlist_volume_down: {decrement: 0.1}
      playlist_unpause:
  "#":
    commands:
      - soundboard_stop_all
      - playlist_volume_down
      - playlist_volume_down
`

func TestParse_FullConfig(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	if cfg.Kenku.URL != "192.168.1.20" || cfg.Kenku.Port != 3344 {
		t.Errorf("kenku = %s:%d, want 192.168.1.20:3344", cfg.Kenku.URL, cfg.Kenku.Port)
	}
	if got := cfg.Kenku.Freshness.Duration(); got != 500*time.Millisecond {
		t.Errorf("freshness = %v, want 500ms", got)
	}
	if got := cfg.Kenku.Timeout.Duration(); got != 5*time.Second {
		t.Errorf("timeout default = %v, want 5s", got)
	}
	if cfg.Serial.Port != "/dev/ttyUSB0" || cfg.Serial.Baud != 115200 {
		t.Errorf("serial = %s@%d, want /dev/ttyUSB0@115200", cfg.Serial.Port, cfg.Serial.Baud)
	}
	if got := cfg.Serial.Timeout.Duration(); got != 100*time.Millisecond {
		t.Errorf("serial timeout default = %v, want 100ms", got)
	}
	if len(cfg.Keys) != 4 {
		t.Fatalf("keys = %d, want 4", len(cfg.Keys))
	}
}

func TestParse_ListFormPreservesOrder(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	steps := cfg.Keys["1"].Commands
	if len(steps) != 2 {
		t.Fatalf("steps = %d, want 2", len(steps))
	}
	if steps[0].Name != "playlist_play" || steps[0].Params["id"] != "4f2a" {
		t.Errorf("step 0 = %+v, want playlist_play id=4f2a", steps[0])
	}
	if steps[1].Name != "playlist_repeat" || steps[1].Params["repeat"] != "track" {
		t.Errorf("step 1 = %+v, want playlist_repeat repeat=track", steps[1])
	}
	if cfg.Keys["1"].Description != "Tavern theme on repeat" {
		t.Errorf("description = %q", cfg.Keys["1"].Description)
	}
}

func TestParse_BareNameHasEmptyParams(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	step := cfg.Keys["+"].Commands[0]
	if step.Name != "playlist_volume_up" {
		t.Fatalf("name = %q, want playlist_volume_up", step.Name)
	}
	if step.Params == nil || len(step.Params) != 0 {
		t.Errorf("params = %#v, want empty non-nil map", step.Params)
	}
}

func TestParse_MappingFormKeepsDocumentOrder(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	steps := cfg.Keys["-"].Commands
	if len(steps) != 2 {
		t.Fatalf("steps = %d, want 2", len(steps))
	}
	if steps[0].Name != "playlist_volume_down" || steps[0].Params["decrement"] != 0.1 {
		t.Errorf("step 0 = %+v, want playlist_volume_down decrement=0.1", steps[0])
	}
	if steps[1].Name != "playlist_unpause" || steps[1].Params == nil {
		t.Errorf("step 1 = %+v, want playlist_unpause with empty params", steps[1])
	}
}

func TestParse_NonMappingParamsAreEmpty(t *testing.T) {
	doc := `
keys:
  a:
    commands:
      playlist_pause: true
      playlist_next: [1, 2]
  b:
    commands:
      - playlist_play: abc
`
	cfg, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	steps := append(cfg.Keys["a"].Commands, cfg.Keys["b"].Commands...)
	if len(steps) != 3 {
		t.Fatalf("steps = %d, want 3", len(steps))
	}
	for _, step := range steps {
		if step.Params == nil || len(step.Params) != 0 {
			t.Errorf("%s params = %#v, want empty map", step.Name, step.Params)
		}
	}
	if steps[0].Name != "playlist_pause" || steps[1].Name != "playlist_next" || steps[2].Name != "playlist_play" {
		t.Errorf("names = %s,%s,%s", steps[0].Name, steps[1].Name, steps[2].Name)
	}
}

func TestParse_RepeatedCommands(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if got := len(cfg.Keys["#"].Commands); got != 3 {
		t.Fatalf("steps = %d, want 3", got)
	}
}

func TestParse_Errors(t *testing.T) {
	cases := map[string]string{
		"no keys":   "kenku: {port: 3333}\n",
		"bad port":  "kenku: {port: 0}\nkeys: {a: {commands: [playlist_pause]}}\n",
		"bad baud":  "serial: {baud: -1}\nkeys: {a: {commands: [playlist_pause]}}\n",
		"two names": "keys: {a: {commands: [{playlist_pause: , playlist_next: }]}}\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(doc)); err == nil {
				t.Fatalf("expected error for %q", doc)
			}
		})
	}
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(sampleConfig), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("KENKUDECK_KENKU_PORT", "4000")
	t.Setenv("KENKUDECK_SERIAL_PORT", "/dev/ttyACM1")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Kenku.Port != 4000 {
		t.Errorf("port = %d, want env override 4000", cfg.Kenku.Port)
	}
	if cfg.Serial.Port != "/dev/ttyACM1" {
		t.Errorf("serial port = %q, want env override", cfg.Serial.Port)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || !strings.Contains(err.Error(), "read config") {
		t.Fatalf("error = %v, want read config failure", err)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Kenku.URL != DefaultKenkuURL || cfg.Kenku.Port != DefaultKenkuPort {
		t.Errorf("kenku defaults = %s:%d", cfg.Kenku.URL, cfg.Kenku.Port)
	}
	if cfg.Serial.Port != AutoPort || cfg.Serial.Baud != DefaultBaud {
		t.Errorf("serial defaults = %s@%d", cfg.Serial.Port, cfg.Serial.Baud)
	}
	if cfg.Kenku.Freshness.Duration() != time.Second {
		t.Errorf("freshness default = %v, want 1s", cfg.Kenku.Freshness.Duration())
	}
}
