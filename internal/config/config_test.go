package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vfxmidi/internal/animator"
)

const sampleJSON = `{
  "obs": {"addr": "ws://10.0.0.5:4455", "password": "secret"},
  "midi": {"device": "KeyStep"},
  "fps": 60,
  "actions": [
    {"name": "Fire", "binding": "cc:1:64"},
    {"name": "Spread", "binding": "cc:*:74"}
  ],
  "animators": [
    {"name": "blobs", "mode": "slots", "channel": 1, "source": "range", "lowest": 48, "highest": 72,
     "intensity_speed": 8, "test_action": "Fire",
     "targets": [{"source": "Blob 1"}, {"source": "Blob 2", "filter": "fx"}]}
  ],
  "binders": [
    {"kind": "event", "action": "Fire", "event": "OnFire", "target": {"source": "Sparks"}},
    {"kind": "player_property", "action": "Spread", "property": "Spread", "target": {"source": "Sparks"}}
  ]
}`

const sampleYAML = `
obs:
  addr: 127.0.0.1:4455
fps: 30
actions:
  - name: Kick
    binding: note:10:36
animators:
  - name: kick
    mode: gate
    source: notes
    notes: [36]
    targets:
      - source: Kick FX
binders:
  - kind: player_event
    target:
      source: Kick FX
`

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestLoadJSON(t *testing.T) {
	c, err := Load(writeFile(t, "vfxmidi.json", sampleJSON))
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	assert.Equal(t, "ws://10.0.0.5:4455", c.OBS.Addr)
	assert.Equal(t, "2s", c.OBS.Timeout, "defaults survive partial objects")
	assert.Equal(t, 60, c.FPS)
	require.Len(t, c.Animators, 1)

	a := c.Animators[0]
	assert.Equal(t, DefaultFilterName, a.Targets[0].FilterName())
	assert.Equal(t, "fx", a.Targets[1].FilterName())

	f, err := a.Filter()
	require.NoError(t, err)
	assert.Equal(t, animator.NoteRange, f.Source)
	assert.Equal(t, animator.Channel(1), f.Channel)
	assert.Equal(t, 48, f.Lowest)
	assert.Equal(t, 72, f.Highest)
}

func TestLoadYAML(t *testing.T) {
	c, err := Load(writeFile(t, "vfxmidi.yaml", sampleYAML))
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	assert.Equal(t, "1s", c.MIDI.PollInterval)
	require.Len(t, c.Animators, 1)
	f, err := c.Animators[0].Filter()
	require.NoError(t, err)
	assert.Equal(t, animator.NoteNumbers, f.Source)
	assert.Equal(t, []int{36}, f.Notes)
	assert.Equal(t, 127, f.Highest)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "none.json"))
	assert.True(t, errors.Is(err, os.ErrNotExist))

	_, err = Load(writeFile(t, "bad.json", "{"))
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	c, err := Load(writeFile(t, "in.json", sampleJSON))
	require.NoError(t, err)

	for _, name := range []string{"nested/out.json", "out.yml"} {
		path := filepath.Join(dir, name)
		require.NoError(t, Save(path, c))
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

		got, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, c, got, name)
	}
	assert.Error(t, Save(filepath.Join(dir, "x.json"), nil))
}

func TestValidateErrors(t *testing.T) {
	base := func() *Config {
		c := Default()
		c.Actions = []ActionConfig{{Name: "Fire", Binding: "cc:1:64"}}
		c.Animators = []AnimatorConfig{{Name: "a", Targets: []TargetRef{{Source: "S"}}}}
		return c
	}
	require.NoError(t, base().Validate())

	cases := map[string]func(c *Config){
		"fps":              func(c *Config) { c.FPS = 1000 },
		"timeout":          func(c *Config) { c.OBS.Timeout = "soon" },
		"poll":             func(c *Config) { c.MIDI.PollInterval = "x" },
		"empty action":     func(c *Config) { c.Actions = append(c.Actions, ActionConfig{Binding: "cc:1:1"}) },
		"dup action":       func(c *Config) { c.Actions = append(c.Actions, ActionConfig{Name: "fire", Binding: "cc:1:1"}) },
		"bad binding":      func(c *Config) { c.Actions[0].Binding = "pb:1:1" },
		"no targets":       func(c *Config) { c.Animators[0].Targets = nil },
		"gate two targets": func(c *Config) { c.Animators[0].Mode = ModeGate; c.Animators[0].Targets = append(c.Animators[0].Targets, TargetRef{Source: "T"}) },
		"bad mode":         func(c *Config) { c.Animators[0].Mode = "poly" },
		"bad source":       func(c *Config) { c.Animators[0].Source = "chord" },
		"bad channel":      func(c *Config) { c.Animators[0].Channel = 17 },
		"unknown test":     func(c *Config) { c.Animators[0].TestAction = "Jump" },
		"empty source":     func(c *Config) { c.Animators[0].Targets[0].Source = " " },
		"binder kind":      func(c *Config) { c.Binders = []BinderConfig{{Kind: "x", Target: TargetRef{Source: "S"}}} },
		"binder action":    func(c *Config) { c.Binders = []BinderConfig{{Kind: BindProperty, Action: "Jump", Target: TargetRef{Source: "S"}}} },
		"binder event":     func(c *Config) { c.Binders = []BinderConfig{{Kind: BindEvent, Action: "Fire", Target: TargetRef{Source: "S"}}} },
		"binder target":    func(c *Config) { c.Binders = []BinderConfig{{Kind: BindPlayerEvent}} },
	}
	for name, mutate := range cases {
		c := base()
		mutate(c)
		assert.Error(t, c.Validate(), name)
	}
}

func TestParseDuration(t *testing.T) {
	d, err := ParseDuration("", time.Second)
	require.NoError(t, err)
	assert.Equal(t, time.Second, d)

	d, err = ParseDuration(" 250ms ", time.Second)
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, d)

	_, err = ParseDuration("later", 0)
	assert.Error(t, err)
}
