package main

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"vfxmidi/internal/config"
	"vfxmidi/internal/obsws"
)

func TestParseNotes(t *testing.T) {
	got, err := parseNotes(" 36, 38,42,36 ,")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, []int{36, 38, 42}) {
		t.Fatalf("notes => %v", got)
	}
	for _, bad := range []string{"", ",", "128", "-1", "x"} {
		if _, err := parseNotes(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestParseRange(t *testing.T) {
	lo, hi, err := parseRange(" 48 - 72 ")
	if err != nil || lo != 48 || hi != 72 {
		t.Fatalf("range => %d %d %v", lo, hi, err)
	}
	for _, bad := range []string{"48", "72-48", "0-128", "a-b"} {
		if _, _, err := parseRange(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" Blob 1, ,Blob 2,")
	if !reflect.DeepEqual(got, []string{"Blob 1", "Blob 2"}) {
		t.Fatalf("split => %#v", got)
	}
}

func TestApplyRunFlags_OverridesOnlySetFlags(t *testing.T) {
	cfg := config.Default()
	cfg.MIDI.Device = "FromFile"
	o := runFlags{addr: "10.0.0.2:4455", device: "", fps: 60}
	set := map[string]bool{"addr": true, "fps": true}
	if err := applyRunFlags(cfg, o, set); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.OBS.Addr != "10.0.0.2:4455" || cfg.FPS != 60 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.MIDI.Device != "FromFile" {
		t.Fatalf("device should keep file value, got %q", cfg.MIDI.Device)
	}
	if len(cfg.Animators) != 0 {
		t.Fatalf("no -target => no animator, got %d", len(cfg.Animators))
	}
}

func TestApplyRunFlags_TargetAnimator(t *testing.T) {
	cfg := config.Default()
	o := runFlags{
		targets:   multiFlag{"Blob 1", "Blob 2"},
		filter:    "fx",
		mode:      config.ModeSlots,
		source:    "range",
		noteRange: "48-72",
		channel:   1,
		intensity: 4,
	}
	if err := applyRunFlags(cfg, o, map[string]bool{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Animators) != 1 {
		t.Fatalf("expected 1 animator, got %d", len(cfg.Animators))
	}
	a := cfg.Animators[0]
	if a.Lowest != 48 || a.Highest == nil || *a.Highest != 72 || a.Channel != 1 {
		t.Fatalf("animator => %+v", a)
	}
	want := []config.TargetRef{{Source: "Blob 1", Filter: "fx"}, {Source: "Blob 2", Filter: "fx"}}
	if !reflect.DeepEqual(a.Targets, want) {
		t.Fatalf("targets => %#v", a.Targets)
	}
	if a.IntensitySpeed != 4 {
		t.Fatalf("intensity => %v", a.IntensitySpeed)
	}
}

func TestApplyRunFlags_Invalid(t *testing.T) {
	cases := []runFlags{
		{targets: multiFlag{"A"}, mode: "bogus", source: "all"},
		{targets: multiFlag{"A"}, mode: config.ModeSlots, source: "all", notes: "300"},
		{targets: multiFlag{"A"}, mode: config.ModeSlots, source: "all", channel: 17},
	}
	for i, o := range cases {
		if err := applyRunFlags(config.Default(), o, map[string]bool{}); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
}

func TestLoadConfig_ExplicitMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.json")
	if _, err := loadConfig(path); err == nil {
		t.Fatalf("expected error for missing explicit config")
	}
}

func TestLoadConfig_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vfxmidi.yaml")
	data := []byte("obs:\n  addr: 192.168.0.5:4455\nfps: 50\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.OBS.Addr != "192.168.0.5:4455" || cfg.FPS != 50 {
		t.Fatalf("config => %+v", cfg)
	}
	if cfg.OBS.Timeout != "2s" {
		t.Fatalf("defaults should survive, timeout=%q", cfg.OBS.Timeout)
	}
}

func TestSetupGroups(t *testing.T) {
	cfg := config.Default()
	cfg.Animators = []config.AnimatorConfig{{
		Targets: []config.TargetRef{
			{Source: "Blob 1"},
			{Source: "Blob 2", Filter: "other"},
			{Source: "Blob 1"},
		},
	}}
	got := setupGroups(cfg, []string{"Extra", "Extra"}, "")
	want := map[string][]string{
		config.DefaultFilterName: {"Extra", "Blob 1"},
		"other":                  {"Blob 2"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("groups => %#v", got)
	}
}

func TestGenerateAndEncodeConfig(t *testing.T) {
	found := []obsws.FoundFilter{
		{Source: "Blob 1", Filter: "vfxmidi", Kind: obsws.DefaultFilterKind},
		{Source: "Blob 2", Filter: "vfxmidi", Kind: obsws.DefaultFilterKind},
	}
	cfg := generateConfig(found, "ws://127.0.0.1:4455/", "pw", 30)
	if cfg.OBS.Addr != "127.0.0.1:4455" {
		t.Fatalf("addr => %q", cfg.OBS.Addr)
	}
	if len(cfg.Animators) != 1 || len(cfg.Animators[0].Targets) != 2 {
		t.Fatalf("animators => %+v", cfg.Animators)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("generated config should validate: %v", err)
	}

	js, err := encodeConfig(cfg, "json")
	if err != nil || !strings.Contains(string(js), `"source": "Blob 2"`) {
		t.Fatalf("json => %s (%v)", js, err)
	}
	ym, err := encodeConfig(cfg, "yaml")
	if err != nil || !strings.Contains(string(ym), "source: Blob 1") {
		t.Fatalf("yaml => %s (%v)", ym, err)
	}
	if _, err := encodeConfig(cfg, "toml"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}
