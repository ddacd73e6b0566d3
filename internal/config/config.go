// Package config は vfxmidi の設定ファイル（JSON または YAML）を扱う。
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"vfxmidi/internal/action"
	"vfxmidi/internal/animator"
)

// Config は実行時設定のすべて。
type Config struct {
	OBS       OBSConfig        `json:"obs" yaml:"obs"`
	MIDI      MidiConfig       `json:"midi" yaml:"midi"`
	FPS       int              `json:"fps" yaml:"fps"`
	Actions   []ActionConfig   `json:"actions" yaml:"actions"`
	Animators []AnimatorConfig `json:"animators" yaml:"animators"`
	Binders   []BinderConfig   `json:"binders" yaml:"binders"`
}

type OBSConfig struct {
	Addr     string `json:"addr" yaml:"addr"` // host:port （ws:// 不要）
	Password string `json:"password" yaml:"password"`
	Timeout  string `json:"timeout" yaml:"timeout"` // 例: "2s"
}

type MidiConfig struct {
	// Device は購読するデバイス名の部分一致。空なら全デバイス。
	Device       string `json:"device" yaml:"device"`
	PollInterval string `json:"poll_interval" yaml:"poll_interval"` // 例: "1s"
}

// TargetRef は OBS のソースとそのフィルタ。
type TargetRef struct {
	Source string `json:"source" yaml:"source"`
	Filter string `json:"filter,omitempty" yaml:"filter,omitempty"` // 省略時 "vfxmidi"
}

// FilterName は省略時の既定値を補ったフィルタ名。
func (t TargetRef) FilterName() string {
	if strings.TrimSpace(t.Filter) == "" {
		return DefaultFilterName
	}
	return t.Filter
}

type ActionConfig struct {
	Name    string `json:"name" yaml:"name"`
	Binding string `json:"binding" yaml:"binding"` // 例: "cc:1:74", "note:*:36"
}

type AnimatorConfig struct {
	Name           string      `json:"name" yaml:"name"`
	Mode           string      `json:"mode" yaml:"mode"` // slots|gate
	Channel        int         `json:"channel" yaml:"channel"`
	Source         string      `json:"source" yaml:"source"` // all|notes|range
	Notes          []int       `json:"notes,omitempty" yaml:"notes,omitempty"`
	Lowest         int         `json:"lowest,omitempty" yaml:"lowest,omitempty"`
	Highest        *int        `json:"highest,omitempty" yaml:"highest,omitempty"`
	IntensitySpeed float32     `json:"intensity_speed,omitempty" yaml:"intensity_speed,omitempty"`
	TestAction     string      `json:"test_action,omitempty" yaml:"test_action,omitempty"`
	Targets        []TargetRef `json:"targets" yaml:"targets"`
}

type BinderConfig struct {
	Kind     string    `json:"kind" yaml:"kind"` // event|player_event|property|player_property
	Action   string    `json:"action,omitempty" yaml:"action,omitempty"`
	Event    string    `json:"event,omitempty" yaml:"event,omitempty"`
	Property string    `json:"property,omitempty" yaml:"property,omitempty"`
	Target   TargetRef `json:"target" yaml:"target"`
}

const (
	ModeSlots = "slots"
	ModeGate  = "gate"

	BindEvent          = "event"
	BindPlayerEvent    = "player_event"
	BindProperty       = "property"
	BindPlayerProperty = "player_property"

	DefaultFilterName = "vfxmidi"
	DefaultFPS        = 30
)

func Default() *Config {
	return &Config{
		OBS:  OBSConfig{Addr: "127.0.0.1:4455", Timeout: "2s"},
		MIDI: MidiConfig{PollInterval: "1s"},
		FPS:  DefaultFPS,
	}
}

// Filter は AnimatorConfig をノートフィルタに変換する。
func (a AnimatorConfig) Filter() (animator.Filter, error) {
	src, err := animator.ParseSource(a.Source)
	if err != nil {
		return animator.Filter{}, err
	}
	f := animator.DefaultFilter()
	f.Channel = animator.Channel(a.Channel)
	f.Source = src
	if len(a.Notes) > 0 {
		f.Notes = a.Notes
	}
	f.Lowest = a.Lowest
	if a.Highest != nil {
		f.Highest = *a.Highest
	}
	return f, f.Validate()
}

// Validate は設定の整合性を検査する。最初に見つかった問題を返す。
func (c *Config) Validate() error {
	if c.FPS < 0 || c.FPS > 240 {
		return fmt.Errorf("fps は 0(既定) か 1..240: %d", c.FPS)
	}
	if _, err := ParseDuration(c.OBS.Timeout, 0); err != nil {
		return fmt.Errorf("obs.timeout: %w", err)
	}
	if _, err := ParseDuration(c.MIDI.PollInterval, 0); err != nil {
		return fmt.Errorf("midi.poll_interval: %w", err)
	}
	names := map[string]bool{}
	for i, a := range c.Actions {
		if strings.TrimSpace(a.Name) == "" {
			return fmt.Errorf("actions[%d]: name が空です", i)
		}
		key := strings.ToLower(a.Name)
		if names[key] {
			return fmt.Errorf("actions[%d]: 重複したアクション名 %q", i, a.Name)
		}
		names[key] = true
		if _, err := action.ParseBinding(a.Binding); err != nil {
			return fmt.Errorf("actions[%d]: %w", i, err)
		}
	}
	for i, a := range c.Animators {
		switch strings.ToLower(a.Mode) {
		case "", ModeSlots:
			if len(a.Targets) == 0 {
				return fmt.Errorf("animators[%d]: targets が空です", i)
			}
		case ModeGate:
			if len(a.Targets) > 1 {
				return fmt.Errorf("animators[%d]: gate の target は1つまでです", i)
			}
		default:
			return fmt.Errorf("animators[%d]: mode は slots|gate: %q", i, a.Mode)
		}
		if _, err := a.Filter(); err != nil {
			return fmt.Errorf("animators[%d]: %w", i, err)
		}
		if a.TestAction != "" && !names[strings.ToLower(a.TestAction)] {
			return fmt.Errorf("animators[%d]: 未定義のアクション %q", i, a.TestAction)
		}
		for j, t := range a.Targets {
			if strings.TrimSpace(t.Source) == "" {
				return fmt.Errorf("animators[%d].targets[%d]: source が空です", i, j)
			}
		}
	}
	for i, b := range c.Binders {
		switch b.Kind {
		case BindEvent, BindProperty, BindPlayerProperty:
			if !names[strings.ToLower(b.Action)] {
				return fmt.Errorf("binders[%d]: 未定義のアクション %q", i, b.Action)
			}
		case BindPlayerEvent:
		default:
			return fmt.Errorf("binders[%d]: kind が不正です: %q", i, b.Kind)
		}
		if b.Kind == BindEvent && strings.TrimSpace(b.Event) == "" {
			return fmt.Errorf("binders[%d]: event が空です", i)
		}
		if strings.TrimSpace(b.Target.Source) == "" {
			return fmt.Errorf("binders[%d]: target.source が空です", i)
		}
	}
	return nil
}

// ParseDuration は空文字なら def を返す。
func ParseDuration(s string, def time.Duration) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	return time.ParseDuration(s)
}

// DefaultPath は OS 毎の規定の設定ディレクトリ配下の保存先。
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "vfxmidi", "config.json"), nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// Load は path の設定を読み込む。拡張子 .yaml/.yml は YAML、それ以外は JSON。
// 無い場合は os.ErrNotExist を返す。未指定の項目は Default の値になる。
func Load(path string) (*Config, error) {
	bt, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, os.ErrNotExist
		}
		return nil, err
	}
	c := Default()
	if isYAML(path) {
		err = yaml.Unmarshal(bt, c)
	} else {
		err = json.Unmarshal(bt, c)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Save は設定を保存する。ディレクトリが無ければ作る。
func Save(path string, c *Config) error {
	if c == nil {
		return errors.New("nil config")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	var bt []byte
	var err error
	if isYAML(path) {
		bt, err = yaml.Marshal(c)
	} else {
		bt, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return err
	}
	// パスワードを含むので本人のみ読めるようにする
	return os.WriteFile(path, bt, 0o600)
}
