package obsws

import (
	"fmt"
	"sync"
	"time"

	"github.com/andreykaipov/goobs/api/requests/filters"
	"github.com/andreykaipov/goobs/api/requests/general"
	"github.com/google/uuid"

	"vfxmidi/internal/effect"
)

// CustomEventType は BroadcastCustomEvent の eventData.type に入る値。
const CustomEventType = "vfxmidi"

// backend は FilterTarget が使う obs-websocket リクエスト。
type backend struct {
	get       func() (map[string]any, error)
	set       func(settings map[string]any) error
	broadcast func(data map[string]any) error
}

// FilterTarget は OBS ソースのフィルタ1つをエフェクトとして扱う。
// フィルタ設定の数値項目がパラメータ、イベントはカスタムイベントとして配信する。
type FilterTarget struct {
	Source string
	Filter string

	be      backend
	timeout time.Duration

	mu      sync.Mutex
	params  map[string]bool
	pending map[string]any
}

// OpenFilterTarget は pool 経由で addr の source/filter を開き、現在の設定を読み込む。
// リクエストが失敗した接続は破棄され、次回のリクエストで再接続される。
func OpenFilterTarget(pool *Pool, addr, source, filter string, timeout time.Duration) (*FilterTarget, error) {
	call := func(fn func() error) error {
		err := withTimeout(fn, timeout)
		if err != nil {
			pool.Drop(addr)
		}
		return err
	}
	be := backend{
		get: func() (map[string]any, error) {
			cli, err := pool.Get(addr)
			if err != nil {
				return nil, err
			}
			settings, err := callTimeout(func() (map[string]any, error) {
				resp, err := cli.Filters.GetSourceFilter(&filters.GetSourceFilterParams{
					SourceName: &source,
					FilterName: &filter,
				})
				if err != nil {
					return nil, err
				}
				return resp.FilterSettings, nil
			}, timeout)
			if err != nil {
				pool.Drop(addr)
			}
			return settings, err
		},
		set: func(settings map[string]any) error {
			cli, err := pool.Get(addr)
			if err != nil {
				return err
			}
			overlay := true
			return call(func() error {
				_, err := cli.Filters.SetSourceFilterSettings(&filters.SetSourceFilterSettingsParams{
					SourceName:     &source,
					FilterName:     &filter,
					FilterSettings: settings,
					Overlay:        &overlay,
				})
				return err
			})
		},
		broadcast: func(data map[string]any) error {
			cli, err := pool.Get(addr)
			if err != nil {
				return err
			}
			return call(func() error {
				_, err := cli.General.BroadcastCustomEvent(&general.BroadcastCustomEventParams{EventData: data})
				return err
			})
		},
	}
	t := newFilterTarget(source, filter, be, timeout)
	if err := t.Refresh(); err != nil {
		return nil, fmt.Errorf("フィルタ %s の取得に失敗: %w", t.Name(), err)
	}
	return t, nil
}

func newFilterTarget(source, filter string, be backend, timeout time.Duration) *FilterTarget {
	return &FilterTarget{
		Source:  source,
		Filter:  filter,
		be:      be,
		timeout: timeout,
		params:  map[string]bool{},
		pending: map[string]any{},
	}
}

// Refresh はフィルタ設定を読み直し、数値項目をパラメータとして登録する。
func (t *FilterTarget) Refresh() error {
	settings, err := t.be.get()
	if err != nil {
		return err
	}
	params := map[string]bool{}
	for k, v := range settings {
		if isNumber(v) {
			params[k] = true
		}
	}
	t.mu.Lock()
	t.params = params
	t.mu.Unlock()
	return nil
}

// Params はパラメータ名の数。
func (t *FilterTarget) Params() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.params)
}

func (t *FilterTarget) Name() string { return t.Source + "/" + t.Filter }

func (t *FilterTarget) has(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.params[name]
}

// OBS の設定値は JSON 数値なので float と uint の区別はない。
func (t *FilterTarget) HasFloat(name string) bool { return t.has(name) }
func (t *FilterTarget) HasUInt(name string) bool  { return t.has(name) }

func (t *FilterTarget) SetFloat(name string, v float32) error {
	return t.stage(name, float64(v))
}

func (t *FilterTarget) SetUInt(name string, v uint32) error {
	return t.stage(name, v)
}

func (t *FilterTarget) stage(name string, v any) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.params[name] {
		return fmt.Errorf("%s: parameter %q not found", t.Name(), name)
	}
	t.pending[name] = v
	return nil
}

// Flush は溜まった変更を1回の SetSourceFilterSettings で送る。失敗した変更は保持され、次回の Flush で再送される。
func (t *FilterTarget) Flush() error {
	t.mu.Lock()
	if len(t.pending) == 0 {
		t.mu.Unlock()
		return nil
	}
	settings := t.pending
	t.pending = map[string]any{}
	t.mu.Unlock()
	if err := t.be.set(settings); err != nil {
		// 送れなかった値は次回に回す。その間に書かれた新しい値を優先する。
		t.mu.Lock()
		for k, v := range settings {
			if _, ok := t.pending[k]; !ok {
				t.pending[k] = v
			}
		}
		t.mu.Unlock()
		return err
	}
	return nil
}

// SendEvent は未送信の変更を先に反映してから、カスタムイベントを配信する。
func (t *FilterTarget) SendEvent(name string, attr effect.Attributes) error {
	if err := t.Flush(); err != nil {
		return err
	}
	data := map[string]any{
		"type":   CustomEventType,
		"event":  name,
		"source": t.Source,
		"filter": t.Filter,
		"id":     uuid.NewString(),
	}
	for k, v := range attr {
		data[k] = float64(v)
	}
	return t.be.broadcast(data)
}

func isNumber(v any) bool {
	switch v.(type) {
	case float64, float32, int, int64, int32, uint, uint32, uint64:
		return true
	default:
		return false
	}
}
