package action

import (
	"strings"

	"vfxmidi/internal/midi"
)

// Map はアクションの集合（プレイヤー入力）。どのアクションの通知もまとめて受け取れる。
type Map struct {
	actions  []*Action
	handlers []handler
	nextID   int
}

// NewMap は actions を持つ Map を作る。
func NewMap(actions ...*Action) *Map {
	m := &Map{}
	for _, a := range actions {
		m.Add(a)
	}
	return m
}

// Add はアクションを追加する。
func (m *Map) Add(a *Action) {
	m.actions = append(m.actions, a)
	a.Subscribe(func(c Context) {
		for _, h := range append([]handler(nil), m.handlers...) {
			h.fn(c)
		}
	})
}

// Actions は登録順のアクション一覧。
func (m *Map) Actions() []*Action { return m.actions }

// FindAction は名前（大文字小文字無視）でアクションを探す。無ければ nil。
func (m *Map) FindAction(name string) *Action {
	name = strings.TrimSpace(name)
	for _, a := range m.actions {
		if strings.EqualFold(a.Name, name) {
			return a
		}
	}
	return nil
}

// Enable は全アクションを有効にする。
func (m *Map) Enable() {
	for _, a := range m.actions {
		a.Enable()
	}
}

// Disable は全アクションを無効にする。
func (m *Map) Disable() {
	for _, a := range m.actions {
		a.Disable()
	}
}

// OnActionTriggered はどのアクションの通知でも呼ばれる fn を登録し、解除関数を返す。
func (m *Map) OnActionTriggered(fn func(Context)) (unsubscribe func()) {
	id := m.nextID
	m.nextID++
	m.handlers = append(m.handlers, handler{id: id, fn: fn})
	return func() {
		for i, h := range m.handlers {
			if h.id == id {
				m.handlers = append(m.handlers[:i:i], m.handlers[i+1:]...)
				return
			}
		}
	}
}

// Handle は e を全アクションへ渡し、反応したアクション数を返す。
func (m *Map) Handle(e midi.Event) int {
	n := 0
	for _, a := range m.actions {
		if a.Handle(e) {
			n++
		}
	}
	return n
}
