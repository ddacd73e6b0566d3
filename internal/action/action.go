// Package action は MIDI コントロールを名前付きの入力アクション（0..1 のスカラー値）
// として扱う。値の変化は Started/Performed/Canceled の各フェーズで通知される。
package action

import (
	"fmt"
	"strconv"
	"strings"

	"vfxmidi/internal/midi"
)

// Phase はアクションの状態遷移。
type Phase int

const (
	// Started は値が 0 から離れたとき。
	Started Phase = iota
	// Performed は 0 以外の値に変化するたび。
	Performed
	// Canceled は値が 0 に戻ったとき。
	Canceled
)

func (p Phase) String() string {
	switch p {
	case Started:
		return "started"
	case Performed:
		return "performed"
	case Canceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Context はコールバックに渡される情報。
type Context struct {
	Action *Action
	Phase  Phase
	Value  float32
}

// Performed は Phase が Performed かを返す。
func (c Context) Performed() bool { return c.Phase == Performed }

// BindingKind は MIDI 側の入力元。
type BindingKind string

const (
	BindCC   BindingKind = "cc"
	BindNote BindingKind = "note"
)

// Binding はアクションに結び付ける MIDI コントロール。Channel 0 は全チャネル。
type Binding struct {
	Kind    BindingKind
	Channel int
	Number  int
}

// ParseBinding は "cc:1:74" / "note:10:36" / "cc:*:1" 形式を解析する。
func ParseBinding(s string) (Binding, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return Binding{}, fmt.Errorf("binding は kind:ch:number 形式で指定してください: %q", s)
	}
	var b Binding
	switch BindingKind(strings.ToLower(strings.TrimSpace(parts[0]))) {
	case BindCC:
		b.Kind = BindCC
	case BindNote:
		b.Kind = BindNote
	default:
		return Binding{}, fmt.Errorf("binding の kind は cc|note: %q", parts[0])
	}
	if ch := strings.TrimSpace(parts[1]); ch != "*" && ch != "" {
		v, err := strconv.Atoi(ch)
		if err != nil || v < 1 || v > 16 {
			return Binding{}, fmt.Errorf("binding のチャネルは 1-16 か *: %q", parts[1])
		}
		b.Channel = v
	}
	n, err := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil || n < 0 || n > 127 {
		return Binding{}, fmt.Errorf("binding の番号は 0-127: %q", parts[2])
	}
	b.Number = n
	return b, nil
}

func (b Binding) String() string {
	ch := "*"
	if b.Channel > 0 {
		ch = strconv.Itoa(b.Channel)
	}
	return fmt.Sprintf("%s:%s:%d", b.Kind, ch, b.Number)
}

// value は e がこのバインディングに該当すれば新しい値を返す。
func (b Binding) value(e midi.Event) (float32, bool) {
	if b.Channel > 0 && int(e.Channel) != b.Channel {
		return 0, false
	}
	if int(e.Data1) != b.Number {
		return 0, false
	}
	switch {
	case b.Kind == BindCC && e.Type == midi.ControlChange:
		return e.Velocity(), true
	case b.Kind == BindNote && e.Type == midi.NoteOn:
		return e.Velocity(), true
	case b.Kind == BindNote && e.Type == midi.NoteOff:
		return 0, true
	}
	return 0, false
}

type handler struct {
	id int
	fn func(Context)
}

// Action は名前付きの入力アクション。フレームループと同じゴルーチンから使う。
type Action struct {
	Name    string
	Binding Binding

	value    float32
	enabled  bool
	handlers []handler
	nextID   int
}

// New は無効状態のアクションを作る。
func New(name string, b Binding) *Action {
	return &Action{Name: name, Binding: b}
}

func (a *Action) Enable()       { a.enabled = true }
func (a *Action) Enabled() bool { return a.enabled }

// Disable は入力の受け付けを止める。値が残っていれば Canceled を通知する。
func (a *Action) Disable() {
	if a.value != 0 {
		a.SetValue(0)
	}
	a.enabled = false
}

// ReadValue は最後の値を返す。
func (a *Action) ReadValue() float32 { return a.value }

// Subscribe は fn を登録し、解除関数を返す。
func (a *Action) Subscribe(fn func(Context)) (unsubscribe func()) {
	id := a.nextID
	a.nextID++
	a.handlers = append(a.handlers, handler{id: id, fn: fn})
	return func() {
		for i, h := range a.handlers {
			if h.id == id {
				a.handlers = append(a.handlers[:i:i], a.handlers[i+1:]...)
				return
			}
		}
	}
}

// Handle は e がバインディングに該当すれば値を更新する。無効時は無視。
func (a *Action) Handle(e midi.Event) bool {
	if !a.enabled {
		return false
	}
	v, ok := a.Binding.value(e)
	if !ok {
		return false
	}
	a.SetValue(v)
	return true
}

// SetValue は値を更新し、変化に応じたフェーズを通知する。無効時も値は更新する。
func (a *Action) SetValue(v float32) {
	prev := a.value
	if v == prev {
		return
	}
	a.value = v
	switch {
	case v == 0:
		a.emit(Canceled, v)
	case prev == 0:
		a.emit(Started, v)
		a.emit(Performed, v)
	default:
		a.emit(Performed, v)
	}
}

func (a *Action) emit(p Phase, v float32) {
	ctx := Context{Action: a, Phase: p, Value: v}
	for _, h := range append([]handler(nil), a.handlers...) {
		h.fn(ctx)
	}
}
