package effect

import (
	"fmt"
	"log"
	"sync"
)

// SentEvent は Recorder が受け取ったイベント。
type SentEvent struct {
	Name string
	Attr Attributes
}

// Recorder はメモリ上の Target。テストと -dry-run で使う。
// 宣言されたパラメータだけを「存在する」と扱う。
type Recorder struct {
	name string
	// Verbose が true なら変更をログへ出す（-dry-run 用）。
	Verbose bool

	mu     sync.Mutex
	floats map[string]float32
	uints  map[string]uint32
	events []SentEvent
}

// NewRecorder は floats/uints の名前を持つ Recorder を作る。
func NewRecorder(name string, floats []string, uints []string) *Recorder {
	r := &Recorder{name: name, floats: map[string]float32{}, uints: map[string]uint32{}}
	for _, f := range floats {
		r.floats[f] = 0
	}
	for _, u := range uints {
		r.uints[u] = 0
	}
	return r
}

// NewSlotRecorder は既定のスロット用パラメータをすべて持つ Recorder を作る。
func NewSlotRecorder(name string) *Recorder {
	return NewRecorder(name,
		[]string{ParamVelocity, ParamNoteOnTime, ParamNoteOffTime, ParamIntensity},
		[]string{ParamNoteNumber})
}

func (r *Recorder) Name() string { return r.name }

func (r *Recorder) HasFloat(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.floats[name]
	return ok
}

func (r *Recorder) SetFloat(name string, v float32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.floats[name]; !ok {
		return fmt.Errorf("%s: float parameter %q not found", r.name, name)
	}
	if r.Verbose && r.floats[name] != v && name != ParamNoteOnTime && name != ParamNoteOffTime {
		log.Printf("[DEBUG] %s.%s = %.3f", r.name, name, v)
	}
	r.floats[name] = v
	return nil
}

func (r *Recorder) HasUInt(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.uints[name]
	return ok
}

func (r *Recorder) SetUInt(name string, v uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.uints[name]; !ok {
		return fmt.Errorf("%s: uint parameter %q not found", r.name, name)
	}
	if r.Verbose {
		log.Printf("[DEBUG] %s.%s = %d", r.name, name, v)
	}
	r.uints[name] = v
	return nil
}

func (r *Recorder) SendEvent(name string, attr Attributes) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var cp Attributes
	if attr != nil {
		cp = make(Attributes, len(attr))
		for k, v := range attr {
			cp[k] = v
		}
	}
	r.events = append(r.events, SentEvent{Name: name, Attr: cp})
	if r.Verbose {
		log.Printf("[INFO] %s <- %s %v", r.name, name, cp)
	}
	return nil
}

// Float は現在値を返す。
func (r *Recorder) Float(name string) float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.floats[name]
}

// UInt は現在値を返す。
func (r *Recorder) UInt(name string) uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.uints[name]
}

// Events は受け取ったイベントのコピー。
func (r *Recorder) Events() []SentEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]SentEvent(nil), r.events...)
}

// EventNames は受け取ったイベント名を順に返す。
func (r *Recorder) EventNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Name
	}
	return out
}
