// Package engine はフレームループを回し、MIDI イベントとデバイス増減を
// アニメーター・入力アクション・バインダーへ配る。すべて Run のゴルーチン上で動く。
package engine

import (
	"context"
	"log"
	"time"

	"vfxmidi/internal/action"
	"vfxmidi/internal/animator"
	"vfxmidi/internal/binder"
	"vfxmidi/internal/midi"
)

// DeviceSink はデバイス増減を購読状態へ反映する（midi.Hub）。
type DeviceSink interface {
	Apply(c midi.DeviceChange) error
	Devices() []string
}

// DeviceSource は購読に失敗したデバイスを次回の確認で再通知させる（midi.Watcher）。
type DeviceSource interface {
	Forget(name string)
}

// Engine は1つのフレームループ。
type Engine struct {
	fps       int
	animators []animator.Animator
	input     *action.Map
	binders   []binder.Binder
	unsub     []func()

	// Status が設定されていればデバイス増減のたびに状況を報告する。
	Status *midi.StatusReporter
	// Source が設定されていれば、購読に失敗した Added を次回のポーリングで再試行させる。
	Source DeviceSource
	now    func() time.Time
}

// New は fps（0 以下なら 30）で回る Engine を作る。
func New(fps int) *Engine {
	if fps <= 0 {
		fps = 30
	}
	return &Engine{fps: fps, input: action.NewMap(), now: time.Now}
}

// FPS はフレームレート。
func (e *Engine) FPS() int { return e.fps }

// Input は入力アクションの集合。
func (e *Engine) Input() *action.Map { return e.input }

// Animators は登録済みのアニメーター。
func (e *Engine) Animators() []animator.Animator { return e.animators }

// AddAnimator はアニメーターを登録する。test が nil でなければ、その Started/Canceled で
// TestTrigger を呼ぶ。
func (e *Engine) AddAnimator(a animator.Animator, test *action.Action) {
	e.animators = append(e.animators, a)
	if test == nil {
		return
	}
	e.unsub = append(e.unsub, test.Subscribe(func(c action.Context) {
		if c.Phase == action.Started || c.Phase == action.Canceled {
			a.TestTrigger(c.Value)
		}
	}))
	test.Enable()
}

// AddBinder はバインダーを登録する。Enable は Run の開始時に行う。
func (e *Engine) AddBinder(b binder.Binder) {
	e.binders = append(e.binders, b)
}

// Handle は1つの MIDI イベントを処理する。
func (e *Engine) Handle(ev midi.Event) {
	for _, a := range e.animators {
		a.HandleEvent(ev)
	}
	e.input.Handle(ev)
}

// Tick は dt 秒ぶんフレームを進める。
func (e *Engine) Tick(dt float32) {
	for _, a := range e.animators {
		a.Update(dt)
	}
	for _, b := range e.binders {
		b.Update()
	}
}

// Start はバインダーを有効にする。Run が呼ぶ。
func (e *Engine) Start() {
	for _, b := range e.binders {
		b.Enable()
		log.Printf("[DEBUG] バインダー有効化: %s", b)
	}
}

// Stop はバインダーを無効にし、テストトリガーの購読を解除する。
func (e *Engine) Stop() {
	for _, b := range e.binders {
		b.Disable()
	}
	for _, u := range e.unsub {
		u()
	}
	e.unsub = nil
}

// Run は ctx が終わるまでフレームループを回す。events / devices は nil でもよい。
// 閉じられたチャネルはそれ以降無視する。
func (e *Engine) Run(ctx context.Context, events <-chan midi.Event, devices <-chan midi.DeviceChange, sink DeviceSink) {
	e.Start()
	defer e.Stop()

	ticker := time.NewTicker(time.Second / time.Duration(e.fps))
	defer ticker.Stop()
	last := e.now()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			log.Printf("[DEBUG] MIDI: dev=%s type=%s ch=%d data1=%d data2=%d", ev.Device, ev.Type, ev.Channel, ev.Data1, ev.Data2)
			e.Handle(ev)
		case c, ok := <-devices:
			if !ok {
				devices = nil
				continue
			}
			e.applyDevice(c, sink)
		case <-ticker.C:
			now := e.now()
			dt := now.Sub(last).Seconds()
			last = now
			e.Tick(float32(dt))
		}
	}
}

func (e *Engine) applyDevice(c midi.DeviceChange, sink DeviceSink) {
	log.Printf("[DEBUG] デバイス %s: %s", c.Kind, c.Name)
	if sink == nil {
		return
	}
	if err := sink.Apply(c); err != nil {
		if c.Kind == midi.Added && e.Source != nil {
			e.Source.Forget(c.Name)
			log.Printf("[WARN] %v（次回の確認で再試行します）", err)
		} else {
			log.Printf("[WARN] %v", err)
		}
	}
	if e.Status != nil {
		e.Status.Report(sink.Devices())
	}
}
