// Package binder は入力アクションの値をエフェクトのイベントやプロパティへ流す。
package binder

import (
	"fmt"
	"log"

	"vfxmidi/internal/action"
	"vfxmidi/internal/effect"
)

// Binder は開始/停止を持つバインダー。Update はフレームごとに呼ばれる。
type Binder interface {
	fmt.Stringer
	Enable()
	Disable()
	Update()
}

// EventBinder はアクションが Performed になるたびに、値を alpha として
// 指定イベントを送る。
type EventBinder struct {
	Target    effect.Target
	EventName string
	Action    *action.Action

	unsubscribe func()
}

func (b *EventBinder) Enable() {
	if b.Action == nil || b.unsubscribe != nil {
		return
	}
	b.unsubscribe = b.Action.Subscribe(b.onPerformed)
	b.Action.Enable()
}

func (b *EventBinder) Disable() {
	if b.unsubscribe == nil {
		return
	}
	b.unsubscribe()
	b.unsubscribe = nil
	b.Action.Disable()
}

func (b *EventBinder) Update() {}

func (b *EventBinder) onPerformed(c action.Context) {
	if b.Target == nil || !c.Performed() {
		return
	}
	send(b.Target, b.EventName, c.Value)
}

func (b *EventBinder) String() string {
	return fmt.Sprintf("Input Action Event: %s -> '%s'", actionName(b.Action), b.EventName)
}

// PlayerEventBinder は Map のどのアクションでも、Performed のたびに
// "On" + アクション名 のイベントを送る。
type PlayerEventBinder struct {
	Input  *action.Map
	Target effect.Target

	unsubscribe func()
}

func (b *PlayerEventBinder) Enable() {
	if b.Input == nil || b.unsubscribe != nil {
		return
	}
	b.unsubscribe = b.Input.OnActionTriggered(b.onTriggered)
}

func (b *PlayerEventBinder) Disable() {
	if b.unsubscribe == nil {
		return
	}
	b.unsubscribe()
	b.unsubscribe = nil
}

func (b *PlayerEventBinder) Update() {}

func (b *PlayerEventBinder) onTriggered(c action.Context) {
	if b.Target == nil || !c.Performed() {
		return
	}
	send(b.Target, "On"+c.Action.Name, c.Value)
}

func (b *PlayerEventBinder) String() string {
	return fmt.Sprintf("Player Input Event: * -> '%s'", targetName(b.Target))
}

func send(t effect.Target, name string, v float32) {
	if err := t.SendEvent(name, effect.Attributes{effect.AttrAlpha: v}); err != nil {
		log.Printf("[WARN] %s へのイベント %s 送信に失敗: %v", t.Name(), name, err)
	}
}

func actionName(a *action.Action) string {
	if a == nil {
		return "<none>"
	}
	return a.Name
}

func targetName(t effect.Target) string {
	if t == nil {
		return "<none>"
	}
	return t.Name()
}
