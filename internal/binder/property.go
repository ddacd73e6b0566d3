package binder

import (
	"fmt"
	"log"

	"vfxmidi/internal/action"
	"vfxmidi/internal/effect"
)

// DefaultProperty は未指定時のプロパティ名。
const DefaultProperty = "FloatProperty"

// PropertyBinder は毎フレーム、アクションの値を float プロパティへ書き込む。
type PropertyBinder struct {
	Target   effect.Target
	Property string
	Action   *action.Action
}

func (b *PropertyBinder) property() string {
	if b.Property == "" {
		return DefaultProperty
	}
	return b.Property
}

// IsValid はアクションがあり、ターゲットがプロパティを持つかを返す。
func (b *PropertyBinder) IsValid() bool {
	return b.Action != nil && b.Target != nil && b.Target.HasFloat(b.property())
}

func (b *PropertyBinder) Enable() {
	if b.Action != nil {
		b.Action.Enable()
	}
}

func (b *PropertyBinder) Disable() {
	if b.Action != nil {
		b.Action.Disable()
	}
}

func (b *PropertyBinder) Update() {
	if !b.IsValid() {
		return
	}
	setProperty(b.Target, b.property(), b.Action.ReadValue())
}

func (b *PropertyBinder) String() string {
	return fmt.Sprintf("Input Action: '%s' -> %s", b.property(), actionName(b.Action))
}

// PlayerPropertyBinder は Map 内のアクションを名前で選ぶ PropertyBinder。
// 最初に見つかったアクションをキャッシュする。
type PlayerPropertyBinder struct {
	Target     effect.Target
	Property   string
	Input      *action.Map
	ActionName string

	cached *action.Action
}

func (b *PlayerPropertyBinder) property() string {
	if b.Property == "" {
		return DefaultProperty
	}
	return b.Property
}

func (b *PlayerPropertyBinder) IsValid() bool {
	return b.Input != nil && b.ActionName != "" &&
		b.Input.FindAction(b.ActionName) != nil &&
		b.Target != nil && b.Target.HasFloat(b.property())
}

func (b *PlayerPropertyBinder) Enable()  {}
func (b *PlayerPropertyBinder) Disable() {}

func (b *PlayerPropertyBinder) Update() {
	if !b.IsValid() {
		return
	}
	if b.cached == nil {
		b.cached = b.Input.FindAction(b.ActionName)
	}
	setProperty(b.Target, b.property(), b.cached.ReadValue())
}

func (b *PlayerPropertyBinder) String() string {
	return fmt.Sprintf("Player Input: '%s' -> %s", b.property(), b.ActionName)
}

func setProperty(t effect.Target, name string, v float32) {
	if err := t.SetFloat(name, v); err != nil {
		log.Printf("[DEBUG] %s.%s の設定に失敗: %v", t.Name(), name, err)
	}
	if err := effect.Flush(t); err != nil {
		log.Printf("[DEBUG] %s の反映に失敗: %v", t.Name(), err)
	}
}
