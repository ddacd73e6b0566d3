// Package animator は MIDI ノートをエフェクトのパラメータとイベントに変換する。
//
// SlotAnimator は固定数のエフェクトをノートに先着順で割り当て、GateAnimator は
// 1つのエフェクトを全ノート共通の on/off で動かす。どちらも Update で経過時間を
// 進め、毎フレーム NoteOnTime/NoteOffTime を書き込む。
package animator

import "vfxmidi/internal/midi"

// Animator はフレームループから駆動されるアニメーター。
type Animator interface {
	Name() string
	// HandleEvent はフィルタを通ったノートイベントを処理し、処理したかを返す。
	HandleEvent(e midi.Event) bool
	// TestTrigger は入力アクションからの手動トリガー。v>0 で on、それ以外で off。
	TestTrigger(v float32)
	// Update は dt 秒進めてパラメータを書き込む。
	Update(dt float32)
}

func noteEvent(f Filter, e midi.Event) (on bool, ok bool) {
	if e.Type != midi.NoteOn && e.Type != midi.NoteOff {
		return false, false
	}
	if !f.Match(e.Channel, e.Data1) {
		return false, false
	}
	return e.Type == midi.NoteOn, true
}
