// Package effect は MIDI/入力アクションから駆動されるビジュアルエフェクトの
// 抽象（パラメータと名前付きイベント）を定義する。
package effect

// 既定のパラメータ名とイベント名。
const (
	ParamVelocity    = "Velocity"
	ParamNoteNumber  = "NoteNumber"
	ParamNoteOnTime  = "NoteOnTime"
	ParamNoteOffTime = "NoteOffTime"
	ParamIntensity   = "Intensity"

	EventNoteOn  = "OnNoteOn"
	EventNoteOff = "OnNoteOff"

	// AttrAlpha はイベントに添付するスカラー値の名前。
	AttrAlpha = "alpha"
)

// Attributes はイベントに添付する任意のスカラー値。nil は添付なし。
type Attributes map[string]float32

// Target はパラメータを持つ1つのエフェクトインスタンス。
// Has* で存在を確かめてから Set* するのが呼び出し側の約束。
type Target interface {
	Name() string
	HasFloat(name string) bool
	SetFloat(name string, v float32) error
	HasUInt(name string) bool
	SetUInt(name string, v uint32) error
	SendEvent(name string, attr Attributes) error
}

// Flusher はパラメータ変更をまとめて送る Target が実装する。
// フレームの最後に1回呼ばれる。
type Flusher interface {
	Flush() error
}

// Flush は t が Flusher なら Flush を呼ぶ。
func Flush(t Target) error {
	if f, ok := t.(Flusher); ok {
		return f.Flush()
	}
	return nil
}

// DefaultParams はスロット用フィルタを作るときの初期パラメータ。
// タイマーは「ずっと昔」を表す 1e6 秒から始まる。
func DefaultParams() map[string]any {
	return map[string]any{
		ParamVelocity:    0.0,
		ParamNoteNumber:  0,
		ParamNoteOnTime:  1e6,
		ParamNoteOffTime: 1e6,
		ParamIntensity:   0.0,
	}
}
