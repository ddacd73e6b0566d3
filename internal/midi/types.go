package midi

import "time"

// Type は MIDI イベント種別。
type Type string

const (
	NoteOn        Type = "note_on"
	NoteOff       Type = "note_off"
	ControlChange Type = "control_change"
	ProgramChange Type = "program_change"
)

// Event は正規化されたMIDIイベント。
type Event struct {
	Type    Type
	Channel uint8 // 1-16
	Data1   uint8 // Note番号 / CC番号 / Program番号
	Data2   uint8 // Velocity / CC値（ProgramChangeでは未使用）
	Time    time.Time
	// Device は受信元の入力デバイス名（Hub 経由のときのみ設定される）。
	Device string
}

// Velocity は Data2 を 0..1 に正規化した値。
func (e Event) Velocity() float32 {
	return float32(e.Data2) / 127
}

// Input はオープン済みのMIDI入力デバイスを表す。
type Input interface {
	Close() error
}

// ChangeKind はデバイス増減の種別。
type ChangeKind int

const (
	Added ChangeKind = iota
	Removed
)

func (k ChangeKind) String() string {
	switch k {
	case Added:
		return "added"
	case Removed:
		return "removed"
	default:
		return "unknown"
	}
}

// DeviceChange はデバイスの接続/切断通知。
type DeviceChange struct {
	Name string
	Kind ChangeKind
}
