package midi

import "time"

// Decode は生バイトを受け取り、代表的なチャンネルメッセージのみ正規化する。
// Realtime/System Common と未対応メッセージは ok=false。
func Decode(bt []byte, now time.Time) (Event, bool) {
	if len(bt) == 0 {
		return Event{}, false
	}
	status := bt[0]
	if status < 0x80 || status >= 0xF0 {
		return Event{}, false
	}
	typ := status >> 4
	ch := (status & 0x0F) + 1 // 1-16

	switch typ {
	case 0x08: // NoteOff
		if len(bt) >= 3 {
			return Event{Type: NoteOff, Channel: ch, Data1: bt[1] & 0x7F, Data2: bt[2] & 0x7F, Time: now}, true
		}
	case 0x09: // NoteOn（Vel==0 は NoteOff）
		if len(bt) >= 3 {
			vel := bt[2] & 0x7F
			t := NoteOn
			if vel == 0 {
				t = NoteOff
			}
			return Event{Type: t, Channel: ch, Data1: bt[1] & 0x7F, Data2: vel, Time: now}, true
		}
	case 0x0B: // ControlChange
		if len(bt) >= 3 {
			return Event{Type: ControlChange, Channel: ch, Data1: bt[1] & 0x7F, Data2: bt[2] & 0x7F, Time: now}, true
		}
	case 0x0C: // ProgramChange
		if len(bt) >= 2 {
			return Event{Type: ProgramChange, Channel: ch, Data1: bt[1] & 0x7F, Time: now}, true
		}
	}
	return Event{}, false
}
