package midi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDecode(t *testing.T) {
	now := time.Unix(100, 0)
	cases := []struct {
		name string
		in   []byte
		ok   bool
		want Event
	}{
		{"note on", []byte{0x90, 60, 100}, true, Event{Type: NoteOn, Channel: 1, Data1: 60, Data2: 100, Time: now}},
		{"note on vel0 is off", []byte{0x93, 61, 0}, true, Event{Type: NoteOff, Channel: 4, Data1: 61, Time: now}},
		{"note off", []byte{0x8F, 62, 40}, true, Event{Type: NoteOff, Channel: 16, Data1: 62, Data2: 40, Time: now}},
		{"cc", []byte{0xB1, 7, 127}, true, Event{Type: ControlChange, Channel: 2, Data1: 7, Data2: 127, Time: now}},
		{"program", []byte{0xC0, 5}, true, Event{Type: ProgramChange, Channel: 1, Data1: 5, Time: now}},
		{"data bytes masked", []byte{0x90, 0xFF, 0xFF}, true, Event{Type: NoteOn, Channel: 1, Data1: 0x7F, Data2: 0x7F, Time: now}},
		{"clock ignored", []byte{0xF8}, false, Event{}},
		{"sysex ignored", []byte{0xF0, 1, 2, 0xF7}, false, Event{}},
		{"running status ignored", []byte{60, 100}, false, Event{}},
		{"short note", []byte{0x90, 60}, false, Event{}},
		{"pitch bend ignored", []byte{0xE0, 0, 64}, false, Event{}},
		{"empty", nil, false, Event{}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, ok := Decode(c.in, now)
			assert.Equal(t, c.ok, ok)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestEventVelocity(t *testing.T) {
	assert.InDelta(t, 1.0, Event{Data2: 127}.Velocity(), 1e-6)
	assert.InDelta(t, 0.0, Event{}.Velocity(), 1e-6)
}
