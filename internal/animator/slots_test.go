package animator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vfxmidi/internal/effect"
	"vfxmidi/internal/midi"
)

func newSlotAnimator(f Filter, n int) (*SlotAnimator, []*effect.Recorder) {
	recs := make([]*effect.Recorder, n)
	targets := make([]effect.Target, n)
	for i := range recs {
		recs[i] = effect.NewSlotRecorder("slot")
		targets[i] = recs[i]
	}
	return NewSlotAnimator("test", f, targets), recs
}

func noteOn(ch, note, vel uint8) midi.Event {
	return midi.Event{Type: midi.NoteOn, Channel: ch, Data1: note, Data2: vel}
}

func noteOff(ch, note uint8) midi.Event {
	return midi.Event{Type: midi.NoteOff, Channel: ch, Data1: note}
}

func TestSlotAnimatorNoteOnOff(t *testing.T) {
	a, recs := newSlotAnimator(DefaultFilter(), 2)

	require.True(t, a.HandleEvent(noteOn(1, 64, 127)))
	assert.Equal(t, uint32(64), recs[0].UInt(effect.ParamNoteNumber))
	assert.Equal(t, float32(1), recs[0].Float(effect.ParamVelocity))
	assert.Equal(t, []string{effect.EventNoteOn}, recs[0].EventNames())
	assert.Empty(t, recs[1].EventNames())

	require.True(t, a.HandleEvent(noteOff(1, 64)))
	assert.Equal(t, []string{effect.EventNoteOn, effect.EventNoteOff}, recs[0].EventNames())
	assert.Equal(t, 0, a.Pool().Active())
}

func TestSlotAnimatorFilteredNoteNeverAllocates(t *testing.T) {
	a, recs := newSlotAnimator(Filter{Channel: 1, Source: NoteNumbers, Notes: []int{36}}, 2)

	assert.False(t, a.HandleEvent(noteOn(1, 37, 100)))
	assert.False(t, a.HandleEvent(noteOn(2, 36, 100)))
	assert.False(t, a.HandleEvent(midi.Event{Type: midi.ControlChange, Channel: 1, Data1: 36, Data2: 1}))
	assert.Equal(t, 0, a.Pool().Active())
	assert.Empty(t, recs[0].EventNames())
}

func TestSlotAnimatorDropsWhenFull(t *testing.T) {
	a, recs := newSlotAnimator(DefaultFilter(), 1)
	a.NoteOn(60, 0.5)
	a.NoteOn(61, 0.5)
	assert.Equal(t, uint32(60), recs[0].UInt(effect.ParamNoteNumber))
	assert.Len(t, recs[0].EventNames(), 1)

	// note-off for the dropped note is a no-op
	a.NoteOff(61)
	assert.Len(t, recs[0].EventNames(), 1)
	assert.Equal(t, 1, a.Pool().Active())
}

func TestSlotAnimatorRejectsOutOfRangeNote(t *testing.T) {
	a, recs := newSlotAnimator(DefaultFilter(), 1)
	a.NoteOn(-1, 1)
	a.NoteOn(128, 1)
	assert.Empty(t, recs[0].EventNames())
	assert.Equal(t, uint32(0), recs[0].UInt(effect.ParamNoteNumber))

	a.NoteOn(127, 1)
	assert.Equal(t, 1, a.Pool().Active())
	assert.Equal(t, uint32(127), recs[0].UInt(effect.ParamNoteNumber))
}

func TestSlotAnimatorUpdatePushesTimers(t *testing.T) {
	a, recs := newSlotAnimator(DefaultFilter(), 2)
	a.NoteOn(60, 1)
	a.Update(0.5)
	assert.InDelta(t, 0.5, recs[0].Float(effect.ParamNoteOnTime), 1e-6)
	assert.Equal(t, float32(0), recs[0].Float(effect.ParamNoteOffTime))
	assert.Equal(t, float32(IdleTime), recs[1].Float(effect.ParamNoteOnTime))

	a.NoteOff(60)
	a.Update(0.25)
	assert.InDelta(t, 0.5, recs[0].Float(effect.ParamNoteOnTime), 1e-6)
	assert.InDelta(t, 0.25, recs[0].Float(effect.ParamNoteOffTime), 1e-6)
}

func TestSlotAnimatorIntensity(t *testing.T) {
	a, recs := newSlotAnimator(DefaultFilter(), 1)
	a.IntensitySpeed = 8
	a.NoteOn(60, 1)
	for i := 0; i < 60; i++ {
		a.Update(1.0 / 60)
	}
	held := recs[0].Float(effect.ParamIntensity)
	assert.Greater(t, held, float32(0.99))

	a.NoteOff(60)
	a.Update(0.5)
	assert.Less(t, recs[0].Float(effect.ParamIntensity), held)
}

func TestSlotAnimatorSkipsMissingParams(t *testing.T) {
	bare := effect.NewRecorder("bare", nil, nil)
	a := NewSlotAnimator("test", DefaultFilter(), []effect.Target{bare, nil})
	a.NoteOn(60, 1)
	a.NoteOn(61, 1) // nil target still owns a slot
	a.Update(0.1)
	a.NoteOff(61)
	assert.Equal(t, []string{effect.EventNoteOn}, bare.EventNames())
	assert.Equal(t, 1, a.Pool().Active())
}

func TestSlotAnimatorTestTrigger(t *testing.T) {
	a, recs := newSlotAnimator(Filter{Source: NoteNumbers, Notes: []int{48}}, 1)
	a.TestTrigger(0.7)
	assert.Equal(t, uint32(48), recs[0].UInt(effect.ParamNoteNumber))
	assert.InDelta(t, 0.7, recs[0].Float(effect.ParamVelocity), 1e-6)
	a.TestTrigger(0)
	assert.Equal(t, 0, a.Pool().Active())
}
