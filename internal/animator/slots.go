package animator

import (
	"log"

	"vfxmidi/internal/effect"
	"vfxmidi/internal/midi"
)

// SlotAnimator はエフェクトのプールをノートに割り当てる。
type SlotAnimator struct {
	name   string
	filter Filter
	pool   *Pool

	// IntensitySpeed が正なら Intensity を押鍵中のベロシティへ指数的に追従させる。
	IntensitySpeed float32
	// TestNote は TestTrigger で使うノート番号。
	TestNote int
}

// NewSlotAnimator は targets 1つにつき1スロットを持つアニメーターを作る。
func NewSlotAnimator(name string, f Filter, targets []effect.Target) *SlotAnimator {
	testNote := 60
	if f.Source == NoteNumbers && len(f.Notes) > 0 {
		testNote = f.Notes[0]
	} else if f.Source == NoteRange {
		testNote = f.Lowest
	}
	return &SlotAnimator{name: name, filter: f, pool: NewPool(targets), TestNote: testNote}
}

func (a *SlotAnimator) Name() string { return a.name }

// Pool はスロットの状態を返す。
func (a *SlotAnimator) Pool() *Pool { return a.pool }

func (a *SlotAnimator) HandleEvent(e midi.Event) bool {
	on, ok := noteEvent(a.filter, e)
	if !ok {
		return false
	}
	if on {
		a.NoteOn(int(e.Data1), e.Velocity())
	} else {
		a.NoteOff(int(e.Data1))
	}
	return true
}

// NoteOn はスロットを割り当てて OnNoteOn を送る。空きが無いか、note が 0..127 の
// 範囲外なら捨てる。
func (a *SlotAnimator) NoteOn(note int, velocity float32) {
	if note < 0 || note > 127 {
		log.Printf("[DEBUG] %s: 範囲外のノート %d を破棄", a.name, note)
		return
	}
	s := a.pool.Allocate(note, velocity)
	if s == nil {
		log.Printf("[DEBUG] %s: 空きスロットなし、Note%d を破棄", a.name, note)
		return
	}
	setUInt(s.Target, effect.ParamNoteNumber, uint32(note))
	setFloat(s.Target, effect.ParamVelocity, velocity)
	sendEvent(s.Target, effect.EventNoteOn, nil)
}

// NoteOff は note のスロットへ OnNoteOff を送り解放する。該当が無ければ何もしない。
func (a *SlotAnimator) NoteOff(note int) {
	s := a.pool.Release(note)
	if s == nil {
		return
	}
	sendEvent(s.Target, effect.EventNoteOff, nil)
}

func (a *SlotAnimator) TestTrigger(v float32) {
	if v > 0 {
		a.NoteOn(a.TestNote, v)
	} else {
		a.NoteOff(a.TestNote)
	}
}

func (a *SlotAnimator) Update(dt float32) {
	a.pool.Advance(dt)
	for _, s := range a.pool.Slots() {
		setFloat(s.Target, effect.ParamNoteOnTime, s.TimeOn)
		setFloat(s.Target, effect.ParamNoteOffTime, s.TimeOff)
		if a.IntensitySpeed > 0 {
			var goal float32
			if s.Busy() {
				goal = s.Velocity
			}
			s.Intensity = expStep(s.Intensity, goal, a.IntensitySpeed, dt)
			setFloat(s.Target, effect.ParamIntensity, s.Intensity)
		}
		flush(s.Target)
	}
}
