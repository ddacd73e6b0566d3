package animator

import "vfxmidi/internal/effect"

// IdleTime は一度も鳴っていないスロットのタイマー初期値（秒）。
const IdleTime = 1e6

// NoNote は空きスロットの Note 値。
const NoNote = -1

// Slot はエフェクト1つと、それに割り当てられた（最大1つの）ノート。
type Slot struct {
	Target    effect.Target
	Note      int
	Velocity  float32
	TimeOn    float32
	TimeOff   float32
	Intensity float32
}

// Busy はノートが割り当てられているかを返す。
func (s *Slot) Busy() bool { return s.Note != NoNote }

// Pool は固定長のスロット列。先頭から線形に探す。
type Pool struct {
	slots []*Slot
}

// NewPool は targets と同じ数のスロットを作る。
func NewPool(targets []effect.Target) *Pool {
	p := &Pool{slots: make([]*Slot, len(targets))}
	for i, t := range targets {
		p.slots[i] = &Slot{Target: t, Note: NoNote, TimeOn: IdleTime, TimeOff: IdleTime}
	}
	return p
}

// Allocate は note にスロットを割り当て、タイマーをリセットして返す。
// 既に note を持つスロットがあればそれを再トリガーする。空きが無ければ nil。
func (p *Pool) Allocate(note int, velocity float32) *Slot {
	s := p.Find(note)
	if s == nil {
		for _, c := range p.slots {
			if !c.Busy() {
				s = c
				break
			}
		}
	}
	if s == nil {
		return nil
	}
	s.Note = note
	s.Velocity = velocity
	s.TimeOn, s.TimeOff = 0, 0
	return s
}

// Find は note を持つスロットを返す。無ければ nil。
func (p *Pool) Find(note int) *Slot {
	if note == NoNote {
		return nil
	}
	for _, s := range p.slots {
		if s.Note == note {
			return s
		}
	}
	return nil
}

// Release は note を持つスロットを解放して返す。無ければ nil。
func (p *Pool) Release(note int) *Slot {
	s := p.Find(note)
	if s == nil {
		return nil
	}
	s.Note = NoNote
	return s
}

// Advance は使用中のスロットの TimeOn、空きスロットの TimeOff を dt 秒進める。
func (p *Pool) Advance(dt float32) {
	for _, s := range p.slots {
		if s.Busy() {
			s.TimeOn += dt
		} else {
			s.TimeOff += dt
		}
	}
}

// Slots はスロット列（共有）を返す。
func (p *Pool) Slots() []*Slot { return p.slots }

// Active は使用中のスロット数。
func (p *Pool) Active() int {
	n := 0
	for _, s := range p.slots {
		if s.Busy() {
			n++
		}
	}
	return n
}
