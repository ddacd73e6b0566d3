package animator

import (
	"vfxmidi/internal/effect"
	"vfxmidi/internal/midi"
)

// GateAnimator は1つのエフェクトを、フィルタを通った全ノート共通の on/off で動かす。
// どのノートの NoteOff でも off になる。
type GateAnimator struct {
	name    string
	filter  Filter
	target  effect.Target
	on      bool
	timeOn  float32
	timeOff float32
}

// NewGateAnimator は target（nil 可）を駆動するアニメーターを作る。
func NewGateAnimator(name string, f Filter, target effect.Target) *GateAnimator {
	return &GateAnimator{name: name, filter: f, target: target, timeOn: IdleTime, timeOff: IdleTime}
}

func (g *GateAnimator) Name() string { return g.name }

// State は現在の on/off と経過時間。
func (g *GateAnimator) State() (on bool, timeOn, timeOff float32) {
	return g.on, g.timeOn, g.timeOff
}

func (g *GateAnimator) HandleEvent(e midi.Event) bool {
	on, ok := noteEvent(g.filter, e)
	if !ok {
		return false
	}
	if on {
		g.NoteOn(e.Velocity())
	} else {
		g.NoteOff()
	}
	return true
}

// NoteOn は両タイマーを 0 に戻し、Velocity を書き込む。
func (g *GateAnimator) NoteOn(velocity float32) {
	g.on = true
	g.timeOn, g.timeOff = 0, 0
	setFloat(g.target, effect.ParamVelocity, velocity)
}

func (g *GateAnimator) NoteOff() { g.on = false }

func (g *GateAnimator) TestTrigger(v float32) {
	if v > 0 {
		g.NoteOn(v)
	} else {
		g.NoteOff()
	}
}

func (g *GateAnimator) Update(dt float32) {
	if g.on {
		g.timeOn += dt
	} else {
		g.timeOff += dt
	}
	setFloat(g.target, effect.ParamNoteOnTime, g.timeOn)
	setFloat(g.target, effect.ParamNoteOffTime, g.timeOff)
	flush(g.target)
}
