package engine

import (
	"fmt"
	"log"
	"strings"

	"vfxmidi/internal/action"
	"vfxmidi/internal/animator"
	"vfxmidi/internal/binder"
	"vfxmidi/internal/config"
	"vfxmidi/internal/effect"
)

// TargetFactory は設定上のターゲットを開く。
type TargetFactory func(ref config.TargetRef) (effect.Target, error)

// Build は設定から Engine を組み立てる。開けなかったターゲットは警告を出して
// nil として扱い、そのターゲットへの書き込みは行われない。
func Build(cfg *config.Config, open TargetFactory) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := New(cfg.FPS)

	cache := map[config.TargetRef]effect.Target{}
	target := func(ref config.TargetRef) effect.Target {
		key := config.TargetRef{Source: strings.TrimSpace(ref.Source), Filter: ref.FilterName()}
		if t, ok := cache[key]; ok {
			return t
		}
		t, err := open(key)
		if err != nil {
			log.Printf("[WARN] ターゲット %s/%s を開けません（スキップします）: %v", key.Source, key.Filter, err)
			t = nil
		}
		cache[key] = t
		return t
	}

	for _, a := range cfg.Actions {
		b, err := action.ParseBinding(a.Binding)
		if err != nil {
			return nil, fmt.Errorf("action %s: %w", a.Name, err)
		}
		e.input.Add(action.New(a.Name, b))
	}

	for i, ac := range cfg.Animators {
		f, err := ac.Filter()
		if err != nil {
			return nil, fmt.Errorf("animator %s: %w", ac.Name, err)
		}
		name := ac.Name
		if name == "" {
			name = fmt.Sprintf("animator%d", i+1)
		}
		var test *action.Action
		if ac.TestAction != "" {
			test = e.input.FindAction(ac.TestAction)
		}
		switch strings.ToLower(ac.Mode) {
		case config.ModeGate:
			var t effect.Target
			if len(ac.Targets) == 1 {
				t = target(ac.Targets[0])
			}
			e.AddAnimator(animator.NewGateAnimator(name, f, t), test)
		default:
			targets := make([]effect.Target, len(ac.Targets))
			for j, ref := range ac.Targets {
				targets[j] = target(ref)
			}
			sa := animator.NewSlotAnimator(name, f, targets)
			sa.IntensitySpeed = ac.IntensitySpeed
			e.AddAnimator(sa, test)
		}
		log.Printf("[INFO] アニメーター %s: mode=%s source=%s targets=%d", name, modeName(ac.Mode), f.Source, len(ac.Targets))
	}

	for _, bc := range cfg.Binders {
		t := target(bc.Target)
		var b binder.Binder
		switch bc.Kind {
		case config.BindEvent:
			b = &binder.EventBinder{Target: t, EventName: bc.Event, Action: e.input.FindAction(bc.Action)}
		case config.BindPlayerEvent:
			b = &binder.PlayerEventBinder{Input: e.input, Target: t}
		case config.BindProperty:
			b = &binder.PropertyBinder{Target: t, Property: bc.Property, Action: e.input.FindAction(bc.Action)}
		case config.BindPlayerProperty:
			b = &binder.PlayerPropertyBinder{Target: t, Property: bc.Property, Input: e.input, ActionName: bc.Action}
		}
		e.AddBinder(b)
	}

	e.input.Enable()
	return e, nil
}

func modeName(m string) string {
	if m == "" {
		return config.ModeSlots
	}
	return strings.ToLower(m)
}
