package animator

import (
	"log"
	"math"

	"vfxmidi/internal/effect"
)

// 以下のヘルパーは target が nil、またはパラメータが無い場合は何もしない。
// ホスト側のエラーはログに残して続行する。

func setFloat(t effect.Target, name string, v float32) {
	if t == nil || !t.HasFloat(name) {
		return
	}
	if err := t.SetFloat(name, v); err != nil {
		log.Printf("[DEBUG] %s.%s の設定に失敗: %v", t.Name(), name, err)
	}
}

func setUInt(t effect.Target, name string, v uint32) {
	if t == nil || !t.HasUInt(name) {
		return
	}
	if err := t.SetUInt(name, v); err != nil {
		log.Printf("[DEBUG] %s.%s の設定に失敗: %v", t.Name(), name, err)
	}
}

func sendEvent(t effect.Target, name string, attr effect.Attributes) {
	if t == nil {
		return
	}
	if err := t.SendEvent(name, attr); err != nil {
		log.Printf("[WARN] %s へのイベント %s 送信に失敗: %v", t.Name(), name, err)
	}
}

func flush(t effect.Target) {
	if t == nil {
		return
	}
	if err := effect.Flush(t); err != nil {
		log.Printf("[DEBUG] %s の反映に失敗: %v", t.Name(), err)
	}
}

// expStep は x を target へ指数的に近づける（speed は 1/秒）。
func expStep(x, target, speed, dt float32) float32 {
	k := float32(math.Exp(-float64(speed * dt)))
	return target + (x-target)*k
}
