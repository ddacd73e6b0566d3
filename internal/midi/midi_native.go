//go:build midi_native

package midi

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"gitlab.com/gomidi/midi"
	"gitlab.com/gomidi/rtmididrv"
)

// inputWrap は rtmididrv のポート/ドライバをまとめて Close する薄いラッパです。
type inputWrap struct {
	drv  *rtmididrv.Driver
	in   midi.In
	once sync.Once
}

// OpenInput は指定名の入力ポートを開き、イベントをチャネルで返す。
// 完全一致を優先し、無ければ部分一致。合致しない場合はエラー。
func OpenInput(deviceName string) (Input, <-chan Event, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, nil, fmt.Errorf("rtmididrv.New: %w", err)
	}
	ins, err := drv.Ins()
	if err != nil {
		_ = drv.Close()
		return nil, nil, fmt.Errorf("MIDI入力列挙に失敗: %w", err)
	}
	var in midi.In
	for _, p := range ins {
		if p.String() == deviceName {
			in = p
			break
		}
	}
	if in == nil {
		for _, p := range ins {
			if strings.Contains(p.String(), deviceName) {
				in = p
				break
			}
		}
	}
	if in == nil {
		_ = drv.Close()
		return nil, nil, fmt.Errorf("MIDI入力デバイスが見つかりません: %s", deviceName)
	}
	if err := in.Open(); err != nil {
		_ = drv.Close()
		return nil, nil, fmt.Errorf("入力オープン失敗: %w", err)
	}

	evCh := make(chan Event, 128)
	name := in.String()
	if err := in.SetListener(func(bt []byte, _ int64) {
		e, ok := Decode(bt, time.Now())
		if !ok {
			return
		}
		e.Device = name
		select {
		case evCh <- e:
		default:
		}
	}); err != nil {
		_ = in.Close()
		_ = drv.Close()
		return nil, nil, fmt.Errorf("リスナ設定失敗: %w", err)
	}

	return &inputWrap{drv: drv, in: in}, evCh, nil
}

func (w *inputWrap) Close() error {
	var err error
	w.once.Do(func() {
		_ = w.in.Close()
		err = w.drv.Close()
	})
	return err
}

// ListInputs は利用可能な入力デバイスの名称一覧を返す。
func ListInputs() ([]string, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, err
	}
	defer drv.Close()
	ins, err := drv.Ins()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(ins))
	for _, i := range ins {
		names = append(names, i.String())
	}
	return names, nil
}
