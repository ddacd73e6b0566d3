package midi

import (
	"fmt"
	"log"
	"slices"
	"sync"

	"github.com/samber/lo"
)

// Opener は指定デバイスを開き、そのイベントチャネルを返す関数。OpenInput と同じ形。
type Opener func(name string) (Input, <-chan Event, error)

type subscription struct {
	in   Input
	stop chan struct{}
}

// Hub は接続中の全デバイスのイベントを1本のチャネルにまとめる。
// DeviceChange の Added で購読、Removed で購読解除する。
type Hub struct {
	open Opener

	mu     sync.Mutex
	subs   map[string]*subscription
	events chan Event
	wg     sync.WaitGroup
	closed bool
}

// NewHub は buffer 件のバッファを持つ Hub を作る。
func NewHub(open Opener, buffer int) *Hub {
	if buffer <= 0 {
		buffer = 256
	}
	return &Hub{
		open:   open,
		subs:   map[string]*subscription{},
		events: make(chan Event, buffer),
	}
}

// Events は全デバイスのマージ済みイベント。Close 後に閉じられる。
func (h *Hub) Events() <-chan Event { return h.events }

// Apply はデバイス増減を購読状態に反映する。
func (h *Hub) Apply(c DeviceChange) error {
	switch c.Kind {
	case Added:
		return h.Subscribe(c.Name)
	case Removed:
		h.Unsubscribe(c.Name)
		return nil
	default:
		return fmt.Errorf("unknown device change: %d", c.Kind)
	}
}

// Subscribe はデバイスを開いてイベント転送を開始する。購読済みなら何もしない。
func (h *Hub) Subscribe(name string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return fmt.Errorf("hub is closed")
	}
	if _, ok := h.subs[name]; ok {
		return nil
	}
	in, ch, err := h.open(name)
	if err != nil {
		return fmt.Errorf("%s の購読に失敗: %w", name, err)
	}
	sub := &subscription{in: in, stop: make(chan struct{})}
	h.subs[name] = sub

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		for {
			select {
			case <-sub.stop:
				return
			case e, ok := <-ch:
				if !ok {
					return
				}
				e.Device = name
				select {
				case h.events <- e:
				default:
					// 溢れたイベントは捨てる（フレームループが詰まっても入力側を止めない）
				}
			}
		}
	}()
	log.Printf("[INFO] MIDI 購読開始: %s", name)
	return nil
}

// Unsubscribe はデバイスの購読を解除して閉じる。未購読なら何もしない。
func (h *Hub) Unsubscribe(name string) {
	h.mu.Lock()
	sub, ok := h.subs[name]
	delete(h.subs, name)
	h.mu.Unlock()
	if !ok {
		return
	}
	close(sub.stop)
	if sub.in != nil {
		_ = sub.in.Close()
	}
	log.Printf("[INFO] MIDI 購読解除: %s", name)
}

// Devices は購読中のデバイス名（名前順）。
func (h *Hub) Devices() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	names := lo.Keys(h.subs)
	slices.Sort(names)
	return names
}

// Close は全デバイスの購読を解除し、Events を閉じる。
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	names := lo.Keys(h.subs)
	h.mu.Unlock()

	for _, n := range names {
		h.Unsubscribe(n)
	}
	h.wg.Wait()
	close(h.events)
}
