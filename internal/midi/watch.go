package midi

import (
	"context"
	"log"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
)

// ExcludedPatterns は自動購読しない仮想/システムポート名。
var ExcludedPatterns = []string{"Midi Through", "Through Port"}

// Lister は現在の入力デバイス名一覧を返す関数。
type Lister func() ([]string, error)

// Watcher はデバイス一覧を定期的にポーリングし、増減を DeviceChange として流す。
type Watcher struct {
	list     Lister
	interval time.Duration
	// Match が空でなければ、名前にこの文字列を含む（大文字小文字無視）デバイスだけを対象にする。
	Match   string
	Exclude []string

	mu    sync.Mutex
	known map[string]bool
}

// NewWatcher は list を interval ごとに呼び出す Watcher を作る。
func NewWatcher(list Lister, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = time.Second
	}
	return &Watcher{
		list:     list,
		interval: interval,
		Exclude:  ExcludedPatterns,
		known:    map[string]bool{},
	}
}

// Scan は一覧を1回取得し、前回との差分を返す。
// 追加は一覧順、削除は名前順。
func (w *Watcher) Scan() ([]DeviceChange, error) {
	names, err := w.list()
	if err != nil {
		return nil, err
	}
	names = lo.Uniq(lo.Filter(names, func(n string, _ int) bool { return w.accept(n) }))

	w.mu.Lock()
	defer w.mu.Unlock()
	var out []DeviceChange
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		seen[n] = true
		if !w.known[n] {
			w.known[n] = true
			out = append(out, DeviceChange{Name: n, Kind: Added})
		}
	}
	gone := lo.Filter(lo.Keys(w.known), func(n string, _ int) bool { return !seen[n] })
	slices.Sort(gone)
	for _, n := range gone {
		delete(w.known, n)
		out = append(out, DeviceChange{Name: n, Kind: Removed})
	}
	return out, nil
}

// Known は現在把握しているデバイス名（名前順）。
func (w *Watcher) Known() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	names := lo.Keys(w.known)
	slices.Sort(names)
	return names
}

// Forget は name を未把握に戻す。一覧にまだあれば次の Scan で再び Added になる。
// 購読に失敗したデバイスを次回のポーリングで再試行するために使う。
func (w *Watcher) Forget(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.known, name)
}

func (w *Watcher) accept(name string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	for _, pat := range w.Exclude {
		if containsCI(name, pat) {
			return false
		}
	}
	return w.Match == "" || containsCI(name, w.Match)
}

// Run はポーリングループ（ブロッキング）。ctx 終了時に out を閉じる。
// 列挙エラーはログに出して次回に再試行する。
func (w *Watcher) Run(ctx context.Context, out chan<- DeviceChange) {
	defer close(out)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	emit := func() bool {
		changes, err := w.Scan()
		if err != nil {
			log.Printf("[WARN] MIDI デバイス列挙に失敗: %v", err)
			return true
		}
		for _, c := range changes {
			select {
			case out <- c:
			case <-ctx.Done():
				return false
			}
		}
		return true
	}

	if !emit() {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !emit() {
				return
			}
		}
	}
}

func containsCI(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
