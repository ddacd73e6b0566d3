package midi

import (
	"log"
	"strings"
	"time"

	"github.com/bep/debounce"
)

// DescribeDevices はデバイス状況の表示用テキストを返す。
func DescribeDevices(names []string) string {
	if len(names) == 0 {
		return "Waiting for MIDI input..."
	}
	return "Detected MIDI devices:\n" + strings.Join(names, "\n")
}

// StatusReporter は短時間に続くデバイス増減をまとめ、最後の状態だけをログに出す。
type StatusReporter struct {
	debounced func(f func())
	logf      func(format string, args ...any)
}

// NewStatusReporter は wait 間隔でまとめる StatusReporter を作る。
func NewStatusReporter(wait time.Duration) *StatusReporter {
	return &StatusReporter{debounced: debounce.New(wait), logf: log.Printf}
}

// Report は names の状況を（デバウンス後に）ログへ出す。
func (r *StatusReporter) Report(names []string) {
	snapshot := append([]string(nil), names...)
	r.debounced(func() {
		r.logf("[INFO] %s", strings.ReplaceAll(DescribeDevices(snapshot), "\n", "\n  "))
	})
}
