package animator

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Channel は受け付ける MIDI チャネル。ChannelAll は全チャネル、それ以外は 1-16。
type Channel int

const ChannelAll Channel = 0

// Source はノートの選び方。
type Source int

const (
	AllNotes Source = iota
	NoteNumbers
	NoteRange
)

func (s Source) String() string {
	switch s {
	case NoteNumbers:
		return "notes"
	case NoteRange:
		return "range"
	default:
		return "all"
	}
}

// ParseSource は設定ファイル/フラグの表記を Source に変換する。
// "single" は NoteNumbers（1要素）の別名。
func ParseSource(s string) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all", "all_notes":
		return AllNotes, nil
	case "notes", "note_numbers", "single", "single_note":
		return NoteNumbers, nil
	case "range", "note_range":
		return NoteRange, nil
	default:
		return AllNotes, fmt.Errorf("unknown note source: %q (all|notes|range)", s)
	}
}

// Filter はアニメーターが反応するノートの条件。
type Filter struct {
	Channel Channel
	Source  Source
	Notes   []int
	Lowest  int
	Highest int
}

// DefaultFilter は全チャネル・全ノートを受け付ける。
func DefaultFilter() Filter {
	return Filter{Channel: ChannelAll, Source: AllNotes, Notes: []int{60}, Lowest: 0, Highest: 127}
}

// Match は channel(1-16) の note が条件に合うかを返す。
func (f Filter) Match(channel uint8, note uint8) bool {
	if f.Channel != ChannelAll && int(f.Channel) != int(channel) {
		return false
	}
	n := int(note)
	switch f.Source {
	case NoteNumbers:
		return lo.Contains(f.Notes, n)
	case NoteRange:
		return f.Lowest <= n && n <= f.Highest
	default:
		return true
	}
}

// Validate は範囲外の値を検出する。
func (f Filter) Validate() error {
	if f.Channel < ChannelAll || f.Channel > 16 {
		return fmt.Errorf("channel は 0(全て) か 1..16: %d", f.Channel)
	}
	for _, n := range f.Notes {
		if n < 0 || n > 127 {
			return fmt.Errorf("note は 0..127: %d", n)
		}
	}
	if f.Source == NoteNumbers && len(f.Notes) == 0 {
		return fmt.Errorf("source=notes にはノート番号が必要です")
	}
	if f.Source == NoteRange && (f.Lowest < 0 || f.Highest > 127 || f.Lowest > f.Highest) {
		return fmt.Errorf("note range が不正です: %d..%d", f.Lowest, f.Highest)
	}
	return nil
}
