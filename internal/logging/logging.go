// Package logging は標準 log の出力に "[LEVEL]" 接頭辞ベースのレベルフィルタを掛ける。
package logging

import (
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/hashicorp/logutils"
)

// Levels は低い順のログレベル。
var Levels = []logutils.LogLevel{"DEBUG", "INFO", "WARN", "ERROR"}

// ParseLevel は大文字小文字を無視してレベル名を解釈する。空なら INFO。
func ParseLevel(s string) (logutils.LogLevel, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return "INFO", nil
	}
	if s == "WARNING" {
		s = "WARN"
	}
	for _, l := range Levels {
		if string(l) == s {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown log level: %q (debug|info|warn|error)", s)
}

// NewFilter は w へ level 以上のみ書き出すフィルタを作る。
func NewFilter(w io.Writer, level string) (*logutils.LevelFilter, error) {
	l, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return &logutils.LevelFilter{Levels: Levels, MinLevel: l, Writer: w}, nil
}

// Setup は標準 log の出力先を level のフィルタ付き w に切り替える。
func Setup(w io.Writer, level string) error {
	f, err := NewFilter(w, level)
	if err != nil {
		return err
	}
	log.SetOutput(f)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	return nil
}
