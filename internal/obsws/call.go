package obsws

import (
	"fmt"
	"time"
)

type result[T any] struct {
	v   T
	err error
}

// callTimeout は goobs のリクエストにタイムアウトが無いので goroutine でラップする。
// 結果はチャネル経由でのみ受け取るため、タイムアウト後に fn が終わっても呼び出し側と競合しない。
func callTimeout[T any](fn func() (T, error), d time.Duration) (T, error) {
	if d <= 0 {
		return fn()
	}
	ch := make(chan result[T], 1)
	go func() {
		v, err := fn()
		ch <- result[T]{v, err}
	}()
	select {
	case r := <-ch:
		return r.v, r.err
	case <-time.After(d):
		var zero T
		return zero, fmt.Errorf("timeout after %s", d)
	}
}

// withTimeout は戻り値がエラーだけのリクエスト用。
func withTimeout(fn func() error, d time.Duration) error {
	_, err := callTimeout(func() (struct{}, error) { return struct{}{}, fn() }, d)
	return err
}
