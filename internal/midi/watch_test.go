package midi

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLister struct {
	names [][]string
	err   error
	i     int
}

func (f *fakeLister) list() ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	n := f.names[f.i]
	if f.i < len(f.names)-1 {
		f.i++
	}
	return n, nil
}

func TestWatcherScan(t *testing.T) {
	fl := &fakeLister{names: [][]string{
		{"KeyStep", "Midi Through Port-0", "nanoKONTROL2"},
		{"KeyStep", "nanoKONTROL2"},
		{"nanoKONTROL2", "Launchkey"},
	}}
	w := NewWatcher(fl.list, time.Second)

	got, err := w.Scan()
	require.NoError(t, err)
	assert.Equal(t, []DeviceChange{{"KeyStep", Added}, {"nanoKONTROL2", Added}}, got)

	got, err = w.Scan()
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = w.Scan()
	require.NoError(t, err)
	assert.Equal(t, []DeviceChange{{"Launchkey", Added}, {"KeyStep", Removed}}, got)
	assert.Equal(t, []string{"Launchkey", "nanoKONTROL2"}, w.Known())
}

func TestWatcherMatch(t *testing.T) {
	fl := &fakeLister{names: [][]string{{"KeyStep", "nanoKONTROL2", "NANO pad"}}}
	w := NewWatcher(fl.list, time.Second)
	w.Match = "nano"
	got, err := w.Scan()
	require.NoError(t, err)
	assert.Equal(t, []DeviceChange{{"nanoKONTROL2", Added}, {"NANO pad", Added}}, got)
}

func TestWatcherScanError(t *testing.T) {
	w := NewWatcher((&fakeLister{err: errors.New("boom")}).list, time.Second)
	_, err := w.Scan()
	assert.Error(t, err)
}

func TestWatcherRun(t *testing.T) {
	fl := &fakeLister{names: [][]string{{"A"}, {"A", "B"}}}
	w := NewWatcher(fl.list, 5*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	out := make(chan DeviceChange, 8)
	done := make(chan struct{})
	go func() {
		w.Run(ctx, out)
		close(done)
	}()

	first := <-out
	second := <-out
	cancel()
	<-done
	assert.Equal(t, DeviceChange{"A", Added}, first)
	assert.Equal(t, DeviceChange{"B", Added}, second)

	// out is closed after Run returns
	for range out {
	}
}

func TestChangeKindString(t *testing.T) {
	assert.Equal(t, "added", Added.String())
	assert.Equal(t, "removed", Removed.String())
	assert.Equal(t, "unknown", ChangeKind(9).String())
}
