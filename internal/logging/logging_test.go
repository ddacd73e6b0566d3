package logging

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]string{"": "INFO", "debug": "DEBUG", " Warn ": "WARN", "warning": "WARN", "ERROR": "ERROR"}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, string(got), in)
	}
	_, err := ParseLevel("trace")
	assert.Error(t, err)
}

func TestFilter(t *testing.T) {
	var buf bytes.Buffer
	f, err := NewFilter(&buf, "warn")
	require.NoError(t, err)

	l := log.New(f, "", 0)
	l.Print("[DEBUG] hidden")
	l.Print("[INFO] hidden")
	l.Print("[WARN] shown")
	l.Print("no level passes through")
	assert.Equal(t, "[WARN] shown\nno level passes through\n", buf.String())

	_, err = NewFilter(&buf, "loud")
	assert.Error(t, err)
}
