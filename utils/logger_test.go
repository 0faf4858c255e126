package utils

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestWithComponentTagsOutput(t *testing.T) {
	var buf bytes.Buffer
	l := &Logger{log: zerolog.New(&buf)}

	l.WithComponent("cleaner").Info("kept %d listings", 4)

	out := buf.String()
	assert.Contains(t, out, `"component":"cleaner"`)
	assert.Contains(t, out, "kept 4 listings")
}

func TestWithComponentDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	l := &Logger{log: zerolog.New(&buf)}

	l.WithComponent("wallapop")
	l.Info("plain")

	assert.NotContains(t, buf.String(), "component")
}
