package testfixtures

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDGeneratorProducesSequentialIDs(t *testing.T) {
	gen := NewIDGenerator("event")

	assert.Equal(t, "event-1", gen.Next())
	assert.Equal(t, "event-2", gen.Next())
	assert.Equal(t, uint64(2), gen.Issued())
}

func TestIDGeneratorReset(t *testing.T) {
	gen := NewIDGenerator("")
	_ = gen.Next()
	gen.Reset("tmpl")

	assert.Equal(t, "tmpl-1", gen.Next())
}

func TestNilGeneratorFunc(t *testing.T) {
	var gen *IDGenerator
	assert.Equal(t, "", gen.NextFunc()())
}
