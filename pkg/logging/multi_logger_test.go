package logging

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMultiLogger_FansOut(t *testing.T) {
	a, b := &recordingLogger{}, &recordingLogger{}
	m := NewMultiLogger(a, b)

	m.Info("one")
	m.Warn("two")
	m.Error("three")
	m.Debug("four")
	m.LogCommand(CommandLog{Argv: []string{"git"}})

	for _, r := range []*recordingLogger{a, b} {
		assert.Equal(t, []string{"one", "two", "three", "four"}, r.messages)
		assert.Len(t, r.commands, 1)
	}
}

func TestMultiLogger_WithFields(t *testing.T) {
	a, b := &recordingLogger{}, &recordingLogger{}
	m := NewMultiLogger(a, b)

	child := m.WithFields(StringField("test", "tpm"))
	assert.IsType(t, &MultiLogger{}, child)

	assert.Equal(t, []Field{StringField("test", "tpm")}, a.with)
	assert.Equal(t, []Field{StringField("test", "tpm")}, b.with)
}

func TestMultiLogger_Close(t *testing.T) {
	a := &recordingLogger{closeErr: errors.New("first")}
	b := &recordingLogger{closeErr: errors.New("last")}

	err := NewMultiLogger(a, b).Close()
	assert.EqualError(t, err, "first\nlast")
	assert.True(t, a.closed)
	assert.True(t, b.closed)

	assert.NoError(t, NewMultiLogger().Close())
}

func TestNullLogger(t *testing.T) {
	var l Logger = NullLogger{}

	assert.NotPanics(t, func() {
		l.Info("x", StringField("k", "v"))
		l.Warn("x")
		l.Error("x")
		l.Debug("x")
		l.LogCommand(CommandLog{Argv: []string{"git"}})
	})
	assert.Equal(t, NullLogger{}, l.WithFields(IntField("n", 1)))
	assert.NoError(t, l.Close())
}
