package sandbox

import "digital.vasic.harness/pkg/logging"

// commandRecorder is a logger that keeps the argv of every
// logged command.
type commandRecorder struct {
	logging.NullLogger
	argv [][]string
}

func (c *commandRecorder) LogCommand(entry logging.CommandLog) {
	c.argv = append(c.argv, entry.Argv)
}

func (c *commandRecorder) WithFields(...logging.Field) logging.Logger {
	return c
}
