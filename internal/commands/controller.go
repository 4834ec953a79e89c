// Package commands contains the CLI commands for the application
package commands

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Flags struct {
	LogLevel string
}

type Controller struct {
	Flags *Flags
	// Stdout receives command output; os.Stdout when nil
	Stdout io.Writer
}

func (c *Controller) stdout() io.Writer {
	if c.Stdout == nil {
		return os.Stdout
	}
	return c.Stdout
}

func (c *Controller) logger() zerolog.Logger {
	return log.Logger
}
