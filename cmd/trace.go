package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"skabillium/ringq/cmd/resp"
)

// openTrace opens the trace file for appending.
func openTrace(name string) (*os.File, error) {
	file, err := os.OpenFile(name, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "opening trace file %s", name)
	}
	return file, nil
}

// writeTrace appends every command received on tracech to file, RESP
// encoded, until the channel is closed. The file is closed on return.
func writeTrace(file *os.File, tracech <-chan []string, logger *logrus.Logger) {
	defer file.Close()

	for args := range tracech {
		if _, err := file.WriteString(resp.SerializeCommand(args)); err != nil {
			logger.WithError(err).WithField("file", file.Name()).Error("writing trace, tracing stopped")
			// Drain so senders never block.
			for range tracech {
			}
			return
		}
	}
}
