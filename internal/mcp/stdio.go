package mcp

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
)

// maxLineSize bounds one newline-delimited message.
const maxLineSize = 4 << 20

// ServeStdio reads one JSON-RPC message per line from in and writes each
// reply as one line to out. It returns when in reaches EOF or ctx is done.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	w := bufio.NewWriter(out)
	write := func(reply []byte) error {
		if _, err := w.Write(reply); err != nil {
			return err
		}
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
		return w.Flush()
	}

	lines := make(chan []byte)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		defer close(scanErr)
		for scanner.Scan() {
			line := bytes.Clone(scanner.Bytes())
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				if err := <-scanErr; err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				return nil
			}
			if len(bytes.TrimSpace(line)) == 0 {
				continue
			}
			if reply := s.Handle(ctx, line); reply != nil {
				if err := write(reply); err != nil {
					return fmt.Errorf("write stdout: %w", err)
				}
			}
		}
	}
}
