package viewer

import (
	"context"
	"io"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/term"

	"go.viam.com/kinectviewer/logging"
)

const keyCtrlC = 3

// ReadTerminalKeys switches the terminal to raw mode and forwards every key press to q. The
// returned function restores the terminal.
func ReadTerminalKeys(ctx context.Context, in *os.File, q *EventQueue, logger logging.Logger) (func() error, error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return nil, errors.Errorf("%s is not a terminal", in.Name())
	}
	old, err := term.MakeRaw(fd)
	if err != nil {
		return nil, errors.Wrap(err, "cannot switch terminal to raw mode")
	}
	go func() {
		if err := forwardKeys(ctx, in, q); err != nil && !errors.Is(err, io.EOF) {
			logger.Debugw("stopped reading terminal keys", "error", err)
		}
	}()
	return func() error {
		return term.Restore(fd, old)
	}, nil
}

// forwardKeys turns bytes read from r into key events until ctx is done or r fails.
func forwardKeys(ctx context.Context, r io.Reader, q *EventQueue) error {
	buf := make([]byte, 64)
	for {
		n, err := r.Read(buf)
		for _, code := range decodeKeys(buf[:n]) {
			q.Push(KeyEvent{Code: code})
		}
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// decodeKeys returns the key codes in one read from a raw terminal. An escape byte alone in the
// read is the escape key. An escape followed by more bytes starts a sequence sent by arrow,
// function or alt-modified keys, and the whole sequence is dropped.
func decodeKeys(b []byte) []rune {
	var codes []rune
	for i := 0; i < len(b); i++ {
		switch c := b[i]; {
		case c == keyCtrlC:
			// raw mode swallows the interrupt signal
			codes = append(codes, KeyEscape)
		case c != byte(KeyEscape):
			codes = append(codes, rune(c))
		case i+1 == len(b):
			codes = append(codes, KeyEscape)
		default:
			i = skipEscapeSequence(b, i)
		}
	}
	return codes
}

// skipEscapeSequence returns the index of the last byte of the sequence starting with the escape
// at b[start].
func skipEscapeSequence(b []byte, start int) int {
	i := start + 1
	switch b[i] {
	case '[':
		// CSI: parameter and intermediate bytes up to a final byte in 0x40-0x7e
		for i++; i < len(b); i++ {
			if b[i] >= 0x40 && b[i] <= 0x7e {
				return i
			}
		}
		return len(b) - 1
	case 'O':
		// SS3: one final byte
		return min(i+1, len(b)-1)
	default:
		// alt plus a key
		return i
	}
}
