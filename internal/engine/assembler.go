package engine

import "bytes"

// LineAssembler reframes an arbitrary chunk stream into newline-delimited
// lines. A read from the worker pipe can deliver half a message, several
// messages, or a message plus the head of the next; the assembler buffers
// the unterminated tail until a later chunk completes it.
type LineAssembler struct {
	buf []byte
}

// Feed appends one chunk and returns every line completed by it, in order,
// without the trailing newline. Each returned line is a copy; the internal
// buffer is reused across calls.
func (a *LineAssembler) Feed(chunk []byte) [][]byte {
	a.buf = append(a.buf, chunk...)
	var lines [][]byte
	for {
		idx := bytes.IndexByte(a.buf, '\n')
		if idx < 0 {
			break
		}
		line := make([]byte, idx)
		copy(line, a.buf[:idx])
		lines = append(lines, line)
		a.buf = a.buf[idx+1:]
	}
	if len(a.buf) == 0 {
		a.buf = nil
	}
	return lines
}

// Pending returns the buffered unterminated tail, if any.
func (a *LineAssembler) Pending() []byte {
	return a.buf
}
