package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

// pollInterval is how often follow mode re-checks the file for new lines.
const pollInterval = 250 * time.Millisecond

// Options control one Tail call.
type Options struct {
	// Offset is the byte position to read from. A negative offset starts
	// from the end of the file and returns at most Limit trailing lines.
	Offset int64
	// Limit caps the number of lines returned for negative offsets.
	Limit int
	// Follow keeps polling for up to Wait when no new lines are available.
	Follow bool
	Wait   time.Duration
}

// Result carries the lines read and the offset to pass to the next call.
type Result struct {
	Lines  []string
	Offset int64
}

// Tail reads complete lines from the log file at path. A missing file is not
// an error; the result simply carries offset zero so callers can retry once
// the daemon has written something.
func Tail(ctx context.Context, path string, opts Options) (Result, error) {
	if opts.Wait < 0 {
		opts.Wait = 0
	}

	res, err := readOnce(path, opts)
	if err != nil {
		return res, err
	}
	if !opts.Follow || opts.Wait <= 0 || len(res.Lines) > 0 {
		return res, nil
	}

	deadline := time.NewTimer(opts.Wait)
	defer deadline.Stop()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		case <-deadline.C:
			return res, nil
		case <-ticker.C:
		}
		next, err := readOnce(path, Options{Offset: res.Offset, Limit: opts.Limit})
		if err != nil {
			return res, err
		}
		res = next
		if len(res.Lines) > 0 {
			return res, nil
		}
	}
}

func readOnce(path string, opts Options) (Result, error) {
	res := Result{Offset: opts.Offset}

	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		res.Offset = 0
		return res, nil
	}
	if err != nil {
		return res, fmt.Errorf("stat log file: %w", err)
	}
	if info.IsDir() {
		return res, fmt.Errorf("log path %q is a directory", path)
	}

	if opts.Offset < 0 {
		return tailEnd(path, opts.Limit)
	}
	offset := opts.Offset
	if offset > info.Size() {
		offset = info.Size()
	}
	return scanFrom(path, offset)
}

// scanFrom returns every complete line at or after offset and the file
// position reached, which becomes the next read offset.
func scanFrom(path string, offset int64) (Result, error) {
	res := Result{Offset: offset}

	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		res.Offset = 0
		return res, nil
	}
	if err != nil {
		return res, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return res, fmt.Errorf("seek log file: %w", err)
	}
	scanner := newLineScanner(file)
	for scanner.Scan() {
		res.Lines = append(res.Lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return res, fmt.Errorf("read log file: %w", err)
	}
	pos, err := file.Seek(0, io.SeekCurrent)
	if err != nil {
		return res, fmt.Errorf("determine log offset: %w", err)
	}
	res.Offset = pos
	return res, nil
}

// tailEnd returns the last limit lines of the file and the end-of-file
// offset. Memory stays bounded at roughly twice the limit.
func tailEnd(path string, limit int) (Result, error) {
	var res Result

	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return res, nil
	}
	if err != nil {
		return res, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if limit <= 0 {
		end, err := file.Seek(0, io.SeekEnd)
		if err != nil {
			return res, fmt.Errorf("seek log file: %w", err)
		}
		res.Offset = end
		return res, nil
	}

	scanner := newLineScanner(file)
	var window []string
	for scanner.Scan() {
		window = append(window, scanner.Text())
		if len(window) == limit*2 {
			copy(window, window[len(window)-limit:])
			window = window[:limit]
		}
	}
	if err := scanner.Err(); err != nil {
		return res, fmt.Errorf("read log file: %w", err)
	}
	if len(window) > limit {
		window = window[len(window)-limit:]
	}

	end, err := file.Seek(0, io.SeekEnd)
	if err != nil {
		return res, fmt.Errorf("seek log file: %w", err)
	}
	res.Lines = window
	res.Offset = end
	return res, nil
}

func newLineScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return scanner
}
