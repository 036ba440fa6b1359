// Package tail implements incremental, partial-write-safe reading of
// append-only JSONL log files and the file-system watch loops that drive
// it in real time.
package tail

import (
	"bufio"
	"bytes"
	"io"
	"os"
)

const (
	initialBufSize = 64 * 1024
	maxLineSize    = 64 * 1024 * 1024
)

// ReadNewLines reads every complete line appended to path since offset
// and returns them along with the new offset to resume from.
//
// A line is "complete" only if it is terminated by '\n'. If the file
// ends mid-line (the writer is still mid-write), that trailing partial
// line is NOT returned and the offset is NOT advanced past its start —
// the next call re-reads it from the same position once the writer has
// finished appending the newline. This is the guard the teacher's
// bufio.Scanner-based incremental reader (parser/session.go) and its
// byte-oriented lineReader (parser/linereader.go) both omit: Scanner's
// default split function happily returns a final unterminated line at
// EOF, which would let a half-written JSON object be parsed (and fail)
// or, worse, be silently skipped and never re-read.
//
// Oversized lines (> maxLineSize) are skipped rather than failing the
// whole read, matching the teacher's lineReader behavior — a single
// corrupt or pathological line should not stop the tail.
func ReadNewLines(path string, offset int64) (lines [][]byte, newOffset int64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, offset, err
	}
	defer f.Close()

	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return nil, offset, err
	}

	r := bufio.NewReaderSize(f, initialBufSize)
	pos := offset

	for {
		lineStart := pos
		line, readErr := readLine(r)
		pos += int64(len(line.raw))

		if readErr == io.EOF {
			if line.terminated {
				if !line.oversized {
					lines = append(lines, line.content)
				}
				newOffset = pos
				continue
			}
			// Partial trailing line: revert to its start, don't advance.
			newOffset = lineStart
			break
		}
		if readErr != nil {
			return lines, newOffset, readErr
		}

		if !line.oversized {
			lines = append(lines, line.content)
		}
		newOffset = pos
	}

	return lines, newOffset, nil
}

type rawLine struct {
	content    []byte
	raw        []byte // bytes consumed from the stream, including any newline
	terminated bool   // true if a trailing '\n' was found
	oversized  bool
}

// readLine reads one line from r, handling lines longer than the
// reader's internal buffer by accumulating across multiple ReadSlice
// calls (mirroring bufio.Reader.ReadLine's isPrefix handling in the
// teacher's lineReader.readLine).
func readLine(r *bufio.Reader) (rawLine, error) {
	var content bytes.Buffer
	var raw bytes.Buffer
	oversized := false

	for {
		chunk, err := r.ReadSlice('\n')
		raw.Write(chunk)

		if len(chunk) > 0 && chunk[len(chunk)-1] == '\n' {
			trimmed := chunk[:len(chunk)-1]
			if len(trimmed) > 0 && trimmed[len(trimmed)-1] == '\r' {
				trimmed = trimmed[:len(trimmed)-1]
			}
			if content.Len()+len(trimmed) > maxLineSize {
				oversized = true
			} else {
				content.Write(trimmed)
			}
			return rawLine{content: content.Bytes(), raw: raw.Bytes(), terminated: true, oversized: oversized}, nil
		}

		if err == bufio.ErrBufferFull {
			if content.Len()+len(chunk) > maxLineSize {
				oversized = true
			} else {
				content.Write(chunk)
			}
			continue
		}

		if err == io.EOF {
			if content.Len()+len(chunk) > maxLineSize {
				oversized = true
			} else {
				content.Write(chunk)
			}
			return rawLine{content: content.Bytes(), raw: raw.Bytes(), terminated: false, oversized: oversized}, io.EOF
		}

		if err != nil {
			return rawLine{}, err
		}
	}
}
