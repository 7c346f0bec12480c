package sse

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// DefaultMaxLineSize is the longest line a Reader accepts by default
const DefaultMaxLineSize = 4 << 20

// ErrLineTooLong is returned when a line exceeds the reader's limit
var ErrLineTooLong = errors.New("sse: line too long")

// Parser turns lines into event records. The zero value is ready to use.
type Parser struct {
	rec EventRecord
}

// Feed consumes one line without its terminator. It returns the completed
// record when the line is a boundary and the accumulated record holds data.
func (p *Parser) Feed(line string) (EventRecord, bool) {
	line = strings.TrimSuffix(line, "\r")

	if name, value, ok := splitField(line); ok {
		if recognized(name) {
			p.rec.set(name, value)
		}
		return EventRecord{}, false
	}
	return p.boundary()
}

// Flush ends the input, emitting any record that holds data
func (p *Parser) Flush() (EventRecord, bool) {
	return p.boundary()
}

func (p *Parser) boundary() (EventRecord, bool) {
	rec := p.rec
	p.rec = EventRecord{}
	return rec, rec.HasData()
}

// Reader pulls event records from an io.Reader, reading only as many lines
// as the next record needs
type Reader struct {
	src         *bufio.Reader
	parser      Parser
	current     EventRecord
	err         error
	done        bool
	terminated  bool
	maxLineSize int
	onLine      func(string)
}

// ReaderOption configures a Reader
type ReaderOption func(*Reader)

// WithMaxLineSize limits the length of a single line
func WithMaxLineSize(n int) ReaderOption {
	return func(r *Reader) {
		if n > 0 {
			r.maxLineSize = n
		}
	}
}

// WithLineHook calls fn with every raw line read
func WithLineHook(fn func(line string)) ReaderOption {
	return func(r *Reader) {
		r.onLine = fn
	}
}

// NewReader creates a Reader over r
func NewReader(r io.Reader, opts ...ReaderOption) *Reader {
	reader := &Reader{
		src:         bufio.NewReader(r),
		maxLineSize: DefaultMaxLineSize,
	}
	for _, opt := range opts {
		opt(reader)
	}
	return reader
}

// Next advances to the next record holding data. It returns false at the
// end of input, after the [DONE] sentinel, or on a read error.
func (r *Reader) Next() bool {
	for !r.done {
		line, err := r.readLine()
		if err != nil {
			r.done = true
			if !errors.Is(err, io.EOF) {
				r.err = err
				return false
			}
			return r.emit(r.parser.Flush())
		}
		if r.onLine != nil {
			r.onLine(line)
		}
		if rec, ok := r.parser.Feed(line); ok {
			return r.emit(rec, ok)
		}
	}
	return false
}

// Record returns the record produced by the last successful Next
func (r *Reader) Record() EventRecord {
	return r.current
}

// Err returns the read error that stopped the reader, if any
func (r *Reader) Err() error {
	return r.err
}

// Terminated reports whether the stream ended with the [DONE] sentinel
func (r *Reader) Terminated() bool {
	return r.terminated
}

func (r *Reader) emit(rec EventRecord, ok bool) bool {
	if !ok {
		return false
	}
	if rec.IsTerminal() {
		r.done, r.terminated = true, true
		return false
	}
	r.current = rec
	return true
}

// readLine returns the next line without its terminator. A final line
// without a terminator is returned before io.EOF.
func (r *Reader) readLine() (string, error) {
	var buf []byte
	for {
		chunk, isPrefix, err := r.src.ReadLine()
		if err != nil {
			if len(buf) > 0 && errors.Is(err, io.EOF) {
				return string(buf), nil
			}
			return "", err
		}
		buf = append(buf, chunk...)
		if len(buf) > r.maxLineSize {
			return "", ErrLineTooLong
		}
		if !isPrefix {
			return string(buf), nil
		}
	}
}
