// Package sse parses server-sent event streams one line at a time.
package sse

import "strings"

// DoneSentinel is the data payload that terminates a stream
const DoneSentinel = "[DONE]"

// Field names recognized by the parser
const (
	FieldEvent = "event"
	FieldData  = "data"
	FieldID    = "id"
)

// EventRecord accumulates the latest value of each recognized field since
// the last boundary
type EventRecord struct {
	Event string
	Data  string
	ID    string

	hasEvent bool
	hasData  bool
	hasID    bool
}

// HasData reports whether a data line was seen since the last boundary
func (r EventRecord) HasData() bool {
	return r.hasData
}

// HasEvent reports whether an event line was seen since the last boundary
func (r EventRecord) HasEvent() bool {
	return r.hasEvent
}

// HasID reports whether an id line was seen since the last boundary
func (r EventRecord) HasID() bool {
	return r.hasID
}

// IsTerminal reports whether the record carries the [DONE] sentinel
func (r EventRecord) IsTerminal() bool {
	return r.hasData && r.Data == DoneSentinel
}

// IsActualData reports whether the record should be emitted to the consumer
func (r EventRecord) IsActualData() bool {
	return r.hasData && !r.IsTerminal()
}

func (r *EventRecord) set(field, value string) {
	switch field {
	case FieldEvent:
		r.Event, r.hasEvent = value, true
	case FieldData:
		r.Data, r.hasData = value, true
	case FieldID:
		r.ID, r.hasID = value, true
	}
}

// splitField splits a "name: value" line. ok is false when the line is not
// of that form. A single space after the colon is dropped.
func splitField(line string) (name, value string, ok bool) {
	idx := strings.IndexByte(line, ':')
	if idx <= 0 {
		return "", "", false
	}
	name = line[:idx]
	if strings.ContainsAny(name, " \t") {
		return "", "", false
	}
	value = strings.TrimPrefix(line[idx+1:], " ")
	return name, value, true
}

func recognized(name string) bool {
	return name == FieldEvent || name == FieldData || name == FieldID
}
