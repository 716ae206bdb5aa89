package dump

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/isabella232/pglockanalyze/internal/classify"
)

// maxLineSize bounds a single dump line; query columns can be wide.
const maxLineSize = 1024 * 1024

// State identifies the session's position in the dump's expected shape:
// header, separator, data rows, closing separator, optional trailing noise.
type State int

const (
	StateInit   State = iota // nothing consumed yet
	StateHeader              // header decoded, separator row expected
	StateData                // decoding data rows
	StateDone                // closing separator seen, rest is ignored
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateHeader:
		return "header-seen"
	case StateData:
		return "data"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// StateError reports a line arriving at a row position the current state
// cannot accept. It means the input does not have the header/separator/data
// shape at all, so the run aborts rather than guessing.
type StateError struct {
	Row   int
	State State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("row %d is not valid in state %q: input does not look like a lock dump", e.Row, e.State)
}

// Handler receives each decoded record in arrival order.
type Handler interface {
	HandleRecord(rec Record) error
}

// Session decodes one dump from start to finish. It owns the schema, the
// state machine, and the row counter; nothing else mutates them. Not safe
// for concurrent use: feed it lines in input order.
type Session struct {
	handler Handler
	log     *zap.Logger

	schema  *Schema
	state   State
	row     int
	records int
}

// NewSession returns a session dispatching decoded records to handler.
// A nil logger disables diagnostics.
func NewSession(handler Handler, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{handler: handler, log: log}
}

// Step applies one input line at an explicit 1-based row position. The
// header is only accepted on row 1 and the separator under it only on row 2;
// anything else is a fatal StateError. In the data state, a line without the
// field separator is the closing separator and moves the session to done;
// every later line is ignored.
func (s *Session) Step(row int, line string) error {
	s.row = row

	switch s.state {
	case StateInit:
		if row != 1 {
			return &StateError{Row: row, State: s.state}
		}
		s.schema = ParseHeader(line)
		s.state = StateHeader
		s.log.Debug("header decoded", zap.Int("columns", len(s.schema.fields)))

	case StateHeader:
		if row != 2 {
			return &StateError{Row: row, State: s.state}
		}
		// The visual separator under the header carries no data.
		s.state = StateData

	case StateData:
		if !strings.Contains(line, fieldSep) {
			s.state = StateDone
			s.log.Debug("closing separator", zap.Int("row", row), zap.Int("records", s.records))
			return nil
		}
		rec := s.schema.Decode(line)
		// Kind fields are synthesized only when the dump carries the query
		// columns; other schemas pass through untouched.
		if q, ok := rec[FieldWaitingQuery]; ok {
			rec[FieldWaitingQueryKind] = classify.Kind(q)
		}
		if q, ok := rec[FieldOtherQuery]; ok {
			rec[FieldOtherQueryKind] = classify.Kind(q)
		}
		s.records++
		if err := s.handler.HandleRecord(rec); err != nil {
			return fmt.Errorf("row %d: %w", row, err)
		}

	case StateDone:
		// Trailing noise after the closing separator, ignored.
	}

	return nil
}

// Line feeds the next sequential line into the session.
func (s *Session) Line(line string) error {
	return s.Step(s.row+1, line)
}

// Run consumes r line by line until end of stream.
func (s *Session) Run(r io.Reader) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for sc.Scan() {
		if err := s.Line(sc.Text()); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("reading dump: %w", err)
	}

	s.log.Debug("dump consumed", zap.Int("rows", s.row), zap.Int("records", s.records))
	return nil
}

// State returns the session's current state.
func (s *Session) State() State { return s.state }

// Records returns how many data rows have been decoded so far.
func (s *Session) Records() int { return s.records }
