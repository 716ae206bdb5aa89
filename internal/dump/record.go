package dump

// Field names expected in a lock contention dump. The schema itself is
// derived from the header row, so columns beyond these pass through to
// structured output untouched.
const (
	FieldWaitingPID   = "waiting_pid"
	FieldOtherPID     = "other_pid"
	FieldWaitingMode  = "waiting_mode"
	FieldOtherMode    = "other_mode"
	FieldOtherGranted = "other_granted"
	FieldWaitingQuery = "waiting_query"
	FieldOtherQuery   = "other_query"

	// Synthesized after decoding, never present in the dump itself.
	FieldWaitingQueryKind = "waiting_query_kind"
	FieldOtherQueryKind   = "other_query_kind"
)

// grantedTrue is the value pg_locks prints for a lock that is actually held.
const grantedTrue = "t"

// Record is one decoded data row: field name to whitespace-trimmed value.
// Records are created by Schema.Decode and not mutated afterwards.
type Record map[string]string

// WaitingPID returns the pid waiting on a lock.
func (r Record) WaitingPID() string { return r[FieldWaitingPID] }

// OtherPID returns the pid on the holding (or competing) side of the row.
func (r Record) OtherPID() string { return r[FieldOtherPID] }

// WaitingMode returns the lock mode the waiting pid wants.
func (r Record) WaitingMode() string { return r[FieldWaitingMode] }

// OtherMode returns the lock mode of the other side.
func (r Record) OtherMode() string { return r[FieldOtherMode] }

// OtherGranted reports whether the other side actually holds its lock, as
// opposed to merely wanting it too.
func (r Record) OtherGranted() bool { return r[FieldOtherGranted] == grantedTrue }

// WaitingQuery returns the query text of the waiting pid.
func (r Record) WaitingQuery() string { return r[FieldWaitingQuery] }

// OtherQuery returns the query text of the other pid.
func (r Record) OtherQuery() string { return r[FieldOtherQuery] }
