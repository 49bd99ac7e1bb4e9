package hashengine

import "fmt"

// ErrorKind classifies the failures an Engine operation can report.
type ErrorKind int

const (
	// KindInvalidArgument marks a caller error: a bad key, value or tunable.
	KindInvalidArgument ErrorKind = iota
	// KindNotFound marks a lookup or delete against an absent key.
	KindNotFound
	// KindOutOfMemory marks a failed bucket-array allocation.
	KindOutOfMemory
	// KindNoSpace marks a probe sweep that found no usable slot.
	KindNoSpace
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid_argument"
	case KindNotFound:
		return "not_found"
	case KindOutOfMemory:
		return "out_of_memory"
	case KindNoSpace:
		return "no_space"
	default:
		return "unknown"
	}
}

// HashError is the concrete error type returned by every Engine operation
// that fails. Callers should compare kinds with errors.Is against the
// exported sentinels (ErrNotFound, ErrInvalidArgument, ...) rather than
// type-asserting on HashError directly.
type HashError struct {
	Kind ErrorKind
	Op   string
	Key  []byte
	msg  string
}

func (e *HashError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("hashengine: %s: %s", e.Kind, e.msg)
	}
	if len(e.Key) == 0 {
		return fmt.Sprintf("hashengine: %s: %s: %s", e.Op, e.Kind, e.msg)
	}
	return fmt.Sprintf("hashengine: %s: %s: %s (key %q)", e.Op, e.Kind, e.msg, e.Key)
}

// Is reports whether target is a HashError of the same Kind, which is the
// only part of a HashError's identity errors.Is should compare on.
func (e *HashError) Is(target error) bool {
	t, ok := target.(*HashError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func newError(kind ErrorKind, op string, key []byte, format string, args ...interface{}) *HashError {
	var keyCopy []byte
	if len(key) > 0 {
		keyCopy = append([]byte(nil), key...)
	}
	return &HashError{Kind: kind, Op: op, Key: keyCopy, msg: fmt.Sprintf(format, args...)}
}

// Sentinel errors for use with errors.Is. They carry no Op/Key of their own;
// only their Kind participates in comparison.
var (
	ErrInvalidArgument = &HashError{Kind: KindInvalidArgument, msg: "invalid argument"}
	ErrNotFound        = &HashError{Kind: KindNotFound, msg: "key not found"}
	ErrOutOfMemory     = &HashError{Kind: KindOutOfMemory, msg: "out of memory"}
	ErrNoSpace         = &HashError{Kind: KindNoSpace, msg: "no space"}
)
