package cart

// Status is the synchronizer's lifecycle state. Mutating is transient: it is
// entered for the duration of one mutation and never blocks reads.
type Status int

const (
	StatusUninitialized Status = iota
	StatusLoading
	StatusReady
	StatusMutating
	StatusError
	StatusEmpty
)

func (s Status) String() string {
	switch s {
	case StatusUninitialized:
		return "uninitialized"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusMutating:
		return "mutating"
	case StatusError:
		return "error"
	case StatusEmpty:
		return "empty"
	default:
		return "unknown"
	}
}
