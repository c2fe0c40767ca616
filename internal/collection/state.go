package collection

// StateKind enumerates the load states of a collection.
type StateKind int

const (
	StateIdle StateKind = iota
	StateLoading
	StateError
)

func (k StateKind) String() string {
	switch k {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateError:
		return "error"
	}
	return "unknown"
}

// LoadState is the single load state of a whole collection. Message is set
// only for StateError.
type LoadState struct {
	Kind    StateKind
	Message string
}

// Idle, Loading and Failed construct the three states.
func Idle() LoadState             { return LoadState{Kind: StateIdle} }
func Loading() LoadState          { return LoadState{Kind: StateLoading} }
func Failed(msg string) LoadState { return LoadState{Kind: StateError, Message: msg} }

func (s LoadState) String() string {
	if s.Kind == StateError {
		return "error(" + s.Message + ")"
	}
	return s.Kind.String()
}
