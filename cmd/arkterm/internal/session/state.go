package session

// State is the position of the session loop.
type State int

// Session states. A turn moves Idle → AwaitingResponse → DisplayOnly or
// AwaitingConfirmation → Idle.
const (
	Idle State = iota
	AwaitingResponse
	DisplayOnly
	AwaitingConfirmation
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingResponse:
		return "awaiting_response"
	case DisplayOnly:
		return "display_only"
	case AwaitingConfirmation:
		return "awaiting_confirmation"
	default:
		return "unknown"
	}
}
