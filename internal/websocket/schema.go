package websocket

// Action is a client-to-server message type.
type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// Event is a server-to-client message type.
type Event string

const (
	EventTick             Event = "tick"
	EventAutoSubmitted    Event = "auto_submitted"
	EventAutoSubmitFailed Event = "auto_submit_failed"
	EventPong             Event = "pong"
	EventError            Event = "error"
)

// TickResponse is pushed once per second while the session runs.
type TickResponse struct {
	Event    Event `json:"event"`
	TimeLeft int   `json:"time_left"`
}

// AutoSubmittedResponse announces that the countdown expired and the
// submission was recorded.
type AutoSubmittedResponse struct {
	Event Event `json:"event"`
}

// AutoSubmitFailedResponse announces that the countdown expired but the
// submission was refused. The session and its answers remain intact; the
// client should prompt the student to retry the submit.
type AutoSubmitFailedResponse struct {
	Event Event `json:"event"`
}

type PongResponse struct {
	Event Event `json:"event"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}
