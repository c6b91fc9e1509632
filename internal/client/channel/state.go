package channel

// State is the connection lifecycle of a Channel.
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
	Errored
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Errored:
		return "error"
	default:
		return "unknown"
	}
}

// Event is something that happened to the connection.
type Event int

const (
	EventConnect Event = iota
	EventOpened
	EventClosed
	EventTransportError
	EventTimeout
	EventDisconnect
)

func (e Event) String() string {
	switch e {
	case EventConnect:
		return "connect"
	case EventOpened:
		return "opened"
	case EventClosed:
		return "closed"
	case EventTransportError:
		return "transport_error"
	case EventTimeout:
		return "timeout"
	case EventDisconnect:
		return "disconnect"
	default:
		return "unknown"
	}
}

// Effect is a side effect a transition asks the UI to perform.
type Effect int

const (
	EffectRenderStatus Effect = iota
	EffectNotify
)

// Severity of a transition notice.
type Severity int

const (
	SeverityInfo Severity = iota
	SeveritySuccess
	SeverityWarning
	SeverityError
)

// Transition is one row of the lifecycle table.
type Transition struct {
	From     State
	Event    Event
	To       State
	Effects  []Effect
	Notice   string
	Severity Severity
}

// Has reports whether the transition carries effect e.
func (t Transition) Has(e Effect) bool {
	for _, got := range t.Effects {
		if got == e {
			return true
		}
	}
	return false
}

type key struct {
	from  State
	event Event
}

var (
	renderOnly   = []Effect{EffectRenderStatus}
	renderNotify = []Effect{EffectRenderStatus, EffectNotify}
)

var transitions = map[key]Transition{
	{Disconnected, EventConnect}: {To: Connecting, Effects: renderOnly},
	{Errored, EventConnect}:      {To: Connecting, Effects: renderOnly},

	{Connecting, EventOpened}:         {To: Connected, Effects: renderNotify, Notice: "Connected to server", Severity: SeveritySuccess},
	{Connecting, EventTimeout}:        {To: Errored, Effects: renderNotify, Notice: "Connection timed out", Severity: SeverityError},
	{Connecting, EventTransportError}: {To: Errored, Effects: renderNotify, Notice: "Failed to connect to server", Severity: SeverityError},
	{Connecting, EventClosed}:         {To: Errored, Effects: renderNotify, Notice: "Failed to connect to server", Severity: SeverityError},
	{Connecting, EventDisconnect}:     {To: Disconnected, Effects: renderOnly},

	{Connected, EventClosed}:         {To: Disconnected, Effects: renderNotify, Notice: "Disconnected from server", Severity: SeverityWarning},
	{Connected, EventTransportError}: {To: Errored, Effects: renderNotify, Notice: "Connection lost", Severity: SeverityError},
	{Connected, EventDisconnect}:     {To: Disconnected, Effects: renderOnly},

	{Errored, EventDisconnect}: {To: Disconnected, Effects: renderOnly},
}

// Next looks up the transition for event in state from. Pairs missing from
// the table are ignored by the channel.
func Next(from State, event Event) (Transition, bool) {
	t, ok := transitions[key{from, event}]
	if !ok {
		return Transition{}, false
	}
	t.From = from
	t.Event = event
	return t, true
}
