package presence

type EventKind string

const (
	EventSync  EventKind = "sync"
	EventJoin  EventKind = "join"
	EventLeave EventKind = "leave"
)

// Event é a união {sync, join, leave}. Sync carrega Operators; join/leave carregam Operator.
type Event struct {
	Kind      EventKind  `json:"type"`
	Operators []Operator `json:"operators,omitempty"`
	Operator  *Operator  `json:"operator,omitempty"`
}

func SyncEvent(ops []Operator) Event {
	return Event{Kind: EventSync, Operators: append([]Operator(nil), ops...)}
}

func JoinEvent(op Operator) Event { return Event{Kind: EventJoin, Operator: &op} }

func LeaveEvent(op Operator) Event { return Event{Kind: EventLeave, Operator: &op} }

// Channel é o transporte que alimenta o Roster.
type Channel interface {
	Subscribe(fn func(Event)) (unsubscribe func())
}

// StaticChannel é a variante sem conectividade: sempre os mesmos três operadores.
type StaticChannel struct {
	Operators []Operator
}

func NewStaticChannel() *StaticChannel {
	return &StaticChannel{Operators: []Operator{
		{ID: "static-1", Initials: "JD", Hue: 210},
		{ID: "static-2", Initials: "MR", Hue: 140},
		{ID: "static-3", Initials: "AL", Hue: 20},
	}}
}

func (c *StaticChannel) Subscribe(fn func(Event)) func() {
	fn(SyncEvent(c.Operators))
	return func() {}
}
