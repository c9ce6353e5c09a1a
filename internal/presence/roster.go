package presence

import "sync"

// Roster mantém o conjunto de operadores conhecidos, na ordem de chegada.
type Roster struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]Operator
}

func NewRoster() *Roster {
	return &Roster{byID: map[string]Operator{}}
}

// Attach liga o roster a um canal.
func (r *Roster) Attach(ch Channel) (detach func()) {
	return ch.Subscribe(r.Apply)
}

func (r *Roster) Apply(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch e.Kind {
	case EventSync:
		r.order = r.order[:0]
		r.byID = make(map[string]Operator, len(e.Operators))
		for _, op := range e.Operators {
			r.add(op)
		}
	case EventJoin:
		if e.Operator != nil {
			r.add(*e.Operator)
		}
	case EventLeave:
		if e.Operator != nil {
			r.remove(e.Operator.ID)
		}
	}
}

func (r *Roster) add(op Operator) {
	if op.ID == "" {
		return
	}
	if _, exists := r.byID[op.ID]; !exists {
		r.order = append(r.order, op.ID)
	}
	r.byID[op.ID] = op
}

func (r *Roster) remove(id string) {
	if _, ok := r.byID[id]; !ok {
		return
	}
	delete(r.byID, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			return
		}
	}
}

// Snapshot devolve até MaxVisible operadores distintos, ou os placeholders se vazio.
func (r *Roster) Snapshot() []Operator {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.order) == 0 {
		return placeholders()
	}
	n := min(len(r.order), MaxVisible)
	out := make([]Operator, 0, n)
	for _, id := range r.order[:n] {
		out = append(out, r.byID[id])
	}
	return out
}

// Online é o total real, sem o limite de exibição.
func (r *Roster) Online() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
