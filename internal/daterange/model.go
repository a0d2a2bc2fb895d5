// Package daterange holds the range selection model behind the picker: the
// current from/to pair, its normalization rules and change fan-out.
package daterange

// DateAdapter supplies the only date operations the model relies on.
type DateAdapter[D any] interface {
	Compare(a, b D) int
	IsSameDay(a, b D) bool
	Today() D
}

// Selection is a from/to pair. A nil field is absent.
type Selection[D any] struct {
	From *D
	To   *D
}

// Of builds a Selection with both ends set.
func Of[D any](from, to D) Selection[D] {
	return Selection[D]{From: &from, To: &to}
}

// Empty reports whether neither end is set.
func (s Selection[D]) Empty() bool { return s.From == nil && s.To == nil }

// Side names one end of a selection.
type Side int

const (
	SideFrom Side = iota
	SideTo
)

func (s Side) String() string {
	if s == SideTo {
		return "to"
	}
	return "from"
}

// Listener receives the selection passed to Select when it changed the model.
type Listener[D any] func(Selection[D])

// Unsubscribe removes a listener. Calling it more than once is a no-op.
type Unsubscribe func()

type subscription[D any] struct {
	id int
	fn Listener[D]
}

// Model owns the current selection. It is not safe for concurrent use; one
// widget owns one model.
type Model[D any] struct {
	adapter   DateAdapter[D]
	current   Selection[D]
	minToDate *D
	listeners []subscription[D]
	nextID    int
}

// New returns an empty model backed by adapter.
func New[D any](adapter DateAdapter[D]) *Model[D] {
	return &Model[D]{adapter: adapter}
}

// Current returns the last normalized selection.
func (m *Model[D]) Current() Selection[D] {
	return Selection[D]{From: clone(m.current.From), To: clone(m.current.To)}
}

// MinToDate is the lower bound a "to" pick must satisfy, nil before the first Select.
func (m *Model[D]) MinToDate() *D { return clone(m.minToDate) }

// ToDateFilter reports whether d is an acceptable "to" date. Before the first
// Select every date is accepted.
func (m *Model[D]) ToDateFilter() func(D) bool {
	from := clone(m.current.From)
	return func(d D) bool {
		if from == nil {
			return true
		}
		return m.adapter.Compare(d, *from) >= 0
	}
}

// Select normalizes candidate, stores it and notifies subscribers when the
// stored value changed by day or forceNotify is set. Listeners receive the
// candidate as passed, not the normalized value; Current holds the latter.
func (m *Model[D]) Select(candidate Selection[D], forceNotify bool) Selection[D] {
	next := m.normalize(candidate)

	changed := forceNotify ||
		!m.sameDay(m.current.From, next.From) ||
		!m.sameDay(m.current.To, next.To)

	m.current = next
	m.minToDate = clone(next.From)

	if changed {
		m.notify(Selection[D]{From: clone(candidate.From), To: clone(candidate.To)})
	}
	return m.Current()
}

// AcceptCalendarPick replaces one side of the current selection with date
// and selects the result.
func (m *Model[D]) AcceptCalendarPick(side Side, date D) Selection[D] {
	working := m.Current()
	if side == SideTo {
		working.To = &date
	} else {
		working.From = &date
	}
	return m.Select(working, false)
}

// Subscribe registers fn. Listeners run synchronously in registration order.
func (m *Model[D]) Subscribe(fn Listener[D]) Unsubscribe {
	m.nextID++
	id := m.nextID
	m.listeners = append(m.listeners, subscription[D]{id: id, fn: fn})
	return func() {
		for i, s := range m.listeners {
			if s.id == id {
				m.listeners = append(m.listeners[:i:i], m.listeners[i+1:]...)
				return
			}
		}
	}
}

// Close drops every subscriber.
func (m *Model[D]) Close() { m.listeners = nil }

func (m *Model[D]) normalize(c Selection[D]) Selection[D] {
	from, to := clone(c.From), clone(c.To)
	switch {
	case from == nil && to == nil:
		t := m.adapter.Today()
		from, to = clone(&t), clone(&t)
	case from == nil:
		from = clone(to)
	case to == nil:
		to = clone(from)
	}
	if m.adapter.Compare(*from, *to) > 0 {
		to = clone(from)
	}
	return Selection[D]{From: from, To: to}
}

func (m *Model[D]) sameDay(a, b *D) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return m.adapter.IsSameDay(*a, *b)
}

func (m *Model[D]) notify(sel Selection[D]) {
	// Copy so a listener may unsubscribe while being called.
	subs := append([]subscription[D](nil), m.listeners...)
	for _, s := range subs {
		s.fn(sel)
	}
}

func clone[D any](p *D) *D {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
