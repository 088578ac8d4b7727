package hooks

// table maps model -> event -> handler name -> T. Not safe for concurrent use;
// owners guard it.
type table[T any] struct {
	m map[string]map[string]map[string]T
	n int
}

func newTable[T any]() *table[T] {
	return &table[T]{m: map[string]map[string]map[string]T{}}
}

// add inserts v under (model, event, name) unless that name is already present.
func (t *table[T]) add(model, event, name string, v T) bool {
	events, ok := t.m[model]
	if !ok {
		events = make(map[string]map[string]T)
		t.m[model] = events
	}
	set, ok := events[event]
	if !ok {
		set = make(map[string]T)
		events[event] = set
	}
	if _, dup := set[name]; dup {
		return false
	}
	set[name] = v
	t.n++
	return true
}

// lookup reports false when the model or the event is unknown.
func (t *table[T]) lookup(model, event string) ([]T, bool) {
	events, ok := t.m[model]
	if !ok {
		return nil, false
	}
	set, ok := events[event]
	if !ok || len(set) == 0 {
		return nil, false
	}
	out := make([]T, 0, len(set))
	for _, v := range set {
		out = append(out, v)
	}
	return out, true
}

func (t *table[T]) each(fn func(model, event, name string, v T)) {
	for model, events := range t.m {
		for event, set := range events {
			for name, v := range set {
				fn(model, event, name, v)
			}
		}
	}
}

func (t *table[T]) len() int { return t.n }
