package object

// EventRegistry holds every named event's declared shape and its
// subscribed handlers, in registration order (spec §4.4: "handlers run
// in the order they were registered"). The evaluator and the VM share
// one registry instance per program run so `register_event` (a
// built-in call) and `emit` (a statement/opcode) observe the same
// state regardless of which execution path drives them.
type EventRegistry struct {
	descriptors map[string]EventDescriptor
	handlers    map[string][]Value
}

func NewEventRegistry() *EventRegistry {
	return &EventRegistry{
		descriptors: map[string]EventDescriptor{},
		handlers:    map[string][]Value{},
	}
}

// Declare records an event's shape, as collected from an `event`
// declaration by the semantic analyzer.
func (r *EventRegistry) Declare(d EventDescriptor) {
	r.descriptors[d.Name] = d
}

func (r *EventRegistry) Declared(name string) (EventDescriptor, bool) {
	d, ok := r.descriptors[name]
	return d, ok
}

// Register subscribes handler to name, appending to the FIFO list.
func (r *EventRegistry) Register(name string, handler Value) {
	r.handlers[name] = append(r.handlers[name], handler)
}

// Handlers returns name's subscribers in registration order.
func (r *EventRegistry) Handlers(name string) []Value {
	return r.handlers[name]
}

// ApplyEventDefaults type-checks an emit payload against a declared
// event's field schema per spec §4.4 ("names match; any missing field
// is null"): every field named in fields that payload lacks is set to
// NullValue. A payload that isn't a *Map (malformed emit) is returned
// unchanged — there is no schema to apply it against.
func ApplyEventDefaults(payload Value, fields []string) Value {
	m, ok := payload.(*Map)
	if !ok {
		return payload
	}
	for _, field := range fields {
		if _, exists := m.Entries[field]; !exists {
			m.Set(field, NullValue)
		}
	}
	return m
}
