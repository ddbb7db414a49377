// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mailbox

// Tag identifies a route within its table, in declaration order.
type Tag = uint32

// Binding is a route as seen by the routing table. It is implemented only
// by *Route[H, M, R]; the handler type parameter keeps a table from
// accepting routes declared for another handler.
type Binding[H any] interface {
	bindingName() string
	bindingMode() Mode
	handler(*H)
}

// Table is the closed set of routes a handler type serves, with the
// handling mode of each. It is immutable after NewTable and may be shared
// by any number of channels.
type Table[H any] struct {
	tags  map[Binding[H]]Tag
	names []string
	modes []Mode
}

// NewTable builds a routing table. Tags are assigned in argument order.
// NewTable panics on a nil or duplicate route.
func NewTable[H any](routes ...Binding[H]) *Table[H] {
	t := &Table[H]{
		tags:  make(map[Binding[H]]Tag, len(routes)),
		names: make([]string, 0, len(routes)),
		modes: make([]Mode, 0, len(routes)),
	}
	for _, r := range routes {
		if r == nil {
			panic("mailbox: nil route")
		}
		if _, dup := t.tags[r]; dup {
			panic("mailbox: duplicate route " + r.bindingName())
		}
		t.tags[r] = Tag(len(t.names))
		t.names = append(t.names, r.bindingName())
		t.modes = append(t.modes, r.bindingMode())
	}
	return t
}

// Len returns the number of routes.
func (t *Table[H]) Len() int { return len(t.names) }

// Mode returns the handling mode of tag.
func (t *Table[H]) Mode(tag Tag) Mode {
	return t.modes[tag]
}

// Name returns the route name of tag.
func (t *Table[H]) Name(tag Tag) string {
	return t.names[tag]
}

func (t *Table[H]) lookup(r Binding[H]) (Tag, bool) {
	tag, ok := t.tags[r]
	return tag, ok
}
