package layout

import (
	"fmt"
	"slices"
)

// Library is a catalog of cross-boundary struct definitions. A name is the
// contract key between host and shader, so the catalog never holds two
// different definitions under one name.
type Library struct {
	defs  map[string]*Struct
	order []string
}

// NewLibrary returns a library holding defs. It panics if they conflict,
// which makes it suitable for package-level catalogs.
func NewLibrary(defs ...*Struct) *Library {
	l := &Library{defs: make(map[string]*Struct)}
	for _, s := range defs {
		if err := l.Add(s); err != nil {
			panic(err)
		}
	}
	return l
}

// Add stores a copy of s and of every struct nested in it. Adding a
// definition identical to a stored one is a no-op; adding a different one
// under a stored name fails with ErrNameConflict. A failed Add leaves the
// library unchanged.
func (l *Library) Add(s *Struct) error {
	if l.defs == nil {
		l.defs = make(map[string]*Struct)
	}
	st := &staging{lib: l, defs: make(map[string]*Struct)}
	if err := st.add(s, nil); err != nil {
		return err
	}
	for _, n := range st.order {
		l.defs[n] = st.defs[n]
	}
	l.order = append(l.order, st.order...)
	return nil
}

// staging collects the definitions of one Add until every check passes.
type staging struct {
	lib   *Library
	defs  map[string]*Struct
	order []string
}

func (st *staging) lookup(name string) (*Struct, bool) {
	if s, ok := st.lib.defs[name]; ok {
		return s, true
	}
	s, ok := st.defs[name]
	return s, ok
}

func (st *staging) add(s *Struct, stack []*Struct) error {
	if s == nil {
		return definitionError("?", "", "nil struct")
	}
	if slices.Contains(stack, s) {
		return definitionError(s.Name, "", "recursive definition")
	}
	stack = append(stack, s)
	for _, f := range s.Fields {
		if f.Kind == KindStruct && f.Struct != nil {
			if err := st.add(f.Struct, stack); err != nil {
				return err
			}
		}
	}
	if prev, ok := st.lookup(s.Name); ok {
		if Canonical(prev) != Canonical(s) {
			return fmt.Errorf("%w: %s\n  have %s\n  new  %s", ErrNameConflict, s.Name, Canonical(prev), Canonical(s))
		}
		return nil
	}
	st.defs[s.Name] = s.Clone()
	st.order = append(st.order, s.Name)
	return nil
}

// Lookup returns a copy of the definition stored under name.
func (l *Library) Lookup(name string) (*Struct, bool) {
	s, ok := l.defs[name]
	if !ok {
		return nil, false
	}
	return s.Clone(), true
}

// Len returns the number of definitions.
func (l *Library) Len() int { return len(l.order) }

// Names returns the sorted definition names.
func (l *Library) Names() []string {
	names := slices.Clone(l.order)
	slices.Sort(names)
	return names
}

// Definitions returns copies of the definitions in dependency order:
// nested structs precede the structs that embed them.
func (l *Library) Definitions() []*Struct {
	out := make([]*Struct, len(l.order))
	for i, n := range l.order {
		out[i] = l.defs[n].Clone()
	}
	return out
}

// Resolve checks that every address target names a definition in the
// library.
func (l *Library) Resolve() error {
	for _, n := range l.order {
		for _, f := range l.defs[n].Fields {
			if f.Target == "" {
				continue
			}
			if _, ok := l.defs[f.Target]; !ok {
				return fmt.Errorf("%w: %s.%s targets %q", ErrUnknownStruct, n, f.Name, f.Target)
			}
		}
	}
	return nil
}

// ComputeAll derives the layout of every definition under c, in
// Definitions order.
func (l *Library) ComputeAll(c Convention) ([]*Layout, error) {
	out := make([]*Layout, 0, len(l.order))
	for _, n := range l.order {
		lay, err := Compute(l.defs[n], c)
		if err != nil {
			return nil, err
		}
		out = append(out, lay)
	}
	return out, nil
}
