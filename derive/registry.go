package derive

import (
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

// Registry is an append-only store of derived units keyed by fingerprint.
// Storing a unit whose fingerprint is already present returns the stored
// unit and fails if the two differ, which would mean derivation is not
// deterministic. A changed definition gets a new fingerprint and is
// appended to the history of its name.
//
// Registry is safe for concurrent use.
type Registry struct {
	mu      sync.Mutex
	units   map[string]*Unit
	history map[string][]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{units: make(map[string]*Unit), history: make(map[string][]string)}
}

// Put stores u and returns the stored unit for its fingerprint.
func (r *Registry) Put(u *Unit) (*Unit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.units[u.Fingerprint]; ok {
		if !prev.Equal(u) {
			return prev, fmt.Errorf("%w: %s (%s)", ErrNondeterministic, u.Name, u.Fingerprint[:12])
		}
		return prev, nil
	}
	r.units[u.Fingerprint] = u
	r.history[u.Name] = append(r.history[u.Name], u.Fingerprint)
	return u, nil
}

// Get returns the unit stored under a fingerprint.
func (r *Registry) Get(fingerprint string) (*Unit, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.units[fingerprint]
	return u, ok
}

// Latest returns the most recently appended unit for name.
func (r *Registry) Latest(name string) (*Unit, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h := r.history[name]
	if len(h) == 0 {
		return nil, false
	}
	return r.units[h[len(h)-1]], true
}

// History returns every unit stored for name, oldest first.
func (r *Registry) History(name string) []*Unit {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Unit, 0, len(r.history[name]))
	for _, fp := range r.history[name] {
		out = append(out, r.units[fp])
	}
	return out
}

// Len returns the number of stored units.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.units)
}

// ManifestEntry records the layout a unit was derived with.
type ManifestEntry struct {
	Name        string   `toml:"name"`
	Fingerprint string   `toml:"fingerprint"`
	Convention  string   `toml:"convention"`
	Size        uint32   `toml:"size"`
	Align       uint32   `toml:"align"`
	Offsets     []uint32 `toml:"offsets"`
}

// Manifest is the persisted record of derived layouts. Checked in next to
// the generated files, it lets a later build prove that a definition with an
// unchanged fingerprint still derives to the same layout.
type Manifest struct {
	Units []ManifestEntry `toml:"unit"`
}

// Entry returns a manifest entry for u.
func (u *Unit) Entry() ManifestEntry {
	return ManifestEntry{
		Name:        u.Name,
		Fingerprint: u.Fingerprint,
		Convention:  u.Convention.String(),
		Size:        u.Layout.Size,
		Align:       u.Layout.Align,
		Offsets:     u.Layout.Offsets(),
	}
}

// Manifest returns the latest unit of every name, sorted by name.
func (r *Registry) Manifest() Manifest {
	r.mu.Lock()
	names := make([]string, 0, len(r.history))
	for n := range r.history {
		names = append(names, n)
	}
	r.mu.Unlock()
	slices.Sort(names)

	var m Manifest
	for _, n := range names {
		u, _ := r.Latest(n)
		m.Units = append(m.Units, u.Entry())
	}
	return m
}

// Verify compares units against the manifest. A unit whose fingerprint is
// recorded must reproduce the recorded layout exactly.
func (m Manifest) Verify(units []*Unit) error {
	byFP := make(map[string]ManifestEntry, len(m.Units))
	for _, e := range m.Units {
		byFP[e.Fingerprint] = e
	}
	for _, u := range units {
		e, ok := byFP[u.Fingerprint]
		if !ok {
			continue
		}
		got := u.Entry()
		if e.Size != got.Size || e.Align != got.Align || !slices.Equal(e.Offsets, got.Offsets) {
			return fmt.Errorf("%w: %s: recorded size %d align %d offsets %v, derived size %d align %d offsets %v",
				ErrNondeterministic, u.Name, e.Size, e.Align, e.Offsets, got.Size, got.Align, got.Offsets)
		}
	}
	return nil
}

// Changed returns the names whose fingerprint differs from the manifest.
func (m Manifest) Changed(units []*Unit) []string {
	byName := make(map[string]string, len(m.Units))
	for _, e := range m.Units {
		byName[e.Name] = e.Fingerprint
	}
	var out []string
	for _, u := range units {
		if fp, ok := byName[u.Name]; ok && fp != u.Fingerprint {
			out = append(out, u.Name)
		}
	}
	return out
}

// WriteManifest encodes m as TOML.
func WriteManifest(w io.Writer, m Manifest) error {
	return toml.NewEncoder(w).Encode(m)
}

// ReadManifest decodes a TOML manifest.
func ReadManifest(r io.Reader) (Manifest, error) {
	var m Manifest
	if err := toml.NewDecoder(r).Decode(&m); err != nil {
		return Manifest{}, fmt.Errorf("derive: read manifest: %w", err)
	}
	return m, nil
}
