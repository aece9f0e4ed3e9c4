package highlight

import (
	"errors"
	"maps"
	"slices"
	"strconv"

	"github.com/google/uuid"

	kerrors "github.com/matzehuels/kinship/pkg/errors"
)

var (
	// ErrCapacityExceeded is returned by [Registry.Add] when the registry
	// already holds its maximum number of definitions. The returned registry
	// is the unchanged receiver.
	ErrCapacityExceeded = errors.New("highlight capacity exceeded")

	// ErrDuplicateID is returned by [Registry.Add] when a definition's ID is
	// already registered.
	ErrDuplicateID = errors.New("duplicate highlight ID")
)

// idNamespace scopes generated highlight IDs.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("kinship.highlight"))

// Registry is an immutable set of highlight definitions keyed by ID.
//
// Every operation returns a new Registry and leaves the receiver untouched,
// so the UI layer can keep previous states for undo or replay and callers can
// memoize on a registry value. Generated IDs and CreatedAt stamps derive from
// an internal sequence, never from the wall clock: replaying the same
// operations yields identical registries.
//
// The zero value is an empty registry with the default capacity.
type Registry struct {
	defs     map[string]Definition
	seq      int64
	capacity int
}

// RegistryOption configures a new registry.
type RegistryOption func(*Registry)

// WithCapacity lowers the definition ceiling. Values outside
// (0, MaxHighlights] are ignored; the hard ceiling cannot be raised.
func WithCapacity(n int) RegistryOption {
	return func(r *Registry) {
		if n > 0 && n <= MaxHighlights {
			r.capacity = n
		}
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) Registry {
	var r Registry
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// Capacity returns the maximum number of definitions the registry accepts.
func (r Registry) Capacity() int {
	if r.capacity == 0 {
		return MaxHighlights
	}
	return r.capacity
}

// Len returns the number of registered definitions.
func (r Registry) Len() int { return len(r.defs) }

// Get returns the definition with the given ID.
func (r Registry) Get(id string) (Definition, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// Definitions returns all definitions ordered by CreatedAt, then ID.
// Aggregating in this order makes contribution lists deterministic.
func (r Registry) Definitions() []Definition {
	out := slices.Collect(maps.Values(r.defs))
	slices.SortFunc(out, func(a, b Definition) int {
		if a.CreatedAt != b.CreatedAt {
			if a.CreatedAt < b.CreatedAt {
				return -1
			}
			return 1
		}
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	return out
}

// Add registers def and returns the new registry along with the stored
// definition (with ID, CreatedAt and style defaults filled in).
//
// Add never panics. It returns the receiver unchanged and an error when the
// registry is full ([ErrCapacityExceeded]), the ID is taken
// ([ErrDuplicateID]) or the definition is invalid. All errors carry a
// pkg/errors code.
func (r Registry) Add(def Definition) (Registry, Definition, error) {
	if r.Len() >= r.Capacity() {
		return r, Definition{}, kerrors.Wrap(kerrors.ErrCodeCapacityExceeded, ErrCapacityExceeded,
			"registry holds %d of %d highlights", r.Len(), r.Capacity())
	}
	if err := def.Validate(); err != nil {
		return r, Definition{}, err
	}

	next := r.clone()
	next.seq++
	if def.ID == "" {
		def.ID = generateID(next.seq)
	}
	if _, exists := r.defs[def.ID]; exists {
		return r, Definition{}, kerrors.Wrap(kerrors.ErrCodeInvalidHighlight, ErrDuplicateID,
			"highlight %q already registered", def.ID)
	}
	def.CreatedAt = next.seq
	def.Style = def.Style.WithDefaults()

	next.defs[def.ID] = def
	return next, def, nil
}

// Remove returns a registry without the definition. Unknown IDs are a no-op.
func (r Registry) Remove(id string) Registry {
	if _, ok := r.defs[id]; !ok {
		return r
	}
	next := r.clone()
	delete(next.defs, id)
	return next
}

// Update merges patch into the style and priority of the definition. Kind,
// parameters, ID and CreatedAt never change. Patched values are kept as
// given, so an explicit zero opacity or stroke width hides the highlight
// rather than restoring the default. Unknown IDs are a no-op; a patch
// producing an invalid style returns the receiver and an error.
func (r Registry) Update(id string, patch StylePatch) (Registry, error) {
	def, ok := r.defs[id]
	if !ok {
		return r, nil
	}
	if patch.Color != nil {
		def.Style.Color = *patch.Color
	}
	if patch.Opacity != nil {
		def.Style.Opacity = *patch.Opacity
	}
	if patch.StrokeWidth != nil {
		def.Style.StrokeWidth = *patch.StrokeWidth
	}
	if patch.Priority != nil {
		def.Priority = *patch.Priority
	}
	if err := def.Style.Validate(); err != nil {
		return r, err
	}
	if def.Style.Color == "" {
		def.Style.Color = DefaultColor
	}
	def.Style.Color = NormalizeColor(def.Style.Color)

	next := r.clone()
	next.defs[id] = def
	return next, nil
}

// Clear returns an empty registry with the same capacity. The sequence keeps
// counting so IDs generated after a clear never repeat earlier ones.
func (r Registry) Clear() Registry {
	return Registry{seq: r.seq, capacity: r.capacity}
}

func (r Registry) clone() Registry {
	next := r
	next.defs = make(map[string]Definition, len(r.defs)+1)
	maps.Copy(next.defs, r.defs)
	return next
}

// generateID derives a stable UUID from the registry sequence number.
func generateID(seq int64) string {
	return uuid.NewSHA1(idNamespace, []byte(strconv.FormatInt(seq, 10))).String()
}

// Stats are diagnostic counts for telemetry. They are not meant to drive
// control flow.
type Stats struct {
	Definitions int `json:"definitions"`
	Segments    int `json:"segments"`
	Overlapping int `json:"overlapping"`
}

// StatsOf summarizes a registry and the segment table computed from it.
func StatsOf(r Registry, segs SegmentMap) Stats {
	return Stats{
		Definitions: r.Len(),
		Segments:    len(segs),
		Overlapping: segs.OverlapCount(),
	}
}
