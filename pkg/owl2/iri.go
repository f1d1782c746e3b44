package owl2

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// IRI is an immutable, globally interned identifier. Two IRIs are equal iff
// their interned handles are equal, so IRI equality is an O(1) integer
// comparison rather than a string comparison.
type IRI struct {
	handle int32
}

// String returns the original IRI string, or "<unbound>" for the zero value.
func (i IRI) String() string {
	if i.handle == 0 {
		return "<unbound>"
	}
	return globalInterner.lookup(i.handle)
}

// IsZero reports whether i is the zero IRI (never produced by Intern).
func (i IRI) IsZero() bool { return i.handle == 0 }

// interner is the process-wide, thread-safe IRI string table. Per spec.md
// §9 "Global state", this is the only process-wide mutable structure in the
// core; its writers are the parser phase (via Intern), never the reasoner
// itself, which only performs read lookups. Safe for concurrent readers and
// writers alike via a single RWMutex, mirroring the lock pattern used for
// *Var in core.go.
type interner struct {
	mu      sync.RWMutex
	strings []string       // handle i-1 -> string, handle 0 reserved as "unbound"
	index   map[string]int32
}

var globalInterner = newInterner()

func newInterner() *interner {
	return &interner{
		strings: make([]string, 0, 1024),
		index:   make(map[string]int32, 1024),
	}
}

// Intern interns str and returns a stable IRI handle. Interning is
// idempotent: interning the same string twice returns equal IRIs.
// An empty string is rejected as malformed input.
func Intern(str string) (IRI, error) {
	if str == "" {
		return IRI{}, NewParseInputError("cannot intern empty IRI string")
	}
	globalInterner.mu.RLock()
	if h, ok := globalInterner.index[str]; ok {
		globalInterner.mu.RUnlock()
		return IRI{handle: h}, nil
	}
	globalInterner.mu.RUnlock()

	globalInterner.mu.Lock()
	defer globalInterner.mu.Unlock()
	// Re-check under the write lock: another writer may have interned the
	// same string while we waited.
	if h, ok := globalInterner.index[str]; ok {
		return IRI{handle: h}, nil
	}
	globalInterner.strings = append(globalInterner.strings, str)
	h := int32(len(globalInterner.strings))
	globalInterner.index[str] = h
	return IRI{handle: h}, nil
}

// MustIntern interns str and panics on error. Intended for test fixtures
// and compiled-in constants, never for user input.
func MustIntern(str string) IRI {
	i, err := Intern(str)
	if err != nil {
		panic(err)
	}
	return i
}

func (in *interner) lookup(h int32) string {
	in.mu.RLock()
	defer in.mu.RUnlock()
	if h <= 0 || int(h) > len(in.strings) {
		return ""
	}
	return in.strings[h-1]
}

// ResetInternerForTest clears the global intern table. It exists only to
// keep IRI handles small and deterministic across independent test files;
// it must never be called while any Reasoner built against previously
// interned IRIs is still in use (spec.md §9: "any teardown must drop all
// reasoners before dropping the intern table").
func ResetInternerForTest() {
	globalInterner.mu.Lock()
	defer globalInterner.mu.Unlock()
	globalInterner.strings = globalInterner.strings[:0]
	globalInterner.index = make(map[string]int32, 1024)
}

// EntityKind enumerates the OWL 2 entity categories (spec.md §3).
type EntityKind int

const (
	KindClass EntityKind = iota
	KindObjectProperty
	KindDataProperty
	KindNamedIndividual
	KindAnonymousIndividual
	KindDatatype
)

// String returns a human-readable entity kind name.
func (k EntityKind) String() string {
	switch k {
	case KindClass:
		return "Class"
	case KindObjectProperty:
		return "ObjectProperty"
	case KindDataProperty:
		return "DataProperty"
	case KindNamedIndividual:
		return "NamedIndividual"
	case KindAnonymousIndividual:
		return "AnonymousIndividual"
	case KindDatatype:
		return "Datatype"
	default:
		return "Unknown"
	}
}

// Entity is one of Class, ObjectProperty, DataProperty, NamedIndividual,
// AnonymousIndividual, or Datatype. Every entity carries an IRI except
// anonymous individuals, which carry a locally unique tag instead (spec.md
// §3). The tag is generated with a UUID so that two anonymous individuals
// from independently-parsed ontologies never collide once merged.
type Entity struct {
	Kind EntityKind
	iri  IRI    // zero for anonymous individuals
	tag  string // non-empty only for anonymous individuals
}

// NewNamedEntity constructs a named entity of the given kind.
func NewNamedEntity(kind EntityKind, iri IRI) (Entity, error) {
	if kind == KindAnonymousIndividual {
		return Entity{}, NewInvalidEntityError("anonymous individuals must be created with NewAnonymousIndividual")
	}
	if iri.IsZero() {
		return Entity{}, NewInvalidEntityError("named entity requires a non-zero IRI")
	}
	return Entity{Kind: kind, iri: iri}, nil
}

// NewAnonymousIndividual creates a fresh anonymous individual with a
// process-unique tag.
func NewAnonymousIndividual() Entity {
	return Entity{Kind: KindAnonymousIndividual, tag: "_:b" + uuid.NewString()}
}

// IRI returns the entity's IRI. It is the zero IRI for anonymous
// individuals; callers must check Kind first.
func (e Entity) IRI() IRI { return e.iri }

// Tag returns the entity's locally-unique tag. It is empty for every kind
// except AnonymousIndividual.
func (e Entity) Tag() string { return e.tag }

// String returns a human-readable representation of the entity.
func (e Entity) String() string {
	if e.Kind == KindAnonymousIndividual {
		return e.tag
	}
	return fmt.Sprintf("%s(%s)", e.Kind, e.iri)
}

// EntityStore resolves interned IRIs to typed entities and back. It is the
// concurrent-read-safe façade described in spec.md §4.A; writers are
// expected to be the ingestion/parsing phase, readers the reasoner core.
type EntityStore struct {
	mu       sync.RWMutex
	entities map[IRI]Entity
}

// NewEntityStore creates an empty entity store.
func NewEntityStore() *EntityStore {
	return &EntityStore{entities: make(map[IRI]Entity, 256)}
}

// Declare registers iri as an entity of the given kind. Declaring the same
// IRI with the same kind twice is idempotent; declaring it with a
// different kind returns ErrInvalidEntity (an IRI cannot simultaneously
// name, say, a class and a property).
func (s *EntityStore) Declare(kind EntityKind, iri IRI) (Entity, error) {
	if kind == KindAnonymousIndividual {
		return Entity{}, NewInvalidEntityError("anonymous individuals are not declared by IRI")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.entities[iri]; ok {
		if existing.Kind != kind {
			return Entity{}, NewInvalidEntityError(
				"IRI %s already declared as %s, cannot redeclare as %s", iri, existing.Kind, kind)
		}
		return existing, nil
	}
	e := Entity{Kind: kind, iri: iri}
	s.entities[iri] = e
	return e, nil
}

// Lookup resolves iri to its declared entity. ok is false if iri was never
// declared.
func (s *EntityStore) Lookup(iri IRI) (Entity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entities[iri]
	return e, ok
}

// ClassOf resolves iri to a Class entity, or ErrInvalidEntity if iri names
// something else (or nothing).
func (s *EntityStore) ClassOf(iri IRI) (Entity, error) {
	return s.kindOf(iri, KindClass)
}

// ObjectPropertyOf resolves iri to an ObjectProperty entity.
func (s *EntityStore) ObjectPropertyOf(iri IRI) (Entity, error) {
	return s.kindOf(iri, KindObjectProperty)
}

// DataPropertyOf resolves iri to a DataProperty entity.
func (s *EntityStore) DataPropertyOf(iri IRI) (Entity, error) {
	return s.kindOf(iri, KindDataProperty)
}

// IndividualOf resolves iri to a NamedIndividual entity.
func (s *EntityStore) IndividualOf(iri IRI) (Entity, error) {
	return s.kindOf(iri, KindNamedIndividual)
}

// EntitiesOfKind returns every declared entity of the given kind, used by
// the reasoner façade to enumerate named classes for classification and
// named individuals for instance retrieval (spec.md §6 "classify()",
// "instances_of(class_expr)").
func (s *EntityStore) EntitiesOfKind(kind EntityKind) []IRI {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []IRI
	for iri, e := range s.entities {
		if e.Kind == kind {
			out = append(out, iri)
		}
	}
	return out
}

func (s *EntityStore) kindOf(iri IRI, want EntityKind) (Entity, error) {
	e, ok := s.Lookup(iri)
	if !ok {
		return Entity{}, NewInvalidEntityError("IRI %s is not declared", iri)
	}
	if e.Kind != want {
		return Entity{}, NewInvalidEntityError("IRI %s is a %s, not a %s", iri, e.Kind, want)
	}
	return e, nil
}
