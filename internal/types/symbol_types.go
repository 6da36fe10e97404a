package types

// SymbolKind classifies a declared entity. Provider-native node kinds are
// mapped onto this closed set through static tables; no component inspects
// provider node types directly.
type SymbolKind uint8

const (
	SymbolKindUnknown SymbolKind = iota
	SymbolKindNamespace
	SymbolKindClass
	SymbolKindStruct
	SymbolKindInterface
	SymbolKindEnum
	SymbolKindEnumMember
	SymbolKindFunction
	SymbolKindMethod
	SymbolKindConstructor
	SymbolKindDestructor
	SymbolKindOperator
	SymbolKindField
	SymbolKindProperty
	SymbolKindVariable
	SymbolKindParameter
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolKindNamespace:
		return "namespace"
	case SymbolKindClass:
		return "class"
	case SymbolKindStruct:
		return "struct"
	case SymbolKindInterface:
		return "interface"
	case SymbolKindEnum:
		return "enum"
	case SymbolKindEnumMember:
		return "enum_member"
	case SymbolKindFunction:
		return "function"
	case SymbolKindMethod:
		return "method"
	case SymbolKindConstructor:
		return "constructor"
	case SymbolKindDestructor:
		return "destructor"
	case SymbolKindOperator:
		return "operator"
	case SymbolKindField:
		return "field"
	case SymbolKindProperty:
		return "property"
	case SymbolKindVariable:
		return "variable"
	case SymbolKindParameter:
		return "parameter"
	default:
		return "unknown"
	}
}

// SymbolHandle is an opaque, comparable-by-value reference to a declared
// entity resolved against one specific snapshot. A handle is only meaningful
// against the snapshot whose version it carries; after a commit the caller
// must re-resolve.
//
// A handle may carry multiple declaration sites (partial types, overload
// groups collapsed onto one logical entity).
type SymbolHandle struct {
	Snapshot      SnapshotVersion `json:"snapshot"`
	Name          string          `json:"name"`
	QualifiedName string          `json:"qualified_name"`
	Kind          SymbolKind      `json:"kind"`
	Static        bool            `json:"static,omitempty"`
	// External marks an entity with no in-source declaration location,
	// i.e. declared outside the editable project.
	External     bool       `json:"external,omitempty"`
	Declarations []Location `json:"declarations"`
}

// DeclaringDocuments returns the distinct documents holding declaration sites,
// in first-seen order.
func (h SymbolHandle) DeclaringDocuments() []DocumentID {
	seen := make(map[DocumentID]bool, len(h.Declarations))
	var docs []DocumentID
	for _, d := range h.Declarations {
		if !seen[d.Document] {
			seen[d.Document] = true
			docs = append(docs, d.Document)
		}
	}
	return docs
}

// ReferenceKind classifies one textual occurrence of a symbol.
type ReferenceKind uint8

const (
	ReferenceRead ReferenceKind = iota
	ReferenceWrite
	ReferenceDefinition
)

func (k ReferenceKind) String() string {
	switch k {
	case ReferenceWrite:
		return "write"
	case ReferenceDefinition:
		return "definition"
	default:
		return "read"
	}
}

// ReferenceSite is one occurrence of a symbol in one document. Length is the
// identifier length in bytes so editors can splice replacements precisely.
type ReferenceSite struct {
	Document DocumentID    `json:"document"`
	Path     string        `json:"path"`
	Line     int           `json:"line"`
	Column   int           `json:"column"`
	Length   int           `json:"length"`
	Kind     ReferenceKind `json:"kind"`
}

// ReferenceSet is the full impact set for one symbol: every read, write and
// definition site across the snapshot the symbol was resolved against.
// TotalCount is authoritative for "how many places will change" and always
// equals len(Sites) when no truncation was applied.
type ReferenceSet struct {
	Symbol     SymbolHandle    `json:"symbol"`
	Snapshot   SnapshotVersion `json:"snapshot"`
	Sites      []ReferenceSite `json:"sites"`
	TotalCount int             `json:"total_count"`
}

// SitesIn returns the sites belonging to one document, preserving order.
func (rs ReferenceSet) SitesIn(doc DocumentID) []ReferenceSite {
	var out []ReferenceSite
	for _, s := range rs.Sites {
		if s.Document == doc {
			out = append(out, s)
		}
	}
	return out
}
