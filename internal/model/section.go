package model

// BlockKind identifies the renderable shape of a block.
type BlockKind int

const (
	// BlockKindTable is a header-and-rows table.
	BlockKindTable BlockKind = iota

	// BlockKindList is an ordered or unordered list of items.
	BlockKindList

	// BlockKindScalar is a single labelled value, e.g. a score banner.
	BlockKindScalar
)

// String returns a human-readable representation of the block kind.
func (k BlockKind) String() string {
	switch k {
	case BlockKindTable:
		return "table"
	case BlockKindList:
		return "list"
	case BlockKindScalar:
		return "scalar"
	default:
		return "unknown"
	}
}

// Block is one renderable unit inside a Section. Renderers type-switch on
// the concrete type; Kind is a convenience for serialization.
type Block interface {
	// Kind returns the renderable shape of the block.
	Kind() BlockKind
}

// Table is a header-and-rows block. Row cells are pre-formatted strings;
// all presentational concerns beyond cell content belong to the renderer.
type Table struct {
	// Caption is an optional heading rendered above the table.
	Caption string `json:"caption,omitempty"`

	// Header holds the column titles.
	Header []string `json:"header"`

	// Rows holds the table body, one string per column.
	Rows [][]string `json:"rows"`
}

// Kind implements Block.
func (Table) Kind() BlockKind { return BlockKindTable }

// List is an itemized block, rendered ordered or unordered.
type List struct {
	// Caption is an optional heading rendered above the list.
	Caption string `json:"caption,omitempty"`

	// Items holds the list entries in display order.
	Items []string `json:"items"`

	// Ordered renders the list numbered when true.
	Ordered bool `json:"ordered"`
}

// Kind implements Block.
func (List) Kind() BlockKind { return BlockKindList }

// Scalar is a single labelled value, used for scores and one-line verdicts.
type Scalar struct {
	// Label names the value.
	Label string `json:"label"`

	// Value is the pre-formatted value text.
	Value string `json:"value"`
}

// Kind implements Block.
func (Scalar) Kind() BlockKind { return BlockKindScalar }

// Section is one ordered output unit of the report: a title, a category
// tag, and one or more renderable blocks. Sections are owned solely by the
// composer once produced; the orchestrator appends them in canonical
// provider order and never mutates them.
type Section struct {
	// Title is the section heading.
	Title string `json:"title"`

	// Category tags the section with its intelligence domain,
	// e.g. "traffic" or "weather".
	Category string `json:"category"`

	// Blocks holds the section content in fixed display order.
	Blocks []Block `json:"blocks"`
}
