package style

import "fmt"

// Edge names one side of the document's content box.
type Edge int

const (
	Top Edge = iota
	Bottom
	Left
	Right
)

// Edges lists every edge in the order they are applied.
var Edges = [...]Edge{Top, Bottom, Left, Right}

func (e Edge) String() string {
	switch e {
	case Top:
		return "top"
	case Bottom:
		return "bottom"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return fmt.Sprintf("edge(%d)", int(e))
}

// PaddingSpec is an optional set of insets. All is a shorthand for every
// edge; a specific edge overrides All for that edge only. A nil field means
// the document's current value for that edge is left alone.
type PaddingSpec struct {
	All    *float64 `yaml:"all"`
	Top    *float64 `yaml:"top"`
	Bottom *float64 `yaml:"bottom"`
	Left   *float64 `yaml:"left"`
	Right  *float64 `yaml:"right"`
}

// Insets holds one optional value per edge, indexed by Edge.
type Insets [4]*float64

// Resolve folds the All shorthand into per-edge values.
func (p PaddingSpec) Resolve() Insets {
	var in Insets
	for _, e := range Edges {
		in[e] = p.All
	}
	if p.Top != nil {
		in[Top] = p.Top
	}
	if p.Bottom != nil {
		in[Bottom] = p.Bottom
	}
	if p.Left != nil {
		in[Left] = p.Left
	}
	if p.Right != nil {
		in[Right] = p.Right
	}
	return in
}

// IsZero reports whether no edge is specified.
func (p PaddingSpec) IsZero() bool {
	return p.All == nil && p.Top == nil && p.Bottom == nil && p.Left == nil && p.Right == nil
}

// Float returns a pointer to v, for building PaddingSpec literals.
func Float(v float64) *float64 {
	return &v
}
