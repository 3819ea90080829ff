package bridge

import (
	"go-markdown-view/internal/store"
	"go-markdown-view/internal/style"
)

// Controller mediates between the content binding and a Host for the
// lifetime of one view. It is not safe for concurrent use; all calls are
// expected to come from the view's loop.
//
// The controller keeps one shadow copy of the content: the value it last
// pushed to the document or last received from it. Comparing against the
// shadow is what stops a document edit from being pushed back to the
// document, and a push from being written back to the binding.
type Controller struct {
	host    Host
	content store.Binding

	shadow     string
	haveShadow bool

	theme        style.Theme
	themeApplied bool

	padding style.Insets

	height       float64
	onInvalidate func(height float64)

	disposed bool
}

// NewController pairs content with host. onInvalidate, if non-nil, is called
// each time the measured height changes.
func NewController(host Host, content store.Binding, onInvalidate func(height float64)) *Controller {
	if host == nil {
		host = Discard
	}
	return &Controller{
		host:         host,
		content:      content,
		onInvalidate: onInvalidate,
	}
}

// PushContent propagates a native-side content value to the document.
func (c *Controller) PushContent(text string) {
	if c.disposed {
		return
	}
	if c.haveShadow && text == c.shadow {
		tracer().Debugf("content push skipped: document already holds it")
		return
	}
	c.host.SetContent(text)
	c.shadow = text
	c.haveShadow = true
}

// ContentChanged handles an edit reported by the document.
func (c *Controller) ContentChanged(text string) {
	if c.disposed {
		return
	}
	if c.haveShadow && text == c.shadow {
		tracer().Debugf("content change skipped: echo of our own push")
		return
	}
	c.shadow = text
	c.haveShadow = true
	if c.content == nil || c.content.Get() == text {
		return
	}
	c.content.Set(text)
}

// ApplyTheme sets the document theme unless it is already applied.
func (c *Controller) ApplyTheme(theme style.Theme) {
	if c.disposed {
		return
	}
	if c.themeApplied && c.theme == theme {
		return
	}
	c.host.SetTheme(theme)
	c.theme = theme
	c.themeApplied = true
}

// ApplyPadding sets every specified edge whose value differs from what was
// last applied. Unspecified edges are left untouched.
func (c *Controller) ApplyPadding(spec style.PaddingSpec) {
	if c.disposed {
		return
	}
	insets := spec.Resolve()
	for _, edge := range style.Edges {
		v := insets[edge]
		if v == nil {
			continue
		}
		if cur := c.padding[edge]; cur != nil && *cur == *v {
			continue
		}
		c.host.SetPadding(edge, *v)
		applied := *v
		c.padding[edge] = &applied
	}
}

// HeightChanged records a new measured height and invalidates layout when
// it differs from the previous one.
func (c *Controller) HeightChanged(height float64) {
	if c.disposed || height == c.height {
		return
	}
	c.height = height
	if c.onInvalidate != nil {
		c.onInvalidate(height)
	}
}

// Height returns the most recently measured content height.
func (c *Controller) Height() float64 {
	return c.height
}

// Content returns the shadow value and whether one has been recorded.
func (c *Controller) Content() (string, bool) {
	return c.shadow, c.haveShadow
}

// Theme returns the last applied theme and whether one has been applied.
func (c *Controller) Theme() (style.Theme, bool) {
	return c.theme, c.themeApplied
}

// Padding returns the last applied value for edge, or nil.
func (c *Controller) Padding(edge style.Edge) *float64 {
	return c.padding[edge]
}

// Dispose detaches the controller. Every later call is a silent no-op.
func (c *Controller) Dispose() {
	c.disposed = true
	c.onInvalidate = nil
}

// Disposed reports whether Dispose has been called.
func (c *Controller) Disposed() bool {
	return c.disposed
}
