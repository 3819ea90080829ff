// Package contracts defines the messages exchanged with the embedded document.
package contracts

const (
	// MessageTypeSetContent replaces the document's Markdown source and HTML.
	MessageTypeSetContent = "set_content"
	// MessageTypeSetTheme toggles the document color scheme.
	MessageTypeSetTheme = "set_theme"
	// MessageTypeSetPadding sets one padding edge of the content box.
	MessageTypeSetPadding = "set_padding"

	// MessageTypeContentChanged reports a user edit inside the document.
	MessageTypeContentChanged = "content_changed"
	// MessageTypeHeightChanged reports a new measured content height.
	MessageTypeHeightChanged = "height_changed"
)

// IncomingMessage is the minimal envelope used to route document messages.
type IncomingMessage struct {
	Type string `json:"type"`
}

// ContentChangedMessage carries the full edited Markdown source.
type ContentChangedMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// HeightChangedMessage carries the content height in CSS pixels.
type HeightChangedMessage struct {
	Type   string  `json:"type"`
	Height float64 `json:"height"`
}

// SetContentMessage carries the Markdown source and its rendered HTML.
type SetContentMessage struct {
	Type     string `json:"type"`
	Markdown string `json:"markdown"`
	HTML     string `json:"html"`
}

// SetThemeMessage carries "light" or "dark".
type SetThemeMessage struct {
	Type  string `json:"type"`
	Theme string `json:"theme"`
}

// SetPaddingMessage carries one edge ("top", "bottom", "left", "right").
type SetPaddingMessage struct {
	Type  string  `json:"type"`
	Edge  string  `json:"edge"`
	Value float64 `json:"value"`
}
