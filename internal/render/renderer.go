// Package render converts Markdown to HTML fragments and builds the document
// shell that hosts them.
package render

import (
	"bytes"
	_ "embed"
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/formatters/html"
	"github.com/alecthomas/chroma/styles"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	alertcallouts "github.com/zmtcreative/gm-alert-callouts"
)

// AssetPrefix is the URL prefix under which local images are served.
const AssetPrefix = "/@mdfs/"

const (
	lightSyntaxStyle = "github"
	darkSyntaxStyle  = "monokai"
)

//go:embed page.html
var pageTemplate string

// Renderer is a wrapper around the Goldmark markdown parser with
// pre-configured extensions.
type Renderer struct {
	md goldmark.Markdown

	shellOnce sync.Once
	shell     string
	shellErr  error
}

func NewRenderer() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			alertcallouts.AlertCallouts,
			extension.GFM,
			extension.Table,
			extension.Strikethrough,
			extension.TaskList,
			extension.Linkify,
			highlighting.NewHighlighting(
				highlighting.WithFormatOptions(
					html.WithClasses(true),
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(goldmarkhtml.WithUnsafe()),
	)
	return &Renderer{md: md}
}

// ConvertFragment parses markdown source and returns the HTML fragment.
func (r *Renderer) ConvertFragment(source []byte) (string, error) {
	return r.ConvertFragmentWithSourcePath(source, "")
}

// ConvertFragmentWithSourcePath parses markdown source and returns the HTML
// fragment.
//
// If sourcePath is set, relative image destinations are resolved against
// its directory. Absolute local images are always rewritten to AssetPrefix.
func (r *Renderer) ConvertFragmentWithSourcePath(source []byte, sourcePath string) (string, error) {
	doc := r.md.Parser().Parse(text.NewReader(source))
	rewriteLocalImages(doc, sourcePath)

	var buf bytes.Buffer
	if err := r.md.Renderer().Render(&buf, source, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Shell returns the document shell with syntax styles for both themes and
// an empty content area. Content is injected later through the harness.
func (r *Renderer) Shell() (string, error) {
	r.shellOnce.Do(func() {
		css, err := SyntaxCSS()
		if err != nil {
			r.shellErr = err
			return
		}
		page := strings.Replace(pageTemplate, "{{SYNTAX_CSS}}", css, 1)
		r.shell = strings.Replace(page, "{{CONTENT}}", "", 1)
	})
	return r.shell, r.shellErr
}

// SyntaxCSS renders the chroma class styles for light and dark documents,
// scoped by the theme class on the root element.
func SyntaxCSS() (string, error) {
	var out strings.Builder
	for _, scheme := range []struct {
		class string
		style string
	}{
		{class: "light", style: lightSyntaxStyle},
		{class: "dark", style: darkSyntaxStyle},
	} {
		var buf bytes.Buffer
		if err := html.New(html.WithClasses(true)).WriteCSS(&buf, styles.Get(scheme.style)); err != nil {
			return "", fmt.Errorf("writing %s syntax css: %w", scheme.style, err)
		}
		scope := "html." + scheme.class + " "
		css := strings.ReplaceAll(buf.String(), ".chroma", scope+".chroma")
		css = strings.ReplaceAll(css, " .bg {", " "+scope+".bg {")
		out.WriteString(css)
	}
	return out.String(), nil
}

// AssetPath encodes an absolute file path into its AssetPrefix URL.
func AssetPath(absPath string) string {
	return AssetPrefix + base64.RawURLEncoding.EncodeToString([]byte(filepath.Clean(absPath)))
}

// rewriteLocalImages points local image destinations at the asset route.
// Remote, data and already-rewritten destinations are left alone, as are
// relative ones when there is no source path to resolve them against.
func rewriteLocalImages(doc ast.Node, sourcePath string) {
	baseDir := ""
	if sourcePath != "" {
		baseDir = filepath.Dir(sourcePath)
	}

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		img, ok := n.(*ast.Image)
		if !ok {
			return ast.WalkContinue, nil
		}

		dest := strings.TrimSpace(string(img.Destination))
		if dest == "" || isExternal(dest) {
			return ast.WalkContinue, nil
		}

		switch {
		case filepath.IsAbs(dest):
		case baseDir != "":
			dest = filepath.Join(baseDir, dest)
		default:
			return ast.WalkContinue, nil
		}

		img.Destination = []byte(AssetPath(dest))
		img.SetAttributeString("loading", "lazy")
		img.SetAttributeString("decoding", "async")
		return ast.WalkContinue, nil
	})
}

func isExternal(dest string) bool {
	lower := strings.ToLower(dest)
	for _, prefix := range []string{"http://", "https://", "data:", "blob:", "file://", "//", "#", AssetPrefix} {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}
