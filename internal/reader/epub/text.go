package epub

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const untitledChapter = "Untitled chapter"

var skipped = map[atom.Atom]bool{
	atom.Script: true, atom.Style: true, atom.Noscript: true,
	atom.Template: true, atom.Svg: true, atom.Math: true,
}

// blockTags end the current line when they open and when they close.
var blockTags = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Section: true, atom.Article: true,
	atom.Header: true, atom.Footer: true, atom.Aside: true, atom.Nav: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Ul: true, atom.Ol: true, atom.Li: true, atom.Dl: true, atom.Dt: true, atom.Dd: true,
	atom.Blockquote: true, atom.Table: true, atom.Tr: true, atom.Figure: true,
	atom.Figcaption: true, atom.Hr: true, atom.Br: true,
}

var headingLevel = map[atom.Atom]int{
	atom.H1: 1, atom.H2: 2, atom.H3: 3, atom.H4: 4, atom.H5: 5, atom.H6: 6,
}

// chapterText returns the chapter title and its body as lightweight
// Markdown: one block per paragraph, "#" heading prefixes, "- " list items,
// "> " quotes and fenced preformatted text.
func chapterText(doc []byte) (string, string) {
	root, err := html.Parse(bytes.NewReader(doc))
	if err != nil {
		return untitledChapter, ""
	}

	w := &mdWriter{}
	if body := find(root, atom.Body); body != nil {
		w.walk(body)
	} else {
		w.walk(root)
	}
	w.flush()

	return chapterTitle(root), strings.Join(w.blocks, "\n\n")
}

// chapterTitle prefers <title>, then the first h1, then the first h2.
func chapterTitle(root *html.Node) string {
	for _, a := range []atom.Atom{atom.Title, atom.H1, atom.H2} {
		if n := find(root, a); n != nil {
			if t := strings.Join(strings.Fields(textOf(n)), " "); t != "" {
				return t
			}
		}
	}
	return untitledChapter
}

type mdWriter struct {
	blocks []string
	line   strings.Builder
	space  bool

	heading int
	item    int
	quote   int
}

func (w *mdWriter) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		w.text(n.Data)
		return
	case html.ElementNode:
		if skipped[n.DataAtom] {
			return
		}
		if n.DataAtom == atom.Pre {
			w.pre(n)
			return
		}
	case html.CommentNode, html.DoctypeNode:
		return
	}

	block := n.Type == html.ElementNode && blockTags[n.DataAtom]
	if block {
		w.flush()
	}

	level := headingLevel[n.DataAtom]
	if level > 0 {
		w.heading = level
	}
	if n.DataAtom == atom.Li {
		w.item++
	}
	if n.DataAtom == atom.Blockquote {
		w.quote++
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}

	if block {
		w.flush()
	}
	if level > 0 {
		w.heading = 0
	}
	if n.DataAtom == atom.Li {
		w.item--
	}
	if n.DataAtom == atom.Blockquote {
		w.quote--
	}
}

// text appends inline text, keeping one space where the source had any.
func (w *mdWriter) text(s string) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		if s != "" {
			w.space = true
		}
		return
	}
	if w.line.Len() > 0 && (w.space || startsWithSpace(s)) {
		w.line.WriteByte(' ')
	}
	w.line.WriteString(strings.Join(fields, " "))
	w.space = endsWithSpace(s)
}

func (w *mdWriter) flush() {
	w.space = false
	if w.line.Len() == 0 {
		return
	}

	var prefix string
	if w.quote > 0 {
		prefix = "> "
	}
	switch {
	case w.heading > 0:
		prefix += strings.Repeat("#", w.heading) + " "
	case w.item > 0:
		prefix += "- "
	}

	w.blocks = append(w.blocks, prefix+w.line.String())
	w.line.Reset()
}

// pre emits preformatted text as a fenced block, line breaks intact.
func (w *mdWriter) pre(n *html.Node) {
	w.flush()

	var lines []string
	for _, l := range strings.Split(textOf(n), "\n") {
		if l = strings.TrimRight(l, " \t\r"); l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) == 0 {
		return
	}
	w.blocks = append(w.blocks, "```\n"+strings.Join(lines, "\n")+"\n```")
}

func find(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := find(c, a); found != nil {
			return found
		}
	}
	return nil
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode && skipped[n.DataAtom] {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return b.String()
}

func startsWithSpace(s string) bool {
	return s != "" && strings.ContainsRune(" \t\n\r\f", rune(s[0]))
}

func endsWithSpace(s string) bool {
	return s != "" && strings.ContainsRune(" \t\n\r\f", rune(s[len(s)-1]))
}
