package textparse

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// structuralTags is the allow-list. Other elements are unwrapped: their tags
// are ignored and their text is kept.
var structuralTags = map[atom.Atom]bool{
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.P: true, atom.Ul: true, atom.Ol: true, atom.Li: true,
	atom.Blockquote: true, atom.Code: true, atom.Pre: true, atom.Br: true,
}

// droppedTags lose their content along with the tag.
var droppedTags = map[atom.Atom]bool{
	atom.Head: true, atom.Script: true, atom.Style: true, atom.Noscript: true,
	atom.Template: true, atom.Iframe: true, atom.Object: true, atom.Svg: true,
	atom.Math: true,
}

type htmlWalker struct {
	segments []Segment
	section  string
}

func parseHTML(text string) []Segment {
	doc, err := html.Parse(strings.NewReader(text))
	if err != nil {
		return nil
	}

	w := &htmlWalker{}
	w.walk(doc, Normal)
	return w.segments
}

// walk emits one segment per non-blank text node, typed by the nearest
// enclosing structural element.
func (w *htmlWalker) walk(n *html.Node, inherited SegmentType) {
	switch n.Type {
	case html.TextNode:
		if text := collapse(n.Data); text != "" {
			w.segments = append(w.segments, Segment{Text: text, Type: inherited, SectionTitle: w.section})
		}
		return

	case html.ElementNode:
		if droppedTags[n.DataAtom] {
			return
		}
		if structuralTags[n.DataAtom] {
			inherited = elementType(n.DataAtom, inherited)
			if elementType(n.DataAtom, Normal).IsHeading() {
				w.section = collapse(textContent(n))
			}
		}

	case html.CommentNode, html.DoctypeNode:
		return
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c, inherited)
	}
}

func elementType(a atom.Atom, inherited SegmentType) SegmentType {
	switch a {
	case atom.H1:
		return H1
	case atom.H2:
		return H2
	case atom.H3:
		return H3
	case atom.H4:
		return H4
	case atom.H5:
		return H5
	case atom.H6:
		return H6
	case atom.Li:
		return ListItem
	case atom.Code, atom.Pre:
		return Code
	case atom.Blockquote:
		return Blockquote
	default:
		return inherited
	}
}

// textContent concatenates the text below n, skipping dropped elements.
func textContent(n *html.Node) string {
	var b strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode && droppedTags[n.DataAtom] {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return b.String()
}
