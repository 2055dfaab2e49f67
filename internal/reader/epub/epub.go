// Package epub extracts readable text from EPUB archives.
//
// Only the parts needed for reading are walked: META-INF/container.xml to
// find the package document, its Dublin Core metadata, and the spine in
// reading order. Each spine document is reduced to lightweight Markdown so
// textparse can still tell headings, list items and quotes apart.
package epub

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"strings"
)

// MaxEntryBytes caps the decompressed size of any single archive entry.
const MaxEntryBytes = 32 << 20

const containerPath = "META-INF/container.xml"

// Sentinel errors. Returned errors wrap one of these.
var (
	ErrNotEPUB     = errors.New("not an EPUB archive")
	ErrNoPackage   = errors.New("package document not found")
	ErrNoChapters  = errors.New("no readable chapters")
	ErrNoText      = errors.New("no text could be extracted")
	ErrEntryTooBig = errors.New("archive entry exceeds size limit")
)

// Metadata is the Dublin Core subset shown to the reader.
type Metadata struct {
	Title       string `json:"title"`
	Author      string `json:"author,omitempty"`
	Publisher   string `json:"publisher,omitempty"`
	Date        string `json:"date,omitempty"`
	Description string `json:"description,omitempty"`
	Language    string `json:"language,omitempty"`
}

// Chapter is one spine document.
type Chapter struct {
	Index   int    `json:"index"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Book is an extracted EPUB.
type Book struct {
	Metadata Metadata  `json:"metadata"`
	Chapters []Chapter `json:"chapters"`
	FullText string    `json:"-"`
}

// IsEPUB reports whether name has the .epub extension.
func IsEPUB(name string) bool {
	return strings.EqualFold(path.Ext(name), ".epub")
}

// Open reads the EPUB at filename.
func Open(filename string) (*Book, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	return Read(f, info.Size())
}

// Read extracts the book from an archive of the given size.
func Read(r io.ReaderAt, size int64) (*Book, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotEPUB, err)
	}

	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}

	opfPath, err := rootfile(files)
	if err != nil {
		return nil, err
	}

	raw, err := readEntry(files, opfPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoPackage, err)
	}
	var pkg opfPackage
	if err := xml.Unmarshal(raw, &pkg); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrNoPackage, opfPath, err)
	}

	book := &Book{Metadata: pkg.metadata()}
	var full []string

	for _, href := range pkg.spineHrefs() {
		name := resolveHref(opfPath, href)
		doc, err := readEntry(files, name)
		if err != nil {
			if errors.Is(err, ErrEntryTooBig) {
				return nil, err
			}
			// Spine entries missing from the archive are skipped.
			continue
		}

		title, content := chapterText(doc)
		book.Chapters = append(book.Chapters, Chapter{
			Index:   len(book.Chapters),
			Title:   title,
			Content: content,
		})
		if content != "" {
			full = append(full, content)
		}
	}

	if len(book.Chapters) == 0 {
		return nil, ErrNoChapters
	}
	book.FullText = strings.Join(full, "\n\n")
	if strings.TrimSpace(book.FullText) == "" {
		return nil, ErrNoText
	}
	return book, nil
}

type container struct {
	Rootfiles []struct {
		FullPath  string `xml:"full-path,attr"`
		MediaType string `xml:"media-type,attr"`
	} `xml:"rootfiles>rootfile"`
}

func rootfile(files map[string]*zip.File) (string, error) {
	raw, err := readEntry(files, containerPath)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrNotEPUB, containerPath, err)
	}

	var c container
	if err := xml.Unmarshal(raw, &c); err != nil {
		return "", fmt.Errorf("%w: parse %s: %w", ErrNotEPUB, containerPath, err)
	}
	for _, rf := range c.Rootfiles {
		if rf.FullPath != "" && (rf.MediaType == "" || rf.MediaType == "application/oebps-package+xml") {
			return rf.FullPath, nil
		}
	}
	return "", ErrNoPackage
}

type opfPackage struct {
	Metadata struct {
		Titles       []string `xml:"title"`
		Creators     []string `xml:"creator"`
		Publishers   []string `xml:"publisher"`
		Dates        []string `xml:"date"`
		Descriptions []string `xml:"description"`
		Languages    []string `xml:"language"`
		Meta         []struct {
			Property string `xml:"property,attr"`
			Value    string `xml:",chardata"`
		} `xml:"meta"`
	} `xml:"metadata"`
	Manifest []struct {
		ID        string `xml:"id,attr"`
		Href      string `xml:"href,attr"`
		MediaType string `xml:"media-type,attr"`
	} `xml:"manifest>item"`
	Spine []struct {
		IDRef  string `xml:"idref,attr"`
		Linear string `xml:"linear,attr"`
	} `xml:"spine>itemref"`
}

func first(values []string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func (p *opfPackage) metadata() Metadata {
	md := p.Metadata
	m := Metadata{
		Title:       first(md.Titles),
		Author:      first(md.Creators),
		Publisher:   first(md.Publishers),
		Date:        first(md.Dates),
		Description: first(md.Descriptions),
		Language:    first(md.Languages),
	}
	if m.Description == "" {
		for _, meta := range md.Meta {
			if meta.Property == "dcterms:abstract" {
				m.Description = strings.TrimSpace(meta.Value)
				break
			}
		}
	}
	if m.Title == "" {
		m.Title = "Untitled"
	}
	return m
}

// spineHrefs returns the XHTML documents of the spine in reading order.
// Non-linear items (footnotes, covers marked linear="no") are skipped.
func (p *opfPackage) spineHrefs() []string {
	byID := make(map[string]string, len(p.Manifest))
	for _, item := range p.Manifest {
		if item.MediaType == "application/xhtml+xml" || item.MediaType == "text/html" {
			byID[item.ID] = item.Href
		}
	}

	var hrefs []string
	for _, ref := range p.Spine {
		if ref.Linear == "no" {
			continue
		}
		if href, ok := byID[ref.IDRef]; ok {
			hrefs = append(hrefs, href)
		}
	}
	return hrefs
}

// resolveHref resolves a manifest href against the package document path.
func resolveHref(opfPath, href string) string {
	if i := strings.IndexByte(href, '#'); i >= 0 {
		href = href[:i]
	}
	if unescaped, err := url.PathUnescape(href); err == nil {
		href = unescaped
	}
	return path.Join(path.Dir(opfPath), href)
}

func readEntry(files map[string]*zip.File, name string) ([]byte, error) {
	f, ok := files[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, os.ErrNotExist)
	}
	if f.UncompressedSize64 > MaxEntryBytes {
		return nil, fmt.Errorf("%w: %s", ErrEntryTooBig, name)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, MaxEntryBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxEntryBytes {
		return nil, fmt.Errorf("%w: %s", ErrEntryTooBig, name)
	}
	return data, nil
}
