// Package document defines the rendering boundary: a structured, fully
// resolved description of a billing document and the Renderer that turns it
// into bytes. Renderers are pure transforms and receive no storage or
// locking handles.
package document

// Row is one line of the item table. Amounts arrive pre-formatted; all
// numeric formatting decisions are made before the boundary.
type Row struct {
	Name      string
	Price     string
	PrintCost string
	Total     string
}

// TotalLine is one entry of the totals block under the table, e.g.
// {"Subtotal:", "$200.00"}.
type TotalLine struct {
	Label  string
	Amount string
}

// Document is the complete input for rendering a billing document.
type Document struct {
	Title       string
	HeaderLines []string
	Rows        []Row
	Totals      []TotalLine
	FooterLines []string
}

// Renderer produces a byte stream (PDF) from a Document.
type Renderer interface {
	Render(doc Document) ([]byte, error)
}
