package extract

import (
	"context"
	"io"

	"reviewscope-backend/internal/automation"
	"reviewscope-backend/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// ParseHTML parses a saved page into a static document, elements of a
// static document never go stale.
func ParseHTML(r io.Reader) (automation.Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	return htmlDocument{doc: doc}, nil
}

type htmlDocument struct {
	doc *goquery.Document
}

func (d htmlDocument) Elements(ctx context.Context, selector string) ([]automation.Element, error) {
	nodes := d.doc.Find(selector).Nodes
	out := make([]automation.Element, len(nodes))
	for i, n := range nodes {
		out[i] = htmlElement{node: n}
	}
	return out, nil
}

func (d htmlDocument) HTML(ctx context.Context) (string, error) {
	return goquery.OuterHtml(d.doc.Selection)
}

type htmlElement struct {
	node *html.Node
}

// Text approximates the rendered text of the node, source indentation is
// collapsed the way a browser would.
func (e htmlElement) Text(ctx context.Context) (string, error) {
	return htmlutil.CleanText(htmlutil.GetText(e.node)), nil
}
