// Package scraper reads LeetCode problem pages over the Chrome DevTools
// protocol and injects the panel launcher into them.
package scraper

import (
	"context"
	"errors"
	"strings"

	"github.com/ysmood/gson"

	apierrors "github.com/diogo/leety/internal/errors"
	"github.com/diogo/leety/internal/models"
)

// Element names used in DOMElementError
const (
	ElementTitle       = "problem title"
	ElementDescription = "problem description"
	ElementEditor      = "code editor"
)

// errNotFound is returned by a document when a selector matches nothing in time
var errNotFound = errors.New("element not found")

// Selectors locate the problem on the page
type Selectors struct {
	Title string
	// TitleLinks and TitleLinkIndex are the fallback: the n-th problem link
	// on the page is the title.
	TitleLinks     string
	TitleLinkIndex int
	Description    string
	// EditorScript returns the editor model value, or null
	EditorScript string
	EditorLines  string
	Toolbar      string
}

// DefaultSelectors returns the selectors for leetcode.com
func DefaultSelectors() Selectors {
	return Selectors{
		Title:          "div.text-title-large a",
		TitleLinks:     `a[href*="/problems/"]`,
		TitleLinkIndex: 4,
		Description:    `div[data-track-load="description_content"]`,
		EditorScript: `() => {
			const editor = window.monaco && window.monaco.editor;
			if (!editor) return null;
			const models = editor.getModels();
			return models.length ? models[0].getValue() : null;
		}`,
		EditorLines: "div.view-lines",
		Toolbar:     "ide-top-btns",
	}
}

// Extractor reads a ProblemContext from a page
type Extractor interface {
	ExtractProblemContext(ctx context.Context) (models.ProblemContext, error)
}

// document is the DOM access an extractor needs
type document interface {
	Text(ctx context.Context, selector string) (string, error)
	NthText(ctx context.Context, selector string, n int) (string, error)
	Eval(ctx context.Context, js string) (gson.JSON, error)
}

// DOMExtractor reads the problem from fixed page locations
type DOMExtractor struct {
	doc document
	sel Selectors
}

// ExtractProblemContext reads title, description and code. The first
// missing element is reported as a DOMElementError.
func (e *DOMExtractor) ExtractProblemContext(ctx context.Context) (models.ProblemContext, error) {
	var p models.ProblemContext
	var err error

	if p.Title, err = e.title(ctx); err != nil {
		return models.ProblemContext{}, err
	}
	if p.Description, err = e.doc.Text(ctx, e.sel.Description); err != nil {
		return models.ProblemContext{}, domError(ElementDescription, e.sel.Description, err)
	}
	if p.CurrentAnswer, err = e.code(ctx); err != nil {
		return models.ProblemContext{}, err
	}
	return p, nil
}

func (e *DOMExtractor) title(ctx context.Context) (string, error) {
	title, err := e.doc.Text(ctx, e.sel.Title)
	if err == nil && strings.TrimSpace(title) != "" {
		return strings.TrimSpace(title), nil
	}
	if err != nil && !errors.Is(err, errNotFound) {
		return "", err
	}

	title, err = e.doc.NthText(ctx, e.sel.TitleLinks, e.sel.TitleLinkIndex)
	if err != nil {
		return "", domError(ElementTitle, e.sel.Title, err)
	}
	return strings.TrimSpace(title), nil
}

func (e *DOMExtractor) code(ctx context.Context) (string, error) {
	if e.sel.EditorScript != "" {
		value, err := e.doc.Eval(ctx, e.sel.EditorScript)
		if err == nil && !value.Nil() {
			return value.Str(), nil
		}
	}

	code, err := e.doc.Text(ctx, e.sel.EditorLines)
	if err != nil {
		return "", domError(ElementEditor, e.sel.EditorLines, err)
	}
	return code, nil
}

func domError(element, selector string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	return apierrors.NewDOMElementError(element, selector, err)
}
