package harness

import (
	"errors"
	"fmt"

	"github.com/roach88/calcharness/internal/calc"
)

// WithDocument creates a test-mode document, passes it to fn and closes
// it. Close runs exactly once on every path out of fn, including a panic;
// a close failure is joined into the returned error. lc may be nil.
func WithDocument(eng Engine, lc *Lifecycle, fn func(Document) error) (err error) {
	c, err := eng.NewContainer(calc.TestFlags)
	if err != nil {
		_ = lc.Advance(StateDocumentUnavailable, err.Error())
		return fmt.Errorf("create document container: %w", err)
	}

	opened := false
	defer func() {
		cerr := c.Close()
		if cerr != nil {
			err = errors.Join(err, fmt.Errorf("close document: %w", cerr))
		}
		if opened {
			_ = lc.Advance(StateClosed, closeDetail(err))
		} else {
			_ = lc.Advance(StateDocumentUnavailable, closeDetail(err))
		}
	}()

	if err := c.InitUnitTest(); err != nil {
		return fmt.Errorf("init document: %w", err)
	}
	doc := c.Document()
	if doc == nil {
		return fmt.Errorf("init document: container has no document")
	}
	opened = true
	_ = lc.Advance(StateDocumentOpen, calc.TestFlags.String())

	return fn(doc)
}

// closeDetail runs inside a deferred call, so err is the error fn
// returned; a panic leaves it nil and panics onward after the close.
func closeDetail(err error) string {
	if err != nil {
		return err.Error()
	}
	return ""
}
