package calc

import (
	"fmt"
	"strings"
)

// ModelFlags configure a document shell at construction.
type ModelFlags uint8

const (
	// EmbeddedObject marks the document as embedded: no frame or window.
	EmbeddedObject ModelFlags = 1 << iota
	// DisableEmbeddedScripts turns off document macros.
	DisableEmbeddedScripts
	// DisableDocumentRecovery keeps the document out of autosave/recovery.
	DisableDocumentRecovery
)

// TestFlags is the configuration for non-interactive test documents.
const TestFlags = EmbeddedObject | DisableEmbeddedScripts | DisableDocumentRecovery

// Has reports whether every bit of want is set.
func (f ModelFlags) Has(want ModelFlags) bool {
	return f&want == want
}

func (f ModelFlags) String() string {
	if f == 0 {
		return "none"
	}
	var parts []string
	if f.Has(EmbeddedObject) {
		parts = append(parts, "embedded")
	}
	if f.Has(DisableEmbeddedScripts) {
		parts = append(parts, "no-scripts")
	}
	if f.Has(DisableDocumentRecovery) {
		parts = append(parts, "no-recovery")
	}
	return strings.Join(parts, "|")
}

// ViewSettings is the initial view state InitNew prepares.
type ViewSettings struct {
	ActiveTab int
	Zoom      int
	GridLines bool
}

// DefaultTabName is the sheet InitNew creates.
const DefaultTabName = "Sheet1"

type initMode int

const (
	initNone initMode = iota
	initNew
	initUnitTest
)

// DocShell manages the lifecycle of one document.
type DocShell struct {
	engine *Engine
	flags  ModelFlags
	mode   initMode
	doc    *Document
	view   *ViewSettings
	closed bool
}

// Flags returns the construction flags.
func (s *DocShell) Flags() ModelFlags {
	return s.flags
}

// ScriptsEnabled reports whether document macros may run.
func (s *DocShell) ScriptsEnabled() bool {
	return !s.flags.Has(DisableEmbeddedScripts)
}

// RecoveryEnabled reports whether the document takes part in recovery.
func (s *DocShell) RecoveryEnabled() bool {
	return !s.flags.Has(DisableDocumentRecovery)
}

// InitNew initializes an interactive new document: one default sheet and
// a view configuration.
func (s *DocShell) InitNew() error {
	if err := s.beginInit(); err != nil {
		return err
	}
	s.doc = newDocument(s.engine.locale())
	if err := s.doc.InsertTab(0, DefaultTabName); err != nil {
		_ = s.doc.close()
		s.doc = nil
		return fmt.Errorf("init new: %w", err)
	}
	s.view = &ViewSettings{ActiveTab: 0, Zoom: 100, GridLines: true}
	s.mode = initNew
	s.engine.opened()
	return nil
}

// InitUnitTest initializes an empty document without sheets or view
// state.
func (s *DocShell) InitUnitTest() error {
	if err := s.beginInit(); err != nil {
		return err
	}
	s.doc = newDocument(s.engine.locale())
	s.mode = initUnitTest
	s.engine.opened()
	return nil
}

func (s *DocShell) beginInit() error {
	if s.closed {
		return ErrClosed
	}
	if s.mode != initNone {
		return fmt.Errorf("document shell already initialized")
	}
	return nil
}

// Document returns the shell's document, or nil before init.
func (s *DocShell) Document() *Document {
	return s.doc
}

// View returns the view settings; nil for unit-test documents.
func (s *DocShell) View() *ViewSettings {
	return s.view
}

// Close closes the document and releases its workbook. A second call
// returns ErrClosed.
func (s *DocShell) Close() error {
	if s.closed {
		return ErrClosed
	}
	s.closed = true
	if s.doc == nil {
		return nil
	}
	s.engine.released()
	return s.doc.close()
}

// Closed reports whether Close has been called.
func (s *DocShell) Closed() bool {
	return s.closed
}
