package editor

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"github.com/pyomin/bluecool-admin/internal/common"
	"github.com/pyomin/bluecool-admin/internal/document"
	"github.com/pyomin/bluecool-admin/pkg/logger"
)

// Uploader pushes an image file to the media endpoint and returns its
// served URL. *api.Client satisfies this.
type Uploader interface {
	UploadImage(ctx context.Context, filename string, file io.Reader) (string, error)
}

// Content the two serialisations of the current tree. JSON is the
// round-trip authority; HTML is what the preview pane shows.
type Content struct {
	HTML string
	JSON string
}

// Editor owns a document tree, a selection and a bounded edit history.
// Every Dispatch is atomic: the command either lands as exactly one
// history entry or leaves the state untouched.
type Editor struct {
	mu       sync.Mutex
	doc      document.Document
	sel      Selection
	hist     *history
	uploader Uploader
	log      zerolog.Logger

	subMu sync.Mutex
	subs  map[int]chan struct{}
	next  int
}

// New returns an editor holding a single empty paragraph
func New(uploader Uploader) *Editor {
	doc := document.Document{Version: document.CurrentVersion, Blocks: []document.Block{document.Paragraph()}}
	e := &Editor{
		doc:      doc,
		sel:      Caret(0, 0),
		uploader: uploader,
		log:      logger.WithComponent("editor"),
		subs:     make(map[int]chan struct{}),
	}
	e.hist = newHistory(snapshot{doc: doc.Clone(), sel: e.sel})
	return e
}

// Load replaces the editor content from stored HTML and resets the
// history; a loaded document is the new baseline, not an edit.
func (e *Editor) Load(html string) error {
	doc, err := document.Parse(html)
	if err != nil {
		return fmt.Errorf("load content: %w", err)
	}
	e.install(doc)
	return nil
}

// LoadJSON replaces the editor content from the canonical JSON form
func (e *Editor) LoadJSON(data string) error {
	doc, err := document.UnmarshalCanonical(data)
	if err != nil {
		return fmt.Errorf("load content: %w", err)
	}
	e.install(doc)
	return nil
}

func (e *Editor) install(doc document.Document) {
	doc = document.Normalize(doc)
	if len(doc.Blocks) == 0 {
		doc.Blocks = []document.Block{document.Paragraph()}
	}
	e.mu.Lock()
	e.doc = doc
	e.sel = Caret(0, 0)
	e.hist.reset(snapshot{doc: doc.Clone(), sel: e.sel})
	e.mu.Unlock()
	e.notify()
}

// Content returns both serialisations of the current tree
func (e *Editor) Content() Content {
	e.mu.Lock()
	doc := e.doc.Clone()
	e.mu.Unlock()
	return Content{
		HTML: RenderHighlighted(doc),
		JSON: doc.MarshalCanonical(),
	}
}

// Document returns a structural copy of the current tree
func (e *Editor) Document() document.Document {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.Clone()
}

// Selection returns the current selection
func (e *Editor) Selection() Selection {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sel
}

// Select moves the selection without touching the history
func (e *Editor) Select(sel Selection) {
	e.mu.Lock()
	e.sel = clampSelection(e.doc, sel)
	e.mu.Unlock()
}

// Dispatch applies a command atomically. Text insertions at the start
// of a block first run through the markdown shortcut table. A failed
// or panicking command leaves document, selection and history exactly
// as they were.
func (e *Editor) Dispatch(cmd Command) (err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if ins, ok := cmd.(InsertText); ok {
		if expanded, ok := e.expandShortcut(ins); ok {
			cmd = expanded
		}
	}

	doc := e.doc.Clone()
	sel := e.sel

	defer func() {
		if r := recover(); r != nil {
			e.log.Error().Str("command", cmd.Name()).Interface("panic", r).
				Msg("편집 명령 실패, 마지막 상태로 복구")
			err = fmt.Errorf("editor: command %s panicked: %v", cmd.Name(), r)
		}
	}()

	if err := cmd.apply(&doc, &sel); err != nil {
		return err
	}

	doc = document.Normalize(doc)
	sel = clampSelection(doc, sel)

	e.doc = doc
	e.sel = sel
	e.hist.push(snapshot{doc: doc.Clone(), sel: sel})

	e.notify()
	return nil
}

// Undo steps back one history entry
func (e *Editor) Undo() error {
	e.mu.Lock()
	s, ok := e.hist.undo()
	if !ok {
		e.mu.Unlock()
		return common.ErrNothingToUndo
	}
	e.doc = s.doc.Clone()
	e.sel = s.sel
	e.mu.Unlock()
	e.notify()
	return nil
}

// Redo steps forward after an undo
func (e *Editor) Redo() error {
	e.mu.Lock()
	s, ok := e.hist.redo()
	if !ok {
		e.mu.Unlock()
		return common.ErrNothingToRedo
	}
	e.doc = s.doc.Clone()
	e.sel = s.sel
	e.mu.Unlock()
	e.notify()
	return nil
}

// CanUndo reports whether an undo step exists
func (e *Editor) CanUndo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hist.canUndo()
}

// CanRedo reports whether a redo step exists
func (e *Editor) CanRedo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hist.canRedo()
}

// InsertUploadedImage uploads the file and, on success, dispatches the
// image insertion. A failed upload never touches the document.
func (e *Editor) InsertUploadedImage(ctx context.Context, filename string, file io.Reader, alt string) error {
	if e.uploader == nil {
		return fmt.Errorf("editor: no uploader configured")
	}
	url, err := e.uploader.UploadImage(ctx, filename, file)
	if err != nil {
		return fmt.Errorf("upload image: %w", err)
	}
	return e.Dispatch(InsertImage{Src: url, Alt: alt})
}

// Subscribe returns a channel that receives a tick after every state
// change, plus a cancel func. Slow subscribers coalesce ticks.
func (e *Editor) Subscribe() (<-chan struct{}, func()) {
	e.subMu.Lock()
	id := e.next
	e.next++
	ch := make(chan struct{}, 1)
	e.subs[id] = ch
	e.subMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			e.subMu.Lock()
			delete(e.subs, id)
			e.subMu.Unlock()
		})
	}
	return ch, cancel
}

func (e *Editor) notify() {
	e.subMu.Lock()
	defer e.subMu.Unlock()
	for _, ch := range e.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
