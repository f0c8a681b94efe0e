package main

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyomin/bluecool-admin/internal/document"
	"github.com/pyomin/bluecool-admin/internal/editor"
	"github.com/pyomin/bluecool-admin/internal/service"
)

// --- Stub PostService ---

type stubPosts struct {
	service.PostService
	deleted []string
}

func (s *stubPosts) Delete(ctx context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func newEditorShell() *shell {
	s := &shell{out: io.Discard}
	s.ed = editor.New(nil)
	return s
}

func TestExecute_TypeKeepsTrailingSpace(t *testing.T) {
	s := newEditorShell()

	s.execute(context.Background(), "type ## ")

	doc := s.ed.Document()
	require.Len(t, doc.Blocks, 1)
	assert.Equal(t, document.BlockHeading, doc.Blocks[0].Type)
	assert.Equal(t, 2, doc.Blocks[0].Level)
}

func TestExecute_HeadingAndListCommands(t *testing.T) {
	s := newEditorShell()

	s.execute(context.Background(), "type 제목")
	s.execute(context.Background(), "h2")
	doc := s.ed.Document()
	require.Len(t, doc.Blocks, 1)
	assert.Equal(t, document.BlockHeading, doc.Blocks[0].Type)
	assert.Equal(t, 2, doc.Blocks[0].Level)

	s.execute(context.Background(), "list check")
	doc = s.ed.Document()
	require.Equal(t, document.BlockList, doc.Blocks[0].Type)
	assert.Equal(t, document.ListCheck, doc.Blocks[0].ListKind)
}

func TestExecute_AlignAndLinkCommands(t *testing.T) {
	s := newEditorShell()

	s.execute(context.Background(), "type pyomin")
	s.execute(context.Background(), "align center")
	assert.Equal(t, document.AlignCenter, s.ed.Document().Blocks[0].Align)

	s.ed.Select(editor.Selection{
		Anchor: editor.Position{Block: 0, Offset: 0},
		Focus:  editor.Position{Block: 0, Offset: 6},
	})
	s.execute(context.Background(), "link https://pyomin.com")
	children := s.ed.Document().Blocks[0].Children
	require.NotEmpty(t, children)
	assert.Equal(t, document.InlineLink, children[0].Type)
	assert.Equal(t, "https://pyomin.com", children[0].Href)
}

func TestConfirm_DefaultsToDecline(t *testing.T) {
	s := &shell{out: io.Discard, lines: make(chan string, 1)}

	s.lines <- ""
	assert.False(t, s.confirm("삭제할까요?"))

	s.lines <- "y"
	assert.True(t, s.confirm("삭제할까요?"))
}

func TestExecute_DeleteRequiresConfirm(t *testing.T) {
	posts := &stubPosts{}
	s := &shell{out: io.Discard, lines: make(chan string, 1), svc: shellServices{posts: posts}}

	s.lines <- "n"
	s.execute(context.Background(), "delete p1")
	assert.Empty(t, posts.deleted)

	s.lines <- "y"
	s.execute(context.Background(), "delete p1")
	assert.Equal(t, []string{"p1"}, posts.deleted)
}
