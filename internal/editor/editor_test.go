package editor

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pyomin/bluecool-admin/internal/common"
	"github.com/pyomin/bluecool-admin/internal/document"
)

// --- Mock Uploader ---

type mockUploader struct {
	mock.Mock
}

func (m *mockUploader) UploadImage(ctx context.Context, filename string, file io.Reader) (string, error) {
	args := m.Called(ctx, filename, file)
	return args.String(0), args.Error(1)
}

func typeText(t *testing.T, e *Editor, text string) {
	t.Helper()
	require.NoError(t, e.Dispatch(InsertText{Text: text}))
}

func TestDispatch_InsertTextMovesCaret(t *testing.T) {
	e := New(nil)
	typeText(t, e, "안녕하세요")

	doc := e.Document()
	require.Len(t, doc.Blocks, 1)
	assert.Equal(t, "안녕하세요", doc.Blocks[0].Children[0].Text)
	assert.Equal(t, Caret(0, 5), e.Selection())
}

func TestDispatch_OneHistoryEntryPerCommand(t *testing.T) {
	e := New(nil)
	typeText(t, e, "first")
	typeText(t, e, " second")

	require.NoError(t, e.Undo())
	assert.Equal(t, "first", e.Document().Blocks[0].Children[0].Text)

	require.NoError(t, e.Undo())
	assert.Empty(t, e.Document().Blocks[0].Children)

	assert.ErrorIs(t, e.Undo(), common.ErrNothingToUndo)
}

func TestUndoRedo_RoundTrip(t *testing.T) {
	e := New(nil)
	typeText(t, e, "글")

	require.NoError(t, e.Undo())
	require.NoError(t, e.Redo())
	assert.Equal(t, "글", e.Document().Blocks[0].Children[0].Text)
	assert.ErrorIs(t, e.Redo(), common.ErrNothingToRedo)
}

func TestUndo_EditDiscardsRedoTail(t *testing.T) {
	e := New(nil)
	typeText(t, e, "one")
	require.NoError(t, e.Undo())

	typeText(t, e, "two")
	assert.ErrorIs(t, e.Redo(), common.ErrNothingToRedo)
	assert.Equal(t, "two", e.Document().Blocks[0].Children[0].Text)
}

func TestHistory_Bounded(t *testing.T) {
	e := New(nil)
	for i := 0; i < historyLimit+50; i++ {
		typeText(t, e, "a")
	}

	undos := 0
	for e.CanUndo() {
		require.NoError(t, e.Undo())
		undos++
	}
	assert.Equal(t, historyLimit-1, undos)
}

func TestToggleFormat_PreservesSelection(t *testing.T) {
	e := New(nil)
	typeText(t, e, "hello world")

	sel := Selection{Anchor: Position{0, 0}, Focus: Position{0, 5}}
	e.Select(sel)
	require.NoError(t, e.Dispatch(ToggleFormat{Format: FormatBold}))

	assert.Equal(t, sel, e.Selection())

	doc := e.Document()
	require.Len(t, doc.Blocks[0].Children, 2)
	assert.True(t, doc.Blocks[0].Children[0].Bold)
	assert.Equal(t, "hello", doc.Blocks[0].Children[0].Text)
	assert.False(t, doc.Blocks[0].Children[1].Bold)
	assert.Equal(t, " world", doc.Blocks[0].Children[1].Text)
}

func TestToggleFormat_SecondToggleRemoves(t *testing.T) {
	e := New(nil)
	typeText(t, e, "bold me")

	e.Select(Selection{Anchor: Position{0, 0}, Focus: Position{0, 7}})
	require.NoError(t, e.Dispatch(ToggleFormat{Format: FormatBold}))
	require.NoError(t, e.Dispatch(ToggleFormat{Format: FormatBold}))

	doc := e.Document()
	require.Len(t, doc.Blocks[0].Children, 1)
	assert.False(t, doc.Blocks[0].Children[0].Bold)
}

func TestToggleFormat_MixedRangeApplies(t *testing.T) {
	e := New(nil)
	typeText(t, e, "ab")
	e.Select(Selection{Anchor: Position{0, 0}, Focus: Position{0, 1}})
	require.NoError(t, e.Dispatch(ToggleFormat{Format: FormatItalic}))

	// Half the range is italic, so toggling applies to the whole range
	e.Select(Selection{Anchor: Position{0, 0}, Focus: Position{0, 2}})
	require.NoError(t, e.Dispatch(ToggleFormat{Format: FormatItalic}))

	doc := e.Document()
	require.Len(t, doc.Blocks[0].Children, 1)
	assert.True(t, doc.Blocks[0].Children[0].Italic)
}

func TestMarkdownShortcut_Heading(t *testing.T) {
	e := New(nil)
	typeText(t, e, "##")
	typeText(t, e, " ")

	doc := e.Document()
	require.Len(t, doc.Blocks, 1)
	assert.Equal(t, document.BlockHeading, doc.Blocks[0].Type)
	assert.Equal(t, 2, doc.Blocks[0].Level)
	assert.Empty(t, doc.Blocks[0].Children)
}

func TestMarkdownShortcut_CodeFenceWithLanguage(t *testing.T) {
	e := New(nil)
	typeText(t, e, "```go")
	typeText(t, e, " ")

	doc := e.Document()
	require.Len(t, doc.Blocks, 1)
	assert.Equal(t, document.BlockCode, doc.Blocks[0].Type)
	assert.Equal(t, "go", doc.Blocks[0].Language)
}

func TestMarkdownShortcut_CheckList(t *testing.T) {
	e := New(nil)
	typeText(t, e, "- [x]")
	typeText(t, e, " ")

	doc := e.Document()
	require.Len(t, doc.Blocks, 1)
	require.Equal(t, document.BlockList, doc.Blocks[0].Type)
	assert.Equal(t, document.ListCheck, doc.Blocks[0].ListKind)
	require.Len(t, doc.Blocks[0].Items, 1)
	require.NotNil(t, doc.Blocks[0].Items[0].Checked)
	assert.True(t, *doc.Blocks[0].Items[0].Checked)
}

func TestMarkdownShortcut_CheckListTypedKeyByKey(t *testing.T) {
	e := New(nil)
	typeText(t, e, "-")
	typeText(t, e, " ")
	typeText(t, e, "[x]")
	typeText(t, e, " ")

	doc := e.Document()
	require.Len(t, doc.Blocks, 1)
	require.Equal(t, document.BlockList, doc.Blocks[0].Type)
	assert.Equal(t, document.ListCheck, doc.Blocks[0].ListKind)
	require.Len(t, doc.Blocks[0].Items, 1)
	assert.Empty(t, doc.Blocks[0].Items[0].Children)
	require.NotNil(t, doc.Blocks[0].Items[0].Checked)
	assert.True(t, *doc.Blocks[0].Items[0].Checked)
}

func TestMarkdownShortcut_MarkerCompletedInsideInsertion(t *testing.T) {
	e := New(nil)
	typeText(t, e, "## 제목 하나")

	doc := e.Document()
	require.Len(t, doc.Blocks, 1)
	assert.Equal(t, document.BlockHeading, doc.Blocks[0].Type)
	assert.Equal(t, 2, doc.Blocks[0].Level)
	assert.Equal(t, "제목 하나", doc.Blocks[0].Children[0].Text)
	assert.Equal(t, Caret(0, 5), e.Selection())
}

func TestMarkdownShortcut_Rule(t *testing.T) {
	e := New(nil)
	typeText(t, e, "---")
	typeText(t, e, " ")

	doc := e.Document()
	require.Len(t, doc.Blocks, 2)
	assert.Equal(t, document.BlockHorizontalRule, doc.Blocks[0].Type)
	assert.Equal(t, document.BlockParagraph, doc.Blocks[1].Type)
	assert.Equal(t, Caret(1, 0), e.Selection())
}

func TestMarkdownShortcut_PlainSpaceIsNotAShortcut(t *testing.T) {
	e := New(nil)
	typeText(t, e, "hello")
	typeText(t, e, " ")

	doc := e.Document()
	assert.Equal(t, document.BlockParagraph, doc.Blocks[0].Type)
	assert.Equal(t, "hello ", doc.Blocks[0].Children[0].Text)
}

func TestMarkdownShortcut_OnlyAtLineStart(t *testing.T) {
	e := New(nil)
	typeText(t, e, "intro #")
	typeText(t, e, " ")

	assert.Equal(t, document.BlockParagraph, e.Document().Blocks[0].Type)
}

func TestInsertLink_WrapsSelection(t *testing.T) {
	e := New(nil)
	typeText(t, e, "pyomin blog")
	e.Select(Selection{Anchor: Position{0, 0}, Focus: Position{0, 6}})

	require.NoError(t, e.Dispatch(InsertLink{Href: "https://pyomin.com", Target: "_blank"}))

	doc := e.Document()
	children := doc.Blocks[0].Children
	require.Len(t, children, 2)
	assert.Equal(t, document.InlineLink, children[0].Type)
	assert.Equal(t, "https://pyomin.com", children[0].Href)
	assert.Equal(t, "pyomin", children[0].Children[0].Text)
	assert.Equal(t, " blog", children[1].Text)
}

func TestInsertLink_UnsafeSchemeRejected(t *testing.T) {
	e := New(nil)
	typeText(t, e, "click")
	e.Select(Selection{Anchor: Position{0, 0}, Focus: Position{0, 5}})
	before := e.Document().MarshalCanonical()

	err := e.Dispatch(InsertLink{Href: "javascript:alert(1)"})
	assert.ErrorIs(t, err, common.ErrUnsafeLink)
	assert.Equal(t, before, e.Document().MarshalCanonical())
	assert.ErrorIs(t, e.Redo(), common.ErrNothingToRedo)
}

func TestDispatch_FailedCommandLeavesStateUntouched(t *testing.T) {
	e := New(nil)
	typeText(t, e, "본문")
	before := e.Document().MarshalCanonical()

	err := e.Dispatch(SetCodeLanguage{Language: "go"})
	require.Error(t, err)
	assert.Equal(t, before, e.Document().MarshalCanonical())

	// Exactly one undo step remains, from the text insertion
	require.NoError(t, e.Undo())
	assert.ErrorIs(t, e.Undo(), common.ErrNothingToUndo)
}

func TestInsertParagraph_SplitsBlock(t *testing.T) {
	e := New(nil)
	typeText(t, e, "firstsecond")
	e.Select(Caret(0, 5))

	require.NoError(t, e.Dispatch(InsertParagraph{}))

	doc := e.Document()
	require.Len(t, doc.Blocks, 2)
	assert.Equal(t, "first", doc.Blocks[0].Children[0].Text)
	assert.Equal(t, "second", doc.Blocks[1].Children[0].Text)
	assert.Equal(t, Caret(1, 0), e.Selection())
}

func TestInsertText_ReplacesSelection(t *testing.T) {
	e := New(nil)
	typeText(t, e, "hello cruel world")
	e.Select(Selection{Anchor: Position{0, 5}, Focus: Position{0, 11}})

	typeText(t, e, ",")

	doc := e.Document()
	assert.Equal(t, "hello, world", doc.Blocks[0].Children[0].Text)
}

func TestDeleteBackward_MergesBlocks(t *testing.T) {
	e := New(nil)
	typeText(t, e, "one")
	require.NoError(t, e.Dispatch(InsertParagraph{}))
	typeText(t, e, "two")
	e.Select(Caret(1, 0))

	require.NoError(t, e.Dispatch(DeleteBackward{}))

	doc := e.Document()
	require.Len(t, doc.Blocks, 1)
	assert.Equal(t, "onetwo", doc.Blocks[0].Children[0].Text)
	assert.Equal(t, Caret(0, 3), e.Selection())
}

func TestLoad_ResetsHistory(t *testing.T) {
	e := New(nil)
	typeText(t, e, "scratch")

	require.NoError(t, e.Load("<p>저장된 글</p>"))
	assert.False(t, e.CanUndo())
	assert.Equal(t, "저장된 글", e.Document().Blocks[0].Children[0].Text)
}

func TestContent_JSONAndHTMLAgree(t *testing.T) {
	e := New(nil)
	typeText(t, e, "내용")

	content := e.Content()
	parsed, err := document.UnmarshalCanonical(content.JSON)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(e.Document()))
	assert.Contains(t, content.HTML, "<p>내용</p>")
}

func TestInsertUploadedImage_CommitsOnlyOnSuccess(t *testing.T) {
	up := new(mockUploader)
	up.On("UploadImage", mock.Anything, "shot.png", mock.Anything).
		Return("https://cdn.pyomin.com/images/shot.png", nil).Once()

	e := New(up)
	typeText(t, e, "사진 설명")

	err := e.InsertUploadedImage(context.Background(), "shot.png", strings.NewReader("png"), "스크린샷")
	require.NoError(t, err)

	doc := e.Document()
	require.Len(t, doc.Blocks, 2)
	assert.Equal(t, document.BlockImage, doc.Blocks[1].Type)
	assert.Equal(t, "https://cdn.pyomin.com/images/shot.png", doc.Blocks[1].Src)
	up.AssertExpectations(t)
}

func TestInsertUploadedImage_FailureLeavesDocument(t *testing.T) {
	up := new(mockUploader)
	up.On("UploadImage", mock.Anything, "bad.bmp", mock.Anything).
		Return("", errors.New("지원하지 않는 형식")).Once()

	e := New(up)
	before := e.Document().MarshalCanonical()

	err := e.InsertUploadedImage(context.Background(), "bad.bmp", strings.NewReader("bmp"), "")
	require.Error(t, err)
	assert.Equal(t, before, e.Document().MarshalCanonical())
	up.AssertExpectations(t)
}

func TestSubscribe_NotifiedOnDispatch(t *testing.T) {
	e := New(nil)
	ch, cancel := e.Subscribe()
	defer cancel()

	typeText(t, e, "x")

	select {
	case <-ch:
	default:
		t.Fatal("subscriber not notified after dispatch")
	}
}

func TestHighlightHTML_Idempotent(t *testing.T) {
	stored := `<pre data-language="go"><code>package main

func main() {}</code></pre>`

	once, err := HighlightHTML(stored)
	require.NoError(t, err)
	twice, err := HighlightHTML(once)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
	assert.Contains(t, once, `data-language="go"`)
	assert.Contains(t, once, "<span class=")
}

func TestRenderHighlighted_NonCodeBlocksUntouched(t *testing.T) {
	doc := document.Document{Version: 1, Blocks: []document.Block{
		document.Paragraph(document.Text("텍스트")),
	}}
	assert.Equal(t, document.Render(doc), RenderHighlighted(doc))
}
