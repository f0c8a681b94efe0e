package service

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pyomin/bluecool-admin/internal/alert"
	"github.com/pyomin/bluecool-admin/internal/api"
	"github.com/pyomin/bluecool-admin/internal/cache"
	"github.com/pyomin/bluecool-admin/internal/common"
	"github.com/pyomin/bluecool-admin/internal/domain"
)

// --- Mock Gateway ---

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) Get(ctx context.Context, path string, query url.Values, out any) error {
	args := m.Called(ctx, path, query, out)
	return args.Error(0)
}

func (m *mockGateway) Post(ctx context.Context, path string, body, out any) error {
	args := m.Called(ctx, path, body, out)
	return args.Error(0)
}

func (m *mockGateway) Patch(ctx context.Context, path string, body, out any) error {
	args := m.Called(ctx, path, body, out)
	return args.Error(0)
}

func (m *mockGateway) Delete(ctx context.Context, path string) error {
	args := m.Called(ctx, path)
	return args.Error(0)
}

// --- Mock Navigator ---

type mockNavigator struct {
	routes []string
}

func (m *mockNavigator) NavigateTo(path string) {
	m.routes = append(m.routes, path)
}

func drainAlerts(ch <-chan alert.Alert) []alert.Alert {
	var out []alert.Alert
	for {
		select {
		case a := <-ch:
			out = append(out, a)
		default:
			return out
		}
	}
}

func newPostFixture() (*mockGateway, *mockNavigator, *alert.Hub, <-chan alert.Alert, PostService) {
	gw := new(mockGateway)
	nav := new(mockNavigator)
	hub := alert.NewHub()
	ch, _ := hub.Subscribe()
	svc := NewPostService(gw, cache.New(nil), hub, nav)
	return gw, nav, hub, ch, svc
}

func TestPublish_BlockedWithoutSlug(t *testing.T) {
	gw, nav, _, ch, svc := newPostFixture()

	err := svc.Publish(context.Background(), "p1", "제목", "<p>본문</p>", "{}", domain.PublishData{
		Description: "요약",
		CategoryID:  3,
	})

	assert.ErrorIs(t, err, common.ErrSlugRequired)
	alerts := drainAlerts(ch)
	require.Len(t, alerts, 1)
	assert.Equal(t, "URL SLUG를 입력해주세요.", alerts[0].Message)
	assert.Equal(t, alert.SeverityWarning, alerts[0].Severity)
	assert.Empty(t, nav.routes)
	gw.AssertNotCalled(t, "Patch", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPublish_PreconditionOrderSlugDescriptionCategory(t *testing.T) {
	_, _, _, ch, svc := newPostFixture()

	// Everything missing: the slug check fires first
	err := svc.Publish(context.Background(), "p1", "", "", "{}", domain.PublishData{})
	assert.ErrorIs(t, err, common.ErrSlugRequired)

	// Slug present, description missing
	err = svc.Publish(context.Background(), "p1", "", "", "{}", domain.PublishData{Slug: "my-post"})
	assert.ErrorIs(t, err, common.ErrDescriptionRequired)

	// Slug and description present, category missing
	err = svc.Publish(context.Background(), "p1", "", "", "{}", domain.PublishData{
		Slug:        "my-post",
		Description: "요약",
	})
	assert.ErrorIs(t, err, common.ErrCategoryRequired)

	messages := []string{}
	for _, a := range drainAlerts(ch) {
		messages = append(messages, a.Message)
	}
	assert.Equal(t, []string{
		"URL SLUG를 입력해주세요.",
		"요약 내용을 입력해주세요.",
		"카테고리를 선택해주세요.",
	}, messages)
}

func TestPublish_RejectsMalformedSlug(t *testing.T) {
	gw, _, _, _, svc := newPostFixture()

	err := svc.Publish(context.Background(), "p1", "제목", "", "{}", domain.PublishData{
		Slug:        "Big Slug!",
		Description: "요약",
		CategoryID:  3,
	})

	assert.ErrorIs(t, err, common.ErrSlugInvalid)
	gw.AssertNotCalled(t, "Patch", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPublish_SuccessNavigatesToList(t *testing.T) {
	gw, nav, _, ch, svc := newPostFixture()

	var sent domain.UpdatePostRequest
	gw.On("Patch", mock.Anything, "/posts/p1", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			sent = args.Get(2).(domain.UpdatePostRequest)
		}).
		Return(nil).Once()

	err := svc.Publish(context.Background(), "p1", "제목", "<p>본문</p>", "{}", domain.PublishData{
		Slug:        "my-first-post",
		Description: "  요약  ",
		CategoryID:  3,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.StatusPublished, sent.Status)
	require.NotNil(t, sent.Slug)
	assert.Equal(t, "my-first-post", *sent.Slug)
	assert.Equal(t, "요약", sent.Description)

	alerts := drainAlerts(ch)
	require.Len(t, alerts, 1)
	assert.Equal(t, "성공적으로 발행되었습니다! 🎉", alerts[0].Message)
	assert.Equal(t, []string{"/posts"}, nav.routes)
	gw.AssertExpectations(t)
}

func TestSaveDraft_EmptySlugSentAsNull(t *testing.T) {
	gw, nav, _, ch, svc := newPostFixture()

	var sent domain.UpdatePostRequest
	gw.On("Patch", mock.Anything, "/posts/p1", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			sent = args.Get(2).(domain.UpdatePostRequest)
		}).
		Return(nil).Once()

	err := svc.SaveDraft(context.Background(), "p1", "제목", "<p></p>", "{}", domain.PublishData{})

	require.NoError(t, err)
	assert.Nil(t, sent.Slug)
	assert.Equal(t, domain.StatusDraft, sent.Status)

	alerts := drainAlerts(ch)
	require.Len(t, alerts, 1)
	assert.Equal(t, "임시 저장되었습니다!", alerts[0].Message)
	// Draft saves never navigate
	assert.Empty(t, nav.routes)
}

func TestCreateDraft_RoutesIntoEditor(t *testing.T) {
	gw, nav, _, _, svc := newPostFixture()

	gw.On("Post", mock.Anything, "/posts", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			*(args.Get(3).(*domain.Post)) = domain.Post{ID: "p42", Title: ""}
		}).
		Return(nil).Once()

	post, err := svc.CreateDraft(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "p42", post.ID)
	assert.Equal(t, []string{"/posts/p42/edit"}, nav.routes)
}

func TestUpdate_ServerValidationSurfacesFirstMessage(t *testing.T) {
	gw, nav, _, ch, svc := newPostFixture()

	gw.On("Patch", mock.Anything, "/posts/p1", mock.Anything, mock.Anything).
		Return(&api.Error{StatusCode: 422, Messages: []string{"슬러그가 이미 사용 중입니다.", "기타"}}).Once()

	err := svc.Publish(context.Background(), "p1", "제목", "", "{}", domain.PublishData{
		Slug:        "taken-slug",
		Description: "요약",
		CategoryID:  1,
	})

	require.Error(t, err)
	alerts := drainAlerts(ch)
	require.Len(t, alerts, 1)
	assert.Equal(t, "슬러그가 이미 사용 중입니다.", alerts[0].Message)
	assert.Equal(t, alert.SeverityError, alerts[0].Severity)
	// Mutation failures never navigate
	assert.Empty(t, nav.routes)
}

func TestList_DefaultsLimitAndOmitsAllStatus(t *testing.T) {
	gw, _, _, _, svc := newPostFixture()

	var seen url.Values
	gw.On("Get", mock.Anything, "/posts", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			seen = args.Get(2).(url.Values)
			*(args.Get(3).(*domain.PostList)) = domain.PostList{Total: 0, Page: 1, LastPage: 1}
		}).
		Return(nil).Once()

	_, err := svc.List(context.Background(), domain.PostListQuery{Status: "ALL", Page: 1})
	require.NoError(t, err)
	assert.Equal(t, "9", seen.Get("limit"))
	assert.Empty(t, seen.Get("status"))
	assert.Empty(t, seen.Get("category"))
}

func TestList_ServesPreviousPageWhileNextLoads(t *testing.T) {
	gw, _, _, _, svc := newPostFixture()

	page1 := domain.PostList{Items: []domain.Post{{ID: "p1", Title: "첫 글"}}, Total: 1, Page: 1, LastPage: 2}
	gw.On("Get", mock.Anything, "/posts", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			*(args.Get(3).(*domain.PostList)) = page1
		}).
		Return(nil).Once()

	first, err := svc.List(context.Background(), domain.PostListQuery{Page: 1})
	require.NoError(t, err)
	require.Len(t, first.Items, 1)

	release := make(chan struct{})
	defer close(release)
	gw.On("Get", mock.Anything, "/posts", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			<-release
			*(args.Get(3).(*domain.PostList)) = domain.PostList{Page: 2, Total: 1, LastPage: 2}
		}).
		Return(nil).Once()

	// While page 2 is still loading, the page-1 result holds the table
	second, err := svc.List(context.Background(), domain.PostListQuery{Page: 2})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDelete_InvalidatesAndNavigates(t *testing.T) {
	gw, nav, _, _, svc := newPostFixture()

	gw.On("Delete", mock.Anything, "/posts/p9").Return(nil).Once()

	require.NoError(t, svc.Delete(context.Background(), "p9"))
	assert.Equal(t, []string{"/posts"}, nav.routes)
	gw.AssertExpectations(t)
}
