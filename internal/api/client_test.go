package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyomin/bluecool-admin/internal/common"
)

// --- Fake token source ---

type fakeTokens struct {
	token   string
	cleared bool
}

func (f *fakeTokens) Get() string  { return f.token }
func (f *fakeTokens) Clear() error { f.token = ""; f.cleared = true; return nil }

func newTestClient(t *testing.T, handler http.Handler, tokens *fakeTokens) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(server.URL, "/api", tokens)
	require.NoError(t, err)
	return client
}

func TestGet_AttachesBearerAndPrefix(t *testing.T) {
	var gotPath, gotAuth string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"ok":true}`)) //nolint:errcheck
	})

	client := newTestClient(t, handler, &fakeTokens{token: "tok-123"})

	var out struct {
		OK bool `json:"ok"`
	}
	require.NoError(t, client.Get(context.Background(), "/posts", nil, &out))

	assert.Equal(t, "/api/posts", gotPath)
	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.True(t, out.OK)
}

func TestGet_NoTokenNoHeader(t *testing.T) {
	var gotAuth string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`)) //nolint:errcheck
	})

	client := newTestClient(t, handler, &fakeTokens{})
	require.NoError(t, client.Get(context.Background(), "/posts", nil, nil))
	assert.Empty(t, gotAuth)
}

func TestUnauthorized_ClearsTokensAndFiresHook(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	tokens := &fakeTokens{token: "stale"}
	client := newTestClient(t, handler, tokens)

	hookFired := false
	client.OnUnauthorized(func() { hookFired = true })

	err := client.Get(context.Background(), "/auth/me", nil, nil)

	assert.ErrorIs(t, err, common.ErrSessionExpired)
	assert.True(t, tokens.cleared)
	assert.Empty(t, tokens.token)
	assert.True(t, hookFired)
}

func TestErrorEnvelope_SingleMessage(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"statusCode":400,"message":"제목을 입력해주세요.","error":"Bad Request"}`)) //nolint:errcheck
	})

	client := newTestClient(t, handler, &fakeTokens{})
	err := client.Post(context.Background(), "/posts", map[string]string{}, nil)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.StatusCode)
	assert.Equal(t, "제목을 입력해주세요.", apiErr.FirstMessage())
	assert.Equal(t, "Bad Request", apiErr.Code)
}

func TestErrorEnvelope_MessageArray_FirstWins(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"statusCode":422,"message":["slug must match pattern","description too long"]}`)) //nolint:errcheck
	})

	client := newTestClient(t, handler, &fakeTokens{})
	err := client.Patch(context.Background(), "/posts/p1", map[string]string{}, nil)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, []string{"slug must match pattern", "description too long"}, apiErr.Messages)
	assert.Equal(t, "slug must match pattern", apiErr.FirstMessage())
}

func TestErrorEnvelope_GarbageBodyStillErrors(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("<html>boom</html>")) //nolint:errcheck
	})

	client := newTestClient(t, handler, &fakeTokens{})
	err := client.Get(context.Background(), "/analytics/dashboard", nil, nil)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 500, apiErr.StatusCode)
	assert.Empty(t, apiErr.FirstMessage())
}

func TestUploadImage_MultipartFileField(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close() //nolint:errcheck

		assert.Equal(t, "shot.png", header.Filename)
		w.Write([]byte(`{"url":"https://cdn.pyomin.com/images/shot.png"}`)) //nolint:errcheck
	})

	client := newTestClient(t, handler, &fakeTokens{token: "t"})
	url, err := client.UploadImage(context.Background(), "shot.png", strings.NewReader("png-bytes"))

	require.NoError(t, err)
	assert.Equal(t, "https://cdn.pyomin.com/images/shot.png", url)
}

func TestUploadImage_FailureReturnsError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"statusCode":400,"message":"지원하지 않는 이미지 형식입니다."}`)) //nolint:errcheck
	})

	client := newTestClient(t, handler, &fakeTokens{})
	_, err := client.UploadImage(context.Background(), "x.bmp", strings.NewReader("bmp"))

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "지원하지 않는 이미지 형식입니다.", apiErr.FirstMessage())
}
