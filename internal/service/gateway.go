package service

import (
	"context"
	"errors"
	"io"
	"net/url"

	"github.com/pyomin/bluecool-admin/internal/api"
)

// Gateway is the slice of the HTTP client the services consume.
// *api.Client satisfies it; tests substitute a mock.
type Gateway interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Patch(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string) error
}

// MediaGateway uploads image files. *api.Client satisfies it.
type MediaGateway interface {
	UploadImage(ctx context.Context, filename string, file io.Reader) (string, error)
	UploadProfileImage(ctx context.Context, filename string, file io.Reader) (string, error)
}

// Navigator moves the console to another route. The route registry
// satisfies it; services never import it directly.
type Navigator interface {
	NavigateTo(path string)
}

// serverMessage extracts the first server-side error message, falling
// back to the given default for transport failures.
func serverMessage(err error, fallback string) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		if msg := apiErr.FirstMessage(); msg != "" {
			return msg
		}
	}
	return fallback
}
