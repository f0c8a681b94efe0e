package common

import "errors"

// Business logic errors
var (
	// General errors
	ErrNotFound  = errors.New("resource not found")
	ErrForbidden = errors.New("forbidden")

	// Post errors
	ErrPostNotFound   = errors.New("post not found")
	ErrEditorAttached = errors.New("post already has an active editor")

	// Publish preconditions (검증은 네트워크 호출 전에 수행)
	ErrSlugRequired        = errors.New("slug is required to publish")
	ErrSlugInvalid         = errors.New("slug must match ^[a-z0-9-]+$")
	ErrDescriptionRequired = errors.New("description is required to publish")
	ErrCategoryRequired    = errors.New("category is required to publish")

	// Auth errors
	ErrUnauthorized       = errors.New("unauthorized")
	ErrSessionExpired     = errors.New("session expired")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Validation errors
	ErrInvalidInput = errors.New("invalid input")

	// Editor errors
	ErrNoSelection   = errors.New("no selection")
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)
