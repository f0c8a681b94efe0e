package cache

import (
	"encoding/json"
	"fmt"
)

// Key a structured cache key: a tuple of a resource tag plus
// discriminating params, e.g. K("posts", "p1") or
// K("posts", listParams{...}).
type Key []any

// K builds a Key from its parts
func K(parts ...any) Key {
	return Key(parts)
}

// String returns the canonical JSON form of the key. Two keys match
// exactly when their canonical forms are equal.
func (k Key) String() string {
	data, err := json.Marshal([]any(k))
	if err != nil {
		// Key parts are plain values and small structs; a marshal
		// failure indicates a programming error.
		return fmt.Sprintf("!badkey:%v", []any(k))
	}
	return string(data)
}

// HasPrefix reports whether k begins with the given prefix, element by
// element on canonical forms. Every key has the empty prefix.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i, part := range prefix {
		a, errA := json.Marshal(part)
		b, errB := json.Marshal(k[i])
		if errA != nil || errB != nil || string(a) != string(b) {
			return false
		}
	}
	return true
}

// Key namespaces used by the console
func PostsKey() Key                { return K("posts") }
func PostKey(id string) Key        { return K("posts", id) }
func PostListKey(params any) Key   { return K("posts", params) }
func CommentsKey() Key             { return K("comments") }
func CommentListKey(p any) Key     { return K("comments", "list", p) }
func UsersKey() Key                { return K("users") }
func CategoriesKey() Key           { return K("categories") }
func AnalyticsKey(parts ...any) Key { return append(K("analytics"), parts...) }
func AuthKey() Key                 { return K("auth") }
func AuthMeKey() Key               { return K("auth", "me") }
func AIKey(kind string) Key        { return K("ai", kind) }
