package posts

import "errors"

var (
	ErrPostNotFound = errors.New("post not found")
	ErrNotOwner     = errors.New("not the post owner")
)
