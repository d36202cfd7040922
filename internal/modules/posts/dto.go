package posts

type CreatePostRequest struct {
	Title   string `json:"title" binding:"required,min=1"`
	Content string `json:"content" binding:"required"`
}

type UpdatePostRequest struct {
	Title   string `json:"title,omitempty" validate:"omitempty,min=1"`
	Content string `json:"content,omitempty"`
}

type PostResponse struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	OwnerID   int64  `json:"owner_id"`
	CreatedAt string `json:"created_at"`
}
