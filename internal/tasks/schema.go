package tasks

// Request and response bodies. They are kept apart from Task and Comment so
// that a client can never set an id and so that update payloads can tell
// "not supplied" apart from a stored value.

type createTaskRequest struct {
	Title *string `json:"title"`
}

type updateTaskRequest struct {
	Title *string `json:"title"`
}

// apply copies supplied fields onto t. An empty string counts as not
// supplied and leaves the stored title alone.
func (p updateTaskRequest) apply(t *Task) {
	if p.Title != nil && *p.Title != "" {
		t.Title = *p.Title
	}
}

type createCommentRequest struct {
	Author  *string `json:"author"`
	Content *string `json:"content"`
}

type updateCommentRequest struct {
	Author  *string `json:"author"`
	Content *string `json:"content"`
}

func (p updateCommentRequest) apply(c *Comment) {
	if p.Author != nil && *p.Author != "" {
		c.Author = *p.Author
	}
	if p.Content != nil && *p.Content != "" {
		c.Content = *p.Content
	}
}

type taskResponse struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

func newTaskResponse(t Task) taskResponse {
	return taskResponse{ID: t.ID, Title: t.Title}
}

type commentResponse struct {
	ID      int64  `json:"id"`
	TaskID  int64  `json:"task_id"`
	Author  string `json:"author"`
	Content string `json:"content"`
}

func newCommentResponse(c Comment) commentResponse {
	return commentResponse{ID: c.ID, TaskID: c.TaskID, Author: c.Author, Content: c.Content}
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type errResponse struct {
	Error   string       `json:"error"`
	Message string       `json:"message,omitempty"`
	Details []fieldError `json:"details,omitempty"`
}
