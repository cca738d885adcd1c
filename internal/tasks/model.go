package tasks

// Task is a top-level tracked item. ID is assigned by the store.
type Task struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// Comment is a note attached to exactly one Task through TaskID.
// TaskID referenced an existing task when the comment was created; it is
// not re-checked after that, so deleting the task leaves the comment behind.
type Comment struct {
	ID      int64  `json:"id"`
	TaskID  int64  `json:"task_id"`
	Author  string `json:"author"`
	Content string `json:"content"`
}
