package payload

// CreateUserRequest is the body of an authenticated user creation.
type CreateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

// UpdateUserRequest is a profile patch. Fields that are absent stay unchanged;
// any other key in the body is ignored.
type UpdateUserRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	ImageURL *string `json:"imageUrl"`
}

type LikeRequest struct {
	PostID string `json:"postId"`
}

type NotificationRequest struct {
	NotificationID string `json:"notificationId"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type PruneResponse struct {
	Modified int64 `json:"modified"`
}

type ErrorResponse struct {
	Kind    string            `json:"kind"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}
