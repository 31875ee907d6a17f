package types

import "time"

// User is the flat, public representation of a user document.
type User struct {
	ID            string    `json:"_id"`
	Email         string    `json:"email"`
	Username      string    `json:"username"`
	ImageURL      string    `json:"imageUrl"`
	Followers     []string  `json:"followers"`
	Likes         []string  `json:"likes"`
	Posts         []string  `json:"posts"`
	Notifications []string  `json:"notifications"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// SignupResult is returned by signup.
type SignupResult struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	ID       string `json:"id"`
}

// UserListing is a user as returned by the user list: posts are expanded
// with their author and comments, other relations stay as ids.
type UserListing struct {
	ID            string    `json:"_id"`
	Email         string    `json:"email"`
	Username      string    `json:"username"`
	ImageURL      string    `json:"imageUrl"`
	Followers     []string  `json:"followers"`
	Likes         []string  `json:"likes"`
	Posts         []Post    `json:"posts"`
	Notifications []string  `json:"notifications"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// UserDetail is a single user with followers, posts (comments with authors)
// and notifications (with their post) expanded.
type UserDetail struct {
	ID            string         `json:"_id"`
	Email         string         `json:"email"`
	Username      string         `json:"username"`
	ImageURL      string         `json:"imageUrl"`
	Followers     []User         `json:"followers"`
	Likes         []string       `json:"likes"`
	Posts         []Post         `json:"posts"`
	Notifications []Notification `json:"notifications"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// Post is an expanded post. Author is set when the author was resolved.
type Post struct {
	ID        string    `json:"_id"`
	UserID    string    `json:"userId"`
	Author    *User     `json:"author,omitempty"`
	Body      string    `json:"body"`
	ImageURL  string    `json:"imageUrl"`
	Likes     []string  `json:"likes"`
	Comments  []Comment `json:"comments"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Comment is an expanded comment. Author is nil when the author no longer exists.
type Comment struct {
	ID        string    `json:"_id"`
	UserID    string    `json:"userId"`
	PostID    string    `json:"postId"`
	Author    *User     `json:"author,omitempty"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Notification is an expanded notification with its originating post.
type Notification struct {
	ID         string       `json:"_id"`
	UserID     string       `json:"userId"`
	FromUserID string       `json:"fromUserId"`
	PostID     string       `json:"postId"`
	Post       *PostSummary `json:"post,omitempty"`
	Message    string       `json:"message"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

// PostSummary is a post whose references are left as ids.
type PostSummary struct {
	ID        string    `json:"_id"`
	UserID    string    `json:"userId"`
	Body      string    `json:"body"`
	ImageURL  string    `json:"imageUrl"`
	Likes     []string  `json:"likes"`
	Comments  []string  `json:"comments"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
