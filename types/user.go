package types

// User is a stored user record.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// CreateUserRequest is the body of POST /users.
type CreateUserRequest struct {
	Username string `json:"username" binding:"required"`
}
