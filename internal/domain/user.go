package domain

// User is an account that can open a session. Administrator gates management operations.
type User struct {
	ID            int64
	Name          string
	Email         string
	PasswordHash  string
	Administrator bool
}

// PartialUserUpdate carries a profile change. Password changes need OldPassword.
type PartialUserUpdate struct {
	ID              int64
	Name            *string
	Email           *string
	OldPassword     *string
	Password        *string
	ConfirmPassword *string
}

// Session is the result of a successful login.
type Session struct {
	User  User
	Token string
}
