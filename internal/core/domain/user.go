package domain

// User is a fleet manager account. Actor identity for audit entries comes
// from the authenticated user.
type User struct {
	UserID       string `json:"userID"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	AuditFields
}
