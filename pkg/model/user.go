package model

// User is the signed-in identity. A nil *User everywhere means unauthenticated.
type User struct {
	ID    string `json:"id" validate:"required"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}
