package users

// User is a single record of the user collection.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CreateInput carries the fields of a new user.
type CreateInput struct {
	Name  string `json:"name" validate:"required,max=50"`
	Email string `json:"email" validate:"required,max=100"`
}

// UpdateInput carries replacement values. An empty field keeps the stored value.
type UpdateInput struct {
	Name  string `json:"name" validate:"omitempty,max=50"`
	Email string `json:"email" validate:"omitempty,max=100"`
}

// Apply returns u with every non-empty field of in written over it.
func (in UpdateInput) Apply(u User) User {
	if in.Name != "" {
		u.Name = in.Name
	}
	if in.Email != "" {
		u.Email = in.Email
	}
	return u
}
