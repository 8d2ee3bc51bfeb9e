package syncctl

// Notices shown when a form does not pass the presence checks.
const (
	MsgCreateIncomplete = "Please fill in both name and email."
	MsgUpdateIncomplete = "Please provide an ID and at least one field (name or email) to update."
)

// Form is the transient input state owned by the controller.
type Form struct {
	CreateName  string
	CreateEmail string
	UpdateID    string
	UpdateName  string
	UpdateEmail string
}

type createFields struct {
	Name  string `validate:"required"`
	Email string `validate:"required"`
}

type updateFields struct {
	ID    string `validate:"required"`
	Name  string `validate:"required_without=Email"`
	Email string `validate:"required_without=Name"`
}
