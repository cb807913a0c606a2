package dto

// LoginRequest authenticates by email and password.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterUserRequest creates an operator account.
type RegisterUserRequest struct {
	Name      string  `json:"name" validate:"required,max=255"`
	Email     string  `json:"email" validate:"required,email"`
	Phone     *string `json:"phone,omitempty"`
	Password  string  `json:"password" validate:"required,min=8"`
	Role      string  `json:"role" validate:"required,oneof=admin technician dispatcher"`
	ManagerID *string `json:"manager_id,omitempty" validate:"omitempty,uuid4"`
}

// RegisterPortalUserRequest creates a client-portal account.
type RegisterPortalUserRequest struct {
	ClientID string  `json:"client_id" validate:"required,uuid4"`
	Name     string  `json:"name" validate:"required,max=255"`
	Email    string  `json:"email" validate:"required,email"`
	Phone    *string `json:"phone,omitempty"`
	Password string  `json:"password" validate:"required,min=8"`
}
