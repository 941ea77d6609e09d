package models

// Roles form a small closed set. The role lives in two places: as a claim
// on the identity (checked by authorization) and mirrored on the user's
// profile document (queried by the notification fan-out).
const (
	RoleAdmin        = "Admin"
	RoleKitchenStaff = "Kitchen Staff"
	RoleFrontOfHouse = "Front of House"
	RoleStaff        = "Staff"
)

// UserProfile is the users/{uid} document.
type UserProfile struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}
