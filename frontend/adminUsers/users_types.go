package adminusers

import "time"

type UserView struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

type createUserRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=256"`
	Role     string `json:"role" validate:"required,oneof=admin storekeeper viewer"`
}

type updateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin storekeeper viewer"`
}
