package me

import (
	"net/http"

	"stockroom/frontend/shared/context"
	"stockroom/frontend/shared/respond"
	"stockroom/infrastructure/rbac"
)

type privilegesResponse struct {
	Username   string   `json:"username"`
	Role       string   `json:"role"`
	Privileges []string `json:"privileges"`
}

// PrivilegesHandler lists the privilege codes of the signed-in user.
func PrivilegesHandler(r *rbac.Rbac) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		session, ok := context.GetSessionFromContext(req.Context())
		if !ok {
			respond.Error(w, http.StatusUnauthorized, "not signed in")
			return
		}
		respond.JSON(w, http.StatusOK, privilegesResponse{
			Username:   session.User.Username,
			Role:       session.User.Role,
			Privileges: r.Codes(session.UserRoles),
		})
	}
}
