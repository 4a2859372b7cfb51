// Package rbac maps roles to the routes they may call. Routes register
// themselves with a privilege code at startup; the auth middleware checks
// each request against the caller's role.
package rbac

import (
	"context"
	"sort"
	"strings"

	"github.com/uptrace/bun"

	"stockroom/infrastructure/cache"
	"stockroom/infrastructure/sqlite"
	"stockroom/models"
)

const (
	RoleAdmin       = "admin"
	RoleStorekeeper = "storekeeper"
	RoleViewer      = "viewer"
)

// Roles lists every assignable role.
var Roles = []string{RoleAdmin, RoleStorekeeper, RoleViewer}

func ValidRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

type Rbac struct {
	cache *cache.RbacRolesCache
}

func New(c *cache.RbacRolesCache) *Rbac {
	return &Rbac{cache: c}
}

func (r *Rbac) Add(role, code, method, path string) {
	if r == nil || r.cache == nil {
		return
	}
	r.cache.Add(role, cache.Resource{
		Role:             role,
		UserResourceCode: code,
		Method:           strings.ToUpper(method),
		Path:             path,
	})
}

// Grant registers the same privilege for several roles.
func (r *Rbac) Grant(code, method, path string, roles ...string) {
	for _, role := range roles {
		r.Add(role, code, method, path)
	}
}

// Codes returns the sorted privilege codes held by roles. Admins hold every
// registered code.
func (r *Rbac) Codes(roles []string) []string {
	if r == nil || r.cache == nil {
		return []string{}
	}
	for _, role := range roles {
		if role == RoleAdmin {
			return r.cache.RouteNamesSorted()
		}
	}
	seen := make(map[string]struct{})
	for _, res := range r.cache.GetRolesAndResources(roles) {
		seen[res.UserResourceCode] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for code := range seen {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// Persist mirrors the registered privileges into the privileges and
// role_privileges tables, replacing what was stored before.
func (r *Rbac) Persist(ctx context.Context, db *sqlite.DB) error {
	resources := r.cache.AllResources()
	return db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*models.RolePrivilege)(nil)).Where("1 = 1").Exec(ctx); err != nil {
			return err
		}
		if _, err := tx.NewDelete().Model((*models.Privilege)(nil)).Where("1 = 1").Exec(ctx); err != nil {
			return err
		}
		seen := make(map[string]struct{})
		for _, res := range resources {
			if _, ok := seen[res.UserResourceCode]; !ok {
				seen[res.UserResourceCode] = struct{}{}
				if _, err := tx.NewInsert().Model(&models.Privilege{
					Code:   res.UserResourceCode,
					Method: res.Method,
					Path:   res.Path,
				}).Exec(ctx); err != nil {
					return err
				}
			}
			if _, err := tx.NewInsert().Model(&models.RolePrivilege{
				Role:          res.Role,
				PrivilegeCode: res.UserResourceCode,
			}).On("CONFLICT DO NOTHING").Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
}

func ValidateResourceAccess(resources []cache.Resource, urlPath, method string) bool {
	method = strings.ToUpper(method)
	for _, res := range resources {
		if res.Method != method {
			continue
		}
		if matchPath(res.Path, urlPath) {
			return true
		}
	}
	return false
}

// matchPath compares slash separated segments. "*" matches one segment, and
// a trailing "*" matches any deeper suffix.
func matchPath(pattern, path string) bool {
	if pattern == path {
		return true
	}

	patternSeg := strings.Split(strings.Trim(pattern, "/"), "/")
	pathSeg := strings.Split(strings.Trim(path, "/"), "/")

	if len(patternSeg) == len(pathSeg) {
		for i := range patternSeg {
			if patternSeg[i] != "*" && patternSeg[i] != pathSeg[i] {
				return false
			}
		}
		return true
	}

	if last := len(patternSeg) - 1; last >= 0 && patternSeg[last] == "*" && len(pathSeg) > last {
		for i := 0; i < last; i++ {
			if patternSeg[i] != "*" && patternSeg[i] != pathSeg[i] {
				return false
			}
		}
		return true
	}
	return false
}
