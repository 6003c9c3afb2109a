package http

import (
	"net/http"
	"strings"

	"secure-quiz-service/internal/domain"
)

// Permissions granted to each role. A trailing "*" matches any suffix.
var rolePermissions = map[domain.Role][]string{
	domain.RoleAdmin: {
		"users:*",
		"assignment:create",
	},
	domain.RoleTeacher: {
		"quiz:*",
		"question:create",
		"results:view",
	},
	domain.RoleStudent: {
		"assignment:view-own",
		"attempt:take",
		"attempt:submit",
		"result:view-own",
	},
}

func hasPermission(role domain.Role, perm string) bool {
	for _, p := range rolePermissions[role] {
		if p == "*" || p == perm {
			return true
		}
		if strings.HasSuffix(p, "*") && strings.HasPrefix(perm, strings.TrimSuffix(p, "*")) {
			return true
		}
	}
	return false
}

// Require enforces a single permission for the authenticated role.
func Require(perm string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := claimsFrom(r.Context())
			if claims == nil || !hasPermission(claims.Role, perm) {
				writeMessage(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
