package middlewares

import (
	"fmt"
	"log"
	"net/http"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	mongodbadapter "github.com/casbin/mongodb-adapter/v3"
	"github.com/gin-gonic/gin"
)

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

// Moderation permissions per admin role.
var defaultPolicies = [][]string{
	{"admin", "post", "delete"},
	{"admin", "comment", "delete"},
	{"admin", "user", "read"},
	{"admin", "user", "update"},
	{"admin", "analytics", "read"},
	{"moderator", "post", "delete"},
	{"moderator", "comment", "delete"},
	{"moderator", "user", "read"},
}

// NewEnforcer builds the RBAC enforcer backed by the casbin_rule collection
// and seeds the default role policies.
func NewEnforcer(mongoURI string) (*casbin.Enforcer, error) {
	adapter, err := mongodbadapter.NewAdapter(mongoURI)
	if err != nil {
		return nil, fmt.Errorf("failed to create RBAC adapter: %w", err)
	}

	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("failed to build RBAC model: %w", err)
	}

	enforcer, err := casbin.NewEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("failed to create RBAC enforcer: %w", err)
	}
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("failed to load RBAC policy: %w", err)
	}

	for _, p := range defaultPolicies {
		if has, _ := enforcer.HasPolicy(p[0], p[1], p[2]); !has {
			if _, err := enforcer.AddPolicy(p[0], p[1], p[2]); err != nil {
				log.Printf("rbac: adding policy %v: %v", p, err)
			}
		}
	}
	return enforcer, nil
}

// RequirePermission gates a route on the admin's role being allowed to
// perform action on resource. Runs after AdminAuth.
func RequirePermission(enforcer *casbin.Enforcer, resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("adminRole")
		if role == "" {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin role not found"})
			c.Abort()
			return
		}

		allowed, err := enforcer.Enforce(role, resource, action)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Permission check failed"})
			c.Abort()
			return
		}
		if !allowed {
			c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			c.Abort()
			return
		}
		c.Next()
	}
}
