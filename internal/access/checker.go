// Package access answers (action, entity type) authorization questions
// from a static role matrix.
package access

import "strings"

// Action is an operation on an entity.
type Action string

const (
	ActionShow   Action = "show"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
	ActionAdd    Action = "add"
	ActionList   Action = "list"
)

// Role is a user role.
type Role string

const (
	RoleUser       Role = "ROLE_USER"
	RoleAdmin      Role = "ROLE_ADMIN"
	RoleSuperAdmin Role = "ROLE_SUPER_ADMIN"
)

// ParseRole returns the role named s, RoleUser when unknown.
func ParseRole(s string) Role {
	switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
	case RoleAdmin, RoleSuperAdmin:
		return r
	}
	return RoleUser
}

// Checker decides whether an action is granted on an entity type.
type Checker interface {
	IsGranted(action Action, entity string) bool
}

var (
	readOnly = []Action{ActionList, ActionShow}
	all      = []Action{ActionList, ActionShow, ActionAdd, ActionEdit, ActionDelete}
)

// defaultMatrix grants per role and entity type. The "*" entry applies to
// types without their own entry.
var defaultMatrix = map[Role]map[string][]Action{
	RoleUser: {
		"*":           readOnly,
		"calculation": {ActionList, ActionShow, ActionAdd, ActionEdit},
		"customer":    {ActionList, ActionShow, ActionAdd, ActionEdit},
		"user":        nil,
		"log":         nil,
	},
	RoleAdmin: {
		"*":    all,
		"user": readOnly,
	},
	RoleSuperAdmin: {
		"*": all,
	},
}

// RoleChecker grants actions from the role matrix.
type RoleChecker struct {
	role    Role
	granted map[string][]Action
}

// NewRoleChecker returns the checker of role.
func NewRoleChecker(role Role) *RoleChecker {
	return &RoleChecker{role: role, granted: defaultMatrix[role]}
}

// Role returns the checked role.
func (c *RoleChecker) Role() Role { return c.role }

// IsGranted reports whether action is granted on entity.
func (c *RoleChecker) IsGranted(action Action, entity string) bool {
	actions, ok := c.granted[strings.ToLower(entity)]
	if !ok {
		actions = c.granted["*"]
	}
	for _, a := range actions {
		if a == action {
			return true
		}
	}
	return false
}
