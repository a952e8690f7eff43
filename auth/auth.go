/*
Package auth resolves manager tokens into department-scoped roles.

PURPOSE:
  Manager access is link-based: one opaque bearer secret per department.
  The administration department's secret additionally grants authority
  over every department. This package turns (claimed department, token)
  into a Grant that the HTTP layer and handlers consult.

ROLES:
  department-manager:   may view and mutate records of one department
  administration-super: may manage all departments and is the only role
                        allowed to toggle the signed-request flag

SCOPING RULE:
  A department manager acting on a record outside their department gets
  "not found", never "forbidden" - existence must not leak across
  department boundaries.

SEE ALSO:
  - tokens.go: token generation and settings-backed persistence
*/
package auth

import (
	"strings"

	"github.com/eigida/vacations/vacation"
)

// Role names the two manager authority levels.
type Role string

const (
	RoleDepartmentManager Role = "department-manager"
	RoleAdminSuper        Role = "administration-super"
)

// TokenSet holds the live manager token for each department.
type TokenSet map[vacation.Department]string

// Grant describes an authenticated manager session.
type Grant struct {
	// Department is the department claimed in the request path; all
	// record scoping uses this value.
	Department vacation.Department

	// ManagerDepartment is the department whose token authenticated the
	// caller. Differs from Department when a super manager operates on
	// another department's view.
	ManagerDepartment vacation.Department

	Role Role

	CanManageAllDepartments bool
	CanEditSignedRequest    bool
}

// Authorize resolves a claimed department and supplied token into a Grant.
// The administration token wins over the department's own token, so the
// super role is recognized on every department path.
func Authorize(tokens TokenSet, claimed vacation.Department, suppliedToken string) (Grant, error) {
	token := strings.TrimSpace(suppliedToken)
	if token == "" {
		return Grant{}, vacation.ErrUnauthorized
	}

	adminToken := tokens[vacation.DepartmentAdministration]
	if adminToken != "" && token == adminToken {
		return Grant{
			Department:              claimed,
			ManagerDepartment:       vacation.DepartmentAdministration,
			Role:                    RoleAdminSuper,
			CanManageAllDepartments: true,
			CanEditSignedRequest:    true,
		}, nil
	}

	deptToken := tokens[claimed]
	if deptToken != "" && token == deptToken {
		return Grant{
			Department:        claimed,
			ManagerDepartment: claimed,
			Role:              RoleDepartmentManager,
		}, nil
	}

	return Grant{}, vacation.ErrUnauthorized
}
