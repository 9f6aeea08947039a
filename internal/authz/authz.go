// Package authz holds the role-based access rules for every resource
// family as a single policy table. Handlers derive an Action from the HTTP
// method, compute the requester's Relation to the target object, and ask
// Can for a decision.
package authz

import (
	"net/http"

	"github.com/coderr-app/backend/pkg/models"
)

type Role int

const (
	RoleUnknown Role = iota
	RoleCustomer
	RoleBusiness
	RoleStaff
)

func RoleFromType(t string) Role {
	switch t {
	case models.TypeCustomer:
		return RoleCustomer
	case models.TypeBusiness:
		return RoleBusiness
	case models.TypeStaff:
		return RoleStaff
	}
	return RoleUnknown
}

func (r Role) String() string {
	switch r {
	case RoleCustomer:
		return models.TypeCustomer
	case RoleBusiness:
		return models.TypeBusiness
	case RoleStaff:
		return models.TypeStaff
	}
	return "unknown"
}

type Action int

const (
	ActionRead Action = iota
	ActionCreate
	ActionUpdate
	ActionDelete
)

// ActionForMethod maps an HTTP method onto an action. GET, HEAD and
// OPTIONS are reads; PUT is treated like PATCH.
func ActionForMethod(method string) Action {
	switch method {
	case http.MethodPost:
		return ActionCreate
	case http.MethodPatch, http.MethodPut:
		return ActionUpdate
	case http.MethodDelete:
		return ActionDelete
	}
	return ActionRead
}

// Relation describes how the requester relates to the target object:
// RelSubject when the requester is the object's controlling user (profile
// owner, offer owner, order business party, review author), RelNone
// otherwise. Collection-level checks use RelNone.
type Relation int

const (
	RelNone Relation = iota
	RelSubject
)

type Resource int

const (
	ResourceProfile Resource = iota
	ResourceOffer
	ResourceOrder
	ResourceReview
)

// Identity is the authenticated requester as carried in the token claims.
type Identity struct {
	UserID int64
	Role   Role
	Staff  bool
}

// anyRole marks a grant that applies to every authenticated role.
const anyRole Role = -1

// grant allows an action when the requester has the given role (or any,
// for anyRole) and stands in the given relation to the object. Grants with
// staff set match staff users regardless of role and relation.
type grant struct {
	role  Role
	rel   Relation
	staff bool
}

var staffGrant = grant{staff: true}

// policy is the full rule table: resource × action → grants. Absent
// entries deny. Staff is deliberately NOT granted order or review
// creation: orders are placed by customers and reviews written by
// reviewers, never by administrators.
var policy = map[Resource]map[Action][]grant{
	ResourceProfile: {
		ActionRead:   {{role: anyRole}},
		ActionUpdate: {{role: anyRole, rel: RelSubject}, staffGrant},
	},
	ResourceOffer: {
		ActionRead:   {{role: anyRole}},
		ActionCreate: {{role: RoleBusiness}, staffGrant},
		ActionUpdate: {{role: RoleBusiness, rel: RelSubject}, staffGrant},
		ActionDelete: {{role: RoleBusiness, rel: RelSubject}, staffGrant},
	},
	ResourceOrder: {
		ActionRead:   {{role: anyRole}},
		ActionCreate: {{role: RoleCustomer}},
		ActionUpdate: {{role: RoleBusiness, rel: RelSubject}, staffGrant},
		ActionDelete: {staffGrant},
	},
	ResourceReview: {
		ActionRead:   {{role: anyRole}},
		ActionCreate: {{role: RoleCustomer}},
		ActionUpdate: {{role: RoleCustomer, rel: RelSubject}, staffGrant},
		ActionDelete: {{role: RoleCustomer, rel: RelSubject}, staffGrant},
	},
}

// Can decides whether the identity may perform action on resource given
// its relation to the target object.
func Can(id Identity, res Resource, act Action, rel Relation) bool {
	grants, ok := policy[res][act]
	if !ok {
		return false
	}

	for _, g := range grants {
		if g.staff {
			if id.Staff {
				return true
			}
			continue
		}
		if g.role != anyRole && g.role != id.Role {
			continue
		}
		if g.rel == RelSubject && rel != RelSubject {
			continue
		}
		return true
	}

	return false
}
