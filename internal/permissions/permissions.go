// Package permissions decides whether a request identity may perform an
// action on a resource. Evaluation is a pure predicate: it never touches
// storage and signals refusal as a Deny decision, not an error.
package permissions

import (
	"yamdb-backend/internal/models"
)

type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

type Kind string

const (
	KindCategory Kind = "category"
	KindGenre    Kind = "genre"
	KindTitle    Kind = "title"
	KindReview   Kind = "review"
	KindComment  Kind = "comment"
	KindUser     Kind = "user"
)

type Decision int

const (
	Deny Decision = iota
	Allow
)

func (d Decision) Allowed() bool {
	return d == Allow
}

// Identity is the requesting principal. The zero value is not meaningful;
// use Anonymous for unauthenticated requests.
type Identity struct {
	Anonymous bool
	UserID    int64
	Role      models.UserRole
	Superuser bool
}

var Anonymous = Identity{Anonymous: true}

func (i Identity) privileged() bool {
	return !i.Anonymous && (i.Superuser || i.Role.IsAdmin())
}

// Target describes the resource an action applies to. AuthorID is the
// owning user for reviews, comments and user records; it is ignored for
// reference data. Self marks a user target resolved from the reserved
// self identifier rather than an explicit username.
type Target struct {
	Kind     Kind
	AuthorID int64
	Self     bool
}

// Evaluate applies the role rules:
//   - anyone, including anonymous, may read content resources;
//   - category/genre/title writes are admin-only;
//   - authenticated users may create reviews and comments and may
//     update/delete only their own; moderators and admins may
//     update/delete any review or comment;
//   - user records are admin-only except the Self target, which the
//     owner may read and update but never delete.
func Evaluate(id Identity, action Action, t Target) Decision {
	if t.Kind == KindUser {
		return evaluateUser(id, action, t)
	}

	if action == ActionRead {
		return Allow
	}
	if id.Anonymous {
		return Deny
	}
	if id.privileged() {
		return Allow
	}

	switch t.Kind {
	case KindCategory, KindGenre, KindTitle:
		return Deny
	case KindReview, KindComment:
		if action == ActionCreate {
			return Allow
		}
		if id.Role.CanModerateContent() || t.AuthorID == id.UserID {
			return Allow
		}
		return Deny
	}
	return Deny
}

func evaluateUser(id Identity, action Action, t Target) Decision {
	if id.Anonymous {
		return Deny
	}
	if t.Self {
		// Deleting one's own record is denied for every role; the
		// handler reports it as a disallowed method.
		if action == ActionDelete {
			return Deny
		}
		return Allow
	}
	if id.privileged() {
		return Allow
	}
	return Deny
}
