package permissions

import (
	"testing"

	"yamdb-backend/internal/models"
)

var (
	anon      = Anonymous
	regular   = Identity{UserID: 1, Role: models.UserRoleUser}
	other     = Identity{UserID: 2, Role: models.UserRoleUser}
	moderator = Identity{UserID: 3, Role: models.UserRoleModerator}
	admin     = Identity{UserID: 4, Role: models.UserRoleAdmin}
	superuser = Identity{UserID: 5, Role: models.UserRoleUser, Superuser: true}
)

func TestEvaluateContent(t *testing.T) {
	ownReview := Target{Kind: KindReview, AuthorID: 1}
	ownComment := Target{Kind: KindComment, AuthorID: 1}

	tests := []struct {
		name   string
		id     Identity
		action Action
		target Target
		want   Decision
	}{
		{"anonymous reads category", anon, ActionRead, Target{Kind: KindCategory}, Allow},
		{"anonymous reads genre", anon, ActionRead, Target{Kind: KindGenre}, Allow},
		{"anonymous reads title", anon, ActionRead, Target{Kind: KindTitle}, Allow},
		{"anonymous reads review", anon, ActionRead, ownReview, Allow},
		{"anonymous reads comment", anon, ActionRead, ownComment, Allow},
		{"anonymous cannot create category", anon, ActionCreate, Target{Kind: KindCategory}, Deny},
		{"anonymous cannot create review", anon, ActionCreate, Target{Kind: KindReview}, Deny},
		{"anonymous cannot delete comment", anon, ActionDelete, ownComment, Deny},

		{"user cannot create category", regular, ActionCreate, Target{Kind: KindCategory}, Deny},
		{"user cannot delete genre", regular, ActionDelete, Target{Kind: KindGenre}, Deny},
		{"user cannot update title", regular, ActionUpdate, Target{Kind: KindTitle}, Deny},
		{"user creates review", regular, ActionCreate, Target{Kind: KindReview}, Allow},
		{"user creates comment", regular, ActionCreate, Target{Kind: KindComment}, Allow},
		{"user updates own review", regular, ActionUpdate, ownReview, Allow},
		{"user deletes own comment", regular, ActionDelete, ownComment, Allow},
		{"user cannot update another's review", other, ActionUpdate, ownReview, Deny},
		{"user cannot delete another's comment", other, ActionDelete, ownComment, Deny},

		{"moderator updates any review", moderator, ActionUpdate, ownReview, Allow},
		{"moderator deletes any comment", moderator, ActionDelete, ownComment, Allow},
		{"moderator cannot create category", moderator, ActionCreate, Target{Kind: KindCategory}, Deny},
		{"moderator cannot delete title", moderator, ActionDelete, Target{Kind: KindTitle}, Deny},

		{"admin creates category", admin, ActionCreate, Target{Kind: KindCategory}, Allow},
		{"admin deletes genre", admin, ActionDelete, Target{Kind: KindGenre}, Allow},
		{"admin updates title", admin, ActionUpdate, Target{Kind: KindTitle}, Allow},
		{"admin deletes any review", admin, ActionDelete, ownReview, Allow},
		{"superuser creates title", superuser, ActionCreate, Target{Kind: KindTitle}, Allow},
		{"superuser deletes any comment", superuser, ActionDelete, ownComment, Allow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Evaluate(tt.id, tt.action, tt.target); got != tt.want {
				t.Errorf("Evaluate(%+v, %s, %+v) = %v, want %v",
					tt.id, tt.action, tt.target, got, tt.want)
			}
		})
	}
}

func TestEvaluateUsers(t *testing.T) {
	self := Target{Kind: KindUser, Self: true, AuthorID: 1}
	otherUser := Target{Kind: KindUser, AuthorID: 2}

	tests := []struct {
		name   string
		id     Identity
		action Action
		target Target
		want   Decision
	}{
		{"anonymous cannot read users", anon, ActionRead, otherUser, Deny},
		{"anonymous cannot read self", anon, ActionRead, self, Deny},

		{"user reads self", regular, ActionRead, self, Allow},
		{"user updates self", regular, ActionUpdate, self, Allow},
		{"user cannot delete self", regular, ActionDelete, self, Deny},
		{"admin cannot delete self", Identity{UserID: 4, Role: models.UserRoleAdmin}, ActionDelete, Target{Kind: KindUser, Self: true, AuthorID: 4}, Deny},
		{"user cannot read others", regular, ActionRead, otherUser, Deny},
		{"user cannot update others", regular, ActionUpdate, otherUser, Deny},
		{"moderator cannot read others", moderator, ActionRead, otherUser, Deny},

		{"admin reads users", admin, ActionRead, otherUser, Allow},
		{"admin creates users", admin, ActionCreate, Target{Kind: KindUser}, Allow},
		{"admin deletes users", admin, ActionDelete, otherUser, Allow},
		{"superuser updates users", superuser, ActionUpdate, otherUser, Allow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Evaluate(tt.id, tt.action, tt.target); got != tt.want {
				t.Errorf("Evaluate(%+v, %s, %+v) = %v, want %v",
					tt.id, tt.action, tt.target, got, tt.want)
			}
		})
	}
}
