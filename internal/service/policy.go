// Package service holds the use cases of the blog: feed resolution, personalization
// and the mutation authority that decides who may change what.
package service

import "blogfeed/internal/models"

// Action names a guarded mutation.
type Action string

const (
	ActionEditPost      Action = "post.edit"
	ActionDeletePost    Action = "post.delete"
	ActionEditComment   Action = "comment.edit"
	ActionDeleteComment Action = "comment.delete"
	ActionEditProfile   Action = "profile.edit"
)

// Decision is the outcome of a policy check.
type Decision int

const (
	// Allow lets the mutation proceed.
	Allow Decision = iota
	// RedirectToResource silently sends the actor back to the resource view.
	RedirectToResource
)

func (d Decision) String() string {
	if d == Allow {
		return "allow"
	}
	return "redirect"
}

type rule func(actorID, ownerID uint) Decision

func ownerOnly(actorID, ownerID uint) Decision {
	if actorID != 0 && actorID == ownerID {
		return Allow
	}
	return RedirectToResource
}

var policy = map[Action]rule{
	ActionEditPost:      ownerOnly,
	ActionDeletePost:    ownerOnly,
	ActionEditComment:   ownerOnly,
	ActionDeleteComment: ownerOnly,
	ActionEditProfile:   ownerOnly,
}

// Decide evaluates action for actorID against the resource owned by ownerID.
// Unknown actions are never allowed.
func Decide(action Action, actorID, ownerID uint) Decision {
	r, ok := policy[action]
	if !ok {
		return RedirectToResource
	}
	return r(actorID, ownerID)
}

// authorize turns a non-Allow decision into PERMISSION_DENIED.
func authorize(action Action, actorID, ownerID uint) error {
	if Decide(action, actorID, ownerID) != Allow {
		return models.NewPermissionDeniedError("You are not allowed to " + string(action))
	}
	return nil
}
