// Package authz holds the access policy for notes and tags. It is a pure
// function over (actor, action, resource): services call it before every
// mutating or single-resource read operation. Listing endpoints do not go
// through it; their queries are owner-scoped at the repository instead.
package authz

// Action is something an actor wants to do to a resource.
type Action string

const (
	ActionView    Action = "view"
	ActionViewAny Action = "viewAny"
	ActionCreate  Action = "create"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
)

// Kind tags the resource variant.
type Kind string

const (
	KindNote Kind = "note"
	KindTag  Kind = "tag"
)

// Resource identifies the target of an action. OwnerID is only meaningful for
// notes; tags are a shared vocabulary with no owner.
type Resource struct {
	Kind    Kind
	OwnerID string
}

// Note builds a note resource owned by ownerID.
func Note(ownerID string) Resource {
	return Resource{Kind: KindNote, OwnerID: ownerID}
}

// Tag builds the (unowned) tag resource.
func Tag() Resource {
	return Resource{Kind: KindTag}
}

// CanAccess decides whether actor may perform action on res.
// An empty actor is unauthenticated and is denied everything.
func CanAccess(actor string, action Action, res Resource) bool {
	if actor == "" {
		return false
	}
	switch res.Kind {
	case KindNote:
		switch action {
		case ActionCreate, ActionViewAny:
			return true
		case ActionView, ActionUpdate, ActionDelete:
			return res.OwnerID == actor
		}
		return false
	case KindTag:
		switch action {
		case ActionView, ActionViewAny, ActionCreate, ActionUpdate, ActionDelete:
			return true
		}
		return false
	}
	return false
}
