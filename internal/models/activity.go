package models

// ActivityAction names a change recorded in a group's activity log.
type ActivityAction string

const (
	ActivityGroupCreated  ActivityAction = "group_created"
	ActivityGroupUpdated  ActivityAction = "group_updated"
	ActivityMemberAdded   ActivityAction = "member_added"
	ActivityMemberRemoved ActivityAction = "member_removed"
	ActivityRoleChanged   ActivityAction = "role_changed"
	ActivityEventCreated  ActivityAction = "event_created"
	ActivityEventUpdated  ActivityAction = "event_updated"
	ActivityEventDeleted  ActivityAction = "event_deleted"
)

// GroupActivity is one entry of a group's activity log.
type GroupActivity struct {
	ID      string
	GroupID string

	// ActorID is the user who made the change.
	ActorID   string
	ActorName string

	Action ActivityAction

	// Details is a short human-readable description, e.g. the added member's name.
	Details string

	CreatedAt int64
}
