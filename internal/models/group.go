package models

import "fmt"

// MemberRole is a member's permission level inside a group.
type MemberRole string

const (
	RoleAdmin  MemberRole = "admin"
	RoleMember MemberRole = "member"
)

// ParseMemberRole converts a wire value into a MemberRole. Empty means RoleMember.
func ParseMemberRole(s string) (MemberRole, error) {
	switch r := MemberRole(s); r {
	case "":
		return RoleMember, nil
	case RoleAdmin, RoleMember:
		return r, nil
	default:
		return "", fmt.Errorf("unknown member role %q", s)
	}
}

// DefaultGroupColor is used when a group is created without a color.
const DefaultGroupColor = "#2196F3"

// Group represents people who plan events and share bills together.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates", "Work Lunch").
	Name string

	Description string

	// CreatedBy is the user ID of the creator, who is always an admin.
	CreatedBy string

	// Color is a hex color used by clients to tag the group.
	Color string

	Members []GroupMember

	// CreatedAt and UpdatedAt are Unix timestamps.
	CreatedAt int64
	UpdatedAt int64
}

// GroupMember is one person in a group.
type GroupMember struct {
	UserID   string
	Name     string
	Email    string
	Role     MemberRole
	JoinedAt int64
}

// Member returns the member with the given user ID, if present.
func (g *Group) Member(userID string) (GroupMember, bool) {
	for _, m := range g.Members {
		if m.UserID == userID {
			return m, true
		}
	}
	return GroupMember{}, false
}

// IsAdmin reports whether userID is an admin of the group.
func (g *Group) IsAdmin(userID string) bool {
	m, ok := g.Member(userID)
	return ok && m.Role == RoleAdmin
}

// MemberIDs returns the user IDs of all members in order.
func (g *Group) MemberIDs() []string {
	ids := make([]string, len(g.Members))
	for i, m := range g.Members {
		ids[i] = m.UserID
	}
	return ids
}
