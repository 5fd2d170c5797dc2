package models

import "database/sql"

// GroupMember is a participant in a group. A member may be linked to a
// registered user account, or just be a display name for someone who
// hasn't signed up.
type GroupMember struct {
	ID         int            `json:"id,omitempty" db:"id,omitempty"`
	GroupID    int            `json:"group_id,omitempty" db:"group_id,omitempty"`
	MemberName string         `json:"member_name,omitempty" db:"member_name,omitempty"`
	UserID     sql.NullInt64  `json:"user_id,omitempty" db:"user_id,omitempty"`
	CreatedAt  sql.NullString `json:"created_at,omitempty" db:"created_at,omitempty"`
}
