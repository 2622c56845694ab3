package enum

// MemberStatus represents the stored membership state of a group member.
type MemberStatus string

const (
	// MemberStatusActive indicates a member currently in the group.
	MemberStatusActive MemberStatus = "active"
	// MemberStatusLeft indicates a member who left on their own.
	MemberStatusLeft MemberStatus = "left"
	// MemberStatusKicked indicates a member removed by someone else.
	MemberStatusKicked MemberStatus = "kicked"
)

// String returns the stored representation.
func (s MemberStatus) String() string {
	return string(s)
}
