package enum

// ChatMemberStatus is the membership status reported by the chat platform.
type ChatMemberStatus string

const (
	ChatMemberStatusCreator       ChatMemberStatus = "creator"
	ChatMemberStatusAdministrator ChatMemberStatus = "administrator"
	ChatMemberStatusMember        ChatMemberStatus = "member"
	ChatMemberStatusRestricted    ChatMemberStatus = "restricted"
	ChatMemberStatusLeft          ChatMemberStatus = "left"
	ChatMemberStatusKicked        ChatMemberStatus = "kicked"
)

// IsPresent reports whether the status means the account is in the chat.
func (s ChatMemberStatus) IsPresent() bool {
	switch s {
	case ChatMemberStatusCreator, ChatMemberStatusAdministrator,
		ChatMemberStatusMember, ChatMemberStatusRestricted:
		return true
	case ChatMemberStatusLeft, ChatMemberStatusKicked:
		return false
	default:
		return false
	}
}

// IsGone reports whether the status means the account is no longer in the chat.
func (s ChatMemberStatus) IsGone() bool {
	return s == ChatMemberStatusLeft || s == ChatMemberStatusKicked
}
