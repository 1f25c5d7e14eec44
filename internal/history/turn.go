package history

import "time"

// Roles a turn can carry. The upstream completion API understands the same
// two values, so they are stored verbatim.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one persisted message in a conversation. Turns are append-only:
// once written they are never updated, only bulk-deleted by Clear.
type Turn struct {
	ID             int64
	ConversationID string
	Role           string
	Content        string
	CreatedAt      time.Time
}

// ValidRole reports whether role is one of the storable roles.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAssistant
}
