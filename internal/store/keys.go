package store

// Shared keys.
const (
	KeyUsers       = "users"
	KeyCurrentUser = "currentUser"
	KeyMathSets    = "mathSets"

	// KeyMigration marks the one-time move of card progress out of set records.
	KeyMigration = "migration:per-user-progress"
)

// Per-user key prefixes.
const (
	ProgressPrefix = "progress:"
	MasteryPrefix  = "mastery:"
	SettingsPrefix = "settings:"
)

// ProgressKey is the key holding the card progress map of user.
func ProgressKey(user string) string { return ProgressPrefix + user }

// MasteryKey is the key holding the set mastery map of user.
func MasteryKey(user string) string { return MasteryPrefix + user }

// SettingsKey is the key holding the settings of user.
func SettingsKey(user string) string { return SettingsPrefix + user }

// HistoryPrefix namespaces the finished-session log of each user.
const HistoryPrefix = "history:"

// HistoryKey is the key holding the session history of user.
func HistoryKey(user string) string { return HistoryPrefix + user }
