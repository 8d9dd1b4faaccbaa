package notification

type Type string

const (
	TypeDailyReminder Type = "daily_reminder"
	TypeStreakRisk    Type = "streak_risk"
)

// Push is one message addressed to every device of a user.
type Push struct {
	UserID string
	Type   Type
	Tokens []string
	Title  string
	Body   string
	Data   map[string]string
}

// Result tells the caller which tokens FCM no longer accepts so they can be
// dropped from the profile.
type Result struct {
	Sent          int
	Failed        int
	InvalidTokens []string
}
