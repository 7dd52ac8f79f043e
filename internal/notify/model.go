package notify

import "strings"

// Settings is a user's reminder preferences.
type Settings struct {
	Enabled bool `json:"enabled"`
	// RemindTime is an HH:MM local wall-clock hint shown in the UI; the
	// daily scan itself runs on the server cron.
	RemindTime string `json:"remindTime"`
	// DaysBefore is how many days before a due date reminders begin, 0..7.
	DaysBefore int `json:"daysBefore"`
}

// Subscription is a Web Push registration.
type Subscription struct {
	ID       string           `json:"id"`
	Endpoint string           `json:"endpoint"`
	Keys     SubscriptionKeys `json:"keys"`
}

type SubscriptionKeys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}

func defaultSettings() Settings {
	return Settings{
		Enabled:    true,
		RemindTime: "09:00",
		DaysBefore: 1,
	}
}

func normalizeSettings(s Settings) Settings {
	if strings.TrimSpace(s.RemindTime) == "" {
		s.RemindTime = "09:00"
	}
	if s.DaysBefore < 0 {
		s.DaysBefore = 0
	}
	if s.DaysBefore > 7 {
		s.DaysBefore = 7
	}
	return s
}
