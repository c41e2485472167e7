package run

import "time"

type config struct {
	ListenAddr         string        `env:"LISTEN_ADDR" envDefault:":5000"`
	SqlitePath         string        `env:"SQLITE_PATH" envDefault:"db.sqlite3"`
	SubscribersFile    string        `env:"SUBSCRIBERS_FILE" envDefault:"subscribers.txt"`
	SMTPServer         string        `env:"SMTP_SERVER" envDefault:"smtp.gmail.com"`
	SMTPPort           int           `env:"SMTP_PORT" envDefault:"587"`
	NotificationEmail  string        `env:"NOTIFICATION_EMAIL"`
	EmailPassword      string        `env:"EMAIL_PASSWORD"`
	NotificationTime   string        `env:"NOTIFICATION_TIME" envDefault:"09:00"`
	WebhookURL         string        `env:"WEBHOOK_URL"`
	NewsAPIKey         string        `env:"NEWS_API_KEY"`
	RedditClientID     string        `env:"REDDIT_CLIENT_ID"`
	RedditClientSecret string        `env:"REDDIT_CLIENT_SECRET"`
	GeminiAPIKey       string        `env:"GEMINI_API_KEY"`
	AppURL             string        `env:"APP_URL" envDefault:"http://localhost:5000"`
	MaxItems           int           `env:"MAX_ITEMS" envDefault:"50"`
	CacheTTL           time.Duration `env:"CACHE_TTL" envDefault:"1h"`
}

// secretEnvs are logged without their value on startup.
var secretEnvs = map[string]bool{
	"EMAIL_PASSWORD":       true,
	"NEWS_API_KEY":         true,
	"REDDIT_CLIENT_SECRET": true,
	"GEMINI_API_KEY":       true,
}
