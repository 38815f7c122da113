package constants

import "time"

// RFC 3339 date-time format string.
// Use this format for all date-time serialization and communication with external systems.
const RFC3339DateTimeFormat = "2006-01-02T15:04:05Z07:00"

// Default rate limiting configuration
const (
	// DefaultRateLimitRequests is the default number of requests allowed per time window
	DefaultRateLimitRequests = 100
	// DefaultRateLimitWindowMinutes is the default time window for rate limiting
	DefaultRateLimitWindowMinutes = 1
	// SubmissionRequestsPerMinute caps email submissions per client.
	SubmissionRequestsPerMinute = 30
	// HealthRequestsPerMinute is stricter than the default; /health pings every backend.
	HealthRequestsPerMinute = 10
)

// Defaults for the waitlist store and notifications.
const (
	DefaultCSVPath          = "/tmp/heijo-waitlist.csv"
	DefaultSQLitePath       = "waitlist.db"
	DefaultNotifyTimeout    = 10 * time.Second
	DefaultEmailJSEndpoint  = "https://api.emailjs.com/api/v1.0/email/send"
	DefaultSESRegion        = "us-east-1"
	DefaultMigrationsDir    = "migrations"
	DefaultMigrationsTable  = "schema_migrations"
	DefaultShutdownDeadline = 30 * time.Second
)

// DefaultRateLimitWindow returns the default rate limit window duration
func DefaultRateLimitWindow() time.Duration {
	return time.Duration(DefaultRateLimitWindowMinutes) * time.Minute
}
