package config

import "time"

// CurrentVersion is the config file schema version
const CurrentVersion = 1

// Config represents the entire user configuration file.
type Config struct {
	Version     int          `yaml:"version"`
	Session     *Session     `yaml:"session,omitempty"`
	Preferences *Preferences `yaml:"preferences,omitempty"`
}

// Session is the token saved by 'heatzy login --save'.
// The password is never stored.
type Session struct {
	Username string    `yaml:"username,omitempty"`
	Token    string    `yaml:"token"`
	UID      string    `yaml:"uid,omitempty"`
	ExpireAt int64     `yaml:"expire_at,omitempty"` // Unix seconds, as returned by login
	SavedAt  time.Time `yaml:"saved_at,omitempty"`
}

// Preferences represents CLI defaults.
type Preferences struct {
	LogLevel string `yaml:"log_level,omitempty"` // trace, debug, info, warn, error
	Output   string `yaml:"output,omitempty"`    // table or json
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Version: CurrentVersion,
		Preferences: &Preferences{
			Output: OutputTable,
		},
	}
}

// Expired reports whether the session's expire_at is in the past.
// A session without expiry information never expires.
func (s *Session) Expired(now time.Time) bool {
	if s == nil || s.ExpireAt == 0 {
		return false
	}
	return !now.Before(time.Unix(s.ExpireAt, 0))
}

// SetSession stores a login result.
func (c *Config) SetSession(username, token, uid string, expireAt int64) {
	c.Session = &Session{
		Username: username,
		Token:    token,
		UID:      uid,
		ExpireAt: expireAt,
		SavedAt:  time.Now().UTC().Truncate(time.Second),
	}
}

// ClearSession forgets the saved token.
func (c *Config) ClearSession() {
	c.Session = nil
}

// Token returns the saved token, or "" when there is none.
func (c *Config) Token() string {
	if c.Session == nil {
		return ""
	}
	return c.Session.Token
}
