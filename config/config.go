package config

import (
	"os"
	"strconv"
	"strings"

	"coderoom/core"

	"github.com/sirupsen/logrus"
)

type (
	// AdminAccount is an administrator declared in configuration.
	AdminAccount struct {
		Name       string
		Password   string
		SuperAdmin bool
	}

	// Config holds the environment configuration for the service.
	Config struct {
		// MaxUsersPerRoom is the per-room capacity, clamped to 1-5 by the
		// room manager.
		MaxUsersPerRoom int

		// Languages is the allow-list of editing languages.
		Languages []string

		// AdminUsers are the accounts allowed to log into the admin surface.
		AdminUsers []AdminAccount

		// JWTSecret signs admin session cookies.
		JWTSecret string
	}
)

// Load reads configuration from environment variables, falling back to
// defaults. ADMIN_USERS is a comma-separated list of name:password or
// name:password:super entries; passwords may contain ':'.
func Load() *Config {
	cfg := &Config{
		MaxUsersPerRoom: getEnvInt("MAX_USERS_PER_ROOM", 5),
		Languages:       splitList(getEnv("ROOM_LANGUAGES", "csharp,sql")),
		AdminUsers:      parseAdminUsers(os.Getenv("ADMIN_USERS")),
		JWTSecret:       os.Getenv("JWT_SECRET"),
	}

	if len(cfg.AdminUsers) == 0 {
		logrus.Warn("ADMIN_USERS is not set; the admin surface will reject all logins")
	}
	if cfg.JWTSecret == "" {
		logrus.Warn("JWT_SECRET is not set; admin sessions will not work")
	}
	return cfg
}

// Authenticate checks a name/password pair against the configured admin
// accounts. Names compare case-insensitively, passwords exactly.
func (c *Config) Authenticate(name, password string) (core.AdminUser, bool) {
	name = strings.TrimSpace(name)
	for _, account := range c.AdminUsers {
		if strings.EqualFold(account.Name, name) && account.Password == password {
			return core.NewAdminUser(account.Name, account.SuperAdmin), true
		}
	}
	return core.AdminUser{}, false
}

func parseAdminUsers(raw string) []AdminAccount {
	var accounts []AdminAccount
	for _, entry := range splitList(raw) {
		parts := strings.SplitN(entry, ":", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			logrus.WithField("entry", entry).Warn("Ignoring malformed ADMIN_USERS entry")
			continue
		}
		// The password may itself contain ':'; only a trailing ":super"
		// segment marks the superadmin flag.
		password := parts[1]
		super := false
		if trimmed, found := strings.CutSuffix(password, ":super"); found {
			password = trimmed
			super = true
		}
		if password == "" {
			logrus.WithField("entry", entry).Warn("Ignoring malformed ADMIN_USERS entry")
			continue
		}
		accounts = append(accounts, AdminAccount{
			Name:       strings.TrimSpace(parts[0]),
			Password:   password,
			SuperAdmin: super,
		})
	}
	return accounts
}

func splitList(raw string) []string {
	var items []string
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		logrus.WithFields(logrus.Fields{"key": key, "value": raw}).Warn("Ignoring non-numeric environment value")
		return defaultValue
	}
	return value
}
