package config

import "log"

func MustNonEmpty(value, envName string) {
	if value == "" {
		log.Fatalf("missing required env %s", envName)
	}
}

func MustNonEmptyBytes(value []byte, envName string) {
	if len(value) == 0 {
		log.Fatalf("missing required env %s", envName)
	}
}

// MustValid stops the process when the loaded configuration cannot run a
// cashier shift or verify gateway callbacks.
func MustValid(cfg Config) {
	MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	MustNonEmptyBytes(cfg.JWTAccessSecret, "JWT_SECRET")
	MustNonEmpty(cfg.Gateway.ServerKey, "GATEWAY_SERVER_KEY")
	if cfg.Shift.MaxHours <= 0 {
		log.Fatalf("SHIFT_MAX_HOURS must be positive, got %d", cfg.Shift.MaxHours)
	}
	if _, err := cfg.Location(); err != nil {
		log.Fatalf("invalid SHIFT_TIMEZONE %q: %v", cfg.Shift.Timezone, err)
	}
}
