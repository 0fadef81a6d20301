package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration values
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Ledger     LedgerConfig
	Security   SecurityConfig
	Draw       DrawConfig
	Governance GovernanceConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// URL returns the database connection URL
func (c DatabaseConfig) URL() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.DBName + "?sslmode=" + c.SSLMode
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL      string
	PASSWORD string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// LedgerConfig holds ledger bridge and mirror node endpoints
type LedgerConfig struct {
	BridgeURL      string
	MirrorURL      string
	OperatorID     string
	PoolAccountID  string
	TokenID        string
	AuditTopicID   string
	RequestTimeout time.Duration
}

// SecurityConfig holds security encryption keys
type SecurityConfig struct {
	WalletEncryptionKey string
}

// DrawConfig holds lottery draw tunables
type DrawConfig struct {
	EntryFee      int64
	PrizeFraction float64
	StarKeyCount  int
}

// GovernanceConfig holds governance tunables. Tier token IDs point at
// the NFT collections created by the setup-governance command.
type GovernanceConfig struct {
	VotingDuration        time.Duration
	MinApprovalPercentage int
	CelestialTokenID      string
	StellarTokenID        string
	CosmicTokenID         string
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("SERVER_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "astraldraw"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			PASSWORD: getEnv("REDIS_PASSWORD", ""),
		},
		JWT: JWTConfig{
			Secret:        getEnv("JWT_SECRET", "change-this-in-production"),
			AccessExpiry:  getEnvAsDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
			RefreshExpiry: getEnvAsDuration("JWT_REFRESH_EXPIRY", 7*24*time.Hour),
		},
		Ledger: LedgerConfig{
			BridgeURL:      getEnv("LEDGER_BRIDGE_URL", "http://localhost:9090"),
			MirrorURL:      getEnv("LEDGER_MIRROR_URL", "https://testnet.mirrornode.hedera.com"),
			OperatorID:     getEnv("LEDGER_OPERATOR_ID", ""),
			PoolAccountID:  getEnv("LEDGER_POOL_ACCOUNT_ID", ""),
			TokenID:        getEnv("LEDGER_TOKEN_ID", ""),
			AuditTopicID:   getEnv("LEDGER_AUDIT_TOPIC_ID", ""),
			RequestTimeout: getEnvAsDuration("LEDGER_REQUEST_TIMEOUT", 15*time.Second),
		},
		Security: SecurityConfig{
			WalletEncryptionKey: getEnv("WALLET_ENCRYPTION_KEY", "change-this-in-production"),
		},
		Draw: DrawConfig{
			EntryFee:      int64(getEnvAsInt("DRAW_ENTRY_FEE", 100)),
			PrizeFraction: 0.7,
			StarKeyCount:  6,
		},
		Governance: GovernanceConfig{
			VotingDuration:        getEnvAsDuration("GOVERNANCE_VOTING_DURATION", 7*24*time.Hour),
			MinApprovalPercentage: getEnvAsInt("GOVERNANCE_MIN_APPROVAL", 60),
			CelestialTokenID:      getEnv("GOVERNANCE_CELESTIAL_TOKEN_ID", ""),
			StellarTokenID:        getEnv("GOVERNANCE_STELLAR_TOKEN_ID", ""),
			CosmicTokenID:         getEnv("GOVERNANCE_COSMIC_TOKEN_ID", ""),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
