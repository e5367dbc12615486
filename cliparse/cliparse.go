package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const defaultPort = 3318

// Policy names, mirrored from auth to keep this package dependency free.
const (
	AuthPolicyCollaborator = "collaborator"
	AuthPolicyOwner        = "owner"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	TokenSalt    string
	AuthPolicy   string
	EnvFile      string
	CORSOrigins  []string
}

// ParseFlags reads the server configuration. Flags win over the
// environment, which wins over the env file.
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fset := flag.NewFlagSet("smartgarden", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fset.IntVar(&cfg.Port, "p", 0, "Server port")
	fset.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fset.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fset.StringVar(&cfg.AuthPolicy, "auth-policy", "", "Circuit access policy (collaborator or owner)")
	fset.StringVar(&cfg.EnvFile, "env-file", ".env", "Dotenv file loaded before reading the environment")
	var corsOrigins string
	fset.StringVar(&corsOrigins, "cors-origins", "", "Comma separated browser origins allowed to call the API (\"*\" for any, without credentials)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fset.StringVar(&cfg.TokenSalt, "token-salt", "", "Bearer token salt (prefer env)")

	if err := fset.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.EnvFile != "" {
		if err := godotenv.Load(cfg.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", cfg.EnvFile, err)
		}
	}

	if cfg.Port == 0 {
		cfg.Port = defaultPort
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil || port <= 0 {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		}
	}

	fromEnv(&cfg.DatabaseURL, "DATABASE_URL", "")
	fromEnv(&cfg.DatabaseType, "DATABASE_TYPE", "sqlite")
	fromEnv(&cfg.AuthPolicy, "AUTH_POLICY", AuthPolicyCollaborator)
	fromEnv(&cfg.TokenSalt, "TOKEN_SALT", "")
	fromEnv(&corsOrigins, "CORS_ORIGINS", "")
	cfg.CORSOrigins = splitList(corsOrigins)

	switch {
	case cfg.DatabaseURL == "":
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	case cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres":
		return Config{}, fmt.Errorf("unsupported database type %q (use sqlite or postgres)", cfg.DatabaseType)
	case cfg.AuthPolicy != AuthPolicyCollaborator && cfg.AuthPolicy != AuthPolicyOwner:
		return Config{}, fmt.Errorf("unknown AUTH_POLICY %q (use collaborator or owner)", cfg.AuthPolicy)
	case cfg.TokenSalt == "":
		return Config{}, errors.New("TOKEN_SALT required")
	}

	return cfg, nil
}

// fromEnv fills an unset flag value from the environment, then def.
func fromEnv(v *string, key, def string) {
	if *v == "" {
		*v = os.Getenv(key)
	}
	if *v == "" {
		*v = def
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
