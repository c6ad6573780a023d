package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/aleister1102/postforge/internal/errorwrapper"
)

// Environment variable names for workflow credentials
const (
	EnvAPIToken   = "COZE_API_TOKEN"
	EnvWorkflowID = "COZE_WORKFLOW_ID"
)

// EnvCredentials holds secrets read from the process environment.
// They never pass through the config file so they cannot end up committed.
type EnvCredentials struct {
	APIToken   string
	WorkflowID string
}

// LoadEnvCredentials reads workflow credentials from the environment,
// first merging a local .env file if one exists. A missing .env file is
// fine; missing required variables are a fatal configuration error and
// must be reported before any network call.
func LoadEnvCredentials(envFile string, logger zerolog.Logger) (*EnvCredentials, error) {
	if envFile == "" {
		envFile = ".env"
	}

	if err := godotenv.Load(envFile); err != nil {
		if os.IsNotExist(err) {
			logger.Debug().Str("file", envFile).Msg("No env file found, using process environment only")
		} else {
			logger.Warn().Err(err).Str("file", envFile).Msg("Failed to load env file, using process environment only")
		}
	} else {
		logger.Debug().Str("file", envFile).Msg("Loaded environment from file")
	}

	creds := &EnvCredentials{
		APIToken:   os.Getenv(EnvAPIToken),
		WorkflowID: os.Getenv(EnvWorkflowID),
	}

	if creds.WorkflowID == "" {
		return nil, errorwrapper.NewValidationError(EnvWorkflowID, "", "workflow ID is required but not set in the environment")
	}
	if creds.APIToken == "" {
		return nil, errorwrapper.NewValidationError(EnvAPIToken, "", "API token is required but not set in the environment")
	}

	return creds, nil
}
