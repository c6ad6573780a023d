package config

// Default values for configuration sections
const (
	// Workflow Defaults
	DefaultWorkflowBaseURL     = "https://api.coze.cn"
	DefaultWorkflowTimeoutSecs = 120

	// Retry Defaults
	DefaultRetryMaxAttempts     = 3
	DefaultRetryInitialDelaySec = 2
	DefaultRetryMaxDelaySecs    = 60
	DefaultRetryExponentialBase = 2.0

	// Post Defaults
	DefaultPostContentDir      = "content/posts/TrialRun"
	DefaultPostTimezone        = "Asia/Shanghai"
	DefaultPostFilenameLength  = 12
	DefaultPostFilenameCharset = "alphanumeric"

	// History Defaults
	DefaultHistorySQLiteDBPath = "database/history/publish_history.db"

	// Log Defaults
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "console"
	DefaultLogFile       = ""
	DefaultMaxLogSizeMB  = 100
	DefaultMaxLogBackups = 3
)

type GlobalConfig struct {
	WorkflowConfig WorkflowConfig `json:"workflow_config,omitempty" yaml:"workflow_config,omitempty"`
	RetryConfig    RetryConfig    `json:"retry_config,omitempty" yaml:"retry_config,omitempty"`
	PostConfig     PostConfig     `json:"post_config,omitempty" yaml:"post_config,omitempty"`
	HistoryConfig  HistoryConfig  `json:"history_config,omitempty" yaml:"history_config,omitempty"`
	LogConfig      LogConfig      `json:"log_config,omitempty" yaml:"log_config,omitempty"`
}

func NewDefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		WorkflowConfig: NewDefaultWorkflowConfig(),
		RetryConfig:    NewDefaultRetryConfig(),
		PostConfig:     NewDefaultPostConfig(),
		HistoryConfig:  NewDefaultHistoryConfig(),
		LogConfig:      NewDefaultLogConfig(),
	}
}

// WorkflowConfig configures the remote workflow-run API call.
// The API token and workflow ID are deliberately absent here: they are
// secrets and come from the process environment (see env.go).
type WorkflowConfig struct {
	BaseURL     string         `json:"base_url,omitempty" yaml:"base_url,omitempty" validate:"omitempty,url"`
	TimeoutSecs int            `json:"timeout_secs,omitempty" yaml:"timeout_secs,omitempty" validate:"omitempty,min=1"`
	Parameters  map[string]any `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

func NewDefaultWorkflowConfig() WorkflowConfig {
	return WorkflowConfig{
		BaseURL:     DefaultWorkflowBaseURL,
		TimeoutSecs: DefaultWorkflowTimeoutSecs,
		Parameters:  map[string]any{},
	}
}

// RetryConfig defines configuration for retrying the workflow-run call
type RetryConfig struct {
	// Maximum number of attempts, including the first one
	MaxAttempts int `json:"max_attempts,omitempty" yaml:"max_attempts,omitempty" validate:"omitempty,min=1,max=10"`
	// Delay in seconds before the second attempt
	InitialDelaySecs int `json:"initial_delay_secs,omitempty" yaml:"initial_delay_secs,omitempty" validate:"omitempty,min=1,max=300"`
	// Cap in seconds on the computed delay
	MaxDelaySecs int `json:"max_delay_secs,omitempty" yaml:"max_delay_secs,omitempty" validate:"omitempty,min=1,max=3600"`
	// Multiplier applied per failed attempt
	ExponentialBase float64 `json:"exponential_base,omitempty" yaml:"exponential_base,omitempty" validate:"omitempty,gt=1"`
	// Enable jitter to randomize delays slightly
	EnableJitter bool `json:"enable_jitter" yaml:"enable_jitter"`
}

func NewDefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:      DefaultRetryMaxAttempts,
		InitialDelaySecs: DefaultRetryInitialDelaySec,
		MaxDelaySecs:     DefaultRetryMaxDelaySecs,
		ExponentialBase:  DefaultRetryExponentialBase,
		EnableJitter:     true,
	}
}

// PostConfig configures where and how generated posts are written
type PostConfig struct {
	ContentDir      string   `json:"content_dir,omitempty" yaml:"content_dir,omitempty"`
	Categories      []string `json:"categories,omitempty" yaml:"categories,omitempty"`
	Timezone        string   `json:"timezone,omitempty" yaml:"timezone,omitempty"`
	FilenameLength  int      `json:"filename_length,omitempty" yaml:"filename_length,omitempty" validate:"omitempty,min=1"`
	FilenameCharset string   `json:"filename_charset,omitempty" yaml:"filename_charset,omitempty" validate:"omitempty,charset"`
	MarkAIGC        bool     `json:"mark_aigc" yaml:"mark_aigc"`
	BackupExisting  bool     `json:"backup_existing" yaml:"backup_existing"`
}

func NewDefaultPostConfig() PostConfig {
	return PostConfig{
		ContentDir:      DefaultPostContentDir,
		Categories:      []string{"TrialRun"},
		Timezone:        DefaultPostTimezone,
		FilenameLength:  DefaultPostFilenameLength,
		FilenameCharset: DefaultPostFilenameCharset,
		MarkAIGC:        true,
		BackupExisting:  false,
	}
}

// HistoryConfig configures the publish-history store
type HistoryConfig struct {
	Enabled      bool   `json:"enabled" yaml:"enabled"`
	SQLiteDBPath string `json:"sqlite_db_path,omitempty" yaml:"sqlite_db_path,omitempty"`
}

func NewDefaultHistoryConfig() HistoryConfig {
	return HistoryConfig{
		Enabled:      true,
		SQLiteDBPath: DefaultHistorySQLiteDBPath,
	}
}

type LogConfig struct {
	LogFile       string `json:"log_file,omitempty" yaml:"log_file,omitempty" validate:"omitempty,filepath"`
	LogFormat     string `json:"log_format,omitempty" yaml:"log_format,omitempty" validate:"omitempty,logformat"`
	LogLevel      string `json:"log_level,omitempty" yaml:"log_level,omitempty" validate:"omitempty,loglevel"`
	MaxLogBackups int    `json:"max_log_backups,omitempty" yaml:"max_log_backups,omitempty"`
	MaxLogSizeMB  int    `json:"max_log_size_mb,omitempty" yaml:"max_log_size_mb,omitempty"`
}

func NewDefaultLogConfig() LogConfig {
	return LogConfig{
		LogFile:       DefaultLogFile,
		LogFormat:     DefaultLogFormat,
		LogLevel:      DefaultLogLevel,
		MaxLogBackups: DefaultMaxLogBackups,
		MaxLogSizeMB:  DefaultMaxLogSizeMB,
	}
}
