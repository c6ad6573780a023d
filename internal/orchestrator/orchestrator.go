package orchestrator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aleister1102/postforge/internal/config"
	"github.com/aleister1102/postforge/internal/datastore"
	"github.com/aleister1102/postforge/internal/errorwrapper"
	"github.com/aleister1102/postforge/internal/filename"
	"github.com/aleister1102/postforge/internal/filewriter"
	"github.com/aleister1102/postforge/internal/post"
	"github.com/aleister1102/postforge/internal/retry"
	"github.com/aleister1102/postforge/internal/workflow"
)

// Publisher runs the full publish pipeline: trigger the remote workflow,
// decode its outputs, render the post document and write it into the
// content directory.
type Publisher struct {
	config      *config.GlobalConfig
	credentials *config.EnvCredentials
	client      *workflow.Client
	retrier     *retry.Executor
	postBuilder *post.Builder
	filenameGen *filename.Generator
	fileWriter  *filewriter.Writer
	history     *datastore.HistoryStore
	logger      zerolog.Logger
}

// PublishOutcome reports what a successful publish run produced
type PublishOutcome struct {
	SessionID string
	FilePath  string
	Title     string
	DebugURL  string
}

// NewPublisher wires the pipeline components from the global configuration
// and the environment credentials.
func NewPublisher(cfg *config.GlobalConfig, credentials *config.EnvCredentials, logger zerolog.Logger) (*Publisher, error) {
	if cfg == nil {
		return nil, errorwrapper.NewValidationError("config", nil, "global configuration must not be nil")
	}
	if credentials == nil {
		return nil, errorwrapper.NewValidationError("credentials", nil, "environment credentials must not be nil")
	}

	componentLogger := logger.With().Str("component", "Publisher").Logger()

	client, err := workflow.NewClient(workflow.ClientConfig{
		BaseURL:  cfg.WorkflowConfig.BaseURL,
		APIToken: credentials.APIToken,
		Timeout:  time.Duration(cfg.WorkflowConfig.TimeoutSecs) * time.Second,
	}, logger)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to create workflow client")
	}

	publisher := &Publisher{
		config:      cfg,
		credentials: credentials,
		client:      client,
		retrier:     retry.NewExecutor(buildRetryConfig(cfg.RetryConfig), logger),
		postBuilder: post.NewBuilder(logger),
		filenameGen: filename.NewGenerator(logger),
		fileWriter:  filewriter.NewWriter(logger),
		logger:      componentLogger,
	}

	if cfg.HistoryConfig.Enabled {
		store, err := datastore.NewHistoryStore(cfg.HistoryConfig.SQLiteDBPath, logger)
		if err != nil {
			return nil, errorwrapper.WrapError(err, "failed to open publish history store")
		}
		publisher.history = store
	}

	return publisher, nil
}

// buildRetryConfig converts the second-granularity file configuration into
// the executor's duration-based policy
func buildRetryConfig(cfg config.RetryConfig) retry.Config {
	return retry.Config{
		MaxAttempts:     cfg.MaxAttempts,
		InitialDelay:    time.Duration(cfg.InitialDelaySecs) * time.Second,
		MaxDelay:        time.Duration(cfg.MaxDelaySecs) * time.Second,
		ExponentialBase: cfg.ExponentialBase,
		EnableJitter:    cfg.EnableJitter,
	}
}

// Close releases the publisher's resources
func (p *Publisher) Close() {
	if p.history != nil {
		if err := p.history.Close(); err != nil {
			p.logger.Error().Err(err).Msg("Failed to close publish history store")
		}
	}
}

// Publish executes one publish run end to end and returns the written
// post's location. The workflow call is retried under the backoff policy;
// everything after it runs at most once.
func (p *Publisher) Publish(ctx context.Context) (*PublishOutcome, error) {
	sessionID := uuid.NewString()
	startTime := time.Now().UTC()

	p.logger.Info().
		Str("session_id", sessionID).
		Str("workflow_id", p.credentials.WorkflowID).
		Msg("Starting publish run")

	historyID := p.recordStart(sessionID, startTime)

	outcome, err := p.publish(ctx, sessionID)
	if err != nil {
		p.recordCompletion(historyID, datastore.StatusFailed, nil, err)
		return nil, err
	}

	p.recordCompletion(historyID, datastore.StatusPublished, outcome, nil)

	p.logger.Info().
		Str("session_id", sessionID).
		Str("file", outcome.FilePath).
		Str("title", outcome.Title).
		Msg("Publish run completed")

	return outcome, nil
}

func (p *Publisher) publish(ctx context.Context, sessionID string) (*PublishOutcome, error) {
	result, err := retry.DoWithResult(ctx, p.retrier, func(ctx context.Context) (*workflow.RunResult, error) {
		return p.client.Run(ctx, p.credentials.WorkflowID, p.config.WorkflowConfig.Parameters)
	})
	if err != nil {
		return nil, errorwrapper.WrapError(err, "workflow run failed")
	}

	outputs, err := post.DecodeOutputs(result.Data)
	if err != nil {
		return nil, err
	}

	document, err := p.postBuilder.Build(outputs, post.BuildConfig{
		Categories: p.config.PostConfig.Categories,
		Timezone:   p.config.PostConfig.Timezone,
		MarkAIGC:   p.config.PostConfig.MarkAIGC,
	})
	if err != nil {
		return nil, err
	}

	filePath, err := p.writeDocument(document)
	if err != nil {
		return nil, err
	}

	return &PublishOutcome{
		SessionID: sessionID,
		FilePath:  filePath,
		Title:     outputs.Meta.Title,
		DebugURL:  result.DebugURL,
	}, nil
}

// writeDocument picks a unique filename in the content directory and saves
// the rendered document there
func (p *Publisher) writeDocument(document string) (string, error) {
	contentDir := p.config.PostConfig.ContentDir
	if err := os.MkdirAll(contentDir, 0755); err != nil {
		return "", errorwrapper.WrapError(err, "failed to create content directory")
	}

	charset, err := filename.ParseCharset(p.config.PostConfig.FilenameCharset)
	if err != nil {
		return "", err
	}

	nameOpts := filename.DefaultOptions()
	nameOpts.Extension = "md"
	nameOpts.Length = p.config.PostConfig.FilenameLength
	nameOpts.Charset = charset
	nameOpts.Directory = contentDir

	name, err := p.filenameGen.Generate(nameOpts)
	if err != nil {
		return "", errorwrapper.WrapError(err, "failed to generate post filename")
	}

	filePath := filepath.Join(contentDir, name)

	saveOpts := filewriter.DefaultOptions()
	saveOpts.Overwrite = p.config.PostConfig.BackupExisting
	saveOpts.BackupExisting = p.config.PostConfig.BackupExisting

	saveResult := p.fileWriter.Save(filePath, filewriter.Text(document), saveOpts)
	if !saveResult.Success {
		return "", errorwrapper.NewError("failed to write post file '%s': %s (%s)", filePath, saveResult.Message, saveResult.Code)
	}

	return filePath, nil
}

// recordStart inserts the history record for this run. History failures
// never abort a publish, they only lose the audit trail.
func (p *Publisher) recordStart(sessionID string, startTime time.Time) int64 {
	if p.history == nil {
		return 0
	}

	id, err := p.history.RecordRunStart(sessionID, p.credentials.WorkflowID, startTime)
	if err != nil {
		p.logger.Warn().Err(err).Str("session_id", sessionID).Msg("Failed to record run start in history")
		return 0
	}
	return id
}

func (p *Publisher) recordCompletion(historyID int64, status string, outcome *PublishOutcome, runErr error) {
	if p.history == nil || historyID == 0 {
		return
	}

	var filePath, title, debugURL, errorMessage string
	if outcome != nil {
		filePath = outcome.FilePath
		title = outcome.Title
		debugURL = outcome.DebugURL
	}
	if runErr != nil {
		errorMessage = fmt.Sprintf("%v", runErr)
	}

	if err := p.history.RecordRunCompletion(historyID, time.Now().UTC(), status, filePath, title, debugURL, errorMessage); err != nil {
		p.logger.Warn().Err(err).Int64("db_id", historyID).Msg("Failed to record run completion in history")
	}
}
