package post

import (
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/aleister1102/postforge/internal/errorwrapper"
)

// FrontMatter is the YAML metadata block of a generated post. Field order
// here is the order Hugo sees in the rendered document.
type FrontMatter struct {
	Title       string     `yaml:"title"`
	Description string     `yaml:"description"`
	Summary     string     `yaml:"summary"`
	Tags        []string   `yaml:"tags"`
	Categories  []string   `yaml:"categories"`
	Date        string     `yaml:"date"`
	AIGC        bool       `yaml:"AIGC"`
	Cover       CoverBlock `yaml:"cover"`
}

// CoverBlock is the Hugo cover-image block
type CoverBlock struct {
	Image string `yaml:"image"`
	Alt   string `yaml:"alt"`
	// Caption shows under the cover image
	Caption string `yaml:"caption"`
	// Relative switches Hugo to page-bundle-relative image paths
	Relative bool `yaml:"relative"`
}

// BuildConfig controls document rendering
type BuildConfig struct {
	Categories []string
	Timezone   string
	MarkAIGC   bool
}

// Builder renders workflow outputs into a complete markdown document
type Builder struct {
	logger zerolog.Logger
	now    func() time.Time
}

// NewBuilder creates a new post builder
func NewBuilder(logger zerolog.Logger) *Builder {
	return &Builder{
		logger: logger.With().Str("component", "PostBuilder").Logger(),
		now:    time.Now,
	}
}

// Build renders the front matter and body into a markdown document. The
// date is the current time in the configured zone, formatted RFC3339 with
// the zone offset.
func (b *Builder) Build(outputs *Outputs, cfg BuildConfig) (string, error) {
	if outputs == nil {
		return "", errorwrapper.NewValidationError("outputs", nil, "outputs must not be nil")
	}

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return "", errorwrapper.WrapError(err, "failed to load post timezone")
	}

	frontMatter := FrontMatter{
		Title:       outputs.Meta.Title,
		Description: outputs.Meta.Description,
		Summary:     outputs.Meta.Summary,
		Tags:        outputs.Tags,
		Categories:  cfg.Categories,
		Date:        b.now().In(location).Format(time.RFC3339),
		AIGC:        cfg.MarkAIGC,
		Cover: CoverBlock{
			Image:    outputs.Cover.ImageURL,
			Alt:      outputs.Cover.Alt,
			Caption:  outputs.Cover.Caption,
			Relative: false,
		},
	}

	metadata, err := yaml.Marshal(frontMatter)
	if err != nil {
		return "", errorwrapper.WrapError(err, "failed to marshal front matter")
	}

	var doc strings.Builder
	doc.WriteString("---\n")
	doc.Write(metadata)
	doc.WriteString("---\n")
	doc.WriteString(outputs.Body)
	if !strings.HasSuffix(outputs.Body, "\n") {
		doc.WriteString("\n")
	}

	b.logger.Debug().
		Str("title", frontMatter.Title).
		Int("tags", len(frontMatter.Tags)).
		Int("bytes", doc.Len()).
		Msg("Rendered post document")

	return doc.String(), nil
}
