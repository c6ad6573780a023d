package post

import (
	"encoding/json"

	"github.com/aleister1102/postforge/internal/errorwrapper"
)

// Outputs is the decoded payload of one content-generation workflow run
type Outputs struct {
	Meta  Meta
	Tags  []string
	Body  string
	Cover Cover
}

// Meta carries the title block of the generated post
type Meta struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Summary     string `json:"summary"`
}

// Cover describes the generated cover image
type Cover struct {
	ImageURL string
	Alt      string
	Caption  string
}

// envelope mirrors the workflow's top-level result object. The service
// nests JSON documents as strings, so every field except the body needs a
// second decoding pass.
type envelope struct {
	Output  string `json:"output"`
	Output1 string `json:"output1"`
	Output2 string `json:"output2"`
	Output3 string `json:"output3"`
}

type tagsPayload struct {
	Tags []string `json:"tags"`
}

type coverPayload struct {
	Data struct {
		ImageURL    string `json:"image_url"`
		Description string `json:"description"`
		Title       string `json:"title"`
	} `json:"data"`
}

// DecodeOutputs parses the JSON-encoded result string of a workflow run
// into typed post outputs
func DecodeOutputs(data string) (*Outputs, error) {
	var env envelope
	if err := json.Unmarshal([]byte(data), &env); err != nil {
		return nil, errorwrapper.WrapError(err, "failed to decode workflow result envelope")
	}

	outputs := &Outputs{Body: env.Output2}

	if err := json.Unmarshal([]byte(env.Output), &outputs.Meta); err != nil {
		return nil, errorwrapper.WrapError(err, "failed to decode post metadata output")
	}
	if outputs.Meta.Title == "" {
		return nil, errorwrapper.NewValidationError("title", "", "workflow result has no post title")
	}

	var tags tagsPayload
	if err := json.Unmarshal([]byte(env.Output1), &tags); err != nil {
		return nil, errorwrapper.WrapError(err, "failed to decode post tags output")
	}
	outputs.Tags = tags.Tags

	var cover coverPayload
	if err := json.Unmarshal([]byte(env.Output3), &cover); err != nil {
		return nil, errorwrapper.WrapError(err, "failed to decode cover image output")
	}
	outputs.Cover = Cover{
		ImageURL: cover.Data.ImageURL,
		Alt:      cover.Data.Description,
		Caption:  cover.Data.Title,
	}

	return outputs, nil
}
