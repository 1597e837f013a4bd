// Package veo provides an HTTP client for the Veo video generation API and
// a resolver that interprets the provider's response shapes.
package veo

// Model identifiers selected by requested quality.
const (
	// ModelFast is the cheaper, faster model variant.
	ModelFast = "veo-3.0-fast-generate-001"
	// ModelStandard is the default model variant.
	ModelStandard = "veo-3.0-generate-001"
)

// ModelForQuality maps a requested quality to a model identifier.
// Anything other than "fast" selects the standard model.
func ModelForQuality(quality string) string {
	if quality == "fast" {
		return ModelFast
	}
	return ModelStandard
}

// GenerateInput contains the parameters for a video generation call.
type GenerateInput struct {
	// Prompt is the text prompt for the video.
	Prompt string
	// AspectRatio is the requested aspect ratio, e.g. "16:9".
	AspectRatio string
	// Resolution is the requested resolution, e.g. "720p".
	Resolution string
	// GenerateAudio requests an audio track in the output.
	GenerateAudio bool
	// Quality selects the model variant ("fast" or "standard").
	Quality string
}

// generateRequest is the request body for the generation endpoint.
type generateRequest struct {
	Prompt        string `json:"prompt"`
	AspectRatio   string `json:"aspectRatio,omitempty"`
	Resolution    string `json:"resolution,omitempty"`
	GenerateAudio bool   `json:"generateAudio"`
}
