package veo

import (
	"encoding/json"
	"strings"
)

// ResultKind classifies how the provider delivered the video.
type ResultKind string

const (
	// KindRemoteURL means the response carries a URL to download the video from.
	KindRemoteURL ResultKind = "remote_url"
	// KindInlineVideo means the response carries the video inline as base64.
	KindInlineVideo ResultKind = "inline_video"
	// KindUnrecognized means no known shape matched.
	KindUnrecognized ResultKind = "unrecognized"
)

// Resolved is the outcome of interpreting a provider response body.
// Exactly one of URL or VideoBase64 is set for the recognized kinds.
type Resolved struct {
	Kind        ResultKind
	URL         string
	VideoBase64 string
}

// providerResponse covers the response schema versions the provider has
// answered with. Fields from different versions never overlap, so one
// struct decodes them all.
type providerResponse struct {
	Output    []outputItem `json:"output"`
	OutputURI string       `json:"outputUri"`
	Result    []outputItem `json:"result"`
}

// outputItem is a single entry of an output or result list.
type outputItem struct {
	URI         string `json:"uri"`
	Content     string `json:"content"`
	ContentType string `json:"contentType"`
}

// Resolve interprets a raw provider response body. Attempts run in a fixed
// order until one succeeds:
//
//  1. first element of the "output" list: a direct URI, else inline content
//     declared with a video content type
//  2. a top-level "outputUri" field
//  3. first element of the "result" list with a URI
//
// The ordering encodes tolerance for multiple provider schema versions and
// must not change. Anything else, including malformed JSON, resolves to
// KindUnrecognized. Resolve is pure: the same body always yields the same
// classification.
func Resolve(body []byte) Resolved {
	var resp providerResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Resolved{Kind: KindUnrecognized}
	}

	if len(resp.Output) > 0 {
		first := resp.Output[0]
		if first.URI != "" {
			return Resolved{Kind: KindRemoteURL, URL: first.URI}
		}
		if first.Content != "" && strings.HasPrefix(first.ContentType, "video") {
			return Resolved{Kind: KindInlineVideo, VideoBase64: first.Content}
		}
	}

	if resp.OutputURI != "" {
		return Resolved{Kind: KindRemoteURL, URL: resp.OutputURI}
	}

	if len(resp.Result) > 0 && resp.Result[0].URI != "" {
		return Resolved{Kind: KindRemoteURL, URL: resp.Result[0].URI}
	}

	return Resolved{Kind: KindUnrecognized}
}
