package handler

import (
	"strconv"
	"strings"

	apperrors "github.com/ggmarts04/LTX-Video/internal/pkg/errors"
)

// request is a validated, normalized job payload. Conditioning entries are
// flattened into the parallel arrays the infer contract expects.
type request struct {
	Prompt         string
	NegativePrompt string
	Height         int
	Width          int
	NumFrames      int
	FrameRate      int
	Seed           uint32

	MediaPaths  []string
	Strengths   []float64
	StartFrames []int
}

// parseRequest validates the raw input mapping and fills documented defaults.
// The returned error message is the user-facing result text.
func parseRequest(input map[string]any, seeds SeedSource) (*request, *apperrors.Error) {
	prompt, _ := stringValue(input["prompt"])
	if strings.TrimSpace(prompt) == "" {
		return nil, apperrors.ValidationField("input.prompt", "Prompt is a required input.")
	}

	req := &request{
		Prompt:         prompt,
		NegativePrompt: DefaultNegativePrompt,
		Height:         DefaultHeight,
		Width:          DefaultWidth,
		NumFrames:      DefaultNumFrames,
		FrameRate:      DefaultFrameRate,
	}

	if v, ok := stringValue(input["negative_prompt"]); ok {
		req.NegativePrompt = v
	}

	for _, f := range []struct {
		key string
		dst *int
	}{
		{"height", &req.Height},
		{"width", &req.Width},
		{"num_frames", &req.NumFrames},
		{"frame_rate", &req.FrameRate},
	} {
		raw, present := input[f.key]
		if !present || raw == nil {
			continue
		}
		n, ok := intValue(raw)
		if !ok || n <= 0 {
			return nil, apperrors.ValidationField("input."+f.key, "'"+f.key+"' must be a positive integer.")
		}
		*f.dst = n
	}

	seed, verr := parseSeed(input, seeds)
	if verr != nil {
		return nil, verr
	}
	req.Seed = seed

	if verr := parseConditioning(input, req); verr != nil {
		return nil, verr
	}

	return req, nil
}

func parseSeed(input map[string]any, seeds SeedSource) (uint32, *apperrors.Error) {
	raw, present := input["seed"]
	if !present || raw == nil {
		return seeds(), nil
	}

	n, ok := intValue64(raw)
	if !ok || n < 0 || n > maxSeed {
		return 0, apperrors.ValidationField("input.seed", "'seed' must be an unsigned 32-bit integer.")
	}
	return uint32(n), nil
}

func parseConditioning(input map[string]any, req *request) *apperrors.Error {
	entries, _ := input["conditioning_images"].([]any)
	if len(entries) == 0 {
		return apperrors.ValidationField("input.conditioning_images",
			"At least one conditioning image (first frame) is required for image-to-video.")
	}

	for _, raw := range entries {
		entry, ok := raw.(map[string]any)
		if !ok {
			return apperrors.ValidationField("input.conditioning_images",
				"Each conditioning image must have a 'url' and 'start_frame'.")
		}

		url, _ := stringValue(entry["url"])
		startRaw, hasStart := entry["start_frame"]
		if strings.TrimSpace(url) == "" || !hasStart || startRaw == nil {
			return apperrors.ValidationField("input.conditioning_images",
				"Each conditioning image must have a 'url' and 'start_frame'.")
		}

		startFrame, ok := intValue(startRaw)
		if !ok {
			return apperrors.ValidationField("input.conditioning_images",
				"'start_frame' must be an integer.")
		}

		strength := 1.0
		if sRaw, has := entry["strength"]; has && sRaw != nil {
			s, ok := floatValue(sRaw)
			if !ok {
				return apperrors.ValidationField("input.conditioning_images",
					"'strength' must be a number.")
			}
			strength = s
		}

		req.MediaPaths = append(req.MediaPaths, url)
		req.StartFrames = append(req.StartFrames, startFrame)
		req.Strengths = append(req.Strengths, strength)
	}

	return nil
}

const maxSeed = int64(^uint32(0))

func stringValue(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// intValue coerces JSON-decoded values to int. Floats must be whole numbers;
// numeric strings are accepted the way the original contract coerced them.
func intValue(v any) (int, bool) {
	n, ok := intValue64(v)
	return int(n), ok
}

func intValue64(v any) (int64, bool) {
	switch t := v.(type) {
	case int:
		return int64(t), true
	case int64:
		return t, true
	case float64:
		if t != float64(int64(t)) {
			return 0, false
		}
		return int64(t), true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func floatValue(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
