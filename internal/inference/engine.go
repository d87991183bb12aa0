// Package inference defines the ports to the external LTX-Video inference
// engine. The diffusion pipeline itself (model loading, sampling, video
// encoding) lives behind these interfaces and is not part of this repository.
package inference

import "context"

// GenerateRequest mirrors the signature of the external infer routine.
// Conditioning inputs travel as parallel arrays: MediaPaths[i] is anchored at
// StartFrames[i] with blend weight Strengths[i].
type GenerateRequest struct {
	OutputPath              string    `json:"output_path"`
	Seed                    uint32    `json:"seed"`
	PipelineConfig          string    `json:"pipeline_config"`
	ImageCondNoiseScale     float64   `json:"image_cond_noise_scale"`
	Height                  int       `json:"height"`
	Width                   int       `json:"width"`
	NumFrames               int       `json:"num_frames"`
	FrameRate               int       `json:"frame_rate"`
	Prompt                  string    `json:"prompt"`
	NegativePrompt          string    `json:"negative_prompt"`
	OffloadToCPU            bool      `json:"offload_to_cpu"`
	InputMediaPath          string    `json:"input_media_path,omitempty"`
	ConditioningMediaPaths  []string  `json:"conditioning_media_paths"`
	ConditioningStrengths   []float64 `json:"conditioning_strengths"`
	ConditioningStartFrames []int     `json:"conditioning_start_frames"`
	Device                  string    `json:"device"`
}

// Engine runs one generation and reports the artifact paths it wrote into
// OutputPath. Implementations may return an empty slice, in which case the
// caller falls back to scanning the output directory.
type Engine interface {
	Generate(ctx context.Context, req GenerateRequest) ([]string, error)
}

// DeviceProvider reports the active compute device, consulted once per job.
type DeviceProvider interface {
	Device(ctx context.Context) (string, error)
}
