package handler

import (
	"testing"
)

func fixedSeed() uint32 { return 99 }

func TestParseRequestCoercions(t *testing.T) {
	tests := []struct {
		name    string
		input   map[string]any
		wantErr bool
		check   func(t *testing.T, req *request)
	}{
		{
			name: "numeric strings accepted",
			input: map[string]any{
				"prompt": "a cat",
				"height": "480",
				"width":  "640",
				"seed":   "7",
				"conditioning_images": []any{
					map[string]any{"url": "u", "start_frame": "12", "strength": "0.5"},
				},
			},
			check: func(t *testing.T, req *request) {
				if req.Height != 480 || req.Width != 640 {
					t.Errorf("got %dx%d", req.Height, req.Width)
				}
				if req.Seed != 7 {
					t.Errorf("got seed %d", req.Seed)
				}
				if req.StartFrames[0] != 12 || req.Strengths[0] != 0.5 {
					t.Errorf("got start=%d strength=%v", req.StartFrames[0], req.Strengths[0])
				}
			},
		},
		{
			name: "whole float accepted as int",
			input: map[string]any{
				"prompt":     "a cat",
				"num_frames": float64(97),
				"conditioning_images": []any{
					map[string]any{"url": "u", "start_frame": float64(0)},
				},
			},
			check: func(t *testing.T, req *request) {
				if req.NumFrames != 97 {
					t.Errorf("got num_frames %d", req.NumFrames)
				}
			},
		},
		{
			name: "fractional height rejected",
			input: map[string]any{
				"prompt": "a cat",
				"height": 1.5,
				"conditioning_images": []any{
					map[string]any{"url": "u", "start_frame": float64(0)},
				},
			},
			wantErr: true,
		},
		{
			name: "zero width rejected",
			input: map[string]any{
				"prompt": "a cat",
				"width":  float64(0),
				"conditioning_images": []any{
					map[string]any{"url": "u", "start_frame": float64(0)},
				},
			},
			wantErr: true,
		},
		{
			name: "negative frame_rate rejected",
			input: map[string]any{
				"prompt":     "a cat",
				"frame_rate": float64(-1),
				"conditioning_images": []any{
					map[string]any{"url": "u", "start_frame": float64(0)},
				},
			},
			wantErr: true,
		},
		{
			name: "seed above uint32 range rejected",
			input: map[string]any{
				"prompt": "a cat",
				"seed":   float64(1) + float64(maxSeed),
				"conditioning_images": []any{
					map[string]any{"url": "u", "start_frame": float64(0)},
				},
			},
			wantErr: true,
		},
		{
			name: "negative seed rejected",
			input: map[string]any{
				"prompt": "a cat",
				"seed":   float64(-1),
				"conditioning_images": []any{
					map[string]any{"url": "u", "start_frame": float64(0)},
				},
			},
			wantErr: true,
		},
		{
			name: "non-integer start_frame rejected",
			input: map[string]any{
				"prompt": "a cat",
				"conditioning_images": []any{
					map[string]any{"url": "u", "start_frame": "twelve"},
				},
			},
			wantErr: true,
		},
		{
			name: "non-map conditioning entry rejected",
			input: map[string]any{
				"prompt":              "a cat",
				"conditioning_images": []any{"not an object"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, verr := parseRequest(tt.input, fixedSeed)
			if tt.wantErr {
				if verr == nil {
					t.Fatal("expected validation error")
				}
				return
			}
			if verr != nil {
				t.Fatalf("unexpected error: %v", verr)
			}
			if tt.check != nil {
				tt.check(t, req)
			}
		})
	}
}

func TestParseRequestSeedDefault(t *testing.T) {
	input := map[string]any{
		"prompt": "a cat",
		"conditioning_images": []any{
			map[string]any{"url": "u", "start_frame": float64(0)},
		},
	}

	req, verr := parseRequest(input, fixedSeed)
	if verr != nil {
		t.Fatalf("unexpected error: %v", verr)
	}
	if req.Seed != 99 {
		t.Errorf("expected seed from injected source, got %d", req.Seed)
	}
}

func TestParseRequestSeedZeroKept(t *testing.T) {
	// seed=0 is a valid explicit value, not "unset".
	input := map[string]any{
		"prompt": "a cat",
		"seed":   float64(0),
		"conditioning_images": []any{
			map[string]any{"url": "u", "start_frame": float64(0)},
		},
	}

	req, verr := parseRequest(input, fixedSeed)
	if verr != nil {
		t.Fatalf("unexpected error: %v", verr)
	}
	if req.Seed != 0 {
		t.Errorf("expected explicit seed 0, got %d", req.Seed)
	}
}

func TestParseRequestParallelArrays(t *testing.T) {
	input := map[string]any{
		"prompt": "a cat",
		"conditioning_images": []any{
			map[string]any{"url": "a", "start_frame": float64(0)},
			map[string]any{"url": "b", "start_frame": float64(40), "strength": 0.25},
			map[string]any{"url": "c", "start_frame": float64(80), "strength": float64(2)},
		},
	}

	req, verr := parseRequest(input, fixedSeed)
	if verr != nil {
		t.Fatalf("unexpected error: %v", verr)
	}

	if len(req.MediaPaths) != 3 || len(req.StartFrames) != 3 || len(req.Strengths) != 3 {
		t.Fatalf("expected parallel arrays of length 3, got %d/%d/%d",
			len(req.MediaPaths), len(req.StartFrames), len(req.Strengths))
	}
	if req.Strengths[0] != 1.0 {
		t.Errorf("expected default strength 1.0, got %v", req.Strengths[0])
	}
	// strength is an unconstrained numeric weight
	if req.Strengths[2] != 2.0 {
		t.Errorf("expected strength 2.0 kept, got %v", req.Strengths[2])
	}
}
