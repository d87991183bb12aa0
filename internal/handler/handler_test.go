package handler

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ggmarts04/LTX-Video/internal/inference"
	"github.com/ggmarts04/LTX-Video/internal/pkg/logger"
)

type stubEngine struct {
	generate func(req inference.GenerateRequest) ([]string, error)
	calls    int
	last     inference.GenerateRequest
}

func (s *stubEngine) Generate(_ context.Context, req inference.GenerateRequest) ([]string, error) {
	s.calls++
	s.last = req
	if s.generate == nil {
		return nil, nil
	}
	return s.generate(req)
}

type stubDevices struct {
	device string
	err    error
}

func (s *stubDevices) Device(context.Context) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if s.device == "" {
		return "cpu", nil
	}
	return s.device, nil
}

func newTestHandler(t *testing.T, engine *stubEngine, devices *stubDevices) *Handler {
	t.Helper()
	return New(Deps{
		Engine:  engine,
		Devices: devices,
		Seeds:   func() uint32 { return 1234 },
		TmpRoot: t.TempDir(),
		Log:     logger.New(logger.Config{Level: "error", Format: "json", Output: io.Discard}),
	})
}

func validInput() map[string]any {
	return map[string]any{
		"prompt": "a red fox running through snow",
		"conditioning_images": []any{
			map[string]any{"url": "https://example.com/first.png", "start_frame": float64(0)},
		},
	}
}

// writeArtifact makes the stub behave like an engine that only writes files.
func writeArtifact(name string) func(inference.GenerateRequest) ([]string, error) {
	return func(req inference.GenerateRequest) ([]string, error) {
		path := filepath.Join(req.OutputPath, name)
		if err := os.WriteFile(path, []byte("fake video bytes"), 0o644); err != nil {
			return nil, err
		}
		return nil, nil
	}
}

func TestHandleMissingPrompt(t *testing.T) {
	tests := []struct {
		name  string
		input map[string]any
	}{
		{name: "nil input", input: nil},
		{name: "empty input", input: map[string]any{}},
		{name: "empty prompt", input: map[string]any{"prompt": ""}},
		{name: "whitespace prompt", input: map[string]any{"prompt": "   "}},
		{name: "non-string prompt", input: map[string]any{"prompt": float64(5)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &stubEngine{}
			h := newTestHandler(t, engine, &stubDevices{})

			res := h.Handle(context.Background(), Job{ID: "job_1", Input: tt.input})

			if res.Error != "Prompt is a required input." {
				t.Errorf("unexpected error: %q", res.Error)
			}
			if engine.calls != 0 {
				t.Error("engine must not be invoked on validation failure")
			}
		})
	}
}

func TestHandleMissingConditioningImages(t *testing.T) {
	tests := []struct {
		name  string
		input map[string]any
	}{
		{name: "absent", input: map[string]any{"prompt": "a cat"}},
		{name: "empty list", input: map[string]any{"prompt": "a cat", "conditioning_images": []any{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &stubEngine{}
			h := newTestHandler(t, engine, &stubDevices{})

			res := h.Handle(context.Background(), Job{Input: tt.input})

			if !strings.Contains(res.Error, "conditioning image") {
				t.Errorf("expected error mentioning conditioning images, got %q", res.Error)
			}
			if engine.calls != 0 {
				t.Error("engine must not be invoked on validation failure")
			}
		})
	}
}

func TestHandleConditioningEntryMissingFields(t *testing.T) {
	tests := []struct {
		name  string
		entry map[string]any
	}{
		{name: "missing url", entry: map[string]any{"start_frame": float64(0)}},
		{name: "missing start_frame", entry: map[string]any{"url": "https://example.com/a.png"}},
		{name: "empty url", entry: map[string]any{"url": "", "start_frame": float64(0)}},
		{name: "nil start_frame", entry: map[string]any{"url": "https://example.com/a.png", "start_frame": nil}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &stubEngine{}
			h := newTestHandler(t, engine, &stubDevices{})

			input := map[string]any{
				"prompt":              "a cat",
				"conditioning_images": []any{tt.entry},
			}
			res := h.Handle(context.Background(), Job{Input: input})

			if res.Error != "Each conditioning image must have a 'url' and 'start_frame'." {
				t.Errorf("unexpected error: %q", res.Error)
			}
			if engine.calls != 0 {
				t.Error("engine must not be invoked on validation failure")
			}
		})
	}
}

func TestHandleSuccessViaDirectoryScan(t *testing.T) {
	engine := &stubEngine{generate: writeArtifact("video_0.mp4")}
	h := newTestHandler(t, engine, &stubDevices{device: "cuda"})

	res := h.Handle(context.Background(), Job{ID: "job_ok", Input: validInput()})

	if res.Failed() {
		t.Fatalf("expected success, got error %q", res.Error)
	}
	if !strings.HasSuffix(res.OutputVideo, "video_0.mp4") {
		t.Errorf("expected output path ending in video_0.mp4, got %q", res.OutputVideo)
	}
	if _, err := os.Stat(res.OutputVideo); err != nil {
		t.Errorf("expected artifact to exist: %v", err)
	}
}

func TestHandleSuccessViaReportedArtifacts(t *testing.T) {
	engine := &stubEngine{
		generate: func(req inference.GenerateRequest) ([]string, error) {
			path := filepath.Join(req.OutputPath, "video_0.mp4")
			if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
				return nil, err
			}
			return []string{path}, nil
		},
	}
	h := newTestHandler(t, engine, &stubDevices{})

	res := h.Handle(context.Background(), Job{Input: validInput()})

	if res.Failed() {
		t.Fatalf("expected success, got error %q", res.Error)
	}
	if !strings.HasSuffix(res.OutputVideo, "video_0.mp4") {
		t.Errorf("unexpected output path %q", res.OutputVideo)
	}
}

func TestHandleNoOutputProduced(t *testing.T) {
	engine := &stubEngine{} // writes nothing, reports nothing
	h := newTestHandler(t, engine, &stubDevices{})

	res := h.Handle(context.Background(), Job{Input: validInput()})

	if res.Error != "Inference completed but no output video/image file found." {
		t.Errorf("unexpected error: %q", res.Error)
	}
}

func TestHandleEngineFailure(t *testing.T) {
	engine := &stubEngine{
		generate: func(inference.GenerateRequest) ([]string, error) {
			return nil, errors.New("CUDA out of memory")
		},
	}
	h := newTestHandler(t, engine, &stubDevices{})

	res := h.Handle(context.Background(), Job{Input: validInput()})

	if res.Error != "Inference failed: CUDA out of memory" {
		t.Errorf("unexpected error: %q", res.Error)
	}
}

func TestHandleDeviceFailure(t *testing.T) {
	engine := &stubEngine{}
	h := newTestHandler(t, engine, &stubDevices{err: errors.New("no device available")})

	res := h.Handle(context.Background(), Job{Input: validInput()})

	if res.Error != "Inference failed: no device available" {
		t.Errorf("unexpected error: %q", res.Error)
	}
	if engine.calls != 0 {
		t.Error("engine must not be invoked when device selection fails")
	}
}

func TestHandleDistinctOutputDirectories(t *testing.T) {
	engine := &stubEngine{generate: writeArtifact("video_0.mp4")}
	h := newTestHandler(t, engine, &stubDevices{})

	first := h.Handle(context.Background(), Job{ID: "job_a", Input: validInput()})
	firstDir := engine.last.OutputPath
	second := h.Handle(context.Background(), Job{ID: "job_b", Input: validInput()})
	secondDir := engine.last.OutputPath

	if first.Failed() || second.Failed() {
		t.Fatalf("expected both jobs to succeed: %q / %q", first.Error, second.Error)
	}
	if firstDir == secondDir {
		t.Fatalf("expected distinct output directories, both were %q", firstDir)
	}

	// Neither job's artifacts are visible to the other.
	firstFiles, _ := os.ReadDir(firstDir)
	secondFiles, _ := os.ReadDir(secondDir)
	if len(firstFiles) != 1 || len(secondFiles) != 1 {
		t.Errorf("expected exactly one artifact per directory, got %d and %d",
			len(firstFiles), len(secondFiles))
	}
	if first.OutputVideo == second.OutputVideo {
		t.Error("expected distinct artifact paths per job")
	}
}

func TestHandleEngineCallShape(t *testing.T) {
	engine := &stubEngine{generate: writeArtifact("video_0.mp4")}
	h := newTestHandler(t, engine, &stubDevices{device: "cuda"})

	input := map[string]any{
		"prompt":          "a storm over the ocean",
		"negative_prompt": "low quality",
		"height":          float64(480),
		"width":           float64(640),
		"num_frames":      float64(65),
		"frame_rate":      float64(24),
		"seed":            float64(42),
		"conditioning_images": []any{
			map[string]any{"url": "https://example.com/a.png", "start_frame": float64(0), "strength": 0.8},
			map[string]any{"url": "https://example.com/b.png", "start_frame": float64(32)},
		},
	}

	res := h.Handle(context.Background(), Job{Input: input})
	if res.Failed() {
		t.Fatalf("unexpected error: %q", res.Error)
	}

	got := engine.last
	if got.Prompt != "a storm over the ocean" || got.NegativePrompt != "low quality" {
		t.Errorf("prompts not forwarded: %+v", got)
	}
	if got.Height != 480 || got.Width != 640 || got.NumFrames != 65 || got.FrameRate != 24 {
		t.Errorf("video params not forwarded: %+v", got)
	}
	if got.Seed != 42 {
		t.Errorf("expected seed=42, got %d", got.Seed)
	}
	if got.PipelineConfig != DefaultPipelineConfig {
		t.Errorf("expected pipeline config %q, got %q", DefaultPipelineConfig, got.PipelineConfig)
	}
	if got.ImageCondNoiseScale != 0.15 {
		t.Errorf("expected image_cond_noise_scale=0.15, got %v", got.ImageCondNoiseScale)
	}
	if got.OffloadToCPU {
		t.Error("expected offload_to_cpu=false")
	}
	if got.InputMediaPath != "" {
		t.Errorf("expected no input media path, got %q", got.InputMediaPath)
	}
	if got.Device != "cuda" {
		t.Errorf("expected device=cuda, got %q", got.Device)
	}

	wantPaths := []string{"https://example.com/a.png", "https://example.com/b.png"}
	wantStarts := []int{0, 32}
	wantStrengths := []float64{0.8, 1.0}
	for i := range wantPaths {
		if got.ConditioningMediaPaths[i] != wantPaths[i] {
			t.Errorf("media path %d: got %q", i, got.ConditioningMediaPaths[i])
		}
		if got.ConditioningStartFrames[i] != wantStarts[i] {
			t.Errorf("start frame %d: got %d", i, got.ConditioningStartFrames[i])
		}
		if got.ConditioningStrengths[i] != wantStrengths[i] {
			t.Errorf("strength %d: got %v", i, got.ConditioningStrengths[i])
		}
	}
}

func TestHandleDefaultSeedInjected(t *testing.T) {
	engine := &stubEngine{generate: writeArtifact("video_0.mp4")}
	h := newTestHandler(t, engine, &stubDevices{})

	res := h.Handle(context.Background(), Job{Input: validInput()})
	if res.Failed() {
		t.Fatalf("unexpected error: %q", res.Error)
	}
	if engine.last.Seed != 1234 {
		t.Errorf("expected injected seed source value 1234, got %d", engine.last.Seed)
	}
}

func TestHandleDefaults(t *testing.T) {
	engine := &stubEngine{generate: writeArtifact("video_0.mp4")}
	h := newTestHandler(t, engine, &stubDevices{})

	res := h.Handle(context.Background(), Job{Input: validInput()})
	if res.Failed() {
		t.Fatalf("unexpected error: %q", res.Error)
	}

	got := engine.last
	if got.Height != DefaultHeight || got.Width != DefaultWidth {
		t.Errorf("expected default resolution %dx%d, got %dx%d",
			DefaultHeight, DefaultWidth, got.Height, got.Width)
	}
	if got.NumFrames != DefaultNumFrames || got.FrameRate != DefaultFrameRate {
		t.Errorf("expected default frames/rate %d/%d, got %d/%d",
			DefaultNumFrames, DefaultFrameRate, got.NumFrames, got.FrameRate)
	}
	if got.NegativePrompt != DefaultNegativePrompt {
		t.Errorf("expected default negative prompt, got %q", got.NegativePrompt)
	}
}
