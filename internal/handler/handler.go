// Package handler adapts incoming video-generation jobs into calls against
// the external LTX-Video inference engine. It validates and normalizes the
// payload, allocates a unique output directory, runs the generation, and
// locates the produced artifact. Every code path yields a Result; the handler
// never raises past its own boundary.
package handler

import (
	"context"
	"os"

	"github.com/ggmarts04/LTX-Video/internal/inference"
	apperrors "github.com/ggmarts04/LTX-Video/internal/pkg/errors"
	"github.com/ggmarts04/LTX-Video/internal/pkg/logger"
)

const (
	DefaultPipelineConfig = "configs/ltxv-13b-0.9.7-distilled.yaml"
	DefaultNegativePrompt = "worst quality, inconsistent motion, blurry, jittery, distorted"

	DefaultHeight    = 704
	DefaultWidth     = 1216
	DefaultNumFrames = 121
	DefaultFrameRate = 30

	// Noise injected on conditioning frames, fixed by the pipeline config.
	imageCondNoiseScale = 0.15

	// OutputDirPrefix names the per-job temporary output directories.
	OutputDirPrefix = "ltx_video_output_"
)

// Job is one unit of work dispatched by the hosting platform.
type Job struct {
	ID    string
	Input map[string]any
}

// Result is the uniform job outcome. Exactly one field is set.
type Result struct {
	OutputVideo string `json:"output_video,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Failed reports whether the result carries an error.
func (r Result) Failed() bool { return r.Error != "" }

type Deps struct {
	Engine  inference.Engine
	Devices inference.DeviceProvider
	// Seeds supplies the default seed when the job carries none.
	// Defaults to RandomSeed.
	Seeds SeedSource
	// TmpRoot is the parent for per-job output directories ("" = os.TempDir).
	TmpRoot        string
	PipelineConfig string
	Log            *logger.Logger
}

type Handler struct {
	engine         inference.Engine
	devices        inference.DeviceProvider
	seeds          SeedSource
	tmpRoot        string
	pipelineConfig string
	log            *logger.Logger
}

func New(d Deps) *Handler {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}
	seeds := d.Seeds
	if seeds == nil {
		seeds = RandomSeed
	}
	cfg := d.PipelineConfig
	if cfg == "" {
		cfg = DefaultPipelineConfig
	}

	return &Handler{
		engine:         d.Engine,
		devices:        d.Devices,
		seeds:          seeds,
		tmpRoot:        d.TmpRoot,
		pipelineConfig: cfg,
		log:            log.WithComponent("handler"),
	}
}

// Handle runs one job to completion. Validation failures short-circuit before
// the engine is touched; everything after directory allocation maps to an
// "Inference failed" result.
func (h *Handler) Handle(ctx context.Context, job Job) Result {
	log := h.log.FromContext(ctx)
	if job.ID != "" {
		log = log.WithJobID(job.ID)
	}

	req, verr := parseRequest(job.Input, h.seeds)
	if verr != nil {
		log.Warn("job rejected",
			"code", string(verr.Code),
			"error", verr.Message,
		)
		return Result{Error: verr.Message}
	}

	// Directorio único por job; el ciclo de vida lo maneja el host
	outputDir, err := os.MkdirTemp(h.tmpRoot, OutputDirPrefix)
	if err != nil {
		return h.failInference(log, "handler.outputdir", err)
	}

	device, err := h.devices.Device(ctx)
	if err != nil {
		return h.failInference(log, "handler.device", err)
	}

	log.Info("starting inference",
		"output_dir", outputDir,
		"device", device,
		"seed", req.Seed,
		"height", req.Height,
		"width", req.Width,
		"num_frames", req.NumFrames,
		"frame_rate", req.FrameRate,
		"conditioning_images", len(req.MediaPaths),
	)

	artifacts, err := h.engine.Generate(ctx, inference.GenerateRequest{
		OutputPath:              outputDir,
		Seed:                    req.Seed,
		PipelineConfig:          h.pipelineConfig,
		ImageCondNoiseScale:     imageCondNoiseScale,
		Height:                  req.Height,
		Width:                   req.Width,
		NumFrames:               req.NumFrames,
		FrameRate:               req.FrameRate,
		Prompt:                  req.Prompt,
		NegativePrompt:          req.NegativePrompt,
		OffloadToCPU:            false,
		InputMediaPath:          "",
		ConditioningMediaPaths:  req.MediaPaths,
		ConditioningStrengths:   req.Strengths,
		ConditioningStartFrames: req.StartFrames,
		Device:                  device,
	})
	if err != nil {
		return h.failInference(log, "handler.generate", err)
	}

	// The engine reports its artifacts directly; the directory scan is the
	// fallback for engines that only write files.
	if len(artifacts) == 0 {
		artifacts, err = findArtifacts(outputDir)
		if err != nil {
			return h.failInference(log, "handler.scan", err)
		}
	}

	if len(artifacts) == 0 {
		merr := apperrors.OutputMissing("no video or image file in output directory").
			WithField("output_dir", outputDir)
		log.Error("no output artifact found",
			"code", string(merr.Code),
			"output_dir", outputDir,
		)
		return Result{Error: "Inference completed but no output video/image file found."}
	}

	output := artifacts[0]
	log.Info("inference successful", "output_file", output)
	return Result{OutputVideo: output}
}

// failInference converts any runtime failure into the uniform error result,
// logging the cause with its stack trace.
func (h *Handler) failInference(log *logger.Logger, op string, cause error) Result {
	ierr := apperrors.Inference(cause, op)
	log.Error("inference failed",
		"code", string(ierr.Code),
		"op", op,
		"error", cause.Error(),
		"stack", ierr.StackTrace(),
	)
	return Result{Error: "Inference failed: " + cause.Error()}
}
