// Package usecase drives the two asynchronous pipelines: source ingestion
// (transcript -> moments) and clip rendering (moments -> output clips).
package usecase

import (
	"errors"

	"github.com/forPelevin/viralcut/internal/domain/moments"
	"github.com/forPelevin/viralcut/internal/ports"
)

// Deps are the collaborators both orchestrators run against.
type Deps struct {
	Video      ports.VideoTool
	ASR        ports.ASR
	Captions   ports.CaptionSource
	Downloader ports.Downloader
	Detector   moments.Detector
	Store      ports.JobStore

	// Pick selects an index in [0, n) for the caption emoji flourish.
	// Nil means math/rand; tests inject a fixed source.
	Pick func(n int) int

	Logf func(format string, args ...any)
}

type Usecase struct {
	d       Deps
	workDir string
}

func New(d Deps, workDir string) Usecase {
	if d.Logf == nil {
		d.Logf = func(string, ...any) {}
	}
	return Usecase{d: d, workDir: workDir}
}

// Validation failures reject the request before any job exists.
var (
	ErrNoSource          = errors.New("either a source URL or an uploaded file is required")
	ErrBothSources       = errors.New("source URL and uploaded file are mutually exclusive")
	ErrIngestionNotFound = errors.New("ingestion job not found")
	ErrIngestionNotDone  = errors.New("ingestion job has not completed")
	ErrEmptySelection    = errors.New("at least one moment must be selected")
	ErrUnknownMoment     = errors.New("selected moment is not part of the ingestion result")
)
