package usecase

import "path/filepath"

// Filesystem layout, all under the configured work dir and addressable by
// generated identifiers:
//
//	jobs/<ingestion-id>/source.mp4     downloaded or uploaded media
//	jobs/<ingestion-id>/audio.wav      transient, deleted after transcription
//	renders/<clip-job-id>/<clip-id>*   per-clip intermediates and outputs

func (u Usecase) ingestionDir(jobID string) string {
	return filepath.Join(u.workDir, "jobs", jobID)
}

func (u Usecase) sourcePath(jobID, ext string) string {
	return filepath.Join(u.ingestionDir(jobID), "source"+ext)
}

func (u Usecase) audioPath(jobID string) string {
	return filepath.Join(u.ingestionDir(jobID), "audio.wav")
}

func (u Usecase) renderDir(clipJobID string) string {
	return filepath.Join(u.workDir, "renders", clipJobID)
}

func clipBasePath(dir, clipID string) string      { return filepath.Join(dir, clipID+"-base.mp4") }
func clipCaptionedPath(dir, clipID string) string { return filepath.Join(dir, clipID+"-captioned.mp4") }
func clipSubtitlePath(dir, clipID string) string  { return filepath.Join(dir, clipID+".ass") }
func clipFinalPath(dir, clipID string) string     { return filepath.Join(dir, clipID+".mp4") }
func clipThumbnailPath(dir, clipID string) string { return filepath.Join(dir, clipID+".jpg") }
