// Package httpapi is the thin JSON boundary over the job pipelines: it
// validates requests, converts DTOs and serves artifacts. No business
// logic lives here.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/forPelevin/viralcut/internal/ports"
	"github.com/forPelevin/viralcut/internal/types"
	"github.com/forPelevin/viralcut/internal/usecase"
)

type Server struct {
	uc        usecase.Usecase
	store     ports.JobStore
	uploadDir string
	logf      func(format string, args ...any)
}

func NewServer(uc usecase.Usecase, store ports.JobStore, uploadDir string, logf func(string, ...any)) *Server {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &Server{uc: uc, store: store, uploadDir: uploadDir, logf: logf}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/ingest", s.handleIngest)
	mux.HandleFunc("GET /api/ingest/{id}", s.handleIngestStatus)
	mux.HandleFunc("POST /api/render", s.handleRender)
	mux.HandleFunc("GET /api/render/{id}", s.handleRenderStatus)
	mux.HandleFunc("GET /api/render/{id}/clips/{clipID}/video", s.handleClipVideo)
	mux.HandleFunc("GET /api/render/{id}/clips/{clipID}/thumbnail", s.handleClipThumbnail)
	return mux
}

type ingestRequest struct {
	URL string `json:"url"`
}

type jobCreatedResponse struct {
	JobID string `json:"job_id"`
}

// handleIngest accepts either a JSON body with a source URL or a multipart
// upload with a "file" part. A validation failure never creates a job.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var in usecase.IngestInput

	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "multipart/form-data") {
		path, audioOnly, err := s.saveUpload(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		in.UploadPath = path
		in.AudioOnly = audioOnly
	} else {
		var req ingestRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid JSON: %w", err))
			return
		}
		in.URL = strings.TrimSpace(req.URL)
	}

	jobID, err := s.uc.StartIngestion(in)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusAccepted, jobCreatedResponse{JobID: jobID})
}

func (s *Server) handleIngestStatus(w http.ResponseWriter, r *http.Request) {
	job, ok := s.store.GetIngestion(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("job not found"))
		return
	}
	writeJSON(w, http.StatusOK, job)
}

type renderRequest struct {
	JobID     string            `json:"job_id"`
	MomentIDs []string          `json:"moment_ids"`
	Options   types.ClipOptions `json:"options"`
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid JSON: %w", err))
		return
	}

	jobID, err := s.uc.StartRender(usecase.RenderInput{
		IngestionID: req.JobID,
		MomentIDs:   req.MomentIDs,
		Options:     req.Options,
	})
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, usecase.ErrIngestionNotFound) {
			status = http.StatusNotFound
		}
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusAccepted, jobCreatedResponse{JobID: jobID})
}

func (s *Server) handleRenderStatus(w http.ResponseWriter, r *http.Request) {
	job, ok := s.store.GetClipJob(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("job not found"))
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleClipVideo(w http.ResponseWriter, r *http.Request) {
	clip, ok := s.findClip(r)
	if !ok || !clip.Ready {
		writeError(w, http.StatusNotFound, errors.New("clip not found"))
		return
	}
	http.ServeFile(w, r, clip.VideoPath)
}

func (s *Server) handleClipThumbnail(w http.ResponseWriter, r *http.Request) {
	clip, ok := s.findClip(r)
	if !ok || !clip.Ready {
		writeError(w, http.StatusNotFound, errors.New("clip not found"))
		return
	}
	http.ServeFile(w, r, clip.ThumbnailPath)
}

func (s *Server) findClip(r *http.Request) (types.ProcessedClip, bool) {
	job, ok := s.store.GetClipJob(r.PathValue("id"))
	if !ok {
		return types.ProcessedClip{}, false
	}
	clipID := r.PathValue("clipID")
	for _, c := range job.Result {
		if c.ID == clipID {
			return c, true
		}
	}
	return types.ProcessedClip{}, false
}

// maxUploadBytes caps multipart uploads (2 GiB).
const maxUploadBytes = 2 << 30

var audioExts = map[string]bool{
	".mp3": true, ".wav": true, ".m4a": true,
	".aac": true, ".ogg": true, ".flac": true,
}

func (s *Server) saveUpload(r *http.Request) (path string, audioOnly bool, err error) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return "", false, fmt.Errorf("parse upload: %w", err)
	}
	f, hdr, err := r.FormFile("file")
	if err != nil {
		return "", false, fmt.Errorf("missing file part: %w", err)
	}
	defer f.Close()

	if hdr.Size > maxUploadBytes {
		return "", false, fmt.Errorf("upload exceeds %d bytes", int64(maxUploadBytes))
	}

	ext := strings.ToLower(filepath.Ext(hdr.Filename))
	if ext == "" {
		ext = ".mp4"
	}
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return "", false, err
	}
	dst := filepath.Join(s.uploadDir, uuid.NewString()+ext)
	out, err := os.Create(dst)
	if err != nil {
		return "", false, err
	}
	if _, err := io.Copy(out, f); err != nil {
		out.Close()
		_ = os.Remove(dst)
		return "", false, err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return "", false, err
	}
	return dst, audioExts[ext], nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
