package api

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/dd0wney/cluso-dyncomm/pkg/api/middleware"
	"github.com/dd0wney/cluso-dyncomm/pkg/edgelist"
	"github.com/dd0wney/cluso-dyncomm/pkg/logging"
	"github.com/dd0wney/cluso-dyncomm/pkg/snapshot"
	"github.com/dd0wney/cluso-dyncomm/pkg/temporal"
)

// uploadField is the repeated multipart field holding one CSV per snapshot.
const uploadField = "files"

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w, http.MethodPost)
		return
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		s.respondError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	uploads := r.MultipartForm.File[uploadField]
	if len(uploads) == 0 {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("no %q uploaded", uploadField))
		return
	}
	if s.maxFiles > 0 && len(uploads) > s.maxFiles {
		s.respondError(w, http.StatusBadRequest,
			fmt.Sprintf("too many files: %d (limit %d)", len(uploads), s.maxFiles))
		return
	}
	s.metrics.UploadFilesTotal.Add(float64(len(uploads)))

	snaps := make([]*snapshot.Snapshot[string], 0, len(uploads))
	for i, fh := range uploads {
		snap, err := readUpload(fh)
		if err != nil {
			s.respondError(w, http.StatusBadRequest,
				fmt.Sprintf("file %d (%s): %v", i+1, fh.Filename, err))
			return
		}
		snaps = append(snaps, snap)
	}

	requestID := middleware.GetRequestID(r)
	cfg := s.Detection().Detector()
	cfg.Logger = s.logger.With(logging.RequestID(requestID))
	cfg.Metrics = s.metrics

	detector, err := temporal.New[string](cfg)
	if err != nil {
		s.logger.Error("create detector", logging.Error(err), logging.RequestID(requestID))
		s.respondError(w, http.StatusInternalServerError, "detection failed")
		return
	}

	records, err := detector.RunContext(r.Context(), snaps)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		s.logger.Warn("detection cancelled",
			logging.Error(err),
			logging.Count(len(records)),
			logging.RunID(detector.RunID()),
			logging.RequestID(requestID))
		s.respondError(w, http.StatusServiceUnavailable, "request cancelled")
		return
	}
	if err != nil {
		s.logger.Error("detection failed",
			logging.Error(err),
			logging.RunID(detector.RunID()),
			logging.RequestID(requestID))
		s.respondError(w, http.StatusInternalServerError, "detection failed")
		return
	}

	s.respondJSON(w, http.StatusOK, AnalyzeResponse{
		RunID:   detector.RunID(),
		Results: records,
	})
}

func readUpload(fh *multipart.FileHeader) (*snapshot.Snapshot[string], error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return edgelist.Read(f)
}
