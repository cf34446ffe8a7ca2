package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vidconv/internal/model"
	"vidconv/internal/pipeline"
)

type convertResponse struct {
	Success bool   `json:"success"`
	TaskID  string `json:"taskId"`
	pipeline.ConvertResult
}

type batchResponse struct {
	Success        bool               `json:"success"`
	Error          string             `json:"error,omitempty"`
	Report         *model.BatchReport `json:"report"`
	SucceededFiles []string           `json:"succeededFiles"`
	Failures       []model.FileError  `json:"failures"`
	InvalidFiles   []model.FileError  `json:"invalidFiles"`
}

type infoRequest struct {
	FilePath string `json:"filePath"`
}

type infoResponse struct {
	Success   bool             `json:"success"`
	VideoInfo *model.VideoInfo `json:"videoInfo"`
}

func (s *server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, failure{Error: fmt.Sprintf("invalid request body: %v", err)})
		return false
	}
	return true
}

func (s *server) handleConvert(w http.ResponseWriter, r *http.Request) {
	var req model.ConversionRequest
	if !s.decode(w, r, &req) {
		return
	}
	req.Format = model.ParseFormat(string(req.Format))

	res, err := s.svc.Convert(r.Context(), req, nil)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, convertResponse{Success: true, TaskID: res.Job.TaskID, ConvertResult: res})
}

func (s *server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req pipeline.BatchRequest
	if !s.decode(w, r, &req) {
		return
	}
	req.Format = model.ParseFormat(string(req.Format))

	report, err := s.svc.Batch(r.Context(), req, nil)
	if err != nil && report == nil {
		writeFailure(w, err)
		return
	}

	resp := batchResponse{
		Success:        report.Success(),
		Report:         report,
		SucceededFiles: report.SucceededFiles,
		Failures:       report.Failures,
		InvalidFiles:   report.InvalidFiles,
	}
	code := http.StatusOK
	if err != nil {
		resp.Error = err.Error()
		code = statusFor(err)
	}
	writeJSON(w, code, resp)
}

func (s *server) handleInfo(w http.ResponseWriter, r *http.Request) {
	var req infoRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.FilePath == "" {
		writeFailure(w, model.NewError(model.ErrInputValidation, "", "filePath is required"))
		return
	}
	info, err := s.svc.Info(r.Context(), req.FilePath)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, infoResponse{Success: true, VideoInfo: info})
}

func (s *server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "taskID")
	job, ok := s.svc.Registry().Get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, failure{Error: "job not found or already finished"})
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *server) handleListJobs(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Registry().List())
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"activeJobs": s.svc.Registry().Len(),
	})
}
