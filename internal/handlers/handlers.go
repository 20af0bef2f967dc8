package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/pep299/news-summarizer/internal/service"
)

// parseQuery reads a report request from the URL query.
func parseQuery(r *http.Request) (service.Request, error) {
	q := r.URL.Query()
	req := service.Request{Topic: strings.TrimSpace(q.Get("topic"))}

	if v := q.Get("max_results"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return req, fmt.Errorf("invalid max_results %q", v)
		}
		req.MaxResults = n
	}
	if v := q.Get("threshold"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return req, fmt.Errorf("invalid threshold %q", v)
		}
		req.Threshold = &f
	}
	if v := q.Get("refresh"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return req, fmt.Errorf("invalid refresh %q", v)
		}
		req.Refresh = b
	}
	return req, nil
}

// createReportHandler runs (or serves from cache) a report for the JSON body.
func (s *Server) createReportHandler(w http.ResponseWriter, r *http.Request) {
	var req service.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid request body")
		return
	}

	rep, cached, err := s.service.Report(r.Context(), req)
	if err != nil {
		s.logger.Warn("report failed", "topic", req.Topic, "error", err)
		WriteError(w, statusFor(err), err.Error())
		return
	}

	WriteSuccess(w, fmt.Sprintf("%d articles summarized", rep.Len()), map[string]any{
		"cached": cached,
		"report": rep,
	})
}

// reportPDFHandler streams the report PDF as a download.
func (s *Server) reportPDFHandler(w http.ResponseWriter, r *http.Request) {
	req, err := parseQuery(r)
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	rep, _, err := s.service.Report(r.Context(), req)
	if err != nil {
		s.logger.Warn("report failed", "topic", req.Topic, "error", err)
		WriteError(w, statusFor(err), err.Error())
		return
	}

	data, name, err := s.service.PDF(rep)
	if err != nil {
		WriteInternalError(w, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// cacheStatsHandler returns cache statistics
func (s *Server) cacheStatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := s.service.CacheStats(r.Context())
	if err != nil {
		WriteInternalError(w, fmt.Sprintf("Error getting cache stats: %v", err))
		return
	}
	WriteSuccess(w, "", stats)
}

// cacheClearHandler clears the cache
func (s *Server) cacheClearHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.service.ClearCache(r.Context()); err != nil {
		WriteInternalError(w, fmt.Sprintf("Error clearing cache: %v", err))
		return
	}
	WriteSuccess(w, "Cache cleared successfully", nil)
}

// configHandler returns configuration (sanitized)
func (s *Server) configHandler(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, "", s.config)
}
