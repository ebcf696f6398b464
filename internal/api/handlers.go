// internal/api/handlers.go
package api

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/valpere/PriceScrapexter/internal/catalog"
	"github.com/valpere/PriceScrapexter/internal/errors"
	"github.com/valpere/PriceScrapexter/internal/output"
	"github.com/valpere/PriceScrapexter/internal/report"
	"github.com/valpere/PriceScrapexter/internal/scraper"
)

type productsRequest struct {
	Products []scraper.Product `json:"products"`
}

type productsResponse struct {
	Products []scraper.Product `json:"products"`
	Summary  *scraper.Summary  `json:"summary,omitempty"`
}

type debugRequest struct {
	URL string `json:"url"`
}

type statsResponse struct {
	Stats *report.Stats `json:"stats"`
}

// handleScrape runs a batch and returns every product, in order, with a
// price or an error attached.
func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	var req productsRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	result, err := s.engine.Run(r.Context(), req.Products)
	if err != nil {
		s.writeFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, productsResponse{Products: result.Products, Summary: &result.Summary})
}

// handleDebugScrape reports every candidate the heuristics find on one page.
// Upstream HTTP failures are reported in a 200 body with the upstream status.
func (s *Server) handleDebugScrape(w http.ResponseWriter, r *http.Request) {
	var req debugRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "URL is required")
		return
	}

	inspection, err := s.engine.Inspect(r.Context(), req.URL)
	if err != nil {
		var httpErr *errors.HTTPError
		switch {
		case errors.As(err, &httpErr):
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"error":  httpErr.Error(),
				"status": httpErr.StatusCode,
			})
		case errors.IsInput(err):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			s.logger.WithField("url", req.URL).Errorf("debug scrape failed: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error":   err.Error(),
				"details": "Debug endpoint failed",
			})
		}
		return
	}

	writeJSON(w, http.StatusOK, inspection)
}

// handleImport parses a catalog CSV sent as the raw body or as the
// multipart field "file".
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	body, closeFn, err := catalogBody(r)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	defer closeFn()

	products, err := catalog.Load(body)
	if err != nil {
		s.writeFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, productsResponse{Products: products})
}

func catalogBody(r *http.Request) (io.Reader, func(), error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return r.Body, func() {}, nil
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if stderrors.As(err, &maxErr) {
			return nil, nil, err
		}
		return nil, nil, errors.NewInputError("file", "multipart field \"file\" is required")
	}
	if name := strings.ToLower(header.Filename); name != "" && !strings.HasSuffix(name, ".csv") {
		file.Close()
		return nil, nil, errors.NewInputError("file", "Please upload a valid CSV file")
	}
	return file, func() { file.Close() }, nil
}

// handleExport serializes the posted products as a download.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	manager, err := output.NewManager(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req productsRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if len(req.Products) == 0 {
		s.writeFailure(w, errors.ErrEmptyBatch)
		return
	}

	data, err := manager.Render(req.Products)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	if s.rec != nil {
		s.rec.RecordExport(string(manager.Format()))
	}

	w.Header().Set("Content-Type", manager.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", manager.FileName()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// handleStats returns price statistics, with null stats when no product has a price.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	var req productsRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{Stats: report.Compute(req.Products)})
}

// decodeJSON reads the body into v, answering 400 or 413 itself on failure.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return true
	}

	var maxErr *http.MaxBytesError
	switch {
	case stderrors.As(err, &maxErr):
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit))
	case err == io.EOF:
		writeError(w, http.StatusBadRequest, "request body is required")
	default:
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
	}
	return false
}

// writeFailure maps err onto a status code: input errors are 400, an
// oversized body 413, everything else 500.
func (s *Server) writeFailure(w http.ResponseWriter, err error) {
	var maxErr *http.MaxBytesError
	if stderrors.As(err, &maxErr) {
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit))
		return
	}

	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Errorf("request failed: %v", err)
	}
	writeError(w, status, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
