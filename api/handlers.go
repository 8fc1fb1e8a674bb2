package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/rustyeddy/stratfolio/analytics"
	"github.com/rustyeddy/stratfolio/export"
	"github.com/rustyeddy/stratfolio/ingest"
	"github.com/rustyeddy/stratfolio/library"
	"github.com/rustyeddy/stratfolio/pkg/logger"
	"github.com/rustyeddy/stratfolio/strategy"
)

// Handler serves the library routes.
type Handler struct {
	lib      *library.Library
	norm     *ingest.Normalizer
	exporter *export.Exporter
	log      *logger.Logger
	now      func() time.Time
}

func NewHandler(lib *library.Library, norm *ingest.Normalizer, exp *export.Exporter, log *logger.Logger) *Handler {
	return &Handler{
		lib:      lib,
		norm:     norm,
		exporter: exp,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// strategyView adds the id the interchange projection leaves out.
type strategyView struct {
	ID            string                 `json:"id"`
	DataID        strategy.DataID        `json:"dataId"`
	BacktestStats strategy.BacktestStats `json:"backtestStats"`
	Samples       int                    `json:"samples"`
}

func viewOf(ss []strategy.Strategy) []strategyView {
	out := make([]strategyView, len(ss))
	for i, s := range ss {
		out[i] = strategyView{ID: s.ID, DataID: s.DataID, BacktestStats: s.BacktestStats, Samples: len(s.Equity)}
	}
	return out
}

type portfolioView struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	CreatedAt time.Time      `json:"createdAt"`
	Members   []strategyView `json:"members"`
}

func portfolioViewOf(p strategy.Portfolio) portfolioView {
	return portfolioView{ID: p.ID, Name: p.Name, CreatedAt: p.CreatedAt, Members: viewOf(p.Members)}
}

type uploadView struct {
	Name       string    `json:"name"`
	UploadedAt time.Time `json:"uploadedAt"`
	Strategies int       `json:"strategies"`
}

func (h *Handler) ListStrategies(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, viewOf(h.lib.Filtered(f)))
}

// GetStrategy returns the full interchange record.
func (h *Handler) GetStrategy(w http.ResponseWriter, r *http.Request) {
	s, err := h.lib.Strategy(mux.Vars(r)["id"])
	if err != nil {
		h.respondLibError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s)
}

func parseFilter(r *http.Request) (strategy.Filter, error) {
	q := r.URL.Query()
	f := strategy.Filter{Symbol: q.Get("symbol"), Period: q.Get("period")}

	nums := []struct {
		key string
		dst *float64
	}{
		{"minProfitFactor", &f.MinProfitFactor},
		{"maxDrawdown", &f.MaxDrawdown},
		{"minSQN", &f.MinSQN},
		{"minWinRate", &f.MinWinRate},
	}
	for _, n := range nums {
		v := q.Get(n.key)
		if v == "" {
			continue
		}
		x, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return f, fmt.Errorf("invalid %s: %q", n.key, v)
		}
		*n.dst = x
	}
	return f, nil
}

func (h *Handler) ListUploads(w http.ResponseWriter, r *http.Request) {
	uploads := h.lib.Uploads()
	out := make([]uploadView, len(uploads))
	for i, u := range uploads {
		out[i] = uploadView{Name: u.Name, UploadedAt: u.UploadedAt, Strategies: len(u.Strategies)}
	}
	respondJSON(w, http.StatusOK, out)
}

// Upload ingests the request body as one file named by ?name=.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		respondError(w, http.StatusBadRequest, "name query parameter is required")
		return
	}

	limit := h.norm.MaxUploadBytes
	if limit <= 0 {
		limit = ingest.MaxUploadSize
	}
	// One byte over the limit is enough for eligibility to reject it.
	data, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
	if err != nil {
		respondError(w, http.StatusBadRequest, "read body: "+err.Error())
		return
	}

	res, err := h.norm.NormalizeBatch([]ingest.Upload{{Name: name, Data: data}})
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":  "upload rejected",
			"errors": fileErrors(res.Errors),
		})
		return
	}

	var added []strategy.Strategy
	for _, f := range res.Files {
		if err := h.lib.AddUpload(r.Context(), f); err != nil {
			h.log.WithError(err).Error("store upload")
			respondError(w, http.StatusInternalServerError, "failed to store upload")
			return
		}
		added = append(added, f.Strategies...)
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"name":       name,
		"strategies": viewOf(added),
	})
}

func fileErrors(errs []ingest.FileError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Error()
	}
	return out
}

func (h *Handler) RemoveUpload(w http.ResponseWriter, r *http.Request) {
	if err := h.lib.RemoveUpload(r.Context(), mux.Vars(r)["name"]); err != nil {
		h.respondLibError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type idsRequest struct {
	Name string   `json:"name,omitempty"`
	IDs  []string `json:"ids"`
}

func decodeIDs(r *http.Request) (idsRequest, error) {
	var req idsRequest
	if r.ContentLength == 0 {
		return req, nil
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return req, fmt.Errorf("invalid request body: %w", err)
	}
	return req, nil
}

func (h *Handler) GetSelection(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, viewOf(h.lib.Selected()))
}

func (h *Handler) SetSelection(w http.ResponseWriter, r *http.Request) {
	req, err := decodeIDs(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.lib.SetSelection(req.IDs); err != nil {
		h.respondLibError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, viewOf(h.lib.Selected()))
}

// Analyze reports on the given ids, or on the selection when none are given.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	req, err := decodeIDs(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ss := h.lib.Selected()
	if len(req.IDs) > 0 {
		if ss, err = h.lib.Lookup(req.IDs); err != nil {
			h.respondLibError(w, err)
			return
		}
	}
	respondJSON(w, http.StatusOK, analytics.Analyze(ss))
}

func (h *Handler) ListPortfolios(w http.ResponseWriter, r *http.Request) {
	ps := h.lib.Portfolios()
	out := make([]portfolioView, len(ps))
	for i, p := range ps {
		out[i] = portfolioViewOf(p)
	}
	respondJSON(w, http.StatusOK, out)
}

// CreatePortfolio snapshots the given ids, or the selection when none are
// given.
func (h *Handler) CreatePortfolio(w http.ResponseWriter, r *http.Request) {
	req, err := decodeIDs(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var p strategy.Portfolio
	if len(req.IDs) > 0 {
		p, err = h.lib.CreatePortfolioFrom(r.Context(), req.Name, req.IDs)
	} else {
		p, err = h.lib.CreatePortfolio(r.Context(), req.Name)
	}
	if err != nil {
		h.respondLibError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, portfolioViewOf(p))
}

func (h *Handler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	p, err := h.lib.Portfolio(mux.Vars(r)["id"])
	if err != nil {
		h.respondLibError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"portfolio": portfolioViewOf(p),
		"report":    analytics.Analyze(p.Members),
	})
}

func (h *Handler) RenamePortfolio(w http.ResponseWriter, r *http.Request) {
	req, err := decodeIDs(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := h.lib.RenamePortfolio(r.Context(), mux.Vars(r)["id"], req.Name)
	if err != nil {
		h.respondLibError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, portfolioViewOf(p))
}

func (h *Handler) DeletePortfolio(w http.ResponseWriter, r *http.Request) {
	if err := h.lib.DeletePortfolio(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.respondLibError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ArchivePortfolio streams the zip once it is fully built.
func (h *Handler) ArchivePortfolio(w http.ResponseWriter, r *http.Request) {
	p, err := h.lib.Portfolio(mux.Vars(r)["id"])
	if err != nil {
		h.respondLibError(w, err)
		return
	}
	h.runArchive(w, r, p.Name, func(out io.Writer) error {
		return h.exporter.ArchivePortfolio(out, p)
	})
}

// ArchiveStrategies exports the given ids, or the selection, as a flat zip.
func (h *Handler) ArchiveStrategies(w http.ResponseWriter, r *http.Request) {
	req, err := decodeIDs(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ss := h.lib.Selected()
	if len(req.IDs) > 0 {
		if ss, err = h.lib.Lookup(req.IDs); err != nil {
			h.respondLibError(w, err)
			return
		}
	}
	if len(ss) == 0 {
		respondError(w, http.StatusBadRequest, strategy.ErrEmptyPortfolio.Error())
		return
	}
	h.runArchive(w, r, "strategies", func(out io.Writer) error {
		return h.exporter.ArchiveStrategies(out, ss)
	})
}

func (h *Handler) runArchive(w http.ResponseWriter, r *http.Request, name string, fn func(io.Writer) error) {
	job := export.Start(r.Context(), fn)
	select {
	case <-job.Done():
	case <-r.Context().Done():
		return
	}

	data, err := job.Wait()
	if err != nil {
		h.log.WithField("archive", name).WithError(err).Error("archive export failed")
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	attach(w, "application/zip", export.ArchiveFileName(name, h.now()), data)
}

func (h *Handler) PortfolioSummary(w http.ResponseWriter, r *http.Request) {
	p, err := h.lib.Portfolio(mux.Vars(r)["id"])
	if err != nil {
		h.respondLibError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteSummary(&buf, p.Members); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	attach(w, "text/csv; charset=utf-8", export.SummaryFileName(p.Name, h.now()), buf.Bytes())
}

func (h *Handler) PortfolioCurve(w http.ResponseWriter, r *http.Request) {
	p, err := h.lib.Portfolio(mux.Vars(r)["id"])
	if err != nil {
		h.respondLibError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteCurveCSV(&buf, analytics.MergeEquityCurves(p.Members)); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	attach(w, "text/csv; charset=utf-8", export.CurveFileName(p.Name, h.now()), buf.Bytes())
}

func attach(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *Handler) respondLibError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, library.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, strategy.ErrEmptyPortfolio), errors.Is(err, library.ErrNameRequired):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		h.log.WithError(err).Error("library request failed")
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
