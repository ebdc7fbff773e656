package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/uberswe/domaingen/internal/check"
	"github.com/uberswe/domaingen/pkg/domain"
	"github.com/uberswe/domaingen/pkg/store"
	"github.com/uberswe/domaingen/pkg/util"
)

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.gen.State())
}

// handleCandidates lists generated candidates. With visible=1 candidates whose
// every suffix was found taken are left out.
func (s *Server) handleCandidates(w http.ResponseWriter, r *http.Request) {
	candidates := s.gen.Candidates()
	if r.URL.Query().Get("visible") == "1" {
		st := s.scheduler.Status()
		kept := candidates[:0]
		for _, c := range candidates {
			if st.Visible(c) {
				kept = append(kept, c)
			}
		}
		candidates = kept
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(candidates), "candidates": candidates})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	cfg := domain.DefaultGenerationConfig()
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
			writeError(w, fmt.Errorf("%w: %v", errBadRequest, err))
			return
		}
	}
	if err := s.gen.Start(s.baseCtx, cfg); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, s.gen.State())
}

func (s *Server) handleControl(op func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if err := op(); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s.gen.State())
	}
}

// handleCheck checks a snapshot of the generated candidates in the
// background and persists the results when the run ends
func (s *Server) handleCheck(w http.ResponseWriter, _ *http.Request) {
	candidates := s.gen.Candidates()

	s.mu.Lock()
	if s.checking {
		s.mu.Unlock()
		writeError(w, errCheckRunning)
		return
	}
	s.checking = true
	s.progress = domain.CheckProgress{Total: len(candidates) * len(s.suffixes)}
	s.wg.Add(1)
	s.mu.Unlock()

	go s.runCheck(candidates)

	writeJSON(w, http.StatusAccepted, map[string]any{
		"candidates": len(candidates),
		"suffixes":   s.suffixes,
		"total":      len(candidates) * len(s.suffixes),
	})
}

func (s *Server) runCheck(candidates []string) {
	defer s.wg.Done()

	obs := check.Observer{
		OnProgress: func(p domain.CheckProgress) {
			s.mu.Lock()
			s.progress = p
			s.mu.Unlock()
		},
	}
	report, err := s.scheduler.CheckAll(s.baseCtx, candidates, s.suffixes, s.opts, obs)
	if err != nil {
		log.Warn().Err(err).Str("run_id", report.RunID).Msg("Check ended early")
	}

	// persist even when the base context is gone
	ctx := context.WithoutCancel(s.baseCtx)
	if err := store.RecordResults(ctx, s.store, candidates, s.scheduler.Status().Snapshot()); err != nil {
		log.Error().Err(err).Str("run_id", report.RunID).Msg("Failed to persist check results")
	}

	s.mu.Lock()
	s.checking = false
	s.lastRun = &report
	s.mu.Unlock()
}

func (s *Server) handleCheckState(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"running":  s.checking,
		"progress": s.progress,
		"last_run": s.lastRun,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st := s.scheduler.Status()
	if c := r.URL.Query().Get("candidate"); c != "" {
		results, ok := st.Get(c)
		if !ok {
			writeError(w, store.ErrNotFound)
			return
		}
		writeJSON(w, http.StatusOK, results)
		return
	}
	writeJSON(w, http.StatusOK, st.Snapshot())
}

// handleAvailable lists available names best first
func (s *Server) handleAvailable(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, util.RankAvailable(s.scheduler.Status().Available()))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	name := q.Get("format")
	if name == "" {
		name = string(store.FormatTXT)
	}
	format, err := store.ParseFormat(name)
	if err != nil {
		writeError(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	records, err := s.store.Candidates(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="domains.%s"`, format))
	opts := store.ExportOptions{Header: q.Get("header") == "1", OnlyAvailable: q.Get("available") == "1"}
	if err := store.Export(w, records, format, opts); err != nil {
		log.Error().Err(err).Msg("Export failed")
	}
}

func (s *Server) handleFavorites(w http.ResponseWriter, r *http.Request) {
	favs, err := s.store.Favorites(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, favs)
}

type favoriteRequest struct {
	Category string `json:"category"`
	Note     string `json:"note"`
}

func (s *Server) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var req favoriteRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, fmt.Errorf("%w: %v", errBadRequest, err))
			return
		}
	}
	if err := s.store.AddFavorite(r.Context(), name, req.Category, req.Note); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, domain.Favorite{Domain: name, Category: req.Category, Note: req.Note})
}

func (s *Server) handleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	if err := s.store.RemoveFavorite(r.Context(), chi.URLParam(r, "name")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearCollection(w http.ResponseWriter, r *http.Request) {
	c, err := store.ParseCollection(chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, errors.Join(errBadRequest, err))
		return
	}
	if err := s.store.Clear(r.Context(), c); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
