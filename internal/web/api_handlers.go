package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"phrasebook/internal/activity"
	"phrasebook/internal/api"
	"phrasebook/internal/dictionary"
	"phrasebook/internal/logging"
	"phrasebook/internal/phrasecsv"
	"phrasebook/internal/preflight"
	"phrasebook/internal/services"
	"phrasebook/internal/textutil"
)

const defaultActivityLimit = 200

func (s *Server) handleHealth(c *gin.Context) {
	ctx := c.Request.Context()
	count, err := s.store.Count(ctx)
	if err != nil {
		s.writeError(c, services.Wrap(services.ErrTransient, "web", "health", "count phrases", err))
		return
	}
	checks := preflight.RunAll(ctx, s.cfg)
	resp := api.HealthResponse{Status: "ok", Phrases: count, Checks: api.FromChecks(checks)}
	if preflight.Failed(checks) {
		resp.Status = "degraded"
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleAPILogin(c *gin.Context) {
	var req api.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, services.Wrap(services.ErrValidation, "web", "login", "invalid request body", err))
		return
	}
	user := strings.TrimSpace(req.User)
	if !s.users.Check(user, req.Password) {
		name := user
		if name == "" {
			name = "unknown"
		}
		s.record(c, name, activity.ActionLoginFailed, "")
		s.writeError(c, services.Wrap(services.ErrUnauthorized, "web", "login", "invalid credentials", nil))
		return
	}
	token, err := s.signer.Issue(user)
	if err != nil {
		s.writeError(c, err)
		return
	}
	claims, err := s.signer.Verify(token)
	if err != nil {
		s.writeError(c, err)
		return
	}
	s.record(c, user, activity.ActionLogin, "success")
	c.JSON(http.StatusOK, api.LoginResponse{
		Token:     token,
		User:      user,
		ExpiresAt: claims.ExpiresAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	})
}

func (s *Server) handleAPIListPhrases(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	phrases, err := s.store.List(c.Request.Context(), dictionary.ListOptions{Tag: c.Query("tag"), Limit: max(limit, 0)})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.PhraseListResponse{Phrases: api.FromPhrases(phrases)})
}

func (s *Server) handleAPIUpsert(c *gin.Context) {
	var req api.UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, services.Wrap(services.ErrValidation, "web", "upsert", "invalid request body", err))
		return
	}
	ctx := c.Request.Context()
	res, err := s.store.Upsert(ctx, dictionary.Input{Source: req.Source, Target: req.Target, Context: req.Context, Tags: req.Tags})
	if err != nil {
		s.writeError(c, err)
		return
	}
	phrase, err := s.store.GetByID(ctx, res.ID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	s.record(c, currentUser(c), activity.ActionManualUpsert,
		fmt.Sprintf("%s -> %s", strings.TrimSpace(req.Source), strings.TrimSpace(req.Target)))
	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	c.JSON(status, api.PhraseResponse{Phrase: api.FromPhrase(phrase), Created: res.Created})
}

func (s *Server) handleAPIDelete(c *gin.Context) {
	id, ok := s.phraseID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	phrase, err := s.store.GetByID(ctx, id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if phrase == nil {
		s.writeError(c, services.Wrap(services.ErrNotFound, "web", "delete", fmt.Sprintf("phrase %d", id), nil))
		return
	}
	if err := s.store.Delete(ctx, id); err != nil {
		s.writeError(c, err)
		return
	}
	s.record(c, currentUser(c), activity.ActionDelete,
		fmt.Sprintf("src=%s,id=%d", textutil.Truncate(phrase.Source, detailLimit), id))
	c.Status(http.StatusNoContent)
}

func (s *Server) handleAPIAdopt(c *gin.Context) {
	id, ok := s.phraseID(c)
	if !ok {
		return
	}
	phrase, err := s.search.Adopt(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	s.record(c, currentUser(c), activity.ActionAdopt,
		fmt.Sprintf("src=%s,id=%d", textutil.Truncate(phrase.Source, detailLimit), phrase.ID))
	c.JSON(http.StatusOK, api.PhraseResponse{Phrase: api.FromPhrase(phrase)})
}

func (s *Server) handleAPISearch(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	limit = s.search.ClampLimit(limit)
	candidates, err := s.search.Search(c.Request.Context(), query, limit)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.SearchResponse{Query: query, Limit: limit, Candidates: api.FromCandidates(candidates)})
}

func (s *Server) handleAPIImport(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		s.writeError(c, services.Wrap(services.ErrValidation, "web", "import", "multipart field \"file\" is required", err))
		return
	}
	f, err := file.Open()
	if err != nil {
		s.writeError(c, err)
		return
	}
	defer f.Close()

	sheet, err := phrasecsv.Read(f)
	if err != nil {
		s.writeError(c, err)
		return
	}
	ctx := c.Request.Context()
	summary, err := api.ImportSheet(ctx, s.store, sheet, s.cfg.Align.UnmatchedMarker, logging.WithContext(ctx, s.logger))
	if err != nil {
		s.writeError(c, err)
		return
	}
	s.record(c, currentUser(c), activity.ActionUploadCSV, fmt.Sprintf("rows=%d", summary.Imported+summary.Updated))
	c.JSON(http.StatusOK, summary)
}

func (s *Server) handleAPIActivity(c *gin.Context) {
	n := defaultActivityLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			s.writeError(c, services.Wrap(services.ErrValidation, "web", "activity", "limit must be a non-negative integer", nil))
			return
		}
		n = parsed
	}
	entries, err := s.activity.Tail(c.Request.Context(), n)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.ActivityResponse{Entries: api.FromEntries(entries)})
}

func (s *Server) handleActivityFeed(c *gin.Context) {
	if err := s.hub.serve(c.Request.Context(), c.Writer, c.Request, currentUser(c)); err != nil {
		if !errors.Is(err, c.Request.Context().Err()) {
			s.logger.Debug("activity feed closed", logging.Error(err))
		}
	}
}

func (s *Server) phraseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		s.writeError(c, services.Wrap(services.ErrValidation, "web", "phrase id", "invalid phrase id", nil))
		return 0, false
	}
	return id, true
}
