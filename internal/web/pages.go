package web

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"phrasebook/internal/activity"
	"phrasebook/internal/api"
	"phrasebook/internal/dictionary"
	"phrasebook/internal/logging"
	"phrasebook/internal/phrasecsv"
	"phrasebook/internal/search"
	"phrasebook/internal/services"
	"phrasebook/internal/textutil"
)

const detailLimit = 50

type loginPage struct {
	User  string
	Error string
}

type indexPage struct {
	User       string
	Query      string
	Limit      int
	MaxLimit   int
	Message    string
	Error      string
	Searched   bool
	Candidates []search.Candidate
	EditTarget string
	Phrases    []*dictionary.Phrase
}

func (s *Server) record(c *gin.Context, user, action, details string) {
	_, err := s.activity.Append(c.Request.Context(), activity.Entry{User: user, Action: action, Details: details})
	if err != nil {
		logging.WarnWithContext(logging.WithContext(c.Request.Context(), s.logger),
			"failed to append activity", "activity_append_failed",
			logging.String("action", action),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the activity log path is writable"),
			logging.String(logging.FieldImpact, "the action is missing from the audit log"),
		)
	}
}

func redirectIndex(c *gin.Context, values url.Values) {
	target := "/"
	if encoded := values.Encode(); encoded != "" {
		target += "?" + encoded
	}
	c.Redirect(http.StatusSeeOther, target)
}

func searchValues(query, limit string) url.Values {
	values := url.Values{}
	if query = strings.TrimSpace(query); query != "" {
		values.Set("q", query)
	}
	if limit != "" {
		values.Set("limit", limit)
	}
	return values
}

func (s *Server) handleLoginPage(c *gin.Context) {
	if _, ok := s.authenticate(c); ok {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	c.HTML(http.StatusOK, "login.tmpl", loginPage{})
}

func (s *Server) handleLogin(c *gin.Context) {
	user := strings.TrimSpace(c.PostForm("user"))
	password := c.PostForm("password")
	if !s.users.Check(user, password) {
		name := user
		if name == "" {
			name = "unknown"
		}
		s.record(c, name, activity.ActionLoginFailed, "")
		c.HTML(http.StatusUnauthorized, "login.tmpl", loginPage{User: user, Error: "Login failed. Check your user name and password."})
		return
	}
	token, err := s.signer.Issue(user)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "login.tmpl", loginPage{User: user, Error: api.ErrorMessage(err)})
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, token, int(s.signer.TTL().Seconds()), "/", "", false, true)
	s.record(c, user, activity.ActionLogin, "success")
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) handleLogout(c *gin.Context) {
	s.record(c, currentUser(c), activity.ActionLogout, "")
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	c.Redirect(http.StatusSeeOther, "/login")
}

func (s *Server) handleIndex(c *gin.Context) {
	ctx := c.Request.Context()
	limit, _ := strconv.Atoi(c.Query("limit"))
	page := indexPage{
		User:     currentUser(c),
		Query:    strings.TrimSpace(c.Query("q")),
		Limit:    s.search.ClampLimit(limit),
		MaxLimit: s.search.ClampLimit(s.cfg.Search.MaxLimit),
		Message:  c.Query("msg"),
		Error:    c.Query("err"),
	}

	if page.Query != "" {
		candidates, err := s.search.Search(ctx, page.Query, page.Limit)
		if err != nil {
			page.Error = api.ErrorMessage(err)
		}
		page.Searched = true
		page.Candidates = candidates
	}
	if id, err := strconv.ParseInt(c.Query("selected"), 10, 64); err == nil {
		if phrase, err := s.store.GetByID(ctx, id); err == nil && phrase != nil {
			page.EditTarget = phrase.Target
		}
	}

	phrases, err := s.store.List(ctx, dictionary.ListOptions{})
	if err != nil {
		s.writeError(c, err)
		return
	}
	page.Phrases = phrases
	c.HTML(http.StatusOK, "index.tmpl", page)
}

func (s *Server) handleUpload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		redirectIndex(c, url.Values{"err": {"Choose a CSV file to upload."}})
		return
	}
	f, err := file.Open()
	if err != nil {
		redirectIndex(c, url.Values{"err": {err.Error()}})
		return
	}
	defer f.Close()

	sheet, err := phrasecsv.Read(f)
	if err != nil {
		msg := "CSV read error: " + api.ErrorMessage(err)
		if errors.Is(err, phrasecsv.ErrMissingColumns) {
			msg = "The CSV needs source and target columns."
		}
		redirectIndex(c, url.Values{"err": {msg}})
		return
	}
	summary, err := api.ImportSheet(c.Request.Context(), s.store, sheet, s.cfg.Align.UnmatchedMarker,
		logging.WithContext(c.Request.Context(), s.logger))
	if err != nil {
		redirectIndex(c, url.Values{"err": {api.ErrorMessage(err)}})
		return
	}
	rows := summary.Imported + summary.Updated
	s.record(c, currentUser(c), activity.ActionUploadCSV, fmt.Sprintf("rows=%d", rows))
	redirectIndex(c, url.Values{"msg": {fmt.Sprintf("Imported %d rows from %s (%d skipped).", rows, filepath.Base(file.Filename), summary.Skipped+summary.Invalid)}})
}

func (s *Server) handleManualUpsert(c *gin.Context) {
	in := dictionary.Input{
		Source:  c.PostForm("source"),
		Target:  c.PostForm("target"),
		Context: c.PostForm("context"),
		Tags:    c.PostForm("tags"),
	}
	if _, err := s.store.Upsert(c.Request.Context(), in); err != nil {
		msg := api.ErrorMessage(err)
		if errors.Is(err, services.ErrValidation) {
			msg = "Source and target are required."
		}
		redirectIndex(c, url.Values{"err": {msg}})
		return
	}
	s.record(c, currentUser(c), activity.ActionManualUpsert,
		fmt.Sprintf("%s -> %s", strings.TrimSpace(in.Source), strings.TrimSpace(in.Target)))
	redirectIndex(c, url.Values{"msg": {"Saved. Search to check it."}})
}

func (s *Server) handleAdopt(c *gin.Context) {
	values := searchValues(c.PostForm("q"), c.PostForm("limit"))
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		values.Set("err", "invalid phrase id")
		redirectIndex(c, values)
		return
	}
	phrase, err := s.search.Adopt(c.Request.Context(), id)
	if err != nil {
		values.Set("err", api.ErrorMessage(err))
		redirectIndex(c, values)
		return
	}
	s.record(c, currentUser(c), activity.ActionAdopt,
		fmt.Sprintf("src=%s,id=%d", textutil.Truncate(phrase.Source, detailLimit), phrase.ID))
	values.Set("selected", strconv.FormatInt(phrase.ID, 10))
	values.Set("msg", "Adopted. The translation is in the editor.")
	redirectIndex(c, values)
}

func (s *Server) handleSaveTranslation(c *gin.Context) {
	query := strings.TrimSpace(c.PostForm("q"))
	target := strings.TrimSpace(c.PostForm("target"))
	values := searchValues(query, c.PostForm("limit"))
	if query == "" || target == "" {
		values.Set("err", "Source and translation are required.")
		redirectIndex(c, values)
		return
	}
	if _, err := s.search.SaveTranslation(c.Request.Context(), query, target, c.PostForm("context")); err != nil {
		values.Set("err", api.ErrorMessage(err))
		redirectIndex(c, values)
		return
	}
	s.record(c, currentUser(c), activity.ActionSaveTranslation,
		fmt.Sprintf("%s -> %s", textutil.Truncate(query, detailLimit), textutil.Truncate(target, detailLimit)))
	values.Set("msg", "Saved to the dictionary.")
	redirectIndex(c, values)
}

func (s *Server) handleExport(c *gin.Context) {
	phrases, err := s.store.List(c.Request.Context(), dictionary.ListOptions{})
	if err != nil {
		s.writeError(c, err)
		return
	}
	name := textutil.DownloadName(c.Query("name"), phrasecsv.DefaultExportName, ".csv")
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Status(http.StatusOK)
	if err := phrasecsv.WriteExport(c.Writer, phrases); err != nil {
		_ = c.Error(err)
		return
	}
	s.record(c, currentUser(c), activity.ActionExportCSV, fmt.Sprintf("rows=%d", len(phrases)))
}

func (s *Server) handleActivityDownload(c *gin.Context) {
	path := s.activity.Path()
	if _, err := os.Stat(path); err != nil {
		redirectIndex(c, url.Values{"msg": {"No activity has been logged yet."}})
		return
	}
	c.FileAttachment(path, filepath.Base(path))
	s.record(c, currentUser(c), activity.ActionDownloadLog, "")
}

func (s *Server) handleHelp(c *gin.Context) {
	c.HTML(http.StatusOK, "help.tmpl", struct{ Body template.HTML }{s.help})
}
