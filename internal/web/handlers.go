// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package web

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapio"

	"github.com/pdiddy/research-assistant/internal/convert"
	"github.com/pdiddy/research-assistant/internal/report"
	"github.com/pdiddy/research-assistant/internal/review"
	"github.com/pdiddy/research-assistant/internal/sections"
	"github.com/pdiddy/research-assistant/internal/session"
	"github.com/pdiddy/research-assistant/internal/summarize"
)

const (
	paperTemplate  = "paper.html"
	reviewTemplate = "review.html"
)

// page is the data passed to every template.
type page struct {
	Title   string
	Active  string
	Session *session.Session

	Error   string
	Warning string
	Notice  string

	MaxDocuments int
	MaxUploadMB  int64
}

func (s *Server) render(c *gin.Context, name string, p page) {
	p.MaxDocuments = review.MaxDocuments
	p.MaxUploadMB = s.cfg.Extraction.MaxUploadBytes >> 20
	c.HTML(http.StatusOK, name, p)
}

func paperView(sess *session.Session) page {
	return page{Title: "Single paper", Active: "paper", Session: sess}
}

func reviewView(sess *session.Session) page {
	return page{Title: "Literature review", Active: "review", Session: sess}
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) paperPage(c *gin.Context) {
	s.render(c, paperTemplate, paperView(sessionFrom(c)))
}

func (s *Server) reviewPage(c *gin.Context) {
	s.render(c, reviewTemplate, reviewView(sessionFrom(c)))
}

// uploadPaper extracts one PDF, detects its sections, and summarizes each
// one. The previous paper is replaced only once extraction succeeds.
func (s *Server) uploadPaper(c *gin.Context) {
	sess := sessionFrom(c)
	p := paperView(sess)
	ctx := c.Request.Context()

	fh, err := c.FormFile("pdf")
	if err != nil {
		p.Error = s.uploadError(err)
		s.render(c, paperTemplate, p)
		return
	}

	data, err := readUpload(fh, s.cfg.Extraction.MaxUploadBytes)
	if err != nil {
		p.Error = s.failure(fh.Filename, err)
		s.render(c, paperTemplate, p)
		return
	}

	doc, err := s.extractor.Extract(ctx, fh.Filename, data)
	if err != nil {
		s.log.Warn("extraction failed", zap.String("file", fh.Filename), zap.Error(err))
		p.Error = s.failure(fh.Filename, err)
		s.render(c, paperTemplate, p)
		return
	}

	sess.ResetPaper()
	sess.FileName, sess.Pages = doc.Name, doc.Pages
	sess.Sections = sections.Detect(doc.Text, s.mode)
	s.log.Info("sections detected",
		zap.String("file", doc.Name),
		zap.Int("pages", doc.Pages),
		zap.Strings("sections", sections.Titles(sess.Sections)),
	)

	if len(sess.Sections) == 0 {
		p.Warning = sections.NoSectionsMessage
	} else {
		progress := &zapio.Writer{Log: s.log.With(zap.String("file", doc.Name)), Level: zap.DebugLevel}
		sums, err := s.summarizer.SummarizeAll(ctx, sess.Sections, progress)
		progress.Close()
		if err != nil {
			p.Error = s.failure(doc.Name, err)
		}
		sess.Summaries = sums
	}

	if err := s.save(c, sess); err != nil && p.Error == "" {
		p.Error = "Could not save your session: " + err.Error()
	}
	s.render(c, paperTemplate, p)
}

// analyze answers the research question against the stored summaries.
func (s *Server) analyze(c *gin.Context) {
	sess := sessionFrom(c)
	p := paperView(sess)

	if len(sess.Summaries) == 0 {
		p.Warning = "Upload a paper and summarize it first."
		s.render(c, paperTemplate, p)
		return
	}

	question := strings.TrimSpace(c.PostForm("question"))
	combined := summarize.CombineSummaries(sess.Summaries)
	analysis, err := s.summarizer.Analyze(c.Request.Context(), combined, question)
	switch {
	case errors.Is(err, summarize.ErrEmptyQuestion):
		p.Warning = "Please enter a research question."
	case err != nil:
		s.log.Warn("analysis failed", zap.Error(err))
		p.Error = "Analysis failed: " + s.message(err)
	default:
		sess.Question, sess.Analysis = question, analysis
		if err := s.save(c, sess); err != nil {
			p.Error = "Could not save your session: " + err.Error()
		}
	}
	s.render(c, paperTemplate, p)
}

// runReview summarizes up to review.MaxDocuments uploads and synthesizes a
// review. Too many files is a warning and nothing is processed.
func (s *Server) runReview(c *gin.Context) {
	sess := sessionFrom(c)
	p := reviewView(sess)

	form, err := c.MultipartForm()
	if err != nil {
		p.Error = s.uploadError(err)
		s.render(c, reviewTemplate, p)
		return
	}
	files := form.File["pdfs"]
	topic := strings.TrimSpace(c.PostForm("topic"))

	switch err := review.CheckCount(len(files)); {
	case errors.Is(err, review.ErrNoDocuments):
		p.Warning = "Please upload at least one PDF."
		s.render(c, reviewTemplate, p)
		return
	case errors.Is(err, review.ErrTooManyDocuments):
		p.Warning = fmt.Sprintf("Please upload no more than %d PDFs at a time.", review.MaxDocuments)
		s.render(c, reviewTemplate, p)
		return
	}

	uploads := make([]review.Upload, 0, len(files))
	for _, fh := range files {
		data, err := readUpload(fh, s.cfg.Extraction.MaxUploadBytes)
		if err != nil {
			p.Error = s.failure(fh.Filename, err)
			s.render(c, reviewTemplate, p)
			return
		}
		uploads = append(uploads, review.Upload{Name: fh.Filename, Data: data})
	}

	progress := &zapio.Writer{Log: s.log.With(zap.String("session", sess.ID)), Level: zap.DebugLevel}
	res, err := s.reviewer.Run(c.Request.Context(), uploads, topic, progress)
	progress.Close()
	if err != nil {
		s.log.Warn("review failed", zap.Int("documents", len(uploads)), zap.Error(err))
		p.Error = "Literature review failed: " + s.message(err)
		s.render(c, reviewTemplate, p)
		return
	}

	sess.ResetReview()
	sess.Documents, sess.Topic, sess.Review = res.Documents, topic, res.Review
	if err := s.save(c, sess); err != nil {
		p.Error = "Could not save your session: " + err.Error()
	}
	s.render(c, reviewTemplate, p)
}

// reset deletes the session and returns to the page named by next.
func (s *Server) reset(c *gin.Context) {
	sess := sessionFrom(c)
	if err := s.store.Delete(c.Request.Context(), sess.ID); err != nil {
		s.log.Warn("session delete failed", zap.String("session", sess.ID), zap.Error(err))
	}
	c.SetCookie(s.cfg.Session.CookieName, "", -1, "/", "", !s.cfg.Server.IsDev(), true)

	next := "/"
	if c.PostForm("next") == "/review" {
		next = "/review"
	}
	c.Redirect(http.StatusSeeOther, next)
}

func (s *Server) paperPDF(c *gin.Context) {
	s.sendPDF(c, report.PaperReport(sessionFrom(c)), "research_summary.pdf")
}

func (s *Server) paperText(c *gin.Context) {
	s.sendText(c, report.PaperReport(sessionFrom(c)), "research_summary.txt")
}

func (s *Server) reviewPDF(c *gin.Context) {
	s.sendPDF(c, report.ReviewReport(sessionFrom(c)), "literature_review.pdf")
}

func (s *Server) reviewText(c *gin.Context) {
	s.sendText(c, report.ReviewReport(sessionFrom(c)), "literature_review.txt")
}

func (s *Server) reviewBibTeX(c *gin.Context) {
	sess := sessionFrom(c)
	if len(sess.Documents) == 0 {
		nothingYet(c)
		return
	}
	attachment(c, "references.bib")
	c.Data(http.StatusOK, "application/x-bibtex; charset=utf-8", []byte(review.GenerateBibTeX(sess.Documents)))
}

func (s *Server) reviewCSL(c *gin.Context) {
	sess := sessionFrom(c)
	if len(sess.Documents) == 0 {
		nothingYet(c)
		return
	}
	var buf bytes.Buffer
	if err := review.WriteCSL(&buf, sess.Documents); err != nil {
		s.log.Error("rendering CSL failed", zap.Error(err))
		c.String(http.StatusInternalServerError, "could not render references")
		return
	}
	attachment(c, "references.yaml")
	c.Data(http.StatusOK, "application/yaml; charset=utf-8", buf.Bytes())
}

func (s *Server) sendPDF(c *gin.Context, r report.Report, filename string) {
	if r.Empty() {
		nothingYet(c)
		return
	}
	var buf bytes.Buffer
	if err := report.WritePDF(&buf, r); err != nil {
		s.log.Error("rendering PDF failed", zap.Error(err))
		c.String(http.StatusInternalServerError, "could not render PDF")
		return
	}
	attachment(c, filename)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

func (s *Server) sendText(c *gin.Context, r report.Report, filename string) {
	if r.Empty() {
		nothingYet(c)
		return
	}
	var buf bytes.Buffer
	if err := report.WriteText(&buf, r); err != nil {
		s.log.Error("rendering text failed", zap.Error(err))
		c.String(http.StatusInternalServerError, "could not render report")
		return
	}
	attachment(c, filename)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", buf.Bytes())
}

func attachment(c *gin.Context, filename string) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
}

func nothingYet(c *gin.Context) {
	c.String(http.StatusNotFound, "nothing to download yet")
}

func readUpload(fh *multipart.FileHeader, max int64) ([]byte, error) {
	if max > 0 && fh.Size > max {
		return nil, convert.ErrTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("opening upload: %w", err)
	}
	defer f.Close()
	return io.ReadAll(f)
}

// uploadError explains a failure to parse the multipart form.
func (s *Server) uploadError(err error) string {
	if errors.Is(err, http.ErrMissingFile) {
		return "Please choose a PDF file to upload."
	}
	return "Could not read the upload: " + s.message(err)
}

func (s *Server) failure(name string, err error) string {
	return fmt.Sprintf("Could not process %s: %s", name, s.message(err))
}

// message turns known errors into short explanations.
func (s *Server) message(err error) string {
	var tooBig *http.MaxBytesError
	switch {
	case errors.As(err, &tooBig), errors.Is(err, convert.ErrTooLarge):
		return fmt.Sprintf("the file exceeds the %d MB upload limit.", s.cfg.Extraction.MaxUploadBytes>>20)
	case errors.Is(err, convert.ErrNoText):
		return "no text could be extracted. Scanned or image-only PDFs are not supported."
	case errors.Is(err, convert.ErrUnreadablePDF):
		return "the file could not be read as a PDF."
	case errors.Is(err, context.Canceled):
		return "the request was cancelled."
	}
	return err.Error()
}
