// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package web

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/session"
)

const sessionKey = "session"

// multipartOverhead covers form fields and part headers on top of the
// file payloads.
const multipartOverhead = 1 << 20

// requestLogger logs each request using zap.
func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		)
	}
}

// withSession loads the caller's session, or starts a new one and sets the
// cookie. A store failure starts a fresh session rather than failing the
// request.
func (s *Server) withSession(c *gin.Context) {
	name := s.cfg.Session.CookieName
	var sess *session.Session

	if id, err := c.Cookie(name); err == nil && session.ValidID(id) {
		loaded, err := s.store.Load(c.Request.Context(), id)
		switch {
		case err == nil:
			sess = loaded
		case !errors.Is(err, session.ErrNotFound):
			s.log.Warn("session load failed", zap.String("session", id), zap.Error(err))
		}
	}

	if sess == nil {
		sess = session.New()
		s.setSessionCookie(c, sess.ID)
	}

	c.Set(sessionKey, sess)
	c.Next()
}

// setSessionCookie issues the cookie with a full TTL. Every save calls it so
// the browser expiry slides with the store's.
func (s *Server) setSessionCookie(c *gin.Context, id string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.cfg.Session.CookieName, id, int(s.cfg.Session.TTL.Seconds()), "/", "", !s.cfg.Server.IsDev(), true)
}

func sessionFrom(c *gin.Context) *session.Session {
	return c.MustGet(sessionKey).(*session.Session)
}

func (s *Server) save(c *gin.Context, sess *session.Session) error {
	sess.UpdatedAt = time.Now().UTC()
	if err := s.store.Save(c.Request.Context(), sess); err != nil {
		s.log.Error("session save failed", zap.String("session", sess.ID), zap.Error(err))
		return err
	}
	s.setSessionCookie(c, sess.ID)
	return nil
}

// limitBody caps the request body at files uploads of the configured size.
// Zero MaxUploadBytes leaves the body unbounded.
func (s *Server) limitBody(files int) gin.HandlerFunc {
	max := s.cfg.Extraction.MaxUploadBytes
	return func(c *gin.Context) {
		if max > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, int64(files)*max+multipartOverhead)
		}
		c.Next()
	}
}
