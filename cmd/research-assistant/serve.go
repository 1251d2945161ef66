// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/session"
	"github.com/pdiddy/research-assistant/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web UI",
	Long: `Serve starts the web UI. The single-paper page summarizes the sections
of one uploaded PDF and answers a research question; the review page
summarizes up to five PDFs and synthesizes a literature review.

Session state is kept in memory (or Redis with session.backend=redis) and
expires after session.ttl. Stop with Ctrl-C.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :8501)")
	serveCmd.Flags().String("env", "", "development or production")
	serveCmd.Flags().String("session-backend", "", "session store: memory or redis")

	mustBind := func(key, flag string) {
		if err := viper.BindPFlag(key, serveCmd.Flags().Lookup(flag)); err != nil {
			panic(err)
		}
	}
	mustBind("server.addr", "addr")
	mustBind("server.env", "env")
	mustBind("session.backend", "session-backend")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	p, err := newPipeline()
	if err != nil {
		return err
	}
	defer p.log.Sync()

	if p.cfg.Server.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := cmd.Context()
	store, err := session.NewStore(ctx, p.cfg.Session)
	if err != nil {
		return err
	}

	srv, err := web.New(web.Deps{
		Config:     p.cfg,
		Store:      store,
		Extractor:  p.extractor,
		Summarizer: p.summarizer,
		Reviewer:   p.reviewer,
		Logger:     p.log,
	})
	if err != nil {
		return err
	}

	p.log.Info("starting research assistant",
		zap.String("version", version),
		zap.String("provider", string(p.cfg.AI.Provider)),
		zap.String("model", p.cfg.AI.Model),
		zap.String("sessions", string(p.cfg.Session.Backend)),
	)
	return srv.ListenAndServe(ctx)
}
