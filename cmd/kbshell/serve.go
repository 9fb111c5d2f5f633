package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/iyunix/go-kbshell/internal/domain"
	"github.com/iyunix/go-kbshell/internal/ratelimit"
	"github.com/iyunix/go-kbshell/internal/server"
	"github.com/iyunix/go-kbshell/internal/session"
)

func newServeCmd(a *app) *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web shell",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			store, closeStore, err := a.openStore()
			if err != nil {
				return err
			}
			defer func() {
				if err := closeStore(); err != nil {
					a.logger.Error("closing history database", "error", err)
				}
			}()
			unsubscribe := store.Subscribe(func(chats []domain.ChatItem) {
				a.logger.Debug("chat history changed", "count", len(chats))
			})
			defer unsubscribe()

			docs, err := a.docsClient()
			if err != nil {
				return err
			}

			backendClient := a.backendClient()
			probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			if st, _ := backendClient.Health(probeCtx); !st.Healthy {
				a.logger.Warn("knowledge-base backend is not healthy", "url", st.URL, "code", st.Code, "error", st.Error)
			}
			cancel()

			limiterCfg := ratelimit.DefaultMutationConfig()
			limiterCfg.TrustedProxies = a.cfg.TrustedProxies
			limiter := ratelimit.NewLimiter(limiterCfg)
			defer limiter.Close()

			h, err := server.NewRouter(server.Deps{
				Config:    a.cfg,
				Logger:    a.logger,
				Store:     store,
				Docs:      docs,
				Backend:   backendClient,
				Validator: session.NewValidator(a.cfg.JWTSecretKey),
				Limiter:   limiter,
			})
			if err != nil {
				return errors.Wrap(err, "building router")
			}

			if port == "" {
				port = a.cfg.ServerPort
			}
			return server.Run(ctx, ":"+port, h, a.logger)
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "port to listen on (defaults to SERVER_PORT)")
	return cmd
}
