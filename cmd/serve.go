package cmd

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"emotion-panel/api"
	"emotion-panel/document"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and websocket backend for the overlay panel",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		p, st, s, err := openPanel(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		docs := document.NewManager()
		srv := &http.Server{
			Addr:    s.Server.Addr,
			Handler: api.RegisterRoutes(p, docs),
		}

		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			for _, d := range docs.List() {
				docs.Close(d.ID)
				p.Detach(d.ID)
			}
			srv.Shutdown(shutdownCtx) //nolint:errcheck
		}()

		log.Printf("emotion-panel listening on %s (store: %s)", s.Server.Addr, s.Store.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :8080)")
	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	rootCmd.AddCommand(serveCmd)
}
