package cmd

import (
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizadapt/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the quiz API over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		svc, err := openService(cmd, st)
		if err != nil {
			return err
		}

		cfg := server.DefaultConfig()
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Addr = addr
		}
		if origins, _ := cmd.Flags().GetString("origins"); origins != "" {
			cfg.AllowOrigins = strings.Split(origins, ",")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return server.New(svc, cfg).Run(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default :8080)")
	serveCmd.Flags().String("origins", "", "Comma-separated CORS origins, empty for the defaults")
}
