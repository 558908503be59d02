package cli

import (
	"github.com/smallbiznis/sevadesk/internal/scheduler"
	"github.com/smallbiznis/sevadesk/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

// NewServeCmd starts the HTTP API and the report scheduler.
func NewServeCmd(run func() error) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the monthly report scheduler",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}
}

func runServe() error {
	app := fx.New(
		coreModules(),
		server.Module,
		scheduler.Module,
	)
	if err := app.Err(); err != nil {
		return err
	}
	app.Run()
	return nil
}
