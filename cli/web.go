// ABOUTME: Web UI CLI command
// ABOUTME: Serves the dashboard over HTTP until interrupted
package cli

import (
	"context"
	"flag"

	"github.com/harperreed/torque/web"
)

func WebCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("web", flag.ExitOnError)
	port := fs.Int("port", app.Config.WebPort, "Port to listen on")
	_ = fs.Parse(args)

	server, err := web.NewServer(web.Deps{
		DB:        app.DB,
		Session:   app.Session,
		Provider:  app.Auth,
		Directory: app.Config.Directory,
		Logger:    app.Logger,
	})
	if err != nil {
		return err
	}

	return server.Start(ctx, *port)
}
