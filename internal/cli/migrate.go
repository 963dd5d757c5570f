package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/octobees/contact-enricher/internal/app"
	"github.com/octobees/contact-enricher/internal/service/vault"
)

func cmdMigrate(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply pending credential-store migrations",
		Action: func(ctx context.Context, c *cli.Command) error {
			a, err := app.New(ctx, rt.cfg, rt.logger, app.Options{})
			if err != nil {
				return err
			}
			defer a.Close()
			rt.logger.Info("migrations up to date")
			return nil
		},
	}
}

func cmdKeygen(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:  "keygen",
		Usage: "Print a new ENCRYPTION_KEY",
		Action: func(ctx context.Context, c *cli.Command) error {
			key, err := vault.GenerateKey()
			if err != nil {
				return err
			}
			fmt.Fprintln(rt.out, key)
			return nil
		},
	}
}
