package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/octobees/contact-enricher/internal/app"
	"github.com/octobees/contact-enricher/internal/service/vault"
)

func cmdUser(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:  "user",
		Usage: "Manage stored accounts",
		Commands: []*cli.Command{
			cmdUserRegister(rt),
			cmdUserDelete(rt),
		},
	}
}

func cmdUserRegister(rt *runtime) *cli.Command {
	var (
		account accountFlags
		in      vault.RegisterInput
	)

	return &cli.Command{
		Name:  "register",
		Usage: "Store an account with the keys currently in the environment",
		Flags: append(account.Flags(), &cli.StringFlag{
			Name:        "ai-provider",
			Usage:       "openai or gemini (defaults to AI_PROVIDER)",
			Destination: &in.AIProvider,
		}),
		Action: func(ctx context.Context, c *cli.Command) error {
			if in.AIProvider == "" {
				in.AIProvider = rt.cfg.AI.Provider
			}
			cfg := *rt.cfg
			cfg.AI.Provider = in.AIProvider
			creds := app.EnvCredentials(&cfg)

			in.Email = account.email
			in.Password = account.password
			in.ApolloKey = creds.ApolloKey
			in.NotionToken = creds.NotionToken
			in.NotionDatabaseID = creds.NotionDatabaseID
			in.AIKey = creds.AIKey

			a, err := app.New(ctx, rt.cfg, rt.logger, app.Options{})
			if err != nil {
				return err
			}
			defer a.Close()

			cred, err := a.Vault.Register(ctx, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(rt.out, "Registered %s (%s)\n", cred.Email, cred.ID)
			return nil
		},
	}
}

func cmdUserDelete(rt *runtime) *cli.Command {
	var account accountFlags

	return &cli.Command{
		Name:  "delete",
		Usage: "Delete a stored account after verifying its password",
		Flags: account.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			if !account.stored() {
				return errors.New("--email and --password are required")
			}
			a, err := app.New(ctx, rt.cfg, rt.logger, app.Options{})
			if err != nil {
				return err
			}
			defer a.Close()

			creds, err := rt.credentials(ctx, a, &account)
			if err != nil {
				return err
			}
			if err := a.Vault.DeleteAccount(ctx, creds.UserID); err != nil {
				return err
			}
			fmt.Fprintf(rt.out, "Deleted %s\n", creds.Email)
			return nil
		},
	}
}
