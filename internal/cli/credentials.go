package cli

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/octobees/contact-enricher/internal/app"
	"github.com/octobees/contact-enricher/internal/entity"
	"github.com/octobees/contact-enricher/internal/service/batch"
	"github.com/octobees/contact-enricher/internal/service/session"
)

// accountFlags selects a stored account instead of keys from the environment.
type accountFlags struct {
	email    string
	password string
}

func (f *accountFlags) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "email",
			Usage:       "use the keys stored for this account",
			Sources:     cli.EnvVars("ENRICHER_EMAIL"),
			Destination: &f.email,
		},
		&cli.StringFlag{
			Name:        "password",
			Usage:       "password of the stored account",
			Sources:     cli.EnvVars("ENRICHER_PASSWORD"),
			Destination: &f.password,
		},
	}
}

func (f *accountFlags) stored() bool {
	return f.email != ""
}

// openSession resolves credentials and opens a session. The returned closer releases the app.
func (rt *runtime) openSession(ctx context.Context, account *accountFlags, extra ...batch.Option) (*session.Session, func(), error) {
	a, err := app.New(ctx, rt.cfg, rt.logger, app.Options{SkipStore: !account.stored()})
	if err != nil {
		return nil, nil, err
	}
	closer := func() {
		if err := a.Close(); err != nil {
			rt.logger.Warn("failed to close resources", "error", err)
		}
	}

	creds, err := rt.credentials(ctx, a, account)
	if err != nil {
		closer()
		return nil, nil, err
	}
	s, err := a.Sessions.Open(ctx, *creds, extra...)
	if err != nil {
		closer()
		return nil, nil, err
	}
	return s, func() {
		if err := s.Close(); err != nil {
			rt.logger.Warn("failed to close session", "error", err)
		}
		closer()
	}, nil
}

func (rt *runtime) credentials(ctx context.Context, a *app.App, account *accountFlags) (*entity.ProviderCredentials, error) {
	if !account.stored() {
		creds := app.EnvCredentials(rt.cfg)
		if creds.ApolloKey == "" || creds.NotionToken == "" || creds.NotionDatabaseID == "" {
			return nil, errors.New("APOLLO_API_KEY, NOTION_TOKEN and NOTION_DATABASE_ID are required without --email")
		}
		return &creds, nil
	}
	if account.password == "" {
		return nil, errors.New("--password is required with --email")
	}
	creds, err := a.Vault.Login(ctx, account.email, account.password)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to sign in", goerr.V("email", account.email))
	}
	return creds, nil
}
