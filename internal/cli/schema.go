package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdSchema(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:  "schema",
		Usage: "Inspect or extend the Notion contacts database",
		Commands: []*cli.Command{
			cmdSchemaValidate(rt),
			cmdSchemaSetup(rt),
		},
	}
}

func cmdSchemaValidate(rt *runtime) *cli.Command {
	var account accountFlags

	return &cli.Command{
		Name:  "validate",
		Usage: "Report missing or mistyped properties",
		Flags: account.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			s, closer, err := rt.openSession(ctx, &account)
			if err != nil {
				return err
			}
			defer closer()

			report, err := s.Schema.ValidateSchema(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to read database schema")
			}

			fmt.Fprintf(rt.out, "Database: %s\n", report.Title)
			if len(report.Missing) > 0 {
				fmt.Fprintf(rt.out, "Missing required: %s\n", strings.Join(report.Missing, ", "))
			}
			if len(report.MissingOptional) > 0 {
				fmt.Fprintf(rt.out, "Missing optional: %s\n", strings.Join(report.MissingOptional, ", "))
			}
			for _, m := range report.Mismatches {
				fmt.Fprintf(rt.out, "Type mismatch: %+v\n", m)
			}
			if !report.Valid() {
				return goerr.New("database schema is incomplete; run `enricher schema setup`")
			}
			fmt.Fprintln(rt.out, "Schema is valid")
			return nil
		},
	}
}

func cmdSchemaSetup(rt *runtime) *cli.Command {
	var (
		account         accountFlags
		includeOptional bool
	)

	return &cli.Command{
		Name:  "setup",
		Usage: "Add the missing properties to the database",
		Flags: append(account.Flags(), &cli.BoolFlag{
			Name:        "optional",
			Usage:       "also add optional properties",
			Destination: &includeOptional,
		}),
		Action: func(ctx context.Context, c *cli.Command) error {
			s, closer, err := rt.openSession(ctx, &account)
			if err != nil {
				return err
			}
			defer closer()

			result, err := s.Schema.SetupSchema(ctx, includeOptional)
			if err != nil {
				return goerr.Wrap(err, "failed to update database schema")
			}
			fmt.Fprintln(rt.out, result.Message)
			if len(result.Manual) > 0 {
				fmt.Fprintf(rt.out, "Add manually: %s\n", strings.Join(result.Manual, ", "))
			}
			if !result.Complete() {
				return goerr.New("some properties could not be added", goerr.V("failed", result.Failed))
			}
			return nil
		},
	}
}
