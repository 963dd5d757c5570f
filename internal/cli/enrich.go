package cli

import (
	"context"
	"io"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/octobees/contact-enricher/internal/service/batch"
)

func cmdEnrich(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:  "enrich",
		Usage: "Run a CSV batch through the provider and into Notion",
		Commands: []*cli.Command{
			cmdEnrichContacts(rt),
			cmdEnrichCompanies(rt),
		},
	}
}

type batchFlags struct {
	file    string
	goal    string
	jsonOut bool
}

func (f *batchFlags) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "file",
			Aliases:     []string{"f"},
			Usage:       "CSV file to process",
			Required:    true,
			Destination: &f.file,
		},
		&cli.StringFlag{
			Name:        "goal",
			Usage:       "outreach goal written with each contact",
			Destination: &f.goal,
		},
		&cli.BoolFlag{
			Name:        "json",
			Usage:       "print the full report as JSON",
			Destination: &f.jsonOut,
		},
	}
}

func cmdEnrichContacts(rt *runtime) *cli.Command {
	var (
		account accountFlags
		flags   batchFlags
	)

	return &cli.Command{
		Name:  "contacts",
		Usage: "Resolve rows with linkedin_url, email, person_name or company_name columns",
		Flags: append(flags.Flags(), account.Flags()...),
		Action: func(ctx context.Context, c *cli.Command) error {
			rows, err := readCSV(flags.file, batch.ParseContacts)
			if err != nil {
				return err
			}

			s, closer, err := rt.openSession(ctx, &account, batch.WithProgress(progressPrinter(rt.errOut)))
			if err != nil {
				return err
			}
			defer closer()

			rt.logger.Info("processing contacts", "file", flags.file, "rows", len(rows))
			report := s.Runner.ProcessContacts(ctx, s.NewBatch(len(rows)), rows, batch.ContactOptions{Goal: flags.goal})
			return rt.writeReport(report, flags.jsonOut)
		},
	}
}

func cmdEnrichCompanies(rt *runtime) *cli.Command {
	var (
		account  accountFlags
		flags    batchFlags
		industry string
		limit    int
	)

	cmdFlags := append(flags.Flags(), account.Flags()...)
	cmdFlags = append(cmdFlags,
		&cli.StringFlag{
			Name:        "industry",
			Usage:       "industry hint for the targeting strategy",
			Destination: &industry,
		},
		&cli.IntFlag{
			Name:        "limit",
			Usage:       "people to fetch per company (defaults to PEOPLE_PER_COMPANY)",
			Destination: &limit,
		},
	)

	return &cli.Command{
		Name:  "companies",
		Usage: "Find decision makers for every company_name in the file",
		Flags: cmdFlags,
		Action: func(ctx context.Context, c *cli.Command) error {
			names, err := readCSV(flags.file, batch.ParseCompanies)
			if err != nil {
				return err
			}

			s, closer, err := rt.openSession(ctx, &account, batch.WithProgress(progressPrinter(rt.errOut)))
			if err != nil {
				return err
			}
			defer closer()

			if limit <= 0 {
				limit = s.PeopleCap
			}
			if flags.goal != "" && s.Strategist == nil {
				rt.logger.Warn("no AI key configured; using default titles", "goal", flags.goal)
			}

			rt.logger.Info("processing companies", "file", flags.file, "companies", len(names), "limit", limit)
			report, err := s.Runner.ProcessCompanies(ctx, s.NewBatch(len(names)), names, batch.CompanyOptions{
				Goal:     flags.goal,
				Industry: industry,
				Limit:    limit,
			})
			if err != nil {
				return goerr.Wrap(err, "failed to generate targeting strategy")
			}
			return rt.writeReport(report, flags.jsonOut)
		},
	}
}

func readCSV[T any](path string, parse func(io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		return zero, goerr.Wrap(err, "failed to open csv", goerr.V("path", path))
	}
	defer f.Close()
	out, err := parse(f)
	if err != nil {
		return zero, goerr.Wrap(err, "failed to parse csv", goerr.V("path", path))
	}
	return out, nil
}

func (rt *runtime) writeReport(report batch.Report, asJSON bool) error {
	if asJSON {
		return writeJSON(rt.out, report)
	}
	writeSummary(rt.out, report)
	return nil
}
