package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/octobees/contact-enricher/internal/service/strategy"
)

func cmdStrategy(rt *runtime) *cli.Command {
	var (
		account  accountFlags
		goal     string
		industry string
		jsonOut  bool
	)

	return &cli.Command{
		Name:  "strategy",
		Usage: "Preview the titles and seniorities generated for an outreach goal",
		Flags: append(account.Flags(),
			&cli.StringFlag{
				Name:        "goal",
				Usage:       "what you are trying to sell or achieve",
				Required:    true,
				Destination: &goal,
			},
			&cli.StringFlag{
				Name:        "industry",
				Usage:       "industry of the target companies",
				Destination: &industry,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print the strategy as JSON",
				Destination: &jsonOut,
			},
		),
		Action: func(ctx context.Context, c *cli.Command) error {
			s, closer, err := rt.openSession(ctx, &account)
			if err != nil {
				return err
			}
			defer closer()
			if s.Strategist == nil {
				return strategy.ErrNoAIKey
			}

			result, err := s.Strategist.Generate(ctx, goal, industry)
			if err != nil {
				return goerr.Wrap(err, "failed to generate strategy")
			}
			if jsonOut {
				return writeJSON(rt.out, result)
			}

			seniorities := make([]string, len(result.Seniorities))
			for i, level := range result.Seniorities {
				seniorities[i] = string(level)
			}
			fmt.Fprintf(rt.out, "Model:       %s\n", s.Strategist.Model())
			fmt.Fprintf(rt.out, "Titles:      %s\n", strings.Join(result.Titles, ", "))
			fmt.Fprintf(rt.out, "Seniorities: %s\n", strings.Join(seniorities, ", "))
			if len(result.Locations) > 0 {
				fmt.Fprintf(rt.out, "Locations:   %s\n", strings.Join(result.Locations, ", "))
			}
			if result.Explanation != "" {
				fmt.Fprintf(rt.out, "\n%s\n", result.Explanation)
			}
			return nil
		},
	}
}
