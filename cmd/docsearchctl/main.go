package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/gitdocs/docsearch"
	logpkg "github.com/gitdocs/docsearch/internal/logger"
	"github.com/gitdocs/docsearch/internal/version"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:    "docsearchctl",
		Usage:   "Query the documentation search index from the command line",
		Version: version.String(),
		Writer:  out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
			&cli.StringFlag{
				Name:    "driver",
				Usage:   "Search backend (elastic, redis, memory)",
				Value:   "elastic",
				EnvVars: []string{"SEARCH_DRIVER"},
			},
			&cli.StringSliceFlag{
				Name:    "addr",
				Aliases: []string{"a"},
				Usage:   "Backend address; repeat for several Elasticsearch nodes",
				EnvVars: []string{"SEARCH_ADDR"},
			},
			&cli.StringFlag{
				Name:    "username",
				Usage:   "Backend username",
				EnvVars: []string{"SEARCH_USERNAME"},
			},
			&cli.StringFlag{
				Name:    "password",
				Usage:   "Backend password",
				EnvVars: []string{"SEARCH_PASSWORD"},
			},
			&cli.StringFlag{
				Name:    "index",
				Aliases: []string{"i"},
				Usage:   "Index name",
				Value:   "docsearch",
				EnvVars: []string{"SEARCH_INDEX"},
			},
			&cli.StringFlag{
				Name:  "fixtures",
				Usage: "JSON fixture file for the memory driver",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Per-search timeout",
				Value: 5 * time.Second,
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "query",
				Usage:     "Search and print the result envelopes as JSON",
				ArgsUsage: "<keywords...>",
				Action:    queryCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "category",
						Aliases: []string{"c"},
						Usage:   "book, reference or all",
						Value:   "all",
					},
					&cli.StringFlag{
						Name:  "lang",
						Usage: "Restrict hits to one locale (e.g. en, pt-BR)",
					},
				},
			},
			{
				Name:      "explain",
				Usage:     "Print the search request body without executing it",
				ArgsUsage: "<keywords...>",
				Action:    explainCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "category",
						Aliases: []string{"c"},
						Usage:   "book or reference",
						Value:   "book",
					},
					&cli.StringFlag{
						Name:  "lang",
						Usage: "Restrict hits to one locale (e.g. en, pt-BR)",
					},
				},
			},
			{
				Name:   "ping",
				Usage:  "Check that the search backend answers",
				Action: pingCommand,
			},
		},
	}
}

func queryCommand(c *cli.Context) error {
	keywords := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(keywords) == "" {
		return fmt.Errorf("keywords are required")
	}

	var cats []docsearch.Category
	if label := c.String("category"); label != "all" {
		cat, ok := docsearch.ParseCategory(label)
		if !ok {
			return fmt.Errorf("unknown category %q", label)
		}
		cats = append(cats, cat)
	}

	client, err := connect(c)
	if err != nil {
		return err
	}
	defer client.Close()

	envs := client.Query(keywords).In(cats...).Lang(c.String("lang")).Do(c.Context)
	return printJSON(c.App.Writer, envs)
}

func explainCommand(c *cli.Context) error {
	keywords := strings.Join(c.Args().Slice(), " ")

	cat, ok := docsearch.ParseCategory(c.String("category"))
	if !ok {
		return fmt.Errorf("unknown category %q", c.String("category"))
	}

	body, err := docsearch.Explain(keywords, cat, &docsearch.SearchOptions{Lang: c.String("lang")})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, string(body))
	return err
}

func pingCommand(c *cli.Context) error {
	client, err := connect(c)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(c.Context, c.Duration("timeout"))
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, "ok")
	return err
}

// connect builds a client from the global flags.
func connect(c *cli.Context) (*docsearch.Client, error) {
	logger, err := logpkg.NewLogger("local", c.String("log-level"))
	if err != nil {
		return nil, err
	}

	opts := []docsearch.Option{
		docsearch.WithIndex(c.String("index")),
		docsearch.WithTimeout(c.Duration("timeout")),
		docsearch.WithLogger(logger),
	}

	addrs := c.StringSlice("addr")
	switch driver := c.String("driver"); driver {
	case "elastic":
		if len(addrs) == 0 {
			addrs = []string{"http://localhost:9200"}
		}
		opts = append(opts, docsearch.WithElastic(addrs...))
	case "redis":
		if len(addrs) == 0 {
			addrs = []string{"localhost:6379"}
		}
		opts = append(opts, docsearch.WithRedis(addrs[0], c.String("password")))
	case "memory":
		var docs []docsearch.Document
		if path := c.String("fixtures"); path != "" {
			docs, err = docsearch.LoadDocuments(path)
			if err != nil {
				return nil, err
			}
		}
		opts = append(opts, docsearch.WithMemory(docs...))
	default:
		return nil, fmt.Errorf("unknown driver %q", driver)
	}
	if u := c.String("username"); u != "" {
		opts = append(opts, docsearch.WithBasicAuth(u, c.String("password")))
	}

	client, err := docsearch.New(c.Context, opts...)
	if err != nil {
		logger.Debug("Connect failed", zap.Error(err))
		return nil, err
	}
	return client, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
