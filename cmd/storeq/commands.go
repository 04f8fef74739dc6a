package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/sngm3741/store-directory/api/internal/config"
	"github.com/sngm3741/store-directory/api/internal/graphql"
	"github.com/sngm3741/store-directory/api/internal/public/application"
	"github.com/sngm3741/store-directory/api/internal/public/domain"
)

type cliOptions struct {
	execute  bool
	endpoint string
	timeout  time.Duration
	verbose  bool
}

// cli holds the single builder shared by every request a process emits.
type cli struct {
	out     io.Writer
	opts    cliOptions
	builder *application.StoreQueryBuilder
	schema  *graphql.Schema
}

func rootCmd(out io.Writer) *cobra.Command {
	c := &cli{out: out, builder: application.NewStoreQueryBuilder()}

	cmd := &cobra.Command{
		Use:           "storeq",
		Short:         "Build and run store API queries",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			schema, err := graphql.LoadStoreSchema()
			if err != nil {
				return err
			}
			c.schema = schema
			return nil
		},
	}

	endpoint := os.Getenv("STORE_API_URL")
	if endpoint == "" {
		endpoint = "http://localhost:4000/graphql"
	}
	cmd.PersistentFlags().BoolVar(&c.opts.execute, "execute", false, "send the requests to the store API and print the data")
	cmd.PersistentFlags().StringVar(&c.opts.endpoint, "endpoint", endpoint, "store API GraphQL endpoint")
	cmd.PersistentFlags().DurationVar(&c.opts.timeout, "timeout", 5*time.Second, "per-request timeout")
	cmd.PersistentFlags().BoolVarP(&c.opts.verbose, "verbose", "v", false, "log retries and failures")

	cmd.AddCommand(c.allCmd(), c.featuredCmd(), c.storeCmd(), c.searchCmd())
	return cmd
}

func (c *cli) allCmd() *cobra.Command {
	var pages int
	cmd := &cobra.Command{
		Use:   "all",
		Short: "Page through every store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if pages < 1 {
				return fmt.Errorf("--pages must be at least 1")
			}
			for i := 0; i < pages; i++ {
				if err := c.emit(cmd.Context(), c.builder.GetAll()); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&pages, "pages", 1, "number of pages to request")
	return cmd
}

func (c *cli) featuredCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "featured",
		Short: "List featured stores",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.emit(cmd.Context(), c.builder.GetAllFeatured())
		},
	}
}

func (c *cli) storeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "store <uri>",
		Short: "Fetch one store by URI",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := c.builder.GetStore(args[0])
			if err != nil {
				return err
			}
			return c.emit(cmd.Context(), req)
		},
	}
}

func (c *cli) searchCmd() *cobra.Command {
	var (
		kind     string
		category string
		lang     string
		from404  bool
	)
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Find stores serving a menu item",
		RunE: func(cmd *cobra.Command, _ []string) error {
			item, err := domain.NewMenuItem(kind, category)
			if err != nil {
				return fmt.Errorf("%w: %v", application.ErrInvalidArgument, err)
			}
			req, err := c.builder.GetAllByMenuItem(item, lang, application.FromNotFound(from404))
			if err != nil {
				return err
			}
			return c.emit(cmd.Context(), req)
		},
	}
	cmd.Flags().StringVar(&kind, "type", "", "menu item type (food|drink)")
	cmd.Flags().StringVar(&category, "category", "", "menu item category")
	cmd.Flags().StringVar(&lang, "lang", "en", "content language (en|es|it)")
	cmd.Flags().BoolVar(&from404, "from404", false, "mark the search as started from the not-found page")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

// emit validates req and either prints it or runs it and prints the response data.
func (c *cli) emit(ctx context.Context, req graphql.Request) error {
	if err := c.schema.Validate(req); err != nil {
		return err
	}

	if !c.opts.execute {
		return c.print(req)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, c.opts.timeout)
	defer cancel()

	level := zapcore.WarnLevel
	if !c.opts.verbose {
		level = zapcore.FatalLevel
	}
	client := graphql.NewClient(graphql.ClientConfig{
		Endpoint:   strings.TrimSpace(c.opts.endpoint),
		HTTPClient: &http.Client{Timeout: c.opts.timeout},
		Logger:     config.NewLogger(level),
	})
	var data map[string]any
	if err := client.ExecuteInto(ctx, req, &data); err != nil {
		return err
	}
	return c.print(data)
}

func (c *cli) print(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
