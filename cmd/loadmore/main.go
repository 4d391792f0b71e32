package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/Sternrassler/loadmore/internal/config"
	"github.com/Sternrassler/loadmore/pkg/client"
	"github.com/Sternrassler/loadmore/pkg/ledger"
	"github.com/Sternrassler/loadmore/pkg/logging"
	"github.com/Sternrassler/loadmore/pkg/pagination"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"
)

var longHelp = strings.TrimSpace(`
Expand "load more" listings headlessly.

loadmore fetches a listing page and keeps loading the next pages the way a
reader scrolling to the bottom would, then prints the whole listing as
HTML or Markdown. Configure via file, env (LOADMORE_*), or flags.
`)

var exampleUsage = strings.TrimSpace(`
  loadmore expand https://example.com/blog/ --max-pages 10
  loadmore expand https://example.com/blog/ --format markdown --out blog.md
  loadmore serve --addr :8080 --redis-addr localhost:6379
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// app carries the resolved configuration shared by all subcommands.
type app struct {
	cfg     config.Config
	cfgPath string
	logger  zerolog.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{cfg: config.Default()}

	root := &cobra.Command{
		Use:          "loadmore",
		Short:        "Expand load-more listings headlessly",
		Long:         longHelp,
		Example:      exampleUsage,
		Version:      fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&a.cfgPath, "config", "", "config file (default $HOME/.loadmore/config.toml)")
	f.StringVar(&a.cfg.UserAgent, "user-agent", a.cfg.UserAgent, "User-Agent sent with every request")
	f.DurationVar(&a.cfg.HTTPTimeout, "timeout", a.cfg.HTTPTimeout, "HTTP request timeout")
	f.IntVar(&a.cfg.MaxPages, "max-pages", a.cfg.MaxPages, "max pages appended per listing (0 = no cap)")
	f.IntVar(&a.cfg.MaxConcurrency, "concurrency", a.cfg.MaxConcurrency, "listings expanded in parallel")
	f.DurationVar(&a.cfg.PageTimeout, "page-timeout", a.cfg.PageTimeout, "time limit for one listing expansion")
	f.StringVar(&a.cfg.RedisAddr, "redis-addr", a.cfg.RedisAddr, "Redis address for the page ledger (empty = in memory)")
	f.DurationVar(&a.cfg.SessionTTL, "session-ttl", a.cfg.SessionTTL, "lifetime of a Redis ledger session")
	f.BoolVar(&a.cfg.Sanitize, "sanitize", a.cfg.Sanitize, "sanitize loaded fragments")
	f.StringVar(&a.cfg.LogLevel, "log-level", a.cfg.LogLevel, "log level (debug, info, warn, error, disabled)")
	f.BoolVar(&a.cfg.LogPretty, "log-pretty", a.cfg.LogPretty, "human-readable console logs")
	f.StringVar(&a.cfg.Selectors.Anchor, "selector-anchor", a.cfg.Selectors.Anchor, "CSS selector of the load-more anchor")
	f.StringVar(&a.cfg.Selectors.Listing, "selector-listing", a.cfg.Selectors.Listing, "CSS selector of the listing block")
	f.StringVar(&a.cfg.Selectors.Container, "selector-container", a.cfg.Selectors.Container, "CSS selector of the post container")
	f.StringVar(&a.cfg.Selectors.Loader, "selector-loader", a.cfg.Selectors.Loader, "CSS selector of the infinite-scroll loader")

	root.AddCommand(newExpandCommand(a), newServeCommand(a))
	return root
}

// load resolves the configuration: defaults < file < env < flags.
func (a *app) load(cmd *cobra.Command) error {
	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	cfgFile := a.cfgPath
	if cfgFile == "" {
		cfgFile = config.DefaultPath()
	}
	if cfgFile != "" && config.FileExists(cfgFile) {
		fc, err := config.LoadFile(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := config.ApplyFile(&a.cfg, fc, changed); err != nil {
			return err
		}
	}

	if err := config.ApplyEnv(&a.cfg, changed); err != nil {
		return err
	}
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	a.logger = logging.Setup(a.cfg.Logging())
	a.logger.Debug().Interface("config", a.cfg).Msg("configuration")
	return nil
}

func (a *app) newClient() (*client.Client, error) {
	cfg := client.DefaultConfig(a.cfg.UserAgent)
	cfg.Timeout = a.cfg.HTTPTimeout

	c, err := client.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	c.SetLogger(logging.NewLogger("client"))
	return c, nil
}

// newRedis returns nil when no Redis address is configured.
func (a *app) newRedis() *redis.Client {
	if a.cfg.RedisAddr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{Addr: a.cfg.RedisAddr})
}

func (a *app) newScroller(fetcher *client.Client, rdb *redis.Client) *pagination.Scroller {
	opts := []pagination.Option{
		pagination.WithSelectors(a.cfg.Selectors),
		pagination.WithLogger(logging.NewLogger("scroller")),
	}

	if a.cfg.Sanitize {
		opts = append(opts, pagination.WithSanitizer(bluemonday.UGCPolicy()))
	}

	if rdb != nil {
		ttl := a.cfg.SessionTTL
		logger := logging.NewLogger("ledger")
		opts = append(opts, pagination.WithLedgerFactory(func(string) ledger.Ledger {
			return ledger.NewRedis(rdb, uuid.NewString(), ttl, logger)
		}))
	}

	return pagination.NewScroller(fetcher, a.cfg.Scroller(), opts...)
}
