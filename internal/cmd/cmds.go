package cmd

import (
	"fmt"
	"time"

	"github.com/joshemcr2/users-api/internal/cmd/config"
	"github.com/joshemcr2/users-api/internal/db"
	"github.com/urfave/cli/v2"
	"github.com/urfave/cli/v2/altsrc"
)

var Flags = []cli.Flag{
	altsrc.NewStringFlag(&cli.StringFlag{
		Name:    "env",
		Usage:   "Configuration profile (development, production, testing)",
		Aliases: []string{"e"},
	}),
	altsrc.NewStringFlag(&cli.StringFlag{
		Name:    "port",
		Usage:   "Defines the port which server should listen on",
		Aliases: []string{"p"},
	}),
	altsrc.NewStringFlag(&cli.StringFlag{
		Name:  "store",
		Usage: "User store backend (postgres, memory)",
	}),
	altsrc.NewStringFlag(&cli.StringFlag{
		Name:  "database-url",
		Usage: "PostgreSQL connection string",
	}),
	altsrc.NewStringFlag(&cli.StringFlag{
		Name:  "redis-addr",
		Usage: "Redis address used for the response cache",
	}),
	altsrc.NewIntFlag(&cli.IntFlag{
		Name:  "cache-ttl",
		Usage: "Seconds a cached read stays valid",
	}),
	altsrc.NewBoolFlag(&cli.BoolFlag{
		Name:  "no-cache",
		Usage: "Disable the response cache",
	}),
	&cli.StringFlag{
		Name:    "load",
		Usage:   "Load flag values from a YAML file",
		Aliases: []string{"l"},
	},
}

var Commands = []*cli.Command{
	{
		Name:        "start",
		Category:    "run",
		Aliases:     []string{"s"},
		Description: "Starts the server in production mode.",
		Action:      run(config.Production),
		Before:      loadFlags,
		Flags:       Flags,
	},
	{
		Name:        "dev",
		Category:    "run",
		Aliases:     []string{"d"},
		Description: "Starts the server in development mode",
		Action:      run(config.Development),
		Before:      loadFlags,
		Flags:       Flags,
	},
	{
		Name:        "migrate",
		Category:    "store",
		Description: "Applies the database schema and exits",
		Action:      migrate,
		Before:      loadFlags,
		Flags:       Flags,
	},
	{
		Name:        "init",
		Category:    "config",
		Description: "Interactively writes a .env file",
		Action:      initEnv,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "out",
				Usage: "Path of the file to write",
				Value: ".env",
			},
		},
	},
	{
		Name:   "version",
		Action: GetVersion,
	},
}

var loadFlags = altsrc.InitInputSourceWithContext(Flags, altsrc.NewYamlSourceFromFlagFunc("load"))

// shouldn't be here
const Version = "v0.1.0"

func GetVersion(cCtx *cli.Context) error {
	_, err := fmt.Fprintln(cCtx.App.Writer, "users-api version: "+Version)
	return err
}

// loadConfig resolves the configuration for a command: profile defaults,
// then .env and the environment, then flags.
func loadConfig(cCtx *cli.Context, env string) (*config.Config, error) {
	if cCtx.IsSet("env") {
		env = cCtx.String("env")
	}

	c, err := config.LoadFromEnv(env)
	if err != nil {
		return nil, err
	}

	applyFlags(cCtx, c)
	return c, c.Validate()
}

func applyFlags(cCtx *cli.Context, c *config.Config) {
	if cCtx.IsSet("port") {
		c.Server.Port = cCtx.String("port")
	}
	if cCtx.IsSet("store") {
		c.Store.Kind = cCtx.String("store")
	}
	if cCtx.IsSet("database-url") {
		c.Store.DatabaseURL = cCtx.String("database-url")
	}
	if cCtx.IsSet("redis-addr") {
		c.Redis.Addr = cCtx.String("redis-addr")
	}
	if cCtx.IsSet("cache-ttl") {
		c.Cache.TTL = time.Duration(cCtx.Int("cache-ttl")) * time.Second
	}
	if cCtx.Bool("no-cache") {
		c.Cache.Enable = false
	}
}

func migrate(cCtx *cli.Context) error {
	c, err := loadConfig(cCtx, "")
	if err != nil {
		return err
	}

	if c.Store.Kind != config.StorePostgres {
		return fmt.Errorf("migrate: nothing to do for the %s store", c.Store.Kind)
	}

	if err := db.Migrate(c.Store.DatabaseURL); err != nil {
		return err
	}

	_, err = fmt.Fprintln(cCtx.App.Writer, "schema is up to date")
	return err
}
