/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Seednode/triviabox/trivia"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	bind           string
	maxAttempts    int
	maxPlayers     int
	minPlayers     int
	origins        []string
	points         int
	port           int
	prefix         string
	profile        bool
	sessionTimeout time.Duration
	timeLimit      time.Duration
	tlsCert        string
	tlsKey         string
	verbose        bool
	version        bool
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.timeLimit < time.Second || c.timeLimit%time.Second != 0 {
		return fmt.Errorf("invalid time limit (must be a whole number of seconds, at least 1s): %s", c.timeLimit)
	}
	if c.minPlayers < 1 {
		return fmt.Errorf("invalid minimum players (must be at least 1): %d", c.minPlayers)
	}
	if c.maxPlayers < c.minPlayers {
		return fmt.Errorf("invalid maximum players (must be at least --min-players=%d): %d", c.minPlayers, c.maxPlayers)
	}
	if c.maxAttempts < 1 {
		return fmt.Errorf("invalid maximum attempts (must be at least 1): %d", c.maxAttempts)
	}
	if c.sessionTimeout < 0 {
		return fmt.Errorf("invalid session timeout (must not be negative): %s", c.sessionTimeout)
	}
	if c.points < 0 {
		return fmt.Errorf("invalid points (must not be negative): %d", c.points)
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

func (c *Config) settings() trivia.Settings {
	return trivia.Settings{
		MaxPlayers:  c.maxPlayers,
		MinPlayers:  c.minPlayers,
		MaxAttempts: c.maxAttempts,
		Points:      c.points,
		TimeLimit:   int(c.timeLimit / time.Second),
	}
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("TRIVIABOX")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "triviabox",
		Short:         "A real-time multiplayer trivia room with a rotating game master.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			setupLogging(cfg)
			return ServePage(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	defaults := trivia.DefaultSettings()

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: TRIVIABOX_BIND)")
	fs.IntVar(&cfg.maxAttempts, "max-attempts", defaults.MaxAttempts, "guesses each player gets per round (env: TRIVIABOX_MAX_ATTEMPTS)")
	fs.IntVar(&cfg.maxPlayers, "max-players", defaults.MaxPlayers, "maximum players per room (env: TRIVIABOX_MAX_PLAYERS)")
	fs.IntVar(&cfg.minPlayers, "min-players", defaults.MinPlayers, "players required to start a round (env: TRIVIABOX_MIN_PLAYERS)")
	fs.StringSliceVar(&cfg.origins, "origins", nil, "allowed cross-origin hosts, or * for any (env: TRIVIABOX_ORIGINS)")
	fs.IntVar(&cfg.points, "points", defaults.Points, "points awarded for a correct answer (env: TRIVIABOX_POINTS)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: TRIVIABOX_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: TRIVIABOX_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: TRIVIABOX_PROFILE)")
	fs.DurationVar(&cfg.sessionTimeout, "session-timeout", 60*time.Minute, "time before idle rooms are closed (env: TRIVIABOX_SESSION_TIMEOUT)")
	fs.DurationVar(&cfg.timeLimit, "time-limit", time.Duration(defaults.TimeLimit)*time.Second, "time players have to answer each question (env: TRIVIABOX_TIME_LIMIT)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: TRIVIABOX_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: TRIVIABOX_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: TRIVIABOX_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: TRIVIABOX_VERSION)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("triviabox v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
