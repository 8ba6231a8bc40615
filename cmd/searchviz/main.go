package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hrygo/searchviz/internal/profile"
	"github.com/hrygo/searchviz/internal/version"
	"github.com/hrygo/searchviz/plugin/eventclient"
	"github.com/hrygo/searchviz/server"
	"github.com/hrygo/searchviz/store"
	"github.com/hrygo/searchviz/store/db"
)

var rootCmd = &cobra.Command{
	Use:   "searchviz",
	Short: "Live graph of an AutoML search, built from its event stream",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runServe(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the event ingestion and graph server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runServe(cmd.Context())
	},
}

var sendCmd = &cobra.Command{
	Use:   "send [file]",
	Short: "Replay a JSON-lines file of events to a running server",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var input io.Reader = os.Stdin
		if len(args) == 1 && args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			input = f
		}

		client := eventclient.New(eventclient.Config{URL: viper.GetString("url")})
		result, err := client.Replay(cmd.Context(), input, viper.GetDuration("interval"))
		fmt.Fprintf(cmd.OutOrStdout(), "sent %d, skipped %d, failed %d\n", result.Sent, result.Skipped, result.Failed)
		return err
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.GetCurrentVersion(viper.GetString("mode")))
	},
}

func init() {
	viper.SetDefault("mode", "dev")
	viper.SetDefault("driver", "memory")
	viper.SetDefault("port", 3000)
	viper.SetDefault("queue-size", 1024)
	viper.SetDefault("stream-buffer", 256)
	viper.SetDefault("log-level", "info")
	viper.SetDefault("url", "http://localhost:3000/event")

	flags := rootCmd.PersistentFlags()
	flags.String("mode", "dev", `mode of server, can be "prod" or "dev" or "demo"`)
	flags.String("addr", "", "address of server")
	flags.Int("port", 3000, "port of server")
	flags.String("driver", "memory", "graph storage driver")
	flags.Int("queue-size", 1024, "capacity of the ingest queue")
	flags.Int("stream-buffer", 256, "per-subscriber buffer of the graph stream")
	flags.Float64("rate-limit", 0, "events per second allowed per client, 0 disables throttling")
	flags.Int("rate-burst", 0, "burst size of the per-client limiter")
	flags.String("log-level", "info", "log level: debug, info, warn or error")
	flags.String("log-format", "", `log format "text" or "json", defaults by mode`)

	sendCmd.Flags().String("url", "http://localhost:3000/event", "ingestion endpoint")
	sendCmd.Flags().Duration("interval", 0, "pause between two events")

	for _, name := range []string{"mode", "addr", "port", "driver", "queue-size", "stream-buffer", "rate-limit", "rate-burst", "log-level", "log-format"} {
		if err := viper.BindPFlag(name, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}
	for _, name := range []string{"url", "interval"} {
		if err := viper.BindPFlag(name, sendCmd.Flags().Lookup(name)); err != nil {
			panic(err)
		}
	}

	viper.SetEnvPrefix("searchviz")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()

	rootCmd.AddCommand(serveCmd, sendCmd, versionCmd)
}

func runServe(ctx context.Context) error {
	instanceProfile := loadProfile()
	if err := instanceProfile.Validate(); err != nil {
		return err
	}
	slog.SetDefault(newLogger(instanceProfile, os.Stderr))

	dbDriver, err := db.NewDBDriver(instanceProfile)
	if err != nil {
		slog.Error("failed to create graph driver", "error", err)
		return err
	}
	storeInstance := store.New(dbDriver, instanceProfile)

	s, err := server.NewServer(ctx, instanceProfile, storeInstance)
	if err != nil {
		slog.Error("failed to create server", "error", err)
		return err
	}

	printGreetings(instanceProfile)
	return s.Start(ctx)
}

func loadProfile() *profile.Profile {
	mode := viper.GetString("mode")
	return &profile.Profile{
		Mode:         mode,
		Addr:         viper.GetString("addr"),
		Port:         viper.GetInt("port"),
		Driver:       viper.GetString("driver"),
		Version:      version.GetCurrentVersion(mode),
		QueueSize:    viper.GetInt("queue-size"),
		StreamBuffer: viper.GetInt("stream-buffer"),
		RateLimit:    viper.GetFloat64("rate-limit"),
		RateBurst:    viper.GetInt("rate-burst"),
		LogLevel:     viper.GetString("log-level"),
		LogFormat:    viper.GetString("log-format"),
	}
}

func printGreetings(p *profile.Profile) {
	if !p.IsDev() {
		return
	}
	fmt.Printf("searchviz %s started\n", p.Version)
	fmt.Printf("  ingest:  POST http://%s/event\n", p.Address())
	fmt.Printf("  graph:   GET  http://%s/api/v1/graph\n", p.Address())
	fmt.Printf("  stream:  GET  http://%s/api/v1/graph/stream\n", p.Address())
	fmt.Println("---")
}

func main() {
	// A missing .env is fine; flags and the environment still apply.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("searchviz exited with error", "error", err, "uptime", time.Since(start).String())
		stop()
		os.Exit(1)
	}
}
