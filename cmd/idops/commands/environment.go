package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/identity-console/internal/constants"
	"github.com/fivetwenty-io/identity-console/internal/logging"
	"github.com/fivetwenty-io/identity-console/internal/metrics"
	"github.com/fivetwenty-io/identity-console/internal/view"
	"github.com/fivetwenty-io/identity-console/pkg/ops"
	"github.com/fivetwenty-io/identity-console/pkg/opsclient"
)

// environment is what a command needs to talk to the backend.
type environment struct {
	client      ops.Client
	logger      *logging.Logger
	metrics     *metrics.Metrics
	metricsFile string
}

// newEnvironment builds the API client from flags, environment and the
// config file. With --token the session file is ignored. adjust runs on the
// client config before the client is created.
func newEnvironment(cmd *cobra.Command, adjust ...func(*ops.Config)) (*environment, error) {
	if viper.GetBool("no_color") || os.Getenv("NO_COLOR") != "" {
		view.DisableColor()
	}

	logger := logging.New(cmd.ErrOrStderr(), verboseEnabled())
	collectors := metrics.New()

	config := clientConfig(logger)
	config.ResponseInterceptors = append(config.ResponseInterceptors, collectors.ResponseInterceptor())

	for _, fn := range adjust {
		fn(config)
	}

	var (
		client ops.Client
		err    error
	)

	if token := viper.GetString("token"); token != "" {
		config.AccessToken = token
		client, err = opsclient.New(config)
	} else {
		var path string

		path, err = sessionPath()
		if err != nil {
			return nil, err
		}

		client, err = opsclient.NewWithSession(config, path)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}

	if cache := client.Cache(); cache != nil {
		cache.SetObserver(collectors.CacheObserver())
	}

	return &environment{
		client:      client,
		logger:      logger,
		metrics:     collectors,
		metricsFile: viper.GetString("metrics_file"),
	}, nil
}

// clientConfig maps configuration keys onto an ops.Config.
func clientConfig(logger ops.Logger) *ops.Config {
	endpoint := viper.GetString("api")
	if endpoint == "" {
		endpoint = constants.DefaultAPIEndpoint
	}

	options := ops.DefaultCacheOptions()

	if stale := viper.GetDuration("stale_time"); stale > 0 {
		options.StaleTime = stale
	}

	if gc := viper.GetDuration("gc_time"); gc > 0 {
		options.GCTime = gc
	}

	if viper.IsSet("retry") {
		options.Retry = max(viper.GetInt("retry"), 0)
	}

	return &ops.Config{
		APIEndpoint: endpoint,
		HTTPTimeout: viper.GetDuration("timeout"),
		Cache:       &ops.CacheConfig{Type: ops.CacheTypeMemory, Options: options},
		Debug:       verboseEnabled(),
		Logger:      logger,
		UserAgent:   constants.DefaultUserAgent,
	}
}

// pageSize resolves --limit, then page_size, then the default.
func pageSize(cmd *cobra.Command) int {
	if flag := cmd.Flags().Lookup("limit"); flag != nil && flag.Changed {
		limit, err := cmd.Flags().GetInt("limit")
		if err == nil {
			return limit
		}
	}

	if size := viper.GetInt("page_size"); size > 0 {
		return size
	}

	return constants.DefaultPageSize
}

// Close flushes the logger and writes the metrics textfile when configured.
func (e *environment) Close() {
	if e.metricsFile != "" {
		err := e.metrics.WriteToTextfile(e.metricsFile)
		if err != nil {
			e.logger.Warn("failed to write metrics", map[string]interface{}{"path": e.metricsFile, "error": err.Error()})
		}
	}

	_ = e.logger.Sync()
}

func verboseEnabled() bool {
	return viper.GetBool("verbose")
}
