// Command analyze validates a CSV of expense records against the
// reimbursement policy, prints a summary to stdout and writes a JSON
// results file.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"

	"expensecheck/batch"
	"expensecheck/exchange"
	"expensecheck/internal/config"
	"expensecheck/internal/logger"
	"expensecheck/policy"
	"expensecheck/rules"
	"expensecheck/validator"
)

func main() {
	var configPath string
	var inputPath string
	flag.StringVar(&configPath, "config", "", "path to config file (optional)")
	flag.StringVar(&inputPath, "input", "", "path to the expenses CSV (overrides config)")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if inputPath != "" {
		cfg.Batch.InputPath = inputPath
	}
	if cfg.Batch.InputPath == "" {
		logger.Error("no input file: pass -input or set batch.input_path")
		os.Exit(1)
	}

	rates, err := newRateClient(cfg)
	if err != nil {
		logger.Error("failed to build rate client", "error", err)
		os.Exit(1)
	}

	p := policy.Default()
	if cfg.BaseCurrency != "" {
		p.BaseCurrency = cfg.BaseCurrency
	}

	v := validator.New(rules.ForPolicy(p), &rules.Context{
		BaseCurrency: p.BaseCurrency,
		Rates:        rates,
	})
	analyzer := batch.NewAnalyzer(v)

	logger.Info("analyzing expenses", "input", cfg.Batch.InputPath, "offline", cfg.Exchange.Offline)

	result, err := analyzer.AnalyzeFile(context.Background(), cfg.Batch.InputPath)
	if err != nil {
		logger.Error("batch analysis failed", "error", err)
		os.Exit(1)
	}

	printSummary(result)

	if cfg.Batch.ResultsDir != "" {
		path, err := writeReport(cfg.Batch.ResultsDir, result)
		if err != nil {
			logger.Error("failed to write results file", "error", err)
			os.Exit(1)
		}
		fmt.Printf("results written to %s\n", path)
	}
}

// newRateClient picks the rate source the config asks for: the offline
// table, or the HTTP client with an in-memory or Redis-backed cache.
func newRateClient(cfg *config.Config) (exchange.RateClient, error) {
	if cfg.Exchange.Offline {
		return exchange.NewOfflineClient(), nil
	}

	if cfg.Exchange.APIKey == "" {
		return nil, fmt.Errorf("exchange.api_key is required unless exchange.offline is set")
	}

	clientCfg := exchange.DefaultClientConfig(cfg.Exchange.APIKey)
	clientCfg.Timeout = cfg.Exchange.Timeout
	clientCfg.CacheEnabled = cfg.Exchange.CacheEnabled

	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		clientCfg.Cache = exchange.NewRedisRateCache(rdb, cfg.Redis.TTL)
	}

	return exchange.NewClient(clientCfg), nil
}
