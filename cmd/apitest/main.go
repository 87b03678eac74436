// apitest exercises the exchange API end to end and prints what it finds.
// Public endpoints are always probed; signed endpoints run when credentials
// are configured. Usage: go run ./cmd/apitest --config configs/gridbot.local.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/rickgao/bpx-grid/internal/api"
	"github.com/rickgao/bpx-grid/internal/auth"
	"github.com/rickgao/bpx-grid/internal/config"
	"github.com/rickgao/bpx-grid/internal/retry"
)

func main() {
	configPath := flag.String("config", "configs/gridbot.local.yaml", "path to config file")
	symbol := flag.String("symbol", "", "override the configured symbol")
	flag.Parse()

	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.LoadWithDefaults(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *symbol == "" {
		*symbol = cfg.Strategy.Symbol
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	// Single-attempt policies so a failing probe reports instead of retrying.
	probePolicies := api.Policies{
		Balance: retry.Policy{MaxAttempts: 1},
		Submit:  retry.Policy{MaxAttempts: 1},
		Cancel:  retry.Policy{MaxAttempts: 1},
		Query:   retry.Policy{MaxAttempts: 1},
		Depth:   retry.Policy{MaxAttempts: 1},
	}

	var creds *auth.Credentials
	if cfg.API.Secret != "" {
		creds, err = auth.NewCredentials(cfg.API.Key, cfg.API.Secret)
		if err != nil {
			logger.Error("failed to load credentials", "error", err)
			os.Exit(1)
		}
	}

	client := api.NewClient(cfg.API.BaseURL, creds,
		api.WithLogger(logger),
		api.WithPolicies(probePolicies),
	)

	fmt.Printf("== public endpoints (%s) ==\n", cfg.API.BaseURL)

	probe("ping", func() (string, error) {
		return client.Ping(ctx)
	})
	probe("server time", func() (string, error) {
		return client.Time(ctx)
	})
	probe("status", func() (string, error) {
		s, err := client.Status(ctx)
		if err != nil {
			return "", err
		}
		return s.Status, nil
	})
	probe("assets", func() (string, error) {
		assets, err := client.Assets(ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d assets", len(assets)), nil
	})
	probe("markets", func() (string, error) {
		markets, err := client.Markets(ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d markets", len(markets)), nil
	})
	probe("ticker "+*symbol, func() (string, error) {
		t, err := client.Ticker(ctx, *symbol)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("last=%s volume=%s", t.LastPrice, t.Volume), nil
	})
	probe("depth "+*symbol, func() (string, error) {
		d, err := client.Depth(ctx, *symbol)
		if err != nil {
			return "", err
		}
		bid, _ := d.BestBid()
		ask, _ := d.BestAsk()
		return fmt.Sprintf("bid=%s ask=%s (%d/%d levels)", bid, ask, len(d.Bids), len(d.Asks)), nil
	})
	probe("recent trades "+*symbol, func() (string, error) {
		trades, err := client.RecentTrades(ctx, *symbol, 5)
		if err != nil {
			return "", err
		}
		if len(trades) == 0 {
			return "no trades", nil
		}
		return fmt.Sprintf("%d trades, latest %s @ %s",
			len(trades), trades[0].Quantity, trades[0].Price), nil
	})

	if creds == nil {
		fmt.Println("\nno API secret configured, skipping signed endpoints")
		return
	}

	fmt.Println("\n== signed endpoints ==")

	probe("balances", func() (string, error) {
		balances, err := client.Balances(ctx)
		if err != nil {
			return "", err
		}
		out := fmt.Sprintf("%d assets held", len(balances))
		for asset, b := range balances {
			out += fmt.Sprintf("\n    %s available=%s locked=%s", asset, b.Available, b.Locked)
		}
		return out, nil
	})
	probe("open orders "+*symbol, func() (string, error) {
		orders, err := client.OpenOrders(ctx, *symbol)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d open", len(orders)), nil
	})
	probe("order history "+*symbol, func() (string, error) {
		orders, err := client.OrderHistory(ctx, *symbol, 5, 0)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d recent", len(orders)), nil
	})
	probe("fill history "+*symbol, func() (string, error) {
		fills, err := client.FillHistory(ctx, *symbol, 5, 0)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d recent", len(fills)), nil
	})
	probe("deposits", func() (string, error) {
		deposits, err := client.Deposits(ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d records", len(deposits)), nil
	})
	probe("withdrawals", func() (string, error) {
		withdrawals, err := client.Withdrawals(ctx, 5, 0)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d records", len(withdrawals)), nil
	})
}

func probe(name string, fn func() (string, error)) {
	result, err := fn()
	if err != nil {
		fmt.Printf("[FAIL] %-24s %v\n", name, err)
		return
	}
	fmt.Printf("[ OK ] %-24s %s\n", name, result)
}
