// Command report prints a month summary for a Spendlog account.
//
//	report [year month]
//
// The API location and credentials come from SPENDLOG_API_URL,
// SPENDLOG_EMAIL and SPENDLOG_PASSWORD (a .env file is honored).
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"spendlog/internal/client"
	"spendlog/internal/insights"
	"spendlog/internal/logger"
	"spendlog/internal/models"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(os.Args[1:]); err != nil {
		logger.Get().Fatalf("Report error: %v", err)
	}
}

func run(args []string) error {
	now := time.Now().UTC()
	year, month, err := parseMonth(args, now)
	if err != nil {
		return err
	}

	_ = godotenv.Load()
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("SPENDLOG_API_URL", "http://localhost:8080")

	email, password := v.GetString("SPENDLOG_EMAIL"), v.GetString("SPENDLOG_PASSWORD")
	if email == "" || password == "" {
		return fmt.Errorf("SPENDLOG_EMAIL and SPENDLOG_PASSWORD are required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	api := client.New(v.GetString("SPENDLOG_API_URL"), nil)
	session, err := api.Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	var (
		profile  *models.User
		expenses []models.Expense
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profile, err = api.Profile(gctx, session)
		return err
	})
	g.Go(func() error {
		var err error
		expenses, err = api.Expenses(gctx, session)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("loading account data: %w", err)
	}

	report := insights.BuildReport(expenses, profile.MonthlyBudget, year, month, now)
	return report.Render(os.Stdout)
}

// parseMonth reads an optional "year month" pair, defaulting to the current month.
func parseMonth(args []string, now time.Time) (int, time.Month, error) {
	switch len(args) {
	case 0:
		return now.Year(), now.Month(), nil
	case 2:
		year, err := strconv.Atoi(args[0])
		if err != nil || year < 1 || year > 9999 {
			return 0, 0, fmt.Errorf("invalid year %q", args[0])
		}
		month, err := strconv.Atoi(args[1])
		if err != nil || month < 1 || month > 12 {
			return 0, 0, fmt.Errorf("invalid month %q", args[1])
		}
		return year, time.Month(month), nil
	default:
		return 0, 0, fmt.Errorf("usage: report [year month]")
	}
}
