package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"merit/internal/amqp"
	"merit/internal/cli"
	"merit/internal/config"
	"merit/internal/core"
	"merit/internal/ids"
	"merit/internal/log"
	"merit/internal/notify"
	"merit/internal/services"
	"merit/internal/storage"
)

const defaultUserID = "local"

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitRepository(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	ctx := context.Background()
	if err := repo.SeedDefaultCategories(ctx); err != nil {
		logger.Error("Failed to seed default categories", "error", err)
		os.Exit(1)
	}
	if err := repo.EnsureUser(ctx, defaultUserID, cfg.UserName, cfg.WeekStartDay); err != nil {
		logger.Error("Failed to ensure user", "error", err)
		os.Exit(1)
	}

	var sink notify.Sink = notify.NewLogSink()
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, alerts fall back to the log", "error", err)
		} else {
			defer client.Close()
			sink = notify.NewAMQPSink(client)
		}
	}

	app, err := newApp(repo, sink, cfg)
	if err != nil {
		logger.Error("Failed to build services", "error", err)
		os.Exit(1)
	}

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	if err := app.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type app struct {
	repo         *storage.Repository
	transactions *services.TransactionService
	budgets      *services.BudgetService
	weekly       *services.WeeklyBudgetService
	goals        *services.GoalService
}

func newApp(repo *storage.Repository, sink notify.Sink, cfg *config.Config) (*app, error) {
	gen := ids.NewUUIDGenerator()

	weekly, err := services.NewWeeklyBudgetService(repo, gen, sink, cfg.WeekStartDay)
	if err != nil {
		return nil, err
	}
	budgets, err := services.NewBudgetService(repo, gen, cfg.WeekStartDay)
	if err != nil {
		return nil, err
	}

	return &app{
		repo:         repo,
		transactions: services.NewTransactionService(repo, gen, weekly),
		budgets:      budgets,
		weekly:       weekly,
		goals:        services.NewGoalService(repo, gen),
	}, nil
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "add":
		return a.addTransaction(ctx, args)
	case "list":
		return a.listTransactions(ctx, args)
	case "categories":
		return a.listCategories(ctx)
	case "budget":
		return a.budgetCmd(ctx, args)
	case "weekly":
		return a.weeklyCmd(ctx, args)
	case "goal":
		return a.goalCmd(ctx, args)
	case "export":
		return a.export(ctx)
	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: merit <command> [flags]

commands:
  add         record a transaction (-type -amount -category -date -notes)
  list        list transactions (-type)
  categories  list the category registry
  budget      set | list  per-category budgets
  weekly      set | show | delete  the weekly budget
  goal        create | add | set | list | events | delete  savings goals
  export      print the ledger oldest first`)
}

func (a *app) addTransaction(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	typ := fs.String("type", "expense", "income or expense")
	amount := fs.String("amount", "", "decimal amount, e.g. 12.50")
	category := fs.String("category", "", "category id")
	date := fs.String("date", core.DateOf(time.Now()).String(), "YYYY-MM-DD")
	notes := fs.String("notes", "", "free-form note")
	fs.Parse(args)

	cents, err := core.ParseDecimalToCents(*amount)
	if err != nil {
		return err
	}
	day, err := core.ParseDate(*date)
	if err != nil {
		return err
	}

	tx, err := a.transactions.Add(ctx, services.AddTransactionInput{
		UserID:     defaultUserID,
		Type:       core.TransactionType(*typ),
		Amount:     core.Money{Cents: cents},
		CategoryID: *category,
		Date:       day,
		Notes:      *notes,
	})
	if err != nil {
		return err
	}
	fmt.Printf("recorded %s %s on %s (%s)\n", tx.Type, tx.Amount, tx.Date, tx.ID)
	return nil
}

func (a *app) listTransactions(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	typ := fs.String("type", "", "filter: income or expense")
	fs.Parse(args)

	items, err := a.transactions.List(ctx, defaultUserID, core.TransactionType(*typ))
	if err != nil {
		return err
	}
	for _, it := range items {
		fmt.Printf("%s  %-7s %10s  %-20s %s\n", it.Date, it.Type, it.Amount, it.CategoryName, it.Notes)
	}
	return nil
}

func (a *app) listCategories(ctx context.Context) error {
	cats, err := a.repo.ListCategories(ctx, "")
	if err != nil {
		return err
	}
	for _, c := range cats {
		fmt.Printf("%-20s %-7s %s\n", c.ID, c.Type, c.Name)
	}
	return nil
}

func (a *app) budgetCmd(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("budget: expected set or list")
	}
	switch args[0] {
	case "set":
		fs := flag.NewFlagSet("budget set", flag.ExitOnError)
		category := fs.String("category", "", "category id")
		period := fs.String("period", "weekly", "weekly or monthly")
		limit := fs.String("limit", "", "decimal limit")
		fs.Parse(args[1:])

		cents, err := core.ParseDecimalToCents(*limit)
		if err != nil {
			return err
		}
		b, err := a.budgets.Create(ctx, services.CreateBudgetInput{
			UserID:      defaultUserID,
			CategoryID:  *category,
			Period:      core.BudgetPeriod(*period),
			LimitAmount: core.Money{Cents: cents},
		})
		if err != nil {
			return err
		}
		fmt.Printf("budget %s: %s %s from %s to %s\n", b.ID, b.Period, b.LimitAmount, b.Range.Start, b.Range.End)
		return nil
	case "list":
		items, err := a.budgets.List(ctx, defaultUserID)
		if err != nil {
			return err
		}
		for _, it := range items {
			fmt.Printf("%-20s %-7s spent %s of %s\n", it.CategoryName, it.Period, it.Spent, it.LimitAmount)
		}
		return nil
	}
	return fmt.Errorf("budget: unknown subcommand %q", args[0])
}

func (a *app) weeklyCmd(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("weekly: expected set, show or delete")
	}
	switch args[0] {
	case "set":
		fs := flag.NewFlagSet("weekly set", flag.ExitOnError)
		limit := fs.String("limit", "", "decimal weekly limit")
		categories := fs.String("categories", "", "comma-separated category ids; empty for all")
		fs.Parse(args[1:])

		cents, err := core.ParseDecimalToCents(*limit)
		if err != nil {
			return err
		}
		in := services.UpsertWeeklyBudgetInput{
			UserID:                 defaultUserID,
			LimitAmount:            core.Money{Cents: cents},
			AppliesToAllCategories: *categories == "",
		}
		if *categories != "" {
			in.CategoryIDs = splitCSV(*categories)
		}
		id, err := a.weekly.Upsert(ctx, in)
		if err != nil {
			return err
		}
		fmt.Println("weekly budget", id)
		return nil
	case "show":
		s, err := a.weekly.Summary(ctx, defaultUserID, core.DateOf(time.Now()))
		if err != nil {
			return err
		}
		fmt.Printf("week %s to %s: spent %s of %s (today %s, daily limit %s)\n",
			s.Range.Start, s.Range.End, s.WeekSpent, s.LimitAmount, s.TodaySpent, s.DailyLimit)
		return nil
	case "delete":
		return a.weekly.Delete(ctx, defaultUserID)
	}
	return fmt.Errorf("weekly: unknown subcommand %q", args[0])
}

func (a *app) goalCmd(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("goal: expected create, add, set, list, events or delete")
	}
	switch args[0] {
	case "create":
		fs := flag.NewFlagSet("goal create", flag.ExitOnError)
		name := fs.String("name", "", "goal name")
		icon := fs.String("icon", "", "icon name")
		target := fs.String("target", "", "decimal target amount")
		current := fs.String("current", "0", "decimal starting amount")
		date := fs.String("date", "", "target date YYYY-MM-DD, optional")
		fs.Parse(args[1:])

		targetCents, err := core.ParseDecimalToCents(*target)
		if err != nil {
			return err
		}
		currentCents, err := core.ParseDecimalToCents(*current)
		if err != nil {
			return err
		}
		var targetDate core.Date
		if *date != "" {
			if targetDate, err = core.ParseDate(*date); err != nil {
				return err
			}
		}
		g, err := a.goals.Create(ctx, services.CreateGoalInput{
			UserID:        defaultUserID,
			Name:          *name,
			Icon:          *icon,
			TargetAmount:  core.Money{Cents: targetCents},
			CurrentAmount: core.Money{Cents: currentCents},
			TargetDate:    targetDate,
		})
		if err != nil {
			return err
		}
		fmt.Printf("goal %s: %s of %s\n", g.ID, g.CurrentAmount, g.TargetAmount)
		return nil
	case "add":
		fs := flag.NewFlagSet("goal add", flag.ExitOnError)
		id := fs.String("id", "", "goal id")
		amount := fs.String("amount", "", "decimal deposit")
		note := fs.String("note", "", "optional note")
		fs.Parse(args[1:])

		cents, err := core.ParseDecimalToCents(*amount)
		if err != nil {
			return err
		}
		g, err := a.goals.Add(ctx, *id, core.Money{Cents: cents}, *note)
		if err != nil {
			return err
		}
		fmt.Printf("goal %s now at %s of %s (completed=%v)\n", g.ID, g.CurrentAmount, g.TargetAmount, g.IsCompleted)
		return nil
	case "set":
		fs := flag.NewFlagSet("goal set", flag.ExitOnError)
		id := fs.String("id", "", "goal id")
		amount := fs.String("amount", "", "decimal saved amount")
		note := fs.String("note", "", "optional note")
		fs.Parse(args[1:])

		cents, err := core.ParseDecimalToCents(*amount)
		if err != nil {
			return err
		}
		g, err := a.goals.SetCurrent(ctx, *id, core.Money{Cents: cents}, *note)
		if err != nil {
			return err
		}
		fmt.Printf("goal %s now at %s of %s (completed=%v)\n", g.ID, g.CurrentAmount, g.TargetAmount, g.IsCompleted)
		return nil
	case "list":
		goals, err := a.goals.List(ctx, defaultUserID)
		if err != nil {
			return err
		}
		for _, g := range goals {
			due := "no date"
			if !g.TargetDate.IsZero() {
				due = g.TargetDate.String()
			}
			fmt.Printf("%-36s %-20s %10s / %-10s due %-10s completed=%v\n",
				g.ID, g.Name, g.CurrentAmount, g.TargetAmount, due, g.IsCompleted)
		}
		return nil
	case "events":
		fs := flag.NewFlagSet("goal events", flag.ExitOnError)
		id := fs.String("id", "", "goal id")
		fs.Parse(args[1:])

		events, err := a.goals.Events(ctx, *id)
		if err != nil {
			return err
		}
		for _, e := range events {
			fmt.Printf("%s  %-12s %s\n", e.CreatedAt.Format(time.RFC3339), e.Type, e.Note)
		}
		return nil
	case "delete":
		fs := flag.NewFlagSet("goal delete", flag.ExitOnError)
		id := fs.String("id", "", "goal id")
		fs.Parse(args[1:])
		return a.goals.Delete(ctx, *id)
	}
	return fmt.Errorf("goal: unknown subcommand %q", args[0])
}

func (a *app) export(ctx context.Context) error {
	rows, err := a.transactions.Export(ctx, defaultUserID, nil)
	if err != nil {
		return err
	}
	for _, r := range rows {
		fmt.Printf("%s,%s,%s,%s,%q\n", r.Date, r.Type, r.CategoryName, r.Amount, r.Notes)
	}
	return nil
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
