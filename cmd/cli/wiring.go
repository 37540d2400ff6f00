package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"

	"tally.com/internal/application/usecase"
	"tally.com/internal/domain/entity"
	"tally.com/internal/infrastructure/config"
	"tally.com/internal/infrastructure/logger"
	"tally.com/internal/infrastructure/report"
	"tally.com/internal/infrastructure/repository"
)

const sessionDir = "session"

// app bundles one ledger with the use cases that operate on it.
type app struct {
	cfg      *config.Config
	logger   logger.Logger
	ledger   *repository.InMemoryLedger
	record   *usecase.RecordTransactionUseCase
	balances *usecase.GetBalancesUseCase
	settle   *usecase.SettleLedgerUseCase
}

func loadConfig() (*config.Config, logger.Logger, error) {
	dir := configDir
	if dir == "" {
		dir = filepath.Join("cmd", "config", sessionDir)
	}

	cfg, err := config.LoadConfig(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	appLogger := logger.NewLoggerWithOptions(logger.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	appLogger.LogDebug(context.TODO(), "Configuration loaded",
		"config_dir", dir,
		"default_group_size", cfg.Group.DefaultSize,
		"currency", cfg.Display.Currency)

	return cfg, appLogger, nil
}

func newApp(cfg *config.Config, appLogger logger.Logger, groupSize int) (*app, error) {
	ledger, err := repository.NewInMemoryLedger(groupSize, appLogger)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:      cfg,
		logger:   appLogger,
		ledger:   ledger,
		record:   usecase.NewRecordTransactionUseCase(ledger),
		balances: usecase.NewGetBalancesUseCase(ledger),
		settle:   usecase.NewSettleLedgerUseCase(ledger, appLogger),
	}, nil
}

func (a *app) printBalances(ctx context.Context, w io.Writer) error {
	balances, err := a.balances.Execute(ctx)
	if err != nil {
		return err
	}
	fmt.Fprint(w, report.FormatBalances(balances, a.cfg.Display.Currency))
	return nil
}

// printSettlement streams each instruction as the engine produces it.
func (a *app) printSettlement(ctx context.Context, w io.Writer) error {
	fmt.Fprintln(w, "\n========== Minimizing Cash Flow ==========")
	result, err := a.settle.Execute(ctx, func(ins entity.Instruction) {
		fmt.Fprintln(w, report.FormatInstruction(ins, a.cfg.Display.Currency))
	})
	if err != nil {
		return err
	}

	if result.Count() == 0 {
		fmt.Fprintln(w, report.NoTransactionsNeeded)
		return nil
	}
	fmt.Fprintln(w, report.FormatSummary(result.Count()))
	return nil
}

// screenClearer returns a func that clears w when it is a terminal and
// clearing is enabled, and a no-op otherwise.
func screenClearer(w io.Writer, enabled bool) func() {
	f, ok := w.(*os.File)
	if !enabled || !ok || !isatty.IsTerminal(f.Fd()) {
		return func() {}
	}
	return func() {
		fmt.Fprint(w, "\033[H\033[2J")
	}
}
