package commands

import (
	"context"
	"fmt"

	"github.com/brightsciences/lessonpress/internal/backfill"
)

// StatusCmd prints render ledger counts.
type StatusCmd struct{}

func (s *StatusCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(g, root)
	if err != nil {
		return err
	}
	ledger, err := backfill.NewLedger(cfg.Ledger.Path)
	if err != nil {
		return err
	}
	defer func() { _ = ledger.Close() }()

	stats, err := ledger.Stats(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("rendered: %d\n", stats[backfill.StatusRendered])
	fmt.Printf("failed:   %d\n", stats[backfill.StatusFailed])
	return nil
}
