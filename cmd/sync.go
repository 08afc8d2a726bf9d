package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"cost-sync/core/config"
	"cost-sync/core/database"
	"cost-sync/core/logger"
	"cost-sync/core/odoo"
	"cost-sync/core/reconcile"
	syncfeature "cost-sync/feature/sync"
	"cost-sync/feature/sync/models"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for the sync run command
	targetCompany string
	dryRunSync    bool
	yesConfirm    bool
	reportOut     string
)

// syncCmd performs one non-interactive cost sync run.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one cost sync against a target company",
	Long: `Run one cost synchronization pass without the web UI.

Fetches the zero-cost products of the target company, resolves their costs
from the configured source company, and writes the resolved costs back.
The run ledger is written as a CSV report.

Examples:
  # Report only (dry-run)
  cost-sync sync --target "Branch East" --dry-run

  # Apply with interactive confirmation
  cost-sync sync --target "Branch East"

  # Apply with auto-confirm (non-interactive)
  cost-sync sync --target "Branch East" --yes --out report.csv`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().StringVar(&targetCompany, "target", "", "Name of the target company (required)")
	syncCmd.Flags().BoolVar(&dryRunSync, "dry-run", false, "Plan only, write no costs")
	syncCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm the cost writes (non-interactive)")
	syncCmd.Flags().StringVar(&reportOut, "out", "", "Report file path (default: generated cost_sync_*.csv name)")
	_ = syncCmd.MarkFlagRequired("target")

	RootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	l.Info("Starting cost sync run", zap.String("target", targetCompany))

	// Connect to Odoo
	client, err := odoo.Connect(cfg.Odoo)
	if err != nil {
		return fmt.Errorf("failed to connect to Odoo: %w", err)
	}

	// Resolve companies
	companies, err := client.ListCompanies(ctx)
	if err != nil {
		return fmt.Errorf("failed to list companies: %w", err)
	}

	source, err := findCompany(companies, cfg.Odoo.SourceCompany)
	if err != nil {
		return fmt.Errorf("source company: %w", err)
	}
	target, err := findCompany(companies, targetCompany)
	if err != nil {
		return fmt.Errorf("target company: %w", err)
	}
	if target.ID == source.ID {
		return fmt.Errorf("target company %q is the source company", targetCompany)
	}

	// Fetch the zero-cost products of the target
	products, truncated, err := client.FindZeroCostProducts(ctx, target.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch products: %w", err)
	}
	if truncated {
		l.Warn("Product fetch hit the read limit, list is incomplete",
			zap.Int("limit", cfg.Odoo.ReadLimit))
	}
	if len(products) == 0 {
		l.Info("No zero-cost products found, nothing to do",
			zap.String("target", target.Name))
		return nil
	}

	// Fetch reference costs from the source
	skus, names := referenceKeys(products)
	refs, err := client.FindReferenceProducts(ctx, source.ID, skus, names)
	if err != nil {
		return fmt.Errorf("failed to fetch reference costs: %w", err)
	}
	lookup := reconcile.BuildCostLookup(refs)

	matches := 0
	for _, p := range products {
		if lookup.Resolve(p) > 0 {
			matches++
		}
	}

	l.Info("Sync plan",
		zap.String("source", source.Name),
		zap.String("target", target.Name),
		zap.Int("products", len(products)),
		zap.Int("references", len(refs)),
		zap.Int("resolvable", matches),
	)

	if dryRunSync {
		l.Info("Dry-run mode: No changes were made.")
		return nil
	}
	if matches == 0 {
		l.Info("No products resolvable from the source, nothing to write.")
		return nil
	}

	if !confirmCostWrites(matches, target.Name) {
		l.Warn("Operation cancelled by user. No changes were made.")
		return nil
	}

	// Apply
	results, summary := reconcile.ApplyCosts(products, lookup, func(id int64, cost float64) error {
		return client.WriteCost(ctx, target.ID, id, cost)
	})

	l.Info("Sync complete",
		zap.Int("updated", summary.Updated),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
		zap.Int("total", summary.Total),
	)

	// Record history when a database is configured
	if db, err := database.Connect(cfg.Database); err == nil {
		history := syncfeature.NewHistory(db)
		if err := history.Migrate(); err != nil {
			l.Warn("Failed to prepare history tables", zap.Error(err))
		} else {
			run := models.RunFromLedger("cli", source.ID, source.Name, target.ID, target.Name, results, summary)
			if err := history.Record(ctx, run); err != nil {
				l.Warn("Failed to record run history", zap.Error(err))
			}
		}
	}

	return writeReport(l, results)
}

// findCompany resolves a company by exact name.
func findCompany(companies []odoo.Company, name string) (odoo.Company, error) {
	for _, c := range companies {
		if c.Name == name {
			return c, nil
		}
	}
	return odoo.Company{}, fmt.Errorf("company %q not found in Odoo", name)
}

// referenceKeys collects the unique SKUs and names of the products.
func referenceKeys(products []reconcile.ProductRecord) ([]string, []string) {
	skus := make([]string, 0, len(products))
	names := make([]string, 0, len(products))
	seenSKU := make(map[string]struct{})
	seenName := make(map[string]struct{})
	for _, p := range products {
		if p.SKU != "" {
			if _, ok := seenSKU[p.SKU]; !ok {
				seenSKU[p.SKU] = struct{}{}
				skus = append(skus, p.SKU)
			}
		}
		if _, ok := seenName[p.Name]; !ok {
			seenName[p.Name] = struct{}{}
			names = append(names, p.Name)
		}
	}
	return skus, names
}

// writeReport writes the run ledger CSV next to the binary or to --out.
func writeReport(l *zap.Logger, results []reconcile.Result) error {
	name := reportOut
	if name == "" {
		name = reconcile.ReportFilename(time.Now())
	}

	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	if err := reconcile.WriteCSV(f, results); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	l.Info("Report written", zap.String("file", name))
	return nil
}

// confirmCostWrites prompts the user for confirmation or uses --yes flag.
func confirmCostWrites(count int, target string) bool {
	if yesConfirm {
		fmt.Println("\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Printf("\n⚠️  About to write %d costs to %q. Type 'yes' to confirm: ", count, target)
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(response)
	return response == "yes"
}
