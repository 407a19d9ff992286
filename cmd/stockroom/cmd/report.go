/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/stockroom/pkg/model"
	"github.com/ssargent/stockroom/pkg/store"
)

// reportCmd represents the report command group
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Inventory reports",
}

var reportLowStockCmd = &cobra.Command{
	Use:   "low-stock",
	Short: "List products at or below the low stock threshold",
	Long: `List products whose quantity is at or below the threshold. The threshold
defaults to inventory.low_stock_threshold from the config file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := outputFormat(cmd)
		return withInventory(cmd, func(inventory *store.ProductStore) error {
			threshold, err := thresholdFlag(cmd, inventory)
			if err != nil {
				return err
			}
			if format == formatTable {
				cmd.Printf("Low stock report (threshold: %d)\n", threshold)
			}
			return outputProducts(cmd.OutOrStdout(), format, inventory.LowStock(threshold), threshold)
		})
	},
}

var reportValueCmd = &cobra.Command{
	Use:   "value",
	Short: "Show the total value of the inventory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := outputFormat(cmd)
		return withInventory(cmd, func(inventory *store.ProductStore) error {
			return outputValue(cmd.OutOrStdout(), format, inventory.TotalValue())
		})
	},
}

var reportInventoryCmd = &cobra.Command{
	Use:   "inventory",
	Short: "List every product followed by inventory totals",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := outputFormat(cmd)
		return withInventory(cmd, func(inventory *store.ProductStore) error {
			threshold, err := thresholdFlag(cmd, inventory)
			if err != nil {
				return err
			}
			return outputInventoryReport(cmd, format, inventory, threshold)
		})
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.AddCommand(reportLowStockCmd, reportValueCmd, reportInventoryCmd)

	reportLowStockCmd.Flags().Int("threshold", -1, "Low stock threshold (default from config)")
	reportInventoryCmd.Flags().Int("threshold", -1, "Low stock threshold (default from config)")
}

// thresholdFlag returns --threshold, or the store default when it is not set
func thresholdFlag(cmd *cobra.Command, inventory *store.ProductStore) (int, error) {
	if !cmd.Flags().Changed("threshold") {
		return inventory.Threshold(), nil
	}
	threshold, _ := cmd.Flags().GetInt("threshold")
	if threshold < 0 {
		return 0, fmt.Errorf("%w: threshold %d", model.ErrInvalidValue, threshold)
	}
	return threshold, nil
}

func outputInventoryReport(cmd *cobra.Command, format string, inventory *store.ProductStore, threshold int) error {
	products := inventory.List()
	summary := inventory.Summary(threshold)

	if format == formatJSON {
		rows := make([]productRow, 0, len(products))
		for _, p := range products {
			rows = append(rows, newProductRow(p, threshold))
		}
		return outputJSON(cmd.OutOrStdout(), struct {
			Products []productRow  `json:"products"`
			Summary  model.Summary `json:"summary"`
		}{rows, summary})
	}

	if err := outputProducts(cmd.OutOrStdout(), format, products, threshold); err != nil {
		return err
	}
	cmd.Println()
	return outputSummary(cmd.OutOrStdout(), format, summary)
}
