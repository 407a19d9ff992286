package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ssargent/stockroom/pkg/model"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

// outputFormat returns the validated --format value
func outputFormat(cmd *cobra.Command) (string, error) {
	format, _ := cmd.Flags().GetString("format")
	switch format {
	case formatTable, formatJSON:
		return format, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want table or json)", format)
	}
}

// productRow is a product as shown to the user
type productRow struct {
	model.Product
	TotalValue float64 `json:"total_value"`
	LowStock   bool    `json:"low_stock"`
}

func newProductRow(p model.Product, threshold int) productRow {
	return productRow{
		Product:    p,
		TotalValue: p.TotalValue(),
		LowStock:   p.IsLowStock(threshold),
	}
}

// outputProduct displays a single product
func outputProduct(w io.Writer, format string, p model.Product, threshold int) error {
	row := newProductRow(p, threshold)
	if format == formatJSON {
		return outputJSON(w, row)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", row.ID)
	fmt.Fprintf(tw, "Name:\t%s\n", row.Name)
	fmt.Fprintf(tw, "Quantity:\t%d\n", row.Quantity)
	fmt.Fprintf(tw, "Price:\t%s\n", formatMoney(row.Price))
	fmt.Fprintf(tw, "Value:\t%s\n", formatMoney(row.TotalValue))
	if row.LowStock {
		fmt.Fprintf(tw, "Status:\tLOW STOCK\n")
	}
	return tw.Flush()
}

// outputProducts displays multiple products
func outputProducts(w io.Writer, format string, products []model.Product, threshold int) error {
	rows := make([]productRow, 0, len(products))
	for _, p := range products {
		rows = append(rows, newProductRow(p, threshold))
	}
	if format == formatJSON {
		return outputJSON(w, rows)
	}

	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No products found")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tQUANTITY\tPRICE\tVALUE\tSTATUS")
	for _, row := range rows {
		status := ""
		if row.LowStock {
			status = "LOW STOCK"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n",
			row.ID, truncate(row.Name, 40), row.Quantity,
			formatMoney(row.Price), formatMoney(row.TotalValue), status)
	}
	return tw.Flush()
}

// outputValue displays the total inventory value
func outputValue(w io.Writer, format string, total float64) error {
	if format == formatJSON {
		return outputJSON(w, map[string]float64{"total_value": total})
	}
	_, err := fmt.Fprintf(w, "Total Inventory Value: %s\n", formatMoney(total))
	return err
}

// outputSummary displays inventory totals
func outputSummary(w io.Writer, format string, summary model.Summary) error {
	if format == formatJSON {
		return outputJSON(w, summary)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Total Products:\t%d\n", summary.Products)
	fmt.Fprintf(tw, "Total Units:\t%d\n", summary.Units)
	fmt.Fprintf(tw, "Total Inventory Value:\t%s\n", formatMoney(summary.TotalValue))
	fmt.Fprintf(tw, "Low Stock Items:\t%d (threshold %d)\n", summary.LowStock, summary.Threshold)
	return tw.Flush()
}

func outputJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func formatMoney(amount float64) string {
	return fmt.Sprintf("$%.2f", amount)
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-3]) + "..."
}
