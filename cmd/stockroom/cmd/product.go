/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"math"

	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"

	"github.com/ssargent/stockroom/pkg/model"
	"github.com/ssargent/stockroom/pkg/store"
)

// productCmd represents the product command group
var productCmd = &cobra.Command{
	Use:   "product",
	Short: "Manage products",
	Long: `Add, update, delete and look up products.

Every change is saved to the inventory file before the command returns.`,
}

var productAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a new product",
	Long: `Add a new product to the inventory.

Examples:
  stockroom product add "Widget" --id W-1 --quantity 12 --price 2.50 -u admin
  stockroom product add "Gadget" --auto-id --quantity 3 --price 19.99 -u admin`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, _ := cmd.Flags().GetString("id")
		autoID, _ := cmd.Flags().GetBool("auto-id")
		quantity, _ := cmd.Flags().GetInt("quantity")
		price, _ := cmd.Flags().GetFloat64("price")

		if autoID && id != "" {
			return fmt.Errorf("--id and --auto-id cannot be used together")
		}
		if autoID {
			id = ksuid.New().String()
		}
		if id == "" {
			return fmt.Errorf("%w: product ID (use --id or --auto-id)", model.ErrEmptyField)
		}
		if err := checkAmounts(quantity, price); err != nil {
			return err
		}

		product, err := model.NewProduct(args[0], id, quantity, price)
		if err != nil {
			return err
		}

		return withInventory(cmd, func(inventory *store.ProductStore) error {
			if err := inventory.Add(product); err != nil {
				return err
			}
			cmd.Printf("Product %s added successfully\n", product.ID)
			return nil
		})
	},
}

var productUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a product's quantity and price",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		quantity, _ := cmd.Flags().GetInt("quantity")
		price, _ := cmd.Flags().GetFloat64("price")
		if err := checkAmounts(quantity, price); err != nil {
			return err
		}

		return withInventory(cmd, func(inventory *store.ProductStore) error {
			if err := inventory.Update(args[0], quantity, price); err != nil {
				return err
			}
			cmd.Printf("Product %s updated successfully\n", args[0])
			return nil
		})
	},
}

var productDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a product",
	Long: `Delete a product. The product is shown and confirmation is requested
unless --yes is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		format, _ := outputFormat(cmd)

		return withInventory(cmd, func(inventory *store.ProductStore) error {
			product, ok := inventory.FindByID(args[0])
			if !ok {
				return fmt.Errorf("%w: %q", store.ErrNotFound, args[0])
			}

			if !yes {
				if err := outputProduct(cmd.OutOrStdout(), format, product, inventory.Threshold()); err != nil {
					return err
				}
				confirmed, err := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout()).confirm("Delete this product?")
				if err != nil {
					return err
				}
				if !confirmed {
					cmd.Println("Deletion cancelled")
					return nil
				}
			}

			if err := inventory.Delete(product.ID); err != nil {
				return err
			}
			cmd.Printf("Product %s deleted successfully\n", product.ID)
			return nil
		})
	},
}

var productGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a product by ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := outputFormat(cmd)
		return withInventory(cmd, func(inventory *store.ProductStore) error {
			product, ok := inventory.FindByID(args[0])
			if !ok {
				return fmt.Errorf("%w: %q", store.ErrNotFound, args[0])
			}
			return outputProduct(cmd.OutOrStdout(), format, product, inventory.Threshold())
		})
	},
}

var productSearchCmd = &cobra.Command{
	Use:   "search <name>",
	Short: "Find products whose name contains a substring (case-insensitive)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := outputFormat(cmd)
		return withInventory(cmd, func(inventory *store.ProductStore) error {
			return outputProducts(cmd.OutOrStdout(), format, inventory.FindByName(args[0]), inventory.Threshold())
		})
	},
}

var productListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all products in ID order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := outputFormat(cmd)
		return withInventory(cmd, func(inventory *store.ProductStore) error {
			return outputProducts(cmd.OutOrStdout(), format, inventory.List(), inventory.Threshold())
		})
	},
}

func init() {
	rootCmd.AddCommand(productCmd)
	productCmd.AddCommand(productAddCmd, productUpdateCmd, productDeleteCmd,
		productGetCmd, productSearchCmd, productListCmd)

	productAddCmd.Flags().String("id", "", "Product ID")
	productAddCmd.Flags().Bool("auto-id", false, "Generate a sortable unique product ID")
	productAddCmd.Flags().Int("quantity", 0, "Quantity in stock")
	productAddCmd.Flags().Float64("price", 0, "Unit price")

	productUpdateCmd.Flags().Int("quantity", 0, "New quantity in stock")
	productUpdateCmd.Flags().Float64("price", 0, "New unit price")
	for _, name := range []string{"quantity", "price"} {
		if err := productUpdateCmd.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}

	productDeleteCmd.Flags().BoolP("yes", "y", false, "Delete without asking for confirmation")
}

// checkAmounts rejects negative or non-finite input before it reaches the store
func checkAmounts(quantity int, price float64) error {
	if quantity < 0 || quantity > model.MaxQuantity {
		return fmt.Errorf("%w: quantity %d", model.ErrInvalidValue, quantity)
	}
	if price < 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return fmt.Errorf("%w: price %v", model.ErrInvalidValue, price)
	}
	return nil
}
