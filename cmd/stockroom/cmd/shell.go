/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ssargent/stockroom/pkg/model"
	"github.com/ssargent/stockroom/pkg/session"
	"github.com/ssargent/stockroom/pkg/store"
)

// shellCmd represents the interactive shell
var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive login and inventory menu",
	Long: `Start an interactive session. Log in or register from the first menu,
then manage the inventory from the second. Every change is saved
immediately; both files are saved again on exit.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		format, _ := outputFormat(cmd)

		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer func() {
			err = errors.Join(err, closeSession(s))
		}()

		sh := &shell{
			session: s,
			prompt:  newPrompter(cmd.InOrStdin(), cmd.OutOrStdout()),
			out:     cmd.OutOrStdout(),
			format:  format,
		}
		return sh.run()
	},
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

// shell drives the login gate and the inventory menu
type shell struct {
	session *session.Session
	prompt  *prompter
	out     io.Writer
	format  string
}

type menuItem struct {
	label  string
	action func() (done bool, err error)
}

const ruleWidth = 50

// run loops on the login menu until the user exits or input ends
func (sh *shell) run() error {
	sh.banner("INVENTORY MANAGEMENT SYSTEM")
	fmt.Fprintln(sh.out, "Welcome! Log in or register to continue.")

	err := sh.menu("AUTHENTICATION", []menuItem{
		{"Login", sh.login},
		{"Register New User", sh.register},
		{"Exit", func() (bool, error) { return true, nil }},
	})
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	fmt.Fprintln(sh.out, "Goodbye!")
	return nil
}

// menu shows items and dispatches choices until an action reports done.
// Store errors are shown to the user and the loop continues.
func (sh *shell) menu(title string, items []menuItem) error {
	for {
		sh.banner(title)
		for i, item := range items {
			fmt.Fprintf(sh.out, "%d. %s\n", i+1, item.label)
		}
		fmt.Fprintln(sh.out, strings.Repeat("=", ruleWidth))

		choice, err := sh.prompt.integer("Enter your choice: ")
		if err != nil {
			return err
		}
		if choice < 1 || choice > len(items) {
			fmt.Fprintln(sh.out, "Invalid choice. Please try again.")
			continue
		}

		done, err := items[choice-1].action()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return err
			}
			fmt.Fprintf(sh.out, "Error: %v\n", err)
			continue
		}
		if done {
			return nil
		}
	}
}

func (sh *shell) banner(title string) {
	rule := strings.Repeat("=", ruleWidth)
	fmt.Fprintf(sh.out, "\n%s\n  %s\n%s\n", rule, title, rule)
}

func (sh *shell) login() (bool, error) {
	username, err := sh.prompt.text("Username: ")
	if err != nil {
		return false, err
	}
	password, err := sh.prompt.text("Password: ")
	if err != nil {
		return false, err
	}
	if err := sh.session.Login(username, password); err != nil {
		return false, err
	}

	fmt.Fprintf(sh.out, "Login successful! Welcome, %s!\n", username)
	err = sh.inventoryMenu()
	sh.session.Logout()
	fmt.Fprintf(sh.out, "Goodbye, %s!\n", username)
	return false, err
}

func (sh *shell) register() (bool, error) {
	username, err := sh.prompt.text("New username: ")
	if err != nil {
		return false, err
	}
	password, err := sh.prompt.text("New password: ")
	if err != nil {
		return false, err
	}
	if err := sh.session.Register(username, password); err != nil {
		return false, err
	}
	fmt.Fprintln(sh.out, "User registered successfully!")
	return false, nil
}

func (sh *shell) inventoryMenu() error {
	inventory, err := sh.session.Inventory()
	if err != nil {
		return err
	}
	return sh.menu("INVENTORY", []menuItem{
		{"Add New Product", sh.withStore(inventory, sh.addProduct)},
		{"Display All Products", sh.withStore(inventory, sh.listProducts)},
		{"Search Product by ID", sh.withStore(inventory, sh.findByID)},
		{"Search Product by Name", sh.withStore(inventory, sh.findByName)},
		{"Update Product", sh.withStore(inventory, sh.updateProduct)},
		{"Delete Product", sh.withStore(inventory, sh.deleteProduct)},
		{"Generate Low Stock Report", sh.withStore(inventory, sh.lowStock)},
		{"Generate Inventory Report", sh.withStore(inventory, sh.inventoryReport)},
		{"Display Total Inventory Value", sh.withStore(inventory, sh.totalValue)},
		{"Logout", func() (bool, error) { return true, nil }},
	})
}

func (sh *shell) withStore(inventory *store.ProductStore, fn func(*store.ProductStore) error) func() (bool, error) {
	return func() (bool, error) {
		return false, fn(inventory)
	}
}

func (sh *shell) addProduct(inventory *store.ProductStore) error {
	id, err := sh.prompt.text("Product ID: ")
	if err != nil {
		return err
	}
	name, err := sh.prompt.text("Product name: ")
	if err != nil {
		return err
	}
	quantity, err := sh.prompt.integer("Quantity: ")
	if err != nil {
		return err
	}
	price, err := sh.prompt.amount("Price: ")
	if err != nil {
		return err
	}

	product, err := model.NewProduct(name, id, quantity, price)
	if err != nil {
		return err
	}
	if err := inventory.Add(product); err != nil {
		return err
	}
	fmt.Fprintln(sh.out, "Product added successfully!")
	return nil
}

func (sh *shell) listProducts(inventory *store.ProductStore) error {
	return outputProducts(sh.out, sh.format, inventory.List(), inventory.Threshold())
}

func (sh *shell) findByID(inventory *store.ProductStore) error {
	id, err := sh.prompt.text("Product ID: ")
	if err != nil {
		return err
	}
	product, ok := inventory.FindByID(id)
	if !ok {
		fmt.Fprintln(sh.out, "Product not found.")
		return nil
	}
	return outputProduct(sh.out, sh.format, product, inventory.Threshold())
}

func (sh *shell) findByName(inventory *store.ProductStore) error {
	name, err := sh.prompt.text("Name contains: ")
	if err != nil {
		return err
	}
	results := inventory.FindByName(name)
	if len(results) == 0 {
		fmt.Fprintf(sh.out, "No products found matching %q.\n", name)
		return nil
	}
	fmt.Fprintf(sh.out, "%d product(s) found:\n", len(results))
	return outputProducts(sh.out, sh.format, results, inventory.Threshold())
}

func (sh *shell) updateProduct(inventory *store.ProductStore) error {
	id, err := sh.prompt.text("Product ID: ")
	if err != nil {
		return err
	}
	product, ok := inventory.FindByID(id)
	if !ok {
		fmt.Fprintln(sh.out, "Product not found.")
		return nil
	}

	fmt.Fprintln(sh.out, "Current product details:")
	if err := outputProduct(sh.out, sh.format, product, inventory.Threshold()); err != nil {
		return err
	}

	quantity, err := sh.prompt.integer("New quantity: ")
	if err != nil {
		return err
	}
	price, err := sh.prompt.amount("New price: ")
	if err != nil {
		return err
	}
	if err := inventory.Update(id, quantity, price); err != nil {
		return err
	}
	fmt.Fprintln(sh.out, "Product updated successfully!")
	return nil
}

func (sh *shell) deleteProduct(inventory *store.ProductStore) error {
	id, err := sh.prompt.text("Product ID: ")
	if err != nil {
		return err
	}
	product, ok := inventory.FindByID(id)
	if !ok {
		fmt.Fprintln(sh.out, "Product not found.")
		return nil
	}

	fmt.Fprintln(sh.out, "Product to be deleted:")
	if err := outputProduct(sh.out, sh.format, product, inventory.Threshold()); err != nil {
		return err
	}
	confirmed, err := sh.prompt.confirm("Are you sure you want to delete this product?")
	if err != nil {
		return err
	}
	if !confirmed {
		fmt.Fprintln(sh.out, "Deletion cancelled.")
		return nil
	}

	if err := inventory.Delete(id); err != nil {
		return err
	}
	fmt.Fprintln(sh.out, "Product deleted successfully!")
	return nil
}

func (sh *shell) lowStock(inventory *store.ProductStore) error {
	threshold := inventory.Threshold()
	fmt.Fprintf(sh.out, "Low stock report (threshold: %d)\n", threshold)
	return outputProducts(sh.out, sh.format, inventory.LowStock(threshold), threshold)
}

func (sh *shell) inventoryReport(inventory *store.ProductStore) error {
	threshold := inventory.Threshold()
	if err := outputProducts(sh.out, sh.format, inventory.List(), threshold); err != nil {
		return err
	}
	fmt.Fprintln(sh.out)
	return outputSummary(sh.out, sh.format, inventory.Summary(threshold))
}

func (sh *shell) totalValue(inventory *store.ProductStore) error {
	return outputValue(sh.out, sh.format, inventory.TotalValue())
}
