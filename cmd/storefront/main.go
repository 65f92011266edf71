// Command storefront is a terminal cart client. It talks to the cart only
// through the reconciler: anonymous carts live in a local JSON file, a login
// merges them into the server cart and switches to it.
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"cartbridge/internal/config"
	"cartbridge/internal/localstore"
	"cartbridge/internal/reconciler"
	"cartbridge/internal/remote"
)

type app struct {
	cfg    config.Config
	client *remote.Client
	rec    *reconciler.Reconciler
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Shopping cart client for the cartbridge API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	root.AddCommand(
		newProductsCmd(a),
		newShowCmd(a),
		newAddCmd(a),
		newSetCmd(a),
		newRemoveCmd(a),
		newClearCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
	)
	return root
}

// init builds the reconciler for this invocation. A persisted session token
// means the previous run was authenticated; re-running Login adopts the
// server cart again and merges any local leftovers.
func (a *app) init(cmd *cobra.Command) error {
	a.cfg = config.FromEnv()
	a.client = remote.New(a.cfg.APIBaseURL, a.cfg.RequestTimeout)

	notifier := reconciler.LogNotifier{
		Logger: log.New(cmd.ErrOrStderr(), "", 0),
	}
	rec, err := reconciler.New(localstore.New(a.cfg.CartFile()), a.client, notifier)
	if err != nil {
		return err
	}
	a.rec = rec

	if token := a.loadSession(); token != "" {
		a.client.SetSession(token)
		if err := a.rec.Login(cmd.Context()); err != nil {
			// Stale session: fall back to the anonymous cart.
			a.client.SetSession("")
		}
	}
	return nil
}

func (a *app) loadSession() string {
	raw, err := os.ReadFile(a.cfg.SessionFile())
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(raw))
}

func (a *app) saveSession(token string) error {
	if err := os.MkdirAll(a.cfg.StateDir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(a.cfg.SessionFile(), []byte(token), 0o600)
}

func (a *app) dropSession() {
	os.Remove(a.cfg.SessionFile())
}

func newProductsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "products",
		Short: "List the catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			products, err := a.client.ListProducts(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tPRICE")
			for _, p := range products {
				fmt.Fprintf(w, "%s\t%s\t%s\n", p.ID, p.Name, formatCents(p.PriceCents))
			}
			return w.Flush()
		},
	}
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current cart",
		RunE: func(cmd *cobra.Command, _ []string) error {
			snap := a.rec.Snapshot()
			if len(snap.Items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "cart is empty")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tQTY\tUNIT\tTOTAL")
			var total int64
			for _, item := range snap.Items {
				lineTotal := item.UnitPrice * int64(item.Quantity)
				total += lineTotal
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
					item.ID, item.Name, item.Quantity,
					formatCents(item.UnitPrice), formatCents(lineTotal))
			}
			fmt.Fprintf(w, "\t\t\t\t%s\n", formatCents(total))
			return w.Flush()
		},
	}
}

func newAddCmd(a *app) *cobra.Command {
	var qty int
	cmd := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add a product to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			product, err := a.client.GetProduct(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.rec.AddItem(cmd.Context(), *product, qty)
		},
	}
	cmd.Flags().IntVar(&qty, "qty", 1, "quantity to add")
	return cmd
}

func newSetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set <product-id> <quantity>",
		Short: "Set a line's quantity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("quantity must be a number: %q", args[1])
			}
			return a.rec.SetQuantity(cmd.Context(), args[0], qty)
		},
	}
}

func newRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <product-id>",
		Short: "Remove a line from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.rec.RemoveItem(cmd.Context(), args[0])
		},
	}
}

func newClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.rec.Clear(cmd.Context())
		},
	}
}

func newLoginCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "login <user-id>",
		Short: "Sign in and merge the anonymous cart into the server cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := a.client.Login(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := a.saveSession(token); err != nil {
				return fmt.Errorf("persist session: %w", err)
			}
			return a.rec.Login(cmd.Context())
		},
	}
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and return to the anonymous cart",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Best effort: the local session is dropped even if the server
			// call fails.
			_ = a.client.Logout(cmd.Context())
			a.dropSession()
			return a.rec.Logout(cmd.Context())
		},
	}
}

func formatCents(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}
