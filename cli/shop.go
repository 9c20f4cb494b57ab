package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/client"
	"github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/logger"
	"github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/models"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func (o *options) api() *client.API {
	return client.NewAPI(o.serverURL, &http.Client{Timeout: 60 * time.Second})
}

func newLoginCmd(opts *options) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the token",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, session, err := opts.clientState()
			if err != nil {
				return err
			}
			bundle, err := opts.api().Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			if err := session.Login(bundle); err != nil {
				return err
			}
			if user, ok := session.User(); ok {
				fmt.Fprintf(cmd.OutOrStdout(), "signed in as %s\n", user.Name)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	return cmd
}

func newProfileCmd(opts *options) *cobra.Command {
	var update client.ProfileUpdate
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or update the signed-in profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, session, err := opts.clientState()
			if err != nil {
				return err
			}
			if !session.Authenticated() {
				return errors.New("not signed in; run login first")
			}
			if update != (client.ProfileUpdate{}) {
				user, err := opts.api().UpdateProfile(cmd.Context(), session.Token(), update)
				if err != nil {
					return err
				}
				if err := session.SetUser(user); err != nil {
					return err
				}
			}

			user, _ := session.User()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "name:    %s\n", user.Name)
			fmt.Fprintf(out, "email:   %s\n", user.Email)
			fmt.Fprintf(out, "phone:   %s\n", user.Phone)
			fmt.Fprintf(out, "address: %s\n", user.Address)
			return nil
		},
	}
	cmd.Flags().StringVar(&update.Name, "name", "", "New name")
	cmd.Flags().StringVar(&update.Phone, "phone", "", "New phone")
	cmd.Flags().StringVar(&update.Address, "address", "", "New delivery address")
	cmd.Flags().StringVar(&update.Password, "password", "", "New password")
	return cmd
}

func newLogoutCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the token and empty the cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, session, err := opts.clientState()
			if err != nil {
				return err
			}
			return session.Logout()
		},
	}
}

func newCartCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Inspect and edit the local cart",
	}

	var item struct {
		id, name, description, price string
	}
	add := &cobra.Command{
		Use:   "add",
		Short: "Append a product to the cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			if item.id == "" {
				return errors.New("--id is required")
			}
			price, err := decimal.NewFromString(item.price)
			if err != nil {
				return fmt.Errorf("invalid --price %q", item.price)
			}
			cart, _, err := opts.clientState()
			if err != nil {
				return err
			}
			if err := cart.Add(models.CartItem{
				ID:          item.id,
				Name:        item.name,
				Description: item.description,
				Price:       price,
			}); err != nil {
				return err
			}
			return printCart(cmd.OutOrStdout(), cart)
		},
	}
	add.Flags().StringVar(&item.id, "id", "", "Product id")
	add.Flags().StringVar(&item.name, "name", "", "Product name")
	add.Flags().StringVar(&item.description, "description", "", "Product description")
	add.Flags().StringVar(&item.price, "price", "0", "Unit price")

	remove := &cobra.Command{
		Use:   "remove PRODUCT_ID",
		Short: "Remove one entry for a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cart, _, err := opts.clientState()
			if err != nil {
				return err
			}
			removed, err := cart.Remove(args[0])
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("product %s is not in the cart", args[0])
			}
			return printCart(cmd.OutOrStdout(), cart)
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			cart, _, err := opts.clientState()
			if err != nil {
				return err
			}
			return cart.Clear()
		},
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "List the cart and its total",
		RunE: func(cmd *cobra.Command, args []string) error {
			cart, _, err := opts.clientState()
			if err != nil {
				return err
			}
			return printCart(cmd.OutOrStdout(), cart)
		},
	}

	cmd.AddCommand(add, remove, clearCmd, show)
	return cmd
}

func printCart(w io.Writer, cart *client.Cart) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE")
	for _, it := range cart.Items() {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", it.ID, it.Name, it.Price.StringFixed(2))
	}
	fmt.Fprintf(tw, "\tTOTAL\t%s\n", cart.Total().StringFixed(2))
	return tw.Flush()
}

// terminal reports checkout outcomes on stdout.
type terminal struct {
	out io.Writer
}

func (t terminal) Success(msg string) { fmt.Fprintln(t.out, msg) }
func (t terminal) Failure(msg string) { fmt.Fprintln(t.out, msg) }
func (t terminal) Navigate(path string) { fmt.Fprintf(t.out, "-> %s\n", path) }

// staticNonce hands over a nonce obtained out of band, for example
// "fake-valid-nonce" in the Braintree sandbox.
type staticNonce string

func (n staticNonce) RequestPaymentMethod(ctx context.Context) (string, error) {
	if strings.TrimSpace(string(n)) == "" {
		return "", errors.New("--nonce is required")
	}
	return string(n), nil
}

func newCheckoutCmd(opts *options) *cobra.Command {
	var nonce string
	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Pay for the cart with a payment method nonce",
		RunE: func(cmd *cobra.Command, args []string) error {
			cart, session, err := opts.clientState()
			if err != nil {
				return err
			}
			if !session.Authenticated() {
				return errors.New("not signed in; run login first")
			}
			if user, _ := session.User(); strings.TrimSpace(user.Address) == "" {
				return errors.New("a delivery address is required before checkout")
			}
			if cart.Len() == 0 {
				return errors.New("cart is empty")
			}

			ui := terminal{out: cmd.OutOrStdout()}
			sub := client.NewSubmitter(session, cart, opts.api(), ui, ui, logger.Discard())
			order, err := sub.Submit(cmd.Context(), staticNonce(nonce))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "order %s (%s)\n", order.ID, order.Payment.TransactionID)
			return nil
		},
	}
	cmd.Flags().StringVar(&nonce, "nonce", "", "Payment method nonce")
	return cmd
}

func newOrdersCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "orders",
		Short: "List the signed-in user's orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, session, err := opts.clientState()
			if err != nil {
				return err
			}
			if !session.Authenticated() {
				return errors.New("not signed in; run login first")
			}
			orders, err := opts.api().Orders(cmd.Context(), session.Token())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ORDER\tSTATUS\tITEMS\tAMOUNT\tCREATED")
			for _, o := range orders {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
					o.ID, o.Status, len(o.Products), o.Payment.Amount, o.CreatedAt.Format(time.DateTime))
			}
			return tw.Flush()
		},
	}
}
