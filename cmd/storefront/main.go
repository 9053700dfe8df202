// Command storefront is a terminal client for the VerdeMarket marketplace:
// browse the catalog, manage a cart that survives between runs, and check
// out against the backend API.
//
// Usage:
//
//	storefront [flags] <command> [args]
//
// Commands:
//
//	login <email>            log in (password read from STOREFRONT_PASSWORD or prompt)
//	register <name> <email>  create an account and log in
//	logout                   clear the stored session
//	whoami                   show the current user
//	products                 list the catalog
//	search <query>           search products by name/description
//	product <id>             show one product
//	add <product-id> [qty]   add a product to the cart
//	remove <product-id>      remove a product from the cart
//	update <product-id> <qty> change a line's quantity
//	cart                     show the cart
//	clear                    empty the cart
//	checkout                 submit the cart as an order
//	orders                   list your orders
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/verdemarket/storefront"
	"github.com/verdemarket/storefront/core"
	"github.com/verdemarket/storefront/orders"
	"github.com/verdemarket/storefront/session"
)

func main() {
	baseURL := flag.String("api", "", "backend API base URL (default from STOREFRONT_API_URL)")
	configFile := flag.String("config", "", "path to a YAML config file")
	logLevel := flag.String("log-level", "", "log level: debug, info, warn, error")
	payMethod := flag.String("method", string(orders.PaymentCash), "checkout payment method: efectivo, tarjeta, transferencia")
	payRef := flag.String("ref", "", "checkout payment reference")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	var opts []core.Option
	if *configFile != "" {
		opts = append(opts, core.WithConfigFile(*configFile))
	}
	if *baseURL != "" {
		opts = append(opts, core.WithBaseURL(*baseURL))
	}
	if *logLevel != "" {
		opts = append(opts, core.WithLogLevel(*logLevel))
	}

	cfg, err := core.NewConfig(opts...)
	if err != nil {
		fatal("invalid configuration: %v", err)
	}

	app, err := storefront.New(cfg,
		storefront.WithAuthFailureHandler(func() {
			fmt.Fprintln(os.Stderr, "session expired, please log in again")
		}),
	)
	if err != nil {
		fatal("failed to initialize client: %v", err)
	}
	defer func() {
		_ = app.Close()
	}()

	ctx := context.Background()
	if err := app.Start(ctx); err != nil {
		fatal("failed to restore state: %v", err)
	}

	if err := run(ctx, app, args, *payMethod, *payRef); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, app *storefront.App, args []string, payMethod, payRef string) error {
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "login":
		if len(rest) < 1 {
			return fmt.Errorf("usage: login <email>")
		}
		password := os.Getenv("STOREFRONT_PASSWORD")
		if password == "" {
			fmt.Print("password: ")
			reader := bufio.NewReader(os.Stdin)
			line, err := reader.ReadString('\n')
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			password = strings.TrimSpace(line)
		}
		user, err := app.Session.Login(ctx, rest[0], password)
		if err != nil {
			return err
		}
		fmt.Printf("logged in as %s (%s)\n", user.Name, user.Email)

	case "register":
		if len(rest) < 2 {
			return fmt.Errorf("usage: register <name> <email>")
		}
		password := os.Getenv("STOREFRONT_PASSWORD")
		if password == "" {
			fmt.Print("password: ")
			reader := bufio.NewReader(os.Stdin)
			line, err := reader.ReadString('\n')
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			password = strings.TrimSpace(line)
		}
		user, err := app.Session.Register(ctx, session.RegisterRequest{
			Name:     rest[0],
			Email:    rest[1],
			Password: password,
		})
		if err != nil {
			return err
		}
		fmt.Printf("welcome, %s\n", user.Name)

	case "logout":
		if err := app.Session.Logout(ctx); err != nil {
			return err
		}
		fmt.Println("logged out")

	case "whoami":
		user := app.Session.User()
		if user == nil {
			fmt.Println("not logged in")
			return nil
		}
		fmt.Printf("%s <%s> (id %d)\n", user.Name, user.Email, user.ID)

	case "products":
		products, err := app.Catalog.List(ctx)
		if err != nil {
			return err
		}
		for _, p := range products {
			fmt.Printf("%4d  %-30s %10s  %s (stock %d)\n", p.ID, p.Name, p.Price.StringFixed(2), p.Category, p.Stock)
		}

	case "search":
		if len(rest) < 1 {
			return fmt.Errorf("usage: search <query>")
		}
		products, err := app.Catalog.Search(ctx, strings.Join(rest, " "))
		if err != nil {
			return err
		}
		for _, p := range products {
			fmt.Printf("%4d  %-30s %10s\n", p.ID, p.Name, p.Price.StringFixed(2))
		}

	case "product":
		id, err := intArg(rest, 0, "product")
		if err != nil {
			return err
		}
		p, err := app.Catalog.Get(ctx, id)
		if err != nil {
			return err
		}
		fmt.Printf("%s (%s) - %s\n%s\n", p.Name, p.Category, p.Price.StringFixed(2), p.Description)
		if p.Origin != "" {
			fmt.Printf("origin: %s\n", p.Origin)
		}

	case "add":
		id, err := intArg(rest, 0, "add")
		if err != nil {
			return err
		}
		qty := 1
		if len(rest) > 1 {
			qty, err = strconv.Atoi(rest[1])
			if err != nil || qty < 1 {
				return fmt.Errorf("quantity must be a positive integer")
			}
		}
		product, err := app.Catalog.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := app.Cart.AddItem(ctx, *product, qty); err != nil {
			return err
		}
		fmt.Printf("added %d x %s, cart total %s\n", qty, product.Name, app.Cart.Total().StringFixed(2))

	case "remove":
		id, err := intArg(rest, 0, "remove")
		if err != nil {
			return err
		}
		if err := app.Cart.RemoveItem(ctx, id); err != nil {
			return err
		}
		fmt.Printf("cart total %s\n", app.Cart.Total().StringFixed(2))

	case "update":
		id, err := intArg(rest, 0, "update")
		if err != nil {
			return err
		}
		if len(rest) < 2 {
			return fmt.Errorf("usage: update <product-id> <qty>")
		}
		qty, err := strconv.Atoi(rest[1])
		if err != nil {
			return fmt.Errorf("quantity must be an integer")
		}
		if err := app.Cart.UpdateQuantity(ctx, id, qty); err != nil {
			return err
		}
		fmt.Printf("cart total %s\n", app.Cart.Total().StringFixed(2))

	case "cart":
		lines := app.Cart.Lines()
		if len(lines) == 0 {
			fmt.Println("cart is empty")
			return nil
		}
		for _, line := range lines {
			name := fmt.Sprintf("product %d", line.ProductID)
			price := "?"
			if line.Product != nil {
				name = line.Product.Name
				price = line.Product.Price.StringFixed(2)
			}
			fmt.Printf("%4d x %-30s @ %s\n", line.Quantity, name, price)
		}
		fmt.Printf("total: %s\n", app.Cart.Total().StringFixed(2))

	case "clear":
		if err := app.Cart.Clear(ctx); err != nil {
			return err
		}
		fmt.Println("cart cleared")

	case "checkout":
		order, err := app.Orders.Checkout(ctx, app.Cart, orders.PaymentMethod(payMethod), payRef)
		if err != nil {
			return err
		}
		fmt.Printf("order %d placed, total %s (%s)\n", order.ID, order.Total.StringFixed(2), order.Status)

	case "orders":
		list, err := app.Orders.List(ctx)
		if err != nil {
			return err
		}
		for _, o := range list {
			fmt.Printf("%4d  %10s  %-10s %s\n", o.ID, o.Total.StringFixed(2), o.Status, o.CreatedAt)
		}

	default:
		return fmt.Errorf("unknown command %q", cmd)
	}

	return nil
}

func intArg(args []string, i int, verb string) (int, error) {
	if len(args) <= i {
		return 0, fmt.Errorf("usage: %s <product-id>", verb)
	}
	id, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, fmt.Errorf("%q is not a numeric id", args[i])
	}
	return id, nil
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
