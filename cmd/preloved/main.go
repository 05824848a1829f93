// File: cmd/preloved/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log" // Standard log for critical startup messages before zap is active
	"os"
	"os/signal"
	"syscall"

	"sipaling_preloved_client/internal/app"
	"sipaling_preloved_client/internal/auth"
	"sipaling_preloved_client/internal/config"
	"sipaling_preloved_client/internal/product"

	"go.uber.org/zap"
)

const usage = `Usage: preloved <command> [flags]

Commands:
  login          Sign in and persist the session (-email, -password)
  logout         Clear the stored session (also revokes the token server-side)
  whoami         Show the currently stored identity
  products       Browse the marketplace feed (-query to search)
  mine           List products owned by the signed-in user
  favorites      List wishlisted products
  notifications  Show the notification inbox and unread count
  watch          Keep the notification badge fresh until interrupted
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	a, cleanup, err := app.New(cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize client: %v", err)
	}
	defer cleanup()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, a, os.Args[1], os.Args[2:]); err != nil {
		a.Logger.Error("Command failed", zap.String("command", os.Args[1]), zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, a *app.App, command string, args []string) error {
	switch command {
	case "login":
		loginCmd := flag.NewFlagSet("login", flag.ExitOnError)
		email := loginCmd.String("email", "", "Account email")
		password := loginCmd.String("password", "", "Account password")
		loginCmd.Parse(args)

		user, err := a.AuthRepo.Login(ctx, auth.LoginRequest{Email: *email, Password: *password})
		if err != nil {
			return err
		}
		fmt.Printf("Signed in as %s <%s>\n", user.Name, user.Email)
		return nil

	case "logout":
		if err := a.AuthRepo.Logout(ctx); err != nil {
			return err
		}
		fmt.Println("Signed out.")
		return nil

	case "whoami":
		if !a.Sessions.IsAuthenticated() {
			fmt.Println("Not signed in.")
			return nil
		}
		id, _ := a.Sessions.UserID()
		fmt.Printf("%s <%s> (user #%d)\n", a.Sessions.UserName(), a.Sessions.UserEmail(), id)
		return nil

	case "products":
		productsCmd := flag.NewFlagSet("products", flag.ExitOnError)
		query := productsCmd.String("query", "", "Search keyword (empty lists the full feed)")
		productsCmd.Parse(args)

		var (
			items []product.Product
			err   error
		)
		if *query != "" {
			items, err = a.ProductRepo.Search(ctx, *query)
		} else {
			items, err = a.ProductRepo.List(ctx)
		}
		if err != nil {
			return err
		}
		printProducts(items)
		return nil

	case "mine":
		items, err := a.ProductRepo.MyProducts(ctx)
		if err != nil {
			return err
		}
		printProducts(items)
		return nil

	case "favorites":
		items, err := a.ProductRepo.Favorites(ctx)
		if err != nil {
			return err
		}
		printProducts(items)
		return nil

	case "notifications":
		a.NotificationVM.Load(ctx)
		state := a.NotificationVM.Snapshot()
		if state.ErrorMessage != "" {
			return fmt.Errorf("%s", state.ErrorMessage)
		}
		fmt.Printf("%d notification(s), %d unread\n", len(state.Notifications), state.UnreadCount)
		for _, n := range state.Notifications {
			marker := " "
			if !n.IsRead {
				marker = "*"
			}
			fmt.Printf("%s [#%d] %s: %s\n", marker, n.ID, n.Type, n.Message)
		}
		return nil

	case "watch":
		if err := a.NotificationJob.SetupAndStart(); err != nil {
			return err
		}
		a.Logger.Info("Watching notifications. Press Ctrl+C to stop.")
		<-ctx.Done()
		return nil

	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func printProducts(items []product.Product) {
	if len(items) == 0 {
		fmt.Println("No products.")
		return
	}
	for _, p := range items {
		fav := ""
		if p.IsFavorite {
			fav = " *"
		}
		condition := "-"
		if p.Condition != nil {
			condition = *p.Condition
		}
		fmt.Printf("[#%d] %s | %s (%s)%s\n", p.ID, p.Name, p.Price, condition, fav)
	}
}
