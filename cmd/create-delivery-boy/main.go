package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/auth"
	"github.com/jafarshop/storefront/internal/backend"
	"github.com/jafarshop/storefront/internal/config"
	"github.com/jafarshop/storefront/internal/delivery"
	"github.com/jafarshop/storefront/internal/domain"
)

func main() {
	if len(os.Args) < 5 {
		fmt.Println("Usage: go run cmd/create-delivery-boy/main.go <name> <email> <phone> <password>")
		fmt.Println("Example: go run cmd/create-delivery-boy/main.go \"Omar Haddad\" omar@example.com 0791234567 \"s3cret!\"")
		fmt.Println("Admin credentials are read from ADMIN_EMAIL and ADMIN_PASSWORD.")
		os.Exit(1)
	}

	req := backend.CreateDeliveryBoyRequest{
		Name:     os.Args[1],
		Email:    os.Args[2],
		Phone:    os.Args[3],
		Password: os.Args[4],
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	ctx := context.Background()
	client := backend.NewClient(cfg.Backend, logger)

	// Sign in as admin
	sess, err := auth.NewStore(client, logger).SignIn(ctx, os.Getenv("ADMIN_EMAIL"), os.Getenv("ADMIN_PASSWORD"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to sign in: %v\n", err)
		os.Exit(1)
	}
	if sess.Role() != domain.RoleAdmin {
		fmt.Fprintf(os.Stderr, "Signed-in user is %q, not an admin\n", sess.Role())
		os.Exit(1)
	}

	// Create delivery boy
	store := delivery.NewStore(client.WithToken(sess.Token()), logger)
	boy, err := store.CreateDeliveryBoy(ctx, req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create delivery boy: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Delivery boy created successfully!\n\n")
	fmt.Printf("ID: %s\n", boy.ID)
	fmt.Printf("Name: %s\n", boy.Name)
	fmt.Printf("Email: %s\n", boy.Email)
	fmt.Printf("Phone: %s\n", boy.Phone)
	fmt.Printf("\nThey can now sign in with the password you chose.\n")
}
