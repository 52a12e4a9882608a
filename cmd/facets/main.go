package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/backend"
	"github.com/jafarshop/storefront/internal/catalog"
	"github.com/jafarshop/storefront/internal/config"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run cmd/facets/main.go <category> [--json]")
		fmt.Println("Example: go run cmd/facets/main.go clothing")
		os.Exit(1)
	}

	category := os.Args[1]
	asJSON := len(os.Args) > 2 && os.Args[2] == "--json"

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	store := catalog.NewStore(backend.NewClient(cfg.Backend, logger), logger)

	st, err := store.LoadCategory(context.Background(), category)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load category: %v\n", err)
		os.Exit(1)
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(st.Facets); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode facets: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if len(st.Listing) == 0 {
		fmt.Printf("No products in category '%s'.\n", category)
		os.Exit(1)
	}

	f := st.Facets
	genders := make([]string, 0, len(f.Genders))
	for _, g := range f.Genders {
		genders = append(genders, string(g))
	}

	fmt.Printf("Category: %s (%d products)\n\n", category, len(st.Listing))
	fmt.Printf("Genders:         %s\n", strings.Join(genders, ", "))
	fmt.Printf("Childcategories: %s\n", strings.Join(f.Childcategories, ", "))
	fmt.Printf("Brands:          %s\n", strings.Join(f.Brands, ", "))
	fmt.Printf("Colors:          %s\n", strings.Join(f.Colors, ", "))
	fmt.Printf("Sizes:           %s\n", strings.Join(f.Sizes, ", "))
	fmt.Printf("Materials:       %s\n", strings.Join(f.Materials, ", "))
	fmt.Printf("Price:           %.2f - %.2f\n", f.Price.Min, f.Price.Max)
}
