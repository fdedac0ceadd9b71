package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/domain"
	"storefront/internal/importer"
	"storefront/internal/repository/product"
	"storefront/internal/repository/store"
)

func main() {
	var (
		filePath   string
		storeTitle string
	)
	flag.StringVar(&filePath, "file", "", "Path to a product or store CSV file")
	flag.StringVar(&storeTitle, "store", "", "Title of the store products are imported into (created when missing)")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Load()
	logger := log.New(os.Stdout, "[importer] ", log.LstdFlags|log.LUTC|log.Lshortfile)
	ctx := context.Background()

	kind, err := detect(filePath)
	if err != nil {
		logger.Fatalf("inspect file: %v", err)
	}
	if kind == importer.KindProducts && storeTitle == "" {
		logger.Fatalf("-store is required when importing products")
	}

	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	storeRepo := store.NewPostgres(pool)
	var storeID string
	if kind == importer.KindProducts {
		st, err := storeRepo.GetByTitle(ctx, storeTitle)
		if errors.Is(err, domain.ErrNotFound) {
			st, err = storeRepo.Create(ctx, domain.Store{Title: storeTitle})
		}
		if err != nil {
			logger.Fatalf("ensure store %q: %v", storeTitle, err)
		}
		storeID = st.ID
	}

	f, err := os.Open(filePath)
	if err != nil {
		logger.Fatalf("open file: %v", err)
	}
	defer f.Close()

	imp := importer.NewCSVImporter(f, product.NewPostgres(pool, logger), storeRepo, storeID)

	start := time.Now()
	count, err := imp.Run(ctx)
	if err != nil {
		logger.Fatalf("import failed after %d rows: %v", count, err)
	}

	fmt.Printf("Imported %d %s in %s\n", count, kind, time.Since(start).Truncate(time.Millisecond))
}

func detect(path string) (importer.Kind, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return importer.DetectKind(f)
}
