package importer

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"storefront/internal/domain"
)

// Kind names the entity a CSV file describes.
type Kind string

const (
	KindProducts Kind = "products"
	KindStores   Kind = "stores"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

type StoreWriter interface {
	GetByTitle(ctx context.Context, title string) (*domain.Store, error)
	Create(ctx context.Context, s domain.Store) (*domain.Store, error)
	Update(ctx context.Context, s domain.Store) (*domain.Store, error)
}

// CSVImporter reads product or store CSV files and inserts or updates rows.
type CSVImporter struct {
	reader   *csv.Reader
	products ProductWriter
	stores   StoreWriter
	storeID  string
}

// NewCSVImporter builds an importer. storeID is the store products are attached to and may be empty.
func NewCSVImporter(r io.Reader, products ProductWriter, stores StoreWriter, storeID string) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	csvr.TrimLeadingSpace = true
	return &CSVImporter{
		reader:   csvr,
		products: products,
		stores:   stores,
		storeID:  storeID,
	}
}

// DetectKind peeks at the header row. A file with a price column holds products, one with an
// address column holds stores.
func DetectKind(r io.Reader) (Kind, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read headers: %w", err)
	}
	headers, err := csv.NewReader(strings.NewReader(line)).Read()
	if err != nil {
		return "", fmt.Errorf("parse headers: %w", err)
	}
	idx := headerIndex(headers)
	if _, ok := idx["price"]; ok {
		return KindProducts, nil
	}
	if _, ok := idx["address"]; ok {
		return KindStores, nil
	}
	return "", errors.New("unrecognised CSV headers: expected a price or address column")
}

// Run parses CSV rows and upserts them. Products are keyed by permalink, stores by title.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	_, isStores := index["address"]
	if _, ok := index["price"]; ok {
		isStores = false
	}
	if isStores && i.stores == nil {
		return 0, errors.New("store CSV given but no store writer configured")
	}
	if !isStores && i.products == nil {
		return 0, errors.New("product CSV given but no product writer configured")
	}

	imported := 0
	line := 1
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}
		line++

		if pick(record, index, "title") == "" {
			continue
		}
		if isStores {
			err = i.saveStore(ctx, record, index)
		} else {
			err = i.saveProduct(ctx, record, index)
		}
		if err != nil {
			return imported, fmt.Errorf("line %d: %w", line, err)
		}
		imported++
	}

	return imported, nil
}

func (i *CSVImporter) saveProduct(ctx context.Context, record []string, index map[string]int) error {
	title := pick(record, index, "title")
	permalink := pick(record, index, "permalink")
	if permalink == "" {
		permalink = slugify(title)
	}

	price, err := domain.ParsePrice(pick(record, index, "price"))
	if err != nil {
		return fmt.Errorf("product %q: %w", permalink, err)
	}

	var stock *int
	if raw := pick(record, index, "stock"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return fmt.Errorf("product %q: invalid stock %q", permalink, raw)
		}
		stock = &n
	}

	published := true
	if raw := pick(record, index, "published"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("product %q: invalid published flag %q", permalink, raw)
		}
		published = b
	}

	p := domain.Product{
		StoreID:     i.storeID,
		Permalink:   permalink,
		Title:       title,
		Description: pick(record, index, "description"),
		Price:       price,
		Published:   published,
		Tags:        normaliseTags(pick(record, index, "tags")),
		Stock:       stock,
	}
	if _, err := i.products.Upsert(ctx, p); err != nil {
		return fmt.Errorf("upsert product %q: %w", permalink, err)
	}
	return nil
}

func (i *CSVImporter) saveStore(ctx context.Context, record []string, index map[string]int) error {
	s := domain.Store{
		Title:       pick(record, index, "title"),
		Address:     pick(record, index, "address"),
		Description: pick(record, index, "description"),
	}
	existing, err := i.stores.GetByTitle(ctx, s.Title)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		_, err = i.stores.Create(ctx, s)
	case err == nil:
		s.ID = existing.ID
		_, err = i.stores.Update(ctx, s)
	}
	if err != nil {
		return fmt.Errorf("save store %q: %w", s.Title, err)
	}
	return nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}

// normaliseTags accepts comma or semicolon separated tags and joins them with commas.
func normaliseTags(raw string) string {
	fields := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ';' })
	out := fields[:0]
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return strings.Join(out, ",")
}

func slugify(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
