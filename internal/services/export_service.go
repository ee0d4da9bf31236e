package services

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"catalogapi/internal/domain"
	"catalogapi/internal/domain/models"
	"catalogapi/internal/pagination"
	"catalogapi/internal/utils"

	"github.com/phpdave11/gofpdf"
	"go.uber.org/zap"
)

const DefaultExportRows = 500

type productFinder interface {
	FindMany(ctx context.Context, q pagination.Query) ([]models.Product, int, error)
}

// ExportService renders the filtered product list as a PDF catalog.
type ExportService struct {
	Products productFinder
	MaxRows  int
	Clock    func() time.Time
	Log      *zap.Logger
}

type catalogData struct {
	Products    []models.Product
	Total       int
	Filters     []string
	GeneratedAt time.Time
}

// Catalog takes the first MaxRows products matching the product filters in query.
func (s ExportService) Catalog(ctx context.Context, query url.Values) ([]byte, string, error) {
	limit := s.MaxRows
	if limit <= 0 {
		limit = DefaultExportRows
	}
	products, total, err := s.Products.FindMany(ctx, pagination.Query{
		Filters: ProductFilters.Build(query),
		Take:    limit,
	})
	if err != nil {
		return nil, "", fmt.Errorf("export products: %w", err)
	}

	data := catalogData{
		Products:    products,
		Total:       total,
		Filters:     describeFilters(query),
		GeneratedAt: s.now(),
	}
	pdf, name, err := buildCatalogPDF(data)
	if err != nil {
		return nil, "", domain.InternalError{Msg: "render catalog", Err: err}
	}
	utils.LogEvent(ctx, s.Log, "products", "export", fmt.Sprintf("rows=%d total=%d", len(products), total))
	return pdf, name, nil
}

func (s ExportService) now() time.Time {
	if s.Clock != nil {
		return s.Clock().UTC()
	}
	return time.Now().UTC()
}

func describeFilters(query url.Values) []string {
	var out []string
	for _, f := range ProductFilters {
		if v := strings.TrimSpace(query.Get(f.Param)); v != "" {
			out = append(out, f.Param+"="+v)
		}
	}
	return out
}

func buildCatalogPDF(d catalogData) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Product Catalog", false)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "PRODUCT CATALOG")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, "Generated : "+d.GeneratedAt.Format("2006-01-02 15:04")+" UTC")
	pdf.Ln(6)
	pdf.Cell(0, 6, "Filters   : "+tr(safe(strings.Join(d.Filters, ", "), "none")))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Products  : %d of %d", len(d.Products), d.Total))
	pdf.Ln(10)

	widths := []float64{70, 45, 30, 45}
	header := []string{"Name", "Category", "Price", "Owner"}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range header {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	var sum float64
	for _, p := range d.Products {
		category := "-"
		if p.Category != nil {
			category = p.Category.Name
		}
		owner := "-"
		if p.User != nil {
			owner = p.User.Email
		}
		row := []string{clip(p.Name, 40), clip(category, 25), utils.FormatMoney(p.Price), clip(owner, 25)}
		for i, v := range row {
			align := "L"
			if i == 2 {
				align = "R"
			}
			pdf.CellFormat(widths[i], 6, tr(v), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
		sum += p.Price
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.Cell(0, 7, "Listed value: "+utils.FormatMoney(sum))
	if len(d.Products) < d.Total {
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.MultiCell(0, 5, fmt.Sprintf("Only the first %d matching products are listed. Narrow the filters to export the rest.", len(d.Products)), "", "", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("PRODUCTS_%s.pdf", d.GeneratedAt.Format("20060102_150405"))
	return buf.Bytes(), filename, nil
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func clip(v string, n int) string {
	v = safe(v, "-")
	r := []rune(v)
	if len(r) > n {
		return string(r[:n-1]) + "~"
	}
	return v
}
