package analytics

import (
	"context"
	"log"
	"time"

	"lexmart/internal/caching"
	"lexmart/internal/common"
	"lexmart/internal/repositories"

	"github.com/google/uuid"
)

const (
	snapshotTTL    = 15 * time.Minute
	snapshotWindow = 365 // days of invoice history per snapshot
)

// BillingSnapshot aggregates a tenant's invoice history over the trailing
// year. Amounts are rupee values as stored on the invoices.
type BillingSnapshot struct {
	TotalInvoices    int       `json:"total_invoices"`
	PaidInvoices     int       `json:"paid_invoices"`
	UnpaidInvoices   int       `json:"unpaid_invoices"`
	OverdueInvoices  int       `json:"overdue_invoices"`
	TotalBilled      float64   `json:"total_billed"`
	TotalCollected   float64   `json:"total_collected"`
	TotalOutstanding float64   `json:"total_outstanding"`
	GSTCollected     float64   `json:"gst_collected"`
	TDSWithheld      float64   `json:"tds_withheld"`
	AvgInvoiceValue  float64   `json:"avg_invoice_value"`
	CollectionRate   float64   `json:"collection_rate"`
	GeneratedAt      time.Time `json:"generated_at"`
}

// Service computes billing analytics per tenant, with a Redis-backed
// snapshot cache in front of the database aggregation.
type Service struct {
	invoiceRepo repositories.InvoiceRepository
	cacheSvc    caching.CacheService
}

func NewService(invoiceRepo repositories.InvoiceRepository, cacheSvc caching.CacheService) *Service {
	return &Service{invoiceRepo: invoiceRepo, cacheSvc: cacheSvc}
}

// TenantBilling returns the tenant's billing snapshot, serving from cache
// when a fresh one exists.
func (s *Service) TenantBilling(ctx context.Context, tenantID uuid.UUID) (*BillingSnapshot, error) {
	if s.cacheSvc != nil {
		if cached, err := s.cacheSvc.GetBillingAnalytics(ctx, tenantID); err == nil && cached != nil {
			if snapshot, ok := snapshotFromMap(cached); ok {
				return snapshot, nil
			}
		}
	}
	return s.CalculateTenantBilling(ctx, tenantID)
}

// CalculateTenantBilling recomputes the snapshot from invoice rows and
// refreshes the cache.
func (s *Service) CalculateTenantBilling(ctx context.Context, tenantID uuid.UUID) (*BillingSnapshot, error) {
	now := time.Now()
	start := now.AddDate(0, 0, -snapshotWindow)

	invoices, err := s.invoiceRepo.GetInvoicesByTenantAndDateRange(ctx, tenantID, start, now)
	if err != nil {
		log.Printf("Failed to load invoices for billing analytics (tenant %s): %v", tenantID, err)
		return nil, common.SecureErrorMessage("calculate billing analytics", err)
	}

	snapshot := &BillingSnapshot{GeneratedAt: now}
	for _, invoice := range invoices {
		if invoice.Status == "cancelled" {
			continue
		}

		snapshot.TotalInvoices++
		snapshot.TotalBilled += invoice.TotalAmount

		switch invoice.Status {
		case "paid":
			snapshot.PaidInvoices++
			snapshot.TotalCollected += invoice.TotalAmount
		case "unpaid":
			snapshot.UnpaidInvoices++
			snapshot.TotalOutstanding += invoice.TotalAmount
		case "overdue":
			snapshot.OverdueInvoices++
			snapshot.TotalOutstanding += invoice.TotalAmount
		}

		snapshot.GSTCollected += common.SafeFloat64(invoice.CGST) + common.SafeFloat64(invoice.SGST) + common.SafeFloat64(invoice.IGST)
		snapshot.TDSWithheld += common.SafeFloat64(invoice.TDSAmount)
	}

	if snapshot.TotalInvoices > 0 {
		snapshot.AvgInvoiceValue = snapshot.TotalBilled / float64(snapshot.TotalInvoices)

		settled := snapshot.PaidInvoices + snapshot.UnpaidInvoices + snapshot.OverdueInvoices
		if settled > 0 {
			snapshot.CollectionRate = float64(snapshot.PaidInvoices) / float64(settled) * 100
		}
	}

	if s.cacheSvc != nil {
		if err := s.cacheSvc.SetBillingAnalytics(ctx, tenantID, snapshotToMap(snapshot), snapshotTTL); err != nil {
			log.Printf("Failed to cache billing analytics for tenant %s: %v", tenantID, err)
		}
	}

	return snapshot, nil
}

func snapshotToMap(s *BillingSnapshot) map[string]interface{} {
	return map[string]interface{}{
		"total_invoices":    s.TotalInvoices,
		"paid_invoices":     s.PaidInvoices,
		"unpaid_invoices":   s.UnpaidInvoices,
		"overdue_invoices":  s.OverdueInvoices,
		"total_billed":      s.TotalBilled,
		"total_collected":   s.TotalCollected,
		"total_outstanding": s.TotalOutstanding,
		"gst_collected":     s.GSTCollected,
		"tds_withheld":      s.TDSWithheld,
		"avg_invoice_value": s.AvgInvoiceValue,
		"collection_rate":   s.CollectionRate,
		"generated_at":      s.GeneratedAt.Format(time.RFC3339),
	}
}

func snapshotFromMap(m map[string]interface{}) (*BillingSnapshot, bool) {
	generatedAt, ok := m["generated_at"].(string)
	if !ok {
		return nil, false
	}
	ts, err := time.Parse(time.RFC3339, generatedAt)
	if err != nil {
		return nil, false
	}

	return &BillingSnapshot{
		TotalInvoices:    asInt(m["total_invoices"]),
		PaidInvoices:     asInt(m["paid_invoices"]),
		UnpaidInvoices:   asInt(m["unpaid_invoices"]),
		OverdueInvoices:  asInt(m["overdue_invoices"]),
		TotalBilled:      asFloat(m["total_billed"]),
		TotalCollected:   asFloat(m["total_collected"]),
		TotalOutstanding: asFloat(m["total_outstanding"]),
		GSTCollected:     asFloat(m["gst_collected"]),
		TDSWithheld:      asFloat(m["tds_withheld"]),
		AvgInvoiceValue:  asFloat(m["avg_invoice_value"]),
		CollectionRate:   asFloat(m["collection_rate"]),
		GeneratedAt:      ts,
	}, true
}

// JSON round-trips turn numbers into float64.
func asInt(v interface{}) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return 0
	}
}

func asFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}
