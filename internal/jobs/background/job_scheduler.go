package background

import (
	"context"
	"log"
	"sync"
	"time"

	"lexmart/internal/analytics"
	"lexmart/internal/repositories"
	"lexmart/internal/services"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
)

// JobScheduler runs the recurring billing maintenance jobs.
type JobScheduler struct {
	scheduler    gocron.Scheduler
	invoiceSvc   services.InvoiceServiceInterface
	analyticsSvc *analytics.Service
	tenantRepo   repositories.TenantRepository
	jobs         map[string]gocron.Job
	mu           sync.RWMutex
}

// NewJobScheduler creates a new job scheduler
func NewJobScheduler(invoiceSvc services.InvoiceServiceInterface, analyticsSvc *analytics.Service, tenantRepo repositories.TenantRepository) *JobScheduler {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	js := &JobScheduler{
		scheduler:    scheduler,
		invoiceSvc:   invoiceSvc,
		analyticsSvc: analyticsSvc,
		tenantRepo:   tenantRepo,
		jobs:         make(map[string]gocron.Job),
	}

	js.registerJobs()
	return js
}

// Start starts the job scheduler
func (js *JobScheduler) Start() error {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
	return nil
}

// Stop stops the job scheduler
func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() {
	// Overdue sweep - hourly
	overdueJob, err := js.scheduler.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(js.markOverdueInvoices, context.Background()),
		gocron.WithName("overdue-invoice-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create overdue sweep job: %v", err)
	} else {
		js.jobs["overdue-sweep"] = overdueJob
	}

	// Billing analytics refresh - every 15 minutes
	analyticsJob, err := js.scheduler.NewJob(
		gocron.DurationJob(15*time.Minute),
		gocron.NewTask(js.refreshBillingAnalytics, context.Background()),
		gocron.WithName("billing-analytics-refresh"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create analytics refresh job: %v", err)
	} else {
		js.jobs["analytics-refresh"] = analyticsJob
	}

	log.Printf("Registered %d background jobs", len(js.jobs))
}

// markOverdueInvoices walks every active firm and flips past-due unpaid
// invoices to overdue.
func (js *JobScheduler) markOverdueInvoices(ctx context.Context) error {
	log.Printf("Starting overdue invoice sweep")

	tenantIDs, err := js.tenantRepo.ListActiveIDs(ctx)
	if err != nil {
		log.Printf("Failed to list tenants for overdue sweep: %v", err)
		return err
	}

	for _, tenantID := range tenantIDs {
		if err := js.invoiceSvc.MarkOverdueInvoices(ctx, tenantID); err != nil {
			log.Printf("Overdue sweep failed for tenant %s: %v", tenantID, err)
		}
	}

	log.Printf("Completed overdue invoice sweep for %d tenants", len(tenantIDs))
	return nil
}

// refreshBillingAnalytics recomputes billing snapshots for all active firms.
func (js *JobScheduler) refreshBillingAnalytics(ctx context.Context) error {
	log.Printf("Starting billing analytics refresh")

	tenantIDs, err := js.tenantRepo.ListActiveIDs(ctx)
	if err != nil {
		log.Printf("Failed to list tenants for analytics refresh: %v", err)
		return err
	}

	// Bounded fan-out keeps the database comfortable during the refresh.
	semaphore := make(chan struct{}, 5)
	var wg sync.WaitGroup

	for _, tenantID := range tenantIDs {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			if _, err := js.analyticsSvc.CalculateTenantBilling(ctx, id); err != nil {
				log.Printf("Failed to refresh billing analytics for tenant %s: %v", id, err)
			}
		}(tenantID)
	}

	wg.Wait()
	log.Printf("Completed billing analytics refresh for %d tenants", len(tenantIDs))
	return nil
}

// AddJob adds a custom job to the scheduler
func (js *JobScheduler) AddJob(name string, interval time.Duration, taskFn interface{}, params ...interface{}) error {
	js.mu.Lock()
	defer js.mu.Unlock()

	job, err := js.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(taskFn, params...),
		gocron.WithName(name),
	)
	if err != nil {
		return err
	}

	js.jobs[name] = job
	log.Printf("Added custom job: %s", name)
	return nil
}

// RemoveJob removes a job from the scheduler
func (js *JobScheduler) RemoveJob(name string) error {
	js.mu.Lock()
	defer js.mu.Unlock()

	if job, exists := js.jobs[name]; exists {
		err := js.scheduler.RemoveJob(job.ID())
		delete(js.jobs, name)
		return err
	}
	return nil
}

// GetJobStatus returns information about scheduled jobs
func (js *JobScheduler) GetJobStatus() map[string]interface{} {
	js.mu.RLock()
	defer js.mu.RUnlock()

	jobs := make([]string, 0, len(js.jobs))
	for name := range js.jobs {
		jobs = append(jobs, name)
	}

	return map[string]interface{}{
		"total_jobs": len(js.jobs),
		"jobs":       jobs,
	}
}
