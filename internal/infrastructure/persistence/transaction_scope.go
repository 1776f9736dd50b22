package persistence

import (
	"context"

	"github.com/printbroker/backend/internal/application/brokerage"
	"github.com/printbroker/backend/internal/domain/finance"
	"github.com/printbroker/backend/internal/domain/job"
	"github.com/printbroker/backend/internal/domain/purchasing"
	"github.com/printbroker/backend/internal/domain/shared"
	"github.com/printbroker/backend/internal/infrastructure/event"
	"gorm.io/gorm"
)

// GormTransactionScope implements brokerage.TransactionScope using GORM transactions.
type GormTransactionScope struct {
	db         *gorm.DB
	serializer *event.EventSerializer
}

// NewGormTransactionScope creates a new GormTransactionScope whose outbox
// accepts every brokerage event.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db, serializer: event.NewBrokerageEventSerializer()}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos brokerage.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx, serializer: s.serializer})
	})
}

// gormTransactionalRepositories builds repositories bound to one transaction.
type gormTransactionalRepositories struct {
	tx         *gorm.DB
	serializer *event.EventSerializer
}

func (r *gormTransactionalRepositories) Jobs() job.Repository {
	return NewGormJobRepository(r.tx)
}

func (r *gormTransactionalRepositories) PurchaseOrders() purchasing.PurchaseOrderRepository {
	return NewGormPurchaseOrderRepository(r.tx)
}

func (r *gormTransactionalRepositories) Vendors() purchasing.VendorRepository {
	return NewGormVendorRepository(r.tx)
}

func (r *gormTransactionalRepositories) Companies() purchasing.CompanyRepository {
	return NewGormCompanyRepository(r.tx)
}

func (r *gormTransactionalRepositories) ProfitSplits() finance.ProfitSplitRepository {
	return NewGormProfitSplitRepository(r.tx)
}

func (r *gormTransactionalRepositories) Outbox() shared.EventPublisher {
	return event.NewOutboxPublisher(event.NewGormOutboxRepository(r.tx), r.serializer)
}

var _ brokerage.TransactionScope = (*GormTransactionScope)(nil)
var _ brokerage.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
