package brokerage

import (
	"context"

	"github.com/printbroker/backend/internal/domain/finance"
	"github.com/printbroker/backend/internal/domain/job"
	"github.com/printbroker/backend/internal/domain/purchasing"
	"github.com/printbroker/backend/internal/domain/shared"
)

// TransactionScope runs a unit of work atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all brokerage repositories within a transaction.
// All repositories returned share the same underlying database transaction, and
// callers must not touch repositories from outside the scope while it is open.
type TransactionalRepositories interface {
	Jobs() job.Repository
	PurchaseOrders() purchasing.PurchaseOrderRepository
	Vendors() purchasing.VendorRepository
	Companies() purchasing.CompanyRepository
	ProfitSplits() finance.ProfitSplitRepository
	// Outbox stores events that must reach the bus exactly when the
	// transaction commits. They are delivered later by the outbox processor.
	Outbox() shared.EventPublisher
}
