// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer free
// from ORM concerns.
//
//   - base.go: BaseModel and AggregateModel (id, timestamps, version)
//   - job.go: jobs, with JSON columns for mailing metadata and components
//   - purchase_order.go: purchase_orders
//   - partner.go: vendors and companies
//   - finance.go: profit_splits and id_sequences
//   - outbox.go: outbox_events, domain events awaiting delivery to the event bus
package models
