package event

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sync"

	"github.com/printbroker/backend/internal/domain/job"
	"github.com/printbroker/backend/internal/domain/purchasing"
	"github.com/printbroker/backend/internal/domain/shared"
)

// EventSerializer converts domain events to and from their outbox payload
type EventSerializer struct {
	mu       sync.RWMutex
	registry map[string]reflect.Type
}

// NewEventSerializer creates a serializer with no registered types
func NewEventSerializer() *EventSerializer {
	return &EventSerializer{registry: make(map[string]reflect.Type)}
}

// NewBrokerageEventSerializer creates a serializer that knows every brokerage event
func NewBrokerageEventSerializer() *EventSerializer {
	s := NewEventSerializer()
	s.Register(job.EventTypeJobCreated, &job.JobCreatedEvent{})
	s.Register(job.EventTypePathwayChanged, &job.PathwayChangedEvent{})
	s.Register(job.EventTypeJobSent, &job.JobSentEvent{})
	s.Register(job.EventTypeJobInvoiced, &job.JobInvoicedEvent{})

	s.Register(purchasing.EventTypePurchaseOrderCreated, &purchasing.PurchaseOrderCreatedEvent{})
	s.Register(purchasing.EventTypePurchaseOrderVoided, &purchasing.PurchaseOrderVoidedEvent{})
	s.Register(purchasing.EventTypePurchaseOrderVendorChanged, &purchasing.PurchaseOrderVendorChangedEvent{})
	s.Register(purchasing.EventTypeExecutionIDAssigned, &purchasing.ExecutionIDAssignedEvent{})
	return s
}

// Register maps an event type to the Go type it deserializes into
func (s *EventSerializer) Register(eventType string, instance shared.DomainEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := reflect.TypeOf(instance)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	s.registry[eventType] = t
}

// Serialize encodes an event as JSON
func (s *EventSerializer) Serialize(event shared.DomainEvent) ([]byte, error) {
	return json.Marshal(event)
}

// Deserialize decodes a payload into the type registered for eventType
func (s *EventSerializer) Deserialize(eventType string, data []byte) (shared.DomainEvent, error) {
	s.mu.RLock()
	t, ok := s.registry[eventType]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown event type: %s", eventType)
	}

	ptr := reflect.New(t).Interface()
	if err := json.Unmarshal(data, ptr); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s event: %w", eventType, err)
	}
	event, ok := ptr.(shared.DomainEvent)
	if !ok {
		return nil, fmt.Errorf("registered type for %s does not implement DomainEvent", eventType)
	}
	return event, nil
}

// IsRegistered reports whether eventType can be deserialized
func (s *EventSerializer) IsRegistered(eventType string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.registry[eventType]
	return ok
}
