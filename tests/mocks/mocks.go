// Package mocks provides testify mocks for the application ports.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"cortex-backend/application/ports"
	"cortex-backend/domain/core/entities"
	"cortex-backend/domain/core/valueobjects"
	"cortex-backend/domain/events"
)

// MockEntityRepository mocks ports.EntityRepository
type MockEntityRepository struct {
	mock.Mock
}

func (m *MockEntityRepository) GetByID(ctx context.Context, id valueobjects.EntityID, includeDeleted bool) (*entities.Entity, error) {
	args := m.Called(ctx, id, includeDeleted)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Entity), args.Error(1)
}

func (m *MockEntityRepository) GetByIDs(ctx context.Context, ids []valueobjects.EntityID, includeDeleted bool) ([]*entities.Entity, error) {
	args := m.Called(ctx, ids, includeDeleted)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Entity), args.Error(1)
}

func (m *MockEntityRepository) ListByKind(ctx context.Context, kind entities.Kind, page ports.Pagination) ([]*entities.Entity, string, error) {
	args := m.Called(ctx, kind, page)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).([]*entities.Entity), args.String(1), args.Error(2)
}

// MockSynapseRepository mocks ports.SynapseRepository
type MockSynapseRepository struct {
	mock.Mock
}

func (m *MockSynapseRepository) GetByID(ctx context.Context, id valueobjects.EntityID, includeDeleted bool) (*entities.Synapse, error) {
	args := m.Called(ctx, id, includeDeleted)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Synapse), args.Error(1)
}

func (m *MockSynapseRepository) GetByEndpoint(ctx context.Context, id valueobjects.EntityID, includeDeleted bool) ([]*entities.Synapse, error) {
	args := m.Called(ctx, id, includeDeleted)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Synapse), args.Error(1)
}

func (m *MockSynapseRepository) ExistsByKey(ctx context.Context, from, to valueobjects.EntityID, role string) (bool, error) {
	args := m.Called(ctx, from, to, role)
	return args.Bool(0), args.Error(1)
}

// MockUnitOfWork mocks ports.UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockUnitOfWork) RegisterEntitySave(entity *entities.Entity) error {
	return m.Called(entity).Error(0)
}

func (m *MockUnitOfWork) RegisterSynapseCreate(synapse *entities.Synapse) error {
	return m.Called(synapse).Error(0)
}

func (m *MockUnitOfWork) RegisterSynapseSave(synapse *entities.Synapse) error {
	return m.Called(synapse).Error(0)
}

func (m *MockUnitOfWork) RegisterSynapseDelete(synapse *entities.Synapse) error {
	return m.Called(synapse).Error(0)
}

func (m *MockUnitOfWork) RegisterEvent(event events.DomainEvent) {
	m.Called(event)
}

func (m *MockUnitOfWork) Commit(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	return m.Called().Error(0)
}

func (m *MockUnitOfWork) CommittedEvents() []events.DomainEvent {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]events.DomainEvent)
}

// MockUnitOfWorkFactory returns a fixed unit of work
type MockUnitOfWorkFactory struct {
	UoW ports.UnitOfWork
}

func (f *MockUnitOfWorkFactory) New() ports.UnitOfWork {
	return f.UoW
}

// MockWriteGate mocks ports.WriteGate
type MockWriteGate struct {
	mock.Mock
}

func (m *MockWriteGate) IsWritePermitted(ctx context.Context) bool {
	return m.Called(ctx).Bool(0)
}

// MockEventPublisher mocks ports.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *MockEventPublisher) PublishBatch(ctx context.Context, batch []events.DomainEvent) error {
	return m.Called(ctx, batch).Error(0)
}
