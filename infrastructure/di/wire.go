//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"
	"go.uber.org/zap"

	"cortex-backend/application/commands/bus"
	"cortex-backend/application/ports"
	querybus "cortex-backend/application/queries/bus"
	"cortex-backend/domain/core/registry"
	"cortex-backend/infrastructure/config"
	"cortex-backend/pkg/auth"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *zap.Logger
	Rules        *registry.Registry
	EntityRepo   ports.EntityRepository
	SynapseRepo  ports.SynapseRepository
	UoWFactory   ports.UnitOfWorkFactory
	WriteGate    ports.WriteGate
	Publisher    ports.EventPublisher
	JWTValidator *auth.JWTValidator
	CommandBus   *bus.CommandBus
	QueryBus     *querybus.QueryBus
}

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideRegistry,
	ProvideEntityRepository,
	ProvideSynapseRepository,
	ProvideUnitOfWorkFactory,
	ProvideWriteGate,
	ProvideEventPublisher,
	ProvideJWTValidator,
	ProvideCommandBus,
	ProvideQueryBus,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
