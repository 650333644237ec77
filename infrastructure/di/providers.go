package di

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"

	"cortex-backend/application/commands"
	"cortex-backend/application/commands/bus"
	commands_handlers "cortex-backend/application/commands/handlers"
	"cortex-backend/application/ports"
	"cortex-backend/application/queries"
	querybus "cortex-backend/application/queries/bus"
	queries_handlers "cortex-backend/application/queries/handlers"
	"cortex-backend/domain/core/registry"
	"cortex-backend/infrastructure/acl"
	"cortex-backend/infrastructure/config"
	"cortex-backend/infrastructure/messaging/eventbridge"
	"cortex-backend/infrastructure/persistence/dynamodb"
	"cortex-backend/pkg/auth"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}
	if level, err := zap.ParseAtomicLevel(cfg.LogLevel); err == nil {
		zapCfg.Level = level
	}
	return zapCfg.Build()
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideRegistry creates the relationship rule registry. All rule
// contributions are merged here, once, at startup.
func ProvideRegistry() *registry.Registry {
	return registry.NewDefaultRegistry()
}

// ProvideEntityRepository creates an entity repository
func ProvideEntityRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.EntityRepository {
	return dynamodb.NewEntityRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideSynapseRepository creates a synapse repository
func ProvideSynapseRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.SynapseRepository {
	return dynamodb.NewSynapseRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideUnitOfWorkFactory creates a unit of work factory
func ProvideUnitOfWorkFactory(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.UnitOfWorkFactory {
	return dynamodb.NewUnitOfWorkFactory(client, cfg.DynamoDBTable, logger)
}

// ProvideWriteGate creates the write gate
func ProvideWriteGate(cfg *config.Config, logger *zap.Logger) ports.WriteGate {
	return acl.NewConfigWriteGate(cfg.WritesEnabled, logger)
}

// ProvideEventPublisher creates the event publisher
func ProvideEventPublisher(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventPublisher {
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvideJWTValidator creates the JWT validator
func ProvideJWTValidator(cfg *config.Config) (*auth.JWTValidator, error) {
	return auth.NewJWTValidator(cfg.JWTSecret, cfg.JWTIssuer)
}

// CommandHandlerAdapter adapts specific command handlers to the generic interface
type CommandHandlerAdapter struct {
	handler func(context.Context, bus.Command) error
}

func (a *CommandHandlerAdapter) Handle(ctx context.Context, cmd bus.Command) error {
	return a.handler(ctx, cmd)
}

// ProvideCommandBus creates a command bus with registered handlers
func ProvideCommandBus(
	rules *registry.Registry,
	entityRepo ports.EntityRepository,
	synapseRepo ports.SynapseRepository,
	uowFactory ports.UnitOfWorkFactory,
	gate ports.WriteGate,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *bus.CommandBus {
	commandBus := bus.NewCommandBus()

	createEntityHandler := commands_handlers.NewCreateEntityHandler(rules, entityRepo, uowFactory, gate, publisher, logger)
	commandBus.Register(commands.CreateEntityCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			createCmd, ok := cmd.(commands.CreateEntityCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			_, err := createEntityHandler.Handle(ctx, createCmd)
			return err
		},
	})

	updateEntityHandler := commands_handlers.NewUpdateEntityHandler(rules, entityRepo, synapseRepo, uowFactory, gate, publisher, logger)
	commandBus.Register(commands.UpdateEntityCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			updateCmd, ok := cmd.(commands.UpdateEntityCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			_, err := updateEntityHandler.Handle(ctx, updateCmd)
			return err
		},
	})

	deleteEntityHandler := commands_handlers.NewDeleteEntityHandler(entityRepo, synapseRepo, uowFactory, gate, publisher, logger)
	commandBus.Register(commands.DeleteEntityCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			deleteCmd, ok := cmd.(commands.DeleteEntityCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return deleteEntityHandler.Handle(ctx, deleteCmd)
		},
	})

	restoreEntityHandler := commands_handlers.NewRestoreEntityHandler(entityRepo, uowFactory, gate, publisher, logger)
	commandBus.Register(commands.RestoreEntityCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			restoreCmd, ok := cmd.(commands.RestoreEntityCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			_, err := restoreEntityHandler.Handle(ctx, restoreCmd)
			return err
		},
	})

	createSynapseHandler := commands_handlers.NewCreateSynapseHandler(rules, entityRepo, uowFactory, gate, publisher, logger)
	commandBus.Register(commands.CreateSynapseCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			synapseCmd, ok := cmd.(commands.CreateSynapseCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			_, err := createSynapseHandler.Handle(ctx, synapseCmd)
			return err
		},
	})
	commandBus.Register(commands.CreateSynapsesBatchCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			batchCmd, ok := cmd.(commands.CreateSynapsesBatchCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			_, err := createSynapseHandler.HandleBatch(ctx, batchCmd)
			return err
		},
	})

	return commandBus
}

// QueryHandlerAdapter adapts specific query handlers to the generic interface
type QueryHandlerAdapter struct {
	handler func(context.Context, querybus.Query) (interface{}, error)
}

func (a *QueryHandlerAdapter) Handle(ctx context.Context, query querybus.Query) (interface{}, error) {
	return a.handler(ctx, query)
}

// ProvideQueryBus creates a query bus with registered handlers
func ProvideQueryBus(
	entityRepo ports.EntityRepository,
	synapseRepo ports.SynapseRepository,
	logger *zap.Logger,
) *querybus.QueryBus {
	queryBus := querybus.NewQueryBus()

	getEntityHandler := queries_handlers.NewGetEntityHandler(entityRepo, synapseRepo, logger)
	queryBus.Register(queries.GetEntityQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			getQuery, ok := query.(queries.GetEntityQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return getEntityHandler.Handle(ctx, getQuery)
		},
	})

	listEntitiesHandler := queries_handlers.NewListEntitiesHandler(entityRepo, logger)
	queryBus.Register(queries.ListEntitiesQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			listQuery, ok := query.(queries.ListEntitiesQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return listEntitiesHandler.Handle(ctx, listQuery)
		},
	})

	return queryBus
}
