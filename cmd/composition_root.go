package cmd

import (
	"log/slog"

	httpin "marketdelivery/internal/adapters/in/http"
	"marketdelivery/internal/adapters/out/assets"
	"marketdelivery/internal/adapters/out/notify"
	"marketdelivery/internal/adapters/out/postgres"
	"marketdelivery/internal/adapters/out/postgres/loyaltyrepo"
	"marketdelivery/internal/adapters/out/postgres/paymentrepo"
	"marketdelivery/internal/core/application/authz"
	"marketdelivery/internal/core/application/usecases/commands"
	"marketdelivery/internal/core/application/usecases/queries"
	"marketdelivery/internal/core/ports"
	"marketdelivery/internal/jobs"

	"gorm.io/gorm"
)

type CompositionRoot struct {
	config     Config
	gormDB     *gorm.DB
	uowFactory commands.UoWFactory
	policy     authz.Policy
	logger     *slog.Logger

	ledger   ports.LoyaltyLedger
	payments ports.PaymentGateway
	notifier ports.Notifier
	storage  *assets.LocalStorage

	assignDriver commands.AssignDriverCommandHandler
}

func NewCompositionRoot(config Config, gormDB *gorm.DB, logger *slog.Logger) (*CompositionRoot, error) {
	storage, err := assets.NewLocalStorage(config.AssetRoot, config.AssetBaseURL, []byte(config.AssetSecret), logger)
	if err != nil {
		return nil, err
	}

	gormFactory := postgres.NewGormUnitOfWorkFactory(gormDB)
	c := &CompositionRoot{
		config: config,
		gormDB: gormDB,
		uowFactory: FuncUoWFactory(func() commands.UoW {
			return gormFactory.Create()
		}),
		policy:   authz.DefaultPolicy(),
		logger:   logger,
		ledger:   loyaltyrepo.NewGormLoyaltyLedger(gormDB),
		payments: paymentrepo.NewGormPaymentGateway(gormDB),
		notifier: notify.NewLogNotifier(logger),
		storage:  storage,
	}
	c.assignDriver = commands.NewAssignDriverCommandHandler(c.uowFactory, c.policy)
	return c, nil
}

func (c *CompositionRoot) Storage() *assets.LocalStorage {
	return c.storage
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	return commands.NewCreateOrderCommandHandler(c.uowFactory, c.policy)
}

func (c *CompositionRoot) CreateUpdateOrderProductsCommandHandler() commands.UpdateOrderProductsCommandHandler {
	return commands.NewUpdateOrderProductsCommandHandler(c.uowFactory, c.policy)
}

func (c *CompositionRoot) CreateSubmitOrderCommandHandler() commands.SubmitOrderCommandHandler {
	return commands.NewSubmitOrderCommandHandler(c.uowFactory, c.policy)
}

func (c *CompositionRoot) CreateApplyLoyaltyPointsCommandHandler() commands.ApplyLoyaltyPointsCommandHandler {
	return commands.NewApplyLoyaltyPointsCommandHandler(c.uowFactory, c.policy, c.ledger, c.logger)
}

func (c *CompositionRoot) CreateValidateOrderCommandHandler() commands.ValidateOrderCommandHandler {
	return commands.NewValidateOrderCommandHandler(
		c.uowFactory, c.policy, c.payments, c.notifier, &c.assignDriver, c.logger,
	)
}

func (c *CompositionRoot) CreateCancelOrderCommandHandler() commands.CancelOrderCommandHandler {
	return commands.NewCancelOrderCommandHandler(c.uowFactory, c.policy, c.ledger, c.notifier, c.logger)
}

func (c *CompositionRoot) CreateRetryValidatorAssignmentCommandHandler() commands.RetryValidatorAssignmentCommandHandler {
	return commands.NewRetryValidatorAssignmentCommandHandler(c.uowFactory, c.policy)
}

func (c *CompositionRoot) CreateAssignDriverCommandHandler() commands.AssignDriverCommandHandler {
	return c.assignDriver
}

func (c *CompositionRoot) CreateGroupOrdersCommandHandler() commands.GroupOrdersCommandHandler {
	return commands.NewGroupOrdersCommandHandler(c.uowFactory, c.policy, c.notifier, c.logger)
}

func (c *CompositionRoot) CreateStartDeliveryCommandHandler() commands.StartDeliveryCommandHandler {
	return commands.NewStartDeliveryCommandHandler(c.uowFactory, c.policy, c.notifier, c.logger)
}

func (c *CompositionRoot) CreateCompleteDeliveryCommandHandler() commands.CompleteDeliveryCommandHandler {
	return commands.NewCompleteDeliveryCommandHandler(c.uowFactory, c.policy, c.ledger, c.notifier, c.logger)
}

func (c *CompositionRoot) CreateReportDeliveryIssueCommandHandler() commands.ReportDeliveryIssueCommandHandler {
	return commands.NewReportDeliveryIssueCommandHandler(c.uowFactory, c.policy, c.notifier, c.logger)
}

func (c *CompositionRoot) CreateRegisterDriverCommandHandler() commands.RegisterDriverCommandHandler {
	return commands.NewRegisterDriverCommandHandler(c.uowFactory, c.policy)
}

func (c *CompositionRoot) CreateUpdateDriverPresenceCommandHandler() commands.UpdateDriverPresenceCommandHandler {
	return commands.NewUpdateDriverPresenceCommandHandler(c.uowFactory, c.policy)
}

func (c *CompositionRoot) CreateAutoAssignDriversCommandHandler() commands.AutoAssignDriversCommandHandler {
	return commands.NewAutoAssignDriversCommandHandler(c.uowFactory, c.policy, &c.assignDriver, c.logger)
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.gormDB, c.policy, c.storage, c.config.ProofURLTTL)
}

func (c *CompositionRoot) CreateGetValidatorQueueQueryHandler() queries.GetValidatorQueueQueryHandler {
	return queries.NewGetValidatorQueueQueryHandler(c.gormDB, c.policy)
}

func (c *CompositionRoot) CreateGetAvailableDriversQueryHandler() queries.GetAvailableDriversQueryHandler {
	return queries.NewGetAvailableDriversQueryHandler(c.gormDB, c.policy)
}

// HTTPHandlers wires every use case served by the HTTP adapter.
func (c *CompositionRoot) HTTPHandlers() httpin.Handlers {
	return httpin.Handlers{
		CreateOrder:          c.CreateCreateOrderCommandHandler(),
		UpdateOrderProducts:  c.CreateUpdateOrderProductsCommandHandler(),
		SubmitOrder:          c.CreateSubmitOrderCommandHandler(),
		ApplyLoyaltyPoints:   c.CreateApplyLoyaltyPointsCommandHandler(),
		ValidateOrder:        c.CreateValidateOrderCommandHandler(),
		CancelOrder:          c.CreateCancelOrderCommandHandler(),
		RetryValidator:       c.CreateRetryValidatorAssignmentCommandHandler(),
		AssignDriver:         c.CreateAssignDriverCommandHandler(),
		GroupOrders:          c.CreateGroupOrdersCommandHandler(),
		StartDelivery:        c.CreateStartDeliveryCommandHandler(),
		CompleteDelivery:     c.CreateCompleteDeliveryCommandHandler(),
		ReportDeliveryIssue:  c.CreateReportDeliveryIssueCommandHandler(),
		RegisterDriver:       c.CreateRegisterDriverCommandHandler(),
		UpdateDriverPresence: c.CreateUpdateDriverPresenceCommandHandler(),
		AutoAssignDrivers:    c.CreateAutoAssignDriversCommandHandler(),

		GetOrder:            c.CreateGetOrderQueryHandler(),
		GetValidatorQueue:   c.CreateGetValidatorQueueQueryHandler(),
		GetAvailableDrivers: c.CreateGetAvailableDriversQueryHandler(),
	}
}

// JobManager wires the scheduled jobs.
func (c *CompositionRoot) JobManager() *jobs.JobManager {
	sweep := c.CreateAutoAssignDriversCommandHandler()
	return jobs.NewJobManager(&sweep, c.config.SweepSchedule, c.logger)
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
