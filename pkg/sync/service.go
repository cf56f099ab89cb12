// Package sync orchestrates local developer entities against the
// remote gateway platform: CRUD pass-through, owner assignment, batch
// deletion with dual-keyspace cache invalidation, and scheduled
// reconciliation.
package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/gatewaykit/portalsync/pkg/accounts"
	"github.com/gatewaykit/portalsync/pkg/audit"
	"github.com/gatewaykit/portalsync/pkg/cache"
	"github.com/gatewaykit/portalsync/pkg/edge"
	"github.com/gatewaykit/portalsync/pkg/entity"
	"github.com/gatewaykit/portalsync/pkg/observability"
)

// GatewayClient is the management API surface the service requires
type GatewayClient interface {
	GetDeveloper(ctx context.Context, email string) (*edge.Developer, error)
	ListDevelopers(ctx context.Context) ([]*edge.Developer, error)
	CreateDeveloper(ctx context.Context, dev *edge.Developer) (*edge.Developer, error)
	UpdateDeveloper(ctx context.Context, email string, dev *edge.Developer) (*edge.Developer, error)
	DeleteDeveloper(ctx context.Context, email string) error
	ListApps(ctx context.Context, email string) ([]*edge.App, error)
	GetApp(ctx context.Context, email, name string) (*edge.App, error)
	CreateApp(ctx context.Context, email string, app *edge.App) (*edge.App, error)
	DeleteApp(ctx context.Context, email, name string) error
	ListProducts(ctx context.Context) ([]*edge.Product, error)
	GetProduct(ctx context.Context, name string) (*edge.Product, error)
}

// Service coordinates developers between the local system and the
// gateway platform
type Service struct {
	client   GatewayClient
	cache    cache.EntityCache
	accounts accounts.Store
	audit    audit.Logger
	logger   *observability.Logger
	metrics  *observability.Metrics
}

// NewService creates a sync service. The audit logger, logger, and
// metrics may be nil.
func NewService(client GatewayClient, entityCache cache.EntityCache, accountStore accounts.Store,
	auditLogger audit.Logger, logger *observability.Logger, metrics *observability.Metrics) *Service {
	if auditLogger == nil {
		auditLogger = audit.NopLogger{}
	}
	if logger == nil {
		logger = observability.NewLogger(observability.InfoLevel, nil)
	}
	return &Service{
		client:   client,
		cache:    entityCache,
		accounts: accountStore,
		audit:    auditLogger,
		logger:   logger,
		metrics:  metrics,
	}
}

// entityDeps builds the collaborator set injected into entities
func (s *Service) entityDeps() entity.Deps {
	return entity.Deps{
		Client:   s.client,
		Cache:    s.cache,
		Accounts: s.accounts,
		Logger:   s.logger,
	}
}

// Get loads a developer entity by email, consulting the entity cache
// before the remote platform
func (s *Service) Get(ctx context.Context, email string) (*entity.Developer, error) {
	if dev, ok := s.cache.GetByEmail(ctx, email); ok {
		return entity.NewDeveloper(entity.NewResource(dev), s.entityDeps()), nil
	}

	dev, err := s.client.GetDeveloper(ctx, email)
	if err != nil {
		return nil, err
	}
	return entity.NewDeveloper(entity.NewResource(dev), s.entityDeps()), nil
}

// List returns developer entities, optionally filtered by status
func (s *Service) List(ctx context.Context, status edge.DeveloperStatus) ([]*entity.Developer, error) {
	devs, err := s.client.ListDevelopers(ctx)
	if err != nil {
		return nil, err
	}

	entities := make([]*entity.Developer, 0, len(devs))
	for _, dev := range devs {
		e := entity.NewDeveloper(entity.NewResource(dev), s.entityDeps())
		if status != "" && e.Status() != status {
			continue
		}
		entities = append(entities, e)
	}
	return entities, nil
}

// Create creates a developer on the remote platform and returns the
// local entity over the created record
func (s *Service) Create(ctx context.Context, dev *edge.Developer) (*entity.Developer, error) {
	created, err := s.client.CreateDeveloper(ctx, dev)
	if err != nil {
		s.recordOperation(ctx, "create", audit.EventTypeDeveloperCreate, dev.Email, err)
		return nil, err
	}
	s.recordOperation(ctx, "create", audit.EventTypeDeveloperCreate, created.Email, nil)
	return entity.NewDeveloper(entity.NewResource(created), s.entityDeps()), nil
}

// Update pushes a changed developer to the remote platform, addressed
// by the email the record is currently known under
func (s *Service) Update(ctx context.Context, email string, dev *edge.Developer) (*entity.Developer, error) {
	updated, err := s.client.UpdateDeveloper(ctx, email, dev)
	if err != nil {
		s.recordOperation(ctx, "update", audit.EventTypeDeveloperUpdate, email, err)
		return nil, err
	}

	// When the update renames the developer, the old email key keeps
	// serving the pre-rename record until it expires. Evict it.
	if updated.Email != email {
		if err := s.cache.RemoveEmails(ctx, []string{email}); err != nil {
			s.logger.WithError(err).WithField("developer_email", email).
				Warn("failed to evict renamed developer from cache")
		}
	}

	s.recordOperation(ctx, "update", audit.EventTypeDeveloperUpdate, updated.Email, nil)
	return entity.NewDeveloper(entity.NewResource(updated), s.entityDeps()), nil
}

// AssignOwner binds a developer to a local account. The account's email
// wins over the remote email; when they differ the change is pushed to
// the platform.
func (s *Service) AssignOwner(ctx context.Context, email string, accountID *int64) (*entity.Developer, error) {
	dev, err := s.Get(ctx, email)
	if err != nil {
		return nil, err
	}

	if err := dev.SetOwnerID(ctx, accountID); err != nil {
		s.recordOperation(ctx, "assign_owner", audit.EventTypeDeveloperOwnerAssign, email, err)
		return nil, err
	}

	if dev.Email() != email {
		if _, err := s.client.UpdateDeveloper(ctx, email, dev.Representation()); err != nil {
			// The remote still carries the old email; roll the
			// entity back so the caller sees no half-applied state.
			dev.SetEmail(email)
			s.recordOperation(ctx, "assign_owner", audit.EventTypeDeveloperOwnerAssign, email, err)
			return nil, fmt.Errorf("failed to push owner email to gateway: %w", err)
		}
		if err := s.cache.RemoveEmails(ctx, []string{email}); err != nil {
			s.logger.WithError(err).WithField("developer_email", email).
				Warn("failed to evict reassigned developer from cache")
		}
	}

	s.recordOperation(ctx, "assign_owner", audit.EventTypeDeveloperOwnerAssign, dev.Email(), nil)
	return dev, nil
}

// DeleteBatch deletes developers addressed by email. After the deletion
// and the email-keyed cache invalidation, a second best-effort pass
// invalidates the UUID-keyed entries: the cache may have been populated
// under either identity and both keyspaces must be purged. Invalidation
// failures never abort the deletion.
func (s *Service) DeleteBatch(ctx context.Context, emails []string) error {
	var deleted []string
	var uuids []string
	var errs []error

	for _, email := range emails {
		// The UUID has to be collected before the record disappears
		if dev, ok := s.cache.GetByEmail(ctx, email); ok && dev.DeveloperID != "" {
			uuids = append(uuids, dev.DeveloperID)
		} else if dev, err := s.client.GetDeveloper(ctx, email); err == nil && dev.DeveloperID != "" {
			uuids = append(uuids, dev.DeveloperID)
		}

		if err := s.client.DeleteDeveloper(ctx, email); err != nil {
			s.recordOperation(ctx, "delete", audit.EventTypeDeveloperDelete, email, err)
			errs = append(errs, fmt.Errorf("failed to delete developer %s: %w", email, err))
			continue
		}
		deleted = append(deleted, email)
		s.recordOperation(ctx, "delete", audit.EventTypeDeveloperDelete, email, nil)
	}

	if len(deleted) > 0 {
		if err := s.cache.RemoveEmails(ctx, deleted); err != nil {
			s.logger.WithError(err).Warn("email-keyed cache invalidation failed after deletion")
		}
	}
	if len(uuids) > 0 {
		if err := s.cache.RemoveAll(ctx, uuids); err != nil {
			s.logger.WithError(err).Warn("uuid-keyed cache invalidation failed after deletion")
		}
		s.auditInvalidation(ctx, uuids)
	}

	return errors.Join(errs...)
}

// Apps lists a developer's apps
func (s *Service) Apps(ctx context.Context, email string) ([]*edge.App, error) {
	return s.client.ListApps(ctx, email)
}

// App fetches a single developer app
func (s *Service) App(ctx context.Context, email, name string) (*edge.App, error) {
	return s.client.GetApp(ctx, email, name)
}

// CreateApp creates a developer app
func (s *Service) CreateApp(ctx context.Context, email string, app *edge.App) (*edge.App, error) {
	created, err := s.client.CreateApp(ctx, email, app)
	if err != nil {
		s.recordOperation(ctx, "create_app", audit.EventTypeAppCreate, email+"/"+app.Name, err)
		return nil, err
	}
	s.recordOperation(ctx, "create_app", audit.EventTypeAppCreate, email+"/"+created.Name, nil)
	return created, nil
}

// DeleteApp removes a developer app
func (s *Service) DeleteApp(ctx context.Context, email, name string) error {
	err := s.client.DeleteApp(ctx, email, name)
	s.recordOperation(ctx, "delete_app", audit.EventTypeAppDelete, email+"/"+name, err)
	return err
}

// Products lists the organization's API products
func (s *Service) Products(ctx context.Context) ([]*edge.Product, error) {
	return s.client.ListProducts(ctx)
}

// Product fetches a single API product
func (s *Service) Product(ctx context.Context, name string) (*edge.Product, error) {
	return s.client.GetProduct(ctx, name)
}

func (s *Service) recordOperation(ctx context.Context, operation string, eventType audit.EventType, resourceID string, opErr error) {
	status := audit.EventStatusSuccess
	metricStatus := "success"
	if opErr != nil {
		status = audit.EventStatusFailure
		metricStatus = "failure"
	}

	if s.metrics != nil {
		s.metrics.RecordSyncOperation(operation, metricStatus)
	}

	event := audit.NewEvent(ctx, eventType, status)
	event.ResourceType = audit.ResourceTypeDeveloper
	event.ResourceID = resourceID
	if opErr != nil {
		event.ErrorMessage = opErr.Error()
	}
	if err := s.audit.Log(ctx, event); err != nil {
		s.logger.WithError(err).Warn("failed to write audit event")
	}
}

func (s *Service) auditInvalidation(ctx context.Context, uuids []string) {
	event := audit.NewEvent(ctx, audit.EventTypeCacheInvalidate, audit.EventStatusSuccess)
	event.ResourceType = audit.ResourceTypeCache
	event.Metadata = map[string]interface{}{"uuids": uuids}
	if err := s.audit.Log(ctx, event); err != nil {
		s.logger.WithError(err).Warn("failed to write audit event")
	}
}
