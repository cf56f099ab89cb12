// Package entity implements the local developer entity over remote
// developer records. The entity decorates a remote resource, keeps a
// stable local identity independent of email changes, and resolves
// company membership lazily through the shared entity cache.
package entity

import (
	"context"
	"errors"
	"fmt"

	"github.com/gatewaykit/portalsync/pkg/accounts"
	"github.com/gatewaykit/portalsync/pkg/edge"
	"github.com/gatewaykit/portalsync/pkg/observability"
)

// RemoteClient fetches live developer records from the gateway platform
type RemoteClient interface {
	GetDeveloper(ctx context.Context, email string) (*edge.Developer, error)
}

// EntityCache is the point-read/point-evict slice of the shared
// developer cache the entity consults before going remote
type EntityCache interface {
	GetByUUID(ctx context.Context, uuid string) (*edge.Developer, bool)
	Remove(ctx context.Context, uuid string) error
}

// AccountSource looks up local accounts for owner resolution
type AccountSource interface {
	LoadByEmail(ctx context.Context, email string) (*accounts.Account, error)
	LoadByID(ctx context.Context, id int64) (*accounts.Account, error)
}

// Deps carries the collaborators a Developer needs. All fields are
// required except Logger.
type Deps struct {
	Client   RemoteClient
	Cache    EntityCache
	Accounts AccountSource
	Logger   *observability.Logger
}

// Developer is the local entity over a remote developer resource.
//
// The entity's local primary key is the email captured at construction
// time (originalEmail), not the remote UUID: local identity must stay
// stable across a workflow where the developer's email changes, and
// the UUID is not known for developers still being authored.
type Developer struct {
	resource DeveloperResource

	originalEmail string
	companies     CompanyList
	ownerID       *int64

	deps Deps
}

// NewDeveloper creates an entity over a remote resource. The original
// email is captured once from the resource; an unset status defaults to
// active.
func NewDeveloper(resource DeveloperResource, deps Deps) *Developer {
	if deps.Logger == nil {
		deps.Logger = observability.NewLogger(observability.InfoLevel, nil)
	}
	d := &Developer{
		resource:      resource,
		originalEmail: resource.Email(),
		companies:     UnresolvedCompanies(),
		deps:          deps,
	}
	if resource.Status() == "" {
		resource.SetStatus(edge.DeveloperStatusActive)
	}
	return d
}

// UUID returns the remote developer ID. It is read through on every
// call and never cached locally.
func (d *Developer) UUID() string {
	return d.resource.UUID()
}

// Email returns the live email on the decorated resource
func (d *Developer) Email() string {
	return d.resource.Email()
}

// SetEmail updates the live email. The original email is only adopted
// when it has never been set; it never changes as a side effect
// afterwards.
func (d *Developer) SetEmail(email string) {
	d.resource.SetEmail(email)
	if d.originalEmail == "" {
		d.originalEmail = email
	}
}

// OriginalEmail returns the local primary key
func (d *Developer) OriginalEmail() string {
	return d.originalEmail
}

// ResetOriginalEmail re-captures the local primary key from the
// decorated resource. This is the only way the original email changes
// once set.
func (d *Developer) ResetOriginalEmail() {
	d.originalEmail = d.resource.Email()
}

// Status returns the developer status
func (d *Developer) Status() edge.DeveloperStatus {
	return d.resource.Status()
}

// SetStatus updates the developer status
func (d *Developer) SetStatus(status edge.DeveloperStatus) {
	d.resource.SetStatus(status)
}

// FirstName returns the developer's first name
func (d *Developer) FirstName() string { return d.resource.FirstName() }

// LastName returns the developer's last name
func (d *Developer) LastName() string { return d.resource.LastName() }

// UserName returns the developer's platform username
func (d *Developer) UserName() string { return d.resource.UserName() }

// Representation returns the decorated wire representation
func (d *Developer) Representation() *edge.Developer {
	return d.resource.Representation()
}

// Companies returns the developer's company memberships, resolving them
// on first access:
//
//  1. A cached representation with a non-empty company list is adopted
//     as-is.
//  2. A cached representation with an empty company list is treated as
//     stale, evicted, and ignored.
//  3. Otherwise the live record is fetched by email and its company
//     list (even empty) adopted for the lifetime of this instance.
//  4. A fetch failure is logged and degrades to an empty list for this
//     call only; the next call retries. Failure is never cached.
func (d *Developer) Companies(ctx context.Context) []string {
	if d.companies.Resolved() {
		return d.companies.Names()
	}

	if uuid := d.UUID(); uuid != "" {
		if cached, ok := d.deps.Cache.GetByUUID(ctx, uuid); ok {
			if len(cached.Companies) > 0 {
				d.companies = ResolvedCompanies(cached.Companies)
				return d.companies.Names()
			}
			// A cached record with no companies is stale more often
			// than it is true; evict so it stops shadowing the live
			// record.
			if err := d.deps.Cache.Remove(ctx, uuid); err != nil {
				d.deps.Logger.WithError(err).
					WithField("developer_uuid", uuid).
					Warn("failed to evict stale developer cache entry")
			}
		}
	}

	dev, err := d.deps.Client.GetDeveloper(ctx, d.Email())
	if err != nil {
		d.deps.Logger.WithError(err).
			WithFields(map[string]interface{}{
				"developer_email": d.Email(),
				"developer_uuid":  d.UUID(),
			}).
			Error("failed to load company memberships from gateway")
		return []string{}
	}

	d.companies = ResolvedCompanies(dev.Companies)
	return d.companies.Names()
}

// OwnerID returns the local account ID owning this developer, resolving
// it by email on first call. A missing account is not an error and is
// not cached; the lookup is retried on the next call.
func (d *Developer) OwnerID(ctx context.Context) (*int64, error) {
	if d.ownerID != nil {
		return d.ownerID, nil
	}

	account, err := d.deps.Accounts.LoadByEmail(ctx, d.Email())
	if errors.Is(err, accounts.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve owner for %s: %w", d.Email(), err)
	}

	id := account.ID
	d.ownerID = &id
	return d.ownerID, nil
}

// SetOwnerID assigns the owning local account. When the account's email
// differs from the entity's current email, the account email wins and
// overwrites it. A nil ID clears the owner and leaves the email alone.
func (d *Developer) SetOwnerID(ctx context.Context, id *int64) error {
	d.ownerID = id
	if id == nil {
		return nil
	}

	account, err := d.deps.Accounts.LoadByID(ctx, *id)
	if err != nil {
		return fmt.Errorf("failed to load account %d: %w", *id, err)
	}
	if account.Email != d.Email() {
		d.SetEmail(account.Email)
	}
	return nil
}
