package entity

import "github.com/gatewaykit/portalsync/pkg/edge"

// DeveloperResource is the capability surface the local entity needs
// from the remote developer record it decorates. The entity owns its
// resource exclusively and forwards accessor calls to it.
type DeveloperResource interface {
	UUID() string
	Email() string
	SetEmail(email string)
	FirstName() string
	LastName() string
	UserName() string
	Status() edge.DeveloperStatus
	SetStatus(status edge.DeveloperStatus)
	Companies() []string
	Representation() *edge.Developer
}

// wireResource adapts an edge.Developer wire representation to the
// DeveloperResource interface
type wireResource struct {
	dev *edge.Developer
}

// NewResource wraps a wire representation as a DeveloperResource. The
// caller gives up ownership of the representation.
func NewResource(dev *edge.Developer) DeveloperResource {
	return &wireResource{dev: dev}
}

func (r *wireResource) UUID() string                       { return r.dev.DeveloperID }
func (r *wireResource) Email() string                      { return r.dev.Email }
func (r *wireResource) SetEmail(email string)              { r.dev.Email = email }
func (r *wireResource) FirstName() string                  { return r.dev.FirstName }
func (r *wireResource) LastName() string                   { return r.dev.LastName }
func (r *wireResource) UserName() string                   { return r.dev.UserName }
func (r *wireResource) Status() edge.DeveloperStatus       { return r.dev.Status }
func (r *wireResource) SetStatus(s edge.DeveloperStatus)   { r.dev.Status = s }
func (r *wireResource) Companies() []string                { return r.dev.Companies }
func (r *wireResource) Representation() *edge.Developer    { return r.dev }
