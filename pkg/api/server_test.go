package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatewaykit/portalsync/pkg/accounts"
	"github.com/gatewaykit/portalsync/pkg/cache"
	"github.com/gatewaykit/portalsync/pkg/edge"
	"github.com/gatewaykit/portalsync/pkg/observability"
	"github.com/gatewaykit/portalsync/pkg/sync"
)

type fakeGateway struct {
	developers map[string]*edge.Developer
	apps       map[string]*edge.App
	products   map[string]*edge.Product
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		developers: make(map[string]*edge.Developer),
		apps:       make(map[string]*edge.App),
		products:   make(map[string]*edge.Product),
	}
}

func (f *fakeGateway) GetDeveloper(ctx context.Context, email string) (*edge.Developer, error) {
	dev, ok := f.developers[email]
	if !ok {
		return nil, edge.ErrNotFound
	}
	copied := *dev
	return &copied, nil
}

func (f *fakeGateway) ListDevelopers(ctx context.Context) ([]*edge.Developer, error) {
	devs := make([]*edge.Developer, 0, len(f.developers))
	for _, dev := range f.developers {
		copied := *dev
		devs = append(devs, &copied)
	}
	return devs, nil
}

func (f *fakeGateway) CreateDeveloper(ctx context.Context, dev *edge.Developer) (*edge.Developer, error) {
	copied := *dev
	copied.DeveloperID = fmt.Sprintf("uuid-%s", dev.Email)
	f.developers[dev.Email] = &copied
	result := copied
	return &result, nil
}

func (f *fakeGateway) UpdateDeveloper(ctx context.Context, email string, dev *edge.Developer) (*edge.Developer, error) {
	existing, ok := f.developers[email]
	if !ok {
		return nil, edge.ErrNotFound
	}
	copied := *dev
	copied.DeveloperID = existing.DeveloperID
	delete(f.developers, email)
	f.developers[copied.Email] = &copied
	result := copied
	return &result, nil
}

func (f *fakeGateway) DeleteDeveloper(ctx context.Context, email string) error {
	if _, ok := f.developers[email]; !ok {
		return edge.ErrNotFound
	}
	delete(f.developers, email)
	return nil
}

func (f *fakeGateway) ListApps(ctx context.Context, email string) ([]*edge.App, error) {
	apps := make([]*edge.App, 0)
	for _, app := range f.apps {
		if app.DeveloperEmail == email {
			apps = append(apps, app)
		}
	}
	return apps, nil
}

func (f *fakeGateway) GetApp(ctx context.Context, email, name string) (*edge.App, error) {
	app, ok := f.apps[email+"/"+name]
	if !ok {
		return nil, edge.ErrNotFound
	}
	return app, nil
}

func (f *fakeGateway) CreateApp(ctx context.Context, email string, app *edge.App) (*edge.App, error) {
	copied := *app
	copied.DeveloperEmail = email
	f.apps[email+"/"+app.Name] = &copied
	return &copied, nil
}

func (f *fakeGateway) DeleteApp(ctx context.Context, email, name string) error {
	if _, ok := f.apps[email+"/"+name]; !ok {
		return edge.ErrNotFound
	}
	delete(f.apps, email+"/"+name)
	return nil
}

func (f *fakeGateway) ListProducts(ctx context.Context) ([]*edge.Product, error) {
	products := make([]*edge.Product, 0, len(f.products))
	for _, p := range f.products {
		products = append(products, p)
	}
	return products, nil
}

func (f *fakeGateway) GetProduct(ctx context.Context, name string) (*edge.Product, error) {
	p, ok := f.products[name]
	if !ok {
		return nil, edge.ErrNotFound
	}
	return p, nil
}

type fakeAccountStore struct {
	byEmail map[string]*accounts.Account
	byID    map[int64]*accounts.Account
}

func newFakeAccountStore() *fakeAccountStore {
	return &fakeAccountStore{
		byEmail: make(map[string]*accounts.Account),
		byID:    make(map[int64]*accounts.Account),
	}
}

func (f *fakeAccountStore) add(account *accounts.Account) {
	f.byEmail[account.Email] = account
	f.byID[account.ID] = account
}

func (f *fakeAccountStore) LoadByEmail(ctx context.Context, email string) (*accounts.Account, error) {
	account, ok := f.byEmail[email]
	if !ok {
		return nil, accounts.ErrNotFound
	}
	return account, nil
}

func (f *fakeAccountStore) LoadByID(ctx context.Context, id int64) (*accounts.Account, error) {
	account, ok := f.byID[id]
	if !ok {
		return nil, accounts.ErrNotFound
	}
	return account, nil
}

func (f *fakeAccountStore) Create(ctx context.Context, account *accounts.Account) error {
	f.add(account)
	return nil
}

func (f *fakeAccountStore) UpdateEmail(ctx context.Context, id int64, email string) error {
	account, ok := f.byID[id]
	if !ok {
		return accounts.ErrNotFound
	}
	delete(f.byEmail, account.Email)
	account.Email = email
	f.byEmail[email] = account
	return nil
}

func (f *fakeAccountStore) Delete(ctx context.Context, id int64) error {
	account, ok := f.byID[id]
	if !ok {
		return accounts.ErrNotFound
	}
	delete(f.byEmail, account.Email)
	delete(f.byID, id)
	return nil
}

func (f *fakeAccountStore) List(ctx context.Context, activeOnly bool) ([]*accounts.Account, error) {
	result := make([]*accounts.Account, 0, len(f.byID))
	for _, account := range f.byID {
		if activeOnly && !account.Active {
			continue
		}
		result = append(result, account)
	}
	return result, nil
}

type testEnv struct {
	server   *Server
	gateway  *fakeGateway
	accounts *fakeAccountStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	entityCache, err := cache.NewRedisCache(redisClient, cache.Config{}, nil)
	require.NoError(t, err)

	gateway := newFakeGateway()
	store := newFakeAccountStore()
	logger := observability.NewLogger(observability.ErrorLevel, nil)
	service := sync.NewService(gateway, entityCache, store, nil, logger, nil)

	return &testEnv{
		server:   NewServer(service, logger, nil),
		gateway:  gateway,
		accounts: store,
	}
}

func (e *testEnv) request(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	e.server.ServeHTTP(rec, req)
	return rec
}

func TestCreateAndGetDeveloper(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodPost, "/api/v1/developers", developerRequest{
		Email:     "alice@example.com",
		FirstName: "Alice",
		LastName:  "Smith",
		UserName:  "alice",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created developerView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "alice@example.com", created.Email)
	assert.Equal(t, "alice@example.com", created.OriginalEmail)
	assert.Equal(t, "active", created.Status)

	rec = env.request(t, http.MethodGet, "/api/v1/developers/alice@example.com", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var fetched developerView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fetched))
	assert.Equal(t, created.UUID, fetched.UUID)
}

func TestGetDeveloperNotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodGet, "/api/v1/developers/nobody@example.com", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateDeveloperRequiresEmail(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodPost, "/api/v1/developers", developerRequest{UserName: "noone"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListDevelopersFiltersByStatus(t *testing.T) {
	env := newTestEnv(t)
	env.gateway.developers["a@example.com"] = &edge.Developer{
		DeveloperID: "uuid-a", Email: "a@example.com", Status: edge.DeveloperStatusActive,
	}
	env.gateway.developers["b@example.com"] = &edge.Developer{
		DeveloperID: "uuid-b", Email: "b@example.com", Status: edge.DeveloperStatusInactive,
	}

	rec := env.request(t, http.MethodGet, "/api/v1/developers?status=active", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var views []developerView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))
	require.Len(t, views, 1)
	assert.Equal(t, "a@example.com", views[0].Email)
}

func TestDeleteDevelopersBatch(t *testing.T) {
	env := newTestEnv(t)
	env.gateway.developers["a@example.com"] = &edge.Developer{DeveloperID: "uuid-a", Email: "a@example.com"}
	env.gateway.developers["b@example.com"] = &edge.Developer{DeveloperID: "uuid-b", Email: "b@example.com"}

	rec := env.request(t, http.MethodDelete, "/api/v1/developers", map[string][]string{
		"emails": {"a@example.com", "b@example.com"},
	})
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, env.gateway.developers)
}

func TestGetCompanies(t *testing.T) {
	env := newTestEnv(t)
	env.gateway.developers["a@example.com"] = &edge.Developer{
		DeveloperID: "uuid-a",
		Email:       "a@example.com",
		Companies:   []string{"acme", "globex"},
	}

	rec := env.request(t, http.MethodGet, "/api/v1/developers/a@example.com/companies", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string][]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.ElementsMatch(t, []string{"acme", "globex"}, resp["companies"])
}

func TestOwnerLifecycle(t *testing.T) {
	env := newTestEnv(t)
	env.gateway.developers["a@example.com"] = &edge.Developer{
		DeveloperID: "uuid-a", Email: "a@example.com",
	}
	env.accounts.add(&accounts.Account{ID: 42, Email: "a@example.com", Active: true})

	rec := env.request(t, http.MethodGet, "/api/v1/developers/a@example.com/owner", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var owner ownerView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &owner))
	require.NotNil(t, owner.AccountID)
	assert.Equal(t, int64(42), *owner.AccountID)
}

func TestAssignOwnerUnknownAccount(t *testing.T) {
	env := newTestEnv(t)
	env.gateway.developers["a@example.com"] = &edge.Developer{
		DeveloperID: "uuid-a", Email: "a@example.com",
	}

	id := int64(99)
	rec := env.request(t, http.MethodPut, "/api/v1/developers/a@example.com/owner", ownerView{AccountID: &id})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAppLifecycle(t *testing.T) {
	env := newTestEnv(t)
	env.gateway.developers["a@example.com"] = &edge.Developer{
		DeveloperID: "uuid-a", Email: "a@example.com",
	}

	rec := env.request(t, http.MethodPost, "/api/v1/developers/a@example.com/apps", edge.App{Name: "portal-app"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.request(t, http.MethodGet, "/api/v1/developers/a@example.com/apps/portal-app", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.request(t, http.MethodDelete, "/api/v1/developers/a@example.com/apps/portal-app", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.request(t, http.MethodGet, "/api/v1/developers/a@example.com/apps/portal-app", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListProducts(t *testing.T) {
	env := newTestEnv(t)
	env.gateway.products["gold"] = &edge.Product{Name: "gold", DisplayName: "Gold Tier"}

	rec := env.request(t, http.MethodGet, "/api/v1/apiproducts", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var products []edge.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &products))
	require.Len(t, products, 1)
	assert.Equal(t, "gold", products[0].Name)

	rec = env.request(t, http.MethodGet, "/api/v1/apiproducts/silver", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
