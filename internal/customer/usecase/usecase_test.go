package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/rfandrade/creditledger/internal/customer/dto"
	"github.com/rfandrade/creditledger/internal/model"
	"github.com/rfandrade/creditledger/pkg/apperr"
	"github.com/rfandrade/creditledger/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCustomerRepo struct {
	customers map[string]*model.Customer
	tags      map[string]map[string]model.CustomerTag // customerID -> tag -> record
}

func newFakeCustomerRepo() *fakeCustomerRepo {
	return &fakeCustomerRepo{
		customers: map[string]*model.Customer{},
		tags:      map[string]map[string]model.CustomerTag{},
	}
}

func (f *fakeCustomerRepo) Create(_ context.Context, c *model.Customer) error {
	cp := *c
	f.customers[c.ID] = &cp
	return nil
}

func (f *fakeCustomerRepo) Update(_ context.Context, c *model.Customer) error {
	cp := *c
	f.customers[c.ID] = &cp
	return nil
}

func (f *fakeCustomerRepo) FindByID(_ context.Context, id string) (*model.Customer, error) {
	c, ok := f.customers[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCustomerRepo) FindAll(_ context.Context, _ *dto.CustomerFilters) ([]model.Customer, int, error) {
	var out []model.Customer
	for _, c := range f.customers {
		out = append(out, *c)
	}
	return out, len(out), nil
}

func (f *fakeCustomerRepo) UpsertTag(_ context.Context, tag *model.CustomerTag) error {
	if f.tags[tag.CustomerID] == nil {
		f.tags[tag.CustomerID] = map[string]model.CustomerTag{}
	}
	f.tags[tag.CustomerID][tag.Tag] = *tag
	return nil
}

func (f *fakeCustomerRepo) DeleteTag(_ context.Context, customerID, tag string) error {
	delete(f.tags[customerID], tag)
	return nil
}

func (f *fakeCustomerRepo) ListTags(_ context.Context, customerID string) ([]model.CustomerTag, error) {
	var out []model.CustomerTag
	for _, t := range f.tags[customerID] {
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeCustomerRepo) CustomersTagged(_ context.Context, tag string) ([]string, error) {
	var out []string
	for customerID, tags := range f.tags {
		if _, ok := tags[tag]; ok {
			out = append(out, customerID)
		}
	}
	return out, nil
}

type fakeLedger struct {
	balances  map[string]int64
	overdue   []model.Order
	lateSince map[string]time.Time
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{balances: map[string]int64{}, lateSince: map[string]time.Time{}}
}

func (f *fakeLedger) OutstandingByCustomer(_ context.Context, customerID string) (int64, error) {
	return f.balances[customerID], nil
}

func (f *fakeLedger) FindOverdue(_ context.Context, _ time.Time) ([]model.Order, error) {
	return f.overdue, nil
}

func (f *fakeLedger) MarkLateSince(_ context.Context, orderID string, at time.Time) error {
	if _, ok := f.lateSince[orderID]; !ok {
		f.lateSince[orderID] = at
	}
	return nil
}

func setup() (*fakeCustomerRepo, *fakeLedger, *customerUseCase) {
	repo := newFakeCustomerRepo()
	ledger := newFakeLedger()
	uc := NewCustomerUseCase(repo, ledger, logger.NewNop()).(*customerUseCase)
	return repo, ledger, uc
}

func seedCustomer(repo *fakeCustomerRepo, id string) {
	repo.customers[id] = &model.Customer{
		BaseModel: model.BaseModel{ID: id},
		Name:      id,
		IsActive:  true,
	}
}

func TestBalanceDue(t *testing.T) {
	repo, ledger, uc := setup()
	seedCustomer(repo, "c1")
	ledger.balances["c1"] = 12345

	bal, err := uc.BalanceDue(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, int64(12345), bal)

	_, err = uc.BalanceDue(context.Background(), "ghost")
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestAssignTagUpsertsInPlace(t *testing.T) {
	repo, _, uc := setup()
	seedCustomer(repo, "c1")

	first := "missed friday payment"
	_, err := uc.AssignTag(context.Background(), &dto.AssignTagInput{
		CustomerID: "c1", Tag: model.TagLate, Reason: &first,
	})
	require.NoError(t, err)

	second := "still outstanding"
	_, err = uc.AssignTag(context.Background(), &dto.AssignTagInput{
		CustomerID: "c1", Tag: model.TagLate, Reason: &second,
	})
	require.NoError(t, err)

	tags, err := uc.ListTags(context.Background(), "c1")
	require.NoError(t, err)
	// never more than one live record per (customer, tag)
	require.Len(t, tags, 1)
	assert.Equal(t, "still outstanding", *tags[0].Reason)
}

func TestSweepTagsLateCustomers(t *testing.T) {
	repo, ledger, uc := setup()
	seedCustomer(repo, "c1")
	seedCustomer(repo, "c2")

	due := time.Now().Add(-48 * time.Hour)
	ledger.overdue = []model.Order{
		{BaseModel: model.BaseModel{ID: "o1"}, CustomerID: "c1", DueDate: &due},
	}

	require.NoError(t, uc.SweepLate(context.Background()))

	tags, _ := uc.ListTags(context.Background(), "c1")
	require.Len(t, tags, 1)
	assert.Equal(t, model.TagLate, tags[0].Tag)
	assert.Empty(t, repo.tags["c2"])

	// late-since set exactly once
	firstMark := ledger.lateSince["o1"]
	require.NoError(t, uc.SweepLate(context.Background()))
	assert.Equal(t, firstMark, ledger.lateSince["o1"])
}

func TestSweepClearsRecoveredCustomers(t *testing.T) {
	repo, ledger, uc := setup()
	seedCustomer(repo, "c1")

	due := time.Now().Add(-time.Hour)
	ledger.overdue = []model.Order{
		{BaseModel: model.BaseModel{ID: "o1"}, CustomerID: "c1", DueDate: &due},
	}
	require.NoError(t, uc.SweepLate(context.Background()))
	require.Len(t, repo.tags["c1"], 1)

	// balance settled: next sweep removes the tag
	ledger.overdue = nil
	require.NoError(t, uc.SweepLate(context.Background()))
	assert.Empty(t, repo.tags["c1"])
}

func TestSweepIsIdempotent(t *testing.T) {
	repo, ledger, uc := setup()
	seedCustomer(repo, "c1")

	due := time.Now().Add(-time.Hour)
	ledger.overdue = []model.Order{
		{BaseModel: model.BaseModel{ID: "o1"}, CustomerID: "c1", DueDate: &due},
	}

	for i := 0; i < 3; i++ {
		require.NoError(t, uc.SweepLate(context.Background()))
	}
	assert.Len(t, repo.tags["c1"], 1)
}

func TestDeactivateIsSoft(t *testing.T) {
	repo, _, uc := setup()
	seedCustomer(repo, "c1")

	require.NoError(t, uc.DeactivateCustomer(context.Background(), "c1"))

	c, err := uc.GetCustomer(context.Background(), "c1")
	require.NoError(t, err)
	assert.False(t, c.IsActive)
}
