package settings

import (
	"context"
	"testing"

	"github.com/rfandrade/creditledger/internal/model"
	"github.com/rfandrade/creditledger/pkg/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	row *model.Settings
}

func (f *fakeRepo) Get(_ context.Context) (*model.Settings, error) {
	if f.row == nil {
		return nil, nil
	}
	cp := *f.row
	return &cp, nil
}

func (f *fakeRepo) Upsert(_ context.Context, s *model.Settings) error {
	cp := *s
	f.row = &cp
	return nil
}

func TestGetFallsBackToDefaults(t *testing.T) {
	svc := NewService(&fakeRepo{})

	s, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.DefaultSettings(), s)
}

func TestUpdatePersistsSingletonRow(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)

	next := model.DefaultSettings()
	next.ID = 99 // callers can't move the row
	next.LateHoldbackPct = 0.75

	saved, err := svc.Update(context.Background(), next)
	require.NoError(t, err)
	assert.Equal(t, 1, saved.ID)
	assert.Equal(t, 0.75, repo.row.LateHoldbackPct)
}

func TestUpdateValidation(t *testing.T) {
	svc := NewService(&fakeRepo{})

	cases := []struct {
		name   string
		mutate func(*model.Settings)
	}{
		{"pct above one", func(s *model.Settings) { s.OverTypicalDepositMinPct = 1.5 }},
		{"negative pct", func(s *model.Settings) { s.LateHoldbackPct = -0.1 }},
		{"zero history window", func(s *model.Settings) { s.HistoryWindow = 0 }},
		{"negative min spread", func(s *model.Settings) { s.MinSpreadGrams = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			next := model.DefaultSettings()
			tc.mutate(next)
			_, err := svc.Update(context.Background(), next)
			require.Error(t, err)
			assert.True(t, apperr.IsKind(err, apperr.KindValidation))
		})
	}
}
