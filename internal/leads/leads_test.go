package leads

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dajiagoods/storefront/internal/fallback"
)

func validInput() Input {
	return Input{
		Name:            "林小姐",
		Phone:           "0912345678",
		Email:           "lin@example.com",
		ProductInterest: "mazu-gold-amulet",
		AgreePrivacy:    true,
	}
}

func TestValidateStage1(t *testing.T) {
	assert.Empty(t, ValidateStage1(validInput()))

	in := validInput()
	in.Name = ""
	assert.Contains(t, ValidateStage1(in), "name")

	in = validInput()
	in.Name = strings.Repeat("名", 51)
	assert.Contains(t, ValidateStage1(in), "name")

	in = validInput()
	in.Phone = "12345"
	assert.Contains(t, ValidateStage1(in), "phone")

	in = validInput()
	in.Phone = strings.Repeat("9", 16)
	assert.Contains(t, ValidateStage1(in), "phone")

	in = validInput()
	in.Email = "not-an-email"
	assert.Contains(t, ValidateStage1(in), "email")

	in = validInput()
	in.ProductInterest = ""
	assert.Contains(t, ValidateStage1(in), "product_interest")
}

func TestValidateStage2(t *testing.T) {
	assert.Empty(t, ValidateStage2(validInput()))

	in := validInput()
	in.Note = strings.Repeat("字", 501)
	assert.Contains(t, ValidateStage2(in), "note")

	in = validInput()
	in.AgreePrivacy = false
	assert.Contains(t, ValidateStage2(in), "agree_privacy")
}

type fakeLeadRemote struct {
	inserted []Lead
	err      error
}

func (f *fakeLeadRemote) InsertLead(ctx context.Context, l Lead) error {
	if f.err != nil {
		return f.err
	}
	f.inserted = append(f.inserted, l)
	return nil
}

type fakeEnqueuer struct{ leads []Lead }

func (f *fakeEnqueuer) EnqueueLead(ctx context.Context, l Lead) error {
	f.leads = append(f.leads, l)
	return nil
}

func TestSubmitWritesBothStores(t *testing.T) {
	ctx := context.Background()
	remote := &fakeLeadRemote{}
	s := &Service{Remote: remote, Store: fallback.NewMemory()}

	l, err := s.Submit(ctx, validInput())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(l.ID, "LEAD-"))
	require.Len(t, remote.inserted, 1)

	local, err := s.Local(ctx)
	require.NoError(t, err)
	require.Len(t, local, 1)
	assert.Equal(t, l.ID, local[0].ID)
}

func TestSubmitRemoteFailureParksInOutbox(t *testing.T) {
	ctx := context.Background()
	q := &fakeEnqueuer{}
	s := &Service{Remote: &fakeLeadRemote{err: assert.AnError}, Store: fallback.NewMemory(), Outbox: q}

	l, err := s.Submit(ctx, validInput())
	require.NoError(t, err, "remote failure must not fail the submission")
	assert.NotEmpty(t, l.ID)

	require.Len(t, q.leads, 1)
	assert.Equal(t, l.ID, q.leads[0].ID)

	local, err := s.Local(ctx)
	require.NoError(t, err)
	assert.Len(t, local, 1)
}

func TestSubmitUnconfiguredRemoteIsLocalOnly(t *testing.T) {
	ctx := context.Background()
	s := &Service{Store: fallback.NewMemory()}

	_, err := s.Submit(ctx, validInput())
	require.NoError(t, err)

	local, err := s.Local(ctx)
	require.NoError(t, err)
	assert.Len(t, local, 1)
}

func TestSubmitRejectsInvalid(t *testing.T) {
	s := &Service{Store: fallback.NewMemory()}
	in := validInput()
	in.AgreePrivacy = false
	_, err := s.Submit(context.Background(), in)
	assert.ErrorIs(t, err, ErrInvalid)
}
