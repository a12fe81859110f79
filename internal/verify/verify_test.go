package verify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRemote struct {
	codes   map[string]*Code
	bumpErr error
}

func (f *fakeRemote) CodeByValue(ctx context.Context, code string) (Code, bool, error) {
	if c, ok := f.codes[code]; ok {
		return *c, true, nil
	}
	return Code{}, false, nil
}

func (f *fakeRemote) BumpVerification(ctx context.Context, code string, at time.Time) error {
	if f.bumpErr != nil {
		return f.bumpErr
	}
	c := f.codes[code]
	c.VerifiedCount++
	c.VerifiedAt = &at
	return nil
}

func TestVerifyNotConfiguredIsHardError(t *testing.T) {
	s := &Service{}
	_, err := s.Verify(context.Background(), "DJ-123-ABCDEFGH-1")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestVerifyDistinguishesNotFoundFromInvalidated(t *testing.T) {
	remote := &fakeRemote{codes: map[string]*Code{
		"DJ-1-USED-1": {Code: "DJ-1-USED-1", Status: StatusUsed},
	}}
	s := &Service{Remote: remote}

	_, err := s.Verify(context.Background(), "DJ-1-MISSING-1")
	assert.ErrorIs(t, err, ErrCodeNotFound)

	_, err = s.Verify(context.Background(), "DJ-1-USED-1")
	assert.ErrorIs(t, err, ErrCodeInvalidated)
}

func TestVerifyNormalizesInput(t *testing.T) {
	remote := &fakeRemote{codes: map[string]*Code{
		"DJ-1-ABCDEFGH-1": {Code: "DJ-1-ABCDEFGH-1", Status: StatusActive, ProductName: "媽祖金箔護身符"},
	}}
	s := &Service{Remote: remote}

	res, err := s.Verify(context.Background(), "  dj-1-abcdefgh-1  ")
	require.NoError(t, err)
	assert.Equal(t, "DJ-1-ABCDEFGH-1", res.Code)
	assert.Equal(t, "媽祖金箔護身符", res.ProductName)
}

func TestVerifyCountStrictlyIncreases(t *testing.T) {
	remote := &fakeRemote{codes: map[string]*Code{
		"DJ-1-ABCDEFGH-1": {Code: "DJ-1-ABCDEFGH-1", Status: StatusActive},
	}}
	s := &Service{Remote: remote}

	prev := 0
	for i := 1; i <= 5; i++ {
		res, err := s.Verify(context.Background(), "DJ-1-ABCDEFGH-1")
		require.NoError(t, err)
		assert.Equal(t, prev+1, res.VerifiedCount)
		prev = res.VerifiedCount
	}
	assert.Equal(t, 5, remote.codes["DJ-1-ABCDEFGH-1"].VerifiedCount)
}

func TestVerifyBumpFailureIsNotSurfaced(t *testing.T) {
	remote := &fakeRemote{
		codes:   map[string]*Code{"DJ-1-ABCDEFGH-1": {Code: "DJ-1-ABCDEFGH-1", Status: StatusActive, VerifiedCount: 2}},
		bumpErr: assert.AnError,
	}
	s := &Service{Remote: remote}

	res, err := s.Verify(context.Background(), "DJ-1-ABCDEFGH-1")
	require.NoError(t, err)
	assert.Equal(t, 3, res.VerifiedCount)
}

func TestVerifyEmptyInput(t *testing.T) {
	s := &Service{Remote: &fakeRemote{}}
	_, err := s.Verify(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrCodeNotFound)
}
