package membership

import (
	"context"
	"errors"
	"testing"

	"github.com/ariefcatur/go-pethotel-pos/internal/apperr"
	"github.com/ariefcatur/go-pethotel-pos/internal/pos"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memStore struct {
	members map[string]pos.Member
	writes  int
	failSet error
}

func newMemStore(ms ...pos.Member) *memStore {
	s := &memStore{members: map[string]pos.Member{}}
	for _, m := range ms {
		s.members[m.MembershipID] = m
	}
	return s
}

func (s *memStore) FindByMembershipID(_ context.Context, id string) (pos.Member, error) {
	m, ok := s.members[id]
	if !ok {
		return pos.Member{}, apperr.ErrMemberNotFound
	}
	return m, nil
}

func (s *memStore) SetPoints(_ context.Context, id string, points int64) error {
	if s.failSet != nil {
		return s.failSet
	}
	m := s.members[id]
	m.Points = points
	s.members[id] = m
	s.writes++
	return nil
}

func TestLookup(t *testing.T) {
	l := NewLedger(newMemStore(pos.Member{MembershipID: "M1", Name: "Ana", Points: 40}), zap.NewNop())

	m, err := l.LookupByExternalID(context.Background(), "M1")
	require.NoError(t, err)
	assert.Equal(t, "Ana", m.Name)

	_, err = l.LookupByExternalID(context.Background(), "M404")
	assert.ErrorIs(t, err, apperr.ErrMemberNotFound)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = l.LookupByExternalID(context.Background(), "")
	assert.ErrorIs(t, err, apperr.ErrMemberNotFound)
}

func TestAccruePoints(t *testing.T) {
	store := newMemStore(pos.Member{MembershipID: "M1", Points: 40})
	l := NewLedger(store, zap.NewNop())

	m, err := l.AccruePoints(context.Background(), "M1", 107)
	require.NoError(t, err)
	assert.Equal(t, int64(147), m.Points)
	assert.Equal(t, int64(147), store.members["M1"].Points)
}

func TestAccruePoints_InvalidAmount(t *testing.T) {
	store := newMemStore(pos.Member{MembershipID: "M1", Points: 40})
	l := NewLedger(store, zap.NewNop())

	for _, amt := range []int64{0, -3} {
		_, err := l.AccruePoints(context.Background(), "M1", amt)
		assert.ErrorIs(t, err, apperr.ErrInvalidAmount)
	}
	assert.Zero(t, store.writes)
}

func TestRedeemPoints_ResetsBalanceToZero(t *testing.T) {
	store := newMemStore(pos.Member{MembershipID: "M1", Points: 2500})
	l := NewLedger(store, zap.NewNop())

	r, err := l.RedeemPoints(context.Background(), "M1", 100)
	require.NoError(t, err)
	assert.Equal(t, int64(100), r.Requested)
	assert.Equal(t, int64(2500), r.Forfeited)
	assert.True(t, decimal.RequireFromString("2.5").Equal(r.PointDiscount))
	assert.Equal(t, int64(0), store.members["M1"].Points)
}

func TestRedeemPoints_Insufficient(t *testing.T) {
	store := newMemStore(pos.Member{MembershipID: "M1", Points: 50})
	l := NewLedger(store, zap.NewNop())

	_, err := l.RedeemPoints(context.Background(), "M1", 51)
	assert.ErrorIs(t, err, apperr.ErrInsufficientPoints)
	assert.Equal(t, apperr.KindInsufficientResource, apperr.KindOf(err))
	assert.Equal(t, int64(50), store.members["M1"].Points)
	assert.Zero(t, store.writes)
}

func TestRedeemPoints_NothingToRedeem(t *testing.T) {
	store := newMemStore(pos.Member{MembershipID: "M1", Points: 0})
	l := NewLedger(store, zap.NewNop())

	_, err := l.RedeemPoints(context.Background(), "M1", 0)
	assert.ErrorIs(t, err, apperr.ErrNoPointsToRedeem)
}

func TestRedeemPoints_StoreFailureIsExternalIO(t *testing.T) {
	store := newMemStore(pos.Member{MembershipID: "M1", Points: 10})
	store.failSet = errors.New("write timeout")
	l := NewLedger(store, zap.NewNop())

	_, err := l.RedeemPoints(context.Background(), "M1", 10)
	require.Error(t, err)
	assert.Equal(t, apperr.KindExternalIO, apperr.KindOf(err))
}
