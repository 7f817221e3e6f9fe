package numbering_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"shopbooks/internal/domain"
	"shopbooks/internal/numbering"
)

// memStore is an in-memory SequenceStore with the same atomicity contract as
// the database-backed one.
type memStore struct {
	mu   sync.Mutex
	seqs map[string]int64
	err  error
}

func newMemStore() *memStore {
	return &memStore{seqs: make(map[string]int64)}
}

func (s *memStore) Next(_ context.Context, companyID uuid.UUID, prefix string, day time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	key := companyID.String() + "/" + prefix + "/" + day.Format("2006-01-02")
	s.seqs[key]++
	return s.seqs[key], nil
}

var testDay = time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

func TestAllocate_Format(t *testing.T) {
	a := numbering.NewAllocator(newMemStore())
	companyID := uuid.New()

	n1, err := a.Allocate(context.Background(), companyID, domain.DocTypeSale, false, testDay)
	assert.NoError(t, err)
	assert.Equal(t, "INV-20260830-0001", n1)

	n2, err := a.Allocate(context.Background(), companyID, domain.DocTypeSale, false, testDay)
	assert.NoError(t, err)
	assert.Equal(t, "INV-20260830-0002", n2)

	// GST documents run on a separate prefix and counter.
	g, err := a.Allocate(context.Background(), companyID, domain.DocTypeSale, true, testDay)
	assert.NoError(t, err)
	assert.Equal(t, "GST-20260830-0001", g)
}

func TestAllocate_PrefixPerType(t *testing.T) {
	a := numbering.NewAllocator(newMemStore())
	companyID := uuid.New()

	cases := []struct {
		docType    domain.DocumentType
		gstEnabled bool
		want       string
	}{
		{domain.DocTypeSalesOrder, false, "SO-20260830-0001"},
		{domain.DocTypeSalesOrder, true, "SO-GST-20260830-0001"},
		{domain.DocTypePurchase, false, "PUR-20260830-0001"},
		{domain.DocTypePurchaseOrder, false, "PO-20260830-0001"},
	}
	for _, tc := range cases {
		got, err := a.Allocate(context.Background(), companyID, tc.docType, tc.gstEnabled, testDay)
		assert.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}
}

func TestAllocate_ConcurrentAllocationsAreUnique(t *testing.T) {
	a := numbering.NewAllocator(newMemStore())
	companyID := uuid.New()

	const n = 100
	var wg sync.WaitGroup
	numbers := make(chan string, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			num, err := a.Allocate(context.Background(), companyID, domain.DocTypeSale, false, testDay)
			assert.NoError(t, err)
			numbers <- num
		}()
	}
	wg.Wait()
	close(numbers)

	seen := make(map[string]bool, n)
	for num := range numbers {
		assert.False(t, seen[num], "duplicate number %s", num)
		seen[num] = true
	}
	assert.Len(t, seen, n)
}

func TestAllocate_SequenceExhausted(t *testing.T) {
	store := newMemStore()
	companyID := uuid.New()
	store.seqs[companyID.String()+"/INV/2026-08-30"] = 9999

	a := numbering.NewAllocator(store)
	_, err := a.Allocate(context.Background(), companyID, domain.DocTypeSale, false, testDay)
	assert.ErrorIs(t, err, domain.ErrSequenceExhausted)
}

func TestAllocate_StoreErrorPropagates(t *testing.T) {
	store := newMemStore()
	store.err = errors.New("connection refused")

	a := numbering.NewAllocator(store)
	_, err := a.Allocate(context.Background(), uuid.New(), domain.DocTypeSale, false, testDay)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrSequenceExhausted)
}

func TestFallbackNumber(t *testing.T) {
	at := time.Date(2026, 8, 30, 10, 30, 0, 0, time.UTC)
	got := numbering.FallbackNumber(domain.DocTypeSale, true, testDay, at)

	assert.Contains(t, got, "GST-20260830-FB")
	assert.NotEqual(t, numbering.FallbackNumber(domain.DocTypeSale, true, testDay, at.Add(time.Millisecond)), got)
}
