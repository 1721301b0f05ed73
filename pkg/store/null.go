package store

import "context"

// NullStore discards every set. Get always reports NOT_FOUND.
type NullStore struct{}

// NewNullStore returns a store that keeps nothing.
func NewNullStore() *NullStore { return &NullStore{} }

func (NullStore) Save(context.Context, *CandidateSet) error { return nil }

func (NullStore) Get(_ context.Context, id string) (*CandidateSet, error) {
	return nil, notFound(id)
}

func (NullStore) List(context.Context, int) ([]Summary, error) { return nil, nil }

func (NullStore) Close() error { return nil }

var _ Store = NullStore{}
