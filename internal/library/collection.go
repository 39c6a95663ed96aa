package library

import "context"

// Fetcher is the read side of a voizy collection: one page of items for a
// keyword and continuation cursor. An empty keyword means "no filter",
// an empty cursor means "first page".
type Fetcher interface {
	FetchPage(ctx context.Context, keyword, cursor string, size int) (*Page, error)
}

// Saver commits item metadata to the collection.
type Saver interface {
	SaveItem(item *Voizy) error
}

// Collection is the full document-store contract the engine is built
// against. LocalCollection implements it over bbolt and bleve; a remote
// backend only has to satisfy this interface.
type Collection interface {
	Fetcher
	Saver
	GetItem(id string) (*Voizy, error)
	DeleteItem(id string) error
	Close() error
}
