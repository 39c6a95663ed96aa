package library

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"
	bolt "go.etcd.io/bbolt"
)

var (
	itemsBucket  = []byte("voizys")
	byTimeBucket = []byte("voizys_by_time")
)

// LocalCollection stores voizy metadata in bbolt and keeps a bleve index
// for keyword search. Browsing (empty keyword) pages through a
// newest-first ordering bucket; searching pages through bleve offsets.
type LocalCollection struct {
	db  *bolt.DB
	idx bleve.Index
}

func NewLocalCollection(dbPath, indexPath string) (*LocalCollection, error) {
	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{itemsBucket, byTimeBucket} {
			if _, createErr := tx.CreateBucketIfNotExists(bucket); createErr != nil {
				return createErr
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	idx, err := openOrCreateIndex(indexPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("opening search index: %w", err)
	}

	return &LocalCollection{db: db, idx: idx}, nil
}

func openOrCreateIndex(indexPath string) (bleve.Index, error) {
	if mkErr := os.MkdirAll(filepath.Dir(indexPath), 0o755); mkErr != nil {
		_ = mkErr // Open/New below will surface a real failure
	}

	idx, err := bleve.Open(indexPath)
	if err == nil {
		return idx, nil
	}
	return bleve.New(indexPath, buildIndexMapping())
}

func buildIndexMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = standard.Name

	dm := bleve.NewDocumentMapping()

	name := bleve.NewTextFieldMapping()
	name.Analyzer = standard.Name
	name.Store = true

	tags := bleve.NewTextFieldMapping()
	tags.Analyzer = standard.Name
	tags.Store = true

	dm.AddFieldMappingsAt("name", name)
	dm.AddFieldMappingsAt("tags", tags)

	im.DefaultMapping = dm
	return im
}

func (c *LocalCollection) Close() error {
	if err := c.idx.Close(); err != nil {
		c.db.Close()
		return err
	}
	return c.db.Close()
}

// orderKey sorts newest items first under a forward bolt cursor scan.
func orderKey(item *Voizy) []byte {
	ts := item.CreatedAt.UTC().UnixNano()
	return []byte(fmt.Sprintf("%020d#%s", math.MaxInt64-ts, item.ID))
}

func (c *LocalCollection) SaveItem(item *Voizy) error {
	if item.ID == "" {
		return fmt.Errorf("saving item: empty id")
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}

	err := c.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(item)
		if err != nil {
			return err
		}
		if err := tx.Bucket(itemsBucket).Put([]byte(item.ID), data); err != nil {
			return err
		}
		return tx.Bucket(byTimeBucket).Put(orderKey(item), []byte(item.ID))
	})
	if err != nil {
		return fmt.Errorf("saving item: %w", err)
	}

	return c.idx.Index(item.ID, map[string]any{
		"name": item.Name,
		"tags": item.Tags,
	})
}

func (c *LocalCollection) GetItem(id string) (*Voizy, error) {
	var item Voizy
	err := c.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(itemsBucket).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("item not found")
		}
		return json.Unmarshal(data, &item)
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *LocalCollection) DeleteItem(id string) error {
	item, err := c.GetItem(id)
	if err != nil {
		return err
	}

	err = c.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(itemsBucket).Delete([]byte(id)); err != nil {
			return err
		}
		return tx.Bucket(byTimeBucket).Delete(orderKey(item))
	})
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}

	return c.idx.Delete(id)
}

// FetchPage returns one page of items. Browsing uses the ordering bucket
// with the last seen key as cursor; searching uses bleve with a numeric
// offset token.
func (c *LocalCollection) FetchPage(ctx context.Context, keyword, cursor string, size int) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if size <= 0 {
		return &Page{}, nil
	}

	if strings.TrimSpace(keyword) == "" {
		return c.browsePage(cursor, size)
	}
	return c.searchPage(keyword, cursor, size)
}

func (c *LocalCollection) browsePage(cursor string, size int) (*Page, error) {
	page := &Page{}
	err := c.db.View(func(tx *bolt.Tx) error {
		items := tx.Bucket(itemsBucket)
		cur := tx.Bucket(byTimeBucket).Cursor()

		var k, id []byte
		if cursor == "" {
			k, id = cur.First()
		} else {
			k, id = cur.Seek([]byte(cursor))
			if k != nil && string(k) == cursor {
				k, id = cur.Next()
			}
		}

		var lastKey string
		for ; k != nil && len(page.Items) < size; k, id = cur.Next() {
			data := items.Get(id)
			if data == nil {
				continue
			}
			var item Voizy
			if err := json.Unmarshal(data, &item); err != nil {
				continue
			}
			page.Items = append(page.Items, &item)
			lastKey = string(k)
		}

		if k != nil {
			page.NextCursor = lastKey
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("browsing items: %w", err)
	}
	return page, nil
}

func (c *LocalCollection) searchPage(keyword, cursor string, size int) (*Page, error) {
	offset := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid cursor %q", cursor)
		}
		offset = n
	}

	req := bleve.NewSearchRequestOptions(buildSearchQuery(keyword), size, offset, false)
	res, err := c.idx.Search(req)
	if err != nil {
		return nil, fmt.Errorf("searching items: %w", err)
	}

	page := &Page{}
	for _, hit := range res.Hits {
		item, err := c.GetItem(hit.ID)
		if err != nil {
			continue // index may briefly lead the store
		}
		page.Items = append(page.Items, item)
	}

	if uint64(offset+len(res.Hits)) < res.Total {
		page.NextCursor = strconv.Itoa(offset + len(res.Hits))
	}
	return page, nil
}

// buildSearchQuery ORs per-term matches over name and tags, boosting name.
func buildSearchQuery(keyword string) bleveQuery.Query {
	terms := strings.Fields(strings.ToLower(keyword))
	var qs []bleveQuery.Query
	for _, term := range terms {
		name := bleve.NewMatchQuery(term)
		name.SetField("name")
		name.SetBoost(2.0)
		qs = append(qs, name)

		tags := bleve.NewMatchQuery(term)
		tags.SetField("tags")
		qs = append(qs, tags)

		prefix := bleve.NewPrefixQuery(term)
		prefix.SetField("name")
		qs = append(qs, prefix)
	}
	if len(qs) == 0 {
		return bleve.NewMatchNoneQuery()
	}
	return bleve.NewDisjunctionQuery(qs...)
}
