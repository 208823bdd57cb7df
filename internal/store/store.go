// Package store implements the in-memory document engine behind mingo.
//
// A Store holds named collections, created on first use. Collections hold
// documents as bson.D in insertion order. Every document crossing the
// engine boundary is deep-copied, in both directions, so callers can never
// alias engine state. The store map and each collection carry their own
// RWMutex; operations on different collections do not contend.
package store

import (
	"fmt"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store is a set of named collections.
type Store struct {
	mu    sync.RWMutex
	colls map[string]*Collection
}

// New creates an empty store.
func New() *Store {
	return &Store{colls: make(map[string]*Collection)}
}

// Collection returns the named collection, creating it if absent.
func (s *Store) Collection(name string) *Collection {
	s.mu.RLock()
	c, ok := s.colls[name]
	s.mu.RUnlock()
	if ok {
		return c
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.colls[name]; ok {
		return c
	}
	c = &Collection{}
	s.colls[name] = c
	return c
}

// Drop removes the named collection. Reports whether it existed.
func (s *Store) Drop(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.colls[name]
	delete(s.colls, name)
	return ok
}

// Names returns the collection names in sorted order.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.colls))
	for name := range s.colls {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dump copies out every collection's documents, keyed by collection name.
// Empty collections are included so a created-then-emptied collection
// survives a snapshot round trip.
func (s *Store) Dump() map[string][]bson.D {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]bson.D, len(s.colls))
	for name, c := range s.colls {
		c.mu.RLock()
		docs := make([]bson.D, len(c.docs))
		for i, d := range c.docs {
			docs[i] = cloneDocument(d)
		}
		c.mu.RUnlock()
		out[name] = docs
	}
	return out
}

// Restore replaces the store's contents with the given collections.
func (s *Store) Restore(collections map[string][]bson.D) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.colls = make(map[string]*Collection, len(collections))
	for name, docs := range collections {
		c := &Collection{docs: make([]bson.D, len(docs))}
		for i, d := range docs {
			c.docs[i] = cloneDocument(d)
		}
		s.colls[name] = c
	}
}

// Collection is an ordered set of documents.
type Collection struct {
	mu   sync.RWMutex
	docs []bson.D
}

// InsertOne appends a document and returns its _id. A fresh ObjectID is
// assigned when the document has no _id field.
func (c *Collection) InsertOne(doc bson.D) (interface{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	stored, id := c.prepareInsert(doc)
	c.docs = append(c.docs, stored)
	return id, nil
}

// InsertMany appends the documents of an array in order and returns their
// ids. Every element must be a document.
func (c *Collection) InsertMany(docs bson.A) ([]interface{}, error) {
	prepared := make([]bson.D, 0, len(docs))
	ids := make([]interface{}, 0, len(docs))

	c.mu.Lock()
	defer c.mu.Unlock()
	for i, v := range docs {
		doc, ok := v.(bson.D)
		if !ok {
			return nil, &EngineError{Op: "insertMany", Detail: fmt.Sprintf("element %d is not a document", i)}
		}
		stored, id := c.prepareInsert(doc)
		prepared = append(prepared, stored)
		ids = append(ids, id)
	}
	c.docs = append(c.docs, prepared...)
	return ids, nil
}

// prepareInsert clones the document and ensures it has an _id. Caller holds
// the write lock.
func (c *Collection) prepareInsert(doc bson.D) (bson.D, interface{}) {
	stored := cloneDocument(doc)
	if id, ok := lookupField(stored, "_id"); ok {
		return stored, id
	}
	id := primitive.NewObjectID()
	stored = append(bson.D{{Key: "_id", Value: id}}, stored...)
	return stored, id
}

// Find returns every document matching the filter, in insertion order,
// with the projection applied. A nil or empty filter matches everything.
func (c *Collection) Find(filter, projection bson.D) ([]bson.D, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []bson.D
	for _, doc := range c.docs {
		ok, err := matchDocument(doc, filter)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		projected, err := applyProjection(doc, projection)
		if err != nil {
			return nil, err
		}
		out = append(out, projected)
	}
	return out, nil
}

// FindOne returns the first matching document. The second return value
// reports whether a document matched.
func (c *Collection) FindOne(filter, projection bson.D) (bson.D, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, doc := range c.docs {
		ok, err := matchDocument(doc, filter)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			continue
		}
		projected, err := applyProjection(doc, projection)
		if err != nil {
			return nil, false, err
		}
		return projected, true, nil
	}
	return nil, false, nil
}

// UpdateResult reports what an update operation did.
type UpdateResult struct {
	MatchedCount  int
	ModifiedCount int
	UpsertedID    interface{} // nil unless an upsert inserted
}

// UpdateOne applies the update document to the first matching document.
// With upsert set and no match, a new document is built from the filter's
// equality fields plus the update and inserted.
func (c *Collection) UpdateOne(filter, update bson.D, upsert bool) (*UpdateResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, doc := range c.docs {
		ok, err := matchDocument(doc, filter)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		updated, changed, err := applyUpdate(doc, update)
		if err != nil {
			return nil, err
		}
		c.docs[i] = updated
		res := &UpdateResult{MatchedCount: 1}
		if changed {
			res.ModifiedCount = 1
		}
		return res, nil
	}

	if !upsert {
		return &UpdateResult{}, nil
	}

	seed := upsertSeed(filter)
	updated, _, err := applyUpdate(seed, update)
	if err != nil {
		return nil, err
	}
	stored, id := c.prepareInsert(updated)
	c.docs = append(c.docs, stored)
	return &UpdateResult{UpsertedID: id}, nil
}

// UpdateMany applies the update document to every matching document.
func (c *Collection) UpdateMany(filter, update bson.D, upsert bool) (*UpdateResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	res := &UpdateResult{}
	for i, doc := range c.docs {
		ok, err := matchDocument(doc, filter)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		updated, changed, err := applyUpdate(doc, update)
		if err != nil {
			return nil, err
		}
		c.docs[i] = updated
		res.MatchedCount++
		if changed {
			res.ModifiedCount++
		}
	}

	if res.MatchedCount == 0 && upsert {
		seed := upsertSeed(filter)
		updated, _, err := applyUpdate(seed, update)
		if err != nil {
			return nil, err
		}
		stored, id := c.prepareInsert(updated)
		c.docs = append(c.docs, stored)
		res.UpsertedID = id
	}
	return res, nil
}

// DeleteOne removes the first matching document and returns the number of
// documents removed (0 or 1).
func (c *Collection) DeleteOne(filter bson.D) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, doc := range c.docs {
		ok, err := matchDocument(doc, filter)
		if err != nil {
			return 0, err
		}
		if ok {
			c.docs = append(c.docs[:i], c.docs[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

// DeleteMany removes every matching document and returns the count removed.
func (c *Collection) DeleteMany(filter bson.D) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.docs[:0]
	deleted := 0
	for _, doc := range c.docs {
		ok, err := matchDocument(doc, filter)
		if err != nil {
			return 0, err
		}
		if ok {
			deleted++
		} else {
			kept = append(kept, doc)
		}
	}
	c.docs = kept
	return deleted, nil
}

// Count returns the number of documents matching the filter.
func (c *Collection) Count(filter bson.D) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, doc := range c.docs {
		ok, err := matchDocument(doc, filter)
		if err != nil {
			return 0, err
		}
		if ok {
			n++
		}
	}
	return n, nil
}

// EngineError reports an operation the engine cannot perform, such as an
// unknown filter operator or a mixed projection.
type EngineError struct {
	Op     string
	Detail string
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Detail)
}
