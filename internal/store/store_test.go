package store

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCollectionCreatedOnFirstUse(t *testing.T) {
	st := New()
	if names := st.Names(); len(names) != 0 {
		t.Fatalf("Names() on empty store = %v, want empty", names)
	}

	c := st.Collection("users")
	if c == nil {
		t.Fatal("Collection() returned nil")
	}
	if c2 := st.Collection("users"); c2 != c {
		t.Error("Collection() returned a different instance for the same name")
	}

	want := []string{"users"}
	if diff := cmp.Diff(want, st.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
}

func TestNamesSorted(t *testing.T) {
	st := New()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		st.Collection(name)
	}
	want := []string{"alpha", "mid", "zeta"}
	if diff := cmp.Diff(want, st.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
}

func TestDrop(t *testing.T) {
	st := New()
	st.Collection("users")

	if !st.Drop("users") {
		t.Error("Drop() existing collection = false, want true")
	}
	if st.Drop("users") {
		t.Error("Drop() missing collection = true, want false")
	}
	if names := st.Names(); len(names) != 0 {
		t.Errorf("Names() after drop = %v, want empty", names)
	}
}

func TestInsertOneAssignsID(t *testing.T) {
	st := New()
	c := st.Collection("users")

	id, err := c.InsertOne(bson.D{{Key: "name", Value: "Ada"}})
	if err != nil {
		t.Fatalf("InsertOne() error = %v", err)
	}
	if _, ok := id.(primitive.ObjectID); !ok {
		t.Errorf("InsertOne() id type = %T, want primitive.ObjectID", id)
	}

	doc, found, err := c.FindOne(nil, nil)
	if err != nil || !found {
		t.Fatalf("FindOne() = %v, %v, %v", doc, found, err)
	}
	if doc[0].Key != "_id" {
		t.Errorf("stored document first key = %q, want _id", doc[0].Key)
	}
}

func TestInsertOneKeepsProvidedID(t *testing.T) {
	st := New()
	c := st.Collection("users")

	id, err := c.InsertOne(bson.D{{Key: "_id", Value: int64(7)}, {Key: "name", Value: "Ada"}})
	if err != nil {
		t.Fatalf("InsertOne() error = %v", err)
	}
	if id != int64(7) {
		t.Errorf("InsertOne() id = %v, want 7", id)
	}
}

func TestInsertManyRejectsNonDocument(t *testing.T) {
	st := New()
	c := st.Collection("users")

	_, err := c.InsertMany(bson.A{bson.D{{Key: "a", Value: int64(1)}}, "not a document"})
	if err == nil {
		t.Fatal("InsertMany() with non-document element did not fail")
	}
	n, _ := c.Count(nil)
	if n != 0 {
		t.Errorf("Count() after failed InsertMany = %d, want 0 (atomic rejection)", n)
	}
}

func TestFindInsertionOrder(t *testing.T) {
	st := New()
	c := st.Collection("users")
	for i := 0; i < 3; i++ {
		if _, err := c.InsertOne(bson.D{{Key: "n", Value: int64(i)}}); err != nil {
			t.Fatalf("InsertOne() error = %v", err)
		}
	}

	docs, err := c.Find(nil, bson.D{{Key: "_id", Value: int64(0)}})
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	want := []bson.D{
		{{Key: "n", Value: int64(0)}},
		{{Key: "n", Value: int64(1)}},
		{{Key: "n", Value: int64(2)}},
	}
	if diff := cmp.Diff(want, docs); diff != "" {
		t.Errorf("Find() mismatch (-want +got):\n%s", diff)
	}
}

func TestDeleteOneRemovesFirstMatchOnly(t *testing.T) {
	st := New()
	c := st.Collection("users")
	for i := 0; i < 3; i++ {
		c.InsertOne(bson.D{{Key: "dup", Value: true}, {Key: "n", Value: int64(i)}})
	}

	n, err := c.DeleteOne(bson.D{{Key: "dup", Value: true}})
	if err != nil {
		t.Fatalf("DeleteOne() error = %v", err)
	}
	if n != 1 {
		t.Errorf("DeleteOne() = %d, want 1", n)
	}
	remaining, _ := c.Count(nil)
	if remaining != 2 {
		t.Errorf("Count() after DeleteOne = %d, want 2", remaining)
	}

	first, _, _ := c.FindOne(nil, nil)
	if v, _ := lookupField(first, "n"); v != int64(1) {
		t.Errorf("first remaining document n = %v, want 1 (first match deleted)", v)
	}
}

func TestDeleteMany(t *testing.T) {
	st := New()
	c := st.Collection("users")
	for i := 0; i < 5; i++ {
		c.InsertOne(bson.D{{Key: "even", Value: i%2 == 0}})
	}

	n, err := c.DeleteMany(bson.D{{Key: "even", Value: true}})
	if err != nil {
		t.Fatalf("DeleteMany() error = %v", err)
	}
	if n != 3 {
		t.Errorf("DeleteMany() = %d, want 3", n)
	}
	remaining, _ := c.Count(nil)
	if remaining != 2 {
		t.Errorf("Count() after DeleteMany = %d, want 2", remaining)
	}
}

func TestInsertIsolatesCallerDocument(t *testing.T) {
	st := New()
	c := st.Collection("users")

	doc := bson.D{{Key: "tags", Value: bson.A{"a"}}}
	c.InsertOne(doc)

	// Mutating the caller's document must not touch the stored copy.
	doc[0].Value = bson.A{"mutated"}

	stored, _, _ := c.FindOne(nil, bson.D{{Key: "_id", Value: int64(0)}})
	want := bson.D{{Key: "tags", Value: bson.A{"a"}}}
	if diff := cmp.Diff(want, stored); diff != "" {
		t.Errorf("stored document changed with caller's copy (-want +got):\n%s", diff)
	}
}

func TestFindIsolatesReturnedDocument(t *testing.T) {
	st := New()
	c := st.Collection("users")
	c.InsertOne(bson.D{{Key: "nested", Value: bson.D{{Key: "x", Value: int64(1)}}}})

	got, _, _ := c.FindOne(nil, nil)
	nested := got[1].Value.(bson.D)
	nested[0].Value = int64(99)

	again, _, _ := c.FindOne(nil, nil)
	if v, _ := lookupPath(again, "nested.x"); v != int64(1) {
		t.Errorf("engine state mutated through a returned document: nested.x = %v", v)
	}
}

func TestDumpRestoreRoundTrip(t *testing.T) {
	st := New()
	st.Collection("users").InsertOne(bson.D{{Key: "_id", Value: int64(1)}, {Key: "name", Value: "Ada"}})
	st.Collection("empty")

	dump := st.Dump()
	if _, ok := dump["empty"]; !ok {
		t.Error("Dump() omitted the empty collection")
	}

	restored := New()
	restored.Restore(dump)
	if diff := cmp.Diff(st.Names(), restored.Names()); diff != "" {
		t.Errorf("Names() after restore mismatch (-want +got):\n%s", diff)
	}

	doc, found, err := restored.Collection("users").FindOne(bson.D{{Key: "_id", Value: int64(1)}}, nil)
	if err != nil || !found {
		t.Fatalf("FindOne() after restore = %v, %v, %v", doc, found, err)
	}
	if v, _ := lookupField(doc, "name"); v != "Ada" {
		t.Errorf("restored document name = %v, want Ada", v)
	}
}

func TestConcurrentAccess(t *testing.T) {
	st := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("coll%d", i%4)
			c := st.Collection(name)
			for j := 0; j < 50; j++ {
				c.InsertOne(bson.D{{Key: "n", Value: int64(j)}})
				c.Count(bson.D{{Key: "n", Value: bson.D{{Key: "$lt", Value: int64(25)}}}})
				c.Find(nil, nil)
			}
		}(i)
	}
	wg.Wait()

	total := 0
	for _, name := range st.Names() {
		n, err := st.Collection(name).Count(nil)
		if err != nil {
			t.Fatalf("Count() error = %v", err)
		}
		total += n
	}
	if total != 8*50 {
		t.Errorf("total documents after concurrent inserts = %d, want %d", total, 8*50)
	}
}
