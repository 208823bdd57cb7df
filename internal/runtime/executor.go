// Package runtime dispatches execution plans to the document engine and
// shapes driver-style result documents.
package runtime

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/mingo-db/mingo/internal/output"
	"github.com/mingo-db/mingo/internal/planner"
	"github.com/mingo-db/mingo/internal/store"
	"github.com/mingo-db/mingo/internal/types"
)

// Executor runs plans against one store.
type Executor struct {
	store *store.Store
}

// NewExecutor creates an executor bound to st.
func NewExecutor(st *store.Store) *Executor {
	return &Executor{store: st}
}

// Store returns the engine this executor is bound to.
func (e *Executor) Store() *store.Store {
	return e.store
}

// Result is the outcome of one executed plan. Exactly one of Documents
// (a find stream), Document (a single or driver-style result document), or
// Null (findOne with no match) describes the payload.
type Result struct {
	Documents []bson.D
	Document  bson.D
	IsStream  bool
	Null      bool
	Mutated   bool // whether the operation changed the store
}

// Execute dispatches a plan to the engine. Engine failures come back as
// execution errors, never parser errors.
func (e *Executor) Execute(plan *planner.ExecutionPlan) (*Result, error) {
	// Drop must not resolve the collection: resolving creates it.
	if plan.Method == types.MethodDrop {
		existed := e.store.Drop(plan.Collection)
		return &Result{
			Document: bson.D{
				{Key: "dropped", Value: plan.Collection},
				{Key: "ok", Value: existed},
			},
			Mutated: existed,
		}, nil
	}

	coll := e.store.Collection(plan.Collection)

	switch plan.Method {
	case types.MethodInsertOne:
		id, err := coll.InsertOne(plan.Document)
		if err != nil {
			return nil, err
		}
		return &Result{
			Document: bson.D{{Key: "insertedId", Value: id}},
			Mutated:  true,
		}, nil

	case types.MethodInsertMany:
		ids, err := coll.InsertMany(plan.Documents)
		if err != nil {
			return nil, err
		}
		return &Result{
			Document: bson.D{
				{Key: "insertedCount", Value: int64(len(ids))},
				{Key: "insertedIds", Value: bson.A(ids)},
			},
			Mutated: true,
		}, nil

	case types.MethodFind:
		docs, err := coll.Find(plan.Filter, plan.Projection)
		if err != nil {
			return nil, err
		}
		return &Result{Documents: docs, IsStream: true}, nil

	case types.MethodFindOne:
		doc, found, err := coll.FindOne(plan.Filter, plan.Projection)
		if err != nil {
			return nil, err
		}
		if !found {
			return &Result{Null: true}, nil
		}
		return &Result{Document: doc}, nil

	case types.MethodUpdateOne, types.MethodUpdateMany:
		upsert := plan.Options != nil && plan.Options.Upsert
		var res *store.UpdateResult
		var err error
		if plan.Method == types.MethodUpdateOne {
			res, err = coll.UpdateOne(plan.Filter, plan.Update, upsert)
		} else {
			res, err = coll.UpdateMany(plan.Filter, plan.Update, upsert)
		}
		if err != nil {
			return nil, err
		}
		doc := bson.D{
			{Key: "matchedCount", Value: int64(res.MatchedCount)},
			{Key: "modifiedCount", Value: int64(res.ModifiedCount)},
		}
		if res.UpsertedID != nil {
			doc = append(doc, bson.E{Key: "upsertedId", Value: res.UpsertedID})
		}
		mutated := res.ModifiedCount > 0 || res.UpsertedID != nil
		return &Result{Document: doc, Mutated: mutated}, nil

	case types.MethodDeleteOne:
		n, err := coll.DeleteOne(plan.Filter)
		if err != nil {
			return nil, err
		}
		return &Result{
			Document: bson.D{{Key: "deletedCount", Value: int64(n)}},
			Mutated:  n > 0,
		}, nil

	case types.MethodDeleteMany:
		n, err := coll.DeleteMany(plan.Filter)
		if err != nil {
			return nil, err
		}
		return &Result{
			Document: bson.D{{Key: "deletedCount", Value: int64(n)}},
			Mutated:  n > 0,
		}, nil

	case types.MethodCountDocuments:
		n, err := coll.Count(plan.Filter)
		if err != nil {
			return nil, err
		}
		return &Result{Document: bson.D{{Key: "count", Value: int64(n)}}}, nil
	}

	return nil, fmt.Errorf("no executor for method %q", plan.Method)
}

// ExecuteWithResponse executes a plan and returns the rendered result as a
// string. This is the TUI path, which always renders pretty.
func (e *Executor) ExecuteWithResponse(plan *planner.ExecutionPlan) (string, error) {
	res, err := e.Execute(plan)
	if err != nil {
		return "", err
	}
	rendered, err := output.RenderResult(res.Payload(), true)
	if err != nil {
		return "", fmt.Errorf("failed to render result: %w", err)
	}
	return rendered, nil
}

// Payload adapts the result to the output package's shape.
func (res *Result) Payload() output.Payload {
	switch {
	case res.IsStream:
		return output.Payload{Documents: res.Documents, IsStream: true}
	case res.Null:
		return output.Payload{Null: true}
	default:
		return output.Payload{Document: res.Document}
	}
}
