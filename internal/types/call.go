// Package types provides shared types and enums used across the mingo package.
package types

// Method represents a collection method in a mingo operation.
type Method string

const (
	MethodInsertOne      Method = "insertOne"
	MethodInsertMany     Method = "insertMany"
	MethodFind           Method = "find"
	MethodFindOne        Method = "findOne"
	MethodUpdateOne      Method = "updateOne"
	MethodUpdateMany     Method = "updateMany"
	MethodDeleteOne      Method = "deleteOne"
	MethodDeleteMany     Method = "deleteMany"
	MethodCountDocuments Method = "countDocuments"
	MethodDrop           Method = "drop"
)

// Call represents a parsed, validated operation string.
//
// Args holds the decoded argument values in source order: documents are
// bson.D (key order preserved), arrays are bson.A, numbers are int64 or
// float64, and strings, booleans, and null map to their Go counterparts.
type Call struct {
	Collection string
	Method     Method
	Args       []interface{}
}
