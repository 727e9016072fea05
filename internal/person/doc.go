// Package person defines the records returned by the random-user API.
//
// Values in this package are treated as immutable once decoded: a Page is owned by
// the query result that produced it and is never modified by consumers.
package person
