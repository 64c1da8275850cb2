// Package twin defines the data model for Eclipse Ditto digital twins.
//
// A twin (a "Thing" in Ditto terminology) is the remote representation of a
// physical asset, identified by a namespaced string of the form
// "namespace:name". A Thing owns a set of uniquely named Features, each of
// which is a mapping of property name to primitive value.
//
// This package also provides identifier normalisation: raw identifiers
// coming from CSV files or operator input are coerced into Ditto's entity
// ID format before being used in API paths.
package twin
