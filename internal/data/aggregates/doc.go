// Package aggregates owns the transaction boundaries for writes that span
// more than one repo, including the relational-plus-graph dual write.
//
// Implementations compose table-level repos from internal/data/repos and the
// graph store from internal/data/graph.
package aggregates
