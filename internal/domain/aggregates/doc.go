// Package aggregates holds the error codes shared by multi-store writes.
package aggregates
