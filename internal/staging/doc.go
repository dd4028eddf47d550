// Package staging manages the scratch directory that holds concatenated
// title sources while their tracks are extracted.
package staging
