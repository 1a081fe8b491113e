// Package diag holds checker diagnostics and renders the one the user sees
// after each check.
//
// The checker orders diagnostics by its own priority, so a Bag keeps that
// order and First always reports element zero.
package diag
