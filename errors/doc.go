/*
Package errors implements custom error interfaces for the custodian.

The package is built around coded root errors. Every failure a handler
can return wraps exactly one registered root error, so callers can test
failures with `Err.Is(err)` and the binding layer can map them to
stable numeric codes. Extensions register their own root errors (for
example x/escrow registers the escrow lifecycle failures) using the
Register function.
*/
package errors
