// Package errs provides the error types shared by the order lifecycle and tracking engine.
//
// Every type follows the same shape:
//   - a sentinel (ErrObjectNotFound, ErrForbidden, ...) usable with errors.Is
//   - a struct carrying the offending parameter and an optional cause
//   - New...Error and New...ErrorWithCause constructors
//   - Error() for the message and Unwrap() returning the sentinel
//
// Domain packages define their own sentinels (order.ErrInvalidTransition,
// rating.ErrDuplicateRating, ...) and the transport adapters map all of them
// to status codes with errors.Is.
package errs
