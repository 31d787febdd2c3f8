// Package fault provides the error taxonomy for streamkit.
//
// The pipeline core distinguishes programming errors from everything else.
// Precondition violations (reconfiguring a consumer's mode while it is
// subscribed, an invalid queue bound, a malformed filter argument) are
// unrecoverable: they are raised as assertion-style panics carrying a
// *Fault, via Check and Checkf. They are not meant to be caught and
// recovered from.
//
// Recoverable conditions (configuration loading, validation of user input)
// use ordinary error values built with New, carrying a machine-readable
// code plus details.
package fault
