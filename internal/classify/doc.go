// Package classify maps grid I/O adapter results onto the three
// dispositions spec.md §4.2 defines: success-equivalent, irrecoverable,
// and retryable. A static code table plus a data-driven message-substring
// override (spec.md §9's find_msg_code) decide the disposition.
package classify
