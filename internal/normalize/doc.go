// Package normalize holds the pure field transforms applied before records
// are written: calendar dates, subject display names and categories, bill
// status inference and text cleanup. Nothing here returns an error; inputs
// that cannot be normalized are passed through.
package normalize
