// Package source defines the contract every catalog implements.
//
// A Source is asked once per cycle for the listings it currently shows.
// It may fail; the failure is isolated to that source for that cycle and
// the next scheduled cycle is the retry.
package source
