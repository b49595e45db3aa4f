// Package target turns the thing an assertion is made against into a
// concrete element handle.
//
// A Request is built once per matcher call by FromArgs and resolved again on
// every retry attempt, so resolution only reads from the page.
package target
