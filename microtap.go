// Package microtap runs plans of test points and reports their outcomes
// as Test Anything Protocol version 14.
package microtap

// Version is the released version of microtap.
const Version = "0.1.0"
