// Package api
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Shared types, capability interfaces and error taxonomy for the
// hioload-kernel messaging layer. Every other package depends on api;
// api depends on nothing but the standard library.
package api
