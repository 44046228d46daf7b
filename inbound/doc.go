// Package inbound is the HTTP boundary for the trigger surface: credential
// extraction for both header schemes, the strict-mode user agent gate, and
// handler funcs producing the platform's wire shapes. Route registration is
// left to the host.
package inbound
