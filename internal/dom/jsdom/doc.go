// Package jsdom binds dom.Document to the browser through syscall/js.
//
// The implementation is only compiled for GOOS=js GOARCH=wasm.
package jsdom
