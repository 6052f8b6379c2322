//go:build js && wasm

package main

import "github.com/Its-donkey/sharebox/internal/ui/wasm"

func main() {
	wasm.RunApp()
}
