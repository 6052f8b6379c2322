//go:build js && wasm

package wasm

import (
	"encoding/json"
	"syscall/js"

	"github.com/Its-donkey/sharebox/internal/ui/model"
)

// startFilesWatch subscribes to /ws and refreshes the list on every change.
// Without WebSocket support the page simply relies on the refresh button.
func startFilesWatch() {
	window := js.Global()
	ctor := window.Get("WebSocket")
	if !ctor.Truthy() {
		return
	}
	location := window.Get("location")
	scheme := "ws://"
	if location.Get("protocol").String() == "https:" {
		scheme = "wss://"
	}
	url := scheme + location.Get("host").String() + "/ws"

	socket := ctor.New(url)

	on(socket, "open", func(js.Value) {
		consoleLog("files watch connected", url)
	})
	on(socket, "message", func(event js.Value) {
		var evt model.WatchEvent
		if err := json.Unmarshal([]byte(event.Get("data").String()), &evt); err != nil {
			consoleError("files watch: bad message", err.Error())
			return
		}
		if evt.Type == model.WatchFilesChanged {
			go refreshFileList(true)
		}
	})
	on(socket, "close", func(js.Value) {
		consoleLog("files watch closed")
	})
}
