//go:build js && wasm

package wasm

import (
	"syscall/js"

	"github.com/Its-donkey/sharebox/internal/ui/model"
)

const toastDuration = 3000

var (
	toastTimer js.Value
	hideToast  js.Func
)

// showToast displays message for three seconds. kind is one of the
// model.Toast* constants; anything else renders as info.
func showToast(message, kind string) {
	toast := byID("toast")
	if !toast.Truthy() {
		return
	}
	switch kind {
	case model.ToastSuccess, model.ToastError, model.ToastInfo:
	default:
		kind = model.ToastInfo
	}

	toast.Set("textContent", message)
	toast.Set("className", "toast "+kind)
	toast.Get("classList").Call("add", "show")

	window := js.Global()
	if hideToast.Type() == js.TypeUndefined {
		hideToast = js.FuncOf(func(this js.Value, args []js.Value) any {
			if el := byID("toast"); el.Truthy() {
				el.Get("classList").Call("remove", "show")
			}
			toastTimer = js.Value{}
			return nil
		})
	}
	if toastTimer.Truthy() {
		window.Call("clearTimeout", toastTimer)
	}
	toastTimer = window.Call("setTimeout", hideToast, toastDuration)
}

func showLoading() {
	if overlay := byID("loadingOverlay"); overlay.Truthy() {
		overlay.Get("style").Set("display", "flex")
	}
}

func hideLoading() {
	if overlay := byID("loadingOverlay"); overlay.Truthy() {
		overlay.Get("style").Set("display", "none")
	}
}
