//go:build js && wasm

package wasm

import (
	"syscall/js"

	"github.com/Its-donkey/sharebox/internal/ui/client"
	"github.com/Its-donkey/sharebox/internal/ui/model"
	"github.com/Its-donkey/sharebox/internal/ui/render"
)

// exposeDeleteFile installs window.deleteFile for the inline handlers in
// the rendered file list.
func exposeDeleteFile() {
	fn := js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) == 0 {
			return nil
		}
		name := args[0].String()
		if !js.Global().Call("confirm", `Delete file "`+name+`"?`).Bool() {
			return nil
		}
		go deleteFile(name)
		return nil
	})
	handlers = append(handlers, fn)
	js.Global().Set("deleteFile", fn)
}

func deleteFile(name string) {
	showLoading()
	defer hideLoading()

	ctx, cancel := requestContext()
	defer cancel()
	resp, err := api.Delete(ctx, name)
	if err != nil {
		reportFailure("delete", err, "Delete failed, please try again", "")
		return
	}
	showToast(resp.Message, model.ToastSuccess)
	refreshFileList(true)
}

// refreshFileList re-renders #fileList. Nested refreshes run inside an
// action that already owns the overlay and reports its own outcome.
func refreshFileList(nested bool) {
	if !nested {
		showLoading()
		defer hideLoading()
	}

	ctx, cancel := requestContext()
	defer cancel()
	files, err := api.List(ctx)
	if err != nil {
		reportFailure("refresh", err, "Refresh failed, please try again", "Could not load the file list")
		return
	}
	if list := byID("fileList"); list.Truthy() {
		list.Set("innerHTML", render.FileList(files))
	}
}

// reportFailure is the single failure path for actions.
func reportFailure(action string, err error, transportMsg, flagMsg string) {
	consoleError(action+" failed:", err.Error())
	msg, relogin := client.FailureMessage(err, transportMsg, flagMsg)
	showToast(msg, model.ToastError)
	if relogin {
		js.Global().Get("location").Set("href", "/login")
	}
}
