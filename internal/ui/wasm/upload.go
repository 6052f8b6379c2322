//go:build js && wasm

package wasm

import (
	"errors"
	"fmt"
	"syscall/js"

	"github.com/Its-donkey/sharebox/internal/ui/model"
	"github.com/Its-donkey/sharebox/internal/ui/state"
)

func initUploadArea() {
	area := byID("uploadArea")
	input := byID("fileInput")

	on(area, "click", func(js.Value) {
		if input.Truthy() {
			input.Call("click")
		}
	})
	on(input, "change", func(event js.Value) {
		stageFile(firstFile(event.Get("target").Get("files")))
	})
	on(area, "dragover", func(event js.Value) {
		event.Call("preventDefault")
		area.Get("classList").Call("add", "dragover")
	})
	on(area, "dragleave", func(js.Value) {
		area.Get("classList").Call("remove", "dragover")
	})
	on(area, "drop", func(event js.Value) {
		event.Call("preventDefault")
		area.Get("classList").Call("remove", "dragover")
		if transfer := event.Get("dataTransfer"); transfer.Truthy() {
			if file := firstFile(transfer.Get("files")); file.Truthy() {
				stageFile(file)
			}
		}
	})
	on(byID("removeFile"), "click", func(js.Value) {
		clearFile()
	})
}

func firstFile(list js.Value) js.Value {
	if !list.Truthy() || list.Get("length").Int() == 0 {
		return js.Null()
	}
	return list.Index(0)
}

// stageFile makes file the single staged upload, or clears the selection
// when file is absent or too large.
func stageFile(file js.Value) {
	if !file.Truthy() {
		clearFile()
		return
	}
	staged := &state.StagedFile{
		Name:   file.Get("name").String(),
		Size:   int64(file.Get("size").Float()),
		Handle: file,
	}
	if err := state.Upload.Stage(staged); err != nil {
		if errors.Is(err, state.ErrTooLarge) {
			showToast(fmt.Sprintf("File exceeds the %s limit", state.LimitLabel(state.Upload.Limit())), model.ToastError)
		}
		clearFile()
		return
	}

	if name := byID("fileName"); name.Truthy() {
		name.Set("textContent", staged.Name)
	}
	if selected := byID("selectedFile"); selected.Truthy() {
		selected.Get("style").Set("display", "flex")
	}
	if btn := byID("uploadBtn"); btn.Truthy() {
		btn.Set("disabled", false)
	}
}

func clearFile() {
	state.Upload.Clear()
	if input := byID("fileInput"); input.Truthy() {
		input.Set("value", "")
	}
	if selected := byID("selectedFile"); selected.Truthy() {
		selected.Get("style").Set("display", "none")
	}
	if btn := byID("uploadBtn"); btn.Truthy() {
		btn.Set("disabled", true)
	}
}

func uploadFile() {
	staged := state.Upload.Current()
	if staged == nil {
		showToast("Please choose a file first", model.ToastError)
		return
	}
	file, ok := staged.Handle.(js.Value)
	if !ok || !file.Truthy() {
		showToast("Please choose a file first", model.ToastError)
		return
	}

	showLoading()
	defer hideLoading()

	data, err := readFile(file)
	if err != nil {
		consoleError("reading file failed:", err.Error())
		showToast("Upload failed, please try again", model.ToastError)
		return
	}

	ctx, cancel := requestContext()
	defer cancel()
	resp, err := api.UploadBytes(ctx, staged.Name, data)
	if err != nil {
		reportFailure("upload", err, "Upload failed, please try again", "")
		return
	}
	showToast(resp.Message, model.ToastSuccess)
	clearFile()
	refreshFileList(true)
}

// readFile copies a browser File into Go memory.
func readFile(file js.Value) ([]byte, error) {
	buffer, err := await(file.Call("arrayBuffer"))
	if err != nil {
		return nil, err
	}
	view := js.Global().Get("Uint8Array").New(buffer)
	data := make([]byte, view.Get("length").Int())
	js.CopyBytesToGo(data, view)
	return data, nil
}

// await blocks the calling goroutine until promise settles. It must not be
// called from a js.FuncOf callback directly.
func await(promise js.Value) (js.Value, error) {
	resolved := make(chan js.Value, 1)
	rejected := make(chan error, 1)

	onResolve := js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) > 0 {
			resolved <- args[0]
		} else {
			resolved <- js.Undefined()
		}
		return nil
	})
	onReject := js.FuncOf(func(this js.Value, args []js.Value) any {
		msg := "promise rejected"
		if len(args) > 0 && args[0].Truthy() {
			msg = args[0].Call("toString").String()
		}
		rejected <- errors.New(msg)
		return nil
	})
	defer onResolve.Release()
	defer onReject.Release()

	promise.Call("then", onResolve, onReject)
	select {
	case v := <-resolved:
		return v, nil
	case err := <-rejected:
		return js.Value{}, err
	}
}
