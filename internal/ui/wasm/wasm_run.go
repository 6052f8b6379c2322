//go:build js && wasm

package wasm

import (
	"context"
	"strconv"
	"strings"
	"syscall/js"
	"time"

	"github.com/Its-donkey/sharebox/internal/ui/client"
	"github.com/Its-donkey/sharebox/internal/ui/state"
)

const requestTimeout = 10 * time.Minute

var (
	// Document references the global browser document for DOM interactions.
	Document js.Value
	api      *client.Client
	// handlers keeps bound callbacks alive for the lifetime of the page.
	handlers []js.Func
)

// RunApp wires the page controller to whichever page is loaded and blocks forever.
func RunApp() {
	done := make(chan struct{})
	Document = js.Global().Get("document")

	c, err := client.New("")
	if err != nil {
		consoleError("client setup failed", err.Error())
		return
	}
	api = c

	if Document.Call("querySelector", ".login-form").Truthy() {
		initLoginPage()
	}
	if form := byID("uploadForm"); form.Truthy() {
		initMainPage(form)
	}
	<-done
}

func initMainPage(form js.Value) {
	if raw := form.Get("dataset").Get("maxBytes"); raw.Type() == js.TypeString {
		if limit, err := strconv.ParseInt(strings.TrimSpace(raw.String()), 10, 64); err == nil && limit > 0 {
			state.Upload.SetLimit(limit)
		}
	}

	initUploadArea()
	on(form, "submit", func(event js.Value) {
		event.Call("preventDefault")
		go uploadFile()
	})
	on(byID("refreshBtn"), "click", func(js.Value) {
		go refreshFileList(false)
	})
	if textForm := byID("textShareForm"); textForm.Truthy() {
		on(textForm, "submit", func(event js.Value) {
			event.Call("preventDefault")
			go shareText()
		})
	}
	exposeDeleteFile()

	go loadSharedText()
	startFilesWatch()
}

func initLoginPage() {
	password := byID("password")
	on(password, "keypress", func(event js.Value) {
		if event.Get("key").String() != "Enter" {
			return
		}
		event.Call("preventDefault")
		if form := Document.Call("querySelector", ".login-form"); form.Truthy() {
			form.Call("submit")
		}
	})
}

func byID(id string) js.Value {
	return Document.Call("getElementById", id)
}

// on binds fn to the element event and keeps the callback alive.
func on(el js.Value, event string, fn func(event js.Value)) {
	if !el.Truthy() {
		return
	}
	cb := js.FuncOf(func(this js.Value, args []js.Value) any {
		var evt js.Value
		if len(args) > 0 {
			evt = args[0]
		}
		fn(evt)
		return nil
	})
	handlers = append(handlers, cb)
	el.Call("addEventListener", event, cb)
}

func requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

func consoleError(args ...any) {
	console := js.Global().Get("console")
	if console.Truthy() {
		console.Call("error", args...)
	}
}

func consoleLog(args ...any) {
	console := js.Global().Get("console")
	if console.Truthy() {
		console.Call("log", args...)
	}
}
