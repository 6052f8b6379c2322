//go:build js && wasm

package wasm

import (
	"strings"

	"github.com/Its-donkey/sharebox/internal/ui/model"
)

func loadSharedText() {
	ctx, cancel := requestContext()
	defer cancel()
	content, err := api.GetText(ctx)
	if err != nil {
		consoleError("loading shared text failed:", err.Error())
		return
	}
	if area := byID("textContent"); area.Truthy() {
		area.Set("value", content)
	}
}

func shareText() {
	area := byID("textContent")
	if !area.Truthy() {
		return
	}
	content := strings.TrimSpace(area.Get("value").String())
	if content == "" {
		showToast("Text cannot be empty", model.ToastError)
		return
	}

	showLoading()
	defer hideLoading()

	ctx, cancel := requestContext()
	defer cancel()
	resp, err := api.ShareText(ctx, content)
	if err != nil {
		reportFailure("share text", err, "Sharing failed, please try again", "")
		return
	}
	showToast(resp.Message, model.ToastSuccess)
}
