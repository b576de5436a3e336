// Package formutil provides helpers for form re-rendering with validation
// errors.
//
// When a form submission fails validation, the form is re-rendered with the
// user's previously entered values, an error message, and the context data
// the form needs (dropdowns, etc.). Base carries the common fields; embed it
// in the form's view model.
//
// Example usage:
//
//	type newBlogData struct {
//		formutil.Base
//		Title   string
//		Content string
//	}
//
//	data := newBlogData{
//		Base:  formutil.NewBase(r, "New Blog Post", "/dashboard/blogs"),
//		Title: title,
//	}
//	data.SetError("Title is required.")
//	templates.Render(w, r, "blog_new", data)
package formutil

import (
	"html/template"
	"net/http"

	"github.com/dalemusser/leadcentral/internal/app/system/viewdata"
)

// Base contains common fields for form pages.
// It embeds viewdata.BaseVM for user context and adds Error for validation.
type Base struct {
	viewdata.BaseVM
	Error template.HTML
}

// NewBase creates a fully populated Base for a form page.
func NewBase(r *http.Request, title, backDefault string) Base {
	return Base{
		BaseVM: viewdata.NewBaseVM(r, title, backDefault),
	}
}

// SetError sets the error message shown above the form.
func (b *Base) SetError(msg string) {
	b.Error = template.HTML(msg)
}
