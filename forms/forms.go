package forms

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// PostForm binds the post create/edit submission. Errors is populated
// by Validate and rendered next to the fields on failure.
type PostForm struct {
	Text    string `validate:"required"`
	GroupID *uint
	// Image is the media-relative path of a freshly uploaded file,
	// empty when the submission carried none.
	Image  string
	Errors map[string]string
}

// CommentForm binds the comment submission.
type CommentForm struct {
	Text   string `validate:"required"`
	Errors map[string]string
}

const maxUploadSize = 5 << 20

// BindPostForm reads text, group and the optional image out of the
// request. The image, when present and acceptable, is stored under
// mediaRoot and its relative path recorded on the form. Upload problems
// surface as field errors, not as request failures.
func BindPostForm(r *http.Request, mediaRoot string) *PostForm {
	form := &PostForm{Errors: map[string]string{}}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			form.Errors["image"] = "The upload is too large (5 MB maximum)."
		}
	} else {
		r.ParseForm()
	}

	form.Text = strings.TrimSpace(r.FormValue("text"))

	if raw := r.FormValue("group"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
			groupID := uint(id)
			form.GroupID = &groupID
		} else {
			form.Errors["group"] = "Select a valid group."
		}
	}

	if r.MultipartForm != nil {
		if file, header, err := r.FormFile("image"); err == nil {
			defer file.Close()
			path, err := SaveImage(file, header, mediaRoot)
			if err != nil {
				form.Errors["image"] = err.Error()
			} else {
				form.Image = path
			}
		}
	}

	return form
}

// Validate reports whether the submission may be persisted, filling
// Errors otherwise.
func (f *PostForm) Validate() bool {
	if err := validate.Struct(f); err != nil {
		for _, fieldErr := range err.(validator.ValidationErrors) {
			if fieldErr.Field() == "Text" {
				f.Errors["text"] = "Enter the post text."
			}
		}
	}
	return len(f.Errors) == 0
}

func BindCommentForm(r *http.Request) *CommentForm {
	r.ParseForm()
	return &CommentForm{
		Text:   strings.TrimSpace(r.FormValue("text")),
		Errors: map[string]string{},
	}
}

func (f *CommentForm) Validate() bool {
	if err := validate.Struct(f); err != nil {
		for _, fieldErr := range err.(validator.ValidationErrors) {
			if fieldErr.Field() == "Text" {
				f.Errors["text"] = "Enter the comment text."
			}
		}
	}
	return len(f.Errors) == 0
}
