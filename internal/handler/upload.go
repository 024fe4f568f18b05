package handler

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"go-vidtube/internal/storage"
	"go-vidtube/pkg/apierror"
)

const maxFormValue = 64 << 10

// stagedForm is a parsed multipart body. Files maps a form field to the
// staged local copy of the first file sent under that name.
type stagedForm struct {
	Values map[string]string
	Files  map[string]string
}

func (f *stagedForm) has(field string) bool {
	_, ok := f.Values[field]
	return ok
}

type formParser struct {
	staging  *storage.Staging
	maxBytes int64
}

// parse streams the body, staging parts whose field name is in fileFields.
// Other file parts are drained and ignored.
func (p *formParser) parse(w http.ResponseWriter, r *http.Request, fileFields ...string) (*stagedForm, error) {
	if !isMultipart(r) {
		return nil, apierror.BadRequest("Request must be multipart/form-data")
	}

	r.Body = http.MaxBytesReader(w, r.Body, p.maxBytes)

	reader, err := r.MultipartReader()
	if err != nil {
		return nil, apierror.BadRequest("Invalid multipart body", err.Error())
	}

	wanted := make(map[string]bool, len(fileFields))
	for _, field := range fileFields {
		wanted[field] = true
	}

	form := &stagedForm{Values: map[string]string{}, Files: map[string]string{}}

	for {
		part, nextErr := reader.NextPart()
		if nextErr == io.EOF {
			break
		}
		if nextErr != nil {
			p.cleanup(form)
			return nil, multipartError(nextErr)
		}

		name := part.FormName()

		if part.FileName() == "" {
			value, readErr := io.ReadAll(io.LimitReader(part, maxFormValue+1))
			_ = part.Close()
			if readErr != nil {
				p.cleanup(form)
				return nil, multipartError(readErr)
			}
			if len(value) > maxFormValue {
				p.cleanup(form)
				return nil, apierror.BadRequest(name+" is too long", name)
			}
			form.Values[name] = string(value)
			continue
		}

		if _, seen := form.Files[name]; seen || !wanted[name] {
			_ = part.Close()
			continue
		}

		path, saveErr := p.staging.Save(part.FileName(), part)
		_ = part.Close()
		if saveErr != nil {
			p.cleanup(form)
			return nil, stagingError(saveErr)
		}
		form.Files[name] = path
	}

	return form, nil
}

// cleanup removes every staged file of the form. Safe on a nil form.
func (p *formParser) cleanup(form *stagedForm) {
	if form == nil {
		return
	}
	for _, path := range form.Files {
		p.staging.Remove(path)
	}
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && strings.EqualFold(mediaType, "multipart/form-data")
}

func multipartError(err error) error {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return err
	}
	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return apierror.BadRequest("Invalid multipart body", err.Error())
}

// stagingError separates a broken client stream from a local disk failure.
func stagingError(err error) error {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) || errors.Is(err, io.ErrUnexpectedEOF) ||
		strings.HasPrefix(err.Error(), "multipart:") {
		return multipartError(err)
	}
	return apierror.Internal("Could not stage upload", err)
}
