package client

import (
	"bytes"
	"fmt"
	"mime/multipart"
)

// Multipart is a pre-encoded form body. Do sends it untouched with its own
// content type instead of JSON-encoding it.
type Multipart struct {
	ContentType string
	Body        []byte
}

// NewMultipart builds a Multipart body by letting fill write parts.
func NewMultipart(fill func(w *multipart.Writer) error) (Multipart, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := fill(w); err != nil {
		return Multipart{}, fmt.Errorf("build multipart body: %w", err)
	}
	if err := w.Close(); err != nil {
		return Multipart{}, fmt.Errorf("build multipart body: %w", err)
	}
	return Multipart{ContentType: w.FormDataContentType(), Body: buf.Bytes()}, nil
}

// FileField returns a fill func writing a single file part.
func FileField(field, filename string, data []byte) func(w *multipart.Writer) error {
	return func(w *multipart.Writer) error {
		part, err := w.CreateFormFile(field, filename)
		if err != nil {
			return err
		}
		_, err = part.Write(data)
		return err
	}
}
