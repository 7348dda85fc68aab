// Package apitest builds requests for handler tests.
package apitest

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
)

// NewFormRequest builds a multipart request carrying fields and, when
// filename is not empty, one file in the "image" field.
func NewFormRequest(method, target string, fields map[string]string, filename string, content []byte) *http.Request {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	if filename != "" {
		fw, _ := mw.CreateFormFile("image", filename)
		fw.Write(content)
	}
	mw.Close()

	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}
