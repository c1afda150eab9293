package httpapi

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"sort"
	"strings"
)

// upload is one file part of a multipart request, fully read.
type upload struct {
	Field       string
	Filename    string
	ContentType string
	Data        []byte
}

// uploadForm holds the file parts of a request in arrival order.
type uploadForm struct {
	Files []upload
}

// fileFields returns the distinct field names of file parts, in order.
func (f *uploadForm) fileFields() []string {
	out := []string{}
	seen := map[string]bool{}
	for _, u := range f.Files {
		if !seen[u.Field] {
			seen[u.Field] = true
			out = append(out, u.Field)
		}
	}
	return out
}

// file returns the first file part named field.
func (f *uploadForm) file(field string) (*upload, bool) {
	for i := range f.Files {
		if f.Files[i].Field == field {
			return &f.Files[i], true
		}
	}
	return nil, false
}

var errMalformedMultipart = errors.New("malformed multipart body")

// tooLargeError reports a body over the configured limit.
type tooLargeError struct{ limit int64 }

func (e tooLargeError) Error() string {
	return fmt.Sprintf("Upload exceeds the %d MiB limit", e.limit>>20)
}
func (e tooLargeError) StatusCode() int { return http.StatusRequestEntityTooLarge }

// readUploads streams the multipart body of r and collects its file parts.
// A part is a file when its Content-Disposition carries a filename
// parameter, even an empty one. A request that is not multipart yields an
// empty form and no error. r.Body should already be size-limited.
func readUploads(r *http.Request) (*uploadForm, error) {
	form := &uploadForm{}
	mr, err := r.MultipartReader()
	if err != nil {
		// not multipart, or no boundary: nothing was uploaded
		return form, nil
	}
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			return form, nil
		}
		if err != nil {
			return form, classifyReadErr(err)
		}
		filename, isFile := partFilename(p)
		if !isFile {
			_, err = io.Copy(io.Discard, p)
			_ = p.Close()
			if err != nil {
				return form, classifyReadErr(err)
			}
			continue
		}
		data, err := io.ReadAll(p)
		_ = p.Close()
		if err != nil {
			return form, classifyReadErr(err)
		}
		form.Files = append(form.Files, upload{
			Field:       p.FormName(),
			Filename:    filename,
			ContentType: p.Header.Get("Content-Type"),
			Data:        data,
		})
	}
}

func partFilename(p *multipart.Part) (string, bool) {
	_, params, err := mime.ParseMediaType(p.Header.Get("Content-Disposition"))
	if err != nil {
		return "", false
	}
	name, ok := params["filename"]
	return name, ok
}

func classifyReadErr(err error) error {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return tooLargeError{limit: mbe.Limit}
	}
	return fmt.Errorf("%w: %v", errMalformedMultipart, err)
}

// allowedExtensions are the upload types /predict accepts.
var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

func allowedExtensionList() string {
	exts := make([]string, 0, len(allowedExtensions))
	for e := range allowedExtensions {
		exts = append(exts, e)
	}
	sort.Strings(exts)
	return strings.Join(exts, ", ")
}

// hasAllowedExtension checks the last extension of the base name. Leading
// dots do not start an extension, so ".png" has none.
func hasAllowedExtension(filename string) bool {
	base := filename
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	base = strings.TrimLeft(base, ".")
	return allowedExtensions[strings.ToLower(filepath.Ext(base))]
}

// imageRequest is threaded through the /predict validation checks.
type imageRequest struct {
	form  *uploadForm
	image *upload
}

// imageChecks run in order; the first failure is the response.
var imageChecks = []func(*imageRequest) *apiError{
	func(req *imageRequest) *apiError {
		if len(req.form.Files) == 0 {
			return badRequest("no_files", "No files in request")
		}
		return nil
	},
	func(req *imageRequest) *apiError {
		img, ok := req.form.file("image")
		if !ok {
			return badRequest("no_image_field", `No image field in request. Please use "image" as the field name`)
		}
		req.image = img
		return nil
	},
	func(req *imageRequest) *apiError {
		if req.image.Filename == "" {
			return badRequest("no_filename", "No selected file")
		}
		return nil
	},
	func(req *imageRequest) *apiError {
		if !hasAllowedExtension(req.image.Filename) {
			return badRequest("bad_extension", "Invalid file type. Allowed types: "+allowedExtensionList())
		}
		return nil
	},
	func(req *imageRequest) *apiError {
		if len(req.image.Data) == 0 {
			return badRequest("empty_file", "Empty file uploaded")
		}
		return nil
	},
}

// selectImage validates form and returns the image part to classify.
func selectImage(form *uploadForm) (*upload, *apiError) {
	req := &imageRequest{form: form}
	for _, check := range imageChecks {
		if err := check(req); err != nil {
			return nil, err
		}
	}
	return req.image, nil
}
