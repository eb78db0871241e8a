package validators

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrNoFile               = errors.New("no file provided")
	ErrImageTypeUnsupported = errors.New("unsupported file type, only PNG, JPG and JPEG are allowed")
)

var allowedImageTypes = []string{"image/png", "image/jpeg"}

// ImageValidator checks the declared content type first, which is cheap
// but easy to spoof, and then sniffs the actual bytes. Returns the opened
// file rewound to the start together with the detected MIME type
func ImageValidator(fh *multipart.FileHeader) (int, multipart.File, string, error) {
	if fh == nil {
		return http.StatusBadRequest, nil, "", ErrNoFile
	}

	ct := fh.Header.Get("Content-Type")
	if ct != "" && !strings.HasPrefix(ct, "image/") {
		return http.StatusBadRequest, nil, "", ErrImageTypeUnsupported
	}

	f, err := fh.Open()
	if err != nil {
		return http.StatusInternalServerError, nil, "", err
	}

	mime, err := mimetype.DetectReader(f)
	if err != nil {
		f.Close()
		return http.StatusInternalServerError, nil, "", err
	}

	var ok bool
	for _, t := range allowedImageTypes {
		if mime.Is(t) {
			ok = true
			break
		}
	}

	if !ok {
		f.Close()
		return http.StatusBadRequest, nil, "", ErrImageTypeUnsupported
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return http.StatusInternalServerError, nil, "", err
	}

	return 0, f, mime.String(), nil
}
