package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/anonto42/civic-connect/backend/internal/services"
	"github.com/gabriel-vasile/mimetype"
	"github.com/labstack/echo/v4"
)

const (
	maxImageSize   = 5 << 20
	maxIssueImages = 5
)

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// readImages loads the files under field from a multipart form. Requests that
// are not multipart simply have no images.
func readImages(c echo.Context, field string, max int) ([]services.Image, error) {
	form, err := c.MultipartForm()
	if err != nil {
		if err == http.ErrNotMultipart {
			return nil, nil
		}
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid multipart form")
	}

	files := form.File[field]
	if len(files) > max {
		return nil, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("At most %d images are allowed", max))
	}

	images := make([]services.Image, 0, len(files))
	for _, fh := range files {
		img, err := readImage(fh)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, nil
}

func readImage(fh *multipart.FileHeader) (services.Image, error) {
	if fh.Size > maxImageSize {
		return services.Image{}, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("%s is larger than 5 MB", fh.Filename))
	}
	f, err := fh.Open()
	if err != nil {
		return services.Image{}, echo.NewHTTPError(http.StatusBadRequest, "Could not read uploaded file")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxImageSize+1))
	if err != nil {
		return services.Image{}, echo.NewHTTPError(http.StatusBadRequest, "Could not read uploaded file")
	}
	if len(data) > maxImageSize {
		return services.Image{}, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("%s is larger than 5 MB", fh.Filename))
	}

	mtype := mimetype.Detect(data)
	if !mimetype.EqualsAny(mtype.String(), allowedImageTypes...) {
		return services.Image{}, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("%s is not a supported image (%s)", fh.Filename, mtype.String()))
	}
	return services.Image{Filename: fh.Filename, ContentType: mtype.String(), Data: data}, nil
}
