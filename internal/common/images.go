package common

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/homequest/backend/pkg/errorx"
	"github.com/homequest/backend/pkg/storage"
	"github.com/homequest/backend/pkg/xcontext"

	"github.com/nfnt/resize"
)

// ProcessImage reads the image in the multipart form field key of the current
// request, shrinks it to fit the configured photo size and uploads it.
func ProcessImage(
	ctx context.Context, fileStorage storage.Storage, key, prefix string,
) (*storage.UploadResponse, error) {
	req := xcontext.HTTPRequest(ctx)
	if req == nil {
		return nil, errorx.New(errorx.BadRequest, "Request must be multipart form")
	}

	fileCfg := xcontext.Configs(ctx).File
	if err := req.ParseMultipartForm(fileCfg.MaxSize); err != nil {
		return nil, errorx.New(errorx.BadRequest, "Request must be multipart form")
	}

	file, header, err := req.FormFile(key)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Error retrieving the file")
	}
	defer file.Close()

	if header.Size > fileCfg.MaxSize {
		return nil, errorx.New(errorx.BadRequest, "File too large")
	}

	mime := header.Header.Get("Content-Type")
	img, err := decodeImg(mime, file)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid image: %v", err)
	}

	img = resize.Thumbnail(fileCfg.MaxPhotoWidth, fileCfg.MaxPhotoHeight, img, resize.Lanczos2)
	b, mime, err := encodeImg(mime, img)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot encode image: %v", err)
		return nil, errorx.Unknown
	}

	resp, err := fileStorage.Upload(ctx, &storage.UploadObject{
		Prefix:   prefix,
		FileName: header.Filename,
		Mime:     mime,
		Data:     b,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot upload image: %v", err)
		return nil, errorx.Unknown
	}

	return resp, nil
}

func decodeImg(mime string, data io.Reader) (img image.Image, err error) {
	switch mime {
	case "image/jpeg":
		img, err = jpeg.Decode(data)
	case "image/png", "application/octet-stream":
		img, err = png.Decode(data)
	case "image/gif":
		img, err = gif.Decode(data)
	default:
		return nil, fmt.Errorf("we just accept jpeg, gif or png")
	}

	return img, err
}

// encodeImg returns the encoded image and its mime type.
func encodeImg(mime string, img image.Image) ([]byte, string, error) {
	buf := new(bytes.Buffer)

	var err error
	switch mime {
	case "image/gif":
		err = gif.Encode(buf, img, nil)
	case "image/png", "application/octet-stream":
		mime = "image/png"
		err = png.Encode(buf, img)
	default:
		mime = "image/jpeg"
		err = jpeg.Encode(buf, img, nil)
	}
	if err != nil {
		return nil, "", err
	}

	return buf.Bytes(), mime, nil
}
