package api

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"zippybox-server/internal/upload"
)

// payloadFromHeader adapts a multipart file part to an upload payload
func payloadFromHeader(fh *multipart.FileHeader) upload.Payload {
	return upload.Payload{
		Name:      fh.Filename,
		Size:      fh.Size,
		MediaType: fh.Header.Get("Content-Type"),
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// payloadsFromHeaders keeps the order in which the parts were sent
func payloadsFromHeaders(fhs []*multipart.FileHeader) []upload.Payload {
	out := make([]upload.Payload, 0, len(fhs))
	for _, fh := range fhs {
		out = append(out, payloadFromHeader(fh))
	}
	return out
}

// statusFor maps an error kind to its HTTP status
func statusFor(kind upload.Kind) int {
	switch kind {
	case upload.KindUnauthorized:
		return http.StatusUnauthorized
	case upload.KindInvalidInput, upload.KindSizeLimitExceeded, upload.KindForbiddenFileType:
		return http.StatusBadRequest
	case upload.KindParentNotFound:
		return http.StatusNotFound
	case upload.KindAlreadyExists:
		return http.StatusConflict
	case upload.KindUploadFailed:
		return http.StatusBadGateway
	case upload.KindPartialBatchFailure:
		return http.StatusMultiStatus
	default:
		return http.StatusInternalServerError
	}
}

// errorBody is the client-facing error object. It never carries the cause.
func errorBody(err error) gin.H {
	body := gin.H{
		"kind":    upload.KindOf(err),
		"message": upload.Message(err),
	}
	var be *upload.BatchError
	if errors.As(err, &be) {
		body["succeeded"] = be.Succeeded
		body["total"] = be.Total
		body["failedFileName"] = be.FailedFileName
	}
	return body
}
