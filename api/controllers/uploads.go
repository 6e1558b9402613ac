package controllers

import (
	"net/http"

	"github.com/andrelucena/celebra-backend/api/responses"
	"github.com/andrelucena/celebra-backend/api/validators"
	pkgerrors "github.com/andrelucena/celebra-backend/pkg/errors"
	"github.com/andrelucena/celebra-backend/pkg/logger"
	"github.com/andrelucena/celebra-backend/pkg/storage"
)

type presignRequest struct {
	ContentType string `json:"content_type" validate:"required"`
	FileName    string `json:"file_name" validate:"required,min=1,max=255"`
}

// UploadPresign hands the caller a short-lived URL to PUT an image blob,
// plus the ref to store on the event or gift afterwards.
func UploadPresign(blobs *storage.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if blobs == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "blob storage unavailable"))
			return
		}

		var body presignRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		target, err := blobs.PresignUpload(r.Context(), body.ContentType, body.FileName)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, target)
	}
}
