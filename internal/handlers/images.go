// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"io"
	"net/http"
	"path"

	"github.com/google/uuid"

	"ecomcat/internal/imaging"
	"ecomcat/internal/models"
	"ecomcat/internal/storage"
)

// 10 MiB per file, 5 files per request.
const maxUploadBytes = 10 << 20

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Images handles multipart image uploads. Each upload is converted to
// WebP variants (a listing thumbnail and a full-size image) and stored
// in object storage; the full-size key is what product and combo pack
// payloads reference.
type Images struct {
	storage *storage.Client
}

// NewImages creates the image handler group. storage may be nil, in
// which case uploads are rejected.
func NewImages(s *storage.Client) *Images {
	return &Images{storage: s}
}

type uploadedImage struct {
	Key      string `json:"key"`
	URL      string `json:"url"`
	ThumbKey string `json:"thumb_key"`
	ThumbURL string `json:"thumb_url"`
}

// Upload stores the "images" multipart files under the given ?prefix
// (products by default, combo_packs for packs) and returns their keys
// in upload order.
func (h *Images) Upload(w http.ResponseWriter, r *http.Request) {
	if h.storage == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "object storage is not configured"})
		return
	}

	prefix := r.URL.Query().Get("prefix")
	switch prefix {
	case "", "products":
		prefix = "products"
	case "combo_packs":
	default:
		badRequest(w, "invalid prefix parameter")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		badRequest(w, "invalid multipart body")
		return
	}
	files := r.MultipartForm.File["images"]
	if len(files) == 0 {
		badRequest(w, "no images in request")
		return
	}
	if len(files) > models.MaxImages {
		badRequest(w, "too many images in one request")
		return
	}

	var result []uploadedImage
	for _, fh := range files {
		if !allowedImageTypes[fh.Header.Get("Content-Type")] {
			badRequest(w, "unsupported image type "+fh.Header.Get("Content-Type"))
			return
		}
		if fh.Size > maxUploadBytes {
			badRequest(w, "image exceeds the size limit")
			return
		}

		f, err := fh.Open()
		if err != nil {
			writeError(w, err)
			return
		}
		original, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			writeError(w, err)
			return
		}

		variants, err := imaging.GenerateVariants(original, imaging.ProductVariants)
		if err != nil {
			badRequest(w, "file could not be decoded as an image")
			return
		}

		item, err := h.uploadVariants(r, prefix, variants)
		if err != nil {
			writeError(w, err)
			return
		}
		result = append(result, item)
	}

	writeJSON(w, http.StatusCreated, result)
}

// uploadVariants stores every generated variant under one shared base
// name and returns the key pair for the response. When the source was
// too small for a separate full-size variant, the thumbnail doubles as
// the full image.
func (h *Images) uploadVariants(r *http.Request, prefix string, variants []imaging.ProcessedImage) (uploadedImage, error) {
	base := uuid.NewString()
	var item uploadedImage
	for _, v := range variants {
		key := path.Join(prefix, base+"_"+v.Name+".webp")
		err := h.storage.Upload(r.Context(), key, storage.Image{
			ContentType: v.ContentType,
			Body:        bytes.NewReader(v.Data),
			Size:        int64(len(v.Data)),
		})
		if err != nil {
			return item, err
		}
		switch v.Name {
		case "thumb":
			item.ThumbKey = key
			item.ThumbURL = h.storage.FileURL(key)
		default:
			item.Key = key
			item.URL = h.storage.FileURL(key)
		}
	}
	if item.Key == "" {
		item.Key, item.URL = item.ThumbKey, item.ThumbURL
	}
	return item, nil
}
