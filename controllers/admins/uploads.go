package admins

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"opeec/middleware"
	"opeec/utils"
)

var allowedProofExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".pdf":  true,
}

// POST /admin/uploads/payment-proof
//
// Accepts a multipart "proof" file, stores it in object storage and returns
// the object key plus a presigned URL. The key is what gets recorded on the
// withdrawal when the admin marks it paid.
func UploadPaymentProof(w http.ResponseWriter, r *http.Request) {
	adminID, ok := middleware.GetAdminID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil { // 10MB
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid form data"})
		return
	}
	file, handler, err := r.FormFile("proof")
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Proof file is required"})
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(handler.Filename))
	if !allowedProofExts[ext] {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Proof must be JPG/PNG/WEBP/PDF"})
		return
	}
	if handler.Size > 10<<20 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Proof must be at most 10MB"})
		return
	}

	// Read first 512 bytes to detect MIME type (magic-bytes)
	buf := make([]byte, 512)
	n, err := file.Read(buf)
	if err != nil && err != io.EOF {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Failed to read proof file"})
		return
	}
	detected := http.DetectContentType(buf[:n])
	if !strings.HasPrefix(detected, "image/") && detected != "application/pdf" && detected != "application/octet-stream" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Proof must be an image or PDF"})
		return
	}

	if _, err := file.Seek(0, 0); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Failed to read proof file"})
		return
	}
	proofBytes, err := io.ReadAll(file)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Failed to read proof file"})
		return
	}

	objectName := fmt.Sprintf("payment-proofs/%d_%d%s", adminID, time.Now().UnixNano(), ext)
	presignedURL, err := utils.UploadToS3AndPresign(objectName, bytes.NewReader(proofBytes), int64(len(proofBytes)), 3600)
	if err != nil {
		utils.Log.Errorf("payment proof upload: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to upload proof. Please try again later."})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"object_key": objectName,
			"url":        presignedURL,
		},
	})
}
