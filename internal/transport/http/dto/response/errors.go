package response

var (
	ErrInvalidRequestFormat = ErrorResponse{
		Status:  "error",
		Error:   "invalid_request",
		Details: "Invalid request format",
	}

	ErrInvalidID = ErrorResponse{
		Status:  "error",
		Error:   "invalid_id",
		Details: "Gallery id must be a UUID",
	}

	ErrGalleryNotFound = ErrorResponse{
		Status:  "error",
		Error:   "gallery_not_found",
		Details: "Gallery not found",
	}

	ErrFileRequired = ErrorResponse{
		Status:  "error",
		Error:   "file_required",
		Details: "File is required",
	}

	ErrFileTooLarge = ErrorResponse{
		Status:  "error",
		Error:   "file_too_large",
		Details: "File size exceeds limit",
	}

	ErrInvalidFileType = ErrorResponse{
		Status:  "error",
		Error:   "invalid_file_type",
		Details: "Only images are accepted",
	}

	ErrStorageUnavailable = ErrorResponse{
		Status:  "error",
		Error:   "storage_unavailable",
		Details: "File storage lookup failed",
	}

	ErrInternal = ErrorResponse{
		Status:  "error",
		Error:   "internal_error",
		Details: "Internal server error",
	}
)
