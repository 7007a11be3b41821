package constants

import "time"

// Context keys
const (
	ContextKeyEmployeeID = "employee_id"
	ContextKeyEmployee   = "employee"
)

// Pagination
const (
	MinPage         = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Auth
const MinPasswordLength = 8

// Attachment upload limits
const (
	MaxAttachmentSize     = 50 << 20 // 50MB per file
	MaxAttachmentsPerTask = 20
)

// LocalUploadPrefix is the URL prefix under which locally stored
// attachments are served.
const LocalUploadPrefix = "/uploads/"

// Trash expiry
const (
	DefaultTrashRetentionDays = 30
	AttachmentDeleteTimeout   = 10 * time.Second
)
