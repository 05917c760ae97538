package types

import (
	"fmt"
	"time"
)

type DocumentType string

const (
	DocTypePassport     DocumentType = "passport"
	DocTypeGovernmentID DocumentType = "government_id"
	DocTypePhoto        DocumentType = "photo"
	DocTypeMedicalCert  DocumentType = "medical_certificate"
	DocTypeYellowFever  DocumentType = "yellow_fever"
	DocTypeCDC          DocumentType = "cdc"
	DocTypeCOCCOP       DocumentType = "coc_cop"
	DocTypeSTCW         DocumentType = "stcw_certificates"
	DocTypeGMDSS        DocumentType = "gmdss_dce"
	DocTypeResume       DocumentType = "resume"
	DocTypeSEAAgreement DocumentType = "sea_agreement"
)

type DocumentCategory string

const (
	CategoryIdentity     DocumentCategory = "identity"
	CategoryMedical      DocumentCategory = "medical"
	CategoryProfessional DocumentCategory = "professional"
	CategoryOther        DocumentCategory = "other"
)

// DocumentTypeSpec is one catalog entry. The catalog is a process-wide
// constant table; specs are never persisted.
type DocumentTypeSpec struct {
	Type     DocumentType
	Name     string
	Required bool
}

// CrewDocument is one uploaded file instance tied to a crew member and a
// document type. Rows are append-only: uploads add, nothing updates or
// replaces. Deleting the crew member cascades to its documents.
type CrewDocument struct {
	ID               int64            `db:"id"`
	CrewID           int64            `db:"crew_id"`
	DocumentType     DocumentType     `db:"document_type"`
	DocumentCategory DocumentCategory `db:"document_category"`
	Filename         string           `db:"filename"`
	OriginalFilename string           `db:"original_filename"`
	FileSizeBytes    int64            `db:"file_size_bytes"`
	MimeType         string           `db:"mime_type"`
	UploadedAt       time.Time        `db:"uploaded_at"`
}

// FileSizeFormatted renders the byte size for display, e.g. "1.2 MB".
func (d *CrewDocument) FileSizeFormatted() string {
	if d.FileSizeBytes <= 0 {
		return "Unknown size"
	}

	size := float64(d.FileSizeBytes)
	for _, unit := range []string{"B", "KB", "MB", "GB"} {
		if size < 1024.0 {
			return fmt.Sprintf("%.1f %s", size, unit)
		}
		size /= 1024.0
	}
	return fmt.Sprintf("%.1f TB", size)
}
