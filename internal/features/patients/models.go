package patients

import (
	"time"

	"github.com/google/uuid"
)

// Patient is a doctor-owned patient record. Name is stored as ciphertext;
// the service layer encrypts on write and decrypts on read, so handlers and
// callers only ever see plaintext.
type Patient struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DoctorID  uuid.UUID `gorm:"type:uuid;not null;index" json:"doctor_id"`
	Name      string    `gorm:"type:text;not null" json:"name"`
	Age       int       `gorm:"not null" json:"age"`
	Gender    string    `gorm:"size:50" json:"gender,omitempty"`
	Notes     string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SessionNote is an encrypted clinical note attached to a patient. Note text
// is ciphertext at rest, like Patient.Name.
type SessionNote struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PatientID uuid.UUID `gorm:"type:uuid;not null;index" json:"patient_id"`
	DoctorID  uuid.UUID `gorm:"type:uuid;not null;index" json:"doctor_id"`
	Note      string    `gorm:"type:text;not null" json:"note"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// --- DTOs ---

type CreatePatientRequest struct {
	Name   string `json:"name"`
	Age    int    `json:"age"`
	Gender string `json:"gender"`
	Notes  string `json:"notes"`
}

type UpdatePatientRequest struct {
	Name   *string `json:"name"`
	Age    *int    `json:"age"`
	Gender *string `json:"gender"`
	Notes  *string `json:"notes"`
}

type PatientResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Age       int    `json:"age"`
	Gender    string `json:"gender,omitempty"`
	Notes     string `json:"notes,omitempty"`
	DoctorID  string `json:"doctor_id"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type PatientListResponse struct {
	Patients []PatientResponse `json:"patients"`
	Count    int               `json:"count"`
}

type CreateSessionNoteRequest struct {
	Note string `json:"note"`
}

type SessionNoteResponse struct {
	SessionID string `json:"session_id"`
	PatientID string `json:"patient_id"`
	DoctorID  string `json:"doctor_id"`
	Note      string `json:"note"`
	CreatedAt string `json:"created_at"`
}

// SessionNoteListItem is the trimmed listing entry: the note body stays out
// of list responses.
type SessionNoteListItem struct {
	SessionID string `json:"session_id"`
	CreatedAt string `json:"created_at"`
}

type SessionNoteListResponse struct {
	SessionNotes []SessionNoteListItem `json:"session_notes"`
	Count        int                   `json:"count"`
}

const timestampLayout = "2006-01-02 15:04:05"

func formatTimestamp(t time.Time) string {
	return t.Format(timestampLayout)
}
