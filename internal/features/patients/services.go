package patients

import (
	"errors"
	"fmt"

	"github.com/clinicore/clinical-notes-backend/internal/crypto"
	"github.com/clinicore/clinical-notes-backend/internal/principal"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrPatientNotFound = errors.New("patient not found")
	ErrNoteNotFound    = errors.New("session note not found")
	ErrNotOwner        = errors.New("unauthorized access to record")
)

// PatientService is the read/write boundary for patient records and session
// notes. Field encryption happens here and nowhere else: rows carry
// ciphertext, values crossing the service boundary are plaintext.
type PatientService struct {
	db     *gorm.DB
	cipher *crypto.FieldCipher
}

func NewPatientService(db *gorm.DB, cipher *crypto.FieldCipher) *PatientService {
	return &PatientService{db: db, cipher: cipher}
}

func (s *PatientService) CreatePatient(doctorID uuid.UUID, req CreatePatientRequest) (*Patient, error) {
	encName, err := s.cipher.Encrypt(req.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt patient name: %w", err)
	}

	patient := Patient{
		ID:       uuid.New(),
		DoctorID: doctorID,
		Name:     encName,
		Age:      req.Age,
		Gender:   req.Gender,
		Notes:    req.Notes,
	}
	if err := s.db.Create(&patient).Error; err != nil {
		return nil, err
	}

	patient.Name = req.Name
	return &patient, nil
}

func (s *PatientService) ListPatients(doctorID uuid.UUID) ([]Patient, error) {
	var rows []Patient
	if err := s.db.Scopes(principal.OwnedBy(doctorID)).Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].Name = s.cipher.Decrypt(rows[i].Name)
	}
	return rows, nil
}

// GetPatient returns a single record. Existence is checked before ownership,
// so a foreign record answers 403 rather than 404.
func (s *PatientService) GetPatient(doctorID, patientID uuid.UUID) (*Patient, error) {
	var patient Patient
	if err := s.db.First(&patient, "id = ?", patientID).Error; err != nil {
		return nil, ErrPatientNotFound
	}
	if patient.DoctorID != doctorID {
		return nil, ErrNotOwner
	}
	patient.Name = s.cipher.Decrypt(patient.Name)
	return &patient, nil
}

func (s *PatientService) UpdatePatient(doctorID, patientID uuid.UUID, req UpdatePatientRequest) error {
	var patient Patient
	if err := s.db.First(&patient, "id = ?", patientID).Error; err != nil {
		return ErrPatientNotFound
	}
	if patient.DoctorID != doctorID {
		return ErrNotOwner
	}

	updates := map[string]interface{}{}
	if req.Name != nil && *req.Name != "" {
		encName, err := s.cipher.Encrypt(*req.Name)
		if err != nil {
			return fmt.Errorf("failed to encrypt patient name: %w", err)
		}
		updates["name"] = encName
	}
	if req.Age != nil && *req.Age != 0 {
		updates["age"] = *req.Age
	}
	if req.Gender != nil && *req.Gender != "" {
		updates["gender"] = *req.Gender
	}
	if req.Notes != nil && *req.Notes != "" {
		updates["notes"] = *req.Notes
	}
	if len(updates) == 0 {
		return nil
	}

	return s.db.Model(&patient).Updates(updates).Error
}

func (s *PatientService) DeletePatient(doctorID, patientID uuid.UUID) error {
	var patient Patient
	if err := s.db.First(&patient, "id = ?", patientID).Error; err != nil {
		return ErrPatientNotFound
	}
	if patient.DoctorID != doctorID {
		return ErrNotOwner
	}
	return s.db.Delete(&patient).Error
}

func (s *PatientService) SaveSessionNote(doctorID, patientID uuid.UUID, note string) (*SessionNote, error) {
	var patient Patient
	if err := s.db.First(&patient, "id = ?", patientID).Error; err != nil {
		return nil, ErrPatientNotFound
	}
	if patient.DoctorID != doctorID {
		return nil, ErrNotOwner
	}

	encNote, err := s.cipher.Encrypt(note)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt session note: %w", err)
	}

	record := SessionNote{
		ID:        uuid.New(),
		PatientID: patientID,
		DoctorID:  doctorID,
		Note:      encNote,
	}
	if err := s.db.Create(&record).Error; err != nil {
		return nil, err
	}

	record.Note = note
	return &record, nil
}

// ListSessionNotes returns listing metadata only, newest first; note bodies
// are fetched one by one through GetSessionNote.
func (s *PatientService) ListSessionNotes(doctorID, patientID uuid.UUID) ([]SessionNote, error) {
	var patient Patient
	if err := s.db.First(&patient, "id = ?", patientID).Error; err != nil {
		return nil, ErrPatientNotFound
	}
	if patient.DoctorID != doctorID {
		return nil, ErrNotOwner
	}

	var notes []SessionNote
	err := s.db.Where("patient_id = ?", patientID).
		Order("created_at DESC").
		Find(&notes).Error
	return notes, err
}

func (s *PatientService) GetSessionNote(doctorID, noteID uuid.UUID) (*SessionNote, error) {
	var note SessionNote
	if err := s.db.First(&note, "id = ?", noteID).Error; err != nil {
		return nil, ErrNoteNotFound
	}
	if note.DoctorID != doctorID {
		return nil, ErrNotOwner
	}
	note.Note = s.cipher.Decrypt(note.Note)
	return &note, nil
}

func (s *PatientService) UpdateSessionNote(doctorID, noteID uuid.UUID, text string) error {
	var note SessionNote
	if err := s.db.First(&note, "id = ?", noteID).Error; err != nil {
		return ErrNoteNotFound
	}
	if note.DoctorID != doctorID {
		return ErrNotOwner
	}

	encNote, err := s.cipher.Encrypt(text)
	if err != nil {
		return fmt.Errorf("failed to encrypt session note: %w", err)
	}
	return s.db.Model(&note).Update("note", encNote).Error
}

func (s *PatientService) DeleteSessionNote(doctorID, noteID uuid.UUID) error {
	var note SessionNote
	if err := s.db.First(&note, "id = ?", noteID).Error; err != nil {
		return ErrNoteNotFound
	}
	if note.DoctorID != doctorID {
		return ErrNotOwner
	}
	return s.db.Delete(&note).Error
}
