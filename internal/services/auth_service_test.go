package services_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/clinicore/clinical-notes-backend/internal/models"
	"github.com/clinicore/clinical-notes-backend/internal/services"
	"github.com/clinicore/clinical-notes-backend/internal/testutil"
	"github.com/clinicore/clinical-notes-backend/internal/token"
)

func newAuthService(t *testing.T) (*services.AuthService, *gorm.DB, *testutil.FakeMailer) {
	t.Helper()
	db := testutil.NewTestDB(t)
	cfg := testutil.TestConfig()
	mail := &testutil.FakeMailer{}
	return services.NewAuthService(db, cfg, mail, token.NewIssuer(cfg)), db, mail
}

// registerAndVerify walks the full registration flow and returns the
// resulting user.
func registerAndVerify(t *testing.T, svc *services.AuthService, mail *testutil.FakeMailer, email, password string) *models.User {
	t.Helper()
	record, err := svc.Register(email, password, "Dr. Test")
	require.NoError(t, err)
	user, err := svc.VerifyRegistration(record.ID.String(), mail.LastCode(t, email))
	require.NoError(t, err)
	return user
}

func TestRegister_CreatesVerificationNotUser(t *testing.T) {
	svc, db, mail := newAuthService(t)

	record, err := svc.Register("doc@example.com", "hunter22", "Dr. Doe")
	require.NoError(t, err)
	require.NotNil(t, record)

	assert.Equal(t, "doc@example.com", record.Email)
	assert.Len(t, record.OTP, 6)
	assert.Equal(t, record.OTP, mail.LastCode(t, "doc@example.com"))

	// The would-be user only exists inside the verification payload.
	var userCount int64
	db.Model(&models.User{}).Count(&userCount)
	assert.Zero(t, userCount)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, mail := newAuthService(t)
	registerAndVerify(t, svc, mail, "doc@example.com", "hunter22")

	_, err := svc.Register("doc@example.com", "other-password", "Dr. Other")
	assert.ErrorIs(t, err, services.ErrUserExists)
}

func TestRegister_DispatchFailureStillWritesRecord(t *testing.T) {
	svc, db, mail := newAuthService(t)
	mail.Err = assert.AnError

	_, err := svc.Register("doc@example.com", "hunter22", "Dr. Doe")
	require.ErrorIs(t, err, services.ErrEmailSend)

	// The caller gets an error, yet the record landed and the code in it
	// would verify if the id ever surfaced.
	var record models.VerificationToken
	require.NoError(t, db.First(&record, "email = ?", "doc@example.com").Error)

	user, err := svc.VerifyRegistration(record.ID.String(), record.OTP)
	require.NoError(t, err)
	assert.True(t, user.Verified)
}

func TestVerifyRegistration_HappyPath(t *testing.T) {
	svc, db, mail := newAuthService(t)

	record, err := svc.Register("doc@example.com", "hunter22", "Dr. Doe")
	require.NoError(t, err)

	user, err := svc.VerifyRegistration(record.ID.String(), mail.LastCode(t, "doc@example.com"))
	require.NoError(t, err)
	assert.Equal(t, "doc@example.com", user.Email)
	assert.Equal(t, "doctor", user.Role)
	assert.True(t, user.Verified)
	assert.NotEqual(t, "hunter22", user.Password)

	// Single use: the consumed record is gone.
	var count int64
	db.Model(&models.VerificationToken{}).Count(&count)
	assert.Zero(t, count)
}

func TestVerifyRegistration_WrongCode(t *testing.T) {
	svc, db, mail := newAuthService(t)

	record, err := svc.Register("doc@example.com", "hunter22", "Dr. Doe")
	require.NoError(t, err)

	wrong := "000000"
	if mail.LastCode(t, "doc@example.com") == wrong {
		wrong = "000001"
	}

	_, err = svc.VerifyRegistration(record.ID.String(), wrong)
	assert.ErrorIs(t, err, services.ErrInvalidCode)

	// No user materialized and the record survives for a retry.
	var userCount int64
	db.Model(&models.User{}).Count(&userCount)
	assert.Zero(t, userCount)
	var recordCount int64
	db.Model(&models.VerificationToken{}).Count(&recordCount)
	assert.EqualValues(t, 1, recordCount)
}

func TestVerifyRegistration_Expired(t *testing.T) {
	svc, db, mail := newAuthService(t)

	record, err := svc.Register("doc@example.com", "hunter22", "Dr. Doe")
	require.NoError(t, err)

	past := time.Now().Add(-time.Minute)
	require.NoError(t, db.Model(&models.VerificationToken{}).
		Where("id = ?", record.ID).
		Update("expires_at", past).Error)

	// Expiry wins over code comparison, right code included.
	_, err = svc.VerifyRegistration(record.ID.String(), mail.LastCode(t, "doc@example.com"))
	assert.ErrorIs(t, err, services.ErrVerificationExpired)

	_, err = svc.VerifyRegistration(record.ID.String(), "999999")
	assert.ErrorIs(t, err, services.ErrVerificationExpired)
}

func TestVerifyRegistration_UnknownID(t *testing.T) {
	svc, _, _ := newAuthService(t)

	_, err := svc.VerifyRegistration("not-a-uuid", "123456")
	assert.ErrorIs(t, err, services.ErrVerificationNotFound)

	_, err = svc.VerifyRegistration("93a8a1f2-8e49-4c3e-9a10-1f2e3d4c5b6a", "123456")
	assert.ErrorIs(t, err, services.ErrVerificationNotFound)
}

func TestLogin_HappyPath(t *testing.T) {
	svc, _, mail := newAuthService(t)
	user := registerAndVerify(t, svc, mail, "doc@example.com", "hunter22")

	record, err := svc.Login("doc@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, user.ID, record.UserID)
	assert.Equal(t, record.OTP, mail.LastCode(t, "doc@example.com"))
}

func TestLogin_BadCredentials(t *testing.T) {
	svc, _, mail := newAuthService(t)
	registerAndVerify(t, svc, mail, "doc@example.com", "hunter22")

	_, err := svc.Login("doc@example.com", "wrong-password")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	_, err = svc.Login("nobody@example.com", "hunter22")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestLogin_DispatchFailureLeavesRecord(t *testing.T) {
	svc, db, mail := newAuthService(t)
	registerAndVerify(t, svc, mail, "doc@example.com", "hunter22")

	mail.Err = assert.AnError
	_, err := svc.Login("doc@example.com", "hunter22")
	require.ErrorIs(t, err, services.ErrEmailSend)

	// Written before dispatch; the orphan stays until the cleanup sweep.
	var count int64
	db.Model(&models.LoginVerification{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestVerifyLogin_HappyPath(t *testing.T) {
	svc, db, mail := newAuthService(t)
	cfg := testutil.TestConfig()
	registered := registerAndVerify(t, svc, mail, "doc@example.com", "hunter22")

	record, err := svc.Login("doc@example.com", "hunter22")
	require.NoError(t, err)

	user, signed, err := svc.VerifyLogin(record.ID.String(), mail.LastCode(t, "doc@example.com"))
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	claims, err := token.NewIssuer(cfg).Decode(signed)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, claims.UserID)
	assert.Equal(t, "doc@example.com", claims.Email)

	// Consumed record is gone; a replay of the same code fails.
	var count int64
	db.Model(&models.LoginVerification{}).Count(&count)
	assert.Zero(t, count)
	_, _, err = svc.VerifyLogin(record.ID.String(), record.OTP)
	assert.ErrorIs(t, err, services.ErrVerificationNotFound)
}

func TestVerifyLogin_UserDeletedInBetween(t *testing.T) {
	svc, db, mail := newAuthService(t)
	user := registerAndVerify(t, svc, mail, "doc@example.com", "hunter22")

	record, err := svc.Login("doc@example.com", "hunter22")
	require.NoError(t, err)

	require.NoError(t, db.Delete(&models.User{}, "id = ?", user.ID).Error)

	_, _, err = svc.VerifyLogin(record.ID.String(), mail.LastCode(t, "doc@example.com"))
	assert.ErrorIs(t, err, services.ErrUserNotFound)
}

func TestResend_InvalidatesOldCode(t *testing.T) {
	svc, _, mail := newAuthService(t)

	record, err := svc.Register("doc@example.com", "hunter22", "Dr. Doe")
	require.NoError(t, err)
	oldCode := mail.LastCode(t, "doc@example.com")

	email, err := svc.Resend(record.ID.String(), services.FlowRegistration)
	require.NoError(t, err)
	assert.Equal(t, "doc@example.com", email)

	newCode := mail.LastCode(t, "doc@example.com")
	if oldCode != newCode {
		_, err = svc.VerifyRegistration(record.ID.String(), oldCode)
		assert.ErrorIs(t, err, services.ErrInvalidCode)
	}

	user, err := svc.VerifyRegistration(record.ID.String(), newCode)
	require.NoError(t, err)
	assert.True(t, user.Verified)
}

func TestResend_LoginFlow(t *testing.T) {
	svc, _, mail := newAuthService(t)
	registerAndVerify(t, svc, mail, "doc@example.com", "hunter22")

	record, err := svc.Login("doc@example.com", "hunter22")
	require.NoError(t, err)

	_, err = svc.Resend(record.ID.String(), services.FlowLogin)
	require.NoError(t, err)

	_, _, err = svc.VerifyLogin(record.ID.String(), mail.LastCode(t, "doc@example.com"))
	require.NoError(t, err)
}

func TestResend_UnknownFlow(t *testing.T) {
	svc, _, _ := newAuthService(t)

	record, err := svc.Register("doc@example.com", "hunter22", "Dr. Doe")
	require.NoError(t, err)

	_, err = svc.Resend(record.ID.String(), "password-reset")
	assert.ErrorIs(t, err, services.ErrUnknownFlow)
}

func TestRegister_EmailUniquenessIsCheckThenInsert(t *testing.T) {
	_, db, _ := newAuthService(t)

	// The users table carries no unique index on email; two inserts that
	// both passed the pre-check land side by side.
	first := models.User{ID: uuid.New(), Email: "doc@example.com", Password: "x", Verified: true}
	second := models.User{ID: uuid.New(), Email: "doc@example.com", Password: "y", Verified: true}
	require.NoError(t, db.Create(&first).Error)
	require.NoError(t, db.Create(&second).Error)

	var count int64
	db.Model(&models.User{}).Where("email = ?", "doc@example.com").Count(&count)
	assert.EqualValues(t, 2, count)
}

func TestCleanupExpiredVerifications(t *testing.T) {
	svc, db, mail := newAuthService(t)
	registerAndVerify(t, svc, mail, "doc@example.com", "hunter22")

	// One live registration, one live login, then both forced past expiry.
	reg, err := svc.Register("other@example.com", "hunter22", "Dr. Other")
	require.NoError(t, err)
	login, err := svc.Login("doc@example.com", "hunter22")
	require.NoError(t, err)

	removed, err := svc.CleanupExpiredVerifications()
	require.NoError(t, err)
	assert.Zero(t, removed)

	past := time.Now().Add(-time.Hour)
	require.NoError(t, db.Model(&models.VerificationToken{}).
		Where("id = ?", reg.ID).Update("expires_at", past).Error)
	require.NoError(t, db.Model(&models.LoginVerification{}).
		Where("id = ?", login.ID).Update("expires_at", past).Error)

	removed, err = svc.CleanupExpiredVerifications()
	require.NoError(t, err)
	assert.EqualValues(t, 2, removed)

	var regCount, loginCount int64
	db.Model(&models.VerificationToken{}).Count(&regCount)
	db.Model(&models.LoginVerification{}).Count(&loginCount)
	assert.Zero(t, regCount)
	assert.Zero(t, loginCount)
}
