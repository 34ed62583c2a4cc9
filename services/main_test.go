package services_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"contest-hub-service/handlers"
	"contest-hub-service/models"
	"contest-hub-service/services"
)

// stubVerifier maps bearer tokens to identities so each test request can act
// as a different principal.
type stubVerifier map[string]stubIdentity

type stubIdentity struct {
	UID   string
	Email string
}

func (v stubVerifier) VerifyToken(idToken string) (string, string, error) {
	id, ok := v[idToken]
	if !ok {
		return "", "", errors.New("invalid token")
	}
	return id.UID, id.Email, nil
}

// stubCheckout returns a deterministic redirect URL instead of calling the
// payment gateway.
type stubCheckout struct{}

func (stubCheckout) CreateCheckout(contest *models.Contest, uid, email string) (string, error) {
	return "https://pay.example.test/session/" + contest.ID, nil
}

// stubUploader stands in for object storage and echoes the key as a CDN URL.
type stubUploader struct{}

func (stubUploader) Upload(file *multipart.FileHeader, key string) (string, error) {
	return "https://cdn.example.test/" + key, nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Contest{},
		&models.Submission{},
		&models.Payment{},
	))
	return db
}

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB, stubVerifier) {
	t.Helper()
	db := newTestDB(t)
	verifier := stubVerifier{}

	app := fiber.New()
	handlers.SetupContestRoutes(app, services.NewContestService(db, stubUploader{}), verifier)
	handlers.SetupUserRoutes(app, services.NewUserService(db), verifier)
	handlers.SetupPaymentRoutes(app,
		services.NewPaymentService(db, stubCheckout{}),
		services.NewSubmissionService(db),
		verifier)

	return app, db, verifier
}

// asUser registers a token for the given identity and seeds the matching user
// row with the requested role.
func asUser(t *testing.T, db *gorm.DB, verifier stubVerifier, uid, role string) string {
	t.Helper()
	email := uid + "@example.test"
	require.NoError(t, db.Create(&models.User{
		ID:    uuid.NewString(),
		UID:   uid,
		Email: email,
		Role:  role,
	}).Error)
	token := "token-" + uid
	verifier[token] = stubIdentity{UID: uid, Email: email}
	return token
}

func seedContest(t *testing.T, db *gorm.DB, contest models.Contest) models.Contest {
	t.Helper()
	if contest.ID == "" {
		contest.ID = uuid.NewString()
	}
	if contest.Name == "" {
		contest.Name = "Contest " + contest.ID[:8]
	}
	if contest.Category == "" {
		contest.Category = "design"
	}
	if contest.Status == "" {
		contest.Status = models.ContestPending
	}
	if contest.Deadline.IsZero() {
		contest.Deadline = time.Now().Add(72 * time.Hour)
	}
	require.NoError(t, db.Create(&contest).Error)
	return contest
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeMap(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func decodeList(t *testing.T, resp *http.Response) []map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	var out []map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}
