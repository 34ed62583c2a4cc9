package services_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contest-hub-service/models"
)

func TestSavePaymentIdempotent(t *testing.T) {
	app, db, verifier := newTestApp(t)
	token := asUser(t, db, verifier, "u1", models.RoleUser)
	contest := seedContest(t, db, models.Contest{Status: models.ContestApproved})

	resp := doJSON(t, app, "POST", "/save-payment", token,
		map[string]string{"contestId": contest.ID})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	first := decodeMap(t, resp)
	assert.Equal(t, true, first["success"])
	assert.Equal(t, false, first["alreadyPaid"])

	resp = doJSON(t, app, "POST", "/save-payment", token,
		map[string]string{"contestId": contest.ID})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	second := decodeMap(t, resp)
	assert.Equal(t, true, second["success"])
	assert.Equal(t, true, second["alreadyPaid"])

	var updated models.Contest
	require.NoError(t, db.First(&updated, "id = ?", contest.ID).Error)
	assert.Equal(t, 1, updated.Participants, "participant count increments exactly once")

	var count int64
	require.NoError(t, db.Model(&models.Payment{}).
		Where("uid = ? AND contest_id = ?", "u1", contest.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestSubmitRequiresPayment(t *testing.T) {
	app, db, verifier := newTestApp(t)
	token := asUser(t, db, verifier, "u1", models.RoleUser)
	contest := seedContest(t, db, models.Contest{Status: models.ContestApproved})

	submission := map[string]string{"contestId": contest.ID, "task": "https://work.example/entry"}

	resp := doJSON(t, app, "POST", "/submissions", token, submission)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "must pay to submit", decodeMap(t, resp)["error"])

	resp = doJSON(t, app, "POST", "/save-payment", token,
		map[string]string{"contestId": contest.ID})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeMap(t, resp)

	// The identical call now succeeds.
	resp = doJSON(t, app, "POST", "/submissions", token, submission)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeMap(t, resp)

	var updated models.Contest
	require.NoError(t, db.First(&updated, "id = ?", contest.ID).Error)
	assert.Equal(t, 1, updated.Participants)

	// One submission per (user, contest).
	resp = doJSON(t, app, "POST", "/submissions", token, submission)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "already submitted", decodeMap(t, resp)["error"])
}

func TestExistenceProbesAreSelfScoped(t *testing.T) {
	app, db, verifier := newTestApp(t)
	token := asUser(t, db, verifier, "u1", models.RoleUser)
	asUser(t, db, verifier, "u2", models.RoleUser)
	contest := seedContest(t, db, models.Contest{Status: models.ContestApproved})

	resp := doJSON(t, app, "GET", "/check-payment/u2/"+contest.ID, token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, app, "GET", "/check-submission/u2/"+contest.ID, token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, app, "GET", "/check-payment/u1/"+contest.ID, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, decodeMap(t, resp)["paid"])

	doJSON(t, app, "POST", "/save-payment", token, map[string]string{"contestId": contest.ID})

	resp = doJSON(t, app, "GET", "/check-payment/u1/"+contest.ID, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, decodeMap(t, resp)["paid"])

	resp = doJSON(t, app, "GET", "/check-submission/u1/"+contest.ID, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, decodeMap(t, resp)["submitted"])
}

func TestMyParticipated(t *testing.T) {
	app, db, verifier := newTestApp(t)
	token := asUser(t, db, verifier, "u1", models.RoleUser)

	resp := doJSON(t, app, "GET", "/my-participated", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decodeList(t, resp), "no payments yet")

	soon := seedContest(t, db, models.Contest{
		Name: "soon", Status: models.ContestApproved,
		Deadline: time.Now().Add(24 * time.Hour),
	})
	later := seedContest(t, db, models.Contest{
		Name: "later", Status: models.ContestApproved,
		Deadline: time.Now().Add(240 * time.Hour),
	})
	seedContest(t, db, models.Contest{Name: "unpaid", Status: models.ContestApproved})

	doJSON(t, app, "POST", "/save-payment", token, map[string]string{"contestId": later.ID})
	doJSON(t, app, "POST", "/save-payment", token, map[string]string{"contestId": soon.ID})

	resp = doJSON(t, app, "GET", "/my-participated", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	listed := decodeList(t, resp)
	require.Len(t, listed, 2)
	assert.Equal(t, "soon", listed[0]["name"], "soonest deadline first")
	assert.Equal(t, "later", listed[1]["name"])
}

func TestCreateCheckoutSession(t *testing.T) {
	app, db, verifier := newTestApp(t)
	token := asUser(t, db, verifier, "u1", models.RoleUser)

	pending := seedContest(t, db, models.Contest{})
	expired := seedContest(t, db, models.Contest{
		Status:   models.ContestApproved,
		Deadline: time.Now().Add(-time.Hour),
	})
	open := seedContest(t, db, models.Contest{Status: models.ContestApproved, Price: 25})

	resp := doJSON(t, app, "POST", "/create-checkout-session", token,
		map[string]string{"contestId": "missing"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, app, "POST", "/create-checkout-session", token,
		map[string]string{"contestId": pending.ID})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, "POST", "/create-checkout-session", token,
		map[string]string{"contestId": expired.ID})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, "POST", "/create-checkout-session", token,
		map[string]string{"contestId": open.ID})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "https://pay.example.test/session/"+open.ID, decodeMap(t, resp)["url"])
}

func TestCreatorSubmissionsOwnershipFilter(t *testing.T) {
	app, db, verifier := newTestApp(t)
	creator1 := asUser(t, db, verifier, "c1", models.RoleCreator)
	asUser(t, db, verifier, "c2", models.RoleCreator)
	participant := asUser(t, db, verifier, "u1", models.RoleUser)

	mine := seedContest(t, db, models.Contest{CreatorUID: "c1", Status: models.ContestApproved})
	theirs := seedContest(t, db, models.Contest{CreatorUID: "c2", Status: models.ContestApproved})

	for _, contest := range []string{mine.ID, theirs.ID} {
		doJSON(t, app, "POST", "/save-payment", participant, map[string]string{"contestId": contest})
		resp := doJSON(t, app, "POST", "/submissions", participant,
			map[string]string{"contestId": contest, "task": "entry"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	// Requesting both ids only yields submissions for contests the caller owns.
	resp := doJSON(t, app, "POST", "/creator/submissions", creator1,
		map[string]interface{}{"contestIds": []string{mine.ID, theirs.ID}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	listed := decodeList(t, resp)
	require.Len(t, listed, 1)
	assert.Equal(t, mine.ID, listed[0]["contest_id"])
	assert.Equal(t, "u1", listed[0]["uid"])

	resp = doJSON(t, app, "POST", "/creator/submissions", creator1,
		map[string]interface{}{"contestIds": []string{}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decodeList(t, resp))
}
