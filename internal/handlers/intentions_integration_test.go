package handlers_test

import (
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/memberhub/internal/events"
	"github.com/charlesng35/memberhub/internal/handlers/testutil"
)

type intentionPayload struct {
	ID       uint    `json:"id"`
	FullName string  `json:"full_name"`
	Email    string  `json:"email"`
	Phone    *string `json:"phone"`
	Company  *string `json:"company"`
	GroupID  uint    `json:"group_id"`
	Status   string  `json:"status"`
	Token    *string `json:"token"`
}

func intentionPath(id uint, suffix string) string {
	return "/api/intentios/" + strconv.FormatUint(uint64(id), 10) + suffix
}

func submitIntention(t *testing.T, env *testutil.Env, email string, groupID uint) intentionPayload {
	t.Helper()

	resp := env.Request(http.MethodPost, "/api/intentios", map[string]any{
		"full_name": "Applicant",
		"email":     email,
		"phone":     "020 7946 0018",
		"company":   "Acme",
		"group_id":  groupID,
	}, "")
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var intention intentionPayload
	testutil.DecodeInto(t, testutil.DecodeResponse(t, resp).Data, &intention)
	return intention
}

func TestIntentionHandler_SubmitIsPublic(t *testing.T) {
	env := testutil.NewEnv(t)

	intention := submitIntention(t, env, "Applicant@Example.com", 7)
	require.Equal(t, "pending", intention.Status)
	require.Nil(t, intention.Token)
	require.Equal(t, "applicant@example.com", intention.Email)
	require.NotNil(t, intention.Phone)
	require.Equal(t, "+442079460018", *intention.Phone)
	require.Equal(t, uint(7), intention.GroupID)
}

func TestIntentionHandler_SubmitValidation(t *testing.T) {
	env := testutil.NewEnv(t)

	missing := env.Request(http.MethodPost, "/api/intentios", map[string]any{"email": "x@example.com"}, "")
	require.Equal(t, http.StatusBadRequest, missing.Code)
	msg := testutil.DecodeResponse(t, missing).Error.Message
	require.Contains(t, msg, "full name is required")
	require.Contains(t, msg, "group id is required")

	badPhone := env.Request(http.MethodPost, "/api/intentios", map[string]any{
		"full_name": "Applicant",
		"email":     "x@example.com",
		"phone":     "not a phone",
		"group_id":  1,
	}, "")
	require.Equal(t, http.StatusBadRequest, badPhone.Code)
}

func TestIntentionHandler_ListScoping(t *testing.T) {
	env := testutil.NewEnv(t)
	submitIntention(t, env, "one@example.com", 1)
	submitIntention(t, env, "two@example.com", 2)
	latest := submitIntention(t, env, "three@example.com", 1)

	member := env.TokenFor(env.CreateUser(false))
	admin := env.TokenFor(env.CreateUser(true))

	require.Equal(t, http.StatusUnauthorized, env.Request(http.MethodGet, "/api/intentios", nil, "").Code)

	unscoped := env.Request(http.MethodGet, "/api/intentios", nil, member)
	require.Equal(t, http.StatusBadRequest, unscoped.Code)
	require.Contains(t, testutil.DecodeResponse(t, unscoped).Error.Message, "group id is required")

	scoped := env.Request(http.MethodGet, "/api/intentios?groupId=1", nil, member)
	require.Equal(t, http.StatusOK, scoped.Code)
	var group []intentionPayload
	testutil.DecodeInto(t, testutil.DecodeResponse(t, scoped).Data, &group)
	require.Len(t, group, 2)
	require.Equal(t, latest.ID, group[0].ID)

	all := env.Request(http.MethodGet, "/api/intentios", nil, admin)
	require.Equal(t, http.StatusOK, all.Code)
	var everything []intentionPayload
	testutil.DecodeInto(t, testutil.DecodeResponse(t, all).Data, &everything)
	require.Len(t, everything, 3)

	bad := env.Request(http.MethodGet, "/api/intentios?groupId=abc", nil, admin)
	require.Equal(t, http.StatusBadRequest, bad.Code)
}

func TestIntentionHandler_ApproveFlow(t *testing.T) {
	env := testutil.NewEnv(t)
	intention := submitIntention(t, env, "approve@example.com", 3)

	member := env.TokenFor(env.CreateUser(false))
	admin := env.TokenFor(env.CreateUser(true))

	require.Equal(t, http.StatusForbidden, env.Request(http.MethodPost, intentionPath(intention.ID, "/approve"), nil, member).Code)
	require.Equal(t, http.StatusForbidden, env.Request(http.MethodGet, intentionPath(intention.ID, ""), nil, member).Code)

	resp := env.Request(http.MethodPost, intentionPath(intention.ID, "/approve"), nil, admin)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var approved intentionPayload
	testutil.DecodeInto(t, testutil.DecodeResponse(t, resp).Data, &approved)
	require.Equal(t, "approved", approved.Status)
	require.NotNil(t, approved.Token)
	require.Len(t, *approved.Token, 64)

	byToken := env.Request(http.MethodGet, "/api/intentios/by-token/"+*approved.Token, nil, "")
	require.Equal(t, http.StatusOK, byToken.Code)
	var redeemed intentionPayload
	testutil.DecodeInto(t, testutil.DecodeResponse(t, byToken).Data, &redeemed)
	require.Equal(t, intention.ID, redeemed.ID)

	unknown := env.Request(http.MethodGet, "/api/intentios/by-token/"+strings.Repeat("0", 64), nil, "")
	require.Equal(t, http.StatusNotFound, unknown.Code)
	require.Equal(t, "Invalid or expired token", testutil.DecodeResponse(t, unknown).Error.Message)

	again := env.Request(http.MethodPost, intentionPath(intention.ID, "/approve"), nil, admin)
	require.Equal(t, http.StatusConflict, again.Code)
	require.Equal(t, "INTENTION_ALREADY_DECIDED", testutil.DecodeResponse(t, again).Error.Code)

	reject := env.Request(http.MethodPost, intentionPath(intention.ID, "/reject"), nil, admin)
	require.Equal(t, http.StatusConflict, reject.Code)

	sent := env.Mail.Messages()
	require.Len(t, sent, 1)
	require.Equal(t, []string{"approve@example.com"}, sent[0].To)
	require.Contains(t, sent[0].Body, "https://members.example.com/intentios/by-token/"+*approved.Token)

	published := env.Events.Events()
	require.Len(t, published, 1)
	require.Equal(t, events.TypeIntentionApproved, published[0].Type)
	require.Equal(t, intention.ID, published[0].IntentionID)
}

func TestIntentionHandler_RejectFlow(t *testing.T) {
	env := testutil.NewEnv(t)
	intention := submitIntention(t, env, "reject@example.com", 4)
	admin := env.TokenFor(env.CreateUser(true))

	resp := env.Request(http.MethodPost, intentionPath(intention.ID, "/reject"), nil, admin)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var rejected intentionPayload
	testutil.DecodeInto(t, testutil.DecodeResponse(t, resp).Data, &rejected)
	require.Equal(t, "rejected", rejected.Status)
	require.Nil(t, rejected.Token)

	require.Equal(t, http.StatusNotFound, env.Request(http.MethodPost, intentionPath(9999, "/reject"), nil, admin).Code)

	published := env.Events.Events()
	require.Len(t, published, 1)
	require.Equal(t, events.TypeIntentionRejected, published[0].Type)
}

func TestIntentionHandler_UpdateAndDelete(t *testing.T) {
	env := testutil.NewEnv(t)
	intention := submitIntention(t, env, "edit@example.com", 5)
	admin := env.TokenFor(env.CreateUser(true))

	update := env.Request(http.MethodPatch, intentionPath(intention.ID, ""), map[string]any{
		"company":  "",
		"group_id": 6,
	}, admin)
	require.Equal(t, http.StatusOK, update.Code, update.Body.String())

	var updated intentionPayload
	testutil.DecodeInto(t, testutil.DecodeResponse(t, update).Data, &updated)
	require.Equal(t, uint(6), updated.GroupID)
	require.Nil(t, updated.Company)
	require.Equal(t, "pending", updated.Status)

	require.Equal(t, http.StatusNotFound, env.Request(http.MethodPatch, intentionPath(9999, ""), map[string]any{"full_name": "x"}, admin).Code)

	del := env.Request(http.MethodDelete, intentionPath(intention.ID, ""), nil, admin)
	require.Equal(t, http.StatusOK, del.Code)

	require.Equal(t, http.StatusNotFound, env.Request(http.MethodGet, intentionPath(intention.ID, ""), nil, admin).Code)
	require.Equal(t, http.StatusNotFound, env.Request(http.MethodDelete, intentionPath(intention.ID, ""), nil, admin).Code)
}
