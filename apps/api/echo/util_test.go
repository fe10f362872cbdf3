package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io/ioutil"
	"log"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/masomo-feedback/core"
	"github.com/trezcool/masomo-feedback/core/feedback"
	"github.com/trezcool/masomo-feedback/core/student"
	emailsvc "github.com/trezcool/masomo-feedback/services/email"
	logsvc "github.com/trezcool/masomo-feedback/services/logger"
	inmemdb "github.com/trezcool/masomo-feedback/storage/database/inmem"
	testutil "github.com/trezcool/masomo-feedback/tests"
)

const (
	course  = "CS101"
	session = "Mid-term"
)

type fixtures struct {
	conf *core.Config
	db   *inmemdb.DB

	ann, bob, cat      student.Student
	essay, peers, prof feedback.Question
}

func setup(t *testing.T) (*Server, fixtures) {
	t.Helper()
	emailsvc.ResetSentMessages()

	conf := &core.Config{
		AppName:          "Masomo",
		SecretKey:        "test-secret",
		TestMode:         true,
		FrontendBaseURL:  "https://masomo.test",
		DefaultFromEmail: mail.Address{Name: "Masomo", Address: "noreply@masomo.test"},
		Server: core.ServerConfig{
			JWTExpirationDelta: time.Hour,
			KeyRequestsPerMin:  5,
		},
	}
	logger := logsvc.NewRollbarLogger(log.New(ioutil.Discard, "", 0), conf)
	logger.Enable(false)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	student.InitValidators(validate, translator)

	db := inmemdb.Open()
	fx := fixtures{conf: conf, db: db}
	sess := testutil.CreateOpenSession(db, course, session)
	fx.ann = testutil.CreateStudent(db, course, "ann@x.com", "Ann", "Team A", "S1", true)
	fx.bob = testutil.CreateStudent(db, course, "bob@x.com", "Bob", "Team A", "S1", false)
	fx.cat = testutil.CreateStudent(db, course, "cat@x.com", "Cat", "Team B", "S2", true)
	testutil.CreateInstructor(db, course, "prof@x.com", "Prof")

	fx.essay = testutil.CreateTextQuestion(t, db, sess, 1, feedback.ParticipantStudents, feedback.ParticipantNone, 1)
	fx.peers = testutil.CreateTextQuestion(
		t, db, sess, 2, feedback.ParticipantStudents, feedback.ParticipantOwnTeamMembers, feedback.MaxPossibleRecipients,
	)
	fx.prof = testutil.CreateTextQuestion(t, db, sess, 3, feedback.ParticipantInstructors, feedback.ParticipantStudents, 2)
	testutil.CreateResponse(db, fx.essay, "ann@x.com", feedback.GeneralRecipient, "my essay")

	feedbackSvc := feedback.NewService(inmemdb.NewFeedbackRepository(db), conf, logger)
	studentSvc := student.NewService(
		inmemdb.NewStudentRepository(db), emailsvc.NewConsoleServiceMock(conf, logger), validate, conf, logger,
	)

	srv := NewServer(ServerDeps{
		Conf:           conf,
		Logger:         logger,
		FeedbackSvc:    feedbackSvc,
		StudentSvc:     studentSvc,
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
	})
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv, fx
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func getToken(t *testing.T, conf *core.Config, email string, isInstructor bool, courses ...string) string {
	token, err := GenerateToken(conf, NewClaims(conf, email, "", isInstructor, courses...))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func decodeSubmission(t *testing.T, rec *httptest.ResponseRecorder) submissionResponse {
	var res submissionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decodeSubmission() failed: %v; body %s", err, rec.Body.String())
	}
	return res
}
