package main

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"log"
	"net/mail"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/masomo-feedback/apps/api/echo"
	"github.com/trezcool/masomo-feedback/core"
	"github.com/trezcool/masomo-feedback/core/feedback"
	"github.com/trezcool/masomo-feedback/core/student"
	emailsvc "github.com/trezcool/masomo-feedback/services/email"
	logsvc "github.com/trezcool/masomo-feedback/services/logger"
	inmemdb "github.com/trezcool/masomo-feedback/storage/database/inmem"
	testutil "github.com/trezcool/masomo-feedback/tests"
)

func setup(t *testing.T) (*commandLine, *bytes.Buffer) {
	conf := &core.Config{
		AppName:          "Masomo",
		SecretKey:        "test-secret",
		FrontendBaseURL:  "https://masomo.test",
		DefaultFromEmail: mail.Address{Name: "Masomo", Address: "noreply@masomo.test"},
		Server:           core.ServerConfig{JWTExpirationDelta: time.Hour},
	}
	logger := logsvc.NewRollbarLogger(log.New(ioutil.Discard, "", 0), conf)
	logger.Enable(false)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	student.InitValidators(validate, translator)

	db := inmemdb.Open()
	sess := testutil.CreateOpenSession(db, "CS101", "Mid-term")
	testutil.CreateStudent(db, "CS101", "ann@x.com", "Ann", "Team A", "S1", true)
	testutil.CreateStudent(db, "CS101", "bob@x.com", "Bob", "Team A", "S1", false)
	testutil.CreateInstructor(db, "CS101", "prof@x.com", "Prof")
	testutil.CreateTextQuestion(t, db, sess, 1, feedback.ParticipantStudents, feedback.ParticipantOwnTeamMembers, 1)

	var out bytes.Buffer
	return &commandLine{
		conf:        conf,
		feedbackSvc: feedback.NewService(inmemdb.NewFeedbackRepository(db), conf, logger),
		studentSvc: student.NewService(
			inmemdb.NewStudentRepository(db), emailsvc.NewConsoleServiceMock(conf, logger), validate, conf, logger,
		),
		out: &out,
	}, &out
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _ := setup(t)

	gooseRunFunc = func(command string, db *sql.DB, dir string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to":
			if len(args) == 0 {
				return fmt.Errorf("up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		case "down-to":
			if len(args) == 0 {
				return fmt.Errorf("down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "1"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "0"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "responses_index", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			}
		})
	}
}

func Test_commandLine_token(t *testing.T) {
	tests := []struct {
		name           string
		args           []string
		wantErr        error
		wantInstructor bool
		wantCourses    []string
	}{
		{name: "no args", args: []string{"token"}, wantErr: errHelp},
		{name: "student", args: []string{"token", "-email", "ann@x.com", "-name", "Ann"}},
		{
			name:           "instructor",
			args:           []string{"token", "-email", "prof@x.com", "-courses", "CS101, CS202,"},
			wantInstructor: true,
			wantCourses:    []string{"CS101", "CS202"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cli, out := setup(t)
			err := cli.run(append([]string{"admin"}, tt.args...))
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			require.NoError(t, err)

			var claims echoapi.Claims
			_, err = jwt.ParseWithClaims(strings.TrimSpace(out.String()), &claims, func(*jwt.Token) (interface{}, error) {
				return []byte(cli.conf.SecretKey), nil
			})
			require.NoError(t, err)
			assert.Equal(t, tt.args[2], claims.Email)
			assert.Equal(t, tt.wantInstructor, claims.IsInstructor)
			assert.Equal(t, tt.wantCourses, claims.Courses)
		})
	}
}

func Test_commandLine_students(t *testing.T) {
	cli, out := setup(t)

	assert.Equal(t, errHelp, cli.run([]string{"admin", "students"}))

	require.NoError(t, cli.run([]string{"admin", "students", "-course", "CS101"}))
	assert.Equal(t, "S1\tTeam A\tAnn\tann@x.com\tregistered\nS1\tTeam A\tBob\tbob@x.com\tunregistered\n", out.String())
}

func Test_commandLine_preview(t *testing.T) {
	isTerminalFunc = func(int) bool { return false }

	t.Run("missing args", func(t *testing.T) {
		cli, _ := setup(t)
		assert.Equal(t, errHelp, cli.run([]string{"admin", "preview", "-course", "CS101", "-session", "Mid-term"}))
	})

	t.Run("student", func(t *testing.T) {
		cli, out := setup(t)
		require.NoError(t, cli.run([]string{"admin", "preview", "-course", "CS101", "-session", "Mid-term", "-as", "bob@x.com"}))

		var bundle feedback.SubmissionBundle
		require.NoError(t, json.Unmarshal(out.Bytes(), &bundle))
		assert.True(t, bundle.IsSessionOpenForSubmission)
		assert.Contains(t, bundle.RegisterMessage, "<strong>Bob</strong>")
		if assert.Len(t, bundle.Questions, 1) {
			assert.Equal(t, 1, bundle.Questions[0].SlotCount)
			opts := bundle.Questions[0].Slots[0].RecipientOptions
			if assert.Len(t, opts, 2) {
				assert.Equal(t, "ann@x.com", opts[1].Value)
			}
		}
	})

	t.Run("instructor has no questions", func(t *testing.T) {
		cli, out := setup(t)
		require.NoError(t, cli.run([]string{"admin", "preview", "-course", "CS101", "-session", "Mid-term", "-as", "prof@x.com", "-instructor"}))

		var bundle feedback.SubmissionBundle
		require.NoError(t, json.Unmarshal(out.Bytes(), &bundle))
		assert.Empty(t, bundle.Questions)
	})

	t.Run("unknown participant", func(t *testing.T) {
		cli, _ := setup(t)
		err := cli.run([]string{"admin", "preview", "-course", "CS101", "-session", "Mid-term", "-as", "eve@x.com"})
		assert.Equal(t, feedback.ErrGiverNotFound, errors.Cause(err))
	})
}
