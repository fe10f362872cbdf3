package main

import (
	"context"
	"encoding/json"
	"fmt"

	echoapi "github.com/trezcool/masomo-feedback/apps/api/echo"
	"github.com/trezcool/masomo-feedback/core/feedback"
)

// token prints a signed API token. Participants given courses get an instructor token.
func (cli *commandLine) token(email, name string, courses []string) error {
	claims := echoapi.NewClaims(cli.conf, email, name, len(courses) > 0, courses...)
	token, err := echoapi.GenerateToken(cli.conf, claims)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cli.out, token)
	return err
}

func (cli *commandLine) students(courseID string) error {
	students, err := cli.studentSvc.Query(context.Background(), courseID)
	if err != nil {
		return err
	}
	for _, st := range students {
		registered := "unregistered"
		if st.IsRegistered() {
			registered = "registered"
		}
		if _, err = fmt.Fprintf(cli.out, "%s\t%s\t%s\t%s\t%s\n", st.Section, st.Team, st.Name, st.Email, registered); err != nil {
			return err
		}
	}
	return nil
}

// preview prints the submission form of the participant `email`, as JSON.
func (cli *commandLine) preview(courseID, sessionName, email string, isInstructor bool) error {
	bundle, err := cli.feedbackSvc.LoadSubmission(context.Background(), feedback.SubmissionRequest{
		CourseID:     courseID,
		SessionName:  sessionName,
		ViewerEmail:  email,
		IsInstructor: isInstructor,
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cli.out)
	if cli.isTerminal() {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(bundle)
}
