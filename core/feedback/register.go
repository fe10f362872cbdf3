package feedback

import (
	"fmt"
	"html"
	"net/url"
	"strings"

	"github.com/trezcool/masomo-feedback/core/sanitize"
)

const (
	joinPath = "/join"

	unregisteredStudentMsg = "You are submitting feedback as <strong>%s</strong>. " +
		"You may submit feedback for open sessions and view published results without logging in. " +
		`To access other features you need to <a href="%s">join the course</a>.`
)

// RegisterMessageComposer builds the join prompt shown to students who have not registered yet.
type RegisterMessageComposer struct {
	AppURL string
}

func NewRegisterMessageComposer(appURL string) RegisterMessageComposer {
	return RegisterMessageComposer{AppURL: strings.TrimRight(appURL, "/")}
}

// JoinURL returns the course join link, or "" if AppURL is not an absolute URL.
// Empty parameters are left out of the query.
func (c RegisterMessageComposer) JoinURL(regKey, email, courseID string) string {
	if c.AppURL == "" {
		return ""
	}
	u, err := url.Parse(c.AppURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return ""
	}
	u.Path = strings.TrimRight(u.Path, "/") + joinPath

	q := make(url.Values)
	if regKey != "" {
		q.Set("key", regKey)
	}
	if email != "" {
		q.Set("studentemail", email)
	}
	if courseID != "" {
		q.Set("courseid", courseID)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Compose returns "" when there is no student or the join link cannot be built.
func (c RegisterMessageComposer) Compose(regKey, email, courseID, studentName string) string {
	if studentName == "" {
		return ""
	}
	joinURL := c.JoinURL(regKey, email, courseID)
	if joinURL == "" {
		return ""
	}
	return fmt.Sprintf(unregisteredStudentMsg, sanitize.ForHTML(studentName), html.EscapeString(joinURL))
}
