package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/trezcool/masomo-feedback/core"
	"github.com/trezcool/masomo-feedback/core/feedback"
	"github.com/trezcool/masomo-feedback/core/student"
)

var (
	isTerminalFunc = term.IsTerminal // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db          *sql.DB
	conf        *core.Config
	feedbackSvc feedback.Service
	studentSvc  student.Service
	out         io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS] - run a database migration command (up, down, status, ...)")
	fmt.Println("  token -email EMAIL [-name NAME] [-courses COURSE,...] - issue an API token; -courses makes an instructor token")
	fmt.Println("  students -course COURSE - list the roster of a course")
	fmt.Println("  preview -course COURSE -session SESSION -as EMAIL [-instructor] - print the submission form of a participant")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	tokenCmd := flag.NewFlagSet("token", flag.ContinueOnError)
	tokenEmail := tokenCmd.String("email", "", "The participant's email.")
	tokenName := tokenCmd.String("name", "", "The participant's name.")
	tokenCourses := tokenCmd.String("courses", "", "Comma separated courses taught by the instructor.")

	studentsCmd := flag.NewFlagSet("students", flag.ContinueOnError)
	studentsCourse := studentsCmd.String("course", "", "The course ID.")

	previewCmd := flag.NewFlagSet("preview", flag.ContinueOnError)
	previewCourse := previewCmd.String("course", "", "The course ID.")
	previewSession := previewCmd.String("session", "", "The feedback session name.")
	previewAs := previewCmd.String("as", "", "The email of the student or instructor whose form is shown.")
	previewInstructor := previewCmd.Bool("instructor", false, "The participant is an instructor of the course.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "token":
		if err := tokenCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *tokenEmail == "" {
			tokenCmd.Usage()
			return errHelp
		}
		return cli.token(*tokenEmail, *tokenName, splitCourses(*tokenCourses))
	case "students":
		if err := studentsCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *studentsCourse == "" {
			studentsCmd.Usage()
			return errHelp
		}
		return cli.students(*studentsCourse)
	case "preview":
		if err := previewCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *previewCourse == "" || *previewSession == "" || *previewAs == "" {
			previewCmd.Usage()
			return errHelp
		}
		return cli.preview(*previewCourse, *previewSession, *previewAs, *previewInstructor)
	default:
		cli.printUsage()
		return errHelp
	}
}

func splitCourses(s string) []string {
	courses := make([]string, 0)
	for _, c := range strings.Split(s, ",") {
		if c = strings.TrimSpace(c); c != "" {
			courses = append(courses, c)
		}
	}
	return courses
}

func (cli *commandLine) isTerminal() bool {
	f, ok := cli.out.(*os.File)
	return ok && isTerminalFunc(int(f.Fd()))
}
