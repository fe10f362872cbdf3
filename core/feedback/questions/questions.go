// Package questions implements the answer forms of the supported question types.
package questions

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-feedback/core/feedback"
)

// Question types
const (
	TypeText     = "TEXT"
	TypeMCQ      = "MCQ"
	TypeNumScale = "NUMSCALE"
)

var ErrUnknownType = errors.New("unknown question type")

var formTemplates = template.Must(template.New("forms").Parse(`
{{define "text"}}<textarea name="{{.Name}}" rows="4" {{if .Disabled}}disabled {{end}}{{if .Required}}required {{end}}data-slots="{{.SlotCount}}">{{.Answer}}</textarea>{{end}}
{{define "mcq"}}{{$p := .}}{{range $i, $c := .Choices}}<label><input type="radio" name="{{$p.Name}}" value="{{$c}}"{{if eq $c $p.Answer}} checked{{end}}{{if $p.Disabled}} disabled{{end}}{{if $p.Required}} required{{end}}> {{$c}}</label>{{end}}{{if .OtherEnabled}}<label><input type="radio" name="{{.Name}}" value="__other__"{{if .IsOther}} checked{{end}}{{if .Disabled}} disabled{{end}}> Other <input type="text" name="{{.Name}}-other" value="{{if .IsOther}}{{.Answer}}{{end}}"{{if .Disabled}} disabled{{end}}></label>{{end}}{{end}}
{{define "numscale"}}<input type="number" name="{{.Name}}" min="{{.Min}}" max="{{.Max}}" step="{{.Step}}" value="{{.Answer}}"{{if .Disabled}} disabled{{end}}{{if .Required}} required{{end}}>{{end}}
`))

type formData struct {
	Name      string
	Disabled  bool
	Required  bool
	SlotCount int
	Answer    string
}

func newFormData(params feedback.FormParams, answer string) formData {
	return formData{
		Name:      fmt.Sprintf("responsetext-%d-%d", params.QuestionNumber, params.SlotIndex),
		Disabled:  !params.IsSessionOpen,
		Required:  params.IsCompulsory && params.SlotIndex == 0,
		SlotCount: params.SlotCount,
		Answer:    answer,
	}
}

func render(name string, data interface{}) template.HTML {
	var buff bytes.Buffer
	if err := formTemplates.ExecuteTemplate(&buff, name, data); err != nil {
		return template.HTML(template.HTMLEscapeString(err.Error()))
	}
	return template.HTML(buff.String()) // nolint:gosec // produced by html/template
}

// Parse decodes the persisted details of a question of type `questionType`.
func Parse(questionType string, raw []byte) (feedback.QuestionDetails, error) {
	var details feedback.QuestionDetails
	switch questionType {
	case TypeText:
		details = new(TextDetails)
	case TypeMCQ:
		details = new(MCQDetails)
	case TypeNumScale:
		details = &NumScaleDetails{Min: 1, Max: 5, Step: 1}
	default:
		return nil, errors.Wrap(ErrUnknownType, questionType)
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, details); err != nil {
			return nil, errors.Wrapf(err, "decoding %s question details", questionType)
		}
	}
	if v, ok := details.(interface{ validate() error }); ok {
		if err := v.validate(); err != nil {
			return nil, err
		}
	}
	return details, nil
}

// TextDetails is an essay question.
type TextDetails struct {
	RecommendedLength int `json:"recommended_length,omitempty"`
}

func (d *TextDetails) QuestionType() string { return TypeText }

func (d *TextDetails) ExistingResponseForm(params feedback.FormParams, answer string) template.HTML {
	return render("text", newFormData(params, answer))
}

func (d *TextDetails) EmptyResponseForm(params feedback.FormParams) template.HTML {
	return render("text", newFormData(params, ""))
}

// MCQDetails is a multiple-choice question with an optional free-text "other" choice.
type MCQDetails struct {
	Choices      []string `json:"choices"`
	OtherEnabled bool     `json:"other_enabled,omitempty"`
}

type mcqFormData struct {
	formData
	Choices      []string
	OtherEnabled bool
	IsOther      bool
}

func (d *MCQDetails) QuestionType() string { return TypeMCQ }

func (d *MCQDetails) validate() error {
	if len(d.Choices) < 2 {
		return errors.New("MCQ questions need at least 2 choices")
	}
	return nil
}

func (d *MCQDetails) form(params feedback.FormParams, answer string) template.HTML {
	data := mcqFormData{
		formData:     newFormData(params, answer),
		Choices:      d.Choices,
		OtherEnabled: d.OtherEnabled,
	}
	if answer != "" && d.OtherEnabled {
		data.IsOther = true
		for _, c := range d.Choices {
			if c == answer {
				data.IsOther = false
				break
			}
		}
	}
	return render("mcq", data)
}

func (d *MCQDetails) ExistingResponseForm(params feedback.FormParams, answer string) template.HTML {
	return d.form(params, answer)
}

func (d *MCQDetails) EmptyResponseForm(params feedback.FormParams) template.HTML {
	return d.form(params, "")
}

// NumScaleDetails is a numerical scale question.
type NumScaleDetails struct {
	Min  int     `json:"min"`
	Max  int     `json:"max"`
	Step float64 `json:"step"`
}

type numScaleFormData struct {
	formData
	Min  int
	Max  int
	Step float64
}

func (d *NumScaleDetails) QuestionType() string { return TypeNumScale }

func (d *NumScaleDetails) validate() error {
	if d.Min >= d.Max {
		return errors.Errorf("invalid scale: min %d must be lower than max %d", d.Min, d.Max)
	}
	if d.Step <= 0 {
		return errors.Errorf("invalid scale: step %v must be positive", d.Step)
	}
	return nil
}

func (d *NumScaleDetails) form(params feedback.FormParams, answer string) template.HTML {
	return render("numscale", numScaleFormData{
		formData: newFormData(params, answer),
		Min:      d.Min,
		Max:      d.Max,
		Step:     d.Step,
	})
}

func (d *NumScaleDetails) ExistingResponseForm(params feedback.FormParams, answer string) template.HTML {
	return d.form(params, answer)
}

func (d *NumScaleDetails) EmptyResponseForm(params feedback.FormParams) template.HTML {
	return d.form(params, "")
}
