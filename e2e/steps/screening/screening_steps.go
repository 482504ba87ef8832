package screening

import (
	"context"
	"fmt"
	"strings"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any) error
	GET(path string, headers map[string]string) error
	POSTWithHeaders(path string, body any, headers map[string]string) error
	GetResponseField(field string) (any, error)
	GetLastResponseHeader(name string) string
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
	SessionID() string
	SetSessionID(sessionID string)
	AuthenticateNewUser() error
}

// RegisterSteps registers questionnaire step definitions.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &screeningSteps{tc: tc}

	ctx.Step(`^I start a screening session$`, steps.startSession)
	ctx.Step(`^I answer "([^"]*)" with "([^"]*)"$`, steps.answer)
	ctx.Step(`^I answer "([^"]*)" with "([^"]*)" in a new session$`, steps.answerInNewSession)
	ctx.Step(`^I answer "([^"]*)" with "([^"]*)" for session "([^"]*)"$`, steps.answerForSession)
	ctx.Step(`^I ask for the next question$`, steps.nextQuestion)
	ctx.Step(`^I list the session diagnoses$`, steps.listDiagnoses)
	ctx.Step(`^I switch to another user$`, steps.switchUser)
	ctx.Step(`^I reload the rule catalog with admin token "([^"]*)"$`, steps.reloadCatalog)

	ctx.Step(`^the session id should be returned$`, steps.sessionIDReturned)
	ctx.Step(`^the matched diagnoses should be "([^"]*)"$`, steps.matchedShouldBe)
	ctx.Step(`^no diagnosis should be matched$`, steps.noneMatched)
	ctx.Step(`^the next question should be "([^"]*)"$`, steps.nextQuestionShouldBe)
	ctx.Step(`^the questionnaire should be complete$`, steps.questionnaireComplete)
	ctx.Step(`^the session should have (\d+) recorded diagnos(?:is|es)$`, steps.recordedCount)
}

type screeningSteps struct {
	tc TestContext
}

func (s *screeningSteps) startSession(ctx context.Context) error {
	if err := s.tc.POST("/screening/sessions", nil); err != nil {
		return err
	}
	v, err := s.tc.GetResponseField("session_id")
	if err != nil {
		return err
	}
	s.tc.SetSessionID(fmt.Sprint(v))
	return nil
}

func (s *screeningSteps) answer(ctx context.Context, question, value string) error {
	return s.submit(s.tc.SessionID(), question, value)
}

func (s *screeningSteps) answerInNewSession(ctx context.Context, question, value string) error {
	return s.submit("", question, value)
}

func (s *screeningSteps) answerForSession(ctx context.Context, question, value, sessionID string) error {
	return s.submit(sessionID, question, value)
}

func (s *screeningSteps) submit(sessionID, question, value string) error {
	body := map[string]string{"question_id": question, "value": value}
	if sessionID != "" {
		body["session_id"] = sessionID
	}
	if err := s.tc.POST("/screening/answers", body); err != nil {
		return err
	}
	if header := s.tc.GetLastResponseHeader("X-Session-ID"); header != "" {
		s.tc.SetSessionID(header)
	}
	return nil
}

func (s *screeningSteps) nextQuestion(ctx context.Context) error {
	return s.tc.GET("/screening/sessions/"+s.tc.SessionID()+"/next", nil)
}

func (s *screeningSteps) listDiagnoses(ctx context.Context) error {
	return s.tc.GET("/screening/sessions/"+s.tc.SessionID()+"/diagnoses", nil)
}

// switchUser keeps the current session id but authenticates as someone else.
func (s *screeningSteps) switchUser(ctx context.Context) error {
	return s.tc.AuthenticateNewUser()
}

func (s *screeningSteps) reloadCatalog(ctx context.Context, token string) error {
	return s.tc.POSTWithHeaders("/admin/catalog/reload", nil, map[string]string{"X-Admin-Token": token})
}

func (s *screeningSteps) sessionIDReturned(ctx context.Context) error {
	if s.tc.SessionID() == "" {
		return fmt.Errorf("no session id in response: %s", s.tc.GetLastResponseBody())
	}
	return nil
}

func (s *screeningSteps) matchedCodes() ([]string, error) {
	v, err := s.tc.GetResponseField("matched")
	if err != nil {
		return nil, err
	}
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("matched is not a list: %s", s.tc.GetLastResponseBody())
	}
	codes := make([]string, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("unexpected matched entry %v", item)
		}
		codes = append(codes, fmt.Sprint(m["code"]))
	}
	return codes, nil
}

func (s *screeningSteps) matchedShouldBe(ctx context.Context, expected string) error {
	codes, err := s.matchedCodes()
	if err != nil {
		return err
	}
	if got := fmt.Sprint(codes); got != fmt.Sprint(splitCodes(expected)) {
		return fmt.Errorf("expected matched %v, got %v", splitCodes(expected), codes)
	}
	return nil
}

func (s *screeningSteps) noneMatched(ctx context.Context) error {
	codes, err := s.matchedCodes()
	if err != nil {
		return err
	}
	if len(codes) > 0 {
		return fmt.Errorf("expected no matches, got %v", codes)
	}
	return nil
}

func (s *screeningSteps) nextQuestionShouldBe(ctx context.Context, expected string) error {
	v, err := s.tc.GetResponseField("question_id")
	if err != nil {
		return err
	}
	if fmt.Sprint(v) != expected {
		return fmt.Errorf("expected next question %q, got %v", expected, v)
	}
	return nil
}

func (s *screeningSteps) questionnaireComplete(ctx context.Context) error {
	v, err := s.tc.GetResponseField("done")
	if err != nil {
		return err
	}
	if done, _ := v.(bool); !done {
		return fmt.Errorf("expected questionnaire to be complete: %s", s.tc.GetLastResponseBody())
	}
	return nil
}

func (s *screeningSteps) recordedCount(ctx context.Context, n int) error {
	v, err := s.tc.GetResponseField("diagnoses")
	if err != nil {
		return err
	}
	items, ok := v.([]any)
	if !ok || len(items) != n {
		return fmt.Errorf("expected %d diagnoses: %s", n, s.tc.GetLastResponseBody())
	}
	return nil
}

func splitCodes(s string) []string {
	var out []string
	for _, code := range strings.Split(s, ",") {
		if code = strings.TrimSpace(code); code != "" {
			out = append(out, code)
		}
	}
	return out
}
