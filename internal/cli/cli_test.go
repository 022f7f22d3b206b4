package cli

import (
	"bytes"
	"complykit/internal/localstore"
	"complykit/internal/model"
	"complykit/internal/questionnaire"
	"complykit/internal/risk"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

// minimalScript answers the built-in catalogue for an internal, supervised tool
var minimalScript = []string{
	"Acme",              // company_name
	"1",                 // role
	"1",                 // uses_ai: Yes
	"1",                 // eu_reach: Yes
	"Sorts invoices",    // purpose
	"1",                 // users: internal team
	"1",                 // human_oversight: always
	"8",                 // use_areas: none
	"5",                 // data_types: none
	"2",                 // ai_interaction: No
	"legal@acme.test",   // compliance_email
	"https://acme.test", // website
}

func script(lines ...string) *strings.Reader {
	return strings.NewReader(strings.Join(lines, "\n") + "\n")
}

func TestParseAnswer(t *testing.T) {
	catalog := questionnaire.Default()
	usesAI, _ := catalog.Question(risk.FieldUsesAI)
	areas, _ := catalog.Question(risk.FieldUseAreas)
	purpose, _ := catalog.Question(risk.FieldPurpose)

	v, err := parseAnswer(usesAI, "2")
	require.NoError(t, err)
	assert.Equal(t, "No", v.Text())

	v, err = parseAnswer(usesAI, "yes")
	require.NoError(t, err)
	assert.Equal(t, "Yes", v.Text())

	_, err = parseAnswer(usesAI, "7")
	assert.Error(t, err)

	v, err = parseAnswer(areas, "2, 3,2")
	require.NoError(t, err)
	assert.True(t, v.IsList())
	assert.Equal(t, []string{risk.AreaInfrastructure, risk.AreaEducation}, v.Values())

	_, err = parseAnswer(areas, "1,banana")
	assert.Error(t, err)

	v, err = parseAnswer(purpose, "anything goes")
	require.NoError(t, err)
	assert.Equal(t, "anything goes", v.Text())
}

func TestRunQuestionnaire_Completes(t *testing.T) {
	m := questionnaire.NewMachine(questionnaire.Default())
	var out bytes.Buffer

	require.NoError(t, runQuestionnaire(script(minimalScript...), &out, m))
	assert.True(t, m.Completed())
	assert.Equal(t, model.RiskMinimal, m.RiskLevel())
	assert.Equal(t, risk.Classify(m.Answers()), m.RiskLevel())
}

func TestRunQuestionnaire_HiddenQuestionSkipped(t *testing.T) {
	m := questionnaire.NewMachine(questionnaire.Default())
	var out bytes.Buffer

	lines := []string{"Acme", "1", "2"} // uses_ai: No hides eu_reach
	lines = append(lines, minimalScript[4:]...)
	require.NoError(t, runQuestionnaire(script(lines...), &out, m))

	assert.Equal(t, model.RiskOutOfScope, m.RiskLevel())
	_, asked := m.Answers().Get(risk.FieldEUReach)
	assert.False(t, asked)
}

func TestRunQuestionnaire_BackAndReprompt(t *testing.T) {
	m := questionnaire.NewMachine(questionnaire.Default())
	var out bytes.Buffer

	lines := []string{
		"Acme", "1",
		":back",       // at uses_ai: return to the first step
		"", "",        // keep company and role
		"9", "1", "1", // invalid option, then Yes, then eu_reach Yes
	}
	lines = append(lines, minimalScript[4:]...)
	require.NoError(t, runQuestionnaire(script(lines...), &out, m))

	assert.True(t, m.Completed())
	assert.Equal(t, "Acme", m.Answers().Scalar(risk.FieldCompanyName))
	assert.Contains(t, out.String(), "choose a number between 1 and 2")
}

func TestRunQuestionnaire_RequiredGate(t *testing.T) {
	m := questionnaire.NewMachine(questionnaire.Default())
	var out bytes.Buffer

	lines := []string{"", "", "Acme", "1"} // first pass leaves both required answers empty
	lines = append(lines, minimalScript[2:]...)
	require.NoError(t, runQuestionnaire(script(lines...), &out, m))

	assert.Contains(t, out.String(), "Please answer: company_name, role")
	assert.True(t, m.Completed())
}

func TestRunQuestionnaire_InputEnds(t *testing.T) {
	m := questionnaire.NewMachine(questionnaire.Default())
	err := runQuestionnaire(script("Acme"), &bytes.Buffer{}, m)
	assert.ErrorIs(t, err, errInputEnded)
	assert.False(t, m.Completed())
}

func TestClassifyCommand_JSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "answers.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"uses_ai": "Yes",
		"eu_reach": "Yes",
		"purpose": "our tool computes a social credit score",
		"data_types": ["Profiling or scoring individuals"]
	}`), 0o644))

	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--store", filepath.Join(dir, "pending.json"), "classify", "--json", path})
	require.NoError(t, cmd.Execute())

	var got classifyOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, model.RiskUnacceptable, got.RiskLevel)
	assert.Equal(t, "social-scoring", got.Rule)
}

func TestClassifyCommand_TextFromStdin(t *testing.T) {
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader(`{"uses_ai":"Yes","eu_reach":"Yes","users":"Our internal team only"}`))
	cmd.SetArgs([]string{"classify", "-"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "MINIMAL_RISK")
	assert.Contains(t, out.String(), "Matched rule: minimal")
}

func TestStepsCommand(t *testing.T) {
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"steps"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "* eu_reach [radio]")
	assert.Contains(t, out.String(), `shown when uses_ai = "Yes"`)
}

type fakeSubmitter struct {
	failFor       map[string]bool // company names that fail
	queuedOnly    bool            // server accepts but cannot store yet
	calls         int
	submissionIDs []string
}

func (f *fakeSubmitter) submit(_ context.Context, submissionID string, answers model.AnswerSet) (*submitResponse, error) {
	f.calls++
	f.submissionIDs = append(f.submissionIDs, submissionID)
	if f.failFor[answers.Scalar(risk.FieldCompanyName)] {
		return nil, errors.New("connection refused")
	}
	resp := &submitResponse{RiskLevel: risk.Classify(answers), Persisted: !f.queuedOnly}
	resp.Result.ID = "srv-1"
	return resp, nil
}

func TestSyncPending_KeepsFailures(t *testing.T) {
	store := localstore.Open(filepath.Join(t.TempDir(), "pending.json"))
	for _, company := range []string{"ok", "down"} {
		_, err := store.Add(&model.QuestionnaireResult{
			Answers:   model.AnswerSet{risk.FieldCompanyName: model.Scalar(company)},
			RiskLevel: model.RiskOutOfScope,
		})
		require.NoError(t, err)
	}

	api := &fakeSubmitter{failFor: map[string]bool{"down": true}}
	var out bytes.Buffer
	err := syncPending(context.Background(), &out, store, api)
	assert.Error(t, err)
	assert.Equal(t, 2, api.calls)
	assert.Contains(t, out.String(), "Synced 1 of 2")

	entries, err := store.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "down", entries[0].Result.Answers.Scalar(risk.FieldCompanyName))

	api.failFor = nil
	out.Reset()
	require.NoError(t, syncPending(context.Background(), &out, store, api))
	entries, err = store.List()
	require.NoError(t, err)
	assert.Empty(t, entries)

	out.Reset()
	require.NoError(t, syncPending(context.Background(), &out, store, api))
	assert.Contains(t, out.String(), "Nothing to sync.")
}

func TestSaveAndSync_WithoutTokenQueuesLocally(t *testing.T) {
	store := localstore.Open(filepath.Join(t.TempDir(), "pending.json"))
	answers := model.AnswerSet{risk.FieldUsesAI: model.Scalar("No")}
	var out bytes.Buffer

	err := saveAndSync(context.Background(), &out, store, &globalOptions{}, answers, model.RiskOutOfScope, true, zap.NewNop())
	require.NoError(t, err)
	assert.Contains(t, out.String(), "saved locally")

	out.Reset()
	require.NoError(t, listPending(&out, store))
	assert.Contains(t, out.String(), "OUT_OF_SCOPE")
	assert.Contains(t, out.String(), "(unnamed)")
	assert.Contains(t, out.String(), "1 pending")
}

func TestListPending_Empty(t *testing.T) {
	store := localstore.Open(filepath.Join(t.TempDir(), "pending.json"))
	var out bytes.Buffer
	require.NoError(t, listPending(&out, store))
	assert.Equal(t, "No pending results.\n", out.String())
}

func TestSyncPending_ServerQueuedEntriesAreNotResent(t *testing.T) {
	store := localstore.Open(filepath.Join(t.TempDir(), "pending.json"))
	entryID, err := store.Add(&model.QuestionnaireResult{
		Answers:   model.AnswerSet{risk.FieldCompanyName: model.Scalar("Acme")},
		RiskLevel: model.RiskOutOfScope,
	})
	require.NoError(t, err)

	api := &fakeSubmitter{queuedOnly: true}
	var out bytes.Buffer
	require.NoError(t, syncPending(context.Background(), &out, store, api))
	assert.Equal(t, []string{entryID}, api.submissionIDs)
	assert.Contains(t, out.String(), "Synced 1 of 1")

	entries, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, entries)

	require.NoError(t, syncPending(context.Background(), &out, store, api))
	assert.Equal(t, 1, api.calls)
}

func TestUploadEntry(t *testing.T) {
	store := localstore.Open(filepath.Join(t.TempDir(), "pending.json"))
	answers := model.AnswerSet{risk.FieldCompanyName: model.Scalar("down")}
	entryID, err := store.Add(&model.QuestionnaireResult{Answers: answers, RiskLevel: model.RiskOutOfScope})
	require.NoError(t, err)

	// Unreachable server: the entry stays
	api := &fakeSubmitter{failFor: map[string]bool{"down": true}}
	var out bytes.Buffer
	require.NoError(t, uploadEntry(context.Background(), &out, store, api, entryID, answers, zap.NewNop()))
	assert.Contains(t, out.String(), "stays queued locally")
	entries, err := store.List()
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	// Accepted but only queued by the server: the local copy goes
	api = &fakeSubmitter{queuedOnly: true}
	out.Reset()
	require.NoError(t, uploadEntry(context.Background(), &out, store, api, entryID, answers, zap.NewNop()))
	assert.Equal(t, []string{entryID}, api.submissionIDs)
	assert.Contains(t, out.String(), "Result accepted")
	entries, err = store.List()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAssessCommand_PrintsMachineLevel(t *testing.T) {
	dir := t.TempDir()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetIn(script(minimalScript...))
	cmd.SetArgs([]string{"--store", filepath.Join(dir, "pending.json"), "assess", "--no-summary", "--no-sync"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), string(model.RiskMinimal))
	assert.Contains(t, out.String(), "Matched rule: minimal")
	assert.Contains(t, out.String(), "saved locally")
}
