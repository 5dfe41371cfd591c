package ingest

import (
	"bytes"
	_ "embed"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/agentstation/coursemap/pkg/errors"
	"github.com/agentstation/coursemap/pkg/report"
)

//go:embed schema/partial.schema.json
var partialSchemaJSON []byte

var compiled = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("partial.schema.json", bytes.NewReader(partialSchemaJSON)); err != nil {
		return nil, errors.NewConfigError("ingest", "failed to load partial-record schema", err)
	}
	schema, err := compiler.Compile("partial.schema.json")
	if err != nil {
		return nil, errors.NewConfigError("ingest", "failed to compile partial-record schema", err)
	}
	return schema, nil
})

func partialSchema() (*jsonschema.Schema, error) {
	return compiled()
}

// SchemaJSON returns the JSON schema partial records are linted against.
func SchemaJSON() []byte {
	return bytes.Clone(partialSchemaJSON)
}

// Lint validates raw against the partial-record schema and returns one
// issue per violated leaf constraint.
func Lint(raw any) []report.Issue {
	schema, err := partialSchema()
	if err != nil {
		return []report.Issue{{Severity: report.Error, Stage: report.StageIngest, Message: "schema unavailable", Err: err}}
	}
	err = schema.Validate(plain(raw))
	if err == nil {
		return nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return []report.Issue{{Severity: report.Warning, Stage: report.StageIngest, Message: "schema validation failed", Err: err}}
	}
	var issues []report.Issue
	collectLeaves(verr, &issues)
	return issues
}

func collectLeaves(v *jsonschema.ValidationError, out *[]report.Issue) {
	if len(v.Causes) == 0 {
		*out = append(*out, report.Issue{
			Severity: report.Info,
			Stage:    report.StageIngest,
			Path:     v.InstanceLocation,
			Message:  "schema: " + v.Message,
		})
		return
	}
	for _, c := range v.Causes {
		collectLeaves(c, out)
	}
}

func (d *Decoder) lint(raw any) {
	for _, issue := range Lint(raw) {
		d.options.sink.Report(issue)
	}
}
