package pipeline

import (
	"github.com/google/uuid"

	"github.com/sumlower/sumlower/internal/ast"
	"github.com/sumlower/sumlower/internal/diagnostics"
	"github.com/sumlower/sumlower/internal/lower"
)

// Processor is one stage of the chain.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// PipelineContext carries the state of one lowering run between stages.
type PipelineContext struct {
	// RunID tags every run so diagnostics and artifacts from concurrent or
	// repeated (watch-mode) runs can be told apart.
	RunID uuid.UUID

	// FileName and Source describe the input handed to the front end.
	FileName string
	Source   string

	// Decls is the declaration list produced by the front end.
	Decls []ast.Decl

	// Output is the lowered result; Emitted its rendering.
	Output  *lower.Output
	Emitted string

	Errors []*diagnostics.DiagnosticError
}

// NewContext builds the context for one run over a single source file.
func NewContext(fileName, source string) *PipelineContext {
	return &PipelineContext{
		RunID:    uuid.New(),
		FileName: fileName,
		Source:   source,
	}
}

// NewDeclContext builds the context for a run over pre-parsed declarations,
// skipping the front end.
func NewDeclContext(fileName string, decls []ast.Decl) *PipelineContext {
	return &PipelineContext{
		RunID:    uuid.New(),
		FileName: fileName,
		Decls:    decls,
	}
}

func (c *PipelineContext) HasErrors() bool { return len(c.Errors) > 0 }

// FirstError returns the run's diagnostic, or nil for a clean run.
func (c *PipelineContext) FirstError() *diagnostics.DiagnosticError {
	if len(c.Errors) == 0 {
		return nil
	}
	return c.Errors[0]
}

func (c *PipelineContext) addError(err *diagnostics.DiagnosticError) {
	if err.File == "" {
		err.File = c.FileName
	}
	c.Errors = append(c.Errors, err)
}
